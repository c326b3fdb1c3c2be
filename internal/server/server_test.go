package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"StockDeck/internal/collector"
	"StockDeck/internal/logger"
	"StockDeck/internal/model"
	"StockDeck/internal/notifier"
	"StockDeck/internal/proxy"
	"StockDeck/internal/tape"
	"StockDeck/internal/watchlist"
)

type fixture struct {
	srv   *Server
	wl    *watchlist.Controller
	board *notifier.Board
	tape  *tape.Tape
	mock  *collector.MockFetcher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	m := &collector.MockFetcher{
		Price: 100,
		Results: []model.SearchResult{
			{Ticker: "AAPL", Name: "Apple Inc.", Exchange: "NMS", Type: model.TypeEquity},
			{Ticker: "AAPL250117C", Name: "AAPL option", Exchange: "OPR", Type: "OPTION"},
		},
	}
	p := proxy.New(m, nil)
	board := notifier.NewBoard(50)
	wl := watchlist.NewController(p, p, board)
	tp := tape.New(p, []string{"AAPL", "MSFT"}, "1d", 2)
	return &fixture{
		srv:   New(":0", p, wl, board, tp, logger.GetLogger()),
		wl:    wl,
		board: board,
		tape:  tp,
		mock:  m,
	}
}

func (f *fixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	f.srv.Router().ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return v
}

func TestStock(t *testing.T) {
	f := newFixture(t)
	f.mock.ChartErr = map[string]error{"BAD": errors.New("yahoo: status 404")}

	tests := []struct {
		name   string
		path   string
		status int
		errMsg string
	}{
		{"ok", "/api/stock?ticker=AAPL&period=5d", http.StatusOK, ""},
		{"default period", "/api/stock?ticker=AAPL", http.StatusOK, ""},
		{"missing ticker", "/api/stock", http.StatusBadRequest, "Ticker is required"},
		{"blank ticker", "/api/stock?ticker=%20%20", http.StatusBadRequest, "Ticker is required"},
		{"invalid period", "/api/stock?ticker=AAPL&period=2w", http.StatusBadRequest, "Invalid period"},
		{"upstream failure", "/api/stock?ticker=BAD", http.StatusInternalServerError, "Failed to fetch stock data"},
	}
	for _, tt := range tests {
		w := f.do(t, http.MethodGet, tt.path, "")
		if w.Code != tt.status {
			t.Errorf("%s: status = %d, want %d (%s)", tt.name, w.Code, tt.status, w.Body.String())
			continue
		}
		if tt.errMsg != "" {
			body := decode[map[string]string](t, w)
			if body["error"] != tt.errMsg {
				t.Errorf("%s: error = %q, want %q", tt.name, body["error"], tt.errMsg)
			}
			continue
		}
		body := decode[map[string]any](t, w)
		for _, key := range []string{"ticker", "currency", "regularMarketPrice", "chartPreviousClose", "timestamps", "prices"} {
			if _, ok := body[key]; !ok {
				t.Errorf("%s: missing %q in %s", tt.name, key, w.Body.String())
			}
		}
	}
}

func TestSearch(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodGet, "/api/search?q=apple", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	results := decode[[]model.SearchResult](t, w)
	if len(results) != 1 || results[0].Ticker != "AAPL" {
		t.Errorf("expected only the equity, got %+v", results)
	}

	w = f.do(t, http.MethodGet, "/api/search?q=", "")
	if w.Code != http.StatusOK || strings.TrimSpace(w.Body.String()) != "[]" {
		t.Errorf("empty query: %d %s", w.Code, w.Body.String())
	}

	f.mock.SearchErr = errors.New("connection reset")
	w = f.do(t, http.MethodGet, "/api/search?q=apple", "")
	if w.Code != http.StatusOK || strings.TrimSpace(w.Body.String()) != "[]" {
		t.Errorf("upstream failure: %d %s", w.Code, w.Body.String())
	}
}

func TestWatchlistLifecycle(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/api/watchlist", `{"ticker":"aapl"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("add: %d %s", w.Code, w.Body.String())
	}
	entry := decode[model.Entry](t, w)
	if entry.Ticker != "AAPL" || entry.Name != "Apple Inc." {
		t.Errorf("entry = %+v", entry)
	}

	if w := f.do(t, http.MethodPost, "/api/watchlist", `{"ticker":"AAPL"}`); w.Code != http.StatusConflict {
		t.Errorf("duplicate: %d", w.Code)
	}
	if w := f.do(t, http.MethodPost, "/api/watchlist", `{"ticker":" "}`); w.Code != http.StatusBadRequest {
		t.Errorf("blank: %d", w.Code)
	}

	if peeked := decode[[]model.Notice](t, f.do(t, http.MethodGet, "/api/notices?peek=true", "")); len(peeked) != 2 {
		t.Errorf("peek should leave notices pending, got %+v", peeked)
	}
	notices := decode[[]model.Notice](t, f.do(t, http.MethodGet, "/api/notices", ""))
	if len(notices) != 2 || notices[0].Message != "Added AAPL to watchlist" || notices[1].Message != "AAPL is already in your watchlist" {
		t.Errorf("notices = %+v", notices)
	}
	if again := decode[[]model.Notice](t, f.do(t, http.MethodGet, "/api/notices", "")); len(again) != 0 {
		t.Errorf("notices should be drained, got %+v", again)
	}

	if w := f.do(t, http.MethodPut, "/api/watchlist/expanded", `{"id":"`+entry.ID+`"}`); w.Code != http.StatusOK {
		t.Errorf("expand: %d", w.Code)
	}
	state := decode[watchlistResponse](t, f.do(t, http.MethodGet, "/api/watchlist", ""))
	if len(state.Entries) != 1 || state.Expanded == nil || state.Expanded.ID != entry.ID {
		t.Errorf("state = %+v", state)
	}
	if card := state.Entries[0]; card.High < card.Low || card.RangePosition < 0 || card.RangePosition > 1 {
		t.Errorf("card range = %+v", card)
	}

	removed := decode[map[string]bool](t, f.do(t, http.MethodDelete, "/api/watchlist/"+entry.ID, ""))
	if !removed["removed"] {
		t.Error("expected removed=true")
	}
	removed = decode[map[string]bool](t, f.do(t, http.MethodDelete, "/api/watchlist/"+entry.ID, ""))
	if removed["removed"] {
		t.Error("second remove should be a no-op")
	}
	state = decode[watchlistResponse](t, f.do(t, http.MethodGet, "/api/watchlist", ""))
	if len(state.Entries) != 0 || state.Expanded != nil {
		t.Errorf("state after remove = %+v", state)
	}
}

func TestAddEntry_UpstreamFailure(t *testing.T) {
	f := newFixture(t)
	f.mock.ChartErr = map[string]error{"ZZZZ": errors.New("yahoo: status 404")}

	w := f.do(t, http.MethodPost, "/api/watchlist", `{"ticker":"ZZZZ"}`)
	if w.Code != http.StatusBadGateway {
		t.Fatalf("status = %d", w.Code)
	}
	if len(f.wl.Entries()) != 0 {
		t.Error("failed add must not create an entry")
	}
}

func TestAddEntry_ClientGoneReturns499(t *testing.T) {
	f := newFixture(t)
	f.mock.Delay = map[string]time.Duration{"SLOW": time.Second}

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)
	req := httptest.NewRequest(http.MethodPost, "/api/watchlist", strings.NewReader(`{"ticker":"SLOW"}`)).WithContext(ctx)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.srv.Router().ServeHTTP(w, req)

	if w.Code != 499 {
		t.Fatalf("status = %d, want 499", w.Code)
	}
	if len(f.wl.Entries()) != 0 {
		t.Error("canceled add must not create an entry")
	}
}

func TestMoveEntry(t *testing.T) {
	f := newFixture(t)
	var added []model.Entry
	for _, tk := range []string{"AAPL", "MSFT", "NVDA"} {
		e, err := f.wl.Add(context.Background(), tk)
		if err != nil {
			t.Fatal(err)
		}
		added = append(added, *e)
	}

	w := f.do(t, http.MethodPost, "/api/watchlist/"+added[2].ID+"/move", `{"index":0}`)
	if w.Code != http.StatusOK {
		t.Fatalf("move: %d %s", w.Code, w.Body.String())
	}
	state := decode[watchlistResponse](t, w)
	if got := []string{state.Entries[0].Ticker, state.Entries[1].Ticker, state.Entries[2].Ticker}; got[0] != "NVDA" || got[1] != "AAPL" || got[2] != "MSFT" {
		t.Errorf("order after index move = %v", got)
	}

	w = f.do(t, http.MethodPost, "/api/watchlist/"+added[2].ID+"/move", `{"over":"`+added[1].ID+`"}`)
	state = decode[watchlistResponse](t, w)
	if got := []string{state.Entries[0].Ticker, state.Entries[1].Ticker, state.Entries[2].Ticker}; got[0] != "AAPL" || got[1] != "MSFT" || got[2] != "NVDA" {
		t.Errorf("order after drag = %v", got)
	}

	if w := f.do(t, http.MethodPost, "/api/watchlist/nope/move", `{"index":1}`); w.Code != http.StatusNotFound {
		t.Errorf("unknown id: %d", w.Code)
	}
	if w := f.do(t, http.MethodPost, "/api/watchlist/"+added[0].ID+"/move", `{}`); w.Code != http.StatusBadRequest {
		t.Errorf("empty body: %d", w.Code)
	}
	if w := f.do(t, http.MethodPut, "/api/watchlist/expanded", `{"id":"nope"}`); w.Code != http.StatusNotFound {
		t.Errorf("expand unknown: %d", w.Code)
	}
}

func TestTapeEndpoints(t *testing.T) {
	f := newFixture(t)
	f.mock.ChartErr = map[string]error{"MSFT": errors.New("timeout")}
	f.tape.Refresh(context.Background())

	items := decode[[]model.TapeItem](t, f.do(t, http.MethodGet, "/api/tape", ""))
	if len(items) != 1 || items[0].Ticker != "AAPL" {
		t.Fatalf("tape = %+v", items)
	}

	ts := httptest.NewServer(f.srv.Router())
	defer ts.Close()
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/ws/tape", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var snap []model.TapeItem
	if err := conn.ReadJSON(&snap); err != nil {
		t.Fatalf("read primed snapshot: %v", err)
	}
	if len(snap) != 1 || snap[0].Ticker != "AAPL" {
		t.Errorf("primed snapshot = %+v", snap)
	}

	f.mock.ChartErr = nil
	f.tape.Refresh(context.Background())
	if err := conn.ReadJSON(&snap); err != nil {
		t.Fatalf("read refreshed snapshot: %v", err)
	}
	if len(snap) != 2 || snap[0].Ticker != "AAPL" || snap[1].Ticker != "MSFT" {
		t.Errorf("refreshed snapshot = %+v", snap)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodGet, "/healthz", "")
	if w.Code != http.StatusOK || decode[map[string]string](t, w)["status"] != "ok" {
		t.Errorf("healthz: %d %s", w.Code, w.Body.String())
	}
	if w.Header().Get(requestIDHeader) == "" {
		t.Error("expected a request id header")
	}

	w = f.do(t, http.MethodGet, "/metrics", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "go_goroutines") {
		t.Errorf("metrics: %d", w.Code)
	}
}

func TestNormalizeAddress(t *testing.T) {
	tests := map[string]string{
		"":               "0.0.0.0:8080",
		":9000":          "0.0.0.0:9000",
		"localhost":      "localhost:8080",
		"127.0.0.1:7000": "127.0.0.1:7000",
	}
	for in, want := range tests {
		if got := normalizeAddress(in); got != want {
			t.Errorf("normalizeAddress(%q) = %q, want %q", in, got, want)
		}
	}
}
