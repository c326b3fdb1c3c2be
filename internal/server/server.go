package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"StockDeck/internal/logger"
	"StockDeck/internal/metrics"
	"StockDeck/internal/notifier"
	"StockDeck/internal/proxy"
	"StockDeck/internal/tape"
	"StockDeck/internal/watchlist"
)

// Server hosts the StockDeck HTTP API.
type Server struct {
	addr       string
	proxy      *proxy.Proxy
	watchlist  *watchlist.Controller
	notices    *notifier.Board
	tape       *tape.Tape
	log        *logger.Log
	httpServer *http.Server
}

// New constructs a server. tape may be nil, which disables the tape endpoints.
func New(addr string, p *proxy.Proxy, wl *watchlist.Controller, notices *notifier.Board, t *tape.Tape, log *logger.Log) *Server {
	return &Server{
		addr:      normalizeAddress(addr),
		proxy:     p,
		watchlist: wl,
		notices:   notices,
		tape:      t,
		log:       log,
	}
}

// Address reports the network address the server listens on.
func (s *Server) Address() string { return s.addr }

// Run starts the HTTP server and blocks until ctx is cancelled or the server fails.
func (s *Server) Run(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:    s.addr,
		Handler: s.Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	s.log.WithComponent("server").WithFields(logger.Fields{"address": s.addr}).Info("http server listening")

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		<-errCh
		return nil
	case err := <-errCh:
		return err
	}
}

// Router builds the gin engine with every route mounted.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), requestID(), accessLog(s.log))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := router.Group("/api")
	api.GET("/stock", s.handleStock)
	api.GET("/search", s.handleSearch)
	api.GET("/notices", s.handleNotices)

	wl := api.Group("/watchlist")
	wl.GET("", s.handleListWatchlist)
	wl.POST("", s.handleAddEntry)
	wl.PUT("/expanded", s.handleExpand)
	wl.DELETE("/expanded", s.handleCollapse)
	wl.DELETE("/:id", s.handleRemoveEntry)
	wl.POST("/:id/move", s.handleMoveEntry)

	if s.tape != nil {
		api.GET("/tape", s.handleTape)
		router.GET("/ws/tape", s.handleTapeSocket)
	}
	return router
}

func normalizeAddress(addr string) string {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return "0.0.0.0:8080"
	}
	if strings.HasPrefix(addr, ":") {
		return "0.0.0.0" + addr
	}
	if _, _, err := net.SplitHostPort(addr); err != nil {
		return net.JoinHostPort(addr, "8080")
	}
	return addr
}
