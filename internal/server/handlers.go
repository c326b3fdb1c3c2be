package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"StockDeck/internal/logger"
	"StockDeck/internal/model"
	"StockDeck/internal/proxy"
	"StockDeck/internal/watchlist"
)

type addEntryRequest struct {
	Ticker string `json:"ticker"`
}

type moveEntryRequest struct {
	Index *int   `json:"index"`
	Over  string `json:"over"`
}

type expandRequest struct {
	ID string `json:"id"`
}

type watchlistResponse struct {
	Entries  []model.Card `json:"entries"`
	Expanded *model.Entry `json:"expanded"`
	Loading  []string     `json:"loading"`
}

func errorBody(msg string) gin.H { return gin.H{"error": msg} }

func (s *Server) handleStock(c *gin.Context) {
	q, err := s.proxy.Quote(c.Request.Context(), c.Query("ticker"), c.Query("period"))
	switch {
	case err == nil:
		c.JSON(http.StatusOK, q)
	case errors.Is(err, proxy.ErrTickerRequired):
		c.JSON(http.StatusBadRequest, errorBody("Ticker is required"))
	case errors.Is(err, proxy.ErrInvalidPeriod):
		c.JSON(http.StatusBadRequest, errorBody("Invalid period"))
	default:
		s.log.WithComponent("server").WithError(err).Warn("stock request failed")
		c.JSON(http.StatusInternalServerError, errorBody("Failed to fetch stock data"))
	}
}

func (s *Server) handleSearch(c *gin.Context) {
	c.JSON(http.StatusOK, s.proxy.Search(c.Request.Context(), c.Query("q")))
}

// handleNotices drains pending notices; peek=true reads them without clearing.
func (s *Server) handleNotices(c *gin.Context) {
	if c.Query("peek") == "true" {
		c.JSON(http.StatusOK, s.notices.Pending())
		return
	}
	c.JSON(http.StatusOK, s.notices.Drain())
}

func (s *Server) handleListWatchlist(c *gin.Context) {
	c.JSON(http.StatusOK, s.watchlistState())
}

func (s *Server) watchlistState() watchlistResponse {
	resp := watchlistResponse{
		Entries: s.watchlist.Cards(),
		Loading: s.watchlist.Loading(),
	}
	if e, ok := s.watchlist.Expanded(); ok {
		resp.Expanded = &e
	}
	return resp
}

func (s *Server) handleAddEntry(c *gin.Context) {
	var req addEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody("Invalid request body"))
		return
	}

	entry, err := s.watchlist.Add(c.Request.Context(), req.Ticker)
	switch {
	case err == nil:
		c.JSON(http.StatusCreated, entry)
	case errors.Is(err, watchlist.ErrTickerRequired):
		c.JSON(http.StatusBadRequest, errorBody("Ticker is required"))
	case errors.Is(err, watchlist.ErrDuplicate):
		c.JSON(http.StatusConflict, errorBody(err.Error()))
	case errors.Is(err, context.Canceled):
		// client disconnected; nothing to write
		c.Status(499)
	default:
		s.log.WithComponent("server").WithError(err).WithFields(logger.Fields{"ticker": req.Ticker}).Warn("add entry failed")
		c.JSON(http.StatusBadGateway, errorBody("Failed to add "+req.Ticker))
	}
}

func (s *Server) handleRemoveEntry(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"removed": s.watchlist.Remove(c.Param("id"))})
}

func (s *Server) handleMoveEntry(c *gin.Context) {
	var req moveEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil || (req.Index == nil && req.Over == "") {
		c.JSON(http.StatusBadRequest, errorBody("index or over is required"))
		return
	}

	id := c.Param("id")
	var err error
	if req.Over != "" {
		err = s.watchlist.DragEnd(id, req.Over)
	} else {
		err = s.watchlist.Reorder(id, *req.Index)
	}
	if errors.Is(err, watchlist.ErrEntryNotFound) {
		c.JSON(http.StatusNotFound, errorBody(err.Error()))
		return
	}
	c.JSON(http.StatusOK, s.watchlistState())
}

func (s *Server) handleExpand(c *gin.Context) {
	var req expandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody("Invalid request body"))
		return
	}
	if err := s.watchlist.Expand(req.ID); err != nil {
		c.JSON(http.StatusNotFound, errorBody(err.Error()))
		return
	}
	c.JSON(http.StatusOK, s.watchlistState())
}

func (s *Server) handleCollapse(c *gin.Context) {
	s.watchlist.Collapse()
	c.JSON(http.StatusOK, s.watchlistState())
}

func (s *Server) handleTape(c *gin.Context) {
	c.JSON(http.StatusOK, s.tape.Snapshot())
}
