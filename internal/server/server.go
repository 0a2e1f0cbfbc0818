// Package server exposes a local read-only status API over HTTP.
package server

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/HandsomeHarry/companion-cube/internal/companion"
	"github.com/HandsomeHarry/companion-cube/internal/storage"
)

// Server serves companion status and history on a local address.
type Server struct {
	router     *gin.Engine
	comp       *companion.Companion
	store      *storage.Store
	addr       string
	version    string
	httpServer *http.Server
}

// New creates a Server. store may be nil; history endpoints then return
// empty lists.
func New(comp *companion.Companion, store *storage.Store, addr, version string) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	s := &Server{
		router:  router,
		comp:    comp,
		store:   store,
		addr:    addr,
		version: version,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.router.Group("/api")
	{
		api.GET("/version", s.handleVersion)
		api.GET("/status", s.handleStatus)
		api.GET("/summaries", s.handleSummaries)
		api.GET("/interactions", s.handleInteractions)
	}
}

func (s *Server) handleVersion(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"version": s.version})
}

func (s *Server) handleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, s.comp.Status())
}

func (s *Server) handleSummaries(c *gin.Context) {
	if s.store == nil {
		c.JSON(http.StatusOK, gin.H{"summaries": []any{}})
		return
	}
	summaries, err := s.store.RecentDailySummaries(limitParam(c, 30))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"summaries": summaries})
}

func (s *Server) handleInteractions(c *gin.Context) {
	if s.store == nil {
		c.JSON(http.StatusOK, gin.H{"interactions": []any{}})
		return
	}
	interactions, err := s.store.RecentInteractions(limitParam(c, 50))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"interactions": interactions})
}

func limitParam(c *gin.Context, fallback int) int {
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil || limit <= 0 || limit > 1000 {
		return fallback
	}
	return limit
}

// Start begins serving. Blocks until Shutdown or failure.
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:    s.addr,
		Handler: s.router,
	}
	err := s.httpServer.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}
