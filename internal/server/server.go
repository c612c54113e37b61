// Package server provides the HTTP API for pdfchat.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/hyperjump/pdfchat/internal/config"
	"github.com/hyperjump/pdfchat/internal/models"
	"go.uber.org/zap"
)

// Session is the part of the session dispatcher the server drives.
type Session interface {
	Upload(ctx context.Context, files []models.UploadedFile) (*models.UploadResult, error)
	Chat(ctx context.Context, question string) (*models.ChatResponse, error)
	Reset(ctx context.Context) (models.SessionStatus, error)
	Status(ctx context.Context) (models.SessionStatus, error)
	MaxUploadBytes() int64
}

// Server is the HTTP server for the pdfchat API.
type Server struct {
	session Session
	config  *config.ServerConfig
	logger  *zap.Logger
	server  *http.Server
}

// NewServer creates a server over session.
func NewServer(session Session, cfg *config.ServerConfig, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		session: session,
		config:  cfg,
		logger:  logger,
	}
}

// Handler returns the router with every route and middleware mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(5 * time.Minute))

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/upload", s.handleUpload)
		r.Post("/chat", s.handleChat)
		r.Post("/reset", s.handleReset)
		r.Get("/status", s.handleStatus)
	})
	r.Get("/health", s.handleHealth)
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
