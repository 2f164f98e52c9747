// Package api implements the HTTP surface of the friends directory: CRUD
// over friend records, profession question answering, health checks, and
// static serving of stored photos.
package api

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/edgard/friendbook/internal/answer"
	"github.com/edgard/friendbook/internal/database"
	"github.com/edgard/friendbook/internal/logger"
	"github.com/edgard/friendbook/internal/media"
)

// Handler carries the dependencies shared by all route handlers.
type Handler struct {
	logger    *slog.Logger
	store     database.Store
	processor *media.Processor
	provider  answer.Provider
}

// NewHandler creates the API handler with its dependencies.
func NewHandler(log *slog.Logger, store database.Store, processor *media.Processor, provider answer.Provider) *Handler {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Handler{
		logger:    log.With("component", "api"),
		store:     store,
		processor: processor,
		provider:  provider,
	}
}

// Router builds the chi router with all routes and middleware attached.
func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(logger.RequestMiddleware(h.logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/", h.handleRoot)
	r.Get("/health", h.handleHealth)

	r.Route("/friends", func(r chi.Router) {
		r.Post("/", h.handleCreateFriend)
		r.Get("/", h.handleListFriends)
		r.Get("/{id}", h.handleGetFriend)
		r.Delete("/{id}", h.handleDeleteFriend)
		r.Post("/{id}/ask", h.handleAsk)
	})

	fileServer := http.StripPrefix("/media/", http.FileServer(http.Dir(h.processor.Dir())))
	r.Get("/media/*", fileServer.ServeHTTP)

	return r
}
