package v1

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/Xunop/e-library/internal/config"
	"github.com/Xunop/e-library/internal/middleware"
	"github.com/Xunop/e-library/internal/store"
)

type Handler struct {
	store      *store.Store
	opts       *config.Options
	middleware *middleware.Middleware
}

// NewHandler is a constructor for the v1.Handler
func NewHandler(store *store.Store, opts *config.Options) *Handler {
	return &Handler{
		store:      store,
		opts:       opts,
		middleware: middleware.NewMiddleware(opts),
	}
}

// Close stops the background work of the handler middlewares.
func (h *Handler) Close() {
	h.middleware.Close()
}

func Server(router *mux.Router, handler *Handler) {
	sr := router.PathPrefix("/api").Subrouter()
	sr.Use(handler.middleware.RequestContext)
	sr.Use(handler.middleware.LoggingRequest)
	sr.Use(handler.middleware.HandleCORS)

	sr.HandleFunc("/health", handler.health).Methods(http.MethodGet)
	sr.HandleFunc("/version", handler.version).Methods(http.MethodGet)
	sr.HandleFunc("/metadata", handler.getMetadata).Methods(http.MethodGet)
	sr.HandleFunc("/fields", handler.listFields).Methods(http.MethodGet)
	sr.HandleFunc("/search", handler.searchBooks).Methods(http.MethodGet)
	sr.Handle("/books", handler.middleware.RateLimit(http.HandlerFunc(handler.createBook))).Methods(http.MethodPost)
	sr.HandleFunc("/books/{id}", handler.getBook).Methods(http.MethodGet)
	sr.HandleFunc("/books/{id}", handler.updateBook).Methods(http.MethodPut)
	sr.HandleFunc("/books/{id}", handler.deleteBook).Methods(http.MethodDelete)
	sr.HandleFunc("/books/{id}/download", handler.downloadBook).Methods(http.MethodGet)
	sr.HandleFunc("/books/{id}/view", handler.viewBook).Methods(http.MethodGet)

	// Preflight requests are answered by HandleCORS.
	sr.PathPrefix("/").Methods(http.MethodOptions).HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
}
