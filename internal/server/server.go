package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	v1 "github.com/Xunop/e-library/internal/api/v1"
	"github.com/Xunop/e-library/internal/config"
	"github.com/Xunop/e-library/internal/http/response"
	"github.com/Xunop/e-library/internal/log"
	"github.com/Xunop/e-library/internal/store"
)

type Server struct {
	httpServer *http.Server
	handler    *v1.Handler
}

// StartServer starts the HTTP server in the background.
func StartServer(store *store.Store, opts *config.Options) *Server {
	handler := v1.NewHandler(store, opts)
	s := &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", opts.Host, opts.Port),
			Handler:      setupHandler(handler),
			ReadTimeout:  opts.ReadTimeoutDuration(),
			WriteTimeout: opts.WriteTimeoutDuration(),
		},
		handler: handler,
	}

	startHTTPServer(s.httpServer)
	return s
}

// Shutdown waits for in-flight requests until ctx is done.
func (s *Server) Shutdown(ctx context.Context) error {
	defer s.handler.Close()
	return s.httpServer.Shutdown(ctx)
}

func startHTTPServer(server *http.Server) {
	go func() {
		log.Info("Starting HTTP server", zap.String("address", server.Addr))
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()
}

func setupHandler(handler *v1.Handler) http.Handler {
	router := mux.NewRouter()
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		response.NotFound(w, r, nil)
	})

	// Setup the API routes
	v1.Server(router, handler)

	return router
}
