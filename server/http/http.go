package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	agent "github.com/qiwang999/service-topo-agent"
	"github.com/qiwang999/service-topo-agent/server"
)

type httpServer struct {
	options server.Options
	agent   *agent.Agent
	srv     *http.Server
}

func (s *httpServer) Run() error {
	slog.Info("http server listening", "address", s.options.Address)

	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

func (s *httpServer) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return s.srv.Shutdown(ctx)
}

// Router builds the full route table. Exposed so tests can drive handlers
// without a listener.
func Router(a *agent.Agent) *mux.Router {
	h := &handler{agent: a}

	r := mux.NewRouter()

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/chat", h.chat).Methods(http.MethodPost)
	api.HandleFunc("/feedback", h.feedback).Methods(http.MethodPost)
	api.HandleFunc("/examples/similar", h.similarExamples).Methods(http.MethodPost)
	api.HandleFunc("/feedback/similar", h.similarFeedback).Methods(http.MethodPost)
	api.HandleFunc("/cache/stats", h.cacheStats).Methods(http.MethodGet)
	api.HandleFunc("/cache", h.clearCache).Methods(http.MethodDelete)
	api.HandleFunc("/embeddings/init", h.seedEmbeddings).Methods(http.MethodPost)

	r.HandleFunc("/healthz", h.health).Methods(http.MethodGet)

	return r
}

func logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestId := r.Header.Get("X-Request-ID")
		if len(requestId) == 0 {
			requestId = uuid.NewString()
		}

		start := time.Now()
		next.ServeHTTP(w, r)

		slog.InfoContext(r.Context(), "request handled",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", requestId,
			"duration", time.Since(start).String(),
		)
	})
}

func NewServer(a *agent.Agent, opts ...server.Option) server.Server {
	options := server.NewOptions(opts...)

	if a == nil {
		slog.ErrorContext(options.Context, "failed to create http server: agent is required")
		panic("http server requires an agent")
	}

	var root http.Handler = Router(a)
	root = logging(root)

	if ms, ok := MiddlewareFrom(options.Context); ok {
		for i := len(ms) - 1; i >= 0; i-- {
			root = ms[i](root)
		}
	}

	return &httpServer{
		options: options,
		agent:   a,
		srv: &http.Server{
			Addr:              options.Address,
			Handler:           root,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}
