// Package httpapi exposes the review pipeline as a JSON HTTP API.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/ersonp/catalog-review/internal/application/handlers"
)

// ActorHeader carries the id of the authenticated caller, set by the upstream proxy.
const ActorHeader = "X-Actor-ID"

// maxRequestBodySize limits POST body sizes.
const maxRequestBodySize = 1 << 20 // 1 MB

const shutdownTimeout = 10 * time.Second

// Handlers groups the application handlers served by the API.
type Handlers struct {
	Proposals *handlers.ProposalHandler
	Reviews   *handlers.ReviewHandler
	Records   *handlers.CatalogHandler
	Audit     *handlers.AuditHandler
}

// Server serves the catalog review API.
type Server struct {
	h       Handlers
	metrics http.Handler
	log     *zap.Logger
}

// NewServer creates a new API server. A nil metrics handler disables /metrics.
func NewServer(h Handlers, metrics http.Handler, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{h: h, metrics: metrics, log: log}
}

// RegisterRoutes registers all API routes on the given mux:
//
//	POST /api/corrections
//	GET  /api/corrections?status=&limit=
//	GET  /api/corrections/{id}
//	POST /api/corrections/{id}/review
//	POST /api/corrections/review-batch
//	(same for /api/submissions)
//	GET  /api/records/{slug}
//	GET  /api/audit?record=&limit=
//	GET  /metrics
//	GET  /healthz
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/corrections", s.handleCreateCorrection)
	mux.HandleFunc("POST /api/submissions", s.handleCreateSubmission)

	for _, kind := range []string{"corrections", "submissions"} {
		mux.HandleFunc("GET /api/"+kind, s.handleList(kind))
		mux.HandleFunc("GET /api/"+kind+"/{id}", s.handleGet(kind))
		mux.HandleFunc("POST /api/"+kind+"/{id}/review", s.handleReview(kind))
		mux.HandleFunc("POST /api/"+kind+"/review-batch", s.handleBatch(kind))
	}

	mux.HandleFunc("GET /api/records/{slug}", s.handleRecord)
	mux.HandleFunc("GET /api/audit", s.handleAudit)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics)
	}
}

// Handler returns a mux with every route registered.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)
	return mux
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("starting HTTP server", zap.String("address", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("serving http: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.log.Info("shutting down HTTP server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down http server: %w", err)
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
