package observability

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yurixander/minimal/pkg/domain"
	"github.com/yurixander/minimal/pkg/registry"
)

// FeatureTable is the read side of the feature registry.
type FeatureTable interface {
	All() []registry.Feature
	Status(name string) (registry.Status, bool)
	Reason(name string) error
}

// FeatureView is one entry of the /features response.
type FeatureView struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Status      registry.Status `json:"status"`
	Reason      string          `json:"reason,omitempty"`
}

// Server exposes metrics and introspection routes.
type Server struct {
	metrics  *Metrics
	features FeatureTable
	logger   *slog.Logger
	state    atomic.Pointer[domain.State]
}

// NewServer creates a server. features may be nil.
func NewServer(metrics *Metrics, features FeatureTable, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Server{metrics: metrics, features: features, logger: logger}
}

// Publish records s as the latest committed state.
func (s *Server) Publish(state *domain.State) {
	s.state.Store(state)
}

// Handler returns the chi router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	if s.metrics != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.metrics.Registry, promhttp.HandlerOpts{}))
	}
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/state", s.handleState)
	r.Get("/features", s.handleFeatures)
	return r
}

func (s *Server) handleState(w http.ResponseWriter, _ *http.Request) {
	state := s.state.Load()
	if state == nil {
		http.Error(w, "no state published yet", http.StatusServiceUnavailable)
		return
	}
	s.writeJSON(w, state)
}

func (s *Server) handleFeatures(w http.ResponseWriter, _ *http.Request) {
	views := []FeatureView{}
	if s.features != nil {
		for _, f := range s.features.All() {
			status, _ := s.features.Status(f.Name)
			view := FeatureView{Name: f.Name, Description: f.Description, Status: status}
			if err := s.features.Reason(f.Name); err != nil {
				view.Reason = err.Error()
			}
			views = append(views, view)
		}
	}
	s.writeJSON(w, views)
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Debug("failed to encode response", "err", err)
	}
}

// ListenAndServe serves until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Debug("introspection server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		<-errCh
		return nil
	}
}
