package ops

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"dishpatch/internal/types"
)

// Server is the operational HTTP server. It serves only ops routes; the
// worker has no request-facing API surface.
type Server struct {
	probes []HealthProbe
	logger types.Logger
	srv    *http.Server
}

// NewServer creates the ops server listening on the given port.
func NewServer(port string, probes []HealthProbe, logger types.Logger) *Server {
	s := &Server{
		probes: probes,
		logger: logger,
	}

	router := chi.NewRouter()
	router.Get("/health", s.handleHealth)

	s.srv = &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return s
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.srv.ListenAndServe()
	}()

	s.logger.Info("ops server started", "addr", s.srv.Addr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// handleHealth executes all registered probes concurrently with a short
// timeout. Returns 200 OK if every probe reports healthy, 503 Service
// Unavailable otherwise. Public, unauthenticated, mounted at GET /health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if len(s.probes) == 0 {
		writeJSON(w, http.StatusOK, healthResponse{Status: "healthy"})
		return
	}

	healthy, components := runProbes(r.Context(), s.probes)

	status := http.StatusOK
	resp := healthResponse{Status: "healthy", Components: components}
	if !healthy {
		status = http.StatusServiceUnavailable
		resp.Status = "unhealthy"
	}

	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
