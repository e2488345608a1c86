package http

import (
	"net/http"
	"time"
)

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.ok(w, r, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(s.started).Round(time.Second).String(),
	})
}

// handleReady reports ready only while a dataset is loaded, so a failed load
// takes the instance out of rotation.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	checks := map[string]any{}
	status := "ready"
	code := http.StatusOK

	if s.templates == nil {
		checks["templates"] = "failed: templates not loaded"
		status, code = "not_ready", http.StatusServiceUnavailable
	} else {
		checks["templates"] = "ok"
	}

	if d, err := s.dash.Current(); err != nil {
		checks["dataset"] = NewErrorBody(err)
		status, code = "not_ready", http.StatusServiceUnavailable
	} else {
		checks["dataset"] = metaOf(d)
	}

	if st := s.dash.State(); st != nil {
		checks["last_load"] = map[string]any{
			"trigger":   st.Trigger,
			"loaded_at": st.LoadedAt.Format(time.RFC3339),
			"took_ms":   st.Took.Milliseconds(),
		}
	}
	checks["rate_limiter"] = map[string]any{
		"active_clients": s.limiter.ActiveClients(),
		"rejected":       s.limiter.Hits(),
	}

	s.writeJSON(w, r, NewJSONResponse().Status(code).Body(map[string]any{
		"status":    status,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"checks":    checks,
	}))
}
