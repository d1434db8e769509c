// Source and configuration endpoints.

package api

import (
	"net/http"

	"github.com/seenimoa/fundamentals/internal/config"
	"github.com/seenimoa/fundamentals/internal/provider"
)

// SourcesResponse is the JSON payload returned by GET /api/v1/sources.
type SourcesResponse struct {
	Default string          `json:"default"`
	Sources []provider.Info `json:"sources"`
}

// handleSources lists the registered statement sources.
func (s *Server) handleSources(w http.ResponseWriter, r *http.Request) {
	resp := SourcesResponse{Sources: s.reg.List()}
	if src, err := s.reg.Default(); err == nil {
		resp.Default = src.Info().Name
	}
	s.writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    resp,
	})
}

// handleGetConfigKeys returns the status of all sensitive API keys.
// Values are masked.
func (s *Server) handleGetConfigKeys(w http.ResponseWriter, r *http.Request) {
	keys := config.CheckAPIKeys(s.cfg)
	s.writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    keys,
	})
}
