package api

import (
	"net/http"

	"github.com/seenimoa/revgrowth/internal/config"
)

// ConfigResponse is the JSON envelope returned by GET /api/v1/config.
type ConfigResponse struct {
	Config config.Config `json:"config"`
}

// handleGetConfig returns the running configuration with secrets masked.
func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    ConfigResponse{Config: redactConfig(s.cfg)},
	})
}

// redactConfig returns a copy of cfg safe to expose over HTTP.
func redactConfig(cfg *config.Config) config.Config {
	out := *cfg
	out.Analysis.Tickers = append([]string(nil), cfg.Analysis.Tickers...)
	out.API.CORSOrigins = append([]string(nil), cfg.API.CORSOrigins...)
	for _, ks := range config.CheckAPIKeys(cfg) {
		if ks.Name == "FMP API Key" {
			out.Provider.FMPAPIKey = ks.Masked
		}
	}
	return out
}
