package server

import (
	"net/http"
	"runtime"
	"time"

	"github.com/me/schedsim/internal/config"
	"github.com/me/schedsim/pkg/model"
)

type healthResponse struct {
	Status     string   `json:"status"`
	Version    string   `json:"version"`
	GoVersion  string   `json:"go_version"`
	Uptime     string   `json:"uptime"`
	Store      string   `json:"store"`
	Algorithms []string `json:"algorithms"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())

	storeStatus := "ok"
	if _, _, err := s.store.ListRuns(r.Context(), model.ListOptions{Limit: 1}); err != nil {
		s.logger.Warn("store health check failed", "error", err)
		storeStatus = "unavailable"
	}

	algs := make([]string, len(model.Algorithms))
	for i, a := range model.Algorithms {
		algs[i] = a.String()
	}
	respondOK(w, reqID, healthResponse{
		Status:     "healthy",
		Version:    config.Version,
		GoVersion:  runtime.Version(),
		Uptime:     time.Since(s.startTime).Round(time.Second).String(),
		Store:      storeStatus,
		Algorithms: algs,
	})
}
