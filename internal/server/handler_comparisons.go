package server

import (
	"net/http"

	"github.com/me/schedsim/internal/compare"
	"github.com/me/schedsim/pkg/model"
)

type comparisonResponse struct {
	Processes int                     `json:"processes"`
	Entries   []model.ComparisonEntry `json:"entries"`
	// Best is the completed algorithm with the lowest average waiting time.
	Best model.Algorithm `json:"best,omitempty"`
}

// handleCreateComparison runs one workload under several algorithms. Comparisons
// are not persisted.
func (s *Server) handleCreateComparison(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())

	var req model.ComparisonRequest
	if apiErr := decodeJSON(w, r, &req); apiErr != nil {
		respondError(w, reqID, http.StatusBadRequest, apiErr)
		return
	}
	specs, apiErr := s.requestSpecs(req.Processes, req.Workload)
	if apiErr != nil {
		respondError(w, reqID, http.StatusBadRequest, apiErr)
		return
	}
	base, apiErr := schedulerConfig("", req.PriorityOrder, req.CPUs, req.Quantum, req.MaxTicks)
	if apiErr != nil {
		respondError(w, reqID, http.StatusBadRequest, apiErr)
		return
	}
	if apiErr := s.checkLimits(specs, base); apiErr != nil {
		respondError(w, reqID, http.StatusBadRequest, apiErr)
		return
	}
	var algs []model.Algorithm
	for _, name := range req.Algorithms {
		alg, err := model.ParseAlgorithm(name)
		if err != nil {
			respondError(w, reqID, http.StatusBadRequest, configAPIError(err))
			return
		}
		algs = append(algs, alg)
	}

	entries, err := s.compare.Run(r.Context(), specs, compare.Options{
		Algorithms:    algs,
		Base:          base,
		MaxConcurrent: s.config.MaxConcurrent,
		KeepResults:   req.IncludeResults,
	})
	if err != nil {
		respondInternal(w, reqID, err)
		return
	}
	respondOK(w, reqID, comparisonResponse{
		Processes: len(specs),
		Entries:   entries,
		Best:      compare.Best(entries),
	})
}
