package server

import (
	"bytes"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/me/schedsim/internal/report"
	"github.com/me/schedsim/internal/scheduler"
	"github.com/me/schedsim/internal/store"
	"github.com/me/schedsim/pkg/model"
)

// handleCreateSimulation runs a simulation synchronously and stores the run.
// A diverged run is still recorded with its partial result.
func (s *Server) handleCreateSimulation(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())

	var req model.SimulationRequest
	if apiErr := decodeJSON(w, r, &req); apiErr != nil {
		respondError(w, reqID, http.StatusBadRequest, apiErr)
		return
	}
	specs, apiErr := s.requestSpecs(req.Processes, req.Workload)
	if apiErr != nil {
		respondError(w, reqID, http.StatusBadRequest, apiErr)
		return
	}
	cfg, apiErr := schedulerConfig(req.Algorithm, req.PriorityOrder, req.CPUs, req.Quantum, req.MaxTicks)
	if apiErr != nil {
		respondError(w, reqID, http.StatusBadRequest, apiErr)
		return
	}
	if apiErr := s.checkLimits(specs, cfg); apiErr != nil {
		respondError(w, reqID, http.StatusBadRequest, apiErr)
		return
	}

	res, runErr := scheduler.New(cfg, s.logger).Run(r.Context(), specs)
	if runErr != nil && !errors.Is(runErr, model.ErrDiverged) {
		respondError(w, reqID, http.StatusUnprocessableEntity,
			&model.APIError{Code: model.ErrSimulation, Message: runErr.Error()})
		return
	}
	run := store.NewRun(store.NewRunID(), req.Name, cfg, specs, res, runErr, s.now())

	if r.URL.Query().Get("dry_run") == "true" {
		respondOK(w, reqID, run)
		return
	}
	if err := s.store.CreateRun(r.Context(), run); err != nil {
		s.logger.Error("store run", "id", run.ID, "error", err)
		respondInternal(w, reqID, err)
		return
	}
	s.logger.Info("simulation stored", "id", run.ID, "algorithm", run.Algorithm, "status", run.Status)
	respondCreated(w, reqID, run)
}

func (s *Server) handleListSimulations(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())

	opts, apiErr := listOptions(r)
	if apiErr != nil {
		respondError(w, reqID, http.StatusBadRequest, apiErr)
		return
	}
	runs, total, err := s.store.ListRuns(r.Context(), opts)
	if err != nil {
		respondInternal(w, reqID, err)
		return
	}
	if runs == nil {
		runs = []*model.Run{}
	}
	respondList(w, reqID, runs, &model.Pagination{
		Total:   total,
		Limit:   opts.Limit,
		Offset:  opts.Offset,
		HasMore: opts.Offset+opts.Limit < total,
	})
}

func (s *Server) handleGetSimulation(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	run, ok := s.loadRun(w, r, reqID)
	if !ok {
		return
	}
	respondOK(w, reqID, run)
}

func (s *Server) handleDeleteSimulation(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	err := s.store.DeleteRun(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, reqID, http.StatusNotFound, model.NewNotFoundError("simulation", id))
		return
	}
	if err != nil {
		respondInternal(w, reqID, err)
		return
	}
	respondOK(w, reqID, map[string]string{"id": id, "status": "deleted"})
}

// handleSimulationReport renders a stored result in any report format. Colour is
// never applied since the client is not a terminal.
func (s *Server) handleSimulationReport(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())

	format := report.FormatText
	if v := r.URL.Query().Get("format"); v != "" {
		f, err := report.ParseFormat(v)
		if err != nil {
			respondError(w, reqID, http.StatusBadRequest, configAPIError(err))
			return
		}
		format = f
	}

	run, ok := s.loadRun(w, r, reqID)
	if !ok {
		return
	}
	if run.Result == nil {
		respondError(w, reqID, http.StatusNotFound, model.NewNotFoundError("result of simulation", run.ID))
		return
	}

	var buf bytes.Buffer
	if err := report.Write(&buf, run.Result, format, report.Options{Title: run.Name}); err != nil {
		respondInternal(w, reqID, err)
		return
	}
	w.Header().Set("Content-Type", contentType(format))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// loadRun fetches the run named by the {id} URL parameter, writing a 404 or 500
// response when it cannot.
func (s *Server) loadRun(w http.ResponseWriter, r *http.Request, reqID string) (*model.Run, bool) {
	id := chi.URLParam(r, "id")
	run, err := s.store.GetRun(r.Context(), id)
	if err != nil {
		respondInternal(w, reqID, err)
		return nil, false
	}
	if run == nil {
		respondError(w, reqID, http.StatusNotFound, model.NewNotFoundError("simulation", id))
		return nil, false
	}
	return run, true
}

func contentType(f report.Format) string {
	switch f {
	case report.FormatJSON:
		return "application/json"
	case report.FormatYAML:
		return "application/yaml"
	case report.FormatCSV:
		return "text/csv; charset=utf-8"
	}
	return "text/plain; charset=utf-8"
}
