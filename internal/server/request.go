package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/me/schedsim/internal/scheduler"
	"github.com/me/schedsim/internal/workload"
	"github.com/me/schedsim/pkg/model"
)

// maxBodyBytes bounds request bodies; workloads are small text or JSON lists.
const maxBodyBytes = 4 << 20

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) *model.APIError {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return model.NewValidationError("invalid JSON: " + err.Error())
	}
	return nil
}

// requestSpecs resolves the workload of a request. Structured processes are
// validated strictly; workload text follows the file loader and skips bad lines.
func (s *Server) requestSpecs(processes []model.ProcessSpec, text string) ([]model.ProcessSpec, *model.APIError) {
	if strings.TrimSpace(text) != "" {
		if len(processes) > 0 {
			return nil, model.NewValidationError("processes and workload are mutually exclusive")
		}
		specs, err := workload.Parse(strings.NewReader(text), s.logger)
		if errors.Is(err, workload.ErrEmpty) {
			return nil, model.NewValidationError("workload has no valid process records",
				model.FieldError{Field: "workload", Message: err.Error()})
		}
		if err != nil {
			return nil, model.NewValidationError(err.Error())
		}
		return specs, nil
	}

	if len(processes) == 0 {
		return nil, model.NewValidationError("processes or workload is required")
	}
	var details []model.FieldError
	for i, p := range processes {
		var apiErr *model.APIError
		if err := p.Validate(); errors.As(err, &apiErr) {
			for _, d := range apiErr.Details {
				d.Path = fmt.Sprintf("processes[%d].%s", i, d.Field)
				details = append(details, d)
			}
		}
	}
	if len(details) > 0 {
		return nil, model.NewValidationError("invalid process records", details...)
	}
	return processes, nil
}

// schedulerConfig normalizes request settings into a scheduler.Config.
func schedulerConfig(alg, order string, cpus, quantum, maxTicks int) (scheduler.Config, *model.APIError) {
	cfg, err := scheduler.Config{
		Algorithm:     model.Algorithm(alg),
		CPUs:          cpus,
		Quantum:       quantum,
		PriorityOrder: model.PriorityOrder(order),
		MaxTicks:      maxTicks,
	}.Normalize()
	if err != nil {
		return cfg, configAPIError(err)
	}
	return cfg, nil
}

// checkLimits rejects work the server will not simulate within one request.
// Totals stop accumulating once past the limit, so they cannot overflow.
func (s *Server) checkLimits(specs []model.ProcessSpec, cfg scheduler.Config) *model.APIError {
	var details []model.FieldError
	if limit := s.config.MaxCPUs; limit > 0 && cfg.CPUs > limit {
		details = append(details, model.FieldError{Field: "cpus", Path: "cpus",
			Message: fmt.Sprintf("must be at most %d", limit)})
	}
	if limit := s.config.MaxTicks; limit > 0 {
		if cfg.MaxTicks > limit {
			details = append(details, model.FieldError{Field: "max_ticks", Path: "max_ticks",
				Message: fmt.Sprintf("must be at most %d", limit)})
		}
		total := 0
		for i, p := range specs {
			if p.Arrival > limit {
				details = append(details, model.FieldError{Field: "arrival", Path: fmt.Sprintf("processes[%d].arrival", i),
					Message: fmt.Sprintf("must be at most %d", limit)})
			}
			if total <= limit {
				total += min(p.Burst, limit+1)
			}
		}
		if total > limit {
			details = append(details, model.FieldError{Field: "processes", Path: "processes",
				Message: fmt.Sprintf("total burst must be at most %d ticks", limit)})
		}
	}
	if len(details) > 0 {
		return model.NewValidationError("request exceeds server limits", details...)
	}
	return nil
}

func configAPIError(err error) *model.APIError {
	var ce *model.ConfigError
	if errors.As(err, &ce) {
		return model.NewValidationError(err.Error(), model.FieldError{Field: ce.Field, Message: ce.Message})
	}
	return model.NewValidationError(err.Error())
}

// listOptions reads limit, offset and algorithm from the query string.
func listOptions(r *http.Request) (model.ListOptions, *model.APIError) {
	opts := model.DefaultListOptions()
	q := r.URL.Query()
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return opts, model.NewValidationError("invalid limit", model.FieldError{Field: "limit", Message: "must be an integer"})
		}
		opts.Limit = n
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return opts, model.NewValidationError("invalid offset", model.FieldError{Field: "offset", Message: "must be an integer"})
		}
		opts.Offset = n
	}
	if v := q.Get("algorithm"); v != "" {
		alg, err := model.ParseAlgorithm(v)
		if err != nil {
			return opts, configAPIError(err)
		}
		opts.Algorithm = alg.String()
	}
	opts.Clamp()
	return opts, nil
}
