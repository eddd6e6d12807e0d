// Package ui serves a read-only HTML dashboard over the stored simulation runs.
package ui

import (
	"bytes"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/me/schedsim/internal/logging"
	"github.com/me/schedsim/internal/store"
	"github.com/me/schedsim/pkg/model"
)

// UI handles the web user interface.
type UI struct {
	store     store.Store
	logger    *slog.Logger
	startTime time.Time
}

// New creates a new UI handler.
func New(st store.Store, logger *slog.Logger) *UI {
	return &UI{
		store:     st,
		logger:    logging.Component(logger, "ui"),
		startTime: time.Now(),
	}
}

// RegisterRoutes registers all UI routes on the given router.
func (ui *UI) RegisterRoutes(r chi.Router) {
	r.Get("/", ui.HandleDashboard)
	r.Get("/simulations/{id}", ui.HandleSimulationDetail)
}

// HandleDashboard renders status counts and the run list.
func (ui *UI) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	opts := ui.parseListOptions(r)

	runs, total, err := ui.store.ListRuns(r.Context(), opts)
	if err != nil {
		ui.renderError(w, "Failed to load simulations", err)
		return
	}

	stats := map[string]int{}
	for _, run := range runs {
		stats[run.Status.String()]++
	}

	data := map[string]any{
		"Title":      "Simulations - schedsim",
		"Runs":       runs,
		"Total":      total,
		"Stats":      stats,
		"Algorithm":  opts.Algorithm,
		"Algorithms": model.Algorithms,
		"Pagination": ui.buildPagination(opts, total),
		"Uptime":     time.Since(ui.startTime).Round(time.Second).String(),
	}
	ui.render(w, http.StatusOK, "dashboard", data)
}

// HandleSimulationDetail renders one run with its timeline and statistics.
func (ui *UI) HandleSimulationDetail(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	run, err := ui.store.GetRun(r.Context(), id)
	if err != nil {
		ui.renderError(w, "Failed to load simulation", err)
		return
	}
	if run == nil {
		ui.renderNotFound(w, "Simulation "+id+" not found")
		return
	}

	title := run.ID
	if run.Name != "" {
		title = run.Name
	}
	data := map[string]any{
		"Title":   title + " - schedsim",
		"Run":     run,
		"Columns": processColumns,
	}
	if run.Result != nil {
		data["CPURows"] = cpuRows(run.Result.Timeline, run.Result.CPUs)
		data["Ticks"] = len(run.Result.Timeline)
	}
	ui.render(w, http.StatusOK, "simulations/detail", data)
}

var processColumns = []string{"PID", "Arrival", "Burst", "Priority", "Start", "Finish", "Turnaround", "Waiting", "Response"}

// cpuRows transposes the tick-major timeline into one row per CPU.
func cpuRows(tl model.Timeline, cpus int) [][]int {
	rows := make([][]int, cpus)
	for c := range rows {
		rows[c] = make([]int, len(tl))
		for t, tick := range tl {
			rows[c][t] = model.IdleSlot
			if c < len(tick) {
				rows[c][t] = tick[c]
			}
		}
	}
	return rows
}

func (ui *UI) parseListOptions(r *http.Request) model.ListOptions {
	opts := model.DefaultListOptions()

	if limit := r.URL.Query().Get("limit"); limit != "" {
		if n, err := strconv.Atoi(limit); err == nil && n > 0 && n <= 100 {
			opts.Limit = n
		}
	}

	if offset := r.URL.Query().Get("offset"); offset != "" {
		if n, err := strconv.Atoi(offset); err == nil && n >= 0 {
			opts.Offset = n
		}
	}

	if alg := r.URL.Query().Get("algorithm"); alg != "" {
		if a, err := model.ParseAlgorithm(alg); err == nil {
			opts.Algorithm = a.String()
		}
	}

	return opts
}

func (ui *UI) buildPagination(opts model.ListOptions, total int) map[string]any {
	return map[string]any{
		"Total":      total,
		"Limit":      opts.Limit,
		"Offset":     opts.Offset,
		"HasMore":    opts.Offset+opts.Limit < total,
		"HasPrev":    opts.Offset > 0,
		"NextOffset": opts.Offset + opts.Limit,
		"PrevOffset": max(0, opts.Offset-opts.Limit),
	}
}

func (ui *UI) render(w http.ResponseWriter, status int, template string, data map[string]any) {
	var buf bytes.Buffer
	if err := renderTemplate(&buf, template, data); err != nil {
		ui.logger.Error("template render failed", "template", template, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

func (ui *UI) renderError(w http.ResponseWriter, message string, err error) {
	ui.logger.Error(message, "error", err)
	ui.render(w, http.StatusInternalServerError, "error", map[string]any{
		"Title":   "Error - schedsim",
		"Message": message,
	})
}

func (ui *UI) renderNotFound(w http.ResponseWriter, message string) {
	ui.render(w, http.StatusNotFound, "error", map[string]any{
		"Title":   "Not Found - schedsim",
		"Message": message,
	})
}
