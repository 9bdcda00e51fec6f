package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/scour-hq/scour/pkg/sweep"
)

// sweepResponse is the JSON body of a manual sweep trigger.
type sweepResponse struct {
	RunID         string `json:"run_id"`
	Skipped       bool   `json:"skipped,omitempty"`
	DryRun        bool   `json:"dry_run,omitempty"`
	DataTypes     int    `json:"data_types"`
	TablesSwept   int    `json:"tables_swept"`
	TablesSkipped int    `json:"tables_skipped"`
	StaleRows     int64  `json:"stale_rows"`
	RowsDeleted   int64  `json:"rows_deleted"`
	Failures      int    `json:"failures"`
	DurationMS    int64  `json:"duration_ms"`
}

// catalogStatus summarizes the loaded catalog.
type catalogStatus struct {
	Providers     int       `json:"providers"`
	Agents        int       `json:"agents"`
	CachingAgents int       `json:"caching_agents"`
	LoadedAt      time.Time `json:"loaded_at"`
}

// schedulerStatus summarizes the background scheduler.
type schedulerStatus struct {
	Running   bool       `json:"running"`
	NextSweep *time.Time `json:"next_sweep,omitempty"`
}

// statusResponse is the JSON body of the status endpoint.
type statusResponse struct {
	Catalog   *catalogStatus  `json:"catalog,omitempty"`
	Scheduler schedulerStatus `json:"scheduler"`
}

// handleSweep triggers one sweep run inline and reports its result.
func (s *Server) handleSweep(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.deps.Sweeper == nil {
		writeError(w, http.StatusServiceUnavailable, "sweeper not configured")
		return
	}

	result, err := s.deps.Sweeper.Sweep(r.Context())
	if err != nil {
		if errors.Is(err, sweep.ErrRunInProgress) {
			writeError(w, http.StatusConflict, "a sweep run is already in progress")
			return
		}
		s.logger.Error("manual sweep failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, sweepResponse{
		RunID:         result.RunID,
		Skipped:       result.Skipped,
		DryRun:        result.DryRun,
		DataTypes:     result.DataTypes,
		TablesSwept:   result.TablesSwept,
		TablesSkipped: result.TablesSkipped,
		StaleRows:     result.StaleRows,
		RowsDeleted:   result.RowsDeleted,
		Failures:      result.Failures,
		DurationMS:    result.Duration.Milliseconds(),
	})
}

// handleStatus reports the catalog and scheduler state.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	resp := statusResponse{}

	if s.deps.Registry != nil {
		catalog := s.deps.Registry.Snapshot()
		resp.Catalog = &catalogStatus{
			Providers:     len(catalog.Providers),
			Agents:        catalog.AgentCount(),
			CachingAgents: len(catalog.CachingAgents()),
			LoadedAt:      s.deps.Registry.LoadedAt(),
		}
	}

	if s.deps.Scheduler != nil {
		resp.Scheduler.Running = s.deps.Scheduler.IsRunning()
		resp.Scheduler.NextSweep = s.deps.Scheduler.NextRun(sweep.JobName)
	}

	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
