package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dirseed/dirseed/internal/core"
	"github.com/dirseed/dirseed/internal/loader"
	"github.com/dirseed/dirseed/internal/logging"
)

// ErrorResponse is the JSON structure for API error responses.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
	Table string `json:"table,omitempty"`
}

// tableStatus describes one table's current loader applicability.
type tableStatus struct {
	Table    string   `json:"table"`
	Columns  []string `json:"columns"`
	HasModel bool     `json:"hasModel"`
	Strategy string   `json:"strategy,omitempty"`
}

// handleHealth responds 200 while the process is up.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReload runs a full load and reports the per-table outcome. The
// run is atomic: a failure response means nothing was committed.
func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	result, err := s.service.Load(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// handleTables reports which strategy currently validates per table.
func (s *Server) handleTables(w http.ResponseWriter, r *http.Request) {
	catalog := s.service.Catalog()

	var statuses []tableStatus
	for _, name := range catalog.Names() {
		table, _ := catalog.Table(name)
		_, hasModel := core.Get(name)
		strategy, _ := s.service.StrategyFor(name)
		statuses = append(statuses, tableStatus{
			Table:    name,
			Columns:  table.ColumnNames(),
			HasModel: hasModel,
			Strategy: strategy,
		})
	}
	respondJSON(w, http.StatusOK, statuses)
}

// respondError logs the technical error and writes a JSON error body
// with a status derived from the load error kind.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	resp := ErrorResponse{Error: err.Error()}

	if kind, ok := loader.KindOf(err); ok {
		resp.Kind = kind.String()
		switch kind {
		case loader.KindPersistenceConflict:
			status = http.StatusConflict
		default:
			// Data and configuration problems are the operator's to fix.
			status = http.StatusUnprocessableEntity
		}
	}
	var le *loader.Error
	if errors.As(err, &le) {
		resp.Table = le.Table
	}

	logging.FromContext(r.Context()).Error("reload failed",
		"path", r.URL.Path,
		"status", status,
		"error", err.Error(),
	)
	respondJSON(w, status, resp)
}

// respondJSON writes v as a JSON response body.
func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
