package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/zachatkinson/drivehr-netlify-sync-sub000/internal/jobs"
	"github.com/zachatkinson/drivehr-netlify-sync-sub000/internal/observability"
)

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		respondError(w, http.StatusServiceUnavailable, "Persistence is not configured")
		return
	}

	limit, offset := parsePagination(r, 20)
	companyID := r.URL.Query().Get("company")

	items, err := s.store.GetJobs(r.Context(), companyID, limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch jobs: "+err.Error())
		return
	}
	if items == nil {
		items = []jobs.Job{}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"items":  items,
		"limit":  limit,
		"offset": offset,
	})
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		respondError(w, http.StatusServiceUnavailable, "Persistence is not configured")
		return
	}

	limit, offset := parsePagination(r, 20)
	runs, err := s.store.ListSyncRuns(r.Context(), limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch sync runs: "+err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"items":  runs,
		"limit":  limit,
		"offset": offset,
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	var stats *observability.Stats
	if s.sync != nil {
		stats = s.sync.Stats()
	}
	respondJSON(w, http.StatusOK, stats.Snapshot())
}

type syncRequest struct {
	CompanyID string `json:"company_id"`
}

// handleSync triggers an on-demand fetch for one configured company and
// returns the fetch result inline.
func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	var req syncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.CompanyID == "" {
		respondError(w, http.StatusBadRequest, "company_id is required")
		return
	}

	target, ok := s.targets[req.CompanyID]
	if !ok {
		respondError(w, http.StatusNotFound, "Unknown company: "+req.CompanyID)
		return
	}

	result := s.sync.SyncTarget(r.Context(), target)
	respondJSON(w, http.StatusOK, result)
}

func parsePagination(r *http.Request, defaultLimit int) (int, int) {
	q := r.URL.Query()
	limit := defaultLimit
	offset := 0

	if v := q.Get("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}

	if v := q.Get("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			offset = parsed
		}
	}

	if limit <= 0 {
		limit = defaultLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
