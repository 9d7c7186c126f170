package web

import (
	"net/http"
	"time"

	"gymdesk/internal/adapters/http/perf"
	"gymdesk/internal/application/orchestrators"
	"gymdesk/internal/application/projections"
)

// handleHealth handles GET /api/health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"storage": s.opts.StorageBackend,
		"version": s.opts.Version,
		"time":    s.deps.Now().UTC().Format(time.RFC3339),
	})
}

// handleGetBenefits handles GET /api/config/benefits
func (s *Server) handleGetBenefits(w http.ResponseWriter, r *http.Request) {
	res, err := projections.QueryBenefits(r.Context(), s.deps.Stores.SettingsStore)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type benefitsRequest struct {
	Markdown string `json:"markdown"`
}

// handleUpdateBenefits handles PUT /api/config/benefits (admin)
func (s *Server) handleUpdateBenefits(w http.ResponseWriter, r *http.Request) {
	var req benefitsRequest
	if err := strictDecode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	claims, _ := claimsOf(r)
	if _, err := orchestrators.ExecuteUpdateBenefits(r.Context(), orchestrators.UpdateBenefitsInput{
		Markdown:       req.Markdown,
		AdminAccountID: claims.AccountID,
	}, orchestrators.UpdateBenefitsDeps{
		SettingsStore: s.deps.Stores.SettingsStore,
		Now:           s.deps.Now,
	}); err != nil {
		writeError(w, err)
		return
	}
	s.handleGetBenefits(w, r)
}

// handleAdminPerf handles GET /api/admin/perf?minutes=&top=
func (s *Server) handleAdminPerf(w http.ResponseWriter, r *http.Request) {
	if s.deps.Collector == nil {
		writeJSON(w, http.StatusOK, perf.Snapshot{})
		return
	}
	q := r.URL.Query()
	minutes, err := intParam(q, "minutes")
	if err != nil {
		writeError(w, err)
		return
	}
	if minutes <= 0 {
		minutes = 60
	}
	top, err := intParam(q, "top")
	if err != nil {
		writeError(w, err)
		return
	}
	if top <= 0 {
		top = 10
	}
	since := s.deps.Now().Add(-time.Duration(minutes) * time.Minute)
	writeJSON(w, http.StatusOK, s.deps.Collector.Snapshot(since, top))
}
