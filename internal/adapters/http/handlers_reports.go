package web

import (
	"bytes"
	"fmt"
	"net/http"

	"gymdesk/internal/application/orchestrators"
	"gymdesk/internal/application/projections"
	domainPerformance "gymdesk/internal/domain/performance"
)

// handleDashboard handles GET /api/reports/dashboard?year=&month=
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	year, err := intParam(q, "year")
	if err != nil {
		writeError(w, err)
		return
	}
	month, err := intParam(q, "month")
	if err != nil {
		writeError(w, err)
		return
	}
	res, err := projections.QueryDashboard(r.Context(), projections.DashboardQuery{
		Year: year, Month: month, Now: s.deps.Now(),
	}, projections.DashboardDeps{
		LeadStore:       s.deps.Stores.LeadStore,
		MembershipStore: s.deps.Stores.MembershipStore,
		TrainerStore:    s.deps.Stores.TrainerStore,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) monthlyPerformance(r *http.Request) (domainPerformance.Monthly, error) {
	year, err := pathInt(r, "year")
	if err != nil {
		return domainPerformance.Monthly{}, err
	}
	month, err := pathInt(r, "month")
	if err != nil {
		return domainPerformance.Monthly{}, err
	}
	return projections.QueryMonthlyPerformance(r.Context(), projections.PerformanceQuery{
		Year: year, Month: month, Now: s.deps.Now(),
	}, projections.PerformanceDeps{
		LeadStore:        s.deps.Stores.LeadStore,
		PerformanceStore: s.deps.Stores.PerformanceStore,
	})
}

// handlePerformance handles GET /api/performance/{year}/{month}
func (s *Server) handlePerformance(w http.ResponseWriter, r *http.Request) {
	m, err := s.monthlyPerformance(r)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// handleExportPerformance handles GET /api/performance/{year}/{month}/export.csv
func (s *Server) handleExportPerformance(w http.ResponseWriter, r *http.Request) {
	m, err := s.monthlyPerformance(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var buf bytes.Buffer
	if err := projections.WritePerformanceCSV(&buf, m); err != nil {
		internalError(w, err)
		return
	}
	writeCSVHeaders(w, fmt.Sprintf("performance-%04d-%02d.csv", m.Year, m.Month))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

type targetRequest struct {
	Target *float64 `json:"target"`
}

// handleSetPerformanceTarget handles PUT /api/performance/{year}/{month} {target} (admin)
func (s *Server) handleSetPerformanceTarget(w http.ResponseWriter, r *http.Request) {
	year, err := pathInt(r, "year")
	if err != nil {
		writeError(w, err)
		return
	}
	month, err := pathInt(r, "month")
	if err != nil {
		writeError(w, err)
		return
	}
	var req targetRequest
	if err := strictDecode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Target == nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "target is required", Field: "target"})
		return
	}
	if _, err := orchestrators.ExecuteSetPerformanceTarget(r.Context(), orchestrators.SetPerformanceTargetInput{
		Year: year, Month: month, Target: *req.Target,
	}, orchestrators.SetPerformanceTargetDeps{
		PerformanceStore: s.deps.Stores.PerformanceStore,
		Now:              s.deps.Now,
	}); err != nil {
		writeError(w, err)
		return
	}
	s.handlePerformance(w, r)
}
