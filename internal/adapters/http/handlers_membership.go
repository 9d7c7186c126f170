package web

import (
	"net/http"

	"gymdesk/internal/adapters/http/middleware"
	"gymdesk/internal/application/listutil"
	"gymdesk/internal/application/orchestrators"
	"gymdesk/internal/application/projections"
)

type createMembershipRequest struct {
	Name          string `json:"name"`
	Phone         string `json:"phone"`
	Email         string `json:"email"`
	Category      string `json:"category"`
	Label         string `json:"label"`
	Price         any    `json:"price"`
	Original      any    `json:"original"`
	Tag           string `json:"tag"`
	PreferredDate string `json:"preferredDate"`
	PaymentMode   string `json:"paymentMode"`
	Remarks       string `json:"remarks"`
}

func (s *Server) membershipDeps() orchestrators.MembershipDeps {
	return orchestrators.MembershipDeps{
		MembershipStore: s.deps.Stores.MembershipStore,
		LeadStore:       s.deps.Stores.LeadStore,
		GenerateID:      s.deps.GenerateID,
		Now:             s.deps.Now,
	}
}

func (s *Server) membershipQueryDeps() projections.MembershipDeps {
	return projections.MembershipDeps{MembershipStore: s.deps.Stores.MembershipStore}
}

// handleListMemberships handles GET /api/memberships?category=
func (s *Server) handleListMemberships(w http.ResponseWriter, r *http.Request) {
	list, err := projections.QueryListMemberships(r.Context(), projections.ListMembershipsQuery{
		Category: r.URL.Query().Get("category"),
	}, s.membershipQueryDeps())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// handleCreateMembership handles POST /api/memberships
func (s *Server) handleCreateMembership(w http.ResponseWriter, r *http.Request) {
	var req createMembershipRequest
	if err := strictDecode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	m, err := orchestrators.ExecuteCreateMembership(r.Context(), orchestrators.CreateMembershipInput{
		Name:          req.Name,
		Phone:         req.Phone,
		Email:         req.Email,
		Category:      req.Category,
		Label:         req.Label,
		Price:         req.Price,
		Original:      req.Original,
		Tag:           req.Tag,
		PreferredDate: req.PreferredDate,
		PaymentMode:   req.PaymentMode,
		Remarks:       req.Remarks,
	}, s.membershipDeps())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

// handleUpdateMembership handles PATCH /api/memberships/{id}
// Keys outside the mutable whitelist are ignored rather than rejected.
func (s *Server) handleUpdateMembership(w http.ResponseWriter, r *http.Request) {
	fields, err := looseDecode(w, r)
	if err != nil {
		writeError(w, err)
		return
	}
	res, err := orchestrators.ExecuteUpdateMembership(r.Context(), orchestrators.UpdateMembershipInput{
		ID:     r.PathValue("id"),
		Fields: fields,
	}, s.membershipDeps())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"membership": res.Membership, "changed": res.Changed})
}

// handleDeleteMembership handles DELETE /api/memberships/{id}
func (s *Server) handleDeleteMembership(w http.ResponseWriter, r *http.Request) {
	err := orchestrators.ExecuteDeleteMembership(r.Context(), orchestrators.DeleteMembershipInput{
		ID: r.PathValue("id"),
	}, s.membershipDeps())
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleMembershipHistory handles GET /api/memberships/history?limit=&offset=
func (s *Server) handleMembershipHistory(w http.ResponseWriter, r *http.Request) {
	limit, offset := listutil.ParseLimit(r.URL.Query())
	entries, err := projections.QueryMembershipHistory(r.Context(), projections.MembershipHistoryQuery{
		Limit: limit, Offset: offset,
	}, s.membershipQueryDeps())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// handleMembershipHistoryForID handles GET /api/memberships/{id}/history
func (s *Server) handleMembershipHistoryForID(w http.ResponseWriter, r *http.Request) {
	limit, offset := listutil.ParseLimit(r.URL.Query())
	entries, err := projections.QueryMembershipHistoryForID(r.Context(), projections.MembershipHistoryQuery{
		ID: r.PathValue("id"), Limit: limit, Offset: offset,
	}, s.membershipQueryDeps())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// handleMembershipHistoryByPhone handles GET /api/memberships/history/by-phone?phone=
func (s *Server) handleMembershipHistoryByPhone(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, offset := listutil.ParseLimit(q)
	entries, err := projections.QueryMembershipHistoryForPhone(r.Context(), projections.MembershipHistoryQuery{
		Phone: q.Get("phone"), Limit: limit, Offset: offset,
	}, s.membershipQueryDeps())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// handleClearMembershipHistory handles DELETE /api/memberships/history (admin)
func (s *Server) handleClearMembershipHistory(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFromContext(r.Context())
	n, err := orchestrators.ExecuteClearMembershipHistory(r.Context(), orchestrators.ClearMembershipHistoryInput{
		AdminAccountID: claims.AccountID,
	}, s.membershipDeps())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"removed": n})
}
