package web

import (
	"bytes"
	"fmt"
	"net/http"

	"gymdesk/internal/adapters/http/middleware"
	"gymdesk/internal/application/listutil"
	"gymdesk/internal/application/orchestrators"
	"gymdesk/internal/application/projections"
	"gymdesk/internal/domain/validate"
)

// maxImportBytes bounds the multipart CSV upload.
const maxImportBytes = 10 << 20

type leadMembershipRequest struct {
	Plan          string `json:"plan"`
	PlanCategory  string `json:"planCategory"`
	Amount        any    `json:"amount"`
	PaymentMode   string `json:"paymentMode"`
	PreferredDate string `json:"preferredDate"`
	Remarks       string `json:"remarks"`
	StartDate     string `json:"startDate"`
	EndDate       string `json:"endDate"`
	ExpiryDate    string `json:"expiryDate"`
}

type leadRequest struct {
	Name         string                 `json:"name"`
	Phone        string                 `json:"phone"`
	Email        string                 `json:"email"`
	Source       string                 `json:"source"`
	Interest     string                 `json:"interest"`
	Status       string                 `json:"status"`
	FollowUpDate string                 `json:"followUpDate"`
	Notes        string                 `json:"notes"`
	JoinDate     string                 `json:"joinDate"`
	ExpiryDate   string                 `json:"expiryDate"`
	Membership   *leadMembershipRequest `json:"membership"`
}

func (req leadRequest) input() orchestrators.LeadInput {
	in := orchestrators.LeadInput{
		Name:         req.Name,
		Phone:        req.Phone,
		Email:        req.Email,
		Source:       req.Source,
		Interest:     req.Interest,
		Status:       req.Status,
		FollowUpDate: req.FollowUpDate,
		Notes:        req.Notes,
		JoinDate:     req.JoinDate,
		ExpiryDate:   req.ExpiryDate,
	}
	if m := req.Membership; m != nil {
		in.Membership = &orchestrators.LeadMembershipInput{
			Plan:          m.Plan,
			PlanCategory:  m.PlanCategory,
			Amount:        m.Amount,
			PaymentMode:   m.PaymentMode,
			PreferredDate: m.PreferredDate,
			Remarks:       m.Remarks,
			StartDate:     m.StartDate,
			EndDate:       m.EndDate,
			ExpiryDate:    m.ExpiryDate,
		}
	}
	return in
}

func (s *Server) leadDeps() orchestrators.LeadDeps {
	return orchestrators.LeadDeps{
		LeadStore:  s.deps.Stores.LeadStore,
		GenerateID: s.deps.GenerateID,
		Now:        s.deps.Now,
	}
}

func (s *Server) leadQueryDeps() projections.LeadDeps {
	return projections.LeadDeps{LeadStore: s.deps.Stores.LeadStore}
}

// leadFilterKeys are the exact-match filters accepted by the lead list and export.
var leadFilterKeys = []string{"status"}

// handleListLeads handles GET /api/leads?status=&q=&page=&per_page=
func (s *Server) handleListLeads(w http.ResponseWriter, r *http.Request) {
	params := listutil.ParseListParams(r.URL.Query(), leadFilterKeys)
	res, err := projections.QueryListLeads(r.Context(), projections.ListLeadsQuery{
		Status:  params.Filters["status"],
		Search:  params.Search,
		Page:    params.Page,
		PerPage: params.PerPage,
		Now:     s.deps.Now(),
	}, s.leadQueryDeps())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleUpsertLead handles POST and PUT /api/leads.
// POST: 201 when a lead was created, 200 when an existing phone was merged
func (s *Server) handleUpsertLead(w http.ResponseWriter, r *http.Request) {
	var req leadRequest
	if err := strictDecode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	res, err := orchestrators.ExecuteUpsertLead(r.Context(), req.input(), s.leadDeps())
	if err != nil {
		writeError(w, err)
		return
	}
	status := http.StatusOK
	if res.Created {
		status = http.StatusCreated
	}
	writeJSON(w, status, map[string]any{"lead": res.Lead, "created": res.Created})
}

// handleUpdateLead handles PATCH /api/leads/{id}
func (s *Server) handleUpdateLead(w http.ResponseWriter, r *http.Request) {
	var req leadRequest
	if err := strictDecode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	l, err := orchestrators.ExecuteUpdateLead(r.Context(), orchestrators.UpdateLeadInput{
		ID:        r.PathValue("id"),
		LeadInput: req.input(),
	}, s.leadDeps())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

func (s *Server) expiryQuery(r *http.Request) (projections.ExpiryQuery, error) {
	q := r.URL.Query()
	days, err := intParam(q, "days")
	if err != nil {
		return projections.ExpiryQuery{}, err
	}
	year, err := intParam(q, "year")
	if err != nil {
		return projections.ExpiryQuery{}, err
	}
	month, err := intParam(q, "month")
	if err != nil {
		return projections.ExpiryQuery{}, err
	}
	return projections.ExpiryQuery{Days: days, Year: year, Month: month, Now: s.deps.Now()}, nil
}

// handleExpiringSoon handles GET /api/leads/expiring-soon?days=&year=&month=
func (s *Server) handleExpiringSoon(w http.ResponseWriter, r *http.Request) {
	query, err := s.expiryQuery(r)
	if err != nil {
		writeError(w, err)
		return
	}
	leads, err := projections.QueryExpiringSoon(r.Context(), query, s.leadQueryDeps())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, leads)
}

// handleExpired handles GET /api/leads/expired?year=&month=
func (s *Server) handleExpired(w http.ResponseWriter, r *http.Request) {
	query, err := s.expiryQuery(r)
	if err != nil {
		writeError(w, err)
		return
	}
	leads, err := projections.QueryExpired(r.Context(), query, s.leadQueryDeps())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, leads)
}

// handleExportLeads handles GET /api/leads/export.csv?status=&q=
// The CSV is buffered so a store failure still yields a clean JSON error.
func (s *Server) handleExportLeads(w http.ResponseWriter, r *http.Request) {
	filter := listutil.ParseFilterParams(r.URL.Query(), leadFilterKeys)
	now := s.deps.Now()
	var buf bytes.Buffer
	err := projections.QueryExportLeadsCSV(r.Context(), &buf, projections.ExportLeadsQuery{
		Status: filter.Filters["status"],
		Search: filter.Search,
		Now:    now,
	}, s.leadQueryDeps())
	if err != nil {
		writeError(w, err)
		return
	}
	writeCSVHeaders(w, fmt.Sprintf("leads-%s.csv", now.Format("2006-01-02")))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// handleImportLeads handles POST /api/leads/import (multipart, field "file").
// dry_run may be a form field or a query parameter.
func (s *Server) handleImportLeads(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImportBytes)
	if err := r.ParseMultipartForm(maxImportBytes); err != nil {
		writeError(w, validate.Field("file", "expected a multipart upload with a CSV file"))
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, validate.Field("file", "file is required"))
		return
	}
	defer file.Close()

	claims, _ := middleware.ClaimsFromContext(r.Context())
	res, err := orchestrators.ExecuteImportLeads(r.Context(), orchestrators.ImportLeadsInput{
		Reader:         file,
		AdminAccountID: claims.AccountID,
		DryRun:         boolParam(r.FormValue("dry_run")),
	}, s.leadDeps())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type remindersRequest struct {
	Days int `json:"days"`
}

// handleSendReminders handles POST /api/leads/reminders {days}
// An empty body uses the configured reminder window.
func (s *Server) handleSendReminders(w http.ResponseWriter, r *http.Request) {
	req := remindersRequest{}
	if r.ContentLength != 0 {
		if err := strictDecode(w, r, &req); err != nil {
			writeError(w, err)
			return
		}
	}
	if req.Days == 0 {
		req.Days = s.opts.ReminderDays
	}
	res, err := orchestrators.ExecuteSendExpiryReminders(r.Context(), orchestrators.SendExpiryRemindersInput{
		Days: req.Days,
	}, orchestrators.SendExpiryRemindersDeps{
		LeadStore:   s.deps.Stores.LeadStore,
		EmailSender: s.deps.EmailSender,
		Now:         s.deps.Now,
		FromAddress: s.opts.EmailFrom,
		ReplyTo:     s.opts.EmailReplyTo,
		GymName:     s.opts.GymName,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
