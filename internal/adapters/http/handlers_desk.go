package web

import (
	"net/http"

	"gymdesk/internal/application/orchestrators"
	"gymdesk/internal/application/projections"
)

type trainerRequest struct {
	Name            *string `json:"name"`
	Specialty       *string `json:"specialty"`
	ExperienceYears *int    `json:"experienceYears"`
	Email           *string `json:"email"`
	Phone           *string `json:"phone"`
}

func (req trainerRequest) input() orchestrators.TrainerInput {
	return orchestrators.TrainerInput{
		Name:            req.Name,
		Specialty:       req.Specialty,
		ExperienceYears: req.ExperienceYears,
		Email:           req.Email,
		Phone:           req.Phone,
	}
}

func (s *Server) trainerDeps() orchestrators.TrainerDeps {
	return orchestrators.TrainerDeps{
		TrainerStore: s.deps.Stores.TrainerStore,
		GenerateID:   s.deps.GenerateID,
		Now:          s.deps.Now,
	}
}

// handleListTrainers handles GET /api/trainers
func (s *Server) handleListTrainers(w http.ResponseWriter, r *http.Request) {
	list, err := projections.QueryListTrainers(r.Context(), s.deps.Stores.TrainerStore)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// handleGetTrainer handles GET /api/trainers/{id}
func (s *Server) handleGetTrainer(w http.ResponseWriter, r *http.Request) {
	t, err := projections.QueryGetTrainer(r.Context(), r.PathValue("id"), s.deps.Stores.TrainerStore)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// handleCreateTrainer handles POST /api/trainers
func (s *Server) handleCreateTrainer(w http.ResponseWriter, r *http.Request) {
	var req trainerRequest
	if err := strictDecode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	t, err := orchestrators.ExecuteCreateTrainer(r.Context(), req.input(), s.trainerDeps())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

// handleUpdateTrainer handles PATCH /api/trainers/{id}
func (s *Server) handleUpdateTrainer(w http.ResponseWriter, r *http.Request) {
	var req trainerRequest
	if err := strictDecode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	t, err := orchestrators.ExecuteUpdateTrainer(r.Context(), r.PathValue("id"), req.input(), s.trainerDeps())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// handleDeleteTrainer handles DELETE /api/trainers/{id}
func (s *Server) handleDeleteTrainer(w http.ResponseWriter, r *http.Request) {
	if err := orchestrators.ExecuteDeleteTrainer(r.Context(), r.PathValue("id"), s.trainerDeps()); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type createPitchRequest struct {
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	Plan      string `json:"plan"`
	Amount    any    `json:"amount"`
	Outcome   string `json:"outcome"`
	PitchedBy string `json:"pitchedBy"`
	Notes     string `json:"notes"`
}

type updatePitchRequest struct {
	Outcome string  `json:"outcome"`
	Notes   *string `json:"notes"`
}

func (s *Server) pitchDeps() orchestrators.PitchDeps {
	return orchestrators.PitchDeps{
		PitchStore: s.deps.Stores.PitchStore,
		LeadLookup: s.deps.Stores.LeadStore,
		GenerateID: s.deps.GenerateID,
		Now:        s.deps.Now,
	}
}

// handleListPitches handles GET /api/pitches?outcome=
func (s *Server) handleListPitches(w http.ResponseWriter, r *http.Request) {
	list, err := projections.QueryListPitches(r.Context(), projections.ListPitchesQuery{
		Outcome: r.URL.Query().Get("outcome"),
	}, s.deps.Stores.PitchStore)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// handleCreatePitch handles POST /api/pitches
// pitchedBy defaults to the caller's email.
func (s *Server) handleCreatePitch(w http.ResponseWriter, r *http.Request) {
	var req createPitchRequest
	if err := strictDecode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.PitchedBy == "" {
		if claims, ok := claimsOf(r); ok {
			req.PitchedBy = claims.Email
		}
	}
	p, err := orchestrators.ExecuteCreatePitch(r.Context(), orchestrators.CreatePitchInput{
		Name:      req.Name,
		Phone:     req.Phone,
		Plan:      req.Plan,
		Amount:    req.Amount,
		Outcome:   req.Outcome,
		PitchedBy: req.PitchedBy,
		Notes:     req.Notes,
	}, s.pitchDeps())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// handleUpdatePitch handles PATCH /api/pitches/{id}
func (s *Server) handleUpdatePitch(w http.ResponseWriter, r *http.Request) {
	var req updatePitchRequest
	if err := strictDecode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	p, err := orchestrators.ExecuteUpdatePitch(r.Context(), orchestrators.UpdatePitchInput{
		ID:      r.PathValue("id"),
		Outcome: req.Outcome,
		Notes:   req.Notes,
	}, s.pitchDeps())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

type checkInRequest struct {
	Phone string `json:"phone"`
}

// handleCheckIn handles POST /api/attendance {phone}
func (s *Server) handleCheckIn(w http.ResponseWriter, r *http.Request) {
	var req checkInRequest
	if err := strictDecode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	a, err := orchestrators.ExecuteCheckInMember(r.Context(), orchestrators.CheckInMemberInput{
		Phone: req.Phone,
	}, orchestrators.CheckInMemberDeps{
		LeadStore:       s.deps.Stores.LeadStore,
		AttendanceStore: s.deps.Stores.AttendanceStore,
		GenerateID:      s.deps.GenerateID,
		Now:             s.deps.Now,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

// handleAttendanceByDate handles GET /api/attendance?date=YYYY-MM-DD (default today)
func (s *Server) handleAttendanceByDate(w http.ResponseWriter, r *http.Request) {
	list, err := projections.QueryAttendanceByDate(r.Context(), projections.AttendanceByDateQuery{
		Date: r.URL.Query().Get("date"),
		Now:  s.deps.Now(),
	}, s.deps.Stores.AttendanceStore)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}
