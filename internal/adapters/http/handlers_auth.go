package web

import (
	"net/http"

	"github.com/gorilla/csrf"

	"gymdesk/internal/adapters/http/middleware"
	"gymdesk/internal/application/orchestrators"
	"gymdesk/internal/application/projections"
	"gymdesk/internal/auth"
)

func claimsOf(r *http.Request) (*auth.Claims, bool) {
	return middleware.ClaimsFromContext(r.Context())
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// handleLogin handles POST /api/auth/login
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := strictDecode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	result, err := orchestrators.ExecuteLogin(r.Context(), orchestrators.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	}, orchestrators.LoginDeps{
		AccountStore: s.deps.Stores.AccountStore,
		Now:          s.deps.Now,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	token, err := s.deps.Tokens.IssueStaff(result.AccountID, result.Email, result.Role)
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"token": token,
		"role":  result.Role,
		"email": result.Email,
	})
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// handleChangePassword handles POST /api/auth/password for the calling account.
func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsOf(r)
	var req changePasswordRequest
	if err := strictDecode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	err := orchestrators.ExecuteChangePassword(r.Context(), orchestrators.ChangePasswordInput{
		AccountID:       claims.AccountID,
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	}, orchestrators.ChangePasswordDeps{AccountStore: s.deps.Stores.AccountStore})
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type createAccountRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// handleCreateAccount handles POST /api/admin/accounts
func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if err := strictDecode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	id, err := orchestrators.ExecuteCreateAccount(r.Context(), orchestrators.CreateAccountInput{
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	}, orchestrators.CreateAccountDeps{
		AccountStore: s.deps.Stores.AccountStore,
		GenerateID:   s.deps.GenerateID,
		Now:          s.deps.Now,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (s *Server) otpDeps() orchestrators.OTPDeps {
	return orchestrators.OTPDeps{
		OTPStore:     s.deps.Stores.OTPStore,
		Gateway:      s.deps.SMS,
		LeadLookup:   s.deps.Stores.LeadStore,
		IssueToken:   s.deps.Tokens.IssueMember,
		GenerateID:   s.deps.GenerateID,
		GenerateCode: s.deps.GenerateOTPCode,
		Now:          s.deps.Now,
	}
}

type otpRequest struct {
	Phone string `json:"phone"`
	Code  string `json:"code,omitempty"`
}

// handleRequestOTP handles POST /api/auth/otp/request {phone}
func (s *Server) handleRequestOTP(w http.ResponseWriter, r *http.Request) {
	var req otpRequest
	if err := strictDecode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	res, err := orchestrators.ExecuteRequestOTP(r.Context(), orchestrators.RequestOTPInput{Phone: req.Phone}, s.otpDeps())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleVerifyOTP handles POST /api/auth/otp/verify {phone, code}
func (s *Server) handleVerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req otpRequest
	if err := strictDecode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	res, err := orchestrators.ExecuteVerifyOTP(r.Context(), orchestrators.VerifyOTPInput{
		Phone: req.Phone,
		Code:  req.Code,
	}, s.otpDeps())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleMyMembership handles GET /api/me/membership for a member token.
func (s *Server) handleMyMembership(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsOf(r)
	res, err := projections.QueryMyMembership(r.Context(), projections.MyMembershipQuery{
		Phone: claims.Phone,
		Now:   s.deps.Now(),
	}, projections.MyMembershipDeps{
		LeadStore:       s.deps.Stores.LeadStore,
		AttendanceStore: s.deps.Stores.AttendanceStore,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleCSRFToken handles GET /api/csrf for browser form posts.
func (s *Server) handleCSRFToken(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"token": csrf.Token(r)})
}
