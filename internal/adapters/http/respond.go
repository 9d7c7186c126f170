package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"gymdesk/internal/adapters/storage"
	"gymdesk/internal/application/orchestrators"
	"gymdesk/internal/auth"
	"gymdesk/internal/domain/attendance"
	"gymdesk/internal/domain/otp"
	"gymdesk/internal/domain/validate"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

type errorBody struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("http_event", "event", "encode_failed", "error", err)
	}
}

// internalError logs the real error and returns a generic message to the client.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal server error"})
}

// writeError maps domain and storage errors onto HTTP statuses.
// Anything unrecognised is a 500 with the detail kept in the server log.
func writeError(w http.ResponseWriter, err error) {
	var ve *validate.Error
	var ie *orchestrators.ImportLeadsValidationError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: ve.Message, Field: ve.Field})
	case errors.As(err, &ie):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: ie.Message})
	case errors.Is(err, storage.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: "not found"})
	case errors.Is(err, storage.ErrConflict):
		writeJSON(w, http.StatusConflict, errorBody{Error: "a record with the same phone or email already exists"})
	case errors.Is(err, orchestrators.ErrEmailAlreadyExists),
		errors.Is(err, attendance.ErrMembershipExpired):
		writeJSON(w, http.StatusConflict, errorBody{Error: err.Error()})
	case errors.Is(err, orchestrators.ErrInvalidCredentials),
		errors.Is(err, orchestrators.ErrCurrentPasswordWrong),
		errors.Is(err, auth.ErrInvalidToken):
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: err.Error()})
	case errors.Is(err, orchestrators.ErrAccountLocked):
		writeJSON(w, http.StatusLocked, errorBody{Error: err.Error()})
	case errors.Is(err, orchestrators.ErrNewPasswordSame):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error(), Field: "newPassword"})
	case errors.Is(err, otp.ErrMismatch), errors.Is(err, otp.ErrExpired):
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: err.Error()})
	case errors.Is(err, otp.ErrNoSession), errors.Is(err, otp.ErrAlreadyVerified):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
	case errors.Is(err, otp.ErrTooManyAttempts):
		writeJSON(w, http.StatusTooManyRequests, errorBody{Error: err.Error()})
	case errors.Is(err, orchestrators.ErrOTPDeliveryFailed):
		writeJSON(w, http.StatusBadGateway, errorBody{Error: err.Error()})
	default:
		internalError(w, err)
	}
}

// strictDecode decodes a JSON body, rejecting unknown fields and trailing data.
func strictDecode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return validate.Field("", "request body is required")
		}
		return validate.Field("", "invalid JSON: "+err.Error())
	}
	if dec.More() {
		return validate.Field("", "invalid JSON: trailing data")
	}
	return nil
}

// looseDecode decodes a JSON object into a map; unknown keys are the caller's concern.
func looseDecode(w http.ResponseWriter, r *http.Request) (map[string]any, error) {
	var fields map[string]any
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&fields); err != nil {
		return nil, validate.Field("", "invalid JSON: "+err.Error())
	}
	if fields == nil {
		return nil, validate.Field("", "request body must be a JSON object")
	}
	return fields, nil
}

// intParam parses an optional whole-number query parameter; absent means 0.
func intParam(q url.Values, name string) (int, error) {
	raw := strings.TrimSpace(q.Get(name))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, validate.Field(name, fmt.Sprintf("%s must be a whole number", name))
	}
	return n, nil
}

// pathInt parses a required whole-number path value.
func pathInt(r *http.Request, name string) (int, error) {
	n, err := strconv.Atoi(r.PathValue(name))
	if err != nil {
		return 0, validate.Field(name, fmt.Sprintf("%s must be a whole number", name))
	}
	return n, nil
}

// boolParam treats "1", "true", "yes" and "on" as true.
func boolParam(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

func writeCSVHeaders(w http.ResponseWriter, filename string) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
}
