package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"agile-board-go/internal/domain/fault"
	projectdomain "agile-board-go/internal/domain/project"
	releasedomain "agile-board-go/internal/domain/release"
	storydomain "agile-board-go/internal/domain/story"
	userdomain "agile-board-go/internal/domain/user"
)

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorEnvelope{Error: errorBody{Code: code, Message: message}})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func decodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// respondError translates domain errors into the wire envelope and logs
// them with the business/internal split. Handlers add their own cases
// before falling through to this.
func (h *Handlers) respondError(w http.ResponseWriter, op string, err error, args ...any) {
	var validation *fault.ValidationError
	switch {
	case errors.As(err, &validation):
		h.log.BusinessError(op+": validation failed", err, args...)
		writeError(w, http.StatusBadRequest, "invalid_request", validation.Error())
	case errors.Is(err, fault.ErrAccessDenied):
		h.log.BusinessError(op+": access denied", err, args...)
		writeError(w, http.StatusForbidden, "access_denied", "access denied")
	case errors.Is(err, userdomain.ErrNotFound):
		h.log.BusinessError(op+": user not found", err, args...)
		writeError(w, http.StatusNotFound, "user_not_found", "user not found")
	case errors.Is(err, projectdomain.ErrNotFound):
		h.log.BusinessError(op+": project not found", err, args...)
		writeError(w, http.StatusNotFound, "project_not_found", "project not found")
	case errors.Is(err, projectdomain.ErrCodeNotFound):
		h.log.BusinessError(op+": project code not found", err, args...)
		writeError(w, http.StatusNotFound, "project_code_not_found", "project code not found")
	case errors.Is(err, storydomain.ErrNotFound):
		h.log.BusinessError(op+": user story not found", err, args...)
		writeError(w, http.StatusNotFound, "story_not_found", "user story not found")
	case errors.Is(err, releasedomain.ErrNotFound):
		h.log.BusinessError(op+": release plan not found", err, args...)
		writeError(w, http.StatusNotFound, "release_plan_not_found", "release plan not found")
	case errors.Is(err, userdomain.ErrUsernameTaken):
		h.log.BusinessError(op+": username taken", err, args...)
		writeError(w, http.StatusConflict, "username_taken", "username already taken")
	case errors.Is(err, userdomain.ErrEmailTaken):
		h.log.BusinessError(op+": email taken", err, args...)
		writeError(w, http.StatusConflict, "email_taken", "email already taken")
	case errors.Is(err, userdomain.ErrInvalidCredentials):
		h.log.BusinessError(op+": invalid credentials", err, args...)
		writeError(w, http.StatusUnauthorized, "invalid_credentials", "invalid username or password")
	case errors.Is(err, userdomain.ErrInactive):
		h.log.BusinessError(op+": account inactive", err, args...)
		writeError(w, http.StatusForbidden, "account_inactive", "account is deactivated")
	case errors.Is(err, storydomain.ErrExporterDisabled):
		h.log.BusinessError(op+": exporter disabled", err, args...)
		writeError(w, http.StatusServiceUnavailable, "exporter_disabled", "issue tracker export is not configured")
	default:
		h.log.InternalError(op+": failed", err, args...)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
	}
}
