package handler

import (
	"net/http"

	roledomain "agile-board-go/internal/domain/role"
	userdomain "agile-board-go/internal/domain/user"
	"agile-board-go/internal/transport/httpserver/middleware"
)

type updateProfileRequest struct {
	FullName *string `json:"full_name"`
	Email    *string `json:"email"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
}

type replaceRolesRequest struct {
	Roles []string `json:"roles" validate:"required,min=1"`
}

func (h *Handlers) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	var req updateProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	updated, err := h.Users.UpdateProfile(r.Context(), user.Username, userdomain.ProfileUpdate{
		FullName: req.FullName,
		Email:    req.Email,
	})
	if err != nil {
		h.respondError(w, "users.update_profile", err, "username", user.Username)
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(updated))
}

func (h *Handlers) ChangePassword(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	var req changePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}
	if message, ok := validateStruct(req); !ok {
		writeError(w, http.StatusBadRequest, "invalid_request", message)
		return
	}

	if err := h.Users.ChangePassword(r.Context(), user.Username, req.CurrentPassword, req.NewPassword); err != nil {
		h.respondError(w, "users.change_password", err, "username", user.Username)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListUsers is administrator only; the service enforces it.
func (h *Handlers) ListUsers(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	accounts, err := h.Users.List(r.Context(), user.Username)
	if err != nil {
		h.respondError(w, "users.list", err, "caller", user.Username)
		return
	}

	response := make([]userResponse, 0, len(accounts))
	for i := range accounts {
		response = append(response, toUserResponse(&accounts[i]))
	}
	writeJSON(w, http.StatusOK, response)
}

func (h *Handlers) GetUser(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.UserFromContext(r.Context()); !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	userID, err := uintParam(r, "user_id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	account, err := h.Users.GetByID(r.Context(), userID)
	if err != nil {
		h.respondError(w, "users.get", err, "user_id", userID)
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(account))
}

func (h *Handlers) ReplaceUserRoles(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	userID, err := uintParam(r, "user_id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	var req replaceRolesRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}
	if message, ok := validateStruct(req); !ok {
		writeError(w, http.StatusBadRequest, "invalid_request", message)
		return
	}

	roles := make([]roledomain.Role, 0, len(req.Roles))
	for _, value := range req.Roles {
		roles = append(roles, roledomain.Role(value))
	}

	updated, err := h.Users.ReplaceSystemRoles(r.Context(), user.Username, userID, roles)
	if err != nil {
		h.respondError(w, "users.replace_roles", err, "caller", user.Username, "user_id", userID)
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(updated))
}

func (h *Handlers) DeactivateUser(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	userID, err := uintParam(r, "user_id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	updated, err := h.Users.Deactivate(r.Context(), user.Username, userID)
	if err != nil {
		h.respondError(w, "users.deactivate", err, "caller", user.Username, "user_id", userID)
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(updated))
}

func (h *Handlers) DeleteUser(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	userID, err := uintParam(r, "user_id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	if err := h.Users.Delete(r.Context(), user.Username, userID); err != nil {
		h.respondError(w, "users.delete", err, "caller", user.Username, "user_id", userID)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
