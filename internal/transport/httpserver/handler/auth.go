package handler

import (
	"net/http"
	"strings"
	"time"

	roledomain "agile-board-go/internal/domain/role"
	userdomain "agile-board-go/internal/domain/user"
	"agile-board-go/internal/transport/httpserver/middleware"
)

type registerRequest struct {
	Username    string `json:"username" validate:"required,min=3,max=50"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8"`
	FullName    string `json:"full_name" validate:"max=100"`
	Role        string `json:"role" validate:"required"`
	ProjectCode string `json:"project_code"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type authResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

type registerResponse struct {
	Token            string       `json:"token"`
	User             userResponse `json:"user"`
	JoinedProjectKey string       `json:"joined_project_key,omitempty"`
}

// Register creates the account and, when an invite code was supplied,
// joins the new user into the matching project with the selected role.
func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}
	if message, ok := validateStruct(req); !ok {
		writeError(w, http.StatusBadRequest, "invalid_request", message)
		return
	}

	selected, err := roledomain.Parse(req.Role)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unknown role")
		return
	}

	created, err := h.Users.Register(r.Context(), userdomain.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
		Role:     selected,
	})
	if err != nil {
		h.respondError(w, "auth.register", err, "username", req.Username)
		return
	}

	response := registerResponse{User: toUserResponse(created)}

	if code := strings.TrimSpace(req.ProjectCode); code != "" {
		joined, err := h.Projects.JoinByCode(r.Context(), created.ID, code, selected)
		if err != nil {
			h.respondError(w, "auth.register_join", err, "username", created.Username, "code", code)
			return
		}
		response.JoinedProjectKey = joined.Key
	}

	token, err := h.tokens.Issue(created.ID, created.Username)
	if err != nil {
		h.log.InternalError("auth.register: issue token failed", err, "username", created.Username)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}
	response.Token = token

	writeJSON(w, http.StatusCreated, response)
}

func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}
	if message, ok := validateStruct(req); !ok {
		writeError(w, http.StatusBadRequest, "invalid_request", message)
		return
	}

	account, err := h.Users.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		h.respondError(w, "auth.login", err, "username", req.Username)
		return
	}

	token, err := h.tokens.Issue(account.ID, account.Username)
	if err != nil {
		h.log.InternalError("auth.login: issue token failed", err, "username", account.Username)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	writeJSON(w, http.StatusOK, authResponse{Token: token, User: toUserResponse(account)})
}

func (h *Handlers) AuthMe(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	account, err := h.Users.GetByUsername(r.Context(), user.Username)
	if err != nil {
		h.respondError(w, "auth.me", err, "username", user.Username)
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(account))
}

type userResponse struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Active    bool      `json:"active"`
	Roles     []string  `json:"roles"`
	CreatedAt time.Time `json:"created_at"`
}

func toUserResponse(u *userdomain.User) userResponse {
	roles := make([]string, 0, len(u.Roles))
	for _, r := range u.RoleList() {
		roles = append(roles, r.String())
	}
	return userResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FullName:  u.FullName,
		Active:    u.Active,
		Roles:     roles,
		CreatedAt: u.CreatedAt,
	}
}
