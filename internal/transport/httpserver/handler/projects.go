package handler

import (
	"net/http"
	"strings"
	"time"

	projectdomain "agile-board-go/internal/domain/project"
	roledomain "agile-board-go/internal/domain/role"
	"agile-board-go/internal/transport/httpserver/middleware"
)

type createProjectMember struct {
	UserID uint   `json:"user_id" validate:"required"`
	Role   string `json:"role" validate:"required"`
}

type createProjectRequest struct {
	Name        string                `json:"name" validate:"required,max=200"`
	Description string                `json:"description"`
	Code        string                `json:"code" validate:"max=50"`
	Members     []createProjectMember `json:"members" validate:"required,min=1,dive"`
}

type joinProjectRequest struct {
	Code string `json:"code" validate:"required"`
	Role string `json:"role" validate:"required"`
}

type memberRoleRequest struct {
	UserID uint   `json:"user_id" validate:"required"`
	Role   string `json:"role" validate:"required"`
}

type replaceMemberRolesRequest struct {
	UserID uint     `json:"user_id" validate:"required"`
	Roles  []string `json:"roles" validate:"required,min=1"`
}

func (h *Handlers) CreateProject(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.UserFromContext(r.Context()); !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	var req createProjectRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}
	if message, ok := validateStruct(req); !ok {
		writeError(w, http.StatusBadRequest, "invalid_request", message)
		return
	}

	members := make([]projectdomain.MemberInput, 0, len(req.Members))
	for _, m := range req.Members {
		members = append(members, projectdomain.MemberInput{UserID: m.UserID, Role: roledomain.Role(m.Role)})
	}

	created, err := h.Projects.Create(r.Context(), projectdomain.CreateInput{
		Name:        req.Name,
		Description: req.Description,
		Code:        req.Code,
		Members:     members,
	})
	if err != nil {
		h.respondError(w, "projects.create", err, "name", req.Name)
		return
	}

	writeJSON(w, http.StatusCreated, toProjectResponse(created))
}

func (h *Handlers) GetProject(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	projectID, err := uintParam(r, "project_id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	result, err := h.Projects.GetByID(r.Context(), user.Username, projectID)
	if err != nil {
		h.respondError(w, "projects.get", err, "caller", user.Username, "project_id", projectID)
		return
	}

	writeJSON(w, http.StatusOK, toProjectResponse(result))
}

func (h *Handlers) GetProjectByKey(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	key := strings.TrimSpace(r.URL.Query().Get("key"))
	if key == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "key is required")
		return
	}

	result, err := h.Projects.GetByKey(r.Context(), user.Username, key)
	if err != nil {
		h.respondError(w, "projects.get_by_key", err, "caller", user.Username, "key", key)
		return
	}

	writeJSON(w, http.StatusOK, toProjectResponse(result))
}

func (h *Handlers) ListProjects(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.UserFromContext(r.Context()); !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	projects, err := h.Projects.List(r.Context())
	if err != nil {
		h.respondError(w, "projects.list", err)
		return
	}

	response := make([]projectResponse, 0, len(projects))
	for i := range projects {
		response = append(response, toProjectResponse(&projects[i]))
	}
	writeJSON(w, http.StatusOK, response)
}

func (h *Handlers) ListProjectMembers(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	projectID, err := uintParam(r, "project_id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	members, err := h.Projects.Members(r.Context(), user.Username, projectID)
	if err != nil {
		h.respondError(w, "projects.list_members", err, "caller", user.Username, "project_id", projectID)
		return
	}

	response := make([]memberResponse, 0, len(members))
	for _, m := range members {
		response = append(response, memberResponse{
			UserID:   m.UserID,
			Username: m.Username,
			FullName: m.FullName,
			Role:     m.Role.String(),
		})
	}
	writeJSON(w, http.StatusOK, response)
}

// JoinProject adds the caller to a project via its invite code.
func (h *Handlers) JoinProject(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	var req joinProjectRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}
	if message, ok := validateStruct(req); !ok {
		writeError(w, http.StatusBadRequest, "invalid_request", message)
		return
	}

	joined, err := h.Projects.JoinByCode(r.Context(), user.ID, req.Code, roledomain.Role(req.Role))
	if err != nil {
		h.respondError(w, "projects.join", err, "caller", user.Username, "code", req.Code)
		return
	}

	writeJSON(w, http.StatusOK, toProjectResponse(joined))
}

func (h *Handlers) AddProjectMemberRole(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	projectID, err := uintParam(r, "project_id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	var req memberRoleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}
	if message, ok := validateStruct(req); !ok {
		writeError(w, http.StatusBadRequest, "invalid_request", message)
		return
	}

	granted, err := h.Projects.AddMemberRole(r.Context(), user.Username, projectID, req.UserID, roledomain.Role(req.Role))
	if err != nil {
		h.respondError(w, "projects.add_member_role", err, "caller", user.Username, "project_id", projectID, "user_id", req.UserID)
		return
	}

	writeJSON(w, http.StatusCreated, memberResponse{
		UserID: granted.UserID,
		Role:   granted.Role.String(),
	})
}

func (h *Handlers) RemoveProjectMemberRole(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	projectID, err := uintParam(r, "project_id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	userID, err := uintParam(r, "user_id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	value := strings.TrimSpace(r.URL.Query().Get("role"))
	if value == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "role is required")
		return
	}
	memberRole, err := roledomain.Parse(value)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unknown role")
		return
	}

	if err := h.Projects.RemoveMemberRole(r.Context(), user.Username, projectID, userID, memberRole); err != nil {
		h.respondError(w, "projects.remove_member_role", err, "caller", user.Username, "project_id", projectID, "user_id", userID)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) ReplaceProjectMemberRoles(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	projectID, err := uintParam(r, "project_id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	var req replaceMemberRolesRequest
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

	if err := h.Projects.ReplaceMemberRoles(r.Context(), user.Username, projectID, req.UserID, roles); err != nil {
		h.respondError(w, "projects.replace_member_roles", err, "caller", user.Username, "project_id", projectID, "user_id", req.UserID)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) RemoveProjectMember(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	projectID, err := uintParam(r, "project_id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	userID, err := uintParam(r, "user_id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	if err := h.Projects.RemoveMember(r.Context(), user.Username, projectID, userID); err != nil {
		h.respondError(w, "projects.remove_member", err, "caller", user.Username, "project_id", projectID, "user_id", userID)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) DeleteProject(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	projectID, err := uintParam(r, "project_id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	if err := h.Projects.Delete(r.Context(), user.Username, projectID); err != nil {
		h.respondError(w, "projects.delete", err, "caller", user.Username, "project_id", projectID)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type projectResponse struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Key         string    `json:"key"`
	Code        string    `json:"code"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
}

type memberResponse struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username,omitempty"`
	FullName string `json:"full_name,omitempty"`
	Role     string `json:"role"`
}

func toProjectResponse(p *projectdomain.Project) projectResponse {
	return projectResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Key:         p.Key,
		Code:        p.Code,
		Active:      p.Active,
		CreatedAt:   p.CreatedAt,
	}
}
