package handler

import (
	"net/http"
	"strings"
	"time"

	releasedomain "agile-board-go/internal/domain/release"
	"agile-board-go/internal/transport/httpserver/middleware"
	"github.com/go-chi/chi/v5"
)

type createReleaseRequest struct {
	ProjectID   uint   `json:"project_id" validate:"required"`
	Name        string `json:"name" validate:"required,max=200"`
	Description string `json:"description"`
	Goals       string `json:"goals"`
	StartDate   string `json:"start_date" validate:"required"`
	TargetDate  string `json:"target_date" validate:"required"`
	Status      string `json:"status"`
}

type updateReleaseRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Goals       *string `json:"goals"`
	StartDate   *string `json:"start_date"`
	TargetDate  *string `json:"target_date"`
	Status      *string `json:"status"`
}

type assignStoryRequest struct {
	StoryID uint `json:"story_id" validate:"required"`
}

func (h *Handlers) CreateRelease(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	var req createReleaseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}
	if message, ok := validateStruct(req); !ok {
		writeError(w, http.StatusBadRequest, "invalid_request", message)
		return
	}

	start, err := parseDateRequired(req.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "start_date must be YYYY-MM-DD")
		return
	}
	target, err := parseDateRequired(req.TargetDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "target_date must be YYYY-MM-DD")
		return
	}

	created, err := h.Releases.Create(r.Context(), user.Username, releasedomain.CreateInput{
		ProjectID:   req.ProjectID,
		Name:        req.Name,
		Description: req.Description,
		Goals:       req.Goals,
		StartDate:   start,
		TargetDate:  target,
		Status:      releasedomain.Status(req.Status),
	})
	if err != nil {
		h.respondError(w, "releases.create", err, "caller", user.Username, "project_id", req.ProjectID)
		return
	}

	writeJSON(w, http.StatusCreated, toReleaseResponse(created))
}

func (h *Handlers) GetRelease(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	planID, err := uintParam(r, "release_id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	plan, err := h.Releases.GetByID(r.Context(), user.Username, planID)
	if err != nil {
		h.respondError(w, "releases.get", err, "caller", user.Username, "release_id", planID)
		return
	}

	writeJSON(w, http.StatusOK, toReleaseResponse(plan))
}

func (h *Handlers) GetReleaseByKey(w http.ResponseWriter, r *http.Request) {
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

	plan, err := h.Releases.GetByKey(r.Context(), user.Username, key)
	if err != nil {
		h.respondError(w, "releases.get_by_key", err, "caller", user.Username, "key", key)
		return
	}

	writeJSON(w, http.StatusOK, toReleaseResponse(plan))
}

func (h *Handlers) ListProjectReleases(w http.ResponseWriter, r *http.Request) {
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

	plans, err := h.Releases.ListByProject(r.Context(), user.Username, projectID)
	if err != nil {
		h.respondError(w, "releases.list", err, "caller", user.Username, "project_id", projectID)
		return
	}

	response := make([]releaseResponse, 0, len(plans))
	for i := range plans {
		response = append(response, toReleaseResponse(&plans[i]))
	}
	writeJSON(w, http.StatusOK, response)
}

func (h *Handlers) ListReleasesByStatus(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.UserFromContext(r.Context()); !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	status := strings.TrimSpace(r.URL.Query().Get("status"))
	if status == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "status is required")
		return
	}

	plans, err := h.Releases.ListByStatus(r.Context(), releasedomain.Status(status))
	if err != nil {
		h.respondError(w, "releases.list_by_status", err, "status", status)
		return
	}

	response := make([]releaseResponse, 0, len(plans))
	for i := range plans {
		response = append(response, toReleaseResponse(&plans[i]))
	}
	writeJSON(w, http.StatusOK, response)
}

func (h *Handlers) GetReleaseStoryCount(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	planID, err := uintParam(r, "release_id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	if _, err := h.Releases.GetByID(r.Context(), user.Username, planID); err != nil {
		h.respondError(w, "releases.story_count", err, "caller", user.Username, "release_id", planID)
		return
	}

	count, err := h.Releases.StoryCount(r.Context(), planID)
	if err != nil {
		h.respondError(w, "releases.story_count", err, "release_id", planID)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int64{"story_count": count})
}

func (h *Handlers) UpdateRelease(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	planID, err := uintParam(r, "release_id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	var req updateReleaseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	in := releasedomain.UpdateInput{
		Name:        req.Name,
		Description: req.Description,
		Goals:       req.Goals,
	}
	if req.StartDate != nil {
		start, err := parseDateParam(*req.StartDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", "start_date must be YYYY-MM-DD")
			return
		}
		in.StartDate = start
	}
	if req.TargetDate != nil {
		target, err := parseDateParam(*req.TargetDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", "target_date must be YYYY-MM-DD")
			return
		}
		in.TargetDate = target
	}
	if req.Status != nil {
		status := releasedomain.Status(*req.Status)
		in.Status = &status
	}

	updated, err := h.Releases.Update(r.Context(), user.Username, planID, in)
	if err != nil {
		h.respondError(w, "releases.update", err, "caller", user.Username, "release_id", planID)
		return
	}

	writeJSON(w, http.StatusOK, toReleaseResponse(updated))
}

func (h *Handlers) DeleteRelease(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	planID, err := uintParam(r, "release_id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	if err := h.Releases.Delete(r.Context(), user.Username, planID); err != nil {
		h.respondError(w, "releases.delete", err, "caller", user.Username, "release_id", planID)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// AssignReleaseStory links a story to the plan. The plan may be
// addressed by numeric id or by its human key (PROJ-007-R042).
func (h *Handlers) AssignReleaseStory(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	planRef := strings.TrimSpace(chi.URLParam(r, "release_id"))
	var req assignStoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}
	if message, ok := validateStruct(req); !ok {
		writeError(w, http.StatusBadRequest, "invalid_request", message)
		return
	}

	plan, err := h.Releases.AssignStory(r.Context(), user.Username, planRef, req.StoryID)
	if err != nil {
		h.respondError(w, "releases.assign_story", err, "caller", user.Username, "release_ref", planRef, "story_id", req.StoryID)
		return
	}

	writeJSON(w, http.StatusOK, toReleaseResponse(plan))
}

func (h *Handlers) UnassignReleaseStory(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	planRef := strings.TrimSpace(chi.URLParam(r, "release_id"))
	storyID, err := uintParam(r, "story_id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	plan, err := h.Releases.UnassignStory(r.Context(), user.Username, planRef, storyID)
	if err != nil {
		h.respondError(w, "releases.unassign_story", err, "caller", user.Username, "release_ref", planRef, "story_id", storyID)
		return
	}

	writeJSON(w, http.StatusOK, toReleaseResponse(plan))
}

type releaseResponse struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Key         string    `json:"key"`
	Description string    `json:"description"`
	Goals       string    `json:"goals"`
	StartDate   string    `json:"start_date"`
	TargetDate  string    `json:"target_date"`
	Status      string    `json:"status"`
	ProjectID   uint      `json:"project_id"`
	CreatedByID *uint     `json:"created_by_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toReleaseResponse(plan *releasedomain.ReleasePlan) releaseResponse {
	return releaseResponse{
		ID:          plan.ID,
		Name:        plan.Name,
		Key:         plan.Key,
		Description: plan.Description,
		Goals:       plan.Goals,
		StartDate:   plan.StartDate.Format("2006-01-02"),
		TargetDate:  plan.TargetDate.Format("2006-01-02"),
		Status:      string(plan.Status),
		ProjectID:   plan.ProjectID,
		CreatedByID: plan.CreatedByID,
		CreatedAt:   plan.CreatedAt,
		UpdatedAt:   plan.UpdatedAt,
	}
}
