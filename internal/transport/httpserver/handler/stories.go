package handler

import (
	"context"
	"net/http"
	"time"

	storydomain "agile-board-go/internal/domain/story"
	"agile-board-go/internal/transport/httpserver/middleware"
)

type createStoryRequest struct {
	ProjectID          uint   `json:"project_id" validate:"required"`
	Title              string `json:"title" validate:"required,max=500"`
	Description        string `json:"description" validate:"required"`
	AcceptanceCriteria string `json:"acceptance_criteria"`
	BusinessValue      *int   `json:"business_value"`
	Priority           string `json:"priority"`
}

type updateStoryRequest struct {
	Title              string `json:"title" validate:"required,max=500"`
	Description        string `json:"description" validate:"required"`
	AcceptanceCriteria string `json:"acceptance_criteria"`
	BusinessValue      *int   `json:"business_value"`
	Priority           string `json:"priority"`
}

type estimateRequest struct {
	StoryPoints int `json:"story_points"`
}

type storyStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type storyFlagRequest struct {
	Value bool `json:"value"`
}

func (h *Handlers) CreateStory(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	var req createStoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}
	if message, ok := validateStruct(req); !ok {
		writeError(w, http.StatusBadRequest, "invalid_request", message)
		return
	}

	created, err := h.Stories.Create(r.Context(), user.Username, storydomain.CreateInput{
		ProjectID:          req.ProjectID,
		Title:              req.Title,
		Description:        req.Description,
		AcceptanceCriteria: req.AcceptanceCriteria,
		BusinessValue:      req.BusinessValue,
		Priority:           storydomain.Priority(req.Priority),
	})
	if err != nil {
		h.respondError(w, "stories.create", err, "caller", user.Username, "project_id", req.ProjectID)
		return
	}

	writeJSON(w, http.StatusCreated, toStoryResponse(created))
}

func (h *Handlers) GetStory(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	storyID, err := uintParam(r, "story_id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	result, err := h.Stories.Get(r.Context(), user.Username, storyID)
	if err != nil {
		h.respondError(w, "stories.get", err, "caller", user.Username, "story_id", storyID)
		return
	}

	writeJSON(w, http.StatusOK, toStoryResponse(result))
}

func (h *Handlers) ListProjectStories(w http.ResponseWriter, r *http.Request) {
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

	stories, err := h.Stories.ListByProject(r.Context(), user.Username, projectID)
	if err != nil {
		h.respondError(w, "stories.list", err, "caller", user.Username, "project_id", projectID)
		return
	}

	response := make([]storyResponse, 0, len(stories))
	for i := range stories {
		response = append(response, toStoryResponse(&stories[i]))
	}
	writeJSON(w, http.StatusOK, response)
}

func (h *Handlers) UpdateStory(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	storyID, err := uintParam(r, "story_id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	var req updateStoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}
	if message, ok := validateStruct(req); !ok {
		writeError(w, http.StatusBadRequest, "invalid_request", message)
		return
	}

	updated, err := h.Stories.Update(r.Context(), user.Username, storyID, storydomain.UpdateInput{
		Title:              req.Title,
		Description:        req.Description,
		AcceptanceCriteria: req.AcceptanceCriteria,
		BusinessValue:      req.BusinessValue,
		Priority:           storydomain.Priority(req.Priority),
	})
	if err != nil {
		h.respondError(w, "stories.update", err, "caller", user.Username, "story_id", storyID)
		return
	}

	writeJSON(w, http.StatusOK, toStoryResponse(updated))
}

func (h *Handlers) UpdateStoryEstimate(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	storyID, err := uintParam(r, "story_id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	var req estimateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	updated, err := h.Stories.UpdateEstimate(r.Context(), user.Username, storyID, req.StoryPoints)
	if err != nil {
		h.respondError(w, "stories.estimate", err, "caller", user.Username, "story_id", storyID)
		return
	}

	writeJSON(w, http.StatusOK, toStoryResponse(updated))
}

func (h *Handlers) UpdateStoryStatus(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	storyID, err := uintParam(r, "story_id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	var req storyStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}
	if message, ok := validateStruct(req); !ok {
		writeError(w, http.StatusBadRequest, "invalid_request", message)
		return
	}

	updated, err := h.Stories.UpdateStatus(r.Context(), user.Username, storyID, storydomain.Status(req.Status))
	if err != nil {
		h.respondError(w, "stories.status", err, "caller", user.Username, "story_id", storyID)
		return
	}

	writeJSON(w, http.StatusOK, toStoryResponse(updated))
}

func (h *Handlers) UpdateStorySprintReady(w http.ResponseWriter, r *http.Request) {
	h.updateStoryFlag(w, r, "stories.sprint_ready", h.Stories.UpdateSprintReady)
}

func (h *Handlers) UpdateStoryStarred(w http.ResponseWriter, r *http.Request) {
	h.updateStoryFlag(w, r, "stories.starred", h.Stories.UpdateStarred)
}

func (h *Handlers) UpdateStoryMVP(w http.ResponseWriter, r *http.Request) {
	h.updateStoryFlag(w, r, "stories.mvp", h.Stories.UpdateMVP)
}

func (h *Handlers) DeleteStory(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	storyID, err := uintParam(r, "story_id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	if err := h.Stories.Delete(r.Context(), user.Username, storyID); err != nil {
		h.respondError(w, "stories.delete", err, "caller", user.Username, "story_id", storyID)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ExportStory pushes the story to the configured issue tracker.
func (h *Handlers) ExportStory(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	storyID, err := uintParam(r, "story_id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	result, err := h.Stories.Export(r.Context(), user.Username, storyID)
	if err != nil {
		h.respondError(w, "stories.export", err, "caller", user.Username, "story_id", storyID)
		return
	}

	writeJSON(w, http.StatusOK, exportResponse{
		IssueID:   result.IssueID,
		IssueKey:  result.IssueKey,
		SelfURL:   result.SelfURL,
		BrowseURL: result.BrowseURL,
	})
}

func (h *Handlers) updateStoryFlag(w http.ResponseWriter, r *http.Request, op string, update func(ctx context.Context, caller string, id uint, value bool) (*storydomain.UserStory, error)) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	storyID, err := uintParam(r, "story_id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	var req storyFlagRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	updated, err := update(r.Context(), user.Username, storyID, req.Value)
	if err != nil {
		h.respondError(w, op, err, "caller", user.Username, "story_id", storyID)
		return
	}

	writeJSON(w, http.StatusOK, toStoryResponse(updated))
}

type storyResponse struct {
	ID                 uint      `json:"id"`
	Title              string    `json:"title"`
	Key                string    `json:"key"`
	Description        string    `json:"description"`
	AcceptanceCriteria string    `json:"acceptance_criteria"`
	StoryPoints        *int      `json:"story_points"`
	BusinessValue      *int      `json:"business_value"`
	Status             string    `json:"status"`
	Priority           string    `json:"priority"`
	SprintReady        bool      `json:"sprint_ready"`
	Starred            bool      `json:"starred"`
	MVP                bool      `json:"mvp"`
	ProjectID          uint      `json:"project_id"`
	ReleasePlanID      *uint     `json:"release_plan_id"`
	CreatedByID        *uint     `json:"created_by_id"`
	AssignedToID       *uint     `json:"assigned_to_id"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

type exportResponse struct {
	IssueID   string `json:"issue_id"`
	IssueKey  string `json:"issue_key"`
	SelfURL   string `json:"self_url"`
	BrowseURL string `json:"browse_url"`
}

func toStoryResponse(st *storydomain.UserStory) storyResponse {
	return storyResponse{
		ID:                 st.ID,
		Title:              st.Title,
		Key:                st.Key,
		Description:        st.Description,
		AcceptanceCriteria: st.AcceptanceCriteria,
		StoryPoints:        st.StoryPoints,
		BusinessValue:      st.BusinessValue,
		Status:             string(st.Status),
		Priority:           string(st.Priority),
		SprintReady:        st.SprintReady,
		Starred:            st.Starred,
		MVP:                st.MVP,
		ProjectID:          st.ProjectID,
		ReleasePlanID:      st.ReleasePlanID,
		CreatedByID:        st.CreatedByID,
		AssignedToID:       st.AssignedToID,
		CreatedAt:          st.CreatedAt,
		UpdatedAt:          st.UpdatedAt,
	}
}
