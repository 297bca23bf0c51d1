package httpserver

import (
	"net/http"
	"time"

	"agile-board-go/internal/config"
	"agile-board-go/internal/transport/httpserver/handler"
	authmw "agile-board-go/internal/transport/httpserver/middleware"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

func NewRouter(cfg config.Config, handlers *handler.Handlers, auth *authmw.JWTAuth) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(authmw.NewCORS(cfg.CORS.AllowedOrigins))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", handlers.Health)

		r.Post("/auth/register", handlers.Register)
		r.Post("/auth/login", handlers.Login)

		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware)

			r.Get("/auth/me", handlers.AuthMe)
			r.Patch("/users/me", handlers.UpdateProfile)
			r.Post("/users/me/password", handlers.ChangePassword)

			r.Get("/users", handlers.ListUsers)
			r.Get("/users/{user_id}", handlers.GetUser)
			r.Put("/users/{user_id}/roles", handlers.ReplaceUserRoles)
			r.Post("/users/{user_id}/deactivate", handlers.DeactivateUser)
			r.Delete("/users/{user_id}", handlers.DeleteUser)

			r.Get("/projects", handlers.ListProjects)
			r.Post("/projects", handlers.CreateProject)
			r.Get("/projects/by-key", handlers.GetProjectByKey)
			r.Post("/projects/join", handlers.JoinProject)
			r.Get("/projects/{project_id}", handlers.GetProject)
			r.Delete("/projects/{project_id}", handlers.DeleteProject)
			r.Get("/projects/{project_id}/members", handlers.ListProjectMembers)
			r.Post("/projects/{project_id}/members", handlers.AddProjectMemberRole)
			r.Put("/projects/{project_id}/members", handlers.ReplaceProjectMemberRoles)
			r.Delete("/projects/{project_id}/members/{user_id}", handlers.RemoveProjectMember)
			r.Delete("/projects/{project_id}/members/{user_id}/role", handlers.RemoveProjectMemberRole)
			r.Get("/projects/{project_id}/stories", handlers.ListProjectStories)
			r.Get("/projects/{project_id}/releases", handlers.ListProjectReleases)

			r.Post("/stories", handlers.CreateStory)
			r.Get("/stories/{story_id}", handlers.GetStory)
			r.Put("/stories/{story_id}", handlers.UpdateStory)
			r.Delete("/stories/{story_id}", handlers.DeleteStory)
			r.Patch("/stories/{story_id}/estimate", handlers.UpdateStoryEstimate)
			r.Patch("/stories/{story_id}/status", handlers.UpdateStoryStatus)
			r.Patch("/stories/{story_id}/sprint-ready", handlers.UpdateStorySprintReady)
			r.Patch("/stories/{story_id}/starred", handlers.UpdateStoryStarred)
			r.Patch("/stories/{story_id}/mvp", handlers.UpdateStoryMVP)
			r.Post("/stories/{story_id}/export", handlers.ExportStory)

			r.Post("/releases", handlers.CreateRelease)
			r.Get("/releases", handlers.ListReleasesByStatus)
			r.Get("/releases/by-key", handlers.GetReleaseByKey)
			r.Get("/releases/{release_id}", handlers.GetRelease)
			r.Patch("/releases/{release_id}", handlers.UpdateRelease)
			r.Delete("/releases/{release_id}", handlers.DeleteRelease)
			r.Get("/releases/{release_id}/story-count", handlers.GetReleaseStoryCount)
			r.Post("/releases/{release_id}/stories", handlers.AssignReleaseStory)
			r.Delete("/releases/{release_id}/stories/{story_id}", handlers.UnassignReleaseStory)
		})
	})

	return r
}
