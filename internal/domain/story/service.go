package story

import (
	"context"
	"strings"

	"agile-board-go/internal/domain/authz"
	"agile-board-go/internal/domain/fault"
	"agile-board-go/internal/domain/project"
	"agile-board-go/internal/keys"
)

// ProjectFinder resolves the parent project; satisfied by the project
// repository.
type ProjectFinder interface {
	FindByID(ctx context.Context, id uint) (*project.Project, error)
}

// CreatorResolver maps the caller's username to a user id, if known.
type CreatorResolver interface {
	ResolveUserID(ctx context.Context, username string) (*uint, error)
}

// TrackerExporter pushes a story to an external issue tracker. The call
// is synchronous and bounded by the exporter's own timeout.
type TrackerExporter interface {
	ExportStory(ctx context.Context, s *UserStory) (*ExportResult, error)
}

type Service struct {
	repo     Repository
	projects ProjectFinder
	creators CreatorResolver
	authz    *authz.Engine
	exporter TrackerExporter
}

func NewService(repo Repository, projects ProjectFinder, creators CreatorResolver, engine *authz.Engine, exporter TrackerExporter) *Service {
	return &Service{repo: repo, projects: projects, creators: creators, authz: engine, exporter: exporter}
}

type CreateInput struct {
	ProjectID          uint
	Title              string
	Description        string
	AcceptanceCriteria string
	BusinessValue      *int
	Priority           Priority
}

// Create persists a story under the project with the two-phase key
// protocol; the final key is scoped by the project key.
func (s *Service) Create(ctx context.Context, caller string, in CreateInput) (*UserStory, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return nil, fault.Validationf("title is required")
	}
	if strings.TrimSpace(in.Description) == "" {
		return nil, fault.Validationf("description is required")
	}
	if in.Priority == "" {
		in.Priority = PriorityMedium
	}
	if !in.Priority.Valid() {
		return nil, fault.Validationf("unknown priority %q", in.Priority)
	}

	p, err := s.projects.FindByID(ctx, in.ProjectID)
	if err != nil {
		return nil, err
	}
	if err := s.requireMember(ctx, caller, p.ID); err != nil {
		return nil, err
	}

	creator, err := s.creators.ResolveUserID(ctx, caller)
	if err != nil {
		return nil, err
	}

	var created *UserStory
	err = s.repo.Transaction(ctx, func(tx Repository) error {
		st := &UserStory{
			Title:              in.Title,
			Key:                keys.Placeholder(),
			Description:        in.Description,
			AcceptanceCriteria: in.AcceptanceCriteria,
			BusinessValue:      in.BusinessValue,
			Status:             StatusNew,
			Priority:           in.Priority,
			ProjectID:          p.ID,
			CreatedByID:        creator,
		}
		if err := tx.Create(ctx, st); err != nil {
			return err
		}
		if st.ID == 0 {
			return fault.Invariantf("user story id missing after insert")
		}

		st.Key = keys.Format(p.Key, st.ID)
		if err := tx.UpdateKey(ctx, st.ID, st.Key); err != nil {
			return err
		}
		created = st
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Get loads a story after checking the caller belongs to its project.
func (s *Service) Get(ctx context.Context, caller string, id uint) (*UserStory, error) {
	st, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.requireMember(ctx, caller, st.ProjectID); err != nil {
		return nil, err
	}
	return st, nil
}

func (s *Service) ListByProject(ctx context.Context, caller string, projectID uint) ([]UserStory, error) {
	if _, err := s.projects.FindByID(ctx, projectID); err != nil {
		return nil, err
	}
	if err := s.requireMember(ctx, caller, projectID); err != nil {
		return nil, err
	}
	return s.repo.ListByProject(ctx, projectID)
}

type UpdateInput struct {
	Title              string
	Description        string
	AcceptanceCriteria string
	BusinessValue      *int
	Priority           Priority
}

func (s *Service) Update(ctx context.Context, caller string, id uint, in UpdateInput) (*UserStory, error) {
	st, err := s.Get(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return nil, fault.Validationf("title is required")
	}
	if strings.TrimSpace(in.Description) == "" {
		return nil, fault.Validationf("description is required")
	}

	st.Title = in.Title
	st.Description = in.Description
	st.AcceptanceCriteria = in.AcceptanceCriteria
	st.BusinessValue = in.BusinessValue
	// Priority stays untouched unless explicitly provided.
	if in.Priority != "" {
		if !in.Priority.Valid() {
			return nil, fault.Validationf("unknown priority %q", in.Priority)
		}
		st.Priority = in.Priority
	}

	if err := s.repo.Save(ctx, st); err != nil {
		return nil, err
	}
	return st, nil
}

func (s *Service) UpdateEstimate(ctx context.Context, caller string, id uint, storyPoints int) (*UserStory, error) {
	if storyPoints < 0 {
		return nil, fault.Validationf("story points must not be negative")
	}
	st, err := s.Get(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	st.StoryPoints = &storyPoints
	if err := s.repo.Save(ctx, st); err != nil {
		return nil, err
	}
	return st, nil
}

func (s *Service) UpdateStatus(ctx context.Context, caller string, id uint, status Status) (*UserStory, error) {
	if !status.Valid() {
		return nil, fault.Validationf("unknown status %q", status)
	}
	st, err := s.Get(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	st.Status = status
	if err := s.repo.Save(ctx, st); err != nil {
		return nil, err
	}
	return st, nil
}

func (s *Service) UpdateSprintReady(ctx context.Context, caller string, id uint, ready bool) (*UserStory, error) {
	return s.setFlag(ctx, caller, id, func(st *UserStory) { st.SprintReady = ready })
}

func (s *Service) UpdateStarred(ctx context.Context, caller string, id uint, starred bool) (*UserStory, error) {
	return s.setFlag(ctx, caller, id, func(st *UserStory) { st.Starred = starred })
}

func (s *Service) UpdateMVP(ctx context.Context, caller string, id uint, mvp bool) (*UserStory, error) {
	return s.setFlag(ctx, caller, id, func(st *UserStory) { st.MVP = mvp })
}

func (s *Service) Delete(ctx context.Context, caller string, id uint) error {
	st, err := s.Get(ctx, caller, id)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, st.ID)
}

// Export pushes the story to the configured issue tracker and returns
// the created issue reference.
func (s *Service) Export(ctx context.Context, caller string, id uint) (*ExportResult, error) {
	st, err := s.Get(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if s.exporter == nil {
		return nil, ErrExporterDisabled
	}
	return s.exporter.ExportStory(ctx, st)
}

func (s *Service) setFlag(ctx context.Context, caller string, id uint, apply func(*UserStory)) (*UserStory, error) {
	st, err := s.Get(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	apply(st)
	if err := s.repo.Save(ctx, st); err != nil {
		return nil, err
	}
	return st, nil
}

func (s *Service) requireMember(ctx context.Context, caller string, projectID uint) error {
	ok, err := s.authz.IsMember(ctx, caller, projectID)
	if err != nil {
		return err
	}
	if !ok {
		return fault.ErrAccessDenied
	}
	return nil
}
