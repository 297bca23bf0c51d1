package release

import (
	"context"
	"strconv"
	"strings"
	"time"

	"agile-board-go/internal/domain/authz"
	"agile-board-go/internal/domain/fault"
	"agile-board-go/internal/domain/guard"
	"agile-board-go/internal/domain/project"
	"agile-board-go/internal/domain/role"
	"agile-board-go/internal/domain/story"
	"agile-board-go/internal/keys"
)

type ProjectFinder interface {
	FindByID(ctx context.Context, id uint) (*project.Project, error)
}

// StoryLinker reads stories and flips their release plan link. Satisfied
// by the story repository.
type StoryLinker interface {
	FindByID(ctx context.Context, id uint) (*story.UserStory, error)
	SetReleasePlan(ctx context.Context, storyID uint, planID *uint) error
}

type CreatorResolver interface {
	ResolveUserID(ctx context.Context, username string) (*uint, error)
}

type Service struct {
	repo     Repository
	projects ProjectFinder
	stories  StoryLinker
	creators CreatorResolver
	authz    *authz.Engine
}

func NewService(repo Repository, projects ProjectFinder, stories StoryLinker, creators CreatorResolver, engine *authz.Engine) *Service {
	return &Service{repo: repo, projects: projects, stories: stories, creators: creators, authz: engine}
}

type CreateInput struct {
	ProjectID   uint
	Name        string
	Description string
	Goals       string
	StartDate   time.Time
	TargetDate  time.Time
	Status      Status
}

// Create persists a plan with the two-phase key protocol; the final key
// is scoped by the project key with an R marker.
func (s *Service) Create(ctx context.Context, caller string, in CreateInput) (*ReleasePlan, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, fault.Validationf("release name is required")
	}
	if in.StartDate.IsZero() {
		return nil, fault.Validationf("start date is required")
	}
	if in.TargetDate.IsZero() {
		return nil, fault.Validationf("target date is required")
	}
	if err := guard.DateOrder(in.StartDate, in.TargetDate); err != nil {
		return nil, err
	}
	if in.Status == "" {
		in.Status = StatusPlanned
	}
	if !in.Status.Valid() {
		return nil, fault.Validationf("unknown status %q", in.Status)
	}

	p, err := s.projects.FindByID(ctx, in.ProjectID)
	if err != nil {
		return nil, err
	}
	if err := s.requireOwner(ctx, caller, p.ID); err != nil {
		return nil, err
	}

	creator, err := s.creators.ResolveUserID(ctx, caller)
	if err != nil {
		return nil, err
	}

	var created *ReleasePlan
	err = s.repo.Transaction(ctx, func(tx Repository) error {
		plan := &ReleasePlan{
			Name:        in.Name,
			Key:         keys.Placeholder(),
			Description: in.Description,
			Goals:       in.Goals,
			StartDate:   in.StartDate,
			TargetDate:  in.TargetDate,
			Status:      in.Status,
			ProjectID:   p.ID,
			CreatedByID: creator,
		}
		if err := tx.Create(ctx, plan); err != nil {
			return err
		}
		if plan.ID == 0 {
			return fault.Invariantf("release plan id missing after insert")
		}

		plan.Key = keys.FormatRelease(p.Key, plan.ID)
		if err := tx.UpdateKey(ctx, plan.ID, plan.Key); err != nil {
			return err
		}
		created = plan
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *Service) GetByID(ctx context.Context, caller string, id uint) (*ReleasePlan, error) {
	plan, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.requireMember(ctx, caller, plan.ProjectID); err != nil {
		return nil, err
	}
	return plan, nil
}

func (s *Service) GetByKey(ctx context.Context, caller string, key string) (*ReleasePlan, error) {
	plan, err := s.repo.FindByKey(ctx, key)
	if err != nil {
		return nil, err
	}
	if err := s.requireMember(ctx, caller, plan.ProjectID); err != nil {
		return nil, err
	}
	return plan, nil
}

func (s *Service) ListByProject(ctx context.Context, caller string, projectID uint) ([]ReleasePlan, error) {
	if _, err := s.projects.FindByID(ctx, projectID); err != nil {
		return nil, err
	}
	if err := s.requireMember(ctx, caller, projectID); err != nil {
		return nil, err
	}
	return s.repo.ListByProject(ctx, projectID)
}

func (s *Service) ListByStatus(ctx context.Context, status Status) ([]ReleasePlan, error) {
	if !status.Valid() {
		return nil, fault.Validationf("unknown status %q", status)
	}
	return s.repo.ListByStatus(ctx, status)
}

// StoryCount reports how many stories are linked to the plan.
func (s *Service) StoryCount(ctx context.Context, planID uint) (int64, error) {
	return s.repo.CountStories(ctx, planID)
}

type UpdateInput struct {
	Name        *string
	Description *string
	Goals       *string
	StartDate   *time.Time
	TargetDate  *time.Time
	Status      *Status
}

// Update applies a partial update and re-validates the date ordering on
// the merged values: changing only the start date still has to respect
// the existing target date.
func (s *Service) Update(ctx context.Context, caller string, id uint, in UpdateInput) (*ReleasePlan, error) {
	plan, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.requireOwner(ctx, caller, plan.ProjectID); err != nil {
		return nil, err
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, fault.Validationf("release name is required")
		}
		plan.Name = name
	}
	if in.Description != nil {
		plan.Description = *in.Description
	}
	if in.Goals != nil {
		plan.Goals = *in.Goals
	}
	if in.StartDate != nil {
		plan.StartDate = *in.StartDate
	}
	if in.TargetDate != nil {
		plan.TargetDate = *in.TargetDate
	}
	if in.Status != nil {
		if !in.Status.Valid() {
			return nil, fault.Validationf("unknown status %q", *in.Status)
		}
		plan.Status = *in.Status
	}

	if err := guard.DateOrder(plan.StartDate, plan.TargetDate); err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

func (s *Service) Delete(ctx context.Context, caller string, id uint) error {
	plan, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.requireOwner(ctx, caller, plan.ProjectID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, plan.ID)
}

// AssignStory links a story to the plan identified by numeric id or by
// human key. Both must belong to the same project; a rejected link
// leaves the story untouched.
func (s *Service) AssignStory(ctx context.Context, caller string, planRef string, storyID uint) (*ReleasePlan, error) {
	plan, err := s.resolvePlan(ctx, planRef)
	if err != nil {
		return nil, err
	}
	if err := s.requireOwner(ctx, caller, plan.ProjectID); err != nil {
		return nil, err
	}

	st, err := s.stories.FindByID(ctx, storyID)
	if err != nil {
		return nil, err
	}
	if err := guard.SameProject(st.ProjectID, plan.ProjectID); err != nil {
		return nil, err
	}

	if err := s.stories.SetReleasePlan(ctx, st.ID, &plan.ID); err != nil {
		return nil, err
	}
	return plan, nil
}

// UnassignStory detaches a story from the plan. The story must currently
// be linked to this exact plan.
func (s *Service) UnassignStory(ctx context.Context, caller string, planRef string, storyID uint) (*ReleasePlan, error) {
	plan, err := s.resolvePlan(ctx, planRef)
	if err != nil {
		return nil, err
	}
	if err := s.requireOwner(ctx, caller, plan.ProjectID); err != nil {
		return nil, err
	}

	st, err := s.stories.FindByID(ctx, storyID)
	if err != nil {
		return nil, err
	}
	if st.ReleasePlanID == nil || *st.ReleasePlanID != plan.ID {
		return nil, fault.Validationf("user story is not assigned to this release plan")
	}

	if err := s.stories.SetReleasePlan(ctx, st.ID, nil); err != nil {
		return nil, err
	}
	return plan, nil
}

func (s *Service) resolvePlan(ctx context.Context, ref string) (*ReleasePlan, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, fault.Validationf("release plan identifier is required")
	}
	if id, err := strconv.ParseUint(ref, 10, 64); err == nil {
		return s.repo.FindByID(ctx, uint(id))
	}
	return s.repo.FindByKey(ctx, ref)
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

func (s *Service) requireOwner(ctx context.Context, caller string, projectID uint) error {
	ok, err := s.authz.HasRole(ctx, caller, projectID, role.ProductOwner)
	if err != nil {
		return err
	}
	if !ok {
		return fault.ErrAccessDenied
	}
	return nil
}
