package projects

import (
	"context"
	"errors"

	"github.com/angelmondragon/directory-backend/pkg/db/models"
	"github.com/angelmondragon/directory-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/directory-backend/pkg/errors"
	"github.com/angelmondragon/directory-backend/pkg/logger"
	"github.com/angelmondragon/directory-backend/pkg/pagination"
	"github.com/angelmondragon/directory-backend/pkg/visibility"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type profileLookup interface {
	FindByUserID(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
}

type Service interface {
	Create(ctx context.Context, userID uuid.UUID, input ProjectInput) (*ProjectDTO, error)
	List(ctx context.Context, viewer visibility.Viewer, params pagination.Params) (*ProjectListDTO, error)
	Mine(ctx context.Context, userID uuid.UUID) ([]ProjectDTO, error)
	Get(ctx context.Context, viewer visibility.Viewer, id uuid.UUID) (*ProjectDTO, error)
	Update(ctx context.Context, viewer visibility.Viewer, id uuid.UUID, input ProjectInput) (*ProjectDTO, error)
	Delete(ctx context.Context, viewer visibility.Viewer, id uuid.UUID) error
	Archive(ctx context.Context, adminID, id uuid.UUID) error
}

type ServiceParams struct {
	Repo              Repository
	Profiles          profileLookup
	TransactionRunner txRunner
	Logger            *logger.Logger
}

type service struct {
	repo     Repository
	profiles profileLookup
	tx       txRunner
	logg     *logger.Logger
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "project repository required")
	}
	if params.Profiles == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "profile lookup required")
	}
	if params.TransactionRunner == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "transaction runner required")
	}
	return &service{
		repo:     params.Repo,
		profiles: params.Profiles,
		tx:       params.TransactionRunner,
		logg:     params.Logger,
	}, nil
}

// Create adds a project under the caller's profile, which must be approved.
func (s *service) Create(ctx context.Context, userID uuid.UUID, input ProjectInput) (*ProjectDTO, error) {
	profile, err := s.profiles.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "profile required to create projects")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load profile")
	}
	if profile.ApprovalStatus != enums.ApprovalStatusApproved {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "profile must be approved to create projects")
	}
	if input.Title == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title is required").
			WithDetails(map[string]string{"title": "is required"})
	}
	fields, err := input.fields()
	if err != nil {
		return nil, err
	}

	project := &models.Project{CreatorID: profile.ID, Title: fields["title"].(string)}
	if v, ok := fields["description"]; ok {
		project.Description = v.(*string)
	}
	if v, ok := fields["status"]; ok {
		project.Status = v.(enums.ProjectStatus)
	}
	if v, ok := fields["website_url"]; ok {
		project.WebsiteURL = v.(*string)
	}
	if v, ok := fields["repo_url"]; ok {
		project.RepoURL = v.(*string)
	}
	if err := s.repo.Create(ctx, project); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create project")
	}
	project.Creator = profile
	return ToDTO(project, visibility.Full), nil
}

func (s *service) List(ctx context.Context, viewer visibility.Viewer, params pagination.Params) (*ProjectListDTO, error) {
	if err := visibility.EnsureCanBrowse(viewer); err != nil {
		return nil, err
	}
	params = params.Normalize()

	var (
		rows  []models.Project
		total int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		rows, err = s.repo.ListVisible(gctx, params)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.repo.CountVisible(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list projects")
	}

	out := make([]ProjectDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *ToDTO(&rows[i], visibility.Decide(viewer, target(&rows[i]))))
	}
	return &ProjectListDTO{Projects: out, Pagination: pagination.NewMeta(total, params)}, nil
}

// Mine lists the caller's own projects regardless of approval state.
func (s *service) Mine(ctx context.Context, userID uuid.UUID) ([]ProjectDTO, error) {
	profile, err := s.profiles.FindByUserID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return []ProjectDTO{}, nil
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load profile")
	}
	rows, err := s.repo.ListByCreator(ctx, profile.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list own projects")
	}
	out := make([]ProjectDTO, 0, len(rows))
	for i := range rows {
		rows[i].Creator = profile
		out = append(out, *ToDTO(&rows[i], visibility.Full))
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, viewer visibility.Viewer, id uuid.UUID) (*ProjectDTO, error) {
	project, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	decision, err := visibility.Ensure(viewer, target(project), "project")
	if err != nil {
		return nil, err
	}
	return ToDTO(project, decision), nil
}

func (s *service) Update(ctx context.Context, viewer visibility.Viewer, id uuid.UUID, input ProjectInput) (*ProjectDTO, error) {
	project, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := ensureOwner(viewer, project, false); err != nil {
		return nil, err
	}
	fields, err := input.fields()
	if err != nil {
		return nil, err
	}
	if len(fields) > 0 {
		if err := s.repo.Update(ctx, id, fields); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update project")
		}
	}
	updated, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return ToDTO(updated, visibility.Full), nil
}

// Delete hard-deletes a project. Owners and admins may delete.
func (s *service) Delete(ctx context.Context, viewer visibility.Viewer, id uuid.UUID) error {
	project, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := ensureOwner(viewer, project, true); err != nil {
		return err
	}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).Delete(ctx, id)
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete project")
	}
	s.audit(ctx, viewer.UserID, id, "project deleted")
	return nil
}

// Archive is the moderation removal: the project stays but leaves the
// reminder sweep and is marked archived.
func (s *service) Archive(ctx context.Context, adminID, id uuid.UUID) error {
	if _, err := s.load(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, id, map[string]any{"status": enums.ProjectStatusArchived}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "archive project")
	}
	s.audit(ctx, adminID, id, "project archived by admin")
	return nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	project, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, visibility.NotFound("project")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load project")
	}
	return project, nil
}

func (s *service) audit(ctx context.Context, actorID, projectID uuid.UUID, msg string) {
	if s.logg == nil {
		return
	}
	ctx = s.logg.WithProjectID(ctx, projectID.String())
	s.logg.Info(s.logg.WithUserID(ctx, actorID.String()), msg)
}

// ensureOwner masks invisible projects as missing, then refuses anyone but
// the owner (or an admin when allowAdmin is set).
func ensureOwner(viewer visibility.Viewer, project *models.Project, allowAdmin bool) error {
	if _, err := visibility.Ensure(viewer, target(project), "project"); err != nil {
		return err
	}
	if project.Creator != nil && project.Creator.UserID == viewer.UserID {
		return nil
	}
	if allowAdmin && viewer.IsAdmin {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeForbidden, "not authorized to modify this project")
}

func target(project *models.Project) visibility.Target {
	if project.Creator == nil {
		return visibility.Target{}
	}
	return visibility.Target{
		OwnerUserID:    project.Creator.UserID,
		ApprovalStatus: project.Creator.ApprovalStatus,
	}
}
