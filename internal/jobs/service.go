package jobs

import (
	"context"
	"errors"
	"time"

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

type profileLookup interface {
	FindByUserID(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
}

type userLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type Service interface {
	Create(ctx context.Context, userID uuid.UUID, input JobInput) (*JobDTO, error)
	List(ctx context.Context, viewer visibility.Viewer, params pagination.Params) (*JobListDTO, error)
	Get(ctx context.Context, viewer visibility.Viewer, id uuid.UUID) (*JobDTO, error)
	Mine(ctx context.Context, userID uuid.UUID) ([]JobDTO, error)
	Update(ctx context.Context, userID, id uuid.UUID, input JobInput) (*JobDTO, error)
	Delete(ctx context.Context, viewer visibility.Viewer, id uuid.UUID) error
	Deactivate(ctx context.Context, adminID, id uuid.UUID) error
}

type ServiceParams struct {
	Repo     Repository
	Profiles profileLookup
	Users    userLookup
	Logger   *logger.Logger
	Now      func() time.Time
}

type service struct {
	repo     Repository
	profiles profileLookup
	users    userLookup
	logg     *logger.Logger
	now      func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "job repository required")
	}
	if params.Profiles == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "profile lookup required")
	}
	if params.Users == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "user lookup required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		repo:     params.Repo,
		profiles: params.Profiles,
		users:    params.Users,
		logg:     params.Logger,
		now:      now,
	}, nil
}

// Create posts a listing. The caller must hold the employer capability and an
// approved profile.
func (s *service) Create(ctx context.Context, userID uuid.UUID, input JobInput) (*JobDTO, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "unknown user")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	if !user.IsEmployer {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "employer subscription required to post jobs")
	}
	profile, err := s.profiles.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "profile required to post jobs")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load profile")
	}
	if profile.ApprovalStatus != enums.ApprovalStatusApproved {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "profile must be approved to post jobs")
	}

	if err := input.required(); err != nil {
		return nil, err
	}
	fields, err := input.fields()
	if err != nil {
		return nil, err
	}

	job := &models.Job{
		PosterID:    profile.ID,
		Title:       fields["title"].(string),
		CompanyName: fields["company_name"].(string),
		Type:        fields["type"].(enums.JobType),
		ApplyURL:    fields["apply_url"].(string),
		Active:      true,
		ExpiresAt:   s.now().UTC().Add(DefaultExpiry),
	}
	if v, ok := fields["description"]; ok {
		job.Description = v.(*string)
	}
	if v, ok := fields["expires_at"]; ok {
		job.ExpiresAt = v.(time.Time)
	}
	if err := s.repo.Create(ctx, job); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create job")
	}
	job.Poster = profile
	return ToDTO(job), nil
}

// List returns open listings: active, unexpired and posted by approved
// profiles.
func (s *service) List(ctx context.Context, viewer visibility.Viewer, params pagination.Params) (*JobListDTO, error) {
	if err := visibility.EnsureCanBrowse(viewer); err != nil {
		return nil, err
	}
	params = params.Normalize()
	now := s.now().UTC()

	var (
		rows  []models.Job
		total int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		rows, err = s.repo.ListOpen(gctx, now, params)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.repo.CountOpen(gctx, now)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list jobs")
	}

	out := make([]JobDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *ToDTO(&rows[i]))
	}
	return &JobListDTO{Jobs: out, Pagination: pagination.NewMeta(total, params)}, nil
}

// Get hides listings of unapproved posters from everyone but the poster and
// admins.
func (s *service) Get(ctx context.Context, viewer visibility.Viewer, id uuid.UUID) (*JobDTO, error) {
	job, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := visibility.Ensure(viewer, target(job), "job"); err != nil {
		return nil, err
	}
	return ToDTO(job), nil
}

func (s *service) Mine(ctx context.Context, userID uuid.UUID) ([]JobDTO, error) {
	profile, err := s.profiles.FindByUserID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return []JobDTO{}, nil
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load profile")
	}
	rows, err := s.repo.ListByPoster(ctx, profile.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list own jobs")
	}
	out := make([]JobDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *ToDTO(&rows[i]))
	}
	return out, nil
}

func (s *service) Update(ctx context.Context, userID, id uuid.UUID, input JobInput) (*JobDTO, error) {
	job, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if job.Poster == nil || job.Poster.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "not authorized to update this job")
	}
	fields, err := input.fields()
	if err != nil {
		return nil, err
	}
	if len(fields) > 0 {
		if err := s.repo.Update(ctx, id, fields); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update job")
		}
	}
	updated, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return ToDTO(updated), nil
}

func (s *service) Delete(ctx context.Context, viewer visibility.Viewer, id uuid.UUID) error {
	job, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	isOwner := job.Poster != nil && job.Poster.UserID == viewer.UserID
	if !isOwner && !viewer.IsAdmin {
		return pkgerrors.New(pkgerrors.CodeForbidden, "not authorized to delete this job")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete job")
	}
	return nil
}

// Deactivate is the moderation removal; the row is kept with active=false.
func (s *service) Deactivate(ctx context.Context, adminID, id uuid.UUID) error {
	if _, err := s.load(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, id, map[string]any{"active": false}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deactivate job")
	}
	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{"admin_id": adminID.String(), "job_id": id.String()})
		s.logg.Info(logCtx, "job deactivated by admin")
	}
	return nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	job, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, visibility.NotFound("job")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load job")
	}
	return job, nil
}

func target(job *models.Job) visibility.Target {
	if job.Poster == nil {
		return visibility.Target{}
	}
	return visibility.Target{OwnerUserID: job.Poster.UserID, ApprovalStatus: job.Poster.ApprovalStatus}
}
