package profiles

import (
	"context"
	"errors"
	"time"

	"github.com/angelmondragon/directory-backend/internal/approval"
	"github.com/angelmondragon/directory-backend/pkg/db"
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

type userRepository interface {
	FindByIDWithTx(tx *gorm.DB, id uuid.UUID) (*models.User, error)
	ApproveIfPendingWithTx(tx *gorm.DB, id uuid.UUID) error
}

// notifier receives review outcomes. Delivery failures are logged, never
// surfaced to the admin who made the decision.
type notifier interface {
	SendProfileApproved(ctx context.Context, to, profileName string) error
	SendProfileRejected(ctx context.Context, to, profileName string, note *string) error
}

type Service interface {
	Create(ctx context.Context, userID uuid.UUID, input ProfileInput) (*ProfileDTO, error)
	GetMine(ctx context.Context, userID uuid.UUID) (*ProfileDTO, error)
	Update(ctx context.Context, userID uuid.UUID, input ProfileInput) (*UpdateResult, error)
	SubmitForReview(ctx context.Context, userID uuid.UUID) (*ProfileDTO, error)
	GetByHandle(ctx context.Context, viewer visibility.Viewer, handle string) (*ProfileDTO, error)
	ListApproved(ctx context.Context, viewer visibility.Viewer, params pagination.Params) (*ProfileListDTO, error)

	ListPending(ctx context.Context) ([]ProfileDTO, error)
	GetForAdmin(ctx context.Context, profileID uuid.UUID) (*ProfileDTO, error)
	Approve(ctx context.Context, adminID, profileID uuid.UUID) (*ProfileDTO, error)
	Reject(ctx context.Context, adminID, profileID uuid.UUID, note *string) (*ProfileDTO, error)
}

type ServiceParams struct {
	Repo              Repository
	UserRepo          userRepository
	TransactionRunner txRunner
	Notifier          notifier
	Logger            *logger.Logger
	Now               func() time.Time
}

type service struct {
	repo     Repository
	users    userRepository
	tx       txRunner
	notifier notifier
	logg     *logger.Logger
	now      func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "profile repository required")
	}
	if params.UserRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "user repository required")
	}
	if params.TransactionRunner == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "transaction runner required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		repo:     params.Repo,
		users:    params.UserRepo,
		tx:       params.TransactionRunner,
		notifier: params.Notifier,
		logg:     params.Logger,
		now:      now,
	}, nil
}

// Create starts a draft profile for a user who does not have one yet.
func (s *service) Create(ctx context.Context, userID uuid.UUID, input ProfileInput) (*ProfileDTO, error) {
	if _, err := s.repo.FindByUserID(ctx, userID); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "profile already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load profile")
	}

	values := input.sanitized()
	if values[approval.FieldName] == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required").
			WithDetails(map[string]string{"name": "is required"})
	}
	if _, ok := values[approval.FieldHandle]; !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, handleRuleMessage).
			WithDetails(map[string]string{"handle": "is required"})
	}
	if err := validate(values); err != nil {
		return nil, err
	}

	handle := *values[approval.FieldHandle]
	if err := s.ensureHandleFree(ctx, s.repo, handle, uuid.Nil); err != nil {
		return nil, err
	}

	profile := &models.Profile{UserID: userID, ApprovalStatus: enums.ApprovalStatusDraft}
	applyValues(profile, values)
	if err := s.repo.Create(ctx, profile); err != nil {
		return nil, mapWriteError(err, "create profile")
	}
	return ToDTO(profile, visibility.Full), nil
}

func (s *service) GetMine(ctx context.Context, userID uuid.UUID) (*ProfileDTO, error) {
	profile, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, mapLoadError(err)
	}
	return ToDTO(profile, visibility.Full), nil
}

// Update applies an owner edit. Approved profiles fall back to review when an
// identity field changes; rejected profiles drop the reviewer note.
func (s *service) Update(ctx context.Context, userID uuid.UUID, input ProfileInput) (*UpdateResult, error) {
	values := input.sanitized()
	var (
		result  *UpdateResult
		updated *models.Profile
	)

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		profile, err := repo.LockByUserID(ctx, userID)
		if err != nil {
			return mapLoadError(err)
		}

		class := approval.ClassifyEdit(currentValues(profile), values)
		next, err := approval.Transition(profile.ApprovalStatus, approval.EditAction(class))
		if err != nil {
			return rejectionError(err)
		}
		if err := validate(values); err != nil {
			return err
		}
		if handle, ok := values[approval.FieldHandle]; ok && *handle != profile.Handle {
			if err := s.ensureHandleFree(ctx, repo, *handle, profile.ID); err != nil {
				return err
			}
		}

		fields := make(map[string]any, len(values)+3)
		for field, value := range values {
			if value == nil {
				fields[columns[field]] = nil
				continue
			}
			fields[columns[field]] = *value
		}
		s.applyEffects(fields, next)
		if len(fields) == 0 {
			updated = profile
			result = &UpdateResult{}
			return nil
		}

		affected, err := repo.UpdateFromStatus(ctx, profile.ID, profile.ApprovalStatus, fields)
		if err != nil {
			return mapWriteError(err, "update profile")
		}
		if affected == 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "profile changed concurrently")
		}
		updated, err = repo.FindByID(ctx, profile.ID)
		if err != nil {
			return mapLoadError(err)
		}
		result = &UpdateResult{RequiresReapproval: next.RequiresReapproval}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.RequiresReapproval && s.logg != nil {
		s.logg.Info(s.logg.WithProfileID(ctx, updated.ID.String()), "profile demoted to review after identity edit")
	}
	result.Profile = ToDTO(updated, visibility.Full)
	return result, nil
}

// SubmitForReview moves the owner's draft or rejected profile into the queue.
func (s *service) SubmitForReview(ctx context.Context, userID uuid.UUID) (*ProfileDTO, error) {
	var updated *models.Profile
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		profile, err := repo.LockByUserID(ctx, userID)
		if err != nil {
			return mapLoadError(err)
		}
		updated, err = s.transition(ctx, repo, profile, approval.ActionSubmit, nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	return ToDTO(updated, visibility.Full), nil
}

func (s *service) GetByHandle(ctx context.Context, viewer visibility.Viewer, handle string) (*ProfileDTO, error) {
	profile, err := s.repo.FindByHandle(ctx, handle)
	if err != nil {
		return nil, mapLoadError(err)
	}
	decision, err := visibility.Ensure(viewer, visibility.Target{
		OwnerUserID:    profile.UserID,
		ApprovalStatus: profile.ApprovalStatus,
	}, "profile")
	if err != nil {
		return nil, err
	}
	return ToDTO(profile, decision), nil
}

func (s *service) ListApproved(ctx context.Context, viewer visibility.Viewer, params pagination.Params) (*ProfileListDTO, error) {
	if err := visibility.EnsureCanBrowse(viewer); err != nil {
		return nil, err
	}
	params = params.Normalize()

	var (
		rows  []models.Profile
		total int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		rows, err = s.repo.ListApproved(gctx, params)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.repo.CountApproved(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list profiles")
	}

	cards := make([]ProfileCardDTO, 0, len(rows))
	for _, row := range rows {
		cards = append(cards, toCard(row))
	}
	return &ProfileListDTO{Profiles: cards, Pagination: pagination.NewMeta(total, params)}, nil
}

// transition runs the approval state machine for action and persists the
// outcome with an optimistic status guard.
func (s *service) transition(ctx context.Context, repo Repository, profile *models.Profile, action approval.Action, note *string) (*models.Profile, error) {
	next, err := approval.Transition(profile.ApprovalStatus, action)
	if err != nil {
		return nil, rejectionError(err)
	}

	fields := map[string]any{"approval_status": next.To}
	s.applyEffects(fields, next)
	if next.Effects.SetRejectionNote {
		fields["rejection_note"] = note
	}

	affected, err := repo.UpdateFromStatus(ctx, profile.ID, profile.ApprovalStatus, fields)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update profile status")
	}
	if affected == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "profile status changed concurrently")
	}
	updated, err := repo.FindByID(ctx, profile.ID)
	if err != nil {
		return nil, mapLoadError(err)
	}
	return updated, nil
}

func (s *service) applyEffects(fields map[string]any, next approval.Result) {
	if next.Changed() {
		fields["approval_status"] = next.To
	}
	if next.Effects.ClearRejectionNote {
		fields["rejection_note"] = nil
	}
	if next.Effects.StampApprovedAt {
		fields["approved_at"] = s.now().UTC()
	}
	if next.Effects.ClearApprovedAt {
		fields["approved_at"] = nil
	}
}

func (s *service) ensureHandleFree(ctx context.Context, repo Repository, handle string, exclude uuid.UUID) error {
	taken, err := repo.HandleTaken(ctx, handle, exclude)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check handle")
	}
	if taken {
		return pkgerrors.New(pkgerrors.CodeConflict, "handle is already taken")
	}
	return nil
}

func rejectionError(err error) error {
	var rejection *approval.Rejection
	if errors.As(err, &rejection) {
		return rejection.Err()
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "approval transition")
}

func mapLoadError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return visibility.NotFound("profile")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load profile")
}

func mapWriteError(err error, action string) error {
	if typed := pkgerrors.As(err); typed != nil {
		return typed
	}
	if db.IsUniqueViolation(err, "handle") {
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "handle is already taken")
	}
	if db.IsUniqueViolation(err, "user_id") {
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "profile already exists")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, action)
}
