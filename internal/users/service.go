package users

import (
	"context"
	"errors"

	"github.com/angelmondragon/directory-backend/pkg/db/models"
	"github.com/angelmondragon/directory-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/directory-backend/pkg/errors"
	"github.com/angelmondragon/directory-backend/pkg/pagination"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

type repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByIDWithProfile(ctx context.Context, id uuid.UUID) (*models.User, error)
	List(ctx context.Context, params pagination.Params) ([]models.User, error)
	Count(ctx context.Context) (int64, error)
	UpdateStatusFrom(ctx context.Context, id uuid.UUID, from, to enums.UserStatus) (int64, error)
	SetEmployerByCustomerID(ctx context.Context, customerID string, employer bool) (int64, error)
}

// Service manages account state outside of the profile approval flow.
type Service interface {
	Get(ctx context.Context, id uuid.UUID) (*models.User, error)
	Me(ctx context.Context, id uuid.UUID) (*UserDTO, error)
	List(ctx context.Context, params pagination.Params) (*UserListDTO, error)
	Suspend(ctx context.Context, id uuid.UUID) (*UserDTO, error)
	Reinstate(ctx context.Context, id uuid.UUID) (*UserDTO, error)
	SetEmployerByCustomerID(ctx context.Context, customerID string, employer bool) (bool, error)
}

type service struct {
	repo repository
}

func NewService(repo repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "user repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapLoadError(err)
	}
	return user, nil
}

func (s *service) Me(ctx context.Context, id uuid.UUID) (*UserDTO, error) {
	user, err := s.repo.FindByIDWithProfile(ctx, id)
	if err != nil {
		return nil, mapLoadError(err)
	}
	return FromModel(user), nil
}

func (s *service) List(ctx context.Context, params pagination.Params) (*UserListDTO, error) {
	params = params.Normalize()

	var (
		rows  []models.User
		total int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		rows, err = s.repo.List(gctx, params)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.repo.Count(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list users")
	}

	out := make([]UserDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return &UserListDTO{Users: out, Pagination: pagination.NewMeta(total, params)}, nil
}

// Suspend blocks a non-admin account from the directory.
func (s *service) Suspend(ctx context.Context, id uuid.UUID) (*UserDTO, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.IsAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "cannot suspend admin users")
	}
	if user.Status == enums.UserStatusSuspended {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "user is already suspended")
	}
	return s.moveStatus(ctx, user, enums.UserStatusSuspended)
}

// Reinstate restores a suspended account to approved.
func (s *service) Reinstate(ctx context.Context, id uuid.UUID) (*UserDTO, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.Status != enums.UserStatusSuspended {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "user is not suspended")
	}
	return s.moveStatus(ctx, user, enums.UserStatusApproved)
}

// SetEmployerByCustomerID reports false when no user is bound to the customer.
func (s *service) SetEmployerByCustomerID(ctx context.Context, customerID string, employer bool) (bool, error) {
	if customerID == "" {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "customer id required")
	}
	affected, err := s.repo.SetEmployerByCustomerID(ctx, customerID, employer)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update employer flag")
	}
	return affected > 0, nil
}

func (s *service) moveStatus(ctx context.Context, user *models.User, to enums.UserStatus) (*UserDTO, error) {
	affected, err := s.repo.UpdateStatusFrom(ctx, user.ID, user.Status, to)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update user status")
	}
	if affected == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "user status changed concurrently")
	}
	user.Status = to
	return FromModel(user), nil
}

func mapLoadError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "user not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
}
