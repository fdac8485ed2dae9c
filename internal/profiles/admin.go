package profiles

import (
	"context"
	"strings"

	"github.com/angelmondragon/directory-backend/internal/approval"
	"github.com/angelmondragon/directory-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/directory-backend/pkg/errors"
	"github.com/angelmondragon/directory-backend/pkg/visibility"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func (s *service) ListPending(ctx context.Context) ([]ProfileDTO, error) {
	rows, err := s.repo.ListPending(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list pending profiles")
	}
	out := make([]ProfileDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *ToDTO(&rows[i], visibility.Full))
	}
	return out, nil
}

func (s *service) GetForAdmin(ctx context.Context, profileID uuid.UUID) (*ProfileDTO, error) {
	profile, err := s.repo.FindByID(ctx, profileID)
	if err != nil {
		return nil, mapLoadError(err)
	}
	return ToDTO(profile, visibility.Full), nil
}

// Approve publishes a pending profile and promotes its pending owner in the
// same transaction.
func (s *service) Approve(ctx context.Context, adminID, profileID uuid.UUID) (*ProfileDTO, error) {
	var (
		updated *models.Profile
		owner   *models.User
	)
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		profile, err := repo.LockByID(ctx, profileID)
		if err != nil {
			return mapLoadError(err)
		}
		updated, err = s.transition(ctx, repo, profile, approval.ActionApprove, nil)
		if err != nil {
			return err
		}
		if err := s.users.ApproveIfPendingWithTx(tx, profile.UserID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "approve owner account")
		}
		owner, err = s.users.FindByIDWithTx(tx, profile.UserID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load owner account")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	updated.User = owner

	s.audit(ctx, adminID, profileID, "profile approved")
	if s.notifier != nil {
		if err := s.notifier.SendProfileApproved(context.WithoutCancel(ctx), owner.Email, updated.Name); err != nil {
			s.logSendFailure(ctx, profileID, "profile approved email failed", err)
		}
	}
	return ToDTO(updated, visibility.Full), nil
}

// Reject sends a pending profile back to its owner with an optional note.
func (s *service) Reject(ctx context.Context, adminID, profileID uuid.UUID, note *string) (*ProfileDTO, error) {
	note = trimNote(note)
	var (
		updated *models.Profile
		owner   *models.User
	)
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		profile, err := repo.LockByID(ctx, profileID)
		if err != nil {
			return mapLoadError(err)
		}
		updated, err = s.transition(ctx, repo, profile, approval.ActionReject, note)
		if err != nil {
			return err
		}
		owner, err = s.users.FindByIDWithTx(tx, profile.UserID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load owner account")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	updated.User = owner

	s.audit(ctx, adminID, profileID, "profile rejected")
	if s.notifier != nil {
		if err := s.notifier.SendProfileRejected(context.WithoutCancel(ctx), owner.Email, updated.Name, note); err != nil {
			s.logSendFailure(ctx, profileID, "profile rejected email failed", err)
		}
	}
	return ToDTO(updated, visibility.Full), nil
}

func trimNote(note *string) *string {
	if note == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*note)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func (s *service) audit(ctx context.Context, adminID, profileID uuid.UUID, msg string) {
	if s.logg == nil {
		return
	}
	ctx = s.logg.WithFields(ctx, map[string]any{
		"admin_id":   adminID.String(),
		"profile_id": profileID.String(),
	})
	s.logg.Info(ctx, msg)
}

func (s *service) logSendFailure(ctx context.Context, profileID uuid.UUID, msg string, err error) {
	if s.logg == nil {
		return
	}
	s.logg.Error(s.logg.WithProfileID(ctx, profileID.String()), msg, err)
}
