package needs

import (
	"context"
	"errors"
	"time"

	"github.com/angelmondragon/directory-backend/internal/taxonomy"
	"github.com/angelmondragon/directory-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/directory-backend/pkg/errors"
	"github.com/angelmondragon/directory-backend/pkg/logger"
	"github.com/angelmondragon/directory-backend/pkg/visibility"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type Service interface {
	Get(ctx context.Context, viewer visibility.Viewer, projectID uuid.UUID) (*ProjectNeedsDTO, error)
	Replace(ctx context.Context, viewer visibility.Viewer, projectID uuid.UUID, proposed []NeedInput) (*ProjectNeedsDTO, error)
}

type ServiceParams struct {
	Repo              Repository
	Taxonomy          taxonomy.Resolver
	TransactionRunner txRunner
	Logger            *logger.Logger
	Now               func() time.Time
}

type service struct {
	repo     Repository
	taxonomy taxonomy.Resolver
	tx       txRunner
	logg     *logger.Logger
	now      func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "needs repository required")
	}
	if params.Taxonomy == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "taxonomy resolver required")
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
		taxonomy: params.Taxonomy,
		tx:       params.TransactionRunner,
		logg:     params.Logger,
		now:      now,
	}, nil
}

func (s *service) Get(ctx context.Context, viewer visibility.Viewer, projectID uuid.UUID) (*ProjectNeedsDTO, error) {
	project, err := s.repo.FindProject(ctx, projectID)
	if err != nil {
		return nil, mapLoadError(err)
	}
	if _, err := visibility.Ensure(viewer, target(project), "project"); err != nil {
		return nil, err
	}
	rows, err := s.repo.ListForProject(ctx, projectID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load project needs")
	}
	return groupRows(projectID, rows), nil
}

// Replace swaps the full needs set of a project. Everything is validated
// before the transaction opens; inside it the old set is deleted and the new
// one inserted under the project row lock.
func (s *service) Replace(ctx context.Context, viewer visibility.Viewer, projectID uuid.UUID, proposed []NeedInput) (*ProjectNeedsDTO, error) {
	project, err := s.repo.FindProject(ctx, projectID)
	if err != nil {
		return nil, mapLoadError(err)
	}
	if err := ensureOwner(viewer, project); err != nil {
		return nil, err
	}

	membership, err := s.taxonomy.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	validated, err := Validate(proposed, membership)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	var rows []needRow
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := repo.LockProject(ctx, projectID); err != nil {
			return mapLoadError(err)
		}
		if err := repo.DeleteForProject(ctx, projectID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear project needs")
		}
		if err := repo.Insert(ctx, toModels(projectID, validated, now)); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert project needs")
		}
		rows, err = repo.ListForProject(ctx, projectID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load project needs")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"project_id": projectID.String(),
			"need_count": len(validated),
		})
		s.logg.Info(logCtx, "project needs replaced")
	}
	return groupRows(projectID, rows), nil
}

// ensureOwner hides projects the viewer cannot see before refusing
// non-owners, so existence is never confirmed to outsiders.
func ensureOwner(viewer visibility.Viewer, project *models.Project) error {
	if _, err := visibility.Ensure(viewer, target(project), "project"); err != nil {
		return err
	}
	if project.Creator == nil || project.Creator.UserID != viewer.UserID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "only the project owner can change its needs")
	}
	return nil
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

func toModels(projectID uuid.UUID, needs []Need, now time.Time) []models.ProjectNeed {
	out := make([]models.ProjectNeed, 0, len(needs))
	for _, need := range needs {
		id := uuid.New()
		links := make([]models.ProjectNeedOption, 0, len(need.OptionIDs))
		for _, optionID := range need.OptionIDs {
			links = append(links, models.ProjectNeedOption{ProjectNeedID: id, OptionID: optionID})
		}
		out = append(out, models.ProjectNeed{
			ID:          id,
			ProjectID:   projectID,
			CategoryID:  need.CategoryID,
			ContextText: need.ContextText,
			CreatedAt:   now,
			UpdatedAt:   now,
			Options:     links,
		})
	}
	return out
}

func mapLoadError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return visibility.NotFound("project")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load project")
}
