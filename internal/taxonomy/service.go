package taxonomy

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/angelmondragon/directory-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/directory-backend/pkg/errors"
	"github.com/angelmondragon/directory-backend/pkg/logger"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

const cacheVersion = "v1"

// Cache is the subset of the redis client the read-through cache needs.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	CacheKey(parts ...string) string
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Resolver is what the needs validator depends on.
type Resolver interface {
	Resolve(ctx context.Context) (Membership, error)
}

type Service interface {
	Resolver
	ListActive(ctx context.Context) ([]CategoryDTO, error)
	Invalidate(ctx context.Context) error
	Seed(ctx context.Context, categories []SeedCategory) (*SeedReport, error)
}

type ServiceParams struct {
	Repo              Repository
	TransactionRunner txRunner
	// Cache is optional; without it every read goes to the database.
	Cache    Cache
	CacheTTL time.Duration
	Logger   *logger.Logger
}

type service struct {
	repo     Repository
	tx       txRunner
	cache    Cache
	cacheTTL time.Duration
	logg     *logger.Logger
	loads    singleflight.Group
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "taxonomy repository required")
	}
	if params.TransactionRunner == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "transaction runner required")
	}
	ttl := params.CacheTTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &service{
		repo:     params.Repo,
		tx:       params.TransactionRunner,
		cache:    params.Cache,
		cacheTTL: ttl,
		logg:     params.Logger,
	}, nil
}

// ListActive serves the taxonomy from cache, loading it once per miss.
func (s *service) ListActive(ctx context.Context) ([]CategoryDTO, error) {
	if cached, ok := s.readCache(ctx); ok {
		return cached, nil
	}

	v, err, _ := s.loads.Do("active", func() (any, error) {
		// Shared by every waiter, so one caller going away must not fail the rest.
		loadCtx := context.WithoutCancel(ctx)
		rows, err := s.repo.ListActive(loadCtx)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load taxonomy")
		}
		categories := categoriesFromModels(rows)
		s.writeCache(loadCtx, categories)
		return categories, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]CategoryDTO), nil
}

func (s *service) Resolve(ctx context.Context) (Membership, error) {
	categories, err := s.ListActive(ctx)
	if err != nil {
		return Membership{}, err
	}
	return NewMembership(categories), nil
}

// Invalidate drops the cached taxonomy so the next read hits the database.
func (s *service) Invalidate(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	if err := s.cache.Del(ctx, s.cacheKey()); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "invalidate taxonomy cache")
	}
	return nil
}

func (s *service) cacheKey() string {
	return s.cache.CacheKey("taxonomy", cacheVersion)
}

func (s *service) readCache(ctx context.Context) ([]CategoryDTO, bool) {
	if s.cache == nil {
		return nil, false
	}
	raw, err := s.cache.Get(ctx, s.cacheKey())
	if err != nil {
		if !errors.Is(err, goredis.Nil) {
			s.warn(ctx, "taxonomy cache read failed", err)
		}
		return nil, false
	}
	var categories []CategoryDTO
	if err := json.Unmarshal([]byte(raw), &categories); err != nil {
		s.warn(ctx, "taxonomy cache payload invalid", err)
		return nil, false
	}
	return categories, true
}

func (s *service) writeCache(ctx context.Context, categories []CategoryDTO) {
	if s.cache == nil {
		return
	}
	payload, err := json.Marshal(categories)
	if err != nil {
		s.warn(ctx, "taxonomy cache encode failed", err)
		return
	}
	if err := s.cache.Set(ctx, s.cacheKey(), string(payload), s.cacheTTL); err != nil {
		s.warn(ctx, "taxonomy cache write failed", err)
	}
}

func (s *service) warn(ctx context.Context, msg string, err error) {
	if s.logg == nil {
		return
	}
	s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), msg)
}

// Seed upserts categories and options by slug. Rank follows slice order.
func (s *service) Seed(ctx context.Context, categories []SeedCategory) (*SeedReport, error) {
	report := &SeedReport{}
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		for i, entry := range categories {
			category, created, err := upsertCategory(ctx, repo, entry, i)
			if err != nil {
				return err
			}
			report.countCategory(created)
			for j, opt := range entry.Options {
				created, err := upsertOption(ctx, repo, category.ID, opt, j)
				if err != nil {
					return err
				}
				report.countOption(created)
			}
		}
		return nil
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "seed taxonomy")
	}
	if err := s.Invalidate(ctx); err != nil {
		return report, err
	}
	return report, nil
}

func upsertCategory(ctx context.Context, repo Repository, entry SeedCategory, rank int) (*models.NeedCategory, bool, error) {
	existing, err := repo.FindCategoryBySlug(ctx, entry.Slug)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}
	if existing == nil {
		category := &models.NeedCategory{Name: entry.Name, Slug: entry.Slug, SortOrder: rank, Active: true}
		if err := repo.CreateCategory(ctx, category); err != nil {
			return nil, false, err
		}
		return category, true, nil
	}
	err = repo.UpdateCategory(ctx, existing.ID, map[string]any{
		"name":       entry.Name,
		"sort_order": rank,
		"active":     true,
	})
	return existing, false, err
}

func upsertOption(ctx context.Context, repo Repository, categoryID uuid.UUID, entry SeedOption, rank int) (bool, error) {
	existing, err := repo.FindOption(ctx, categoryID, entry.Slug)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}
	if existing == nil {
		return true, repo.CreateOption(ctx, &models.NeedOption{
			CategoryID: categoryID,
			Name:       entry.Name,
			Slug:       entry.Slug,
			SortOrder:  rank,
			Active:     true,
		})
	}
	return false, repo.UpdateOption(ctx, existing.ID, map[string]any{
		"name":       entry.Name,
		"sort_order": rank,
		"active":     true,
	})
}
