package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/directory-backend/internal/cron"
	"github.com/angelmondragon/directory-backend/internal/taxonomy"
	"github.com/angelmondragon/directory-backend/internal/users"
	pkgAuth "github.com/angelmondragon/directory-backend/pkg/auth"
	"github.com/angelmondragon/directory-backend/pkg/config"
	"github.com/angelmondragon/directory-backend/pkg/db/models"
	"github.com/angelmondragon/directory-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/directory-backend/pkg/errors"
)

type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error { return s.err }

type stubUsers struct {
	users.Service
	accounts map[uuid.UUID]*models.User
}

func (s stubUsers) Get(_ context.Context, id uuid.UUID) (*models.User, error) {
	if user, ok := s.accounts[id]; ok {
		return user, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
}

func (s stubUsers) Me(_ context.Context, id uuid.UUID) (*users.UserDTO, error) {
	user := s.accounts[id]
	return &users.UserDTO{ID: user.ID, Email: user.Email, Status: user.Status, IsAdmin: user.IsAdmin}, nil
}

type stubTaxonomy struct{ taxonomy.Service }

func (stubTaxonomy) ListActive(context.Context) ([]taxonomy.CategoryDTO, error) {
	return []taxonomy.CategoryDTO{{ID: uuid.New(), Name: "Funding", Slug: "funding"}}, nil
}

type stubSweeper struct{ calls int }

func (s *stubSweeper) Sweep(context.Context, time.Time) (*cron.SweepResult, error) {
	s.calls++
	return &cron.SweepResult{Results: []cron.ReminderResult{}}, nil
}

type fixture struct {
	handler  http.Handler
	cfg      *config.Config
	member   *models.User
	pending  *models.User
	admin    *models.User
	sweeper  *stubSweeper
	registry *prometheus.Registry
}

func newFixture(t *testing.T, dbErr error) *fixture {
	t.Helper()
	cfg := &config.Config{
		App:  config.AppConfig{Env: "test"},
		JWT:  config.JWTConfig{Secret: "secret", Issuer: "directory", ExpirationMinutes: 60},
		CORS: config.CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}},
	}
	f := &fixture{
		cfg:      cfg,
		member:   &models.User{ID: uuid.New(), Email: "ada@example.com", Status: enums.UserStatusApproved},
		pending:  &models.User{ID: uuid.New(), Email: "new@example.com", Status: enums.UserStatusPending},
		admin:    &models.User{ID: uuid.New(), Email: "ops@example.com", Status: enums.UserStatusApproved, IsAdmin: true},
		sweeper:  &stubSweeper{},
		registry: prometheus.NewRegistry(),
	}
	accounts := map[uuid.UUID]*models.User{f.member.ID: f.member, f.pending.ID: f.pending, f.admin.ID: f.admin}
	f.handler = NewRouter(cfg, nil, Dependencies{
		DB:        stubPinger{err: dbErr},
		Gatherer:  f.registry,
		Users:     stubUsers{accounts: accounts},
		Taxonomy:  stubTaxonomy{},
		Reminders: f.sweeper,
	})
	return f
}

func (f *fixture) do(t *testing.T, method, path string, user *models.User) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(""))
	if user != nil {
		token, err := pkgAuth.MintAccessToken(f.cfg.JWT, time.Now().UTC(), pkgAuth.AccessTokenPayload{UserID: user.ID, JTI: uuid.NewString()})
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func TestHealthRoutes(t *testing.T) {
	f := newFixture(t, nil)
	assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/health/live", nil).Code)

	rec := f.do(t, http.MethodGet, "/health/ready", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"redis":"disabled"`)
}

func TestReadinessFailsWhenDatabaseDown(t *testing.T) {
	f := newFixture(t, assert.AnError)
	assert.Equal(t, http.StatusServiceUnavailable, f.do(t, http.MethodGet, "/health/ready", nil).Code)
}

func TestMetricsEndpoint(t *testing.T) {
	f := newFixture(t, nil)
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "directory_router_test_total"})
	f.registry.MustRegister(counter)
	counter.Inc()

	rec := f.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "directory_router_test_total 1")
}

func TestTaxonomyIsPublic(t *testing.T) {
	f := newFixture(t, nil)
	rec := f.do(t, http.MethodGet, "/api/v1/needs/taxonomy", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"slug":"funding"`)
}

func TestMemberRoutesRequireToken(t *testing.T) {
	f := newFixture(t, nil)
	assert.Equal(t, http.StatusUnauthorized, f.do(t, http.MethodGet, "/api/v1/me", nil).Code)

	rec := f.do(t, http.MethodGet, "/api/v1/me", f.pending)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), f.pending.Email)
}

func TestPendingAccountCannotBrowse(t *testing.T) {
	f := newFixture(t, nil)
	rec := f.do(t, http.MethodGet, "/api/v1/profiles", f.pending)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAdminRoutesRequireAdmin(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(t, http.MethodPost, "/api/admin/v1/tasks/send-need-reminders", f.member)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Zero(t, f.sweeper.calls)

	rec = f.do(t, http.MethodPost, "/api/admin/v1/tasks/send-need-reminders", f.admin)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, f.sweeper.calls)
}

func TestUnwiredServiceAnswersInternalError(t *testing.T) {
	f := newFixture(t, nil)
	rec := f.do(t, http.MethodGet, "/api/v1/projects/mine", f.member)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestStripeWebhookWithoutClient(t *testing.T) {
	f := newFixture(t, nil)
	rec := f.do(t, http.MethodPost, "/api/v1/webhooks/stripe", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
