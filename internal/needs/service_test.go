package needs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/angelmondragon/directory-backend/internal/taxonomy"
	"github.com/angelmondragon/directory-backend/internal/testutil"
	"github.com/angelmondragon/directory-backend/pkg/db"
	"github.com/angelmondragon/directory-backend/pkg/db/models"
	"github.com/angelmondragon/directory-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/directory-backend/pkg/errors"
	"github.com/angelmondragon/directory-backend/pkg/visibility"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	conn    *gorm.DB
	svc     Service
	tax     testutil.Taxonomy
	now     time.Time
	owner   visibility.Viewer
	member  visibility.Viewer
	project *models.Project
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	conn := testutil.SetupTestDB(t)
	f := &fixture{
		conn: conn,
		tax:  testutil.SeedTaxonomy(t, conn),
		now:  time.Date(2026, 5, 4, 9, 30, 0, 0, time.UTC),
	}
	f.svc = f.build(t, NewRepository(conn))

	ownerUser, ownerProfile := testutil.Member(t, conn, "builder")
	memberUser, _ := testutil.Member(t, conn, "reader")
	f.owner = visibility.Viewer{UserID: ownerUser.ID, Status: enums.UserStatusApproved}
	f.member = visibility.Viewer{UserID: memberUser.ID, Status: enums.UserStatusApproved}
	f.project = testutil.CreateProject(t, conn, ownerProfile, "Solar kiln")
	return f
}

func (f *fixture) build(t *testing.T, repo Repository) Service {
	t.Helper()
	resolver, err := taxonomy.NewService(taxonomy.ServiceParams{
		Repo:              taxonomy.NewRepository(f.conn),
		TransactionRunner: db.FromConn(f.conn),
	})
	require.NoError(t, err)
	svc, err := NewService(ServiceParams{
		Repo:              repo,
		Taxonomy:          resolver,
		TransactionRunner: db.FromConn(f.conn),
		Now:               func() time.Time { return f.now },
	})
	require.NoError(t, err)
	return svc
}

func (f *fixture) option(key string) uuid.UUID   { return f.tax.Options[key].ID }
func (f *fixture) category(key string) uuid.UUID { return f.tax.Categories[key].ID }

func (f *fixture) initialSet() []NeedInput {
	return []NeedInput{
		{CategoryID: f.category("engineering"), OptionIDs: []uuid.UUID{f.option("engineering/frontend"), f.option("engineering/backend")}},
		{CategoryID: f.category("funding"), OptionIDs: []uuid.UUID{f.option("funding/angels")}, ContextText: ptr("pre-seed")},
	}
}

func (f *fixture) countRows(t *testing.T, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.conn.Model(model).Count(&n).Error)
	return n
}

func requireCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed, "expected typed error, got %v", err)
	assert.Equal(t, code, typed.Code(), typed.Error())
}

func TestReplaceAndRead(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	written, err := f.svc.Replace(ctx, f.owner, f.project.ID, f.initialSet())
	require.NoError(t, err)
	require.Len(t, written.Needs, 2)

	read, err := f.svc.Get(ctx, f.member, f.project.ID)
	require.NoError(t, err)
	require.Len(t, read.Needs, 2)

	funding := read.Needs[0]
	assert.Equal(t, "funding", funding.Category.Slug)
	require.Len(t, funding.Options, 1)
	assert.Equal(t, "angels", funding.Options[0].Name)
	require.NotNil(t, funding.ContextText)
	assert.Equal(t, "pre-seed", *funding.ContextText)
	assert.True(t, funding.UpdatedAt.Equal(f.now))

	engineering := read.Needs[1]
	assert.Equal(t, "engineering", engineering.Category.Slug)
	require.Len(t, engineering.Options, 2)
	assert.Equal(t, "backend", engineering.Options[0].Slug)
	assert.Equal(t, "frontend", engineering.Options[1].Slug)
}

func TestReplaceSwapsWholeSet(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.Replace(ctx, f.owner, f.project.ID, f.initialSet())
	require.NoError(t, err)

	next := []NeedInput{{CategoryID: f.category("design"), OptionIDs: []uuid.UUID{f.option("design/brand")}}}
	got, err := f.svc.Replace(ctx, f.owner, f.project.ID, next)
	require.NoError(t, err)
	require.Len(t, got.Needs, 1)
	assert.Equal(t, "design", got.Needs[0].Category.Slug)
	assert.Equal(t, int64(1), f.countRows(t, &models.ProjectNeed{}))
	assert.Equal(t, int64(1), f.countRows(t, &models.ProjectNeedOption{}))

	cleared, err := f.svc.Replace(ctx, f.owner, f.project.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, cleared.Needs)
	assert.Zero(t, f.countRows(t, &models.ProjectNeed{}))
	assert.Zero(t, f.countRows(t, &models.ProjectNeedOption{}))
}

func TestInvalidReplaceLeavesPreviousSet(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.Replace(ctx, f.owner, f.project.ID, f.initialSet())
	require.NoError(t, err)

	_, err = f.svc.Replace(ctx, f.owner, f.project.ID, []NeedInput{
		{CategoryID: f.category("design"), OptionIDs: []uuid.UUID{f.option("design/brand")}},
		{CategoryID: f.category("marketing"), OptionIDs: []uuid.UUID{f.option("engineering/backend")}},
	})
	requireReason(t, err, ReasonOptionCategoryMismatch)

	read, err := f.svc.Get(ctx, f.owner, f.project.ID)
	require.NoError(t, err)
	require.Len(t, read.Needs, 2)
	assert.Equal(t, int64(3), f.countRows(t, &models.ProjectNeedOption{}))
}

func TestInactiveTaxonomyIsRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Replace(ctx, f.owner, f.project.ID, []NeedInput{
		{CategoryID: f.category("funding"), OptionIDs: []uuid.UUID{f.option("funding/retired")}},
	})
	requireReason(t, err, ReasonInvalidOption)

	_, err = f.svc.Replace(ctx, f.owner, f.project.ID, []NeedInput{
		{CategoryID: f.category("legacy"), OptionIDs: []uuid.UUID{f.option("legacy/fax")}},
	})
	requireReason(t, err, ReasonInvalidCategory)
}

func TestReadKeepsNamesOfRetiredOptions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.Replace(ctx, f.owner, f.project.ID, f.initialSet())
	require.NoError(t, err)
	require.NoError(t, f.conn.Model(&models.NeedOption{}).
		Where("id = ?", f.option("funding/angels")).
		Update("active", false).Error)

	read, err := f.svc.Get(ctx, f.member, f.project.ID)
	require.NoError(t, err)
	assert.Equal(t, "angels", read.Needs[0].Options[0].Name)
}

// failingInsertRepo deletes for real and then fails the insert, leaving the
// transaction to undo the delete.
type failingInsertRepo struct {
	Repository
}

func (r failingInsertRepo) WithTx(tx *gorm.DB) Repository {
	return failingInsertRepo{Repository: r.Repository.WithTx(tx)}
}

func (failingInsertRepo) Insert(context.Context, []models.ProjectNeed) error {
	return errors.New("disk full")
}

func TestFailedInsertRollsBackDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.Replace(ctx, f.owner, f.project.ID, f.initialSet())
	require.NoError(t, err)

	broken := f.build(t, failingInsertRepo{Repository: NewRepository(f.conn)})
	_, err = broken.Replace(ctx, f.owner, f.project.ID, []NeedInput{
		{CategoryID: f.category("design"), OptionIDs: []uuid.UUID{f.option("design/brand")}},
	})
	requireCode(t, err, pkgerrors.CodeDependency)

	read, err := f.svc.Get(ctx, f.owner, f.project.ID)
	require.NoError(t, err)
	require.Len(t, read.Needs, 2)
	assert.Equal(t, "funding", read.Needs[0].Category.Slug)
	assert.Equal(t, "engineering", read.Needs[1].Category.Slug)
}

func TestReplaceAuthorization(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	set := f.initialSet()

	_, err := f.svc.Replace(ctx, f.member, f.project.ID, set)
	requireCode(t, err, pkgerrors.CodeForbidden)

	admin := visibility.Viewer{UserID: uuid.New(), IsAdmin: true, Status: enums.UserStatusApproved}
	_, err = f.svc.Replace(ctx, admin, f.project.ID, set)
	requireCode(t, err, pkgerrors.CodeForbidden)

	_, err = f.svc.Replace(ctx, f.owner, uuid.New(), set)
	requireCode(t, err, pkgerrors.CodeNotFound)

	hiddenUser := testutil.CreateUser(t, f.conn, enums.UserStatusPending)
	hiddenProfile := testutil.CreateProfile(t, f.conn, hiddenUser, "stealth", enums.ApprovalStatusDraft)
	hidden := testutil.CreateProject(t, f.conn, hiddenProfile, "Quiet build")
	_, err = f.svc.Replace(ctx, f.member, hidden.ID, set)
	requireCode(t, err, pkgerrors.CodeNotFound)

	owner := visibility.Viewer{UserID: hiddenUser.ID, Status: enums.UserStatusPending}
	_, err = f.svc.Replace(ctx, owner, hidden.ID, set)
	require.NoError(t, err)
}

func TestGetVisibility(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	draftUser := testutil.CreateUser(t, f.conn, enums.UserStatusApproved)
	testutil.CreateProfile(t, f.conn, draftUser, "drafting", enums.ApprovalStatusDraft)
	unapprovedProfileViewer := visibility.Viewer{UserID: draftUser.ID, Status: enums.UserStatusApproved}

	_, err := f.svc.Get(ctx, unapprovedProfileViewer, f.project.ID)
	require.NoError(t, err)

	hiddenUser := testutil.CreateUser(t, f.conn, enums.UserStatusPending)
	hiddenProfile := testutil.CreateProfile(t, f.conn, hiddenUser, "stealth", enums.ApprovalStatusPendingReview)
	hidden := testutil.CreateProject(t, f.conn, hiddenProfile, "Quiet build")
	_, err = f.svc.Get(ctx, unapprovedProfileViewer, hidden.ID)
	requireCode(t, err, pkgerrors.CodeNotFound)

	pending := visibility.Viewer{UserID: uuid.New(), Status: enums.UserStatusPending}
	_, err = f.svc.Get(ctx, pending, f.project.ID)
	requireCode(t, err, pkgerrors.CodeForbidden)
}
