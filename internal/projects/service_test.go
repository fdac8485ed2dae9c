package projects

import (
	"context"
	"testing"
	"time"

	"github.com/angelmondragon/directory-backend/internal/profiles"
	"github.com/angelmondragon/directory-backend/internal/testutil"
	"github.com/angelmondragon/directory-backend/pkg/db"
	"github.com/angelmondragon/directory-backend/pkg/db/models"
	"github.com/angelmondragon/directory-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/directory-backend/pkg/errors"
	"github.com/angelmondragon/directory-backend/pkg/pagination"
	"github.com/angelmondragon/directory-backend/pkg/visibility"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newService(t *testing.T, conn *gorm.DB) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Repo:              NewRepository(conn),
		Profiles:          profiles.NewRepository(conn),
		TransactionRunner: db.FromConn(conn),
	})
	require.NoError(t, err)
	return svc
}

func str(v string) *string { return &v }

func viewerOf(user *models.User) visibility.Viewer {
	return visibility.Viewer{UserID: user.ID, IsAdmin: user.IsAdmin, Status: user.Status}
}

func requireCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed, "expected typed error, got %v", err)
	assert.Equal(t, code, typed.Code(), typed.Error())
}

func TestCreateRequiresApprovedProfile(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	svc := newService(t, conn)
	ctx := context.Background()

	bare := testutil.CreateUser(t, conn, enums.UserStatusApproved)
	_, err := svc.Create(ctx, bare.ID, ProjectInput{Title: str("Kiln")})
	requireCode(t, err, pkgerrors.CodeValidation)

	drafter := testutil.CreateUser(t, conn, enums.UserStatusPending)
	testutil.CreateProfile(t, conn, drafter, "drafter", enums.ApprovalStatusDraft)
	_, err = svc.Create(ctx, drafter.ID, ProjectInput{Title: str("Kiln")})
	requireCode(t, err, pkgerrors.CodeForbidden)

	member, _ := testutil.Member(t, conn, "maker")
	_, err = svc.Create(ctx, member.ID, ProjectInput{Title: str("   ")})
	requireCode(t, err, pkgerrors.CodeValidation)
	_, err = svc.Create(ctx, member.ID, ProjectInput{Title: str("Kiln"), Status: str("paused")})
	requireCode(t, err, pkgerrors.CodeValidation)

	dto, err := svc.Create(ctx, member.ID, ProjectInput{
		Title:      str(" Solar <b>kiln</b> "),
		RepoURL:    str("github.com/maker/kiln"),
		WebsiteURL: str(""),
	})
	require.NoError(t, err)
	assert.Equal(t, "Solar kiln", dto.Title)
	assert.Equal(t, enums.ProjectStatusActive, dto.Status)
	require.NotNil(t, dto.RepoURL)
	assert.Equal(t, "https://github.com/maker/kiln", *dto.RepoURL)
	assert.Nil(t, dto.WebsiteURL)
	assert.Equal(t, "maker", dto.Creator.Handle)
}

func TestListShowsApprovedCreatorsNewestFirst(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	svc := newService(t, conn)
	ctx := context.Background()

	viewer, approved := testutil.Member(t, conn, "visible")
	older := testutil.CreateProject(t, conn, approved, "Older")
	newer := testutil.CreateProject(t, conn, approved, "Newer")
	require.NoError(t, conn.Model(older).UpdateColumn("created_at", time.Now().Add(-48*time.Hour)).Error)

	hiddenUser := testutil.CreateUser(t, conn, enums.UserStatusPending)
	hidden := testutil.CreateProfile(t, conn, hiddenUser, "hidden", enums.ApprovalStatusPendingReview)
	testutil.CreateProject(t, conn, hidden, "Masked")

	page, err := svc.List(ctx, viewerOf(viewer), pagination.Params{Limit: 1})
	require.NoError(t, err)
	require.Len(t, page.Projects, 1)
	assert.Equal(t, newer.ID, page.Projects[0].ID)
	assert.Equal(t, int64(2), page.Pagination.Total)
	assert.True(t, page.Pagination.HasMore)

	page, err = svc.List(ctx, viewerOf(viewer), pagination.Params{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page.Projects, 1)
	assert.Equal(t, older.ID, page.Projects[0].ID)

	_, err = svc.List(ctx, viewerOf(hiddenUser), pagination.Params{})
	requireCode(t, err, pkgerrors.CodeForbidden)
}

func TestGetAppliesVisibility(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	svc := newService(t, conn)
	ctx := context.Background()

	owner, profile := testutil.Member(t, conn, "owner")
	project := testutil.CreateProject(t, conn, profile, "Public build")
	reader, _ := testutil.Member(t, conn, "reader")

	dto, err := svc.Get(ctx, viewerOf(reader), project.ID)
	require.NoError(t, err)
	assert.Nil(t, dto.Creator.UserID)

	dto, err = svc.Get(ctx, viewerOf(owner), project.ID)
	require.NoError(t, err)
	require.NotNil(t, dto.Creator.UserID)
	assert.Equal(t, owner.ID, *dto.Creator.UserID)

	hiddenUser := testutil.CreateUser(t, conn, enums.UserStatusPending)
	hiddenProfile := testutil.CreateProfile(t, conn, hiddenUser, "hidden", enums.ApprovalStatusRejected)
	hidden := testutil.CreateProject(t, conn, hiddenProfile, "Masked")

	_, err = svc.Get(ctx, viewerOf(reader), hidden.ID)
	requireCode(t, err, pkgerrors.CodeNotFound)
	_, err = svc.Get(ctx, viewerOf(reader), uuid.New())
	requireCode(t, err, pkgerrors.CodeNotFound)
	_, err = svc.Get(ctx, viewerOf(hiddenUser), project.ID)
	requireCode(t, err, pkgerrors.CodeForbidden)

	_, err = svc.Get(ctx, viewerOf(testutil.CreateAdmin(t, conn)), hidden.ID)
	require.NoError(t, err)
}

func TestUpdateIsOwnerOnly(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	svc := newService(t, conn)
	ctx := context.Background()

	owner, profile := testutil.Member(t, conn, "owner")
	project := testutil.CreateProject(t, conn, profile, "Draft title")
	other, _ := testutil.Member(t, conn, "other")
	admin := testutil.CreateAdmin(t, conn)

	_, err := svc.Update(ctx, viewerOf(other), project.ID, ProjectInput{Title: str("Hijack")})
	requireCode(t, err, pkgerrors.CodeForbidden)
	_, err = svc.Update(ctx, viewerOf(admin), project.ID, ProjectInput{Title: str("Hijack")})
	requireCode(t, err, pkgerrors.CodeForbidden)

	dto, err := svc.Update(ctx, viewerOf(owner), project.ID, ProjectInput{
		Title:       str("Final title"),
		Status:      str("completed"),
		Description: str("line one\n\n\n\nline two"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Final title", dto.Title)
	assert.Equal(t, enums.ProjectStatusCompleted, dto.Status)
	require.NotNil(t, dto.Description)
	assert.Equal(t, "line one\n\nline two", *dto.Description)
}

func TestDeleteRemovesDependents(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	svc := newService(t, conn)
	ctx := context.Background()
	tax := testutil.SeedTaxonomy(t, conn)

	owner, profile := testutil.Member(t, conn, "owner")
	follower, _ := testutil.Member(t, conn, "follower")
	project := testutil.CreateProject(t, conn, profile, "Doomed")
	need := models.ProjectNeed{ProjectID: project.ID, CategoryID: tax.Categories["design"].ID, UpdatedAt: time.Now()}
	require.NoError(t, conn.Create(&need).Error)
	require.NoError(t, conn.Create(&models.ProjectNeedOption{ProjectNeedID: need.ID, OptionID: tax.Options["design/brand"].ID}).Error)
	require.NoError(t, conn.Create(&models.ProjectFollow{UserID: follower.ID, ProjectID: project.ID}).Error)

	err := svc.Delete(ctx, viewerOf(follower), project.ID)
	requireCode(t, err, pkgerrors.CodeForbidden)

	require.NoError(t, svc.Delete(ctx, viewerOf(owner), project.ID))
	for _, model := range []any{&models.Project{}, &models.ProjectNeed{}, &models.ProjectNeedOption{}, &models.ProjectFollow{}} {
		var n int64
		require.NoError(t, conn.Model(model).Count(&n).Error)
		assert.Zero(t, n, "%T rows left", model)
	}

	second := testutil.CreateProject(t, conn, profile, "Moderated")
	require.NoError(t, svc.Delete(ctx, viewerOf(testutil.CreateAdmin(t, conn)), second.ID))
}

func TestMineAndArchive(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	svc := newService(t, conn)
	ctx := context.Background()

	nobody := testutil.CreateUser(t, conn, enums.UserStatusPending)
	mine, err := svc.Mine(ctx, nobody.ID)
	require.NoError(t, err)
	assert.Empty(t, mine)

	user := testutil.CreateUser(t, conn, enums.UserStatusPending)
	profile := testutil.CreateProfile(t, conn, user, "quiet", enums.ApprovalStatusDraft)
	project := testutil.CreateProject(t, conn, profile, "Unlisted")
	mine, err = svc.Mine(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, project.ID, mine[0].ID)

	admin := testutil.CreateAdmin(t, conn)
	require.NoError(t, svc.Archive(ctx, admin.ID, project.ID))
	var stored models.Project
	require.NoError(t, conn.First(&stored, "id = ?", project.ID).Error)
	assert.Equal(t, enums.ProjectStatusArchived, stored.Status)

	requireCode(t, svc.Archive(ctx, admin.ID, uuid.New()), pkgerrors.CodeNotFound)
}
