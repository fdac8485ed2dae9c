package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/angelmondragon/directory-backend/internal/profiles"
	"github.com/angelmondragon/directory-backend/internal/testutil"
	"github.com/angelmondragon/directory-backend/internal/users"
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

var fixedNow = time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)

func newService(t *testing.T, conn *gorm.DB) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Repo:     NewRepository(conn),
		Profiles: profiles.NewRepository(conn),
		Users:    users.NewRepository(conn),
		Now:      func() time.Time { return fixedNow },
	})
	require.NoError(t, err)
	return svc
}

func str(v string) *string { return &v }

func employer(t *testing.T, conn *gorm.DB, handle string) (*models.User, *models.Profile) {
	t.Helper()
	user, profile := testutil.Member(t, conn, handle)
	require.NoError(t, conn.Model(user).Update("is_employer", true).Error)
	user.IsEmployer = true
	return user, profile
}

func validInput() JobInput {
	return JobInput{
		Title:       str("Firmware engineer"),
		CompanyName: str("Kiln Works"),
		Type:        str("contract"),
		ApplyURL:    str("https://kiln.works/jobs/1"),
	}
}

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

func TestCreateJob(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	svc := newService(t, conn)
	ctx := context.Background()

	member, _ := testutil.Member(t, conn, "member")
	_, err := svc.Create(ctx, member.ID, validInput())
	requireCode(t, err, pkgerrors.CodeForbidden)

	boss, _ := employer(t, conn, "boss")
	dto, err := svc.Create(ctx, boss.ID, validInput())
	require.NoError(t, err)
	assert.True(t, dto.Active)
	assert.Equal(t, enums.JobTypeContract, dto.Type)
	assert.True(t, dto.ExpiresAt.Equal(fixedNow.Add(DefaultExpiry)))
	assert.Equal(t, "boss", dto.Poster.Handle)

	custom := validInput()
	expiry := fixedNow.Add(72 * time.Hour)
	custom.ExpiresAt = &expiry
	dto, err = svc.Create(ctx, boss.ID, custom)
	require.NoError(t, err)
	assert.True(t, dto.ExpiresAt.Equal(expiry))
}

func TestCreateJobValidation(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	svc := newService(t, conn)
	ctx := context.Background()
	boss, _ := employer(t, conn, "boss")

	mutations := map[string]func(*JobInput){
		"missing title":   func(in *JobInput) { in.Title = nil },
		"blank company":   func(in *JobInput) { in.CompanyName = str("  ") },
		"unknown type":    func(in *JobInput) { in.Type = str("gig") },
		"relative url":    func(in *JobInput) { in.ApplyURL = str("kiln.works/jobs") },
		"missing applyTo": func(in *JobInput) { in.ApplyURL = nil },
	}
	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			in := validInput()
			mutate(&in)
			_, err := svc.Create(ctx, boss.ID, in)
			requireCode(t, err, pkgerrors.CodeValidation)
		})
	}
}

func TestCreateJobRequiresApprovedProfile(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	svc := newService(t, conn)
	ctx := context.Background()

	user := testutil.CreateUser(t, conn, enums.UserStatusApproved)
	require.NoError(t, conn.Model(user).Update("is_employer", true).Error)
	_, err := svc.Create(ctx, user.ID, validInput())
	requireCode(t, err, pkgerrors.CodeValidation)

	testutil.CreateProfile(t, conn, user, "pending", enums.ApprovalStatusPendingReview)
	_, err = svc.Create(ctx, user.ID, validInput())
	requireCode(t, err, pkgerrors.CodeForbidden)
}

func TestListOnlyOpenJobs(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	svc := newService(t, conn)
	ctx := context.Background()
	boss, _ := employer(t, conn, "boss")
	reader, _ := testutil.Member(t, conn, "reader")

	open, err := svc.Create(ctx, boss.ID, validInput())
	require.NoError(t, err)

	expired := validInput()
	past := fixedNow.Add(-time.Hour)
	expired.ExpiresAt = &past
	_, err = svc.Create(ctx, boss.ID, expired)
	require.NoError(t, err)

	closed, err := svc.Create(ctx, boss.ID, validInput())
	require.NoError(t, err)
	_, err = svc.Update(ctx, boss.ID, closed.ID, JobInput{Active: func() *bool { b := false; return &b }()})
	require.NoError(t, err)

	page, err := svc.List(ctx, viewerOf(reader), pagination.Params{})
	require.NoError(t, err)
	require.Len(t, page.Jobs, 1)
	assert.Equal(t, open.ID, page.Jobs[0].ID)
	assert.Equal(t, int64(1), page.Pagination.Total)

	require.NoError(t, conn.Model(&models.Profile{}).Where("user_id = ?", boss.ID).
		Update("approval_status", enums.ApprovalStatusPendingReview).Error)
	page, err = svc.List(ctx, viewerOf(reader), pagination.Params{})
	require.NoError(t, err)
	assert.Empty(t, page.Jobs)

	_, err = svc.Get(ctx, viewerOf(reader), open.ID)
	requireCode(t, err, pkgerrors.CodeNotFound)
	_, err = svc.Get(ctx, viewerOf(boss), open.ID)
	require.NoError(t, err)
}

func TestUpdateAndDeleteJob(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	svc := newService(t, conn)
	ctx := context.Background()
	boss, _ := employer(t, conn, "boss")
	other, _ := testutil.Member(t, conn, "other")
	admin := testutil.CreateAdmin(t, conn)

	job, err := svc.Create(ctx, boss.ID, validInput())
	require.NoError(t, err)

	_, err = svc.Update(ctx, other.ID, job.ID, JobInput{Title: str("Mine now")})
	requireCode(t, err, pkgerrors.CodeForbidden)
	_, err = svc.Update(ctx, boss.ID, job.ID, JobInput{ApplyURL: str("not a url")})
	requireCode(t, err, pkgerrors.CodeValidation)

	updated, err := svc.Update(ctx, boss.ID, job.ID, JobInput{Title: str("Senior firmware engineer")})
	require.NoError(t, err)
	assert.Equal(t, "Senior firmware engineer", updated.Title)

	mine, err := svc.Mine(ctx, boss.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	requireCode(t, svc.Delete(ctx, viewerOf(other), job.ID), pkgerrors.CodeForbidden)
	require.NoError(t, svc.Deactivate(ctx, admin.ID, job.ID))
	var stored models.Job
	require.NoError(t, conn.First(&stored, "id = ?", job.ID).Error)
	assert.False(t, stored.Active)

	require.NoError(t, svc.Delete(ctx, viewerOf(admin), job.ID))
	requireCode(t, svc.Delete(ctx, viewerOf(boss), job.ID), pkgerrors.CodeNotFound)
	requireCode(t, svc.Deactivate(ctx, admin.ID, uuid.New()), pkgerrors.CodeNotFound)
}
