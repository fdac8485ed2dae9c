package users

import (
	"context"
	"testing"

	"github.com/angelmondragon/directory-backend/internal/testutil"
	"github.com/angelmondragon/directory-backend/pkg/db/models"
	"github.com/angelmondragon/directory-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/directory-backend/pkg/errors"
	"github.com/angelmondragon/directory-backend/pkg/pagination"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (Service, *Repository) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	repo := NewRepository(db)
	svc, err := NewService(repo)
	require.NoError(t, err)
	return svc, repo
}

func TestSuspendAndReinstate(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService(t)
	user := &models.User{Email: "a@example.com", Status: enums.UserStatusApproved}
	require.NoError(t, repo.Create(ctx, user))

	dto, err := svc.Suspend(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.UserStatusSuspended, dto.Status)

	_, err = svc.Suspend(ctx, user.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict))

	dto, err = svc.Reinstate(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.UserStatusApproved, dto.Status)

	_, err = svc.Reinstate(ctx, user.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict))
}

func TestSuspendAdminIsForbidden(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService(t)
	admin := &models.User{Email: "admin@example.com", Status: enums.UserStatusApproved, IsAdmin: true}
	require.NoError(t, repo.Create(ctx, admin))

	_, err := svc.Suspend(ctx, admin.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))
}

func TestGetUnknownUser(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Get(context.Background(), uuid.New())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestListIncludesProfileSummary(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)

	testutil.Member(t, db, "ada")
	testutil.CreateUser(t, db, enums.UserStatusPending)

	page, err := svc.List(ctx, pagination.Params{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, page.Users, 1)
	assert.Equal(t, int64(2), page.Pagination.Total)
	assert.True(t, page.Pagination.HasMore)

	page, err = svc.List(ctx, pagination.Params{})
	require.NoError(t, err)
	require.Len(t, page.Users, 2)
	var withProfile int
	for _, u := range page.Users {
		if u.Profile != nil {
			withProfile++
			assert.Equal(t, "ada", u.Profile.Handle)
		}
	}
	assert.Equal(t, 1, withProfile)
}

func TestSetEmployerByCustomerID(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService(t)
	customer := "cus_123"
	user := &models.User{Email: "emp@example.com", StripeCustomerID: &customer}
	require.NoError(t, repo.Create(ctx, user))

	found, err := svc.SetEmployerByCustomerID(ctx, customer, true)
	require.NoError(t, err)
	assert.True(t, found)

	stored, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsEmployer)

	found, err = svc.SetEmployerByCustomerID(ctx, "cus_unknown", false)
	require.NoError(t, err)
	assert.False(t, found)
}
