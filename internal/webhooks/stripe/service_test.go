package stripewebhook

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/angelmondragon/directory-backend/internal/testutil"
	"github.com/angelmondragon/directory-backend/internal/users"
	"github.com/angelmondragon/directory-backend/pkg/db/models"
	"github.com/angelmondragon/directory-backend/pkg/enums"
	"github.com/angelmondragon/directory-backend/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v84"
)

type employerCall struct {
	customerID string
	employer   bool
}

type fakeEmployerUpdater struct {
	calls []employerCall
	found bool
	err   error
}

func (f *fakeEmployerUpdater) SetEmployerByCustomerID(_ context.Context, customerID string, employer bool) (bool, error) {
	f.calls = append(f.calls, employerCall{customerID: customerID, employer: employer})
	return f.found, f.err
}

func quietLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "stripe-webhook-test", Output: io.Discard})
}

func event(eventType stripe.EventType, raw string) *stripe.Event {
	return &stripe.Event{ID: "evt_1", Type: eventType, Data: &stripe.EventData{Raw: []byte(raw)}}
}

func TestHandleEventTogglesEmployer(t *testing.T) {
	cases := []struct {
		name     string
		event    *stripe.Event
		employer bool
	}{
		{
			name:     "checkout completed grants",
			event:    event(stripe.EventTypeCheckoutSessionCompleted, `{"id":"cs_1","object":"checkout.session","customer":"cus_1"}`),
			employer: true,
		},
		{
			name:  "subscription deleted revokes",
			event: event(stripe.EventTypeCustomerSubscriptionDeleted, `{"id":"sub_1","object":"subscription","customer":"cus_1"}`),
		},
		{
			name:  "payment failed revokes",
			event: event(stripe.EventTypeInvoicePaymentFailed, `{"id":"in_1","object":"invoice","customer":"cus_1"}`),
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			updater := &fakeEmployerUpdater{found: true}
			svc, err := NewService(ServiceParams{Users: updater, Logger: quietLogger()})
			require.NoError(t, err)

			require.NoError(t, svc.HandleEvent(context.Background(), tc.event))
			require.Len(t, updater.calls, 1)
			assert.Equal(t, employerCall{customerID: "cus_1", employer: tc.employer}, updater.calls[0])
		})
	}
}

func TestHandleEventIgnoresUnrelatedEvents(t *testing.T) {
	updater := &fakeEmployerUpdater{found: true}
	svc, err := NewService(ServiceParams{Users: updater, Logger: quietLogger()})
	require.NoError(t, err)

	require.NoError(t, svc.HandleEvent(context.Background(), event(stripe.EventTypeInvoicePaid, `{"id":"in_1","customer":"cus_1"}`)))
	require.NoError(t, svc.HandleEvent(context.Background(), event(stripe.EventTypeCheckoutSessionCompleted, `{"id":"cs_1"}`)))
	assert.Empty(t, updater.calls)
}

func TestHandleEventUnknownCustomerIsAcknowledged(t *testing.T) {
	updater := &fakeEmployerUpdater{found: false}
	svc, err := NewService(ServiceParams{Users: updater, Logger: quietLogger()})
	require.NoError(t, err)

	require.NoError(t, svc.HandleEvent(context.Background(), event(stripe.EventTypeCheckoutSessionCompleted, `{"id":"cs_1","customer":"cus_missing"}`)))
	assert.Len(t, updater.calls, 1)
}

func TestHandleEventPropagatesStoreErrors(t *testing.T) {
	updater := &fakeEmployerUpdater{err: errors.New("db down")}
	svc, err := NewService(ServiceParams{Users: updater, Logger: quietLogger()})
	require.NoError(t, err)

	err = svc.HandleEvent(context.Background(), event(stripe.EventTypeCheckoutSessionCompleted, `{"id":"cs_1","customer":"cus_1"}`))
	require.Error(t, err)
}

func TestHandleEventRejectsMalformedPayloads(t *testing.T) {
	svc, err := NewService(ServiceParams{Users: &fakeEmployerUpdater{}, Logger: quietLogger()})
	require.NoError(t, err)

	require.Error(t, svc.HandleEvent(context.Background(), nil))
	require.Error(t, svc.HandleEvent(context.Background(), event(stripe.EventTypeInvoicePaymentFailed, `not-json`)))
}

func TestHandleEventUpdatesStoredUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	user := testutil.CreateUser(t, db, enums.UserStatusApproved)
	customerID := "cus_live_1"
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", user.ID).Update("stripe_customer_id", customerID).Error)

	usersSvc, err := users.NewService(users.NewRepository(db))
	require.NoError(t, err)
	svc, err := NewService(ServiceParams{Users: usersSvc, Logger: quietLogger()})
	require.NoError(t, err)

	require.NoError(t, svc.HandleEvent(context.Background(), event(stripe.EventTypeCheckoutSessionCompleted, `{"id":"cs_1","customer":"cus_live_1"}`)))
	var stored models.User
	require.NoError(t, db.First(&stored, "id = ?", user.ID).Error)
	assert.True(t, stored.IsEmployer)

	require.NoError(t, svc.HandleEvent(context.Background(), event(stripe.EventTypeCustomerSubscriptionDeleted, `{"id":"sub_1","customer":"cus_live_1"}`)))
	require.NoError(t, db.First(&stored, "id = ?", user.ID).Error)
	assert.False(t, stored.IsEmployer)
}

type memoryIdempotencyStore struct {
	values map[string]string
}

func (m *memoryIdempotencyStore) Get(_ context.Context, key string) (string, error) {
	return m.values[key], nil
}

func (m *memoryIdempotencyStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	if _, ok := m.values[key]; ok {
		return false, nil
	}
	m.values[key] = value.(string)
	return true, nil
}

func (m *memoryIdempotencyStore) IdempotencyKey(scope, id string) string {
	return "dir:idempotency:" + scope + ":" + id
}

func (m *memoryIdempotencyStore) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(m.values, key)
	}
	return nil
}

func TestIdempotencyGuard(t *testing.T) {
	ctx := context.Background()
	store := &memoryIdempotencyStore{values: map[string]string{}}
	guard, err := NewIdempotencyGuard(store, time.Hour, "stripe")
	require.NoError(t, err)

	seen, err := guard.CheckAndMark(ctx, "evt_1")
	require.NoError(t, err)
	assert.False(t, seen)

	seen, err = guard.CheckAndMark(ctx, "evt_1")
	require.NoError(t, err)
	assert.True(t, seen)

	require.NoError(t, guard.Delete(ctx, "evt_1"))
	seen, err = guard.CheckAndMark(ctx, "evt_1")
	require.NoError(t, err)
	assert.False(t, seen)

	_, err = guard.CheckAndMark(ctx, "")
	require.Error(t, err)
	_, err = NewIdempotencyGuard(nil, time.Hour, "stripe")
	require.Error(t, err)
}
