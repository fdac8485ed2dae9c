package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/directory-backend/pkg/enums"
	"github.com/angelmondragon/directory-backend/pkg/visibility"
	"github.com/google/uuid"
)

var idempotentCaller = Principal{Viewer: visibility.Viewer{UserID: uuid.New(), Status: enums.UserStatusApproved}}

type fakeStore struct {
	data map[string]string
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: make(map[string]string)}
}

func (f *fakeStore) Get(_ context.Context, key string) (string, error) {
	if v, ok := f.data[key]; ok {
		return v, nil
	}
	return "", redis.Nil
}

func (f *fakeStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	if _, ok := f.data[key]; ok {
		return false, nil
	}
	str, _ := value.(string)
	f.data[key] = str
	return true, nil
}

func (f *fakeStore) IdempotencyKey(scope, id string) string {
	return fmt.Sprintf("fake:%s:%s", scope, id)
}

func (f *fakeStore) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(f.data, key)
	}
	return nil
}

type countingHandler struct {
	calls  int
	status int
}

func (c *countingHandler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	c.calls++
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(c.status)
	_, _ = fmt.Fprintf(w, `{"call":%d}`, c.calls)
}

func post(handler http.Handler, key, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/projects", strings.NewReader(body))
	req = req.WithContext(WithPrincipal(req.Context(), idempotentCaller))
	if key != "" {
		req.Header.Set(IdempotencyHeader, key)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestIdempotencyReplaysStoredResponse(t *testing.T) {
	next := &countingHandler{status: http.StatusCreated}
	handler := Idempotency(newFakeStore(), time.Hour, nil)(next)

	first := post(handler, "key-1", `{"title":"a"}`)
	second := post(handler, "key-1", `{"title":"a"}`)

	require.Equal(t, 1, next.calls)
	assert.Equal(t, http.StatusCreated, second.Code)
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, "true", second.Header().Get("Idempotent-Replayed"))
}

func TestIdempotencyRejectsKeyReuseWithDifferentBody(t *testing.T) {
	next := &countingHandler{status: http.StatusCreated}
	handler := Idempotency(newFakeStore(), time.Hour, nil)(next)

	post(handler, "key-1", `{"title":"a"}`)
	rec := post(handler, "key-1", `{"title":"b"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, 1, next.calls)
}

func TestIdempotencyPassesThroughWithoutKey(t *testing.T) {
	next := &countingHandler{status: http.StatusCreated}
	handler := Idempotency(newFakeStore(), time.Hour, nil)(next)

	post(handler, "", `{}`)
	post(handler, "", `{}`)
	assert.Equal(t, 2, next.calls)
}

func TestIdempotencyDoesNotStoreServerErrors(t *testing.T) {
	next := &countingHandler{status: http.StatusServiceUnavailable}
	handler := Idempotency(newFakeStore(), time.Hour, nil)(next)

	post(handler, "key-1", `{}`)
	post(handler, "key-1", `{}`)
	assert.Equal(t, 2, next.calls)
}
