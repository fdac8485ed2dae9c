package validators

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/angelmondragon/directory-backend/pkg/errors"
)

func TestParsePagination(t *testing.T) {
	cases := []struct {
		query  string
		limit  int
		offset int
	}{
		{"", 20, 0},
		{"?limit=5&offset=10", 5, 10},
		{"?limit=0", 20, 0},
		{"?limit=500", 100, 0},
		{"?offset=-3", 20, 0},
	}
	for _, tc := range cases {
		params, err := ParsePagination(httptest.NewRequest(http.MethodGet, "/profiles"+tc.query, nil))
		require.NoError(t, err, tc.query)
		assert.Equal(t, tc.limit, params.Limit, tc.query)
		assert.Equal(t, tc.offset, params.Offset, tc.query)
	}

	_, err := ParsePagination(httptest.NewRequest(http.MethodGet, "/profiles?limit=ten", nil))
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestParseUUIDParam(t *testing.T) {
	withParam := func(value string) *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rc := chi.NewRouteContext()
		rc.URLParams.Add("id", value)
		return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rc))
	}

	id := uuid.New()
	got, err := ParseUUIDParam(withParam(id.String()), "id", "project")
	require.NoError(t, err)
	assert.Equal(t, id, got)

	_, err = ParseUUIDParam(withParam("nope"), "id", "project")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

type rejectBody struct {
	Note *string `json:"note" validate:"omitempty,max=10"`
}

func TestDecodeJSONBody(t *testing.T) {
	var body rejectBody
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"note":"bad photo"}`))
	require.NoError(t, DecodeJSONBody(req, &body))
	assert.Equal(t, "bad photo", *body.Note)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"unknown":true}`))
	assert.True(t, pkgerrors.IsCode(DecodeJSONBody(req, &body), pkgerrors.CodeValidation))

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"note":"far too long for the limit"}`))
	assert.True(t, pkgerrors.IsCode(DecodeJSONBody(req, &body), pkgerrors.CodeValidation))
}

func TestSanitizeStringCountsRunes(t *testing.T) {
	assert.Equal(t, "éé", SanitizeString("  éééé ", 2))
	assert.Equal(t, "abc", SanitizeString(" abc ", 0))
}

type projectBody struct {
	Title  string  `json:"title" validate:"required,max=5"`
	Status *string `json:"status" validate:"omitempty,oneof=active completed archived"`
}

func TestDecodeJSONBodyEmptyKeepsEOF(t *testing.T) {
	var body rejectBody
	err := DecodeJSONBody(httptest.NewRequest(http.MethodPost, "/", strings.NewReader("")), &body)
	require.Error(t, err)
	assert.True(t, errors.Is(err, io.EOF))
	assert.Equal(t, "request body required", pkgerrors.As(err).Message())
}

func TestDecodeJSONBodyRejectsOversizedBody(t *testing.T) {
	var body rejectBody
	payload := `{"note":"` + strings.Repeat("a", MaxBodyBytes) + `"}`
	err := DecodeJSONBody(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(payload)), &body)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	assert.Equal(t, "request body too large", pkgerrors.As(err).Message())
}

func TestDecodeJSONBodyFieldMessages(t *testing.T) {
	var body projectBody
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"title":"Loom weaving","status":"paused"}`))
	err := DecodeJSONBody(req, &body)
	require.Error(t, err)

	details, ok := pkgerrors.As(err).Details().(map[string]string)
	require.True(t, ok)
	assert.Equal(t, "must be at most 5 characters", details["title"])
	assert.Equal(t, "must be one of: active, completed, archived", details["status"])
}
