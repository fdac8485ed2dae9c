package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/directory-backend/api/middleware"
	"github.com/angelmondragon/directory-backend/pkg/enums"
	"github.com/angelmondragon/directory-backend/pkg/types"
	"github.com/angelmondragon/directory-backend/pkg/visibility"
)

func member() middleware.Principal {
	return middleware.Principal{Viewer: visibility.Viewer{UserID: uuid.New(), Status: enums.UserStatusApproved}}
}

func admin() middleware.Principal {
	return middleware.Principal{Viewer: visibility.Viewer{UserID: uuid.New(), Status: enums.UserStatusApproved, IsAdmin: true}}
}

// serve mounts handler under pattern so chi resolves path params, then
// issues one request as principal.
func serve(t *testing.T, handler http.HandlerFunc, method, pattern, path, body string, principal middleware.Principal) *httptest.ResponseRecorder {
	t.Helper()
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(middleware.WithPrincipal(req.Context(), principal)))
		})
	})
	r.MethodFunc(method, pattern, handler)

	var reader *bytes.Reader
	if body == "" {
		reader = bytes.NewReader(nil)
	} else {
		reader = bytes.NewReader([]byte(body))
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, dest any) {
	t.Helper()
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope), rec.Body.String())
	require.NoError(t, json.Unmarshal(envelope.Data, dest))
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) types.APIError {
	t.Helper()
	var envelope types.ErrorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope), rec.Body.String())
	return envelope.Error
}
