package httpdirectory

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/fantastico/telesales-go/internal/errors"
)

func newTestSecondary(t *testing.T, handler http.HandlerFunc) (*Secondary, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	dir, err := NewSecondary(Options{
		BaseURL: srv.URL,
		APIKey:  "test-key",
		Client:  srv.Client(),
	})
	require.NoError(t, err)
	return dir, srv
}

func TestNewSecondary_Validation(t *testing.T) {
	_, err := NewSecondary(Options{})
	assert.Error(t, err, "missing base URL")

	_, err = NewSecondary(Options{BaseURL: "ftp://example.com"})
	assert.Error(t, err, "non-http scheme")

	_, err = NewSecondary(Options{BaseURL: "https://example.com", CodeExpression: "not ["})
	assert.Error(t, err, "invalid expression")
}

func TestSecondary_LookupByEmail(t *testing.T) {
	var gotPath, gotEmail, gotKey string
	dir, _ := newTestSecondary(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotEmail = r.URL.Query().Get("email")
		gotKey = r.Header.Get("x-api-key")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"slpCode": 142}`))
	})

	code, err := dir.LookupByEmail(context.Background(), "rep@fantastico.example")
	require.NoError(t, err)
	assert.Equal(t, "142", code)
	assert.Equal(t, "/auth/sap-id", gotPath)
	assert.Equal(t, "rep@fantastico.example", gotEmail)
	assert.Equal(t, "test-key", gotKey)
}

func TestSecondary_LookupByEmail_StringCode(t *testing.T) {
	dir, _ := newTestSecondary(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"slpCode": "77"}`))
	})

	code, err := dir.LookupByEmail(context.Background(), "rep@fantastico.example")
	require.NoError(t, err)
	assert.Equal(t, "77", code)
}

func TestSecondary_LookupByEmail_NullCode(t *testing.T) {
	dir, _ := newTestSecondary(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"slpCode": null}`))
	})

	_, err := dir.LookupByEmail(context.Background(), "nobody@fantastico.example")
	require.Error(t, err)
	assert.True(t, apperrors.IsDirectoryNotFound(err))
}

func TestSecondary_LookupByEmail_NotFoundStatus(t *testing.T) {
	dir, _ := newTestSecondary(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	})

	_, err := dir.LookupByEmail(context.Background(), "nobody@fantastico.example")
	require.Error(t, err)
	assert.True(t, apperrors.IsDirectoryNotFound(err))
}

func TestSecondary_LookupByEmail_Forbidden(t *testing.T) {
	dir, _ := newTestSecondary(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad key", http.StatusForbidden)
	})

	_, err := dir.LookupByEmail(context.Background(), "rep@fantastico.example")
	require.Error(t, err)
	assert.True(t, apperrors.IsDirectoryTransient(err))
}

func TestSecondary_LookupByEmail_ServerError(t *testing.T) {
	dir, _ := newTestSecondary(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	_, err := dir.LookupByEmail(context.Background(), "rep@fantastico.example")
	require.Error(t, err)
	assert.True(t, apperrors.IsDirectoryTransient(err))
}

func TestSecondary_LookupByEmail_MalformedBody(t *testing.T) {
	dir, _ := newTestSecondary(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{not json`))
	})

	_, err := dir.LookupByEmail(context.Background(), "rep@fantastico.example")
	require.Error(t, err)
	assert.True(t, apperrors.IsDirectoryTransient(err))
}

func TestSecondary_LookupByEmail_EmptyEmail(t *testing.T) {
	dir, _ := newTestSecondary(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("server should not be called")
	})

	_, err := dir.LookupByEmail(context.Background(), "  ")
	require.Error(t, err)
	assert.True(t, apperrors.IsDirectoryNotFound(err))
}

func TestSecondary_LookupByEmail_CustomExpression(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data": {"rep": {"code": 9}}}`))
	}))
	t.Cleanup(srv.Close)

	dir, err := NewSecondary(Options{
		BaseURL:        srv.URL,
		CodeExpression: "data.rep.code",
		Client:         srv.Client(),
	})
	require.NoError(t, err)

	code, err := dir.LookupByEmail(context.Background(), "rep@fantastico.example")
	require.NoError(t, err)
	assert.Equal(t, "9", code)
}

func TestSecondary_LookupByEmail_ContextCanceled(t *testing.T) {
	dir, _ := newTestSecondary(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := dir.LookupByEmail(ctx, "rep@fantastico.example")
	require.Error(t, err)
	assert.True(t, apperrors.IsDirectoryTransient(err))
}
