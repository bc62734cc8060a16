package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krawl-app/krawl-offline/internal/common"
)

func TestGetTrail_DecodesPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/trails/t-1", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "t-1",
			"name": "Heritage Walk",
			"updatedAt": "2026-08-01T10:00:00Z",
			"gems": [
				{"id": "tg-1", "gemId": "g-1", "order": 0},
				{"id": "tg-2", "gemId": "g-2", "order": 1}
			]
		}`))
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL)
	trail, err := c.GetTrail(context.Background(), "t-1")
	require.NoError(t, err)
	assert.Equal(t, "t-1", trail.ID)
	assert.Equal(t, "2026-08-01T10:00:00Z", trail.UpdatedAt)
	require.Len(t, trail.Gems, 2)
	assert.Equal(t, "g-2", trail.Gems[1].GemID)
}

func TestGetGem_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL)
	_, err := c.GetGem(context.Background(), "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestMutations_SendMethodPathAndBody(t *testing.T) {
	type call struct {
		method, path, body string
	}
	var last call
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf := make([]byte, r.ContentLength)
		if r.ContentLength > 0 {
			_, _ = r.Body.Read(buf)
		}
		last = call{method: r.Method, path: r.URL.Path, body: string(buf)}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL)
	ctx := context.Background()
	payload := json.RawMessage(`{"name":"Sunken Bell"}`)

	require.NoError(t, c.CreateGem(ctx, payload))
	assert.Equal(t, call{"POST", "/gems", `{"name":"Sunken Bell"}`}, last)

	require.NoError(t, c.UpdateTrail(ctx, "t-1", payload))
	assert.Equal(t, call{"PUT", "/trails/t-1", `{"name":"Sunken Bell"}`}, last)

	require.NoError(t, c.DeleteGem(ctx, "g-1"))
	assert.Equal(t, "DELETE", last.method)
	assert.Equal(t, "/gems/g-1", last.path)
}

func TestMutation_ServerErrorFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL)
	err := c.CreateTrail(context.Background(), json.RawMessage(`{}`))
	require.Error(t, err)
}

func TestPing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))

	c := NewHTTPClient(srv.URL)
	require.NoError(t, c.Ping(context.Background()))

	srv.Close()
	err := c.Ping(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrServerUnavailable)
}
