package jira

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayoisaiah/worklog/internal/ports"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewClient(srv.URL, "dev@example.com", "secret", slog.New(slog.DiscardHandler))
}

func TestLookup(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/rest/api/3/issue/ABC-1", r.URL.Path)
		assert.Equal(t, "id", r.URL.Query().Get("fields"))

		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "dev@example.com", user)
		assert.Equal(t, "secret", pass)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": "10001", "key": "ABC-1", "self": "https://example"}`))
	})

	issue, err := c.Lookup(context.Background(), "ABC-1")
	require.NoError(t, err)
	assert.Equal(t, ports.Issue{Key: "ABC-1", ID: "10001"}, issue)
}

func TestLookupNotFound(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"errorMessages":["Issue does not exist"]}`, http.StatusNotFound)
	})

	_, err := c.Lookup(context.Background(), "ABC-404")
	assert.ErrorIs(t, err, ports.ErrIssueNotFound)
}

func TestLookupUpstreamFailure(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	})

	_, err := c.Lookup(context.Background(), "ABC-1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ports.ErrIssueNotFound)
	assert.Contains(t, err.Error(), "401")
}

func TestLookupMissingToken(t *testing.T) {
	c := NewClient("https://example.atlassian.net", "dev@example.com", "", slog.New(slog.DiscardHandler))

	_, err := c.Lookup(context.Background(), "ABC-1")
	assert.Error(t, err)
}

func TestOffline(t *testing.T) {
	issue, err := Offline{}.Lookup(context.Background(), "ABC-1")
	require.NoError(t, err)
	assert.Equal(t, "ABC-1", issue.ID)
}
