package registry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kata-shadcn/kata-registry/internal/errors"
)

func TestClient_FetchItem(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/r/hero1.json":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"$schema":"s","name":"hero1","type":"registry:block","title":"Hero 1","description":"d","files":[]}`))
		case "/r/broken.json":
			w.Write([]byte(`{`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", nil)
	assert.Equal(t, srv.URL+"/r/hero1.json", c.ItemURL("hero1"))

	it, raw, err := c.FetchItem(context.Background(), "hero1")
	require.NoError(t, err)
	assert.Equal(t, "Hero 1", it.Title)
	assert.NotEmpty(t, raw)

	_, _, err = c.FetchItem(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, "KR151"))
	assert.ErrorIs(t, err, ErrNotFound)

	_, _, err = c.FetchItem(context.Background(), "broken")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, "KR151"))
}

func TestClient_FetchUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewClient(url, nil).Fetch(context.Background(), "/r/index.json")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, "KR151"))
	assert.NotErrorIs(t, err, ErrNotFound)
}
