package apiclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DAVIDafergan/tatpro-intake/internal/adapters/memory"
	"github.com/DAVIDafergan/tatpro-intake/internal/admin"
	"github.com/DAVIDafergan/tatpro-intake/internal/domain"
	"github.com/DAVIDafergan/tatpro-intake/internal/handlers"
)

func newTestServer(t *testing.T) *Client {
	t.Helper()
	h := handlers.New(memory.New(), admin.NewSecretChecker("DA12"), admin.NewTokens([]byte("k"), time.Hour))
	srv := httptest.NewServer(h.Routes())
	t.Cleanup(srv.Close)
	return New(srv.URL+"/", srv.Client())
}

func TestPublishAndList(t *testing.T) {
	ctx := context.Background()
	c := newTestServer(t)

	for _, name := range []string{"first", "second"} {
		err := c.Publish(ctx, domain.Submission{
			FormData:        domain.FormData{YeshivaName: name, CampaignGoal: "250000"},
			ID:              "local-" + name,
			Timestamp:       "18.10.2026, 14:03:05",
			CalculatedPrice: "₪7,500",
		})
		require.NoError(t, err)
	}

	docs, err := c.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "second", docs[0]["yeshivaName"])
	assert.Equal(t, "local-second", docs[0]["id"])
	assert.Equal(t, "₪7,500", docs[0]["calculatedPrice"])
	assert.NotEmpty(t, docs[0]["_id"])
	assert.NotEmpty(t, docs[0]["createdAt"])
}

func TestCheckAndDelete(t *testing.T) {
	ctx := context.Background()
	c := newTestServer(t)
	require.NoError(t, c.Publish(ctx, domain.Submission{ID: "x"}))
	docs, err := c.ListAll(ctx)
	require.NoError(t, err)
	id := docs[0]["_id"].(string)

	err = c.Delete(ctx, id)
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusUnauthorized, se.Code)

	ok, err := c.Check(ctx, "wrong")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, c.Token())

	ok, err = c.Check(ctx, "DA12")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NotEmpty(t, c.Token())

	require.NoError(t, c.Delete(ctx, id))
	err = c.Delete(ctx, id)
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusNotFound, se.Code)
	assert.Equal(t, "הרשומה לא נמצאה", se.Message)
}

func TestUnreachableServer(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	c := New(srv.URL, nil)
	_, err := c.ListAll(context.Background())
	require.Error(t, err)
	var se *StatusError
	assert.False(t, errors.As(err, &se))
}
