package tululu

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetch(t *testing.T) {
	s := newSite(t, map[string]http.HandlerFunc{
		"/":        html("<h1>Главная</h1>"),
		"/b9/":     html(bookPage),
		"/b10/":    redirectHome,
		"/b11/":    http.NotFound,
		"/b12/":    hangUp,
		"/broken/": func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusBadGateway) },
	})
	f := newTestFetcher()

	t.Run("ok", func(t *testing.T) {
		doc, err := f.Fetch(context.Background(), s.URL+"/b9/")
		require.NoError(t, err)

		title, _, err := AuthorAndTitle(doc)
		require.NoError(t, err)
		assert.Equal(t, "Дубровский", title)
	})

	t.Run("redirect is not followed", func(t *testing.T) {
		_, err := f.Fetch(context.Background(), s.URL+"/b10/")

		require.ErrorIs(t, err, ErrRedirect)
		assert.False(t, IsRetryable(err))
		assert.Equal(t, 0, s.Hits("/"), "redirect target must not be requested")
	})

	t.Run("not found", func(t *testing.T) {
		_, err := f.Fetch(context.Background(), s.URL+"/b11/")

		var se *StatusError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, http.StatusNotFound, se.Code)
		assert.False(t, IsRetryable(err))
	})

	t.Run("server error", func(t *testing.T) {
		_, err := f.Fetch(context.Background(), s.URL+"/broken/")

		var se *StatusError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, http.StatusBadGateway, se.Code)
	})

	t.Run("connection dropped", func(t *testing.T) {
		_, err := f.Fetch(context.Background(), s.URL+"/b12/")

		var ce *ConnectionError
		require.ErrorAs(t, err, &ce)
		assert.True(t, IsRetryable(err))
		assert.Equal(t, s.URL+"/b12/", ce.Url)
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := f.Fetch(ctx, s.URL+"/b9/")
		require.True(t, errors.Is(err, context.Canceled))
		assert.False(t, IsRetryable(err))
	})
}
