package books

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tululu/internal/library"
	"tululu/internal/types"
)

func titles(bks []*types.Book) []string {
	ret := make([]string, 0, len(bks))
	for _, b := range bks {
		ret = append(ret, b.Title)
	}
	return ret
}

func TestJSONReader(t *testing.T) {
	path := filepath.Join(t.TempDir(), library.FileName)
	require.NoError(t, library.WriteJSON(path, []*types.Book{
		{Title: "Солярис", Genres: []string{"Научная фантастика"}},
		{Title: "Алиби", Genres: []string{"Детективы"}},
		{Title: "Дубровский", Genres: []string{"Повести", "Классика"}},
		{Title: "Десять негритят", Genres: []string{"детективы"}},
	}))
	r := NewJSONReader(path)
	ctx := context.Background()

	t.Run("all sorted by title", func(t *testing.T) {
		bks, err := r.Search(ctx, Filter{})
		require.NoError(t, err)
		assert.Equal(t, []string{"Алиби", "Десять негритят", "Дубровский", "Солярис"}, titles(bks))
	})

	t.Run("search", func(t *testing.T) {
		bks, err := r.Search(ctx, Filter{Query: "ДУБ"})
		require.NoError(t, err)
		assert.Equal(t, []string{"Дубровский"}, titles(bks))
	})

	t.Run("genre", func(t *testing.T) {
		bks, err := r.Search(ctx, Filter{Genre: "Детективы"})
		require.NoError(t, err)
		assert.Equal(t, []string{"Алиби", "Десять негритят"}, titles(bks))
	})

	t.Run("paging", func(t *testing.T) {
		bks, err := r.Search(ctx, Filter{Limit: 2, Offset: 1})
		require.NoError(t, err)
		assert.Equal(t, []string{"Десять негритят", "Дубровский"}, titles(bks))

		bks, err = r.Search(ctx, Filter{Offset: 10})
		require.NoError(t, err)
		assert.Empty(t, bks)
	})

	t.Run("genres", func(t *testing.T) {
		gs, err := r.Genres(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"Детективы", "Классика", "Научная фантастика", "Повести"}, gs)
	})
}

func TestJSONReaderMissingFile(t *testing.T) {
	r := NewJSONReader(filepath.Join(t.TempDir(), library.FileName))

	bks, err := r.Search(context.Background(), Filter{})
	require.NoError(t, err)
	assert.Empty(t, bks)

	gs, err := r.Genres(context.Background())
	require.NoError(t, err)
	assert.Empty(t, gs)
}
