package books

import (
	"context"

	"tululu/internal/types"
)

type Filter struct {
	Query  string // substring of the title, case-insensitive
	Genre  string
	Limit  int
	Offset int
}

// Reader is what a published library needs.
type Reader interface {
	Search(ctx context.Context, f Filter) ([]*types.Book, error)
	Genres(ctx context.Context) ([]string, error)
}

type Repository interface {
	Reader

	// Save inserts books or replaces the stored ones with the same id
	Save(ctx context.Context, books ...*types.Book) error

	LinkBookAndGenres(ctx context.Context, bookId types.BookId, genreIds ...uint16) error
}
