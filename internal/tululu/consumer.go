package tululu

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"tululu/internal/storage/books"
	"tululu/internal/storage/genres"
	"tululu/internal/types"
)

// Consumer receives every successfully processed book, in crawl order.
type Consumer interface {
	ConsumeBook(ctx context.Context, book *types.Book) error
}

// PrintingConsumer writes a human-readable summary of each book.
type PrintingConsumer struct {
	Out io.Writer
}

func (c *PrintingConsumer) ConsumeBook(_ context.Context, book *types.Book) error {
	sb := strings.Builder{}
	sb.WriteString("Title: ")
	sb.WriteString(book.Title)
	sb.WriteString("\nAuthor: ")
	sb.WriteString(book.Author)
	sb.WriteString("\n\nGenres:\n")
	for _, g := range book.Genres {
		sb.WriteString(g)
		sb.WriteString("\n")
	}
	sb.WriteString("\nComments:\n")
	for _, comment := range book.Comments {
		sb.WriteString(comment)
		sb.WriteString("\n")
	}
	sb.WriteString("\n")

	_, err := io.WriteString(c.Out, sb.String())
	return err
}

type StoringConsumer struct {
	Logger *slog.Logger
	Books  books.Repository
	Genres genres.Repository
}

func (s *StoringConsumer) ConsumeBook(ctx context.Context, book *types.Book) error {
	err := s.Books.Save(ctx, book)
	if err != nil {
		return fmt.Errorf("saving book: %w", err)
	}

	var genreTitles []string
	seenGenres := make(map[string]struct{}, len(book.Genres))
	for _, g := range book.Genres {
		if _, ok := seenGenres[strings.ToLower(g)]; ok {
			s.Logger.WarnContext(ctx, "In the same book found duplicate of genre "+g,
				slog.String("book_id", book.Id.String()))
			continue
		}

		seenGenres[strings.ToLower(g)] = struct{}{}
		genreTitles = append(genreTitles, g)
	}

	gs, err := s.Genres.EnsureIds(ctx, genreTitles...)
	if err != nil {
		return fmt.Errorf("storing genres: %w", err)
	}

	genreIds := make([]uint16, 0, len(genreTitles))
	for _, title := range genreTitles {
		id, ok := gs[title]
		if !ok {
			return fmt.Errorf("no id for genre %q after insert", title)
		}

		genreIds = append(genreIds, id)
	}

	err = s.Books.LinkBookAndGenres(ctx, book.Id, genreIds...)
	if err != nil {
		return fmt.Errorf("linking book and genres: %w", err)
	}

	return nil
}

// MultiConsumer hands the book to every consumer, all of them are called even if some fail.
type MultiConsumer []Consumer

func (m MultiConsumer) ConsumeBook(ctx context.Context, book *types.Book) error {
	var errs []error
	for _, c := range m {
		if err := c.ConsumeBook(ctx, book); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
