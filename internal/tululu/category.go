package tululu

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"tululu/internal/library"
	"tululu/internal/types"
)

// batch owns the accumulator of a crawl. Books only return records, the aggregate
// file is written once by the pipeline when the whole range is done.
type batch struct {
	books    *BookPipeline
	consumer Consumer
	errors   ErrorHandler
	logger   *slog.Logger
	acc      []*types.Book
}

func (b *batch) book(ctx context.Context, id types.BookId) {
	book, err := b.books.Run(ctx, id)
	if err != nil {
		// An interrupted book did not fail, the caller stops on ctx
		if ctx.Err() != nil {
			return
		}

		b.fail(ctx, types.MakeFailedBook(id, BookURL(b.books.Base, id).String()), err)
		return
	}

	if b.consumer != nil {
		if err := b.consumer.ConsumeBook(ctx, book); err != nil {
			b.logger.ErrorContext(ctx, "Failed to consume book "+id.String()+": "+err.Error())
		}
	}

	b.acc = append(b.acc, book)
}

func (b *batch) fail(ctx context.Context, item types.FailedItem, err error) {
	if b.errors == nil {
		return
	}

	if herr := b.errors.Handle(ctx, item, err); herr != nil {
		b.logger.ErrorContext(ctx, "Failed to handle failure of "+item.Url+": "+herr.Error())
	}
}

func (b *batch) flush(output string) ([]*types.Book, error) {
	if output != "" {
		if err := library.WriteJSON(output, b.acc); err != nil {
			return b.acc, err
		}

		b.logger.Info(fmt.Sprintf("Saved %d books to %s", len(b.acc), output))
	}

	return b.acc, nil
}

// RangePipeline downloads the books with ids from StartId to EndId inclusive.
type RangePipeline struct {
	Books    *BookPipeline
	Consumer Consumer
	Errors   ErrorHandler
	Logger   *slog.Logger
	Output   string // aggregate JSON, not written when empty
}

func (p *RangePipeline) Run(ctx context.Context, startId, endId types.BookId) ([]*types.Book, error) {
	b := &batch{books: p.Books, consumer: p.Consumer, errors: p.Errors, logger: p.Logger}

	for id := startId; id <= endId && id >= startId; id++ {
		if err := ctx.Err(); err != nil {
			return b.acc, err
		}

		b.book(ctx, id)
	}

	return b.flush(p.Output)
}

// CategoryPipeline walks listing pages StartPage..EndPage-1 of one category and
// downloads every book found on them.
type CategoryPipeline struct {
	Fetcher  *Fetcher
	Books    *BookPipeline
	Base     *url.URL
	Category uint64
	Retry    RetryPolicy
	Consumer Consumer
	Errors   ErrorHandler
	Logger   *slog.Logger
	Output   string // aggregate JSON, not written when empty
}

func (p *CategoryPipeline) Run(ctx context.Context, startPage, endPage uint64) ([]*types.Book, error) {
	b := &batch{books: p.Books, consumer: p.Consumer, errors: p.Errors, logger: p.Logger}

	for page := startPage; page < endPage; page++ {
		if err := ctx.Err(); err != nil {
			return b.acc, err
		}

		pageUrl := CatalogURL(p.Base, p.Category, page).String()
		l := p.Logger.With(slog.Uint64("page", page))

		ids, err := Retry(ctx, p.Retry, l, func(ctx context.Context) Result[[]types.BookId] {
			l.DebugContext(ctx, "Begin processing catalog page "+pageUrl)

			doc, err := p.Fetcher.Fetch(ctx, pageUrl)
			if err != nil {
				return Failed[[]types.BookId](fmt.Errorf("fetching catalog page: %w", err))
			}

			ids, err := ExtractBookIds(doc)
			if err != nil {
				return Failed[[]types.BookId](err)
			}

			return Ok(ids)
		})
		if err != nil {
			if ctx.Err() != nil {
				return b.acc, ctx.Err()
			}

			b.fail(ctx, types.MakeFailedPage(page, pageUrl), err)
			continue
		}

		l.InfoContext(ctx, fmt.Sprintf("Found %d books on catalog page %d", len(ids), page))

		for _, id := range ids {
			if err := ctx.Err(); err != nil {
				return b.acc, err
			}

			b.book(ctx, id)
		}
	}

	return b.flush(p.Output)
}
