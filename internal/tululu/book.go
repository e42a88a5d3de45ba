package tululu

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"tululu/internal/types"
)

type BookOptions struct {
	DestFolder string
	SkipText   bool
	SkipImages bool
}

// BookPipeline fetches one detail page, extracts the record and downloads its assets.
// A connection failure anywhere restarts the book from the page fetch; files are written
// only after every body of the attempt has been downloaded.
type BookPipeline struct {
	Fetcher    *Fetcher
	Downloader *Downloader
	Base       *url.URL
	Retry      RetryPolicy
	Options    BookOptions
	Logger     *slog.Logger
}

type pendingWrite struct {
	target types.DownloadTarget
	body   []byte
}

func (p *BookPipeline) Run(ctx context.Context, id types.BookId) (*types.Book, error) {
	l := p.Logger.With(slog.String("book_id", id.String()))

	return Retry(ctx, p.Retry, l, func(ctx context.Context) Result[*types.Book] {
		return p.attempt(ctx, id, l)
	})
}

func (p *BookPipeline) attempt(ctx context.Context, id types.BookId, l *slog.Logger) Result[*types.Book] {
	pageUrl := BookURL(p.Base, id).String()
	l.DebugContext(ctx, "Begin processing book page "+pageUrl)

	doc, err := p.Fetcher.Fetch(ctx, pageUrl)
	if err != nil {
		return Failed[*types.Book](fmt.Errorf("fetching book page: %w", err))
	}

	book, cover, err := ExtractBook(doc, p.Base, id)
	if err != nil {
		return Failed[*types.Book](err)
	}

	var pending []pendingWrite

	if !p.Options.SkipText {
		body, err := p.Downloader.FetchText(ctx, id)
		if err != nil {
			return Failed[*types.Book](fmt.Errorf("downloading text: %w", err))
		}

		pending = append(pending, pendingWrite{
			target: types.DownloadTarget{
				RemoteURL: TextURL(p.Base, id).String(),
				LocalPath: TextPath(p.Options.DestFolder, book.Title),
			},
			body: body,
		})
	}

	if p.Options.SkipImages {
		book.ImgSrc = ""
	} else if cover != nil {
		body, err := p.Downloader.FetchImage(ctx, cover)
		if err != nil {
			return Failed[*types.Book](fmt.Errorf("downloading cover: %w", err))
		}

		pending = append(pending, pendingWrite{
			target: types.DownloadTarget{
				RemoteURL: cover.String(),
				LocalPath: ImagePath(p.Options.DestFolder, book.Title),
			},
			body: body,
		})
	} else {
		l.InfoContext(ctx, "Not found cover of book "+book.Title)
	}

	for _, w := range pending {
		if err := p.Downloader.Write(w.target, w.body); err != nil {
			return Result[*types.Book]{Outcome: OutcomeFatal, Err: err}
		}

		l.DebugContext(ctx, "Saved "+w.target.RemoteURL+" to "+w.target.LocalPath)
	}

	return Ok(book)
}
