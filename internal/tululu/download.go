package tululu

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"tululu/internal/types"
)

// Downloader saves book texts and covers. It shares the redirect and status
// discipline of the Fetcher because txt.php also redirects withheld books to the homepage.
type Downloader struct {
	Fetcher *Fetcher
	Base    *url.URL
}

// TextURL is the download endpoint, the id goes into the query and not the path.
func TextURL(base *url.URL, id types.BookId) *url.URL {
	u := base.ResolveReference(&url.URL{Path: "/txt.php"})
	u.RawQuery = url.Values{"id": {id.String()}}.Encode()
	return u
}

func TextPath(dir, title string) string {
	return filepath.Join(dir, AssetName(title, ".txt"))
}

func ImagePath(dir, title string) string {
	return filepath.Join(dir, AssetName(title, ".jpg"))
}

func (d *Downloader) FetchText(ctx context.Context, id types.BookId) ([]byte, error) {
	return d.Fetcher.get(ctx, TextURL(d.Base, id).String())
}

func (d *Downloader) FetchImage(ctx context.Context, imageUrl *url.URL) ([]byte, error) {
	return d.Fetcher.get(ctx, imageUrl.String())
}

// Write stores the whole body at target.LocalPath, replacing any existing file.
func (d *Downloader) Write(target types.DownloadTarget, body []byte) error {
	if err := os.MkdirAll(filepath.Dir(target.LocalPath), 0o755); err != nil {
		return fmt.Errorf("creating folder for %s: %w", target.LocalPath, err)
	}

	if err := os.WriteFile(target.LocalPath, body, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", target.LocalPath, err)
	}

	return nil
}

// SaveText downloads the text of the book into dir/{filename}.txt and returns the path.
func (d *Downloader) SaveText(ctx context.Context, id types.BookId, filename, dir string) (string, error) {
	body, err := d.FetchText(ctx, id)
	if err != nil {
		return "", err
	}

	target := types.DownloadTarget{RemoteURL: TextURL(d.Base, id).String(), LocalPath: TextPath(dir, filename)}
	return target.LocalPath, d.Write(target, body)
}

// SaveImage downloads the cover into dir/{filename}.jpg and returns the path.
func (d *Downloader) SaveImage(ctx context.Context, imageUrl *url.URL, filename, dir string) (string, error) {
	body, err := d.FetchImage(ctx, imageUrl)
	if err != nil {
		return "", err
	}

	target := types.DownloadTarget{RemoteURL: imageUrl.String(), LocalPath: ImagePath(dir, filename)}
	return target.LocalPath, d.Write(target, body)
}
