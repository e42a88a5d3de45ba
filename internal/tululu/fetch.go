package tululu

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	defaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
	maxRedirects     = 10
)

type redirectTraceKey struct{}

// redirectTrace collects the hops a single request went through.
type redirectTrace struct {
	hops []string
}

// NewClient returns a resty client which records redirects instead of following them
// to the site homepage.
func NewClient(timeout time.Duration, logger *slog.Logger) *resty.Client {
	client := resty.New()
	client.SetTimeout(timeout)
	client.SetHeader("User-Agent", defaultUserAgent)
	client.SetLogger(restyLogger{l: logger})
	client.SetRedirectPolicy(resty.RedirectPolicyFunc(func(req *http.Request, via []*http.Request) error {
		if t, ok := req.Context().Value(redirectTraceKey{}).(*redirectTrace); ok {
			t.hops = append(t.hops, req.URL.String())
			// One hop is enough to know the resource is missing
			return http.ErrUseLastResponse
		}

		if len(via) >= maxRedirects {
			return fmt.Errorf("stopped after %d redirects", maxRedirects)
		}

		return nil
	}))

	return client
}

// Fetcher performs single GET requests and applies the redirect and status checks.
// It never retries.
type Fetcher struct {
	Client *resty.Client
	Logger *slog.Logger
}

// Fetch downloads a catalog or detail page and parses it.
func (f *Fetcher) Fetch(ctx context.Context, url string) (Document, error) {
	bs, err := f.get(ctx, url)
	if err != nil {
		return nil, err
	}

	doc, err := ParseDocument(bs)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", url, err)
	}

	return doc, nil
}

func (f *Fetcher) get(ctx context.Context, url string) ([]byte, error) {
	trace := &redirectTrace{}

	f.Logger.DebugContext(ctx, "GET "+url)

	res, err := f.Client.R().
		SetContext(context.WithValue(ctx, redirectTraceKey{}, trace)).
		Get(url)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		return nil, &ConnectionError{Url: url, Err: err}
	}

	// Must come before the status check: the redirect target usually answers 200
	if len(trace.hops) > 0 {
		return nil, fmt.Errorf("%s -> %s: %w", url, trace.hops[0], ErrRedirect)
	}

	if !res.IsSuccess() {
		return nil, &StatusError{Url: url, Code: res.StatusCode()}
	}

	return res.Body(), nil
}

type restyLogger struct {
	l *slog.Logger
}

func (r restyLogger) Errorf(format string, v ...any) {
	r.l.Error("resty: " + fmt.Sprintf(format, v...))
}

func (r restyLogger) Warnf(format string, v ...any) {
	r.l.Warn("resty: " + fmt.Sprintf(format, v...))
}

func (r restyLogger) Debugf(format string, v ...any) {
	r.l.Debug("resty: " + fmt.Sprintf(format, v...))
}
