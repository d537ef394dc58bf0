package source

import (
	"context"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// HTTPOptions configures the HTTP fetcher.
type HTTPOptions struct {
	UserAgent  string
	Timeout    time.Duration
	MaxRetries int
	RateLimit  rate.Limit
}

// HTTPFetcher downloads reference tables with retry and rate limiting.
// Statistics hosts publishing the tables throttle aggressively, so every
// request waits on the limiter.
type HTTPFetcher struct {
	client  *http.Client
	opts    HTTPOptions
	limiter *rate.Limiter
}

// NewHTTPFetcher creates an HTTPFetcher with the given options.
func NewHTTPFetcher(opts HTTPOptions) *HTTPFetcher {
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.MaxRetries == 0 {
		opts.MaxRetries = 3
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "sic-cli/1.0"
	}
	if opts.RateLimit == 0 {
		opts.RateLimit = 5
	}
	return &HTTPFetcher{
		client:  &http.Client{Timeout: opts.Timeout},
		opts:    opts,
		limiter: rate.NewLimiter(opts.RateLimit, 1),
	}
}

// Download fetches the URL and returns the response body.
func (f *HTTPFetcher) Download(ctx context.Context, url string) (io.ReadCloser, error) {
	var lastErr error

	for attempt := 0; attempt <= f.opts.MaxRetries; attempt++ {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "source: rate limiter wait")
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, eris.Wrapf(err, "source: build request %s", url)
		}
		req.Header.Set("User-Agent", f.opts.UserAgent)

		resp, err := f.client.Do(req)
		if err != nil {
			lastErr = eris.Wrapf(err, "source: GET %s", url)
		} else if resp.StatusCode == http.StatusOK {
			return resp.Body, nil
		} else {
			resp.Body.Close()
			lastErr = eris.Errorf("source: GET %s: status %d", url, resp.StatusCode)
			// Client errors other than throttling won't heal on retry.
			if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
				return nil, lastErr
			}
		}

		if attempt < f.opts.MaxRetries {
			backoff := time.Duration(1<<attempt) * time.Second
			zap.L().Warn("source: download failed, retrying",
				zap.String("url", url),
				zap.Int("attempt", attempt+1),
				zap.Duration("backoff", backoff),
				zap.Error(lastErr),
			)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, eris.Wrap(ctx.Err(), "source: retry wait")
			}
		}
	}

	return nil, lastErr
}

// DownloadToFile fetches the URL and writes it to path. Returns bytes
// written.
func (f *HTTPFetcher) DownloadToFile(ctx context.Context, url, path string) (int64, error) {
	body, err := f.Download(ctx, url)
	if err != nil {
		return 0, err
	}
	defer body.Close()

	out, err := os.Create(path)
	if err != nil {
		return 0, eris.Wrapf(err, "source: create %s", path)
	}
	defer out.Close()

	n, err := io.Copy(out, body)
	if err != nil {
		return n, eris.Wrapf(err, "source: write %s", path)
	}
	return n, nil
}
