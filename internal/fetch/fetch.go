// Package fetch downloads remote assets to local files.
package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

const (
	DefaultRetryMax     = 3
	DefaultRetryWaitMin = 1 * time.Second
	DefaultRetryWaitMax = 10 * time.Second
	DefaultTimeout      = 30 * time.Second
)

// Config controls the HTTP client used for downloads.
type Config struct {
	RetryMax     int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
	Timeout      time.Duration
	UserAgent    string
}

// Options are per-download settings.
type Options struct {
	Headers map[string]string
	// RetryOnNetworkError retries transport failures (connection refused,
	// reset, DNS). HTTP error statuses are never retried.
	RetryOnNetworkError bool
}

// NetworkError is returned when a download fails after the client gave up.
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("download %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Fetcher downloads URLs to files. Files are written to a ".part" sibling
// and renamed into place, so a failed download never replaces an existing
// destination.
type Fetcher struct {
	retrying  *retryablehttp.Client
	single    *retryablehttp.Client
	userAgent string
}

// New creates a Fetcher. A nil logger disables client logging.
func New(cfg Config, logger *slog.Logger) *Fetcher {
	if cfg.RetryMax < 0 {
		cfg.RetryMax = 0
	}
	if cfg.RetryWaitMin <= 0 {
		cfg.RetryWaitMin = DefaultRetryWaitMin
	}
	if cfg.RetryWaitMax < cfg.RetryWaitMin {
		cfg.RetryWaitMax = cfg.RetryWaitMin
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Fetcher{
		retrying:  newClient(cfg, cfg.RetryMax, logger),
		single:    newClient(cfg, 0, logger),
		userAgent: cfg.UserAgent,
	}
}

func newClient(cfg Config, retryMax int, logger *slog.Logger) *retryablehttp.Client {
	client := retryablehttp.NewClient()
	client.HTTPClient.Timeout = cfg.Timeout
	client.RetryMax = retryMax
	client.RetryWaitMin = cfg.RetryWaitMin
	client.RetryWaitMax = cfg.RetryWaitMax
	client.CheckRetry = retryOnNetworkError
	client.ErrorHandler = retryablehttp.PassthroughErrorHandler
	// Logger is an interface; a nil *slog.Logger must not be stored in it.
	client.Logger = nil
	if logger != nil {
		client.Logger = logger
	}
	return client
}

// retryOnNetworkError retries only when no response was received.
func retryOnNetworkError(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	if err == nil {
		return false, nil
	}
	return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
}

// FetchToFile downloads url to dest. Any non-200 response is an error.
func (f *Fetcher) FetchToFile(ctx context.Context, url, dest string, opts Options) error {
	client := f.single
	if opts.RetryOnNetworkError {
		client = f.retrying
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request for %s: %w", url, err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	for k, v := range opts.Headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return &NetworkError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return &NetworkError{URL: url, Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}

	return writeFile(dest, resp.Body)
}

func writeFile(dest string, body io.Reader) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", dest, err)
	}

	part := dest + ".part"
	out, err := os.Create(part)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", part, err)
	}

	if _, err := io.Copy(out, body); err != nil {
		out.Close()
		os.Remove(part)
		return fmt.Errorf("failed to write %s: %w", dest, err)
	}
	if err := out.Close(); err != nil {
		os.Remove(part)
		return fmt.Errorf("failed to write %s: %w", dest, err)
	}

	if err := os.Rename(part, dest); err != nil {
		os.Remove(part)
		return fmt.Errorf("failed to move download into %s: %w", dest, err)
	}
	return nil
}
