// Package fetcher retrieves a single HTML page for previewing. It validates
// the target, bounds the request with a deadline, follows redirects and
// classifies every failure as a *models.PreviewError.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/use-agent/linkpreview/models"
	"golang.org/x/net/html/charset"
)

const (
	// DefaultTimeout bounds one fetch, redirects and body read included.
	DefaultTimeout = 10 * time.Second

	// DefaultUserAgent identifies the previewer to the sites it fetches.
	DefaultUserAgent = "Mozilla/5.0 (compatible; LinkPreviewer/1.0; +https://link-previewer.app)"

	// DefaultMaxBodyBytes caps how much of a response body is read.
	DefaultMaxBodyBytes = 10 << 20

	// DefaultMaxRedirects matches net/http's own default.
	DefaultMaxRedirects = 10
)

var (
	errRedirectScheme = errors.New("redirect to non-http(s) URL")
	errTooManyHops    = errors.New("too many redirects")
)

// Result is the output of a successful fetch.
type Result struct {
	// HTML is the response body decoded to UTF-8.
	HTML string

	// FinalURL is the URL after following all redirects. Relative links in
	// HTML resolve against it, not against the requested URL.
	FinalURL string

	StatusCode  int
	ContentType string
}

// Fetcher performs single-attempt page fetches. It holds no per-request
// state and is safe for concurrent use.
type Fetcher struct {
	client       *http.Client
	transport    http.RoundTripper
	timeout      time.Duration
	userAgent    string
	maxBodyBytes int64
	maxRedirects int
	chromeTLS    bool
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the per-fetch deadline. Defaults to DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		if d > 0 {
			f.timeout = d
		}
	}
}

// WithUserAgent overrides DefaultUserAgent.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		if ua != "" {
			f.userAgent = ua
		}
	}
}

// WithMaxBodyBytes caps how much of a response body is read.
func WithMaxBodyBytes(n int64) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.maxBodyBytes = n
		}
	}
}

// WithMaxRedirects sets how many redirects are followed.
func WithMaxRedirects(n int) Option {
	return func(f *Fetcher) {
		if n >= 0 {
			f.maxRedirects = n
		}
	}
}

// WithChromeFingerprint makes TLS handshakes present a Chrome ClientHello.
// If the hello cannot be built New logs the error and keeps the default
// transport.
func WithChromeFingerprint() Option {
	return func(f *Fetcher) {
		f.chromeTLS = true
	}
}

// New creates a Fetcher.
func New(opts ...Option) *Fetcher {
	f := &Fetcher{
		timeout:      DefaultTimeout,
		userAgent:    DefaultUserAgent,
		maxBodyBytes: DefaultMaxBodyBytes,
		maxRedirects: DefaultMaxRedirects,
	}
	for _, opt := range opts {
		opt(f)
	}

	if f.chromeTLS {
		tr, err := newChromeTransport(f.timeout)
		if err != nil {
			slog.Error("chrome tls fingerprint disabled", "error", err)
		} else {
			f.transport = tr
		}
	}

	f.client = &http.Client{
		Transport:     f.transport,
		CheckRedirect: f.checkRedirect,
	}
	return f
}

// Timeout reports the per-fetch deadline.
func (f *Fetcher) Timeout() time.Duration {
	return f.timeout
}

func (f *Fetcher) checkRedirect(req *http.Request, via []*http.Request) error {
	if len(via) >= f.maxRedirects {
		return fmt.Errorf("stopped after %d redirects: %w", len(via), errTooManyHops)
	}
	if !isHTTPScheme(req.URL.Scheme) {
		return errRedirectScheme
	}
	return nil
}

// Fetch validates rawURL and retrieves it. Every returned error is a
// *models.PreviewError. There are no retries.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Result, error) {
	target, err := ValidateURL(rawURL)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, models.NewPreviewError(models.ErrCodeInvalidURL, models.MsgInvalidURL, err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, classify(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, models.NewFetchFailedError(resp.StatusCode, statusText(resp))
	}

	ct := resp.Header.Get("Content-Type")
	if !isHTMLContentType(ct) {
		return nil, models.NewPreviewError(models.ErrCodeNotHTML, models.MsgNotHTML,
			fmt.Errorf("content-type %q", ct))
	}

	body, err := f.readBody(resp.Body, ct)
	if err != nil {
		return nil, classify(ctx, err)
	}

	finalURL := resp.Request.URL.String()
	slog.Debug("page fetched",
		"url", target.String(),
		"final_url", finalURL,
		"status", resp.StatusCode,
		"bytes", len(body),
		"ms", time.Since(start).Milliseconds(),
	)

	return &Result{
		HTML:        body,
		FinalURL:    finalURL,
		StatusCode:  resp.StatusCode,
		ContentType: ct,
	}, nil
}

// readBody reads at most maxBodyBytes and converts the body to UTF-8.
// A charset named in the Content-Type header is trusted; otherwise bodies
// that already are valid UTF-8 are kept as-is and only the rest are decoded
// with the charset sniffed from <meta>.
func (f *Fetcher) readBody(r io.Reader, contentType string) (string, error) {
	raw, err := io.ReadAll(io.LimitReader(r, f.maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("fetcher: read body: %w", err)
	}

	enc, name, certain := charset.DetermineEncoding(raw, contentType)
	if name == "utf-8" || (!certain && utf8.Valid(raw)) {
		return string(raw), nil
	}

	decoded, err := enc.NewDecoder().Bytes(raw)
	if err != nil {
		slog.Debug("charset decode failed, keeping raw body", "charset", name, "error", err)
		return string(raw), nil
	}
	return string(decoded), nil
}

// classify maps a transport-level failure onto the error taxonomy.
func classify(ctx context.Context, err error) *models.PreviewError {
	var pe *models.PreviewError
	if errors.As(err, &pe) {
		return pe
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return models.NewPreviewError(models.ErrCodeTimeout, models.MsgTimeout, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return models.NewPreviewError(models.ErrCodeTimeout, models.MsgTimeout, err)
	}

	if errors.Is(err, errRedirectScheme) {
		return models.NewPreviewError(models.ErrCodeUnsupportedScheme, models.MsgUnsupportedScheme, err)
	}

	return models.NewPreviewError(models.ErrCodeUnexpected, err.Error(), err)
}

// statusText returns the reason phrase the server sent, falling back to the
// standard one.
func statusText(resp *http.Response) string {
	text := strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode))
	text = strings.TrimSpace(text)
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return text
}
