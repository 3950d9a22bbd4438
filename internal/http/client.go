package http

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/h2non/filetype"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/net/html/charset"
	"golang.org/x/net/proxy"
)

// DefaultUserAgent is sent with font file downloads.
const DefaultUserAgent = "webfont-dl"

// Options configures a Client for a single run.
type Options struct {
	// Timeout limits every request, zero means no limit.
	Timeout time.Duration

	// Proxy is an optional proxy URL. http, https, socks5 and socks5h
	// schemes are supported.
	Proxy string

	// UserAgent is sent with font downloads. Stylesheet requests carry the
	// per-format agent passed to GetStylesheet.
	UserAgent string
}

// Client fetches provider stylesheets and font files.
type Client struct {
	httpClient *http.Client
	userAgent  string
	log        *zap.Logger
}

// NewClient creates a new HTTP client. Every client owns its transport, so
// proxies configured for one run never leak into another.
func NewClient(opts Options, log *zap.Logger) (*Client, error) {
	if log == nil {
		log = zap.NewNop()
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if opts.Proxy != "" {
		if err := configureProxy(transport, opts.Proxy); err != nil {
			return nil, err
		}
	}

	ua := opts.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}

	return &Client{
		httpClient: &http.Client{
			Timeout:   opts.Timeout,
			Transport: transport,
		},
		userAgent: ua,
		log:       log.Named("http"),
	}, nil
}

func configureProxy(transport *http.Transport, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid proxy %q: %w", raw, err)
	}

	switch u.Scheme {
	case "http", "https":
		transport.Proxy = http.ProxyURL(u)
	case "socks5", "socks5h":
		dialer, err := proxy.FromURL(u, proxy.Direct)
		if err != nil {
			return fmt.Errorf("invalid proxy %q: %w", raw, err)
		}
		transport.Proxy = nil
		if cd, ok := dialer.(proxy.ContextDialer); ok {
			transport.DialContext = cd.DialContext
		} else {
			transport.DialContext = func(_ context.Context, network, addr string) (net.Conn, error) {
				return dialer.Dial(network, addr)
			}
		}
	default:
		return fmt.Errorf("unsupported proxy scheme %q", u.Scheme)
	}
	return nil
}

// StatusError is returned when the server answers with anything but 200 OK.
type StatusError struct {
	URL    string
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.Code, e.Status)
}

// countingWriter reports the running byte count after every write.
type countingWriter struct {
	w       io.Writer
	total   int64 // Content-Length, -1 when unknown
	written int64
	report  func(written, total int64)
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.written += int64(n)
	cw.report(cw.written, cw.total)
	return n, err
}

// get performs a GET request with the given User-Agent. The caller closes
// the response body.
func (c *Client) get(ctx context.Context, rawURL, userAgent string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, &StatusError{URL: rawURL, Code: resp.StatusCode, Status: resp.Status}
	}
	return resp, nil
}

// GetStylesheet fetches a stylesheet identifying as userAgent and returns it
// as UTF-8 text, decoded according to the response Content-Type.
//
// Returns a *StatusError when the response status is not 200 OK.
func (c *Client) GetStylesheet(ctx context.Context, rawURL, userAgent string) (string, error) {
	resp, err := c.get(ctx, rawURL, userAgent)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	r, err := charset.NewReader(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		return "", fmt.Errorf("unable to decode stylesheet: %w", err)
	}
	body, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}

	c.log.Debug("Fetched stylesheet", zap.String("url", rawURL), zap.Int("bytes", len(body)))
	return string(body), nil
}

// DownloadFile streams rawURL into a temporary file next to destPath and
// renames it into place once complete, so a failed download never leaves a
// partial file under destPath. onProgress, when not nil, receives the bytes
// written so far and the Content-Length (-1 if unknown).
func (c *Client) DownloadFile(ctx context.Context, rawURL, destPath string, onProgress func(written, total int64)) (err error) {
	resp, err := c.get(ctx, rawURL, c.userAgent)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	tmpPath := filepath.Join(filepath.Dir(destPath), "."+uuid.New().String()+".part")
	file, err := os.Create(tmpPath)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			err = multierr.Append(err, os.Remove(tmpPath))
		}
	}()

	head := &headRecorder{limit: sniffLen}
	var writer io.Writer = io.MultiWriter(file, head)
	if onProgress != nil {
		writer = &countingWriter{w: writer, total: resp.ContentLength, report: onProgress}
	}

	if _, err = io.Copy(writer, resp.Body); err != nil {
		return multierr.Append(err, file.Close())
	}
	if err = file.Close(); err != nil {
		return err
	}
	if err = os.Rename(tmpPath, destPath); err != nil {
		return err
	}

	if kind, merr := filetype.Match(head.buf); merr == nil && kind != filetype.Unknown {
		c.log.Debug("Downloaded", zap.String("file", destPath), zap.String("type", kind.MIME.Value))
	} else {
		c.log.Debug("Downloaded", zap.String("file", destPath), zap.String("type", "unknown"))
	}
	return nil
}

// sniffLen is the number of leading bytes filetype needs to match.
const sniffLen = 262

// headRecorder keeps the first limit bytes written to it.
type headRecorder struct {
	buf   []byte
	limit int
}

func (h *headRecorder) Write(p []byte) (int, error) {
	if room := h.limit - len(h.buf); room > 0 {
		h.buf = append(h.buf, p[:min(room, len(p))]...)
	}
	return len(p), nil
}
