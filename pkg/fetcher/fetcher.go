// Package fetcher retrieves a single page per site and classifies every way
// the retrieval can fail. Each failure kind maps to a distinct report tag so
// that no two causes collapse into one generic error.
package fetcher

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"io"
	"net"
	"net/http"
	"syscall"
	"time"

	"github.com/morikuni/failure/v2"

	"github.com/juditrz/host-checker/pkg/extract"
	"github.com/juditrz/host-checker/pkg/httpclient"
	"github.com/juditrz/host-checker/pkg/model"
	"github.com/juditrz/host-checker/pkg/output"
)

// ErrorCode distinguishes fetch failure kinds.
type ErrorCode string

const (
	ErrTimeout     ErrorCode = "Timeout"
	ErrCertificate ErrorCode = "Certificate"
	ErrHTTPStatus  ErrorCode = "HTTPStatus"
	ErrConnection  ErrorCode = "Connection"
	ErrRequest     ErrorCode = "Request"
)

// Page is a successfully (or partially, on bad status) retrieved document.
type Page struct {
	URL        string
	StatusCode int
	Body       string
	Title      string
	Duration   time.Duration
}

// Config holds fetcher config
type Config struct {
	Client          *httpclient.Client
	MaxResponseSize int64
	ScanLog         *output.JsonlWriter
}

// Fetcher performs single-page GETs.
type Fetcher struct {
	client          *httpclient.Client
	maxResponseSize int64
	scanLog         *output.JsonlWriter
}

// NewFetcher creates fetcher
func NewFetcher(config *Config) *Fetcher {
	if config.MaxResponseSize == 0 {
		config.MaxResponseSize = 10 * 1024 * 1024
	}
	return &Fetcher{
		client:          config.Client,
		maxResponseSize: config.MaxResponseSize,
		scanLog:         config.ScanLog,
	}
}

// Fetch GETs url and returns the page. On failure the error carries one of
// the ErrorCode values; for ErrHTTPStatus the returned page is still non-nil
// so callers can read the status code.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*Page, error) {
	start := time.Now()
	page := &Page{URL: url}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, failure.New(ErrRequest,
			failure.Message("building request failed"),
			failure.Context{"url": url},
		)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		page.Duration = time.Since(start)
		ferr := failure.Translate(err, Classify(err), failure.Context{"url": url})
		f.log(page, ferr)
		return nil, ferr
	}
	defer resp.Body.Close()

	page.StatusCode = resp.StatusCode
	page.Duration = time.Since(start)

	// 2xx and 3xx are fine; redirects were already followed by the client.
	if resp.StatusCode >= 400 {
		ferr := failure.New(ErrHTTPStatus, failure.Context{
			"url":    url,
			"status": resp.Status,
		})
		f.log(page, ferr)
		return page, ferr
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxResponseSize))
	if err != nil {
		ferr := failure.Translate(err, Classify(err), failure.Context{"url": url})
		f.log(page, ferr)
		return nil, ferr
	}

	page.Body = string(body)
	page.Title = extract.Title(page.Body)
	page.Duration = time.Since(start)
	f.log(page, nil)
	return page, nil
}

// Classify maps a transport error onto a failure code. Timeout has to be
// checked before the connection cases because timeouts also surface as
// *net.OpError.
func Classify(err error) ErrorCode {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrTimeout
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}

	var (
		certVerify   *tls.CertificateVerificationError
		hostnameErr  x509.HostnameError
		unknownAuth  x509.UnknownAuthorityError
		certInvalid  x509.CertificateInvalidError
		recordHeader tls.RecordHeaderError
	)
	if errors.As(err, &certVerify) ||
		errors.As(err, &hostnameErr) ||
		errors.As(err, &unknownAuth) ||
		errors.As(err, &certInvalid) ||
		errors.As(err, &recordHeader) {
		return ErrCertificate
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return ErrConnection
	}
	var errno syscall.Errno
	if errors.As(err, &errno) {
		switch errno {
		case syscall.ECONNREFUSED, syscall.ECONNRESET,
			syscall.EHOSTUNREACH, syscall.ENETUNREACH:
			return ErrConnection
		}
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return ErrConnection
	}

	return ErrRequest
}

// Tag converts a fetch error into the report tag recorded in the
// HostProvider column.
func Tag(err error, page *Page) string {
	code, _ := failure.CodeOf(err).(ErrorCode)
	switch code {
	case ErrTimeout:
		return model.TagTimeout
	case ErrCertificate:
		return model.TagSSLError
	case ErrHTTPStatus:
		if page != nil {
			return model.HTTPErrorTag(page.StatusCode)
		}
		return model.TagRequestFailed
	case ErrConnection:
		return model.TagConnectionError
	default:
		return model.TagRequestFailed
	}
}

func (f *Fetcher) log(page *Page, ferr error) {
	if f.scanLog == nil {
		return
	}
	entry := map[string]interface{}{
		"url":         page.URL,
		"status_code": page.StatusCode,
		"title":       page.Title,
		"duration_ms": page.Duration.Milliseconds(),
		"timestamp":   time.Now().Format(time.RFC3339Nano),
	}
	if ferr != nil {
		entry["error"] = ferr.Error()
		entry["error_code"] = failure.CodeOf(ferr)
	}
	_ = f.scanLog.Log(entry)
}
