// Package forwarder performs the outbound HTTP exchange on behalf of an
// inbound request and relays the result to the client.
//
// A single attempt is made against the selected upstream; there is no retry
// against a second upstream on failure in this design (see spec Non-goals).
package forwarder

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/samims/reverse-proxy/internal/config"
	"github.com/samims/reverse-proxy/internal/logger"
)

// DefaultTimeout is the connect+read timeout applied to the upstream
// exchange when none is configured.
const DefaultTimeout = 30 * time.Second

var hopByHopHeaders = []string{
	"Connection",
	"Keep-Alive",
	"Proxy-Authenticate",
	"Proxy-Authorization",
	"Te",
	"Trailers",
	"Transfer-Encoding",
	"Upgrade",
}

// Outcome classifies how an exchange ended.
type Outcome int

const (
	// Success means a response was obtained from the upstream, regardless
	// of its HTTP status code.
	Success Outcome = iota
	// Failure means no upstream response could be obtained at all.
	Failure
)

// Result describes the outcome of a single forwarded request.
type Result struct {
	Outcome    Outcome
	StatusCode int
	ElapsedMs  int64
}

// Forwarder proxies one inbound request to one chosen upstream.
type Forwarder struct {
	client  *http.Client
	timeout time.Duration
	logger  *logger.Logger
}

// New builds a Forwarder with the given per-upstream-request timeout.
func New(timeout time.Duration, log *logger.Logger) *Forwarder {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Forwarder{
		client: &http.Client{
			// No client-wide Timeout: each exchange gets its own context
			// deadline below, derived from the inbound request's context so
			// a client disconnect cancels the upstream call too.
			Transport: http.DefaultTransport,
		},
		timeout: timeout,
		logger:  log.WithComponent("forwarder"),
	}
}

// Forward issues the outbound request for upstream and relays the response
// (or a 502) to w. The returned Result is used by the caller to update
// per-route metrics.
func (f *Forwarder) Forward(w http.ResponseWriter, r *http.Request, upstream config.Upstream, rewritePath string) Result {
	t0 := time.Now()

	targetURL := buildTargetURL(upstream, rewritePath, r)

	ctx, cancel := context.WithTimeout(r.Context(), f.timeout)
	defer cancel()

	outReq, err := http.NewRequestWithContext(ctx, r.Method, targetURL, r.Body)
	if err != nil {
		f.logger.LogError(r.Context(), err, "failed to build upstream request", logger.FieldPath(r.URL.Path))
		w.WriteHeader(http.StatusBadGateway)
		return Result{Outcome: Failure, ElapsedMs: elapsedMs(t0)}
	}
	copyHeaders(outReq.Header, r.Header)

	resp, err := f.client.Do(outReq)
	if err != nil {
		f.logger.LogError(r.Context(), err, "upstream exchange failed", logger.FieldPath(targetURL))
		w.WriteHeader(http.StatusBadGateway)
		return Result{Outcome: Failure, ElapsedMs: elapsedMs(t0)}
	}
	defer resp.Body.Close()

	copyHeaders(w.Header(), resp.Header)
	w.WriteHeader(resp.StatusCode)
	io.Copy(w, resp.Body)

	return Result{
		Outcome:    Success,
		StatusCode: resp.StatusCode,
		ElapsedMs:  elapsedMs(t0),
	}
}

// elapsedMs returns the milliseconds elapsed since t0, floored at 1 so a
// genuine exchange (success or failure) is never reported as having taken
// 0ms purely due to integer truncation on a fast loopback round trip. The
// spec's last_response_time > 0 invariant after a successful request
// depends on this floor.
func elapsedMs(t0 time.Time) int64 {
	ms := time.Since(t0).Milliseconds()
	if ms <= 0 {
		ms = 1
	}
	return ms
}

// buildTargetURL forms scheme://host:port + (rewrite path or inbound path) +
// the original query string.
func buildTargetURL(upstream config.Upstream, rewritePath string, r *http.Request) string {
	path := r.URL.Path
	if rewritePath != "" {
		path = rewritePath
	}

	u := url.URL{
		Scheme:   upstream.Scheme,
		Host:     fmt.Sprintf("%s:%d", upstream.Host, upstream.Port),
		Path:     path,
		RawQuery: r.URL.RawQuery,
	}
	return u.String()
}

// copyHeaders copies all headers from src to dst except hop-by-hop headers.
func copyHeaders(dst, src http.Header) {
	for name, values := range src {
		if isHopByHopHeader(name) {
			continue
		}
		for _, v := range values {
			dst.Add(name, v)
		}
	}
}

func isHopByHopHeader(name string) bool {
	for _, h := range hopByHopHeaders {
		if strings.EqualFold(h, name) {
			return true
		}
	}
	return false
}
