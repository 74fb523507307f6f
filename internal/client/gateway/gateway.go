package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/bookauth/internal/common"
	"github.com/dmitrijs2005/bookauth/internal/logging"
	"github.com/google/uuid"
)

// DefaultTimeout bounds every request when no timeout is configured.
const DefaultTimeout = 10 * time.Second

const maxResponseBytes = 1 << 20

type Gateway struct {
	baseURL   string
	http      *http.Client
	transport *authTransport
	log       logging.Logger
}

type options struct {
	base    http.RoundTripper
	timeout time.Duration
	log     logging.Logger
}

type Option func(*options)

// WithTransport replaces http.DefaultTransport as the innermost RoundTripper.
func WithTransport(rt http.RoundTripper) Option {
	return func(o *options) { o.base = rt }
}

// WithTimeout sets the ceiling applied to every request.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

func WithLogger(l logging.Logger) Option {
	return func(o *options) { o.log = l }
}

// New builds the gateway for baseURL, e.g. "http://localhost:8000/api".
func New(baseURL string, creds Credentials, opts ...Option) *Gateway {
	o := options{base: http.DefaultTransport, timeout: DefaultTimeout, log: logging.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	log := o.log.With("component", "gateway")

	t := &authTransport{base: o.base, creds: creds, log: log}
	return &Gateway{
		baseURL:   strings.TrimRight(baseURL, "/"),
		http:      &http.Client{Transport: t, Timeout: o.timeout},
		transport: t,
		log:       log,
	}
}

// OnUnauthorized registers h to run whenever any request gets a 401.
func (g *Gateway) OnUnauthorized(h UnauthorizedHandler) {
	g.transport.addHandler(h)
}

// Do sends in (JSON-encoded, may be nil) to path and decodes a 2xx body
// into out (may be nil).
func (g *Gateway) Do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s %s request: %w", method, path, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build %s %s request: %w", method, path, err)
	}
	requestID := uuid.NewString()
	req.Header.Set(common.RequestIDHeaderName, requestID)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := g.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		g.log.Warn(ctx, "request failed", "method", method, "path", path, "request_id", requestID, "error", err)
		return &TransportError{Method: method, Path: path, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return &TransportError{Method: method, Path: path, Err: err}
	}

	g.log.Debug(ctx, "request finished",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"request_id", requestID,
		"duration", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newResponseError(resp.StatusCode, data)
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}
