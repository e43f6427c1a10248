// Package backend is the portal's client for the Cascade Forum REST API.
//
// Every call carries the bearer token attached to its context with
// ports.ContextWithToken. Answers outside 2xx become *APIError; transport
// failures wrap domain.ErrBackendUnavailable.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/cascadeforum/portal/internal/api/metrics"
	"github.com/cascadeforum/portal/internal/core/domain"
	"github.com/cascadeforum/portal/internal/core/ports"
)

const (
	apiPrefix      = "/api/v1"
	defaultTimeout = 15 * time.Second
	maxErrorBody   = 64 << 10
)

// Config captures the settings for reaching the backend.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client talks JSON to the backend. It is safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
	tracer  trace.Tracer
	log     zerolog.Logger
}

func New(cfg Config, log zerolog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/") + apiPrefix,
		http:    &http.Client{Timeout: timeout},
		tracer:  otel.Tracer("github.com/cascadeforum/portal/backend"),
		log:     log,
	}
}

// APIError is a non-2xx answer from the backend.
type APIError struct {
	Method string
	Path   string
	Status int
	// Message is the backend's "detail" string, when it sent one.
	Message string
	// Public marks calls against endpoints that never require a session.
	Public bool
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend %s %s: %d: %s", e.Method, e.Path, e.Status, e.Message)
	}
	return fmt.Sprintf("backend %s %s: %d", e.Method, e.Path, e.Status)
}

// Detail returns the user-facing message sent by the backend, if any.
func (e *APIError) Detail() string {
	return e.Message
}

// Is lets callers match status classes against domain errors. A 401 counts
// as a rejected session only for non-public calls.
func (e *APIError) Is(target error) bool {
	switch target {
	case domain.ErrAuthRejected:
		return e.Status == http.StatusUnauthorized && !e.Public
	case domain.ErrForbidden:
		return e.Status == http.StatusForbidden
	case domain.ErrNotFound:
		return e.Status == http.StatusNotFound
	}
	return false
}

type call struct {
	method string
	path   string
	query  url.Values
	body   any
	form   url.Values
	// public calls are sent without a token and never reject the session.
	public bool
}

func (c *Client) do(ctx context.Context, in call, out any) error {
	public := in.public || isPublicPath(in.path)

	ctx, span := c.tracer.Start(ctx, "backend "+in.method+" "+in.path,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", in.method),
			attribute.String("url.path", in.path),
			attribute.Bool("portal.public", public),
		))
	defer span.End()

	req, err := c.newRequest(ctx, in, public)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	metrics.BackendRequestDuration.WithLabelValues(in.method).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.BackendRequestsTotal.WithLabelValues(in.method, "error").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport")
		return fmt.Errorf("%w: %s %s: %v", domain.ErrBackendUnavailable, in.method, in.path, err)
	}
	defer resp.Body.Close()

	metrics.BackendRequestsTotal.WithLabelValues(in.method, strconv.Itoa(resp.StatusCode)).Inc()
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{
			Method:  in.method,
			Path:    in.path,
			Status:  resp.StatusCode,
			Message: readDetail(resp.Body),
			Public:  public,
		}
		span.SetStatus(codes.Error, http.StatusText(resp.StatusCode))
		c.log.Debug().
			Str("method", in.method).
			Str("path", in.path).
			Int("status", resp.StatusCode).
			Str("detail", apiErr.Message).
			Msg("backend answered with error")
		return apiErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		span.RecordError(err)
		return fmt.Errorf("decode %s %s: %w", in.method, in.path, err)
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, in call, public bool) (*http.Request, error) {
	target := c.baseURL + in.path
	if len(in.query) > 0 {
		target += "?" + in.query.Encode()
	}

	var (
		body        io.Reader
		contentType string
	)
	switch {
	case in.form != nil:
		body = strings.NewReader(in.form.Encode())
		contentType = "application/x-www-form-urlencoded"
	case in.body != nil:
		data, err := json.Marshal(in.body)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s: %w", in.method, in.path, err)
		}
		body = bytes.NewReader(data)
		contentType = "application/json"
	}

	req, err := http.NewRequestWithContext(ctx, in.method, target, body)
	if err != nil {
		return nil, fmt.Errorf("build %s %s: %w", in.method, in.path, err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if !public {
		if token := ports.TokenFromContext(ctx); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))
	return req, nil
}

// isPublicPath reports whether any path segment is "public".
func isPublicPath(path string) bool {
	for _, seg := range strings.Split(path, "/") {
		if seg == "public" {
			return true
		}
	}
	return false
}

// readDetail extracts {"detail": "..."}; list-shaped validation details are
// not surfaced.
func readDetail(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, maxErrorBody))
	if err != nil || len(data) == 0 {
		return ""
	}
	var body struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return ""
	}
	var detail string
	if err := json.Unmarshal(body.Detail, &detail); err != nil {
		return ""
	}
	return detail
}

func pageQuery(p ports.Page) url.Values {
	q := url.Values{}
	if p.Limit > 0 {
		q.Set("skip", strconv.Itoa(p.Skip))
		q.Set("limit", strconv.Itoa(p.Limit))
	}
	return q
}

func escape(id string) string {
	return url.PathEscape(id)
}

// IsAPIError reports whether err carries a backend answer and returns it.
func IsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
