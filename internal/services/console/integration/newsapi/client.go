// Package newsapi is the console's client for the external newsroom REST API.
//
// Client.Request is the generic authenticated call; Session binds one bearer
// credential and decodes the typed endpoints the console consumes.
package newsapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/sikiya/sikiya-console/internal/platform/timeouts"
)

const tracerName = "github.com/sikiya/sikiya-console/internal/services/console/integration/newsapi"

// maxErrorBody bounds how much of a failure body is read for its message.
const maxErrorBody = 64 << 10

// RequestOptions shapes one API call. Method defaults to GET.
type RequestOptions struct {
	Method string
	Body   any
	Query  url.Values
}

// APIError is returned for every non-2xx response.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

// HTTPStatus reports the upstream status code.
func (e *APIError) HTTPStatus() int {
	return e.StatusCode
}

// StatusCode returns the upstream status carried by err, or 0.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// Client performs requests against one API base URL.
type Client struct {
	baseURL string
	http    *http.Client
	tracer  trace.Tracer
}

// New builds a Client. A nil httpClient gets one capped by timeouts.APIRequest.
func New(baseURL string, httpClient *http.Client) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("api base url is required")
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse api base url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("api base url must be http or https: %q", baseURL)
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeouts.APIRequest}
	}
	return &Client{
		baseURL: baseURL,
		http:    httpClient,
		tracer:  otel.Tracer(tracerName),
	}, nil
}

// BaseURL returns the normalized API base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Request performs one call. The token is attached as a bearer credential when
// non-empty. A 2xx body is returned unchanged (nil when empty); anything else
// yields an *APIError.
func (c *Client) Request(ctx context.Context, token, path string, opts RequestOptions) (json.RawMessage, error) {
	if c == nil {
		return nil, errors.New("news api client is not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	method := strings.ToUpper(strings.TrimSpace(opts.Method))
	if method == "" {
		method = http.MethodGet
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	ctx, span := c.tracer.Start(ctx, "newsapi "+method+" "+path, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	target := c.baseURL + path
	if len(opts.Query) > 0 {
		target += "?" + opts.Query.Encode()
	}

	var body io.Reader
	if opts.Body != nil {
		payload, err := json.Marshal(opts.Body)
		if err != nil {
			return nil, c.fail(ctx, span, method, path, fmt.Errorf("encode request body: %w", err))
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, c.fail(ctx, span, method, path, fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if token = strings.TrimSpace(token); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, c.fail(ctx, span, method, path, fmt.Errorf("%s %s: %w", method, path, err))
	}
	defer resp.Body.Close()
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, c.fail(ctx, span, method, path, &APIError{
			StatusCode: resp.StatusCode,
			Message:    errorMessage(resp.StatusCode, data),
		})
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.fail(ctx, span, method, path, fmt.Errorf("read response %s %s: %w", method, path, err))
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	return json.RawMessage(data), nil
}

// fail records err on the span. Calls abandoned by their caller are not
// logged, whatever the cancellation cause.
func (c *Client) fail(ctx context.Context, span trace.Span, method, path string, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	if ctx.Err() == nil && !errors.Is(err, context.Canceled) {
		log.Printf("news api %s %s: %v", method, path, err)
	}
	return err
}

// errorMessage reads the failure body's "error" field, then "message",
// falling back to a generic text.
func errorMessage(status int, data []byte) string {
	var body struct {
		Error   any `json:"error"`
		Message any `json:"message"`
	}
	if err := json.Unmarshal(data, &body); err == nil {
		for _, field := range []any{body.Error, body.Message} {
			if text, ok := field.(string); ok && strings.TrimSpace(text) != "" {
				return strings.TrimSpace(text)
			}
		}
	}
	return fmt.Sprintf("Server error (%d)", status)
}
