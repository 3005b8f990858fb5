// Package classifier is the HTTP client for the remote classification
// service.
//
// Both operations are single shot: one request, one response. Transport
// errors are returned unmodified and non-2xx responses become *APIError.
// Nothing is retried.
package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/JonMunkholm/csvclassify/internal/model"
)

// Endpoint paths relative to the configured base URL.
const (
	ClassifyPath        = "/classify/file"
	DefaultEvaluatePath = "/classify/order"
)

// DefaultTimeout bounds a single request when no timeout option is given.
const DefaultTimeout = 60 * time.Second

// maxErrorBody is how much of a failed response body is kept on APIError.
const maxErrorBody = 512

var (
	ErrNoResults = errors.New("classifier: response has no results")
	ErrNoMetrics = errors.New("classifier: response has no metrics")
)

// APIError represents a non-2xx response from the classification service.
type APIError struct {
	StatusCode int
	Body       string // first 512 bytes
}

func (e *APIError) Error() string {
	return fmt.Sprintf("classifier: HTTP %d: %s", e.StatusCode, e.Body)
}

// ClassifyResponse is the decoded classify payload. Meta carries every
// top-level key other than "results".
type ClassifyResponse struct {
	Results []model.Result
	Meta    map[string]json.RawMessage
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *ClassifyResponse) UnmarshalJSON(data []byte) error {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return err
	}

	raw, ok := top["results"]
	if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return ErrNoResults
	}

	var results []model.Result
	if err := json.Unmarshal(raw, &results); err != nil {
		return fmt.Errorf("results: %w", err)
	}
	delete(top, "results")

	r.Results = results
	r.Meta = top
	return nil
}

// Client talks to the classification service.
type Client struct {
	baseURL      string
	evaluatePath string
	httpClient   *http.Client
}

// Option configures Client behavior.
type Option func(*Client)

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithEvaluatePath overrides the evaluation endpoint path.
func WithEvaluatePath(path string) Option {
	return func(c *Client) {
		if path != "" {
			c.evaluatePath = path
		}
	}
}

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// New creates a Client for the service rooted at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		evaluatePath: DefaultEvaluatePath,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the service root the client was configured with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Classify uploads the raw file as multipart field "file" and returns the
// per-row results in service order.
func (c *Client) Classify(ctx context.Context, name string, content io.Reader) (*ClassifyResponse, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, quoteEscaper.Replace(name)))
	h.Set("Content-Type", "text/csv")
	part, err := mw.CreatePart(h)
	if err != nil {
		return nil, fmt.Errorf("classifier: build form: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, fmt.Errorf("classifier: build form: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("classifier: build form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+ClassifyPath, &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var resp ClassifyResponse
	if err := c.do(req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Evaluate posts results as a JSON array and returns the computed metrics.
func (c *Client) Evaluate(ctx context.Context, results []model.Result) (*model.Metrics, error) {
	if results == nil {
		results = []model.Result{}
	}
	payload, err := json.Marshal(results)
	if err != nil {
		return nil, fmt.Errorf("classifier: encode results: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+c.evaluatePath, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	var resp struct {
		Metrics *model.Metrics `json:"metrics"`
	}
	if err := c.do(req, &resp); err != nil {
		return nil, err
	}
	if resp.Metrics == nil {
		return nil, ErrNoMetrics
	}
	return resp.Metrics, nil
}

// do sends req once and decodes a 2xx JSON body into dest.
func (c *Client) do(req *http.Request, dest any) error {
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}

	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyStr := string(body)
		if len(bodyStr) > maxErrorBody {
			bodyStr = bodyStr[:maxErrorBody]
		}
		return &APIError{StatusCode: resp.StatusCode, Body: bodyStr}
	}

	if err := json.Unmarshal(body, dest); err != nil {
		if errors.Is(err, ErrNoResults) {
			return err
		}
		return fmt.Errorf("classifier: decode response: %w", err)
	}
	return nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")
