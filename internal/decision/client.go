// File: internal/decision/client.go
package decision

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/xkilldash9x/snakepilot/api/schemas"
)

// ErrServiceError marks a response the service produced but which carries no usable action.
var ErrServiceError = errors.New("decision service error")

// maxResponseBytes bounds how much of a response body is read.
const maxResponseBytes = 1 << 20

// Client asks the decision service for an action.
type Client interface {
	Decide(ctx context.Context, req Request) (schemas.Action, error)
}

// response is the wire shape of a reply. The service reports failures in-band
// through Error, sometimes with a 200 status.
type response struct {
	Angle      float64 `json:"angle"`
	Speedboost bool    `json:"speedboost"`
	Error      string  `json:"error,omitempty"`
}

// HTTPClient posts encoded observations to a fixed endpoint.
type HTTPClient struct {
	url     string
	headers map[string]string
	client  *http.Client
	logger  *zap.Logger
}

var _ Client = (*HTTPClient)(nil)

// NewClient creates a client for the endpoint at url. A nil httpClient gets the
// package transport with no timeout.
func NewClient(url string, headers map[string]string, httpClient *http.Client, logger *zap.Logger) *HTTPClient {
	if httpClient == nil {
		httpClient = NewHTTPClient(nil, 0)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPClient{
		url:     url,
		headers: headers,
		client:  httpClient,
		logger:  logger.Named("decision"),
	}
}

// Decide posts req and decodes the action in the reply.
func (c *HTTPClient) Decide(ctx context.Context, req Request) (schemas.Action, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(req.Body))
	if err != nil {
		return schemas.Action{}, fmt.Errorf("failed to build request: %w", err)
	}
	for k, v := range c.headers {
		httpReq.Header.Set(k, v)
	}
	for k, vs := range req.Header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	if req.ContentType != "" {
		httpReq.Header.Set("Content-Type", req.ContentType)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return schemas.Action{}, fmt.Errorf("request to decision service failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return schemas.Action{}, fmt.Errorf("failed to read decision response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return schemas.Action{}, fmt.Errorf("%w: status %d: %s", ErrServiceError, resp.StatusCode, truncate(body, 256))
	}

	var decoded response
	if err := json.Unmarshal(body, &decoded); err != nil {
		return schemas.Action{}, fmt.Errorf("failed to decode decision response: %w", err)
	}
	if decoded.Error != "" {
		return schemas.Action{}, fmt.Errorf("%w: %s", ErrServiceError, decoded.Error)
	}

	c.logger.Debug("decision received",
		zap.String("kind", req.Kind),
		zap.Float64("angle", decoded.Angle),
		zap.Bool("boost", decoded.Speedboost),
	)
	return schemas.Action{Angle: decoded.Angle, Boost: decoded.Speedboost}, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
