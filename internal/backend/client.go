package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/config"
	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/internal/metrics"
	"github.com/jafarshop/storefront/pkg/errors"
)

type Client struct {
	endpoint   string
	httpClient *http.Client
	metrics    *metrics.Metrics
	logger     *zap.Logger
}

// NewClient creates a new ledger GraphQL client
func NewClient(cfg config.BackendConfig, m *metrics.Metrics, logger *zap.Logger) *Client {
	// Normalize endpoint - remove trailing slashes
	endpoint := strings.TrimSuffix(cfg.URL, "/")

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		metrics: m,
		logger:  logger,
	}
}

// GraphQLRequest represents a GraphQL request
type GraphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

// GraphQLResponse represents a GraphQL response
type GraphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []GraphQLError  `json:"errors,omitempty"`
}

// GraphQLError represents a GraphQL error
type GraphQLError struct {
	Message    string         `json:"message"`
	Path       []any          `json:"path,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

// Execute runs one query/mutation round trip. The caller principal on ctx, if
// any, is sent as the bearer credential. Failures come back as
// *errors.ErrUnauthorized or *errors.ErrRemoteCall.
func (c *Client) Execute(ctx context.Context, operation, query string, variables map[string]any) (*GraphQLResponse, error) {
	start := time.Now()
	resp, err := c.execute(ctx, operation, query, variables)
	c.metrics.ObserveBackendCall(operation, time.Since(start), err)
	return resp, err
}

func (c *Client) execute(ctx context.Context, operation, query string, variables map[string]any) (*GraphQLResponse, error) {
	reqBody := GraphQLRequest{
		Query:     query,
		Variables: variables,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", requestID)

	principal := domain.PrincipalFromContext(ctx)
	if p, ok := principal.Get(); ok {
		req.Header.Set("Authorization", "Bearer "+string(p))
	}

	c.logger.Debug("Backend call",
		zap.String("operation", operation),
		zap.String("request_id", requestID),
		zap.String("caller", principal.OrElse("").Fingerprint()),
	)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &errors.ErrRemoteCall{Operation: operation, Message: "service unavailable", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &errors.ErrRemoteCall{Operation: operation, Message: "failed to read response", Err: err}
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, &errors.ErrUnauthorized{Message: "please sign in to continue"}
	case resp.StatusCode != http.StatusOK:
		c.logger.Warn("Backend returned non-OK status",
			zap.String("operation", operation),
			zap.String("request_id", requestID),
			zap.Int("status", resp.StatusCode),
		)
		return nil, &errors.ErrRemoteCall{
			Operation: operation,
			Message:   fmt.Sprintf("backend error: status %d", resp.StatusCode),
		}
	}

	var graphQLResp GraphQLResponse
	if err := json.Unmarshal(body, &graphQLResp); err != nil {
		return nil, &errors.ErrRemoteCall{Operation: operation, Message: "malformed response", Err: err}
	}

	if len(graphQLResp.Errors) > 0 {
		first := graphQLResp.Errors[0]
		if code, _ := first.Extensions["code"].(string); code == "UNAUTHENTICATED" {
			return nil, &errors.ErrUnauthorized{Message: first.Message}
		}
		return nil, &errors.ErrRemoteCall{Operation: operation, Message: first.Message}
	}

	return &graphQLResp, nil
}

// decode unmarshals the data payload of resp into dest
func decode(operation string, resp *GraphQLResponse, dest any) error {
	if err := json.Unmarshal(resp.Data, dest); err != nil {
		return &errors.ErrRemoteCall{Operation: operation, Message: "malformed response", Err: err}
	}
	return nil
}
