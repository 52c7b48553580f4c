// Package expansion talks to the remote service that suggests a related idea
// for a node's text.
package expansion

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"ideaboard/application/ports"
	pkgerrors "ideaboard/pkg/errors"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// Path is the fixed endpoint path of the expansion service
const Path = "/api/expand"

// Error codes carried by expansion failures
const (
	CodeCircuitOpen = "EXPANSION_CIRCUIT_OPEN"
	CodeTimeout     = "EXPANSION_TIMEOUT"
	CodeCanceled    = "EXPANSION_CANCELED"
	CodeTransport   = "EXPANSION_TRANSPORT"
	CodeStatus      = "EXPANSION_STATUS"
	CodeDecode      = "EXPANSION_DECODE"
)

// ErrNoSuggestion is returned when the response has no suggestion field
var ErrNoSuggestion = ports.ErrNoSuggestion

// Request is the body sent to the expansion service
type Request struct {
	Text string `json:"text" validate:"required"`
}

// Response is the body returned by the expansion service.
// A nil Suggestion means the field was absent or null.
type Response struct {
	Suggestion *string `json:"suggestion"`
}

// ClientConfig configures the HTTP client
type ClientConfig struct {
	BaseURL string
	Timeout time.Duration

	// Circuit breaker
	MaxRequests      uint32
	Interval         time.Duration
	OpenTimeout      time.Duration
	FailureThreshold float64
	MinRequests      uint32
}

// DefaultClientConfig returns defaults for a service at baseURL
func DefaultClientConfig(baseURL string) ClientConfig {
	return ClientConfig{
		BaseURL:          baseURL,
		Timeout:          10 * time.Second,
		MaxRequests:      1,
		Interval:         60 * time.Second,
		OpenTimeout:      30 * time.Second,
		FailureThreshold: 0.6,
		MinRequests:      5,
	}
}

// Client calls the remote expansion endpoint.
// Every failure comes back as an EXPANSION AppError; nothing is substituted.
type Client struct {
	httpClient *http.Client
	endpoint   string
	timeout    time.Duration
	breaker    *gobreaker.CircuitBreaker
	logger     *zap.Logger
}

// NewClient creates a client. A nil httpClient uses a default one.
func NewClient(cfg ClientConfig, httpClient *http.Client, logger *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "expansion",
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= cfg.FailureThreshold
		},
		IsSuccessful: callerCanceled,
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return &Client{
		httpClient: httpClient,
		endpoint:   strings.TrimRight(cfg.BaseURL, "/") + Path,
		timeout:    cfg.Timeout,
		breaker:    breaker,
		logger:     logger,
	}
}

// callerCanceled keeps requests the caller abandoned out of the failure
// counts; only problems on the remote side may open the breaker.
func callerCanceled(err error) bool {
	return err == nil || errors.Is(err, context.Canceled)
}

// Endpoint returns the full URL requests are sent to
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Expand asks the remote service for a suggestion related to text.
func (c *Client) Expand(ctx context.Context, text string) (string, error) {
	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.call(ctx, text)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return "", pkgerrors.NewExpansionError("expansion service temporarily unavailable", err).
				WithCode(CodeCircuitOpen)
		}
		return "", err
	}

	resp := result.(*Response)
	if resp.Suggestion == nil {
		return "", ErrNoSuggestion
	}
	return *resp.Suggestion, nil
}

func (c *Client) call(ctx context.Context, text string) (*Response, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	body, err := json.Marshal(Request{Text: text})
	if err != nil {
		return nil, pkgerrors.NewExpansionError("failed to encode request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, pkgerrors.NewExpansionError("failed to build request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		switch ctx.Err() {
		case context.DeadlineExceeded:
			return nil, pkgerrors.NewExpansionError("expansion request timed out", err).WithCode(CodeTimeout)
		case context.Canceled:
			return nil, pkgerrors.NewExpansionError("expansion request canceled", context.Canceled).WithCode(CodeCanceled)
		}
		return nil, pkgerrors.NewExpansionError("expansion request failed", err).WithCode(CodeTransport)
	}
	defer httpResp.Body.Close()

	c.logger.Debug("Expansion response",
		zap.String("endpoint", c.endpoint),
		zap.Int("status", httpResp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(httpResp.Body, 512))
		return nil, pkgerrors.NewExpansionError(
			fmt.Sprintf("expansion service responded %d", httpResp.StatusCode), nil,
		).WithCode(CodeStatus).WithDetails(map[string]interface{}{
			"status": httpResp.StatusCode,
			"body":   string(snippet),
		})
	}

	var resp Response
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, pkgerrors.NewExpansionError("failed to decode expansion response", err).WithCode(CodeDecode)
	}
	return &resp, nil
}
