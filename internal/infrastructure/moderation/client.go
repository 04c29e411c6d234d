package moderation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"murmurnet/internal/core/domain"
	"murmurnet/internal/core/ports"
	"murmurnet/pkg/circuitbreaker"
	"murmurnet/pkg/retry"
	"murmurnet/pkg/tracing"
)

const maxResponseBytes = 1 << 16

type classifyRequest struct {
	Input string `json:"input"`
}

// Client classifies post text against an external moderation API. Transient
// failures are retried with backoff; a persistently failing upstream trips
// the circuit breaker so posts fail fast instead of piling up on timeouts.
type Client struct {
	url        string
	apiKey     string
	httpClient *http.Client
	retryCfg   retry.Config
	breaker    *circuitbreaker.CircuitBreaker
	logger     *zap.SugaredLogger
}

// NewClient builds a moderation client. Returns nil when no API key is
// configured, which disables moderation entirely.
func NewClient(url, apiKey string, timeout time.Duration, logger *zap.SugaredLogger) *Client {
	if apiKey == "" {
		logger.Warn("moderation disabled: no API key configured")
		return nil
	}

	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	breaker := circuitbreaker.New(circuitbreaker.DefaultConfig())
	breaker.OnStateChange(func(from, to circuitbreaker.State) {
		logger.Warnw("moderation circuit breaker state changed",
			"from", from.String(), "to", to.String())
	})

	return &Client{
		url:        url,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		retryCfg:   retry.DefaultConfig(),
		breaker:    breaker,
		logger:     logger,
	}
}

var _ ports.ModerationClient = (*Client)(nil)

// Classify sends the text to the moderation API and returns its category
// scores.
func (c *Client) Classify(ctx context.Context, text string) (*domain.ModerationReport, error) {
	ctx, span := tracing.TraceModeration(ctx, len(text))
	defer span.End()

	var report *domain.ModerationReport

	err := c.breaker.Execute(func() error {
		return retry.Do(ctx, c.retryCfg, func() error {
			r, err := c.classifyOnce(ctx, text)
			if err != nil {
				return err
			}
			report = r
			return nil
		})
	})
	if err != nil {
		tracing.RecordError(ctx, err)
		return nil, fmt.Errorf("moderation classify: %w", err)
	}
	return report, nil
}

func (c *Client) classifyOnce(ctx context.Context, text string) (*domain.ModerationReport, error) {
	body, err := json.Marshal(classifyRequest{Input: text})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call moderation api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("moderation api returned status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	report := &domain.ModerationReport{}
	if err := json.Unmarshal(raw, report); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return report, nil
}
