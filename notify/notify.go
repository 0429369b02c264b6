// Package notify delivers monitor messages to a Discord-compatible
// webhook. Delivery is best-effort: every failure is logged and
// swallowed so a broken webhook can never abort a scrape run.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/use-agent/fpdswatch/config"
)

// payload is the Discord webhook body.
type payload struct {
	Content string `json:"content"`
}

// Notifier posts text messages to a single webhook endpoint, rate
// limited to stay under Discord's per-webhook budget.
type Notifier struct {
	url     string
	client  *http.Client
	limiter *rate.Limiter

	// retry delays between attempts; attempt 0 runs immediately.
	retryDelays []time.Duration
}

// New creates a Notifier from config. An empty webhook URL is valid
// and degrades Send to local log output.
func New(cfg config.NotifyConfig) *Notifier {
	limit := rate.Limit(cfg.RequestsPerMinute / 60.0)
	if cfg.RequestsPerMinute <= 0 {
		limit = rate.Inf
	}
	return &Notifier{
		url:         cfg.WebhookURL,
		client:      &http.Client{Timeout: 20 * time.Second},
		limiter:     rate.NewLimiter(limit, cfg.Burst),
		retryDelays: []time.Duration{0, 1 * time.Second, 5 * time.Second},
	}
}

// Send delivers one text message. Without a configured webhook the
// message goes to the log instead. Delivery errors are returned for
// the caller's logging but are safe to ignore.
func (n *Notifier) Send(ctx context.Context, content string) error {
	if n.url == "" {
		slog.Info("webhook not configured, printing notification", "content", content)
		return nil
	}

	if err := n.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("notify: rate limiter: %w", err)
	}

	var lastErr error
	for attempt, delay := range n.retryDelays {
		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		if lastErr = n.post(ctx, content); lastErr == nil {
			slog.Debug("notification delivered", "attempt", attempt+1)
			return nil
		}
		slog.Warn("notification delivery failed",
			"attempt", attempt+1, "error", lastErr)
	}

	slog.Error("notification delivery exhausted all retries", "error", lastErr)
	return lastErr
}

func (n *Notifier) post(ctx context.Context, content string) error {
	body, err := json.Marshal(payload{Content: content})
	if err != nil {
		return fmt.Errorf("notify: marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("notify: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("notify: deliver: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("notify: endpoint returned status %d", resp.StatusCode)
	}
	return nil
}
