// Package webhook delivers parsed conversation reports to HTTP endpoints.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ccollicutt/chatlog/pkg/config"
	"github.com/ccollicutt/chatlog/pkg/output"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 10 * time.Second

// Event names carried in the payload envelope.
const (
	EventParsed = "conversation.parsed"
	EventEmpty  = "conversation.empty"
)

// Payload is the JSON body posted to a webhook.
type Payload struct {
	Event  string         `json:"event"`
	SentAt time.Time      `json:"sent_at"`
	Report *output.Report `json:"report"`
}

// Client sends reports to webhook endpoints.
type Client struct {
	httpClient *http.Client
	log        *logrus.Logger
}

// NewClient creates a webhook client that logs delivery results to log.
func NewClient(log *logrus.Logger) *Client {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Client{
		httpClient: &http.Client{},
		log:        log,
	}
}

// SendOptions configures a webhook request.
type SendOptions struct {
	URL     string
	Token   string        // Bearer token (optional)
	Timeout time.Duration // Request timeout (uses DefaultTimeout if zero)
}

// Response contains the result of a webhook request.
type Response struct {
	StatusCode int
	Body       string
	Duration   time.Duration
	Error      error
}

// Success returns true if the webhook was sent successfully (2xx status).
func (r *Response) Success() bool {
	return r.Error == nil && r.StatusCode >= 200 && r.StatusCode < 300
}

// Send posts a report to a single endpoint.
func (c *Client) Send(ctx context.Context, report *output.Report, opts SendOptions) *Response {
	start := time.Now()
	resp := &Response{}
	fail := func(format string, err error) *Response {
		resp.Error = fmt.Errorf(format, err)
		resp.Duration = time.Since(start)
		return resp
	}

	event := EventParsed
	if !report.HasMessages() {
		event = EventEmpty
	}
	body, err := json.Marshal(Payload{Event: event, SentAt: start.UTC(), Report: report})
	if err != nil {
		return fail("marshaling payload: %w", err)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, opts.URL, bytes.NewReader(body))
	if err != nil {
		return fail("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "chatlog-webhook")
	if opts.Token != "" {
		req.Header.Set("Authorization", "Bearer "+opts.Token)
	}

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return fail("request failed: %w", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(httpResp.Body, 1<<20))
	if err != nil {
		return fail("reading response: %w", err)
	}

	resp.StatusCode = httpResp.StatusCode
	resp.Body = string(respBody)
	resp.Duration = time.Since(start)
	if resp.StatusCode >= 400 {
		resp.Error = fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	return resp
}

// Deliver sends report to every hook whose trigger matches. Failures are
// logged and do not stop delivery to the remaining hooks. It returns the
// number of successful deliveries.
func (c *Client) Deliver(ctx context.Context, hooks []config.WebhookConfig, report *output.Report) int {
	sent := 0
	for _, wh := range hooks {
		if !ShouldFire(wh.Trigger, report.HasMessages()) {
			continue
		}

		resp := c.Send(ctx, report, SendOptions{URL: wh.URL, Token: wh.Token, Timeout: wh.Timeout})
		entry := c.log.WithFields(logrus.Fields{
			"webhook":  wh.DisplayName(),
			"source":   report.Summary.Source,
			"duration": resp.Duration.Round(time.Millisecond).String(),
		})
		if !resp.Success() {
			entry.WithError(resp.Error).Warn("webhook delivery failed")
			continue
		}
		entry.WithField("status", resp.StatusCode).Info("webhook delivered")
		sent++
	}
	return sent
}

// ShouldFire reports whether a webhook with the given trigger fires.
func ShouldFire(trigger config.WebhookTrigger, hasMessages bool) bool {
	switch trigger {
	case config.WebhookTriggerAlways:
		return true
	case config.WebhookTriggerNever:
		return false
	default:
		return hasMessages
	}
}
