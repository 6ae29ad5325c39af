// Package responses is the HTTP client for the respuestas module, the only
// component allowed to talk back to WhatsApp. Delivery retries a small fixed
// number of times before the transport is declared unavailable.
package responses

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	domainMessage "github.com/AxelF0/whatsapp-system/domains/message"
	pkgError "github.com/AxelF0/whatsapp-system/pkg/error"
	"github.com/sirupsen/logrus"
)

type Client struct {
	baseURL    string
	http       *http.Client
	maxRetries int
	backoff    time.Duration
}

func NewClient(baseURL string, timeout time.Duration, maxRetries int, backoff time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if maxRetries <= 0 {
		maxRetries = 2
	}
	if backoff <= 0 {
		backoff = 500 * time.Millisecond
	}
	return &Client{
		baseURL:    baseURL,
		http:       &http.Client{Timeout: timeout},
		maxRetries: maxRetries,
		backoff:    backoff,
	}
}

// SendSystem delivers a reply to a staff member (system conversation).
func (c *Client) SendSystem(ctx context.Context, reply domainMessage.Reply) error {
	return c.sendWithRetry(ctx, "/api/send/system", reply)
}

// SendToClient delivers a reply to an external client on behalf of the agent
// they wrote to.
func (c *Client) SendToClient(ctx context.Context, reply domainMessage.Reply) error {
	return c.sendWithRetry(ctx, "/api/send/client", reply)
}

func (c *Client) sendWithRetry(ctx context.Context, path string, reply domainMessage.Reply) error {
	var lastErr error

	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		if err := c.send(ctx, path, reply); err != nil {
			lastErr = err
			logrus.WithError(err).Warnf("[RESPONSES] delivery attempt %d/%d failed", attempt, c.maxRetries)

			if attempt < c.maxRetries {
				select {
				case <-time.After(c.backoff):
				case <-ctx.Done():
					return pkgError.CollaboratorError("responses: " + ctx.Err().Error())
				}
			}
			continue
		}
		return nil
	}

	return pkgError.CollaboratorError(fmt.Sprintf("responses: delivery failed after %d attempts: %v", c.maxRetries, lastErr))
}

func (c *Client) send(ctx context.Context, path string, reply domainMessage.Reply) error {
	payload, err := json.Marshal(reply)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Source", "processing-module")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	return nil
}

// Health pings the module health endpoint.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return pkgError.CollaboratorError("responses: " + err.Error())
	}
	defer resp.Body.Close()

	var body struct {
		Success bool `json:"success"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return pkgError.CollaboratorError("responses: decoding health: " + err.Error())
	}
	if !body.Success {
		return pkgError.CollaboratorError("responses: reported unhealthy state")
	}
	return nil
}
