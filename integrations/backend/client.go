// Package backend is the HTTP client for the backend module that executes
// parsed staff commands against the business data.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	domainCommand "github.com/AxelF0/whatsapp-system/domains/command"
	pkgError "github.com/AxelF0/whatsapp-system/pkg/error"
)

type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// CommandUser identifies who issued the command; the backend re-checks
// nothing, permission enforcement already happened here.
type CommandUser struct {
	Phone string `json:"phone"`
	Name  string `json:"name"`
	Role  string `json:"role"`
	ID    int    `json:"id"`
}

type CommandRequest struct {
	Command domainCommand.Command `json:"command"`
	User    CommandUser           `json:"user"`
}

// CommandResult is the structured backend answer the router turns into a
// human-readable reply.
type CommandResult struct {
	Success bool            `json:"success"`
	Action  string          `json:"action"`
	Message string          `json:"message"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Execute forwards a structured command for execution.
func (c *Client) Execute(ctx context.Context, request CommandRequest) (CommandResult, error) {
	var out CommandResult

	payload, err := json.Marshal(request)
	if err != nil {
		return out, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/command", bytes.NewReader(payload))
	if err != nil {
		return out, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Source", "processing-module")

	resp, err := c.http.Do(req)
	if err != nil {
		return out, pkgError.CollaboratorError("backend: " + err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return out, pkgError.CollaboratorError(fmt.Sprintf("backend: status %d", resp.StatusCode))
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return out, pkgError.CollaboratorError("backend: decoding response: " + err.Error())
	}
	return out, nil
}

// Health pings the module health endpoint.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return pkgError.CollaboratorError("backend: " + err.Error())
	}
	defer resp.Body.Close()

	var body struct {
		Success bool `json:"success"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return pkgError.CollaboratorError("backend: decoding health: " + err.Error())
	}
	if !body.Success {
		return pkgError.CollaboratorError("backend: reported unhealthy state")
	}
	return nil
}
