// Package ia is the HTTP client for the IA module that answers client
// property queries. The module is opaque: this side only builds the context
// bundle and relays the answer.
package ia

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	domainMessage "github.com/AxelF0/whatsapp-system/domains/message"
	pkgError "github.com/AxelF0/whatsapp-system/pkg/error"
)

type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient builds a client with a generous timeout; the IA module may do
// retrieval work before answering.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// QueryMessage is the original client message forwarded for answering.
type QueryMessage struct {
	ID        string    `json:"id"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	Body      string    `json:"body"`
	Timestamp time.Time `json:"timestamp"`
}

// ClientContext carries what is known about the asking client.
type ClientContext struct {
	Phone               string   `json:"phone"`
	ConversationHistory []string `json:"conversationHistory"`
}

// AgentContext identifies the staff member the client wrote to; the IA
// answers on that agent's behalf.
type AgentContext struct {
	Phone string `json:"phone"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

type QueryContext struct {
	Client          ClientContext                 `json:"client"`
	Agent           AgentContext                  `json:"agent"`
	MessageAnalysis domainMessage.ContentAnalysis `json:"messageAnalysis"`
}

type QueryRequest struct {
	Message QueryMessage `json:"message"`
	Context QueryContext `json:"context"`
}

type SuggestedProperty struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type QueryResponse struct {
	Success  bool `json:"success"`
	Response struct {
		Message             string              `json:"message"`
		RequiresFiles       bool                `json:"requiresFiles"`
		SuggestedProperties []SuggestedProperty `json:"suggestedProperties,omitempty"`
	} `json:"response"`
}

// Query forwards a client question with its context bundle.
func (c *Client) Query(ctx context.Context, request QueryRequest) (QueryResponse, error) {
	var out QueryResponse

	payload, err := json.Marshal(request)
	if err != nil {
		return out, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/query", bytes.NewReader(payload))
	if err != nil {
		return out, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Source", "processing-module")

	resp, err := c.http.Do(req)
	if err != nil {
		return out, pkgError.CollaboratorError("ia: " + err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return out, pkgError.CollaboratorError(fmt.Sprintf("ia: status %d", resp.StatusCode))
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return out, pkgError.CollaboratorError("ia: decoding response: " + err.Error())
	}
	if !out.Success {
		return out, pkgError.CollaboratorError("ia: module reported a failed answer")
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
		return pkgError.CollaboratorError("ia: " + err.Error())
	}
	defer resp.Body.Close()

	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return pkgError.CollaboratorError("ia: decoding health: " + err.Error())
	}
	if body.Status != "healthy" {
		return pkgError.CollaboratorError("ia: reported status " + body.Status)
	}
	return nil
}
