// Package database is the HTTP client for the base-de-datos module. The
// module owns every table; this service only consumes its request/response
// contracts.
package database

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	domainIdentity "github.com/AxelF0/whatsapp-system/domains/identity"
	pkgError "github.com/AxelF0/whatsapp-system/pkg/error"
)

const sourceHeader = "processing-module"

type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient builds a client bound to the database module base URL. The
// timeout is short (identity checks sit on the conversational path).
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// UserValidation is the direct lookup answer for a normalized phone.
type UserValidation struct {
	Valid bool                     `json:"valid"`
	Data  *domainIdentity.Identity `json:"data,omitempty"`
}

// SessionValidation is the session-based lookup answer. Validating may create
// a session as a side effect inside the database module; callers treat that
// as opaque and idempotent.
type SessionValidation struct {
	Success bool `json:"success"`
	Data    struct {
		Valid     bool                     `json:"valid"`
		User      *domainIdentity.Identity `json:"user,omitempty"`
		FromCache bool                     `json:"fromCache"`
		Session   *struct {
			ID string `json:"_id"`
		} `json:"session,omitempty"`
	} `json:"data"`
}

// ClientRecord is the minimal upsert payload for an external client.
type ClientRecord struct {
	Telefono     string `json:"telefono"`
	Nombre       string `json:"nombre"`
	Apellido     string `json:"apellido"`
	Preferencias string `json:"preferencias"`
	Email        string `json:"email"`
	Estado       int    `json:"estado"`
}

// HistoryMessage is one stored message of a client/agent conversation.
type HistoryMessage struct {
	From      string    `json:"from"`
	Body      string    `json:"body"`
	Timestamp time.Time `json:"timestamp"`
}

type Conversation struct {
	Messages []HistoryMessage `json:"messages"`
}

// ValidateUser performs the direct (fallback) staff lookup.
func (c *Client) ValidateUser(ctx context.Context, phone string) (UserValidation, error) {
	var out UserValidation
	err := c.get(ctx, "/api/users/validate/"+url.PathEscape(phone), &out)
	return out, err
}

// ValidateSession performs the session-based staff lookup.
func (c *Client) ValidateSession(ctx context.Context, phone string) (SessionValidation, error) {
	var out SessionValidation
	err := c.post(ctx, "/api/sessions/validate", map[string]string{"phoneNumber": phone}, &out)
	return out, err
}

// UpsertClient creates or refreshes the minimal client record derived from an
// inbound query.
func (c *Client) UpsertClient(ctx context.Context, record ClientRecord) error {
	return c.post(ctx, "/api/clients", record, nil)
}

// ConversationHistory fetches the stored exchange between a client and an
// agent, used as AI context.
func (c *Client) ConversationHistory(ctx context.Context, clientPhone, agentPhone string) (*Conversation, error) {
	var out struct {
		Success bool          `json:"success"`
		Data    *Conversation `json:"data"`
	}
	path := fmt.Sprintf("/api/conversations/%s/%s", url.PathEscape(clientPhone), url.PathEscape(agentPhone))
	if err := c.get(ctx, path, &out); err != nil {
		return nil, err
	}
	if !out.Success {
		return nil, nil
	}
	return out.Data, nil
}

// AgentInfo resolves the agent a client is writing to; absence is not an
// error, the AI context just loses the agent name.
func (c *Client) AgentInfo(ctx context.Context, phone string) (*domainIdentity.Identity, error) {
	validation, err := c.ValidateUser(ctx, phone)
	if err != nil {
		return nil, err
	}
	if !validation.Valid {
		return nil, nil
	}
	return validation.Data, nil
}

// Health pings the module health endpoint.
func (c *Client) Health(ctx context.Context) error {
	var out struct {
		Success bool `json:"success"`
	}
	if err := c.get(ctx, "/api/health", &out); err != nil {
		return err
	}
	if !out.Success {
		return pkgError.CollaboratorError("database: reported unhealthy state")
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("X-Source", sourceHeader)
	return c.do(req, out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Source", sourceHeader)
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return pkgError.CollaboratorError("database: " + err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return pkgError.CollaboratorError(fmt.Sprintf("database: status %d", resp.StatusCode))
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return pkgError.CollaboratorError("database: decoding response: " + err.Error())
	}
	return nil
}
