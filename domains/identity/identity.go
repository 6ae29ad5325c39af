package identity

import (
	"context"
	"strings"
	"time"
)

// Identity is a resolved staff record as the database module serves it.
// Field names mirror the wire contract (spanish column names).
type Identity struct {
	ID       int    `json:"id"`
	Nombre   string `json:"nombre"`
	Cargo    string `json:"cargo_nombre"`
	Telefono string `json:"telefono"`
	Estado   int    `json:"estado"`
}

// Role returns the permission-table key for this identity.
func (i Identity) Role() string {
	return strings.ToLower(strings.TrimSpace(i.Cargo))
}

func (i Identity) Active() bool {
	return i.Estado == 1
}

// Validation is the outcome of resolving a phone number to staff. It carries
// no error: transport and database failures fail closed as IsValid=false so
// an ambiguous error can never grant staff access.
type Validation struct {
	IsValid    bool      `json:"isValid"`
	Identity   *Identity `json:"userData,omitempty"`
	FromCache  bool      `json:"fromCache"`
	Method     string    `json:"method"`
	ResolvedAt time.Time `json:"resolvedAt"`
}

const (
	MethodCache   = "cache"
	MethodSession = "session"
	MethodDirect  = "fallback-direct"
	MethodError   = "error"
)

type IIdentityUsecase interface {
	Validate(ctx context.Context, phone string) Validation
	// ValidateMultiple resolves all numbers concurrently; one number failing
	// never aborts the rest.
	ValidateMultiple(ctx context.Context, phones []string) map[string]Validation
	// ValidUsers keeps only the positive results of a batch validation.
	ValidUsers(ctx context.Context, phones []string) map[string]Identity
	// Close stops the cache sweeper. Instances are independent; tests create
	// and tear down their own.
	Close()
}
