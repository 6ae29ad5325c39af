// Package gateway keeps track of the collaborator modules this service
// fronts: who they are, whether they answer, and forwarding traffic to the
// healthy ones.
package gateway

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	domainHealth "github.com/AxelF0/whatsapp-system/domains/health"
	pkgError "github.com/AxelF0/whatsapp-system/pkg/error"
	"github.com/sirupsen/logrus"
)

// Pingable is what a registered module must expose for liveness checks.
// Every integrations client satisfies it.
type Pingable interface {
	Health(ctx context.Context) error
}

type module struct {
	name    string
	baseURL string
	client  Pingable

	mu           sync.RWMutex
	status       domainHealth.ModuleStatus
	lastCheck    time.Time
	responseTime time.Duration
}

// Connector is the registry of collaborator modules.
type Connector struct {
	mu      sync.RWMutex
	modules map[string]*module
	order   []string
	timeout time.Duration
	http    *http.Client
}

func NewConnector(timeout time.Duration) *Connector {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Connector{
		modules: make(map[string]*module),
		timeout: timeout,
		http:    &http.Client{Timeout: timeout},
	}
}

// Register adds a module under a stable name. Registering the same name
// twice replaces the previous entry.
func (c *Connector) Register(name, baseURL string, client Pingable) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.modules[name]; !exists {
		c.order = append(c.order, name)
	}
	c.modules[name] = &module{
		name:    name,
		baseURL: baseURL,
		client:  client,
		status:  domainHealth.StatusUnknown,
	}
	logrus.Infof("[GATEWAY] módulo registrado: %s (%s)", name, baseURL)
}

// Ping checks one module now and records the result.
func (c *Connector) Ping(ctx context.Context, name string) domainHealth.ModuleRecord {
	c.mu.RLock()
	mod, ok := c.modules[name]
	c.mu.RUnlock()
	if !ok {
		return domainHealth.ModuleRecord{Name: name, Status: domainHealth.StatusUnknown}
	}
	return mod.ping(ctx, c.timeout)
}

// PingAll checks every registered module concurrently and returns the
// records in registration order.
func (c *Connector) PingAll(ctx context.Context) []domainHealth.ModuleRecord {
	c.mu.RLock()
	names := make([]string, len(c.order))
	copy(names, c.order)
	c.mu.RUnlock()

	records := make([]domainHealth.ModuleRecord, len(names))

	var wg sync.WaitGroup
	for i, name := range names {
		wg.Add(1)
		go func(i int, name string) {
			defer wg.Done()
			records[i] = c.Ping(ctx, name)
		}(i, name)
	}
	wg.Wait()

	return records
}

// Snapshot returns the last known state without touching the network.
func (c *Connector) Snapshot() []domainHealth.ModuleRecord {
	c.mu.RLock()
	defer c.mu.RUnlock()

	records := make([]domainHealth.ModuleRecord, 0, len(c.order))
	for _, name := range c.order {
		records = append(records, c.modules[name].record())
	}
	return records
}

// Forward relays a raw HTTP request to a registered module, refusing when
// the last check marked it unhealthy. Callers that need richer typed calls
// use the integrations clients directly; Forward exists for the passthrough
// endpoint.
func (c *Connector) Forward(ctx context.Context, name, method, path string, body []byte, header http.Header) (*http.Response, error) {
	c.mu.RLock()
	mod, ok := c.modules[name]
	c.mu.RUnlock()
	if !ok {
		return nil, pkgError.NotFoundError(fmt.Sprintf("módulo no registrado: %s", name))
	}

	mod.mu.RLock()
	status := mod.status
	mod.mu.RUnlock()
	if status == domainHealth.StatusUnhealthy {
		return nil, pkgError.CollaboratorError(fmt.Sprintf("módulo %s marcado como no disponible", name))
	}

	req, err := http.NewRequestWithContext(ctx, method, mod.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	for key, values := range header {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}
	req.Header.Set("X-Source", "gateway")

	resp, err := c.http.Do(req)
	if err != nil {
		mod.markUnhealthy()
		return nil, pkgError.CollaboratorError(fmt.Sprintf("reenvío a %s falló: %v", name, err))
	}
	return resp, nil
}

func (m *module) ping(ctx context.Context, timeout time.Duration) domainHealth.ModuleRecord {
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	started := time.Now()
	err := m.client.Health(pingCtx)
	elapsed := time.Since(started)

	m.mu.Lock()
	m.lastCheck = time.Now()
	m.responseTime = elapsed
	if err != nil {
		if m.status != domainHealth.StatusUnhealthy {
			logrus.Warnf("[GATEWAY] módulo %s no responde: %v", m.name, err)
		}
		m.status = domainHealth.StatusUnhealthy
	} else {
		if m.status == domainHealth.StatusUnhealthy {
			logrus.Infof("[GATEWAY] módulo %s recuperado", m.name)
		}
		m.status = domainHealth.StatusHealthy
	}
	record := m.recordLocked()
	m.mu.Unlock()

	return record
}

func (m *module) markUnhealthy() {
	m.mu.Lock()
	m.status = domainHealth.StatusUnhealthy
	m.lastCheck = time.Now()
	m.mu.Unlock()
}

func (m *module) record() domainHealth.ModuleRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.recordLocked()
}

func (m *module) recordLocked() domainHealth.ModuleRecord {
	record := domainHealth.ModuleRecord{
		Name:      m.name,
		BaseURL:   m.baseURL,
		Status:    m.status,
		LastCheck: m.lastCheck,
	}
	if m.responseTime > 0 {
		record.ResponseTime = m.responseTime.Round(time.Millisecond).String()
	}
	return record
}
