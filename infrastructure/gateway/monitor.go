package gateway

import (
	"context"
	"sync"
	"time"

	domainHealth "github.com/AxelF0/whatsapp-system/domains/health"
	"github.com/sirupsen/logrus"
)

// Monitor pings every registered module on a fixed interval so the
// connector's snapshot stays fresh between explicit checks.
type Monitor struct {
	connector *Connector
	interval  time.Duration
	stop      chan struct{}
	done      chan struct{}
	stopOnce  sync.Once
}

func NewMonitor(connector *Connector, interval time.Duration) *Monitor {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Monitor{
		connector: connector,
		interval:  interval,
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// Start launches the loop. It pings once immediately so the snapshot is
// never all-unknown after boot.
func (m *Monitor) Start(ctx context.Context) {
	go m.loop(ctx)
}

func (m *Monitor) loop(ctx context.Context) {
	defer close(m.done)

	m.sweep(ctx)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.sweep(ctx)
		case <-m.stop:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (m *Monitor) sweep(ctx context.Context) {
	records := m.connector.PingAll(ctx)
	unhealthy := 0
	for _, record := range records {
		if record.Status == domainHealth.StatusUnhealthy {
			unhealthy++
		}
	}
	if unhealthy > 0 {
		logrus.Warnf("[GATEWAY] %d de %d módulos sin respuesta", unhealthy, len(records))
	} else {
		logrus.Debugf("[GATEWAY] %d módulos saludables", len(records))
	}
}

// Stop halts the loop and waits for it to finish. Safe to call more than
// once.
func (m *Monitor) Stop() {
	m.stopOnce.Do(func() {
		close(m.stop)
		<-m.done
	})
}
