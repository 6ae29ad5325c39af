package usecase

import (
	"context"
	"time"

	domainHealth "github.com/AxelF0/whatsapp-system/domains/health"
	"github.com/AxelF0/whatsapp-system/infrastructure/gateway"
	"github.com/dustin/go-humanize"
)

type healthService struct {
	service   string
	version   string
	startedAt time.Time
	connector *gateway.Connector
}

func NewHealthService(service, version string, connector *gateway.Connector) domainHealth.IHealthUsecase {
	return &healthService{
		service:   service,
		version:   version,
		startedAt: time.Now(),
		connector: connector,
	}
}

// Status reports from the monitor's last snapshot; it does not ping.
func (s *healthService) Status(ctx context.Context) domainHealth.Summary {
	return domainHealth.Summary{
		Service: s.service,
		Version: s.version,
		Uptime:  humanize.RelTime(s.startedAt, time.Now(), "", ""),
		Modules: s.connector.Snapshot(),
	}
}

func (s *healthService) CheckAll(ctx context.Context) []domainHealth.ModuleRecord {
	return s.connector.PingAll(ctx)
}
