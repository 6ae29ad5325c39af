package health

import (
	"context"
	"time"
)

type ModuleStatus string

const (
	StatusUnknown   ModuleStatus = "unknown"
	StatusHealthy   ModuleStatus = "healthy"
	StatusUnhealthy ModuleStatus = "unhealthy"
)

// ModuleRecord is the last known state of one registered collaborator module.
type ModuleRecord struct {
	Name         string       `json:"name"`
	BaseURL      string       `json:"base_url"`
	Status       ModuleStatus `json:"status"`
	LastCheck    time.Time    `json:"last_check"`
	ResponseTime string       `json:"response_time,omitempty"`
}

// Summary is the service-level health answer plus per-module detail.
type Summary struct {
	Service string         `json:"service"`
	Version string         `json:"version"`
	Uptime  string         `json:"uptime"`
	Modules []ModuleRecord `json:"modules"`
}

type IHealthUsecase interface {
	Status(ctx context.Context) Summary
	// CheckAll pings every registered module now instead of waiting for the
	// monitor interval.
	CheckAll(ctx context.Context) []ModuleRecord
}
