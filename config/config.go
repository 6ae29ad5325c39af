package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration in a structured way.
type Config struct {
	App        AppConfig
	Services   ServicesConfig
	Phone      PhoneConfig
	Cache      CacheConfig
	Timeouts   TimeoutsConfig
	WorkerPool WorkerPoolConfig
}

type AppConfig struct {
	Version     string
	Port        string
	Debug       bool
	Environment string
	// SystemNumber is the phone bound to the official Business API; staff
	// commands arrive addressed to it.
	SystemNumber string
	// WebhookVerifyToken answers the Business API subscription handshake.
	WebhookVerifyToken string
}

// ServicesConfig carries the base URLs of the collaborator modules.
type ServicesConfig struct {
	DatabaseURL  string
	BackendURL   string
	IAURL        string
	ResponsesURL string
}

// PhoneConfig drives number normalization. The country code is configuration,
// not a literal: deployments outside Bolivia only change these values.
type PhoneConfig struct {
	CountryCode     string
	LocalDigits     int
	TransportSuffix string
}

type CacheConfig struct {
	TTL           time.Duration
	SweepInterval time.Duration
}

type TimeoutsConfig struct {
	Identity     time.Duration
	Backend      time.Duration
	IA           time.Duration
	Gateway      time.Duration
	SendRetries  int
	RetryBackoff time.Duration
}

type WorkerPoolConfig struct {
	Size      int
	QueueSize int
}

// Global provides access to the loaded configuration globally.
var Global *Config

// LoadConfig builds the configuration from environment variables (already
// merged into viper by utils.LoadEnv) with sane defaults for local runs.
func LoadConfig() (*Config, error) {
	viper.SetDefault("app_port", "3001")
	viper.SetDefault("app_env", "development")
	viper.SetDefault("system_whatsapp_number", "59171337051")
	viper.SetDefault("webhook_verify_token", "realestate-verify")
	viper.SetDefault("database_url", "http://localhost:3006")
	viper.SetDefault("backend_url", "http://localhost:3004")
	viper.SetDefault("ia_url", "http://localhost:3007")
	viper.SetDefault("responses_url", "http://localhost:3005")
	viper.SetDefault("phone_country_code", "591")
	viper.SetDefault("phone_local_digits", 8)
	viper.SetDefault("cache_ttl_minutes", 8)
	viper.SetDefault("cache_sweep_minutes", 10)
	viper.SetDefault("timeout_identity_seconds", 5)
	viper.SetDefault("timeout_backend_seconds", 15)
	viper.SetDefault("timeout_ia_seconds", 30)
	viper.SetDefault("timeout_gateway_seconds", 10)
	viper.SetDefault("send_max_retries", 2)
	viper.SetDefault("send_retry_backoff_ms", 500)
	viper.SetDefault("worker_pool_size", 20)
	viper.SetDefault("worker_queue_size", 1000)

	debug := viper.GetBool("app_debug")
	if v := strings.ToLower(viper.GetString("debug")); v == "true" || v == "1" {
		debug = true
	}

	cfg := &Config{
		App: AppConfig{
			Version:            "v1.2.0",
			Port:               viper.GetString("app_port"),
			Debug:              debug,
			Environment:        viper.GetString("app_env"),
			SystemNumber:       viper.GetString("system_whatsapp_number"),
			WebhookVerifyToken: viper.GetString("webhook_verify_token"),
		},
		Services: ServicesConfig{
			DatabaseURL:  strings.TrimRight(viper.GetString("database_url"), "/"),
			BackendURL:   strings.TrimRight(viper.GetString("backend_url"), "/"),
			IAURL:        strings.TrimRight(viper.GetString("ia_url"), "/"),
			ResponsesURL: strings.TrimRight(viper.GetString("responses_url"), "/"),
		},
		Phone: PhoneConfig{
			CountryCode:     viper.GetString("phone_country_code"),
			LocalDigits:     viper.GetInt("phone_local_digits"),
			TransportSuffix: "@c.us",
		},
		Cache: CacheConfig{
			TTL:           time.Duration(viper.GetInt("cache_ttl_minutes")) * time.Minute,
			SweepInterval: time.Duration(viper.GetInt("cache_sweep_minutes")) * time.Minute,
		},
		Timeouts: TimeoutsConfig{
			Identity:     time.Duration(viper.GetInt("timeout_identity_seconds")) * time.Second,
			Backend:      time.Duration(viper.GetInt("timeout_backend_seconds")) * time.Second,
			IA:           time.Duration(viper.GetInt("timeout_ia_seconds")) * time.Second,
			Gateway:      time.Duration(viper.GetInt("timeout_gateway_seconds")) * time.Second,
			SendRetries:  viper.GetInt("send_max_retries"),
			RetryBackoff: time.Duration(viper.GetInt("send_retry_backoff_ms")) * time.Millisecond,
		},
		WorkerPool: WorkerPoolConfig{
			Size:      viper.GetInt("worker_pool_size"),
			QueueSize: viper.GetInt("worker_queue_size"),
		},
	}

	Global = cfg
	return cfg, nil
}
