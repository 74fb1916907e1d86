// Package config handles loading and managing Enviroscope configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration for Enviroscope.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Archive  ArchiveConfig  `yaml:"archive"`
	Sources  SourcesConfig  `yaml:"sources"`
	Webhook  WebhookConfig  `yaml:"webhook"`
}

// ServerConfig controls the HTTP service.
type ServerConfig struct {
	Port      string `yaml:"port"`
	APIKey    string `yaml:"api_key"`    // empty disables auth on admin endpoints
	CacheSize int    `yaml:"cache_size"` // LRU entries for upstream payloads
}

// DatabaseConfig controls the Postgres connection.
type DatabaseConfig struct {
	URL string `yaml:"url"`
}

// ArchiveConfig selects the report blob archive backend.
type ArchiveConfig struct {
	Backend     string `yaml:"backend"` // "local", "s3" or "gcs"
	LocalDir    string `yaml:"local_dir"`
	S3Bucket    string `yaml:"s3_bucket"`
	S3Region    string `yaml:"s3_region"`
	S3Endpoint  string `yaml:"s3_endpoint"` // custom endpoint for MinIO-style stores
	S3AccessKey string `yaml:"s3_access_key"`
	S3SecretKey string `yaml:"s3_secret_key"`
	GCSBucket   string `yaml:"gcs_bucket"`
}

// SourcesConfig controls the external data-source clients.
type SourcesConfig struct {
	EPABaseURL        string `yaml:"epa_base_url"`
	CAMPDBaseURL      string `yaml:"campd_base_url"`
	CAMPDAPIKey       string `yaml:"campd_api_key"`
	EIABaseURL        string `yaml:"eia_base_url"`
	EIAAPIKey         string `yaml:"eia_api_key"`
	EIAFallback       bool   `yaml:"eia_fallback"` // consult EIA when CAMPD fails
	EEABaseURL        string `yaml:"eea_base_url"`
	EDGARBaseURL      string `yaml:"edgar_base_url"`
	PollutionTrend    string `yaml:"pollution_trend"` // "auto", "eea" or "edgar"
	TimeoutSeconds    int    `yaml:"timeout_seconds"`
	RenewablesBaseURL string `yaml:"renewables_base_url"`
}

// WebhookConfig controls outbound report notifications.
type WebhookConfig struct {
	URL    string `yaml:"url"` // empty disables notifications
	Secret string `yaml:"secret"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:      "8080",
			CacheSize: 20,
		},
		Database: DatabaseConfig{
			URL: "postgres://localhost:5432/enviroscope?sslmode=disable",
		},
		Archive: ArchiveConfig{
			Backend:  "local",
			LocalDir: "/tmp/enviroscope-data",
		},
		Sources: SourcesConfig{
			EPABaseURL:        "https://data.epa.gov/efservice",
			CAMPDBaseURL:      "https://api.epa.gov/easey",
			EIABaseURL:        "https://api.eia.gov/v2",
			EEABaseURL:        "https://discodata.eea.europa.eu",
			EDGARBaseURL:      "https://edgar.jrc.ec.europa.eu/api",
			RenewablesBaseURL: "https://api.worldbank.org/v2",
			PollutionTrend:    "auto",
			TimeoutSeconds:    10,
		},
	}
}

// Load reads a config file from the given path.
// If the file does not exist, it returns the default config.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// ApplyEnv overrides config values from the environment. Deployment
// settings (port, database, credentials) are env-first; scoring policy is
// never env-tunable.
func (c *Config) ApplyEnv() {
	setIfEnv(&c.Server.Port, "PORT")
	setIfEnv(&c.Server.APIKey, "API_KEY")
	setIfEnv(&c.Database.URL, "DATABASE_URL")
	setIfEnv(&c.Archive.Backend, "ARCHIVE_BACKEND")
	setIfEnv(&c.Archive.LocalDir, "LOCAL_STORAGE_PATH")
	setIfEnv(&c.Archive.S3Bucket, "S3_BUCKET")
	setIfEnv(&c.Archive.S3Region, "S3_REGION")
	setIfEnv(&c.Archive.S3Endpoint, "S3_ENDPOINT")
	setIfEnv(&c.Archive.S3AccessKey, "S3_ACCESS_KEY")
	setIfEnv(&c.Archive.S3SecretKey, "S3_SECRET_KEY")
	setIfEnv(&c.Archive.GCSBucket, "GCS_BUCKET")
	setIfEnv(&c.Sources.CAMPDAPIKey, "CAMPD_API_KEY")
	setIfEnv(&c.Sources.EIAAPIKey, "EIA_API_KEY")
	setIfEnv(&c.Sources.PollutionTrend, "POLLUTION_TREND_SOURCE")
	setIfEnv(&c.Webhook.URL, "WEBHOOK_URL")
	setIfEnv(&c.Webhook.Secret, "WEBHOOK_SECRET")
}

func setIfEnv(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// FindConfigFile looks for .enviroscope/config.yaml in the given directory
// and its parents, returning the path if found, or "" if not.
func FindConfigFile(dir string) string {
	for {
		candidate := filepath.Join(dir, ".enviroscope", "config.yaml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}
