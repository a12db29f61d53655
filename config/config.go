// Package config loads the gateway and worker configuration from environment
// variables using struct tags, following the same reflection-driven loader
// used throughout the pack this service was adapted from.
package config

import (
	"fmt"
	"time"
)

// Config is the root configuration for both the gateway and the worker
// binary; each carries only the sub-structs it needs.
type Config struct {
	Server     ServerConfig     `json:"server"`
	Logging    LoggingConfig    `json:"logging"`
	Cache      CacheConfig      `json:"cache"`
	Search     SearchConfig     `json:"search"`
	DocStore   DocStoreConfig   `json:"doc_store"`
	Auth       AuthConfig       `json:"auth"`
	Zarr       ZarrConfig       `json:"zarr"`
	Worker     WorkerConfig     `json:"worker"`
	Services   ServicesConfig   `json:"services"`
	RateLimit  RateLimitConfig  `json:"rate_limit"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Port         int           `json:"port" env:"API_PORT" default:"8080"`
	BaseURL      string        `json:"base_url" env:"API_URL" default:"http://localhost:8080"`
	PathPrefix   string        `json:"path_prefix" env:"API_PATH_PREFIX" default:"/api/freva-nextgen"`
	ConfigFile   string        `json:"config_file" env:"API_CONFIG" default:""`
	ReadTimeout  time.Duration `json:"read_timeout" env:"API_READ_TIMEOUT" default:"30s"`
	WriteTimeout time.Duration `json:"write_timeout" env:"API_WRITE_TIMEOUT" default:"30s"`
	IdleTimeout  time.Duration `json:"idle_timeout" env:"API_IDLE_TIMEOUT" default:"120s"`
}

// RateLimitConfig controls the gateway's per-IP request-rate guard.
type RateLimitConfig struct {
	Enabled          bool          `json:"enabled" env:"DOS_PROTECTION_ENABLED" default:"true"`
	RateLimit        int           `json:"rate_limit" env:"DOS_PROTECTION_RATE_LIMIT" default:"100"`
	BurstLimit       int           `json:"burst_limit" env:"DOS_PROTECTION_BURST_LIMIT" default:"200"`
	WindowSize       time.Duration `json:"window_size" env:"DOS_PROTECTION_WINDOW_SIZE" default:"1m"`
	BlockDuration    time.Duration `json:"block_duration" env:"DOS_PROTECTION_BLOCK_DURATION" default:"5m"`
	WhitelistedPaths []string      `json:"whitelisted_paths" env:"DOS_PROTECTION_WHITELISTED_PATHS" default:"/metrics"`
}

// LoggingConfig controls the slog handler.
type LoggingConfig struct {
	Level       string `json:"level" env:"LOG_LEVEL" default:"INFO"`
	Format      string `json:"format" env:"LOG_FORMAT" default:"json"`
	OTelEnabled bool   `json:"otel_enabled" env:"LOG_OTEL_ENABLED" default:"false"`
}

// CacheConfig describes the shared Redis-compatible cache used by both the
// gateway and the worker (spec §4.4 Cache Protocol).
type CacheConfig struct {
	Host            string        `json:"host" env:"API_REDIS_HOST" default:"localhost:6379"`
	User            string        `json:"user" env:"API_REDIS_USER" default:""`
	Password        string        `json:"password" env:"API_REDIS_PASSWORD" default:""`
	SSLCertFile     string        `json:"ssl_certfile" env:"API_REDIS_SSL_CERTFILE" default:""`
	SSLKeyFile      string        `json:"ssl_keyfile" env:"API_REDIS_SSL_KEYFILE" default:""`
	ExpirySeconds   int           `json:"expiry_seconds" env:"API_CACHE_EXP" default:"3600"`
	ChunkTTL        time.Duration `json:"chunk_ttl" env:"API_CACHE_CHUNK_TTL" default:"360s"`
	PubSubChannel   string        `json:"pubsub_channel" env:"API_CACHE_CHANNEL" default:"data-portal"`
	PollInterval    time.Duration `json:"poll_interval" env:"API_CACHE_POLL_INTERVAL" default:"100ms"`
	StatusTimeout   time.Duration `json:"status_timeout" env:"API_CACHE_STATUS_TIMEOUT" default:"30s"`
}

// SearchConfig selects and configures the query backend (spec §4.1).
type SearchConfig struct {
	Backend      string `json:"backend" env:"SEARCH_BACKEND" default:"solr"`
	SolrHost     string `json:"solr_host" env:"SOLR_HOST" default:"http://localhost:8983"`
	SolrCore     string `json:"solr_core" env:"SOLR_CORE" default:"files"`
	DatabaseURL  string `json:"database_url" env:"SEARCH_DATABASE_URL" default:""`
	EngineURL    string `json:"engine_url" env:"SEARCH_ENGINE_URL" default:""`
	EngineIndex  string `json:"engine_index" env:"SEARCH_ENGINE_INDEX" default:"files"`
	BatchSize    int    `json:"batch_size" env:"SEARCH_BATCH_SIZE" default:"150"`
	MaxResults   int    `json:"max_results" env:"SEARCH_MAX_RESULTS" default:"0"`
}

// DocStoreConfig configures the MongoDB-compatible document store used for
// query statistics, custom flavors, and pre-signed share records.
type DocStoreConfig struct {
	Host     string `json:"host" env:"MONGO_HOST" default:"localhost:27017"`
	User     string `json:"user" env:"MONGO_USER" default:""`
	Password string `json:"password" env:"MONGO_PASSWORD" default:""`
	Database string `json:"database" env:"MONGO_DB" default:"freva_nextgen"`
}

// AuthConfig configures OIDC JWKS validation and claim gating (spec §4.5).
type AuthConfig struct {
	OIDCURL           string        `json:"oidc_url" env:"OIDC_URL" default:""`
	ClientID          string        `json:"client_id" env:"OIDC_CLIENT_ID" default:""`
	DiscoveryTimeout  time.Duration `json:"discovery_timeout" env:"OIDC_DISCOVERY_TIMEOUT" default:"3s"`
	JWKSTimeout       time.Duration `json:"jwks_timeout" env:"OIDC_JWKS_TIMEOUT" default:"5s"`
	JWKSCacheTTL      time.Duration `json:"jwks_cache_ttl" env:"OIDC_JWKS_CACHE_TTL" default:"10m"`
	ExpectedAudience  string        `json:"expected_audience" env:"OIDC_EXPECTED_AUDIENCE" default:"account"`
	PresignSecret     string        `json:"presign_secret" env:"API_SHARE_SECRET" default:""`
	PresignMinTTL     time.Duration `json:"presign_min_ttl" env:"API_SHARE_MIN_TTL" default:"60s"`
	PresignMaxTTL     time.Duration `json:"presign_max_ttl" env:"API_SHARE_MAX_TTL" default:"120h"`
	AdminClaimPath    string        `json:"admin_claim_path" env:"OIDC_ADMIN_CLAIM_PATH" default:"realm_access.roles"`
	AdminClaimValues  []string      `json:"admin_claim_values" env:"OIDC_ADMIN_CLAIM_VALUES" default:"admin"`
}

// ZarrConfig configures the Zarr materialization gateway (spec §4.2).
type ZarrConfig struct {
	ChunkMaxBytes  int `json:"chunk_max_bytes" env:"API_ZARR_CHUNK_MAX_BYTES" default:"16777216"`
}

// WorkerConfig configures the worker pool (spec §4.3).
type WorkerConfig struct {
	MaxThreads   int           `json:"max_threads" env:"API_WORKER" default:"15"`
	DaskPort     int           `json:"dask_port" env:"DASK_PORT" default:"0"`
	DevMode      bool          `json:"dev_mode" env:"API_WORKER_DEV_MODE" default:"false"`
	OpenTimeout  time.Duration `json:"open_timeout" env:"API_WORKER_OPEN_TIMEOUT" default:"60s"`
}

// ServicesConfig lists which optional services are enabled (spec §6 API_SERVICES).
type ServicesConfig struct {
	Enabled []string `json:"enabled" env:"API_SERVICES" default:"zarr-stream,stacapi"`
}

// NewConfig loads configuration from the environment, applying defaults and
// validating the result.
func NewConfig() (*Config, error) {
	cfg := &Config{}
	if err := loadFromEnvironment(cfg); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// HasService reports whether the named optional service is enabled via
// API_SERVICES (e.g. "zarr-stream", "stacapi").
func (c *Config) HasService(name string) bool {
	for _, s := range c.Services.Enabled {
		if s == name {
			return true
		}
	}
	return false
}
