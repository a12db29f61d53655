package config

import "fmt"

// validateConfig applies the minimal sanity checks the gateway and worker
// need before wiring dependencies; it does not attempt to reach any of the
// configured backends.
func validateConfig(cfg *Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server port out of range: %d", cfg.Server.Port)
	}

	switch cfg.Search.Backend {
	case "solr", "rdbms", "search-engine":
	default:
		return fmt.Errorf("unknown search backend %q", cfg.Search.Backend)
	}
	if cfg.Search.Backend == "solr" && cfg.Search.SolrHost == "" {
		return fmt.Errorf("solr backend selected but SOLR_HOST is empty")
	}
	if cfg.Search.Backend == "rdbms" && cfg.Search.DatabaseURL == "" {
		return fmt.Errorf("rdbms backend selected but SEARCH_DATABASE_URL is empty")
	}
	if cfg.Search.Backend == "search-engine" && cfg.Search.EngineURL == "" {
		return fmt.Errorf("search-engine backend selected but SEARCH_ENGINE_URL is empty")
	}

	if cfg.Cache.ExpirySeconds <= 0 {
		return fmt.Errorf("cache expiry must be positive, got %d", cfg.Cache.ExpirySeconds)
	}
	if cfg.Cache.Host == "" {
		return fmt.Errorf("cache host must not be empty")
	}

	if cfg.Auth.PresignMinTTL <= 0 || cfg.Auth.PresignMaxTTL <= 0 {
		return fmt.Errorf("presign TTL bounds must be positive")
	}
	if cfg.Auth.PresignMinTTL > cfg.Auth.PresignMaxTTL {
		return fmt.Errorf("presign min TTL (%s) exceeds max TTL (%s)", cfg.Auth.PresignMinTTL, cfg.Auth.PresignMaxTTL)
	}

	if cfg.Worker.MaxThreads <= 0 {
		return fmt.Errorf("worker max threads must be positive, got %d", cfg.Worker.MaxThreads)
	}

	return nil
}
