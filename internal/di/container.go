// Package di wires the concrete dependencies used by cmd/gateway and
// cmd/worker, following the teacher's ApplicationComponents constructor
// pattern (di/container.go: one function that dials every backend, builds
// every usecase, and returns a single struct the entrypoint reads fields
// off of) adapted to this service's cache/search/doc-store/auth stack.
package di

import (
	"context"
	"fmt"
	"time"

	"github.com/freva-org/freva-nextgen-sub000/config"
	"github.com/freva-org/freva-nextgen-sub000/internal/auth"
	"github.com/freva-org/freva-nextgen-sub000/internal/cache"
	"github.com/freva-org/freva-nextgen-sub000/internal/databrowser"
	"github.com/freva-org/freva-nextgen-sub000/internal/docstore"
	"github.com/freva-org/freva-nextgen-sub000/internal/metrics"
	"github.com/freva-org/freva-nextgen-sub000/internal/searchindex"
	"github.com/freva-org/freva-nextgen-sub000/internal/searchindex/rdbms"
	"github.com/freva-org/freva-nextgen-sub000/internal/searchindex/searchengine"
	"github.com/freva-org/freva-nextgen-sub000/internal/searchindex/solr"
	"github.com/freva-org/freva-nextgen-sub000/internal/stats"
	"github.com/freva-org/freva-nextgen-sub000/internal/translate"
	"github.com/freva-org/freva-nextgen-sub000/internal/userdata"
	"github.com/freva-org/freva-nextgen-sub000/internal/worker/engine"
	"github.com/freva-org/freva-nextgen-sub000/internal/worker/zarrcodec"
	"github.com/freva-org/freva-nextgen-sub000/internal/zarrgw"
	"github.com/jackc/pgx/v5/pgxpool"
)

// GatewayComponents holds every dependency cmd/gateway needs to register
// its routes.
type GatewayComponents struct {
	Config *config.Config

	Cache    *cache.Client
	DocStore *docstore.Client

	SearchBackend searchindex.Backend
	Resolver      *translate.Resolver

	Databrowser *databrowser.Service
	UserData    *userdata.Service
	Stats       *stats.Service

	Zarr         *zarrgw.Gateway
	ZarrHandlers *zarrgw.Handlers

	JWKS *auth.JWKSVerifier

	Metrics *metrics.Gateway

	AdminGate auth.ClaimGate

	rdbmsPool *pgxpool.Pool
}

// NewGatewayComponents dials the cache, document store, and selected search
// backend, then wires every service the gateway's routes depend on.
func NewGatewayComponents(ctx context.Context, cfg *config.Config) (*GatewayComponents, error) {
	cacheClient, err := cache.NewClient(cache.Options{
		Addr:          cfg.Cache.Host,
		User:          cfg.Cache.User,
		Password:      cfg.Cache.Password,
		SSLCertFile:   cfg.Cache.SSLCertFile,
		SSLKeyFile:    cfg.Cache.SSLKeyFile,
		DefaultExpiry: time.Duration(cfg.Cache.ExpirySeconds) * time.Second,
		ChunkTTL:      cfg.Cache.ChunkTTL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to cache: %w", err)
	}

	docClient, err := docstore.Connect(ctx, docstore.Options{
		Host:     cfg.DocStore.Host,
		User:     cfg.DocStore.User,
		Password: cfg.DocStore.Password,
		Database: cfg.DocStore.Database,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to document store: %w", err)
	}

	backend, rdbmsPool, err := newSearchBackend(ctx, cfg)
	if err != nil {
		return nil, err
	}

	resolver := translate.NewResolver(docClient)

	jwks := auth.NewJWKSVerifier(cfg.Auth.OIDCURL, cfg.Auth.DiscoveryTimeout, cfg.Auth.JWKSTimeout, cfg.Auth.JWKSCacheTTL)
	adminGate := auth.ClaimGate{cfg.Auth.AdminClaimPath: cfg.Auth.AdminClaimValues}

	zarrGateway := zarrgw.New(cacheClient, zarrgw.Options{
		StatusTimeout: cfg.Cache.StatusTimeout,
		PollInterval:  cfg.Cache.PollInterval,
		BaseURL:       cfg.Server.BaseURL,
		PathPrefix:    cfg.Server.PathPrefix,
	})

	return &GatewayComponents{
		Config:        cfg,
		Cache:         cacheClient,
		DocStore:      docClient,
		SearchBackend: backend,
		Resolver:      resolver,
		Databrowser:   databrowser.New(backend),
		UserData:      userdata.New(backend, docClient),
		Stats:         stats.New(docClient, docClient),
		Zarr:          zarrGateway,
		ZarrHandlers:  zarrgw.NewHandlers(zarrGateway),
		JWKS:          jwks,
		Metrics:       metrics.NewGateway(),
		AdminGate:     adminGate,
		rdbmsPool:     rdbmsPool,
	}, nil
}

// Close releases every pooled connection the gateway holds.
func (g *GatewayComponents) Close() {
	if g.rdbmsPool != nil {
		g.rdbmsPool.Close()
	}
	_ = g.DocStore.Close(context.Background())
	_ = g.Cache.Close()
}

// newSearchBackend selects and connects the configured search backend
// (spec §4.1 "Class polymorphism").
func newSearchBackend(ctx context.Context, cfg *config.Config) (searchindex.Backend, *pgxpool.Pool, error) {
	switch cfg.Search.Backend {
	case "solr":
		return solr.New(cfg.Search.SolrHost, cfg.Search.SolrCore, cfg.Cache.StatusTimeout), nil, nil
	case "rdbms":
		pool, err := rdbms.Connect(ctx, cfg.Search.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to rdbms search backend: %w", err)
		}
		return rdbms.New(pool, "files"), pool, nil
	case "search-engine":
		return searchengine.New(cfg.Search.EngineURL, cfg.Search.EngineIndex, cfg.Cache.StatusTimeout), nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown search backend %q", cfg.Search.Backend)
	}
}

// WorkerComponents holds every dependency cmd/worker needs.
type WorkerComponents struct {
	Config *config.Config

	Cache   *cache.Client
	Opener  engine.EngineOpener
	Metrics *metrics.Worker
}

// NewWorkerComponents dials the shared cache and builds the worker's
// dataset-opening engine. The worker never talks to the search backend or
// document store (spec §4.3 "shares no state with the gateway beyond cache
// entries").
func NewWorkerComponents(cfg *config.Config) (*WorkerComponents, error) {
	cacheClient, err := cache.NewClient(cache.Options{
		Addr:          cfg.Cache.Host,
		User:          cfg.Cache.User,
		Password:      cfg.Cache.Password,
		SSLCertFile:   cfg.Cache.SSLCertFile,
		SSLKeyFile:    cfg.Cache.SSLKeyFile,
		DefaultExpiry: time.Duration(cfg.Cache.ExpirySeconds) * time.Second,
		ChunkTTL:      cfg.Cache.ChunkTTL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to cache: %w", err)
	}

	return &WorkerComponents{
		Config:  cfg,
		Cache:   cacheClient,
		Opener:  engine.NewSidecarEngine(),
		Metrics: metrics.NewWorker(),
	}, nil
}

// Compressor returns the configured chunk compressor for the worker pool.
// The gateway never encodes chunks, so this lives alongside the worker's
// wiring rather than in config itself.
func Compressor() zarrcodec.Compressor {
	return zarrcodec.Compressor{ID: zarrcodec.CompressorZstd, Level: 3}
}

