package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/recommender/internal/catalog"
	"github.com/kailas-cloud/recommender/internal/config"
	"github.com/kailas-cloud/recommender/internal/db"
	dbRedis "github.com/kailas-cloud/recommender/internal/db/redis"
	dbValkey "github.com/kailas-cloud/recommender/internal/db/valkey"
	"github.com/kailas-cloud/recommender/internal/domain"
	logpkg "github.com/kailas-cloud/recommender/internal/logger"
	"github.com/kailas-cloud/recommender/internal/metrics"
	assessmentrepo "github.com/kailas-cloud/recommender/internal/repository/assessment"
	"github.com/kailas-cloud/recommender/internal/repository/embcache"
	"github.com/kailas-cloud/recommender/internal/transport/llm"
	openaiEmb "github.com/kailas-cloud/recommender/internal/transport/openai"
	embeddinguc "github.com/kailas-cloud/recommender/internal/usecase/embedding"
	extractuc "github.com/kailas-cloud/recommender/internal/usecase/extract"
	healthuc "github.com/kailas-cloud/recommender/internal/usecase/health"
	ingestuc "github.com/kailas-cloud/recommender/internal/usecase/ingest"
	recommenduc "github.com/kailas-cloud/recommender/internal/usecase/recommend"
	searchuc "github.com/kailas-cloud/recommender/internal/usecase/search"
)

// application is the composition root shared by every command.
type application struct {
	env           string
	cfg           config.Config
	logger        *zap.Logger
	store         db.Store
	repo          *assessmentrepo.Repo
	docEmbedder   domain.Embedder
	queryEmbedder domain.Embedder
	generator     domain.Generator
	recommend     *recommenduc.Service
	health        *healthuc.Service
}

func newApplication(ctx context.Context, opts *rootOptions) (*application, error) {
	cfg, err := config.Load(opts.env)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	level := cfg.Logging.Level
	if opts.logLevel != "" {
		level = opts.logLevel
	}
	logger, err := logpkg.NewLogger(opts.env, level)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	metrics.RegisterAll()

	store, err := newStore(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("create %s store: %w", cfg.Database.Driver, err)
	}
	readiness := time.Duration(cfg.Database.ReadinessTimeout) * time.Second
	if err := store.WaitForReady(ctx, readiness); err != nil {
		store.Close()
		return nil, fmt.Errorf("database not ready: %w", err)
	}
	logger.Info("Connected to database",
		zap.String("db_driver", cfg.Database.Driver),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	a := &application{env: opts.env, cfg: cfg, logger: logger, store: store}

	a.repo = assessmentrepo.New(store, cfg.Storage.KeyPrefix, cfg.Catalog.IndexName, cfg.Embedding.Dimensions).
		WithHNSW(assessmentrepo.HNSWConfig{
			M:           cfg.Catalog.HNSWM,
			EFConstruct: cfg.Catalog.HNSWEFConstruct,
		})

	a.docEmbedder = a.buildEmbedder("")
	a.queryEmbedder = a.buildEmbedder(cfg.Embedding.QueryInstruction)

	a.generator, err = llm.NewGenerator(ctx, cfg.Generation, logger)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("create generator: %w", err)
	}
	if a.generator == nil {
		logger.Warn("No generation provider configured, keyword extraction always uses fallback queries")
	}

	a.recommend = recommenduc.New(extractuc.New(a.generator, logger)).
		WithSearchDepth(cfg.Recommend.SearchDepth)

	a.health = healthuc.New(store, a.recommend).
		WithChecker("embedding", newEmbeddingHealthChecker(a.docEmbedder))
	if hc, ok := a.generator.(domain.HealthChecker); ok {
		a.health.WithChecker("generator", hc)
	}

	return a, nil
}

func newStore(cfg config.DatabaseConfig) (db.Store, error) {
	switch cfg.Driver {
	case "redis":
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Addrs,
			Username: cfg.Username,
			Password: cfg.Password,
			DB:       cfg.DB,
		})
		if err != nil {
			return nil, err
		}
		return s, nil
	case "valkey":
		s, err := dbValkey.NewStore(dbValkey.Config{
			Addrs:    cfg.Addrs,
			Username: cfg.Username,
			Password: cfg.Password,
			DB:       cfg.DB,
		})
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}

// buildEmbedder assembles the decorator chain: OpenAI -> Cached -> Instrumented -> Instruction.
func (a *application) buildEmbedder(instruction string) domain.Embedder {
	ec := a.cfg.Embedding

	base := openaiEmb.NewEmbedder(&openaiEmb.Config{
		APIKey:     ec.APIKey,
		BaseURL:    ec.BaseURL,
		Model:      ec.Model,
		Dimensions: ec.Dimensions,
		Provider:   ec.Provider,
		Logger:     a.logger,
	})

	var embedder domain.Embedder = embcache.New(base, a.store, embcache.Options{
		KeyPrefix:  a.cfg.Storage.KeyPrefix,
		Model:      ec.Model,
		TTL:        time.Duration(ec.CacheTTLHours) * time.Hour,
		CacheTotal: metrics.EmbeddingCacheTotal,
	}, a.logger)

	embedder = embeddinguc.NewInstrumentedEmbedder(embedder, ec.Provider, ec.Model, a.logger).
		WithMaxBatchSize(a.cfg.Catalog.BatchSize)

	// Outermost, so the cache key includes the instruction.
	if instruction != "" {
		return domain.NewInstructionEmbedder(embedder, instruction)
	}
	return embedder
}

// loadCatalog ingests the configured catalog and attaches the search service, which
// flips the recommender to ready. A missing catalog is fatal for the caller.
func (a *application) loadCatalog(ctx context.Context) (ingestuc.Result, error) {
	s3cfg := catalog.S3Config{
		Region:       a.cfg.S3.Region,
		Endpoint:     a.cfg.S3.Endpoint,
		AccessKey:    a.cfg.S3.AccessKey,
		SecretKey:    a.cfg.S3.SecretKey,
		UsePathStyle: a.cfg.S3.UsePathStyle,
	}
	src, err := catalog.Open(ctx, a.cfg.Catalog.Location, s3cfg)
	if err != nil {
		return ingestuc.Result{}, fmt.Errorf("open catalog: %w", err)
	}

	records, err := catalog.Load(ctx, src)
	if err != nil {
		return ingestuc.Result{}, fmt.Errorf("load catalog: %w", err)
	}
	a.logger.Info("Catalog loaded", zap.String("location", src.Location()), zap.Int("records", len(records)))

	res, err := ingestuc.New(a.repo, a.docEmbedder, a.logger).
		WithBatchSize(a.cfg.Catalog.BatchSize).
		WithWorkers(a.cfg.Catalog.Workers).
		WithReindex(a.cfg.Catalog.Reindex).
		WithFingerprintSalt(fmt.Sprintf("%s/%d", a.cfg.Embedding.Model, a.cfg.Embedding.Dimensions)).
		Run(ctx, records)
	if err != nil {
		return res, fmt.Errorf("ingest catalog: %w", err)
	}

	a.recommend.Attach(searchuc.New(a.repo, a.queryEmbedder))
	return res, nil
}

func (a *application) close() {
	a.store.Close()
	_ = a.logger.Sync()
}

// embeddingHealthChecker wraps domain.Embedder to implement health.Checker.
type embeddingHealthChecker struct {
	embedder domain.Embedder
}

func newEmbeddingHealthChecker(embedder domain.Embedder) *embeddingHealthChecker {
	return &embeddingHealthChecker{embedder: embedder}
}

func (h *embeddingHealthChecker) HealthCheck(ctx context.Context) error {
	if hc, ok := h.embedder.(domain.HealthChecker); ok {
		if err := hc.HealthCheck(ctx); err != nil {
			return fmt.Errorf("embedding health check: %w", err)
		}
	}
	return nil
}
