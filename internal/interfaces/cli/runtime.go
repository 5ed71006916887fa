package cli

import (
	"context"

	"github.com/turtacn/SeqPrep/internal/application/encoding"
	"github.com/turtacn/SeqPrep/internal/config"
	"github.com/turtacn/SeqPrep/internal/infrastructure/database/redis"
	"github.com/turtacn/SeqPrep/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/SeqPrep/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/SeqPrep/internal/infrastructure/storage/minio"
	"github.com/turtacn/SeqPrep/internal/interfaces/http/handlers"
	"github.com/turtacn/SeqPrep/internal/preprocessing"
	"github.com/turtacn/SeqPrep/pkg/errors"
)

// runtime holds the components shared by the encoding commands.  Backing
// services are created only when enabled in the configuration.
type runtime struct {
	cfg       *config.Config
	logger    logging.Logger
	collector prometheus.MetricsCollector
	metrics   *prometheus.PipelineMetrics
	redis     *redis.Client
	minio     *minio.MinIOClient
	svc       *encoding.Service
	closers   []func() error
}

// newRuntime wires metrics, object storage, the vocabulary, the pipeline
// and the cache into an encoding service labelled source.
func newRuntime(ctx context.Context, cfg *config.Config, logger logging.Logger, source string) (*runtime, error) {
	rt := &runtime{cfg: cfg, logger: logger}
	ok := false
	defer func() {
		if !ok {
			rt.Close()
		}
	}()

	if cfg.Metrics.Enabled {
		c, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{
			Namespace:            cfg.Metrics.Namespace,
			EnableProcessMetrics: true,
			EnableGoMetrics:      true,
		}, logger)
		if err != nil {
			return nil, err
		}
		rt.collector = c
		rt.metrics = prometheus.NewPipelineMetrics(c)
	}

	store, err := rt.vocabularyStore()
	if err != nil {
		return nil, err
	}
	v, err := encoding.LoadVocabulary(ctx, cfg, store)
	if err != nil {
		return nil, err
	}
	pre, err := preprocessing.Build(cfg.Pipeline, v, preprocessing.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	opts := []encoding.Option{
		encoding.WithLogger(logger),
		encoding.WithConcurrency(cfg.Worker.Concurrency),
		encoding.WithMetrics(rt.metrics, source),
	}
	if cfg.Redis.Enabled {
		client, err := redis.NewClient(&redis.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, logger)
		if err != nil {
			return nil, err
		}
		rt.redis = client
		rt.closers = append(rt.closers, client.Close)
		cache := redis.NewRedisCache(client, logger,
			redis.WithPrefix(cfg.Redis.KeyPrefix),
			redis.WithDefaultTTL(cfg.Redis.TTL))
		opts = append(opts, encoding.WithCache(cache, cfg.Redis.TTL))
	}

	rt.svc = encoding.NewService(pre, cfg.Pipeline, opts...)
	logger.Info("pipeline ready",
		logging.String("source", source),
		logging.Int("vocabulary_size", v.Size()),
		logging.Bool("deterministic", pre.Deterministic()),
		logging.Bool("cache", rt.svc.CacheEnabled()))
	ok = true
	return rt, nil
}

// minioClient connects to object storage on first use.
func (rt *runtime) minioClient() (*minio.MinIOClient, error) {
	if rt.minio != nil {
		return rt.minio, nil
	}
	c, err := newMinIOClient(rt.cfg, rt.logger)
	if err != nil {
		return nil, err
	}
	rt.minio = c
	rt.closers = append(rt.closers, c.Close)
	return c, nil
}

// vocabularyStore returns nil unless the vocabulary lives in object storage.
func (rt *runtime) vocabularyStore() (encoding.VocabularyStore, error) {
	if rt.cfg.Vocabulary.Source != "minio" {
		return nil, nil
	}
	c, err := rt.minioClient()
	if err != nil {
		return nil, err
	}
	return minio.NewVocabularyRepository(c), nil
}

// healthCheckers reports the backing services in use.
func (rt *runtime) healthCheckers() []handlers.HealthChecker {
	var checks []handlers.HealthChecker
	if rt.redis != nil {
		checks = append(checks, handlers.CheckerFunc{ComponentName: "redis", Fn: rt.redis.Ping})
	}
	if rt.minio != nil {
		checks = append(checks, handlers.CheckerFunc{ComponentName: "minio", Fn: rt.minio.HealthCheck})
	}
	return checks
}

// Close releases backing services in reverse order of creation.
func (rt *runtime) Close() {
	for i := len(rt.closers) - 1; i >= 0; i-- {
		if err := rt.closers[i](); err != nil {
			rt.logger.Warn("close failed", logging.Err(err))
		}
	}
	rt.closers = nil
}

func newMinIOClient(cfg *config.Config, logger logging.Logger) (*minio.MinIOClient, error) {
	if !cfg.MinIO.Enabled {
		return nil, errors.InvalidConfig("object storage is disabled").WithDetail("minio.enabled=false")
	}
	return minio.NewMinIOClient(&minio.MinIOConfig{
		Endpoint:        cfg.MinIO.Endpoint,
		AccessKeyID:     cfg.MinIO.AccessKey,
		SecretAccessKey: cfg.MinIO.SecretKey,
		UseSSL:          cfg.MinIO.UseSSL,
		Region:          cfg.MinIO.Region,
		Bucket:          cfg.MinIO.Bucket,
	}, logger)
}
