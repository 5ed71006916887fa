package cli

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/turtacn/SeqPrep/internal/application/encoding"
	"github.com/turtacn/SeqPrep/internal/config"
	"github.com/turtacn/SeqPrep/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/SeqPrep/internal/infrastructure/monitoring/logging"
	httpapi "github.com/turtacn/SeqPrep/internal/interfaces/http"
	"github.com/turtacn/SeqPrep/internal/interfaces/http/handlers"
	"github.com/turtacn/SeqPrep/pkg/errors"
)

type workerOptions struct {
	EnsureTopics bool
	HealthAddr   string
	MaxRetries   int
}

func newWorkerCmd() *cobra.Command {
	opts := &workerOptions{}
	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Consume raw sequences from Kafka and publish encoded sequences",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWorker(cmd, opts)
		},
	}
	cmd.Flags().BoolVar(&opts.EnsureTopics, "ensure-topics", false, "create the input, output and dead letter topics if missing")
	cmd.Flags().StringVar(&opts.HealthAddr, "health-addr", "", "serve /healthz, /readyz and /metrics on this address")
	cmd.Flags().IntVar(&opts.MaxRetries, "max-retries", 3, "handler attempts before a message is dead-lettered")
	return cmd
}

func runWorker(cmd *cobra.Command, opts *workerOptions) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}
	cfg := cliCtx.Config
	logger := cliCtx.Logger
	if len(cfg.Kafka.Brokers) == 0 {
		return errors.InvalidConfig("kafka.brokers is required").WithDetail("command=worker")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if opts.EnsureTopics {
		if err := ensureTopics(ctx, cfg.Kafka, logger); err != nil {
			return err
		}
	}

	rt, err := newRuntime(ctx, cfg, logger, "stream")
	if err != nil {
		return err
	}
	defer rt.Close()

	producer, err := kafka.NewProducer(kafka.ProducerConfig{Brokers: cfg.Kafka.Brokers}, logger)
	if err != nil {
		return err
	}
	defer producer.Close()

	consumer, err := kafka.NewConsumer(kafka.ConsumerConfig{
		Brokers: cfg.Kafka.Brokers,
		GroupID: cfg.Kafka.GroupID,
		Topics:  []string{cfg.Kafka.InputTopic},
		RetryConfig: kafka.RetryConfig{
			MaxRetries:      opts.MaxRetries,
			RetryBackoff:    time.Second,
			MaxRetryBackoff: 30 * time.Second,
			DeadLetterTopic: kafka.TopicDeadLetter,
		},
	}, logger)
	if err != nil {
		return err
	}
	defer consumer.Close()

	worker := encoding.NewStreamWorker(rt.svc, producer, cfg.Kafka.OutputTopic, rt.metrics, logger)
	if err := consumer.Subscribe(cfg.Kafka.InputTopic, worker.Handle); err != nil {
		return err
	}

	if opts.HealthAddr != "" {
		routerCfg := httpapi.RouterConfig{
			Mode:          cfg.Server.Mode,
			HealthHandler: handlers.NewHealthHandler(Version, rt.healthCheckers()...),
			Logger:        logger,
		}
		if rt.collector != nil {
			routerCfg.MetricsHandler = rt.collector.Handler()
		}
		srvCfg := cfg.Server
		srvCfg.Addr = opts.HealthAddr
		server := httpapi.NewServer(srvCfg, httpapi.NewRouter(routerCfg), logger)
		go func() {
			if err := server.Start(); err != nil {
				logger.Error("health server failed", logging.Err(err))
			}
		}()
		defer func() {
			if err := server.Stop(context.Background()); err != nil {
				logger.Warn("health server shutdown failed", logging.Err(err))
			}
		}()
	}

	if err := consumer.Start(ctx); err != nil {
		return err
	}
	logger.Info("worker started",
		logging.String("input", cfg.Kafka.InputTopic),
		logging.String("output", cfg.Kafka.OutputTopic),
		logging.String("group", cfg.Kafka.GroupID))

	watchLogLevel(cliCtx.ConfigPath, logger)
	<-ctx.Done()
	logger.Info("shutdown signal received")
	return nil
}

func ensureTopics(ctx context.Context, cfg config.KafkaConfig, logger logging.Logger) error {
	tm, err := kafka.NewTopicManager(cfg.Brokers, logger)
	if err != nil {
		return err
	}
	defer tm.Close()
	return tm.EnsureTopics(ctx, kafka.DefaultTopics(cfg.InputTopic, cfg.OutputTopic))
}
