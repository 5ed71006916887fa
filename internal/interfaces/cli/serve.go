package cli

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/turtacn/SeqPrep/internal/config"
	"github.com/turtacn/SeqPrep/internal/infrastructure/monitoring/logging"
	httpapi "github.com/turtacn/SeqPrep/internal/interfaces/http"
	"github.com/turtacn/SeqPrep/internal/interfaces/http/handlers"
)

type serveOptions struct {
	Addr string
}

func newServeCmd() *cobra.Command {
	opts := &serveOptions{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the encoding HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.Addr, "addr", "", "listen address (default: server.addr)")
	return cmd
}

func runServe(cmd *cobra.Command, opts *serveOptions) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}
	cfg := cliCtx.Config
	logger := cliCtx.Logger
	if opts.Addr != "" {
		cfg.Server.Addr = opts.Addr
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rt, err := newRuntime(ctx, cfg, logger, "http")
	if err != nil {
		return err
	}
	defer rt.Close()

	routerCfg := httpapi.RouterConfig{
		Mode:              cfg.Server.Mode,
		HealthHandler:     handlers.NewHealthHandler(Version, rt.healthCheckers()...),
		EncodeHandler:     handlers.NewEncodeHandler(rt.svc, cfg.Server.MaxBatchSize, logger),
		VocabularyHandler: handlers.NewVocabularyHandler(rt.svc),
		Metrics:           rt.metrics,
		Logger:            logger,
	}
	if rt.collector != nil {
		routerCfg.MetricsHandler = rt.collector.Handler()
	}
	server := httpapi.NewServer(cfg.Server, httpapi.NewRouter(routerCfg), logger)

	watchLogLevel(cliCtx.ConfigPath, logger)
	return serveUntilDone(ctx, server, logger)
}

// serveUntilDone runs server until it fails or ctx ends, then drains it.
func serveUntilDone(ctx context.Context, server *httpapi.Server, logger logging.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}
	if err := server.Stop(context.Background()); err != nil {
		return err
	}
	return <-errCh
}

// watchLogLevel applies log.level changes of the configuration file without a
// restart.  Other settings take effect on the next start.
func watchLogLevel(path string, logger logging.Logger) {
	if path == "" {
		return
	}
	err := config.Watch(path,
		func(c *config.Config) {
			if logging.SetLevel(logger, c.Log.Level) {
				logger.Info("log level changed", logging.String("level", c.Log.Level))
			}
		},
		func(err error) {
			logger.Warn("configuration reload rejected", logging.Err(err))
		})
	if err != nil {
		logger.Warn("configuration watch disabled", logging.Err(err))
	}
}
