package cli

import (
	"context"
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/videocraft/videocraft-core/internal/api"
	"github.com/videocraft/videocraft-core/internal/artifact"
	"github.com/videocraft/videocraft-core/internal/backend"
	"github.com/videocraft/videocraft-core/internal/config"
	"github.com/videocraft/videocraft-core/internal/logging"
)

func newServeCommand(loadConfig func() (*config.EnvConfig, error)) *cobra.Command {
	var offline bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the local API for the editing UI",
		Long: `Serve the editing session over HTTP on 127.0.0.1.

The UI loads a video, edits trim, cuts and filters, and requests exports.
Export progress can be followed over a WebSocket at /exports/{kind}/stream.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg, offline)
		},
	}
	cmd.Flags().BoolVar(&offline, "offline", false, "never call the backend; only local exports succeed")
	return cmd
}

func runServe(ctx context.Context, cfg config.Config, offline bool) error {
	startTime := time.Now()

	logger := logging.NewLogger(cfg.LogLevel())
	logger.Info("starting videocraft",
		"version", config.Version,
		"api_url", cfg.APIURL(),
		"output_dir", logging.SanitizePath(cfg.OutputDir()),
		"offline", offline,
	)

	client := newClient(cfg, logger, offline)
	sess, closer, err := newSession(client, cfg.OutputDir(), logger)
	if err != nil {
		return err
	}
	defer closer.Close()

	outputDir, err := filepath.Abs(cfg.OutputDir())
	if err != nil {
		return fmt.Errorf("resolve output directory: %w", err)
	}

	var probe *backend.Probe
	if hc, ok := client.(backend.HealthChecker); ok {
		probe = backend.NewProbe(hc, 0, logger)
	}

	server := api.NewServer(api.ServerConfig{
		Port:      cfg.Port(),
		Session:   sess,
		Logger:    logger,
		StartTime: startTime,
		Probe:     probe,
		Artifacts: artifact.NewServer(outputDir, logger),
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	fmt.Fprintf(DefaultOutput, "VideoCraft API listening on http://%s\n", server.Addr())

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("initiating graceful shutdown")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}
	logger.Info("videocraft stopped")
	return nil
}
