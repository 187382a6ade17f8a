// Package cli holds the videocraft command tree.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/videocraft/videocraft-core/internal/backend"
	"github.com/videocraft/videocraft-core/internal/config"
	"github.com/videocraft/videocraft-core/internal/db"
	"github.com/videocraft/videocraft-core/internal/export"
	"github.com/videocraft/videocraft-core/internal/history"
	"github.com/videocraft/videocraft-core/internal/session"
)

// OutputWriter allows capturing output in tests
type OutputWriter interface {
	Write(p []byte) (n int, err error)
}

// DefaultOutput is where commands print for the user.
var DefaultOutput OutputWriter = os.Stdout

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	var cfgFile string

	root := &cobra.Command{
		Use:   "videocraft",
		Short: "Editing state and export service for the VideoCraft console",
		Long: `videocraft keeps the editing state of one video (trim, cuts, filters)
and turns it into exports: the edited video, a PDF project report, an AI
analysis report, a JSON project document or an EDL.

Run "videocraft serve" for the local API the editing UI talks to, or
"videocraft export" for a one-off export from the command line.

Example:
  videocraft export video --video clip.mp4 --duration 2:45 --trim-start 0:10 --cut 1:05`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.videocraft/config.yaml)")

	loadConfig := func() (*config.EnvConfig, error) {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		return cfg, nil
	}
	configPath := func() string {
		if cfgFile != "" {
			return cfgFile
		}
		if p := os.Getenv(config.EnvConfigFile); p != "" {
			return p
		}
		return config.DefaultConfigPath()
	}

	root.AddCommand(
		newServeCommand(loadConfig),
		newExportCommand(loadConfig),
		newSetupCommand(configPath),
		newDoctorCommand(loadConfig),
		newVersionCommand(),
	)
	return root
}

// Execute runs the command tree and exits non-zero on error.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(DefaultOutput, "videocraft %s (commit %s, built %s)\n",
				config.Version, config.GitCommit, config.BuildTime)
		},
	}
}

// newClient returns the backend client for cfg, or the offline client.
func newClient(cfg config.Config, logger *slog.Logger, offline bool) backend.Client {
	if offline {
		return backend.NewOfflineClient(logger)
	}
	return backend.NewHTTPClient(cfg.APIURL(), logger, backend.WithTimeout(cfg.HTTPTimeout()))
}

// newSession wires a session over client, writing exports to outputDir and
// recording them in an in-memory history. The returned closer releases the
// history database.
func newSession(client backend.Client, outputDir string, logger *slog.Logger) (*session.Session, io.Closer, error) {
	sink, err := export.NewDirSink(outputDir)
	if err != nil {
		return nil, nil, err
	}

	database, err := db.NewMemory(logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize export history: %w", err)
	}

	orch := export.NewOrchestrator(client, sink, logger)
	return session.New(orch, history.NewRepository(database.Conn()), logger), database, nil
}
