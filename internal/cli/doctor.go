package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/videocraft/videocraft-core/internal/backend"
	"github.com/videocraft/videocraft-core/internal/config"
	"github.com/videocraft/videocraft-core/internal/export"
	"github.com/videocraft/videocraft-core/internal/logging"
)

func newDoctorCommand(loadConfig func() (*config.EnvConfig, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check the output directory and the backend",
		Long: `Reports the effective configuration, checks that exports can be written
to the output directory and asks the backend for its health.

Local exports (EDL, local reports) work without the backend; the other
kinds need it.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger := logging.NewLoggerTo(os.Stderr, cfg.LogLevel())
			client := backend.NewHTTPClient(cfg.APIURL(), logger, backend.WithTimeout(10*time.Second))
			return RunDoctorWithDependencies(cmd.Context(), cfg, client, DefaultOutput)
		},
	}
}

// RunDoctorWithDependencies runs the checks against checker (for testing)
func RunDoctorWithDependencies(ctx context.Context, cfg config.Config, checker backend.HealthChecker, out OutputWriter) error {
	if ctx == nil {
		ctx = context.Background()
	}
	failed := 0

	fmt.Fprintf(out, "Config file:  %s\n", displayPath(cfg.ConfigPath()))
	fmt.Fprintf(out, "Backend URL:  %s\n", cfg.APIURL())
	fmt.Fprintf(out, "Output dir:   %s\n", cfg.OutputDir())
	fmt.Fprintln(out)

	if err := checkWritable(cfg.OutputDir()); err != nil {
		failed++
		fmt.Fprintf(out, "[FAIL] output directory: %v\n", err)
	} else {
		fmt.Fprintln(out, "[ OK ] output directory is writable")
	}

	h, err := checker.Health(ctx)
	switch {
	case err != nil:
		failed++
		fmt.Fprintf(out, "[FAIL] backend: %v\n", err)
		fmt.Fprintln(out, "       Only EDL and local report exports will work.")
	case h.Status != "" && !h.Healthy():
		failed++
		fmt.Fprintf(out, "[FAIL] backend reports status %q\n", h.Status)
	default:
		fmt.Fprintln(out, "[ OK ] backend is healthy")
	}

	if failed > 0 {
		return fmt.Errorf("%d check(s) failed", failed)
	}
	return nil
}

// checkWritable creates the directory if needed and writes a probe file.
func checkWritable(dir string) error {
	sink, err := export.NewDirSink(dir)
	if err != nil {
		return err
	}
	f, err := os.CreateTemp(sink.Dir(), ".videocraft-doctor-*")
	if err != nil {
		return err
	}
	name := f.Name()
	f.Close()
	return os.Remove(name)
}

func displayPath(p string) string {
	if p == "" {
		return config.DefaultConfigPath() + " (default)"
	}
	return p
}
