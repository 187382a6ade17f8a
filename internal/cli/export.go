package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/videocraft/videocraft-core/internal/backend"
	"github.com/videocraft/videocraft-core/internal/config"
	"github.com/videocraft/videocraft-core/internal/editing"
	"github.com/videocraft/videocraft-core/internal/export"
	"github.com/videocraft/videocraft-core/internal/logging"
	"github.com/videocraft/videocraft-core/internal/timecode"
	"github.com/videocraft/videocraft-core/internal/videoref"
)

// ExportInput is everything `videocraft export` takes from its flags.
// Times accept seconds or M:SS.
type ExportInput struct {
	Kind          string
	Video         string
	Duration      string
	Width         int
	Height        int
	TrimStart     string
	TrimEnd       string
	Cuts          []string
	Filters       []string
	Quality       string
	ProcessingAPI bool
	FrameRate     float64
}

func newExportCommand(loadConfig func() (*config.EnvConfig, error)) *cobra.Command {
	var in ExportInput
	var offline bool
	var outputDir string

	cmd := &cobra.Command{
		Use:   "export [video|report|analysis|data|edl]",
		Short: "Export one edit of a video",
		Long: `Build an editing state from flags and export it once.

Video, report, analysis and data exports call the backend. When the backend
cannot produce the edited video, the unedited source is saved instead; when it
cannot produce a report, a local report without recommendations is generated.

Examples:
  videocraft export video --video clip.mp4 --duration 165 --trim-start 10 --trim-end 2:30 --quality 1080p
  videocraft export report --video clip.mp4 --duration 2:45 --cut 1:05 --filter brightness=120
  videocraft export edl --video clip.mp4 --duration 2:45 --cut 30 --cut 1:00 --offline`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: kindNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if outputDir == "" {
				outputDir = cfg.OutputDir()
			}
			in.Kind = args[0]

			logger := logging.NewLoggerTo(os.Stderr, cfg.LogLevel())
			_, err = RunExportWithDependencies(cmd.Context(), newClient(cfg, logger, offline), outputDir, in, logger, DefaultOutput)
			return err
		},
	}

	f := cmd.Flags()
	f.StringVar(&in.Video, "video", "", "server filename, URL or blob: handle of the video (required)")
	f.StringVar(&in.Duration, "duration", "", "video duration, seconds or M:SS (required)")
	f.IntVar(&in.Width, "width", 0, "video width in pixels")
	f.IntVar(&in.Height, "height", 0, "video height in pixels")
	f.StringVar(&in.TrimStart, "trim-start", "", "trim start, seconds or M:SS")
	f.StringVar(&in.TrimEnd, "trim-end", "", "trim end, seconds or M:SS")
	f.StringArrayVar(&in.Cuts, "cut", nil, "cut point, seconds or M:SS (repeatable)")
	f.StringArrayVar(&in.Filters, "filter", nil, "filter as name=value, e.g. brightness=120 (repeatable)")
	f.StringVar(&in.Quality, "quality", string(export.DefaultQuality), "video quality: 480p, 720p, 1080p or original")
	f.BoolVar(&in.ProcessingAPI, "processing-api", false, "render video through the editing pipeline endpoints")
	f.Float64Var(&in.FrameRate, "frame-rate", 30, "frame rate for EDL timecodes")
	f.BoolVar(&offline, "offline", false, "never call the backend")
	f.StringVar(&outputDir, "output", "", "output directory (default from config)")
	cmd.MarkFlagRequired("video")
	cmd.MarkFlagRequired("duration")

	return cmd
}

// RunExportWithDependencies runs one export against client (for testing)
func RunExportWithDependencies(
	ctx context.Context,
	client backend.Client,
	outputDir string,
	in ExportInput,
	logger *slog.Logger,
	out OutputWriter,
) (export.Result, error) {
	kind, err := export.ParseKind(in.Kind)
	if err != nil {
		return export.Result{}, err
	}
	quality, err := export.ParseQuality(in.Quality)
	if err != nil {
		return export.Result{}, err
	}

	ref := videoref.Parse(in.Video, videoref.Names{})
	if ref.IsZero() {
		return export.Result{}, fmt.Errorf("--video is required")
	}
	duration := timecode.ParseTime(in.Duration)
	if duration <= 0 {
		return export.Result{}, fmt.Errorf("--duration must be a positive time, got %q", in.Duration)
	}
	filters, err := parseFilters(in.Filters)
	if err != nil {
		return export.Result{}, err
	}

	sess, closer, err := newSession(client, outputDir, logger)
	if err != nil {
		return export.Result{}, err
	}
	defer closer.Close()

	meta := editing.VideoMetadata{DurationSeconds: duration, Width: in.Width, Height: in.Height}
	if name := videoref.Resolve(ref); !videoref.IsPlaceholder(name) {
		meta.OriginalFilename = name
	}
	if err := sess.Load(meta, ref); err != nil {
		return export.Result{}, err
	}

	state, err := sess.Update(func(s editing.State) editing.State {
		if in.TrimStart != "" || in.TrimEnd != "" {
			end := duration
			if in.TrimEnd != "" {
				end = timecode.ParseTime(in.TrimEnd)
			}
			s = s.SetTrim(timecode.ParseTime(in.TrimStart), end)
		}
		for _, c := range in.Cuts {
			s = s.AddCut(timecode.ParseTime(c))
		}
		if len(filters) > 0 {
			s = s.SetFilters(filters)
		}
		return s
	})
	if err != nil {
		return export.Result{}, err
	}

	fmt.Fprintf(out, "Exporting %s of %s (%s -> %s, %d cuts, %d filters)\n",
		kind, videoref.Resolve(ref),
		timecode.FormatTime(state.TrimStart()), timecode.FormatTime(state.EffectiveTrimEnd()),
		len(state.Cuts()), len(state.Filters()))

	opts := export.Options{Quality: quality, UseProcessingAPI: in.ProcessingAPI, FrameRate: in.FrameRate}
	res, err := sess.Export(ctx, kind, opts, &progressPrinter{out: out})
	if err != nil {
		return res, err
	}
	if !res.OK {
		return res, fmt.Errorf("%s export failed: %s", kind, res.Reason)
	}

	fmt.Fprintf(out, "Saved %s\n", res.Path)
	if res.Message != "" {
		fmt.Fprintln(out, res.Message)
	}
	if kind == export.KindVideo && !res.AppliedEditing {
		fmt.Fprintln(out, "Note: editing was not applied; this is the original video.")
	}
	return res, nil
}

// progressPrinter writes one line per progress update.
type progressPrinter struct {
	out OutputWriter
}

func (p *progressPrinter) Progress(pr export.Progress) {
	fmt.Fprintf(p.out, "[%3d%%] %s\n", pr.Percent, pr.Stage)
}

func (p *progressPrinter) Done(export.Result) {}

func parseFilters(raw []string) ([]editing.Filter, error) {
	filters := make([]editing.Filter, 0, len(raw))
	for _, r := range raw {
		name, value, ok := strings.Cut(r, "=")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("invalid --filter %q: want name=value", r)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid --filter %q: %w", r, err)
		}
		filters = append(filters, editing.Filter{Name: name, Value: v})
	}
	return filters, nil
}

func kindNames() []string {
	names := make([]string, len(export.Kinds))
	for i, k := range export.Kinds {
		names[i] = string(k)
	}
	return names
}
