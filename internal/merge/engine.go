package merge

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"bookbind/internal/config"
	"bookbind/internal/deps"
	"bookbind/internal/fileutil"
	"bookbind/internal/logging"
	"bookbind/internal/services/ffmpeg"
	"bookbind/internal/services/sox"
	"bookbind/internal/wavio"
)

// toolClient is the capability surface the engine needs from an external
// codec tool wrapper.
type toolClient interface {
	Name() string
	Concat(ctx context.Context, inputs []string, output string) error
}

// Option configures the engine.
type Option func(*Engine)

// WithSoxClient injects a custom SoX client (primarily for tests).
func WithSoxClient(client toolClient) Option {
	return func(e *Engine) {
		if client != nil {
			e.sox = client
		}
	}
}

// WithFFmpegClient injects a custom FFmpeg client (primarily for tests).
func WithFFmpegClient(client toolClient) Option {
	return func(e *Engine) {
		if client != nil {
			e.ffmpeg = client
		}
	}
}

// WithAvailabilityProbe replaces the external tool probe (primarily for tests).
func WithAvailabilityProbe(probe func(ctx context.Context) deps.Availability) Option {
	return func(e *Engine) {
		if probe != nil {
			e.probe = probe
		}
	}
}

// Engine coordinates validation, strategy selection, and fallback for merge
// requests. One engine serves many requests; each request re-probes tool
// availability into a local value so stale process-wide state never leaks
// between runs.
type Engine struct {
	logger     *slog.Logger
	threshold  int
	cap        int
	chunkSize  int
	scratchDir string
	sox        toolClient
	ffmpeg     toolClient
	probe      func(ctx context.Context) deps.Availability
}

// New constructs an engine from configuration.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) (*Engine, error) {
	soxClient, err := sox.New(cfg.Tools.SoxBinary, cfg.Tools.MergeTimeoutSeconds)
	if err != nil {
		return nil, err
	}
	ffmpegOpts := []ffmpeg.Option{}
	if strings.TrimSpace(cfg.Paths.WorkDir) != "" {
		ffmpegOpts = append(ffmpegOpts, ffmpeg.WithManifestDir(cfg.Paths.WorkDir))
	}
	ffmpegClient, err := ffmpeg.New(cfg.Tools.FFmpegBinary, cfg.Tools.MergeTimeoutSeconds, ffmpegOpts...)
	if err != nil {
		return nil, err
	}

	probeTimeout := time.Duration(cfg.Tools.ProbeTimeoutSeconds) * time.Second
	soxBinary, ffmpegBinary := cfg.Tools.SoxBinary, cfg.Tools.FFmpegBinary

	engine := &Engine{
		logger:     logging.NewComponentLogger(logger, "merge"),
		threshold:  cfg.Merge.LargeCollectionThreshold,
		cap:        cfg.Merge.FallbackSegmentCap,
		chunkSize:  cfg.Merge.ChunkSizeBytes,
		scratchDir: cfg.Paths.WorkDir,
		sox:        soxClient,
		ffmpeg:     ffmpegClient,
		probe: func(ctx context.Context) deps.Availability {
			return deps.Probe(ctx, soxBinary, ffmpegBinary, probeTimeout)
		},
	}
	for _, opt := range opts {
		opt(engine)
	}
	return engine, nil
}

// Merge runs one request to completion. Validation failures are terminal;
// strategy failures advance through the fallback chain. The output file only
// appears at its final path after a strategy fully succeeds.
func (e *Engine) Merge(ctx context.Context, req Request) (Outcome, error) {
	if len(req.Segments) == 0 {
		return Outcome{}, ErrNoSegments
	}
	if _, ok := logging.RequestIDFromContext(ctx); !ok {
		ctx = logging.WithRequestID(ctx, uuid.NewString())
	}
	logger := logging.WithContext(ctx, e.logger)

	OrderSegments(req.Segments)
	format, err := ValidateCompatibility(req.Segments)
	if err != nil {
		return Outcome{}, err
	}

	// One in-flight merge per output path across processes.
	lock := flock.New(req.OutputPath + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return Outcome{}, fmt.Errorf("acquire output lock: %w", err)
	}
	if !locked {
		return Outcome{}, fmt.Errorf("output %s is locked by another merge", req.OutputPath)
	}
	defer lock.Unlock()

	avail := e.probe(ctx)
	logger.Debug("tool availability probed",
		logging.Bool("sox", avail.Sox.Available),
		logging.Bool("ffmpeg", avail.FFmpeg.Available),
	)

	chain := e.buildChain(req, format, avail)
	workPath := tempOutputPath(req.OutputPath)
	defer os.Remove(workPath)

	total := len(req.Segments)
	var lastErr error
	for _, strat := range chain {
		if err := ctx.Err(); err != nil {
			return Outcome{}, err
		}
		// A previous attempt may have left a partial file behind.
		_ = os.Remove(workPath)

		logger.Info("attempting merge strategy",
			logging.String(logging.FieldStrategy, string(strat.name)),
			logging.Int("segments", total),
		)
		outcome, err := strat.run(ctx, workPath)
		if err != nil {
			if ctx.Err() != nil {
				return Outcome{}, ctx.Err()
			}
			logger.Warn("merge strategy failed",
				logging.String(logging.FieldStrategy, string(strat.name)),
				logging.Error(err),
			)
			lastErr = err
			continue
		}

		if err := fileutil.MoveFile(workPath, req.OutputPath); err != nil {
			return Outcome{}, fmt.Errorf("finalize output: %w", err)
		}
		outcome.OutputPath = req.OutputPath

		if outcome.Degraded() {
			logger.Warn("merge completed with dropped segments",
				logging.String(logging.FieldStrategy, string(outcome.Strategy)),
				logging.Int("segments_included", outcome.SegmentsIncluded),
				logging.Int("segments_dropped", outcome.SegmentsDropped),
			)
		} else {
			logger.Info("merge completed",
				logging.String(logging.FieldStrategy, string(outcome.Strategy)),
				logging.Int("segments_included", outcome.SegmentsIncluded),
				logging.String("output", outcome.OutputPath),
			)
		}

		if req.Options.DeleteSources {
			inputDir := filepath.Dir(req.Segments[0].Path)
			deleted, err := CleanupSources(logger, inputDir, req.OutputPath)
			if err != nil {
				logger.Warn("source cleanup failed", logging.Error(err))
			} else {
				logger.Info("source segments deleted", logging.Int("deleted", deleted))
			}
		}
		return outcome, nil
	}

	return Outcome{}, fmt.Errorf("all merge strategies failed: %w", lastErr)
}

type strategyStep struct {
	name Strategy
	run  func(ctx context.Context, workPath string) (Outcome, error)
}

// buildChain applies the selection policy: an available forced tool goes
// first; otherwise small collections start with the in-process merger. The
// fixed fallback order sox, ffmpeg, raw, bounded follows, skipping tools that
// are not installed. No stage appears twice, so nothing is ever retried.
func (e *Engine) buildChain(req Request, format wavio.Format, avail deps.Availability) []strategyStep {
	total := len(req.Segments)
	paths := segmentPaths(req.Segments)

	direct := strategyStep{StrategyDirect, func(ctx context.Context, workPath string) (Outcome, error) {
		if err := directMerge(ctx, req.Segments, format, workPath, e.chunkSize); err != nil {
			return Outcome{}, err
		}
		return Outcome{Strategy: StrategyDirect, SegmentsIncluded: total}, nil
	}}
	soxStep := strategyStep{StrategySox, func(ctx context.Context, workPath string) (Outcome, error) {
		if err := e.sox.Concat(ctx, paths, workPath); err != nil {
			return Outcome{}, err
		}
		return Outcome{Strategy: StrategySox, SegmentsIncluded: total}, nil
	}}
	ffmpegStep := strategyStep{StrategyFFmpeg, func(ctx context.Context, workPath string) (Outcome, error) {
		if err := e.ffmpeg.Concat(ctx, paths, workPath); err != nil {
			return Outcome{}, err
		}
		return Outcome{Strategy: StrategyFFmpeg, SegmentsIncluded: total}, nil
	}}
	rawStep := strategyStep{StrategyRaw, func(ctx context.Context, workPath string) (Outcome, error) {
		logger := logging.WithContext(ctx, e.logger)
		included, err := rawMerge(ctx, logger, req.Segments, format, workPath, e.scratchDir, e.chunkSize)
		if err != nil {
			return Outcome{}, err
		}
		return Outcome{Strategy: StrategyRaw, SegmentsIncluded: included}, nil
	}}
	boundedStep := strategyStep{StrategyBounded, func(ctx context.Context, workPath string) (Outcome, error) {
		logger := logging.WithContext(ctx, e.logger)
		included, err := boundedMerge(ctx, logger, req.Segments, format, workPath, e.cap, e.chunkSize)
		if err != nil {
			return Outcome{}, err
		}
		return Outcome{
			Strategy:         StrategyBounded,
			SegmentsIncluded: included,
			SegmentsDropped:  total - included,
		}, nil
	}}

	var chain []strategyStep
	forced := strings.ToLower(strings.TrimSpace(req.Options.ForceTool))
	switch {
	case forced == "sox" && avail.Sox.Available:
		chain = append(chain, soxStep)
	case forced == "ffmpeg" && avail.FFmpeg.Available:
		chain = append(chain, ffmpegStep)
	default:
		if forced != "" {
			e.logger.Warn("forced tool unavailable, selecting automatically",
				logging.String("tool", forced),
			)
		}
		if total <= e.threshold {
			chain = append(chain, direct)
		}
	}

	appendOnce := func(step strategyStep) {
		for _, existing := range chain {
			if existing.name == step.name {
				return
			}
		}
		chain = append(chain, step)
	}
	if avail.Sox.Available {
		appendOnce(soxStep)
	}
	if avail.FFmpeg.Available {
		appendOnce(ffmpegStep)
	}
	appendOnce(rawStep)
	appendOnce(boundedStep)
	return chain
}

func segmentPaths(segments []*Segment) []string {
	paths := make([]string, 0, len(segments))
	for _, s := range segments {
		paths = append(paths, s.Path)
	}
	return paths
}

// tempOutputPath derives a request-unique work path in the output's directory.
// The .wav suffix stays intact because external tools infer format from it.
func tempOutputPath(outputPath string) string {
	dir := filepath.Dir(outputPath)
	base := strings.TrimSuffix(filepath.Base(outputPath), filepath.Ext(outputPath))
	return filepath.Join(dir, fmt.Sprintf(".%s-%s.wav", base, uuid.NewString()[:8]))
}
