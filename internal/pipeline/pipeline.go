package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/kikiluvv/slopblend/internal/config"
	"github.com/kikiluvv/slopblend/internal/ffmpeg"
	"github.com/kikiluvv/slopblend/internal/logging"
	"github.com/kikiluvv/slopblend/internal/timeline"
	"github.com/kikiluvv/slopblend/internal/transition"
	"github.com/kikiluvv/slopblend/pkg/util"
)

// ErrNoOutput is returned when a blend request has no output path
var ErrNoOutput = errors.New("output path cannot be empty")

// Pipeline compiles clip timelines and hands them to ffmpeg
type Pipeline struct {
	logger   zerolog.Logger
	compiler *timeline.Compiler
	encoder  Encoder
	encode   ffmpeg.BlendOptions
}

// New creates a pipeline backed by the ffmpeg and ffprobe binaries
func New(logger zerolog.Logger, appCfg *config.Config) (*Pipeline, error) {
	ffmpegExec, err := ffmpeg.New(logger, appCfg.ExecutorOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize ffmpeg: %w", err)
	}

	return NewWithComponents(logger, ffmpegExec, ffmpegExec, appCfg), nil
}

// NewWithComponents creates a pipeline around an explicit resolver and encoder
func NewWithComponents(logger zerolog.Logger, resolver timeline.Resolver, encoder Encoder, appCfg *config.Config) *Pipeline {
	// the last clip is probed too so encode progress has a total
	opts := appCfg.TimelineOptions()
	opts.ResolveLast = true

	return &Pipeline{
		logger:   logger.With().Str("component", "pipeline").Logger(),
		compiler: timeline.New(logger, resolver, opts),
		encoder:  encoder,
		encode:   appCfg.BlendOptions(),
	}
}

// Compile builds the filter graph for clips without encoding anything
func (p *Pipeline) Compile(ctx context.Context, clips []string, policy transition.Policy) (*timeline.Compiled, error) {
	return p.compiler.Compile(ctx, clips, policy)
}

// EncodeOptions returns the blend options a request would be encoded with
func (p *Pipeline) EncodeOptions(compiled *timeline.Compiled, output string) ffmpeg.BlendOptions {
	opts := p.encode
	opts.Inputs = compiled.Inputs()
	opts.Output = output
	opts.Graph = compiled.Graph
	if d, ok := compiled.Duration(); ok {
		opts.Duration = d
	}
	return opts
}

// Blend compiles the request and encodes it. Validation happens before any
// process is spawned; the first probe or encode failure aborts the run.
func (p *Pipeline) Blend(ctx context.Context, req BlendRequest) (*Result, error) {
	if err := timeline.Validate(len(req.Clips), req.Policy); err != nil {
		return nil, err
	}
	if req.Output == "" {
		return nil, ErrNoOutput
	}

	runID := uuid.NewString()
	logger := logging.WithRun(p.logger, runID)

	logger.Info().
		Int("clips", len(req.Clips)).
		Str("policy", req.Policy.String()).
		Str("output", req.Output).
		Msg("starting blend pipeline")

	// Stage 1: probe clips and compile the graph
	compiled, err := p.compiler.Compile(ctx, req.Clips, req.Policy)
	if err != nil {
		logger.Error().Err(err).Msg("timeline compilation failed")
		return nil, err
	}

	total, _ := compiled.Duration()
	logger.Info().
		Int("junctions", len(compiled.Junctions)).
		Float64("output_duration", total).
		Msg("timeline compiled")

	// Stage 2: encode
	if err := util.EnsureParentDir(req.Output); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	opts := p.EncodeOptions(compiled, req.Output)
	opts.ProgressFunc = req.ProgressFunc

	if err := p.encoder.Blend(ctx, opts); err != nil {
		logger.Error().Err(err).Msg("encode failed")
		return nil, err
	}

	logger.Info().
		Str("output", req.Output).
		Msg("blend pipeline complete")

	return &Result{
		RunID:    runID,
		Output:   req.Output,
		Compiled: compiled,
	}, nil
}

// BlendAsync runs Blend in the background and reports through cb
func (p *Pipeline) BlendAsync(ctx context.Context, req BlendRequest, cb Callback) {
	go func() {
		res, err := p.Blend(ctx, req)
		if err != nil {
			cb(err, "")
			return
		}
		cb(nil, res.Output)
	}()
}
