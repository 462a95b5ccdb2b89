package ffmpeg

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
)

const stderrTailLines = 20

// ExecutionError reports a failed ffmpeg run with the tail of its log
type ExecutionError struct {
	Output string
	Err    error
	Stderr []string
}

func (e *ExecutionError) Error() string {
	if len(e.Stderr) == 0 {
		return fmt.Sprintf("encode %s: %v", e.Output, e.Err)
	}
	return fmt.Sprintf("encode %s: %v: %s", e.Output, e.Err, strings.Join(e.Stderr, "\n"))
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}

// BlendArgs builds the ffmpeg arguments that execute a transition graph:
// one -i per clip, the combined filter graph, the output maps and the
// encoding parameters
func BlendArgs(opts BlendOptions) []string {
	args := make([]string, 0, 2*len(opts.Inputs)+16)
	for _, in := range opts.Inputs {
		args = append(args, "-i", in)
	}

	args = append(args, "-filter_complex", opts.Graph.String())
	args = append(args, opts.Graph.MapArgs()...)

	codec := opts.VideoCodec
	if codec == "" {
		codec = DefaultVideoCodec
	}
	crf := opts.CRF
	if crf == 0 {
		crf = DefaultCRF
	}
	preset := opts.Preset
	if preset == "" {
		preset = DefaultPreset
	}
	movflags := opts.MovFlags
	if movflags == "" {
		movflags = DefaultMovFlags
	}

	args = append(args,
		"-c:v", codec,
		"-crf", strconv.Itoa(crf),
		"-preset", preset,
		"-movflags", movflags,
		opts.Output,
	)
	return args
}

// CommandLine returns the full argv ffmpeg would be started with
func (e *Executor) CommandLine(opts BlendOptions) []string {
	argv := []string{e.ffmpegPath}
	argv = append(argv, e.baseArgs()...)
	return append(argv, BlendArgs(opts)...)
}

// Blend runs ffmpeg over a compiled transition graph
func (e *Executor) Blend(ctx context.Context, opts BlendOptions) error {
	if err := validateBlendOptions(opts); err != nil {
		return fmt.Errorf("invalid blend options: %w", err)
	}

	e.logger.Info().
		Int("inputs", len(opts.Inputs)).
		Str("output", opts.Output).
		Msg("starting blend")

	tail := newLineTail(stderrTailLines)
	runOpts := RunOptions{
		Args:            BlendArgs(opts),
		ProgressHandler: opts.ProgressFunc,
		Duration:        opts.Duration,
		LogHandler: func(line string) {
			tail.Add(line)
			e.logger.Debug().Str("ffmpeg", line).Msg("blend output")
		},
	}

	if err := e.Run(ctx, runOpts); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &ExecutionError{Output: opts.Output, Err: err, Stderr: tail.Lines()}
	}

	e.logger.Info().Str("output", opts.Output).Msg("blend completed")
	return nil
}

func validateBlendOptions(opts BlendOptions) error {
	if len(opts.Inputs) < 2 {
		return fmt.Errorf("at least two inputs are required")
	}
	if opts.Output == "" {
		return fmt.Errorf("output path is required")
	}
	if opts.Graph == nil || len(opts.Graph.Video) == 0 || len(opts.Graph.Audio) == 0 {
		return fmt.Errorf("filter graph cannot be empty")
	}
	if opts.CRF < 0 || opts.CRF > 51 {
		return fmt.Errorf("CRF must be between 0 and 51")
	}
	return nil
}

// lineTail keeps the last n lines written to it
type lineTail struct {
	mu    sync.Mutex
	max   int
	lines []string
}

func newLineTail(max int) *lineTail {
	return &lineTail{max: max}
}

func (t *lineTail) Add(line string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lines = append(t.lines, line)
	if len(t.lines) > t.max {
		t.lines = t.lines[len(t.lines)-t.max:]
	}
}

func (t *lineTail) Lines() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.lines...)
}
