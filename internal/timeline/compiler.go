// Package timeline turns an ordered clip list and a transition policy into
// junction offsets and an xfade/acrossfade filter graph.
package timeline

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/kikiluvv/slopblend/internal/filtergraph"
	"github.com/kikiluvv/slopblend/internal/transition"
)

const (
	OutputVideo filtergraph.Label = "vout"
	OutputAudio filtergraph.Label = "aout"
)

// Compiler builds filter graphs for chained clips
type Compiler struct {
	logger   zerolog.Logger
	resolver Resolver
	opts     Options
}

// New creates a compiler that probes clips through resolver
func New(logger zerolog.Logger, resolver Resolver, opts Options) *Compiler {
	return &Compiler{
		logger:   logger.With().Str("component", "timeline").Logger(),
		resolver: resolver,
		opts:     opts,
	}
}

// Validate checks the inputs without probing anything
func Validate(clipCount int, policy transition.Policy) error {
	if clipCount < 2 {
		return ErrInsufficientInputs
	}
	if policy.IsPerJunction() && policy.Len() != clipCount {
		return &TransitionCountMismatchError{Clips: clipCount, Transitions: policy.Len()}
	}
	return nil
}

// Compile resolves clip durations in order and emits one junction per
// adjacent pair. Any probe failure aborts with a *ProbeError.
func (c *Compiler) Compile(ctx context.Context, clips []string, policy transition.Policy) (*Compiled, error) {
	if err := Validate(len(clips), policy); err != nil {
		return nil, err
	}

	c.logger.Debug().
		Int("clips", len(clips)).
		Str("policy", policy.String()).
		Msg("compiling timeline")

	probeCount := len(clips) - 1
	if c.opts.ResolveLast {
		probeCount = len(clips)
	}
	duration := c.durationSource(ctx, clips[:probeCount])

	out := &Compiled{
		Clips:     make([]Clip, len(clips)),
		Junctions: make([]Junction, 0, len(clips)-1),
		Graph: &filtergraph.Graph{
			VideoOut: OutputVideo,
			AudioOut: OutputAudio,
		},
	}
	for i, path := range clips {
		out.Clips[i] = Clip{Index: i, Path: path}
	}

	prevVideo := filtergraph.Stream(0, filtergraph.Video)
	prevAudio := filtergraph.Stream(0, filtergraph.Audio)
	cumulative := 0.0

	for i := 0; i < len(clips)-1; i++ {
		d, err := duration(i)
		if err != nil {
			return nil, &ProbeError{Index: i, Clip: clips[i], Err: err}
		}
		out.Clips[i].Duration = d
		out.Clips[i].Resolved = true

		spec := policy.At(i)
		offset := cumulative + d - spec.Duration
		cumulative = offset

		next := i + 1
		videoOut := filtergraph.Label(fmt.Sprintf("vfade%d", next))
		audioOut := filtergraph.Label(fmt.Sprintf("afade%d", next))

		out.Graph.Video = append(out.Graph.Video, filtergraph.NewFilter("xfade").
			In(prevVideo, filtergraph.Stream(next, filtergraph.Video)).
			Set("transition", spec.Kind.String()).
			Seconds("duration", spec.Duration).
			Seconds("offset", offset).
			Out(videoOut).
			Build())

		out.Graph.Audio = append(out.Graph.Audio, filtergraph.NewFilter("acrossfade").
			In(prevAudio, filtergraph.Stream(next, filtergraph.Audio)).
			Seconds("d", spec.Duration).
			Out(audioOut).
			Build())

		out.Junctions = append(out.Junctions, Junction{
			Index:      i,
			Transition: spec,
			Offset:     offset,
			VideoIn:    prevVideo,
			AudioIn:    prevAudio,
			VideoOut:   videoOut,
			AudioOut:   audioOut,
		})

		c.logger.Debug().
			Int("junction", i).
			Str("transition", spec.Kind.String()).
			Float64("clip_duration", d).
			Float64("transition_duration", spec.Duration).
			Float64("offset", offset).
			Msg("junction compiled")

		prevVideo, prevAudio = videoOut, audioOut
	}

	if c.opts.ResolveLast {
		last := len(clips) - 1
		d, err := duration(last)
		if err != nil {
			return nil, &ProbeError{Index: last, Clip: clips[last], Err: err}
		}
		out.Clips[last].Duration = d
		out.Clips[last].Resolved = true
	}

	out.Graph.Video = append(out.Graph.Video, filtergraph.NewFilter("format").
		In(prevVideo).
		Positional(c.opts.PixelFormat).
		Out(OutputVideo).
		Build())

	out.Graph.Audio = append(out.Graph.Audio, filtergraph.NewFilter("aformat").
		In(prevAudio).
		Set("sample_fmts", c.opts.SampleFormat).
		Int("sample_rates", c.opts.SampleRate).
		Set("channel_layouts", c.opts.ChannelLayout).
		Out(OutputAudio).
		Build())

	return out, nil
}

// durationSource returns a lookup yielding the duration of clip i. With a
// single worker each call probes on demand; otherwise every clip is probed
// up front by a bounded pool and lookups only read the results.
func (c *Compiler) durationSource(ctx context.Context, clips []string) func(i int) (float64, error) {
	if c.opts.ProbeWorkers <= 1 {
		return func(i int) (float64, error) {
			if err := ctx.Err(); err != nil {
				return 0, err
			}
			return c.resolver.ProbeDuration(ctx, clips[i])
		}
	}

	durations := make([]float64, len(clips))
	errs := make([]error, len(clips))

	var g errgroup.Group
	g.SetLimit(c.opts.ProbeWorkers)
	for i, clip := range clips {
		i, clip := i, clip // per-iteration copy; go directive is 1.21 (pre-1.22 loopvar semantics)
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				errs[i] = err
				return nil
			}
			durations[i], errs[i] = c.resolver.ProbeDuration(ctx, clip)
			return nil
		})
	}
	_ = g.Wait()

	c.logger.Debug().
		Int("clips", len(clips)).
		Int("workers", c.opts.ProbeWorkers).
		Msg("durations prefetched")

	return func(i int) (float64, error) {
		return durations[i], errs[i]
	}
}
