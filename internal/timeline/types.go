package timeline

import (
	"context"

	"github.com/kikiluvv/slopblend/internal/filtergraph"
	"github.com/kikiluvv/slopblend/internal/transition"
)

// Resolver looks up the playable duration of a clip in seconds
type Resolver interface {
	ProbeDuration(ctx context.Context, clip string) (float64, error)
}

// ResolverFunc adapts a function to Resolver
type ResolverFunc func(ctx context.Context, clip string) (float64, error)

func (f ResolverFunc) ProbeDuration(ctx context.Context, clip string) (float64, error) {
	return f(ctx, clip)
}

// Clip is one input with its resolved duration
type Clip struct {
	Index    int     `json:"index"`
	Path     string  `json:"path"`
	Duration float64 `json:"duration"`
	Resolved bool    `json:"resolved"`
}

// Junction is the transition between clip Index and clip Index+1
type Junction struct {
	Index      int               `json:"index"`
	Transition transition.Spec   `json:"transition"`
	Offset     float64           `json:"offset"`
	VideoIn    filtergraph.Label `json:"video_in"`
	AudioIn    filtergraph.Label `json:"audio_in"`
	VideoOut   filtergraph.Label `json:"video_out"`
	AudioOut   filtergraph.Label `json:"audio_out"`
}

// Compiled is the result of one compilation
type Compiled struct {
	Clips     []Clip
	Junctions []Junction
	Graph     *filtergraph.Graph
}

// Inputs returns the clip paths in input order
func (c *Compiled) Inputs() []string {
	out := make([]string, len(c.Clips))
	for i, clip := range c.Clips {
		out[i] = clip.Path
	}
	return out
}

// Duration returns the composed output length. It is only known when the
// last clip was resolved.
func (c *Compiled) Duration() (float64, bool) {
	if len(c.Clips) == 0 || len(c.Junctions) == 0 {
		return 0, false
	}
	last := c.Clips[len(c.Clips)-1]
	if !last.Resolved {
		return 0, false
	}
	return c.Junctions[len(c.Junctions)-1].Offset + last.Duration, true
}

// Options controls graph emission and probing
type Options struct {
	PixelFormat   string
	SampleFormat  string
	SampleRate    int
	ChannelLayout string

	// ProbeWorkers > 1 resolves all durations concurrently before the
	// offsets are accumulated
	ProbeWorkers int

	// ResolveLast also probes the final clip so Duration is available
	ResolveLast bool
}

// DefaultOptions returns the stock output normalisation
func DefaultOptions() Options {
	return Options{
		PixelFormat:   "yuv420p",
		SampleFormat:  "fltp",
		SampleRate:    44100,
		ChannelLayout: "stereo",
		ProbeWorkers:  1,
	}
}
