package pipeline

import (
	"context"

	"github.com/kikiluvv/slopblend/internal/ffmpeg"
	"github.com/kikiluvv/slopblend/internal/timeline"
	"github.com/kikiluvv/slopblend/internal/transition"
)

// Encoder executes a compiled graph
type Encoder interface {
	Blend(ctx context.Context, opts ffmpeg.BlendOptions) error
}

// BlendRequest describes one blend job
type BlendRequest struct {
	Clips        []string
	Output       string
	Policy       transition.Policy
	ProgressFunc ffmpeg.ProgressFunc
}

// Result is a finished blend
type Result struct {
	RunID    string
	Output   string
	Compiled *timeline.Compiled
}

// Callback receives the outcome of BlendAsync: the first error, or the
// output path on success
type Callback func(err error, output string)
