package pipeline

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kikiluvv/slopblend/internal/config"
	"github.com/kikiluvv/slopblend/internal/ffmpeg"
	"github.com/kikiluvv/slopblend/internal/timeline"
	"github.com/kikiluvv/slopblend/internal/transition"
	"github.com/kikiluvv/slopblend/pkg/util"
)

type fakeEncoder struct {
	mu    sync.Mutex
	calls []ffmpeg.BlendOptions
	err   error
}

func (f *fakeEncoder) Blend(_ context.Context, opts ffmpeg.BlendOptions) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, opts)
	return f.err
}

type probeCounter struct {
	mu        sync.Mutex
	durations map[string]float64
	fail      map[string]error
	calls     int
}

func (p *probeCounter) ProbeDuration(_ context.Context, clip string) (float64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if err := p.fail[clip]; err != nil {
		return 0, err
	}
	return p.durations[clip], nil
}

func newTestPipeline(enc *fakeEncoder, probes *probeCounter) *Pipeline {
	return NewWithComponents(zerolog.Nop(), probes, enc, config.Default())
}

func TestBlendEncodesCompiledGraph(t *testing.T) {
	enc := &fakeEncoder{}
	probes := &probeCounter{durations: map[string]float64{"a.mp4": 10, "b.mp4": 8, "c.mp4": 12}}
	p := newTestPipeline(enc, probes)

	output := filepath.Join(t.TempDir(), "nested", "out.mp4")
	res, err := p.Blend(context.Background(), BlendRequest{
		Clips:  []string{"a.mp4", "b.mp4", "c.mp4"},
		Output: output,
		Policy: transition.Uniform(transition.Fade, 1),
	})
	require.NoError(t, err)

	assert.Equal(t, output, res.Output)
	assert.NotEmpty(t, res.RunID)
	assert.Len(t, res.Compiled.Junctions, 2)
	assert.True(t, util.FileExists(filepath.Dir(output)))

	require.Len(t, enc.calls, 1)
	call := enc.calls[0]
	assert.Equal(t, []string{"a.mp4", "b.mp4", "c.mp4"}, call.Inputs)
	assert.Equal(t, output, call.Output)
	assert.Equal(t, res.Compiled.Graph, call.Graph)
	assert.Equal(t, 28.0, call.Duration)
	assert.Equal(t, 3, probes.calls)
	assert.Equal(t, 23, call.CRF)
	assert.Equal(t, "fast", call.Preset)
	assert.Equal(t, "+faststart", call.MovFlags)
}

func TestBlendValidationSpawnsNothing(t *testing.T) {
	enc := &fakeEncoder{}
	probes := &probeCounter{}
	p := newTestPipeline(enc, probes)
	ctx := context.Background()

	_, err := p.Blend(ctx, BlendRequest{Clips: []string{"a.mp4"}, Output: "o.mp4", Policy: transition.Uniform(transition.Fade, 1)})
	assert.ErrorIs(t, err, timeline.ErrInsufficientInputs)

	_, err = p.Blend(ctx, BlendRequest{
		Clips:  []string{"a.mp4", "b.mp4"},
		Output: "o.mp4",
		Policy: transition.PerJunction([]transition.Spec{{Kind: transition.Fade, Duration: 1}}),
	})
	var mismatch *timeline.TransitionCountMismatchError
	assert.ErrorAs(t, err, &mismatch)

	_, err = p.Blend(ctx, BlendRequest{Clips: []string{"a.mp4", "b.mp4"}, Policy: transition.Uniform(transition.Fade, 1)})
	assert.ErrorIs(t, err, ErrNoOutput)

	assert.Zero(t, probes.calls)
	assert.Empty(t, enc.calls)
}

func TestBlendProbeFailureSkipsEncode(t *testing.T) {
	enc := &fakeEncoder{}
	probes := &probeCounter{
		durations: map[string]float64{"a.mp4": 5},
		fail:      map[string]error{"b.mp4": ffmpeg.ErrMalformedDuration},
	}
	p := newTestPipeline(enc, probes)

	_, err := p.Blend(context.Background(), BlendRequest{
		Clips:  []string{"a.mp4", "b.mp4", "c.mp4"},
		Output: filepath.Join(t.TempDir(), "o.mp4"),
		Policy: transition.Uniform(transition.Fade, 1),
	})

	var pe *timeline.ProbeError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 1, pe.Index)
	assert.ErrorIs(t, err, ffmpeg.ErrMalformedDuration)
	assert.Empty(t, enc.calls)
}

func TestBlendExecutionErrorPropagates(t *testing.T) {
	execErr := &ffmpeg.ExecutionError{Output: "o.mp4", Err: errors.New("exit status 1")}
	enc := &fakeEncoder{err: execErr}
	probes := &probeCounter{durations: map[string]float64{"a.mp4": 5, "b.mp4": 5}}
	p := newTestPipeline(enc, probes)

	_, err := p.Blend(context.Background(), BlendRequest{
		Clips:  []string{"a.mp4", "b.mp4"},
		Output: filepath.Join(t.TempDir(), "o.mp4"),
		Policy: transition.Uniform(transition.WipeLeft, 0.5),
	})

	var got *ffmpeg.ExecutionError
	require.ErrorAs(t, err, &got)
	assert.Same(t, execErr, got)
}

func TestBlendAsyncCallback(t *testing.T) {
	enc := &fakeEncoder{}
	probes := &probeCounter{durations: map[string]float64{"a.mp4": 5, "b.mp4": 5}}
	p := newTestPipeline(enc, probes)

	output := filepath.Join(t.TempDir(), "o.mp4")
	type outcome struct {
		err    error
		output string
	}
	done := make(chan outcome, 1)

	p.BlendAsync(context.Background(), BlendRequest{
		Clips:  []string{"a.mp4", "b.mp4"},
		Output: output,
		Policy: transition.Uniform(transition.Fade, 0.5),
	}, func(err error, out string) {
		done <- outcome{err, out}
	})

	select {
	case got := <-done:
		require.NoError(t, got.err)
		assert.Equal(t, output, got.output)
	case <-time.After(5 * time.Second):
		t.Fatal("callback was not invoked")
	}
}

func TestBlendAsyncReportsError(t *testing.T) {
	p := newTestPipeline(&fakeEncoder{}, &probeCounter{})
	done := make(chan error, 1)

	p.BlendAsync(context.Background(), BlendRequest{Clips: []string{"a.mp4"}, Output: "o.mp4"}, func(err error, out string) {
		assert.Empty(t, out)
		done <- err
	})

	select {
	case err := <-done:
		assert.ErrorIs(t, err, timeline.ErrInsufficientInputs)
	case <-time.After(5 * time.Second):
		t.Fatal("callback was not invoked")
	}
}

func TestCompileReportsDuration(t *testing.T) {
	probes := &probeCounter{durations: map[string]float64{"a.mp4": 5, "b.mp4": 5}}
	p := newTestPipeline(&fakeEncoder{}, probes)

	compiled, err := p.Compile(context.Background(), []string{"a.mp4", "b.mp4"}, transition.Uniform(transition.Fade, 0.5))
	require.NoError(t, err)
	assert.Equal(t, 2, probes.calls)

	d, ok := compiled.Duration()
	require.True(t, ok)
	assert.Equal(t, 9.5, d)

	bo := p.EncodeOptions(compiled, "o.mp4")
	assert.Equal(t, 9.5, bo.Duration)
	assert.Equal(t, "o.mp4", bo.Output)
	assert.Equal(t, []string{"a.mp4", "b.mp4"}, bo.Inputs)
}
