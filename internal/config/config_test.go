package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kikiluvv/slopblend/internal/transition"
)

func TestDefaults(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 23, cfg.FFmpeg.CRF)
	assert.Equal(t, "fast", cfg.FFmpeg.Preset)
	assert.Equal(t, "+faststart", cfg.FFmpeg.MovFlags)
	assert.Equal(t, "yuv420p", cfg.FFmpeg.PixelFormat)
	assert.Equal(t, 44100, cfg.Audio.SampleRate)
	assert.Equal(t, 0.5, cfg.Timeline.DefaultDuration)

	policy := cfg.DefaultPolicy()
	assert.False(t, policy.IsPerJunction())
	assert.Equal(t, transition.Spec{Kind: transition.Fade, Duration: 0.5}, policy.At(0))
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverridesAndSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "slopblend.yaml")
	data := `
ffmpeg:
  crf: 18
  preset: slow
audio:
  sample_rate: 48000
timeline:
  default_transition: dissolve
  default_duration: 1.25
  probe_workers: 4
server:
  addr: ":9000"
  blend_timeout: 5m
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 18, cfg.FFmpeg.CRF)
	assert.Equal(t, "slow", cfg.FFmpeg.Preset)
	assert.Equal(t, "libx264", cfg.FFmpeg.VideoCodec)
	assert.Equal(t, 48000, cfg.Audio.SampleRate)
	assert.Equal(t, "stereo", cfg.Audio.ChannelLayout)
	assert.Equal(t, 4, cfg.TimelineOptions().ProbeWorkers)
	assert.Equal(t, 5*time.Minute, cfg.Server.BlendTimeout)
	assert.Equal(t, transition.Spec{Kind: transition.Dissolve, Duration: 1.25}, cfg.DefaultPolicy().At(3))

	out := filepath.Join(t.TempDir(), "saved.yaml")
	require.NoError(t, cfg.Save(out))
	again, err := Load(out)
	require.NoError(t, err)
	assert.Equal(t, cfg, again)
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"unknown transition":   "timeline:\n  default_transition: spin\n",
		"zero duration":        "timeline:\n  default_duration: 0\n",
		"crf out of range":     "ffmpeg:\n  crf: 70\n",
		"bad yaml":             "ffmpeg: [",
		"empty pixel format":   "ffmpeg:\n  pixel_format: \"\"\n",
		"empty sample format":  "audio:\n  sample_format: \"\"\n",
		"empty channel layout": "audio:\n  channel_layout: \"\"\n",
		"layout with comma":    "audio:\n  channel_layout: \"stereo,volume=2\"\n",
		"pixfmt with bracket":  "ffmpeg:\n  pixel_format: \"yuv420p[x]\"\n",
		"format with colon":    "audio:\n  sample_format: \"fltp:x\"\n",
	}

	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "c.yaml")
			require.NoError(t, os.WriteFile(path, []byte(body), 0644))
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestValidateAcceptsLayoutNames(t *testing.T) {
	cfg := Default()
	cfg.Audio.ChannelLayout = "5.1(side)"
	cfg.FFmpeg.PixelFormat = "yuv420p10le"
	assert.NoError(t, cfg.Validate())
}

func TestContextRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.FFmpeg.Threads = 7

	ctx := WithConfig(context.Background(), cfg)
	assert.Same(t, cfg, FromContext(ctx))
	assert.Equal(t, Default(), FromContext(context.Background()))
}

func TestDerivedOptions(t *testing.T) {
	cfg := Default()
	cfg.FFmpeg.Threads = 3

	assert.Equal(t, 3, cfg.ExecutorOptions().Threads)
	assert.Equal(t, "ffprobe", cfg.ExecutorOptions().FFprobePath)

	tl := cfg.TimelineOptions()
	assert.Equal(t, "yuv420p", tl.PixelFormat)
	assert.Equal(t, "fltp", tl.SampleFormat)
	assert.False(t, tl.ResolveLast)

	bo := cfg.BlendOptions()
	assert.Equal(t, 23, bo.CRF)
	assert.Equal(t, "libx264", bo.VideoCodec)
}
