package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kikiluvv/slopblend/internal/ffmpeg"
	"github.com/kikiluvv/slopblend/internal/timeline"
	"github.com/kikiluvv/slopblend/internal/transition"
)

type contextKey string

const configKey contextKey = "config"

// Config holds all application configuration
type Config struct {
	FFmpeg   FFmpegConfig   `yaml:"ffmpeg"`
	Audio    AudioConfig    `yaml:"audio"`
	Timeline TimelineConfig `yaml:"timeline"`
	Server   ServerConfig   `yaml:"server"`
}

type FFmpegConfig struct {
	FFmpegPath  string `yaml:"ffmpeg_path"`
	FFprobePath string `yaml:"ffprobe_path"`
	Threads     int    `yaml:"threads"`
	VideoCodec  string `yaml:"video_codec"`
	CRF         int    `yaml:"crf"`
	Preset      string `yaml:"preset"`
	PixelFormat string `yaml:"pixel_format"`
	MovFlags    string `yaml:"movflags"`
}

type AudioConfig struct {
	SampleFormat  string `yaml:"sample_format"`
	SampleRate    int    `yaml:"sample_rate"`
	ChannelLayout string `yaml:"channel_layout"`
}

type TimelineConfig struct {
	DefaultTransition string  `yaml:"default_transition"`
	DefaultDuration   float64 `yaml:"default_duration"`
	ProbeWorkers      int     `yaml:"probe_workers"`
}

type ServerConfig struct {
	Addr         string        `yaml:"addr"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	BlendTimeout time.Duration `yaml:"blend_timeout"`
}

// Load reads configuration from file or returns defaults
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	if path == "" {
		path = findConfigFile()
	}

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}

// Save writes configuration to file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Validate checks values that would otherwise fail deep inside ffmpeg
func (c *Config) Validate() error {
	if _, err := transition.ParseKind(c.Timeline.DefaultTransition); err != nil {
		return fmt.Errorf("timeline.default_transition: %w", err)
	}
	if c.Timeline.DefaultDuration <= 0 {
		return fmt.Errorf("timeline.default_duration must be positive")
	}
	if c.FFmpeg.CRF < 0 || c.FFmpeg.CRF > 51 {
		return fmt.Errorf("ffmpeg.crf must be between 0 and 51")
	}
	if c.Audio.SampleRate <= 0 {
		return fmt.Errorf("audio.sample_rate must be positive")
	}

	formats := []struct{ key, value string }{
		{"ffmpeg.pixel_format", c.FFmpeg.PixelFormat},
		{"audio.sample_format", c.Audio.SampleFormat},
		{"audio.channel_layout", c.Audio.ChannelLayout},
	}
	for _, f := range formats {
		if err := validateFormatName(f.value); err != nil {
			return fmt.Errorf("%s: %w", f.key, err)
		}
	}
	return nil
}

// filter graph syntax characters; a format name containing one would split
// or rename segments of -filter_complex
const graphSpecial = "\\':,;[] \t\n"

func validateFormatName(v string) error {
	if v == "" {
		return fmt.Errorf("must not be empty")
	}
	if i := strings.IndexAny(v, graphSpecial); i >= 0 {
		return fmt.Errorf("%q contains %q", v, v[i])
	}
	return nil
}

// DefaultPolicy returns the uniform policy described by the timeline section
func (c *Config) DefaultPolicy() transition.Policy {
	kind, err := transition.ParseKind(c.Timeline.DefaultTransition)
	if err != nil {
		kind = transition.Fade
	}
	return transition.Uniform(kind, c.Timeline.DefaultDuration)
}

// ExecutorOptions maps the ffmpeg section onto executor options
func (c *Config) ExecutorOptions() ffmpeg.Options {
	return ffmpeg.Options{
		FFmpegPath:  c.FFmpeg.FFmpegPath,
		FFprobePath: c.FFmpeg.FFprobePath,
		Threads:     c.FFmpeg.Threads,
	}
}

// TimelineOptions maps output normalisation and probing onto compiler options
func (c *Config) TimelineOptions() timeline.Options {
	return timeline.Options{
		PixelFormat:   c.FFmpeg.PixelFormat,
		SampleFormat:  c.Audio.SampleFormat,
		SampleRate:    c.Audio.SampleRate,
		ChannelLayout: c.Audio.ChannelLayout,
		ProbeWorkers:  c.Timeline.ProbeWorkers,
	}
}

// BlendOptions returns encoding parameters for an ffmpeg blend
func (c *Config) BlendOptions() ffmpeg.BlendOptions {
	return ffmpeg.BlendOptions{
		VideoCodec: c.FFmpeg.VideoCodec,
		CRF:        c.FFmpeg.CRF,
		Preset:     c.FFmpeg.Preset,
		MovFlags:   c.FFmpeg.MovFlags,
	}
}

// Default returns the built-in configuration
func Default() *Config {
	return defaultConfig()
}

func defaultConfig() *Config {
	tl := timeline.DefaultOptions()
	return &Config{
		FFmpeg: FFmpegConfig{
			FFmpegPath:  "ffmpeg",
			FFprobePath: "ffprobe",
			Threads:     0,
			VideoCodec:  ffmpeg.DefaultVideoCodec,
			CRF:         ffmpeg.DefaultCRF,
			Preset:      ffmpeg.DefaultPreset,
			PixelFormat: tl.PixelFormat,
			MovFlags:    ffmpeg.DefaultMovFlags,
		},
		Audio: AudioConfig{
			SampleFormat:  tl.SampleFormat,
			SampleRate:    tl.SampleRate,
			ChannelLayout: tl.ChannelLayout,
		},
		Timeline: TimelineConfig{
			DefaultTransition: string(transition.Fade),
			DefaultDuration:   transition.DefaultDuration,
			ProbeWorkers:      tl.ProbeWorkers,
		},
		Server: ServerConfig{
			Addr:         "127.0.0.1:8790",
			ReadTimeout:  15 * time.Second,
			BlendTimeout: 30 * time.Minute,
		},
	}
}

func findConfigFile() string {
	candidates := []string{
		"./slopblend.yaml",
		"./slopblend.yml",
		filepath.Join(os.Getenv("HOME"), ".slopblend", "config.yaml"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// WithConfig stores config in context
func WithConfig(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey, cfg)
}

// FromContext retrieves config from context
func FromContext(ctx context.Context) *Config {
	if cfg, ok := ctx.Value(configKey).(*Config); ok {
		return cfg
	}
	return defaultConfig()
}
