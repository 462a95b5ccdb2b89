package ffmpeg

import "github.com/kikiluvv/slopblend/internal/filtergraph"

// Progress represents ffmpeg progress data
type Progress struct {
	Frame      int
	FPS        float64
	Bitrate    string
	Time       string
	Seconds    float64
	Speed      string
	Percentage float64
}

// RunOptions configures ffmpeg execution
type RunOptions struct {
	Args            []string
	ProgressHandler func(*Progress)
	LogHandler      func(line string)

	// Duration of the expected output in seconds; enables Percentage
	Duration float64
}

// Default encoding settings
const (
	DefaultCRF        = 23
	DefaultPreset     = "fast"
	DefaultVideoCodec = "libx264"
	DefaultMovFlags   = "+faststart"
)

// Options configures an Executor
type Options struct {
	FFmpegPath  string
	FFprobePath string
	Threads     int
}

// BlendOptions configures execution of a compiled transition graph
type BlendOptions struct {
	Inputs       []string
	Output       string
	Graph        *filtergraph.Graph
	VideoCodec   string
	CRF          int
	Preset       string
	MovFlags     string
	Duration     float64
	ProgressFunc ProgressFunc
}

// ProgressFunc is a callback for progress updates during ffmpeg operations.
// Called periodically with progress information as the operation executes.
type ProgressFunc func(*Progress)
