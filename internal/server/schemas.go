package server

import (
	"github.com/kikiluvv/slopblend/internal/timeline"
)

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	UptimeS int64  `json:"uptime_s"`
}

type TransitionsResponse struct {
	Transitions []string `json:"transitions"`
	Default     string   `json:"default"`
	Duration    float64  `json:"default_duration"`
}

type TransitionRequest struct {
	Transition string  `json:"transition"`
	Duration   float64 `json:"duration"`
}

// BlendRequest is the body of /compile and /blend. Transitions, when
// present, must hold one entry per clip.
type BlendRequest struct {
	Clips       []string            `json:"clips"`
	Output      string              `json:"output,omitempty"`
	Transition  string              `json:"transition,omitempty"`
	Duration    float64             `json:"duration,omitempty"`
	Transitions []TransitionRequest `json:"transitions,omitempty"`
}

type JunctionResponse struct {
	Index      int     `json:"index"`
	Transition string  `json:"transition"`
	Duration   float64 `json:"duration"`
	Offset     float64 `json:"offset"`
	VideoIn    string  `json:"video_in"`
	VideoOut   string  `json:"video_out"`
	AudioIn    string  `json:"audio_in"`
	AudioOut   string  `json:"audio_out"`
}

type CompileResponse struct {
	Clips          []timeline.Clip    `json:"clips"`
	Junctions      []JunctionResponse `json:"junctions"`
	FilterComplex  string             `json:"filter_complex"`
	VideoOut       string             `json:"video_out"`
	AudioOut       string             `json:"audio_out"`
	OutputDuration *float64           `json:"output_duration,omitempty"`
}

type BlendResponse struct {
	RunID  string `json:"run_id"`
	Output string `json:"output"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// CompiledToResponse flattens a compiled timeline for the wire
func CompiledToResponse(c *timeline.Compiled) CompileResponse {
	resp := CompileResponse{
		Clips:         c.Clips,
		Junctions:     make([]JunctionResponse, len(c.Junctions)),
		FilterComplex: c.Graph.String(),
		VideoOut:      string(c.Graph.VideoOut),
		AudioOut:      string(c.Graph.AudioOut),
	}
	for i, j := range c.Junctions {
		resp.Junctions[i] = JunctionResponse{
			Index:      j.Index,
			Transition: j.Transition.Kind.String(),
			Duration:   j.Transition.Duration,
			Offset:     j.Offset,
			VideoIn:    string(j.VideoIn),
			VideoOut:   string(j.VideoOut),
			AudioIn:    string(j.AudioIn),
			AudioOut:   string(j.AudioOut),
		}
	}
	if d, ok := c.Duration(); ok {
		resp.OutputDuration = &d
	}
	return resp
}
