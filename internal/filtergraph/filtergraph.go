// Package filtergraph models an ffmpeg -filter_complex graph as ordered,
// typed segment records. Nothing is rendered to ffmpeg's textual syntax
// until String is called.
package filtergraph

import (
	"fmt"
	"strings"
)

// MediaType selects the video or audio stream of an input
type MediaType string

const (
	Video MediaType = "v"
	Audio MediaType = "a"
)

// Label names one stream inside the graph, without brackets
type Label string

// Stream returns the native stream label of input file n, e.g. "1:v"
func Stream(n int, t MediaType) Label {
	return Label(fmt.Sprintf("%d:%s", n, t))
}

// String renders the label in pad syntax, e.g. "[vfade1]"
func (l Label) String() string {
	return "[" + string(l) + "]"
}

// Param is one filter option. An empty Key renders the value positionally.
type Param struct {
	Key   string
	Value string
}

func (p Param) String() string {
	if p.Key == "" {
		return escapeValue(p.Value)
	}
	return p.Key + "=" + escapeValue(p.Value)
}

// Segment is one filter invocation: inputs, filter, options, output
type Segment struct {
	Inputs []Label
	Filter string
	Params []Param
	Output Label
}

// Param returns the value of the named option
func (s Segment) Param(key string) (string, bool) {
	for _, p := range s.Params {
		if p.Key == key {
			return p.Value, true
		}
	}
	return "", false
}

func (s Segment) String() string {
	var b strings.Builder
	for _, in := range s.Inputs {
		b.WriteString(in.String())
	}
	b.WriteString(s.Filter)
	if len(s.Params) > 0 {
		parts := make([]string, len(s.Params))
		for i, p := range s.Params {
			parts[i] = p.String()
		}
		b.WriteString("=")
		b.WriteString(strings.Join(parts, ":"))
	}
	if s.Output != "" {
		b.WriteString(s.Output.String())
	}
	return b.String()
}

// Graph is a complete filter graph with its two mapped outputs
type Graph struct {
	Video    []Segment
	Audio    []Segment
	VideoOut Label
	AudioOut Label
}

// Segments returns video segments followed by audio segments
func (g *Graph) Segments() []Segment {
	out := make([]Segment, 0, len(g.Video)+len(g.Audio))
	out = append(out, g.Video...)
	return append(out, g.Audio...)
}

// VideoChain renders only the video segments
func (g *Graph) VideoChain() string {
	return join(g.Video)
}

// AudioChain renders only the audio segments
func (g *Graph) AudioChain() string {
	return join(g.Audio)
}

// String renders the graph as a single -filter_complex argument
func (g *Graph) String() string {
	return join(g.Segments())
}

// MapArgs returns the -map arguments selecting both outputs
func (g *Graph) MapArgs() []string {
	return []string{"-map", g.VideoOut.String(), "-map", g.AudioOut.String()}
}

func join(segs []Segment) string {
	parts := make([]string, len(segs))
	for i, s := range segs {
		parts[i] = s.String()
	}
	return strings.Join(parts, ";")
}

// escapeValue escapes characters ffmpeg treats as option separators
func escapeValue(v string) string {
	v = strings.ReplaceAll(v, "\\", "\\\\")
	v = strings.ReplaceAll(v, "'", "\\'")
	v = strings.ReplaceAll(v, ":", "\\:")
	return v
}
