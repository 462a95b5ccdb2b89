package filtergraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStreamLabel(t *testing.T) {
	assert.Equal(t, "[0:v]", Stream(0, Video).String())
	assert.Equal(t, "[3:a]", Stream(3, Audio).String())
}

func TestBuilderXfade(t *testing.T) {
	seg := NewFilter("xfade").
		In(Stream(0, Video), Stream(1, Video)).
		Set("transition", "fade").
		Seconds("duration", 1).
		Seconds("offset", 9).
		Out("vfade1").
		Build()

	assert.Equal(t, "[0:v][1:v]xfade=transition=fade:duration=1:offset=9[vfade1]", seg.String())

	v, ok := seg.Param("offset")
	assert.True(t, ok)
	assert.Equal(t, "9", v)

	_, ok = seg.Param("missing")
	assert.False(t, ok)
}

func TestBuilderPositional(t *testing.T) {
	seg := NewFilter("format").In("vfade2").Positional("yuv420p").Out("vout").Build()
	assert.Equal(t, "[vfade2]format=yuv420p[vout]", seg.String())
}

func TestBuilderBuildCopies(t *testing.T) {
	b := NewFilter("acrossfade").In("0:a", "1:a")
	first := b.Build()
	b.In("2:a")

	assert.Len(t, first.Inputs, 2)
}

func TestBuilderNoParams(t *testing.T) {
	seg := NewFilter("null").In("0:v").Out("v").Build()
	assert.Equal(t, "[0:v]null[v]", seg.String())
}

func TestParamEscaping(t *testing.T) {
	assert.Equal(t, `text=a\:b\'c`, Param{Key: "text", Value: "a:b'c"}.String())
}

func TestGraphString(t *testing.T) {
	g := &Graph{
		Video: []Segment{
			NewFilter("xfade").In("0:v", "1:v").Set("transition", "wipeleft").Seconds("duration", 0.5).Seconds("offset", 4.5).Out("vfade1").Build(),
			NewFilter("format").In("vfade1").Positional("yuv420p").Out("vout").Build(),
		},
		Audio: []Segment{
			NewFilter("acrossfade").In("0:a", "1:a").Seconds("d", 0.5).Out("afade1").Build(),
			NewFilter("aformat").In("afade1").Set("sample_fmts", "fltp").Int("sample_rates", 44100).Set("channel_layouts", "stereo").Out("aout").Build(),
		},
		VideoOut: "vout",
		AudioOut: "aout",
	}

	assert.Equal(t,
		"[0:v][1:v]xfade=transition=wipeleft:duration=0.5:offset=4.5[vfade1];[vfade1]format=yuv420p[vout]",
		g.VideoChain())
	assert.Equal(t,
		"[0:a][1:a]acrossfade=d=0.5[afade1];[afade1]aformat=sample_fmts=fltp:sample_rates=44100:channel_layouts=stereo[aout]",
		g.AudioChain())
	assert.Equal(t, g.VideoChain()+";"+g.AudioChain(), g.String())
	assert.Equal(t, []string{"-map", "[vout]", "-map", "[aout]"}, g.MapArgs())
	assert.Len(t, g.Segments(), 4)
}
