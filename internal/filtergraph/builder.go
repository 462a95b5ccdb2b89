package filtergraph

import (
	"strconv"

	"github.com/kikiluvv/slopblend/pkg/util"
)

// Builder helps construct a single graph segment
type Builder struct {
	seg Segment
}

// NewFilter starts a segment for the named filter
func NewFilter(name string) *Builder {
	return &Builder{
		seg: Segment{Filter: name},
	}
}

// In appends input pads
func (b *Builder) In(labels ...Label) *Builder {
	b.seg.Inputs = append(b.seg.Inputs, labels...)
	return b
}

// Set adds a key=value option
func (b *Builder) Set(key, value string) *Builder {
	b.seg.Params = append(b.seg.Params, Param{Key: key, Value: value})
	return b
}

// Seconds adds an option holding a time in seconds, unrounded
func (b *Builder) Seconds(key string, v float64) *Builder {
	return b.Set(key, util.FormatSeconds(v))
}

// Int adds an integer option
func (b *Builder) Int(key string, v int) *Builder {
	return b.Set(key, strconv.Itoa(v))
}

// Positional adds a value without a key
func (b *Builder) Positional(value string) *Builder {
	b.seg.Params = append(b.seg.Params, Param{Value: value})
	return b
}

// Out sets the output pad
func (b *Builder) Out(label Label) *Builder {
	b.seg.Output = label
	return b
}

// Build returns the finished segment
func (b *Builder) Build() Segment {
	seg := b.seg
	seg.Inputs = append([]Label(nil), b.seg.Inputs...)
	seg.Params = append([]Param(nil), b.seg.Params...)
	return seg
}
