package transition

import (
	"fmt"
	"strings"
)

// Kind names an xfade transition effect
type Kind string

const (
	Fade        Kind = "fade"
	WipeLeft    Kind = "wipeleft"
	WipeRight   Kind = "wiperight"
	WipeUp      Kind = "wipeup"
	WipeDown    Kind = "wipedown"
	SlideLeft   Kind = "slideleft"
	SlideRight  Kind = "slideright"
	SlideUp     Kind = "slideup"
	SlideDown   Kind = "slidedown"
	CircleCrop  Kind = "circlecrop"
	RectCrop    Kind = "rectcrop"
	Distance    Kind = "distance"
	FadeBlack   Kind = "fadeblack"
	FadeWhite   Kind = "fadewhite"
	Radial      Kind = "radial"
	SmoothLeft  Kind = "smoothleft"
	SmoothRight Kind = "smoothright"
	SmoothUp    Kind = "smoothup"
	SmoothDown  Kind = "smoothdown"
	CircleOpen  Kind = "circleopen"
	CircleClose Kind = "circleclose"
	VertOpen    Kind = "vertopen"
	VertClose   Kind = "vertclose"
	HorzOpen    Kind = "horzopen"
	HorzClose   Kind = "horzclose"
	Dissolve    Kind = "dissolve"
	Pixelize    Kind = "pixelize"
	DiagTL      Kind = "diagtl"
	DiagTR      Kind = "diagtr"
	DiagBL      Kind = "diagbl"
	DiagBR      Kind = "diagbr"
	HLSlice     Kind = "hlslice"
	HRSlice     Kind = "hrslice"
	VUSlice     Kind = "vuslice"
	VDSlice     Kind = "vdslice"
	HBlur       Kind = "hblur"
	FadeGrays   Kind = "fadegrays"
	WipeTL      Kind = "wipetl"
	WipeTR      Kind = "wipetr"
	WipeBL      Kind = "wipebl"
	WipeBR      Kind = "wipebr"
	SqueezeH    Kind = "squeezeh"
	SqueezeV    Kind = "squeezev"
	ZoomIn      Kind = "zoomin"
	FadeFast    Kind = "fadefast"
	FadeSlow    Kind = "fadeslow"
	HLWind      Kind = "hlwind"
	HRWind      Kind = "hrwind"
	VUWind      Kind = "vuwind"
	VDWind      Kind = "vdwind"
	CoverLeft   Kind = "coverleft"
	CoverRight  Kind = "coverright"
	CoverUp     Kind = "coverup"
	CoverDown   Kind = "coverdown"
	RevealLeft  Kind = "revealleft"
	RevealRight Kind = "revealright"
	RevealUp    Kind = "revealup"
	RevealDown  Kind = "revealdown"
)

var kinds = []Kind{
	Fade, WipeLeft, WipeRight, WipeUp, WipeDown,
	SlideLeft, SlideRight, SlideUp, SlideDown,
	CircleCrop, RectCrop, Distance, FadeBlack, FadeWhite, Radial,
	SmoothLeft, SmoothRight, SmoothUp, SmoothDown,
	CircleOpen, CircleClose, VertOpen, VertClose, HorzOpen, HorzClose,
	Dissolve, Pixelize, DiagTL, DiagTR, DiagBL, DiagBR,
	HLSlice, HRSlice, VUSlice, VDSlice, HBlur, FadeGrays,
	WipeTL, WipeTR, WipeBL, WipeBR, SqueezeH, SqueezeV, ZoomIn,
	FadeFast, FadeSlow, HLWind, HRWind, VUWind, VDWind,
	CoverLeft, CoverRight, CoverUp, CoverDown,
	RevealLeft, RevealRight, RevealUp, RevealDown,
}

var known = func() map[Kind]struct{} {
	m := make(map[Kind]struct{}, len(kinds))
	for _, k := range kinds {
		m[k] = struct{}{}
	}
	return m
}()

// Kinds returns every supported transition in catalogue order
func Kinds() []Kind {
	out := make([]Kind, len(kinds))
	copy(out, kinds)
	return out
}

// Valid reports whether k is in the catalogue
func (k Kind) Valid() bool {
	_, ok := known[k]
	return ok
}

func (k Kind) String() string {
	return string(k)
}

// ParseKind resolves a case-insensitive transition name
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if !k.Valid() {
		return "", fmt.Errorf("unknown transition %q", s)
	}
	return k, nil
}
