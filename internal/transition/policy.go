package transition

import "fmt"

// DefaultDuration is the transition length used when none is given
const DefaultDuration = 0.5

// Spec pairs a transition effect with its length in seconds.
// Duration must be shorter than both clips it joins; the caller owns that.
type Spec struct {
	Kind     Kind    `yaml:"transition" json:"transition"`
	Duration float64 `yaml:"duration" json:"duration"`
}

// Policy selects the transition used at each junction. It is either
// uniform (one Spec everywhere) or per-junction (one Spec per clip, the
// last entry unused).
type Policy struct {
	uniform  Spec
	junction []Spec
	explicit bool
}

// Uniform applies the same transition at every junction
func Uniform(kind Kind, duration float64) Policy {
	return Policy{uniform: Spec{Kind: kind, Duration: duration}}
}

// PerJunction applies specs[i] at junction i
func PerJunction(specs []Spec) Policy {
	cp := make([]Spec, len(specs))
	copy(cp, specs)
	return Policy{junction: cp, explicit: true}
}

// IsPerJunction reports whether the policy carries an explicit list
func (p Policy) IsPerJunction() bool {
	return p.explicit
}

// Len returns the length of the explicit list, or 0 for a uniform policy
func (p Policy) Len() int {
	return len(p.junction)
}

// At returns the transition for junction i
func (p Policy) At(i int) Spec {
	if p.explicit {
		return p.junction[i]
	}
	return p.uniform
}

// Specs returns a copy of the explicit list, or nil for a uniform policy
func (p Policy) Specs() []Spec {
	if !p.explicit {
		return nil
	}
	out := make([]Spec, len(p.junction))
	copy(out, p.junction)
	return out
}

func (p Policy) String() string {
	if p.explicit {
		return fmt.Sprintf("per-junction(%d)", len(p.junction))
	}
	return fmt.Sprintf("uniform(%s, %gs)", p.uniform.Kind, p.uniform.Duration)
}
