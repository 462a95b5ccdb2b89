package clips

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/kikiluvv/slopblend/internal/transition"
)

// Clip is one entry of a plan. Transition and Duration describe the
// junction after this clip and are ignored on the last entry.
type Clip struct {
	Path       string  `yaml:"path"`
	Transition string  `yaml:"transition,omitempty"`
	Duration   float64 `yaml:"duration,omitempty"`
}

// Plan describes one blend job
type Plan struct {
	Output      string            `yaml:"output"`
	Transition  string            `yaml:"transition,omitempty"`
	Duration    float64           `yaml:"duration,omitempty"`
	Clips       []Clip            `yaml:"clips"`
	Transitions []transition.Spec `yaml:"transitions,omitempty"`
}

// LoadPlan reads a YAML plan. Relative clip and output paths are resolved
// against the plan's directory.
func LoadPlan(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	plan, err := ParsePlan(data)
	if err != nil {
		return nil, fmt.Errorf("plan %s: %w", path, err)
	}

	base := filepath.Dir(path)
	for i := range plan.Clips {
		plan.Clips[i].Path = resolve(base, plan.Clips[i].Path)
	}
	if plan.Output != "" {
		plan.Output = resolve(base, plan.Output)
	}

	return plan, nil
}

// ParsePlan decodes a YAML plan without touching the filesystem
func ParsePlan(data []byte) (*Plan, error) {
	var plan Plan
	if err := yaml.Unmarshal(data, &plan); err != nil {
		return nil, err
	}

	for i, c := range plan.Clips {
		if c.Path == "" {
			return nil, fmt.Errorf("clip %d has no path", i)
		}
	}
	if len(plan.Transitions) > 0 && plan.hasClipTransitions() {
		return nil, fmt.Errorf("use either a transitions list or per-clip transitions, not both")
	}

	return &plan, nil
}

// Paths returns the clip paths in timeline order
func (p *Plan) Paths() []string {
	out := make([]string, len(p.Clips))
	for i, c := range p.Clips {
		out[i] = c.Path
	}
	return out
}

// Policy converts the plan into a transition policy. Missing values fall
// back to the plan defaults and then to fallback.
func (p *Plan) Policy(fallback transition.Spec) (transition.Policy, error) {
	def := fallback
	if p.Transition != "" {
		kind, err := transition.ParseKind(p.Transition)
		if err != nil {
			return transition.Policy{}, err
		}
		def.Kind = kind
	}
	if p.Duration > 0 {
		def.Duration = p.Duration
	}

	if len(p.Transitions) > 0 {
		specs := make([]transition.Spec, len(p.Transitions))
		for i, s := range p.Transitions {
			kind, err := transition.ParseKind(string(s.Kind))
			if err != nil {
				return transition.Policy{}, fmt.Errorf("transitions[%d]: %w", i, err)
			}
			specs[i] = transition.Spec{Kind: kind, Duration: s.Duration}
			if specs[i].Duration <= 0 {
				specs[i].Duration = def.Duration
			}
		}
		return transition.PerJunction(specs), nil
	}

	if !p.hasClipTransitions() {
		return transition.Uniform(def.Kind, def.Duration), nil
	}

	specs := make([]transition.Spec, len(p.Clips))
	for i, c := range p.Clips {
		specs[i] = def
		if c.Transition != "" {
			kind, err := transition.ParseKind(c.Transition)
			if err != nil {
				return transition.Policy{}, fmt.Errorf("clip %d: %w", i, err)
			}
			specs[i].Kind = kind
		}
		if c.Duration > 0 {
			specs[i].Duration = c.Duration
		}
	}
	return transition.PerJunction(specs), nil
}

func (p *Plan) hasClipTransitions() bool {
	for _, c := range p.Clips {
		if c.Transition != "" || c.Duration > 0 {
			return true
		}
	}
	return false
}

func resolve(base, path string) string {
	if filepath.IsAbs(path) || isURL(path) {
		return path
	}
	return filepath.Join(base, path)
}

// isURL reports whether path is a scheme-prefixed input ffmpeg reads directly
func isURL(path string) bool {
	u, err := url.Parse(path)
	// single-letter schemes are Windows drive letters
	return err == nil && len(u.Scheme) > 1
}
