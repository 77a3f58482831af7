package colorspec

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrUnknownColor is returned when a color name has no registered spec.
var ErrUnknownColor = errors.New("unknown color")

// RGB is an ordered red/green/blue triple.
type RGB [3]uint8

// Spec defines a named color as an inclusive RGB bounding box.
type Spec struct {
	Name  string
	Lower RGB
	Upper RGB
}

// Contains reports whether the pixel lies inside the bounding box,
// inclusive on every channel.
func (s Spec) Contains(r, g, b uint8) bool {
	return s.Lower[0] <= r && r <= s.Upper[0] &&
		s.Lower[1] <= g && g <= s.Upper[1] &&
		s.Lower[2] <= b && b <= s.Upper[2]
}

func (s Spec) validate() error {
	if s.Name == "" {
		return fmt.Errorf("color spec with empty name")
	}
	for c := 0; c < 3; c++ {
		if s.Lower[c] > s.Upper[c] {
			return fmt.Errorf("color %q: channel %d lower bound %d exceeds upper bound %d",
				s.Name, c, s.Lower[c], s.Upper[c])
		}
	}
	return nil
}

// Registry maps lowercase color names to their specs. It is read-only
// after construction.
type Registry struct {
	specs map[string]Spec
}

// NewRegistry builds a registry from the given specs, validating that
// every channel's lower bound does not exceed its upper bound.
func NewRegistry(specs ...Spec) (*Registry, error) {
	r := &Registry{specs: make(map[string]Spec, len(specs))}
	for _, s := range specs {
		if err := s.validate(); err != nil {
			return nil, err
		}
		name := strings.ToLower(s.Name)
		if _, dup := r.specs[name]; dup {
			return nil, fmt.Errorf("duplicate color spec %q", name)
		}
		s.Name = name
		r.specs[name] = s
	}
	return r, nil
}

// Default returns the built-in registry of named colors.
func Default() *Registry {
	r, err := NewRegistry(
		Spec{Name: "red", Lower: RGB{255, 0, 0}, Upper: RGB{255, 250, 255}},
		Spec{Name: "green", Lower: RGB{0, 200, 0}, Upper: RGB{100, 255, 100}},
		Spec{Name: "blue", Lower: RGB{0, 0, 200}, Upper: RGB{100, 100, 255}},
		Spec{Name: "yellow", Lower: RGB{200, 200, 0}, Upper: RGB{255, 255, 100}},
		Spec{Name: "orange", Lower: RGB{255, 165, 0}, Upper: RGB{255, 255, 100}},
		Spec{Name: "pink", Lower: RGB{150, 50, 100}, Upper: RGB{255, 200, 220}},
	)
	if err != nil {
		panic(err)
	}
	return r
}

// Lookup resolves a color name case-insensitively.
func (r *Registry) Lookup(name string) (Spec, bool) {
	s, ok := r.specs[strings.ToLower(name)]
	return s, ok
}

// Names returns the registered color names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.specs))
	for name := range r.specs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
