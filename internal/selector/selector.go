package selector

import (
	"errors"
	"fmt"
	"sync"

	"github.com/i474232898/covid-charts/internal/covid"
)

// ErrUnknownRegion is returned by Set for a value outside the option list.
var ErrUnknownRegion = errors.New("unknown region")

// Selector holds the selected region of one view.
type Selector struct {
	mu       sync.RWMutex
	value    string
	options  []string
	onChange []func(string)
}

// New creates a Selector with a default value and an optional fixed option list.
func New(def string, options []string) *Selector {
	return &Selector{
		value:   def,
		options: append([]string(nil), options...),
	}
}

// Value returns the selected region.
func (s *Selector) Value() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value
}

// Options returns the selectable regions.
func (s *Selector) Options() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.options...)
}

// SetOptions replaces the selectable regions. The current value is kept even
// when it is not among them.
func (s *Selector) SetOptions(options []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.options = append([]string(nil), options...)
}

// OnChange registers fn to run after each change of value.
func (s *Selector) OnChange(fn func(string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = append(s.onChange, fn)
}

// Set selects v and reports whether the value changed.
func (s *Selector) Set(v string) (bool, error) {
	s.mu.Lock()
	if len(s.options) > 0 && !contains(s.options, v) {
		s.mu.Unlock()
		return false, fmt.Errorf("%w: %q", ErrUnknownRegion, v)
	}
	if v == s.value {
		s.mu.Unlock()
		return false, nil
	}
	s.value = v
	hooks := make([]func(string), len(s.onChange))
	copy(hooks, s.onChange)
	s.mu.Unlock()

	for _, fn := range hooks {
		fn(v)
	}
	return true, nil
}

// Option is one entry of a dropdown.
type Option struct {
	Value    string `json:"value"`
	Label    string `json:"label"`
	Selected bool   `json:"selected"`
}

// Dropdown is the render model of a Selector.
type Dropdown struct {
	Name    string   `json:"name"`
	Label   string   `json:"label"`
	Options []Option `json:"options"`
}

// Dropdown builds the render model; option labels are decoded display names.
func (s *Selector) Dropdown(name, label string) Dropdown {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d := Dropdown{Name: name, Label: label, Options: make([]Option, 0, len(s.options))}
	for _, o := range s.options {
		d.Options = append(d.Options, Option{
			Value:    o,
			Label:    covid.DecodeRegion(o),
			Selected: o == s.value,
		})
	}
	return d
}

func contains(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
