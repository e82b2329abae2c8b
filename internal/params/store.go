// Package params holds the interactive shading parameters and forwards every
// change to the render boundary.
package params

import (
	"errors"
	"fmt"
	"sort"

	"github.com/rs/zerolog/log"

	"github.com/coreman2200/glyphloop/internal/render"
)

// Parameter names bound to keys.
const (
	Debug    = "debug"
	Contrast = "contrast"
	Gamma    = "gamma"
)

// StepFactor is the multiplicative step for Increase and Decrease.
const StepFactor = 0.9

var ErrUnknownParameter = errors.New("unknown parameter")

type Parameter struct {
	Name  string
	Value float64
	Slot  render.Slot
}

// Pusher receives parameter values. render.Boundary satisfies it.
type Pusher interface {
	Set1f(s render.Slot, v float64)
}

// Store is owned by the loop goroutine and is not safe for concurrent use.
type Store struct {
	m      map[string]*Parameter
	push   Pusher
	redraw func()

	// OnChange, if set, observes every successful Set.
	OnChange func(p Parameter)
}

func NewStore(push Pusher, redraw func()) *Store {
	return &Store{m: map[string]*Parameter{}, push: push, redraw: redraw}
}

// Define registers a parameter and pushes its initial value. Redefining a
// name replaces it.
func (s *Store) Define(name string, slot render.Slot, initial float64) {
	p := &Parameter{Name: name, Value: initial, Slot: slot}
	s.m[name] = p
	if s.push != nil {
		s.push.Set1f(slot, initial)
	}
}

// Set stores v, pushes it to the boundary and requests a redraw.
func (s *Store) Set(name string, v float64) error {
	p, ok := s.m[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownParameter, name)
	}
	p.Value = v
	log.Info().Msgf("Setting %s to %g", name, v)
	if s.push != nil {
		s.push.Set1f(p.Slot, v)
	}
	if s.redraw != nil {
		s.redraw()
	}
	if s.OnChange != nil {
		s.OnChange(*p)
	}
	return nil
}

// MustSet is Set for names fixed at compile time; an unknown name panics.
func (s *Store) MustSet(name string, v float64) {
	if err := s.Set(name, v); err != nil {
		panic(err)
	}
}

func (s *Store) Get(name string) (float64, bool) {
	p, ok := s.m[name]
	if !ok {
		return 0, false
	}
	return p.Value, true
}

// Toggle flips a 0/1 parameter.
func (s *Store) Toggle(name string) error {
	return s.apply(name, func(v float64) float64 { return 1 - v })
}

func (s *Store) Increase(name string) error {
	return s.apply(name, func(v float64) float64 { return v / StepFactor })
}

func (s *Store) Decrease(name string) error {
	return s.apply(name, func(v float64) float64 { return v * StepFactor })
}

func (s *Store) apply(name string, f func(float64) float64) error {
	p, ok := s.m[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownParameter, name)
	}
	return s.Set(name, f(p.Value))
}

// Values returns a snapshot keyed by name.
func (s *Store) Values() map[string]float64 {
	out := make(map[string]float64, len(s.m))
	for k, p := range s.m {
		out[k] = p.Value
	}
	return out
}

// Names returns the defined names in sorted order.
func (s *Store) Names() []string {
	out := make([]string, 0, len(s.m))
	for k := range s.m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
