package anim

import "time"

// State enumerates animation states.
type State uint8

const (
	Stopped State = iota
	Running
)

func (s State) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case Running:
		return "running"
	default:
		return "unknown"
	}
}

// Hooks are dependency-injected callbacks into the render loop.
type Hooks struct {
	// OnStart runs after a Stopped -> Running transition.
	OnStart func(now time.Time)
	// OnStop runs after a Running -> Stopped transition.
	OnStop func(now time.Time)
}

// Clock converts wall-clock samples into elapsed time and an accumulated phase.
//
// The zero value is a stopped clock with no previous sample and zero phase.
type Clock struct {
	state State

	// last is only meaningful while hasLast is set; a cleared marker means
	// the next sample starts a fresh delta.
	last    time.Time
	hasLast bool

	phase time.Duration
}

// Machine owns the animation Clock and flips it between Stopped and Running.
type Machine struct {
	clock Clock
	hooks Hooks
}
