package anim

import "time"

// NewMachine constructs a stopped Machine with provided hooks.
func NewMachine(h Hooks) *Machine {
	return &Machine{hooks: h}
}

// Clock exposes the animation clock for per-frame sampling.
func (m *Machine) Clock() *Clock { return &m.clock }

// State returns the current animation state.
func (m *Machine) State() State { return m.clock.state }

// Running reports whether the animation is running.
func (m *Machine) Running() bool { return m.clock.state == Running }

// Toggle flips between Stopped and Running and returns the new state.
// The previous-sample marker is cleared on every flip; the phase survives.
func (m *Machine) Toggle(now time.Time) State {
	m.clock.forget()
	if m.clock.state == Running {
		m.clock.state = Stopped
		if m.hooks.OnStop != nil {
			m.hooks.OnStop(now)
		}
		return Stopped
	}
	m.clock.state = Running
	if m.hooks.OnStart != nil {
		m.hooks.OnStart(now)
	}
	return Running
}

// Start moves to Running if stopped.
func (m *Machine) Start(now time.Time) {
	if m.clock.state != Running {
		m.Toggle(now)
	}
}

// Stop moves to Stopped if running.
func (m *Machine) Stop(now time.Time) {
	if m.clock.state == Running {
		m.Toggle(now)
	}
}
