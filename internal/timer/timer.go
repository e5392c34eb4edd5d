// Package timer implements the countdown state machine.
//
// The machine never drives its own clock. A controller calls Tick once per second
// while the machine is running and reacts to the remaining value.
package timer

type Phase string

const (
	PhaseStopped Phase = "stopped"
	PhaseWork    Phase = "work"
	PhaseBreak   Phase = "break"
)

// Valid reports whether p is a countdown phase (work or break).
func (p Phase) Valid() bool {
	return p == PhaseWork || p == PhaseBreak
}

// Next returns the phase that follows p in the work/break cycle.
func (p Phase) Next() Phase {
	if p == PhaseWork {
		return PhaseBreak
	}
	return PhaseWork
}

type Status string

const (
	StatusStopped      Status = "stopped"
	StatusRunning      Status = "running"
	StatusPaused       Status = "paused"
	StatusChimePending Status = "chime_pending"
)

// State is a single tagged value. Fields are unexported so that a stopped state
// always carries zero remaining seconds and no phase.
type State struct {
	status    Status
	phase     Phase
	remaining int
}

func Stopped() State {
	return State{status: StatusStopped, phase: PhaseStopped}
}

func Running(phase Phase, remaining int) State {
	return active(StatusRunning, phase, remaining)
}

func Paused(phase Phase, remaining int) State {
	return active(StatusPaused, phase, remaining)
}

func ChimePending(phase Phase, remaining int) State {
	return active(StatusChimePending, phase, remaining)
}

func active(status Status, phase Phase, remaining int) State {
	if !phase.Valid() {
		return Stopped()
	}
	if remaining < 0 {
		remaining = 0
	}
	return State{status: status, phase: phase, remaining: remaining}
}

func (s State) Status() Status {
	if s.status == "" {
		return StatusStopped
	}
	return s.status
}

func (s State) Phase() Phase {
	if s.phase == "" {
		return PhaseStopped
	}
	return s.phase
}

func (s State) Remaining() int { return s.remaining }

func (s State) IsRunning() bool { return s.status == StatusRunning }

func (s State) IsChimePlaying() bool { return s.status == StatusChimePending }

func (s State) IsStopped() bool { return s.Status() == StatusStopped }

// Machine holds the current State. It is not safe for concurrent use; the owner
// serialises access.
type Machine struct {
	state State
}

func NewMachine() *Machine {
	return &Machine{state: Stopped()}
}

func (m *Machine) State() State {
	return m.state
}

// Start enters phase with seconds remaining. With autoStart the countdown runs
// immediately, otherwise the machine waits paused for a Resume.
func (m *Machine) Start(phase Phase, seconds int, autoStart bool) {
	if autoStart {
		m.state = Running(phase, seconds)
		return
	}
	m.state = Paused(phase, seconds)
}

func (m *Machine) Pause() {
	if m.state.IsStopped() {
		return
	}
	m.state = Paused(m.state.phase, m.state.remaining)
}

func (m *Machine) Resume() {
	if m.state.IsStopped() {
		return
	}
	m.state = Running(m.state.phase, m.state.remaining)
}

func (m *Machine) Stop() {
	m.state = Stopped()
}

// Tick decrements the remaining seconds of a running countdown, floored at zero.
func (m *Machine) Tick() {
	if !m.state.IsRunning() {
		return
	}
	if m.state.remaining > 0 {
		m.state.remaining--
	}
}

// SetChimePlaying toggles the pre-roll flag. Turning it on holds the countdown;
// turning it off leaves the machine paused until Resume.
func (m *Machine) SetChimePlaying(playing bool) {
	if m.state.IsStopped() {
		return
	}
	if playing {
		m.state = ChimePending(m.state.phase, m.state.remaining)
		return
	}
	if m.state.IsChimePlaying() {
		m.state = Paused(m.state.phase, m.state.remaining)
	}
}
