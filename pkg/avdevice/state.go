package avdevice

import "fmt"

// State represents a session's lifecycle state. Platform backends use it to
// guard illegal transitions such as starting a session twice.
type State string

const (
	// StateIdle means the session exists but is not delivering data.
	StateIdle State = "idle"
	// StateRunning means the session is delivering data to its outputs.
	StateRunning State = "running"
	// StateReleased means the session has been torn down and must not be
	// reused.
	StateReleased State = "released"
)

// Update moves s to next after f succeeds. If f fails, s stays unchanged.
func (s *State) Update(next State, f func() error) error {
	var check func() error
	switch next {
	case StateIdle:
		check = s.toIdle
	case StateRunning:
		check = s.toRunning
	case StateReleased:
		check = s.toReleased
	default:
		return fmt.Errorf("invalid state: %s", next)
	}

	if err := check(); err != nil {
		return err
	}

	err := f()
	if err == nil {
		*s = next
	}
	return err
}

func (s *State) toIdle() error {
	if *s == StateReleased {
		return fmt.Errorf("invalid state: session has been released")
	}
	return nil
}

func (s *State) toRunning() error {
	if *s == StateReleased {
		return fmt.Errorf("invalid state: session has been released")
	}
	if *s == StateRunning {
		return fmt.Errorf("invalid state: session is already running")
	}
	return nil
}

func (s *State) toReleased() error {
	return nil
}
