package playback

// State is the single source of truth for what a session is doing. Dragging is
// tracked separately because it is independent of playback.
type State int

const (
	StateIdle State = iota
	StateLoading
	StatePlaying
	StatePaused
	// StateStalled means the engine reports not-busy while the user holds a
	// seek gesture, so the silence must not be read as completion.
	StateStalled
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	case StateStalled:
		return "stalled"
	case StateCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// active reports whether a monitor should keep running in this state.
func (s State) active() bool {
	return s == StatePlaying || s == StatePaused || s == StateStalled
}
