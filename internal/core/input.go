package core

// Action represents a semantic game action, abstracted from physical key presses.
// Exactly one action (possibly ActionNone) drives each game tick.
type Action int

const (
	ActionNone  Action = iota
	ActionLeft         // Left arrow - move one column left
	ActionRight        // Right arrow - move one column right
	ActionFire         // Space - fire a bullet
	ActionQuit         // Q, Ctrl+C - leave the game
)

// String returns a human-readable name for the action.
func (a Action) String() string {
	switch a {
	case ActionNone:
		return "None"
	case ActionLeft:
		return "Left"
	case ActionRight:
		return "Right"
	case ActionFire:
		return "Fire"
	case ActionQuit:
		return "Quit"
	default:
		return "Unknown"
	}
}

// InputQueue buffers actions between frames. Each game tick consumes at most
// one action, so two quick key presses land on two consecutive ticks.
type InputQueue struct {
	pending []Action
}

// Push appends an action. ActionNone is dropped.
func (q *InputQueue) Push(a Action) {
	if a == ActionNone {
		return
	}
	q.pending = append(q.pending, a)
}

// Pop removes and returns the oldest action, or ActionNone if empty.
func (q *InputQueue) Pop() Action {
	if len(q.pending) == 0 {
		return ActionNone
	}
	a := q.pending[0]
	q.pending = q.pending[1:]
	return a
}

// Len returns the number of buffered actions.
func (q *InputQueue) Len() int {
	return len(q.pending)
}
