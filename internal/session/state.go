// Package session owns the application state machine and drives one capture
// through the whole pipeline: encode the frame, fire the labeling and story
// requests concurrently, feed the presentation layer as results arrive, and
// narrate once the story stream is exhausted.
package session

// State is the single process-wide application state, owned exclusively by
// the Controller. Modeling it as a tagged value with an exhaustive
// transition predicate makes illegal moves (like capturing while processing)
// unrepresentable rather than merely unlikely.
type State int

const (
	// StateLive means capture input is armed: camera or upload ready.
	StateLive State = iota

	// StateProcessing means a capture is in flight. Capture input is
	// disabled for the duration, which structurally prevents overlapping
	// pipelines.
	StateProcessing

	// StateResult means story and labels are displayed.
	StateResult
)

func (s State) String() string {
	switch s {
	case StateLive:
		return "live"
	case StateProcessing:
		return "processing"
	case StateResult:
		return "result"
	default:
		return "unknown"
	}
}

// canTransition is the exhaustive transition function:
//
//	live       -> processing        (user captures or uploads)
//	processing -> result            (both requests settled, story succeeded)
//	processing -> live              (story request failed)
//	result     -> live              (user resets for the next capture)
//
// Everything else is rejected.
func canTransition(from, to State) bool {
	switch from {
	case StateLive:
		return to == StateProcessing
	case StateProcessing:
		return to == StateResult || to == StateLive
	case StateResult:
		return to == StateLive
	default:
		return false
	}
}
