// Package pipeline orchestrates the synthesis loop: it pulls composite
// blocks from the generator, resamples them to the device rate,
// post-processes them into interleaved stereo PCM and writes them to a
// blocking sink, which paces the whole system.
package pipeline

// State tracks the orchestrator through its lifecycle.
type State int

const (
	// StateInit means resources are acquired but the loop has not
	// started.
	StateInit State = iota

	// StateRunning means the synthesis loop is producing blocks.
	StateRunning

	// StateDraining means input ended and the resampler tail is being
	// flushed to the sink.
	StateDraining

	// StateStopped is terminal; all resources are released.
	StateStopped
)

// String returns the state name for logs.
func (s State) String() string {
	switch s {
	case StateInit:
		return "INIT"
	case StateRunning:
		return "RUNNING"
	case StateDraining:
		return "DRAINING"
	case StateStopped:
		return "STOPPED"
	default:
		return "UNKNOWN"
	}
}
