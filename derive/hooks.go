package derive

import "time"

// RunStats describes one completed derivation run.
type RunStats struct {
	Size       int
	Run        int
	Iterations int
	Converged  bool
	Entropy    float64
	Duration   time.Duration
}

// Hooks are optional observability callbacks. A nil *Hooks or nil field
// is skipped. Hooks are called synchronously from the goroutine running
// the derivation.
type Hooks struct {
	OnIteration func(iteration int, entropy float64)
	OnComplete  func(stats RunStats)
}

func (h *Hooks) iteration(iteration int, entropy float64) {
	if h == nil || h.OnIteration == nil {
		return
	}
	h.OnIteration(iteration, entropy)
}

func (h *Hooks) complete(stats RunStats) {
	if h == nil || h.OnComplete == nil {
		return
	}
	h.OnComplete(stats)
}
