package derive

import "math"

const (
	// MaxIterations caps the convergence loop.
	MaxIterations = 1000
	// StableReadings is the number of consecutive near-equal entropy
	// readings that ends the loop.
	StableReadings = 3
	// EntropyTolerance is the absolute entropy delta treated as stable.
	EntropyTolerance = 0.001
)

// Convergence is the outcome of the convergence loop. Hitting the
// iteration cap is not an error, Converged just reports false.
type Convergence struct {
	State      []byte
	Iterations int
	Converged  bool
	Entropy    float64
}

// Converge repeatedly scrambles and mixes initial until its entropy
// settles or MaxIterations is reached. Each iteration derives its seed
// from the current state and primarySalt, so the result is deterministic
// for a given input, salt and hash suite. initial is not modified.
func Converge(initial []byte, primarySalt [SeedSize]byte, suite HashSuite, hooks *Hooks) Convergence {
	state := make([]byte, len(initial))
	copy(state, initial)

	var (
		prevEntropy float64
		stableCount int
		entropy     float64
		converged   bool
		iteration   int
	)

	for {
		iteration++

		seed := suite.Sum(state, primarySalt[:])
		state = XORMix(Scramble(state, suite.Sum(seed[:])), seed[:])

		entropy = Entropy(state)
		hooks.iteration(iteration, entropy)

		if math.Abs(entropy-prevEntropy) < EntropyTolerance {
			stableCount++
			if stableCount >= StableReadings {
				converged = true
				break
			}
		} else {
			stableCount = 0
		}

		prevEntropy = entropy

		if iteration >= MaxIterations {
			break
		}
	}

	return Convergence{
		State:      state,
		Iterations: iteration,
		Converged:  converged,
		Entropy:    entropy,
	}
}
