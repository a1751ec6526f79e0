// Package derive turns normalized input bytes into fixed-length keys.
//
// A run drives the input towards an entropy plateau with repeated
// scramble and XOR passes (Converge), expands the stabilized state into
// the requested number of bytes with counter-mode keyed hashing (Expand)
// and encodes the result as printable text and unpadded URL-safe base64.
//
// None of this is a vetted KDF. Outputs are only expected to have high
// Shannon entropy per byte.
package derive

import "time"

// Request is the input of a single run.
type Request struct {
	// Initial is the normalized input buffer, see Normalize. It is not
	// modified.
	Initial []byte

	// Size is the number of key bytes to derive. Must be positive.
	Size int
	// Run is the 1-based run index for Size.
	Run int

	PrimarySalt   [SeedSize]byte
	SelectionSalt [SeedSize]byte
}

// Record is the immutable result of one run.
type Record struct {
	Size int
	Run  int

	// Bytes always holds exactly Size bytes.
	Bytes []byte
	// Text is the printable charset encoding of Bytes.
	Text string
	// Clean is the unpadded URL-safe base64 encoding of Bytes.
	Clean string

	Entropy     float64
	TextEntropy float64
	TotalBits   float64

	Iterations int
	Converged  bool
	Duration   time.Duration
}

// Combined is the mean of the byte and text entropies.
func (r Record) Combined() float64 {
	return (r.Entropy + r.TextEntropy) / 2
}

// HexLength is the length of the hex rendering of Bytes.
func (r Record) HexLength() int {
	return 2 * len(r.Bytes)
}

// Derive executes one complete run.
func Derive(req Request, suite HashSuite, hooks *Hooks) Record {
	start := time.Now()

	conv := Converge(req.Initial, req.PrimarySalt, suite, hooks)
	block := Expand(conv.State, req.PrimarySalt, req.SelectionSalt, req.Size, suite)

	text := EncodeText(block)
	entropy := Entropy(block)

	rec := Record{
		Size:        req.Size,
		Run:         req.Run,
		Bytes:       block,
		Text:        text,
		Clean:       EncodeClean(block),
		Entropy:     entropy,
		TextEntropy: Entropy([]byte(text)),
		TotalBits:   float64(len(block)) * entropy,
		Iterations:  conv.Iterations,
		Converged:   conv.Converged,
		Duration:    time.Since(start),
	}

	hooks.complete(RunStats{
		Size:       rec.Size,
		Run:        rec.Run,
		Iterations: rec.Iterations,
		Converged:  rec.Converged,
		Entropy:    rec.Entropy,
		Duration:   rec.Duration,
	})
	return rec
}
