// Package salt draws the per-run salts used by key derivation.
package salt

import (
	"sync"

	"github.com/mkeeler/entropy-keygen/random/bytes"
	"github.com/mkeeler/entropy-keygen/random/options"
)

// Size is the length of each salt in bytes.
const Size = 32

// Pair holds the two independent salts owned by a single run. Primary keys
// the convergence hash and the block expansion, Selection separates the
// expansion domain.
type Pair struct {
	Primary   [Size]byte
	Selection [Size]byte
}

// Source hands out a fresh Pair per call.
type Source interface {
	Draw() (Pair, error)
}

// Generator is a Source backed by a byte generator. It is safe for
// concurrent use.
type Generator struct {
	mu    sync.Mutex
	bytes *bytes.BytesGenerator
}

// NewGenerator returns a Generator reading from the operating system's
// CSPRNG unless an option overrides the source.
func NewGenerator(opts ...options.GeneratorOption) *Generator {
	return &Generator{
		bytes: bytes.NewBytesGenerator(opts...),
	}
}

func (g *Generator) Draw() (Pair, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	var p Pair
	if err := g.bytes.Fill(p.Primary[:]); err != nil {
		return Pair{}, err
	}
	if err := g.bytes.Fill(p.Selection[:]); err != nil {
		return Pair{}, err
	}
	return p, nil
}

// Fixed always returns the same pair.
type Fixed Pair

func (f Fixed) Draw() (Pair, error) {
	return Pair(f), nil
}
