package options

import (
	"crypto/rand"
	"io"
	mrand "math/rand/v2"
)

type GeneratorOptions struct {
	// Source supplies the raw bytes generators hand out. It defaults to
	// the operating system's CSPRNG.
	Source io.Reader
}

type GeneratorOption func(*GeneratorOptions)

func DefaultOptions() *GeneratorOptions {
	return &GeneratorOptions{
		Source: rand.Reader,
	}
}

func ApplyGeneratorOptions(opts []GeneratorOption) *GeneratorOptions {
	g := DefaultOptions()
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// SeededSource returns a deterministic ChaCha8 byte stream whose key is
// expanded from seed with PCG.
func SeededSource(seed uint64) io.Reader {
	rng := mrand.New(mrand.NewPCG(seed, 0))
	return mrand.NewChaCha8(chacha8Seed(rng))
}

func chacha8Seed(rng *mrand.Rand) [32]uint8 {
	var seed [32]uint8
	for i := 0; i < 4; i++ {
		val := rng.Uint64()
		seed[(i * 8)] = uint8(val >> 56 & 0xFF)
		seed[(i*8)+1] = uint8(val >> 48 & 0xFF)
		seed[(i*8)+2] = uint8(val >> 40 & 0xFF)
		seed[(i*8)+3] = uint8(val >> 32 & 0xFF)
		seed[(i*8)+4] = uint8(val >> 24 & 0xFF)
		seed[(i*8)+5] = uint8(val >> 16 & 0xFF)
		seed[(i*8)+6] = uint8(val >> 8 & 0xFF)
		seed[(i*8)+7] = uint8(val & 0xFF)
	}
	return seed
}
