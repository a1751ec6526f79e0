package options

import (
	"io"

	"github.com/mkeeler/entropy-keygen/random/internal/options"
)

type GeneratorOption = options.GeneratorOption

// WithSource makes a generator read from r.
func WithSource(r io.Reader) GeneratorOption {
	return func(opts *options.GeneratorOptions) {
		opts.Source = r
	}
}

// WithSeed makes a generator deterministic. Only use this for tests and
// reproducible benchmarks.
func WithSeed(seed uint64) GeneratorOption {
	return func(opts *options.GeneratorOptions) {
		opts.Source = options.SeededSource(seed)
	}
}
