package bytes

import (
	"fmt"
	"io"

	"github.com/mkeeler/entropy-keygen/random/internal/options"
)

type BytesGenerator struct {
	dataSource io.Reader
}

func NewBytesGenerator(opts ...options.GeneratorOption) *BytesGenerator {
	gopts := options.ApplyGeneratorOptions(opts)

	return &BytesGenerator{
		dataSource: gopts.Source,
	}
}

func (g *BytesGenerator) Generate(numBytes int) ([]byte, error) {
	buf := make([]byte, numBytes)
	if err := g.Fill(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// Fill overwrites buf with bytes from the generator's source.
func (g *BytesGenerator) Fill(buf []byte) error {
	if _, err := io.ReadFull(g.dataSource, buf); err != nil {
		return fmt.Errorf("error reading random bytes: %w", err)
	}
	return nil
}
