package batch

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/mkeeler/entropy-keygen/derive"
	"golang.org/x/time/rate"
)

const (
	defaultRunsPerSize = 4
	defaultOutput      = "key.txt"
	defaultHash        = "sha256"

	// EnvPrefix prefixes environment variables overriding the config file.
	EnvPrefix = "KEYGEN_"
)

// DefaultSizes are the key sizes in bytes generated when no runs are
// configured.
var DefaultSizes = []int{64, 96, 128, 256, 384, 512, 768, 1024, 2048, 4096, 5120, 8192, 10240}

var (
	ErrInvalidRuns     = errors.New("invalid runs entry")
	ErrInvalidSelector = errors.New("invalid selector")
	ErrKeyNotFound     = errors.New("no key found")
)

// Selector identifies one record by size and run index.
type Selector struct {
	Size int
	Run  int
}

func (s Selector) String() string {
	return fmt.Sprintf("%d:%d", s.Size, s.Run)
}

type Config struct {
	// Runs maps a key size in bytes to the number of runs at that size.
	Runs map[int]int

	// Workers is the number of runs executed concurrently.
	Workers int

	// RunRate limits how many runs are started per second. Zero
	// disables limiting.
	RunRate rate.Limit

	// Hash names the derive.HashSuite to use.
	Hash string

	// Output is the path of the key file.
	Output string

	// Select optionally picks a single record to print.
	Select *Selector
}

// DefaultRuns returns the runs map used when none is configured.
func DefaultRuns() map[int]int {
	runs := make(map[int]int, len(DefaultSizes))
	for _, size := range DefaultSizes {
		runs[size] = defaultRunsPerSize
	}
	return runs
}

func (c *Config) Normalize() error {
	if len(c.Runs) == 0 {
		c.Runs = DefaultRuns()
	}

	for size, count := range c.Runs {
		if size <= 0 || count <= 0 {
			return fmt.Errorf("%w: %d:%d, values must be > 0", ErrInvalidRuns, size, count)
		}
	}

	if c.Workers < 1 {
		c.Workers = 1
	}

	if c.RunRate < 0 {
		return fmt.Errorf("invalid RunRate configuration: %v", c.RunRate)
	}

	if c.Hash == "" {
		c.Hash = defaultHash
	}

	if _, err := derive.LookupHash(c.Hash); err != nil {
		return fmt.Errorf("invalid Hash configuration: %w", err)
	}

	if c.Output == "" {
		c.Output = defaultOutput
	}

	if c.Select != nil && (c.Select.Size <= 0 || c.Select.Run <= 0) {
		return fmt.Errorf("%w: %s, values must be > 0", ErrInvalidSelector, c.Select)
	}

	return nil
}

// Sizes returns the configured sizes in ascending order.
func (c *Config) Sizes() []int {
	sizes := make([]int, 0, len(c.Runs))
	for size := range c.Runs {
		sizes = append(sizes, size)
	}
	sort.Ints(sizes)
	return sizes
}

// TotalRuns is the number of runs across all sizes.
func (c *Config) TotalRuns() int {
	total := 0
	for _, count := range c.Runs {
		total += count
	}
	return total
}

// ParseRuns parses SIZE:COUNT entries. Entries may also be separated by
// commas or whitespace. A later entry for the same size wins.
func ParseRuns(entries []string) (map[int]int, error) {
	runs := make(map[int]int)
	for _, entry := range splitEntries(entries) {
		size, count, err := parsePair(entry)
		if err != nil {
			return nil, fmt.Errorf("%w: %q, use SIZE:COUNT", ErrInvalidRuns, entry)
		}
		if size <= 0 || count <= 0 {
			return nil, fmt.Errorf("%w: %q, values must be > 0", ErrInvalidRuns, entry)
		}
		runs[size] = count
	}
	return runs, nil
}

// ParseSelector parses a SIZE:RUN selector such as "64:1".
func ParseSelector(s string) (Selector, error) {
	size, run, err := parsePair(strings.TrimSpace(s))
	if err != nil {
		return Selector{}, fmt.Errorf("%w: %q, use SIZE:RUN (e.g. 64:1)", ErrInvalidSelector, s)
	}
	if size <= 0 || run <= 0 {
		return Selector{}, fmt.Errorf("%w: %q, values must be > 0", ErrInvalidSelector, s)
	}
	return Selector{Size: size, Run: run}, nil
}

func parsePair(entry string) (int, int, error) {
	left, right, ok := strings.Cut(entry, ":")
	if !ok {
		return 0, 0, errors.New("missing separator")
	}
	a, err := strconv.Atoi(left)
	if err != nil {
		return 0, 0, err
	}
	b, err := strconv.Atoi(right)
	if err != nil {
		return 0, 0, err
	}
	return a, b, nil
}

func splitEntries(entries []string) []string {
	var out []string
	for _, entry := range entries {
		out = append(out, strings.FieldsFunc(entry, func(r rune) bool {
			return r == ',' || r == ' ' || r == '\t' || r == '\n'
		})...)
	}
	return out
}

// fileConfig is the on-disk and environment representation of Config.
type fileConfig struct {
	Runs    []string `koanf:"runs"`
	Workers int      `koanf:"workers"`
	RunRate float64  `koanf:"run_rate"`
	Hash    string   `koanf:"hash"`
	Output  string   `koanf:"output"`
	Select  string   `koanf:"select"`
}

// ReadConfig loads the YAML file at path, when path is set, and applies
// KEYGEN_ prefixed environment overrides. The result is not normalized so
// command line flags can still be layered on top.
func ReadConfig(path string) (Config, error) {
	var conf Config

	k := koanf.New(".")
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return conf, fmt.Errorf("error loading config file %s: %w", path, err)
		}
	}

	envProvider := env.ProviderWithValue(EnvPrefix, ".", func(key, value string) (string, interface{}) {
		key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
		if key == "runs" {
			return key, splitEntries([]string{value})
		}
		return key, value
	})
	if err := k.Load(envProvider, nil); err != nil {
		return conf, fmt.Errorf("error loading environment: %w", err)
	}

	var fc fileConfig
	if err := k.Unmarshal("", &fc); err != nil {
		return conf, fmt.Errorf("error decoding config: %w", err)
	}

	if len(fc.Runs) > 0 {
		runs, err := ParseRuns(fc.Runs)
		if err != nil {
			return conf, err
		}
		conf.Runs = runs
	}

	if fc.Select != "" {
		sel, err := ParseSelector(fc.Select)
		if err != nil {
			return conf, err
		}
		conf.Select = &sel
	}

	conf.Workers = fc.Workers
	conf.RunRate = rate.Limit(fc.RunRate)
	conf.Hash = fc.Hash
	conf.Output = fc.Output

	return conf, nil
}
