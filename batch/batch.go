// Package batch runs the configured number of derivation runs for every
// requested key size.
package batch

import (
	"context"
	"fmt"
	"time"

	petname "github.com/dustinkirkland/golang-petname"
	"github.com/hashicorp/go-hclog"
	"github.com/mkeeler/entropy-keygen/batch/config"
	"github.com/mkeeler/entropy-keygen/derive"
	"github.com/mkeeler/entropy-keygen/random/salt"
	"golang.org/x/sync/errgroup"
)

type Generator struct {
	config.GeneratorConfig
	conf  Config
	suite derive.HashSuite
}

// Result is the outcome of a whole batch.
type Result struct {
	// Label is a human friendly name for the batch used in logs.
	Label string
	// Records are ordered by ascending size, then run index.
	Records  []derive.Record
	Duration time.Duration
}

// NewGenerator creates a generator for a normalized configuration. A nil
// salt source defaults to the operating system's CSPRNG and a nil logger
// discards output.
func NewGenerator(conf Config, gc config.GeneratorConfig) (*Generator, error) {
	suite, err := derive.LookupHash(conf.Hash)
	if err != nil {
		return nil, err
	}

	if gc.Salts == nil {
		gc.Salts = salt.NewGenerator()
	}
	if gc.Logger == nil {
		gc.Logger = hclog.NewNullLogger()
	}

	return &Generator{
		GeneratorConfig: gc.WithLogger(gc.Logger.Named("batch")),
		conf:            conf,
		suite:           suite,
	}, nil
}

// Run derives all configured keys from the raw input. Salts are drawn in
// job order before any run starts so that a seeded salt source produces
// the same records regardless of the worker count. Cancelling ctx stops
// new runs from starting and Run returns the context error.
func (g *Generator) Run(ctx context.Context, input []byte) (Result, error) {
	start := time.Now()
	res := Result{Label: petname.Generate(2, "-")}
	logger := g.Logger.With("batch", res.Label)

	reqs, err := g.requests(derive.Normalize(input))
	if err != nil {
		return res, err
	}

	logger.Info("starting batch", "runs", len(reqs), "sizes", len(g.conf.Runs), "workers", g.conf.Workers, "hash", g.suite)

	records := make([]derive.Record, len(reqs))
	hooks := g.hooks(logger)
	limiter := newWrappedLimiter(g.conf.RunRate, 1)

	grp, grpCtx := errgroup.WithContext(ctx)
	grp.SetLimit(g.conf.Workers)

dispatch:
	for i, req := range reqs {
		if err := limiter.Wait(grpCtx); err != nil {
			break dispatch
		}
		if grpCtx.Err() != nil {
			break dispatch
		}

		grp.Go(func() error {
			records[i] = derive.Derive(req, g.suite, hooks)
			return nil
		})
	}

	if err := grp.Wait(); err != nil {
		return res, err
	}
	if err := ctx.Err(); err != nil {
		logger.Warn("batch interrupted", "error", err)
		return res, err
	}

	res.Records = records
	res.Duration = time.Since(start)
	logger.Info("finished batch", "runs", len(records), "duration", res.Duration)
	return res, nil
}

func (g *Generator) requests(initial []byte) ([]derive.Request, error) {
	reqs := make([]derive.Request, 0, g.conf.TotalRuns())
	for _, size := range g.conf.Sizes() {
		for run := 1; run <= g.conf.Runs[size]; run++ {
			pair, err := g.Salts.Draw()
			if err != nil {
				return nil, fmt.Errorf("error drawing salts for %d:%d: %w", size, run, err)
			}
			reqs = append(reqs, derive.Request{
				Initial:       initial,
				Size:          size,
				Run:           run,
				PrimarySalt:   pair.Primary,
				SelectionSalt: pair.Selection,
			})
		}
	}
	return reqs, nil
}

func (g *Generator) hooks(logger hclog.Logger) *derive.Hooks {
	return &derive.Hooks{
		OnIteration: func(iteration int, entropy float64) {
			if logger.IsTrace() {
				logger.Trace("convergence iteration", "iteration", iteration, "entropy", entropy)
			}
			if g.Hooks != nil && g.Hooks.OnIteration != nil {
				g.Hooks.OnIteration(iteration, entropy)
			}
		},
		OnComplete: func(stats derive.RunStats) {
			logger.Debug("run complete",
				"size", stats.Size,
				"run", stats.Run,
				"iterations", stats.Iterations,
				"converged", stats.Converged,
				"entropy", stats.Entropy,
				"duration", stats.Duration,
			)
			if !stats.Converged {
				logger.Warn("run hit the iteration cap", "size", stats.Size, "run", stats.Run, "iterations", stats.Iterations)
			}
			if g.MetricsServer != nil {
				g.MetricsServer.ObserveRun(stats.Size, stats.Iterations, stats.Converged, stats.Entropy, stats.Duration)
			}
			if g.Hooks != nil && g.Hooks.OnComplete != nil {
				g.Hooks.OnComplete(stats)
			}
		},
	}
}
