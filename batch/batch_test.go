package batch_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/mkeeler/entropy-keygen/batch"
	"github.com/mkeeler/entropy-keygen/batch/config"
	"github.com/mkeeler/entropy-keygen/derive"
	"github.com/mkeeler/entropy-keygen/metrics"
	"github.com/mkeeler/entropy-keygen/random/options"
	"github.com/mkeeler/entropy-keygen/random/salt"
	"github.com/stretchr/testify/require"
)

func fixedSalts() salt.Fixed {
	var pair salt.Pair
	for i := 0; i < salt.Size; i++ {
		pair.Primary[i] = byte(i)
		pair.Selection[i] = byte(i + salt.Size)
	}
	return salt.Fixed(pair)
}

func newGenerator(t *testing.T, conf batch.Config, gc config.GeneratorConfig) *batch.Generator {
	t.Helper()
	require.NoError(t, conf.Normalize())
	gen, err := batch.NewGenerator(conf, gc)
	require.NoError(t, err)
	return gen
}

func TestGenerator_Run_FixedSalts(t *testing.T) {
	conf := batch.Config{Runs: map[int]int{64: 1}}
	gc := config.GeneratorConfig{Salts: fixedSalts()}

	for i := 0; i < 2; i++ {
		res, err := newGenerator(t, conf, gc).Run(context.Background(), []byte("hello world"))
		require.NoError(t, err)
		require.NotEmpty(t, res.Label)
		require.Len(t, res.Records, 1)

		rec := res.Records[0]
		require.Equal(t, 64, rec.Size)
		require.Equal(t, 1, rec.Run)
		require.Len(t, rec.Bytes, 64)
		require.Equal(t, "IZUES6exT6far94wSyoFIFLAw2yk8m0fFDki590hotKJvXeNEz6ZuYWaq04VqOFBfgi9P_a3opLAvObtqMEvwg", rec.Clean)
	}
}

func TestGenerator_Run_Order(t *testing.T) {
	conf := batch.Config{Runs: map[int]int{48: 2, 8: 1, 16: 3}}
	res, err := newGenerator(t, conf, config.GeneratorConfig{Salts: salt.NewGenerator(options.WithSeed(1))}).
		Run(context.Background(), []byte("some input"))
	require.NoError(t, err)

	type key struct{ size, run int }
	var got []key
	for _, rec := range res.Records {
		got = append(got, key{rec.Size, rec.Run})
		require.Len(t, rec.Bytes, rec.Size)
	}
	require.Equal(t, []key{{8, 1}, {16, 1}, {16, 2}, {16, 3}, {48, 1}, {48, 2}}, got)
}

func TestGenerator_Run_WorkersDoNotChangeResults(t *testing.T) {
	input := []byte("a longer input file\nwith several lines\n\tand some whitespace")
	run := func(workers int) []derive.Record {
		conf := batch.Config{
			Runs:    map[int]int{32: 3, 100: 2, 7: 2},
			Workers: workers,
		}
		gc := config.GeneratorConfig{Salts: salt.NewGenerator(options.WithSeed(42))}
		res, err := newGenerator(t, conf, gc).Run(context.Background(), input)
		require.NoError(t, err)
		return res.Records
	}

	sequential := run(1)
	parallel := run(4)
	require.Len(t, parallel, len(sequential))
	for i := range sequential {
		require.Equal(t, sequential[i].Size, parallel[i].Size)
		require.Equal(t, sequential[i].Run, parallel[i].Run)
		require.Equal(t, sequential[i].Bytes, parallel[i].Bytes)
		require.Equal(t, sequential[i].Clean, parallel[i].Clean)
	}

	// distinct runs draw distinct salts
	require.NotEqual(t, sequential[0].Bytes, sequential[1].Bytes)
}

func TestGenerator_Run_Hooks(t *testing.T) {
	var completed, iterations atomic.Int64
	gc := config.GeneratorConfig{
		Salts:         salt.NewGenerator(options.WithSeed(5)),
		MetricsServer: metrics.NewMetricsServer(metrics.ServerConfig{}),
		Logger:        hclog.New(&hclog.LoggerOptions{Level: hclog.Trace, Output: &discard{}}),
		Hooks: &derive.Hooks{
			OnIteration: func(int, float64) { iterations.Add(1) },
			OnComplete:  func(derive.RunStats) { completed.Add(1) },
		},
	}
	conf := batch.Config{Runs: map[int]int{16: 2, 32: 2}, Workers: 2}

	res, err := newGenerator(t, conf, gc).Run(context.Background(), []byte("hooks"))
	require.NoError(t, err)
	require.Len(t, res.Records, 4)
	require.EqualValues(t, 4, completed.Load())

	total := 0
	for _, rec := range res.Records {
		total += rec.Iterations
	}
	require.EqualValues(t, total, iterations.Load())
}

func TestGenerator_Run_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	conf := batch.Config{Runs: map[int]int{64: 2}}
	_, err := newGenerator(t, conf, config.GeneratorConfig{Salts: fixedSalts()}).Run(ctx, []byte("x"))
	require.ErrorIs(t, err, context.Canceled)
}

type failingSource struct{}

func (failingSource) Draw() (salt.Pair, error) {
	return salt.Pair{}, errors.New("entropy pool exhausted")
}

func TestGenerator_Run_SaltError(t *testing.T) {
	conf := batch.Config{Runs: map[int]int{64: 1}}
	_, err := newGenerator(t, conf, config.GeneratorConfig{Salts: failingSource{}}).Run(context.Background(), []byte("x"))
	require.ErrorContains(t, err, "entropy pool exhausted")
}

func TestGenerator_Run_EmptyInput(t *testing.T) {
	conf := batch.Config{Runs: map[int]int{33: 1}}
	res, err := newGenerator(t, conf, config.GeneratorConfig{Salts: fixedSalts()}).Run(context.Background(), []byte(" \n\t "))
	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	require.Len(t, res.Records[0].Bytes, 33)
	require.True(t, res.Records[0].Converged)
}

func TestNewGenerator_UnknownHash(t *testing.T) {
	_, err := batch.NewGenerator(batch.Config{Hash: "md4"}, config.GeneratorConfig{})
	require.Error(t, err)
}

type discard struct{}

func (*discard) Write(p []byte) (int, error) { return len(p), nil }
