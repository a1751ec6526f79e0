package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"
	"github.com/mkeeler/entropy-keygen/batch"
	"github.com/mkeeler/entropy-keygen/batch/config"
	"github.com/mkeeler/entropy-keygen/derive"
	"github.com/mkeeler/entropy-keygen/metrics"
	"github.com/mkeeler/entropy-keygen/persist"
	"github.com/mkeeler/entropy-keygen/random/options"
	"github.com/mkeeler/entropy-keygen/random/salt"
	"github.com/mkeeler/entropy-keygen/rank"
	"golang.org/x/time/rate"
)

type deriveCommand struct {
	ui           cli.Ui
	configPath   string
	runs         stringSliceFlag
	selectKey    string
	output       string
	workers      int
	runRate      float64
	hash         string
	saltSeed     uint64
	quiet        bool
	timeout      time.Duration
	metricsPort  int
	reportAddr   string
	consulPrefix string
	levelString  string

	flags *flag.FlagSet
	http  *HTTPFlags
	help  string
}

func newDeriveCommand(ui cli.Ui) cli.Command {
	c := &deriveCommand{
		ui: ui,
	}

	levelChoices := strings.Join([]string{
		hclog.Off.String(),
		hclog.Trace.String(),
		hclog.Debug.String(),
		hclog.Info.String(),
		hclog.Warn.String(),
		hclog.Error.String(),
	}, ", ")

	flags := flag.NewFlagSet("", flag.ContinueOnError)

	flags.Var(&c.runs, "runs", "Runs per key size as SIZE:COUNT, e.g. 64:12. May be repeated or comma separated. Replaces the default sizes")
	flags.StringVar(&c.selectKey, "select", "", "Print the clean encoding of a single key, given as SIZE:RUN (e.g. 64:1)")
	flags.StringVar(&c.output, "output", "", "Path of the key file to write (default: key.txt)")
	flags.StringVar(&c.configPath, "config", "", "Path to a YAML configuration file")
	flags.IntVar(&c.workers, "workers", 0, "Number of runs to execute concurrently (default: 1)")
	flags.Float64Var(&c.runRate, "run-rate", 0, "Maximum number of runs started per second (default: unlimited)")
	flags.StringVar(&c.hash, "hash", "", fmt.Sprintf("Hash suite to derive with. Must be one of %v (default: sha256)", derive.HashNames()))
	flags.Uint64Var(&c.saltSeed, "seed", 0, "Seed the salt generator instead of using the operating system's random source. Keys become reproducible and must not be used for anything real")
	flags.BoolVar(&c.quiet, "quiet", false, "Whether to suppress the result tables")
	flags.DurationVar(&c.timeout, "timeout", 0, "Abort key generation after this long (default: no limit)")
	flags.IntVar(&c.metricsPort, "metrics-port", 0, "listening port for metrics path /metrics (default: disabled)")
	flags.StringVar(&c.reportAddr, "report-addr", "", "address of a Prometheus server to retrieve run duration percentiles from (default: disabled)")
	flags.StringVar(&c.consulPrefix, "consul-prefix", "", "Also write every key to Consul KV under this prefix (default: disabled)")
	flags.StringVar(&c.levelString, "log-level", hclog.Info.String(), fmt.Sprintf("Log level. Must be one of [%s]", levelChoices))

	c.http = &HTTPFlags{}
	c.http.MergeAll(flags)

	c.flags = flags
	c.help = genUsage(`Usage: keygen derive [OPTIONS] INPUT_FILE

	Derive keys from the contents of a file

	This command scrambles the input until its entropy settles, expands the
	result into keys of every configured size and writes them, best first,
	to the key file.`, c.flags)

	return c
}

func (c *deriveCommand) Run(args []string) int {
	if err := c.flags.Parse(args); err != nil {
		c.ui.Error(fmt.Sprintf("Failed to parse command line arguments: %v", err))
		return 1
	}

	level := hclog.LevelFromString(c.levelString)
	if level == hclog.NoLevel {
		c.ui.Error(fmt.Sprintf("Invalid log level choice: %s", c.levelString))
		return 1
	}

	if c.flags.NArg() != 1 {
		c.ui.Error("Must supply exactly one input file")
		return 1
	}
	inputPath := c.flags.Arg(0)

	conf, err := c.buildConfig()
	if err != nil {
		c.ui.Error(fmt.Sprintf("Error in configuration: %v", err))
		return 1
	}

	input, err := os.ReadFile(inputPath)
	if err != nil {
		c.ui.Error(fmt.Sprintf("Error reading input file: %v", err))
		return 1
	}

	start := time.Now()

	// wait for signal
	signalCh := make(chan os.Signal, 10)
	signal.Notify(signalCh, os.Interrupt, syscall.SIGTERM, syscall.SIGPIPE)
	defer signal.Stop(signalCh)

	var (
		ctx    context.Context
		cancel context.CancelFunc
	)
	if c.timeout > 0 {
		ctx, cancel = context.WithTimeout(context.Background(), c.timeout)
	} else {
		ctx, cancel = context.WithCancel(context.Background())
	}
	defer cancel()

	logger := hclog.New(&hclog.LoggerOptions{
		Name:            "keygen",
		Level:           level,
		Output:          uiLogWriter(c.ui),
		IncludeLocation: false,
	})

	ctx = hclog.WithContext(ctx, logger)

	var metricsServer *metrics.MetricsServer
	if c.metricsPort != 0 {
		listenAddr := "0.0.0.0:%d"
		metricsAddr := fmt.Sprintf(listenAddr, c.metricsPort)
		metricsServer = metrics.NewMetricsServer(metrics.ServerConfig{
			Addr: metricsAddr,
		})
		go func() {
			logger.Info("Starting Metric Server", "address", metricsServer.Addr)
			if err := metricsServer.ListenAndServe(); err != http.ErrServerClosed {
				logger.Error("error starting metric server", "error", err)
			}
		}()
		defer metricsServer.Shutdown(context.Background())
	}

	go func() {
		for {
			var sig os.Signal
			select {
			case s := <-signalCh:
				sig = s
			case <-ctx.Done():
				return
			}

			switch sig {
			case syscall.SIGPIPE:
				continue
			default:
				logger.Info("Shutting down")
				cancel()
				return
			}
		}
	}()

	gc := config.GeneratorConfig{
		MetricsServer: metricsServer,
		Logger:        logger,
	}
	if c.saltSeed != 0 {
		logger.Warn("using seeded salts, generated keys are reproducible", "seed", c.saltSeed)
		gc = gc.WithSalts(salt.NewGenerator(options.WithSeed(c.saltSeed)))
	}

	gen, err := batch.NewGenerator(conf, gc)
	if err != nil {
		c.ui.Error(fmt.Sprintf("Error creating generator: %v", err))
		return 1
	}

	res, err := gen.Run(ctx, input)
	if err != nil {
		c.ui.Error(fmt.Sprintf("Error deriving keys: %v", err))
		return 1
	}

	if err := persist.WriteKeyFile(conf.Output, res.Records); err != nil {
		c.ui.Error(err.Error())
		return 1
	}
	logger.Info("Wrote key file", "path", conf.Output, "keys", len(res.Records))

	if c.consulPrefix != "" {
		client, err := c.http.APIClient()
		if err != nil {
			c.ui.Error(fmt.Sprintf("Error creating API client: %v", err))
			return 1
		}
		if err := persist.NewConsulSink(client, c.consulPrefix, logger).Write(ctx, res.Records); err != nil {
			c.ui.Error(err.Error())
			return 1
		}
	}

	if !c.quiet {
		var out bytes.Buffer
		for _, board := range rank.Leaderboards(res.Records) {
			if err := writeLeaderboard(&out, board); err != nil {
				c.ui.Error(fmt.Sprintf("Error rendering results: %v", err))
				return 1
			}
		}
		c.ui.Output(strings.TrimRight(out.String(), "\n"))
	}

	if conf.Select != nil {
		rec, err := batch.Select(res.Records, *conf.Select)
		if err != nil {
			c.ui.Error(fmt.Sprintf("Error selecting key: %v", err))
			return 1
		}
		c.ui.Output(fmt.Sprintf("\nSelected %s\n%s", conf.Select, rec.Clean))
	}

	if metricsServer != nil && c.reportAddr != "" {
		if err := metrics.Report(ctx, uiWriter(c.ui.Output), c.reportAddr, time.Since(start)); err != nil {
			logger.Error("error retrieving metrics report", "error", err)
		}
	}

	c.ui.Output(fmt.Sprintf("Total time: %s", time.Since(start)))
	return 0
}

// buildConfig layers explicitly set flags over the config file and
// environment, then normalizes the result.
func (c *deriveCommand) buildConfig() (batch.Config, error) {
	conf, err := batch.ReadConfig(c.configPath)
	if err != nil {
		return conf, err
	}

	set := make(map[string]bool)
	c.flags.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if set["runs"] {
		runs, err := batch.ParseRuns(c.runs)
		if err != nil {
			return conf, err
		}
		conf.Runs = runs
	}
	if set["select"] {
		sel, err := batch.ParseSelector(c.selectKey)
		if err != nil {
			return conf, err
		}
		conf.Select = &sel
	}
	if set["output"] {
		conf.Output = c.output
	}
	if set["workers"] {
		conf.Workers = c.workers
	}
	if set["run-rate"] {
		conf.RunRate = rate.Limit(c.runRate)
	}
	if set["hash"] {
		conf.Hash = c.hash
	}

	if err := conf.Normalize(); err != nil {
		return conf, err
	}
	return conf, nil
}

func (c *deriveCommand) Synopsis() string {
	return "Derive keys from the contents of a file"
}

func (c *deriveCommand) Help() string {
	return c.help
}

func uiLogWriter(ui cli.Ui) io.Writer {
	return hclog.NewLeveledWriter(
		uiWriter(ui.Output),
		map[hclog.Level]io.Writer{
			hclog.Info:  uiWriter(ui.Info),
			hclog.Error: uiWriter(ui.Error),
			hclog.Warn:  uiWriter(ui.Warn),
		},
	)
}

type uiWriter func(string)

func (write uiWriter) Write(p []byte) (n int, err error) {
	// trim the newline as the cli.Ui will add it on for us.
	write(strings.TrimRight(string(p), "\n"))
	return len(p), nil
}
