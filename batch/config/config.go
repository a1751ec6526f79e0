package config

import (
	"github.com/hashicorp/go-hclog"
	"github.com/mkeeler/entropy-keygen/derive"
	"github.com/mkeeler/entropy-keygen/metrics"
	"github.com/mkeeler/entropy-keygen/random/salt"
)

type GeneratorConfig struct {
	// Salts supplies the fresh primary and selection salts of every run.
	// Tests inject a fixed or seeded source here.
	Salts salt.Source

	// MetricsServer is the metrics server that a generator
	// may use for emitting metrics
	MetricsServer *metrics.MetricsServer

	// Hooks are called in addition to the generator's own logging and
	// metrics hooks. They run concurrently when more than one worker is
	// configured.
	Hooks *derive.Hooks

	// Logger is a logger.
	Logger hclog.Logger
}

func (gc GeneratorConfig) WithSalts(src salt.Source) GeneratorConfig {
	// because the receiver is not a pointer value we can just
	// override and return.
	gc.Salts = src
	return gc
}

func (gc GeneratorConfig) WithLogger(logger hclog.Logger) GeneratorConfig {
	gc.Logger = logger
	return gc
}
