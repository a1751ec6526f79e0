package persist

import (
	"context"
	"fmt"
	"path"
	"strconv"
	"time"

	"github.com/hashicorp/consul/api"
	"github.com/hashicorp/go-hclog"
	"github.com/mkeeler/entropy-keygen/derive"
)

// KVPutter is the subset of the Consul KV API used by ConsulSink.
// *api.KV implements it.
type KVPutter interface {
	Put(p *api.KVPair, q *api.WriteOptions) (*api.WriteMeta, error)
}

// ConsulSink publishes clean keys to Consul KV under
// <prefix>/<size>/<run>.
type ConsulSink struct {
	kv     KVPutter
	prefix string
	logger hclog.Logger
}

func NewConsulSink(client *api.Client, prefix string, logger hclog.Logger) *ConsulSink {
	return newConsulSink(client.KV(), prefix, logger)
}

func newConsulSink(kv KVPutter, prefix string, logger hclog.Logger) *ConsulSink {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &ConsulSink{
		kv:     kv,
		prefix: prefix,
		logger: logger.Named("consul"),
	}
}

// Key returns the KV path a record is stored under.
func (s *ConsulSink) Key(rec derive.Record) string {
	return path.Join(s.prefix, strconv.Itoa(rec.Size), strconv.Itoa(rec.Run))
}

// Write stores every record, stopping at the first failure.
func (s *ConsulSink) Write(ctx context.Context, records []derive.Record) error {
	s.logger.Info("writing keys to Consul KV", "prefix", s.prefix, "keys", len(records))

	for _, rec := range records {
		pair := &api.KVPair{
			Key:   s.Key(rec),
			Value: []byte(rec.Clean),
		}

		start := time.Now()
		opts := &api.WriteOptions{}
		if _, err := s.kv.Put(pair, opts.WithContext(ctx)); err != nil {
			return fmt.Errorf("error writing %s to Consul: %w", pair.Key, err)
		}
		s.logger.Trace("wrote key", "key", pair.Key, "duration", time.Since(start))
	}
	return nil
}
