package persist

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/hashicorp/consul/api"
	"github.com/mkeeler/entropy-keygen/derive"
	"github.com/stretchr/testify/require"
)

var testRecords = []derive.Record{
	{Size: 64, Run: 1, Clean: "first", Entropy: 5.5, TextEntropy: 5.0},
	{Size: 64, Run: 2, Clean: "second", Entropy: 5.9, TextEntropy: 5.2},
	{Size: 128, Run: 1, Clean: "third", Entropy: 6.5, TextEntropy: 5.8},
}

func TestWriteKeys(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteKeys(&buf, testRecords))
	require.Equal(t, "128:1 third\n64:2 second\n64:1 first\n", buf.String())
}

func TestWriteKeyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "key.txt")
	require.NoError(t, os.WriteFile(path, []byte("stale contents that are longer than the new ones\n"), 0o600))

	require.NoError(t, WriteKeyFile(path, testRecords[:1]))

	contents, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "64:1 first\n", string(contents))
}

func TestWriteKeyFile_BadPath(t *testing.T) {
	require.Error(t, WriteKeyFile(filepath.Join(t.TempDir(), "missing", "key.txt"), testRecords))
}

type fakeKV struct {
	pairs  []*api.KVPair
	failOn string
}

func (f *fakeKV) Put(p *api.KVPair, _ *api.WriteOptions) (*api.WriteMeta, error) {
	if p.Key == f.failOn {
		return nil, errors.New("permission denied")
	}
	f.pairs = append(f.pairs, p)
	return &api.WriteMeta{}, nil
}

func TestConsulSink_Write(t *testing.T) {
	kv := &fakeKV{}
	sink := newConsulSink(kv, "keygen/keys", nil)

	require.NoError(t, sink.Write(context.Background(), testRecords))
	require.Len(t, kv.pairs, 3)
	require.Equal(t, "keygen/keys/64/1", kv.pairs[0].Key)
	require.Equal(t, []byte("first"), kv.pairs[0].Value)
	require.Equal(t, "keygen/keys/128/1", kv.pairs[2].Key)
}

func TestConsulSink_WriteError(t *testing.T) {
	kv := &fakeKV{failOn: "keys/64/2"}
	sink := newConsulSink(kv, "keys", nil)

	err := sink.Write(context.Background(), testRecords)
	require.ErrorContains(t, err, "keys/64/2")
	require.Len(t, kv.pairs, 1)
}
