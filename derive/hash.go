package derive

import (
	"crypto/hmac"
	"crypto/sha256"
	"fmt"
	"hash"
	"sort"

	"golang.org/x/crypto/blake2b"
)

// HashSuite pairs the unkeyed hash used to derive per-iteration seeds with
// the keyed hash used for block expansion. Both must produce SeedSize byte
// digests.
type HashSuite struct {
	name     string
	newHash  func() hash.Hash
	newKeyed func(key []byte) hash.Hash
}

var (
	// SHA256 is the default suite: SHA-256 seeds and HMAC-SHA-256 expansion.
	SHA256 = HashSuite{
		name:    "sha256",
		newHash: sha256.New,
		newKeyed: func(key []byte) hash.Hash {
			return hmac.New(sha256.New, key)
		},
	}

	// BLAKE2b uses BLAKE2b-256 for seeds and keyed BLAKE2b-256 for expansion.
	BLAKE2b = HashSuite{
		name: "blake2b",
		newHash: func() hash.Hash {
			h, _ := blake2b.New256(nil)
			return h
		},
		newKeyed: func(key []byte) hash.Hash {
			h, err := blake2b.New256(key)
			if err != nil {
				// only possible for keys over 64 bytes and salts are SeedSize
				panic(fmt.Errorf("derive: blake2b key: %w", err))
			}
			return h
		},
	}
)

var hashSuites = map[string]HashSuite{
	SHA256.name:  SHA256,
	BLAKE2b.name: BLAKE2b,
}

// LookupHash returns the suite registered under name.
func LookupHash(name string) (HashSuite, error) {
	suite, ok := hashSuites[name]
	if !ok {
		return HashSuite{}, fmt.Errorf("unknown hash %q, must be one of %v", name, HashNames())
	}
	return suite, nil
}

// HashNames lists the registered suite names in sorted order.
func HashNames() []string {
	names := make([]string, 0, len(hashSuites))
	for name := range hashSuites {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s HashSuite) Name() string { return s.suite().name }

func (s HashSuite) String() string { return s.Name() }

// DigestSize is the native output length of the keyed hash.
func (s HashSuite) DigestSize() int { return s.suite().newKeyed(make([]byte, SeedSize)).Size() }

// Sum hashes the concatenation of parts.
func (s HashSuite) Sum(parts ...[]byte) [SeedSize]byte {
	h := s.suite().newHash()
	for _, p := range parts {
		h.Write(p)
	}
	var digest [SeedSize]byte
	copy(digest[:], h.Sum(nil))
	return digest
}

// Keyed returns a new keyed hash instance.
func (s HashSuite) Keyed(key []byte) hash.Hash {
	return s.suite().newKeyed(key)
}

// suite substitutes the default suite for the zero value.
func (s HashSuite) suite() HashSuite {
	if s.newHash == nil {
		return SHA256
	}
	return s
}
