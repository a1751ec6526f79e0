package derive

import (
	"math/rand/v2"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

func seedWith(values map[int]byte) [SeedSize]byte {
	var seed [SeedSize]byte
	for i, v := range values {
		seed[i] = v
	}
	return seed
}

func TestScramble_KnownVectors(t *testing.T) {
	var counting [SeedSize]byte
	for i := range counting {
		counting[i] = byte(i + 7)
	}

	type testcase struct {
		input  []byte
		seed   [SeedSize]byte
		expect []byte
	}

	testcases := map[string]testcase{
		"chunk of three without rotation": {
			input:  []byte{0, 1, 2, 3, 4},
			seed:   seedWith(map[int]byte{0: 1}),
			expect: []byte{1, 2, 0, 4, 3},
		},
		"chunk of three with single bit rotation": {
			input:  []byte{0, 1, 2, 3, 4},
			seed:   seedWith(map[int]byte{0: 1, 1: 1}),
			expect: []byte{2, 0, 4, 8, 6},
		},
		"chunk of nine with a short tail": {
			input: []byte{10, 11, 12, 13, 14, 15, 16, 17, 18, 19, 20, 21, 22, 23, 24, 25, 26, 27, 28, 29},
			seed:  counting,
			expect: []byte{
				11, 22, 25, 29, 21, 20, 28, 26, 23, 16,
				27, 24, 19, 15, 14, 13, 12, 18, 10, 17,
			},
		},
	}

	for name, tc := range testcases {
		t.Run(name, func(t *testing.T) {
			require.Equal(t, tc.expect, Scramble(tc.input, tc.seed))
		})
	}
}

func TestScramble_Empty(t *testing.T) {
	require.Empty(t, Scramble(nil, [SeedSize]byte{9, 9}))
	require.Empty(t, Scramble([]byte{}, [SeedSize]byte{}))
}

func TestScramble_Properties(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))

	for n := 1; n <= 96; n++ {
		buf := make([]byte, n)
		for i := range buf {
			buf[i] = byte(rng.Uint32())
		}
		var seed [SeedSize]byte
		for i := range seed {
			seed[i] = byte(rng.Uint32())
		}
		original := append([]byte(nil), buf...)

		out := Scramble(buf, seed)
		require.Len(t, out, n)
		require.Equal(t, original, buf, "input must not be modified")
		require.Equal(t, out, Scramble(buf, seed), "same buffer and seed must give the same output")

		// undo the uniform rotation and the byte multiset must match
		rot := seed[1] % 8
		unrotated := make([]byte, n)
		for i, b := range out {
			unrotated[i] = b>>rot | b<<((8-rot)%8)
		}
		require.Equal(t, sortedCopy(original), sortedCopy(unrotated))
	}
}

func sortedCopy(b []byte) []byte {
	out := append([]byte(nil), b...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func TestXORMix(t *testing.T) {
	require.Equal(t, []byte{0x01 ^ 0xff, 0x02 ^ 0x0f, 0x03 ^ 0xff}, XORMix([]byte{1, 2, 3}, []byte{0xff, 0x0f}))
	require.Empty(t, XORMix(nil, []byte{1}))
}

func TestXORMix_Involution(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 4))
	for n := 0; n < 80; n += 7 {
		buf := make([]byte, n)
		for i := range buf {
			buf[i] = byte(rng.Uint32())
		}
		for keyLen := 1; keyLen <= 40; keyLen += 13 {
			key := make([]byte, keyLen)
			for i := range key {
				key[i] = byte(rng.Uint32())
			}
			require.Equal(t, buf, XORMix(XORMix(buf, key), key))
		}
	}
}

func TestXORMix_EmptyKeyPanics(t *testing.T) {
	require.Panics(t, func() { XORMix([]byte{1}, nil) })
}
