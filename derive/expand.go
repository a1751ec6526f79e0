package derive

import "encoding/binary"

// Expand derives exactly size bytes from the stabilized state using
// counter-mode keyed hashing. Block c (starting at 1) is
// Keyed(primarySalt, state || selectionSalt || uint32be(c)); blocks are
// concatenated in counter order and truncated to size. size must be
// positive.
func Expand(state []byte, primarySalt, selectionSalt [SeedSize]byte, size int, suite HashSuite) []byte {
	if size <= 0 {
		panic("derive: Expand called with a non-positive size")
	}

	mac := suite.Keyed(primarySalt[:])
	digestSize := mac.Size()
	blocks := (size + digestSize - 1) / digestSize

	out := make([]byte, 0, blocks*digestSize)
	var counter [4]byte
	for c := 1; c <= blocks; c++ {
		binary.BigEndian.PutUint32(counter[:], uint32(c))

		mac.Reset()
		mac.Write(state)
		mac.Write(selectionSalt[:])
		mac.Write(counter[:])
		out = mac.Sum(out)
	}
	return out[:size]
}
