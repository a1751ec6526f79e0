package derive

// SeedSize is the length of every seed and salt used by the engine.
const SeedSize = 32

// Scramble reorders and bit-rotates buf under the control of seed and
// returns a new buffer of the same length. The stages always run in the
// same order over a single working copy: chunked reversal, seed-driven
// permutation, then a per-byte left rotation.
func Scramble(buf []byte, seed [SeedSize]byte) []byte {
	n := len(buf)
	out := make([]byte, n)
	if n == 0 {
		return out
	}
	copy(out, buf)

	chunk := int(seed[0]%10) + 2
	for start := 0; start < n; start += chunk {
		end := start + chunk
		if end > n {
			end = n
		}
		reverse(out[start:end])
	}

	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	for i := 0; i < n; i++ {
		j := (i + int(seed[i%SeedSize])) % n
		indices[i], indices[j] = indices[j], indices[i]
	}

	permuted := make([]byte, n)
	for i, j := range indices {
		permuted[i] = out[j]
	}

	rot := seed[1] % 8
	if rot != 0 {
		for i, b := range permuted {
			permuted[i] = b<<rot | b>>(8-rot)
		}
	}
	return permuted
}

func reverse(b []byte) {
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
}

// XORMix XORs buf against key, repeating the key as needed. The key must
// not be empty.
func XORMix(buf []byte, key []byte) []byte {
	if len(key) == 0 {
		panic("derive: XORMix called with an empty key")
	}
	out := make([]byte, len(buf))
	for i, b := range buf {
		out[i] = b ^ key[i%len(key)]
	}
	return out
}
