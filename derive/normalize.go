package derive

import "encoding/base64"

// Normalize strips ASCII whitespace from raw input and base64 encodes
// what remains. The result is the convergence loop's initial buffer.
func Normalize(raw []byte) []byte {
	stripped := make([]byte, 0, len(raw))
	for _, b := range raw {
		switch b {
		case ' ', '\t', '\n', '\v', '\f', '\r':
			continue
		}
		stripped = append(stripped, b)
	}

	out := make([]byte, base64.StdEncoding.EncodedLen(len(stripped)))
	base64.StdEncoding.Encode(out, stripped)
	return out
}
