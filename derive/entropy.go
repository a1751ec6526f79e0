package derive

import "math"

// Entropy returns the Shannon entropy of buf in bits per byte. An empty
// buffer has zero entropy.
func Entropy(buf []byte) float64 {
	if len(buf) == 0 {
		return 0
	}

	var counts [256]int
	for _, b := range buf {
		counts[b]++
	}

	total := float64(len(buf))
	entropy := 0.0
	for _, count := range counts {
		if count == 0 {
			continue
		}
		p := float64(count) / total
		entropy -= p * math.Log2(p)
	}
	return entropy
}
