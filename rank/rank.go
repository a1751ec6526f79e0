// Package rank orders derivation results by their entropy metrics.
package rank

import (
	"fmt"
	"sort"

	"github.com/mkeeler/entropy-keygen/derive"
)

// Metric selects the score records are ranked by.
type Metric int

const (
	ByteEntropy Metric = iota
	TextEntropy
	Combined
)

// Metrics lists every metric in report order.
var Metrics = []Metric{ByteEntropy, TextEntropy, Combined}

func (m Metric) GoString() string { return m.String() }

func (m Metric) String() string {
	switch m {
	case ByteEntropy:
		return "entropy_bytes"
	case TextEntropy:
		return "entropy_text"
	case Combined:
		return "combined"
	default:
		return fmt.Sprintf("Metric(%d)", int(m))
	}
}

// Score returns the value of m for rec.
func (m Metric) Score(rec derive.Record) float64 {
	switch m {
	case TextEntropy:
		return rec.TextEntropy
	case Combined:
		return rec.Combined()
	default:
		return rec.Entropy
	}
}

// Sort returns a copy of records ordered by descending score. Records
// with equal scores keep their relative order.
func Sort(records []derive.Record, m Metric) []derive.Record {
	sorted := make([]derive.Record, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return m.Score(sorted[i]) > m.Score(sorted[j])
	})
	return sorted
}

// TopPerSize picks the best record for every distinct size, in ascending
// size order. On equal scores the record seen first wins.
func TopPerSize(records []derive.Record, m Metric) []derive.Record {
	best := make(map[int]derive.Record)
	for _, rec := range records {
		current, ok := best[rec.Size]
		if !ok || m.Score(rec) > m.Score(current) {
			best[rec.Size] = rec
		}
	}

	sizes := make([]int, 0, len(best))
	for size := range best {
		sizes = append(sizes, size)
	}
	sort.Ints(sizes)

	top := make([]derive.Record, 0, len(sizes))
	for _, size := range sizes {
		top = append(top, best[size])
	}
	return top
}

// Leaderboard is the best-per-size table for one metric.
type Leaderboard struct {
	Metric  Metric
	Records []derive.Record
}

// Leaderboards builds one leaderboard per metric, each computed over the
// records sorted by that metric.
func Leaderboards(records []derive.Record) []Leaderboard {
	boards := make([]Leaderboard, 0, len(Metrics))
	for _, m := range Metrics {
		boards = append(boards, Leaderboard{
			Metric:  m,
			Records: TopPerSize(Sort(records, m), m),
		})
	}
	return boards
}
