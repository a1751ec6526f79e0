package batch

import (
	"fmt"

	"github.com/mkeeler/entropy-keygen/derive"
)

// Select returns the record matching sel or an error wrapping
// ErrKeyNotFound.
func Select(records []derive.Record, sel Selector) (derive.Record, error) {
	for _, rec := range records {
		if rec.Size == sel.Size && rec.Run == sel.Run {
			return rec, nil
		}
	}
	return derive.Record{}, fmt.Errorf("%w for %s", ErrKeyNotFound, sel)
}
