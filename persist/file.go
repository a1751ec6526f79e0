// Package persist stores derived keys.
package persist

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/mkeeler/entropy-keygen/derive"
	"github.com/mkeeler/entropy-keygen/rank"
)

// WriteKeys writes one "SIZE:RUN CLEAN" line per record to w, best
// combined score first.
func WriteKeys(w io.Writer, records []derive.Record) error {
	bw := bufio.NewWriter(w)
	for _, rec := range rank.Sort(records, rank.Combined) {
		if _, err := fmt.Fprintf(bw, "%d:%d %s\n", rec.Size, rec.Run, rec.Clean); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteKeyFile replaces the file at path with the output of WriteKeys.
func WriteKeyFile(path string, records []derive.Record) error {
	fp, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("error opening key file: %w", err)
	}

	if err := WriteKeys(fp, records); err != nil {
		fp.Close()
		return fmt.Errorf("error writing key file: %w", err)
	}
	return fp.Close()
}
