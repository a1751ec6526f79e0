package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/mkeeler/entropy-keygen/derive"
	"github.com/mkeeler/entropy-keygen/rank"
)

var leaderboardHeaders = []string{
	"Run",
	"Size",
	"Bytes",
	"Hex",
	"Text",
	"Entropy(Bytes)",
	"Entropy(Text)",
	"Combined",
	"Total Bits",
}

func leaderboardRow(rec derive.Record) []string {
	return []string{
		fmt.Sprint(rec.Run),
		fmt.Sprint(rec.Size),
		fmt.Sprint(len(rec.Bytes)),
		fmt.Sprint(rec.HexLength()),
		fmt.Sprint(len(rec.Text)),
		fmt.Sprintf("%.4f", rec.Entropy),
		fmt.Sprintf("%.4f", rec.TextEntropy),
		fmt.Sprintf("%.4f", rec.Combined()),
		fmt.Sprintf("%.1f", rec.TotalBits),
	}
}

// writeLeaderboard renders one best-per-size table.
func writeLeaderboard(w io.Writer, board rank.Leaderboard) error {
	fmt.Fprintf(w, "\nFinal results: top per size by %s\n", board.Metric)

	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', tabwriter.Debug)
	fmt.Fprintln(tw, strings.Join(leaderboardHeaders, "\t"))

	dashes := make([]string, len(leaderboardHeaders))
	for i, h := range leaderboardHeaders {
		dashes[i] = strings.Repeat("-", len(h))
	}
	fmt.Fprintln(tw, strings.Join(dashes, "\t"))

	for _, rec := range board.Records {
		fmt.Fprintln(tw, strings.Join(leaderboardRow(rec), "\t"))
	}
	return tw.Flush()
}
