// Package report renders a computed sales total for the console.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/abgdnv/salescost/internal/sales"
)

// Report is what gets printed after a computation.
type Report struct {
	Summary sales.Summary
	Elapsed time.Duration
}

type jsonReport struct {
	Total          float64 `json:"total"`
	LineItems      int     `json:"line_items"`
	Matched        int     `json:"matched"`
	Unmatched      int     `json:"unmatched"`
	Duplicates     int     `json:"duplicates"`
	ElapsedSeconds float64 `json:"elapsed_seconds"`
}

// Write renders r to w in the given format ("text" or "json").
func Write(w io.Writer, format string, r Report) error {
	switch format {
	case "json":
		return writeJSON(w, r)
	case "text", "":
		return writeText(w, r)
	default:
		return fmt.Errorf("unknown report format: %q", format)
	}
}

func writeText(w io.Writer, r Report) error {
	_, err := fmt.Fprintf(w,
		"Total cost of all sales: %.2f\nLine items: %d (matched %d, unmatched %d)\nElapsed time: %.6f seconds\n",
		r.Summary.Total,
		r.Summary.LineItems,
		r.Summary.Matched,
		r.Summary.Unmatched,
		r.Elapsed.Seconds(),
	)
	return err
}

func writeJSON(w io.Writer, r Report) error {
	enc := json.NewEncoder(w)
	return enc.Encode(jsonReport{
		Total:          r.Summary.Total,
		LineItems:      r.Summary.LineItems,
		Matched:        r.Summary.Matched,
		Unmatched:      r.Summary.Unmatched,
		Duplicates:     r.Summary.Duplicates,
		ElapsedSeconds: r.Elapsed.Seconds(),
	})
}
