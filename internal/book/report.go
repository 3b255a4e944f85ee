package book

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// WriteFailureReport lists every failed chapter with its id, position,
// title and error.
func WriteFailureReport(w io.Writer, failures []Failure) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintln(bw, "FAILED CHAPTERS REPORT")
	fmt.Fprintf(bw, "%s\n\n", strings.Repeat("=", 50))
	fmt.Fprintf(bw, "Total failed: %d\n\n", len(failures))

	for i, f := range failures {
		fmt.Fprintf(bw, "%d. Chapter %s (position %d)\n", i+1, f.ID, f.Ordinal)
		fmt.Fprintf(bw, "   Title: %s\n", f.Title)
		fmt.Fprintf(bw, "   Error: %s\n\n", f.Err)
	}

	return bw.Flush()
}
