package mcp

import (
	"fmt"
	"strings"
	"time"

	"github.com/deixis/agentd/internal/results"
)

func formatStarted(rec *results.Record) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Transaction: %s\n", rec.ID)
	fmt.Fprintf(&b, "Action: %s\n", rec.Action)
	fmt.Fprintf(&b, "Status: %s\n", rec.Status)
	fmt.Fprintf(&b, "Started: %s\n", rec.StartedAt.Format(time.RFC3339))
	fmt.Fprintln(&b)
	fmt.Fprintf(&b, "Query with action_status(transaction_id=%q).\n", rec.ID)
	return b.String()
}

func formatRecord(rec *results.Record) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Transaction: %s\n", rec.ID)
	fmt.Fprintf(&b, "Action: %s\n", rec.Action)
	fmt.Fprintf(&b, "Status: %s\n", rec.Status)

	if rec.Status == results.Error {
		fmt.Fprintf(&b, "Error: %s\n", rec.Error)
		return b.String()
	}

	fmt.Fprintf(&b, "Exit code: %d\n", rec.ExitCode)
	if rec.Signal != 0 {
		fmt.Fprintf(&b, "Signal: %d\n", rec.Signal)
	}
	fmt.Fprintf(&b, "Duration: %s\n", rec.Duration().Round(time.Millisecond))

	writeStream(&b, "Stdout", rec.Stdout, rec.StdoutTruncated, rec.StdoutError)
	writeStream(&b, "Stderr", rec.Stderr, rec.StderrTruncated, rec.StderrError)
	return b.String()
}

func writeStream(b *strings.Builder, name, data string, truncated bool, readErr string) {
	fmt.Fprintln(b)
	if truncated {
		fmt.Fprintf(b, "%s (truncated):\n", name)
	} else {
		fmt.Fprintf(b, "%s:\n", name)
	}
	if data == "" {
		fmt.Fprintln(b, "    (empty)")
	} else {
		for _, line := range strings.Split(strings.TrimRight(data, "\n"), "\n") {
			fmt.Fprintf(b, "    %s\n", line)
		}
	}
	if readErr != "" {
		fmt.Fprintf(b, "    [capture error: %s]\n", readErr)
	}
}
