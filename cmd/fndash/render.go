package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/rickgao/fndash/internal/catalog"
	"github.com/rickgao/fndash/internal/connection"
	"github.com/rickgao/fndash/internal/feed"
)

const timeLayout = "2006-01-02 15:04:05"

// renderFunctions writes the catalog as an aligned table.
func renderFunctions(w io.Writer, fns []catalog.Function, now time.Time) error {
	if len(fns) == 0 {
		_, err := fmt.Fprintln(w, "No functions configured.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tTRIGGER\tDETAILS\tNEXT RUN")
	for _, fn := range fns {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			fn.Name,
			catalog.Classify(fn.Trigger).Label(),
			catalog.Summary(fn.Trigger),
			nextRun(fn.Trigger, now),
		)
	}
	return tw.Flush()
}

func nextRun(t catalog.Trigger, now time.Time) string {
	if catalog.Classify(t) != catalog.CategoryTimer {
		return "-"
	}
	next, err := catalog.NextRun(t.Schedule, now)
	if err != nil {
		return catalog.NotAvailable
	}
	return next.Format(timeLayout)
}

// renderCode writes a trigger card and the source of every function.
func renderCode(w io.Writer, fns []catalog.Function) {
	for _, fn := range fns {
		fmt.Fprintf(w, "\n== %s [%s]\n", fn.Name, catalog.Classify(fn.Trigger).Label())
		for _, d := range catalog.Details(fn.Trigger) {
			fmt.Fprintf(w, "   %s: %s\n", d.Label, d.Value)
		}
		code := strings.TrimRight(fn.Code, "\n")
		if code == "" {
			code = "(no source)"
		}
		fmt.Fprintf(w, "\n%s\n", code)
	}
}

// formatMessage renders one feed line.
func formatMessage(m feed.Message) string {
	return fmt.Sprintf("%s  %s", m.ReceivedAt.Local().Format(timeLayout), m.Payload)
}

// formatStats renders the connection status line.
func formatStats(s connection.ManagerStats) string {
	line := fmt.Sprintf("feed %s (%s): %d messages, %d opens, %d closes",
		s.State, s.URL, s.Messages, s.Opens, s.Closes)
	if s.ReconnectPending {
		line += fmt.Sprintf(", reconnecting after %d failures", s.ConsecutiveFailures)
	}
	return line
}
