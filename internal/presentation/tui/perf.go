package tui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/aretw0/weft/pkg/perf"
)

// PerfMarkdown renders timing statistics as a markdown table, slowest mean first.
func PerfMarkdown(stats map[string]perf.Stats) string {
	if len(stats) == 0 {
		return "_No calls recorded._\n"
	}

	titles := make([]string, 0, len(stats))
	for t := range stats {
		titles = append(titles, t)
	}
	sort.Slice(titles, func(i, j int) bool {
		a, b := stats[titles[i]], stats[titles[j]]
		if a.Mean != b.Mean {
			return a.Mean > b.Mean
		}
		return titles[i] < titles[j]
	})

	var sb strings.Builder
	sb.WriteString("| Node | Calls | Last | Mean | Min | Max |\n")
	sb.WriteString("|---|---:|---:|---:|---:|---:|\n")
	for _, t := range titles {
		s := stats[t]
		fmt.Fprintf(&sb, "| %s | %d | %s | %s | %s | %s |\n",
			strings.ReplaceAll(t, "|", "\\|"), s.Count, round(s.Last), round(s.Mean), round(s.Min), round(s.Max))
	}
	return sb.String()
}

func round(d time.Duration) time.Duration {
	return d.Round(time.Microsecond)
}
