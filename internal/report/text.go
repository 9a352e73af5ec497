package report

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"latencyrank/internal/models"
)

// WriteText writes the ranking as a plain text table
func WriteText(w io.Writer, snap models.Snapshot, p Projection) error {
	var b strings.Builder

	fmt.Fprintf(&b, "Latency Ranking\n")
	fmt.Fprintf(&b, "Generated: %s\n", time.Now().Format("2006-01-02 15:04:05"))
	if !snap.StartedAt.IsZero() {
		fmt.Fprintf(&b, "Run: %s (%s)\n", snap.RunID, snap.RunState)
		if !snap.FinishedAt.IsZero() {
			fmt.Fprintf(&b, "Duration: %s\n", snap.FinishedAt.Sub(snap.StartedAt).Round(time.Millisecond))
		}
	}
	fmt.Fprintln(&b, strings.Repeat("=", 72))
	fmt.Fprintf(&b, "%-6s %-32s %8s %8s %8s  %s\n", "Rank", "Target", "Avg", "Min", "Max", "Status")

	rank := 0
	for _, r := range p.Ranked {
		label := "-"
		if r.HasLatency() {
			rank++
			label = humanize.Ordinal(rank)
		}
		fmt.Fprintf(&b, "%-6s %-32s %8s %8s %8s  %s\n",
			label,
			truncate(r.Address, 32),
			formatMillis(r.AverageLatency),
			formatMillis(r.MinLatency),
			formatMillis(r.MaxLatency),
			describe(r))
	}
	fmt.Fprintln(&b, strings.Repeat("=", 72))

	if len(p.Leaderboard) > 0 {
		best := p.Leaderboard[0]
		fmt.Fprintf(&b, "Fastest: %s (%s ms, %s)\n", best.Label, humanize.Comma(int64(best.Value)), GradeOf(best.Value))
	} else {
		fmt.Fprintln(&b, "No target answered.")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func describe(r models.TargetRecord) string {
	switch r.State {
	case models.StateFailed:
		return "failed"
	case models.StateProbing:
		return fmt.Sprintf("testing (%d%%)", int(r.Progress))
	case models.StateIdle:
		return "pending"
	default:
		return fmt.Sprintf("%d checks", len(r.Probes))
	}
}

func formatMillis(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%d ms", int64(math.Round(*v)))
}
