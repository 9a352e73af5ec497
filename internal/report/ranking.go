package report

import (
	"math"
	"sort"

	"latencyrank/internal/models"
)

const (
	// DefaultTopN is the number of leaderboard entries
	DefaultTopN = 10
	// MinAxisMax keeps the latency scale readable when every target is fast
	MinAxisMax = 200.0

	fastThreshold     = 100.0
	moderateThreshold = 300.0
)

// Grade buckets a latency for display
type Grade string

const (
	GradeFast     Grade = "fast"
	GradeModerate Grade = "moderate"
	GradeSlow     Grade = "slow"
)

// LeaderboardEntry is one bar of the leaderboard chart
type LeaderboardEntry struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// Projection is the ranked, chart-ready view of a record set
type Projection struct {
	Ranked      []models.TargetRecord `json:"ranked"`
	Leaderboard []LeaderboardEntry    `json:"leaderboard"`
	AxisMax     float64               `json:"axis_max"`
}

// Project ranks records and derives the leaderboard and axis scale
func Project(records []models.TargetRecord, topN int) Projection {
	ranked := Rank(records)
	return Projection{
		Ranked:      ranked,
		Leaderboard: Leaderboard(ranked, topN),
		AxisMax:     AxisMax(records),
	}
}

// Rank orders records by ascending average latency. Records without a
// latency go last; ties keep their input order.
func Rank(records []models.TargetRecord) []models.TargetRecord {
	out := make([]models.TargetRecord, len(records))
	copy(out, records)

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].AverageLatency, out[j].AverageLatency
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return *a < *b
		}
	})
	return out
}

// Leaderboard extracts the first n ranked records that have a latency
func Leaderboard(ranked []models.TargetRecord, n int) []LeaderboardEntry {
	if n <= 0 {
		n = DefaultTopN
	}
	entries := make([]LeaderboardEntry, 0, n)
	for _, r := range ranked {
		if len(entries) == n {
			break
		}
		if r.AverageLatency == nil {
			continue
		}
		entries = append(entries, LeaderboardEntry{
			Label: r.Address,
			Value: math.Round(*r.AverageLatency),
		})
	}
	return entries
}

// AxisMax returns the chart maximum: the largest average, but at least MinAxisMax
func AxisMax(records []models.TargetRecord) float64 {
	max := MinAxisMax
	for _, r := range records {
		if r.AverageLatency != nil && *r.AverageLatency > max {
			max = *r.AverageLatency
		}
	}
	return max
}

// GradeOf classifies a latency in milliseconds
func GradeOf(ms float64) Grade {
	switch {
	case ms < fastThreshold:
		return GradeFast
	case ms < moderateThreshold:
		return GradeModerate
	default:
		return GradeSlow
	}
}

// BarPercent maps a latency onto a bar length in percent of axisMax,
// clamped to [5, 100] so every bar stays visible.
func BarPercent(value, axisMax float64) float64 {
	if axisMax <= 0 {
		return 100
	}
	return math.Min(100, math.Max(5, value/axisMax*100))
}
