package report

import (
	"errors"
	"io"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// ErrNoData is returned when there is nothing to chart yet
var ErrNoData = errors.New("no latency data to chart")

var gradeColors = map[Grade]drawing.Color{
	GradeFast:     drawing.ColorFromHex("10b981"),
	GradeModerate: drawing.ColorFromHex("fbbf24"),
	GradeSlow:     drawing.ColorFromHex("f43f5e"),
}

// RenderLeaderboard draws the leaderboard as a PNG bar chart, one bar per
// entry coloured by grade, on a 0..axisMax scale.
func RenderLeaderboard(w io.Writer, entries []LeaderboardEntry, axisMax float64) error {
	if len(entries) == 0 {
		return ErrNoData
	}
	if axisMax < MinAxisMax {
		axisMax = MinAxisMax
	}

	bars := make([]chart.Value, 0, len(entries))
	for _, e := range entries {
		color := gradeColors[GradeOf(e.Value)]
		bars = append(bars, chart.Value{
			Label: e.Label,
			Value: e.Value,
			Style: chart.Style{
				FillColor:   color,
				StrokeColor: color,
				StrokeWidth: 1,
			},
		})
	}

	graph := chart.BarChart{
		Title: "Leaderboard (avg latency, ms)",
		TitleStyle: chart.Style{
			FontSize: 16,
		},
		Background: chart.Style{
			Padding: chart.Box{
				Top:    40,
				Left:   20,
				Right:  20,
				Bottom: 20,
			},
		},
		Width:    1200,
		Height:   400,
		BarWidth: 60,
		XAxis: chart.Style{
			StrokeColor: drawing.ColorBlack,
			FontSize:    10,
		},
		YAxis: chart.YAxis{
			Style: chart.Style{
				StrokeColor: drawing.ColorBlack,
				FontSize:    10,
			},
			Range: &chart.ContinuousRange{
				Min: 0,
				Max: axisMax,
			},
			GridMajorStyle: chart.Style{
				StrokeColor: drawing.Color{R: 200, G: 200, B: 200, A: 255},
				StrokeWidth: 1.0,
			},
		},
		Bars: bars,
	}

	return graph.Render(chart.PNG, w)
}
