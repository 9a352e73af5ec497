package report

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	log "github.com/sirupsen/logrus"

	"latencyrank/internal/models"
)

// Generator writes ranking reports to disk
type Generator struct {
	topN int
}

// NewGenerator creates a new report generator
func NewGenerator(topN int) *Generator {
	if topN <= 0 {
		topN = DefaultTopN
	}
	return &Generator{topN: topN}
}

// GenerateReport writes the leaderboard chart and a text summary of snap into
// a new timestamped directory below outputDir and returns its path.
func (g *Generator) GenerateReport(outputDir string, snap models.Snapshot) (string, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	name := fmt.Sprintf("latency_report_%s", time.Now().Format("2006-01-02_15-04-05"))
	if id := snap.RunID; id != "" {
		if len(id) > 8 {
			id = id[:8]
		}
		name += "_" + sanitizeFilename(id)
	}
	reportDir := filepath.Join(outputDir, name)
	if err := os.MkdirAll(reportDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}

	p := Project(snap.Records, g.topN)

	if err := writeFile(filepath.Join(reportDir, "leaderboard.png"), func(f *os.File) error {
		return RenderLeaderboard(f, p.Leaderboard, p.AxisMax)
	}); err != nil {
		if errors.Is(err, ErrNoData) {
			log.Warnln("No successful probes, skipping leaderboard chart")
		} else {
			log.Errorf("Failed to generate leaderboard chart: %v", err)
		}
	}

	if err := writeFile(filepath.Join(reportDir, "summary.txt"), func(f *os.File) error {
		return WriteText(f, snap, p)
	}); err != nil {
		return reportDir, fmt.Errorf("failed to write text report: %w", err)
	}

	log.Infof("Report generated in: %s", reportDir)
	return reportDir, nil
}

func writeFile(path string, fn func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}
