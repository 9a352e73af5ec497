package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"latencyrank/internal/input"
	"latencyrank/internal/models"
	"latencyrank/internal/report"
)

const maxBodyBytes = 1 << 20

type snapshotResponse struct {
	RunID       string                    `json:"run_id"`
	RunState    models.RunState           `json:"run_state"`
	StartedAt   *time.Time                `json:"started_at,omitempty"`
	FinishedAt  *time.Time                `json:"finished_at,omitempty"`
	Records     []models.TargetRecord     `json:"records"`
	Leaderboard []report.LeaderboardEntry `json:"leaderboard"`
	AxisMax     float64                   `json:"axis_max"`
}

type runRequest struct {
	Targets string `json:"targets"`
}

func (s *Server) buildSnapshot() snapshotResponse {
	snap := s.runner.Snapshot()
	p := report.Project(snap.Records, s.topN)

	return snapshotResponse{
		RunID:       snap.RunID,
		RunState:    snap.RunState,
		StartedAt:   timePtr(snap.StartedAt),
		FinishedAt:  timePtr(snap.FinishedAt),
		Records:     p.Ranked,
		Leaderboard: p.Leaderboard,
		AxisMax:     p.AxisMax,
	}
}

// handleSnapshot handles /api/snapshot requests
func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	writeJSON(w, http.StatusOK, s.buildSnapshot())
}

// handleRun handles /api/run requests. The body is either free text or a
// JSON object with a "targets" field.
func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	text, err := targetsText(r.Header.Get("Content-Type"), body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	targets := input.Parse(text)
	if !s.runner.StartRun(targets) {
		http.Error(w, "no targets given", http.StatusBadRequest)
		return
	}

	snap := s.runner.Snapshot()
	log.WithFields(log.Fields{"run": snap.RunID, "targets": len(targets)}).Info("Run started via web")
	writeJSON(w, http.StatusAccepted, map[string]any{
		"run_id":  snap.RunID,
		"targets": len(targets),
	})
}

// handleCancel handles /api/cancel requests
func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	s.runner.Cancel()
	w.WriteHeader(http.StatusNoContent)
}

// handlePresets handles /api/presets requests
func (s *Server) handlePresets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, input.Presets())
}

// handleLeaderboard handles /api/leaderboard.png requests
func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	p := report.Project(s.runner.Snapshot().Records, s.topN)

	var buf bytes.Buffer
	if err := report.RenderLeaderboard(&buf, p.Leaderboard, p.AxisMax); err != nil {
		if errors.Is(err, report.ErrNoData) {
			http.NotFound(w, r)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(buf.Bytes())
}

func targetsText(contentType string, body []byte) (string, error) {
	mediaType, _, _ := mime.ParseMediaType(contentType)
	trimmed := bytes.TrimSpace(body)

	if mediaType != "application/json" && (len(trimmed) == 0 || trimmed[0] != '{') {
		return string(body), nil
	}

	var req runRequest
	if err := json.Unmarshal(trimmed, &req); err != nil {
		return "", errors.New("invalid JSON body")
	}
	return req.Targets, nil
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func methodNotAllowed(w http.ResponseWriter, allowed string) {
	w.Header().Set("Allow", allowed)
	http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(payload)
}
