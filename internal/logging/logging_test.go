package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	log "github.com/sirupsen/logrus"

	"latencyrank/internal/config"
)

func TestSetLevel(t *testing.T) {
	tests := []struct {
		in   string
		want log.Level
	}{
		{"debug", log.DebugLevel},
		{"warn", log.WarnLevel},
		{"error", log.ErrorLevel},
		{"fatal", log.FatalLevel},
		{"info", log.InfoLevel},
		{"", log.InfoLevel},
	}

	for _, tt := range tests {
		setLevel(tt.in)
		if got := log.GetLevel(); got != tt.want {
			t.Errorf("setLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestSetupFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "latencyrank.log")
	closer, err := Setup(config.LogConfig{Level: "info", Format: "json", File: path, MaxMB: 1, MaxFiles: 1})
	if err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	t.Cleanup(func() {
		log.SetOutput(os.Stderr)
		log.SetFormatter(&log.TextFormatter{})
	})

	log.WithField("target", "a.example").Info("hello")
	if err := closer.Close(); err != nil {
		t.Fatal(err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(b), `"target":"a.example"`) {
		t.Errorf("log file content = %s", b)
	}
}

func TestSetupStderr(t *testing.T) {
	closer, err := Setup(config.LogConfig{Level: "debug", Format: "text"})
	if err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	if err := closer.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if log.GetLevel() != log.DebugLevel {
		t.Errorf("level = %v", log.GetLevel())
	}
	log.SetLevel(log.InfoLevel)
}
