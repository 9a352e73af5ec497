package input

import (
	"fmt"
	"os"
	"strings"
)

// Preset is a named list of targets
type Preset struct {
	Name    string   `json:"name"`
	Targets []string `json:"targets"`
}

var presets = []Preset{
	{Name: "Public DNS", Targets: []string{"1.1.1.1", "8.8.8.8", "9.9.9.9", "208.67.222.222", "8.26.56.26"}},
	{Name: "FAANG", Targets: []string{"facebook.com", "apple.com", "amazon.com", "netflix.com", "google.com"}},
	{Name: "Global News", Targets: []string{"bbc.com", "cnn.com", "aljazeera.com", "reuters.com", "nytimes.com"}},
}

// Parse splits free text on newlines and commas into a target list.
// Entries are trimmed and empty entries dropped; duplicates are kept.
func Parse(text string) []string {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return r == '\n' || r == '\r' || r == ','
	})

	targets := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			targets = append(targets, f)
		}
	}
	return targets
}

// ReadFile parses the targets listed in a file
func ReadFile(path string) ([]string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read targets file: %w", err)
	}
	return Parse(string(b)), nil
}

// Presets returns copies of the built-in target lists
func Presets() []Preset {
	out := make([]Preset, len(presets))
	for i, p := range presets {
		out[i] = Preset{Name: p.Name, Targets: append([]string(nil), p.Targets...)}
	}
	return out
}

// LookupPreset finds a preset by case-insensitive name
func LookupPreset(name string) (Preset, bool) {
	for _, p := range Presets() {
		if strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return Preset{}, false
}
