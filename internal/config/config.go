package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for a ranking session
type Config struct {
	Targets     []string `yaml:"targets" toml:"targets"`
	TargetsFile string   `yaml:"targets_file" toml:"targets_file"`
	Watch       bool     `yaml:"watch" toml:"watch"`
	Preset      string   `yaml:"preset" toml:"preset"`

	Probe     ProbeConfig     `yaml:"probe" toml:"probe"`
	Batch     BatchConfig     `yaml:"batch" toml:"batch"`
	Report    ReportConfig    `yaml:"report" toml:"report"`
	Web       WebConfig       `yaml:"web" toml:"web"`
	Log       LogConfig       `yaml:"log" toml:"log"`
	Tailscale TailscaleConfig `yaml:"tailscale" toml:"tailscale"`
}

type ProbeConfig struct {
	Mode     string   `yaml:"mode" toml:"mode"`
	Count    int      `yaml:"count" toml:"count"`
	Delay    Duration `yaml:"delay" toml:"delay"`
	Timeout  Duration `yaml:"timeout" toml:"timeout"`
	DNSQuery string   `yaml:"dns_query" toml:"dns_query"`
	TCPPort  int      `yaml:"tcp_port" toml:"tcp_port"`
}

type BatchConfig struct {
	Size int `yaml:"size" toml:"size"`
}

type ReportConfig struct {
	Top int    `yaml:"top" toml:"top"`
	Dir string `yaml:"dir" toml:"dir"`
}

type WebConfig struct {
	ListenAddress string `yaml:"listen_address" toml:"listen_address"`
}

type LogConfig struct {
	Level    string `yaml:"level" toml:"level"`
	Format   string `yaml:"format" toml:"format"`
	File     string `yaml:"file" toml:"file"`
	MaxMB    int    `yaml:"max_mb" toml:"max_mb"`
	MaxFiles int    `yaml:"max_files" toml:"max_files"`
}

type TailscaleConfig struct {
	Tailnet string `yaml:"tailnet" toml:"tailnet"`
}

// Duration is a time.Duration written as "200ms" or "5s" in config files
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	return d.UnmarshalText([]byte(s))
}

// UnmarshalText implements encoding.TextUnmarshaler, used by the TOML decoder
func (d *Duration) UnmarshalText(text []byte) error {
	dur, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(dur)
	return nil
}

// MarshalText implements encoding.TextMarshaler
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Duration is a convenience getter
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

var probeModes = []string{"http", "tcp", "icmp", "dns"}

// Default returns the built-in configuration
func Default() Config {
	return Config{
		Probe: ProbeConfig{
			Mode:     "http",
			Count:    5,
			Delay:    Duration(200 * time.Millisecond),
			Timeout:  Duration(5 * time.Second),
			DNSQuery: "example.com",
			TCPPort:  443,
		},
		Batch: BatchConfig{Size: 3},
		Report: ReportConfig{Top: 10},
		Log: LogConfig{
			Level:    "info",
			Format:   "text",
			MaxMB:    10,
			MaxFiles: 3,
		},
	}
}

// Load reads a YAML or TOML config file, picked by extension
func Load(path string) (Config, error) {
	var cfg Config

	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config file not found: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("decode config: %w", err)
		}
	case ".toml":
		if _, err := toml.Decode(string(b), &cfg); err != nil {
			return cfg, fmt.Errorf("decode config: %w", err)
		}
	default:
		return cfg, fmt.Errorf("unsupported config format %q (use .yaml, .yml or .toml)", filepath.Ext(path))
	}

	return cfg, nil
}

// Validate checks if the configuration is valid, reporting every problem at once
func (c *Config) Validate() error {
	var errs []string

	if !contains(probeModes, c.Probe.Mode) {
		errs = append(errs, fmt.Sprintf("probe.mode must be one of [%s]", strings.Join(probeModes, ", ")))
	}
	if c.Probe.Count <= 0 {
		errs = append(errs, "probe.count must be > 0")
	}
	if c.Probe.Delay < 0 {
		errs = append(errs, "probe.delay must be >= 0")
	}
	if c.Probe.Timeout <= 0 {
		errs = append(errs, "probe.timeout must be > 0")
	}
	if c.Probe.Mode == "dns" && strings.TrimSpace(c.Probe.DNSQuery) == "" {
		errs = append(errs, "probe.dns_query is required in dns mode")
	}
	if c.Probe.TCPPort <= 0 || c.Probe.TCPPort > 65535 {
		errs = append(errs, "probe.tcp_port must be between 1 and 65535")
	}
	if c.Batch.Size <= 0 {
		errs = append(errs, "batch.size must be > 0")
	}
	if c.Report.Top <= 0 {
		errs = append(errs, "report.top must be > 0")
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, "log.level must be one of [debug, info, warn, error, fatal]")
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		errs = append(errs, "log.format must be text or json")
	}
	if c.Log.File != "" {
		if c.Log.MaxMB <= 0 {
			errs = append(errs, "log.max_mb must be > 0")
		}
		if c.Log.MaxFiles <= 0 {
			errs = append(errs, "log.max_files must be > 0")
		}
	}
	if c.Watch && c.TargetsFile == "" {
		errs = append(errs, "watch requires targets_file")
	}
	for i, t := range c.Targets {
		if strings.TrimSpace(t) == "" {
			errs = append(errs, fmt.Sprintf("targets[%d] is empty", i))
		}
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
