package config

import (
	"time"

	"github.com/alecthomas/kingpin/v2"
)

// Flags are the command-line settings; they fill whatever the config file leaves unset
type Flags struct {
	ConfigFile *string

	targets     *[]string
	targetsFile *string
	watch       *bool
	preset      *string
	tailnet     *string

	mode     *string
	count    *int
	delay    *time.Duration
	timeout  *time.Duration
	dnsQuery *string
	tcpPort  *int
	batch    *int

	reportTop *int
	reportDir *string
	listen    *string

	logLevel    *string
	logFormat   *string
	logFile     *string
	logMaxMB    *int
	logMaxFiles *int
}

// RegisterFlags declares all flags on app, with defaults taken from Default()
func RegisterFlags(app *kingpin.Application) *Flags {
	d := Default()

	return &Flags{
		ConfigFile: app.Flag("config.path", "Path to a YAML or TOML config file").Default("").String(),

		targetsFile: app.Flag("targets.file", "File with one target per line").Default("").String(),
		watch:       app.Flag("targets.watch", "Restart the run whenever the targets file changes").Bool(),
		preset:      app.Flag("targets.preset", "Use a built-in target list (Public DNS, FAANG, Global News)").Default("").String(),
		tailnet:     app.Flag("tailscale.tailnet", "Rank the devices of this tailnet (API key from TS_API_KEY)").Default("").String(),

		mode:     app.Flag("probe.mode", "Probe kind. Valid modes: [http, tcp, icmp, dns]").Default(d.Probe.Mode).String(),
		count:    app.Flag("probe.count", "Number of probes per target").Default("5").Int(),
		delay:    app.Flag("probe.delay", "Pause between probes of one target").Default(d.Probe.Delay.Duration().String()).Duration(),
		timeout:  app.Flag("probe.timeout", "Deadline of a single probe").Default(d.Probe.Timeout.Duration().String()).Duration(),
		dnsQuery: app.Flag("probe.dns-query", "Name queried in dns mode").Default(d.Probe.DNSQuery).String(),
		tcpPort:  app.Flag("probe.tcp-port", "Port used in tcp mode when the target has none").Default("443").Int(),
		batch:    app.Flag("batch.size", "Number of targets measured concurrently").Default("3").Int(),

		reportTop: app.Flag("report.top", "Number of leaderboard entries").Default("10").Int(),
		reportDir: app.Flag("report.dir", "Directory for generated reports").Default(d.Report.Dir).String(),
		listen:    app.Flag("web.listen-address", "Address of the web interface (empty for a one-shot run)").Default("").String(),

		logLevel:    app.Flag("log.level", "Only log messages with the given severity or above. Valid levels: [debug, info, warn, error, fatal]").Default(d.Log.Level).String(),
		logFormat:   app.Flag("log.format", "Log format. Valid formats: [text, json]").Default(d.Log.Format).String(),
		logFile:     app.Flag("log.file", "Write logs to this file with rotation").Default("").String(),
		logMaxMB:    app.Flag("log.max-mb", "Rotate the log file at this size").Default("10").Int(),
		logMaxFiles: app.Flag("log.max-files", "Number of rotated log files to keep").Default("3").Int(),

		targets: app.Arg("targets", "Targets to rank").Strings(),
	}
}

// Apply fills every zero value of cfg from the flags
func (f *Flags) Apply(cfg *Config) {
	if len(cfg.Targets) == 0 {
		cfg.Targets = *f.targets
	}
	if cfg.TargetsFile == "" {
		cfg.TargetsFile = *f.targetsFile
	}
	cfg.Watch = cfg.Watch || *f.watch
	if cfg.Preset == "" {
		cfg.Preset = *f.preset
	}
	if cfg.Tailscale.Tailnet == "" {
		cfg.Tailscale.Tailnet = *f.tailnet
	}

	if cfg.Probe.Mode == "" {
		cfg.Probe.Mode = *f.mode
	}
	if cfg.Probe.Count == 0 {
		cfg.Probe.Count = *f.count
	}
	if cfg.Probe.Delay == 0 {
		cfg.Probe.Delay = Duration(*f.delay)
	}
	if cfg.Probe.Timeout == 0 {
		cfg.Probe.Timeout = Duration(*f.timeout)
	}
	if cfg.Probe.DNSQuery == "" {
		cfg.Probe.DNSQuery = *f.dnsQuery
	}
	if cfg.Probe.TCPPort == 0 {
		cfg.Probe.TCPPort = *f.tcpPort
	}
	if cfg.Batch.Size == 0 {
		cfg.Batch.Size = *f.batch
	}

	if cfg.Report.Top == 0 {
		cfg.Report.Top = *f.reportTop
	}
	if cfg.Report.Dir == "" {
		cfg.Report.Dir = *f.reportDir
	}
	if cfg.Web.ListenAddress == "" {
		cfg.Web.ListenAddress = *f.listen
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = *f.logLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = *f.logFormat
	}
	if cfg.Log.File == "" {
		cfg.Log.File = *f.logFile
	}
	if cfg.Log.MaxMB == 0 {
		cfg.Log.MaxMB = *f.logMaxMB
	}
	if cfg.Log.MaxFiles == 0 {
		cfg.Log.MaxFiles = *f.logMaxFiles
	}
}
