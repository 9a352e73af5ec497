package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"

	"latencyrank/internal/config"
	"latencyrank/internal/discovery"
	"latencyrank/internal/input"
	"latencyrank/internal/logging"
	"latencyrank/internal/metrics"
	"latencyrank/internal/models"
	"latencyrank/internal/monitor"
	"latencyrank/internal/ping"
	"latencyrank/internal/report"
	"latencyrank/internal/store"
	"latencyrank/internal/web"
)

const version string = "0.1.0"

func main() {
	app := kingpin.New("latencyrank", "Measures and ranks targets by latency.")
	app.Version(version)
	app.HelpFlag.Short('h')
	flags := config.RegisterFlags(app)
	kingpin.MustParse(app.Parse(os.Args[1:]))

	cfg, err := loadConfig(flags)
	if err != nil {
		app.Fatalf("%v", err)
	}
	if err := cfg.Validate(); err != nil {
		app.Fatalf("invalid configuration: %v", err)
	}

	logFile, err := logging.Setup(cfg.Log)
	if err != nil {
		app.Fatalf("could not set up logging: %v", err)
	}
	defer logFile.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	targets, err := resolveTargets(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to resolve targets: %v", err)
	}

	prober, err := ping.New(ping.Config{
		Mode:     cfg.Probe.Mode,
		TCPPort:  strconv.Itoa(cfg.Probe.TCPPort),
		DNSQuery: cfg.Probe.DNSQuery,
	})
	if err != nil {
		log.Fatalf("Failed to create prober: %v", err)
	}
	if c, ok := prober.(io.Closer); ok {
		defer c.Close()
	}

	probes := metrics.NewProbeCounter()
	mon := monitor.New(monitor.Config{
		MaxProbes:    cfg.Probe.Count,
		ProbeDelay:   cfg.Probe.Delay.Duration(),
		ProbeTimeout: cfg.Probe.Timeout.Duration(),
		BatchSize:    cfg.Batch.Size,
	}, store.New(), prober, probes)

	if cfg.Web.ListenAddress == "" {
		if err := runOnce(ctx, cfg, mon, targets); err != nil {
			log.Error(err)
			os.Exit(1)
		}
		return
	}

	if err := serve(ctx, cfg, mon, probes, targets); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}

func loadConfig(flags *config.Flags) (config.Config, error) {
	cfg := config.Config{}
	if *flags.ConfigFile != "" {
		var err error
		if cfg, err = config.Load(*flags.ConfigFile); err != nil {
			return cfg, err
		}
	}
	flags.Apply(&cfg)
	return cfg, nil
}

// resolveTargets concatenates every configured target source in a fixed
// order: explicit list, targets file, preset, tailnet devices.
func resolveTargets(ctx context.Context, cfg config.Config) ([]string, error) {
	targets := append([]string(nil), cfg.Targets...)

	if cfg.TargetsFile != "" {
		fromFile, err := input.ReadFile(cfg.TargetsFile)
		if err != nil {
			return nil, err
		}
		targets = append(targets, fromFile...)
	}

	if cfg.Preset != "" {
		p, ok := input.LookupPreset(cfg.Preset)
		if !ok {
			return nil, fmt.Errorf("unknown preset %q", cfg.Preset)
		}
		targets = append(targets, p.Targets...)
	}

	if cfg.Tailscale.Tailnet != "" {
		devices, err := discovery.TailnetTargets(ctx, cfg.Tailscale.Tailnet, os.Getenv("TS_API_KEY"))
		if err != nil {
			return nil, err
		}
		targets = append(targets, devices...)
	}

	return targets, nil
}

func runOnce(ctx context.Context, cfg config.Config, mon *monitor.Monitor, targets []string) error {
	if len(targets) == 0 {
		return fmt.Errorf("no targets given")
	}
	if cfg.Watch {
		log.Warnln("Watching the targets file needs the web interface, ignoring")
	}

	log.Infof("Ranking %d targets (%s, %d probes each)", len(targets), cfg.Probe.Mode, cfg.Probe.Count)
	snap := mon.Run(ctx, targets)

	if err := report.WriteText(os.Stdout, snap, report.Project(snap.Records, cfg.Report.Top)); err != nil {
		return err
	}
	return writeReport(cfg, snap)
}

func serve(ctx context.Context, cfg config.Config, mon *monitor.Monitor, probes *metrics.ProbeCounter, targets []string) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(metrics.NewCollector(mon), probes)

	srv := web.New(cfg.Web.ListenAddress, mon, cfg.Report.Top, metrics.Handler(reg))
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Run()
	}()

	if len(targets) > 0 {
		mon.StartRun(targets)
	}

	if cfg.Watch {
		go func() {
			if err := input.Watch(ctx, cfg.TargetsFile, func(t []string) { mon.StartRun(t) }); err != nil {
				log.Errorf("Targets watcher stopped: %v", err)
			}
		}()
	}

	var err error
	select {
	case <-ctx.Done():
		log.Infoln("Shutting down...")
	case err = <-errCh:
	}

	mon.Cancel()
	mon.Wait()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if serr := srv.Shutdown(shutdownCtx); serr != nil {
		log.Warnf("Web server shutdown: %v", serr)
	}

	if rerr := writeReport(cfg, mon.Snapshot()); rerr != nil && err == nil {
		err = rerr
	}
	return err
}

func writeReport(cfg config.Config, snap models.Snapshot) error {
	if cfg.Report.Dir == "" || len(snap.Records) == 0 {
		return nil
	}
	_, err := report.NewGenerator(cfg.Report.Top).GenerateReport(cfg.Report.Dir, snap)
	return err
}
