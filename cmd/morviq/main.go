// Command morviq runs the sort-last distributed volume-rendering loop: a
// fixed group of simulated peers ray-march a volume field, composite
// their local frames, and write the result, once per frame, in lockstep.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/piatra-institute/morviq/internal/collective"
	"github.com/piatra-institute/morviq/internal/composite"
	"github.com/piatra-institute/morviq/internal/config"
	"github.com/piatra-institute/morviq/internal/control"
	"github.com/piatra-institute/morviq/internal/logging"
	"github.com/piatra-institute/morviq/internal/metrics"
	"github.com/piatra-institute/morviq/internal/monitor"
	intOtel "github.com/piatra-institute/morviq/internal/otel"
	"github.com/piatra-institute/morviq/internal/sink"
	"github.com/piatra-institute/morviq/internal/store"
	"github.com/piatra-institute/morviq/internal/volume"
	"github.com/piatra-institute/morviq/pkg/core"
)

// BuildVersion and BuildDate are overridden at build time via -ldflags.
var (
	BuildVersion = "0.0.1"
	BuildDate    = "unknown"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "morviq:", err)
		os.Exit(1)
	}
}

func run() error {
	fs := pflag.NewFlagSet("morviq", pflag.ContinueOnError)
	config.RegisterFlags(fs)
	configDir := fs.String("config", "", "directory containing morviq.cfg.json")
	if err := fs.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return fmt.Errorf("parsing flags: %w", err)
	}
	if err := config.BindFlags(fs); err != nil {
		return err
	}

	settings, err := config.Load(*configDir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	mode, err := parseCompositeMode(settings.CompositeMode)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(settings.OutputDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory %s: %w", settings.OutputDir, err)
	}
	logFile, err := os.Create(logging.LogFilePath(settings.OutputDir, "morviq", time.Now()))
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	defer logFile.Close()

	log := logging.New(logging.Config{
		Level:          config.GetString("logLevel"),
		File:           logFile,
		GraylogEnabled: config.GetBool("graylog.enabled"),
		GraylogAddress: config.GetString("graylog.address"),
	})
	log.Info().
		Str("version", BuildVersion).
		Str("buildDate", BuildDate).
		Int("width", settings.Width).
		Int("height", settings.Height).
		Int("frames", settings.Frames).
		Int("peers", settings.Peers).
		Str("mode", mode.String()).
		Msg("morviq: starting render run")

	otelProvider, err := intOtel.New(intOtel.Config{Enabled: false, ServiceName: "morviq"})
	if err != nil {
		return fmt.Errorf("starting otel provider: %w", err)
	}
	defer otelProvider.Shutdown(context.Background())

	metricsManager := metrics.NewManager(log, filepath.Join(settings.OutputDir, "metrics-backup.gz"))
	if err := metricsManager.Connect(); err != nil {
		log.Warn().Err(err).Msg("morviq: influx metrics unavailable, frame timing points will not be recorded")
	}

	ledger, err := openLedger(log, settings.OutputDir)
	if err != nil {
		return fmt.Errorf("opening frame ledger: %w", err)
	}
	defer ledger.Close()

	statusSvc := monitor.NewService(monitor.Dependencies{
		StatusFilePath: filepath.Join(settings.OutputDir, "status.json"),
		WriteInterval:  time.Second,
	})
	if err := statusSvc.Start(); err != nil {
		log.Warn().Err(err).Msg("morviq: status file writer failed to start")
	}
	defer statusSvc.Stop()

	state := control.NewState()
	state.Update(func(cs *core.ControlState) {
		cs.Viewport = [2]int{settings.Width, settings.Height}
		cs.TimeStep = settings.Timestep
	})

	ctrlServer, err := control.NewServer(log, state, func() {
		log.Debug().Msg("morviq: control state updated")
	})
	if err != nil {
		return fmt.Errorf("building control server: %w", err)
	}
	if err := ctrlServer.Listen(fmt.Sprintf("127.0.0.1:%d", settings.Port)); err != nil {
		return fmt.Errorf("starting control server: %w", err)
	}
	defer ctrlServer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if settings.GPU {
		probeGPUCompositor(log, mode)
	}

	group, err := collective.NewGroup(settings.Peers)
	if err != nil {
		return fmt.Errorf("building peer group: %w", err)
	}

	frameSink := sink.NewPNGSink(log, settings.OutputDir)
	defer frameSink.Close()

	fieldCache := volume.NewFieldCache()

	var wg sync.WaitGroup
	errs := make([]error, settings.Peers)
	for rank := 0; rank < settings.Peers; rank++ {
		wg.Add(1)
		go func(rank int) {
			defer wg.Done()
			errs[rank] = runPeer(ctx, peerDeps{
				rank:       rank,
				view:       group.Rank(rank),
				settings:   settings,
				mode:       mode,
				log:        log,
				frameSink:  frameSink,
				ledger:     ledger,
				metrics:    metricsManager,
				status:     statusSvc,
				state:      state,
				fieldCache: fieldCache,
			})
		}(rank)
	}
	wg.Wait()

	for rank, e := range errs {
		if e != nil {
			return fmt.Errorf("peer %d: %w", rank, e)
		}
	}

	if settings.Interactive {
		log.Info().Msg("morviq: fixed frame count complete, control server remains interactive until signaled")
		<-ctx.Done()
	}

	return nil
}

// openLedger prefers the GORM-backed ledger, falling back to an
// in-memory one if the ledger cannot be opened at all (the GORM backend
// already falls back from Postgres to a local SQLite file on its own).
func openLedger(log zerolog.Logger, outputDir string) (store.Backend, error) {
	backend, err := store.NewGorm(log, filepath.Join(outputDir, "frames.db"))
	if err != nil {
		log.Warn().Err(err).Msg("morviq: frame ledger unavailable, using in-memory ledger")
		backend := store.NewMemory()
		return backend, backend.Init()
	}
	if err := backend.Init(); err != nil {
		return nil, err
	}
	return backend, nil
}

// parseCompositeMode maps the --mode flag value to a core.CompositeMode.
func parseCompositeMode(text string) (core.CompositeMode, error) {
	switch text {
	case "mindepth":
		return core.MinDepth, nil
	case "alphablend":
		return core.AlphaBlend, nil
	case "maxintensity":
		return core.MaxIntensity, nil
	default:
		return 0, fmt.Errorf("unknown --mode %q", text)
	}
}

// probeGPUCompositor constructs a single-peer GPUCompositor and runs it
// once against a pair of 1x1 frames so --gpu always reports a definite
// outcome instead of silently doing nothing; every build of this binary
// lacks a GPU backend, so this always falls through to the CPU path, but
// the probe itself is real.
func probeGPUCompositor(log zerolog.Logger, mode core.CompositeMode) {
	probeGroup, err := collective.NewGroup(1)
	if err != nil {
		log.Warn().Err(err).Msg("morviq: gpu probe failed to build a peer group")
		return
	}
	gpu := composite.NewGPU(probeGroup.Rank(0), mode)
	local, _ := core.NewFrame(1, 1)
	output, _ := core.NewFrame(1, 1)
	if err := gpu.Composite(local, output); err != nil {
		log.Info().Err(err).Msg("morviq: no GPU compositor available, using CPU path")
		return
	}
	log.Info().Msg("morviq: GPU compositor available")
}
