package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/meridianmaritime/globe/internal/config"
	"github.com/meridianmaritime/globe/internal/globe"
	"github.com/meridianmaritime/globe/internal/influx"
	"github.com/meridianmaritime/globe/internal/logging"
	"github.com/meridianmaritime/globe/internal/monitor"
	intOtel "github.com/meridianmaritime/globe/internal/otel"
	"github.com/meridianmaritime/globe/internal/storage"
)

// app holds the ambient services shared by every command.
type app struct {
	logs      *logging.SlogManager
	logger    *slog.Logger
	zlog      zerolog.Logger
	telemetry *intOtel.Provider
	logFile   *os.File
	influx    *influx.Manager
	closers   []func() error

	sessionStart time.Time
}

// newApp opens the log file and starts telemetry. Logs go to the file so
// the terminal viewer owns stdout; without a writable logs dir they go to
// stdout.
func newApp() (*app, error) {
	a := &app{
		logs:         logging.NewSlogManager(),
		sessionStart: time.Now(),
	}
	level := config.GetString("logLevel")

	logsDir := config.GetString("logsDir")
	if f, err := logging.OpenLogFile(logsDir, AppName, a.sessionStart); err == nil {
		a.logFile = f
	} else {
		fmt.Fprintf(os.Stderr, "logging to stdout: %v\n", err)
	}

	otelCfg := intOtel.Config{
		Enabled:      config.GetBool("otel.enabled"),
		ServiceName:  config.GetString("otel.serviceName"),
		BatchTimeout: config.GetDuration("otel.batchTimeout"),
		Endpoint:     config.GetString("otel.endpoint"),
		Insecure:     config.GetBool("otel.insecure"),
	}
	if a.logFile != nil {
		otelCfg.LogWriter = a.logFile
	}
	var err error
	a.telemetry, err = intOtel.New(otelCfg)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("starting telemetry: %w", err)
	}

	var opts []logging.Option
	if config.GetBool("graylog.enabled") {
		gw, err := logging.NewGraylogWriter(config.GetString("graylog.address"))
		if err != nil {
			fmt.Fprintf(os.Stderr, "graylog disabled: %v\n", err)
		} else {
			opts = append(opts, logging.WithGraylog(gw))
			a.closers = append(a.closers, gw.Close)
		}
	}
	opts = append(opts, logging.WithContext(func() []slog.Attr {
		return []slog.Attr{slog.String("session", a.sessionStart.UTC().Format(time.RFC3339))}
	}))

	if a.logFile != nil {
		a.logs.Setup(a.logFile, level, a.telemetry.LoggerProvider(), opts...)
		a.zlog = logging.NewConsoleLogger(a.logFile, level)
	} else {
		a.logs.Setup(nil, level, a.telemetry.LoggerProvider(), opts...)
		a.zlog = logging.NewConsoleLogger(os.Stdout, level)
	}
	a.logger = a.logs.Logger()

	if removed, err := logging.PruneLogs(logsDir, AppName, config.GetInt("logsKeep")); err != nil {
		a.logger.Warn("Pruning old logs failed", "error", err)
	} else if len(removed) > 0 {
		a.logger.Debug("Pruned old logs", "count", len(removed))
	}
	return a, nil
}

// hostLogger adapts the zerolog logger for the frame loop.
func (a *app) hostLogger() *logging.HostLogger {
	return logging.NewHostLogger(a.zlog)
}

// openCatalog creates and initializes the configured catalog backend.
func (a *app) openCatalog(ctx context.Context) (storage.Backend, error) {
	b, err := storage.NewBackend(storage.Config{
		Type:       config.GetString("catalog.type"),
		SQLitePath: config.GetString("catalog.sqlite.path"),
	}, storage.Dependencies{
		Logger:   a.logger,
		DBLogger: a.zlog.With().Str("component", "database").Logger(),
	})
	if err != nil {
		return nil, err
	}
	if err := b.Init(ctx); err != nil {
		_ = b.Close()
		return nil, err
	}
	return b, nil
}

// globeOptions resolves the preset, config overrides and catalog contents.
func (a *app) globeOptions(ctx context.Context) (globe.Options, error) {
	opts, err := config.GetGlobeOptions()
	if err != nil {
		return globe.Options{}, err
	}
	cat, err := a.openCatalog(ctx)
	if err != nil {
		return globe.Options{}, fmt.Errorf("opening catalog: %w", err)
	}
	defer cat.Close()

	if err := storage.ApplyTo(ctx, cat, &opts); err != nil {
		return globe.Options{}, err
	}
	// catalog markers were not validated with the preset
	if err := opts.Validate(); err != nil {
		return globe.Options{}, err
	}
	return opts, nil
}

// observers returns the frame observers enabled in config.
func (a *app) observers(ctx context.Context, variant globe.Variant) []globe.FrameObserver {
	if !config.GetBool("influx.enabled") {
		return nil
	}

	backup := logging.LogFilePath(config.GetString("logsDir"), AppName+"-influx", a.sessionStart) + ".lp.gz"
	m := influx.NewManager(a.zlog.With().Str("component", "influx").Logger(), backup)
	if err := m.Connect(ctx); err != nil {
		a.logger.Warn("Influx recording disabled", "error", err)
		return nil
	}
	a.influx = m
	a.closers = append(a.closers, m.Close)

	every := uint64(config.GetInt("influx.sampleEvery"))
	return []globe.FrameObserver{
		influx.NewRecorder(m, config.GetString("influx.bucket"), variant, every, a.zlog),
	}
}

// startMonitor starts the status file writer when monitor.enabled is set.
// It stops in Close, after the globe has reported its session.
func (a *app) startMonitor(counters map[string]monitor.Counter) []globe.FrameObserver {
	if !config.GetBool("monitor.enabled") {
		return nil
	}
	counters["logFailures"] = a.logs.Failures
	mon := monitor.NewService(monitor.Dependencies{
		Logger:     a.logger,
		StatusPath: filepath.Join(config.GetString("logsDir"), AppName+"-status.json"),
		Interval:   config.GetDuration("monitor.interval"),
		Counters:   counters,
	})
	ctx, cancel := context.WithCancel(context.Background())
	if err := mon.Start(ctx); err != nil {
		cancel()
		a.logger.Warn("Status monitor disabled", "error", err)
		return nil
	}
	a.closers = append(a.closers, func() error {
		cancel()
		mon.Wait()
		return nil
	})
	return []globe.FrameObserver{mon}
}

// Close flushes telemetry and closes every resource the app opened.
func (a *app) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	if a.telemetry != nil {
		errs = append(errs, a.telemetry.Shutdown(ctx))
	}
	if err := errors.Join(errs...); err != nil && a.logger != nil {
		a.logger.Warn("Shutdown incomplete", "error", err)
	}
	if a.logFile != nil {
		_ = a.logFile.Close()
	}
}
