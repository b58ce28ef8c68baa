// Command codec-sim runs a simulated video codec.
//
// It demonstrates a complete codec driver with:
//   - CLI argument parsing and YAML configuration
//   - Usage tracking with persisted sessions
//   - A CBOR event trace of feedback changes
//   - mDNS advertisement of the control endpoint
//   - An interactive console
//
// Usage:
//
//	codec-sim [flags]
//
// Flags:
//
//	-config string       Configuration file path (YAML)
//	-driver string       Driver: mockvc, minimal (default "mockvc")
//	-key string          Device key (auto-generated if empty)
//	-name string         Display name
//	-event-log string    CBOR event log path
//	-usage-store string  JSON usage session store path
//	-advertise           Advertise the codec via mDNS
//	-port int            Advertised control port (default 6980)
//	-log-level string    Log level: debug, info, warn, error (default "info")
//	-simulate            Ring the codec periodically
//	-interactive         Start the interactive console
//
// Examples:
//
//	# Interactive mock codec with a usage store
//	codec-sim -interactive -usage-store /tmp/usage.json
//
//	# Advertised codec from a config file, with debug logging
//	codec-sim -config /etc/codec/room-101.yaml -advertise -log-level debug
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/roomkit/codec-go/cmd/codec-sim/interactive"
	"github.com/roomkit/codec-go/pkg/codec"
	"github.com/roomkit/codec-go/pkg/discovery"
	"github.com/roomkit/codec-go/pkg/examples"
	codeclog "github.com/roomkit/codec-go/pkg/log"
	"github.com/roomkit/codec-go/pkg/persistence"
	"github.com/roomkit/codec-go/pkg/usage"
)

var (
	config     Config
	configFile string
)

func init() {
	flag.StringVar(&configFile, "config", "", "Configuration file path (YAML)")
	flag.StringVar((*string)(&config.Driver), "driver", "", "Driver: mockvc, minimal")
	flag.StringVar(&config.Key, "key", "", "Device key (auto-generated if empty)")
	flag.StringVar(&config.Name, "name", "", "Display name")
	flag.StringVar(&config.EventLog, "event-log", "", "CBOR event log path")
	flag.StringVar(&config.UsageStore, "usage-store", "", "JSON usage session store path")
	flag.BoolVar(&config.Discovery.Enabled, "advertise", false, "Advertise the codec via mDNS")
	flag.IntVar(&config.Discovery.Port, "port", 0, "Advertised control port")
	flag.StringVar(&config.LogLevel, "log-level", "", "Log level: debug, info, warn, error")
	flag.BoolVar(&config.Simulate, "simulate", false, "Ring the codec periodically")
	flag.BoolVar(&config.Interactive, "interactive", false, "Start the interactive console")
}

// device is what the simulator needs from a driver.
type device interface {
	codec.Codec
	Close() error
}

func main() {
	flag.Parse()

	if configFile != "" {
		if err := loadConfigFile(configFile, &config); err != nil {
			log.Fatalf("Invalid configuration: %v", err)
		}
		// Explicit flags win over the file.
		_ = flag.CommandLine.Parse(os.Args[1:])
	}

	if err := validateConfig(&config); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	applyDefaults(&config)

	var console *interactive.Console
	var out io.Writer = os.Stderr
	if config.Interactive {
		var err error
		console, err = interactive.New()
		if err != nil {
			log.Fatalf("Failed to start console: %v", err)
		}
		out = console.Stderr()
	}
	setupLogging(config.LogLevel, out)
	if console != nil {
		console.SetBrowser(discovery.NewMDNSBrowser(discovery.BrowserConfig{
			Interface: config.Discovery.Interface,
			Logger:    slog.Default(),
		}))
	}

	log.Println("Codec Simulator")
	log.Println("===============")
	log.Printf("Driver: %s", config.Driver)
	log.Printf("Key:    %s", config.Key)
	log.Printf("Name:   %s", config.Name)

	events, closeEvents, err := setupEventLog(config.EventLog)
	if err != nil {
		log.Fatalf("Failed to open event log: %v", err)
	}
	defer closeEvents()

	recorder := setupUsage(&config)

	dev, err := createDevice(&config, events, recorder)
	if err != nil {
		log.Fatalf("Failed to create device: %v", err)
	}
	defer dev.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var advertiser *discovery.MDNSAdvertiser
	if config.Discovery.Enabled {
		advertiser = discovery.NewMDNSAdvertiser(discovery.AdvertiserConfig{
			Interface: config.Discovery.Interface,
			TTL:       config.Discovery.TTL,
			Logger:    slog.Default(),
		})
		if err := advertiser.Advertise(ctx, codecInfo(&config, dev)); err != nil {
			log.Printf("Warning: Failed to advertise: %v", err)
		}
		defer advertiser.Stop()
	}

	if config.Simulate {
		go runSimulation(ctx, dev, config.SimulateEvery)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sigCh:
			log.Printf("Received signal: %v", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	if console != nil {
		console.Run(ctx, cancel, dev, recorder)
	} else {
		<-ctx.Done()
	}

	log.Println("Shutting down...")
	printUsageSummary(recorder)
	log.Println("Goodbye!")
}

func setupLogging(level string, out io.Writer) {
	log.SetOutput(out)
	log.SetFlags(log.Ltime | log.Lmicroseconds)

	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
		log.SetFlags(log.Ltime | log.Lmicroseconds | log.Lshortfile)
	case "warn":
		lvl = slog.LevelWarn
		log.SetFlags(log.Ltime)
	case "error":
		lvl = slog.LevelError
		log.SetFlags(log.Ltime)
	default:
		lvl = slog.LevelInfo
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: lvl})))
}

// setupEventLog builds the event trace: debug-level slog always, plus a
// CBOR file when path is set.
func setupEventLog(path string) (codeclog.Logger, func(), error) {
	adapter := codeclog.NewSlogAdapter(slog.Default())
	if path == "" {
		return adapter, func() {}, nil
	}

	file, err := codeclog.NewFileLogger(path)
	if err != nil {
		return nil, nil, err
	}
	log.Printf("Event log: %s", path)

	closeFn := func() {
		if n := file.Dropped(); n > 0 {
			log.Printf("Event log dropped %d events", n)
		}
		if err := file.Close(); err != nil {
			log.Printf("Error closing event log: %v", err)
		}
	}
	return codeclog.NewMultiLogger(adapter, file), closeFn, nil
}

func setupUsage(cfg *Config) *usage.Recorder {
	opts := []usage.Option{
		usage.OnUsageEnded(func(s usage.Session) {
			log.Printf("[USAGE] Call lasted %s (session %s)", s.Duration.Round(time.Second), s.ID)
		}),
	}
	if cfg.UsageStore != "" {
		log.Printf("Usage store: %s", cfg.UsageStore)
		opts = append(opts, usage.WithStore(persistence.NewUsageStore(cfg.UsageStore)))
	}
	return usage.NewRecorder(cfg.Key, opts...)
}

func createDevice(cfg *Config, events codeclog.Logger, tracker codec.UsageTracker) (device, error) {
	ports, err := inputPorts(cfg)
	if err != nil {
		return nil, err
	}

	switch cfg.Driver {
	case DriverMinimal:
		m, err := examples.NewMinimal(cfg.Key, cfg.Name,
			codec.WithEventLogger(events),
			codec.WithUsageTracker(tracker),
		)
		if err != nil {
			return nil, err
		}
		for i := range ports {
			if err := m.InputPorts().Add(&ports[i]); err != nil {
				_ = m.Close()
				return nil, err
			}
		}
		return m, nil

	default:
		m, err := examples.NewMockVC(examples.MockVCConfig{
			Key:           cfg.Key,
			Name:          cfg.Name,
			Inputs:        ports,
			ManualConnect: cfg.ManualConnect,
			InitialVolume: cfg.InitialVolume,
			PollInterval:  cfg.PollInterval,
			EventLogger:   events,
			UsageTracker:  tracker,
		})
		if err != nil {
			return nil, err
		}
		return m, nil
	}
}

func codecInfo(cfg *Config, dev device) *discovery.CodecInfo {
	return &discovery.CodecInfo{
		Key:          dev.Key(),
		Name:         dev.Name(),
		Model:        cfg.Discovery.Model,
		Firmware:     cfg.Discovery.Firmware,
		Port:         uint16(cfg.Discovery.Port),
		Capabilities: codec.Capabilities(dev),
	}
}

func printUsageSummary(recorder *usage.Recorder) {
	total, n := recorder.Total()
	fmt.Fprintf(log.Writer(), "Usage: %d call(s), %s in call\n", n, total.Round(time.Second))
}
