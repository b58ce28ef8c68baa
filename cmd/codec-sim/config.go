package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/roomkit/codec-go/pkg/discovery"
	"github.com/roomkit/codec-go/pkg/routing"
)

// DriverType selects the codec driver.
type DriverType string

const (
	DriverMockVC  DriverType = "mockvc"
	DriverMinimal DriverType = "minimal"
)

// Config holds the simulator configuration. Flags override values read
// from the config file.
type Config struct {
	Key    string     `yaml:"key"`
	Name   string     `yaml:"name"`
	Driver DriverType `yaml:"driver"`

	Inputs []InputConfig `yaml:"inputs"`

	ManualConnect bool          `yaml:"manual_connect"`
	InitialVolume int           `yaml:"initial_volume"`
	PollInterval  time.Duration `yaml:"poll_interval"`

	EventLog   string `yaml:"event_log"`
	UsageStore string `yaml:"usage_store"`
	LogLevel   string `yaml:"log_level"`

	Discovery DiscoveryConfig `yaml:"discovery"`

	Simulate      bool          `yaml:"simulate"`
	SimulateEvery time.Duration `yaml:"simulate_every"`
	Interactive   bool          `yaml:"interactive"`
}

// InputConfig describes one routable input.
type InputConfig struct {
	Key        string `yaml:"key"`
	Signal     string `yaml:"signal"`     // audio, video, audio+video, usb
	Connection string `yaml:"connection"` // HDMI, SDI, ...
	Selector   string `yaml:"selector"`
	Internal   bool   `yaml:"internal"`
}

// DiscoveryConfig controls mDNS advertisement.
type DiscoveryConfig struct {
	Enabled   bool          `yaml:"enabled"`
	Port      int           `yaml:"port"`
	Interface string        `yaml:"interface"`
	TTL       time.Duration `yaml:"ttl"`
	Model     string        `yaml:"model"`
	Firmware  string        `yaml:"firmware"`
}

// loadConfigFile reads a YAML config file into cfg.
func loadConfigFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func validateConfig(cfg *Config) error {
	switch cfg.Driver {
	case DriverMockVC, DriverMinimal, "":
		// Valid
	default:
		return fmt.Errorf("unknown driver: %s", cfg.Driver)
	}

	if cfg.Key != "" {
		if err := discovery.ValidateInstanceName(cfg.Key); err != nil {
			return fmt.Errorf("key: %w", err)
		}
	}

	switch strings.ToLower(cfg.LogLevel) {
	case "", "debug", "info", "warn", "error":
		// Valid
	default:
		return fmt.Errorf("unknown log level: %s", cfg.LogLevel)
	}

	if cfg.InitialVolume < 0 || cfg.InitialVolume > 65535 {
		return fmt.Errorf("initial volume must be 0-65535, got %d", cfg.InitialVolume)
	}
	if cfg.Discovery.Port < 0 || cfg.Discovery.Port > 65535 {
		return fmt.Errorf("discovery port must be 0-65535, got %d", cfg.Discovery.Port)
	}

	seen := make(map[string]bool, len(cfg.Inputs))
	for i, in := range cfg.Inputs {
		if in.Key == "" {
			return fmt.Errorf("input %d: key is required", i)
		}
		if seen[in.Key] {
			return fmt.Errorf("input %s: duplicate key", in.Key)
		}
		seen[in.Key] = true
		if _, err := parseSignal(in.Signal); err != nil {
			return fmt.Errorf("input %s: %w", in.Key, err)
		}
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.Driver == "" {
		cfg.Driver = DriverMockVC
	}
	if cfg.Key == "" {
		cfg.Key = fmt.Sprintf("codec-%d", time.Now().Unix()%10000)
	}
	if cfg.Name == "" {
		cfg.Name = fmt.Sprintf("Simulated %s", cfg.Driver)
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if len(cfg.Inputs) == 0 {
		cfg.Inputs = []InputConfig{
			{Key: "hdmi1", Signal: "audio+video", Connection: "HDMI", Selector: "1"},
			{Key: "hdmi2", Signal: "audio+video", Connection: "HDMI", Selector: "2"},
			{Key: "camera", Signal: "video", Selector: "camera", Internal: true},
		}
	}
	if cfg.Discovery.Port == 0 {
		cfg.Discovery.Port = discovery.DefaultPort
	}
	if cfg.Discovery.TTL == 0 {
		cfg.Discovery.TTL = discovery.DefaultTTL
	}
	if cfg.Discovery.Model == "" {
		cfg.Discovery.Model = string(cfg.Driver)
	}
	if cfg.SimulateEvery == 0 {
		cfg.SimulateEvery = 20 * time.Second
	}
}

// inputPorts converts the configured inputs. Selectors default to the
// port key.
func inputPorts(cfg *Config) ([]routing.InputPort, error) {
	ports := make([]routing.InputPort, 0, len(cfg.Inputs))
	for _, in := range cfg.Inputs {
		signal, err := parseSignal(in.Signal)
		if err != nil {
			return nil, fmt.Errorf("input %s: %w", in.Key, err)
		}
		selector := in.Selector
		if selector == "" {
			selector = in.Key
		}
		ports = append(ports, routing.InputPort{
			Key:        in.Key,
			Signal:     signal,
			Connection: routing.ParseConnectionType(in.Connection),
			Selector:   selector,
			ParentKey:  cfg.Key,
			Internal:   in.Internal,
		})
	}
	return ports, nil
}

func parseSignal(s string) (routing.SignalType, error) {
	switch strings.ToLower(s) {
	case "", "audio+video", "av":
		return routing.SignalAudioVideo, nil
	case "audio":
		return routing.SignalAudio, nil
	case "video":
		return routing.SignalVideo, nil
	case "usb":
		return routing.SignalUSB, nil
	default:
		return 0, fmt.Errorf("unknown signal type: %s", s)
	}
}
