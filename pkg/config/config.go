package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Serial      SerialConfig      `yaml:"serial"`
	Clock       ClockConfig       `yaml:"clock"`
	Timers      TimersConfig      `yaml:"timers"`
	Acquisition AcquisitionConfig `yaml:"acquisition"`
	Heartbeat   HeartbeatConfig   `yaml:"heartbeat"`
	MQTT        MQTTConfig        `yaml:"mqtt"`
	Mock        MockConfig        `yaml:"mock"`
	Monitor     MonitorConfig     `yaml:"monitor"`
}

// SerialConfig contains serial port configuration for the report output.
// An empty port writes reports to stdout.
type SerialConfig struct {
	Port     string `yaml:"port"`
	BaudRate int    `yaml:"baud_rate"`
}

// ClockConfig contains the system clock the timer loads are computed from.
type ClockConfig struct {
	Hz uint32 `yaml:"hz"`
}

// TimersConfig contains the two periodic timer rates.
type TimersConfig struct {
	HeartbeatHz uint32 `yaml:"heartbeat_hz"`
	SampleHz    uint32 `yaml:"sample_hz"`
}

// AcquisitionConfig contains acquisition and main loop parameters.
type AcquisitionConfig struct {
	Timeout        time.Duration `yaml:"timeout"`         // Per-sequence completion timeout (0 = wait forever)
	ReportSequence int           `yaml:"report_sequence"` // Sequence whose sample is converted and reported
	Idle           time.Duration `yaml:"idle"`            // Pause between loop iterations (0 = spin)
}

// HeartbeatConfig contains the heartbeat output line. An empty chip disables
// the GPIO output and the heartbeat only toggles its own state.
type HeartbeatConfig struct {
	Chip string `yaml:"chip"`
	Line int    `yaml:"line"`
}

// MQTTConfig contains telemetry publishing configuration. An empty broker
// disables publishing.
type MQTTConfig struct {
	Broker   string `yaml:"broker"`
	Topic    string `yaml:"topic"`
	ClientID string `yaml:"client_id"`
}

// MockConfig contains simulated analog front-end configuration.
type MockConfig struct {
	Ambient       float64    `yaml:"ambient"`        // Simulated sensor temperature (°C)
	NoiseLevel    float64    `yaml:"noise_level"`    // Noise amplitude (°C)
	Offsets       [3]float64 `yaml:"offsets"`        // Per-sequence temperature offset (°C)
	LatencySpins  int        `yaml:"latency_spins"`  // Completion polls before a conversion reports done
	StallSequence int        `yaml:"stall_sequence"` // Sequence that never completes (-1 = none)
}

// MonitorConfig contains host-side trend parameters for the monitor command.
type MonitorConfig struct {
	WindowSeconds float64 `yaml:"window_seconds"` // Time window of readings kept for the trend
	RateThreshold float64 `yaml:"rate_threshold"` // Rate of change (°C/s) that marks an excursion
	MinExcursion  float64 `yaml:"min_excursion"`  // Minimum excursion duration (s)
}

// Default returns a default configuration with sensible values.
func Default() *Config {
	return &Config{
		Serial: SerialConfig{
			Port:     "",
			BaudRate: 115200,
		},
		Clock: ClockConfig{
			Hz: 16000000, // 16 MHz crystal, no PLL
		},
		Timers: TimersConfig{
			HeartbeatHz: 1,
			SampleHz:    10,
		},
		Acquisition: AcquisitionConfig{
			Timeout:        10 * time.Millisecond,
			ReportSequence: 2,
			Idle:           0,
		},
		Heartbeat: HeartbeatConfig{
			Chip: "",
			Line: 0,
		},
		MQTT: MQTTConfig{
			Broker:   "",
			Topic:    "tivatemp/temperature",
			ClientID: "tivatemp",
		},
		Mock: MockConfig{
			Ambient:       23.75,
			NoiseLevel:    0.0,
			LatencySpins:  4,
			StallSequence: -1,
		},
		Monitor: MonitorConfig{
			WindowSeconds: 60.0,
			RateThreshold: 0.5,
			MinExcursion:  1.0,
		},
	}
}

// Load loads configuration from a YAML file. If the file doesn't exist or
// fields are missing, it uses default values.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ensureDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save saves the configuration to a YAML file.
func (c *Config) Save(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate reports configuration values the loop cannot run with.
func (c *Config) Validate() error {
	var errs []error

	if c.Acquisition.ReportSequence < 0 || c.Acquisition.ReportSequence > 2 {
		errs = append(errs, fmt.Errorf("acquisition.report_sequence %d out of range 0..2", c.Acquisition.ReportSequence))
	}
	if c.Acquisition.Timeout < 0 {
		errs = append(errs, fmt.Errorf("acquisition.timeout must not be negative"))
	}
	if c.Timers.HeartbeatHz > c.Clock.Hz || c.Timers.SampleHz > c.Clock.Hz {
		errs = append(errs, fmt.Errorf("timer rates must not exceed clock.hz %d", c.Clock.Hz))
	}
	if c.Mock.StallSequence < -1 || c.Mock.StallSequence > 2 {
		errs = append(errs, fmt.Errorf("mock.stall_sequence %d out of range -1..2", c.Mock.StallSequence))
	}

	if c.Monitor.WindowSeconds < 0 {
		errs = append(errs, fmt.Errorf("monitor.window_seconds must not be negative"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// ensureDefaults ensures that all required fields have default values if missing.
func (c *Config) ensureDefaults() {
	def := Default()

	if c.Serial.BaudRate == 0 {
		c.Serial.BaudRate = def.Serial.BaudRate
	}

	if c.Clock.Hz == 0 {
		c.Clock.Hz = def.Clock.Hz
	}

	if c.Timers.HeartbeatHz == 0 {
		c.Timers.HeartbeatHz = def.Timers.HeartbeatHz
	}
	if c.Timers.SampleHz == 0 {
		c.Timers.SampleHz = def.Timers.SampleHz
	}

	if c.MQTT.Topic == "" {
		c.MQTT.Topic = def.MQTT.Topic
	}
	if c.MQTT.ClientID == "" {
		c.MQTT.ClientID = def.MQTT.ClientID
	}

	if c.Mock.LatencySpins == 0 {
		c.Mock.LatencySpins = def.Mock.LatencySpins
	}

	if c.Monitor.WindowSeconds == 0 {
		c.Monitor.WindowSeconds = def.Monitor.WindowSeconds
	}
	if c.Monitor.RateThreshold == 0 {
		c.Monitor.RateThreshold = def.Monitor.RateThreshold
	}
}

// Environment variables that override file values.
const (
	EnvSerialPort = "TIVATEMP_SERIAL_PORT"
	EnvMQTTBroker = "TIVATEMP_MQTT_BROKER"
)

// ApplyEnv overrides fields from the process environment.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvSerialPort); v != "" {
		c.Serial.Port = v
	}
	if v := os.Getenv(EnvMQTTBroker); v != "" {
		c.MQTT.Broker = v
	}
}
