package config

import (
	"os"
	"time"

	. "github.com/Krajiyah/ble-walkie/pkg/models"
	"github.com/Krajiyah/ble-walkie/pkg/util"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config holds the settings of the walkie binaries
type Config struct {
	DeviceName     string        `yaml:"device_name"`     // Advertised local name
	ConnectTimeout time.Duration `yaml:"connect_timeout"` // Dial and cancel timeout
	Adapter        string        `yaml:"adapter"`         // BlueZ adapter object path
	LogLevel       string        `yaml:"log_level"`       // logxi level, empty keeps LOGXI
	SampleRate     int           `yaml:"sample_rate"`     // Capture rate of audio.input
	Audio          AudioConfig   `yaml:"audio"`           // PCM streams
	Location       *Fix          `yaml:"location"`        // Fixed position, unset never resolves
}

// AudioConfig names the PCM streams, "-" is stdin/stdout
type AudioConfig struct {
	Input  string `yaml:"input"`
	Output string `yaml:"output"`
}

// DefaultConfig returns the settings used when no file is given
func DefaultConfig() *Config {
	return &Config{
		DeviceName:     util.DeviceName,
		ConnectTimeout: 10 * time.Second,
		Adapter:        "/org/bluez/hci0",
		SampleRate:     util.DefaultSampleRate,
		Audio:          AudioConfig{Input: "-", Output: "-"},
	}
}

// LoadFrom reads path over the defaults, an empty path returns the defaults
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config")
	}
	if err := Parse(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse unmarshals data into cfg and validates the result
func Parse(data []byte, cfg *Config) error {
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return errors.Wrap(err, "parse config")
	}
	cfg.Adapter = os.ExpandEnv(cfg.Adapter)
	return cfg.Validate()
}

func (c *Config) Validate() error {
	if c.DeviceName == "" {
		return errors.New("device_name must not be empty")
	}
	if c.ConnectTimeout <= 0 {
		return errors.Errorf("connect_timeout must be positive, got %s", c.ConnectTimeout)
	}
	if c.SampleRate < 4 {
		return errors.Errorf("sample_rate too low: %d", c.SampleRate)
	}
	return nil
}
