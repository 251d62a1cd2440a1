// Package config loads the YAML configuration shared by the plot-digitizer
// binaries.
//
// A configuration file looks like:
//
//	options:
//	  smoothing_radius: 2
//	  min_series_size: 20
//	calibration:
//	  x: {range: [0, 10]}
//	  y: {scale: log, range: [1, 1000]}
//	server:
//	  listen: ":8080"
//	  workers: 4
//	  max_upload_bytes: 16777216
//
// Every field is optional; zero values take defaults.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/shirou/gopsutil/v3/mem"
	"gopkg.in/yaml.v3"

	"github.com/ironsheep/plot-digitizer/internal/digitize"
)

// EnvListen overrides Server.Listen when set.
const EnvListen = "PLOT_DIGITIZER_LISTEN"

const (
	DefaultListen         = ":8080"
	DefaultMaxUploadBytes = 16 << 20

	// bytesPerWorker is a rough ceiling on the memory one digitization of a
	// large chart holds (decoded image, float planes, labels).
	bytesPerWorker = 256 << 20
)

// Config is the file format.
type Config struct {
	Options     digitize.Options      `yaml:"options"`
	Calibration *digitize.Calibration `yaml:"calibration,omitempty"`
	Server      Server                `yaml:"server"`
}

// Server configures the HTTP boundary and batch concurrency.
type Server struct {
	Listen         string `yaml:"listen"`
	Workers        int    `yaml:"workers"`
	MaxUploadBytes int64  `yaml:"max_upload_bytes"`
}

// Default returns a configuration with every default filled in.
func Default() *Config {
	c := &Config{Options: digitize.DefaultOptions()}
	c.applyDefaults()
	return c
}

// Load reads the configuration at path. An empty path yields the defaults.
// The environment is applied after the file.
func Load(path string) (*Config, error) {
	if path == "" {
		c := Default()
		c.applyEnv()
		return c, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	c.applyEnv()
	return c, nil
}

// Parse decodes a YAML document. Unknown keys are rejected so typos in
// option names do not pass silently.
func Parse(data []byte) (*Config, error) {
	var c Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	c.applyDefaults()
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Write stores c at path as YAML.
func (c *Config) Write(path string) error {
	data, err := c.Marshal()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Marshal encodes c as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

func (c *Config) applyDefaults() {
	if c.Server.Listen == "" {
		c.Server.Listen = DefaultListen
	}
	if c.Server.MaxUploadBytes == 0 {
		c.Server.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if c.Server.Workers == 0 {
		c.Server.Workers = DefaultWorkers()
	}
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvListen); v != "" {
		c.Server.Listen = v
	}
}

func (c *Config) validate() error {
	if c.Server.Workers < 0 {
		return fmt.Errorf("invalid config: server.workers must be positive, got %d", c.Server.Workers)
	}
	if c.Server.MaxUploadBytes < 0 {
		return fmt.Errorf("invalid config: server.max_upload_bytes must be positive, got %d", c.Server.MaxUploadBytes)
	}
	return nil
}

// DefaultWorkers returns the number of images to digitize at once: one per
// CPU, reduced when available memory cannot hold that many.
func DefaultWorkers() int {
	n := runtime.NumCPU()
	vm, err := mem.VirtualMemory()
	if err != nil || vm.Available == 0 {
		return n
	}
	if byMem := int(vm.Available / bytesPerWorker); byMem < n {
		n = byMem
	}
	return max(n, 1)
}
