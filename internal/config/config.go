package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"planetgen.ai/internal/terrain/noise"
	"planetgen.ai/internal/terrain/planet"
	"planetgen.ai/internal/terrain/sampler"
)

type Config struct {
	Planet  planet.Style `yaml:"planet"`
	Noise   NoiseSpec    `yaml:"noise"`
	Sampler SamplerSpec  `yaml:"sampler"`
	Server  ServerSpec   `yaml:"server"`
	Storage StorageSpec  `yaml:"storage"`
}

type NoiseSpec struct {
	Backend string `yaml:"backend"`
}

type SamplerSpec struct {
	Window  sampler.Window `yaml:"window"`
	Workers int            `yaml:"workers"`
}

type ServerSpec struct {
	Addr      string `yaml:"addr"`
	MaxPoints int    `yaml:"max_points"`
	// TimeoutMs bounds one generate request.
	TimeoutMs int `yaml:"timeout_ms"`
}

type StorageSpec struct {
	DataDir   string `yaml:"data_dir"`
	DisableDB bool   `yaml:"disable_db"`
	// LogRequests writes one JSONL record per generate request under
	// <data_dir>/logs.
	LogRequests bool `yaml:"log_requests"`
}

func Load(path string) (Config, error) {
	cfg := Defaults()
	if strings.TrimSpace(path) == "" {
		cfg.Normalize()
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("planet.yaml: %w", err)
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("planet.yaml: %w", err)
	}
	return cfg, nil
}

func Defaults() Config {
	return Config{
		Planet:  planet.DefaultStyle(),
		Noise:   NoiseSpec{Backend: string(noise.BackendOpenSimplex)},
		Sampler: SamplerSpec{Window: sampler.DefaultWindow()},
		Server: ServerSpec{
			Addr:      ":8080",
			MaxPoints: 250000,
			TimeoutMs: 60000,
		},
		Storage: StorageSpec{DataDir: "data", LogRequests: true},
	}
}

func (c *Config) Normalize() {
	if c == nil {
		return
	}
	c.Noise.Backend = strings.ToLower(strings.TrimSpace(c.Noise.Backend))
	if c.Noise.Backend == "" {
		c.Noise.Backend = string(noise.BackendOpenSimplex)
	}
	if c.Sampler.Window == (sampler.Window{}) {
		c.Sampler.Window = sampler.DefaultWindow()
	}
	if c.Sampler.Workers < 0 {
		c.Sampler.Workers = 0
	}
	if strings.TrimSpace(c.Storage.DataDir) == "" {
		c.Storage.DataDir = "data"
	}
}

func (c Config) Validate() error {
	if err := c.Planet.Validate(); err != nil {
		return err
	}
	if _, err := noise.ParseBackend(c.Noise.Backend); err != nil {
		return err
	}
	if err := c.Sampler.Window.Validate(); err != nil {
		return fmt.Errorf("sampler.window: %w", err)
	}
	if strings.TrimSpace(c.Server.Addr) == "" {
		return fmt.Errorf("server.addr must not be empty")
	}
	if c.Server.MaxPoints <= 0 {
		return fmt.Errorf("server.max_points must be > 0")
	}
	if c.Server.TimeoutMs <= 0 {
		return fmt.Errorf("server.timeout_ms must be > 0")
	}
	return nil
}

// Backend is the validated noise backend.
func (c Config) Backend() noise.Backend {
	b, err := noise.ParseBackend(c.Noise.Backend)
	if err != nil {
		return noise.BackendOpenSimplex
	}
	return b
}
