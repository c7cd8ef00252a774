// Package config loads the fieldsweep configuration file and sweep definitions.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/fieldsweep/pkg/adapters/process"
	"github.com/aretw0/fieldsweep/pkg/adapters/redis"
	"github.com/aretw0/fieldsweep/pkg/domain"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// DefaultFile is looked up in the working directory when no file is given.
const DefaultFile = "fieldsweep.yaml"

// SelfCommand as the solver command stands for the running fieldsweep binary.
const SelfCommand = "fieldsweep"

// Store backends.
const (
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendBadger = "badger"
)

type Config struct {
	SweepID string   `yaml:"sweep_id" json:"sweep_id" mapstructure:"sweep_id"`
	Input   string   `yaml:"input" json:"input" mapstructure:"input"`
	Aux     []string `yaml:"aux" json:"aux" mapstructure:"aux"`
	Script  string   `yaml:"script" json:"script" mapstructure:"script"`
	BaseDir string   `yaml:"base_dir" json:"base_dir" mapstructure:"base_dir"`

	Solver process.Config `yaml:"solver" json:"solver" mapstructure:"solver"`
	Store  StoreConfig    `yaml:"store" json:"store" mapstructure:"store"`
	Ledger LedgerConfig   `yaml:"ledger" json:"ledger" mapstructure:"ledger"`
	HTTP   HTTPConfig     `yaml:"http" json:"http" mapstructure:"http"`
	Inputs InputsConfig   `yaml:"inputs" json:"inputs" mapstructure:"inputs"`
}

type StoreConfig struct {
	Backend string `yaml:"backend" json:"backend" mapstructure:"backend" validate:"oneof=file memory redis badger"`
	// Path is the directory of the file and badger backends.
	Path  string      `yaml:"path" json:"path" mapstructure:"path"`
	Redis RedisConfig `yaml:"redis" json:"redis" mapstructure:"redis"`
	// Checksum seals checkpoints and rejects tampered ones on load.
	Checksum bool `yaml:"checksum" json:"checksum" mapstructure:"checksum"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr" json:"addr" mapstructure:"addr" validate:"required_if=Enabled true"`
	Password string `yaml:"password" json:"password" mapstructure:"password"`
	DB       int    `yaml:"db" json:"db" mapstructure:"db" validate:"gte=0"`
	Prefix   string `yaml:"prefix" json:"prefix" mapstructure:"prefix"`
	Enabled  bool   `yaml:"-" json:"-" mapstructure:"-"`
}

type LedgerConfig struct {
	// Path of the SQLite attempt ledger. Empty disables the ledger.
	Path string `yaml:"path" json:"path" mapstructure:"path"`
}

type HTTPConfig struct {
	Addr string `yaml:"addr" json:"addr" mapstructure:"addr" validate:"omitempty,hostname_port"`
	// AllowedOrigins lists browser origins allowed to call the API.
	// "*" opens reads only; POSTs always need an exact origin.
	AllowedOrigins []string `yaml:"allowed_origins" json:"allowed_origins" mapstructure:"allowed_origins" validate:"dive,required"`
}

type InputsConfig struct {
	// WatchDir enables the drop-folder input provider.
	WatchDir string `yaml:"watch_dir" json:"watch_dir" mapstructure:"watch_dir"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		SweepID: "default",
		BaseDir: domain.DefaultBaseDir,
		Solver: process.Config{
			CompletionMarker: process.DefaultCompletionMarker,
		},
		Store: StoreConfig{
			Backend:  BackendFile,
			Path:     ".fieldsweep",
			Checksum: true,
			Redis:    RedisConfig{Addr: "localhost:6379", Prefix: redis.DefaultPrefix},
		},
	}
}

// Load reads path over the defaults, applies FIELDSWEEP_* variables from
// environ and validates the result. A missing DefaultFile is not an error;
// a missing explicit path is.
func Load(path string, environ []string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	if err := decodeFile(path, &cfg); err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return Config{}, err
		}
	}
	if err := applyEnv(&cfg, environ); err != nil {
		return Config{}, err
	}
	cfg.resolveSolver()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func decodeFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(data, cfg)
	default:
		err = yaml.Unmarshal(data, cfg)
	}
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

// resolveSolver fills the solver command when none is configured: the
// script when there is one, else the bundled wrapper.
func (c *Config) resolveSolver() {
	if c.Solver.Command != "" {
		return
	}
	if c.Script != "" {
		c.Solver.Command = "sh"
		c.Solver.Args = []string{filepath.Base(c.Script)}
		return
	}
	c.Solver.Command = SelfCommand
	c.Solver.Args = []string{"solve", "{dir}"}
}

var validate = validator.New()

// Validate checks the configuration.
func (c *Config) Validate() error {
	c.Store.Redis.Enabled = c.Store.Backend == BackendRedis
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
