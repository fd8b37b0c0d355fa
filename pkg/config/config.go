// Package config holds the rvdb settings resolved by viper from the config
// file, RVDB_* environment variables and command line flags.
package config

import (
	"errors"
	"log/slog"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/Manu343726/rvdb/pkg/debugger"
	"github.com/Manu343726/rvdb/pkg/hw/riscv"
	"github.com/Manu343726/rvdb/pkg/logging"
	"github.com/Manu343726/rvdb/pkg/utils"
)

// Config keys
const (
	KeyMemoryBase     = "memory.base"
	KeyMemorySize     = "memory.size"
	KeyImage          = "image"
	KeyBatch          = "batch"
	KeyTrace          = "trace"
	KeyLogLevel       = "log.level"
	KeyLogFile        = "log.file"
	KeyWatchpointsIDs = "watchpoints.ids"
	KeyHistory        = "history"
)

var ErrInvalid = errors.New("invalid configuration")

type Memory struct {
	Base uint32 `mapstructure:"base" yaml:"base"`
	Size uint32 `mapstructure:"size" yaml:"size"`
}

type Log struct {
	Level string `mapstructure:"level" yaml:"level"`
	File  string `mapstructure:"file" yaml:"file,omitempty"`
}

type Watchpoints struct {
	// IDs is the watchpoint id policy, "unique" or "dense"
	IDs string `mapstructure:"ids" yaml:"ids"`
}

type Config struct {
	Memory      Memory      `mapstructure:"memory" yaml:"memory"`
	Image       string      `mapstructure:"image" yaml:"image,omitempty"`
	Batch       bool        `mapstructure:"batch" yaml:"batch"`
	Trace       bool        `mapstructure:"trace" yaml:"trace"`
	Log         Log         `mapstructure:"log" yaml:"log"`
	Watchpoints Watchpoints `mapstructure:"watchpoints" yaml:"watchpoints"`
	// History is the file the interactive prompt keeps its history in
	History string `mapstructure:"history" yaml:"history,omitempty"`
}

// SetDefaults registers the default value of every key
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyMemoryBase, riscv.DefaultMemoryBase)
	v.SetDefault(KeyMemorySize, riscv.DefaultMemorySize)
	v.SetDefault(KeyImage, "")
	v.SetDefault(KeyBatch, false)
	v.SetDefault(KeyTrace, false)
	v.SetDefault(KeyLogLevel, "warn")
	v.SetDefault(KeyLogFile, "")
	v.SetDefault(KeyWatchpointsIDs, debugger.IDUnique.String())
	v.SetDefault(KeyHistory, "")
}

// Load decodes and validates the configuration held by v
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, utils.MakeError(ErrInvalid, "%v", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the memory window, the log level and the watchpoint id policy
func (c *Config) Validate() error {
	if c.Memory.Size == 0 {
		return utils.MakeError(ErrInvalid, "memory size cannot be zero")
	}
	if uint64(c.Memory.Base)+uint64(c.Memory.Size) > 1<<32 {
		return utils.MakeError(ErrInvalid, "memory [0x%08x, +0x%x) exceeds the 32 bit address space", c.Memory.Base, c.Memory.Size)
	}
	if _, err := c.LogLevel(); err != nil {
		return utils.MakeError(ErrInvalid, "%v", err)
	}
	if _, err := c.IDPolicy(); err != nil {
		return utils.MakeError(ErrInvalid, "%v", err)
	}
	return nil
}

func (c *Config) LogLevel() (slog.Level, error) {
	return logging.ParseLevel(c.Log.Level)
}

func (c *Config) IDPolicy() (debugger.IDPolicy, error) {
	return debugger.ParseIDPolicy(c.Watchpoints.IDs)
}

// NewRAM allocates the physical memory described by the configuration
func (c *Config) NewRAM() *riscv.RAM {
	return riscv.NewRAM(c.Memory.Base, c.Memory.Size)
}

// YAML renders the configuration in the format the config file uses
func (c *Config) YAML() ([]byte, error) {
	return yaml.Marshal(c)
}
