package config

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/Manu343726/rvdb/pkg/debugger"
	"github.com/Manu343726/rvdb/pkg/hw/riscv"
)

func newViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	return v
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(newViper())
	require.NoError(t, err)

	assert.Equal(t, riscv.DefaultMemoryBase, cfg.Memory.Base)
	assert.Equal(t, riscv.DefaultMemorySize, cfg.Memory.Size)
	assert.False(t, cfg.Batch)
	assert.False(t, cfg.Trace)

	level, err := cfg.LogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, level)

	policy, err := cfg.IDPolicy()
	require.NoError(t, err)
	assert.Equal(t, debugger.IDUnique, policy)
}

func TestLoad_File(t *testing.T) {
	v := newViper()
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(strings.NewReader(`
memory:
  base: 0x1000
  size: 0x2000
batch: true
log:
  level: debug
  file: /tmp/rvdb.log
watchpoints:
  ids: dense
`)))

	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, uint32(0x1000), cfg.Memory.Base)
	assert.Equal(t, uint32(0x2000), cfg.Memory.Size)
	assert.True(t, cfg.Batch)
	assert.Equal(t, "/tmp/rvdb.log", cfg.Log.File)

	policy, err := cfg.IDPolicy()
	require.NoError(t, err)
	assert.Equal(t, debugger.IDDense, policy)

	ram := cfg.NewRAM()
	assert.Equal(t, uint32(0x1000), ram.Base())
	assert.Equal(t, uint32(0x2000), ram.Size())
}

func TestLoad_Overrides(t *testing.T) {
	v := newViper()
	v.Set(KeyTrace, true)
	v.Set(KeyImage, "prog.bin")

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.True(t, cfg.Trace)
	assert.Equal(t, "prog.bin", cfg.Image)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value any
	}{
		{"zero memory", KeyMemorySize, 0},
		{"memory overflow", KeyMemoryBase, 0xfffffff0},
		{"log level", KeyLogLevel, "loud"},
		{"id policy", KeyWatchpointsIDs, "random"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newViper()
			v.Set(tt.key, tt.value)

			_, err := Load(v)
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func TestConfig_YAML(t *testing.T) {
	cfg, err := Load(newViper())
	require.NoError(t, err)

	data, err := cfg.YAML()
	require.NoError(t, err)
	assert.Contains(t, string(data), "ids: unique")
	assert.NotContains(t, string(data), "image:")

	// The dump is a valid config file
	v := newViper()
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(bytes.NewReader(data)))

	reloaded, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, cfg, reloaded)

	var raw map[string]any
	require.NoError(t, yaml.Unmarshal(data, &raw))
	assert.Contains(t, raw, "memory")
}
