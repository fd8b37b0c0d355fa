package cpu

import (
	"io"
	"log/slog"

	"github.com/Manu343726/rvdb/pkg/config"
	"github.com/Manu343726/rvdb/pkg/hw/riscv"
	"github.com/Manu343726/rvdb/pkg/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// CpuCmd groups the commands that run guest programs
var CpuCmd = &cobra.Command{
	Use:   "cpu",
	Short: "Run RISC-V programs",
}

func init() {
	flags := CpuCmd.PersistentFlags()
	flags.BoolP("trace", "t", false, "Log every executed instruction")
	cobra.CheckErr(viper.BindPFlag(config.KeyTrace, flags.Lookup("trace")))
}

// session is everything a command needs to run a machine
type session struct {
	config  *config.Config
	logger  *slog.Logger
	closer  io.Closer
	machine *riscv.Machine
}

// newSession loads the configuration, sets up logging and creates a machine
// with the image loaded. args[0], if present, overrides the configured image.
func newSession(args []string) (*session, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, err
	}
	if len(args) > 0 {
		cfg.Image = args[0]
	}

	level, _ := cfg.LogLevel()
	if cfg.Trace && level > slog.LevelDebug {
		level = slog.LevelDebug
	}

	logger, closer, err := logging.New(logging.Options{Level: level, File: cfg.Log.File})
	if err != nil {
		return nil, err
	}

	machine := riscv.NewMachine(cfg.NewRAM(),
		riscv.WithLogger(logger),
		riscv.WithTrace(cfg.Trace),
	)
	if err := machine.LoadImageFile(cfg.Image); err != nil {
		closer.Close()
		return nil, err
	}

	return &session{
		config:  cfg,
		logger:  logger,
		closer:  closer,
		machine: machine,
	}, nil
}

func (s *session) Close() error {
	return s.closer.Close()
}
