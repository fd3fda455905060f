package commands

import (
	"log/slog"

	"github.com/hupe1980/vecseg"
	"github.com/hupe1980/vecseg/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// app carries state shared by every command of one invocation.
type app struct {
	v       *viper.Viper
	cfgFile string
	cfg     *config.Config
	logger  *vecseg.Logger
	store   *vecseg.Store
}

// Execute runs the vecseg command line.
func Execute() error {
	return NewRootCommand().Execute()
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	a := &app{v: config.New()}

	rootCmd := &cobra.Command{
		Use:           "vecseg",
		Short:         "Read, write and inspect fixed-dimension vector segments",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "Config file path")
	flags.String("log-level", "info", "Log level (debug, info, warn, error)")
	flags.String("log-format", "text", "Log format (text, json)")
	flags.Bool("sync", false, "Fsync segment files after writing")
	flags.String("backend", "local", "Blob backend for remote commands (local, s3, minio)")
	flags.String("root", ".", "Root directory of the local backend")
	_ = a.v.BindPFlag("log.level", flags.Lookup("log-level"))
	_ = a.v.BindPFlag("log.format", flags.Lookup("log-format"))
	_ = a.v.BindPFlag("store.sync", flags.Lookup("sync"))
	_ = a.v.BindPFlag("backend.kind", flags.Lookup("backend"))
	_ = a.v.BindPFlag("backend.local.root", flags.Lookup("root"))

	rootCmd.AddCommand(
		a.writeCmd(),
		a.infoCmd(),
		a.getCmd(),
		a.rangeCmd(),
		a.manyCmd(),
		a.catCmd(),
		a.dumpCmd(),
		a.verifyCmd(),
		a.nearestCmd(),
		a.pushCmd(),
		a.pullCmd(),
		a.remoteGetCmd(),
		a.remoteLsCmd(),
	)
	return rootCmd
}

func (a *app) init() error {
	cfg, err := config.LoadFrom(a.v, a.cfgFile)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = newLogger(cfg.Log)
	a.store = vecseg.New(
		vecseg.WithLogger(a.logger),
		vecseg.WithAtomicWrite(cfg.Store.AtomicWrite),
		vecseg.WithSync(cfg.Store.Sync),
		vecseg.WithBufferSize(cfg.Store.BufferSize),
	)
	return nil
}

func newLogger(cfg config.LogConfig) *vecseg.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	if cfg.Format == "json" {
		return vecseg.NewJSONLogger(level)
	}
	return vecseg.NewTextLogger(level)
}
