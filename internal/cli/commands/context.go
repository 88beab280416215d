// Package commands implements the storescope subcommands.
package commands

import (
	"os"

	"github.com/storescope/storescope/internal/cli/config"
	"github.com/storescope/storescope/pkg/database"
	"github.com/storescope/storescope/pkg/domstorage"
)

// CommandContext bundles the loaded config with the bridge components the
// subcommands operate on.
type CommandContext struct {
	Cfg      *config.Config
	Executor *database.Executor
	Storage  *domstorage.Store
}

// NewCommandContext builds the bridge components from the current config.
func NewCommandContext() *CommandContext {
	cfg := config.Current()
	return &CommandContext{
		Cfg:      cfg,
		Executor: database.NewExecutor(database.NewDirLocator(cfg.DataDir)),
		Storage:  domstorage.New(domstorage.NewFileProvider(cfg.PrefsDir)),
	}
}

// resolveFormat picks the explicit format flag when set, the configured
// output format otherwise.
func resolveFormat(flag string, cfg *config.Config) string {
	if flag != "" {
		return flag
	}
	if cfg.OutputFormat != "" {
		return cfg.OutputFormat
	}
	return config.DefaultOutput
}

func isTerminal(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}
