package commands

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/storescope/storescope/internal/server"
)

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	var (
		port  int
		watch bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the inspection API over HTTP",
		Long: `Start the HTTP inspection server.

Exposes store enumeration, SQL execution, and typed storage entries as a
JSON API, plus a server-sent-events feed of change notifications.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx := NewCommandContext()
			srvCfg := cmdCtx.Cfg.GetServerConfig()

			if cmd.Flags().Changed("port") {
				srvCfg.Port = port
			}
			if cmd.Flags().Changed("watch") {
				srvCfg.Watch = watch
			}

			level := slog.LevelInfo
			if cmdCtx.Cfg.Verbose {
				level = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

			srv := server.New(server.Config{
				Executor: cmdCtx.Executor,
				Storage:  cmdCtx.Storage,
				DataDir:  cmdCtx.Cfg.DataDir,
				Port:     srvCfg.Port,
				Watch:    srvCfg.Watch,
				Logger:   logger,
			})
			return srv.Serve(cmd.Context())
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on")
	cmd.Flags().BoolVar(&watch, "watch", true, "Watch the data directory for store changes")

	return cmd
}
