package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/lumon-ai/agentloop/config"
	"github.com/lumon-ai/agentloop/errors"
	"github.com/lumon-ai/agentloop/server"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	params := &struct {
		Port int
	}{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			serverConf := config.NewServerConfig()
			if err := serverConf.Resolve(false); err != nil {
				return errors.Wrapf(err, "failed to resolve server configuration")
			}
			if cmd.Flags().Changed("port") {
				serverConf.Port = params.Port
			}

			loop, err := newLoop(ctx)
			if err != nil {
				return err
			}
			defer loop.Close()

			srv := server.NewServer(serverConf, loop.Logger(), loop.Manager(), loop.KnowledgeService(), loop.Synthesizer())
			return srv.Start(ctx)
		},
	}

	cmd.Flags().IntVarP(&params.Port, "port", "p", 3001, "port to listen on")

	return cmd
}
