package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/lumon-ai/agentloop"
	"github.com/lumon-ai/agentloop/config"
	"github.com/lumon-ai/agentloop/errors"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "agentloop",
		Short:        "Tool-using agent with retrieval-augmented answers",
		SilenceUsage: true,
	}

	cmd.AddCommand(
		newServeCmd(),
		newChatCmd(),
		newIngestCmd(),
	)

	return cmd
}

// newLoop builds the full stack from environment configuration.
func newLoop(ctx context.Context) (*agentloop.AgentLoop, error) {
	logConf := config.NewLogConfig()
	modelConf := config.NewModelConfig()
	agentConf := config.NewAgentConfig()
	knowledgeConf := config.NewKnowledgeConfig()

	for _, resolve := range []func(bool) error{
		logConf.Resolve,
		modelConf.Resolve,
		agentConf.Resolve,
		knowledgeConf.Resolve,
	} {
		if err := resolve(false); err != nil {
			return nil, errors.Wrapf(err, "failed to resolve configuration")
		}
	}

	return agentloop.New(ctx,
		agentloop.WithLogConfig(logConf),
		agentloop.WithModelConfig(modelConf),
		agentloop.WithAgentConfig(agentConf),
		agentloop.WithKnowledgeConfig(knowledgeConf),
	)
}

func Execute(ctx context.Context) error {
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %+v\n", err)
		return err
	}
	return nil
}
