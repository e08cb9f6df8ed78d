package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func newChatCmd() *cobra.Command {
	params := &struct {
		UserID    string
		SessionID string
	}{}

	cmd := &cobra.Command{
		Use:   "chat [message]",
		Short: "Chat with the agent; no message starts an interactive session",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			loop, err := newLoop(ctx)
			if err != nil {
				return err
			}
			defer loop.Close()

			ask := func(message string) error {
				result, err := loop.Chat(ctx, params.UserID, params.SessionID, message)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\n", result.Answer)
				return nil
			}

			if len(args) > 0 {
				return ask(strings.Join(args, " "))
			}

			scanner := bufio.NewScanner(os.Stdin)
			for {
				fmt.Fprint(cmd.OutOrStdout(), "> ")
				if !scanner.Scan() {
					return scanner.Err()
				}
				line := strings.TrimSpace(scanner.Text())
				if line == "" {
					continue
				}
				if line == "exit" || line == "quit" {
					return nil
				}
				if err := ask(line); err != nil {
					return err
				}
			}
		},
	}

	cmd.Flags().StringVarP(&params.UserID, "user", "u", "anon", "user id for document scoping")
	cmd.Flags().StringVarP(&params.SessionID, "session", "s", "default", "session id")

	return cmd
}
