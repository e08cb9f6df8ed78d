package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/lumon-ai/agentloop/errors"
	"github.com/spf13/cobra"
)

func newIngestCmd() *cobra.Command {
	params := &struct {
		UserID string
	}{}

	cmd := &cobra.Command{
		Use:   "ingest <file> [...<file>]",
		Short: "Ingest text files into a user's document store",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			loop, err := newLoop(ctx)
			if err != nil {
				return err
			}
			defer loop.Close()

			for _, path := range args {
				text, err := os.ReadFile(path)
				if err != nil {
					return errors.Wrapf(err, "failed to read %s", path)
				}

				result, err := loop.Ingest(ctx, params.UserID, filepath.Base(path), string(text))
				if err != nil {
					return errors.Wrapf(err, "failed to ingest %s", path)
				}

				fmt.Fprintf(cmd.OutOrStdout(), "ingested %s: %d chunks (document %s)\n",
					result.DocumentName, result.ChunkCount, result.DocumentID)
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&params.UserID, "user", "u", "anon", "user id for document scoping")

	return cmd
}
