package main

import (
	"context"
	"os"

	"github.com/lumon-ai/agentloop/cmd/agentloop/cmd"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := cmd.Execute(ctx); err != nil {
		os.Exit(1)
	}
}
