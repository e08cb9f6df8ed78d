package engine

import (
	"context"
)

type (
	// Completer is the boundary contract for the chat completion service.
	// Both the agent's decision step and answer synthesis go through it, so
	// tests can script model behavior without a network.
	Completer interface {
		// Complete returns the model's full text for a single prompt.
		Complete(ctx context.Context, prompt string, temperature float64) (string, error)

		// CompleteStream invokes sink once per generated increment, in
		// generation order. A sink error or context cancellation stops the
		// stream; no further sink calls are made after either.
		CompleteStream(ctx context.Context, prompt string, temperature float64, sink func(delta string) error) error
	}
)
