package knowledge

import (
	"context"
	"fmt"
	"strings"

	"github.com/lumon-ai/agentloop/engine"
	"github.com/lumon-ai/agentloop/errors"
	"github.com/samber/lo"
)

type (
	// Synthesizer grounds a model answer in retrieved fragments.
	Synthesizer struct {
		completer   engine.Completer
		temperature float64
	}

	// Answer is a synthesized response with its provenance.
	Answer struct {
		Text          string   `json:"answer"`
		UsedFragments int      `json:"chunksUsed"`
		Sources       []Source `json:"sources"`
	}

	Source struct {
		Snippet    string  `json:"snippet"`
		Score      float32 `json:"similarity"`
		ChunkIndex int     `json:"chunkIndex"`
	}
)

// InsufficientInfoAnswer is returned without any model call when retrieval
// produced nothing to ground on.
const InsufficientInfoAnswer = "I don't have enough information to answer that question."

func NewSynthesizer(completer engine.Completer, temperature float64) *Synthesizer {
	return &Synthesizer{
		completer:   completer,
		temperature: temperature,
	}
}

// Synthesize answers the question using only the supplied fragments. With no
// fragments it short-circuits deterministically; the model is never invoked
// with empty context.
func (s *Synthesizer) Synthesize(ctx context.Context, question string, results []SearchResult) (*Answer, error) {
	if len(results) == 0 {
		return &Answer{Text: InsufficientInfoAnswer}, nil
	}

	prompt := buildGroundingPrompt(results, question)
	text, err := s.completer.Complete(ctx, prompt, s.temperature)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to synthesize answer")
	}

	return &Answer{
		Text:          strings.TrimSpace(text),
		UsedFragments: len(results),
		Sources: lo.Map(results, func(r SearchResult, _ int) Source {
			return Source{
				Snippet:    snippet(r.Text, 100),
				Score:      r.Score,
				ChunkIndex: r.ChunkIndex,
			}
		}),
	}, nil
}

// SynthesizeStream emits the answer incrementally through sink, preserving
// generation order. Cancelling ctx or returning an error from sink stops the
// stream; the underlying connection is released either way.
func (s *Synthesizer) SynthesizeStream(ctx context.Context, question string, results []SearchResult, sink func(delta string) error) error {
	if len(results) == 0 {
		return sink(InsufficientInfoAnswer)
	}

	prompt := buildGroundingPrompt(results, question)
	return s.completer.CompleteStream(ctx, prompt, s.temperature, sink)
}

// buildGroundingPrompt lists the fragments in the order received and appends
// the verbatim question.
func buildGroundingPrompt(results []SearchResult, question string) string {
	var context strings.Builder
	for i, r := range results {
		if i > 0 {
			context.WriteString("\n\n")
		}
		fmt.Fprintf(&context, "Chunk %d:\n%s", i+1, r.Text)
	}

	return fmt.Sprintf(`You are a helpful AI assistant. Answer the user's question using ONLY the provided context below.

IMPORTANT RULES:
1. Use ONLY information from the context provided
2. If the context doesn't contain enough information, say so clearly
3. Do not make up or infer information beyond what's in the context
4. Be concise and direct

CONTEXT:
%s

USER QUESTION:
%s

ANSWER:`, context.String(), question)
}

func snippet(text string, max int) string {
	if len(text) <= max {
		return text
	}
	return text[:max] + "..."
}
