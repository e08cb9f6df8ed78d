package knowledge_test

import (
	"context"
	"hash/fnv"
	"io"
	"log/slog"
	"strings"

	"github.com/lumon-ai/agentloop/knowledge"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeEmbedder returns pinned vectors for known texts and a deterministic
// hash-derived vector otherwise. No two distinct texts collide in practice
// and no vector is ever all-zero.
type fakeEmbedder struct {
	vectors map[string][]float32
	dim     int
	calls   int
}

func newFakeEmbedder(dim int) *fakeEmbedder {
	return &fakeEmbedder{
		vectors: make(map[string][]float32),
		dim:     dim,
	}
}

func (e *fakeEmbedder) pin(text string, vector []float32) {
	e.vectors[text] = vector
}

func (e *fakeEmbedder) EmbedTexts(ctx context.Context, taskType knowledge.EmbeddingTaskType, texts ...string) ([][]float32, error) {
	e.calls++
	out := make([][]float32, len(texts))
	for i, text := range texts {
		if v, ok := e.vectors[text]; ok {
			out[i] = v
			continue
		}
		out[i] = hashVector(text, e.dim)
	}
	return out, nil
}

func hashVector(text string, dim int) []float32 {
	v := make([]float32, dim)
	for i := range v {
		h := fnv.New32a()
		h.Write([]byte(text))
		h.Write([]byte{byte(i)})
		v[i] = float32(h.Sum32()%1000)/1000.0 + 0.001
	}
	return v
}

var _ knowledge.Embedder = (*fakeEmbedder)(nil)

// scriptedCompleter replays canned responses; the last one repeats forever.
type scriptedCompleter struct {
	responses []string
	prompts   []string
	calls     int
}

func (c *scriptedCompleter) next() string {
	i := c.calls
	if i >= len(c.responses) {
		i = len(c.responses) - 1
	}
	c.calls++
	return c.responses[i]
}

func (c *scriptedCompleter) Complete(ctx context.Context, prompt string, temperature float64) (string, error) {
	c.prompts = append(c.prompts, prompt)
	return c.next(), nil
}

func (c *scriptedCompleter) CompleteStream(ctx context.Context, prompt string, temperature float64, sink func(delta string) error) error {
	c.prompts = append(c.prompts, prompt)
	for _, word := range strings.SplitAfter(c.next(), " ") {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := sink(word); err != nil {
			return err
		}
	}
	return nil
}
