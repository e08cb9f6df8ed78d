package engine

import (
	"context"

	"github.com/lumon-ai/agentloop/config"
	"github.com/lumon-ai/agentloop/errors"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

type (
	// OpenAICompleter implements Completer on the OpenAI chat completions API.
	OpenAICompleter struct {
		client *openai.Client
		model  string
	}
)

var (
	_ Completer = (*OpenAICompleter)(nil)
)

func NewOpenAICompleter(conf *config.ModelConfig) (*OpenAICompleter, error) {
	if conf.OpenAIAPIKey == "" {
		return nil, errors.Wrapf(errors.ErrInvalidConfig, "OPENAI_API_KEY is not set")
	}
	model := conf.CompletionModel
	if model == "" {
		model = openai.ChatModelGPT4oMini
	}

	return &OpenAICompleter{
		client: openai.NewClient(option.WithAPIKey(conf.OpenAIAPIKey)),
		model:  model,
	}, nil
}

func (c *OpenAICompleter) Complete(ctx context.Context, prompt string, temperature float64) (string, error) {
	resp, err := c.client.Chat.Completions.New(ctx, c.newParams(prompt, temperature))
	if err != nil {
		return "", errors.Wrapf(errors.ErrServiceUnavailable, "chat completion failed: %v", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.Wrapf(errors.ErrServiceUnavailable, "chat completion returned no choices")
	}

	return resp.Choices[0].Message.Content, nil
}

func (c *OpenAICompleter) CompleteStream(ctx context.Context, prompt string, temperature float64, sink func(delta string) error) error {
	stream := c.client.Chat.Completions.NewStreaming(ctx, c.newParams(prompt, temperature))
	defer stream.Close()

	for stream.Next() {
		if err := ctx.Err(); err != nil {
			return err
		}

		chunk := stream.Current()
		if len(chunk.Choices) == 0 {
			continue
		}
		delta := chunk.Choices[0].Delta.Content
		if delta == "" {
			continue
		}
		if err := sink(delta); err != nil {
			return err
		}
	}
	if err := stream.Err(); err != nil {
		return errors.Wrapf(errors.ErrServiceUnavailable, "chat completion stream failed: %v", err)
	}

	return nil
}

func (c *OpenAICompleter) newParams(prompt string, temperature float64) openai.ChatCompletionNewParams {
	return openai.ChatCompletionNewParams{
		Model: openai.F(c.model),
		Messages: openai.F([]openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		}),
		Temperature: openai.F(temperature),
	}
}
