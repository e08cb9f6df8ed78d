package config

type ModelConfig struct {
	// OpenAIAPIKey authorizes the chat completion client.
	OpenAIAPIKey string `env:"OPENAI_API_KEY"`

	// NomicAPIKey authorizes the embedding client.
	NomicAPIKey string `env:"NOMIC_API_KEY"`

	// SerpAPIKey authorizes the live web search tool. Optional; the tool
	// reports failure when unset.
	SerpAPIKey string `env:"SERPAPI_API_KEY"`

	// CompletionModel names the chat model used for both agent decisions
	// and answer synthesis.
	CompletionModel string `env:"COMPLETION_MODEL"`

	// Temperature applies to answer synthesis. Agent decision calls use a
	// lower fixed temperature so the TOOL/ANSWER protocol stays parseable.
	Temperature float64 `env:"COMPLETION_TEMPERATURE"`
}

func NewModelConfig() *ModelConfig {
	return &ModelConfig{
		CompletionModel: "gpt-4o-mini",
		Temperature:     0.3,
	}
}

func (c *ModelConfig) Resolve(testing bool) error {
	return resolveConfig(c, testing)
}
