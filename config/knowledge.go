package config

type KnowledgeConfig struct {
	// SqliteEnabled selects the sqlite-vec backed store; when false the
	// service runs on the in-memory store.
	SqliteEnabled bool `env:"KNOWLEDGE_SQLITE_ENABLED"`

	// SqlitePath is the database file. ":memory:" keeps everything in-process.
	SqlitePath string `env:"KNOWLEDGE_SQLITE_PATH"`

	// ChunkSize caps a fragment's length in bytes during ingestion.
	ChunkSize int `env:"KNOWLEDGE_CHUNK_SIZE"`

	// TopK is the default number of fragments retrieved per query.
	TopK int `env:"KNOWLEDGE_TOP_K"`

	// EmbeddingDim must match the embedding model. Nomic text v1.5 emits 768.
	EmbeddingDim int `env:"KNOWLEDGE_EMBEDDING_DIM"`
}

func NewKnowledgeConfig() *KnowledgeConfig {
	return &KnowledgeConfig{
		SqliteEnabled: false,
		SqlitePath:    ":memory:",
		ChunkSize:     500,
		TopK:          3,
		EmbeddingDim:  768,
	}
}

func (c *KnowledgeConfig) Resolve(testing bool) error {
	return resolveConfig(c, testing)
}
