package config

type LogConfig struct {
	LogLevel   string `env:"LOG_LEVEL"`
	LogHandler string `env:"LOG_HANDLER"`
}

func NewLogConfig() *LogConfig {
	return &LogConfig{
		LogLevel:   "info",
		LogHandler: "default",
	}
}

func (c *LogConfig) Resolve(testing bool) error {
	return resolveConfig(c, testing)
}
