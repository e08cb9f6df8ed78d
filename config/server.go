package config

type ServerConfig struct {
	Host string `env:"SERVER_HOST"`
	Port int    `env:"SERVER_PORT"`
}

func NewServerConfig() *ServerConfig {
	return &ServerConfig{
		Host: "0.0.0.0",
		Port: 3001,
	}
}

func (c *ServerConfig) Resolve(testing bool) error {
	return resolveConfig(c, testing)
}
