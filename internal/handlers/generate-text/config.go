// internal/handlers/generate-text/config.go
package generatetext

import "fmt"

type Config struct {
	MaxBodyBytes int64
}

func DefaultConfig() *Config {
	return &Config{
		MaxBodyBytes: 1 << 20,
	}
}

func (c *Config) Validate() error {
	if c.MaxBodyBytes <= 0 {
		return fmt.Errorf("max_body_bytes must be positive")
	}
	return nil
}
