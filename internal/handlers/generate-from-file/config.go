// internal/handlers/generate-from-file/config.go
package generatefromfile

import (
	"fmt"
	"strings"
)

type Config struct {
	UploadDir      string
	MaxUploadBytes int64
	MaxMemoryBytes int64
}

func DefaultConfig() *Config {
	return &Config{
		UploadDir:      "uploads",
		MaxUploadBytes: 32 << 20,
		MaxMemoryBytes: 8 << 20,
	}
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.UploadDir) == "" {
		return fmt.Errorf("upload_dir is required")
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("max_upload_bytes must be positive")
	}
	if c.MaxMemoryBytes <= 0 {
		return fmt.Errorf("max_memory_bytes must be positive")
	}
	return nil
}
