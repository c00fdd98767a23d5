// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App     AppConfig     `mapstructure:"app"`
	Server  ServerConfig  `mapstructure:"server"`
	GenAI   GenAIConfig   `mapstructure:"genai"`
	Logging LoggingConfig `mapstructure:"logging"`
	Tracing TracingConfig `mapstructure:"tracing"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// ServerConfig holds the HTTP listener and upload settings.
type ServerConfig struct {
	Port            int    `mapstructure:"port"`
	UploadDir       string `mapstructure:"upload_dir"`
	MaxUploadBytes  int64  `mapstructure:"max_upload_bytes"`
	ReadTimeout     int    `mapstructure:"read_timeout"`     // milliseconds
	WriteTimeout    int    `mapstructure:"write_timeout"`    // milliseconds, 0 disables
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"` // milliseconds
}

// Address returns the listen address for http.Server.
func (s ServerConfig) Address() string {
	return fmt.Sprintf(":%d", s.Port)
}

// GenAIConfig holds the generation service settings.
type GenAIConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	Timeout int    `mapstructure:"timeout"` // milliseconds, 0 disables
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// TracingConfig enables OpenTelemetry spans. Endpoint is an OTLP/gRPC
// collector; empty writes spans to stdout.
type TracingConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
}
