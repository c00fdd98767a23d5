package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

// clearEnv blanks every variable the loader consults so the host
// environment cannot leak into assertions.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"GEMINI_API_KEY", "GOOGLE_API_KEY", "PORT",
		"GENAI_API_KEY", "GENAI_MODEL", "GENAI_TIMEOUT",
		"SERVER_PORT", "SERVER_UPLOAD_DIR", "SERVER_MAX_UPLOAD_BYTES",
		"LOGGING_LEVEL", "LOGGING_FORMAT", "LOGGING_OUTPUT",
	} {
		t.Setenv(name, "")
	}
}

func TestLoadFromFile_AppliesDefaults(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
genai:
  api_key: file-key
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "file-key", cfg.GenAI.APIKey)
	assert.Equal(t, DefaultModel, cfg.GenAI.Model)
	assert.Equal(t, 0, cfg.GenAI.Timeout)
	assert.Equal(t, DefaultPort, cfg.Server.Port)
	assert.Equal(t, DefaultUploadDir, cfg.Server.UploadDir)
	assert.Equal(t, int64(DefaultMaxUploadBytes), cfg.Server.MaxUploadBytes)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, ":3000", cfg.Server.Address())
}

func TestLoadFromFile_EnvironmentOverrides(t *testing.T) {
	tests := []struct {
		name   string
		yaml   string
		env    map[string]string
		verify func(t *testing.T, cfg *Config)
	}{
		{
			name: "structured env var wins over file",
			yaml: "genai:\n  api_key: file-key\n  model: gemini-1.5-flash\n",
			env:  map[string]string{"GENAI_MODEL": "gemini-2.0-flash"},
			verify: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "gemini-2.0-flash", cfg.GenAI.Model)
			},
		},
		{
			name: "GEMINI_API_KEY fills missing key",
			yaml: "server:\n  port: 8081\n",
			env:  map[string]string{"GEMINI_API_KEY": "env-key"},
			verify: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "env-key", cfg.GenAI.APIKey)
				assert.Equal(t, 8081, cfg.Server.Port)
			},
		},
		{
			name: "PORT fills missing port",
			yaml: "genai:\n  api_key: k\n",
			env:  map[string]string{"PORT": "4321"},
			verify: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 4321, cfg.Server.Port)
			},
		},
		{
			name: "placeholders are expanded",
			yaml: "genai:\n  api_key: ${TEST_GATEWAY_KEY}\n",
			env:  map[string]string{"TEST_GATEWAY_KEY": "expanded-key"},
			verify: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "expanded-key", cfg.GenAI.APIKey)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := LoadFromFile(writeConfig(t, tt.yaml))
			require.NoError(t, err)
			tt.verify(t, cfg)
		})
	}
}

func TestLoadFromFile_ValidationErrors(t *testing.T) {
	tests := []struct {
		name   string
		yaml   string
		errMsg string
	}{
		{
			name:   "missing api key",
			yaml:   "server:\n  port: 3000\n",
			errMsg: "genai.api_key",
		},
		{
			name:   "port out of range",
			yaml:   "genai:\n  api_key: k\nserver:\n  port: 70000\n",
			errMsg: "server.port",
		},
		{
			name:   "negative timeout",
			yaml:   "genai:\n  api_key: k\n  timeout: -5\n",
			errMsg: "genai.timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			_, err := LoadFromFile(writeConfig(t, tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestLoadFromFile_MissingFile(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestGetDuration(t *testing.T) {
	assert.Equal(t, 1500*time.Millisecond, GetDuration(1500))
	assert.Equal(t, time.Duration(0), GetDuration(0))
}
