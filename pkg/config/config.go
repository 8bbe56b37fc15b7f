// Package config provides runtime configuration for gframe
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/gframe-dev/gframe/pkg/logger"
)

// Runtime holds the tunable parameters for the device runtime. All fields
// are optional; the zero value selects the built-in defaults.
type Runtime struct {
	// AllocatorLimitBytes caps total device memory in use. Zero means
	// unlimited.
	AllocatorLimitBytes int64 `yaml:"allocator_limit_bytes"`
	// LogLevel is the zap level name (debug, info, warn, error).
	LogLevel string `yaml:"log_level"`
	// LogEncoding selects json or console output.
	LogEncoding string `yaml:"log_encoding"`
}

// Load loads a runtime configuration from a YAML file
func Load(filePath string, config *Runtime) error {
	data, err := os.ReadFile(filePath) //nolint:gosec // G304: File path is controlled by caller and validated
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	// Substitute environment variables
	content := string(data)
	content = substituteEnvVars(content)

	if err := yaml.Unmarshal([]byte(content), config); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}

	return nil
}

// LoggerConfig maps the runtime's logging fields onto a logger
// configuration, filling in the defaults for unset fields.
func (r Runtime) LoggerConfig() logger.Config {
	level := r.LogLevel
	if level == "" {
		level = "info"
	}
	encoding := r.LogEncoding
	if encoding == "" {
		encoding = "json"
	}
	return logger.Config{Level: level, Encoding: encoding}
}

// Save saves a runtime configuration to a YAML file
func Save(filePath string, config *Runtime) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}

	if err := os.WriteFile(filePath, data, 0644); err != nil { //nolint:gosec
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// substituteEnvVars replaces ${VAR_NAME} with environment variable values
func substituteEnvVars(content string) string {
	for {
		start := strings.Index(content, "${")
		if start == -1 {
			break
		}
		end := strings.Index(content[start:], "}")
		if end == -1 {
			break
		}
		end += start

		varName := content[start+2 : end]
		envValue := os.Getenv(varName)
		content = content[:start] + envValue + content[end+1:]
	}
	return content
}
