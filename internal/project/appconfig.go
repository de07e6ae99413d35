// Package project reads and writes RoomFit's files on disk: the
// application config and headless layout scripts.
package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/piwi3910/RoomFit/internal/model"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "ROOMFIT_"

// DefaultConfigDir returns the default directory for application configuration.
// On all platforms this is ~/.roomfit/
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".roomfit")
}

// DefaultConfigPath returns the default path for the application config file.
func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.yaml")
}

// SaveAppConfig persists an AppConfig to the given path as YAML.
// It creates any missing parent directories automatically.
func SaveAppConfig(path string, config model.AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// LoadAppConfig reads an AppConfig from path, applies ROOMFIT_*
// environment overrides and validates the result. A missing file yields
// the defaults. Fields absent from the file keep their default values.
func LoadAppConfig(path string) (model.AppConfig, error) {
	config := model.DefaultAppConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &config); err != nil {
			return model.AppConfig{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return model.AppConfig{}, fmt.Errorf("read config: %w", err)
	}

	if err := applyEnv(&config); err != nil {
		return model.AppConfig{}, err
	}
	if err := config.Validate(); err != nil {
		return model.AppConfig{}, fmt.Errorf("config %s: %w", path, err)
	}
	return config, nil
}

func applyEnv(c *model.AppConfig) error {
	var err error
	if c.RoomWidth, err = getEnvInt("ROOM_WIDTH", c.RoomWidth); err != nil {
		return err
	}
	if c.RoomHeight, err = getEnvInt("ROOM_HEIGHT", c.RoomHeight); err != nil {
		return err
	}
	if c.CellSize, err = getEnvInt("CELL_SIZE", c.CellSize); err != nil {
		return err
	}
	if c.PlaceholderDims, err = getEnvInt("PLACEHOLDER_DIMS", c.PlaceholderDims); err != nil {
		return err
	}
	seed, err := getEnvInt("DOOR_SEED", int(c.DoorSeed))
	if err != nil {
		return err
	}
	c.DoorSeed = int64(seed)

	c.Catalog = getEnv("CATALOG", c.Catalog)
	c.OllamaHost = getEnv("OLLAMA_HOST", c.OllamaHost)
	c.EmbeddingModel = getEnv("EMBEDDING_MODEL", c.EmbeddingModel)
	c.ChatModel = getEnv("CHAT_MODEL", c.ChatModel)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.LogFormat = getEnv("LOG_FORMAT", c.LogFormat)
	c.Theme = getEnv("THEME", c.Theme)
	c.Listen = getEnv("LISTEN", c.Listen)

	if v := getEnv("EVALUATION_TIMEOUT", ""); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%sEVALUATION_TIMEOUT: %w", EnvPrefix, err)
		}
		c.EvaluationTimeout = d
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(EnvPrefix + key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(EnvPrefix + key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
	}
	return n, nil
}
