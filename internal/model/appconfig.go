package model

import (
	"fmt"
	"time"

	"github.com/piwi3910/RoomFit/internal/grid"
)

// AppConfig holds application-wide preferences and default settings.
type AppConfig struct {
	// Room layout applied to every new session
	RoomWidth  int    `yaml:"room_width"`
	RoomHeight int    `yaml:"room_height"`
	CellSize   int    `yaml:"cell_size"` // pixels per cell
	Catalog    string `yaml:"catalog"`   // empty = embedded default catalog
	DoorSeed   int64  `yaml:"door_seed"` // 0 = seed from the clock

	// Model backend
	OllamaHost        string        `yaml:"ollama_host"` // empty = OLLAMA_HOST or localhost
	EmbeddingModel    string        `yaml:"embedding_model"`
	ChatModel         string        `yaml:"chat_model"`
	EvaluationTimeout time.Duration `yaml:"evaluation_timeout"`
	PlaceholderDims   int           `yaml:"placeholder_dims"`

	// Application preferences
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"` // "json" or "console"
	Theme     string `yaml:"theme"`      // "light", "dark", "system"
	Listen    string `yaml:"listen"`     // address for the HTTP driver
}

// DefaultAppConfig returns an AppConfig populated with sensible defaults.
func DefaultAppConfig() AppConfig {
	return AppConfig{
		RoomWidth:         10,
		RoomHeight:        8,
		CellSize:          64,
		EmbeddingModel:    "EEVE",
		ChatModel:         "llama3",
		EvaluationTimeout: 60 * time.Second,
		PlaceholderDims:   128,
		LogLevel:          "info",
		LogFormat:         "console",
		Theme:             "system",
		Listen:            "127.0.0.1:8420",
	}
}

// Room returns the configured floor plan, rejecting invalid dimensions.
func (c AppConfig) Room() (grid.Room, error) {
	return grid.NewRoom(c.RoomWidth, c.RoomHeight, c.CellSize)
}

// Validate checks values that would make the application unusable.
func (c AppConfig) Validate() error {
	if _, err := c.Room(); err != nil {
		return err
	}
	if c.EvaluationTimeout <= 0 {
		return fmt.Errorf("evaluation timeout must be positive, got %s", c.EvaluationTimeout)
	}
	if c.PlaceholderDims <= 0 {
		return fmt.Errorf("placeholder dims must be positive, got %d", c.PlaceholderDims)
	}
	switch c.LogFormat {
	case "json", "console":
	default:
		return fmt.Errorf("unknown log format %q", c.LogFormat)
	}
	return nil
}
