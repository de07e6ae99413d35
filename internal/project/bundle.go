package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/piwi3910/RoomFit/internal/model"
)

// BundleVersion is written into every bundle.
const BundleVersion = "1"

// Bundle moves a working setup between machines: the preferences and the
// furniture catalog. Designs are not part of it.
type Bundle struct {
	Version   string                `json:"version"`
	CreatedAt string                `json:"created_at"`
	Config    model.AppConfig       `json:"config"`
	Kinds     []model.FurnitureKind `json:"kinds,omitempty"`
}

// NewBundle snapshots config and catalog. catalog may be nil.
func NewBundle(config model.AppConfig, catalog *model.Catalog) Bundle {
	b := Bundle{
		Version:   BundleVersion,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		Config:    config,
	}
	for _, k := range catalog.Kinds() {
		b.Kinds = append(b.Kinds, *k)
	}
	return b
}

// Catalog rebuilds the bundled catalog. A bundle without kinds returns
// nil and no error; the caller keeps its current catalog.
func (b Bundle) Catalog() (*model.Catalog, error) {
	if len(b.Kinds) == 0 {
		return nil, nil
	}
	return model.NewCatalog(b.Kinds)
}

// ExportBundle writes b as indented JSON, creating parent directories.
func ExportBundle(path string, b Bundle) error {
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return fmt.Errorf("encode bundle: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create bundle directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write bundle: %w", err)
	}
	return nil
}

// ImportBundle reads a bundle and validates its config.
func ImportBundle(path string) (Bundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Bundle{}, fmt.Errorf("read bundle: %w", err)
	}
	var b Bundle
	if err := json.Unmarshal(data, &b); err != nil {
		return Bundle{}, fmt.Errorf("parse bundle %s: %w", path, err)
	}
	if b.Version == "" {
		return Bundle{}, errors.New("invalid bundle: missing version field")
	}
	if b.Version != BundleVersion {
		return Bundle{}, fmt.Errorf("unsupported bundle version %q", b.Version)
	}
	if err := b.Config.Validate(); err != nil {
		return Bundle{}, fmt.Errorf("bundle config: %w", err)
	}
	return b, nil
}
