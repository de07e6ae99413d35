package importer

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/piwi3910/RoomFit/internal/assets"
	"github.com/piwi3910/RoomFit/internal/model"
)

// ErrEmptyCatalog is returned when a source yields no furniture kinds.
var ErrEmptyCatalog = errors.New("catalog has no furniture kinds")

const schemaURL = "roomfit://catalog.schema.json"

//go:embed catalog.schema.json
var catalogSchemaJSON string

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func catalogSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		c := jsonschema.NewCompiler()
		if err := c.AddResource(schemaURL, strings.NewReader(catalogSchemaJSON)); err != nil {
			schemaErr = fmt.Errorf("add catalog schema: %w", err)
			return
		}
		schema, schemaErr = c.Compile(schemaURL)
	})
	return schema, schemaErr
}

// catalogDocument is the YAML layout of a catalog file.
type catalogDocument struct {
	Kinds []model.FurnitureKind `yaml:"kinds"`
}

// ParseCatalogYAML validates data against the catalog schema and decodes it.
func ParseCatalogYAML(data []byte) ([]model.FurnitureKind, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse catalog yaml: %w", err)
	}
	if raw == nil {
		return nil, ErrEmptyCatalog
	}

	// The validator expects JSON-decoded values.
	asJSON, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("convert catalog to json: %w", err)
	}
	var doc any
	if err := json.Unmarshal(asJSON, &doc); err != nil {
		return nil, fmt.Errorf("convert catalog to json: %w", err)
	}

	s, err := catalogSchema()
	if err != nil {
		return nil, err
	}
	if err := s.Validate(doc); err != nil {
		return nil, fmt.Errorf("invalid catalog: %w", err)
	}

	var parsed catalogDocument
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if len(parsed.Kinds) == 0 {
		return nil, ErrEmptyCatalog
	}
	return parsed.Kinds, nil
}

// DefaultCatalog returns the catalog embedded in the binary.
func DefaultCatalog() (*model.Catalog, error) {
	kinds, err := ParseCatalogYAML(assets.DefaultCatalog)
	if err != nil {
		return nil, fmt.Errorf("embedded catalog: %w", err)
	}
	return model.NewCatalog(kinds)
}

// LoadCatalog reads a catalog from path, choosing the format by extension:
// .yaml/.yml, .csv or .xlsx/.xlsm. An empty path loads the embedded
// default. Warnings from tabular sources are returned alongside; any row
// error fails the whole load.
func LoadCatalog(path string) (*model.Catalog, []string, error) {
	if path == "" {
		c, err := DefaultCatalog()
		return c, nil, err
	}

	var result ImportResult
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, nil, fmt.Errorf("read catalog: %w", err)
		}
		kinds, err := ParseCatalogYAML(data)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", path, err)
		}
		result.Kinds = kinds
	case ".csv", ".tsv", ".txt":
		result = ImportCSV(path)
	case ".xlsx", ".xlsm", ".xls":
		result = ImportExcel(path)
	default:
		return nil, nil, fmt.Errorf("unsupported catalog format %q", filepath.Ext(path))
	}

	if len(result.Errors) > 0 {
		return nil, result.Warnings, fmt.Errorf("%s: %s", path, strings.Join(result.Errors, "; "))
	}
	if len(result.Kinds) == 0 {
		return nil, result.Warnings, fmt.Errorf("%s: %w", path, ErrEmptyCatalog)
	}

	c, err := model.NewCatalog(result.Kinds)
	if err != nil {
		return nil, result.Warnings, fmt.Errorf("%s: %w", path, err)
	}
	return c, result.Warnings, nil
}

// WriteCatalogYAML encodes kinds as a catalog document.
func WriteCatalogYAML(kinds []*model.FurnitureKind) ([]byte, error) {
	doc := catalogDocument{Kinds: make([]model.FurnitureKind, len(kinds))}
	for i, k := range kinds {
		doc.Kinds[i] = *k
		if doc.Kinds[i].Visual == doc.Kinds[i].Footprint {
			doc.Kinds[i].Visual = model.Size{}
		}
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encode catalog: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
