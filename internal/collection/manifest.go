package collection

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/dhrn/devkit/internal/engine"
	"github.com/dhrn/devkit/internal/options"
)

// Manifest is the on-disk form of a collection.
type Manifest struct {
	Name       string                    `yaml:"name" validate:"required,schematicname"`
	Version    string                    `yaml:"version,omitempty"`
	Schematics map[string]SchematicEntry `yaml:"schematics" validate:"required,min=1,dive,keys,schematicname,endkeys"`
}

// SchematicEntry is one schematic in a manifest.
type SchematicEntry struct {
	Description string   `yaml:"description,omitempty"`
	Factory     string   `yaml:"factory" validate:"required"`
	Schema      string   `yaml:"schema,omitempty"`
	Aliases     []string `yaml:"aliases,omitempty" validate:"dive,schematicname"`
	Hidden      bool     `yaml:"hidden,omitempty"`
}

// LoadError represents a manifest that could not be loaded.
type LoadError struct {
	Path    string
	Message string
	Err     error
}

func (e *LoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Path, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// manifestValidate is the validator instance for manifests.
var manifestValidate *validator.Validate

func init() {
	manifestValidate = validator.New()

	_ = manifestValidate.RegisterValidation("schematicname", func(fl validator.FieldLevel) bool {
		return engine.SchematicNamePattern.MatchString(fl.Field().String())
	})
}

// Load reads, validates and resolves the manifest at path.
func Load(path string) (engine.CollectionDescription, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return engine.CollectionDescription{}, &LoadError{Path: path, Message: "read manifest", Err: err}
	}

	m, err := Parse(data)
	if err != nil {
		return engine.CollectionDescription{}, &LoadError{Path: path, Message: "parse manifest", Err: err}
	}

	return Resolve(m, filepath.Dir(path))
}

// Parse decodes and validates manifest YAML.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("yaml: %w", err)
	}
	if err := Validate(&m); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks required fields, names and alias uniqueness.
func Validate(m *Manifest) error {
	if err := manifestValidate.Struct(m); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			sort.Strings(msgs)
			return fmt.Errorf("invalid manifest: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid manifest: %w", err)
	}

	owners := make(map[string]string)
	for name := range m.Schematics {
		owners[name] = name
	}
	names := make([]string, 0, len(m.Schematics))
	for name := range m.Schematics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		for _, alias := range m.Schematics[name].Aliases {
			if owner, ok := owners[alias]; ok {
				return fmt.Errorf("invalid manifest: alias %q of %q clashes with %q", alias, name, owner)
			}
			owners[alias] = name
		}
	}
	return nil
}

// Resolve turns a manifest into a collection description, reading schema
// files relative to dir and checking that they compile.
func Resolve(m *Manifest, dir string) (engine.CollectionDescription, error) {
	checker := options.NewTransformer()

	desc := engine.CollectionDescription{
		Name:       m.Name,
		Version:    m.Version,
		Schematics: make(map[string]engine.SchematicDescription, len(m.Schematics)),
	}

	for name, entry := range m.Schematics {
		sd := engine.SchematicDescription{
			Name:        name,
			Description: entry.Description,
			Factory:     entry.Factory,
			Aliases:     entry.Aliases,
			Hidden:      entry.Hidden,
		}

		if entry.Schema != "" {
			schemaPath := entry.Schema
			if !filepath.IsAbs(schemaPath) {
				schemaPath = filepath.Join(dir, schemaPath)
			}
			src, err := os.ReadFile(schemaPath)
			if err != nil {
				return engine.CollectionDescription{}, &LoadError{Path: schemaPath, Message: "read schema of " + name, Err: err}
			}
			if err := checker.CheckSchema(string(src)); err != nil {
				return engine.CollectionDescription{}, &LoadError{Path: schemaPath, Message: "compile schema of " + name, Err: err}
			}
			sd.Schema = string(src)
		}

		desc.Schematics[name] = sd
	}

	return desc, nil
}
