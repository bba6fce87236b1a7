// Package config loads generator settings from YAML.
//
// A configuration file looks like:
//
//	dir: ./web/src/api
//	dates: date
//	strip_prefix: example.com/app/
//	namespaces:
//	  example.com/app/internal/wire: api
//	typescript:
//	  runtime_import: ./runtime
//	  enum_style: union
//	enums:
//	  example.com/app/billing.Status:
//	    members:
//	      - {name: Active, value: 0}
//	      - {name: Closed, value: 1}
//
// The enums block is the format printed by "harmony enums".
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"maps"
	"net/url"
	"os"
	"reflect"
	"slices"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/schema"
	"gopkg.in/yaml.v3"

	"github.com/broady/harmony"
	"github.com/broady/harmony/model"
	"github.com/broady/harmony/typescript"
)

var validate = validator.New()

// DateMode selects how time.Time crosses the wire.
type DateMode string

const (
	// DatesDate converts RFC 3339 strings to Date objects and back.
	DatesDate DateMode = "date"

	// DatesString leaves timestamps as strings.
	DatesString DateMode = "string"
)

// Config is the complete generator configuration.
type Config struct {
	// Dir is the output directory.
	Dir string `yaml:"dir" schema:"dir" validate:"required"`

	Dates DateMode `yaml:"dates" schema:"dates" validate:"oneof=date string"`

	// StripPrefix is removed from package paths before they become
	// namespaces.
	StripPrefix string `yaml:"strip_prefix" schema:"strip_prefix"`

	// Namespaces maps package paths to namespace names.
	Namespaces map[string]string `yaml:"namespaces,omitempty" schema:"-" validate:"dive,keys,required,endkeys,required,excludesall=./"`

	TypeScript typescript.Config `yaml:"typescript" schema:"typescript"`

	Enums model.EnumRegistry `yaml:"enums,omitempty" schema:"-"`
}

// Default returns a configuration with every default filled in.
func Default() *Config {
	return &Config{
		Dates:      DatesDate,
		TypeScript: typescript.DefaultConfig(),
	}
}

// Load reads and parses the configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults. Unknown keys are errors.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing YAML config: %w", err)
	}
	return cfg, nil
}

// Marshal serializes cfg to YAML.
func Marshal(cfg *Config) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ApplyOverrides sets fields from "key=value" pairs. Keys are the YAML
// field names, with dots for nested sections: "typescript.enum_style=union".
func (c *Config) ApplyOverrides(pairs []string) error {
	if len(pairs) == 0 {
		return nil
	}
	values := make(url.Values)
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return harmony.Errorf(harmony.CodeInvalidConfig, "override %q: want key=value", pair)
		}
		values.Set(key, value)
	}

	dec := schema.NewDecoder()
	dec.IgnoreUnknownKeys(false)
	if err := dec.Decode(c, values); err != nil {
		return &harmony.Error{
			Code:    harmony.CodeInvalidConfig,
			Message: fmt.Sprintf("applying overrides: %v", err),
			Err:     err,
		}
	}
	return nil
}

// Validate checks field constraints and the client settings.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if err := c.TypeScript.WithDefaults().Validate(); err != nil {
		return &harmony.Error{
			Code:    harmony.CodeInvalidConfig,
			Message: "typescript." + err.Error(),
			Err:     err,
		}
	}
	for _, name := range slices.Sorted(maps.Keys(c.Enums)) {
		spec := c.Enums[name]
		seen := make(map[string]bool, len(spec.Members))
		for _, m := range spec.Members {
			if m.Name == "" || seen[m.Name] {
				return harmony.Errorf(harmony.CodeInvalidConfig, "enums.%s: empty or duplicate member name %q", name, m.Name)
			}
			seen[m.Name] = true
		}
	}
	return nil
}

// Apply configures g from c.
func (c *Config) Apply(g *harmony.Generator) *harmony.Generator {
	g = g.WithTypeScript(c.TypeScript).WithEnums(c.Enums)
	if len(c.Namespaces) > 0 || c.StripPrefix != "" {
		g = g.WithNamespace(harmony.Namespaces(c.Namespaces, c.StripPrefix))
	}
	if c.Dates == DatesDate {
		g = g.WithPrimitive(reflect.TypeFor[time.Time](), "Date", model.DateConverter)
	}
	return g
}
