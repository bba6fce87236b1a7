package typescript

import "fmt"

// EnumStyle controls how enumerations are declared.
type EnumStyle string

const (
	// EnumStyleEnum declares a numeric TypeScript enum.
	EnumStyleEnum EnumStyle = "enum"

	// EnumStyleUnion declares a union of the member values.
	EnumStyleUnion EnumStyle = "union"
)

// Config controls the generated client.
type Config struct {
	// FileName is the path of the generated file, relative to the sink.
	FileName string `yaml:"file_name" schema:"file_name"`

	// Header is emitted as a line comment at the top of the file.
	Header string `yaml:"header" schema:"header"`

	// RuntimeImport is the module that exports the base class, the options
	// type, and the fetch strategies.
	RuntimeImport string `yaml:"runtime_import" schema:"runtime_import"`

	// BaseClass is the class every service class extends.
	BaseClass string `yaml:"base_class" schema:"base_class"`

	// OptionsType is the type of the shared and per-call options.
	OptionsType string `yaml:"options_type" schema:"options_type"`

	// ServicesClass is the aggregate class holding one instance per service.
	ServicesClass string `yaml:"services_class" schema:"services_class"`

	// ServiceSuffix is appended to every service class name.
	ServiceSuffix string `yaml:"service_suffix" schema:"service_suffix"`

	// Fetch strategy method names on the base class.
	FetchVoid   string `yaml:"fetch_void" schema:"fetch_void"`
	FetchString string `yaml:"fetch_string" schema:"fetch_string"`
	FetchJSON   string `yaml:"fetch_json" schema:"fetch_json"`

	EnumStyle EnumStyle `yaml:"enum_style" schema:"enum_style"`

	// IndentSize is the number of spaces per indent level.
	IndentSize int `yaml:"indent_size" schema:"indent_size"`

	// LineEnding is "lf" or "crlf".
	LineEnding string `yaml:"line_ending" schema:"line_ending"`
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() Config {
	return Config{
		FileName:      "client.ts",
		Header:        "Code generated by harmony. DO NOT EDIT.",
		RuntimeImport: "./runtime",
		BaseClass:     "ApiServiceBase",
		OptionsType:   "ApiOptions",
		ServicesClass: "Services",
		ServiceSuffix: "Service",
		FetchVoid:     "fetchVoid",
		FetchString:   "fetchString",
		FetchJSON:     "fetchJson",
		EnumStyle:     EnumStyleEnum,
		IndentSize:    2,
		LineEnding:    "lf",
	}
}

// WithDefaults fills every zero field from DefaultConfig.
func (c Config) WithDefaults() Config {
	d := DefaultConfig()
	fill := func(dst *string, def string) {
		if *dst == "" {
			*dst = def
		}
	}
	fill(&c.FileName, d.FileName)
	fill(&c.RuntimeImport, d.RuntimeImport)
	fill(&c.BaseClass, d.BaseClass)
	fill(&c.OptionsType, d.OptionsType)
	fill(&c.ServicesClass, d.ServicesClass)
	fill(&c.FetchVoid, d.FetchVoid)
	fill(&c.FetchString, d.FetchString)
	fill(&c.FetchJSON, d.FetchJSON)
	fill(&c.LineEnding, d.LineEnding)
	if c.EnumStyle == "" {
		c.EnumStyle = d.EnumStyle
	}
	if c.IndentSize <= 0 {
		c.IndentSize = d.IndentSize
	}
	return c
}

// Validate reports configuration values the emitter cannot honor.
func (c Config) Validate() error {
	switch c.EnumStyle {
	case EnumStyleEnum, EnumStyleUnion:
	default:
		return fmt.Errorf("enum_style: unknown style %q (want %q or %q)", c.EnumStyle, EnumStyleEnum, EnumStyleUnion)
	}
	switch c.LineEnding {
	case "lf", "crlf":
	default:
		return fmt.Errorf("line_ending: unknown value %q (want lf or crlf)", c.LineEnding)
	}
	for _, f := range []struct{ name, ident string }{
		{"base_class", c.BaseClass},
		{"options_type", c.OptionsType},
		{"services_class", c.ServicesClass},
		{"fetch_void", c.FetchVoid},
		{"fetch_string", c.FetchString},
		{"fetch_json", c.FetchJSON},
	} {
		if needsQuoting(f.ident) {
			return fmt.Errorf("%s: %q is not a valid identifier", f.name, f.ident)
		}
	}
	return nil
}
