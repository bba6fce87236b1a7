package model

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Direction is the way a value crosses the wire.
type Direction int

const (
	// ToWire converts host values into wire values (parameters).
	ToWire Direction = iota

	// ToHost converts wire values into host values (return values).
	ToHost
)

func (d Direction) String() string {
	switch d {
	case ToWire:
		return "ToWire"
	case ToHost:
		return "ToHost"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// Converter is a custom bidirectional transform for a primitive.
// ToWire and ToHost are expression templates: every "$" is replaced by the
// expression being converted.
type Converter struct {
	// ToWire converts a host value into its wire representation.
	ToWire string

	// ToHost converts a wire value into its host representation.
	ToHost string

	// Imports lists import statements the converted code needs.
	Imports []string
}

// Apply expands the template for dir around expr.
func (c *Converter) Apply(dir Direction, expr string) string {
	tmpl := c.ToWire
	if dir == ToHost {
		tmpl = c.ToHost
	}
	return strings.ReplaceAll(tmpl, "$", expr)
}

// Primitive is one Primitive Registry entry.
type Primitive struct {
	Alias     string
	Converter *Converter
}

// PrimitiveRegistry maps atomic source types to target aliases.
//
// Exact entries match a reflect.Type by identity. Kind entries apply to
// defined types whose underlying kind is basic (type UserID string) and are
// consulted only after every other classification rule failed.
type PrimitiveRegistry struct {
	exact map[reflect.Type]Primitive
	kinds map[reflect.Kind]string
}

// NewPrimitiveRegistry returns an empty registry.
func NewPrimitiveRegistry() *PrimitiveRegistry {
	return &PrimitiveRegistry{
		exact: make(map[reflect.Type]Primitive),
		kinds: make(map[reflect.Kind]string),
	}
}

// DefaultPrimitives returns a registry with the standard Go to TypeScript
// mappings. time.Time is a plain RFC 3339 string; use AddConverter to map it
// to a richer host type.
func DefaultPrimitives() *PrimitiveRegistry {
	r := NewPrimitiveRegistry()

	r.Add(reflect.TypeFor[bool](), "boolean")
	r.Add(reflect.TypeFor[string](), "string")
	for _, t := range []reflect.Type{
		reflect.TypeFor[int](), reflect.TypeFor[int8](), reflect.TypeFor[int16](),
		reflect.TypeFor[int32](), reflect.TypeFor[int64](),
		reflect.TypeFor[uint](), reflect.TypeFor[uint8](), reflect.TypeFor[uint16](),
		reflect.TypeFor[uint32](), reflect.TypeFor[uint64](),
		reflect.TypeFor[float32](), reflect.TypeFor[float64](),
	} {
		r.Add(t, "number")
	}

	r.Add(reflect.TypeFor[any](), "any")
	r.Add(reflect.TypeFor[json.RawMessage](), "any")
	r.Add(reflect.TypeFor[[]byte](), "string") // base64
	r.Add(reflect.TypeFor[time.Time](), "string")
	r.Add(reflect.TypeFor[time.Duration](), "number") // nanoseconds
	r.Add(reflect.TypeFor[uuid.UUID](), "string")
	r.Add(reflect.TypeFor[struct{}](), "Record<string, never>")

	r.AddKind(reflect.Bool, "boolean")
	r.AddKind(reflect.String, "string")
	for _, k := range []reflect.Kind{
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64,
	} {
		r.AddKind(k, "number")
	}
	return r
}

// Add registers t with a target alias and no converter.
func (r *PrimitiveRegistry) Add(t reflect.Type, alias string) {
	r.exact[t] = Primitive{Alias: alias}
}

// AddConverter registers t with a target alias and a custom converter.
func (r *PrimitiveRegistry) AddConverter(t reflect.Type, alias string, conv *Converter) {
	r.exact[t] = Primitive{Alias: alias, Converter: conv}
}

// AddKind registers the fallback alias for defined types of kind k.
func (r *PrimitiveRegistry) AddKind(k reflect.Kind, alias string) {
	r.kinds[k] = alias
}

// Lookup returns the exact entry for t.
func (r *PrimitiveRegistry) Lookup(t reflect.Type) (Primitive, bool) {
	p, ok := r.exact[t]
	return p, ok
}

// LookupKind returns the fallback alias for the underlying kind of t.
func (r *PrimitiveRegistry) LookupKind(t reflect.Type) (string, bool) {
	alias, ok := r.kinds[t.Kind()]
	return alias, ok
}

// Clone returns an independent copy of the registry.
func (r *PrimitiveRegistry) Clone() *PrimitiveRegistry {
	c := NewPrimitiveRegistry()
	for t, p := range r.exact {
		c.exact[t] = p
	}
	for k, a := range r.kinds {
		c.kinds[k] = a
	}
	return c
}

// DateConverter maps time.Time to a JavaScript Date.
var DateConverter = &Converter{
	ToWire: "$.toISOString()",
	ToHost: "new Date($)",
}

// EnumSpec describes one enumeration for the Enum Registry.
type EnumSpec struct {
	Flags   bool         `yaml:"flags,omitempty" json:"flags,omitempty"`
	Members []EnumMember `yaml:"members" json:"members"`
}

// EnumRegistry maps fully qualified Go type names ("pkg/path.Name") to enum
// members. Go has no runtime enumeration of constants, so entries come from
// source scanning (package enumscan), configuration, or code.
type EnumRegistry map[string]EnumSpec

// Lookup returns the enum spec for t.
func (r EnumRegistry) Lookup(t reflect.Type) (EnumSpec, bool) {
	if r == nil || t.Name() == "" {
		return EnumSpec{}, false
	}
	spec, ok := r[TypeKey(t)]
	return spec, ok
}
