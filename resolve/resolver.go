// Package resolve computes the closure of Go types reachable from root
// operations and classifies each one into a model.TypeNode.
//
// Every source type moves through three states: unvisited, in progress
// (a sentinel installed before any recursion), and resolved, where resolved
// may mean "unmappable". A type that refers back to itself, directly or
// through other types, meets its own sentinel and stops there.
package resolve

import (
	"fmt"
	"log/slog"
	"path"
	"reflect"
	"slices"
	"strings"

	"github.com/broady/harmony/model"
)

// Options configures a Resolver. All registries are explicit values.
type Options struct {
	// Primitives is the Primitive Registry. Defaults to model.DefaultPrimitives().
	Primitives *model.PrimitiveRegistry

	// Enums is the Enum Registry.
	Enums model.EnumRegistry

	// Candidates are the types eligible for polymorphic base and variant
	// discovery.
	Candidates []reflect.Type

	// Namespace maps a Go package path to a target namespace.
	// Defaults to the last element of the path.
	Namespace func(pkgPath string) string

	// Ignore marks types that must be treated as unmappable.
	Ignore func(reflect.Type) bool

	// Logger receives debug output. Defaults to slog.Default().
	Logger *slog.Logger
}

type state int

const (
	unvisited state = iota
	inProgress
	resolved
)

type entry struct {
	state  state
	node   model.TypeNode // nil when unmappable
	reason string
}

// Resolver computes one resolution. It is not safe for concurrent use and
// is meant to be used for a single run.
type Resolver struct {
	opts       Options
	logger     *slog.Logger
	entries    map[reflect.Type]*entry
	refs       map[reflect.Type]*model.Ref
	candidates map[reflect.Type]bool
	worklist   []reflect.Type
	warnings   []model.Warning
}

// New creates a Resolver.
func New(opts Options) *Resolver {
	if opts.Primitives == nil {
		opts.Primitives = model.DefaultPrimitives()
	}
	if opts.Namespace == nil {
		opts.Namespace = DefaultNamespace
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	r := &Resolver{
		opts:       opts,
		logger:     logger,
		entries:    make(map[reflect.Type]*entry),
		refs:       make(map[reflect.Type]*model.Ref),
		candidates: make(map[reflect.Type]bool),
	}
	for _, c := range opts.Candidates {
		if c != nil {
			r.candidates[c] = true
		}
	}
	return r
}

// DefaultNamespace returns the last element of the package path.
func DefaultNamespace(pkgPath string) string {
	if pkgPath == "" {
		return ""
	}
	return model.SanitizeName(path.Base(pkgPath))
}

// Resolve resolves roots and everything reachable from them, plus the
// descendants discovered along the way. Nil roots (void results) are skipped.
func (r *Resolver) Resolve(roots ...reflect.Type) *Result {
	for _, t := range roots {
		if t != nil {
			r.worklist = append(r.worklist, t)
		}
	}

	for len(r.worklist) > 0 {
		t := r.worklist[0]
		r.worklist = r.worklist[1:]
		if e := r.entries[t]; e != nil {
			continue
		}
		r.visit(t)
	}

	r.settle()
	r.disambiguate()
	for t, ref := range r.refs {
		ref.Node = r.entries[t].node
	}

	r.logger.Debug("types resolved",
		slog.Int("types", len(r.entries)),
		slog.Int("roots", len(roots)),
	)

	return &Result{entries: r.entries, refs: r.refs, warnings: r.warnings}
}

// ref returns the shared reference for t.
func (r *Resolver) ref(t reflect.Type) *model.Ref {
	ref, ok := r.refs[t]
	if !ok {
		ref = &model.Ref{Type: t}
		r.refs[t] = ref
	}
	return ref
}

// visit resolves t unless it is already in progress or resolved.
func (r *Resolver) visit(t reflect.Type) *model.Ref {
	ref := r.ref(t)
	if _, ok := r.entries[t]; ok {
		return ref
	}

	e := &entry{state: inProgress}
	r.entries[t] = e

	node, reason := r.classify(t)
	e.state = resolved
	e.node = node
	e.reason = reason

	if node == nil {
		r.logger.Debug("type unmappable", slog.String("type", t.String()), slog.String("reason", reason))
	}
	return ref
}

// mappable reports whether t may be used as an element type. A type still
// in progress is optimistically mappable; settle corrects the rare case
// where it later turns out not to be.
func (r *Resolver) mappable(t reflect.Type) (bool, string) {
	e := r.entries[t]
	if e == nil || e.state == inProgress {
		return true, ""
	}
	return e.node != nil, e.reason
}

// classify applies the classification rules in priority order.
func (r *Resolver) classify(t reflect.Type) (model.TypeNode, string) {
	if r.opts.Ignore != nil && r.opts.Ignore(t) {
		return nil, "ignored"
	}

	// 1. Primitive Registry, exact match.
	if p, ok := r.opts.Primitives.Lookup(t); ok {
		return model.NewBasic(t, p.Alias, p.Converter), ""
	}

	switch t.Kind() {
	// 2. Sequences. Strings have their own kind and never get here.
	case reflect.Slice, reflect.Array:
		elem := r.visit(t.Elem())
		if ok, why := r.mappable(t.Elem()); !ok {
			return nil, fmt.Sprintf("element type %s is unmappable: %s", t.Elem(), why)
		}
		return model.NewArray(t, elem), ""

	// 3. Optional, one level.
	case reflect.Pointer:
		if t.Elem().Kind() == reflect.Pointer {
			return nil, "nested pointers cannot be represented"
		}
		elem := r.visit(t.Elem())
		if ok, why := r.mappable(t.Elem()); !ok {
			return nil, fmt.Sprintf("element type %s is unmappable: %s", t.Elem(), why)
		}
		return model.NewOptional(t, elem), ""
	}

	// 4. Enumerations.
	if spec, ok := r.opts.Enums.Lookup(t); ok {
		name := r.qualify(t)
		if spec.Flags {
			r.warnings = append(r.warnings, model.Warning{
				Code:     model.WarnFlagsEnum,
				Message:  fmt.Sprintf("flags enum %s is emitted as a plain enumeration; combined values are not decomposed", name),
				TypeName: model.TypeKey(t),
			})
		}
		return model.NewEnum(t, name, slices.Clone(spec.Members), spec.Flags), ""
	}

	// 5. Composites.
	switch t.Kind() {
	case reflect.Struct:
		if t.Name() == "" {
			return nil, "anonymous struct types are not supported"
		}
		return r.composite(t), ""
	case reflect.Interface:
		if r.candidates[t] {
			return r.composite(t), ""
		}
	}

	// 6. Defined types over a basic kind.
	if t.Name() != "" {
		if alias, ok := r.opts.Primitives.LookupKind(t); ok {
			return model.NewBasic(t, alias, nil), ""
		}
	}

	return nil, unmappableReason(t)
}

func unmappableReason(t reflect.Type) string {
	switch t.Kind() {
	case reflect.Map:
		return "map types are not supported"
	case reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return fmt.Sprintf("%s values cannot cross the wire", t.Kind())
	case reflect.Interface:
		return "interface type is not a descendant candidate"
	case reflect.Complex64, reflect.Complex128:
		return "complex numbers have no wire representation"
	default:
		return "no mapping rule matched"
	}
}

func (r *Resolver) qualify(t reflect.Type) model.QualifiedName {
	return model.QualifiedName{
		Namespace: r.opts.Namespace(t.PkgPath()),
		Name:      model.SanitizeName(t.Name()),
	}
}

// composite builds a composite node: members, ancestors, and descendants.
func (r *Resolver) composite(t reflect.Type) *model.CompositeNode {
	c := model.NewComposite(t, r.qualify(t))

	if r.candidates[t] {
		r.discoverDescendants(t)
	}

	if t.Kind() == reflect.Struct {
		var fields []fieldInfo
		r.collectFields(t, 0, map[reflect.Type]bool{t: true}, &fields)
		for _, f := range dedupeFields(fields) {
			c.Members = append(c.Members, model.Member{
				Name:        f.name,
				GoName:      f.field.Name,
				Type:        r.visit(f.field.Type),
				Nullability: nullability(f.field),
				OmitEmpty:   f.omitEmpty,
			})
		}
	}

	for _, a := range r.ancestors(t) {
		c.Ancestors = append(c.Ancestors, r.visit(a))
	}
	return c
}

type fieldInfo struct {
	field     reflect.StructField
	name      string
	omitEmpty bool
	tagged    bool
	depth     int
}

// collectFields gathers the serialized fields of t, promoting fields of
// embedded structs that are not descendant candidates.
func (r *Resolver) collectFields(t reflect.Type, depth int, seen map[reflect.Type]bool, out *[]fieldInfo) {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		name, opts := parseJSONTag(f.Tag.Get("json"))
		if name == "-" && opts == "" {
			continue
		}

		if f.Anonymous && name == "" {
			ft := deref(f.Type)
			if r.candidates[ft] {
				continue // ancestor
			}
			if ft.Kind() == reflect.Struct {
				if !seen[ft] {
					seen[ft] = true
					r.collectFields(ft, depth+1, seen, out)
				}
				continue
			}
		}

		if !f.IsExported() {
			continue
		}
		tagged := name != ""
		if !tagged {
			name = f.Name
		}
		*out = append(*out, fieldInfo{
			field:     f,
			name:      name,
			tagged:    tagged,
			omitEmpty: hasOption(opts, "omitempty") || hasOption(opts, "omitzero"),
			depth:     depth,
		})
	}
}

// dedupeFields applies the encoding/json rules to fields sharing a wire
// name: the shallowest field wins; among several at that depth a single
// tagged field wins, and otherwise the name is dropped.
func dedupeFields(fields []fieldInfo) []fieldInfo {
	byName := make(map[string][]int)
	for i, f := range fields {
		byName[f.name] = append(byName[f.name], i)
	}
	keep := make(map[int]bool, len(byName))
	for _, idx := range byName {
		depth := fields[idx[0]].depth
		for _, i := range idx {
			depth = min(depth, fields[i].depth)
		}
		var shallow, tagged []int
		for _, i := range idx {
			if fields[i].depth != depth {
				continue
			}
			shallow = append(shallow, i)
			if fields[i].tagged {
				tagged = append(tagged, i)
			}
		}
		switch {
		case len(shallow) == 1:
			keep[shallow[0]] = true
		case len(tagged) == 1:
			keep[tagged[0]] = true
		}
	}
	var out []fieldInfo
	for i, f := range fields {
		if keep[i] {
			out = append(out, f)
		}
	}
	return out
}

func nullability(f reflect.StructField) model.Nullability {
	switch f.Tag.Get("nullable") {
	case "true":
		return model.Nullable
	case "false":
		return model.NonNullable
	}
	switch f.Type.Kind() {
	case reflect.Pointer:
		return model.Nullable
	case reflect.Slice, reflect.Map, reflect.Interface:
		if hasOption(f.Tag.Get("validate"), "required") {
			return model.NonNullable
		}
		return model.NullabilityUnknown
	}
	return model.NonNullable
}

func parseJSONTag(tag string) (name, opts string) {
	name, opts, _ = strings.Cut(tag, ",")
	return name, opts
}

func hasOption(opts, want string) bool {
	for _, o := range strings.Split(opts, ",") {
		if o == want {
			return true
		}
	}
	return false
}

func deref(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}

// settle marks arrays and optionals whose element ended unmappable as
// unmappable themselves, until nothing changes.
func (r *Resolver) settle() {
	for changed := true; changed; {
		changed = false
		for t, e := range r.entries {
			elem := model.Elem(e.node)
			if elem == nil {
				continue
			}
			if ee := r.entries[elem.Type]; ee != nil && ee.node == nil {
				e.node = nil
				e.reason = fmt.Sprintf("element type %s is unmappable: %s", elem.Type, ee.reason)
				r.logger.Debug("type unmappable", slog.String("type", t.String()), slog.String("reason", e.reason))
				changed = true
			}
		}
	}
}
