package resolve

import (
	"reflect"
	"slices"

	"github.com/broady/harmony/model"
)

// ancestors returns the minimal set of candidate bases of t, sorted by type
// key. A base is dropped when another base is already assignable to it.
func (r *Resolver) ancestors(t reflect.Type) []reflect.Type {
	var bases []reflect.Type
	add := func(b reflect.Type) {
		if b != t && !slices.Contains(bases, b) {
			bases = append(bases, b)
		}
	}

	if t.Kind() == reflect.Struct {
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			if !f.Anonymous {
				continue
			}
			if name, _ := parseJSONTag(f.Tag.Get("json")); name != "" {
				continue
			}
			if ft := deref(f.Type); r.candidates[ft] {
				add(ft)
			}
		}
	}
	for c := range r.candidates {
		if c.Kind() == reflect.Interface && c != t && assignable(t, c) {
			add(c)
		}
	}

	minimal := bases[:0:0]
	for _, b := range bases {
		implied := slices.ContainsFunc(bases, func(o reflect.Type) bool {
			return o != b && assignable(o, b)
		})
		if !implied {
			minimal = append(minimal, b)
		}
	}
	slices.SortFunc(minimal, compareTypes)
	return minimal
}

// discoverDescendants queues every candidate assignable to base.
func (r *Resolver) discoverDescendants(base reflect.Type) {
	var found []reflect.Type
	for c := range r.candidates {
		if c != base && assignable(c, base) {
			found = append(found, c)
		}
	}
	slices.SortFunc(found, compareTypes)
	r.worklist = append(r.worklist, found...)
}

// assignable reports whether a value of type c can stand in for base:
// c (or *c) implements the interface base, or c embeds base, possibly
// through other embedded structs.
func assignable(c, base reflect.Type) bool {
	if c == base {
		return true
	}
	switch base.Kind() {
	case reflect.Interface:
		if base.NumMethod() == 0 {
			return false
		}
		if c.Implements(base) {
			return true
		}
		return c.Kind() != reflect.Interface && c.Kind() != reflect.Pointer &&
			reflect.PointerTo(c).Implements(base)
	case reflect.Struct:
		if c.Kind() != reflect.Struct {
			return false
		}
		return embeds(c, base, map[reflect.Type]bool{})
	}
	return false
}

func embeds(c, base reflect.Type, seen map[reflect.Type]bool) bool {
	seen[c] = true
	for i := 0; i < c.NumField(); i++ {
		f := c.Field(i)
		if !f.Anonymous {
			continue
		}
		ft := deref(f.Type)
		if ft == base {
			return true
		}
		if ft.Kind() == reflect.Struct && !seen[ft] && embeds(ft, base, seen) {
			return true
		}
	}
	return false
}

func compareTypes(a, b reflect.Type) int {
	ka, kb := model.TypeKey(a), model.TypeKey(b)
	switch {
	case ka < kb:
		return -1
	case ka > kb:
		return 1
	}
	return 0
}
