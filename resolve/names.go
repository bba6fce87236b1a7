package resolve

import (
	"fmt"
	"maps"
	"reflect"
	"slices"
	"strings"

	"github.com/broady/harmony/model"
)

// disambiguate renames declared types whose qualified names collide, so that
// every emitted declaration and converter belongs to exactly one source type.
// Colliding types are prefixed with the shortest distinguishing part of
// their package path.
func (r *Resolver) disambiguate() {
	byName := make(map[model.QualifiedName][]reflect.Type)
	taken := make(map[model.QualifiedName]bool)
	for t, e := range r.entries {
		if name, ok := model.DeclaredName(e.node); ok {
			byName[name] = append(byName[name], t)
			taken[name] = true
		}
	}

	names := slices.SortedFunc(maps.Keys(byName), func(a, b model.QualifiedName) int {
		return strings.Compare(a.String(), b.String())
	})
	for _, name := range names {
		types := byName[name]
		if len(types) < 2 {
			continue
		}
		slices.SortFunc(types, compareTypes)
		renamed := uniqueNames(name, types, taken)
		for i, t := range types {
			taken[renamed[i]] = true
			setName(r.entries[t].node, renamed[i])
			r.warnings = append(r.warnings, model.Warning{
				Code:     model.WarnRenamedType,
				Message:  fmt.Sprintf("%s is declared by %d types; %s is emitted as %s", name, len(types), model.TypeKey(t), renamed[i]),
				TypeName: model.TypeKey(t),
			})
		}
	}
}

// uniqueNames returns one name per type, prefixing name.Name with more and
// more of each package path (parent directories first, then the whole path)
// until the names are distinct and unused. Types of one package, such as
// generic instantiations, fall back to their full type key.
func uniqueNames(name model.QualifiedName, types []reflect.Type, taken map[model.QualifiedName]bool) []model.QualifiedName {
	out := make([]model.QualifiedName, len(types))
	for k := 1; ; k++ {
		exhausted := true
		for i, t := range types {
			prefix, ok := pathPrefix(t.PkgPath(), k)
			if ok {
				exhausted = false
			}
			out[i] = model.QualifiedName{Namespace: name.Namespace, Name: model.SanitizeName(prefix) + "_" + name.Name}
		}
		if distinct(out, taken) {
			return out
		}
		if exhausted {
			break
		}
	}
	for i, t := range types {
		out[i] = model.QualifiedName{Namespace: name.Namespace, Name: fullName(t)}
	}
	return out
}

// pathPrefix returns the k path elements before the last one, or the whole
// path once k runs past them. It reports false when k exceeds both.
func pathPrefix(pkgPath string, k int) (string, bool) {
	elems := strings.Split(pkgPath, "/")
	parents := len(elems) - 1
	switch {
	case k <= parents:
		return strings.Join(elems[parents-k:parents], "/"), true
	case k == parents+1:
		return pkgPath, true
	}
	return pkgPath, false
}

func distinct(names []model.QualifiedName, taken map[model.QualifiedName]bool) bool {
	seen := make(map[model.QualifiedName]bool, len(names))
	for _, n := range names {
		if seen[n] || taken[n] {
			return false
		}
		seen[n] = true
	}
	return true
}

// fullName turns the complete type key, type arguments included, into an
// identifier.
func fullName(t reflect.Type) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		}
		return '_'
	}, model.TypeKey(t))
}

func setName(n model.TypeNode, name model.QualifiedName) {
	switch n := n.(type) {
	case *model.CompositeNode:
		n.Name = name
	case *model.EnumNode:
		n.Name = name
	}
}
