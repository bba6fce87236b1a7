package typescript

import (
	"slices"
	"strconv"
	"strings"

	"github.com/broady/harmony/model"
)

// qualified returns the reference expression of a declared type.
func qualified(name model.QualifiedName) string {
	if name.Namespace == "" {
		return sanitizeIdentifier(name.Name)
	}
	return sanitizeIdentifier(name.Namespace) + "." + sanitizeIdentifier(name.Name)
}

// typeExpr returns the TypeScript type expression for n.
func typeExpr(n model.TypeNode) string {
	switch n := n.(type) {
	case *model.BasicNode:
		return n.Alias
	case *model.ArrayNode:
		elem := refExpr(n.Elem)
		if strings.Contains(elem, " | ") {
			elem = "(" + elem + ")"
		}
		return elem + "[]"
	case *model.OptionalNode:
		return refExpr(n.Elem) + " | null"
	case *model.EnumNode:
		return qualified(n.Name)
	case *model.CompositeNode:
		return qualified(n.Name)
	}
	return "unknown"
}

func refExpr(r *model.Ref) string {
	if !r.Mapped() {
		return "unknown"
	}
	return typeExpr(r.Node)
}

// memberExpr applies the member's nullability on top of its type.
// Unknown nullability leaves the type as resolved.
func memberExpr(m model.Member) string {
	if !m.Type.Mapped() {
		return "unknown"
	}
	opt, isOpt := m.Type.Node.(*model.OptionalNode)
	switch m.Nullability {
	case model.NonNullable:
		if isOpt {
			return refExpr(opt.Elem)
		}
	case model.Nullable:
		if !isOpt {
			return typeExpr(m.Type.Node) + " | null"
		}
	}
	return typeExpr(m.Type.Node)
}

type namespace struct {
	name       string
	enums      []*model.EnumNode
	composites []*model.CompositeNode
}

// groupTypes groups declared nodes by namespace. The unnamed namespace, if
// any, comes first; the rest are sorted by name.
func groupTypes(nodes []model.TypeNode) []*namespace {
	byName := make(map[string]*namespace)
	get := func(name string) *namespace {
		ns, ok := byName[name]
		if !ok {
			ns = &namespace{name: name}
			byName[name] = ns
		}
		return ns
	}
	for _, n := range nodes {
		switch n := n.(type) {
		case *model.EnumNode:
			ns := get(n.Name.Namespace)
			ns.enums = append(ns.enums, n)
		case *model.CompositeNode:
			ns := get(n.Name.Namespace)
			ns.composites = append(ns.composites, n)
		}
	}

	out := make([]*namespace, 0, len(byName))
	for _, ns := range byName {
		slices.SortFunc(ns.enums, func(a, b *model.EnumNode) int {
			return strings.Compare(a.Name.String(), b.Name.String())
		})
		slices.SortFunc(ns.composites, func(a, b *model.CompositeNode) int {
			return strings.Compare(a.Name.String(), b.Name.String())
		})
		out = append(out, ns)
	}
	slices.SortFunc(out, func(a, b *namespace) int { return strings.Compare(a.name, b.name) })
	return out
}

func (e *emitter) emitTypes(w *writer, nodes []model.TypeNode) {
	for i, ns := range groupTypes(nodes) {
		if i > 0 {
			w.line("")
		}
		if ns.name != "" {
			w.open("export namespace %s {", sanitizeIdentifier(ns.name))
		}
		first := true
		sep := func() {
			if !first {
				w.line("")
			}
			first = false
		}
		for _, en := range ns.enums {
			sep()
			e.emitEnum(w, en)
		}
		for _, c := range ns.composites {
			sep()
			e.emitComposite(w, c)
		}
		if ns.name != "" {
			w.shut("}")
		}
	}
}

func (e *emitter) emitEnum(w *writer, en *model.EnumNode) {
	name := sanitizeIdentifier(en.Name.Name)
	if e.cfg.EnumStyle == EnumStyleUnion {
		if len(en.Members) == 0 {
			w.line("export type %s = never;", name)
			return
		}
		values := make([]string, len(en.Members))
		for i, m := range en.Members {
			values[i] = strconv.FormatInt(m.Value, 10)
		}
		w.line("export type %s = %s;", name, strings.Join(values, " | "))
		return
	}

	w.open("export enum %s {", name)
	for _, m := range en.Members {
		w.line("%s = %d,", sanitizeIdentifier(m.Name), m.Value)
	}
	w.shut("}")
}

func (e *emitter) emitComposite(w *writer, c *model.CompositeNode) {
	decl := "export interface " + sanitizeIdentifier(c.Name.Name)
	if len(c.Ancestors) > 0 {
		bases := make([]string, 0, len(c.Ancestors))
		for _, a := range c.Ancestors {
			bases = append(bases, refExpr(a))
		}
		decl += " extends " + strings.Join(bases, ", ")
	}

	if len(c.Members) == 0 {
		w.line("%s {}", decl)
		return
	}
	w.open("%s {", decl)
	for _, m := range c.Members {
		opt := ""
		if m.OmitEmpty {
			opt = "?"
		}
		w.line("%s%s: %s;", propertyKey(m.Name), opt, memberExpr(m))
	}
	w.shut("}")
}
