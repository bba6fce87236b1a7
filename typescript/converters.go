package typescript

import (
	"slices"
	"strings"

	"github.com/broady/harmony/convert"
	"github.com/broady/harmony/model"
)

type converterFunc struct {
	node *convert.Node
	dir  convert.Direction
}

// usedConverters returns one entry per used (node, direction), sorted by
// function name.
func usedConverters(g *convert.Graph) []converterFunc {
	var out []converterFunc
	for _, n := range g.Used() {
		for _, dir := range []convert.Direction{convert.ToWire, convert.ToHost} {
			if n.Used(dir) {
				out = append(out, converterFunc{node: n, dir: dir})
			}
		}
	}
	slices.SortFunc(out, func(a, b converterFunc) int {
		return strings.Compare(a.node.FuncName(a.dir), b.node.FuncName(b.dir))
	})
	return out
}

func (e *emitter) emitConverters(w *writer, funcs []converterFunc) {
	for i, f := range funcs {
		if i > 0 {
			w.line("")
		}
		e.emitConverter(w, f.node, f.dir)
	}
}

// emitConverter writes the converter body for one direction. Callers skip
// absent values, so the function never sees null.
func (e *emitter) emitConverter(w *writer, n *convert.Node, dir convert.Direction) {
	w.open("function %s(v: any): any {", n.FuncName(dir))

	switch t := n.Target.(type) {
	case *model.BasicNode:
		w.line("return %s;", t.Converter.Apply(dir, "v"))

	case *model.ArrayNode:
		elem := e.graph.NeedsConversion(t.Elem.Node)
		w.line("return v.map((e: any) => e == null ? e : %s(e));", elem.FuncName(dir))

	case *model.CompositeNode:
		if dir == convert.ToWire {
			// ToWire works on a shallow copy.
			w.line("v = { ...v };")
		}
		for _, a := range t.Ancestors {
			if d := e.graph.NeedsConversion(a.Node); d != nil {
				w.line("v = %s(v);", d.FuncName(dir))
			}
		}
		for _, m := range t.Members {
			d := e.graph.NeedsConversion(m.Type.Node)
			if d == nil {
				continue
			}
			access := memberAccess("v", m.Name)
			w.line("if (%s != null) %s = %s(%s);", access, access, d.FuncName(dir), access)
		}
		w.line("return v;")
	}
	w.shut("}")
}

func memberAccess(obj, name string) string {
	if needsQuoting(name) && !reservedWords[name] {
		return obj + "[" + propertyKey(name) + "]"
	}
	return obj + "." + name
}

// converterImports collects the imports of used basic converters.
func converterImports(funcs []converterFunc) []string {
	var out []string
	for _, f := range funcs {
		if b, ok := f.node.Target.(*model.BasicNode); ok && b.Converter != nil {
			out = append(out, b.Converter.Imports...)
		}
	}
	return out
}
