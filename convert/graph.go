// Package convert decides which types need runtime conversion when crossing
// the wire, and builds one deduplicated converter per converter key.
//
// A type needs conversion iff a Basic node with a custom converter is
// reachable from it. Reachability is computed over strongly connected
// components, so a cycle needs conversion iff some node in it, or reachable
// from it, carries a converter. A cycle without converters never does.
package convert

import (
	"slices"
	"strings"

	"github.com/broady/harmony/model"
)

// Direction is the way a value crosses the wire.
type Direction = model.Direction

const (
	ToWire = model.ToWire
	ToHost = model.ToHost
)

// Node is the converter for one converter key.
type Node struct {
	// Key names the converter. Optional nodes share their element's key.
	Key string

	// Target is the node being converted; never an Optional.
	Target model.TypeNode

	// Deps are the converters this one calls, sorted by key.
	Deps []*Node

	used [2]bool
}

// Used reports whether the converter is needed for dir.
func (n *Node) Used(dir Direction) bool { return n.used[dir] }

// FuncName returns the name of the generated converter function for dir.
func (n *Node) FuncName(dir Direction) string {
	return "convert" + dir.String() + "_" + n.Key
}

type state int

const (
	unvisited state = iota
	inProgress
	done
)

type vertex struct {
	state      state
	index, low int
	needs      bool
}

// Graph memoizes conversion decisions for one run.
type Graph struct {
	vertices map[model.TypeNode]*vertex
	nodes    map[model.TypeNode]*Node
	byKey    map[string]*Node

	index int
	stack []model.TypeNode
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{
		vertices: make(map[model.TypeNode]*vertex),
		nodes:    make(map[model.TypeNode]*Node),
		byKey:    make(map[string]*Node),
	}
}

// NeedsConversion returns the converter for n, or nil when values of n cross
// the wire unchanged. The same *Node is returned for every node sharing a
// converter key.
func (g *Graph) NeedsConversion(n model.TypeNode) *Node {
	c := canonical(n)
	if c == nil {
		return nil
	}
	if v := g.vertices[c]; v == nil || v.state == unvisited {
		g.strongConnect(c)
	}
	return g.nodes[c]
}

// Use marks the converter for n as needed in dir, together with every
// converter it depends on. It is a no-op when n needs no conversion.
func (g *Graph) Use(n model.TypeNode, dir Direction) {
	if node := g.NeedsConversion(n); node != nil {
		use(node, dir)
	}
}

func use(n *Node, dir Direction) {
	if n.used[dir] {
		return
	}
	n.used[dir] = true
	for _, d := range n.Deps {
		use(d, dir)
	}
}

// Used returns every converter used in at least one direction, sorted by key.
func (g *Graph) Used() []*Node {
	var out []*Node
	for _, n := range g.byKey {
		if n.used[ToWire] || n.used[ToHost] {
			out = append(out, n)
		}
	}
	slices.SortFunc(out, func(a, b *Node) int { return strings.Compare(a.Key, b.Key) })
	return out
}

// strongConnect is Tarjan's algorithm rooted at n.
func (g *Graph) strongConnect(n model.TypeNode) {
	v := &vertex{state: inProgress, index: g.index, low: g.index}
	g.index++
	g.vertices[n] = v
	g.stack = append(g.stack, n)

	for _, e := range edges(n) {
		w := g.vertices[e]
		switch {
		case w == nil:
			g.strongConnect(e)
			v.low = min(v.low, g.vertices[e].low)
		case w.state == inProgress:
			v.low = min(v.low, w.index)
		}
	}

	if v.low != v.index {
		return
	}

	var scc []model.TypeNode
	for {
		top := g.stack[len(g.stack)-1]
		g.stack = g.stack[:len(g.stack)-1]
		scc = append(scc, top)
		if top == n {
			break
		}
	}

	needs := false
	for _, m := range scc {
		if hasConverter(m) {
			needs = true
			break
		}
		for _, e := range edges(m) {
			if w := g.vertices[e]; w.state == done && w.needs {
				needs = true
				break
			}
		}
	}
	for _, m := range scc {
		g.vertices[m].state = done
		g.vertices[m].needs = needs
	}
	if !needs {
		return
	}

	for _, m := range scc {
		key := Key(m)
		node, ok := g.byKey[key]
		if !ok {
			node = &Node{Key: key, Target: m}
			g.byKey[key] = node
		}
		g.nodes[m] = node
	}
	for _, m := range scc {
		node := g.nodes[m]
		if node.Target != m {
			continue
		}
		for _, e := range edges(m) {
			if d := g.nodes[e]; d != nil && !slices.Contains(node.Deps, d) {
				node.Deps = append(node.Deps, d)
			}
		}
		slices.SortFunc(node.Deps, func(a, b *Node) int { return strings.Compare(a.Key, b.Key) })
	}
}

// canonical strips Optional wrappers. Optional values convert through their
// element, so both share one converter.
func canonical(n model.TypeNode) model.TypeNode {
	if n == nil {
		return nil
	}
	if o, ok := model.Unwrap(n).(*model.OptionalNode); ok && !o.Elem.Mapped() {
		return nil
	}
	return model.Unwrap(n)
}

// edges returns the canonical nodes whose conversion n depends on.
func edges(n model.TypeNode) []model.TypeNode {
	var out []model.TypeNode
	add := func(r *model.Ref) {
		if !r.Mapped() {
			return
		}
		if c := canonical(r.Node); c != nil {
			out = append(out, c)
		}
	}
	switch n := n.(type) {
	case *model.ArrayNode:
		add(n.Elem)
	case *model.CompositeNode:
		for _, a := range n.Ancestors {
			add(a)
		}
		for _, m := range n.Members {
			add(m.Type)
		}
	}
	return out
}

func hasConverter(n model.TypeNode) bool {
	b, ok := n.(*model.BasicNode)
	return ok && b.Converter != nil
}

// Key returns the converter key for n. Declared types use their qualified
// name, basics their alias plus the source type, named arrays their source
// type, and unnamed arrays their element key plus "Array". Distinct source
// types never share a key.
func Key(n model.TypeNode) string {
	n = model.Unwrap(n)
	if name, ok := model.DeclaredName(n); ok {
		return identifier(name.String())
	}
	switch n := n.(type) {
	case *model.BasicNode:
		return identifier(n.Alias + "_" + model.TypeKey(n.Type()))
	case *model.ArrayNode:
		if t := n.Type(); t.Name() != "" {
			return identifier(model.TypeKey(t))
		}
		if n.Elem.Mapped() {
			return Key(n.Elem.Node) + "Array"
		}
	}
	return identifier(model.TypeKey(n.Type()))
}

func identifier(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
