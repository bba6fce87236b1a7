package resolve

import (
	"reflect"
	"slices"

	"github.com/broady/harmony/model"
)

// Result is the outcome of a resolution.
type Result struct {
	entries  map[reflect.Type]*entry
	refs     map[reflect.Type]*model.Ref
	warnings []model.Warning
}

// Lookup returns the node for t. It reports false when t was never reached
// or is unmappable.
func (r *Result) Lookup(t reflect.Type) (model.TypeNode, bool) {
	e, ok := r.entries[t]
	if !ok || e.node == nil {
		return nil, false
	}
	return e.node, true
}

// Unmappable reports whether t has no node, with the reason.
func (r *Result) Unmappable(t reflect.Type) (string, bool) {
	e, ok := r.entries[t]
	if !ok {
		return "type was not resolved", true
	}
	if e.node == nil {
		return e.reason, true
	}
	return "", false
}

// Ref returns the shared, linked reference for t. Types never reached get a
// fresh reference with a nil Node.
func (r *Result) Ref(t reflect.Type) *model.Ref {
	if ref, ok := r.refs[t]; ok {
		return ref
	}
	return &model.Ref{Type: t}
}

// Link sets ref.Node from the resolution and reports whether it is mapped.
func (r *Result) Link(ref *model.Ref) bool {
	if ref == nil || ref.Type == nil {
		return false
	}
	node, ok := r.Lookup(ref.Type)
	ref.Node = node
	return ok
}

// Nodes returns every mapped node, sorted by type key.
func (r *Result) Nodes() []model.TypeNode {
	var nodes []model.TypeNode
	for _, e := range r.entries {
		if e.node != nil {
			nodes = append(nodes, e.node)
		}
	}
	slices.SortFunc(nodes, func(a, b model.TypeNode) int {
		return compareTypes(a.Type(), b.Type())
	})
	return nodes
}

// Warnings returns the warnings raised during classification.
func (r *Result) Warnings() []model.Warning {
	return slices.Clone(r.warnings)
}
