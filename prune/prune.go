// Package prune removes what a resolution could not map: operations whose
// return or parameter types are unmappable, and composite members or
// ancestors that point at unmappable types.
package prune

import (
	"fmt"
	"slices"
	"strings"

	"github.com/broady/harmony/model"
	"github.com/broady/harmony/resolve"
)

// Surface is what survives pruning.
type Surface struct {
	// Operations are the surviving operations, in input order.
	Operations []model.Operation

	// Types holds every mapped node of the resolution, sorted by type key.
	Types []model.TypeNode

	Warnings []model.Warning
}

// Services groups the surviving operations by service. Services and their
// operations are sorted by name.
func (s Surface) Services() []model.Service {
	byName := make(map[string]*model.Service)
	var names []string
	for _, op := range s.Operations {
		svc, ok := byName[op.Service]
		if !ok {
			svc = &model.Service{Name: op.Service}
			byName[op.Service] = svc
			names = append(names, op.Service)
		}
		svc.Operations = append(svc.Operations, op)
	}
	slices.Sort(names)

	out := make([]model.Service, 0, len(names))
	for _, name := range names {
		svc := byName[name]
		slices.SortStableFunc(svc.Operations, func(a, b model.Operation) int {
			return strings.Compare(a.Name, b.Name)
		})
		out = append(out, *svc)
	}
	return out
}

// Enums returns the enum nodes of the surface.
func (s Surface) Enums() []*model.EnumNode {
	return nodesOf[*model.EnumNode](s.Types)
}

// Composites returns the composite nodes of the surface.
func (s Surface) Composites() []*model.CompositeNode {
	return nodesOf[*model.CompositeNode](s.Types)
}

func nodesOf[T model.TypeNode](nodes []model.TypeNode) []T {
	var out []T
	for _, n := range nodes {
		if t, ok := n.(T); ok {
			out = append(out, t)
		}
	}
	return out
}

// Apply links the references of ops against res and prunes. Composite nodes
// of res are modified in place.
func Apply(res *resolve.Result, ops []model.Operation) Surface {
	var s Surface

	for _, op := range ops {
		if w, ok := checkOperation(res, op); !ok {
			s.Warnings = append(s.Warnings, w)
			continue
		}
		s.Operations = append(s.Operations, op)
	}

	s.Types = res.Nodes()
	for _, c := range s.Composites() {
		s.Warnings = append(s.Warnings, pruneComposite(res, c)...)
	}
	return s
}

// checkOperation links every reference of op and reports the first one that
// does not resolve.
func checkOperation(res *resolve.Result, op model.Operation) (model.Warning, bool) {
	if op.Return != nil && op.Return.Type != nil && !res.Link(op.Return) {
		reason, _ := res.Unmappable(op.Return.Type)
		return model.Warning{
			Code:      model.WarnUnmappableReturn,
			Message:   fmt.Sprintf("return type %s is unmappable: %s", op.Return.Type, reason),
			Service:   op.Service,
			Operation: op.Name,
			Parameter: "return",
			TypeName:  model.TypeKey(op.Return.Type),
		}, false
	}
	for _, p := range op.Params {
		if res.Link(p.Type) {
			continue
		}
		var typ string
		reason := "parameter has no type"
		if p.Type != nil && p.Type.Type != nil {
			typ = model.TypeKey(p.Type.Type)
			reason, _ = res.Unmappable(p.Type.Type)
		}
		return model.Warning{
			Code:      model.WarnUnmappableParam,
			Message:   fmt.Sprintf("parameter %s type %s is unmappable: %s", p.Name, typ, reason),
			Service:   op.Service,
			Operation: op.Name,
			Parameter: p.Name,
			TypeName:  typ,
		}, false
	}
	return model.Warning{}, true
}

func pruneComposite(res *resolve.Result, c *model.CompositeNode) []model.Warning {
	var warnings []model.Warning

	kept := c.Members[:0]
	for _, m := range c.Members {
		if m.Type.Mapped() {
			kept = append(kept, m)
			continue
		}
		reason, _ := res.Unmappable(m.Type.Type)
		warnings = append(warnings, model.Warning{
			Code:     model.WarnUnmappableMember,
			Message:  fmt.Sprintf("member %s.%s dropped: %s", c.Name, m.Name, reason),
			TypeName: model.TypeKey(c.Type()),
		})
	}
	c.Members = kept

	bases := c.Ancestors[:0]
	for _, a := range c.Ancestors {
		if a.Mapped() {
			bases = append(bases, a)
			continue
		}
		reason, _ := res.Unmappable(a.Type)
		warnings = append(warnings, model.Warning{
			Code:     model.WarnUnmappableBase,
			Message:  fmt.Sprintf("ancestor %s of %s dropped: %s", a.Type, c.Name, reason),
			TypeName: model.TypeKey(c.Type()),
		})
	}
	c.Ancestors = bases

	return warnings
}
