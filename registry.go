package harmony

import (
	"fmt"
	"reflect"
	"slices"
	"sync"

	"github.com/broady/harmony/model"
)

// Registry collects the root operations of an API, grouped by service.
// It is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	services map[string]*Service
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{services: make(map[string]*Service)}
}

// Service returns the named service, creating it on first use.
func (r *Registry) Service(name string) *Service {
	r.mu.Lock()
	defer r.mu.Unlock()
	svc, ok := r.services[name]
	if !ok {
		svc = &Service{registry: r, name: name}
		r.services[name] = svc
	}
	return svc
}

// Service is a group of operations sharing a client class.
type Service struct {
	registry *Registry
	name     string
	ops      []model.Operation
}

// Name returns the service name.
func (s *Service) Name() string { return s.name }

// Add registers an operation. The operation's Service is set to s.
// It returns the service for chaining.
func (s *Service) Add(op model.Operation) *Service {
	s.registry.mu.Lock()
	defer s.registry.mu.Unlock()
	op.Service = s.name
	s.ops = append(s.ops, op)
	return s
}

// Operations returns every registered operation, services sorted by name
// and operations in registration order. Overloaded names within a service
// are renamed Name_1, Name_2, ... in registration order, with a warning per
// renamed operation.
func (r *Registry) Operations() ([]model.Operation, []model.Warning) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.services))
	for name := range r.services {
		names = append(names, name)
	}
	slices.Sort(names)

	var ops []model.Operation
	var warnings []model.Warning
	for _, name := range names {
		svc := r.services[name]
		count := make(map[string]int)
		for _, op := range svc.ops {
			count[op.Name]++
		}
		seen := make(map[string]int)
		for _, op := range svc.ops {
			if count[op.Name] > 1 {
				seen[op.Name]++
				renamed := fmt.Sprintf("%s_%d", op.Name, seen[op.Name])
				warnings = append(warnings, model.Warning{
					Code:      model.WarnRenamed,
					Message:   fmt.Sprintf("overloaded operation %s renamed to %s", op.Name, renamed),
					Service:   name,
					Operation: renamed,
				})
				op.Name = renamed
			}
			ops = append(ops, detach(op))
		}
	}
	return ops, warnings
}

// detach copies the references of op so that linking during a run never
// touches the registered declaration.
func detach(op model.Operation) model.Operation {
	op.Params = slices.Clone(op.Params)
	for i, p := range op.Params {
		if p.Type != nil {
			op.Params[i].Type = &model.Ref{Type: p.Type.Type}
		}
	}
	if op.Return != nil {
		op.Return = &model.Ref{Type: op.Return.Type}
	}
	op.Verbs = slices.Clone(op.Verbs)
	return op
}

// Route returns an unparsed route template. Templates are parsed when the
// generator validates operations, so syntax errors surface as
// malformed_route errors rather than panics.
func Route(raw string) model.RouteTemplate {
	return model.RouteTemplate{Raw: raw}
}

// Returns returns the result reference for type T.
func Returns[T any]() *model.Ref {
	return &model.Ref{Type: reflect.TypeFor[T]()}
}

// PathParam declares a parameter bound from a route segment.
func PathParam[T any](name string) model.Parameter {
	return param[T](name, model.InPath)
}

// QueryParam declares a parameter bound from the query string. Pointer
// types are optional.
func QueryParam[T any](name string) model.Parameter {
	p := param[T](name, model.InQuery)
	p.Optional = p.Type.Type.Kind() == reflect.Pointer
	return p
}

// BodyParam declares a parameter bound from the request body.
func BodyParam[T any](name string) model.Parameter {
	return param[T](name, model.InBody)
}

// Param declares a parameter at an arbitrary location.
func Param[T any](name string, loc model.Location) model.Parameter {
	return param[T](name, loc)
}

func param[T any](name string, loc model.Location) model.Parameter {
	return model.Parameter{
		Name:     name,
		Type:     &model.Ref{Type: reflect.TypeFor[T]()},
		Location: loc,
	}
}

// Wire sets the wire name of p.
func Wire(p model.Parameter, wireName string) model.Parameter {
	p.WireName = wireName
	return p
}
