// Package model defines the portable type model that harmony resolves Go types
// into. Every type reachable from a root operation becomes exactly one
// TypeNode; emitters consume the model without looking at reflect.Type again.
package model

import (
	"reflect"
	"strings"
)

// Kind identifies the shape of a TypeNode.
type Kind int

const (
	KindBasic     Kind = iota // Primitive with a target alias
	KindArray                 // Ordered sequence of one element type
	KindOptional              // Single-level nullable wrapper
	KindEnum                  // Named set of (name, value) pairs
	KindComposite             // Structured type with members and ancestors
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindBasic:
		return "Basic"
	case KindArray:
		return "Array"
	case KindOptional:
		return "Optional"
	case KindEnum:
		return "Enum"
	case KindComposite:
		return "Composite"
	default:
		return "Unknown"
	}
}

// TypeNode is the resolved form of one source type.
// The set of implementations is closed; switch on the concrete type.
type TypeNode interface {
	// Kind returns the node kind for type switching.
	Kind() Kind

	// Type returns the source type this node was resolved from.
	Type() reflect.Type

	sealed()
}

type nodeBase struct {
	src reflect.Type
}

func (b nodeBase) Type() reflect.Type { return b.src }
func (nodeBase) sealed()              {}

// Ref is a reference from one node (or operation) to another source type.
// The resolver sets Type; Node is linked after resolution and stays nil
// when the target is unmappable.
type Ref struct {
	Type reflect.Type
	Node TypeNode
}

// Mapped reports whether the reference points at a resolved node.
func (r *Ref) Mapped() bool {
	return r != nil && r.Node != nil
}

// QualifiedName is the target-side name of a declared type.
type QualifiedName struct {
	Namespace string
	Name      string
}

// String returns "Namespace.Name", or just Name when there is no namespace.
func (q QualifiedName) String() string {
	if q.Namespace == "" {
		return q.Name
	}
	return q.Namespace + "." + q.Name
}

// BasicNode is a primitive mapped through the primitive registry.
type BasicNode struct {
	nodeBase

	// Alias is the target type expression, e.g. "number" or "string".
	Alias string

	// Converter is non-nil when values need a runtime transform.
	Converter *Converter
}

// Kind returns KindBasic.
func (*BasicNode) Kind() Kind { return KindBasic }

// NewBasic returns a BasicNode for t.
func NewBasic(t reflect.Type, alias string, conv *Converter) *BasicNode {
	return &BasicNode{nodeBase: nodeBase{src: t}, Alias: alias, Converter: conv}
}

// ArrayNode is a sequence of Elem.
type ArrayNode struct {
	nodeBase
	Elem *Ref
}

// Kind returns KindArray.
func (*ArrayNode) Kind() Kind { return KindArray }

// NewArray returns an ArrayNode for t.
func NewArray(t reflect.Type, elem *Ref) *ArrayNode {
	return &ArrayNode{nodeBase: nodeBase{src: t}, Elem: elem}
}

// OptionalNode is a nullable Elem. Optionals never nest.
type OptionalNode struct {
	nodeBase
	Elem *Ref
}

// Kind returns KindOptional.
func (*OptionalNode) Kind() Kind { return KindOptional }

// NewOptional returns an OptionalNode for t.
func NewOptional(t reflect.Type, elem *Ref) *OptionalNode {
	return &OptionalNode{nodeBase: nodeBase{src: t}, Elem: elem}
}

// EnumNode is an enumeration.
//
// Flags enums keep their flag but are treated as plain enumerations:
// combined bit values are not decomposed.
type EnumNode struct {
	nodeBase
	Name    QualifiedName
	Members []EnumMember
	Flags   bool
}

// Kind returns KindEnum.
func (*EnumNode) Kind() Kind { return KindEnum }

// NewEnum returns an EnumNode for t.
func NewEnum(t reflect.Type, name QualifiedName, members []EnumMember, flags bool) *EnumNode {
	return &EnumNode{nodeBase: nodeBase{src: t}, Name: name, Members: members, Flags: flags}
}

// EnumMember is one named value of an enumeration.
type EnumMember struct {
	Name  string `yaml:"name" json:"name"`
	Value int64  `yaml:"value" json:"value"`
}

// CompositeNode is a structured type.
type CompositeNode struct {
	nodeBase
	Name QualifiedName

	// Members in declaration order.
	Members []Member

	// Ancestors holds direct, non-redundant base and interface relations.
	Ancestors []*Ref
}

// Kind returns KindComposite.
func (*CompositeNode) Kind() Kind { return KindComposite }

// NewComposite returns an empty CompositeNode for t.
func NewComposite(t reflect.Type, name QualifiedName) *CompositeNode {
	return &CompositeNode{nodeBase: nodeBase{src: t}, Name: name}
}

// Nullability is what is known about whether a member may hold null.
type Nullability int

const (
	// NullabilityUnknown applies only to reference-like member types
	// (slices, maps, interfaces) without explicit metadata.
	NullabilityUnknown Nullability = iota
	Nullable
	NonNullable
)

func (n Nullability) String() string {
	switch n {
	case Nullable:
		return "nullable"
	case NonNullable:
		return "non-nullable"
	default:
		return "unknown"
	}
}

// Member is a field of a composite.
type Member struct {
	// Name is the wire name (json tag name, else the Go field name).
	Name string

	// GoName is the Go field name.
	GoName string

	Type        *Ref
	Nullability Nullability

	// OmitEmpty is set for json:",omitempty" and json:",omitzero".
	OmitEmpty bool
}

// Elem returns the element reference of an Array or Optional node, or nil.
func Elem(n TypeNode) *Ref {
	switch n := n.(type) {
	case *ArrayNode:
		return n.Elem
	case *OptionalNode:
		return n.Elem
	}
	return nil
}

// Unwrap strips Optional wrappers and returns the innermost node.
func Unwrap(n TypeNode) TypeNode {
	for {
		o, ok := n.(*OptionalNode)
		if !ok || !o.Elem.Mapped() {
			return n
		}
		n = o.Elem.Node
	}
}

// DeclaredName returns the qualified name of an Enum or Composite node.
func DeclaredName(n TypeNode) (QualifiedName, bool) {
	switch n := n.(type) {
	case *EnumNode:
		return n.Name, true
	case *CompositeNode:
		return n.Name, true
	}
	return QualifiedName{}, false
}

// TypeKey returns a stable, fully qualified key for t, used for sorting.
func TypeKey(t reflect.Type) string {
	if t == nil {
		return ""
	}
	if t.Name() != "" && t.PkgPath() != "" {
		return t.PkgPath() + "." + t.Name()
	}
	return t.String()
}

// SanitizeName turns a Go type name, including generic instantiations such as
// "Page[example.com/api.User]", into an identifier.
func SanitizeName(name string) string {
	if i := strings.IndexByte(name, '['); i >= 0 {
		args := name[i+1 : len(name)-1]
		var parts []string
		for _, a := range strings.Split(args, ",") {
			a = strings.TrimSpace(a)
			if j := strings.LastIndexAny(a, "/."); j >= 0 {
				a = a[j+1:]
			}
			parts = append(parts, SanitizeName(a))
		}
		return SanitizeName(name[:i]) + "_" + strings.Join(parts, "_")
	}
	r := strings.NewReplacer(".", "_", "/", "_", " ", "", "*", "Ptr", "[", "_", "]", "")
	return r.Replace(name)
}
