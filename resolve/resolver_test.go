package resolve

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/broady/harmony/internal/testfixtures"
	alpha "github.com/broady/harmony/internal/testfixtures/alpha/models"
	beta "github.com/broady/harmony/internal/testfixtures/beta/models"
	"github.com/broady/harmony/model"
)

func typeOf[T any]() reflect.Type { return reflect.TypeFor[T]() }

func composite(t *testing.T, res *Result, rt reflect.Type) *model.CompositeNode {
	t.Helper()
	node, ok := res.Lookup(rt)
	if !ok {
		reason, _ := res.Unmappable(rt)
		t.Fatalf("Lookup(%s) failed: %s", rt, reason)
	}
	c, ok := node.(*model.CompositeNode)
	if !ok {
		t.Fatalf("Lookup(%s) = %T, want *model.CompositeNode", rt, node)
	}
	return c
}

func member(t *testing.T, c *model.CompositeNode, name string) model.Member {
	t.Helper()
	for _, m := range c.Members {
		if m.Name == name {
			return m
		}
	}
	t.Fatalf("%s has no member %q", c.Name, name)
	return model.Member{}
}

func TestResolve_Primitives(t *testing.T) {
	res := New(Options{}).Resolve(typeOf[string](), typeOf[int64](), typeOf[time.Time](), typeOf[[]byte]())

	tests := []struct {
		typ  reflect.Type
		want string
	}{
		{typeOf[string](), "string"},
		{typeOf[int64](), "number"},
		{typeOf[time.Time](), "string"},
		{typeOf[[]byte](), "string"},
	}
	for _, tt := range tests {
		node, ok := res.Lookup(tt.typ)
		if !ok {
			t.Errorf("Lookup(%s) not found", tt.typ)
			continue
		}
		b, ok := node.(*model.BasicNode)
		if !ok {
			t.Errorf("Lookup(%s) = %T, want *model.BasicNode", tt.typ, node)
			continue
		}
		if b.Alias != tt.want {
			t.Errorf("Lookup(%s).Alias = %q, want %q", tt.typ, b.Alias, tt.want)
		}
	}
}

func TestResolve_StringIsNotSequence(t *testing.T) {
	res := New(Options{}).Resolve(typeOf[testfixtures.UserID]())
	node, ok := res.Lookup(typeOf[testfixtures.UserID]())
	if !ok {
		t.Fatal("UserID should be mapped")
	}
	if node.Kind() != model.KindBasic {
		t.Errorf("UserID kind = %v, want %v", node.Kind(), model.KindBasic)
	}
}

func TestResolve_SameNodeForRepeatedUse(t *testing.T) {
	res := New(Options{}).Resolve(typeOf[testfixtures.Customer](), typeOf[testfixtures.Customer](), typeOf[[]testfixtures.Person]())

	n1, _ := res.Lookup(typeOf[testfixtures.Customer]())
	n2, _ := res.Lookup(typeOf[testfixtures.Customer]())
	if n1 != n2 {
		t.Error("Lookup returned different nodes for the same type")
	}

	c := composite(t, res, typeOf[testfixtures.Customer]())
	contacts := member(t, c, "contacts")
	if contacts.Type != res.Ref(typeOf[[]testfixtures.Person]()) {
		t.Error("member reference is not the shared reference for its type")
	}
	arr, ok := contacts.Type.Node.(*model.ArrayNode)
	if !ok {
		t.Fatalf("contacts = %T, want *model.ArrayNode", contacts.Type.Node)
	}
	person, _ := res.Lookup(typeOf[testfixtures.Person]())
	if arr.Elem.Node != person {
		t.Error("array element is not the Person node")
	}
}

func TestResolve_SelfReference(t *testing.T) {
	res := New(Options{}).Resolve(typeOf[testfixtures.Tree]())

	tree := composite(t, res, typeOf[testfixtures.Tree]())
	children := member(t, tree, "children")

	arr, ok := children.Type.Node.(*model.ArrayNode)
	if !ok {
		t.Fatalf("children = %T, want *model.ArrayNode", children.Type.Node)
	}
	opt, ok := arr.Elem.Node.(*model.OptionalNode)
	if !ok {
		t.Fatalf("children element = %T, want *model.OptionalNode", arr.Elem.Node)
	}
	if opt.Elem.Node != model.TypeNode(tree) {
		t.Error("self reference does not point back at the Tree node")
	}
}

func TestResolve_MutualCycle(t *testing.T) {
	res := New(Options{}).Resolve(typeOf[testfixtures.A]())

	a := composite(t, res, typeOf[testfixtures.A]())
	b := composite(t, res, typeOf[testfixtures.B]())

	if got := model.Unwrap(member(t, a, "b").Type.Node); got != model.TypeNode(b) {
		t.Errorf("A.b resolves to %v, want B", got)
	}
	if got := model.Unwrap(member(t, b, "a").Type.Node); got != model.TypeNode(a) {
		t.Errorf("B.a resolves to %v, want A", got)
	}
}

func TestResolve_DescendantDiscovery(t *testing.T) {
	res := New(Options{
		Candidates: []reflect.Type{
			typeOf[testfixtures.Shape](),
			typeOf[testfixtures.Circle](),
			typeOf[testfixtures.Square](),
		},
	}).Resolve(typeOf[testfixtures.Drawing]())

	shape := composite(t, res, typeOf[testfixtures.Shape]())
	for _, rt := range []reflect.Type{typeOf[testfixtures.Circle](), typeOf[testfixtures.Square]()} {
		c := composite(t, res, rt)
		if len(c.Ancestors) != 1 || c.Ancestors[0].Node != model.TypeNode(shape) {
			t.Errorf("%s ancestors = %v, want [Shape]", rt, c.Ancestors)
		}
		for _, m := range c.Members {
			if m.Name == "color" {
				t.Errorf("%s has promoted member %q, want it inherited from Shape", rt, m.Name)
			}
		}
	}
}

func TestResolve_EmbeddedNonCandidateIsFlattened(t *testing.T) {
	res := New(Options{}).Resolve(typeOf[testfixtures.Circle]())
	c := composite(t, res, typeOf[testfixtures.Circle]())
	if len(c.Ancestors) != 0 {
		t.Errorf("Circle ancestors = %d, want 0", len(c.Ancestors))
	}
	member(t, c, "color")
	member(t, c, "radius")
}

type idText struct {
	ID string
}

type idNumber struct {
	ID int
}

type idTagged struct {
	ID int `json:"ID"`
}

type ambiguousID struct {
	idText
	idNumber
	Kind string `json:"kind"`
}

type taggedID struct {
	idText
	idTagged
}

type shallowID struct {
	idTagged
	ID bool
}

func TestResolve_PromotedFieldConflicts(t *testing.T) {
	res := New(Options{}).Resolve(typeOf[ambiguousID](), typeOf[taggedID](), typeOf[shallowID]())

	ambiguous := composite(t, res, typeOf[ambiguousID]())
	if len(ambiguous.Members) != 1 || ambiguous.Members[0].Name != "kind" {
		t.Errorf("ambiguousID members = %v, want only kind", ambiguous.Members)
	}

	tests := []struct {
		typ  reflect.Type
		want reflect.Type
	}{
		{typeOf[taggedID](), typeOf[int]()},
		{typeOf[shallowID](), typeOf[bool]()},
	}
	for _, tt := range tests {
		c := composite(t, res, tt.typ)
		if len(c.Members) != 1 {
			t.Errorf("%s members = %d, want 1", tt.typ, len(c.Members))
			continue
		}
		if got := member(t, c, "ID").Type.Type; got != tt.want {
			t.Errorf("%s.ID type = %s, want %s", tt.typ, got, tt.want)
		}
	}
}

type Animal interface{ Sound() string }

type Pet interface {
	Animal
	Owner() string
}

type Dog struct {
	Name string `json:"name"`
}

func (Dog) Sound() string  { return "woof" }
func (*Dog) Owner() string { return "" }

func TestResolve_InterfaceAncestorsAreMinimal(t *testing.T) {
	res := New(Options{
		Candidates: []reflect.Type{typeOf[Animal](), typeOf[Pet](), typeOf[Dog]()},
	}).Resolve(typeOf[Animal]())

	dog := composite(t, res, typeOf[Dog]())
	if len(dog.Ancestors) != 1 {
		t.Fatalf("Dog ancestors = %d, want 1", len(dog.Ancestors))
	}
	if got := dog.Ancestors[0].Type; got != typeOf[Pet]() {
		t.Errorf("Dog ancestor = %s, want Pet", got)
	}

	pet := composite(t, res, typeOf[Pet]())
	if len(pet.Ancestors) != 1 || pet.Ancestors[0].Type != typeOf[Animal]() {
		t.Errorf("Pet ancestors = %v, want [Animal]", pet.Ancestors)
	}
}

func TestResolve_Unmappable(t *testing.T) {
	res := New(Options{}).Resolve(typeOf[testfixtures.Unsupported](), typeOf[map[string]int](), typeOf[**int]())

	tests := []struct {
		typ  reflect.Type
		want string
	}{
		{typeOf[chan bool](), "chan values cannot cross the wire"},
		{typeOf[[]chan error](), "element type chan error is unmappable"},
		{typeOf[map[string]int](), "map types are not supported"},
		{typeOf[**int](), "nested pointers"},
	}
	for _, tt := range tests {
		reason, ok := res.Unmappable(tt.typ)
		if !ok {
			t.Errorf("Unmappable(%s) = false, want true", tt.typ)
			continue
		}
		if !strings.Contains(reason, tt.want) {
			t.Errorf("Unmappable(%s) reason = %q, want it to contain %q", tt.typ, reason, tt.want)
		}
	}

	// The composite survives; only its members are unmapped.
	c := composite(t, res, typeOf[testfixtures.Unsupported]())
	if m := member(t, c, "done"); m.Type.Mapped() {
		t.Error("member done should be unmapped")
	}
	if m := member(t, c, "ok"); !m.Type.Mapped() {
		t.Error("member ok should be mapped")
	}
}

func TestResolve_Enum(t *testing.T) {
	enums := model.EnumRegistry{
		model.TypeKey(typeOf[testfixtures.Status]()): {
			Flags: true,
			Members: []model.EnumMember{
				{Name: "Active", Value: 0},
				{Name: "Disabled", Value: 1},
			},
		},
	}
	res := New(Options{Enums: enums}).Resolve(typeOf[testfixtures.Status]())

	node, ok := res.Lookup(typeOf[testfixtures.Status]())
	if !ok {
		t.Fatal("Status not mapped")
	}
	e, ok := node.(*model.EnumNode)
	if !ok {
		t.Fatalf("Status = %T, want *model.EnumNode", node)
	}
	if e.Name.Name != "Status" || e.Name.Namespace != "testfixtures" {
		t.Errorf("Status name = %v, want testfixtures.Status", e.Name)
	}
	if len(e.Members) != 2 {
		t.Errorf("Status members = %d, want 2", len(e.Members))
	}

	warnings := res.Warnings()
	if len(warnings) != 1 || warnings[0].Code != model.WarnFlagsEnum {
		t.Errorf("warnings = %v, want one %s", warnings, model.WarnFlagsEnum)
	}
}

func TestResolve_EnumWithoutRegistryFallsBackToKind(t *testing.T) {
	res := New(Options{}).Resolve(typeOf[testfixtures.Status]())
	node, ok := res.Lookup(typeOf[testfixtures.Status]())
	if !ok {
		t.Fatal("Status not mapped")
	}
	if b, ok := node.(*model.BasicNode); !ok || b.Alias != "number" {
		t.Errorf("Status = %#v, want basic number", node)
	}
}

type Nullables struct {
	Ptr      *string  `json:"ptr"`
	Value    int      `json:"value"`
	Slice    []string `json:"slice"`
	Required []string `json:"required" validate:"required,min=1"`
	Forced   *int     `json:"forced" nullable:"false"`
	Skipped  string   `json:"-"`
	Dash     string   `json:"-,"`
	private  string
}

func TestResolve_Nullability(t *testing.T) {
	res := New(Options{}).Resolve(typeOf[Nullables]())
	c := composite(t, res, typeOf[Nullables]())

	tests := []struct {
		name string
		want model.Nullability
	}{
		{"ptr", model.Nullable},
		{"value", model.NonNullable},
		{"slice", model.NullabilityUnknown},
		{"required", model.NonNullable},
		{"forced", model.NonNullable},
		{"-", model.NonNullable},
	}
	for _, tt := range tests {
		if got := member(t, c, tt.name).Nullability; got != tt.want {
			t.Errorf("member %q nullability = %v, want %v", tt.name, got, tt.want)
		}
	}
	if len(c.Members) != len(tests) {
		t.Errorf("members = %d, want %d", len(c.Members), len(tests))
	}
}

func TestResolve_Ignore(t *testing.T) {
	res := New(Options{
		Ignore: func(rt reflect.Type) bool { return rt == typeOf[testfixtures.Address]() },
	}).Resolve(typeOf[testfixtures.Customer]())

	if reason, ok := res.Unmappable(typeOf[testfixtures.Address]()); !ok || reason != "ignored" {
		t.Errorf("Unmappable(Address) = %q, %v; want ignored", reason, ok)
	}
	if reason, ok := res.Unmappable(typeOf[*testfixtures.Address]()); !ok || !strings.Contains(reason, "ignored") {
		t.Errorf("Unmappable(*Address) = %q, %v; want element ignored", reason, ok)
	}
}

func TestResolve_NilRootIsVoid(t *testing.T) {
	res := New(Options{}).Resolve(nil)
	if n := len(res.Nodes()); n != 0 {
		t.Errorf("Nodes() = %d, want 0", n)
	}
}

func TestResolve_NamespaceOverride(t *testing.T) {
	res := New(Options{
		Namespace: func(string) string { return "api" },
	}).Resolve(typeOf[testfixtures.Address]())
	c := composite(t, res, typeOf[testfixtures.Address]())
	if c.Name.String() != "api.Address" {
		t.Errorf("name = %q, want %q", c.Name.String(), "api.Address")
	}
}

func TestResolve_CollidingNamesAreDisambiguated(t *testing.T) {
	res := New(Options{}).Resolve(typeOf[beta.User](), typeOf[alpha.User](), typeOf[testfixtures.Address]())

	tests := []struct {
		typ  reflect.Type
		want string
	}{
		{typeOf[alpha.User](), "models.alpha_User"},
		{typeOf[beta.User](), "models.beta_User"},
		{typeOf[testfixtures.Address](), "testfixtures.Address"},
	}
	for _, tt := range tests {
		if got := composite(t, res, tt.typ).Name.String(); got != tt.want {
			t.Errorf("name of %s = %q, want %q", tt.typ, got, tt.want)
		}
	}

	var renamed []string
	for _, w := range res.Warnings() {
		if w.Code == model.WarnRenamedType {
			renamed = append(renamed, w.TypeName)
		}
	}
	want := []string{model.TypeKey(typeOf[alpha.User]()), model.TypeKey(typeOf[beta.User]())}
	if !reflect.DeepEqual(renamed, want) {
		t.Errorf("renamed warnings = %v, want %v", renamed, want)
	}
}

func TestResolve_CollidingNamesUnderSharedNamespace(t *testing.T) {
	res := New(Options{
		Namespace: func(string) string { return "api" },
	}).Resolve(typeOf[alpha.User](), typeOf[beta.User]())

	a := composite(t, res, typeOf[alpha.User]()).Name
	b := composite(t, res, typeOf[beta.User]()).Name
	if a == b {
		t.Fatalf("alpha and beta User both named %s", a)
	}
	if a.Namespace != "api" || b.Namespace != "api" {
		t.Errorf("namespaces = %q, %q; want api", a.Namespace, b.Namespace)
	}
}

func TestUniqueNames_SamePackageFallsBackToTypeKey(t *testing.T) {
	types := []reflect.Type{typeOf[testfixtures.Person](), typeOf[testfixtures.Address]()}
	got := uniqueNames(model.QualifiedName{Namespace: "x", Name: "T"}, types, nil)
	if got[0] == got[1] {
		t.Fatalf("uniqueNames = %v, want distinct", got)
	}
	if want := "github_com_broady_harmony_internal_testfixtures_Person"; got[0].Name != want {
		t.Errorf("Name = %q, want %q", got[0].Name, want)
	}
}
