package harmony

import (
	"reflect"
	"sync"
	"testing"

	"github.com/broady/harmony/model"
)

func TestRegistry_Operations(t *testing.T) {
	reg := NewRegistry()
	reg.Service("Users").
		Add(model.Operation{Name: "List", Route: Route("users")}).
		Add(model.Operation{Name: "Get", Route: Route("users/{id}"), Params: []model.Parameter{PathParam[string]("id")}})
	reg.Service("Auth").Add(model.Operation{Name: "Login", Route: Route("login")})

	ops, warnings := reg.Operations()
	if len(warnings) != 0 {
		t.Errorf("warnings = %v, want none", warnings)
	}
	var got []string
	for _, op := range ops {
		got = append(got, op.FullName())
	}
	want := []string{"Auth.Login", "Users.List", "Users.Get"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Operations() = %v, want %v", got, want)
	}
}

func TestRegistry_OverloadsRenamed(t *testing.T) {
	reg := NewRegistry()
	reg.Service("Users").
		Add(model.Operation{Name: "Find", Route: Route("users/{id}")}).
		Add(model.Operation{Name: "List", Route: Route("users")}).
		Add(model.Operation{Name: "Find", Route: Route("users/by-email/{email}")})
	reg.Service("Groups").Add(model.Operation{Name: "Find", Route: Route("groups")})

	ops, warnings := reg.Operations()
	var got []string
	for _, op := range ops {
		got = append(got, op.FullName())
	}
	want := []string{"Groups.Find", "Users.Find_1", "Users.List", "Users.Find_2"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Operations() = %v, want %v", got, want)
	}

	if len(warnings) != 2 {
		t.Fatalf("warnings = %v, want 2", warnings)
	}
	for i, name := range []string{"Find_1", "Find_2"} {
		w := warnings[i]
		if w.Code != model.WarnRenamed || w.Service != "Users" || w.Operation != name {
			t.Errorf("warnings[%d] = %+v", i, w)
		}
	}
}

func TestRegistry_OperationsDetached(t *testing.T) {
	reg := NewRegistry()
	reg.Service("S").Add(model.Operation{
		Name:   "Op",
		Params: []model.Parameter{QueryParam[int]("n")},
		Return: Returns[string](),
	})

	ops, _ := reg.Operations()
	ops[0].Return.Node = &model.BasicNode{Alias: "string"}
	ops[0].Params[0].Type.Node = &model.BasicNode{Alias: "number"}

	again, _ := reg.Operations()
	if again[0].Return.Node != nil || again[0].Params[0].Type.Node != nil {
		t.Error("linking a run's references leaked into the registry")
	}
}

func TestRegistry_Concurrent(t *testing.T) {
	reg := NewRegistry()
	var wg sync.WaitGroup
	for _, svc := range []string{"A", "B", "C", "D"} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 10 {
				reg.Service(svc).Add(model.Operation{Name: "Op"})
			}
		}()
	}
	wg.Wait()

	ops, warnings := reg.Operations()
	if len(ops) != 40 {
		t.Errorf("len(ops) = %d, want 40", len(ops))
	}
	if len(warnings) != 40 {
		t.Errorf("len(warnings) = %d, want 40", len(warnings))
	}
}

func TestParamHelpers(t *testing.T) {
	tests := []struct {
		name     string
		p        model.Parameter
		loc      model.Location
		typ      reflect.Type
		optional bool
		wire     string
	}{
		{"path", PathParam[string]("id"), model.InPath, reflect.TypeFor[string](), false, "id"},
		{"query", QueryParam[int]("page"), model.InQuery, reflect.TypeFor[int](), false, "page"},
		{"optional query", QueryParam[*int]("limit"), model.InQuery, reflect.TypeFor[*int](), true, "limit"},
		{"body", BodyParam[[]byte]("data"), model.InBody, reflect.TypeFor[[]byte](), false, "data"},
		{"header", Param[string]("token", model.InHeader), model.InHeader, reflect.TypeFor[string](), false, "token"},
		{"wire name", Wire(QueryParam[string]("pageToken"), "page_token"), model.InQuery, reflect.TypeFor[string](), false, "page_token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.p.Location != tt.loc {
				t.Errorf("Location = %v, want %v", tt.p.Location, tt.loc)
			}
			if tt.p.Type.Type != tt.typ {
				t.Errorf("Type = %v, want %v", tt.p.Type.Type, tt.typ)
			}
			if tt.p.Optional != tt.optional {
				t.Errorf("Optional = %v, want %v", tt.p.Optional, tt.optional)
			}
			if tt.p.Wire() != tt.wire {
				t.Errorf("Wire() = %q, want %q", tt.p.Wire(), tt.wire)
			}
		})
	}
}
