package model

import (
	"errors"
	"reflect"
	"testing"
)

func TestParseRoute(t *testing.T) {
	tests := []struct {
		raw  string
		want []Segment
	}{
		{"", nil},
		{"/", nil},
		{"users", []Segment{{Literal: "users"}}},
		{"/users/{id}/posts/", []Segment{{Literal: "users"}, {Param: "id"}, {Literal: "posts"}}},
		{"items/{id:int}", []Segment{{Literal: "items"}, {Param: "id"}}},
		{"pages/{page=1}", []Segment{{Literal: "pages"}, {Param: "page"}}},
		{"files/{*rest}", []Segment{{Literal: "files"}, {Param: "rest"}}},
		{"opt/{name?}", []Segment{{Literal: "opt"}, {Param: "name"}}},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			rt, err := ParseRoute(tt.raw)
			if err != nil {
				t.Fatalf("ParseRoute(%q) error: %v", tt.raw, err)
			}
			if !reflect.DeepEqual(rt.Segments, tt.want) {
				t.Errorf("ParseRoute(%q) = %+v, want %+v", tt.raw, rt.Segments, tt.want)
			}
			if rt.Raw != tt.raw {
				t.Errorf("Raw = %q, want %q", rt.Raw, tt.raw)
			}
		})
	}
}

func TestParseRoute_Errors(t *testing.T) {
	for _, raw := range []string{
		"users//posts",
		"users/{}",
		"users/{id",
		"users/id}",
		"users/}id{",
		"users/x{id}",
		"users/{id}.json",
	} {
		if _, err := ParseRoute(raw); err == nil {
			t.Errorf("ParseRoute(%q) succeeded, want error", raw)
		}
	}
}

func TestMustParseRoute_Panics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustParseRoute did not panic")
		}
	}()
	MustParseRoute("{")
}

func TestRouteTemplate_Bind(t *testing.T) {
	rt := MustParseRoute("orgs/{org}/users/{user_id}")

	params := []Parameter{
		{Name: "org", Location: InPath},
		{Name: "userID", WireName: "user_id", Location: InPath},
	}
	if name, err := rt.Bind(params); err != nil {
		t.Errorf("Bind() = %q, %v; want success", name, err)
	}

	// A query parameter with the right name does not satisfy a path slot.
	params[1].Location = InQuery
	name, err := rt.Bind(params)
	if !errors.Is(err, ErrUnboundRouteParam) {
		t.Errorf("Bind() error = %v, want ErrUnboundRouteParam", err)
	}
	if name != "user_id" {
		t.Errorf("Bind() name = %q, want %q", name, "user_id")
	}
}

func TestOperation_Params(t *testing.T) {
	op := Operation{
		Service: "Users",
		Name:    "Search",
		Verbs:   []string{"GET", "POST"},
		Params: []Parameter{
			{Name: "zeta", Location: InBody},
			{Name: "alpha", Location: InBody},
			{Name: "q", WireName: "z_query", Location: InQuery},
			{Name: "page", WireName: "a_page", Location: InQuery},
			{Name: "id", Location: InPath},
		},
	}

	body := op.BodyParams()
	if len(body) != 2 || body[0].Name != "alpha" || body[1].Name != "zeta" {
		t.Errorf("BodyParams() = %+v, want [alpha zeta]", body)
	}
	query := op.QueryParams()
	if len(query) != 2 || query[0].Wire() != "a_page" || query[1].Wire() != "z_query" {
		t.Errorf("QueryParams() = %+v, want [a_page z_query]", query)
	}
	if got := op.FullName(); got != "Users.Search" {
		t.Errorf("FullName() = %q, want %q", got, "Users.Search")
	}
	if got := op.MethodName("POST"); got != "SearchPost" {
		t.Errorf("MethodName(POST) = %q, want %q", got, "SearchPost")
	}
	op.Verbs = []string{"GET"}
	if got := op.MethodName("GET"); got != "Search" {
		t.Errorf("MethodName(GET) with one verb = %q, want %q", got, "Search")
	}
}
