package model

import (
	"fmt"
	"reflect"
	"strings"
)

// Location is where a parameter's value is carried in a request.
type Location int

const (
	InPath Location = iota
	InQuery
	InBody

	// Locations below are recognized but cannot be expressed by the client.
	InHeader
	InCookie
	InServices
)

func (l Location) String() string {
	switch l {
	case InPath:
		return "path"
	case InQuery:
		return "query"
	case InBody:
		return "body"
	case InHeader:
		return "header"
	case InCookie:
		return "cookie"
	case InServices:
		return "services"
	default:
		return fmt.Sprintf("Location(%d)", int(l))
	}
}

// Supported reports whether the client can bind a parameter at l.
func (l Location) Supported() bool {
	return l == InPath || l == InQuery || l == InBody
}

// BodyEncoding is the wire encoding for body-bound parameters.
type BodyEncoding int

const (
	// EncodingJSON allows at most one body parameter, sent as JSON.
	EncodingJSON BodyEncoding = iota

	// EncodingRaw allows at most one body parameter, sent as is.
	EncodingRaw

	// EncodingForm sends every body parameter as application/x-www-form-urlencoded.
	EncodingForm

	// EncodingMultipart is recognized but not implemented: there is no
	// support for file names or binary blobs.
	EncodingMultipart
)

func (e BodyEncoding) String() string {
	switch e {
	case EncodingJSON:
		return "json"
	case EncodingRaw:
		return "raw"
	case EncodingForm:
		return "form"
	case EncodingMultipart:
		return "multipart"
	default:
		return fmt.Sprintf("BodyEncoding(%d)", int(e))
	}
}

// SingleBody reports whether the encoding admits at most one body parameter.
func (e BodyEncoding) SingleBody() bool {
	return e == EncodingJSON || e == EncodingRaw
}

// Parameter is one argument of an operation.
type Parameter struct {
	// Name is the parameter name in generated code.
	Name string

	// WireName is the name the server expects. Empty means Name.
	WireName string

	Type     *Ref
	Location Location
	Optional bool
}

// Wire returns the wire name of the parameter.
func (p Parameter) Wire() string {
	if p.WireName != "" {
		return p.WireName
	}
	return p.Name
}

// Operation is a root operation declared by the server.
type Operation struct {
	Service string
	Name    string
	Params  []Parameter

	// Return is nil for operations without a result.
	Return *Ref

	Route    RouteTemplate
	Verbs    []string
	Encoding BodyEncoding
}

// FullName returns "Service.Name".
func (op *Operation) FullName() string {
	return op.Service + "." + op.Name
}

// BodyParams returns the body-bound parameters, sorted by name.
func (op *Operation) BodyParams() []Parameter {
	return op.paramsAt(InBody, func(p Parameter) string { return p.Name })
}

// QueryParams returns the query-bound parameters, sorted by wire name.
func (op *Operation) QueryParams() []Parameter {
	return op.paramsAt(InQuery, Parameter.Wire)
}

func (op *Operation) paramsAt(loc Location, key func(Parameter) string) []Parameter {
	var out []Parameter
	for _, p := range op.Params {
		if p.Location == loc {
			out = append(out, p)
		}
	}
	sortBy(out, key)
	return out
}

// Param returns the parameter with the given target name.
func (op *Operation) Param(name string) (Parameter, bool) {
	for _, p := range op.Params {
		if p.Name == name {
			return p, true
		}
	}
	return Parameter{}, false
}

// Roots returns the source types the operation needs, return type first.
func (op *Operation) Roots() []reflect.Type {
	var roots []reflect.Type
	if op.Return != nil && op.Return.Type != nil {
		roots = append(roots, op.Return.Type)
	}
	for _, p := range op.Params {
		if p.Type != nil && p.Type.Type != nil {
			roots = append(roots, p.Type.Type)
		}
	}
	return roots
}

// MethodName returns the client method name for verb. Operations allowing
// several verbs get one method per verb, suffixed with the capitalized verb.
func (op *Operation) MethodName(verb string) string {
	if len(op.Verbs) <= 1 {
		return op.Name
	}
	v := strings.ToLower(verb)
	if v == "" {
		return op.Name
	}
	return op.Name + strings.ToUpper(v[:1]) + v[1:]
}

// Service groups the surviving operations of one service.
type Service struct {
	Name       string
	Operations []Operation
}
