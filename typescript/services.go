package typescript

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/broady/harmony/convert"
	"github.com/broady/harmony/model"
)

// ErrUnsupportedEncoding is returned for body encodings the client cannot
// produce.
var ErrUnsupportedEncoding = errors.New("unsupported body encoding")

type method struct {
	name string
	verb string
	op   model.Operation
}

// methods expands the operations of a service into client methods, one per
// verb, sorted by name.
func methods(svc model.Service) []method {
	var out []method
	for _, op := range svc.Operations {
		verbs := op.Verbs
		if len(verbs) == 0 {
			verb := "GET"
			if len(op.BodyParams()) > 0 {
				verb = "POST"
			}
			verbs = []string{verb}
		}
		for _, v := range verbs {
			out = append(out, method{
				name: sanitizeIdentifier(lowerFirst(op.MethodName(v))),
				verb: strings.ToUpper(v),
				op:   op,
			})
		}
	}
	slices.SortStableFunc(out, func(a, b method) int { return strings.Compare(a.name, b.name) })
	return out
}

func (e *emitter) serviceClass(svc model.Service) string {
	return sanitizeIdentifier(svc.Name + e.cfg.ServiceSuffix)
}

func (e *emitter) emitServices(ctx context.Context, w *writer, services []model.Service) error {
	w.open("export class %s {", e.cfg.ServicesClass)
	for _, svc := range services {
		w.line("readonly %s: %s;", sanitizeIdentifier(lowerFirst(svc.Name)), e.serviceClass(svc))
	}
	w.line("")
	w.open("constructor(readonly options: %s) {", e.cfg.OptionsType)
	for _, svc := range services {
		w.line("this.%s = new %s(options);", sanitizeIdentifier(lowerFirst(svc.Name)), e.serviceClass(svc))
	}
	w.shut("}")
	w.shut("}")

	for _, svc := range services {
		if err := ctx.Err(); err != nil {
			return err
		}
		w.line("")
		w.open("export class %s extends %s {", e.serviceClass(svc), e.cfg.BaseClass)
		for i, m := range methods(svc) {
			if i > 0 {
				w.line("")
			}
			if err := e.emitMethod(w, m); err != nil {
				return fmt.Errorf("%s.%s: %w", svc.Name, m.op.Name, err)
			}
		}
		w.shut("}")
	}
	return nil
}

// signature orders required parameters before optional ones.
func signature(op model.Operation) []model.Parameter {
	params := slices.Clone(op.Params)
	slices.SortStableFunc(params, func(a, b model.Parameter) int {
		switch {
		case a.Optional == b.Optional:
			return 0
		case b.Optional:
			return -1
		}
		return 1
	})
	return params
}

func (e *emitter) emitMethod(w *writer, m method) error {
	op := m.op
	if op.Encoding == model.EncodingMultipart {
		return fmt.Errorf("%w: %s", ErrUnsupportedEncoding, op.Encoding)
	}

	var args []string
	for _, p := range signature(op) {
		opt := ""
		if p.Optional {
			opt = "?"
		}
		args = append(args, fmt.Sprintf("%s%s: %s", sanitizeIdentifier(p.Name), opt, refExpr(p.Type)))
	}
	args = append(args, "opts?: "+e.cfg.OptionsType)

	fetch, resultType := e.fetchStrategy(op)
	var convertResult *convert.Node
	if op.Return != nil {
		convertResult = e.graph.NeedsConversion(op.Return.Node)
	}

	prefix := ""
	if convertResult != nil {
		prefix = "async "
	}
	w.open("%s%s(%s): Promise<%s> {", prefix, m.name, strings.Join(args, ", "), resultType)

	for _, p := range op.Params {
		node := e.graph.NeedsConversion(p.Type.Node)
		if node == nil {
			continue
		}
		e.graph.Use(p.Type.Node, convert.ToWire)
		name := sanitizeIdentifier(p.Name)
		w.line("if (%s != null) %s = %s(%s);", name, name, node.FuncName(convert.ToWire), name)
	}

	w.line("const url = buildUrl(%s%s);", pathExpr(op), queryExpr(op))

	body := e.emitBody(w, op)

	call := fmt.Sprintf("this.%s", fetch)
	if fetch == e.cfg.FetchJSON {
		if convertResult != nil {
			call += "<any>"
		} else {
			call += "<" + resultType + ">"
		}
	}
	call += fmt.Sprintf("(%q, url, %s, opts)", m.verb, body)

	if convertResult != nil {
		e.graph.Use(op.Return.Node, convert.ToHost)
		w.line("const result = await %s;", call)
		w.line("return result == null ? result : %s(result);", convertResult.FuncName(convert.ToHost))
	} else {
		w.line("return %s;", call)
	}
	w.shut("}")
	return nil
}

// fetchStrategy picks the fetcher from the unwrapped return category.
func (e *emitter) fetchStrategy(op model.Operation) (fetch, resultType string) {
	if op.Return == nil || op.Return.Type == nil {
		return e.cfg.FetchVoid, "void"
	}
	n := op.Return.Node
	if b, ok := model.Unwrap(n).(*model.BasicNode); ok && b.Type().Kind() == reflect.String && b.Alias == "string" {
		return e.cfg.FetchString, typeExpr(n)
	}
	return e.cfg.FetchJSON, typeExpr(n)
}

// pathExpr renders the route as a template literal with encoded parameters.
func pathExpr(op model.Operation) string {
	var b strings.Builder
	b.WriteByte('`')
	for i, s := range op.Route.Segments {
		if i > 0 {
			b.WriteByte('/')
		}
		if !s.IsParam() {
			b.WriteString(escapeTemplate(s.Literal))
			continue
		}
		name := s.Param
		for _, p := range op.Params {
			if p.Location == model.InPath && p.Wire() == s.Param {
				name = p.Name
				break
			}
		}
		fmt.Fprintf(&b, "${encodeURIComponent(String(%s))}", sanitizeIdentifier(name))
	}
	b.WriteByte('`')
	return b.String()
}

func escapeTemplate(s string) string {
	return strings.NewReplacer("\\", "\\\\", "`", "\\`", "${", "\\${").Replace(s)
}

// queryExpr renders the query object, keyed by wire name in sorted order.
func queryExpr(op model.Operation) string {
	params := op.QueryParams()
	if len(params) == 0 {
		return ""
	}
	entries := make([]string, len(params))
	for i, p := range params {
		entries[i] = propertyKey(p.Wire()) + ": " + sanitizeIdentifier(p.Name)
	}
	return ", { " + strings.Join(entries, ", ") + " }"
}

// emitBody writes any statements the body needs and returns the body
// expression.
func (e *emitter) emitBody(w *writer, op model.Operation) string {
	params := op.BodyParams()
	if len(params) == 0 {
		return "undefined"
	}
	switch op.Encoding {
	case model.EncodingRaw:
		return sanitizeIdentifier(params[0].Name)
	case model.EncodingForm:
		w.line("const form = new URLSearchParams();")
		for _, p := range params {
			name := sanitizeIdentifier(p.Name)
			w.line("if (%s != null) form.append(%q, String(%s));", name, p.Wire(), name)
		}
		return "form"
	default:
		return "JSON.stringify(" + sanitizeIdentifier(params[0].Name) + ")"
	}
}
