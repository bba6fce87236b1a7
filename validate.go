package harmony

import (
	"errors"
	"fmt"

	"github.com/broady/harmony/model"
)

// validateOperation parses the route of op and checks its bindings.
//
// A parameter bound from a location the client cannot express drops the
// operation with a warning (ok is false). Every other problem is a fatal
// *Error attributed to the operation.
func validateOperation(op model.Operation) (_ model.Operation, w model.Warning, ok bool, err error) {
	for _, p := range op.Params {
		if !p.Location.Supported() {
			return op, model.Warning{
				Code:      model.WarnUnsupportedBind,
				Message:   fmt.Sprintf("parameter %s is bound from %s, which the client cannot express", p.Name, p.Location),
				Service:   op.Service,
				Operation: op.Name,
				Parameter: p.Name,
			}, false, nil
		}
		if p.Type == nil || p.Type.Type == nil {
			return op, w, false, opError(CodeInternal, op.Service, op.Name, nil, "parameter %s has no type", p.Name)
		}
	}

	if op.Encoding == model.EncodingMultipart {
		return op, w, false, opError(CodeNotImplemented, op.Service, op.Name, ErrNotImplemented,
			"multipart bodies are not supported")
	}

	rt, perr := model.ParseRoute(op.Route.Raw)
	if perr != nil {
		return op, w, false, opError(CodeMalformedRoute, op.Service, op.Name, perr, "%v", perr)
	}
	op.Route = rt

	if name, berr := rt.Bind(op.Params); berr != nil {
		if errors.Is(berr, model.ErrUnboundRouteParam) {
			return op, w, false, opError(CodeMalformedRoute, op.Service, op.Name, berr,
				"route %q: parameter {%s} has no matching path parameter", rt.Raw, name).
				WithDetail("route_param", name)
		}
		return op, w, false, opError(CodeMalformedRoute, op.Service, op.Name, berr, "%v", berr)
	}

	if body := op.BodyParams(); op.Encoding.SingleBody() && len(body) > 1 {
		names := make([]string, len(body))
		for i, p := range body {
			names[i] = p.Name
		}
		return op, w, false, opError(CodeAmbiguousBody, op.Service, op.Name, nil,
			"%d body parameters %v under %s encoding, which carries at most one", len(body), names, op.Encoding)
	}

	return op, w, true, nil
}
