package model

import "log/slog"

// Warning codes.
const (
	WarnUnmappableParam  = "unmappable_parameter"
	WarnUnmappableReturn = "unmappable_return"
	WarnUnmappableMember = "unmappable_member"
	WarnUnmappableBase   = "unmappable_ancestor"
	WarnUnsupportedBind  = "unsupported_binding"
	WarnFlagsEnum        = "flags_enum"
	WarnRenamed          = "renamed_operation"
	WarnRenamedType      = "renamed_type"
)

// Warning is a non-fatal issue found during a run.
type Warning struct {
	// Code is a machine-readable warning identifier.
	Code string

	// Message is a human-readable description.
	Message string

	Service   string
	Operation string
	Parameter string

	// TypeName is the source type that triggered the warning, if any.
	TypeName string
}

// LogAttrs returns the structured attributes of w for slog.
func (w Warning) LogAttrs() []any {
	attrs := []any{slog.String("code", w.Code)}
	if w.Service != "" {
		attrs = append(attrs, slog.String("service", w.Service))
	}
	if w.Operation != "" {
		attrs = append(attrs, slog.String("operation", w.Operation))
	}
	if w.Parameter != "" {
		attrs = append(attrs, slog.String("parameter", w.Parameter))
	}
	if w.TypeName != "" {
		attrs = append(attrs, slog.String("type", w.TypeName))
	}
	return attrs
}
