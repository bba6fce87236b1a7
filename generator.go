// Package harmony generates typed TypeScript clients for Go APIs.
package harmony

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"reflect"
	"strings"
	"time"

	"github.com/broady/harmony/convert"
	"github.com/broady/harmony/metrics"
	"github.com/broady/harmony/model"
	"github.com/broady/harmony/prune"
	"github.com/broady/harmony/resolve"
	"github.com/broady/harmony/sink"
	"github.com/broady/harmony/typescript"
)

// Generator runs the pipeline over the operations of a Registry:
// validate, resolve, prune, build converters, emit.
//
// Example:
//
//	res, err := harmony.FromRegistry(reg).
//	    WithPrimitive(reflect.TypeFor[time.Time](), "Date", model.DateConverter).
//	    ToDir(ctx, "./web/src/api")
type Generator struct {
	reg        *Registry
	logger     *slog.Logger
	primitives *model.PrimitiveRegistry
	enums      model.EnumRegistry
	candidates []reflect.Type
	namespace  func(string) string
	ignore     func(reflect.Type) bool
	ts         typescript.Config
	metrics    *metrics.Registry
}

// FromRegistry creates a Generator for the operations in reg.
func FromRegistry(reg *Registry) *Generator {
	return &Generator{
		reg:        reg,
		primitives: model.DefaultPrimitives(),
		enums:      make(model.EnumRegistry),
	}
}

// WithLogger sets the logger. If not set, slog.Default() is used.
func (g *Generator) WithLogger(logger *slog.Logger) *Generator {
	g.logger = logger
	return g
}

// WithPrimitives replaces the Primitive Registry.
func (g *Generator) WithPrimitives(r *model.PrimitiveRegistry) *Generator {
	g.primitives = r
	return g
}

// WithPrimitive maps t to alias, with an optional converter.
func (g *Generator) WithPrimitive(t reflect.Type, alias string, conv *model.Converter) *Generator {
	g.primitives = g.primitives.Clone()
	g.primitives.AddConverter(t, alias, conv)
	return g
}

// WithEnums merges entries into the Enum Registry.
func (g *Generator) WithEnums(enums model.EnumRegistry) *Generator {
	for k, v := range enums {
		g.enums[k] = v
	}
	return g
}

// WithCandidates adds descendant candidates.
func (g *Generator) WithCandidates(types ...reflect.Type) *Generator {
	g.candidates = append(g.candidates, types...)
	return g
}

// WithNamespace sets the function mapping Go package paths to namespaces.
func (g *Generator) WithNamespace(fn func(pkgPath string) string) *Generator {
	g.namespace = fn
	return g
}

// IgnoreTypes marks types for which fn returns true as unmappable.
func (g *Generator) IgnoreTypes(fn func(reflect.Type) bool) *Generator {
	g.ignore = fn
	return g
}

// WithTypeScript sets the client configuration.
func (g *Generator) WithTypeScript(cfg typescript.Config) *Generator {
	g.ts = cfg
	return g
}

// WithMetrics records every run in m.
func (g *Generator) WithMetrics(m *metrics.Registry) *Generator {
	g.metrics = m
	return g
}

// Result is the outcome of one run.
type Result struct {
	// Path is the file name the client was written to.
	Path string

	// Content is the generated client.
	Content []byte

	// Surface is what survived pruning.
	Surface prune.Surface

	// Converters is the number of converters in use.
	Converters int

	Warnings []model.Warning
}

// Generate runs the pipeline and returns the result in memory.
func (g *Generator) Generate(ctx context.Context) (*Result, error) {
	logger := g.logger
	if logger == nil {
		logger = slog.Default()
	}
	start := time.Now()

	result, err := g.run(ctx)
	elapsed := time.Since(start)
	if err != nil {
		g.metrics.RecordRun(string(AsError(err).Code), elapsed, nil, metrics.Surface{})
		return nil, err
	}

	for _, w := range result.Warnings {
		logger.Warn(w.Message, w.LogAttrs()...)
	}
	g.metrics.RecordRun("ok", elapsed, result.Warnings, metrics.Surface{
		Operations: len(result.Surface.Operations),
		Types:      len(result.Surface.Types),
		Converters: result.Converters,
	})
	logger.Info("client generated",
		slog.String("file", result.Path),
		slog.Int("operations", len(result.Surface.Operations)),
		slog.Int("types", len(result.Surface.Types)),
		slog.Int("converters", result.Converters),
		slog.Int("warnings", len(result.Warnings)),
		slog.Duration("duration", elapsed),
	)
	return result, nil
}

func (g *Generator) run(ctx context.Context) (*Result, error) {
	ops, warnings := g.reg.Operations()

	var valid []model.Operation
	for _, op := range ops {
		op, w, ok, err := validateOperation(op)
		if err != nil {
			return nil, err
		}
		if !ok {
			warnings = append(warnings, w)
			continue
		}
		valid = append(valid, op)
	}

	var roots []reflect.Type
	for _, op := range valid {
		roots = append(roots, op.Roots()...)
	}
	res := resolve.New(resolve.Options{
		Primitives: g.primitives,
		Enums:      g.enums,
		Candidates: g.candidates,
		Namespace:  g.namespace,
		Ignore:     g.ignore,
		Logger:     g.logger,
	}).Resolve(roots...)
	warnings = append(warnings, res.Warnings()...)

	surface := prune.Apply(res, valid)
	warnings = append(warnings, surface.Warnings...)

	graph := convert.NewGraph()
	content, err := typescript.Emit(ctx, surface, graph, g.ts)
	if err != nil {
		return nil, fmt.Errorf("emit client: %w", err)
	}

	return &Result{
		Path:       g.ts.WithDefaults().FileName,
		Content:    content,
		Surface:    surface,
		Converters: len(graph.Used()),
		Warnings:   warnings,
	}, nil
}

// ToSink runs the pipeline and writes the client to s.
func (g *Generator) ToSink(ctx context.Context, s sink.OutputSink) (*Result, error) {
	result, err := g.Generate(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.WriteFile(ctx, result.Path, result.Content); err != nil {
		return nil, fmt.Errorf("write %s: %w", result.Path, err)
	}
	return result, nil
}

// ToDir runs the pipeline and writes the client under dir.
func (g *Generator) ToDir(ctx context.Context, dir string) (*Result, error) {
	return g.ToSink(ctx, sink.NewFilesystemSink(dir))
}

// Namespaces returns a namespace function. Package paths found in mapping
// use the mapped name. Otherwise stripPrefix is removed and the remaining
// path elements are joined with underscores; without a matching prefix the
// last path element is used.
func Namespaces(mapping map[string]string, stripPrefix string) func(string) string {
	return func(pkgPath string) string {
		if ns, ok := mapping[pkgPath]; ok {
			return ns
		}
		if stripPrefix != "" && strings.HasPrefix(pkgPath, stripPrefix) {
			rest := strings.Trim(strings.TrimPrefix(pkgPath, stripPrefix), "/")
			if rest != "" {
				return model.SanitizeName(strings.ReplaceAll(rest, "/", "_"))
			}
		}
		if pkgPath == "" {
			return ""
		}
		return resolve.DefaultNamespace(path.Clean(pkgPath))
	}
}
