// Package typescript renders a pruned surface and its converter graph into a
// single TypeScript client file.
package typescript

import (
	"bytes"
	"context"
	"fmt"
	"slices"

	"github.com/broady/harmony/convert"
	"github.com/broady/harmony/prune"
)

type emitter struct {
	cfg   Config
	graph *convert.Graph
}

// Emit renders the client. Services are emitted before converters because
// emitting them marks which converters are used in which direction on
// graph. Identical input yields byte-identical output.
func Emit(ctx context.Context, s prune.Surface, graph *convert.Graph, cfg Config) ([]byte, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("typescript config: %w", err)
	}
	if graph == nil {
		graph = convert.NewGraph()
	}
	e := &emitter{cfg: cfg, graph: graph}

	types := newWriter(cfg.IndentSize)
	e.emitTypes(types, s.Types)

	services := newWriter(cfg.IndentSize)
	svcs := s.Services()
	if len(svcs) > 0 {
		if err := e.emitServices(ctx, services, svcs); err != nil {
			return nil, err
		}
		services.line("")
		emitBuildURL(services)
	}

	funcs := usedConverters(graph)
	converters := newWriter(cfg.IndentSize)
	e.emitConverters(converters, funcs)

	var imports []string
	if len(svcs) > 0 {
		imports = append(imports, fmt.Sprintf("import { %s, type %s } from %q;", cfg.BaseClass, cfg.OptionsType, cfg.RuntimeImport))
	}
	imports = append(imports, converterImports(funcs)...)
	slices.Sort(imports)
	imports = slices.Compact(imports)

	out := newWriter(cfg.IndentSize)
	if cfg.Header != "" {
		out.line("%s", "// "+cfg.Header)
		out.line("")
	}
	for _, imp := range imports {
		out.line("%s", imp)
	}
	sections := [][]byte{types.bytes(), services.bytes(), converters.bytes()}
	for _, sec := range sections {
		if len(sec) == 0 {
			continue
		}
		if !out.empty() {
			out.line("")
		}
		out.buf.Write(sec)
	}

	content := out.bytes()
	if cfg.LineEnding == "crlf" {
		content = bytes.ReplaceAll(content, []byte("\n"), []byte("\r\n"))
	}
	return content, nil
}

func emitBuildURL(w *writer) {
	w.open("function buildUrl(path: string, query?: Record<string, unknown>): string {")
	w.line("if (!query) return path;")
	w.line("const params = new URLSearchParams();")
	w.open("for (const [key, value] of Object.entries(query)) {")
	w.line("if (value === undefined || value === null) continue;")
	w.open("if (Array.isArray(value)) {")
	w.line("for (const item of value) params.append(key, String(item));")
	w.shut("} else {")
	w.depth++
	w.line("params.append(key, String(value));")
	w.shut("}")
	w.shut("}")
	w.line("const qs = params.toString();")
	w.line("return qs ? `${path}?${qs}` : path;")
	w.shut("}")
}
