package enumscan

import (
	"fmt"
	"go/ast"
	"go/token"
	"strings"
)

// Kind is the kind of a harmony directive.
type Kind string

const (
	// KindFlags marks a bit-flag enumeration. Flags are recorded but the
	// emitter treats the type as a plain enum, with a warning.
	KindFlags Kind = "flags"

	// KindSkip excludes the type from the scan.
	KindSkip Kind = "skip"
)

const directivePrefix = "//harmony:"

// Directive is a directive attached to a type declaration.
type Directive struct {
	Kind     Kind
	TypeName string
	Pos      token.Position
}

// parseDirectives extracts directives from a single file. A directive must
// be part of the doc comment of a type declaration.
func parseDirectives(fset *token.FileSet, f *ast.File) ([]Directive, error) {
	type pending struct {
		kind Kind
		pos  token.Position
	}
	byGroup := make(map[*ast.CommentGroup][]pending)

	for _, cg := range f.Comments {
		for _, c := range cg.List {
			if !strings.HasPrefix(c.Text, directivePrefix) {
				continue
			}
			parts := strings.Fields(strings.TrimPrefix(c.Text, directivePrefix))
			if len(parts) == 0 {
				continue
			}
			pos := fset.Position(c.Pos())
			switch k := Kind(parts[0]); k {
			case KindFlags, KindSkip:
				byGroup[cg] = append(byGroup[cg], pending{kind: k, pos: pos})
			default:
				return nil, fmt.Errorf("%s: unknown directive %s%s", pos, directivePrefix, parts[0])
			}
		}
	}

	var directives []Directive
	attach := func(doc *ast.CommentGroup, name string) {
		if doc == nil {
			return
		}
		for _, p := range byGroup[doc] {
			directives = append(directives, Directive{Kind: p.kind, TypeName: name, Pos: p.pos})
		}
		delete(byGroup, doc)
	}
	for _, decl := range f.Decls {
		gd, ok := decl.(*ast.GenDecl)
		if !ok || gd.Tok != token.TYPE {
			continue
		}
		for _, spec := range gd.Specs {
			ts := spec.(*ast.TypeSpec)
			attach(ts.Doc, ts.Name.Name)
			if !gd.Lparen.IsValid() {
				attach(gd.Doc, ts.Name.Name)
			}
		}
	}

	for _, ps := range byGroup {
		p := ps[0]
		return nil, fmt.Errorf("%s: %s%s directive must be followed by a type declaration", p.pos, directivePrefix, p.kind)
	}
	return directives, nil
}
