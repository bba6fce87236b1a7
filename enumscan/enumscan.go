// Package enumscan finds enumerations in Go source.
//
// Go has no runtime list of a type's constants, so the generator's Enum
// Registry is filled from source: an enumeration is an exported named type
// with an integer underlying type and at least one exported constant of
// that type declared in the same package.
//
// Directives in the type's doc comment adjust the scan:
//
//	//harmony:flags
//	//harmony:skip
//
// flags records the type as a bit-flag enumeration; skip leaves it out.
package enumscan

import (
	"cmp"
	"context"
	"fmt"
	"go/constant"
	"go/types"
	"slices"

	"golang.org/x/tools/go/packages"
	"gopkg.in/yaml.v3"

	"github.com/broady/harmony/model"
)

// Scan loads the packages matching patterns and returns their enumerations.
//
// Patterns follow go command semantics ("." or "./..." or an import path)
// and are resolved relative to dir. If dir is empty, the current directory
// is used.
func Scan(ctx context.Context, dir string, patterns ...string) (model.EnumRegistry, error) {
	if len(patterns) == 0 {
		patterns = []string{"."}
	}
	cfg := &packages.Config{
		Context: ctx,
		Mode: packages.NeedName | packages.NeedFiles | packages.NeedSyntax |
			packages.NeedTypes | packages.NeedTypesInfo,
		Dir: dir,
	}
	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("load packages: %w", err)
	}
	if len(pkgs) == 0 {
		return nil, fmt.Errorf("no packages found matching %v", patterns)
	}

	reg := make(model.EnumRegistry)
	for _, pkg := range pkgs {
		if len(pkg.Errors) > 0 {
			return nil, fmt.Errorf("package %s: %v", pkg.PkgPath, pkg.Errors[0])
		}
		if err := scanPackage(pkg, reg); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

func scanPackage(pkg *packages.Package, reg model.EnumRegistry) error {
	marks := make(map[string]map[Kind]bool)
	for _, f := range pkg.Syntax {
		directives, err := parseDirectives(pkg.Fset, f)
		if err != nil {
			return err
		}
		for _, d := range directives {
			if marks[d.TypeName] == nil {
				marks[d.TypeName] = make(map[Kind]bool)
			}
			marks[d.TypeName][d.Kind] = true
		}
	}

	scope := pkg.Types.Scope()
	for _, name := range scope.Names() {
		c, ok := scope.Lookup(name).(*types.Const)
		if !ok || !c.Exported() {
			continue
		}
		named, ok := enumType(c, pkg.Types)
		if !ok || marks[named.Obj().Name()][KindSkip] {
			continue
		}
		v, exact := constant.Int64Val(constant.ToInt(c.Val()))
		if !exact {
			return fmt.Errorf("%s: constant %s does not fit in int64", pkg.Fset.Position(c.Pos()), name)
		}

		key := pkg.Types.Path() + "." + named.Obj().Name()
		spec := reg[key]
		spec.Flags = marks[named.Obj().Name()][KindFlags]
		spec.Members = append(spec.Members, model.EnumMember{Name: name, Value: v})
		reg[key] = spec
	}

	for key, spec := range reg {
		slices.SortFunc(spec.Members, func(a, b model.EnumMember) int {
			return cmp.Or(cmp.Compare(a.Value, b.Value), cmp.Compare(a.Name, b.Name))
		})
		reg[key] = spec
	}
	return nil
}

// enumType returns the named type of c if it is an exported integer type
// declared in pkg.
func enumType(c *types.Const, pkg *types.Package) (*types.Named, bool) {
	named, ok := c.Type().(*types.Named)
	if !ok || named.Obj().Pkg() != pkg || !named.Obj().Exported() {
		return nil, false
	}
	basic, ok := named.Underlying().(*types.Basic)
	if !ok || basic.Info()&types.IsInteger == 0 {
		return nil, false
	}
	return named, true
}

// Marshal renders reg as the enums block of a configuration file.
func Marshal(reg model.EnumRegistry) ([]byte, error) {
	return yaml.Marshal(struct {
		Enums model.EnumRegistry `yaml:"enums"`
	}{reg})
}
