// Package nopkglock defines an analyzer that reports package-level
// sync.Mutex and sync.RWMutex variables. Locks in this project belong to
// the value they guard and are injected where shared.
package nopkglock

import (
	"go/ast"
	"go/token"
	"go/types"

	"golang.org/x/tools/go/analysis"
)

// Analyzer reports package-level mutex variables.
var Analyzer = &analysis.Analyzer{
	Name: "nopkglock",
	Doc:  "prohibits package-level sync.Mutex and sync.RWMutex variables",
	Run:  run,
}

func run(pass *analysis.Pass) (interface{}, error) {
	for _, file := range pass.Files {
		for _, decl := range file.Decls {
			gen, ok := decl.(*ast.GenDecl)
			if !ok || gen.Tok != token.VAR {
				continue
			}

			for _, spec := range gen.Specs {
				valueSpec, ok := spec.(*ast.ValueSpec)
				if !ok {
					continue
				}
				for _, name := range valueSpec.Names {
					obj := pass.TypesInfo.Defs[name]
					if obj == nil || !isMutex(obj.Type()) {
						continue
					}
					pass.Reportf(name.Pos(), "package-level lock %s: keep it in the struct it guards", name.Name)
				}
			}
		}
	}
	return nil, nil
}

func isMutex(typ types.Type) bool {
	if ptr, ok := typ.(*types.Pointer); ok {
		typ = ptr.Elem()
	}

	named, ok := typ.(*types.Named)
	if !ok {
		return false
	}
	obj := named.Obj()
	if obj.Pkg() == nil || obj.Pkg().Path() != "sync" {
		return false
	}

	return obj.Name() == "Mutex" || obj.Name() == "RWMutex"
}
