// Package sentinelwrap checks that domain sentinel errors stay matchable with errors.Is.
package sentinelwrap

import (
	"go/ast"
	"go/token"
	"strconv"
	"strings"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"
)

// Analyzer reports fmt.Errorf calls that format an entities.Err* sentinel
// without a %w verb.
var Analyzer = &analysis.Analyzer{
	Name:     "sentinelwrap",
	Doc:      "checks that fmt.Errorf wraps entities.Err* sentinels with %w",
	Requires: []*analysis.Analyzer{inspect.Analyzer},
	Run:      run,
}

func run(pass *analysis.Pass) (interface{}, error) {
	inspect := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)

	inspect.Preorder([]ast.Node{(*ast.CallExpr)(nil)}, func(n ast.Node) {
		call := n.(*ast.CallExpr)
		if !isCall(call, "fmt", "Errorf") || len(call.Args) < 2 {
			return
		}

		sentinel := ""
		for _, arg := range call.Args[1:] {
			if name, ok := sentinelName(arg); ok {
				sentinel = name
				break
			}
		}
		if sentinel == "" {
			return
		}

		lit, ok := call.Args[0].(*ast.BasicLit)
		if !ok || lit.Kind != token.STRING {
			return
		}
		format, err := strconv.Unquote(lit.Value)
		if err != nil {
			return
		}
		if !strings.Contains(format, "%w") {
			pass.Reportf(call.Pos(), "%s formatted without %%w - errors.Is will not match", sentinel)
		}
	})

	return nil, nil
}

func isCall(call *ast.CallExpr, pkg, name string) bool {
	sel, ok := call.Fun.(*ast.SelectorExpr)
	if !ok {
		return false
	}
	id, ok := sel.X.(*ast.Ident)
	return ok && id.Name == pkg && sel.Sel.Name == name
}

// sentinelName returns "entities.ErrX" for a selector of that shape.
func sentinelName(expr ast.Expr) (string, bool) {
	sel, ok := expr.(*ast.SelectorExpr)
	if !ok {
		return "", false
	}
	id, ok := sel.X.(*ast.Ident)
	if !ok || id.Name != "entities" || !strings.HasPrefix(sel.Sel.Name, "Err") {
		return "", false
	}
	return id.Name + "." + sel.Sel.Name, true
}
