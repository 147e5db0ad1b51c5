// Package loopcall detects outbound notifier and connection calls inside loops.
package loopcall

import (
	"go/ast"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"
)

// Analyzer reports calls that must happen once per request, not once per item.
var Analyzer = &analysis.Analyzer{
	Name:     "loopcall",
	Doc:      "detects notifier and connection calls inside loops; notifications for a request go out once",
	Requires: []*analysis.Analyzer{inspect.Analyzer},
	Run:      run,
}

// onceMethods are method names that should not run per loop iteration.
var onceMethods = map[string]bool{
	// ports.Notifier: one message per request, shared by every item in it.
	"PostOrUpdate": true,
	// NotificationReconciler entry points.
	"NotifyCreated":  true,
	"NotifyReviewed": true,
	// Connection setup.
	"EnsureSchema": true,
	"Ping":         true,
}

func run(pass *analysis.Pass) (interface{}, error) {
	inspect := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)

	nodeFilter := []ast.Node{
		(*ast.RangeStmt)(nil),
		(*ast.ForStmt)(nil),
	}

	inspect.Preorder(nodeFilter, func(n ast.Node) {
		var body *ast.BlockStmt
		switch stmt := n.(type) {
		case *ast.RangeStmt:
			body = stmt.Body
		case *ast.ForStmt:
			body = stmt.Body
		}
		if body == nil {
			return
		}

		ast.Inspect(body, func(n ast.Node) bool {
			// Closures run later, not per iteration.
			if _, ok := n.(*ast.FuncLit); ok {
				return false
			}

			call, ok := n.(*ast.CallExpr)
			if !ok {
				return true
			}

			sel, ok := call.Fun.(*ast.SelectorExpr)
			if !ok {
				return true
			}

			if onceMethods[sel.Sel.Name] {
				pass.Reportf(call.Pos(),
					"%s called inside loop - call once per request",
					sel.Sel.Name)
			}

			return true
		})
	})

	return nil, nil
}
