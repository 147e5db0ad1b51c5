// Package analyzers provides all custom static analyzers for catalog-review.
package analyzers

import (
	"golang.org/x/tools/go/analysis"

	"github.com/ersonp/catalog-review/tools/catalog-lint/analyzers/loopcall"
	"github.com/ersonp/catalog-review/tools/catalog-lint/analyzers/sentinelwrap"
)

// All returns all analyzers to run.
func All() []*analysis.Analyzer {
	return []*analysis.Analyzer{
		loopcall.Analyzer,
		sentinelwrap.Analyzer,
	}
}
