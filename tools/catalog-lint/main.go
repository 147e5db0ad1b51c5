// catalog-lint is a custom static analyzer for catalog-review conventions.
package main

import (
	"golang.org/x/tools/go/analysis/multichecker"

	"github.com/ersonp/catalog-review/tools/catalog-lint/analyzers"
)

func main() {
	multichecker.Main(analyzers.All()...)
}
