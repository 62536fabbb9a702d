package domain

import (
	"sort"
	"strings"
	"testing"

	"golang.org/x/tools/go/packages"
)

// TestDomainDoesNotImportInternal keeps the record types and persistence
// contracts free of any implementation package.
func TestDomainDoesNotImportInternal(t *testing.T) {
	cfg := &packages.Config{Mode: packages.NeedName | packages.NeedImports | packages.NeedDeps}
	pkgs, err := packages.Load(cfg, "resourcecatalog/pkg/domain")
	if err != nil {
		t.Fatalf("load packages: %v", err)
	}
	if len(pkgs) != 1 {
		t.Fatalf("expected one package, got %d", len(pkgs))
	}
	var violations []string
	seen := map[string]bool{}
	var walk func(p *packages.Package)
	walk = func(p *packages.Package) {
		for path, dep := range p.Imports {
			if seen[path] {
				continue
			}
			seen[path] = true
			if strings.HasPrefix(path, "resourcecatalog/internal/") {
				violations = append(violations, path)
			}
			walk(dep)
		}
	}
	walk(pkgs[0])
	sort.Strings(violations)
	for _, v := range violations {
		t.Errorf("domain package must not depend on %s", v)
	}
}
