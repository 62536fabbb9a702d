package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type recordingT struct {
	testing.TB
	failed string
}

func (r *recordingT) Helper() {}
func (r *recordingT) Fatalf(format string, _ ...any) {
	r.failed = format
}

func writeSource(t *testing.T, dir, name, src string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(src), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestDirectImportViolations(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "a.go", "package tmp\nimport \"resourcecatalog/internal/infra/persistence/memory\"\nvar _ = memory.NewStore\n")
	writeSource(t, dir, "b.go", "package tmp\nimport \"fmt\"\nvar _ = fmt.Sprint\n")
	writeSource(t, dir, "c_test.go", "package tmp\nimport \"modernc.org/sqlite\"\n")
	viols, err := directImportViolations(dir, InfraImportForbidden)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(viols) != 1 || !strings.Contains(viols[0], "a.go") {
		t.Fatalf("unexpected violations %v", viols)
	}
	rec := &recordingT{}
	AssertNoDirectImports(rec, dir, SQLDriverForbidden, "test files are skipped")
	if rec.failed != "" {
		t.Fatalf("test-only imports must be ignored")
	}
	AssertNoDirectImports(rec, dir, InfraImportForbidden, "adapters use the service")
	if rec.failed == "" {
		t.Fatalf("expected violation to be reported")
	}
}

func TestTransitiveDependencyUsesGoList(t *testing.T) {
	prev := goListDeps
	t.Cleanup(func() { goListDeps = prev })
	goListDeps = func(string) ([]byte, error) {
		return []byte("fmt\nmodernc.org/sqlite\n\nresourcecatalog/pkg/domain\n"), nil
	}
	rec := &recordingT{}
	AssertNoTransitiveDependency(rec, "./...", SQLDriverForbidden, "domain stays driver free")
	if rec.failed == "" {
		t.Fatalf("expected sqlite driver to be flagged")
	}
	rec = &recordingT{}
	AssertNoTransitiveDependency(rec, "./...", InfraImportForbidden, "no infra")
	if rec.failed != "" {
		t.Fatalf("unexpected failure %s", rec.failed)
	}
}
