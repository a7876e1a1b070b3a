package core_test

import (
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const modulePath = "github.com/leapstack-labs/funcsql"

// packageImports returns the module-local imports of the non-test files in
// dir, keyed by file name.
func packageImports(t *testing.T, dir string) map[string][]string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("Failed to read %s: %v", dir, err)
	}

	fset := token.NewFileSet()
	out := make(map[string][]string)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".go") || strings.HasSuffix(name, "_test.go") {
			continue
		}
		f, err := parser.ParseFile(fset, filepath.Join(dir, name), nil, parser.ImportsOnly)
		if err != nil {
			t.Errorf("Failed to parse %s: %v", name, err)
			continue
		}
		for _, imp := range f.Imports {
			path := strings.Trim(imp.Path.Value, `"`)
			if !strings.Contains(path, ".") {
				continue
			}
			out[name] = append(out[name], path)
		}
	}
	return out
}

// TestLayering verifies the compiler packages only depend downward:
// token and relation on nothing, core on those two, commands on core.
func TestLayering(t *testing.T) {
	rules := []struct {
		dir     string
		allowed []string
	}{
		{"../token", nil},
		{"../relation", nil},
		{"../format", nil},
		{".", []string{"pkg/token", "pkg/relation"}},
		{"../lexer", []string{"pkg/token"}},
		{"../commands", []string{"pkg/core", "pkg/relation", "pkg/token"}},
	}

	for _, rule := range rules {
		t.Run(rule.dir, func(t *testing.T) {
			allowed := make(map[string]bool, len(rule.allowed))
			for _, p := range rule.allowed {
				allowed[modulePath+"/"+p] = true
			}
			for file, imports := range packageImports(t, rule.dir) {
				for _, imp := range imports {
					if !allowed[imp] {
						t.Errorf("%s imports forbidden package: %s", file, imp)
					}
				}
			}
		})
	}
}

// TestPkgDoesNotImportInternal verifies no library package depends on the
// command-line tree.
func TestPkgDoesNotImportInternal(t *testing.T) {
	err := filepath.WalkDir("..", func(path string, d os.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return err
		}
		for file, imports := range packageImports(t, path) {
			for _, imp := range imports {
				if strings.HasPrefix(imp, modulePath+"/internal/") {
					t.Errorf("%s: %s imports %s", path, file, imp)
				}
			}
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}
