package architecture_test

import (
	"go/parser"
	"go/token"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// Database drivers register themselves globally on import. Library
// packages must stay driver-free so callers choose what gets linked in;
// only binaries and test files may blank-import a driver.
var driverImportPaths = []string{
	"github.com/mattn/go-sqlite3",
	"github.com/duckdb/duckdb-go/v2",
}

func TestDatabaseDrivers_OnlyAtEntryPoints(t *testing.T) {
	t.Helper()

	violations := make([]string, 0)
	fset := token.NewFileSet()

	for _, root := range []string{"internal", "pkg"} {
		files, err := collectGoFiles(filepath.Join(repoRootDir(), root))
		require.NoError(t, err)

		for _, file := range files {
			if strings.HasSuffix(file, "_test.go") {
				continue
			}

			parsed, parseErr := parser.ParseFile(fset, file, nil, parser.ImportsOnly)
			require.NoErrorf(t, parseErr, "parse imports for %s", file)

			for _, imp := range parsed.Imports {
				importPath := strings.Trim(imp.Path.Value, "\"")
				for _, driver := range driverImportPaths {
					if importPath == driver {
						violations = append(violations,
							"governance: "+relToRepoRoot(file)+" imports driver "+driver+"; drivers register only in cmd binaries and test files",
						)
					}
				}
			}
		}
	}

	if len(violations) > 0 {
		sort.Strings(violations)
		t.Fatalf("%s", strings.Join(violations, "\n"))
	}
}
