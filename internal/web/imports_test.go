package web

import (
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const modulePath = "releaseday/"

// importsOf collects the non-test imports of the package in dir and of every
// module package it reaches.
func importsOf(t *testing.T, dir string, seen map[string]bool, out map[string]bool) {
	t.Helper()
	if seen[dir] {
		return
	}
	seen[dir] = true

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	fset := token.NewFileSet()
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".go") || strings.HasSuffix(name, "_test.go") {
			continue
		}
		f, err := parser.ParseFile(fset, filepath.Join(dir, name), nil, parser.ImportsOnly)
		require.NoError(t, err)
		for _, imp := range f.Imports {
			path, err := strconv.Unquote(imp.Path.Value)
			require.NoError(t, err)
			out[path] = true
			if rel, ok := strings.CutPrefix(path, modulePath); ok {
				importsOf(t, filepath.Join("..", "..", rel), seen, out)
			}
		}
	}
}

func TestServerDoesNotLinkAudio(t *testing.T) {
	imports := map[string]bool{}
	importsOf(t, ".", map[string]bool{}, imports)

	require.Contains(t, imports, "releaseday/internal/display")
	for path := range imports {
		assert.False(t, strings.HasPrefix(path, "github.com/gopxl/beep"), "web reaches %s", path)
		assert.NotEqual(t, "releaseday/internal/chime", path)
	}
}
