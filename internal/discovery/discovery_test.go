package discovery

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polyglotdex/polyglotdex/pkg/models"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	p := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
}

func TestDiscoverAppliesPatternsAndExcludes(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/main.js", "console.log(1)")
	writeFile(t, root, "src/util.py", "x = 1")
	writeFile(t, root, "node_modules/dep/index.js", "module.exports = {}")
	writeFile(t, root, "README.md", "# hi")

	files, err := Discover(Options{RootPath: root})
	require.NoError(t, err)

	var rels []string
	for _, f := range files {
		rels = append(rels, f.RelPath)
	}
	assert.Contains(t, rels, "src/main.js")
	assert.Contains(t, rels, "src/util.py")
	assert.NotContains(t, rels, "node_modules/dep/index.js")
	assert.NotContains(t, rels, "README.md")
}

func TestDiscoverRespectsMaxFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.js", "a")
	writeFile(t, root, "b.js", "b")
	writeFile(t, root, "c.js", "c")

	files, err := Discover(Options{RootPath: root, MaxFiles: 2})
	require.NoError(t, err)
	assert.Len(t, files, 2)
}

func TestDiscoverRejectsInvalidGlob(t *testing.T) {
	root := t.TempDir()
	_, err := Discover(Options{RootPath: root, FilePatterns: []string{"[invalid"}})
	assert.Error(t, err)
}

func TestHashContentIsDeterministic(t *testing.T) {
	a := HashContent([]byte("hello"))
	b := HashContent([]byte("hello"))
	c := HashContent([]byte("world"))
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestNeedsReparse(t *testing.T) {
	assert.True(t, NeedsReparse(nil, "abc", false), "no existing record always needs parsing")

	now := time.Now()
	existing := &models.File{FileHash: "abc", LastParsed: &now}
	assert.False(t, NeedsReparse(existing, "abc", false), "unchanged hash skips reparse")
	assert.True(t, NeedsReparse(existing, "def", false), "changed hash forces reparse")
	assert.True(t, NeedsReparse(existing, "abc", true), "force_reindex always reparses")

	unparsed := &models.File{FileHash: "abc", LastParsed: nil}
	assert.True(t, NeedsReparse(unparsed, "abc", false), "never-parsed file always needs parsing")
}
