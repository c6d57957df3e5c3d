package dispatch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polyglotdex/polyglotdex/internal/discovery"
	"github.com/polyglotdex/polyglotdex/internal/parseradapter"
)

type fakeAdapter struct {
	fail    map[string]bool
	slow    map[string]time.Duration
	symbols int
}

func (f *fakeAdapter) Initialize() error    { return nil }
func (f *fakeAdapter) Languages() []string  { return []string{"fake"} }
func (f *fakeAdapter) Extensions() []string { return []string{".fk"} }
func (f *fakeAdapter) Parse(input parseradapter.FileInput) (parseradapter.ParseOutput, error) {
	if f.fail[input.Path] {
		return parseradapter.ParseOutput{}, errors.New("fake parse failure")
	}
	if d, ok := f.slow[input.Path]; ok {
		time.Sleep(d)
	}
	syms := make([]parseradapter.SymbolInfo, f.symbols)
	return parseradapter.ParseOutput{Symbols: syms}, nil
}

func writeFiles(t *testing.T, root string, names ...string) []discovery.DiscoveredFile {
	t.Helper()
	var files []discovery.DiscoveredFile
	for _, n := range names {
		p := filepath.Join(root, n)
		require.NoError(t, os.WriteFile(p, []byte("content"), 0o644))
		files = append(files, discovery.DiscoveredFile{AbsPath: p, RelPath: n})
	}
	return files
}

func TestRunCollectsResultsAndPerFileErrors(t *testing.T) {
	root := t.TempDir()
	files := writeFiles(t, root, "a.fk", "bad.fk", "b.fk")

	adapter := &fakeAdapter{fail: map[string]bool{filepath.Join(root, "bad.fk"): true}, symbols: 2}
	reg := parseradapter.NewRegistry()
	reg.Register(adapter)

	d := New(reg, Options{Parallelism: 2})
	results, errs, err := d.Run(context.Background(), files)
	require.NoError(t, err)

	assert.Len(t, results, 2)
	require.Len(t, errs, 1)
	assert.Equal(t, "bad.fk", errs[0].Path)
}

func TestRunReportsProgress(t *testing.T) {
	root := t.TempDir()
	files := writeFiles(t, root, "a.fk", "b.fk", "c.fk")

	adapter := &fakeAdapter{}
	reg := parseradapter.NewRegistry()
	reg.Register(adapter)

	var seen int
	d := New(reg, Options{Parallelism: 1, OnProgress: func(done, total int, path string) {
		seen++
		assert.Equal(t, 3, total)
	}})

	_, _, err := d.Run(context.Background(), files)
	require.NoError(t, err)
	assert.Equal(t, 3, seen)
}

func TestRunHonorsFileTimeout(t *testing.T) {
	root := t.TempDir()
	files := writeFiles(t, root, "slow.fk")

	adapter := &fakeAdapter{slow: map[string]time.Duration{filepath.Join(root, "slow.fk"): 50 * time.Millisecond}}
	reg := parseradapter.NewRegistry()
	reg.Register(adapter)

	d := New(reg, Options{Parallelism: 1, FileTimeout: 5 * time.Millisecond})
	_, errs, err := d.Run(context.Background(), files)
	require.NoError(t, err)
	require.Len(t, errs, 1)
}

func TestRunDefaultsParallelism(t *testing.T) {
	d := New(parseradapter.NewRegistry(), Options{})
	assert.Equal(t, 4, d.opts.Parallelism)
}
