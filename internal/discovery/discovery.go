// Package discovery walks a project tree, applies file-pattern and exclude
// globs, and gates re-parsing on content-hash changes per spec.md §4.4.
package discovery

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/polyglotdex/polyglotdex/pkg/models"
)

// DefaultExcludes mirrors spec.md §6's "defaults include dependency and
// build directories".
var DefaultExcludes = []string{
	"**/.git/**",
	"**/node_modules/**",
	"**/vendor/**",
	"**/.venv/**",
	"**/dist/**",
	"**/build/**",
	"**/target/**",
	"**/__pycache__/**",
}

// DefaultPatterns covers the default language set spec.md §6 names
// (cpp, python, typescript, javascript).
var DefaultPatterns = []string{
	"**/*.cpp", "**/*.cc", "**/*.cxx", "**/*.h", "**/*.hpp",
	"**/*.py",
	"**/*.ts", "**/*.tsx",
	"**/*.js", "**/*.jsx", "**/*.mjs", "**/*.cjs",
}

// Options configures a discovery run.
type Options struct {
	RootPath        string
	FilePatterns    []string
	ExcludePatterns []string
	MaxFiles        int // 0 = unlimited
}

// DiscoveredFile is one file found by Discover, with enough metadata for
// the incremental gate and the dispatcher to act without re-stat'ing.
type DiscoveredFile struct {
	AbsPath  string
	RelPath  string
	Size     int64
	Hash     string // sha256 of current content
}

// Discover walks opts.RootPath and returns every file matching the include
// patterns and none of the exclude patterns, up to opts.MaxFiles. A bad
// glob or unreadable root directory is a fatal discovery error per
// spec.md §7.
func Discover(opts Options) ([]DiscoveredFile, error) {
	patterns := opts.FilePatterns
	if len(patterns) == 0 {
		patterns = DefaultPatterns
	}
	excludes := opts.ExcludePatterns
	if len(excludes) == 0 {
		excludes = DefaultExcludes
	}

	for _, p := range append(append([]string{}, patterns...), excludes...) {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("discovery: invalid glob pattern %q", p)
		}
	}

	var files []DiscoveredFile
	err := filepath.Walk(opts.RootPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return fmt.Errorf("discovery: walk %s: %w", path, err)
		}
		if info.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(opts.RootPath, path)
		if err != nil {
			rel = path
		}
		rel = filepath.ToSlash(rel)

		if matchesAny(rel, excludes) {
			return nil
		}
		if !matchesAny(rel, patterns) {
			return nil
		}

		content, err := os.ReadFile(path)
		if err != nil {
			return nil // unreadable file is a per-file concern, not fatal
		}

		files = append(files, DiscoveredFile{
			AbsPath: path,
			RelPath: rel,
			Size:    info.Size(),
			Hash:    HashContent(content),
		})

		if opts.MaxFiles > 0 && len(files) >= opts.MaxFiles {
			return filepath.SkipAll
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

func matchesAny(relPath string, patterns []string) bool {
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, relPath); ok {
			return true
		}
		// plain extension patterns without a slash should also match the
		// basename, matching the teacher's "**/*.ext"-or-"*.ext" tolerance
		if !strings.Contains(p, "/") {
			if ok, _ := doublestar.Match(p, filepath.Base(relPath)); ok {
				return true
			}
		}
	}
	return false
}

// HashContent computes the file_hash spec.md §3 defines: SHA-256 of the
// file's contents.
func HashContent(content []byte) string {
	sum := sha256.Sum256(content)
	return fmt.Sprintf("%x", sum)
}

// NeedsReparse is the incremental gate: spec.md §3's invariant "a file is
// re-parsed if and only if file_hash differs from current content OR
// last_parsed is unset", with force overriding both.
func NeedsReparse(existing *models.File, currentHash string, force bool) bool {
	if force {
		return true
	}
	if existing == nil {
		return true
	}
	return existing.NeedsReparse(currentHash)
}
