package config

import "path/filepath"

// IndexerConfig is the per-run configuration spec.md §6 lists under
// "Configuration": one indexing run against one project tree, as opposed
// to Config's process-lifetime environment wiring (database, graph
// mirror, embedding provider, queue, object storage).
type IndexerConfig struct {
	ProjectPath string
	ProjectName string

	Languages       []string
	FilePatterns    []string
	ExcludePatterns []string

	Parallelism  int
	FileTimeout  int // seconds; 0 disables the per-file timeout
	MaxFiles     int // 0 = unlimited
	ForceReindex bool

	EnableSemanticAnalysis bool
	EnablePatternDetection bool

	DebugMode bool
}

// DefaultLanguages is spec.md §6's default language set.
var DefaultLanguages = []string{"cpp", "python", "typescript", "javascript"}

// DefaultIndexerConfig fills in every spec.md §6 default for a run rooted
// at projectPath. ProjectName defaults to the directory's base name.
func DefaultIndexerConfig(projectPath string) IndexerConfig {
	return IndexerConfig{
		ProjectPath:            projectPath,
		ProjectName:            filepath.Base(filepath.Clean(projectPath)),
		Languages:              append([]string(nil), DefaultLanguages...),
		Parallelism:            4,
		EnableSemanticAnalysis: true,
		EnablePatternDetection: true,
	}
}
