package parseradapter

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Registry maps file extensions to the adapter that claims them.
type Registry struct {
	adapters map[string]Adapter // extension -> adapter
}

func NewRegistry() *Registry {
	return &Registry{adapters: make(map[string]Adapter)}
}

// Register associates every extension an adapter claims with it. Later
// registrations for the same extension win, matching the teacher's
// registry semantics.
func (r *Registry) Register(a Adapter) {
	for _, ext := range a.Extensions() {
		r.adapters[strings.ToLower(ext)] = a
	}
}

// ForFile returns the adapter registered for a path's extension, or nil.
func (r *Registry) ForFile(path string) Adapter {
	ext := strings.ToLower(filepath.Ext(path))
	return r.adapters[ext]
}

// ParseFile detects the adapter for input.Path and parses it.
func (r *Registry) ParseFile(input FileInput) (ParseOutput, error) {
	a := r.ForFile(input.Path)
	if a == nil {
		return ParseOutput{}, fmt.Errorf("no parser adapter registered for file: %s", input.Path)
	}
	return a.Parse(input)
}

// SupportedExtensions returns every extension with a registered adapter.
func (r *Registry) SupportedExtensions() []string {
	exts := make([]string, 0, len(r.adapters))
	for ext := range r.adapters {
		exts = append(exts, ext)
	}
	return exts
}
