package models

import "strings"

// nativeSeparators lists the language-native scope separators adapters must
// normalize into QualifiedNameSeparator before emitting a symbol, per
// spec.md §4.1.
var nativeSeparators = []string{".", "/", "$"}

// NormalizeQualifiedName rewrites every occurrence of a language-native
// separator into the canonical "::" form. Adapters call this once, at the
// point they build a symbol's QualifiedName; it is idempotent so calling it
// twice on an already-canonical name is harmless.
func NormalizeQualifiedName(raw string) string {
	out := raw
	for _, sep := range nativeSeparators {
		out = strings.ReplaceAll(out, sep, QualifiedNameSeparator)
	}
	// collapse any doubled separators introduced by adjacent native separators
	for strings.Contains(out, QualifiedNameSeparator+QualifiedNameSeparator) {
		out = strings.ReplaceAll(out, QualifiedNameSeparator+QualifiedNameSeparator, QualifiedNameSeparator)
	}
	return strings.Trim(out, QualifiedNameSeparator)
}

// JoinQualified joins scope segments with the canonical separator, skipping
// empty segments (so an empty namespace doesn't produce a leading "::").
func JoinQualified(segments ...string) string {
	var parts []string
	for _, s := range segments {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, QualifiedNameSeparator)
}

// ShortName returns the last segment of a canonical qualified name, e.g.
// "pkg::Module::Class::method" -> "method".
func ShortName(qualifiedName string) string {
	parts := strings.Split(qualifiedName, QualifiedNameSeparator)
	return parts[len(parts)-1]
}

// ScopeOf returns everything but the last segment, e.g.
// "pkg::Module::Class::method" -> "pkg::Module::Class".
func ScopeOf(qualifiedName string) string {
	idx := strings.LastIndex(qualifiedName, QualifiedNameSeparator)
	if idx < 0 {
		return ""
	}
	return qualifiedName[:idx]
}
