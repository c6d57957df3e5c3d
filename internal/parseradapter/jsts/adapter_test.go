package jsts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polyglotdex/polyglotdex/internal/parseradapter"
	"github.com/polyglotdex/polyglotdex/pkg/models"
)

func TestParseExtractsFunctionClassAndCalls(t *testing.T) {
	src := `
import { helper } from './util';

class Greeter {
  async greet(name) {
    return helper(name);
  }
}

function standalone() {
  return 1;
}
`
	a := NewJavaScript()
	out, err := a.Parse(parseradapter.FileInput{Path: "greeter.js", Content: []byte(src)})
	require.NoError(t, err)

	var names []string
	for _, s := range out.Symbols {
		names = append(names, s.QualifiedName)
	}
	assert.Contains(t, names, "Greeter")
	assert.Contains(t, names, "Greeter::greet")
	assert.Contains(t, names, "standalone")

	var importsUtil, callsHelper bool
	for _, r := range out.Relationships {
		if r.Type == models.RelationshipImports && r.ToName == "./util" {
			importsUtil = true
		}
		if r.Type == models.RelationshipCalls && r.ToName == "helper" {
			callsHelper = true
		}
	}
	assert.True(t, importsUtil)
	assert.True(t, callsHelper)
	require.NotNil(t, out.Semantic)
}

func TestParseExtractsSpawnAsCrossLanguageCandidate(t *testing.T) {
	src := `
const { spawn } = require('child_process');

function runPythonJob() {
  spawn('entrypoint.py');
}
`
	a := NewJavaScript()
	out, err := a.Parse(parseradapter.FileInput{Path: "runner.js", Content: []byte(src)})
	require.NoError(t, err)

	var found bool
	for _, r := range out.Relationships {
		if r.Type == models.RelationshipSpawns {
			found = true
			assert.True(t, r.CrossLanguage)
			assert.Equal(t, "entrypoint.py", r.ToName)
		}
	}
	assert.True(t, found, "expected a spawns relationship for the spawn() call")
}

func TestExtensionsDistinguishJavaScriptAndTypeScript(t *testing.T) {
	js := NewJavaScript()
	ts := NewTypeScript()
	assert.Contains(t, js.Extensions(), ".js")
	assert.Contains(t, ts.Extensions(), ".ts")
	assert.Equal(t, []string{"javascript"}, js.Languages())
	assert.Equal(t, []string{"typescript"}, ts.Languages())
}
