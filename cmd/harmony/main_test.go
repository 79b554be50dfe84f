package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jvdsande/harmony/internal/cli"
)

const modelsYAML = `
models:
  - name: book
    schema:
      title: string!
      author: {type: reference, of: author}
  - name: author
    schema:
      name: string
      books: {type: reversed-reference, of: book, on: author}
`

// project writes a harmony.yaml and one model file into a temp directory
// and returns the config path.
func project(t *testing.T, extra string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "models"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "models", "library.yaml"), []byte(modelsYAML), 0o644))
	config := filepath.Join(dir, "harmony.yaml")
	require.NoError(t, os.WriteFile(config, []byte("models: models/*.yaml\nadapter: memory\n"+extra), 0o644))
	return config
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestPrint(t *testing.T) {
	config := project(t, "")

	out, err := run(t, "--config", config, "print")
	require.NoError(t, err)
	assert.Contains(t, out, "scalar MemoryID")
	assert.Contains(t, out, "type Book")
	assert.NotContains(t, out, generatedHeader)

	target := filepath.Join(filepath.Dir(config), "gen", "schema.graphql")
	out, err = run(t, "--config", config, "print", "--out", target)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote "+target)
	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Contains(t, string(data), generatedHeader)
	assert.Contains(t, string(data), "type Author")
}

func TestValidate(t *testing.T) {
	out, err := run(t, "--config", project(t, ""), "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "Schema is valid. Found 2 models:")
	assert.Contains(t, out, "  - book (memory, 3 fields)")

	out, err = run(t, "--config", project(t, ""), "validate", "-q")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestGraph(t *testing.T) {
	config := project(t, "")

	out, err := run(t, "--config", config, "graph")
	require.NoError(t, err)
	assert.Contains(t, out, "digraph")
	assert.Contains(t, out, "book")

	out, err = run(t, "--config", config, "graph", "--cycles")
	require.NoError(t, err)
	assert.Contains(t, out, "author")
}

func TestGogen(t *testing.T) {
	config := project(t, "output:\n  package: api\n")

	out, err := run(t, "--config", config, "gogen")
	require.NoError(t, err)
	assert.Contains(t, out, "package api")
	assert.Contains(t, out, "type Book struct")

	dir := filepath.Join(filepath.Dir(config), "api")
	out, err = run(t, "--config", config, "gogen", "--out", dir, "--package", "models")
	require.NoError(t, err)
	assert.Contains(t, out, "Generated package models in "+dir)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.NotEmpty(t, entries)
}

func TestGQLGen(t *testing.T) {
	config := project(t, "output:\n  schema: schema.graphql\n")
	dir := filepath.Dir(config)

	_, err := run(t, "--config", config, "gqlgen")
	require.NoError(t, err)
	data, err := os.ReadFile(filepath.Join(dir, "gqlgen.yml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "MemoryID")
	assert.Contains(t, string(data), filepath.Join(dir, "schema.graphql"))
}

func TestErrors(t *testing.T) {
	_, err := run(t, "--config", "/nonexistent/harmony.yaml", "print")
	assert.Equal(t, cli.ExitConfig, cli.ExitCode(err))

	config := project(t, "")
	bad := filepath.Join(filepath.Dir(config), "models", "broken.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("models:\n  - schema: {}\n"), 0o644))
	_, err = run(t, "--config", config, "validate")
	assert.Equal(t, cli.ExitModelParse, cli.ExitCode(err))
}

func TestRelevant(t *testing.T) {
	tests := []struct {
		name string
		ev   fsnotify.Event
		want bool
	}{
		{"write", fsnotify.Event{Name: "models/a.yaml", Op: fsnotify.Write}, true},
		{"create", fsnotify.Event{Name: "models/b.yaml", Op: fsnotify.Create}, true},
		{"remove", fsnotify.Event{Name: "models/a.yaml", Op: fsnotify.Remove}, true},
		{"chmod", fsnotify.Event{Name: "models/a.yaml", Op: fsnotify.Chmod}, false},
		{"other file", fsnotify.Event{Name: "models/a.yaml.swp", Op: fsnotify.Write}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, relevant("models/*.yaml", tt.ev))
		})
	}
}
