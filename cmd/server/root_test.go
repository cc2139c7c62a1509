package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gyaneshwarpardhi/rxndiagram/internal/codec"
	"github.com/gyaneshwarpardhi/rxndiagram/internal/command"
	"github.com/gyaneshwarpardhi/rxndiagram/internal/config"
	"github.com/gyaneshwarpardhi/rxndiagram/internal/logging"
	"github.com/gyaneshwarpardhi/rxndiagram/internal/session"
)

const snapshotYAML = `id: glycolysis
nodes:
  - id: glc
    kind: molecule
  - id: r1
    kind: reaction
connections:
  - id: c1
    source: glc
    target: r1
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestValidateCommand(t *testing.T) {
	path := writeFile(t, "g.yaml", snapshotYAML)
	out, err := run(t, "validate", path)
	require.NoError(t, err)
	assert.Contains(t, out, "ok (2 nodes, 1 connections)")

	bad := writeFile(t, "bad.yaml", "id: x\nnodes: []\nconnections:\n  - id: c\n    source: ghost\n")
	_, err = run(t, "validate", bad)
	assert.Error(t, err)

	_, err = run(t, "validate")
	assert.Error(t, err)
}

func TestExportCommand(t *testing.T) {
	path := writeFile(t, "g.yaml", snapshotYAML)
	out, err := run(t, "export", path, "--format", "json")
	require.NoError(t, err)

	snap, err := codec.NewJSONCodec().Parse(bytes.NewBufferString(out))
	require.NoError(t, err)
	assert.Equal(t, "glycolysis", snap.ID)
	assert.Len(t, snap.Nodes, 2)

	_, err = run(t, "export", path, "--format", "xml")
	assert.ErrorIs(t, err, codec.ErrUnknownFormat)
}

func TestLoadConfig(t *testing.T) {
	path := writeFile(t, "server.yaml", "version: \"1\"\nlog:\n  level: warn\n  format: console\neditor:\n  history_limit: 5\n")
	loader, log, err := loadConfig(&rootOptions{configPath: path, logLevel: "debug"})
	require.NoError(t, err)
	require.NotNil(t, log)
	assert.Equal(t, 5, loader.Config().Editor.HistoryLimit)

	_, _, err = loadConfig(&rootOptions{configPath: filepath.Join(t.TempDir(), "missing.yaml")})
	assert.Error(t, err)
}

func TestSeedDocuments(t *testing.T) {
	path := writeFile(t, "g.yaml", snapshotYAML)
	docs := session.NewManager(context.Background(), command.NewBuiltinRegistry(), config.Default().Editor, logging.NewNopLogger())
	defer docs.Shutdown()

	require.NoError(t, seedDocuments(docs, []config.DocumentRef{{ID: "renamed", Path: path}, {Path: path}}))
	assert.Equal(t, []string{"glycolysis", "renamed"}, docs.List())

	err := seedDocuments(docs, []config.DocumentRef{{Path: path}})
	assert.Error(t, err, "already open")
}
