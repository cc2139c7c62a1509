package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gyaneshwarpardhi/rxndiagram/internal/diagram"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleDiagram(t *testing.T) *diagram.Diagram {
	t.Helper()
	d, err := diagram.Build(&diagram.Snapshot{
		ID: "tca",
		Nodes: []diagram.NodeState{
			{ID: "oaa", Kind: diagram.KindMolecule, Attributes: diagram.Attributes{"label": "oxaloacetate"}, Bounds: diagram.Bounds{X: 1, Y: 2, Width: 30, Height: 15}},
			{ID: "r1", Kind: diagram.KindReaction},
			{ID: "cit", Kind: diagram.KindMolecule, Attributes: diagram.Attributes{"label": "citrate", "charge": -3.0}},
		},
		Connections: []diagram.ConnectionState{
			{ID: "c2", Source: "r1", Target: "cit"},
			{ID: "c1", Source: "oaa", Target: "r1", Bendpoints: []diagram.Point{{X: 10, Y: 10}}, Attributes: diagram.Attributes{"stoichiometry": 1.0}},
			{ID: "dangling", Source: "cit"},
		},
	})
	require.NoError(t, err)
	return d
}

func TestSaveLoad(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	d := sampleDiagram(t)

	rev, err := s.Save(ctx, d.Snapshot())
	require.NoError(t, err)
	assert.Equal(t, int64(1), rev)

	loaded, err := s.Load(ctx, "tca")
	require.NoError(t, err)
	rebuilt, err := diagram.Build(loaded)
	require.NoError(t, err)
	assert.Equal(t, d.Snapshot(), rebuilt.Snapshot())
	assert.Equal(t, []diagram.ConnID{"c1"}, rebuilt.Node("r1").TargetConnections())
	assert.Equal(t, diagram.NodeID(""), rebuilt.Connection("dangling").Target())
}

func TestSaveLoad_KeepsListOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	d := sampleDiagram(t)

	// Registration order is c2, c1, dangling; the moves put dangling first.
	r1 := d.Node("r1")
	dangling := d.Connection("dangling")
	require.NoError(t, dangling.DetachSource())
	require.NoError(t, dangling.AttachSource(r1))
	c2 := d.Connection("c2")
	require.NoError(t, c2.DetachSource())
	require.NoError(t, c2.AttachSource(r1))
	require.Equal(t, []diagram.ConnID{"dangling", "c2"}, r1.SourceConnections())

	_, err := s.Save(ctx, d.Snapshot())
	require.NoError(t, err)
	loaded, err := s.Load(ctx, "tca")
	require.NoError(t, err)
	rebuilt, err := diagram.Build(loaded)
	require.NoError(t, err)
	assert.Equal(t, []diagram.ConnID{"dangling", "c2"}, rebuilt.Node("r1").SourceConnections())
	assert.Equal(t, d.Snapshot(), rebuilt.Snapshot())
}

func TestSaveReplacesAndBumpsRevision(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	d := sampleDiagram(t)

	_, err := s.Save(ctx, d.Snapshot())
	require.NoError(t, err)

	require.NoError(t, d.Contents().RemoveChild(d.Node("oaa")))
	rev, err := s.Save(ctx, d.Snapshot())
	require.NoError(t, err)
	assert.Equal(t, int64(2), rev)

	loaded, err := s.Load(ctx, "tca")
	require.NoError(t, err)
	require.Len(t, loaded.Nodes, 2)
	assert.Equal(t, diagram.NodeID("r1"), loaded.Nodes[0].ID)
}

func TestListAndDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	_, err := s.Save(ctx, sampleDiagram(t).Snapshot())
	require.NoError(t, err)
	_, err = s.Save(ctx, &diagram.Snapshot{ID: "empty"})
	require.NoError(t, err)

	docs, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, DocumentInfo{ID: "empty", Revision: 1, UpdatedAt: fixed}, docs[0])
	assert.Equal(t, "tca", docs[1].ID)
	assert.Equal(t, 3, docs[1].Nodes)
	assert.Equal(t, 3, docs[1].Connections)

	require.NoError(t, s.Delete(ctx, "tca"))
	assert.ErrorIs(t, s.Delete(ctx, "tca"), diagram.ErrNotFound)
	_, err = s.Load(ctx, "tca")
	assert.ErrorIs(t, err, diagram.ErrNotFound)

	docs, err = s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}

func TestSaveRejectsAnonymousSnapshot(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Save(context.Background(), &diagram.Snapshot{})
	assert.ErrorIs(t, err, diagram.ErrInvalidOperation)
}

func TestFileDatabasePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "diagrams.db")
	s, err := New(path)
	require.NoError(t, err)
	_, err = s.Save(context.Background(), sampleDiagram(t).Snapshot())
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = New(path)
	require.NoError(t, err)
	defer s.Close()
	loaded, err := s.Load(context.Background(), "tca")
	require.NoError(t, err)
	assert.Len(t, loaded.Connections, 3)
}
