package diagram_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gyaneshwarpardhi/rxndiagram/internal/diagram"
)

func sampleSnapshot() *diagram.Snapshot {
	return &diagram.Snapshot{
		ID: "doc",
		Nodes: []diagram.NodeState{
			{ID: "A", Kind: diagram.KindMolecule, Bounds: diagram.Bounds{Width: 10, Height: 10}},
			{ID: "R", Kind: diagram.KindReaction, Attributes: diagram.Attributes{"label": "hydrolysis"}},
			{ID: "B", Kind: diagram.KindMolecule},
		},
		Connections: []diagram.ConnectionState{
			{ID: "C1", Source: "A", Target: "R"},
			{ID: "C2", Source: "R", Target: "B", Bendpoints: []diagram.Point{{X: 1, Y: 2}}},
			{ID: "C3", Source: "R"},
		},
	}
}

func TestBuild_RoundTrip(t *testing.T) {
	d, err := diagram.Build(sampleSnapshot())
	require.NoError(t, err)
	require.NoError(t, d.Check())

	r := d.Node("R")
	require.NotNil(t, r)
	assert.Equal(t, []diagram.ConnID{"C2", "C3"}, r.SourceConnections())
	assert.Equal(t, []diagram.ConnID{"C1"}, r.TargetConnections())
	assert.Equal(t, []diagram.Point{{X: 1, Y: 2}}, d.Connection("C2").Bendpoints())

	snap := d.Snapshot()
	assert.Equal(t, "doc", snap.ID)
	require.Len(t, snap.Nodes, 3)
	assert.Equal(t, diagram.NodeID("A"), snap.Nodes[0].ID)
	assert.Equal(t, "hydrolysis", snap.Nodes[1].Attributes.String("label"))
	require.Len(t, snap.Connections, 3)
	assert.Equal(t, diagram.NodeID(""), snap.Connections[2].Target)

	again, err := diagram.Build(snap)
	require.NoError(t, err)
	assert.Equal(t, snap, again.Snapshot())
}

func TestBuild_KeepsListOrderAfterReconnect(t *testing.T) {
	d, err := diagram.Build(sampleSnapshot())
	require.NoError(t, err)
	r := d.Node("R")

	// Moving C2's source away and back appends it behind C3.
	c2 := d.Connection("C2")
	require.NoError(t, c2.DetachSource())
	require.NoError(t, c2.AttachSource(r))
	require.Equal(t, []diagram.ConnID{"C3", "C2"}, r.SourceConnections())

	snap := d.Snapshot()
	assert.Equal(t, []diagram.ConnID{"C3", "C2"}, snap.Nodes[1].Sources)
	assert.Nil(t, snap.Nodes[1].Targets, "single-entry lists carry no order")

	again, err := diagram.Build(snap)
	require.NoError(t, err)
	assert.Equal(t, []diagram.ConnID{"C3", "C2"}, again.Node("R").SourceConnections())
	assert.Equal(t, snap, again.Snapshot())
	require.NoError(t, again.Check())
}

func TestValidateSnapshot(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(s *diagram.Snapshot)
		wantErr string
	}{
		{"valid", func(*diagram.Snapshot) {}, ""},
		{"missing node id", func(s *diagram.Snapshot) { s.Nodes[0].ID = "" }, "nodes[0]: id is required"},
		{"duplicate node", func(s *diagram.Snapshot) { s.Nodes[2].ID = "A" }, `duplicate node id "A"`},
		{"duplicate connection", func(s *diagram.Snapshot) { s.Connections[1].ID = "C1" }, `duplicate connection id "C1"`},
		{"unknown target", func(s *diagram.Snapshot) { s.Connections[0].Target = "Z" }, `unknown target node "Z"`},
		{"unknown source", func(s *diagram.Snapshot) { s.Connections[0].Source = "Z" }, `unknown source node "Z"`},
		{"no endpoint", func(s *diagram.Snapshot) { s.Connections[2].Source = "" }, "no endpoint attached"},
		{"list order", func(s *diagram.Snapshot) { s.Nodes[1].Sources = []diagram.ConnID{"C3", "C1"} }, `sources lists "C1"`},
		{"unknown in list order", func(s *diagram.Snapshot) { s.Nodes[2].Targets = []diagram.ConnID{"C9"} }, `targets lists "C9"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := sampleSnapshot()
			tt.mutate(s)
			err := diagram.ValidateSnapshot(s)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, diagram.ErrInvalidOperation)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateSnapshot_ReportsAll(t *testing.T) {
	s := sampleSnapshot()
	s.Nodes[0].ID = ""
	s.Connections[1].Target = "nowhere"
	err := diagram.ValidateSnapshot(s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "id is required")
	assert.Contains(t, err.Error(), `unknown target node "nowhere"`)
	// C1's source A no longer exists either.
	assert.Contains(t, err.Error(), `unknown source node "A"`)

	_, err = diagram.Build(s)
	assert.Error(t, err)
}
