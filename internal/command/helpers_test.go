package command_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gyaneshwarpardhi/rxndiagram/internal/diagram"
)

// build creates a diagram holding nodes in order and connections given as
// {id, source, target} with either endpoint possibly empty.
func build(t *testing.T, nodes []string, conns ...[3]string) *diagram.Diagram {
	t.Helper()
	s := &diagram.Snapshot{ID: "doc"}
	for _, id := range nodes {
		s.Nodes = append(s.Nodes, diagram.NodeState{ID: diagram.NodeID(id), Kind: diagram.KindMolecule})
	}
	for _, c := range conns {
		s.Connections = append(s.Connections, diagram.ConnectionState{
			ID:     diagram.ConnID(c[0]),
			Source: diagram.NodeID(c[1]),
			Target: diagram.NodeID(c[2]),
		})
	}
	d, err := diagram.Build(s)
	require.NoError(t, err)
	return d
}

// state is everything a delete/undo round trip must preserve.
type state struct {
	snapshot *diagram.Snapshot
	lists    map[diagram.NodeID][2][]diagram.ConnID
}

func capture(d *diagram.Diagram) state {
	st := state{snapshot: d.Snapshot(), lists: map[diagram.NodeID][2][]diagram.ConnID{}}
	for _, n := range d.Children() {
		st.lists[n.ID()] = [2][]diagram.ConnID{n.SourceConnections(), n.TargetConnections()}
	}
	return st
}
