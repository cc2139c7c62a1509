package command_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gyaneshwarpardhi/rxndiagram/internal/command"
	"github.com/gyaneshwarpardhi/rxndiagram/internal/diagram"
	"github.com/gyaneshwarpardhi/rxndiagram/internal/notify"
)

func TestDelete_DetachesAndRestores(t *testing.T) {
	d := build(t, []string{"A", "B"}, [3]string{"C1", "A", "B"})
	c1 := d.Connection("C1")

	cmd := command.NewDelete(d, "A")
	require.NoError(t, cmd.Execute())

	assert.Equal(t, []diagram.NodeID{"B"}, d.Contents().Children())
	assert.Equal(t, diagram.NodeID(""), c1.Source())
	assert.Equal(t, diagram.NodeID(""), c1.Target())
	assert.Empty(t, d.Node("B").TargetConnections())
	require.NoError(t, d.Check())

	require.NoError(t, cmd.Undo())
	assert.Equal(t, []diagram.NodeID{"A", "B"}, d.Contents().Children())
	assert.Equal(t, diagram.NodeID("A"), c1.Source())
	assert.Equal(t, diagram.NodeID("B"), c1.Target())
	require.NoError(t, d.Check())
}

func TestDelete_TwoIncidentConnections(t *testing.T) {
	d := build(t, []string{"A", "B"},
		[3]string{"C1", "A", "B"},
		[3]string{"C3", "B", "A"},
	)
	before := capture(d)

	cmd := command.NewDelete(d, "B")
	require.NoError(t, cmd.Execute())
	for _, id := range []diagram.ConnID{"C1", "C3"} {
		c := d.Connection(id)
		assert.Equal(t, diagram.NodeID(""), c.Source(), id)
		assert.Equal(t, diagram.NodeID(""), c.Target(), id)
	}
	assert.Empty(t, d.Node("A").SourceConnections())
	assert.Empty(t, d.Node("A").TargetConnections())

	require.NoError(t, cmd.Undo())
	assert.Equal(t, before, capture(d))
	assert.Equal(t, diagram.NodeID("A"), d.Connection("C1").Source())
	assert.Equal(t, diagram.NodeID("B"), d.Connection("C3").Source())
}

func TestDelete_EventOrder(t *testing.T) {
	d := build(t, []string{"A", "B"}, [3]string{"C1", "A", "B"})
	rec := &notify.Recorder{}
	d.Hub().Tap(rec)

	cmd := command.NewDelete(d, "A")
	require.NoError(t, cmd.Execute())
	assert.Equal(t, []string{
		notify.PropSourceDetached,
		notify.PropTargetDetached,
		notify.PropChildRemoved,
	}, rec.Properties())

	rec.Reset()
	require.NoError(t, cmd.Undo())
	assert.Equal(t, []string{
		notify.PropChildAdded,
		notify.PropSourceAttached,
		notify.PropTargetAttached,
	}, rec.Properties())
}

func TestDelete_SelfLoopAndHalfAttached(t *testing.T) {
	d := build(t, []string{"A", "B"},
		[3]string{"L", "A", "A"},
		[3]string{"H", "A", ""},
		[3]string{"K", "B", "A"},
	)
	require.NoError(t, d.Connection("L").SetBendpoints([]diagram.Point{{X: 4, Y: 4}}))
	before := capture(d)

	cmd := command.NewDelete(d, "A")
	require.NoError(t, cmd.Execute())
	assert.False(t, d.Connection("L").Attached())
	assert.False(t, d.Connection("H").Attached())
	assert.Equal(t, diagram.NodeID(""), d.Connection("K").Source())
	require.NoError(t, d.Check())

	require.NoError(t, cmd.Undo())
	assert.Equal(t, before, capture(d))
	assert.Equal(t, diagram.NodeID(""), d.Connection("H").Target())
	require.NoError(t, d.Check())
}

func TestDelete_Misuse(t *testing.T) {
	d := build(t, []string{"A"})
	cmd := command.NewDelete(d, "A")

	assert.ErrorIs(t, cmd.Undo(), diagram.ErrInvalidState)
	require.NoError(t, cmd.Execute())
	assert.ErrorIs(t, cmd.Execute(), diagram.ErrInvalidState)
	require.NoError(t, cmd.Undo())
	assert.ErrorIs(t, cmd.Undo(), diagram.ErrInvalidState)

	assert.ErrorIs(t, command.NewDelete(d, "missing").Execute(), diagram.ErrNotFound)

	require.NoError(t, d.Contents().RemoveChild(d.Node("A")))
	assert.ErrorIs(t, command.NewDelete(d, "A").Execute(), diagram.ErrNotFound)
}

func TestDelete_RejectedFromListener(t *testing.T) {
	d := build(t, []string{"A", "B"}, [3]string{"C1", "A", "B"})
	var inner error
	d.Node("B").Notifier().SubscribeFunc(func(notify.Event) error {
		inner = command.NewDelete(d, "A").Execute()
		return nil
	})
	require.NoError(t, d.Node("B").SetAttribute("color", "blue"))

	assert.ErrorIs(t, inner, diagram.ErrReentrantMutation)
	assert.Equal(t, []diagram.NodeID{"A", "B"}, d.Contents().Children())
	assert.Equal(t, diagram.NodeID("A"), d.Connection("C1").Source())
}

// Every node of a densely connected diagram is deleted and restored; the
// full state including list order must come back unchanged.
func TestDelete_RoundTripRestoresEverything(t *testing.T) {
	nodes := []string{"N0", "N1", "N2", "N3", "N4"}
	var conns [][3]string
	k := 0
	for i := range nodes {
		for j := range nodes {
			if (i*3+j)%4 == 0 {
				continue
			}
			conns = append(conns, [3]string{fmt.Sprintf("C%d", k), nodes[i], nodes[j]})
			k++
		}
	}
	d := build(t, nodes, conns...)
	for i, c := range d.Connections() {
		require.NoError(t, c.SetBendpoints([]diagram.Point{{X: float64(i), Y: float64(-i)}}))
	}
	before := capture(d)

	for _, id := range nodes {
		cmd := command.NewDelete(d, diagram.NodeID(id))
		require.NoError(t, cmd.Execute(), id)
		require.NoError(t, d.Check(), id)
		require.NoError(t, cmd.Undo(), id)
		require.Equal(t, before, capture(d), id)
	}

	// Deleting several nodes and undoing in reverse also round-trips.
	stack := command.NewStack(d.Hub(), 0, nil)
	for _, id := range []string{"N2", "N0", "N4"} {
		require.NoError(t, stack.Execute(command.NewDelete(d, diagram.NodeID(id))))
	}
	for stack.CanUndo() {
		require.NoError(t, stack.Undo())
	}
	assert.Equal(t, before, capture(d))
}
