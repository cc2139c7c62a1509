package diagram_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gyaneshwarpardhi/rxndiagram/internal/diagram"
	"github.com/gyaneshwarpardhi/rxndiagram/internal/notify"
)

func TestNewNode_Duplicate(t *testing.T) {
	d := diagram.New("doc")
	_, err := d.NewNode(diagram.NodeSpec{ID: "A"})
	require.NoError(t, err)
	_, err = d.NewNode(diagram.NodeSpec{ID: "A"})
	assert.ErrorIs(t, err, diagram.ErrDuplicateEntity)

	_, err = d.NewConnection(diagram.ConnectionSpec{ID: "C"})
	require.NoError(t, err)
	_, err = d.NewConnection(diagram.ConnectionSpec{ID: "C"})
	assert.ErrorIs(t, err, diagram.ErrDuplicateEntity)
}

func TestNewNode_GeneratesID(t *testing.T) {
	d := diagram.New("")
	assert.NotEmpty(t, d.ID())
	n, err := d.NewNode(diagram.NodeSpec{Kind: diagram.KindReaction})
	require.NoError(t, err)
	assert.NotEmpty(t, n.ID())
	assert.Same(t, n, d.Node(n.ID()))
}

func TestLookup_NotFound(t *testing.T) {
	d := diagram.New("doc")
	_, err := d.LookupNode("missing")
	assert.ErrorIs(t, err, diagram.ErrNotFound)
	_, err = d.LookupConnection("missing")
	assert.ErrorIs(t, err, diagram.ErrNotFound)

	kind, ok := diagram.KindOf(err)
	assert.True(t, ok)
	assert.Equal(t, diagram.KindNotFound, kind)
}

func TestError_IsMatchesKindOnly(t *testing.T) {
	err := diagram.Errorf(diagram.KindInvalidState, "bad")
	assert.True(t, errors.Is(err, diagram.ErrInvalidState))
	assert.False(t, errors.Is(err, diagram.ErrNotFound))
	assert.True(t, errors.Is(diagram.ErrReentrantMutation, diagram.ErrInvalidState))
	assert.Equal(t, "invalid_state: bad", err.Error())
}

func TestReentrantMutationRejected(t *testing.T) {
	d := diagram.New("doc")
	a := newNode(t, d, "A")
	b := newNode(t, d, "B")
	c := connect(t, d, "C1", a, nil)

	var inner error
	c.Notifier().SubscribeFunc(func(ev notify.Event) error {
		inner = c.DetachSource()
		return nil
	})
	require.NoError(t, c.AttachTarget(b))

	assert.ErrorIs(t, inner, diagram.ErrReentrantMutation)
	assert.ErrorIs(t, inner, diagram.ErrInvalidState)
	assert.Equal(t, diagram.NodeID("A"), c.Source())
	assert.False(t, d.Hub().Dispatching())
	require.NoError(t, d.Check())
}

func TestListenerErrorsDoNotFailMutation(t *testing.T) {
	d := diagram.New("doc")
	d.Contents().Notifier().SubscribeFunc(func(notify.Event) error {
		return errors.New("view offline")
	})
	n, err := d.NewNode(diagram.NodeSpec{ID: "A"})
	require.NoError(t, err)

	require.NoError(t, d.Contents().AddChild(n))
	assert.True(t, d.Contents().Contains("A"))

	errs := d.ListenerErrors()
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "view offline")
	assert.Empty(t, d.ListenerErrors())
}

func TestNodeAttributesAndBounds(t *testing.T) {
	d := diagram.New("doc")
	a := newNode(t, d, "A")
	rec := &notify.Recorder{}
	a.Notifier().Subscribe(rec)

	require.NoError(t, a.SetAttribute("color", "red"))
	require.NoError(t, a.RemoveAttribute("color"))
	require.NoError(t, a.RemoveAttribute("color"))
	require.NoError(t, a.SetBounds(a.Bounds()))
	require.NoError(t, a.SetBounds(a.Bounds().Translate(5, 0)))

	assert.Equal(t, []string{notify.PropAttributes, notify.PropAttributes, notify.PropPosition}, rec.Properties())
	assert.Equal(t, diagram.Attributes{}, rec.Events[0].OldValue)
	assert.Equal(t, diagram.Attributes{"color": "red"}, rec.Events[0].NewValue)
	assert.Equal(t, 5.0, a.Bounds().X)

	attrs := a.Attributes()
	attrs["label"] = "mutated"
	assert.Equal(t, "A", a.Attributes().String("label"))
}

func TestConnections_OnlyAttached(t *testing.T) {
	d := diagram.New("doc")
	a := newNode(t, d, "A")
	connect(t, d, "C1", a, nil)
	orphan := connect(t, d, "C2", a, nil)
	require.NoError(t, orphan.DetachSource())

	var ids []diagram.ConnID
	for _, c := range d.Connections() {
		ids = append(ids, c.ID())
	}
	assert.Equal(t, []diagram.ConnID{"C1"}, ids)
}

func TestCheck_Consistent(t *testing.T) {
	d := diagram.New("doc")
	a := newNode(t, d, "A")
	b := newNode(t, d, "B")
	connect(t, d, "C1", a, b)
	connect(t, d, "C2", b, a)
	c3 := connect(t, d, "C3", a, a)
	require.NoError(t, c3.DetachTarget())
	assert.NoError(t, d.Check())
}
