package command_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/gyaneshwarpardhi/rxndiagram/internal/command"
	"github.com/gyaneshwarpardhi/rxndiagram/internal/diagram"
	"github.com/gyaneshwarpardhi/rxndiagram/internal/logging"
	"github.com/gyaneshwarpardhi/rxndiagram/internal/notify"
)

// counter is a trivial command over an int.
type counter struct {
	label string
	n     *int
	fail  bool
}

func (c *counter) Execute() error {
	if c.fail {
		return errors.New("refused")
	}
	*c.n++
	return nil
}

func (c *counter) Undo() error {
	*c.n--
	return nil
}

func (c *counter) Label() string { return c.label }

func TestStack_UndoRedo(t *testing.T) {
	n := 0
	s := command.NewStack(nil, 0, logging.NewNopLogger())
	assert.False(t, s.CanUndo())
	assert.False(t, s.CanRedo())
	assert.ErrorIs(t, s.Undo(), diagram.ErrInvalidState)
	assert.ErrorIs(t, s.Redo(), diagram.ErrInvalidState)

	require.NoError(t, s.Execute(&counter{label: "one", n: &n}))
	require.NoError(t, s.Execute(&counter{label: "two", n: &n}))
	assert.Equal(t, 2, n)
	assert.Equal(t, "two", s.UndoLabel())

	require.NoError(t, s.Undo())
	assert.Equal(t, 1, n)
	assert.Equal(t, "one", s.UndoLabel())
	assert.Equal(t, "two", s.RedoLabel())

	require.NoError(t, s.Redo())
	assert.Equal(t, 2, n)
	assert.False(t, s.CanRedo())
	assert.Equal(t, "", s.RedoLabel())
}

func TestStack_ExecuteTruncatesRedo(t *testing.T) {
	n := 0
	s := command.NewStack(nil, 0, nil)
	require.NoError(t, s.Execute(&counter{label: "a", n: &n}))
	require.NoError(t, s.Execute(&counter{label: "b", n: &n}))
	require.NoError(t, s.Undo())
	require.NoError(t, s.Execute(&counter{label: "c", n: &n}))

	assert.False(t, s.CanRedo())
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, "c", s.UndoLabel())
}

func TestStack_FailedExecuteNotRecorded(t *testing.T) {
	n := 0
	s := command.NewStack(nil, 0, nil)
	require.NoError(t, s.Execute(&counter{label: "a", n: &n}))
	require.NoError(t, s.Undo())

	assert.Error(t, s.Execute(&counter{label: "bad", n: &n, fail: true}))
	assert.True(t, s.CanRedo(), "redo tail survives a failed execute")
	assert.Equal(t, "a", s.RedoLabel())
	assert.ErrorIs(t, s.Execute(nil), diagram.ErrInvalidOperation)
}

func TestStack_Limit(t *testing.T) {
	n := 0
	s := command.NewStack(nil, 2, nil)
	for _, l := range []string{"a", "b", "c"} {
		require.NoError(t, s.Execute(&counter{label: l, n: &n}))
	}
	assert.Equal(t, 2, s.Len())
	require.NoError(t, s.Undo())
	require.NoError(t, s.Undo())
	assert.False(t, s.CanUndo())
	assert.Equal(t, 1, n)

	// Shrinking with only a redo tail keeps its first entries.
	s.SetLimit(1)
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, "b", s.RedoLabel())
}

func TestStack_SetLimitDropsOldest(t *testing.T) {
	n := 0
	s := command.NewStack(nil, 0, nil)
	for _, l := range []string{"a", "b", "c", "d"} {
		require.NoError(t, s.Execute(&counter{label: l, n: &n}))
	}
	require.NoError(t, s.Undo())
	s.SetLimit(2)
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, 1, s.Depth())
	assert.Equal(t, "c", s.UndoLabel())
	assert.Equal(t, "d", s.RedoLabel())
	assert.Equal(t, 2, s.Limit())
}

func TestStack_EventsAndFlush(t *testing.T) {
	n := 0
	hub := notify.NewHub()
	tap := &notify.Recorder{}
	hub.Tap(tap)
	s := command.NewStack(hub, 0, nil)

	require.NoError(t, s.Execute(&counter{label: "a", n: &n}))
	require.NoError(t, s.Undo())
	require.NoError(t, s.Redo())
	s.Flush()

	require.Len(t, tap.Events, 4)
	var ops []string
	for _, ev := range tap.Events {
		assert.Equal(t, notify.PropCommandStack, ev.Property)
		ops = append(ops, ev.NewValue.(command.StackChange).Op)
	}
	assert.Equal(t, []string{command.OpExecute, command.OpUndo, command.OpRedo, command.OpFlush}, ops)
	assert.Equal(t, command.StackChange{Op: command.OpUndo, Label: "a", CanRedo: true}, tap.Events[1].NewValue)
	assert.False(t, s.CanUndo())
	assert.Equal(t, 1, n, "flush leaves the model alone")
}

func TestStack_LogsListenerFailure(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	s := command.NewStack(nil, 0, logging.NewLoggerFromCore(core))
	s.Notifier().SubscribeFunc(func(notify.Event) error { return errors.New("view gone") })

	n := 0
	require.NoError(t, s.Execute(&counter{label: "a", n: &n}))
	assert.Equal(t, 1, logs.FilterMessage("command stack listener failed").Len())
	assert.Equal(t, 1, logs.FilterMessage("command executed").Len())
}
