// Package command implements reversible edits of a diagram and the linear
// undo/redo history that applies them.
package command

import "github.com/gyaneshwarpardhi/rxndiagram/internal/diagram"

// Command is one reversible edit. A command starts idle; Execute moves it to
// executed and Undo back to idle, so a stack may execute it again on redo.
type Command interface {
	Execute() error
	Undo() error
	Label() string
}

// lifecycle guards the idle/executed state machine shared by all commands.
type lifecycle struct {
	executed bool
}

func (l *lifecycle) canExecute(label string) error {
	if l.executed {
		return diagram.Errorf(diagram.KindInvalidState, "%s: already executed", label)
	}
	return nil
}

func (l *lifecycle) canUndo(label string) error {
	if !l.executed {
		return diagram.Errorf(diagram.KindInvalidState, "%s: not executed", label)
	}
	return nil
}
