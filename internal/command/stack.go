package command

import (
	"github.com/gyaneshwarpardhi/rxndiagram/internal/diagram"
	"github.com/gyaneshwarpardhi/rxndiagram/internal/logging"
	"github.com/gyaneshwarpardhi/rxndiagram/internal/notify"
)

// Stack operations reported in StackChange.
const (
	OpExecute = "execute"
	OpUndo    = "undo"
	OpRedo    = "redo"
	OpFlush   = "flush"
)

// StackChange is the new value of a "commandStack" event.
type StackChange struct {
	Op      string `json:"op"`
	Label   string `json:"label,omitempty"`
	CanUndo bool   `json:"can_undo"`
	CanRedo bool   `json:"can_redo"`
}

// Stack is a linear command history. Commands before the cursor are done and
// may be undone; commands after it were undone and may be redone. Executing a
// new command drops the redo tail. With a limit > 0 the oldest commands are
// forgotten once the history grows past it.
type Stack struct {
	history  []Command
	cursor   int
	limit    int
	notifier *notify.Notifier
	log      logging.Logger
}

// NewStack creates an empty stack. Its notifier uses hub, so taps on the
// diagram's hub see stack events too; a nil hub gives it a private one.
func NewStack(hub *notify.Hub, limit int, log logging.Logger) *Stack {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Stack{
		limit:    limit,
		notifier: notify.New("commandStack", hub),
		log:      log,
	}
}

// Notifier returns the notifier raising "commandStack" events.
func (s *Stack) Notifier() *notify.Notifier { return s.notifier }

// Execute runs cmd and records it. A command that fails is not recorded and
// the history is left as it was.
func (s *Stack) Execute(cmd Command) error {
	if cmd == nil {
		return diagram.Errorf(diagram.KindInvalidOperation, "nil command")
	}
	if err := cmd.Execute(); err != nil {
		s.log.Debug("command failed", logging.String("label", cmd.Label()), logging.Err(err))
		return err
	}
	for i := s.cursor; i < len(s.history); i++ {
		s.history[i] = nil
	}
	s.history = append(s.history[:s.cursor], cmd)
	s.cursor++
	s.trim()
	s.log.Debug("command executed", logging.String("label", cmd.Label()), logging.Int("depth", s.cursor))
	s.fire(OpExecute, cmd.Label())
	return nil
}

// Undo reverts the most recent done command.
func (s *Stack) Undo() error {
	if !s.CanUndo() {
		return diagram.Errorf(diagram.KindInvalidState, "nothing to undo")
	}
	cmd := s.history[s.cursor-1]
	if err := cmd.Undo(); err != nil {
		s.log.Warn("undo failed", logging.String("label", cmd.Label()), logging.Err(err))
		return err
	}
	s.cursor--
	s.log.Debug("command undone", logging.String("label", cmd.Label()), logging.Int("depth", s.cursor))
	s.fire(OpUndo, cmd.Label())
	return nil
}

// Redo executes again the most recently undone command.
func (s *Stack) Redo() error {
	if !s.CanRedo() {
		return diagram.Errorf(diagram.KindInvalidState, "nothing to redo")
	}
	cmd := s.history[s.cursor]
	if err := cmd.Execute(); err != nil {
		s.log.Warn("redo failed", logging.String("label", cmd.Label()), logging.Err(err))
		return err
	}
	s.cursor++
	s.log.Debug("command redone", logging.String("label", cmd.Label()), logging.Int("depth", s.cursor))
	s.fire(OpRedo, cmd.Label())
	return nil
}

func (s *Stack) CanUndo() bool { return s.cursor > 0 }
func (s *Stack) CanRedo() bool { return s.cursor < len(s.history) }

// UndoLabel is the label of the command Undo would revert, or "".
func (s *Stack) UndoLabel() string {
	if !s.CanUndo() {
		return ""
	}
	return s.history[s.cursor-1].Label()
}

// RedoLabel is the label of the command Redo would run, or "".
func (s *Stack) RedoLabel() string {
	if !s.CanRedo() {
		return ""
	}
	return s.history[s.cursor].Label()
}

// Depth returns the number of commands that can be undone.
func (s *Stack) Depth() int { return s.cursor }

// Len returns the number of commands in the history.
func (s *Stack) Len() int { return len(s.history) }

// Flush forgets the whole history without touching the diagram.
func (s *Stack) Flush() {
	s.history = nil
	s.cursor = 0
	s.fire(OpFlush, "")
}

// Limit returns the history limit; 0 means unbounded.
func (s *Stack) Limit() int { return s.limit }

// SetLimit changes the history limit and drops the oldest commands if the
// history is already longer.
func (s *Stack) SetLimit(limit int) {
	s.limit = limit
	s.trim()
}

func (s *Stack) trim() {
	if s.limit <= 0 {
		return
	}
	// Oldest done commands go first, then the far end of the redo tail.
	if over := len(s.history) - s.limit; over > 0 {
		drop := over
		if drop > s.cursor {
			drop = s.cursor
		}
		s.history = append([]Command(nil), s.history[drop:]...)
		s.cursor -= drop
	}
	if len(s.history) > s.limit {
		s.history = s.history[:s.limit]
	}
}

func (s *Stack) fire(op, label string) {
	change := StackChange{Op: op, Label: label, CanUndo: s.CanUndo(), CanRedo: s.CanRedo()}
	if err := s.notifier.Notify(notify.PropCommandStack, nil, change); err != nil {
		s.log.Warn("command stack listener failed", logging.Err(err))
	}
}
