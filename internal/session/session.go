// Package session serves diagram documents. Each open document gets its own
// Session with a single worker goroutine; every request that reads or edits
// the document runs on that worker, so the model's single-thread rules hold
// no matter how many HTTP requests arrive at once.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gyaneshwarpardhi/rxndiagram/internal/command"
	"github.com/gyaneshwarpardhi/rxndiagram/internal/config"
	"github.com/gyaneshwarpardhi/rxndiagram/internal/diagram"
	"github.com/gyaneshwarpardhi/rxndiagram/internal/logging"
	"github.com/gyaneshwarpardhi/rxndiagram/internal/metrics"
	"github.com/gyaneshwarpardhi/rxndiagram/internal/notify"
	"github.com/gyaneshwarpardhi/rxndiagram/internal/selector"
)

var (
	ErrQueueFull  = errors.New("document queue full")
	ErrTimeout    = errors.New("request timed out")
	ErrClosed     = errors.New("document closed")
	ErrBadRequest = errors.New("bad request")
)

// Op names a request operation.
type Op string

const (
	OpExecute        Op = "execute"
	OpUndo           Op = "undo"
	OpRedo           Op = "redo"
	OpDeleteMatching Op = "delete-matching"
	OpSnapshot       Op = "snapshot"
)

// Request is one operation on a document.
type Request struct {
	Op         Op             `json:"op"`
	Kind       string         `json:"kind,omitempty"`
	Params     command.Params `json:"params,omitempty"`
	Expression string         `json:"expression,omitempty"`
	// WithSnapshot adds the document snapshot to the result of any op.
	WithSnapshot bool `json:"with_snapshot,omitempty"`
}

// Result is the outcome of a successful request.
type Result struct {
	Document       string            `json:"document"`
	Op             Op                `json:"op"`
	Label          string            `json:"label,omitempty"`
	Matched        []diagram.NodeID  `json:"matched,omitempty"`
	Events         []notify.Event    `json:"events"`
	ListenerErrors []string          `json:"listener_errors,omitempty"`
	CanUndo        bool              `json:"can_undo"`
	CanRedo        bool              `json:"can_redo"`
	UndoLabel      string            `json:"undo_label,omitempty"`
	RedoLabel      string            `json:"redo_label,omitempty"`
	Snapshot       *diagram.Snapshot `json:"snapshot,omitempty"`
	DurationMs     float64           `json:"duration_ms"`
}

type work struct {
	ctx context.Context
	fn  func() (*Result, error)
}

// Session owns one document: its diagram, command history and worker.
type Session struct {
	id       string
	d        *diagram.Diagram
	stack    *command.Stack
	registry *command.Registry
	events   *notify.Recorder
	pool     *workerPool[*work, *Result]
	timeout  time.Duration
	log      logging.Logger
}

func newSession(ctx context.Context, d *diagram.Diagram, reg *command.Registry, conf config.EditorConf, log logging.Logger) *Session {
	log = log.With(logging.String("document", d.ID()))
	s := &Session{
		id:       d.ID(),
		d:        d,
		stack:    command.NewStack(d.Hub(), conf.HistoryLimit, log.Named("stack")),
		registry: reg,
		events:   &notify.Recorder{},
		timeout:  time.Duration(conf.CommandTimeoutMs) * time.Millisecond,
		log:      log,
	}
	d.Hub().Tap(s.events)
	s.pool = newWorkerPool[*work, *Result](ctx, 1, conf.QueueDepth,
		func(_ context.Context, w *work) (*Result, error) {
			if err := w.ctx.Err(); err != nil {
				metrics.RequestsExpired.Inc()
				return nil, err
			}
			return w.fn()
		},
	)
	return s
}

func (s *Session) ID() string { return s.id }

// Submit runs req on the document worker and waits for its result.
func (s *Session) Submit(ctx context.Context, req Request) (*Result, error) {
	return s.run(ctx, func() (*Result, error) { return s.handle(req) })
}

// Snapshot returns the current document state.
func (s *Session) Snapshot(ctx context.Context) (*diagram.Snapshot, error) {
	res, err := s.Submit(ctx, Request{Op: OpSnapshot})
	if err != nil {
		return nil, err
	}
	return res.Snapshot, nil
}

// SetHistoryLimit changes the undo history limit of the document.
func (s *Session) SetHistoryLimit(ctx context.Context, limit int) error {
	_, err := s.run(ctx, func() (*Result, error) {
		s.stack.SetLimit(limit)
		metrics.HistoryDepth.WithLabelValues(s.id).Set(float64(s.stack.Depth()))
		return nil, nil
	})
	return err
}

// QueueUtilization returns queue used / capacity (0–1).
func (s *Session) QueueUtilization() float64 {
	if s.pool.QueueCap() == 0 {
		return 0
	}
	return float64(s.pool.QueueLen()) / float64(s.pool.QueueCap())
}

// Close stops the worker after the queued requests ran.
func (s *Session) Close() {
	s.pool.Drain()
	s.d.Hub().Untap(s.events)
	metrics.HistoryDepth.DeleteLabelValues(s.id)
}

func (s *Session) run(ctx context.Context, fn func() (*Result, error)) (*Result, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	resultC, ok := s.pool.Submit(&work{ctx: ctx, fn: fn})
	if !ok {
		if s.pool.Closed() {
			return nil, fmt.Errorf("%w: %s", ErrClosed, s.id)
		}
		metrics.RequestsDropped.Inc()
		return nil, fmt.Errorf("%w (capacity %d)", ErrQueueFull, s.pool.QueueCap())
	}
	metrics.RequestsEnqueued.Inc()

	select {
	case res := <-resultC:
		return res.value, res.err
	case <-ctx.Done():
		return nil, fmt.Errorf("%w after %v: %v", ErrTimeout, s.timeout, ctx.Err())
	}
}

// handle runs on the worker goroutine.
func (s *Session) handle(req Request) (*Result, error) {
	start := time.Now()
	s.events.Reset()
	res := &Result{Document: s.id, Op: req.Op}

	var err error
	switch req.Op {
	case OpExecute:
		err = s.execute(req, res)
	case OpUndo:
		res.Label = s.stack.UndoLabel()
		err = s.stack.Undo()
		metrics.HistoryOps.WithLabelValues(string(OpUndo), metrics.Status(err)).Inc()
	case OpRedo:
		res.Label = s.stack.RedoLabel()
		err = s.stack.Redo()
		metrics.HistoryOps.WithLabelValues(string(OpRedo), metrics.Status(err)).Inc()
	case OpDeleteMatching:
		err = s.deleteMatching(req.Expression, res)
	case OpSnapshot:
		req.WithSnapshot = true
	default:
		err = fmt.Errorf("%w: unknown operation %q", ErrBadRequest, req.Op)
	}

	res.Events = append([]notify.Event(nil), s.events.Events...)
	s.events.Reset()
	metrics.Notifications.Add(float64(len(res.Events)))
	for _, lerr := range s.d.ListenerErrors() {
		metrics.ListenerFailures.Inc()
		s.log.Warn("change listener failed", logging.Err(lerr))
		res.ListenerErrors = append(res.ListenerErrors, lerr.Error())
	}
	metrics.RequestDuration.WithLabelValues(string(req.Op)).Observe(float64(time.Since(start).Microseconds()) / 1000)
	if err != nil {
		s.log.Debug("request failed", logging.String("op", string(req.Op)), logging.Err(err))
		return nil, err
	}

	res.CanUndo, res.CanRedo = s.stack.CanUndo(), s.stack.CanRedo()
	res.UndoLabel, res.RedoLabel = s.stack.UndoLabel(), s.stack.RedoLabel()
	if req.WithSnapshot {
		res.Snapshot = s.d.Snapshot()
	}
	res.DurationMs = float64(time.Since(start).Microseconds()) / 1000
	metrics.HistoryDepth.WithLabelValues(s.id).Set(float64(s.stack.Depth()))
	return res, nil
}

func (s *Session) execute(req Request, res *Result) error {
	if req.Kind == "" {
		return fmt.Errorf("%w: command kind is required", ErrBadRequest)
	}
	cmd, err := s.registry.Build(s.d, req.Kind, req.Params)
	if err == nil {
		res.Label = cmd.Label()
		err = s.stack.Execute(cmd)
	}
	metrics.CommandsExecuted.WithLabelValues(req.Kind, metrics.Status(err)).Inc()
	if err == nil {
		s.log.Info("command executed", logging.String("kind", req.Kind), logging.String("label", res.Label))
	}
	return err
}

// deleteMatching deletes every container child the expression selects as a
// single undoable step.
func (s *Session) deleteMatching(expr string, res *Result) error {
	sel, err := selector.Compile(expr)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	ids, err := sel.Select(s.d)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	res.Matched = ids
	if len(ids) == 0 {
		return nil
	}
	compound := command.NewCompound(fmt.Sprintf("delete %d nodes matching %s", len(ids), expr))
	for _, id := range ids {
		compound.Add(command.NewDelete(s.d, id))
	}
	res.Label = compound.Label()
	err = s.stack.Execute(compound)
	metrics.CommandsExecuted.WithLabelValues(string(OpDeleteMatching), metrics.Status(err)).Inc()
	return err
}
