package session

import (
	"context"
	"sort"
	"sync"

	"github.com/gyaneshwarpardhi/rxndiagram/internal/command"
	"github.com/gyaneshwarpardhi/rxndiagram/internal/config"
	"github.com/gyaneshwarpardhi/rxndiagram/internal/diagram"
	"github.com/gyaneshwarpardhi/rxndiagram/internal/logging"
	"github.com/gyaneshwarpardhi/rxndiagram/internal/metrics"
)

// Manager owns the open documents by id.
type Manager struct {
	ctx      context.Context
	registry *command.Registry
	log      logging.Logger

	mu       sync.RWMutex
	conf     config.EditorConf
	sessions map[string]*Session
}

// NewManager creates a Manager. Session workers stop when ctx is cancelled.
func NewManager(ctx context.Context, reg *command.Registry, conf config.EditorConf, log logging.Logger) *Manager {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Manager{
		ctx:      ctx,
		registry: reg,
		log:      log,
		conf:     conf,
		sessions: make(map[string]*Session),
	}
}

// Open starts a session for the document described by snap. A nil snapshot
// opens an empty document with a fresh id.
func (m *Manager) Open(snap *diagram.Snapshot) (*Session, error) {
	var (
		d   *diagram.Diagram
		err error
	)
	if snap == nil {
		d = diagram.New("")
	} else if d, err = diagram.Build(snap); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.sessions[d.ID()]; exists {
		return nil, diagram.Errorf(diagram.KindDuplicateEntity, "document %s is already open", d.ID())
	}
	s := newSession(m.ctx, d, m.registry, m.conf, m.log)
	m.sessions[d.ID()] = s
	metrics.OpenDocuments.Set(float64(len(m.sessions)))
	m.log.Info("document opened",
		logging.String("document", d.ID()),
		logging.Int("nodes", d.Contents().Len()),
		logging.Int("connections", len(d.Connections())))
	return s, nil
}

// Get returns the session of document id.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, diagram.Errorf(diagram.KindNotFound, "document %s", id)
	}
	return s, nil
}

// List returns the ids of the open documents, sorted.
func (m *Manager) List() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Close stops and forgets document id.
func (m *Manager) Close(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
		metrics.OpenDocuments.Set(float64(len(m.sessions)))
	}
	m.mu.Unlock()
	if !ok {
		return diagram.Errorf(diagram.KindNotFound, "document %s", id)
	}
	s.Close()
	m.log.Info("document closed", logging.String("document", id))
	return nil
}

// SetHistoryLimit applies a new history limit to every open document and
// to documents opened later.
func (m *Manager) SetHistoryLimit(ctx context.Context, limit int) {
	m.mu.Lock()
	m.conf.HistoryLimit = limit
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.mu.Unlock()

	for _, s := range sessions {
		if err := s.SetHistoryLimit(ctx, limit); err != nil {
			m.log.Warn("history limit not applied", logging.String("document", s.ID()), logging.Err(err))
		}
	}
}

// QueueUtilization returns the highest queue utilization across documents.
func (m *Manager) QueueUtilization() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	highest := 0.0
	for _, s := range m.sessions {
		if u := s.QueueUtilization(); u > highest {
			highest = u
		}
	}
	metrics.QueueUtilization.Set(highest)
	return highest
}

// Shutdown closes every session.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()
	for _, s := range sessions {
		s.Close()
	}
	metrics.OpenDocuments.Set(0)
}

// CommandKinds lists the command kinds requests may execute.
func (m *Manager) CommandKinds() []string {
	return m.registry.Kinds()
}
