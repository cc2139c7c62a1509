package diagram

import (
	"fmt"
	"sort"
	"strings"
)

// Snapshot is the serializable state of a diagram: container children in
// order and every connection with at least one attached end.
type Snapshot struct {
	ID          string            `json:"id" yaml:"id"`
	Nodes       []NodeState       `json:"nodes" yaml:"nodes"`
	Connections []ConnectionState `json:"connections" yaml:"connections"`
}

// NodeState is one node of a Snapshot.
type NodeState struct {
	ID         NodeID     `json:"id" yaml:"id"`
	Kind       string     `json:"kind" yaml:"kind"`
	Attributes Attributes `json:"attributes,omitempty" yaml:"attributes,omitempty"`
	Bounds     Bounds     `json:"bounds" yaml:"bounds"`
	// Sources and Targets fix the order of the node's connection lists when
	// it differs from connection order; Snapshot fills them for lists of two
	// or more entries.
	Sources    []ConnID   `json:"sources,omitempty" yaml:"sources,omitempty"`
	Targets    []ConnID   `json:"targets,omitempty" yaml:"targets,omitempty"`
}

// ConnectionState is one connection of a Snapshot.
type ConnectionState struct {
	ID         ConnID     `json:"id" yaml:"id"`
	Source     NodeID     `json:"source,omitempty" yaml:"source,omitempty"`
	Target     NodeID     `json:"target,omitempty" yaml:"target,omitempty"`
	Bendpoints []Point    `json:"bendpoints,omitempty" yaml:"bendpoints,omitempty"`
	Attributes Attributes `json:"attributes,omitempty" yaml:"attributes,omitempty"`
}

// Snapshot captures the current state of d.
func (d *Diagram) Snapshot() *Snapshot {
	s := &Snapshot{
		ID:          d.id,
		Nodes:       make([]NodeState, 0, len(d.contents.children)),
		Connections: make([]ConnectionState, 0, len(d.connOrder)),
	}
	for _, n := range d.Children() {
		s.Nodes = append(s.Nodes, NodeState{
			ID:         n.id,
			Kind:       n.kind,
			Attributes: n.attrs.Clone(),
			Bounds:     n.bounds,
			Sources:    listOrder(n.sources),
			Targets:    listOrder(n.targets),
		})
	}
	for _, c := range d.Connections() {
		s.Connections = append(s.Connections, ConnectionState{
			ID:         c.id,
			Source:     c.source,
			Target:     c.target,
			Bendpoints: clonePoints(c.bendpoints),
			Attributes: c.attrs.Clone(),
		})
	}
	return s
}

// Build creates a diagram from a snapshot. Connections are attached in
// snapshot order; a node's Sources and Targets then reorder its lists.
func Build(s *Snapshot) (*Diagram, error) {
	if err := ValidateSnapshot(s); err != nil {
		return nil, err
	}
	d := New(s.ID)
	for _, ns := range s.Nodes {
		n, err := d.NewNode(NodeSpec{ID: ns.ID, Kind: ns.Kind, Attributes: ns.Attributes, Bounds: ns.Bounds})
		if err != nil {
			return nil, fmt.Errorf("node %s: %w", ns.ID, err)
		}
		if err := d.contents.AddChild(n); err != nil {
			return nil, fmt.Errorf("node %s: %w", ns.ID, err)
		}
	}
	for _, cs := range s.Connections {
		c, err := d.NewConnection(ConnectionSpec{ID: cs.ID, Attributes: cs.Attributes, Bendpoints: cs.Bendpoints})
		if err != nil {
			return nil, fmt.Errorf("connection %s: %w", cs.ID, err)
		}
		if cs.Source != "" {
			if err := c.AttachSource(d.nodes[cs.Source]); err != nil {
				return nil, fmt.Errorf("connection %s: %w", cs.ID, err)
			}
		}
		if cs.Target != "" {
			if err := c.AttachTarget(d.nodes[cs.Target]); err != nil {
				return nil, fmt.Errorf("connection %s: %w", cs.ID, err)
			}
		}
	}
	for _, ns := range s.Nodes {
		n := d.nodes[ns.ID]
		reorder(n.sources, ns.Sources)
		reorder(n.targets, ns.Targets)
	}
	return d, nil
}

func listOrder(ids []ConnID) []ConnID {
	if len(ids) < 2 {
		return nil
	}
	return cloneIDs(ids)
}

// reorder sorts list in place by position in order. Ids missing from order
// keep their relative order after the listed ones.
func reorder(list, order []ConnID) {
	if len(order) == 0 {
		return
	}
	rank := make(map[ConnID]int, len(order))
	for i, id := range order {
		rank[id] = i
	}
	sort.SliceStable(list, func(i, j int) bool {
		ri, iok := rank[list[i]]
		rj, jok := rank[list[j]]
		if iok && jok {
			return ri < rj
		}
		return iok && !jok
	})
}

// ValidateSnapshot checks for:
//   - missing ids
//   - duplicate node or connection ids
//   - connections whose endpoints name unknown nodes, or that have no endpoint
//   - node list orders naming connections that do not end at that node
func ValidateSnapshot(s *Snapshot) error {
	if s == nil {
		return Errorf(KindInvalidOperation, "snapshot is nil")
	}
	var errs []string
	nodes := make(map[NodeID]int, len(s.Nodes))
	for i, ns := range s.Nodes {
		if ns.ID == "" {
			errs = append(errs, fmt.Sprintf("nodes[%d]: id is required", i))
			continue
		}
		if prev, ok := nodes[ns.ID]; ok {
			errs = append(errs, fmt.Sprintf("duplicate node id %q (nodes[%d] and nodes[%d])", ns.ID, prev, i))
			continue
		}
		nodes[ns.ID] = i
	}
	conns := make(map[ConnID]int, len(s.Connections))
	for i, cs := range s.Connections {
		if cs.ID == "" {
			errs = append(errs, fmt.Sprintf("connections[%d]: id is required", i))
			continue
		}
		if prev, ok := conns[cs.ID]; ok {
			errs = append(errs, fmt.Sprintf("duplicate connection id %q (connections[%d] and connections[%d])", cs.ID, prev, i))
		} else {
			conns[cs.ID] = i
		}
		if cs.Source == "" && cs.Target == "" {
			errs = append(errs, fmt.Sprintf("connection %s: no endpoint attached", cs.ID))
		}
		if _, ok := nodes[cs.Source]; cs.Source != "" && !ok {
			errs = append(errs, fmt.Sprintf("connection %s: unknown source node %q", cs.ID, cs.Source))
		}
		if _, ok := nodes[cs.Target]; cs.Target != "" && !ok {
			errs = append(errs, fmt.Sprintf("connection %s: unknown target node %q", cs.ID, cs.Target))
		}
	}
	ends := make(map[ConnID]ConnectionState, len(s.Connections))
	for _, cs := range s.Connections {
		ends[cs.ID] = cs
	}
	for _, ns := range s.Nodes {
		for _, id := range ns.Sources {
			if cs, ok := ends[id]; !ok || cs.Source != ns.ID {
				errs = append(errs, fmt.Sprintf("node %s: sources lists %q, which does not start at it", ns.ID, id))
			}
		}
		for _, id := range ns.Targets {
			if cs, ok := ends[id]; !ok || cs.Target != ns.ID {
				errs = append(errs, fmt.Sprintf("node %s: targets lists %q, which does not end at it", ns.ID, id))
			}
		}
	}
	if len(errs) > 0 {
		return Errorf(KindInvalidOperation, "snapshot validation errors:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
