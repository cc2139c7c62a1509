package diagram

import (
	"fmt"

	"go.uber.org/multierr"
)

// Check verifies the structural invariants of d:
//   - container children are registered and unique
//   - every attached endpoint names a registered node whose list for that
//     end holds the connection exactly once
//   - every node list entry names a connection whose endpoint is that node
//
// It returns nil for a consistent diagram, otherwise every violation found.
func (d *Diagram) Check() error {
	var errs error
	seen := make(map[NodeID]bool, len(d.contents.children))
	for _, id := range d.contents.children {
		if d.nodes[id] == nil {
			errs = multierr.Append(errs, fmt.Errorf("child %s is not registered", id))
		}
		if seen[id] {
			errs = multierr.Append(errs, fmt.Errorf("child %s appears twice", id))
		}
		seen[id] = true
	}

	for _, cid := range d.connOrder {
		c := d.conns[cid]
		for _, end := range []End{SourceEnd, TargetEnd} {
			nid := c.Endpoint(end)
			if nid == "" {
				continue
			}
			n := d.nodes[nid]
			if n == nil {
				errs = multierr.Append(errs, fmt.Errorf("connection %s: %s %s is not registered", cid, end, nid))
				continue
			}
			if got := count(*n.list(end), cid); got != 1 {
				errs = multierr.Append(errs, fmt.Errorf("connection %s: listed %d times in %s connections of %s", cid, got, end, nid))
			}
		}
	}

	for _, nid := range d.nodeOrder {
		n := d.nodes[nid]
		for _, end := range []End{SourceEnd, TargetEnd} {
			for _, cid := range *n.list(end) {
				c := d.conns[cid]
				if c == nil {
					errs = multierr.Append(errs, fmt.Errorf("node %s: unknown %s connection %s", nid, end, cid))
					continue
				}
				if c.Endpoint(end) != nid {
					errs = multierr.Append(errs, fmt.Errorf("node %s: lists %s as %s connection but its %s is %q", nid, cid, end, end, c.Endpoint(end)))
				}
			}
		}
	}
	return errs
}

func count(ids []ConnID, id ConnID) int {
	n := 0
	for _, cur := range ids {
		if cur == id {
			n++
		}
	}
	return n
}
