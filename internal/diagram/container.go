package diagram

import "github.com/gyaneshwarpardhi/rxndiagram/internal/notify"

// Container owns the ordered top-level nodes of a diagram. It never touches
// connections; detaching them is the caller's job.
type Container struct {
	children []NodeID
	d        *Diagram
	notifier *notify.Notifier
}

// Notifier returns the change notifier of the container.
func (c *Container) Notifier() *notify.Notifier { return c.notifier }

// AddChild appends n.
func (c *Container) AddChild(n *Node) error {
	return c.InsertChild(len(c.children), n)
}

// InsertChild puts n at index i, clamped to the valid range. Undo uses it to
// restore a node at its original position.
func (c *Container) InsertChild(i int, n *Node) error {
	if err := c.d.checkMutable(); err != nil {
		return err
	}
	if n == nil || n.d != c.d {
		return Errorf(KindInvalidOperation, "add child: node does not belong to diagram %s", c.d.id)
	}
	if c.IndexOf(n.id) >= 0 {
		return Errorf(KindDuplicateEntity, "node %s is already a child", n.id)
	}
	if i < 0 {
		i = 0
	}
	if i > len(c.children) {
		i = len(c.children)
	}
	c.children = append(c.children, "")
	copy(c.children[i+1:], c.children[i:])
	c.children[i] = n.id
	c.d.report(c.notifier.Notify(notify.PropChildAdded, nil, n.id))
	return nil
}

// RemoveChild removes n.
func (c *Container) RemoveChild(n *Node) error {
	if err := c.d.checkMutable(); err != nil {
		return err
	}
	if n == nil {
		return Errorf(KindNotFound, "remove child: nil node")
	}
	i := c.IndexOf(n.id)
	if i < 0 {
		return Errorf(KindNotFound, "node %s is not a child", n.id)
	}
	c.children = append(c.children[:i:i], c.children[i+1:]...)
	c.d.report(c.notifier.Notify(notify.PropChildRemoved, n.id, nil))
	return nil
}

// Children returns the child ids in order.
func (c *Container) Children() []NodeID {
	out := make([]NodeID, len(c.children))
	copy(out, c.children)
	return out
}

// IndexOf returns the position of id, or -1.
func (c *Container) IndexOf(id NodeID) int {
	for i, cur := range c.children {
		if cur == id {
			return i
		}
	}
	return -1
}

func (c *Container) Contains(id NodeID) bool { return c.IndexOf(id) >= 0 }
func (c *Container) Len() int                { return len(c.children) }
