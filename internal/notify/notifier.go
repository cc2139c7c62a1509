package notify

import (
	"fmt"
	"reflect"

	"go.uber.org/multierr"
)

// Listener receives change events. Listeners must not mutate the model they
// observe; the Hub rejects such mutations while a dispatch is running.
type Listener interface {
	PropertyChanged(ev Event) error
}

type funcListener struct {
	fn func(Event) error
}

func (f *funcListener) PropertyChanged(ev Event) error { return f.fn(ev) }

// Notifier dispatches property changes of one entity to its listeners,
// synchronously and in subscription order.
type Notifier struct {
	source    string
	hub       *Hub
	listeners []Listener
}

// New creates a Notifier for the entity identified by source. A nil hub gives
// the notifier a private one.
func New(source string, hub *Hub) *Notifier {
	if hub == nil {
		hub = NewHub()
	}
	return &Notifier{source: source, hub: hub}
}

// Source returns the id of the entity this notifier belongs to.
func (n *Notifier) Source() string { return n.source }

// Hub returns the hub shared by every notifier of the same model.
func (n *Notifier) Hub() *Hub { return n.hub }

// Subscribe appends l to the listener list. Subscribing twice delivers twice.
func (n *Notifier) Subscribe(l Listener) {
	n.listeners = append(n.listeners, l)
}

// SubscribeFunc subscribes fn and returns the handle to pass to Unsubscribe.
func (n *Notifier) SubscribeFunc(fn func(Event) error) Listener {
	l := &funcListener{fn: fn}
	n.Subscribe(l)
	return l
}

// Unsubscribe removes the first registration of l. Unknown listeners are
// ignored, as are listeners whose type cannot be compared; subscribe a
// pointer to be able to remove it later.
func (n *Notifier) Unsubscribe(l Listener) {
	for i, cur := range n.listeners {
		if sameListener(cur, l) {
			n.listeners = append(n.listeners[:i:i], n.listeners[i+1:]...)
			return
		}
	}
}

// Len returns the number of current subscriptions.
func (n *Notifier) Len() int { return len(n.listeners) }

// Notify delivers one event to every current listener and then to the hub
// taps. Every listener is attempted; failures (errors or panics) are returned
// combined once all of them ran.
func (n *Notifier) Notify(property string, oldValue, newValue interface{}) error {
	ev := newEvent(n.source, property, oldValue, newValue)

	// Listeners may unsubscribe while we iterate.
	listeners := make([]Listener, len(n.listeners))
	copy(listeners, n.listeners)

	n.hub.enter()
	defer n.hub.leave()

	var errs error
	for _, l := range listeners {
		errs = multierr.Append(errs, deliver(l, ev))
	}
	for _, l := range n.hub.tapList() {
		errs = multierr.Append(errs, deliver(l, ev))
	}
	return errs
}

// sameListener is l == other without the runtime panic on uncomparable
// dynamic types.
func sameListener(l, other Listener) bool {
	if l == nil || other == nil {
		return l == nil && other == nil
	}
	t := reflect.TypeOf(l)
	if t != reflect.TypeOf(other) || !t.Comparable() {
		return false
	}
	return l == other
}

func deliver(l Listener, ev Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("listener panic on %q: %v", ev.Property, r)
		}
	}()
	if err := l.PropertyChanged(ev); err != nil {
		return fmt.Errorf("listener on %q: %w", ev.Property, err)
	}
	return nil
}
