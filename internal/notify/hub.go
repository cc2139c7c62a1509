package notify

// Hub is shared by all notifiers of one model. It tracks whether a dispatch
// is in progress, so mutations can refuse to run from inside a listener, and
// holds taps that observe every event of the model.
type Hub struct {
	depth int
	taps  []Listener
}

// NewHub creates an idle hub.
func NewHub() *Hub { return &Hub{} }

// Dispatching reports whether any notifier of this hub is delivering an event.
func (h *Hub) Dispatching() bool { return h.depth > 0 }

// Tap registers l to receive every event raised through this hub, after the
// entity's own listeners.
func (h *Hub) Tap(l Listener) {
	h.taps = append(h.taps, l)
}

// Untap removes l. Unknown or uncomparable listeners are ignored.
func (h *Hub) Untap(l Listener) {
	for i, cur := range h.taps {
		if sameListener(cur, l) {
			h.taps = append(h.taps[:i:i], h.taps[i+1:]...)
			return
		}
	}
}

func (h *Hub) tapList() []Listener {
	out := make([]Listener, len(h.taps))
	copy(out, h.taps)
	return out
}

func (h *Hub) enter() { h.depth++ }
func (h *Hub) leave() { h.depth-- }

// Recorder is a Listener that keeps every event it sees.
type Recorder struct {
	Events []Event
}

// PropertyChanged implements Listener.
func (r *Recorder) PropertyChanged(ev Event) error {
	r.Events = append(r.Events, ev)
	return nil
}

// Properties returns the property names seen so far, in order.
func (r *Recorder) Properties() []string {
	out := make([]string, len(r.Events))
	for i, ev := range r.Events {
		out[i] = ev.Property
	}
	return out
}

// Reset drops the recorded events.
func (r *Recorder) Reset() { r.Events = nil }
