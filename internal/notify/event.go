package notify

import (
	"time"

	"github.com/google/uuid"
)

// Property names carried by change events.
const (
	PropBendpoints     = "bendpoints"
	PropChildAdded     = "childAdded"
	PropChildRemoved   = "childRemoved"
	PropSourceAttached = "sourceAttached"
	PropTargetAttached = "targetAttached"
	PropSourceDetached = "sourceDetached"
	PropTargetDetached = "targetDetached"
	PropAttributes     = "attributes"
	PropPosition       = "position"
	PropCommandStack   = "commandStack"
)

// Event is a single property change raised by a model entity.
type Event struct {
	ID         string      `json:"id"`
	Property   string      `json:"property"`
	Source     string      `json:"source"` // id of the entity that changed
	OldValue   interface{} `json:"old,omitempty"`
	NewValue   interface{} `json:"new,omitempty"`
	OccurredAt time.Time   `json:"occurred_at"`
}

func newEvent(source, property string, oldValue, newValue interface{}) Event {
	return Event{
		ID:         uuid.NewString(),
		Property:   property,
		Source:     source,
		OldValue:   oldValue,
		NewValue:   newValue,
		OccurredAt: time.Now(),
	}
}
