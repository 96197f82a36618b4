package groundmotion

import (
	"github.com/google/uuid"
)

// ListenerID identifies a registered grounded listener.
type ListenerID uuid.UUID

func (id ListenerID) String() string {
	return uuid.UUID(id).String()
}

type groundedListener struct {
	id ListenerID
	fn func()
}

// groundedObservers is an ordered listener list; callbacks run synchronously
// in registration order. remove never reuses the backing array, so a
// callback may unregister itself.
type groundedObservers struct {
	listeners []groundedListener
}

func (o *groundedObservers) add(fn func()) ListenerID {
	id := ListenerID(uuid.New())
	o.listeners = append(o.listeners, groundedListener{id: id, fn: fn})
	return id
}

func (o *groundedObservers) remove(id ListenerID) bool {
	for i, l := range o.listeners {
		if l.id == id {
			o.listeners = append(o.listeners[:i:i], o.listeners[i+1:]...)
			return true
		}
	}
	return false
}

func (o *groundedObservers) notify() {
	for _, l := range o.listeners {
		l.fn()
	}
}
