package igtest

import "fmt"

// Class is the kind of resource a handle names. Handles are unique across
// classes, so passing a handle of the wrong class fails the lookup.
type Class uint8

const (
	ClassDataSource Class = iota + 1
	ClassField
	ClassRecord
	ClassMap
	ClassReader
)

func (c Class) String() string {
	switch c {
	case ClassDataSource:
		return "datasource"
	case ClassField:
		return "field"
	case ClassRecord:
		return "record"
	case ClassMap:
		return "map"
	case ClassReader:
		return "reader"
	default:
		return fmt.Sprintf("class(%d)", uint8(c))
	}
}

// EventType is a handle lifecycle notification.
type EventType uint8

const (
	EventCreated EventType = iota
	EventDropped
)

// Event is delivered to observers when a handle is created or dropped.
type Event struct {
	Value  any
	Handle uint32
	Class  Class
	Type   EventType
}

// Observer receives handle lifecycle events.
type Observer interface {
	OnHandleEvent(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

func (f ObserverFunc) OnHandleEvent(e Event) { f(e) }

type slot struct {
	value any
	class Class
}

// table hands out host handles. Handle 0 is reserved and always invalid.
type table struct {
	slots     map[uint32]slot
	observers []Observer
	next      uint32
}

func newTable() *table {
	return &table{
		slots: make(map[uint32]slot),
		next:  1,
	}
}

func (t *table) insert(class Class, value any) uint32 {
	h := t.next
	t.next++
	t.slots[h] = slot{value: value, class: class}
	t.notify(Event{Type: EventCreated, Handle: h, Class: class, Value: value})
	return h
}

func (t *table) get(h uint32, class Class) (any, bool) {
	s, ok := t.slots[h]
	if !ok || s.class != class {
		return nil, false
	}
	return s.value, true
}

func (t *table) remove(h uint32, class Class) (any, bool) {
	s, ok := t.slots[h]
	if !ok || s.class != class {
		return nil, false
	}
	delete(t.slots, h)
	t.notify(Event{Type: EventDropped, Handle: h, Class: class, Value: s.value})
	return s.value, true
}

func (t *table) count(class Class) int {
	n := 0
	for _, s := range t.slots {
		if s.class == class {
			n++
		}
	}
	return n
}

func (t *table) subscribe(o Observer) {
	t.observers = append(t.observers, o)
}

func (t *table) notify(e Event) {
	for _, o := range t.observers {
		o.OnHandleEvent(e)
	}
}

// typed returns the value behind h if it has the given class and type.
func typed[T any](t *table, h uint32, class Class) (T, bool) {
	v, ok := t.get(h, class)
	if !ok {
		var zero T
		return zero, false
	}
	r, ok := v.(T)
	return r, ok
}
