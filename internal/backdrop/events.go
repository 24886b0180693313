package backdrop

type EventType int

const (
	EventPointerMove EventType = iota
	EventHostVisibility
	EventResize
	EventTransitionStarted
	EventEffectActivated
	EventRunStateChanged
)

type Event struct {
	Type EventType
	X, Y float64 // pointer position or framebuffer size
	On   bool    // visibility / run state
	Data int     // generic payload (effect index)
}

type EventHandler func(Event)

// Subscription is returned by Subscribe and detaches the handler.
type Subscription struct {
	t  EventType
	id int
}

type handlerEntry struct {
	id int
	fn EventHandler
}

// EventBus dispatches events synchronously on the caller's goroutine.
type EventBus struct {
	handlers map[EventType][]handlerEntry
	nextID   int
}

func NewEventBus() *EventBus {
	return &EventBus{
		handlers: make(map[EventType][]handlerEntry),
	}
}

func (eb *EventBus) Subscribe(t EventType, fn EventHandler) Subscription {
	eb.nextID++
	eb.handlers[t] = append(eb.handlers[t], handlerEntry{id: eb.nextID, fn: fn})
	return Subscription{t: t, id: eb.nextID}
}

// Unsubscribe detaches a handler. Detaching twice is a no-op.
func (eb *EventBus) Unsubscribe(s Subscription) {
	hs := eb.handlers[s.t]
	for i, h := range hs {
		if h.id == s.id {
			eb.handlers[s.t] = append(hs[:i:i], hs[i+1:]...)
			return
		}
	}
}

// Count returns the number of handlers attached for t.
func (eb *EventBus) Count(t EventType) int { return len(eb.handlers[t]) }

func (eb *EventBus) Emit(e Event) {
	for _, h := range eb.handlers[e.Type] {
		h.fn(e)
	}
}
