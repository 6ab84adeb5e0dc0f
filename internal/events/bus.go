// Package events is the advisory channel between the capture core and the
// UI host, built on the kelindar/event dispatcher.
package events

import (
	"github.com/kelindar/event"
)

// Bus wraps an event dispatcher for UI-facing notifications.
type Bus struct {
	dispatcher *event.Dispatcher
}

// New creates a bus with its own dispatcher.
func New() *Bus {
	return &Bus{
		dispatcher: event.NewDispatcher(),
	}
}

// Publish delivers an event to all subscribers. Delivery is asynchronous;
// publishers must not assume the handlers ran when Publish returns.
func (b *Bus) Publish(ev Event) {
	switch e := ev.(type) {
	case ErrorDisplayEvent:
		event.Publish(b.dispatcher, e)
	case FocusReticleEvent:
		event.Publish(b.dispatcher, e)
	case DeviceFlipEvent:
		event.Publish(b.dispatcher, e)
	case ShutterEvent:
		event.Publish(b.dispatcher, e)
	case QRCodeEvent:
		event.Publish(b.dispatcher, e)
	}
}

// Subscribe registers a handler; its parameter type selects the events it
// receives. The returned function unsubscribes.
func (b *Bus) Subscribe(handler any) func() {
	switch h := handler.(type) {
	case func(ErrorDisplayEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(FocusReticleEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(DeviceFlipEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(ShutterEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(QRCodeEvent):
		return event.Subscribe(b.dispatcher, h)
	default:
		return func() {}
	}
}
