package events

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPublishSubscribe(t *testing.T) {
	bus := New()

	got := make(chan ErrorDisplayEvent, 1)
	defer bus.Subscribe(func(e ErrorDisplayEvent) { got <- e })()

	bus.Publish(ErrorDisplayEvent{Title: "Camera error", Message: "boom"})
	select {
	case e := <-got:
		assert.Equal(t, "Camera error", e.Title)
		assert.Equal(t, "boom", e.Message)
	case <-time.After(time.Second):
		t.Fatal("event never delivered")
	}
}

func TestSubscribersAreTypeSelective(t *testing.T) {
	bus := New()

	var shutters atomic.Int32
	defer bus.Subscribe(func(ShutterEvent) { shutters.Add(1) })()

	qr := make(chan string, 1)
	defer bus.Subscribe(func(e QRCodeEvent) { qr <- e.Value })()

	bus.Publish(QRCodeEvent{Value: "hello"})
	select {
	case v := <-qr:
		assert.Equal(t, "hello", v)
	case <-time.After(time.Second):
		t.Fatal("event never delivered")
	}
	assert.Zero(t, shutters.Load(), "a QR event must not reach shutter subscribers")
}

func TestUnsubscribe(t *testing.T) {
	bus := New()

	var count atomic.Int32
	unsubscribe := bus.Subscribe(func(FocusReticleEvent) { count.Add(1) })
	unsubscribe()

	bus.Publish(FocusReticleEvent{X: 1, Y: 2})
	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, count.Load())
}

func TestSubscribeUnknownHandlerIsInert(t *testing.T) {
	bus := New()
	unsubscribe := bus.Subscribe(func(int) {})
	unsubscribe() // must not panic
}
