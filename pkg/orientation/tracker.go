package orientation

import (
	"sync"
	"time"
)

// SampleInterval is the default motion sampling interval, roughly 30 Hz.
const SampleInterval = 33 * time.Millisecond

// Tracker keeps a continuously updated orientation estimate. It remembers
// the last non-flat orientation so that face-up and face-down readings do
// not make the video rotation flicker.
type Tracker struct {
	provider MotionProvider

	mu       sync.Mutex
	current  Device
	lastGood Device
	onChange func(Device)
	running  bool
}

// NewTracker creates a tracker fed by the given provider.
func NewTracker(provider MotionProvider) *Tracker {
	return &Tracker{
		provider: provider,
		current:  Unknown,
		lastGood: Unknown,
	}
}

// Start begins sampling. onChange fires on the provider's delivery goroutine
// every time the classification changes, including changes into the flat
// states. Start is a no-op when the provider is unavailable or the tracker
// is already running.
func (t *Tracker) Start(onChange func(Device)) error {
	t.mu.Lock()
	if t.running || t.provider == nil || !t.provider.Available() {
		t.mu.Unlock()
		return nil
	}
	t.onChange = onChange
	t.running = true
	t.mu.Unlock()

	return t.provider.Start(SampleInterval, func(g GravitySample) {
		t.Submit(classifyWithFlat(g))
	})
}

// Stop halts sampling. The current estimate is kept for a later restart.
func (t *Tracker) Stop() {
	t.mu.Lock()
	running := t.running
	t.running = false
	t.mu.Unlock()
	if running && t.provider != nil {
		t.provider.Stop()
	}
}

// Submit feeds an externally produced orientation, such as a raw face-up
// reading from the platform. Unchanged classifications are dropped.
func (t *Tracker) Submit(d Device) {
	t.mu.Lock()
	if d == t.current {
		t.mu.Unlock()
		return
	}
	t.current = d
	if !d.IsFlat() && d != Unknown {
		t.lastGood = d
	}
	fn := t.onChange
	t.mu.Unlock()

	if fn != nil {
		fn(d)
	}
}

// Current returns the latest classification, flat states included.
func (t *Tracker) Current() Device {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current
}

// LastGood returns the last non-flat classification, or Unknown when none
// has been seen yet.
func (t *Tracker) LastGood() Device {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastGood
}

// classifyWithFlat extends Classify with the flat states: when gravity is
// almost entirely along z, the device is lying face up or face down.
func classifyWithFlat(g GravitySample) Device {
	const flatDominance = 0.8
	if abs(g.Z) > flatDominance && abs(g.X) < 0.3 && abs(g.Y) < 0.3 {
		if g.Z < 0 {
			return FaceUp
		}
		return FaceDown
	}
	return Classify(g)
}
