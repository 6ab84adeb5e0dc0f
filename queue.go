package camsession

import "sync"

// workQueue is the serialized reconfiguration queue. Every session-mutating
// operation runs on its single goroutine, so begin/commit configuration
// brackets never interleave.
type workQueue struct {
	tasks chan func()

	closeOnce sync.Once
	closed    chan struct{}
	drained   chan struct{}
}

func newWorkQueue() *workQueue {
	q := &workQueue{
		tasks:   make(chan func(), 64),
		closed:  make(chan struct{}),
		drained: make(chan struct{}),
	}
	go q.loop()
	return q
}

func (q *workQueue) loop() {
	defer close(q.drained)
	for {
		select {
		case <-q.closed:
			return
		case task := <-q.tasks:
			task()
		}
	}
}

// Async enqueues a task. Tasks run in submission order. After Close, tasks
// are dropped.
func (q *workQueue) Async(task func()) {
	select {
	case <-q.closed:
	case q.tasks <- task:
	}
}

// Sync enqueues a task and waits for it to finish. Must not be called from
// the queue goroutine itself.
func (q *workQueue) Sync(task func()) {
	done := make(chan struct{})
	q.Async(func() {
		defer close(done)
		task()
	})
	select {
	case <-done:
	case <-q.drained:
	}
}

// Close stops the queue goroutine. Pending tasks may be dropped.
func (q *workQueue) Close() {
	q.closeOnce.Do(func() {
		close(q.closed)
	})
}
