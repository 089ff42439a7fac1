package sync

import "sync"

// Notification carries exactly one of an Event or a Status snapshot.
type Notification struct {
	Event  *Event
	Status *Status
}

// Feed is an unbounded, non-blocking Notifier. Producers never wait: each
// publish appends to an internal queue drained by a single pump goroutine,
// so consumers receive notifications in publish order. Publishing after
// Close is deliberately a no-op; losing a notification must never affect a
// transfer operation.
type Feed struct {
	mu     sync.Mutex
	queue  []Notification
	wake   chan struct{}
	out    chan Notification
	closed bool
	done   chan struct{}
}

func NewFeed() *Feed {
	f := &Feed{
		wake: make(chan struct{}, 1),
		out:  make(chan Notification),
		done: make(chan struct{}),
	}
	go f.pump()
	return f
}

// C is the consumer side. It is closed by Close after the queue drains.
func (f *Feed) C() <-chan Notification {
	return f.out
}

// Event publishes an event. Never blocks.
func (f *Feed) Event(ev Event) {
	f.publish(Notification{Event: &ev})
}

// Status publishes a status snapshot. Never blocks.
func (f *Feed) Status(st Status) {
	f.publish(Notification{Status: &st})
}

func (f *Feed) publish(n Notification) {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	f.queue = append(f.queue, n)
	f.mu.Unlock()

	select {
	case f.wake <- struct{}{}:
	default:
	}
}

// Close stops the feed. Queued notifications are still delivered before the
// consumer channel is closed.
func (f *Feed) Close() {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	f.closed = true
	f.mu.Unlock()

	select {
	case f.wake <- struct{}{}:
	default:
	}
	<-f.done
}

func (f *Feed) pump() {
	defer close(f.done)
	defer close(f.out)

	for {
		f.mu.Lock()
		batch := f.queue
		f.queue = nil
		closed := f.closed
		f.mu.Unlock()

		for _, n := range batch {
			f.out <- n
		}

		if closed {
			return
		}
		<-f.wake
	}
}
