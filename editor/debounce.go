package editor

import (
	"sync"
	"time"
)

// Debouncer coalesces bursts of calls per key: only the last function
// triggered for a key runs, once the key has been quiet for the delay.
type Debouncer struct {
	delay time.Duration

	mu      sync.Mutex
	pending map[string]*pendingCall
	stopped bool
}

type pendingCall struct {
	timer *time.Timer
	fn    func()
}

// NewDebouncer returns a Debouncer with the given quiet period.
func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{
		delay:   delay,
		pending: make(map[string]*pendingCall),
	}
}

// Trigger schedules fn for key, replacing any call still waiting.
// Triggers after Stop are ignored.
func (d *Debouncer) Trigger(key string, fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	if p, ok := d.pending[key]; ok {
		p.timer.Stop()
	}
	p := &pendingCall{fn: fn}
	p.timer = time.AfterFunc(d.delay, func() { d.fire(key, p) })
	d.pending[key] = p
}

func (d *Debouncer) fire(key string, p *pendingCall) {
	d.mu.Lock()
	if d.pending[key] != p {
		d.mu.Unlock()
		return
	}
	delete(d.pending, key)
	d.mu.Unlock()
	p.fn()
}

// Flush runs the waiting call for key now. It reports whether a call ran.
func (d *Debouncer) Flush(key string) bool {
	d.mu.Lock()
	p, ok := d.pending[key]
	if !ok || !p.timer.Stop() {
		d.mu.Unlock()
		return false
	}
	delete(d.pending, key)
	d.mu.Unlock()
	p.fn()
	return true
}

// Cancel drops the waiting call for key without running it.
func (d *Debouncer) Cancel(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if p, ok := d.pending[key]; ok {
		p.timer.Stop()
		delete(d.pending, key)
	}
}

// Pending returns the number of keys with a waiting call.
func (d *Debouncer) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}

// Stop runs every waiting call and rejects further triggers.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	d.stopped = true
	var calls []func()
	for key, p := range d.pending {
		if p.timer.Stop() {
			calls = append(calls, p.fn)
		}
		delete(d.pending, key)
	}
	d.mu.Unlock()
	for _, fn := range calls {
		fn()
	}
}
