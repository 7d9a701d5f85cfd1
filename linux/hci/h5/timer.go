package h5

import "time"

// retryTimer is polled by the read loop; it never fires on its own.
type retryTimer struct {
	period   time.Duration
	now      func() time.Time
	deadline time.Time
	armed    bool
}

func (t *retryTimer) arm() {
	t.deadline = t.now().Add(t.period)
	t.armed = true
}

func (t *retryTimer) expired() bool {
	return t.armed && !t.now().Before(t.deadline)
}

func (t *retryTimer) cancel() {
	t.armed = false
}
