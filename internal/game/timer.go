package game

import "time"

// schedule replaces the room's pending callback with fn, run after d under
// the room lock. Callers must hold r.mu.
func (e *Engine) schedule(r *Room, d time.Duration, fn func(*Room)) {
	e.cancelTimer(r)
	gen := r.epoch
	r.timer = e.clock.AfterFunc(d, func() {
		r.mu.Lock()
		defer r.mu.Unlock()

		// Stop cannot recall a callback that already started; the epoch can.
		if r.closed || r.epoch != gen {
			return
		}
		r.timer = nil
		fn(r)
	})
}

// cancelTimer stops the pending callback, if any. Callers must hold r.mu.
func (e *Engine) cancelTimer(r *Room) {
	r.epoch++
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
}
