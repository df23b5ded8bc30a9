// Package interactive keeps registry results for live form input in order.
//
// Every call for a field is tagged with a token. A result is applied only if
// its token is still the newest one issued for that field, so a slow answer
// for old input can never overwrite the answer for current input.
package interactive

import "sync"

// Token identifies one lookup for one field.
type Token uint64

// Tracker issues tokens per field. Request scoped, never shared globally.
type Tracker struct {
	mu      sync.Mutex
	current map[string]Token
}

func NewTracker() *Tracker {
	return &Tracker{current: make(map[string]Token)}
}

// Issue returns a new token for field and makes it current.
func (t *Tracker) Issue(field string) Token {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.current[field]++
	return t.current[field]
}

// Invalidate makes every outstanding token for field stale without issuing
// a call.
func (t *Tracker) Invalidate(field string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.current[field]++
}

func (t *Tracker) IsCurrent(field string, tok Token) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current[field] == tok
}

// Apply runs fn only if tok is current, holding the lock so no newer token
// can be issued between the check and the update.
func (t *Tracker) Apply(field string, tok Token, fn func()) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.current[field] != tok {
		return false
	}
	fn()
	return true
}
