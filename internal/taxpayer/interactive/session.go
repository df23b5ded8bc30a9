package interactive

import (
	"context"
	"time"

	"fiscalid/internal/taxpayer/models"
)

const (
	// FieldTaxID is the field a Session tracks unless told otherwise.
	FieldTaxID = "ex_tax_id"

	defaultDebounce = 500 * time.Millisecond
)

// LookupFunc is the registry validation a session drives.
type LookupFunc func(ctx context.Context, number, kind string) (models.LookupResult, error)

// Update is delivered to the apply callback for current results only.
type Update struct {
	Token  Token
	Number string
	Result models.LookupResult
	Err    error
}

// Session validates one field as its value changes.
type Session struct {
	field     string
	lookup    LookupFunc
	apply     func(Update)
	tracker   *Tracker
	debouncer *Debouncer
}

type SessionOption func(*Session)

func WithField(field string) SessionOption {
	return func(s *Session) { s.field = field }
}

func WithDebounce(d time.Duration) SessionOption {
	return func(s *Session) { s.debouncer = NewDebouncer(d) }
}

func WithTracker(t *Tracker) SessionOption {
	return func(s *Session) { s.tracker = t }
}

func NewSession(lookup LookupFunc, apply func(Update), opts ...SessionOption) *Session {
	s := &Session{
		field:     FieldTaxID,
		lookup:    lookup,
		apply:     apply,
		tracker:   NewTracker(),
		debouncer: NewDebouncer(defaultDebounce),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start issues a token and looks up immediately. The returned channel
// receives once: true if the result was applied, false if it was stale.
func (s *Session) Start(ctx context.Context, number, kind string) <-chan bool {
	return s.run(ctx, s.tracker.Issue(s.field), number, kind)
}

// Input records a changed value and returns the token its lookup will carry.
// Outstanding results become stale at once and the lookup starts after the
// value settles, unless newer input arrived first.
func (s *Session) Input(ctx context.Context, number, kind string) Token {
	tok := s.tracker.Issue(s.field)
	s.debouncer.Trigger(func() {
		<-s.run(ctx, tok, number, kind)
	})
	return tok
}

func (s *Session) run(ctx context.Context, tok Token, number, kind string) <-chan bool {
	done := make(chan bool, 1)
	if !s.tracker.IsCurrent(s.field, tok) {
		done <- false
		return done
	}
	go func() {
		result, err := s.lookup(ctx, number, kind)
		done <- s.tracker.Apply(s.field, tok, func() {
			s.apply(Update{Token: tok, Number: number, Result: result, Err: err})
		})
	}()
	return done
}

// Clear drops pending input and outstanding results, as when the field is
// emptied.
func (s *Session) Clear() {
	s.debouncer.Cancel()
	s.tracker.Invalidate(s.field)
}

// Close stops the session; later input is ignored.
func (s *Session) Close() {
	s.debouncer.Stop()
	s.tracker.Invalidate(s.field)
}
