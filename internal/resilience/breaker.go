package resilience

import (
	"context"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// ErrOpen is returned while a breaker is rejecting calls.
var ErrOpen = eris.New("resilience: circuit open")

// State of a Breaker.
type State int

const (
	// Closed passes every call through.
	Closed State = iota
	// Open rejects calls until the cooldown has passed.
	Open
	// HalfOpen admits a single trial call.
	HalfOpen
)

func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case Open:
		return "open"
	case HalfOpen:
		return "half-open"
	}
	return "unknown"
}

// Breaker opens after threshold consecutive tripping failures. Once the
// cooldown has passed it admits one trial call at a time; every other caller
// gets ErrOpen until that call's result is recorded.
type Breaker struct {
	name       string
	threshold  int
	cooldown   time.Duration
	now        func() time.Time
	shouldTrip func(error) bool

	mu       sync.Mutex
	state    State
	failures int
	openedAt time.Time
	trial    bool
}

// NewBreaker returns a closed breaker. Non-positive arguments fall back to
// 5 failures and 60s.
func NewBreaker(name string, threshold int, cooldown time.Duration) *Breaker {
	if threshold <= 0 {
		threshold = 5
	}
	if cooldown <= 0 {
		cooldown = time.Minute
	}
	return &Breaker{name: name, threshold: threshold, cooldown: cooldown, now: time.Now}
}

// TripOn sets which errors count toward the threshold. Errors it rejects are
// recorded as successes. By default every error trips.
func (b *Breaker) TripOn(fn func(error) bool) *Breaker {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.shouldTrip = fn
	return b
}

// State returns the current state, reporting HalfOpen once the cooldown has
// elapsed.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == Open && b.now().Sub(b.openedAt) >= b.cooldown {
		return HalfOpen
	}
	return b.state
}

// Run calls fn unless the breaker is open.
func (b *Breaker) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := b.allow(); err != nil {
		return err
	}
	err := fn(ctx)
	b.record(err)
	return err
}

func (b *Breaker) allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	switch b.state {
	case Closed:
		return nil
	case Open:
		if b.now().Sub(b.openedAt) < b.cooldown {
			return eris.Wrap(ErrOpen, b.name)
		}
		b.setState(HalfOpen)
	}
	if b.trial {
		return eris.Wrap(ErrOpen, b.name)
	}
	b.trial = true
	return nil
}

func (b *Breaker) record(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.trial = false

	if err == nil || (b.shouldTrip != nil && !b.shouldTrip(err)) {
		b.failures = 0
		if b.state != Closed {
			b.setState(Closed)
		}
		return
	}

	b.failures++
	if b.state == HalfOpen || b.failures >= b.threshold {
		b.openedAt = b.now()
		b.setState(Open)
	}
}

func (b *Breaker) setState(to State) {
	if b.state == to {
		return
	}
	zap.L().Info("circuit state change",
		zap.String("breaker", b.name),
		zap.Stringer("from", b.state),
		zap.Stringer("to", to),
	)
	b.state = to
}
