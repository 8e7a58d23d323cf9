package circuitbreaker

import (
	"errors"
	"sync"
	"time"
)

// ErrOpen is returned while the breaker refuses calls
var ErrOpen = errors.New("circuit breaker is open")

// State represents circuit breaker state
type State int

const (
	// StateClosed lets every call through
	StateClosed State = iota

	// StateOpen fails calls fast until the cooldown passes
	StateOpen

	// StateHalfOpen lets a single trial call through
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

const (
	DefaultThreshold = 5
	DefaultCooldown  = 5 * time.Second
)

// Settings configures circuit breaker behavior
type Settings struct {
	// Threshold is the number of consecutive failures that opens the breaker
	Threshold int

	// Cooldown is how long the breaker stays open before a trial call
	Cooldown time.Duration

	// IsFailure decides which errors count against the breaker. Defaults to any error.
	IsFailure func(err error) bool

	// OnStateChange is called with the lock held; it must not call back into the breaker
	OnStateChange func(name string, from State, to State)
}

// Breaker stops repeated calls to a dependency that keeps failing
type Breaker struct {
	name          string
	threshold     int
	cooldown      time.Duration
	isFailure     func(err error) bool
	onStateChange func(name string, from State, to State)

	mu       sync.Mutex
	state    State
	failures int
	openedAt time.Time
	trial    bool
	now      func() time.Time
}

func New(name string, settings Settings) *Breaker {
	b := &Breaker{
		name:          name,
		threshold:     settings.Threshold,
		cooldown:      settings.Cooldown,
		isFailure:     settings.IsFailure,
		onStateChange: settings.OnStateChange,
		now:           time.Now,
	}

	if b.threshold <= 0 {
		b.threshold = DefaultThreshold
	}
	if b.cooldown <= 0 {
		b.cooldown = DefaultCooldown
	}
	if b.isFailure == nil {
		b.isFailure = func(err error) bool { return err != nil }
	}

	return b
}

// Execute runs fn unless the breaker is open. A panic counts as a failure.
func (b *Breaker) Execute(fn func() error) error {
	if err := b.allow(); err != nil {
		return err
	}

	defer func() {
		if r := recover(); r != nil {
			b.record(false)
			panic(r)
		}
	}()

	err := fn()
	b.record(!b.isFailure(err))
	return err
}

func (b *Breaker) allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateOpen:
		if b.now().Sub(b.openedAt) < b.cooldown {
			return ErrOpen
		}
		b.setState(StateHalfOpen)
		b.trial = true
		return nil

	case StateHalfOpen:
		if b.trial {
			return ErrOpen
		}
		b.trial = true
		return nil
	}

	return nil
}

func (b *Breaker) record(success bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == StateHalfOpen {
		b.trial = false
		if success {
			b.failures = 0
			b.setState(StateClosed)
		} else {
			b.open()
		}
		return
	}

	if success {
		b.failures = 0
		return
	}

	b.failures++
	if b.state == StateClosed && b.failures >= b.threshold {
		b.open()
	}
}

func (b *Breaker) open() {
	b.openedAt = b.now()
	b.setState(StateOpen)
}

func (b *Breaker) setState(state State) {
	if b.state == state {
		return
	}

	prev := b.state
	b.state = state

	if b.onStateChange != nil {
		b.onStateChange(b.name, prev, state)
	}
}

// State returns current state; an open breaker past its cooldown reports half-open
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == StateOpen && b.now().Sub(b.openedAt) >= b.cooldown {
		return StateHalfOpen
	}
	return b.state
}

// Reset closes the breaker and forgets past failures
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failures = 0
	b.trial = false
	b.setState(StateClosed)
}
