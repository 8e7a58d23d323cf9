package pool

import (
	"context"
	"database/sql/driver"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/natansdj/electives"
	"github.com/natansdj/electives/metrics"
)

var (
	// ErrShutdownInProgress is returned by Acquire once Shutdown has started
	ErrShutdownInProgress = errors.New("connection pool is shutting down")

	// ErrPoolExhausted is returned when capacity and wait queue are both saturated
	ErrPoolExhausted = errors.New("connection pool exhausted")

	// ErrConnectionFailure matches every *ConnectionError
	ErrConnectionFailure = errors.New("database connection failure")

	// ErrNotCheckedOut is returned when releasing a connection the pool did not hand out
	ErrNotCheckedOut = errors.New("connection is not checked out")

	// ErrShutdownTimeout is returned when in-flight checkouts outlived the grace period
	ErrShutdownTimeout = errors.New("connection pool shutdown grace period elapsed")
)

// ConnectionError wraps a failure to establish a connection
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string {
	return ErrConnectionFailure.Error() + ": " + e.Err.Error()
}

func (e *ConnectionError) Unwrap() []error {
	return []error{ErrConnectionFailure, e.Err}
}

// Connection represents a pooled connection
type Connection interface {
	// Close destroys the connection
	Close() error

	// Ping runs a trivial liveness query
	Ping(ctx context.Context) error
}

// Factory creates new connections
type Factory interface {
	Create(ctx context.Context) (Connection, error)
}

// FactoryFunc adapts a function to Factory
type FactoryFunc func(ctx context.Context) (Connection, error)

func (f FactoryFunc) Create(ctx context.Context) (Connection, error) {
	return f(ctx)
}

// Config configures connection pool
type Config struct {
	// MaxSize is the maximum number of open connections
	MaxSize int

	// WaitForConnections queues Acquire at capacity instead of failing
	WaitForConnections bool

	// QueueLimit bounds the wait queue, 0 means unbounded
	QueueLimit int

	// AcquireTimeout bounds time spent in the wait queue, 0 waits until the context ends
	AcquireTimeout time.Duration

	// MaxLifetime is maximum connection lifetime
	MaxLifetime time.Duration

	// MaxIdleTime is maximum idle time before closing
	MaxIdleTime time.Duration

	// IsBroken classifies errors that invalidate the connection they came from
	IsBroken func(err error) bool

	// OnClose runs last during Shutdown
	OnClose func() error
}

// DefaultConfig returns default pool configuration
func DefaultConfig() Config {
	return Config{
		MaxSize:            55,
		WaitForConnections: true,
		QueueLimit:         0,
		AcquireTimeout:     10 * time.Second,
		IsBroken:           IsBadConn,
	}
}

// IsBadConn reports errors that database/sql itself treats as a dead connection.
func IsBadConn(err error) bool {
	return errors.Is(err, driver.ErrBadConn) || errors.Is(err, ErrConnectionFailure)
}

// Conn is a checked-out connection handle
type Conn struct {
	conn       Connection
	createdAt  time.Time
	lastUsedAt time.Time
	broken     atomic.Bool
}

// Raw returns the underlying connection
func (c *Conn) Raw() Connection {
	return c.conn
}

// MarkBroken makes Release discard the connection instead of reusing it
func (c *Conn) MarkBroken() {
	c.broken.Store(true)
}

// IsBroken reports whether MarkBroken was called
func (c *Conn) IsBroken() bool {
	return c.broken.Load()
}

// grant is what a queued Acquire receives: a connection, a free slot (conn and err nil),
// or an error.
type grant struct {
	conn *Conn
	err  error
}

// Pool is a bounded connection pool with a FIFO wait queue
type Pool struct {
	factory Factory
	config  Config
	metrics *metrics.Metrics

	mu      sync.Mutex
	idle    []*Conn
	inUse   map[*Conn]struct{}
	numOpen int // idle + checked out + being created
	waiters []chan grant
	closing bool

	drained       chan struct{}
	drainedClosed bool
	stopKeepAlive chan struct{}
}

// NewPool creates a new connection pool
func NewPool(factory Factory, config Config) *Pool {
	if config.MaxSize <= 0 {
		config.MaxSize = DefaultConfig().MaxSize
	}
	if config.IsBroken == nil {
		config.IsBroken = IsBadConn
	}

	return &Pool{
		factory: factory,
		config:  config,
		metrics: metrics.NewMetrics(),
		idle:    make([]*Conn, 0, config.MaxSize),
		inUse:   make(map[*Conn]struct{}),
		drained: make(chan struct{}),
	}
}

// Acquire checks out a connection
func (p *Pool) Acquire(ctx context.Context) (*Conn, error) {
	c, err := p.acquire(ctx, p.config.WaitForConnections)
	if errors.Is(err, ErrPoolExhausted) {
		p.metrics.IncrementCheckoutsRejected()
		electives.LogWRL("pool-exhausted", "DB pool exhausted (max %d connections)", p.config.MaxSize)
	}
	return c, err
}

func (p *Pool) acquire(ctx context.Context, wait bool) (*Conn, error) {
	p.mu.Lock()

	if p.closing {
		p.mu.Unlock()
		return nil, ErrShutdownInProgress
	}

	now := time.Now()
	var stale []*Conn

	// Try to get idle connection
	for len(p.idle) > 0 {
		c := p.idle[0]
		p.idle = p.idle[1:]

		if p.expired(c, now) {
			stale = append(stale, c)
			p.numOpen--
			continue
		}

		c.lastUsedAt = now
		p.inUse[c] = struct{}{}
		p.mu.Unlock()

		p.discard(stale)
		p.metrics.IncrementCheckoutsTotal()
		return c, nil
	}

	// Try to create new connection. Stale connections are closed first: their
	// physical links may hold the driver slots the replacement needs.
	if p.numOpen < p.config.MaxSize {
		p.numOpen++
		p.mu.Unlock()

		p.discard(stale)
		return p.open(ctx)
	}

	if !wait || (p.config.QueueLimit > 0 && len(p.waiters) >= p.config.QueueLimit) {
		p.mu.Unlock()

		p.discard(stale)
		return nil, ErrPoolExhausted
	}

	waiter := make(chan grant, 1)
	p.waiters = append(p.waiters, waiter)
	p.mu.Unlock()

	p.discard(stale)
	p.metrics.IncrementCheckoutsWaited()
	return p.await(ctx, waiter)
}

func (p *Pool) await(ctx context.Context, waiter chan grant) (*Conn, error) {
	var timeout <-chan time.Time
	if p.config.AcquireTimeout > 0 {
		timer := time.NewTimer(p.config.AcquireTimeout)
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case g := <-waiter:
		return p.take(ctx, g)

	case <-timeout:
		if p.abandon(waiter) {
			return nil, ErrPoolExhausted
		}
		// Granted while timing out
		return p.take(ctx, <-waiter)

	case <-ctx.Done():
		if !p.abandon(waiter) {
			p.giveBack(<-waiter)
		}
		return nil, ctx.Err()
	}
}

// take turns a grant into a checkout.
func (p *Pool) take(ctx context.Context, g grant) (*Conn, error) {
	if g.err != nil {
		return nil, g.err
	}
	if g.conn != nil {
		p.metrics.IncrementCheckoutsTotal()
		return g.conn, nil
	}
	return p.open(ctx)
}

// giveBack returns a grant that arrived after its waiter gave up.
func (p *Pool) giveBack(g grant) {
	switch {
	case g.err != nil:
	case g.conn != nil:
		p.Release(g.conn)
	default:
		p.mu.Lock()
		p.freeSlotLocked()
		p.mu.Unlock()
	}
}

// abandon removes waiter from the queue, reporting false if it was already granted.
func (p *Pool) abandon(waiter chan grant) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i, w := range p.waiters {
		if w == waiter {
			p.waiters = append(p.waiters[:i], p.waiters[i+1:]...)
			return true
		}
	}
	return false
}

// open creates a connection in a slot already counted in numOpen.
func (p *Pool) open(ctx context.Context) (*Conn, error) {
	start := time.Now()

	raw, err := p.factory.Create(ctx)
	if err != nil {
		p.metrics.IncrementConnectionsFailed()
		p.metrics.RecordError(err)

		p.mu.Lock()
		p.freeSlotLocked()
		p.mu.Unlock()
		return nil, &ConnectionError{Err: err}
	}

	p.metrics.IncrementConnectionsTotal()
	p.metrics.IncrementConnectionsActive()
	p.metrics.RecordConnectLatency(time.Since(start).Milliseconds())

	now := time.Now()
	c := &Conn{conn: raw, createdAt: now, lastUsedAt: now}

	p.mu.Lock()
	if p.closing {
		p.numOpen--
		p.signalDrainLocked()
		p.mu.Unlock()
		p.closeConn(c)
		return nil, ErrShutdownInProgress
	}
	p.inUse[c] = struct{}{}
	p.mu.Unlock()

	p.metrics.IncrementCheckoutsTotal()
	return c, nil
}

// freeSlotLocked gives up one slot, handing it to the oldest waiter if any.
func (p *Pool) freeSlotLocked() {
	if !p.closing && len(p.waiters) > 0 {
		waiter := p.waiters[0]
		p.waiters = p.waiters[1:]
		waiter <- grant{}
		return
	}
	p.numOpen--
	p.signalDrainLocked()
}

// Release returns a connection to pool
func (p *Pool) Release(c *Conn) error {
	if c == nil {
		return ErrNotCheckedOut
	}

	p.mu.Lock()

	if _, ok := p.inUse[c]; !ok {
		p.mu.Unlock()
		return ErrNotCheckedOut
	}
	delete(p.inUse, c)

	if c.IsBroken() || p.closing {
		if c.IsBroken() {
			p.metrics.IncrementConnectionsBroken()
		}
		p.freeSlotLocked()
		p.mu.Unlock()

		p.closeConn(c)
		return nil
	}

	c.lastUsedAt = time.Now()

	// Try to satisfy waiting request
	if len(p.waiters) > 0 {
		waiter := p.waiters[0]
		p.waiters = p.waiters[1:]
		p.inUse[c] = struct{}{}
		waiter <- grant{conn: c}
		p.mu.Unlock()
		return nil
	}

	p.idle = append(p.idle, c)
	p.mu.Unlock()
	return nil
}

// With runs fn on a checked-out connection and always releases it. Errors classified
// by Config.IsBroken mark the connection broken first.
func (p *Pool) With(ctx context.Context, fn func(c *Conn) error) (err error) {
	c, err := p.Acquire(ctx)
	if err != nil {
		return err
	}

	defer func() {
		if r := recover(); r != nil {
			c.MarkBroken()
			p.Release(c)
			panic(r)
		}
		if err != nil && p.config.IsBroken(err) {
			c.MarkBroken()
		}
		p.Release(c)
	}()

	return fn(c)
}

// Ping runs SELECT 1 through one checkout
func (p *Pool) Ping(ctx context.Context) error {
	return p.With(ctx, func(c *Conn) error {
		if err := c.conn.Ping(ctx); err != nil {
			c.MarkBroken()
			return err
		}
		return nil
	})
}

// Shutdown stops new checkouts, waits for in-flight ones until ctx ends, then closes
// every connection and runs Config.OnClose.
func (p *Pool) Shutdown(ctx context.Context) error {
	p.mu.Lock()

	if p.closing {
		p.mu.Unlock()
		return ErrShutdownInProgress
	}
	p.closing = true

	if p.stopKeepAlive != nil {
		close(p.stopKeepAlive)
		p.stopKeepAlive = nil
	}

	for _, waiter := range p.waiters {
		waiter <- grant{err: ErrShutdownInProgress}
	}
	p.waiters = nil

	idle := p.idle
	p.idle = nil
	p.numOpen -= len(idle)
	p.signalDrainLocked()
	p.mu.Unlock()

	var errs []error
	for _, c := range idle {
		if err := p.closeConn(c); err != nil {
			errs = append(errs, err)
		}
	}

	select {
	case <-p.drained:

	case <-ctx.Done():
		p.mu.Lock()
		stragglers := make([]*Conn, 0, len(p.inUse))
		for c := range p.inUse {
			stragglers = append(stragglers, c)
		}
		p.inUse = make(map[*Conn]struct{})
		p.numOpen -= len(stragglers)
		p.mu.Unlock()

		electives.LogW("DB pool: closing %d connections still checked out", len(stragglers))
		for _, c := range stragglers {
			if err := p.closeConn(c); err != nil {
				errs = append(errs, err)
			}
		}
		errs = append(errs, ErrShutdownTimeout)
	}

	if p.config.OnClose != nil {
		if err := p.config.OnClose(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// signalDrainLocked wakes Shutdown once nothing is open.
func (p *Pool) signalDrainLocked() {
	if p.closing && p.numOpen <= 0 && !p.drainedClosed {
		p.drainedClosed = true
		close(p.drained)
	}
}

// Stats returns pool statistics
func (p *Pool) Stats() PoolStats {
	p.mu.Lock()
	defer p.mu.Unlock()

	return PoolStats{
		OpenConnections: p.numOpen,
		IdleConnections: len(p.idle),
		InUse:           len(p.inUse),
		WaitingRequests: len(p.waiters),
		MaxSize:         p.config.MaxSize,
	}
}

// PoolStats represents pool statistics
type PoolStats struct {
	OpenConnections int `json:"open_connections"`
	IdleConnections int `json:"idle_connections"`
	InUse           int `json:"in_use"`
	WaitingRequests int `json:"waiting_requests"`
	MaxSize         int `json:"max_size"`
}

// GetMetrics returns pool metrics
func (p *Pool) GetMetrics() *metrics.Metrics {
	return p.metrics
}

func (p *Pool) closeConn(c *Conn) error {
	p.metrics.DecrementConnectionsActive()
	return c.conn.Close()
}

func (p *Pool) discard(conns []*Conn) {
	for _, c := range conns {
		if err := p.closeConn(c); err != nil {
			electives.LogD("DB pool: closing stale connection: %v", err)
		}
	}
}

// expired checks lifetime and idle limits
func (p *Pool) expired(c *Conn, now time.Time) bool {
	if p.config.MaxLifetime > 0 && now.Sub(c.createdAt) > p.config.MaxLifetime {
		return true
	}
	if p.config.MaxIdleTime > 0 && now.Sub(c.lastUsedAt) > p.config.MaxIdleTime {
		return true
	}
	return false
}
