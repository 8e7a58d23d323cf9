package pool

import (
	"context"
	"errors"
	"time"

	"github.com/natansdj/electives"
)

// DefaultKeepAliveInterval keeps managed MySQL endpoints and NAT devices from dropping idle links.
const DefaultKeepAliveInterval = 6 * time.Hour

// KeepAlive pings one connection on its own checkout. It never queues behind request
// traffic: when every connection is busy the round is skipped and pinged is false.
func (p *Pool) KeepAlive(ctx context.Context) (pinged bool, err error) {
	c, err := p.acquire(ctx, false)
	if errors.Is(err, ErrPoolExhausted) {
		return false, nil
	}
	if err != nil {
		p.metrics.RecordKeepAlive(err)
		return false, err
	}

	err = c.conn.Ping(ctx)
	if err != nil {
		c.MarkBroken()
	}
	p.Release(c)

	p.metrics.RecordKeepAlive(err)
	return true, err
}

// CleanupStale closes idle connections past their lifetime or idle limit
func (p *Pool) CleanupStale() int {
	p.mu.Lock()

	if p.closing {
		p.mu.Unlock()
		return 0
	}

	now := time.Now()
	var stale []*Conn
	valid := make([]*Conn, 0, len(p.idle))

	for _, c := range p.idle {
		if p.expired(c, now) {
			stale = append(stale, c)
			continue
		}
		valid = append(valid, c)
	}

	p.idle = valid
	p.numOpen -= len(stale)
	p.mu.Unlock()

	p.discard(stale)
	return len(stale)
}

// StartKeepAlive runs CleanupStale and KeepAlive every interval until Shutdown.
func (p *Pool) StartKeepAlive(interval time.Duration, timeout time.Duration) {
	if interval <= 0 {
		interval = DefaultKeepAliveInterval
	}

	p.mu.Lock()
	if p.closing || p.stopKeepAlive != nil {
		p.mu.Unlock()
		return
	}
	done := make(chan struct{})
	p.stopKeepAlive = done
	p.mu.Unlock()

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if cleaned := p.CleanupStale(); cleaned > 0 {
					electives.LogD("DB pool: closed %d stale idle connections", cleaned)
				}
				p.keepAliveRound(timeout)

			case <-done:
				return
			}
		}
	}()
}

func (p *Pool) keepAliveRound(timeout time.Duration) {
	ctx := context.Background()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	pinged, err := p.KeepAlive(ctx)
	switch {
	case err != nil:
		electives.LogE("Keep-alive DB ping failed: %s", err.Error())
	case !pinged:
		electives.LogD("Keep-alive DB ping skipped, all %d connections busy", p.config.MaxSize)
	default:
		electives.LogI("Keep-alive DB ping successful")
	}
}
