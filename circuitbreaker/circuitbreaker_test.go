package circuitbreaker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var errDial = errors.New("dial tcp: connection refused")

func fail() error { return errDial }
func ok() error   { return nil }

type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestBreaker(settings Settings) (*Breaker, *clock) {
	c := &clock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	b := New("mysql", settings)
	b.now = c.now
	return b, c
}

func TestOpensAfterThreshold(t *testing.T) {
	b, _ := newTestBreaker(Settings{Threshold: 3, Cooldown: time.Second})

	for i := 0; i < 3; i++ {
		assert.ErrorIs(t, b.Execute(fail), errDial)
	}
	assert.Equal(t, StateOpen, b.State())

	called := false
	err := b.Execute(func() error { called = true; return nil })
	assert.ErrorIs(t, err, ErrOpen)
	assert.False(t, called)
}

func TestSuccessResetsFailureCount(t *testing.T) {
	b, _ := newTestBreaker(Settings{Threshold: 2})

	b.Execute(fail)
	b.Execute(ok)
	b.Execute(fail)
	assert.Equal(t, StateClosed, b.State())
}

func TestHalfOpenTrial(t *testing.T) {
	var transitions []string
	b, c := newTestBreaker(Settings{
		Threshold: 1,
		Cooldown:  time.Second,
		OnStateChange: func(name string, from, to State) {
			transitions = append(transitions, from.String()+">"+to.String())
		},
	})

	b.Execute(fail)
	c.advance(time.Second)
	assert.Equal(t, StateHalfOpen, b.State())

	// failed trial reopens
	assert.ErrorIs(t, b.Execute(fail), errDial)
	assert.ErrorIs(t, b.Execute(ok), ErrOpen)

	c.advance(time.Second)
	assert.NoError(t, b.Execute(ok))
	assert.Equal(t, StateClosed, b.State())

	assert.Equal(t, []string{
		"closed>open", "open>half-open", "half-open>open", "open>half-open", "half-open>closed",
	}, transitions)
}

func TestOnlyOneTrialAtATime(t *testing.T) {
	b, c := newTestBreaker(Settings{Threshold: 1, Cooldown: time.Second})
	b.Execute(fail)
	c.advance(time.Second)

	inTrial := make(chan struct{})
	finish := make(chan struct{})
	done := make(chan error)
	go func() {
		done <- b.Execute(func() error {
			close(inTrial)
			<-finish
			return nil
		})
	}()

	<-inTrial
	assert.ErrorIs(t, b.Execute(ok), ErrOpen)
	close(finish)
	assert.NoError(t, <-done)
	assert.Equal(t, StateClosed, b.State())
}

func TestIsFailureFilter(t *testing.T) {
	b, _ := newTestBreaker(Settings{
		Threshold: 1,
		IsFailure: func(err error) bool { return err != nil && !errors.Is(err, context.Canceled) },
	})

	b.Execute(func() error { return context.Canceled })
	assert.Equal(t, StateClosed, b.State())
}

func TestPanicCountsAsFailure(t *testing.T) {
	b, _ := newTestBreaker(Settings{Threshold: 1})

	assert.Panics(t, func() {
		b.Execute(func() error { panic("driver bug") })
	})
	assert.Equal(t, StateOpen, b.State())

	b.Reset()
	assert.Equal(t, StateClosed, b.State())
}
