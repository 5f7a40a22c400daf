package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errUpstream = errors.New("upstream failed")

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestBreaker(settings Settings) (*Breaker, *fakeClock) {
	clock := &fakeClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	b := New("test", settings)
	b.now = clock.now
	b.expiry = clock.now().Add(b.settings.Interval)
	return b, clock
}

func call(b *Breaker, err error) error {
	return b.Call(context.Background(), func(context.Context) error { return err })
}

func tripAfter(n uint32) func(Counts) bool {
	return func(c Counts) bool { return c.ConsecutiveFailures >= n }
}

func TestBreakerStateTransitions(t *testing.T) {
	tests := []struct {
		name     string
		results  []error
		expected State
	}{
		{"stays closed on successes", []error{nil, nil, nil}, StateClosed},
		{"opens after consecutive failures", []error{errUpstream, errUpstream, errUpstream}, StateOpen},
		{"success resets the streak", []error{errUpstream, errUpstream, nil, errUpstream}, StateClosed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, _ := newTestBreaker(Settings{Timeout: time.Minute, ReadyToTrip: tripAfter(3)})
			for _, err := range tt.results {
				_ = call(b, err)
			}
			assert.Equal(t, tt.expected, b.State())
		})
	}
}

func TestBreakerCounts(t *testing.T) {
	b, _ := newTestBreaker(Settings{})

	require.NoError(t, call(b, nil))
	counts := b.Counts()
	assert.Equal(t, uint32(1), counts.Requests)
	assert.Equal(t, uint32(1), counts.TotalSuccesses)
	assert.Equal(t, uint32(1), counts.ConsecutiveSuccesses)

	assert.ErrorIs(t, call(b, errUpstream), errUpstream)
	counts = b.Counts()
	assert.Equal(t, uint32(2), counts.Requests)
	assert.Equal(t, uint32(1), counts.TotalFailures)
	assert.Equal(t, uint32(1), counts.ConsecutiveFailures)
	assert.Zero(t, counts.ConsecutiveSuccesses)
}

func TestBreakerOpenRejectsImmediately(t *testing.T) {
	b, _ := newTestBreaker(Settings{Timeout: time.Minute, ReadyToTrip: tripAfter(2)})
	_ = call(b, errUpstream)
	_ = call(b, errUpstream)

	called := false
	err := b.Call(context.Background(), func(context.Context) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, called)
}

func TestBreakerHalfOpenRecovery(t *testing.T) {
	b, clock := newTestBreaker(Settings{MaxRequests: 2, Timeout: time.Second, ReadyToTrip: tripAfter(2)})
	_ = call(b, errUpstream)
	_ = call(b, errUpstream)
	require.Equal(t, StateOpen, b.State())

	clock.advance(2 * time.Second)
	assert.Equal(t, StateHalfOpen, b.State())

	require.NoError(t, call(b, nil))
	require.NoError(t, call(b, nil))
	assert.Equal(t, StateClosed, b.State())
}

func TestBreakerHalfOpenFailureReopens(t *testing.T) {
	b, clock := newTestBreaker(Settings{Timeout: time.Second, ReadyToTrip: tripAfter(1)})
	_ = call(b, errUpstream)
	clock.advance(2 * time.Second)
	require.Equal(t, StateHalfOpen, b.State())

	_ = call(b, errUpstream)
	assert.Equal(t, StateOpen, b.State())
}

func TestBreakerIsSuccessfulClassifier(t *testing.T) {
	errBadRequest := errors.New("bad request")
	b, _ := newTestBreaker(Settings{
		ReadyToTrip: tripAfter(1),
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, errBadRequest)
		},
	})

	assert.ErrorIs(t, call(b, errBadRequest), errBadRequest)
	assert.Equal(t, StateClosed, b.State())
	assert.Equal(t, uint32(1), b.Counts().TotalSuccesses)
}

func TestBreakerDoneContextSkipsCall(t *testing.T) {
	b, _ := newTestBreaker(Settings{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := b.Call(ctx, func(context.Context) error {
		t.Fatal("should not be called")
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, b.Counts().Requests)
}

func TestDo(t *testing.T) {
	b, _ := newTestBreaker(Settings{})

	got, err := Do(context.Background(), b, func(context.Context) (string, error) {
		return "payload", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "payload", got)
}

func TestBreakerCallbacks(t *testing.T) {
	var transitions []string
	b, clock := newTestBreaker(Settings{
		Timeout:     time.Second,
		ReadyToTrip: tripAfter(2),
		OnStateChange: func(name string, from State, to State) {
			transitions = append(transitions, from.String()+"->"+to.String())
		},
	})

	_ = call(b, errUpstream)
	_ = call(b, errUpstream)
	clock.advance(2 * time.Second)
	_ = b.State()

	assert.Equal(t, []string{"closed->open", "open->half-open"}, transitions)
}
