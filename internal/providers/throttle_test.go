package providers

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/newsletter/internal/sequence"
)

type countingPassages struct {
	inFlight, peak int32
	err            error
}

func (c *countingPassages) GetPassageMarkup(_ context.Context, reference string, _ PassageOptions) (string, error) {
	n := atomic.AddInt32(&c.inFlight, 1)
	defer atomic.AddInt32(&c.inFlight, -1)
	for {
		p := atomic.LoadInt32(&c.peak)
		if n <= p || atomic.CompareAndSwapInt32(&c.peak, p, n) {
			break
		}
	}
	time.Sleep(time.Millisecond)
	if c.err != nil {
		return "", c.err
	}
	return "<p>" + reference + "</p>", nil
}

func TestThrottledPassages_OneInFlight(t *testing.T) {
	inner := &countingPassages{}
	p := NewThrottledPassages(inner, sequence.NewGate(0))

	var wg sync.WaitGroup
	for range 6 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := p.GetPassageMarkup(context.Background(), "John 3:16", PassageOptions{})
			assert.NoError(t, err)
			assert.Equal(t, "<p>John 3:16</p>", got)
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), atomic.LoadInt32(&inner.peak))
}

func TestThrottledPassages_PropagatesError(t *testing.T) {
	boom := errors.New("rate limited")
	p := NewThrottledPassages(&countingPassages{err: boom}, sequence.NewGate(0))
	_, err := p.GetPassageMarkup(context.Background(), "Romans 8:28", PassageOptions{})
	require.ErrorIs(t, err, boom)
}
