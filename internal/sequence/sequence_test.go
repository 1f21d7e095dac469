package sequence

import (
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_PreservesOrderWithRandomDelays(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	const n = 20

	producers := make([]Producer[int], n)
	for i := range producers {
		delay := time.Duration(rng.Intn(3)) * time.Millisecond
		producers[i] = func() (int, error) {
			time.Sleep(delay)
			return i, nil
		}
	}

	got, err := Run(producers)
	require.NoError(t, err)
	require.Len(t, got, n)
	for i, v := range got {
		assert.Equal(t, i, v)
	}
}

func TestRun_OneAtATime(t *testing.T) {
	running := 0
	maxRunning := 0
	producers := make([]Producer[string], 5)
	for i := range producers {
		producers[i] = func() (string, error) {
			running++
			if running > maxRunning {
				maxRunning = running
			}
			time.Sleep(time.Millisecond)
			running--
			return "", nil
		}
	}

	_, err := Run(producers)
	require.NoError(t, err)
	assert.Equal(t, 1, maxRunning)
}

func TestRun_KeepsEmptyResults(t *testing.T) {
	got, err := Run([]Producer[string]{
		func() (string, error) { return "a", nil },
		func() (string, error) { return "", nil },
		func() (string, error) { return "c", nil },
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "", "c"}, got)
}

func TestRun_AbortsOnFirstFailure(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	producers := make([]Producer[int], 6)
	for i := range producers {
		producers[i] = func() (int, error) {
			calls++
			if i == 2 {
				return 0, boom
			}
			return i, nil
		}
	}

	got, err := Run(producers)
	require.Error(t, err)
	assert.Nil(t, got)
	assert.Equal(t, 3, calls, "producers after the failing index must not run")
	assert.ErrorIs(t, err, boom)

	var pe *ProducerError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 2, pe.Index)
}

func TestRun_Empty(t *testing.T) {
	got, err := Run[string](nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestMap(t *testing.T) {
	got, err := Map([]string{"a", "b"}, func(s string) (string, error) { return s + s, nil })
	require.NoError(t, err)
	assert.Equal(t, []string{"aa", "bb"}, got)
}

func TestOrZero(t *testing.T) {
	var seen error
	boom := errors.New("boom")
	got, err := Run([]Producer[string]{
		func() (string, error) { return "a", nil },
		OrZero(func() (string, error) { return "x", boom }, func(err error) { seen = err }),
		func() (string, error) { return "c", nil },
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "", "c"}, got)
	assert.ErrorIs(t, seen, boom)
}
