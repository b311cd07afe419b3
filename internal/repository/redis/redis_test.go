package redis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWindowKey(t *testing.T) {
	start := time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC)

	key, reset := windowKey("10.0.0.1", start.Add(17*time.Second))
	assert.Equal(t, "crewchat:ratelimit:10.0.0.1:1748781000", key)
	assert.Equal(t, start.Add(time.Minute), reset)

	// same window until the minute turns
	sameKey, _ := windowKey("10.0.0.1", start.Add(59*time.Second))
	assert.Equal(t, key, sameKey)

	nextKey, nextReset := windowKey("10.0.0.1", start.Add(time.Minute))
	assert.NotEqual(t, key, nextKey)
	assert.Equal(t, start.Add(2*time.Minute), nextReset)

	otherKey, _ := windowKey("10.0.0.2", start)
	assert.NotEqual(t, key, otherKey)
}

func TestDecide(t *testing.T) {
	reset := time.Date(2025, 6, 1, 12, 31, 0, 0, time.UTC)

	tests := []struct {
		name      string
		count     int64
		allowed   bool
		remaining int
	}{
		{"first request", 1, true, 4},
		{"at limit", 5, true, 0},
		{"over limit", 6, false, 0},
		{"far over limit", 50, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := decide(tt.count, 5, reset)
			assert.Equal(t, tt.allowed, d.Allowed)
			assert.Equal(t, tt.remaining, d.Remaining)
			assert.Equal(t, 5, d.Limit)
			assert.Equal(t, reset, d.Reset)
		})
	}
}

func TestParseGeneration(t *testing.T) {
	gen, err := parseGeneration(nil)
	require.NoError(t, err)
	assert.Zero(t, gen)

	gen, err = parseGeneration("42")
	require.NoError(t, err)
	assert.Equal(t, int64(42), gen)

	_, err = parseGeneration("x")
	assert.Error(t, err)

	_, err = parseGeneration(7)
	assert.Error(t, err)
}
