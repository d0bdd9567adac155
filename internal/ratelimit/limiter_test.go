package ratelimit

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pbaille/thoughts/internal/domain"
)

func TestRateLimiter_Burst(t *testing.T) {
	rl := NewRateLimiter(1, 2)

	assert.NoError(t, rl.CheckLimit("a"))
	assert.NoError(t, rl.CheckLimit("a"))
	assert.ErrorIs(t, rl.CheckLimit("a"), domain.ErrRateLimited)

	assert.True(t, rl.Allow("b"), "keys are independent")
	assert.Equal(t, 2, rl.Len())
}

func TestRateLimiter_Unlimited(t *testing.T) {
	rl := NewRateLimiter(0, 0)
	for i := 0; i < 100; i++ {
		assert.True(t, rl.Allow("a"))
	}
}

func TestRateLimiter_SameLimiterPerKey(t *testing.T) {
	rl := NewRateLimiter(5, 5)
	assert.Same(t, rl.GetLimiter("k"), rl.GetLimiter("k"))
}
