package aptx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClipIntP2(t *testing.T) {
	testCases := []struct {
		name     string
		a        int32
		p        uint
		expected int32
	}{
		{"zero", 0, 23, 0},
		{"max", (1 << 23) - 1, 23, (1 << 23) - 1},
		{"min", -(1 << 23), 23, -(1 << 23)},
		{"overflow positive", 1 << 23, 23, (1 << 23) - 1},
		{"overflow negative", -(1 << 23) - 1, 23, -(1 << 23)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, clipIntP2(tc.a, tc.p))
		})
	}
}

func TestClip(t *testing.T) {
	assert.Equal(t, int32(5), clip(5, 0, 10))
	assert.Equal(t, int32(0), clip(-5, 0, 10))
	assert.Equal(t, int32(10), clip(15, 0, 10))
}

func TestSignExtend(t *testing.T) {
	assert.Equal(t, int32(-1), signExtend(0x7F, 7))
	assert.Equal(t, int32(63), signExtend(0x3F, 7))
	assert.Equal(t, int32(-64), signExtend(0x40, 7))
}

func TestDiffSign(t *testing.T) {
	assert.Equal(t, int32(1), diffSign(5, 3))
	assert.Equal(t, int32(-1), diffSign(3, 5))
	assert.Equal(t, int32(0), diffSign(5, 5))
}

func TestRshift32Rounding(t *testing.T) {
	assert.Equal(t, int32(4), rshift32(8, 1))
	assert.Equal(t, int32(0), rshift32(1, 1))
	assert.Equal(t, int32(-1), rshift32(-2, 1))
}
