package token

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEstimateCounter(t *testing.T) {
	c := EstimateCounter{}

	tests := []struct {
		text string
		want int
	}{
		{"", 0},
		{"a", 1},
		{"abcd", 1},
		{"abcde", 2},
		{strings.Repeat("x", 400), 100},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, c.Count(tt.text), "count of %q", tt.text)
	}
}

func TestTiktokenCounter(t *testing.T) {
	c, err := NewTiktokenCounter()
	if err != nil {
		// The encoding is fetched on first use; offline environments
		// fall back to the estimate counter in production too.
		t.Skipf("tiktoken encoding unavailable: %v", err)
	}

	assert.Equal(t, 0, c.Count(""))
	assert.Greater(t, c.Count("func Login(user string) error"), 0)

	// More text never counts fewer tokens.
	short := c.Count("hello")
	long := c.Count("hello world, hello again")
	assert.GreaterOrEqual(t, long, short)
}

func TestDefault(t *testing.T) {
	c := Default()
	require.NotNil(t, c)
	assert.Greater(t, c.Count("some text"), 0)
}
