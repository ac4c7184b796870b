package random

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSequence_Cycles(t *testing.T) {
	s := NewSequence(0.1, 0.5)
	assert.Equal(t, 0.1, s.Float64())
	assert.Equal(t, 0.5, s.Float64())
	assert.Equal(t, 0.1, s.Float64())
}

func TestSequence_Empty(t *testing.T) {
	assert.Equal(t, 0.0, NewSequence().Float64())
}

func TestIntn_Bounds(t *testing.T) {
	assert.Equal(t, 0, Intn(Fixed(0), 4))
	assert.Equal(t, 3, Intn(Fixed(0.9999999), 4))
	assert.Equal(t, 2, Intn(Fixed(0.5), 4))
}

func TestPercentAndBetween(t *testing.T) {
	assert.InDelta(t, 25.0, Percent(Fixed(0.25)), 1e-9)
	assert.InDelta(t, 0.55, Between(Fixed(0.5), 0.1, 1.0), 1e-9)
}

func TestNew_Seeded(t *testing.T) {
	a, b := New(42), New(42)
	assert.Equal(t, a.Float64(), b.Float64())
}
