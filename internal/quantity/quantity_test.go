package quantity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoundNeutralizesFloatDrift(t *testing.T) {
	// 0.1 + 0.2 ikili kayan noktada 0.30000000000000004
	assert.Equal(t, 0.3, Round(0.1+0.2))
	assert.Equal(t, 0.3, Sum(0.1, 0.2))
	assert.True(t, Equal(0.1+0.2, 0.3))
}

func TestRoundIdempotent(t *testing.T) {
	values := []float64{0, 0.005, 1.005, 2.675, 10.0/3.0, 99.999, -4.125, 1234567.891}
	for _, v := range values {
		once := Round(v)
		assert.Equal(t, once, Round(once), "Round idempotent olmalı: %v", v)
	}
}

func TestMulMatchesScaledRounding(t *testing.T) {
	// Reçete miktarı × parti miktarı hesabı
	assert.Equal(t, 7.5, Mul(0.25, 30))
	assert.Equal(t, 0.9, Mul(0.3, 3))
	assert.Equal(t, 33.33, Mul(1.111, 30))
}

func TestSumEmpty(t *testing.T) {
	assert.Equal(t, 0.0, Sum())
}
