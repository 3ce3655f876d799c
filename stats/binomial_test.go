package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBinomialCDFMonotone(t *testing.T) {
	b := NewBinomial(48, 0.5)
	prev := 0.0
	for k := 0; k <= 48; k++ {
		cur := b.CDF(k)
		require.GreaterOrEqual(t, cur, prev)
		prev = cur
	}
	assert.InDelta(t, 1.0, b.CDF(48), 1e-9)
}

func TestBinomialCCDFMatchesPSkew(t *testing.T) {
	// PSkew[level] = 2 * CCDF(28+level) for Binomial(48, 0.5).
	b := NewBinomial(48, 0.5)
	for level, want := range PSkew {
		got := 2 * b.CCDF(28+level)
		assert.InDelta(t, want, got, 1e-6, "level %d", level)
	}
}

func TestInverseCDFFromTableMonotoneInPrevBound(t *testing.T) {
	k := InverseCDFFromTable(0, 200, 1e-9, 0)
	kAgain := InverseCDFFromTable(0, 200, 1e-9, k+5)
	assert.Equal(t, k+5, kAgain, "a higher previous bound must never be lowered")
}

func TestInverseCDFFromTableAgreesWithApproximation(t *testing.T) {
	const n = 300
	for level, p := range PSkew {
		table := InverseCDFFromTable(level, n, 1e-6, 0)
		approx := InverseCDFApproximate(n, p, 1e-6)
		assert.InDelta(t, approx, table, 1, "level %d", level)
	}
}

func TestInverseCDFFromTableIsUpperTailThreshold(t *testing.T) {
	// k returned must satisfy P[X > k] <= q, and be the smallest such k:
	// P[X > k-1] should exceed q (when k > 0).
	const n, level = 200, 0
	q := 1e-6
	k := InverseCDFFromTable(level, n, q, 0)
	b := NewBinomial(n, PSkew[level])
	assert.LessOrEqual(t, b.CCDF(k), q)
	if k > 0 {
		assert.Greater(t, b.CCDF(k-1), q)
	}
}

func TestSearchInverseCDFSmallestK(t *testing.T) {
	b := NewBinomial(100, 0.3)
	k := searchInverseCDF(0, 0.5, b.CDF)
	require.Greater(t, b.CDF(k), 0.0)
	assert.GreaterOrEqual(t, b.CDF(k), 0.5)
	if k > 0 {
		assert.Less(t, b.CDF(k-1), 0.5)
	}
}
