package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoissonInverseCDF(t *testing.T) {
	p := NewPoisson(976.5625)
	k := p.InverseCDF(0.9797)
	assert.InDelta(t, 1040, k, 3)
}

func TestPoissonMeanByCDFRoundTrip(t *testing.T) {
	// For k = InverseCDF(q), MeanByCDF(k-1, q) <= lambda <= MeanByCDF(k, q).
	const lambda = 500.0
	const q = 1e-6
	p := NewPoisson(lambda)
	k := p.InverseCDF(q)
	lower := MeanByCDF(k-1, q)
	upper := MeanByCDF(k, q)
	require.LessOrEqual(t, lower, upper)
	assert.GreaterOrEqual(t, lambda, lower-lambda*0.02)
	assert.LessOrEqual(t, lambda, upper+lambda*0.02)
}

func TestPoissonCDFAtNegativeIsZero(t *testing.T) {
	p := NewPoisson(5)
	assert.Equal(t, 0.0, p.CDF(-1))
}
