package stats

import "gonum.org/v1/gonum/stat/distuv"

// Poisson wraps a Poisson(lambda) distribution.
type Poisson struct {
	dist distuv.Poisson
}

// NewPoisson returns a Poisson(lambda) kernel. lambda must be finite and
// non-negative; passing a NaN or negative lambda is a programmer error and
// will produce NaN results rather than panicking, consistent with the other
// kernels in this package.
func NewPoisson(lambda float64) Poisson {
	return Poisson{dist: distuv.Poisson{Lambda: lambda}}
}

// CDF returns P[X <= k].
func (p Poisson) CDF(k int) float64 {
	if k < 0 {
		return 0
	}
	return p.dist.CDF(float64(k))
}

// InverseCDF returns the smallest k such that CDF(k) >= q: the "max
// non-reported" value, documented that way because the reporting threshold
// falls exactly on a histogram bar.
func (p Poisson) InverseCDF(q float64) int {
	return searchInverseCDF(0, q, p.CDF)
}

// MeanByCDF returns the Poisson mean lambda such that
// Poisson(lambda).CDF(k) == cdf, via the classical identity relating the
// Poisson and chi-squared distributions:
//
//	lambda = ChiSquared(2*(k+1)).InverseCDF(1-cdf) / 2
//
// See https://stats.stackexchange.com/questions/119969. The result's
// precision is bounded by the chi-squared quantile approximation; callers
// apply their own safety margin rather than trusting this to the last bit.
func MeanByCDF(k int, cdf float64) float64 {
	chi := distuv.ChiSquared{K: float64(2 * (k + 1))}
	return chi.Quantile(1.0-cdf) / 2.0
}
