package stats

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// MaxSplitsWithPrecomputedCDF is the largest n for which InverseCDFFromTable
// can be used instead of falling back to InverseCDFApproximate. It bounds the size of precomputedBinomialQuantiles.
const MaxSplitsWithPrecomputedCDF = 512

// numQuantileBuckets is the number of discrete probability buckets the
// precomputed table is indexed by. Bucket b covers q = 2^-(b+1), so the
// table stays useful for reporting probabilities as small as 2^-numQuantileBuckets.
const numQuantileBuckets = 64

// precomputedBinomialQuantiles[level][n][bucket] holds the smallest k such
// that the upper tail P[X > k] of Binomial(n, PSkew[level]) is at most
// 2^-(bucket+1); equivalently, the smallest k with CDF(k) >= 1 - 2^-(bucket+1).
// This is the "max non-reported count" threshold: observing more than k
// skewed splits out of n is no more likely than the bucket's tail
// probability under a uniformly random hash function. Built once at package
// init so that the hot path of the monitor's AccountSegmentSplit never
// allocates or computes a CDF for small n.
var precomputedBinomialQuantiles [len(PSkew)][MaxSplitsWithPrecomputedCDF + 1][numQuantileBuckets]uint16

func init() {
	for level, p := range PSkew {
		for n := 0; n <= MaxSplitsWithPrecomputedCDF; n++ {
			dist := distuv.Binomial{N: float64(n), P: p}
			k := 0
			for bucket := 0; bucket < numQuantileBuckets; bucket++ {
				tailProb := math.Ldexp(1, -(bucket + 1))
				k = searchInverseCDF(k, 1-tailProb, func(x int) float64 { return dist.CDF(float64(x)) })
				precomputedBinomialQuantiles[level][n][bucket] = uint16(k)
			}
		}
	}
}

// PSkew holds, for skewness levels 0..3, the probability (under a uniform
// hash function) that a segment split observes at least 29+level keys
// falling into either half of its hash table: twice the upper tail of
// Binomial(48, 1/2) at 28+level.
var PSkew = [4]float64{
	0.1934126528619373175388,
	0.1114028910610187494967,
	0.05946337525377032307006,
	0.02930494672052930127392,
}

// Binomial wraps a Binomial(n, p) distribution, exposing its CDF and CCDF
// at integer arguments.
type Binomial struct {
	n    int
	dist distuv.Binomial
}

// NewBinomial returns a Binomial(n, p) kernel.
func NewBinomial(n int, p float64) Binomial {
	return Binomial{n: n, dist: distuv.Binomial{N: float64(n), P: p}}
}

// CDF returns P[X <= k].
func (b Binomial) CDF(k int) float64 {
	if k < 0 {
		return 0
	}
	return b.dist.CDF(float64(k))
}

// CCDF returns P[X > k].
func (b Binomial) CCDF(k int) float64 {
	return 1.0 - b.CDF(k)
}

// InverseCDFFromTable returns the largest non-reported count threshold for
// Binomial(n, PSkew[level]) at tail probability q: the smallest k such that
// P[X > k] <= q, using the precomputed table. n must be within
// [0, MaxSplitsWithPrecomputedCDF]. The lookup rounds q down to the nearest
// bucket boundary (a smaller tail probability, hence a threshold that is
// never an under-estimate); kPrev, a previously computed valid bound, is
// combined with the table value via max so that repeated calls for growing n
// never regress.
func InverseCDFFromTable(level, n int, q float64, kPrev int) int {
	bucket := quantileBucket(q)
	k := int(precomputedBinomialQuantiles[level][n][bucket])
	if kPrev > k {
		return kPrev
	}
	return k
}

func quantileBucket(q float64) int {
	if q <= 0 {
		return numQuantileBuckets - 1
	}
	// q = 2^-(bucket+1) => bucket = -log2(q) - 1. Round up (toward smaller q,
	// larger bucket index) so the resulting k is never an under-estimate.
	bucket := int(math.Ceil(-math.Log2(q))) - 1
	if bucket < 0 {
		return 0
	}
	if bucket >= numQuantileBuckets {
		return numQuantileBuckets - 1
	}
	return bucket
}

// InverseCDFApproximate returns the largest non-reported count threshold for
// Binomial(n, p) at tail probability q: the smallest k such that
// P[X > k] <= q, via monotonic search over the exact CDF. It is used for n
// beyond MaxSplitsWithPrecomputedCDF, where a full table would be too large
// to precompute.
func InverseCDFApproximate(n int, p, q float64) int {
	b := NewBinomial(n, p)
	return searchInverseCDF(0, 1-q, b.CDF)
}

// searchInverseCDF returns the smallest k >= kPrev such that cdf(k) >= q,
// assuming cdf is non-decreasing. It first doubles a step to bracket the
// answer, then binary searches, so the cost is O(log(k-kPrev)) evaluations
// of cdf.
func searchInverseCDF(kPrev int, q float64, cdf func(int) float64) int {
	if cdf(kPrev) >= q {
		return kPrev
	}
	lo, step := kPrev, 1
	for cdf(lo+step) < q {
		lo += step
		step *= 2
	}
	hi := lo + step
	for lo < hi {
		mid := lo + (hi-lo)/2
		if cdf(mid) >= q {
			hi = mid
		} else {
			lo = mid + 1
		}
	}
	return lo
}
