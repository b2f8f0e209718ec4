package assoc

import (
	"context"
	"math"
)

// PMI ranks bigrams by pointwise mutual information.
type PMI struct{}

func (PMI) Name() string { return MethodPMI }

func (PMI) Score(ctx context.Context, in Input) (Result, error) {
	return scoreBigrams(ctx, MethodPMI, in, func(c12, c1, c2 int64, t totals) (float64, bool) {
		return PointwiseMI(c12, c1, c2, t.bigrams, t.unigrams)
	})
}

// PointwiseMI calculates
//
//	PMI(w1,w2) = log2( P(w1,w2) / (P(w1) P(w2)) )
//
// Where:
//   - P(w1,w2) = c12 / nBigrams
//   - P(wi)    = ci / nUnigrams
//
// No smoothing is applied. ok is false when any count or total is zero.
func PointwiseMI(c12, c1, c2, nBigrams, nUnigrams int64) (float64, bool) {
	if c12 <= 0 || c1 <= 0 || c2 <= 0 || nBigrams <= 0 || nUnigrams <= 0 {
		return 0, false
	}
	pJoint := float64(c12) / float64(nBigrams)
	p1 := float64(c1) / float64(nUnigrams)
	p2 := float64(c2) / float64(nUnigrams)
	return math.Log2(pJoint / (p1 * p2)), true
}
