package assoc

import (
	"context"
	"math"
)

// TTest ranks bigrams by Student's t against the independence hypothesis.
type TTest struct{}

func (TTest) Name() string { return MethodTTest }

func (TTest) Score(ctx context.Context, in Input) (Result, error) {
	return scoreBigrams(ctx, MethodTTest, in, func(c12, c1, c2 int64, t totals) (float64, bool) {
		return TScore(c12, c1, c2, t.bigrams, t.unigrams)
	})
}

// TScore treats each bigram position as a Bernoulli trial:
//
//	t = (x̄ - μ) / sqrt(s² / N)
//
// with x̄ = c12/nBigrams the observed probability, μ = P(w1)P(w2) the
// expected probability under independence and s² ≈ x̄.
func TScore(c12, c1, c2, nBigrams, nUnigrams int64) (float64, bool) {
	if c12 <= 0 || nBigrams <= 0 || nUnigrams <= 0 {
		return 0, false
	}
	mean := float64(c12) / float64(nBigrams)
	expected := (float64(c1) / float64(nUnigrams)) * (float64(c2) / float64(nUnigrams))
	return (mean - expected) / math.Sqrt(mean/float64(nBigrams)), true
}
