package assoc

import "context"

// LikelihoodRatio ranks bigrams by the log-likelihood ratio G².
type LikelihoodRatio struct{}

func (LikelihoodRatio) Name() string { return MethodLikelihoodRatios }

func (LikelihoodRatio) Score(ctx context.Context, in Input) (Result, error) {
	return scoreBigrams(ctx, MethodLikelihoodRatios, in, func(c12, c1, c2 int64, t totals) (float64, bool) {
		ct, ok := NewContingency(c12, c1, c2, t.unigrams)
		if !ok {
			return 0, false
		}
		return ct.LogLikelihood()
	})
}
