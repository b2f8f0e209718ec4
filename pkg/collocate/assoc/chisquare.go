package assoc

import "context"

// ChiSquare ranks bigrams by Pearson's chi-square statistic.
type ChiSquare struct{}

func (ChiSquare) Name() string { return MethodChiSquare }

func (ChiSquare) Score(ctx context.Context, in Input) (Result, error) {
	return scoreBigrams(ctx, MethodChiSquare, in, func(c12, c1, c2 int64, t totals) (float64, bool) {
		ct, ok := NewContingency(c12, c1, c2, t.unigrams)
		if !ok {
			return 0, false
		}
		return ct.ChiSquare()
	})
}
