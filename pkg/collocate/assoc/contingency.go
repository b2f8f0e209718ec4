package assoc

import "math"

// Contingency is the 2×2 table of a bigram w1 w2:
//
//	         w2      ¬w2
//	w1      O11      O12
//	¬w1     O21      O22
type Contingency struct {
	O11, O12, O21, O22 float64
}

// NewContingency derives the table from the bigram count c12, the unigram
// counts c1 and c2 and the corpus size n. ok is false when a cell would be
// negative or the table is empty.
func NewContingency(c12, c1, c2, n int64) (Contingency, bool) {
	ct := Contingency{
		O11: float64(c12),
		O12: float64(c1 - c12),
		O21: float64(c2 - c12),
		O22: float64(n - c1 - c2 + c12),
	}
	if n <= 0 || ct.O11 < 0 || ct.O12 < 0 || ct.O21 < 0 || ct.O22 < 0 {
		return Contingency{}, false
	}
	return ct, true
}

// Total returns the sum of all four cells.
func (ct Contingency) Total() float64 {
	return ct.O11 + ct.O12 + ct.O21 + ct.O22
}

// Observed returns the cells in row-major order.
func (ct Contingency) Observed() [4]float64 {
	return [4]float64{ct.O11, ct.O12, ct.O21, ct.O22}
}

// Expected returns the cell counts implied by the marginals under
// independence, in row-major order.
func (ct Contingency) Expected() [4]float64 {
	n := ct.Total()
	if n == 0 {
		return [4]float64{}
	}
	r1, r2 := ct.O11+ct.O12, ct.O21+ct.O22
	k1, k2 := ct.O11+ct.O21, ct.O12+ct.O22
	return [4]float64{r1 * k1 / n, r1 * k2 / n, r2 * k1 / n, r2 * k2 / n}
}

// ChiSquare returns Pearson's X² = Σ (O - E)² / E. ok is false when any
// expected count is zero.
func (ct Contingency) ChiSquare() (float64, bool) {
	obs, exp := ct.Observed(), ct.Expected()
	var x2 float64
	for i := range obs {
		if exp[i] == 0 {
			return 0, false
		}
		d := obs[i] - exp[i]
		x2 += d * d / exp[i]
	}
	return x2, true
}

// LogLikelihood returns Dunning's G² = 2 Σ O ln(O / E), where cells with
// O = 0 contribute 0.
func (ct Contingency) LogLikelihood() (float64, bool) {
	obs, exp := ct.Observed(), ct.Expected()
	var sum float64
	for i := range obs {
		if obs[i] == 0 {
			continue
		}
		if exp[i] == 0 {
			return 0, false
		}
		sum += obs[i] * math.Log(obs[i]/exp[i])
	}
	g2 := 2 * sum
	// rounding can leave a perfectly independent table slightly below zero
	if g2 < 0 && g2 > -1e-9 {
		g2 = 0
	}
	return g2, true
}
