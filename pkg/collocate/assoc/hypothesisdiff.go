package assoc

import (
	"context"
	"math"
)

// HypothesisDiff tests whether a bigram is chosen significantly more often
// than each of its competitors, the bigrams that share one of its words:
//
//	t = (c - c') / sqrt(c + c')
//
// The score of a bigram is its smallest t over all competitors, so a high
// score means it beats every alternative. Bigrams without competitors are
// skipped. The cost grows with the square of the competitor sets, which is
// why the method is left out of the default selection.
type HypothesisDiff struct{}

func (HypothesisDiff) Name() string { return MethodHypothesisDiff }

func (HypothesisDiff) Score(ctx context.Context, in Input) (Result, error) {
	res := Result{Method: MethodHypothesisDiff, Lists: map[string]RankedList{KindBigram: {}}}
	if in.Bigrams.Len() == 0 {
		return res, nil
	}

	byFirst := make(map[string][]string)
	bySecond := make(map[string][]string)
	keys := in.Bigrams.Keys()
	for _, key := range keys {
		w1, w2, ok := bigramParts(key)
		if !ok {
			continue
		}
		byFirst[w1] = append(byFirst[w1], key)
		bySecond[w2] = append(bySecond[w2], key)
	}

	var r ranker
	for _, key := range keys {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		w1, w2, ok := bigramParts(key)
		if !ok {
			r.skipped++
			continue
		}
		c := in.Bigrams.Get(key)
		minT, seen := math.Inf(1), false
		for _, group := range [2][]string{byFirst[w1], bySecond[w2]} {
			for _, other := range group {
				if other == key {
					continue
				}
				t, ok := DiffScore(c, in.Bigrams.Get(other))
				if !ok {
					continue
				}
				seen = true
				if t < minT {
					minT = t
				}
			}
		}
		r.add(key, minT, seen)
	}
	res.Lists[KindBigram] = r.list(in.TopN)
	res.Skipped = r.skipped
	return res, nil
}

// DiffScore approximates the t statistic for the difference of two counts.
func DiffScore(c, other int64) (float64, bool) {
	if c+other <= 0 {
		return 0, false
	}
	return float64(c-other) / math.Sqrt(float64(c+other)), true
}
