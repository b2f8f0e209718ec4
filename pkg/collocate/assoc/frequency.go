package assoc

import (
	"context"

	"github.com/cognicore/collocate/pkg/collocate/ngram"
)

// Frequency ranks bigrams and trigrams by raw occurrence count.
type Frequency struct{}

func (Frequency) Name() string { return MethodFrequency }

// Score returns two independently capped lists, KindBigram and KindTrigram.
func (Frequency) Score(ctx context.Context, in Input) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	return Result{
		Method: MethodFrequency,
		Lists: map[string]RankedList{
			KindBigram:  byCount(in.Bigrams, in.TopN),
			KindTrigram: byCount(in.Trigrams, in.TopN),
		},
	}, nil
}

func byCount(t *ngram.Table, topN int) RankedList {
	cands := make([]Candidate, 0, t.Len())
	if t != nil {
		for key, c := range t.Counts {
			if c <= 0 {
				continue
			}
			cands = append(cands, Candidate{NGram: key, Score: float64(c)})
		}
	}
	return Rank(cands, topN)
}
