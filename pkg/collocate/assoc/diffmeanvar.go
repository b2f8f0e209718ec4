package assoc

import (
	"context"

	"github.com/cognicore/collocate/pkg/collocate/ngram"
)

// DiffMeanVariance scores each bigram by how evenly it spreads across
// documents. For every document with at least one bigram window the rate
// r_d = count_d / windows_d is taken (zero when the bigram is absent) and
//
//	score = mean(r) - variance(r)
//
// with the population variance. It reads the corpus, not the bigram table.
type DiffMeanVariance struct{}

func (DiffMeanVariance) Name() string { return MethodDiffMeanVar }

type rateSums struct {
	sum, sumSq float64
}

func (DiffMeanVariance) Score(ctx context.Context, in Input) (Result, error) {
	res := Result{Method: MethodDiffMeanVar, Lists: map[string]RankedList{KindBigram: {}}}
	if in.Corpus.Len() == 0 {
		return res, nil
	}

	sums := make(map[string]*rateSums)
	var docs int
	for _, id := range in.Corpus.IDs() {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		d, _ := in.Corpus.Get(id)
		windows := ngram.Windows(len(d.Tokens), 2)
		if windows == 0 {
			continue
		}
		docs++
		local := ngram.NewTable(2)
		local.Add(d.Tokens)
		for key, c := range local.Counts {
			r := float64(c) / float64(windows)
			s := sums[key]
			if s == nil {
				s = &rateSums{}
				sums[key] = s
			}
			s.sum += r
			s.sumSq += r * r
		}
	}
	if docs == 0 {
		return res, nil
	}

	var r ranker
	n := float64(docs)
	for key, s := range sums {
		mean := s.sum / n
		variance := s.sumSq/n - mean*mean
		if variance < 0 {
			variance = 0
		}
		r.add(key, mean-variance, true)
	}
	res.Lists[KindBigram] = r.list(in.TopN)
	res.Skipped = r.skipped
	return res, nil
}
