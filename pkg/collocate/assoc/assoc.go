// Package assoc ranks collocation candidates with association measures over
// n-gram frequency tables.
//
// Every scorer is deterministic: candidates are ordered by score descending,
// ties broken by the n-gram string ascending. A candidate whose score would
// need a zero denominator, the log of zero or would not be finite is skipped
// and counted in Result.Skipped rather than reported as an error.
package assoc

import (
	"context"
	"math"
	"sort"

	"github.com/cognicore/collocate/pkg/collocate/corpus"
	"github.com/cognicore/collocate/pkg/collocate/ngram"
)

// DefaultTopN is the number of candidates kept when the caller does not say.
const DefaultTopN = 200

// Kinds of ranked lists a scorer can produce.
const (
	KindBigram  = "bigram"
	KindTrigram = "trigram"
)

// Candidate is a scored n-gram.
type Candidate struct {
	NGram string
	Score float64
}

// RankedList is an ordered slice of candidates, best first.
type RankedList []Candidate

// Input carries the read-only tables a scorer consumes. Tables must not be
// modified while scorers run.
type Input struct {
	Corpus   *corpus.Corpus
	Unigrams *ngram.Table
	Bigrams  *ngram.Table
	Trigrams *ngram.Table

	// TopN caps every ranked list; zero or negative keeps all candidates.
	TopN int
}

// Result is the output of one scorer run.
type Result struct {
	Method  string
	Lists   map[string]RankedList
	Skipped int
}

// Scorer ranks collocation candidates.
type Scorer interface {
	Name() string
	Score(ctx context.Context, in Input) (Result, error)
}

// ranker accumulates candidates for one list.
type ranker struct {
	cands   []Candidate
	skipped int
}

// add records a candidate; ok=false or a non-finite score skips it.
func (r *ranker) add(key string, score float64, ok bool) {
	if !ok || math.IsNaN(score) || math.IsInf(score, 0) {
		r.skipped++
		return
	}
	r.cands = append(r.cands, Candidate{NGram: key, Score: score})
}

func (r *ranker) list(topN int) RankedList {
	return Rank(r.cands, topN)
}

// Rank sorts candidates by score descending, n-gram ascending on ties, and
// keeps the first topN (all when topN <= 0). The input slice is reordered.
func Rank(cands []Candidate, topN int) RankedList {
	sort.Slice(cands, func(i, j int) bool {
		if cands[i].Score == cands[j].Score {
			return cands[i].NGram < cands[j].NGram
		}
		return cands[i].Score > cands[j].Score
	})
	if topN > 0 && len(cands) > topN {
		cands = cands[:topN]
	}
	out := make(RankedList, len(cands))
	copy(out, cands)
	return out
}

// totals holds corpus-wide counts computed once per run.
type totals struct {
	unigrams int64
	bigrams  int64
}

func totalsOf(in Input) totals {
	return totals{unigrams: in.Unigrams.Total(), bigrams: in.Bigrams.Total()}
}

// bigramParts splits a bigram key; keys that are not bigrams report false.
func bigramParts(key string) (string, string, bool) {
	parts := ngram.Split(key)
	if len(parts) != 2 {
		return "", "", false
	}
	return parts[0], parts[1], true
}

// scoreBigrams applies fn to every bigram with its unigram counts and ranks
// the results as a single bigram list.
func scoreBigrams(ctx context.Context, method string, in Input, fn func(c12, c1, c2 int64, t totals) (float64, bool)) (Result, error) {
	res := Result{Method: method, Lists: map[string]RankedList{KindBigram: {}}}
	if in.Bigrams.Len() == 0 {
		return res, nil
	}
	t := totalsOf(in)
	var r ranker
	for i, key := range in.Bigrams.Keys() {
		if i%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return Result{}, err
			}
		}
		w1, w2, ok := bigramParts(key)
		if !ok {
			r.skipped++
			continue
		}
		score, ok := fn(in.Bigrams.Get(key), in.Unigrams.Get(w1), in.Unigrams.Get(w2), t)
		r.add(key, score, ok)
	}
	res.Lists[KindBigram] = r.list(in.TopN)
	res.Skipped = r.skipped
	return res, nil
}
