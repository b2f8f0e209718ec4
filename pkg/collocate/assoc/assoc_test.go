package assoc

import (
	"context"
	"errors"
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/cognicore/collocate/pkg/collocate/corpus"
	"github.com/cognicore/collocate/pkg/collocate/internalerr"
	"github.com/cognicore/collocate/pkg/collocate/ngram"
)

const eps = 1e-9

func inputFor(c *corpus.Corpus, topN int) Input {
	return Input{
		Corpus:   c,
		Unigrams: ngram.Count(c, 1),
		Bigrams:  ngram.Count(c, 2),
		Trigrams: ngram.Count(c, 3),
		TopN:     topN,
	}
}

func allScorers() []Scorer {
	var out []Scorer
	for _, name := range Methods() {
		s, err := Lookup(name)
		if err != nil {
			panic(err)
		}
		out = append(out, s)
	}
	return out
}

func names(list RankedList) []string {
	out := make([]string, len(list))
	for i, c := range list {
		out[i] = c.NGram
	}
	return out
}

func scoreOf(list RankedList, ngram string) (float64, bool) {
	for _, c := range list {
		if c.NGram == ngram {
			return c.Score, true
		}
	}
	return 0, false
}

func TestEmptyCorpusAllScorers(t *testing.T) {
	ctx := context.Background()
	inputs := map[string]Input{
		"empty corpus": inputFor(corpus.New(), DefaultTopN),
		"nil tables":   {TopN: DefaultTopN},
	}
	for label, in := range inputs {
		for _, s := range allScorers() {
			res, err := s.Score(ctx, in)
			if err != nil {
				t.Errorf("%s/%s: unexpected error %v", label, s.Name(), err)
				continue
			}
			if res.Method != s.Name() {
				t.Errorf("%s/%s: result method %q", label, s.Name(), res.Method)
			}
			if len(res.Lists) == 0 {
				t.Errorf("%s/%s: expected at least one (empty) list", label, s.Name())
			}
			for kind, list := range res.Lists {
				if list == nil || len(list) != 0 {
					t.Errorf("%s/%s/%s: expected empty non-nil list, got %v", label, s.Name(), kind, list)
				}
			}
		}
	}
}

func TestScorersDeterministic(t *testing.T) {
	in := inputFor(legalCorpus(), 0)
	for _, s := range allScorers() {
		a, err := s.Score(context.Background(), in)
		if err != nil {
			t.Fatal(err)
		}
		b, err := s.Score(context.Background(), in)
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(a, b) {
			t.Errorf("%s: two runs over the same tables differ", s.Name())
		}
	}
}

func TestScorersOrderIndependent(t *testing.T) {
	texts := []string{
		"yüksek mahkeme genel kurul kararı ile dava reddedildi",
		"genel kurul kararı kesinleşti ve dava düştü",
		"yüksek mahkeme genel kurul toplantısı yapıldı",
	}
	forward, backward := corpus.New(), corpus.New()
	for i := range texts {
		forward.Add(corpus.Document{ID: string(rune('a' + i)), Tokens: strings.Fields(texts[i])})
		// same texts under permuted ids, so traversal order differs too
		backward.Add(corpus.Document{ID: string(rune('a' + i)), Tokens: strings.Fields(texts[len(texts)-1-i])})
	}

	for _, s := range []Scorer{PMI{}, TTest{}, ChiSquare{}, LikelihoodRatio{}} {
		a, _ := s.Score(context.Background(), inputFor(forward, 0))
		b, _ := s.Score(context.Background(), inputFor(backward, 0))
		if !reflect.DeepEqual(a.Lists, b.Lists) {
			t.Errorf("%s: document order changed the ranking", s.Name())
		}
	}
}

func TestRankTiesAndTopN(t *testing.T) {
	cands := []Candidate{
		{NGram: "b", Score: 1},
		{NGram: "a", Score: 1},
		{NGram: "c", Score: 3},
		{NGram: "d", Score: -1},
	}
	list := Rank(cands, 0)
	if got := strings.Join(names(list), ","); got != "c,a,b,d" {
		t.Errorf("Expected c,a,b,d got %s", got)
	}

	top := Rank([]Candidate{{"x", 1}, {"y", 2}, {"z", 3}}, 2)
	if got := strings.Join(names(top), ","); got != "z,y" {
		t.Errorf("Expected z,y got %s", got)
	}
}

func TestRankerSkipsNonFinite(t *testing.T) {
	var r ranker
	r.add("nan", math.NaN(), true)
	r.add("inf", math.Inf(1), true)
	r.add("undefined", 1, false)
	r.add("ok", 1, true)
	if r.skipped != 3 {
		t.Errorf("Expected 3 skipped, got %d", r.skipped)
	}
	if len(r.list(0)) != 1 {
		t.Error("Only the finite candidate should remain")
	}
}

func TestMalformedBigramKeysSkipped(t *testing.T) {
	bigrams := ngram.NewTable(2)
	bigrams.Counts["kitap okumak"] = 2
	bigrams.Counts["tek"] = 1
	unigrams := ngram.NewTable(1)
	unigrams.Counts["kitap"] = 2
	unigrams.Counts["okumak"] = 2

	res, err := PMI{}.Score(context.Background(), Input{Unigrams: unigrams, Bigrams: bigrams})
	if err != nil {
		t.Fatal(err)
	}
	if res.Skipped != 1 {
		t.Errorf("Expected 1 skipped candidate, got %d", res.Skipped)
	}
	if len(res.Lists[KindBigram]) != 1 {
		t.Errorf("Expected 1 ranked bigram, got %v", res.Lists[KindBigram])
	}
}

func TestScorerCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	in := inputFor(legalCorpus(), 0)
	for _, s := range allScorers() {
		if _, err := s.Score(ctx, in); !errors.Is(err, context.Canceled) {
			t.Errorf("%s: expected context.Canceled, got %v", s.Name(), err)
		}
	}
}

func TestLookup(t *testing.T) {
	for _, name := range Methods() {
		s, err := Lookup(name)
		if err != nil {
			t.Fatalf("Lookup(%q): %v", name, err)
		}
		if s.Name() != name {
			t.Errorf("Lookup(%q) returned %q", name, s.Name())
		}
	}

	_, err := Lookup("mutual_info")
	if !errors.Is(err, internalerr.ErrUnknownMethod) {
		t.Errorf("Expected ErrUnknownMethod, got %v", err)
	}
	if !errors.Is(err, internalerr.ErrInvalidConfig) {
		t.Errorf("Unknown method should be a configuration error, got %v", err)
	}
	if !strings.Contains(err.Error(), "mutual_info") {
		t.Errorf("Error should name the method: %v", err)
	}
}

func TestMethods(t *testing.T) {
	want := []string{"frequency", "pmi", "t_test", "diff_mean_var", "hypothesis_testing_diff", "chi_square", "likelihood_ratios"}
	if !reflect.DeepEqual(Methods(), want) {
		t.Errorf("Methods() = %v", Methods())
	}

	for _, m := range DefaultMethods(false) {
		if m == MethodHypothesisDiff {
			t.Error("hypothesis_testing_diff should be opt-in")
		}
	}
	if len(DefaultMethods(false)) != 6 || len(DefaultMethods(true)) != 7 {
		t.Error("DefaultMethods should toggle only the hypothesis difference")
	}
}

// legalCorpus has one strong collocation ("yüksek mahkeme", always together)
// and a weaker one ("mahkeme genel").
func legalCorpus() *corpus.Corpus {
	return corpus.FromText(map[string]string{
		"1": "yüksek mahkeme genel kurul kararı ile dava reddedildi",
		"2": "genel kurul kararı kesinleşti ve dava düştü",
		"3": "yüksek mahkeme genel kurul toplantısı yapıldı",
		"4": "dava dosyası yüksek mahkeme önüne geldi",
		"5": "karar genel olarak kabul edildi dava",
	})
}
