// Package collocate runs the collocation pipeline: cleaning raw decisions
// into a corpus, counting n-grams, and ranking candidates with association
// measures. Each phase reads the previous phase's artifacts from disk.
package collocate

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/cognicore/collocate/pkg/collocate/assoc"
	"github.com/cognicore/collocate/pkg/collocate/config"
	"github.com/cognicore/collocate/pkg/collocate/corpus"
	"github.com/cognicore/collocate/pkg/collocate/export"
	"github.com/cognicore/collocate/pkg/collocate/ingest"
	"github.com/cognicore/collocate/pkg/collocate/internalerr"
	"github.com/cognicore/collocate/pkg/collocate/metrics"
	"github.com/cognicore/collocate/pkg/collocate/ngram"
	"github.com/cognicore/collocate/pkg/collocate/store"
)

// Engine is the pipeline facade
type Engine struct {
	cfg     config.Config
	store   store.Store
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// Options configures an Engine. Store and Metrics are optional.
type Options struct {
	Config  config.Config
	Store   store.Store
	Metrics *metrics.Metrics
	Logger  *slog.Logger
}

// New creates an Engine with the given dependencies
func New(opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	m := opts.Metrics
	if m == nil {
		m = metrics.New()
	}
	return &Engine{cfg: opts.Config, store: opts.Store, metrics: m, logger: logger}
}

// Close releases the store, if any
func (e *Engine) Close() error {
	if e.store == nil {
		return nil
	}
	return e.store.Close()
}

// Clean tokenizes every raw document and writes the cleaned corpus.
func (e *Engine) Clean(ctx context.Context) (*corpus.Corpus, ingest.Report, error) {
	comps, err := e.cfg.Build(e.logger.With("component", "ingest"))
	if err != nil {
		return nil, ingest.Report{}, err
	}
	c, report, err := comps.Pipeline.ProcessDir(ctx, e.cfg.RawPath())
	if err != nil {
		return nil, report, err
	}
	if err := corpus.Save(e.cfg.CorpusPath(), c); err != nil {
		return nil, report, fmt.Errorf("save corpus: %w", err)
	}

	e.metrics.Documents.Set(float64(c.Len()))
	e.metrics.SkippedDocuments.Set(float64(len(report.Skipped)))
	e.metrics.Tokens.Set(float64(c.TokenCount()))
	e.logger.Info("corpus cleaned",
		"path", e.cfg.CorpusPath(),
		"documents", c.Len(),
		"skipped", len(report.Skipped),
		"tokens", c.TokenCount())
	return c, report, nil
}

// ExportNGrams counts bigrams and trigrams over the cleaned corpus, writes
// the JSON tables next to it and refreshes the cache.
func (e *Engine) ExportNGrams(ctx context.Context) (map[int]*ngram.Table, error) {
	c, err := corpus.Load(e.cfg.CorpusPath())
	if err != nil {
		return nil, err
	}
	tables, err := ngram.Build(ctx, c, 2, 3)
	if err != nil {
		return nil, err
	}
	fingerprint := c.Fingerprint()
	for _, n := range []int{2, 3} {
		t := tables[n]
		path := filepath.Join(e.cfg.DataDir, ngram.FileName(n, e.cfg.Name))
		if err := ngram.Save(path, t); err != nil {
			return nil, fmt.Errorf("save %d-grams: %w", n, err)
		}
		if e.store != nil {
			if err := e.store.SaveTable(ctx, e.cfg.Name, store.CachedTable{Table: t, Fingerprint: fingerprint}); err != nil {
				return nil, fmt.Errorf("cache %d-grams: %w", n, err)
			}
		}
		e.metrics.ObserveTable(n, t.Len())
		e.logger.Info("n-grams exported", "n", n, "path", path, "unique", t.Len(), "total", t.Total())
	}
	return tables, nil
}

// Outcome reports one scorer run.
type Outcome struct {
	Method   string
	Paths    []string
	Skipped  int
	Duration time.Duration
	Result   assoc.Result
}

// Score runs the named methods concurrently over shared read-only tables and
// exports each result. All names are checked before any work starts.
func (e *Engine) Score(ctx context.Context, methods []string) ([]Outcome, error) {
	if len(methods) == 0 {
		methods = e.cfg.SelectedMethods()
	}
	scorers := make([]assoc.Scorer, len(methods))
	for i, m := range methods {
		s, err := assoc.Lookup(m)
		if err != nil {
			return nil, err
		}
		scorers[i] = s
	}

	in, c, err := e.loadInput(ctx)
	if err != nil {
		return nil, err
	}

	var run store.Run
	if e.store != nil {
		run, err = e.store.CreateRun(ctx, store.Run{
			Corpus:    e.cfg.Name,
			Documents: c.Len(),
			Tokens:    c.TokenCount(),
		})
		if err != nil {
			return nil, fmt.Errorf("create run: %w", err)
		}
	}

	exporter := export.Exporter{Dir: e.cfg.OutputDir}
	outcomes := make([]Outcome, len(scorers))
	var mu sync.Mutex // guards store writes
	g, gctx := errgroup.WithContext(ctx)
	for i, s := range scorers {
		g.Go(func() error {
			scorerIn := in
			scorerIn.TopN = e.cfg.TopNFor(s.Name())

			start := time.Now()
			res, err := s.Score(gctx, scorerIn)
			if err != nil {
				return fmt.Errorf("%s: %w", s.Name(), err)
			}
			elapsed := time.Since(start)

			paths, err := exporter.WriteResult(res)
			if err != nil {
				return fmt.Errorf("export %s: %w", s.Name(), err)
			}
			if e.store != nil {
				mu.Lock()
				err = saveRankings(gctx, e.store, run.ID, res)
				mu.Unlock()
				if err != nil {
					return fmt.Errorf("archive %s: %w", s.Name(), err)
				}
			}

			sizes := make(map[string]int, len(res.Lists))
			for kind, list := range res.Lists {
				sizes[kind] = len(list)
			}
			e.metrics.ObserveScorer(s.Name(), elapsed, res.Skipped, sizes)
			e.logger.Info("collocations exported",
				"method", s.Name(),
				"files", paths,
				"skipped", res.Skipped,
				"duration", elapsed)

			outcomes[i] = Outcome{Method: s.Name(), Paths: paths, Skipped: res.Skipped, Duration: elapsed, Result: res}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	e.metrics.MarkSuccess(time.Now())
	return outcomes, nil
}

// Runs lists the archived runs of the configured corpus, oldest first.
func (e *Engine) Runs(ctx context.Context) ([]store.Run, error) {
	if e.store == nil {
		return nil, fmt.Errorf("archived runs need cache_path: %w", internalerr.ErrInvalidConfig)
	}
	return e.store.ListRuns(ctx, e.cfg.Name)
}

// Ranking returns an archived ranked list and the id of the run it belongs
// to. An empty runID selects the latest run.
func (e *Engine) Ranking(ctx context.Context, runID, method, kind string) (string, assoc.RankedList, error) {
	if runID == "" {
		runs, err := e.Runs(ctx)
		if err != nil {
			return "", nil, err
		}
		if len(runs) == 0 {
			return "", nil, fmt.Errorf("no runs for %s: %w", e.cfg.Name, internalerr.ErrNotFound)
		}
		runID = runs[len(runs)-1].ID
	} else if e.store == nil {
		return "", nil, fmt.Errorf("archived runs need cache_path: %w", internalerr.ErrInvalidConfig)
	}

	list, ok, err := e.store.GetRanking(ctx, runID, method, kind)
	if err != nil {
		return "", nil, err
	}
	if !ok {
		return "", nil, fmt.Errorf("run %s has no %s %s list: %w", runID, method, kind, internalerr.ErrNotFound)
	}
	return runID, list, nil
}

// WriteMetrics flushes the run metrics to the configured textfile.
func (e *Engine) WriteMetrics() error {
	return e.metrics.WriteTextfile(e.cfg.Metrics.Textfile)
}

func saveRankings(ctx context.Context, st store.Store, runID string, res assoc.Result) error {
	for kind, list := range res.Lists {
		if err := st.SaveRanking(ctx, runID, res.Method, kind, list); err != nil {
			return err
		}
	}
	return nil
}

// loadInput reads the corpus, derives unigrams and loads bigram and trigram
// tables counted from that same corpus: from the cache when its fingerprint
// matches, otherwise from the JSON files.
func (e *Engine) loadInput(ctx context.Context) (assoc.Input, *corpus.Corpus, error) {
	c, err := corpus.Load(e.cfg.CorpusPath())
	if err != nil {
		return assoc.Input{}, nil, err
	}
	in := assoc.Input{Corpus: c, Unigrams: ngram.Count(c, 1)}
	fingerprint := c.Fingerprint()
	for _, n := range []int{2, 3} {
		t, err := e.loadTable(ctx, c, fingerprint, n)
		if err != nil {
			return assoc.Input{}, nil, err
		}
		if n == 2 {
			in.Bigrams = t
		} else {
			in.Trigrams = t
		}
	}
	e.metrics.Documents.Set(float64(c.Len()))
	e.metrics.Tokens.Set(float64(in.Unigrams.Total()))
	return in, c, nil
}

func (e *Engine) loadTable(ctx context.Context, c *corpus.Corpus, fingerprint string, n int) (*ngram.Table, error) {
	if e.store != nil {
		cached, ok, err := e.store.LoadTable(ctx, e.cfg.Name, n)
		if err != nil {
			return nil, fmt.Errorf("cached %d-grams: %w", n, err)
		}
		switch {
		case ok && cached.Fingerprint == fingerprint:
			e.logger.Debug("n-grams loaded from cache", "n", n, "unique", cached.Table.Len())
			return cached.Table, nil
		case ok:
			e.logger.Warn("cached n-grams were counted from another corpus, reading files",
				"n", n, "cached", cached.Fingerprint, "corpus", fingerprint)
		}
	}

	path := filepath.Join(e.cfg.DataDir, ngram.FileName(n, e.cfg.Name))
	t, err := ngram.Load(path, n)
	if err != nil {
		return nil, err
	}
	if got, want := t.Total(), ngram.WindowTotal(c, n); got != want {
		return nil, internalerr.NewInputError(path,
			fmt.Errorf("%d-gram total %d does not match the corpus (%d windows), rerun ngrams", n, got, want))
	}
	return t, nil
}
