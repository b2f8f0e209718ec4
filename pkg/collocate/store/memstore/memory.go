package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/cognicore/collocate/pkg/collocate/assoc"
	"github.com/cognicore/collocate/pkg/collocate/internalerr"
	"github.com/cognicore/collocate/pkg/collocate/ngram"
	"github.com/cognicore/collocate/pkg/collocate/store"
)

// Store is an in-memory implementation of store.Store for tests.
type Store struct {
	mu       sync.RWMutex
	ids      *store.IDSource
	tables   map[tableKey]cachedCounts
	runs     map[string]store.Run
	rankings map[rankingKey]assoc.RankedList
}

type tableKey struct {
	corpus string
	n      int
}

type cachedCounts struct {
	counts      map[string]int64
	fingerprint string
}

type rankingKey struct {
	runID, method, kind string
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		ids:      store.NewIDSource(),
		tables:   make(map[tableKey]cachedCounts),
		runs:     make(map[string]store.Run),
		rankings: make(map[rankingKey]assoc.RankedList),
	}
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// SaveTable replaces the table for (corpus, n) with a copy of ct.
func (s *Store) SaveTable(ctx context.Context, corpusName string, ct store.CachedTable) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	counts := make(map[string]int64, ct.Table.Len())
	for k, v := range ct.Table.Counts {
		counts[k] = v
	}
	s.tables[tableKey{corpus: corpusName, n: ct.Table.N}] = cachedCounts{counts: counts, fingerprint: ct.Fingerprint}
	return nil
}

// LoadTable returns a copy of the saved table.
func (s *Store) LoadTable(ctx context.Context, corpusName string, n int) (store.CachedTable, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cached, ok := s.tables[tableKey{corpus: corpusName, n: n}]
	if !ok {
		return store.CachedTable{}, false, nil
	}
	t := ngram.NewTable(n)
	for k, v := range cached.counts {
		t.Counts[k] = v
	}
	return store.CachedTable{Table: t, Fingerprint: cached.fingerprint}, true, nil
}

// CreateRun records a run, assigning an id and timestamp when missing.
func (s *Store) CreateRun(ctx context.Context, r store.Run) (store.Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	if r.ID == "" {
		r.ID = s.ids.New(r.CreatedAt)
	}
	if _, ok := s.runs[r.ID]; ok {
		return store.Run{}, fmt.Errorf("run %s: %w", r.ID, internalerr.ErrDuplicate)
	}
	s.runs[r.ID] = r
	return r, nil
}

// ListRuns returns the runs of a corpus ordered by id.
func (s *Store) ListRuns(ctx context.Context, corpusName string) ([]store.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var runs []store.Run
	for _, r := range s.runs {
		if r.Corpus == corpusName {
			runs = append(runs, r)
		}
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].ID < runs[j].ID })
	return runs, nil
}

// SaveRanking stores a copy of list under an existing run.
func (s *Store) SaveRanking(ctx context.Context, runID, method, kind string, list assoc.RankedList) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.runs[runID]; !ok {
		return fmt.Errorf("run %s: %w", runID, internalerr.ErrNotFound)
	}
	cp := make(assoc.RankedList, len(list))
	copy(cp, list)
	s.rankings[rankingKey{runID: runID, method: method, kind: kind}] = cp
	return nil
}

// GetRanking returns a copy of a stored list.
func (s *Store) GetRanking(ctx context.Context, runID, method, kind string) (assoc.RankedList, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list, ok := s.rankings[rankingKey{runID: runID, method: method, kind: kind}]
	if !ok {
		return nil, false, nil
	}
	cp := make(assoc.RankedList, len(list))
	copy(cp, list)
	return cp, true, nil
}
