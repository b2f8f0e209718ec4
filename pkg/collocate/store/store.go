package store

import (
	"context"
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/cognicore/collocate/pkg/collocate/assoc"
	"github.com/cognicore/collocate/pkg/collocate/ngram"
)

// Store caches n-gram tables between runs and archives ranked lists.
type Store interface {
	Close() error

	// Tables
	SaveTable(ctx context.Context, corpusName string, ct CachedTable) error
	LoadTable(ctx context.Context, corpusName string, n int) (CachedTable, bool, error)

	// Runs & rankings
	CreateRun(ctx context.Context, r Run) (Run, error)
	ListRuns(ctx context.Context, corpusName string) ([]Run, error)
	SaveRanking(ctx context.Context, runID, method, kind string, list assoc.RankedList) error
	GetRanking(ctx context.Context, runID, method, kind string) (assoc.RankedList, bool, error)
}

// CachedTable is an n-gram table together with the fingerprint of the
// corpus it was counted from.
type CachedTable struct {
	Table       *ngram.Table
	Fingerprint string
}

// Run describes one scoring run over a corpus.
type Run struct {
	ID        string
	Corpus    string
	Documents int
	Tokens    int64
	CreatedAt time.Time
}

// IDSource hands out lexically sortable run ids.
type IDSource struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// NewIDSource creates an id source seeded from crypto/rand.
func NewIDSource() *IDSource {
	return &IDSource{entropy: ulid.Monotonic(rand.Reader, 0)}
}

// New returns a ULID for the given time.
func (s *IDSource) New(t time.Time) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), s.entropy).String()
}
