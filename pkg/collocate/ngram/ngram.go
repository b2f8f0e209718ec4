// Package ngram builds exact n-gram frequency tables over a corpus.
package ngram

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/cognicore/collocate/pkg/collocate/corpus"
	"github.com/cognicore/collocate/pkg/collocate/internalerr"
	"github.com/cognicore/collocate/pkg/collocate/jsonfile"
)

// Separator joins the tokens of an n-gram key.
const Separator = " "

// Table maps n-gram keys to occurrence counts for a single N.
type Table struct {
	N      int
	Counts map[string]int64
}

// NewTable creates an empty table for n-grams of size n
func NewTable(n int) *Table {
	return &Table{N: n, Counts: make(map[string]int64)}
}

// Get returns the count for key, zero if absent.
func (t *Table) Get(key string) int64 {
	if t == nil {
		return 0
	}
	return t.Counts[key]
}

// Len returns the number of distinct n-grams.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Counts)
}

// Total returns the sum of all counts.
func (t *Table) Total() int64 {
	if t == nil {
		return 0
	}
	var total int64
	for _, c := range t.Counts {
		total += c
	}
	return total
}

// Keys returns the n-gram keys in sorted order.
func (t *Table) Keys() []string {
	if t == nil {
		return nil
	}
	keys := make([]string, 0, len(t.Counts))
	for k := range t.Counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Add slides a window of size N over tokens and counts every window.
// Sequences shorter than N contribute nothing.
func (t *Table) Add(tokens []string) {
	for i := 0; i+t.N <= len(tokens); i++ {
		t.Counts[Join(tokens[i:i+t.N])]++
	}
}

// Join builds the key for a token window.
func Join(tokens []string) string {
	return strings.Join(tokens, Separator)
}

// Split returns the tokens of an n-gram key.
func Split(key string) []string {
	return strings.Split(key, Separator)
}

// Windows returns the number of n-grams a sequence of length l yields.
func Windows(l, n int) int {
	if l-n+1 < 0 {
		return 0
	}
	return l - n + 1
}

// WindowTotal returns how many n-grams of size n the corpus yields, which is
// the Total of Count(c, n).
func WindowTotal(c *corpus.Corpus, n int) int64 {
	var total int64
	if c == nil || n <= 0 {
		return 0
	}
	c.Each(func(d corpus.Document) {
		total += int64(Windows(len(d.Tokens), n))
	})
	return total
}

// Count builds the table of n-grams of size n over every document.
func Count(c *corpus.Corpus, n int) *Table {
	t := NewTable(n)
	if c == nil || n <= 0 {
		return t
	}
	c.Each(func(d corpus.Document) {
		t.Add(d.Tokens)
	})
	return t
}

// Build counts several tables concurrently. Each table has a single
// writer; the corpus is only read.
func Build(ctx context.Context, c *corpus.Corpus, ns ...int) (map[int]*Table, error) {
	for _, n := range ns {
		if n <= 0 {
			return nil, fmt.Errorf("n-gram size %d: %w", n, internalerr.ErrInvalidInput)
		}
	}
	tables := make([]*Table, len(ns))
	g, ctx := errgroup.WithContext(ctx)
	for i, n := range ns {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			tables[i] = Count(c, n)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	out := make(map[int]*Table, len(ns))
	for i, n := range ns {
		out[n] = tables[i]
	}
	return out, nil
}

// FileName is the conventional file name of a table for a corpus name.
func FileName(n int, name string) string {
	return fmt.Sprintf("%dgrams_%s.json", n, name)
}

// Save writes the table as a JSON object with sorted keys.
func Save(path string, t *Table) error {
	return jsonfile.Write(path, t.Counts)
}

// Load reads a table written by Save. Negative counts and keys whose token
// count differs from n are rejected.
func Load(path string, n int) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, internalerr.NewInputError(path, err)
	}
	counts := make(map[string]int64)
	if err := json.Unmarshal(data, &counts); err != nil {
		return nil, internalerr.NewInputError(path, err)
	}
	for key, c := range counts {
		if c < 0 {
			return nil, internalerr.NewInputError(path, fmt.Errorf("negative count for %q", key))
		}
		if len(Split(key)) != n {
			return nil, internalerr.NewInputError(path, fmt.Errorf("%q is not a %d-gram", key, n))
		}
	}
	return &Table{N: n, Counts: counts}, nil
}

// LoadDir loads the tables for every n from dir using FileName.
func LoadDir(dir, name string, ns ...int) (map[int]*Table, error) {
	out := make(map[int]*Table, len(ns))
	for _, n := range ns {
		t, err := Load(filepath.Join(dir, FileName(n, name)), n)
		if err != nil {
			return nil, err
		}
		out[n] = t
	}
	return out, nil
}
