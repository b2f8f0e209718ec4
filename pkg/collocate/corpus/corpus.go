// Package corpus holds cleaned per-document token sequences keyed by id.
package corpus

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/cognicore/collocate/pkg/collocate/internalerr"
	"github.com/cognicore/collocate/pkg/collocate/jsonfile"
)

// Document is one cleaned document. Tokens must not be modified after Add.
type Document struct {
	ID     string
	Tokens []string
}

// Corpus maps document ids to documents.
type Corpus struct {
	docs map[string]Document
}

// New creates an empty corpus
func New() *Corpus {
	return &Corpus{docs: make(map[string]Document)}
}

// FromText builds a corpus from id → space-joined token text.
func FromText(texts map[string]string) *Corpus {
	c := New()
	for id, text := range texts {
		c.docs[id] = Document{ID: id, Tokens: strings.Fields(text)}
	}
	return c
}

// Add stores a document. Ids are unique.
func (c *Corpus) Add(d Document) error {
	if d.ID == "" {
		return fmt.Errorf("document id: %w", internalerr.ErrInvalidInput)
	}
	if _, ok := c.docs[d.ID]; ok {
		return fmt.Errorf("document %s: %w", d.ID, internalerr.ErrDuplicate)
	}
	tokens := make([]string, len(d.Tokens))
	copy(tokens, d.Tokens)
	c.docs[d.ID] = Document{ID: d.ID, Tokens: tokens}
	return nil
}

// Get returns the document with the given id.
func (c *Corpus) Get(id string) (Document, bool) {
	d, ok := c.docs[id]
	return d, ok
}

// Len returns the number of documents.
func (c *Corpus) Len() int {
	if c == nil {
		return 0
	}
	return len(c.docs)
}

// IDs returns document ids in sorted order.
func (c *Corpus) IDs() []string {
	if c == nil {
		return nil
	}
	ids := make([]string, 0, len(c.docs))
	for id := range c.docs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Each calls fn for every document in id order.
func (c *Corpus) Each(fn func(Document)) {
	for _, id := range c.IDs() {
		fn(c.docs[id])
	}
}

// TokenCount returns the total number of tokens across all documents.
func (c *Corpus) TokenCount() int64 {
	if c == nil {
		return 0
	}
	var n int64
	for _, d := range c.docs {
		n += int64(len(d.Tokens))
	}
	return n
}

// Fingerprint identifies the corpus content. Two corpora with the same ids
// and token sequences share a fingerprint regardless of insertion order.
func (c *Corpus) Fingerprint() string {
	h := xxhash.New()
	for _, id := range c.IDs() {
		h.WriteString(id)
		h.Write([]byte{0})
		for _, tok := range c.docs[id].Tokens {
			h.WriteString(tok)
			h.Write([]byte{0x1f})
		}
		h.Write([]byte{0x1e})
	}
	return strconv.FormatUint(h.Sum64(), 16)
}

// Load reads a corpus file mapping document id to space-joined tokens.
func Load(path string) (*Corpus, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, internalerr.NewInputError(path, err)
	}
	var texts map[string]string
	if err := json.Unmarshal(data, &texts); err != nil {
		return nil, internalerr.NewInputError(path, err)
	}
	return FromText(texts), nil
}

// Save writes the corpus with sorted keys so reruns produce identical files.
func Save(path string, c *Corpus) error {
	texts := make(map[string]string, c.Len())
	for _, id := range c.IDs() {
		texts[id] = strings.Join(c.docs[id].Tokens, " ")
	}
	return jsonfile.Write(path, texts)
}
