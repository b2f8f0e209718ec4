package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cognicore/collocate/pkg/collocate/corpus"
	"github.com/cognicore/collocate/pkg/collocate/internalerr"
)

// DefaultTextField is the JSON field holding the decision text in raw files.
const DefaultTextField = "ictihat"

// Pipeline turns raw documents into cleaned corpus documents:
// raw JSON → text field → HTML stripping → tokenization → word filtering
type Pipeline struct {
	tokenizer *Tokenizer
	textField string
	logger    *slog.Logger
}

// NewPipeline creates a cleaning pipeline. An empty textField selects
// DefaultTextField; a nil logger selects slog.Default().
func NewPipeline(tokenizer *Tokenizer, textField string, logger *slog.Logger) *Pipeline {
	if textField == "" {
		textField = DefaultTextField
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{tokenizer: tokenizer, textField: textField, logger: logger}
}

// Process cleans one document's text.
func (p *Pipeline) Process(text string) []string {
	return p.tokenizer.Clean(StripHTML(text))
}

// Report summarises a directory run.
type Report struct {
	Files   int
	Cleaned int
	Skipped []string
}

// DocumentID derives a document id from a raw file name: everything before
// the first '.'.
func DocumentID(name string) string {
	base := filepath.Base(name)
	if i := strings.IndexByte(base, '.'); i >= 0 {
		return base[:i]
	}
	return base
}

// ProcessFile reads one raw document file and returns its cleaned document.
func (p *Pipeline) ProcessFile(path string) (corpus.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return corpus.Document{}, internalerr.NewInputError(path, err)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return corpus.Document{}, internalerr.NewInputError(path, err)
	}
	field, ok := raw[p.textField]
	if !ok {
		return corpus.Document{}, internalerr.NewInputError(path, fmt.Errorf("missing field %q", p.textField))
	}
	var text string
	if err := json.Unmarshal(field, &text); err != nil {
		return corpus.Document{}, internalerr.NewInputError(path, fmt.Errorf("field %q: %w", p.textField, err))
	}
	return corpus.Document{ID: DocumentID(path), Tokens: p.Process(text)}, nil
}

// ProcessDir cleans every *.json file in dir. A malformed file is skipped
// and logged as a whole; it never contributes a partial document. A
// directory without a single valid document is an input error.
func (p *Pipeline) ProcessDir(ctx context.Context, dir string) (*corpus.Corpus, Report, error) {
	var report Report
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, report, internalerr.NewInputError(dir, err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".json") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	c := corpus.New()
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, report, err
		}
		report.Files++
		path := filepath.Join(dir, name)
		doc, err := p.ProcessFile(path)
		if err == nil {
			err = c.Add(doc)
		}
		if err != nil {
			p.logger.Warn("skipping document", "path", path, "error", err)
			report.Skipped = append(report.Skipped, path)
			continue
		}
		report.Cleaned++
		p.logger.Debug("cleaned document", "id", doc.ID, "tokens", len(doc.Tokens))
	}

	if report.Cleaned == 0 {
		return nil, report, internalerr.NewInputError(dir, fmt.Errorf("no valid documents"))
	}
	return c, report, nil
}
