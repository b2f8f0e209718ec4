package config

import (
	"fmt"
	"log/slog"

	"github.com/cognicore/collocate/pkg/collocate/ingest"
)

// Components holds the objects built from a configuration
type Components struct {
	Tokenizer *ingest.Tokenizer
	Pipeline  *ingest.Pipeline
}

// Build constructs the cleaning components for cfg
func (c Config) Build(logger *slog.Logger) (*Components, error) {
	var stops []string
	if c.Stoplist != "" {
		sl, err := LoadStoplist(c.Stoplist)
		if err != nil {
			return nil, fmt.Errorf("load stoplist: %w", err)
		}
		stops = sl.Terms
	}
	tok := ingest.NewTokenizer(stops)
	return &Components{
		Tokenizer: tok,
		Pipeline:  ingest.NewPipeline(tok, c.TextField, logger),
	}, nil
}
