// Package export persists ranked collocation lists as JSON objects whose keys
// appear in rank order.
package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/cognicore/collocate/pkg/collocate/assoc"
	"github.com/cognicore/collocate/pkg/collocate/internalerr"
	"github.com/cognicore/collocate/pkg/collocate/jsonfile"
)

// Encode renders a ranked list as a JSON object {ngram: score}. Keys keep the
// list order, so equal input always produces byte-identical output.
func Encode(list assoc.RankedList) ([]byte, error) {
	if len(list) == 0 {
		return []byte("{}\n"), nil
	}
	var buf bytes.Buffer
	buf.WriteString("{\n")
	for i, c := range list {
		key, err := jsonfile.Marshal(c.NGram)
		if err != nil {
			return nil, err
		}
		key = bytes.TrimRight(key, "\n")
		score, err := json.Marshal(c.Score)
		if err != nil {
			return nil, fmt.Errorf("score of %q: %w", c.NGram, err)
		}
		buf.WriteString("    ")
		buf.Write(key)
		buf.WriteString(": ")
		buf.Write(score)
		if i < len(list)-1 {
			buf.WriteByte(',')
		}
		buf.WriteByte('\n')
	}
	buf.WriteString("}\n")
	return buf.Bytes(), nil
}

// Decode parses an object written by Encode, preserving key order.
func Decode(r io.Reader) (assoc.RankedList, error) {
	dec := json.NewDecoder(r)
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("expected object, got %v", tok)
	}
	list := assoc.RankedList{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("expected key, got %v", tok)
		}
		var score float64
		if err := dec.Decode(&score); err != nil {
			return nil, fmt.Errorf("score of %q: %w", key, err)
		}
		list = append(list, assoc.Candidate{NGram: key, Score: score})
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return list, nil
}

// Write stores a ranked list at path atomically.
func Write(path string, list assoc.RankedList) error {
	data, err := Encode(list)
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return jsonfile.WriteAtomic(path, data)
}

// Read loads a ranked list written by Write.
func Read(path string) (assoc.RankedList, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, internalerr.NewInputError(path, err)
	}
	defer f.Close()
	list, err := Decode(f)
	if err != nil {
		return nil, internalerr.NewInputError(path, err)
	}
	return list, nil
}

// Exporter writes scorer results below a directory.
type Exporter struct {
	Dir string
}

// Path returns the file for a method and list kind, e.g. pmi_bigrams.json.
func (e Exporter) Path(method, kind string) string {
	return filepath.Join(e.Dir, fmt.Sprintf("%s_%ss.json", method, kind))
}

// WriteResult writes every list of a result and returns the written paths
// in kind order.
func (e Exporter) WriteResult(res assoc.Result) ([]string, error) {
	kinds := make([]string, 0, len(res.Lists))
	for kind := range res.Lists {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)

	paths := make([]string, 0, len(kinds))
	for _, kind := range kinds {
		path := e.Path(res.Method, kind)
		if err := Write(path, res.Lists[kind]); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}
