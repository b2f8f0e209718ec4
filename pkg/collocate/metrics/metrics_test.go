package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveScorer(t *testing.T) {
	m := New()
	m.ObserveScorer("pmi", 250*time.Millisecond, 3, map[string]int{"bigram": 200})
	m.ObserveScorer("pmi", 100*time.Millisecond, 2, map[string]int{"bigram": 150})

	if got := testutil.ToFloat64(m.SkippedCands.WithLabelValues("pmi")); got != 5 {
		t.Errorf("Expected 5 skipped candidates, got %f", got)
	}
	if got := testutil.ToFloat64(m.Candidates.WithLabelValues("pmi", "bigram")); got != 150 {
		t.Errorf("Expected the last exported size 150, got %f", got)
	}
}

func TestObserveTable(t *testing.T) {
	m := New()
	m.ObserveTable(2, 1234)
	if got := testutil.ToFloat64(m.UniqueNGrams.WithLabelValues("2")); got != 1234 {
		t.Errorf("Expected 1234, got %f", got)
	}
}

func TestWriteTextfile(t *testing.T) {
	m := New()
	m.Documents.Set(42)
	m.MarkSuccess(time.Unix(1700000000, 0))

	path := filepath.Join(t.TempDir(), "collocate.prom")
	if err := m.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	text := string(data)
	for _, want := range []string{"collocate_documents 42", "collocate_last_success_timestamp_seconds 1.7e+09"} {
		if !strings.Contains(text, want) {
			t.Errorf("Textfile missing %q:\n%s", want, text)
		}
	}

	if err := m.WriteTextfile(""); err != nil {
		t.Errorf("Empty path should be a no-op, got %v", err)
	}
}
