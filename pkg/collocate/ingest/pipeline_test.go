package ingest

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/cognicore/collocate/pkg/collocate/internalerr"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeRaw(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestDocumentID(t *testing.T) {
	cases := map[string]string{
		"100.json":          "100",
		"/raw/2021.v2.json": "2021",
		"noext":             "noext",
	}
	for in, want := range cases {
		if got := DocumentID(in); got != want {
			t.Errorf("DocumentID(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestProcessFile(t *testing.T) {
	dir := t.TempDir()
	writeRaw(t, dir, "100.json", `{"ictihat": "<p>Yüksek Mahkeme</p> kararı", "tarih": "2021-01-05"}`)
	writeRaw(t, dir, "101.json", `{"metin": "x"}`)
	writeRaw(t, dir, "102.json", `{"ictihat": 5}`)
	writeRaw(t, dir, "103.json", `{"ictihat": `)

	p := NewPipeline(NewTokenizer(nil), "", quietLogger())

	doc, err := p.ProcessFile(filepath.Join(dir, "100.json"))
	if err != nil {
		t.Fatal(err)
	}
	if doc.ID != "100" || !reflect.DeepEqual(doc.Tokens, []string{"yüksek", "mahkeme", "kararı"}) {
		t.Errorf("Unexpected document %+v", doc)
	}

	for _, name := range []string{"101.json", "102.json", "103.json", "missing.json"} {
		_, err := p.ProcessFile(filepath.Join(dir, name))
		if !errors.Is(err, internalerr.ErrInvalidInput) {
			t.Errorf("%s: expected ErrInvalidInput, got %v", name, err)
		}
	}
}

func TestProcessFileCustomField(t *testing.T) {
	dir := t.TempDir()
	writeRaw(t, dir, "7.json", `{"metin": "Danıştay kararı"}`)

	p := NewPipeline(NewTokenizer(nil), "metin", quietLogger())
	doc, err := p.ProcessFile(filepath.Join(dir, "7.json"))
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(doc.Tokens, []string{"danıştay", "kararı"}) {
		t.Errorf("Unexpected tokens %v", doc.Tokens)
	}
}

func TestProcessDirSkipsBadFiles(t *testing.T) {
	dir := t.TempDir()
	writeRaw(t, dir, "100.json", `{"ictihat": "yüksek mahkeme kararı"}`)
	writeRaw(t, dir, "100.v2.json", `{"ictihat": "aynı kimlik"}`)
	writeRaw(t, dir, "101.json", `not json`)
	writeRaw(t, dir, "102.json", `{"ictihat": "genel kurul"}`)
	writeRaw(t, dir, "notes.txt", `ignored`)
	if err := os.Mkdir(filepath.Join(dir, "sub.json"), 0o755); err != nil {
		t.Fatal(err)
	}

	p := NewPipeline(NewTokenizer(nil), "", quietLogger())
	c, report, err := p.ProcessDir(context.Background(), dir)
	if err != nil {
		t.Fatal(err)
	}

	if report.Files != 4 || report.Cleaned != 2 || len(report.Skipped) != 2 {
		t.Errorf("Unexpected report %+v", report)
	}
	if !reflect.DeepEqual(c.IDs(), []string{"100", "102"}) {
		t.Errorf("Unexpected ids %v", c.IDs())
	}
	doc, _ := c.Get("100")
	if len(doc.Tokens) != 3 {
		t.Errorf("First file with an id should win, got %v", doc.Tokens)
	}
}

func TestProcessDirEmpty(t *testing.T) {
	p := NewPipeline(NewTokenizer(nil), "", quietLogger())

	_, _, err := p.ProcessDir(context.Background(), t.TempDir())
	if !errors.Is(err, internalerr.ErrInvalidInput) {
		t.Errorf("Empty directory: expected ErrInvalidInput, got %v", err)
	}

	_, _, err = p.ProcessDir(context.Background(), filepath.Join(t.TempDir(), "missing"))
	if !errors.Is(err, internalerr.ErrInvalidInput) {
		t.Errorf("Missing directory: expected ErrInvalidInput, got %v", err)
	}
}

func TestProcessDirCancelled(t *testing.T) {
	dir := t.TempDir()
	writeRaw(t, dir, "1.json", `{"ictihat": "karar"}`)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := NewPipeline(NewTokenizer(nil), "", quietLogger())
	if _, _, err := p.ProcessDir(ctx, dir); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}
