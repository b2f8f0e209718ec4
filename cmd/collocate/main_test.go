package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/cognicore/collocate/pkg/collocate/assoc"
	"github.com/cognicore/collocate/pkg/collocate/internalerr"
)

func TestParseFlags(t *testing.T) {
	o, err := parseFlags([]string{"-method", "pmi,t_test", "-top", "10", "score"}, io.Discard)
	if err != nil {
		t.Fatalf("parseFlags: %v", err)
	}
	if o.command != "score" || o.methods != "pmi,t_test" || o.topN != 10 {
		t.Errorf("Unexpected options %+v", o)
	}

	o, err = parseFlags([]string{"clean"}, io.Discard)
	if err != nil {
		t.Fatal(err)
	}
	if o.topN != -1 {
		t.Errorf("-top should default to unset, got %d", o.topN)
	}
}

func TestParseFlagsErrors(t *testing.T) {
	for _, args := range [][]string{
		{},
		{"clean", "score"},
		{"export"},
		{"runs", "show"},
		{"-nope", "clean"},
	} {
		if _, err := parseFlags(args, io.Discard); err == nil {
			t.Errorf("parseFlags(%v) should fail", args)
		}
	}
}

func TestResolveConfigOverrides(t *testing.T) {
	o := options{
		command: "score",
		dataDir: "/srv/data",
		name:    "ictihat",
		methods: " pmi , chi_square ,",
		topN:    0,
	}
	cfg, err := resolveConfig(o)
	if err != nil {
		t.Fatalf("resolveConfig: %v", err)
	}
	if cfg.DataDir != "/srv/data" || cfg.Name != "ictihat" {
		t.Errorf("Path overrides not applied: %+v", cfg)
	}
	if cfg.TopN != 0 || cfg.DiffMeanVarLimit != 0 {
		t.Errorf("-top 0 should export everything, got %d/%d", cfg.TopN, cfg.DiffMeanVarLimit)
	}
	if !reflect.DeepEqual(cfg.Methods, []string{"pmi", "chi_square"}) {
		t.Errorf("Unexpected methods %v", cfg.Methods)
	}
}

func TestResolveConfigAll(t *testing.T) {
	cfg, err := resolveConfig(options{command: "score", methods: "all", topN: -1})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(cfg.Methods, assoc.DefaultMethods(false)) {
		t.Errorf("Unexpected methods %v", cfg.Methods)
	}
}

func TestResolveConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "collocate.yaml")
	if err := os.WriteFile(path, []byte("name: danistay\ntop_n: 25\nhypothesis_diff: true\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := resolveConfig(options{command: "score", configPath: path, methods: "all", topN: -1})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Name != "danistay" || cfg.TopN != 25 {
		t.Errorf("File values not loaded: %+v", cfg)
	}
	if !reflect.DeepEqual(cfg.Methods, assoc.Methods()) {
		t.Errorf("hypothesis_diff should add the opt-in method, got %v", cfg.Methods)
	}
}

func TestResolveConfigUnknownMethod(t *testing.T) {
	_, err := resolveConfig(options{command: "score", methods: "pmi,mutual_info", topN: -1})
	if !errors.Is(err, internalerr.ErrUnknownMethod) {
		t.Errorf("Expected ErrUnknownMethod, got %v", err)
	}
}

func TestRunAllCommands(t *testing.T) {
	root := t.TempDir()
	raw := filepath.Join(root, "data", "2021-01")
	if err := os.MkdirAll(raw, 0o755); err != nil {
		t.Fatal(err)
	}
	docs := map[string]string{
		"1.json": `{"ictihat": "Yüksek Mahkeme genel kurul kararı verdi."}`,
		"2.json": `{"ictihat": "Genel kurul kararı Yüksek Mahkeme tarafından onaylandı."}`,
	}
	for name, content := range docs {
		if err := os.WriteFile(filepath.Join(raw, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	common := []string{
		"-data-dir", filepath.Join(root, "data"),
		"-name", "ictihat",
		"-output", filepath.Join(root, "results"),
		"-cache", filepath.Join(root, "cache.db"),
		"-log-level", "error",
	}
	ctx := context.Background()
	for _, cmd := range [][]string{{"clean"}, {"ngrams"}, {"-method", "frequency,pmi", "score"}} {
		args := append(append([]string{}, common...), cmd...)
		if err := run(ctx, args, io.Discard, io.Discard); err != nil {
			t.Fatalf("run %v: %v", cmd, err)
		}
	}

	var runs bytes.Buffer
	if err := run(ctx, append(append([]string{}, common...), "runs"), &runs, io.Discard); err != nil {
		t.Fatalf("run runs: %v", err)
	}
	if lines := strings.Split(strings.TrimSpace(runs.String()), "\n"); len(lines) != 2 {
		t.Errorf("Expected a header and one run, got:\n%s", runs.String())
	}

	var shown bytes.Buffer
	args := append(append([]string{}, common...), "-method", "frequency", "-top", "1", "show")
	if err := run(ctx, args, &shown, io.Discard); err != nil {
		t.Fatalf("run show: %v", err)
	}
	out := shown.String()
	if !strings.Contains(out, "frequency bigrams") || !strings.Contains(out, "1") {
		t.Errorf("Unexpected show output:\n%s", out)
	}
	// genel kurul and yüksek mahkeme both occur twice; ties break by n-gram
	if !strings.Contains(out, "genel kurul") || strings.Count(strings.TrimSpace(out), "\n") != 1 {
		t.Errorf("Expected only the top bigram, got:\n%s", out)
	}

	for _, name := range []string{"frequency_bigrams.json", "frequency_trigrams.json", "pmi_bigrams.json"} {
		if _, err := os.Stat(filepath.Join(root, "results", name)); err != nil {
			t.Errorf("%s not written: %v", name, err)
		}
	}
}

func TestShowNeedsCache(t *testing.T) {
	args := []string{"-data-dir", t.TempDir(), "-log-level", "error", "show"}
	err := run(context.Background(), args, io.Discard, io.Discard)
	if !errors.Is(err, internalerr.ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig without a cache, got %v", err)
	}
}
