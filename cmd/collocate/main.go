package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/cognicore/collocate/internal/logger"
	"github.com/cognicore/collocate/pkg/collocate"
	"github.com/cognicore/collocate/pkg/collocate/assoc"
	"github.com/cognicore/collocate/pkg/collocate/config"
	"github.com/cognicore/collocate/pkg/collocate/store"
	"github.com/cognicore/collocate/pkg/collocate/store/sqlite"
)

const usage = `usage: collocate [flags] <command>

commands:
  clean    tokenize raw decisions into the cleaned corpus
  ngrams   count bigrams and trigrams over the cleaned corpus
  score    rank collocations with the selected methods
  runs     list the scoring runs archived in the cache
  show     print an archived ranked list (-run, -method, -kind)

flags:
`

// options are the parsed command line.
type options struct {
	command    string
	configPath string
	dataDir    string
	rawDir     string
	name       string
	outputDir  string
	methods    string
	topN       int
	cachePath  string
	logLevel   string
	logFormat  string
	metrics    string
	runID      string
	kind       string
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var o options
	fs := flag.NewFlagSet("collocate", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}
	fs.StringVar(&o.configPath, "config", "", "YAML configuration file (optional)")
	fs.StringVar(&o.dataDir, "data-dir", "", "Directory holding the corpus and n-gram files")
	fs.StringVar(&o.rawDir, "raw-dir", "", "Raw dataset directory under the data directory")
	fs.StringVar(&o.name, "name", "", "Corpus file name without extension")
	fs.StringVar(&o.outputDir, "output", "", "Directory for exported collocations")
	fs.StringVar(&o.methods, "method", "", "Comma-separated methods, or \"all\" ("+strings.Join(assoc.Methods(), ", ")+")")
	fs.IntVar(&o.topN, "top", -1, "Candidates exported per list (0 = all)")
	fs.StringVar(&o.cachePath, "cache", "", "SQLite cache for n-gram tables and rankings (optional)")
	fs.StringVar(&o.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	fs.StringVar(&o.logFormat, "log-format", "", "Log format: text or json")
	fs.StringVar(&o.metrics, "metrics-textfile", "", "Write Prometheus metrics to this file")
	fs.StringVar(&o.runID, "run", "", "Archived run id for show (default: latest)")
	fs.StringVar(&o.kind, "kind", assoc.KindBigram, "List kind for show: bigram or trigram")
	if err := fs.Parse(args); err != nil {
		return o, err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return o, errors.New("exactly one command required")
	}
	o.command = fs.Arg(0)
	switch o.command {
	case "clean", "ngrams", "score", "runs", "show":
	default:
		return o, fmt.Errorf("unknown command %q", o.command)
	}
	return o, nil
}

// resolveConfig loads the file, if any, and applies flag overrides.
func resolveConfig(o options) (config.Config, error) {
	cfg := config.Default()
	if o.configPath != "" {
		var err error
		cfg, err = config.Load(o.configPath)
		if err != nil {
			return config.Config{}, err
		}
	}
	if o.dataDir != "" {
		cfg.DataDir = o.dataDir
	}
	if o.rawDir != "" {
		cfg.RawDir = o.rawDir
	}
	if o.name != "" {
		cfg.Name = o.name
	}
	if o.outputDir != "" {
		cfg.OutputDir = o.outputDir
	}
	if o.topN >= 0 {
		cfg.TopN = o.topN
		cfg.DiffMeanVarLimit = o.topN
	}
	if o.cachePath != "" {
		cfg.CachePath = o.cachePath
	}
	if o.logLevel != "" {
		cfg.Logging.Level = o.logLevel
	}
	if o.logFormat != "" {
		cfg.Logging.Format = o.logFormat
	}
	if o.metrics != "" {
		cfg.Metrics.Textfile = o.metrics
	}
	switch strings.TrimSpace(o.methods) {
	case "":
	case "all":
		cfg.Methods = assoc.DefaultMethods(cfg.HypothesisDiff)
	default:
		cfg.Methods = nil
		for _, m := range strings.Split(o.methods, ",") {
			if m = strings.TrimSpace(m); m != "" {
				cfg.Methods = append(cfg.Methods, m)
			}
		}
	}
	return cfg, cfg.Validate()
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	o, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}
	cfg, err := resolveConfig(o)
	if err != nil {
		return err
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)

	var st store.Store
	if cfg.CachePath != "" {
		st, err = sqlite.OpenSQLite(ctx, cfg.CachePath)
		if err != nil {
			return fmt.Errorf("open cache %s: %w", cfg.CachePath, err)
		}
	}

	engine := collocate.New(collocate.Options{
		Config: cfg,
		Store:  st,
		Logger: logger.WithComponent(o.command),
	})
	defer engine.Close()

	switch o.command {
	case "clean":
		_, _, err = engine.Clean(ctx)
	case "ngrams":
		_, err = engine.ExportNGrams(ctx)
	case "score":
		_, err = engine.Score(ctx, cfg.SelectedMethods())
	case "runs":
		return printRuns(ctx, stdout, engine)
	case "show":
		return printRanking(ctx, stdout, engine, o.runID, cfg.SelectedMethods()[0], o.kind, cfg.TopN)
	}
	if err != nil {
		return err
	}
	if err := engine.WriteMetrics(); err != nil {
		slog.Warn("write metrics", "path", cfg.Metrics.Textfile, "error", err)
	}
	return nil
}

func printRuns(ctx context.Context, w io.Writer, engine *collocate.Engine) error {
	runs, err := engine.Runs(ctx)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCREATED\tDOCUMENTS\tTOKENS")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\n", r.ID, r.CreatedAt.Format(time.RFC3339), r.Documents, r.Tokens)
	}
	return tw.Flush()
}

// printRanking writes at most top candidates; top 0 prints the whole list.
func printRanking(ctx context.Context, w io.Writer, engine *collocate.Engine, runID, method, kind string, top int) error {
	runID, list, err := engine.Ranking(ctx, runID, method, kind)
	if err != nil {
		return err
	}
	if top > 0 && len(list) > top {
		list = list[:top]
	}
	fmt.Fprintf(w, "# run %s, %s %ss\n", runID, method, kind)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for i, c := range list {
		fmt.Fprintf(tw, "%d\t%s\t%g\n", i+1, c.NGram, c.Score)
	}
	return tw.Flush()
}

func main() {
	log.SetFlags(0)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		log.Fatalf("collocate: %v", err)
	}
}
