package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/agusespa/gcommit/internal/embedder"
	"github.com/agusespa/gcommit/internal/pipeline"
	"github.com/agusespa/gcommit/internal/projector"
	"github.com/agusespa/gcommit/internal/summarizer"
	"github.com/agusespa/gcommit/pkg/config"
	"github.com/agusespa/gcommit/pkg/spinner"
)

const defaultWorkDir = "/tmp/gcommit"

func main() {
	mergeMode := flag.Bool("m", false, "merge mode: read a diff from stdin, write a dendrogram JSON to stdout")
	thresholdFlag := flag.Float64("t", -1, "threshold mode: cut the given threshold against a merge JSON document")
	verbose := flag.Bool("v", false, "enable info-level logging to stderr")
	veryVerbose := flag.Bool("vv", false, "enable debug-level logging to stderr")
	algo := flag.String("algo", "hac", "clustering algorithm for merge mode: hac or hdbscan")
	epsilon := flag.Float64("epsilon", 0, "HDBSCAN epsilon override (0 uses the fitted default)")
	workDir := flag.String("workdir", defaultWorkDir, "scratch directory for threshold mode's patch files")
	configFile := flag.String("config", "gcommit.json", "path to configuration file")
	flag.Parse()
	// Flags may also follow the merge_json_path (e.g. "-t 0.3 merge.json -v"),
	// so keep parsing past each positional argument.
	var positional []string
	for flag.NArg() > 0 {
		positional = append(positional, flag.Arg(0))
		flag.CommandLine.Parse(flag.Args()[1:])
	}

	setupLogging(*verbose, *veryVerbose)

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to load config from %s: %v\n", *configFile, err)
		os.Exit(1)
	}

	apiKey := config.ResolveAPIKey()
	if apiKey == "" && cfg.UsesDefaultProvider() {
		fmt.Fprintln(os.Stderr, "Error: OPENAI_API_KEY not found (set OPENAI_API_KEY, git config custom.openaiApiKey, or point embedding/summarization at a non-default base_url)")
		os.Exit(1)
	}

	switch {
	case *mergeMode:
		runMerge(cfg, apiKey, pipeline.Algorithm(*algo), *epsilon)
	case *thresholdFlag >= 0:
		args := positional
		if len(args) != 1 {
			fmt.Fprintln(os.Stderr, "Error: -t requires exactly one merge_json_path argument")
			os.Exit(1)
		}
		runThreshold(cfg, apiKey, *thresholdFlag, args[0], *workDir)
	default:
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, "  gcommit -m [-v|-vv]")
		fmt.Fprintln(os.Stderr, "  gcommit -t <threshold> <merge_json_path> [-v|-vv]")
		os.Exit(1)
	}
}

func setupLogging(verbose, veryVerbose bool) {
	level := slog.LevelWarn
	switch {
	case veryVerbose:
		level = slog.LevelDebug
	case verbose:
		level = slog.LevelInfo
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

func runMerge(cfg *config.Config, apiKey string, algo pipeline.Algorithm, epsilon float64) {
	ctx := context.Background()

	emb := embedder.NewOpenAIEmbedder(cfg.Embedding.BaseURL, cfg.Embedding.Model, apiKey)
	proj := projector.NewHTTPProjector(cfg.Projection.BaseURL)

	sp := spinner.New("embedding diff chunks")
	sp.Start()

	out, err := pipeline.RunMerge(ctx, os.Stdin, emb, proj, pipeline.MergeOptions{
		Algorithm:       algo,
		HDBSCANMinSize:  2,
		HDBSCANMinPts:   2,
		EpsilonOverride: epsilon,
	})
	sp.Stop()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if algo == pipeline.HDBSCAN {
		slog.Info("suggested threshold for a follow-up -t invocation", "threshold", out.SuggestedThreshold)
	}

	if err := json.NewEncoder(os.Stdout).Encode(out); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to encode output: %v\n", err)
		os.Exit(1)
	}
}

func runThreshold(cfg *config.Config, apiKey string, t float64, mergeJSONPath, workDir string) {
	ctx := context.Background()

	f, err := os.Open(mergeJSONPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to open %s: %v\n", mergeJSONPath, err)
		os.Exit(1)
	}
	defer f.Close()

	merged, err := pipeline.LoadMergeOutput(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	summ := summarizer.NewOpenAISummarizer(cfg.Summarization.BaseURL, cfg.Summarization.Model, apiKey)

	sp := spinner.New("summarizing commits")
	sp.Start()
	out, err := pipeline.RunThreshold(ctx, merged, t, workDir, summ)
	sp.Stop()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := json.NewEncoder(os.Stdout).Encode(out); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to encode output: %v\n", err)
		os.Exit(1)
	}
}
