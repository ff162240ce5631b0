package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/cognicore/trendscope/internal/loader"
	"github.com/cognicore/trendscope/pkg/trendscope"
	"github.com/cognicore/trendscope/pkg/trendscope/config"
	"github.com/cognicore/trendscope/pkg/trendscope/store/sqlite"
)

func main() {
	var (
		input   = flag.String("input", "", "Path to corpus JSON file (required)")
		cfgPath = flag.String("config", "", "Optional: YAML config file")
		filter  = flag.String("filter", "", "Optional: domain keyword filter")
		seed    = flag.Int64("seed", 0, "Optional: reduction seed override")
		dbPath  = flag.String("db", "", "Optional: SQLite file to persist the run")
		outPath = flag.String("out", "", "Optional: write summary JSON to file instead of stdout")
		apiKey  = flag.String("api-key", os.Getenv("GEMINI_API_KEY"), "API key for the gemini embedding provider")
	)
	flag.Parse()

	if *input == "" {
		log.Fatal("--input required")
	}

	ctx := context.Background()

	cfg := config.Default()
	if *cfgPath != "" {
		loaded, err := config.Load(*cfgPath)
		if err != nil {
			log.Fatalf("load config: %v", err)
		}
		cfg = loaded
	}

	var stopwords []string
	if cfg.StoplistPath != "" {
		sl, err := config.LoadStoplist(cfg.StoplistPath)
		if err != nil {
			log.Fatalf("load stoplist: %v", err)
		}
		stopwords = sl.Terms
	}

	embedder, err := trendscope.NewEmbedder(cfg, *apiKey)
	if err != nil {
		log.Fatalf("build embedder: %v", err)
	}

	engine, err := trendscope.New(trendscope.Options{
		Config:    cfg,
		Embedder:  embedder,
		Stopwords: stopwords,
	})
	if err != nil {
		log.Fatalf("build engine: %v", err)
	}

	docs, err := loader.Load(*input)
	if err != nil {
		log.Fatalf("load docs: %v", err)
	}

	run, err := engine.Analyze(ctx, docs, trendscope.AnalyzeOptions{
		Filter: *filter,
		Seed:   *seed,
	})
	if err != nil {
		log.Fatalf("analyze: %v", err)
	}

	if *dbPath != "" {
		st, err := sqlite.Open(ctx, *dbPath)
		if err != nil {
			log.Fatalf("open store: %v", err)
		}
		defer st.Close()
		if err := st.SaveRun(ctx, trendscope.StoreRun(run)); err != nil {
			log.Fatalf("save run: %v", err)
		}
		log.Printf("saved run %s to %s", run.ID, *dbPath)
	}

	summary := trendscope.BuildSummary(run)
	for _, topic := range summary.Topics {
		fmt.Printf("Topic %d (%s) - %d documents\n", topic.ClusterID, topic.Label, topic.DocumentCount)
	}

	out, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		log.Fatalf("marshal summary: %v", err)
	}
	if *outPath != "" {
		if err := os.WriteFile(*outPath, out, 0o644); err != nil {
			log.Fatalf("write summary: %v", err)
		}
		return
	}
	fmt.Println(string(out))
}
