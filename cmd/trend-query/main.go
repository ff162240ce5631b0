package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"

	"github.com/cognicore/trendscope/pkg/trendscope"
	"github.com/cognicore/trendscope/pkg/trendscope/store/sqlite"
)

func main() {
	var (
		dbPath = flag.String("db", "", "Path to SQLite run store (required)")
		runID  = flag.String("run", "", "Run id to query (default: latest)")
		mode   = flag.String("mode", "summary", "Output: summary, topics, documents, trends or runs")
	)
	flag.Parse()

	if *dbPath == "" {
		log.Fatal("--db required")
	}

	ctx := context.Background()

	st, err := sqlite.Open(ctx, *dbPath)
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	defer st.Close()

	if *mode == "runs" {
		metas, err := st.ListRuns(ctx)
		if err != nil {
			log.Fatalf("list runs: %v", err)
		}
		for _, meta := range metas {
			fmt.Printf("%s  %s  %d documents\n", meta.ID, meta.CreatedAt.Format("2006-01-02 15:04:05"), meta.DocumentCount)
		}
		return
	}

	id := *runID
	if id == "" {
		metas, err := st.ListRuns(ctx)
		if err != nil {
			log.Fatalf("list runs: %v", err)
		}
		if len(metas) == 0 {
			log.Fatal("no runs stored")
		}
		id = metas[0].ID
	}

	record, ok, err := st.GetRun(ctx, id)
	if err != nil {
		log.Fatalf("get run: %v", err)
	}
	if !ok {
		log.Fatalf("run %s not found", id)
	}
	run := trendscope.RestoreRun(record)

	var payload any
	switch *mode {
	case "summary":
		payload = trendscope.BuildSummary(run)
	case "topics":
		payload = run.Topics
	case "documents":
		payload = run.DocumentInfo()
	case "trends":
		payload = run.TopicsOverTime()
	default:
		log.Fatalf("unknown mode %q", *mode)
	}

	out, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		log.Fatalf("marshal output: %v", err)
	}
	fmt.Println(string(out))
}
