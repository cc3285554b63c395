package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/aigoflow/batch-predictor/internal/config"
	"github.com/aigoflow/batch-predictor/internal/models"
	"github.com/aigoflow/batch-predictor/internal/repository"
	"github.com/aigoflow/batch-predictor/internal/services"
	"github.com/aigoflow/batch-predictor/internal/store"
	"github.com/aigoflow/batch-predictor/pkg/client"
)

func main() {
	var (
		envFile  = flag.String("env", "", "Optional .env file to load")
		model    = flag.String("model", "", "Model name (overrides MODEL_NAME)")
		features = flag.String("features", "5.1,3.5,1.4,0.2", "Sample feature vector, comma-separated")
		sizes    = flag.String("sizes", "1,10,50,100,500,1000", "Batch sizes to test, comma-separated")
	)
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load(*envFile)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	if *model != "" {
		cfg.ModelName = *model
	}

	sample, err := parseFloats(*features)
	if err != nil {
		slog.Error("Invalid -features", "error", err)
		os.Exit(1)
	}
	batchSizes, err := parseInts(*sizes)
	if err != nil {
		slog.Error("Invalid -sizes", "error", err)
		os.Exit(1)
	}

	_ = os.MkdirAll(filepath.Dir(cfg.DBPath), 0755)
	db, err := store.Open(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	repo := repository.NewSQLiteRepository(db)

	predictionClient, err := client.NewNATSClient(cfg.NatsURL, cfg.ClientID)
	if err != nil {
		slog.Error("Failed to create prediction client", "error", err)
		os.Exit(1)
	}
	defer predictionClient.Close()
	predictionClient.SetTimeout(cfg.RequestTimeout)
	predictionClient.SetHealthTimeout(cfg.HealthTimeout)

	ctx := context.Background()

	healthService := services.NewHealthService(predictionClient)
	if !healthService.WaitUntilHealthy(ctx, cfg.ModelName, 3, 2*time.Second) {
		fmt.Fprintf(os.Stderr, "Prediction service is not available for model %q at %s\n", cfg.ModelName, cfg.NatsURL)
		os.Exit(1)
	}

	dispatcher := services.NewDispatcher(predictionClient, repo, cfg)
	benchService := services.NewBenchmarkService(dispatcher, repo)

	fmt.Printf("Benchmarking model %q (workers=%d)\n\n", cfg.ModelName, cfg.MaxWorkers)

	records, err := benchService.Benchmark(ctx, cfg.ModelName, sample, batchSizes)
	if err != nil {
		slog.Error("Benchmark failed", "error", err)
		os.Exit(1)
	}

	printReport(records)
}

func printReport(records map[int]*models.BenchmarkRecord) {
	sizes := make([]int, 0, len(records))
	for size := range records {
		sizes = append(sizes, size)
	}
	sort.Ints(sizes)

	fmt.Printf("%-12s %-14s %-16s %-16s %s\n",
		"batch_size", "total_time", "throughput/s", "avg_latency_ms", "successful")
	for _, size := range sizes {
		r := records[size]
		fmt.Printf("%-12d %-14s %-16.1f %-16.2f %d/%d\n",
			r.BatchSize, r.TotalTime.Round(time.Millisecond), r.Throughput, r.AvgLatencyMs, r.Successful, r.BatchSize)
	}
}

func parseFloats(s string) (models.FeatureVector, error) {
	parts := strings.Split(s, ",")
	fv := make(models.FeatureVector, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, err
		}
		fv = append(fv, v)
	}
	return fv, nil
}

func parseInts(s string) ([]int, error) {
	parts := strings.Split(s, ",")
	sizes := make([]int, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, err
		}
		sizes = append(sizes, v)
	}
	return sizes, nil
}
