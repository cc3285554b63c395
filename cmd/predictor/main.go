package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
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
		envFile    = flag.String("env", "", "Optional .env file to load")
		inputPath  = flag.String("input", "", "Input CSV file with feature rows")
		outputPath = flag.String("output", "", "Optional output CSV file for results")
		model      = flag.String("model", "", "Model name (overrides MODEL_NAME)")
		hasHeader  = flag.Bool("header", true, "Input CSV has a header row")
		stream     = flag.Bool("stream", false, "Process input as a stream of windows")
		sequential = flag.Bool("sequential", false, "Force sequential dispatch")
	)
	flag.Parse()

	// Setup structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load(*envFile)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	if *model != "" {
		cfg.ModelName = *model
	}
	if *inputPath == "" {
		slog.Error("No input file given, use -input")
		os.Exit(1)
	}

	// Initialize database
	_ = os.MkdirAll(filepath.Dir(cfg.DBPath), 0755)
	db, err := store.Open(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	db.Event("info", "startup", "Predictor starting", map[string]interface{}{
		"model_name": cfg.ModelName,
		"nats_url":   cfg.NatsURL,
		"input":      *inputPath,
	})

	// Initialize repository
	repo := repository.NewSQLiteRepository(db)

	// Connect to the prediction service
	predictionClient, err := client.NewNATSClient(cfg.NatsURL, cfg.ClientID)
	if err != nil {
		db.Event("error", "nats.failed", "Prediction client initialization failed", map[string]interface{}{
			"nats_url": cfg.NatsURL,
			"error":    err.Error(),
		})
		slog.Error("Failed to create prediction client", "error", err)
		os.Exit(1)
	}
	defer predictionClient.Close()
	predictionClient.SetTimeout(cfg.RequestTimeout)
	predictionClient.SetHealthTimeout(cfg.HealthTimeout)

	ctx := context.Background()

	// Health gate before dispatching anything
	healthService := services.NewHealthService(predictionClient)
	if !healthService.WaitUntilHealthy(ctx, cfg.ModelName, 3, 2*time.Second) {
		db.Event("error", "health.failed", "Prediction service unavailable", map[string]interface{}{
			"model_name": cfg.ModelName,
		})
		slog.Error("Prediction service is not available", "model", cfg.ModelName, "nats_url", cfg.NatsURL)
		os.Exit(1)
	}

	dispatcher := services.NewDispatcher(predictionClient, repo, cfg)

	// Load feature rows
	header, rows, features, err := readFeatureCSV(*inputPath, *hasHeader)
	if err != nil {
		slog.Error("Failed to read input CSV", "file", *inputPath, "error", err)
		os.Exit(1)
	}
	slog.Info("Input loaded", "file", *inputPath, "rows", len(features))

	var out *resultWriter
	if *outputPath != "" {
		out, err = newResultWriter(*outputPath, header)
		if err != nil {
			slog.Error("Failed to open output CSV", "file", *outputPath, "error", err)
			os.Exit(1)
		}
		defer out.Close()
	}

	start := time.Now()
	total := 0

	if *stream {
		source := make(chan models.FeatureVector)
		go func() {
			defer close(source)
			for _, fv := range features {
				source <- fv
			}
		}()

		offset := 0
		streaming := services.NewStreamingService(dispatcher)
		total, err = streaming.Stream(ctx, cfg.ModelName, source, cfg.WindowSize, func(result models.BatchResult) {
			if out != nil {
				out.WriteWindow(rows[offset:offset+len(result)], result)
			}
			offset += len(result)
		})
		if err != nil {
			slog.Error("Streaming failed", "error", err)
			os.Exit(1)
		}
	} else {
		result, err := dispatcher.Dispatch(ctx, cfg.ModelName, features, !*sequential)
		if err != nil {
			slog.Error("Dispatch failed", "error", err)
			os.Exit(1)
		}
		if out != nil {
			out.WriteWindow(rows, result)
		}
		total = len(result)
	}

	elapsed := time.Since(start)
	stats := dispatcher.Stats()

	db.Event("info", "run.complete", "Prediction run complete", map[string]interface{}{
		"model_name":  cfg.ModelName,
		"items":       total,
		"failed":      stats.TotalFailed,
		"duration_ms": elapsed.Milliseconds(),
	})
	slog.Info("Run complete",
		"model", cfg.ModelName,
		"items", total,
		"failed", stats.TotalFailed,
		"duration_ms", elapsed.Milliseconds(),
		"throughput", float64(total)/elapsed.Seconds())
}

// readFeatureCSV loads every row of the CSV as a feature vector.
func readFeatureCSV(path string, hasHeader bool) (header []string, rows [][]string, features []models.FeatureVector, err error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, nil, err
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, nil, nil, err
	}
	if len(records) == 0 {
		return nil, nil, nil, fmt.Errorf("input file %s is empty", path)
	}

	if hasHeader {
		header = records[0]
		records = records[1:]
	}

	for i, record := range records {
		fv := make(models.FeatureVector, len(record))
		for j, cell := range record {
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, nil, nil, fmt.Errorf("row %d column %d: %w", i+1, j+1, err)
			}
			fv[j] = v
		}
		rows = append(rows, record)
		features = append(features, fv)
	}

	return header, rows, features, nil
}

// resultWriter appends prediction columns to the input rows.
type resultWriter struct {
	file   *os.File
	writer *csv.Writer
}

func newResultWriter(path string, header []string) (*resultWriter, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, err
	}

	w := &resultWriter{file: file, writer: csv.NewWriter(file)}
	if header != nil {
		out := append(append([]string{}, header...),
			"prediction", "probability", "latency_ms", "cache_hit", "error")
		if err := w.writer.Write(out); err != nil {
			file.Close()
			return nil, err
		}
	}
	return w, nil
}

func (w *resultWriter) WriteWindow(rows [][]string, result models.BatchResult) {
	for i, outcome := range result {
		row := append([]string{}, rows[i]...)
		row = append(row,
			fmt.Sprintf("%v", outcome.Prediction),
			strconv.FormatFloat(outcome.Probability, 'f', -1, 64),
			strconv.FormatFloat(outcome.LatencyMs, 'f', -1, 64),
			strconv.FormatBool(outcome.CacheHit),
			outcome.Error,
		)
		if err := w.writer.Write(row); err != nil {
			slog.Warn("Failed to write result row", "batch_index", outcome.Index, "error", err)
		}
	}
	w.writer.Flush()
}

func (w *resultWriter) Close() error {
	w.writer.Flush()
	return w.file.Close()
}
