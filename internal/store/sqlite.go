package store

import (
	"database/sql"
	"encoding/json"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

type DB struct {
	*sql.DB
}

func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	// Create events table
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS events(
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		ts REAL,
		level TEXT,
		code TEXT,
		msg TEXT,
		meta TEXT
	)`); err != nil {
		return nil, err
	}

	// Create predictions table, one row per batch item
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS predictions(
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		ts REAL,
		batch_id TEXT,
		req_id TEXT,
		model_name TEXT,
		batch_index INTEGER,
		prediction TEXT,
		probability REAL,
		latency_ms REAL,
		cache_hit INTEGER,
		status TEXT,
		error TEXT
	)`); err != nil {
		return nil, err
	}

	// Create benchmarks table, one row per tested batch size
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS benchmarks(
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		ts REAL,
		model_name TEXT,
		batch_size INTEGER,
		total_time_ms REAL,
		throughput REAL,
		avg_latency_ms REAL,
		successful INTEGER
	)`); err != nil {
		return nil, err
	}

	return &DB{db}, nil
}

func (db *DB) Event(level, code, msg string, meta map[string]interface{}) {
	m := ""
	if meta != nil {
		b, _ := json.Marshal(meta)
		m = string(b)
	}
	_, _ = db.Exec(`INSERT INTO events(ts,level,code,msg,meta) VALUES(?,?,?,?,?)`,
		float64(time.Now().UnixNano())/1e9, level, code, msg, m)
}

func (db *DB) Prediction(start time.Time, batchID, reqID, modelName string, batchIndex int,
	prediction string, probability, latencyMs float64, cacheHit bool, status, errStr string) {
	hit := 0
	if cacheHit {
		hit = 1
	}
	_, _ = db.Exec(`INSERT INTO predictions(
		ts, batch_id, req_id, model_name, batch_index, prediction, probability, latency_ms, cache_hit, status, error)
		VALUES(?,?,?,?,?,?,?,?,?,?,?)`,
		float64(start.UnixNano())/1e9, batchID, reqID, modelName, batchIndex, prediction, probability, latencyMs, hit, status, errStr)
}

func (db *DB) Benchmark(start time.Time, modelName string, batchSize int,
	totalTime time.Duration, throughput, avgLatencyMs float64, successful int) {
	_, _ = db.Exec(`INSERT INTO benchmarks(
		ts, model_name, batch_size, total_time_ms, throughput, avg_latency_ms, successful)
		VALUES(?,?,?,?,?,?,?)`,
		float64(start.UnixNano())/1e9, modelName, batchSize,
		float64(totalTime.Milliseconds()), throughput, avgLatencyMs, successful)
}
