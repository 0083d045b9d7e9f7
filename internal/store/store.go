// Package store persists extraction runs and their per-epoch feature vectors
// in SQLite so runs can be compared and reloaded without recomputing.
package store

import (
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/banshee-data/sleep.report/internal/pipeline"
)

// ErrRunNotFound is returned when a run id has no record.
var ErrRunNotFound = errors.New("run not found")

var pragmas = []string{
	"PRAGMA journal_mode=WAL",
	"PRAGMA busy_timeout=5000",
	"PRAGMA synchronous=NORMAL",
	"PRAGMA foreign_keys=ON",
}

// Store wraps the run database.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and migrates it to
// the latest schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	// A single connection keeps the per-connection pragmas in force.
	db.SetMaxOpenConns(1)
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply %q: %w", p, err)
		}
	}
	s := &Store{db: db}
	if err := s.MigrateUp(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

// RunRecord is the stored summary of one extraction run.
type RunRecord struct {
	RunID        string
	Version      string
	ConfigJSON   json.RawMessage
	FeatureNames []string
	CreatedAtNs  int64
	FinishedAtNs *int64
	Attempted    int
	Succeeded    int
	Failed       int
	Epochs       int
	Duration     time.Duration
}

// CreateRun inserts run. An empty RunID is replaced by a new UUID and a zero
// CreatedAtNs by the current time.
func (s *Store) CreateRun(run *RunRecord) error {
	if run.RunID == "" {
		run.RunID = uuid.New().String()
	}
	if run.CreatedAtNs == 0 {
		run.CreatedAtNs = time.Now().UnixNano()
	}
	names, err := json.Marshal(run.FeatureNames)
	if err != nil {
		return fmt.Errorf("encode feature names: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO extraction_runs (run_id, version, config_json, feature_names, created_at_ns)
		VALUES (?, ?, ?, ?, ?)
	`, run.RunID, run.Version, nullString(string(run.ConfigJSON)), string(names), run.CreatedAtNs)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// FinishRun stores the report counters and failures of a completed run.
func (s *Store) FinishRun(runID string, rep pipeline.Report) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(`
		UPDATE extraction_runs
		SET finished_at_ns = ?, attempted = ?, succeeded = ?, failed = ?, epochs = ?, duration_ns = ?
		WHERE run_id = ?
	`, time.Now().UnixNano(), rep.Attempted, rep.Succeeded, rep.Failed, rep.Epochs, int64(rep.Duration), runID)
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}

	for _, f := range rep.Failures {
		msg := ""
		if f.Err != nil {
			msg = f.Err.Error()
		}
		if _, err := tx.Exec(`
			INSERT OR REPLACE INTO participant_failures (run_id, participant, stage, error)
			VALUES (?, ?, ?, ?)
		`, runID, f.Participant, f.Stage, msg); err != nil {
			return fmt.Errorf("insert failure %s: %w", f.Participant, err)
		}
	}
	return tx.Commit()
}

// GetRun loads one run record.
func (s *Store) GetRun(runID string) (*RunRecord, error) {
	var run RunRecord
	var cfg sql.NullString
	var names string
	var finished sql.NullInt64
	var durationNs int64

	err := s.db.QueryRow(`
		SELECT run_id, version, config_json, feature_names, created_at_ns, finished_at_ns,
		       attempted, succeeded, failed, epochs, duration_ns
		FROM extraction_runs
		WHERE run_id = ?
	`, runID).Scan(
		&run.RunID, &run.Version, &cfg, &names, &run.CreatedAtNs, &finished,
		&run.Attempted, &run.Succeeded, &run.Failed, &run.Epochs, &durationNs,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}

	if cfg.Valid {
		run.ConfigJSON = json.RawMessage(cfg.String)
	}
	if finished.Valid {
		v := finished.Int64
		run.FinishedAtNs = &v
	}
	run.Duration = time.Duration(durationNs)
	if err := json.Unmarshal([]byte(names), &run.FeatureNames); err != nil {
		return nil, fmt.Errorf("decode feature names: %w", err)
	}
	return &run, nil
}

// ListRunIDs returns run ids, newest first.
func (s *Store) ListRunIDs() ([]string, error) {
	rows, err := s.db.Query(`SELECT run_id FROM extraction_runs ORDER BY created_at_ns DESC`)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Failures returns the stored participant failures of a run.
func (s *Store) Failures(runID string) ([]pipeline.Failure, error) {
	rows, err := s.db.Query(`
		SELECT participant, stage, error FROM participant_failures
		WHERE run_id = ? ORDER BY participant
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("list failures: %w", err)
	}
	defer rows.Close()

	var out []pipeline.Failure
	for rows.Next() {
		var f pipeline.Failure
		var msg string
		if err := rows.Scan(&f.Participant, &f.Stage, &msg); err != nil {
			return nil, err
		}
		f.Err = errors.New(msg)
		out = append(out, f)
	}
	return out, rows.Err()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: strings.TrimSpace(s) != ""}
}

// encodeVector packs values as little-endian float64s.
func encodeVector(values []float64) []byte {
	buf := make([]byte, 8*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint64(buf[8*i:], math.Float64bits(v))
	}
	return buf
}

func decodeVector(buf []byte) ([]float64, error) {
	if len(buf)%8 != 0 {
		return nil, fmt.Errorf("vector blob length %d is not a multiple of 8", len(buf))
	}
	out := make([]float64, len(buf)/8)
	for i := range out {
		out[i] = math.Float64frombits(binary.LittleEndian.Uint64(buf[8*i:]))
	}
	return out, nil
}
