package store

import (
	"database/sql"
	"fmt"

	"github.com/banshee-data/sleep.report/internal/pipeline"
)

// StoredVector is one epoch row of a run, dense in the run's feature order.
type StoredVector struct {
	Participant string
	Epoch       int
	Start, End  int
	Label       string
	HasLabel    bool
	Values      []float64
}

// SaveParticipant stores every epoch vector of pr under runID, dense in the
// order of names.
func (s *Store) SaveParticipant(runID string, names []string, pr pipeline.ParticipantResult) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO epoch_vectors
			(run_id, participant, epoch_index, start_sample, end_sample, label, vector)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	res := pr.Result
	for i, v := range res.Vectors {
		ep := res.Epochs[i]
		label := sql.NullString{String: v.Label, Valid: v.HasLabel}
		if _, err := stmt.Exec(runID, pr.Participant, ep.Index, ep.Start, ep.End, label, encodeVector(v.Dense(names))); err != nil {
			return fmt.Errorf("insert epoch %d of %s: %w", ep.Index, pr.Participant, err)
		}
	}
	return tx.Commit()
}

// SaveRun stores all participant results of a run.
func (s *Store) SaveRun(runID string, names []string, run *pipeline.Run) error {
	for _, pr := range run.Results {
		if err := s.SaveParticipant(runID, names, pr); err != nil {
			return err
		}
	}
	return s.FinishRun(runID, run.Report)
}

// LoadVectors returns the stored epochs of a run in participant and epoch
// order. A non-empty participant restricts the result to that participant.
func (s *Store) LoadVectors(runID, participant string) ([]StoredVector, error) {
	query := `
		SELECT participant, epoch_index, start_sample, end_sample, label, vector
		FROM epoch_vectors
		WHERE run_id = ?`
	args := []any{runID}
	if participant != "" {
		query += ` AND participant = ?`
		args = append(args, participant)
	}
	query += ` ORDER BY participant, epoch_index`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("load vectors: %w", err)
	}
	defer rows.Close()

	var out []StoredVector
	for rows.Next() {
		var v StoredVector
		var label sql.NullString
		var blob []byte
		if err := rows.Scan(&v.Participant, &v.Epoch, &v.Start, &v.End, &label, &blob); err != nil {
			return nil, err
		}
		v.Label, v.HasLabel = label.String, label.Valid
		if v.Values, err = decodeVector(blob); err != nil {
			return nil, fmt.Errorf("epoch %d of %s: %w", v.Epoch, v.Participant, err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// LabelCounts returns how many stored epochs of a run carry each label.
func (s *Store) LabelCounts(runID string) (map[string]int, error) {
	rows, err := s.db.Query(`
		SELECT label, COUNT(*) FROM epoch_vectors
		WHERE run_id = ? AND label IS NOT NULL
		GROUP BY label
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("count labels: %w", err)
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var label string
		var n int
		if err := rows.Scan(&label, &n); err != nil {
			return nil, err
		}
		out[label] = n
	}
	return out, rows.Err()
}
