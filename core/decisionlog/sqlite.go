package decisionlog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/Jainil7227/AlphaNeuron/core/model"
)

// SQLiteStore persists decisions to a SQLite database. The full record is
// stored as JSON alongside the queryable columns; amendments update only the
// outcome and override columns.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates the database at path and ensures schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	schema := `CREATE TABLE IF NOT EXISTS agent_decisions (
        id TEXT PRIMARY KEY,
        mission_id TEXT,
        ts INTEGER,
        decision INTEGER,
        outcome INTEGER,
        override TEXT,
        record TEXT
    );`
	if _, err := db.Exec(schema); err != nil {
		if cerr := db.Close(); cerr != nil {
			return nil, fmt.Errorf("close db: %v (schema err: %w)", cerr, err)
		}
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Append(ctx context.Context, dec model.AgentDecision) error {
	b, err := json.Marshal(dec)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO agent_decisions (id, mission_id, ts, decision, outcome, record)
         VALUES (?, ?, ?, ?, ?, ?)`,
		dec.ID, dec.MissionID, dec.At.Unix(), int(dec.Decision), int(dec.Outcome), string(b))
	return err
}

func (s *SQLiteStore) RecordOutcome(ctx context.Context, decisionID string, outcome model.CycleOutcome) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE agent_decisions SET outcome = ? WHERE id = ?`, int(outcome), decisionID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return fmt.Errorf("decision %s not found", decisionID)
	}
	return err
}

func (s *SQLiteStore) RecordOverride(ctx context.Context, decisionID string, ov model.Override) error {
	b, err := json.Marshal(ov)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE agent_decisions SET outcome = ?, override = ? WHERE id = ?`,
		int(model.OutcomeOverridden), string(b), decisionID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return fmt.Errorf("decision %s not found", decisionID)
	}
	return err
}

func (s *SQLiteStore) Query(ctx context.Context, q Query) ([]model.AgentDecision, error) {
	var args []any
	query := `SELECT record, outcome, override FROM agent_decisions WHERE 1=1`
	if !q.Start.IsZero() {
		query += ` AND ts >= ?`
		args = append(args, q.Start.Unix())
	}
	if !q.End.IsZero() {
		query += ` AND ts <= ?`
		args = append(args, q.End.Unix())
	}
	if q.MissionID != "" {
		query += ` AND mission_id = ?`
		args = append(args, q.MissionID)
	}
	if q.Decision != nil {
		query += ` AND decision = ?`
		args = append(args, int(*q.Decision))
	}
	query += ` ORDER BY ts`
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []model.AgentDecision
	for rows.Next() {
		var (
			data     string
			outcome  int
			override sql.NullString
		)
		if err := rows.Scan(&data, &outcome, &override); err != nil {
			return nil, err
		}
		var d model.AgentDecision
		if err := json.Unmarshal([]byte(data), &d); err != nil {
			return nil, fmt.Errorf("unmarshal decision: %w", err)
		}
		d.Outcome = model.CycleOutcome(outcome)
		if override.Valid && override.String != "" {
			var ov model.Override
			if err := json.Unmarshal([]byte(override.String), &ov); err != nil {
				return nil, fmt.Errorf("unmarshal override: %w", err)
			}
			d.Override = &ov
		}
		res = append(res, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error { return s.db.Close() }
