// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists scored runs in SQLite. Outputs and signature
// pairs are append-only: a re-score adds a new output and a new pair, and
// triggers reject any update or delete of earlier rows.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/ray-engine/pkg/types"
)

// ErrNotFound is returned when a run has no stored output.
var ErrNotFound = errors.New("not found")

// timeLayout is fixed width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Store manages the run database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at cfg.Path and creates the schema
// if it does not exist.
func Open(cfg types.StoreConfig) (*Store, error) {
	if dir := filepath.Dir(cfg.Path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			run_id TEXT PRIMARY KEY,
			subject_id TEXT,
			run_number INTEGER,
			completed_at TEXT,
			packet TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS pipeline_outputs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL REFERENCES runs(run_id),
			subject_id TEXT,
			bank_version TEXT NOT NULL,
			completed_at TEXT,
			computed_at TEXT NOT NULL,
			output TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_outputs_run_id ON pipeline_outputs(run_id)`,
		`CREATE INDEX IF NOT EXISTS idx_outputs_subject_id ON pipeline_outputs(subject_id)`,
		`CREATE TABLE IF NOT EXISTS signature_pairs (
			id TEXT PRIMARY KEY,
			run_id TEXT NOT NULL REFERENCES runs(run_id),
			output_id INTEGER NOT NULL REFERENCES pipeline_outputs(id),
			response_hash TEXT NOT NULL,
			result_hash TEXT NOT NULL,
			algorithm_version TEXT NOT NULL,
			seal TEXT,
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_signatures_run_id ON signature_pairs(run_id)`,
	}
	for _, table := range []string{"pipeline_outputs", "signature_pairs"} {
		for _, op := range []string{"UPDATE", "DELETE"} {
			statements = append(statements, fmt.Sprintf(
				`CREATE TRIGGER IF NOT EXISTS %s_no_%s BEFORE %s ON %s BEGIN
					SELECT RAISE(ABORT, '%s is append-only');
				END`, table, op, op, table, table))
		}
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// SaveResult stores the packet, appends the output, and appends its
// signature pair when sig is non-nil.
func (s *Store) SaveResult(ctx context.Context, p *types.ResponsePacket, out *types.PipelineOutput, sig *types.SignaturePair) error {
	packetJSON, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encoding packet: %w", err)
	}
	outputJSON, err := json.Marshal(out)
	if err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (run_id, subject_id, run_number, completed_at, packet)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(run_id) DO UPDATE SET
			subject_id=excluded.subject_id, run_number=excluded.run_number,
			completed_at=excluded.completed_at, packet=excluded.packet`,
		p.RunID, p.SubjectID, p.RunNumber, formatTime(p.CompletedAt), string(packetJSON),
	)
	if err != nil {
		return fmt.Errorf("upserting run %s: %w", p.RunID, err)
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO pipeline_outputs (run_id, subject_id, bank_version, completed_at, computed_at, output)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		out.RunID, out.SubjectID, out.BankVersion, formatTime(out.CompletedAt),
		out.ComputedAt.UTC().Format(timeLayout), string(outputJSON),
	)
	if err != nil {
		return fmt.Errorf("inserting output of run %s: %w", out.RunID, err)
	}
	outputID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading output row: %w", err)
	}

	if sig != nil {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO signature_pairs (id, run_id, output_id, response_hash, result_hash, algorithm_version, seal, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			sig.ID, sig.RunID, outputID, sig.ResponseHash, sig.ResultHash,
			sig.AlgorithmVersion, sig.Seal, sig.CreatedAt.UTC().Format(timeLayout),
		)
		if err != nil {
			return fmt.Errorf("inserting signature pair %s: %w", sig.ID, err)
		}
	}

	return tx.Commit()
}

// Record is the latest stored state of one run.
type Record struct {
	Packet    *types.ResponsePacket
	Output    *types.PipelineOutput
	Signature *types.SignaturePair
}

// Latest returns the packet, the newest output, and that output's
// signature pair for runID. Signature is nil for an unsigned output.
func (s *Store) Latest(ctx context.Context, runID string) (*Record, error) {
	var packetJSON, outputJSON string
	var outputID int64
	err := s.db.QueryRowContext(ctx,
		`SELECT r.packet, o.output, o.id
		 FROM pipeline_outputs o JOIN runs r ON r.run_id = o.run_id
		 WHERE o.run_id = ?
		 ORDER BY o.id DESC LIMIT 1`, runID,
	).Scan(&packetJSON, &outputJSON, &outputID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %s: %w", runID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying run %s: %w", runID, err)
	}

	rec := &Record{}
	if err := json.Unmarshal([]byte(packetJSON), &rec.Packet); err != nil {
		return nil, fmt.Errorf("decoding packet of run %s: %w", runID, err)
	}
	if err := json.Unmarshal([]byte(outputJSON), &rec.Output); err != nil {
		return nil, fmt.Errorf("decoding output of run %s: %w", runID, err)
	}

	sigs, err := s.signatures(ctx, `WHERE output_id = ?`, outputID)
	if err != nil {
		return nil, err
	}
	if len(sigs) > 0 {
		rec.Signature = &sigs[len(sigs)-1]
	}
	return rec, nil
}

// Signatures returns every signature pair recorded for runID, oldest
// first.
func (s *Store) Signatures(ctx context.Context, runID string) ([]types.SignaturePair, error) {
	return s.signatures(ctx, `WHERE run_id = ?`, runID)
}

func (s *Store) signatures(ctx context.Context, where string, arg any) ([]types.SignaturePair, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, run_id, response_hash, result_hash, algorithm_version, COALESCE(seal, ''), created_at
		 FROM signature_pairs `+where+` ORDER BY created_at, rowid`, arg)
	if err != nil {
		return nil, fmt.Errorf("querying signature pairs: %w", err)
	}
	defer rows.Close()

	pairs := []types.SignaturePair{}
	for rows.Next() {
		var p types.SignaturePair
		var created string
		if err := rows.Scan(&p.ID, &p.RunID, &p.ResponseHash, &p.ResultHash, &p.AlgorithmVersion, &p.Seal, &created); err != nil {
			return nil, fmt.Errorf("scanning signature pair: %w", err)
		}
		if p.CreatedAt, err = time.Parse(timeLayout, created); err != nil {
			return nil, fmt.Errorf("parsing created_at of pair %s: %w", p.ID, err)
		}
		pairs = append(pairs, p)
	}
	return pairs, rows.Err()
}

// History returns one snapshot per scored run of subjectID, taken from the
// newest output of each run, ordered by completion time.
func (s *Store) History(ctx context.Context, subjectID string) ([]types.RunSnapshot, error) {
	outputs, err := s.latestOutputs(ctx, subjectID)
	if err != nil {
		return nil, err
	}
	snaps := make([]types.RunSnapshot, 0, len(outputs))
	for _, o := range outputs {
		snaps = append(snaps, o.Snapshot(o.ComputedAt))
	}
	return snaps, nil
}

// latestOutputs returns the newest output of every run, for one subject
// or for all subjects when subjectID is empty.
func (s *Store) latestOutputs(ctx context.Context, subjectID string) ([]*types.PipelineOutput, error) {
	query := `SELECT o.output FROM pipeline_outputs o
		WHERE o.id IN (SELECT MAX(id) FROM pipeline_outputs GROUP BY run_id)`
	var args []any
	if subjectID != "" {
		query += ` AND o.subject_id = ?`
		args = append(args, subjectID)
	}
	query += ` ORDER BY COALESCE(o.completed_at, o.computed_at), o.id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying outputs: %w", err)
	}
	defer rows.Close()

	var outputs []*types.PipelineOutput
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scanning output: %w", err)
		}
		var out types.PipelineOutput
		if err := json.Unmarshal([]byte(data), &out); err != nil {
			return nil, fmt.Errorf("decoding output: %w", err)
		}
		outputs = append(outputs, &out)
	}
	return outputs, rows.Err()
}

func formatTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(timeLayout)
}
