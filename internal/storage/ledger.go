package storage

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/san-kum/scenecheck/internal/compare"
)

//go:embed schema.sql
var schemaSQL string

// Ledger is a SQLite history of comparison outcomes.
type Ledger struct {
	db *sql.DB
}

// Entry is one recorded comparison.
type Entry struct {
	ID         string
	RecordA    string
	RecordB    string
	Mode       compare.Mode
	OK         bool
	Mismatches int
	Steps      int
	Kinds      map[compare.Kind]int
	CreatedAt  time.Time
}

// EntryFromReport summarizes a comparison report for the ledger.
func EntryFromReport(rep *compare.Report) Entry {
	e := Entry{
		RecordA:    rep.A,
		RecordB:    rep.B,
		Mode:       rep.Mode,
		OK:         rep.OK(),
		Mismatches: len(rep.Mismatches),
		Steps:      rep.Steps,
		Kinds:      make(map[compare.Kind]int),
	}
	for _, m := range rep.Mismatches {
		e.Kinds[m.Kind]++
	}
	return e
}

// OpenLedger creates or opens the ledger database at path.
func OpenLedger(path string) (*Ledger, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to ledger: %w", err)
	}

	// SQLite allows one writer at a time.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	return &Ledger{db: db}, nil
}

func (l *Ledger) Close() error {
	if l.db == nil {
		return nil
	}
	return l.db.Close()
}

// Record stores e and returns its id. A zero CreatedAt is set to now.
func (l *Ledger) Record(ctx context.Context, e Entry) (string, error) {
	if e.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return "", err
		}
		e.ID = id.String()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO comparisons (id, record_a, record_b, mode, ok, mismatches, steps, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.RecordA, e.RecordB, string(e.Mode), boolInt(e.OK), e.Mismatches, e.Steps, e.CreatedAt.UnixNano(),
	); err != nil {
		return "", fmt.Errorf("insert comparison: %w", err)
	}
	for _, k := range slices.Sorted(maps.Keys(e.Kinds)) {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO comparison_kinds (comparison_id, kind, count) VALUES (?, ?, ?)`,
			e.ID, string(k), e.Kinds[k],
		); err != nil {
			return "", fmt.Errorf("insert comparison kind: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return "", err
	}
	return e.ID, nil
}

// Recent returns up to n entries, newest first.
func (l *Ledger) Recent(ctx context.Context, n int) ([]Entry, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT id, record_a, record_b, mode, ok, mismatches, steps, created_at
		 FROM comparisons ORDER BY created_at DESC, id DESC LIMIT ?`, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e    Entry
			mode string
			ts   int64
		)
		if err := rows.Scan(&e.ID, &e.RecordA, &e.RecordB, &mode, &e.OK, &e.Mismatches, &e.Steps, &ts); err != nil {
			return nil, err
		}
		e.Mode = compare.Mode(mode)
		e.CreatedAt = time.Unix(0, ts)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		kinds, err := l.kinds(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Kinds = kinds
	}
	return out, nil
}

func (l *Ledger) kinds(ctx context.Context, id string) (map[compare.Kind]int, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT kind, count FROM comparison_kinds WHERE comparison_id = ?`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[compare.Kind]int)
	for rows.Next() {
		var (
			k string
			n int
		)
		if err := rows.Scan(&k, &n); err != nil {
			return nil, err
		}
		out[compare.Kind(k)] = n
	}
	return out, rows.Err()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
