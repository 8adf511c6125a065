package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sup9097/table-dice-app/internal/dice"
	"github.com/sup9097/table-dice-app/internal/table"

	_ "modernc.org/sqlite" // SQLite driver.
)

// SQLiteArea keeps shards as rows of a SQLite database.
type SQLiteArea struct {
	db *sql.DB
}

// OpenSQLite opens or creates the SQLite database and applies migrations.
func OpenSQLite(path string) (*SQLiteArea, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	area := &SQLiteArea{db: db}
	if err := area.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return area, nil
}

// Close closes the underlying database.
func (a *SQLiteArea) Close() error {
	return a.db.Close()
}

func (a *SQLiteArea) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS shards (
			day TEXT NOT NULL,
			tbl TEXT NOT NULL,
			rolls TEXT NOT NULL,
			saved_at TEXT NOT NULL,
			PRIMARY KEY (day, tbl)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_shards_tbl ON shards(tbl);`,
	}
	for _, stmt := range stmts {
		if _, err := a.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// List implements Area.
func (a *SQLiteArea) List(ctx context.Context, t table.Name) ([]Ref, error) {
	return a.query(ctx, `SELECT day, tbl, length(rolls), saved_at FROM shards WHERE tbl = ? ORDER BY day ASC`, string(t))
}

// ListAll implements Area.
func (a *SQLiteArea) ListAll(ctx context.Context) ([]Ref, error) {
	refs, err := a.query(ctx, `SELECT day, tbl, length(rolls), saved_at FROM shards ORDER BY tbl ASC, day ASC`)
	if err != nil {
		return nil, err
	}
	sortRefs(refs)
	return refs, nil
}

func (a *SQLiteArea) query(ctx context.Context, query string, args ...any) ([]Ref, error) {
	rows, err := a.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var refs []Ref
	for rows.Next() {
		var ref Ref
		var tbl, savedAt string
		if err := rows.Scan(&ref.Day, &tbl, &ref.Size, &savedAt); err != nil {
			return nil, err
		}
		ref.Table = table.Name(tbl)
		if !ref.Table.Valid() {
			continue
		}
		ref.Name = ShardKey(ref.Day, ref.Table)
		parsed, err := time.Parse(time.RFC3339Nano, savedAt)
		if err != nil {
			return nil, err
		}
		ref.SavedAt = parsed
		refs = append(refs, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return refs, nil
}

// ShardKey names a database shard the same way the file backend names files,
// without the extension.
func ShardKey(day string, t table.Name) string {
	return day + "_" + string(t)
}

// Read implements Area.
func (a *SQLiteArea) Read(ctx context.Context, ref Ref) ([]dice.Roll, error) {
	var payload string
	err := a.db.QueryRowContext(ctx, `SELECT rolls FROM shards WHERE day = ? AND tbl = ?`, ref.Day, string(ref.Table)).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("shard %s not found", ref.Name)
		}
		return nil, err
	}
	return decodeRolls([]byte(payload))
}

// Write implements Area.
func (a *SQLiteArea) Write(ctx context.Context, day string, t table.Name, rolls []dice.Roll) (Ref, error) {
	data, err := encodeRolls(rolls)
	if err != nil {
		return Ref{}, err
	}
	savedAt := time.Now()
	_, err = a.db.ExecContext(ctx,
		`INSERT INTO shards (day, tbl, rolls, saved_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(day, tbl) DO UPDATE SET rolls = excluded.rolls, saved_at = excluded.saved_at`,
		day, string(t), string(data), savedAt.Format(time.RFC3339Nano))
	if err != nil {
		return Ref{}, err
	}
	return Ref{Day: day, Table: t, Name: ShardKey(day, t), Size: int64(len(data)), SavedAt: savedAt}, nil
}

// Remove implements Area.
func (a *SQLiteArea) Remove(ctx context.Context, ref Ref) error {
	_, err := a.db.ExecContext(ctx, `DELETE FROM shards WHERE day = ? AND tbl = ?`, ref.Day, string(ref.Table))
	return err
}

var _ Area = (*SQLiteArea)(nil)
