/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	applog "diagramroute/internal/log"
	"diagramroute/internal/version"

	// Pure-Go SQLite driver (CGO-free)
	_ "modernc.org/sqlite"
)

const (
	// JournalFileName is the default journal file inside the config dir.
	JournalFileName = "journal.sqlite"

	// schemaVersion is the current local schema. Bump it together with a new
	// step in runMigrations.
	schemaVersion = 2
)

// SQLiteJournal is the local journal.
type SQLiteJournal struct {
	db  *sql.DB
	log *slog.Logger
}

// OpenSQLite opens or creates the journal at path, enables WAL and brings the
// schema up to date.
func OpenSQLite(path string) (*SQLiteJournal, error) {
	l := applog.WithOperation(applog.WithComponent("storage"), "journal_open").With(slog.String("path", path))
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("journal path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create journal dir: %w", err)
	}
	dsn := fmt.Sprintf("file:%s?cache=shared&_pragma=busy_timeout(5000)", filepath.ToSlash(path))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		l.Error("sqlite open failed", slog.Any("err", err))
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		_ = db.Close()
		l.Error("enable WAL failed", slog.Any("err", err))
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if err := ensureMetaAndVersion(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := runMigrations(ctx, db); err != nil {
		_ = db.Close()
		l.Error("run migrations failed", slog.Any("err", err))
		return nil, err
	}
	l.Debug("journal ready")
	return &SQLiteJournal{db: db, log: applog.WithComponent("storage")}, nil
}

func ensureMetaAndVersion(ctx context.Context, db *sql.DB) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS version (
			id          INTEGER PRIMARY KEY CHECK(id=1),
			schema      INTEGER NOT NULL,
			app         TEXT,
			created_at  TEXT NOT NULL,
			updated_at  TEXT NOT NULL
		);`,
	}
	for _, q := range ddl {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	now := time.Now().UTC().Format(time.RFC3339)
	appv := version.String()
	var cur int
	err := db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&cur)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		// a fresh database starts at 0 and runs every step
		if _, err := db.ExecContext(ctx, `INSERT INTO version (id, schema, app, created_at, updated_at) VALUES(1, 0, ?, ?, ?)`, appv, now, now); err != nil {
			return fmt.Errorf("insert version: %w", err)
		}
	case err != nil:
		return fmt.Errorf("read version: %w", err)
	default:
		if _, err := db.ExecContext(ctx, `UPDATE version SET app=?, updated_at=? WHERE id=1`, appv, now); err != nil {
			return fmt.Errorf("update version: %w", err)
		}
	}
	return nil
}

var migrationSteps = map[int][]string{
	1: {
		`CREATE TABLE IF NOT EXISTS entries (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			diagram     TEXT NOT NULL,
			revision    INTEGER NOT NULL,
			payload     TEXT NOT NULL,
			created_at  TEXT NOT NULL
		);`,
	},
	2: {
		`CREATE INDEX IF NOT EXISTS idx_entries_diagram ON entries(diagram, id);`,
	},
}

// runMigrations applies the steps above the stored schema, one transaction
// per step. A newer database is left alone.
func runMigrations(ctx context.Context, db *sql.DB) error {
	var cur int
	if err := db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&cur); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	for next := cur + 1; next <= schemaVersion; next++ {
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", next, err)
		}
		for _, q := range migrationSteps[next] {
			if _, err := tx.ExecContext(ctx, q); err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("migration %d stmt failed: %w", next, err)
			}
		}
		if _, err := tx.ExecContext(ctx, `UPDATE version SET schema=?, updated_at=? WHERE id=1`, next, time.Now().UTC().Format(time.RFC3339)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d update version: %w", next, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("migration %d commit: %w", next, err)
		}
	}
	return nil
}

func (j *SQLiteJournal) Append(ctx context.Context, e Entry) error {
	_, err := j.db.ExecContext(ctx, `INSERT INTO entries (diagram, revision, payload, created_at) VALUES(?, ?, ?, ?)`,
		e.Diagram, e.Revision, string(e.Update), e.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		j.log.ErrorContext(ctx, "journal append failed", slog.String("name", e.Diagram), slog.Any("err", err))
		return fmt.Errorf("append entry: %w", err)
	}
	j.log.DebugContext(ctx, "journal append", slog.String("name", e.Diagram), slog.Int64("revision", e.Revision))
	return nil
}

func (j *SQLiteJournal) List(ctx context.Context, diagram string) ([]Entry, error) {
	rows, err := j.db.QueryContext(ctx, `SELECT diagram, revision, payload, created_at FROM entries WHERE diagram = ? ORDER BY id`, diagram)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()
	var out []Entry
	for rows.Next() {
		var (
			e       Entry
			payload string
			created string
		)
		if err := rows.Scan(&e.Diagram, &e.Revision, &payload, &created); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		e.Update = []byte(payload)
		if e.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
			return nil, fmt.Errorf("parse entry time: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// SchemaVersion reports the schema stored in the database.
func (j *SQLiteJournal) SchemaVersion(ctx context.Context) (int, error) {
	var v int
	if err := j.db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&v); err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return v, nil
}

func (j *SQLiteJournal) Close() error { return j.db.Close() }
