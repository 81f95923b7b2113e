/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package backend is the shared Postgres layout journal and a small read-only
// HTTP API over it.
package backend

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"sort"
	"strconv"
	"strings"
	"time"

	applog "diagramroute/internal/log"
	"diagramroute/internal/storage"

	_ "github.com/jackc/pgx/v5/stdlib"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// PGJournal stores entries in Postgres.
type PGJournal struct {
	db  *sql.DB
	log *slog.Logger
}

var _ storage.Journal = (*PGJournal)(nil)

// OpenPostgres connects to dsn, pings the server and applies pending
// migrations.
func OpenPostgres(ctx context.Context, dsn string) (*PGJournal, error) {
	l := applog.WithOperation(applog.WithComponent("backend"), "journal_open")
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("postgres dsn is required")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	pctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	if err := applyMigrations(pctx, db); err != nil {
		_ = db.Close()
		l.Error("migrate failed", slog.Any("err", err))
		return nil, fmt.Errorf("migrate: %w", err)
	}
	l.Info("postgres journal ready")
	return &PGJournal{db: db, log: applog.WithComponent("backend")}, nil
}

func (j *PGJournal) Append(ctx context.Context, e storage.Entry) error {
	_, err := j.db.ExecContext(ctx, `INSERT INTO layout_entries (diagram, revision, payload, created_at) VALUES ($1, $2, $3, $4)`,
		e.Diagram, e.Revision, []byte(e.Update), e.CreatedAt.UTC())
	if err != nil {
		j.log.ErrorContext(ctx, "journal append failed", slog.String("name", e.Diagram), slog.Any("err", err))
		return fmt.Errorf("append entry: %w", err)
	}
	j.log.DebugContext(ctx, "journal append", slog.String("name", e.Diagram), slog.Int64("revision", e.Revision))
	return nil
}

func (j *PGJournal) List(ctx context.Context, diagram string) ([]storage.Entry, error) {
	rows, err := j.db.QueryContext(ctx, `SELECT diagram, revision, payload, created_at FROM layout_entries WHERE diagram = $1 ORDER BY id`, diagram)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			j.log.Warn("rows close", slog.Any("err", err))
		}
	}()
	var out []storage.Entry
	for rows.Next() {
		var (
			e       storage.Entry
			payload []byte
		)
		if err := rows.Scan(&e.Diagram, &e.Revision, &payload, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		e.Update = payload
		out = append(out, e)
	}
	return out, rows.Err()
}

// Ping checks the connection.
func (j *PGJournal) Ping(ctx context.Context) error { return j.db.PingContext(ctx) }

func (j *PGJournal) Close() error { return j.db.Close() }

// migrationFiles lists the embedded migrations in filename order.
func migrationFiles() ([]string, error) {
	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return nil, fmt.Errorf("read migrations: %w", err)
	}
	files := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if name := e.Name(); strings.HasSuffix(strings.ToLower(name), ".sql") {
			files = append(files, name)
		}
	}
	sort.Strings(files)
	return files, nil
}

// applyMigrations applies embedded SQL migrations in filename order, skipping
// versions already recorded in schema_migrations.
func applyMigrations(ctx context.Context, db *sql.DB) error {
	l := applog.WithOperation(applog.WithComponent("backend"), "migrate")
	files, err := migrationFiles()
	if err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version BIGINT PRIMARY KEY,
		name TEXT NOT NULL,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`); err != nil {
		return fmt.Errorf("ensure schema_migrations: %w", err)
	}

	applied := map[int64]bool{}
	rows, err := db.QueryContext(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return fmt.Errorf("select schema_migrations: %w", err)
	}
	for rows.Next() {
		var v int64
		if err := rows.Scan(&v); err != nil {
			_ = rows.Close()
			return err
		}
		applied[v] = true
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return err
	}
	_ = rows.Close()

	for _, fname := range files {
		version, err := parseVersion(fname)
		if err != nil {
			return err
		}
		if applied[version] {
			continue
		}
		b, err := migrationsFS.ReadFile(path.Join("migrations", fname))
		if err != nil {
			return err
		}
		sqlText := string(b)
		if strings.TrimSpace(sqlText) == "" {
			continue
		}
		l.Info("applying migration", slog.String("file", fname))
		if _, err := db.ExecContext(ctx, sqlText); err != nil {
			return fmt.Errorf("apply %s: %w", fname, err)
		}
	}
	return nil
}

func parseVersion(name string) (int64, error) {
	base := path.Base(name)
	prefix, _, ok := strings.Cut(base, "_")
	if !ok {
		return 0, errors.New("invalid migration filename: " + name)
	}
	v, err := strconv.ParseInt(prefix, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse version from %s: %w", name, err)
	}
	return v, nil
}
