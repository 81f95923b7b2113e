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
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"diagramroute/internal/move"
	"diagramroute/internal/scene"
	"diagramroute/internal/vector"

	_ "modernc.org/sqlite"
)

func TestSQLiteAppendList(t *testing.T) {
	path := filepath.Join(t.TempDir(), JournalFileName)
	j, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer j.Close()
	ctx := context.Background()

	pos := vector.P(10, 20)
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, d := range []string{"a", "b", "a"} {
		e, err := EntryFromCommit(scene.Commit{
			Diagram:  d,
			Revision: int64(i + 1),
			Update:   move.LayoutUpdate{Committed: true, PartialLayout: map[string]move.ElementLayout{"c": {Pos: &pos}}},
			At:       at,
		})
		if err != nil {
			t.Fatalf("EntryFromCommit: %v", err)
		}
		if err := j.Append(ctx, e); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}
	got, err := j.List(ctx, "a")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 || got[0].Revision != 1 || got[1].Revision != 3 {
		t.Fatalf("unexpected entries: %+v", got)
	}
	if !got[0].CreatedAt.Equal(at) {
		t.Fatalf("created_at: got %v want %v", got[0].CreatedAt, at)
	}
	u, err := got[0].DecodeUpdate()
	if err != nil {
		t.Fatalf("DecodeUpdate: %v", err)
	}
	if p := u.PartialLayout["c"].Pos; !u.Committed || p == nil || *p != pos {
		t.Fatalf("decoded update mismatch: %+v", u)
	}
}

func TestSQLiteReopenKeepsEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", JournalFileName)
	j, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	ctx := context.Background()
	if err := j.Append(ctx, Entry{Diagram: "d", Revision: 7, Update: []byte(`{}`), CreatedAt: time.Now()}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	j.Close()

	j, err = OpenSQLite(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer j.Close()
	got, err := j.List(ctx, "d")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 1 || got[0].Revision != 7 {
		t.Fatalf("entries after reopen: %+v", got)
	}
	v, err := j.SchemaVersion(ctx)
	if err != nil || v != schemaVersion {
		t.Fatalf("schema version: got %d (%v) want %d", v, err, schemaVersion)
	}
}

// An older journal (schema=1) is migrated and gains the diagram index.
func TestMigrations_UpgradeV1ToV2(t *testing.T) {
	path := filepath.Join(t.TempDir(), JournalFileName)
	dsn := fmt.Sprintf("file:%s?cache=shared&_pragma=busy_timeout(2000)", filepath.ToSlash(path))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	stmts := []string{
		`PRAGMA journal_mode=WAL;`,
		`CREATE TABLE IF NOT EXISTS meta (key TEXT PRIMARY KEY, value TEXT NOT NULL);`,
		`CREATE TABLE IF NOT EXISTS version (id INTEGER PRIMARY KEY CHECK(id=1), schema INTEGER NOT NULL, app TEXT, created_at TEXT NOT NULL, updated_at TEXT NOT NULL);`,
		`INSERT INTO version(id, schema, app, created_at, updated_at) VALUES(1, 1, 'test', '2020-01-01T00:00:00Z', '2020-01-01T00:00:00Z');`,
		`CREATE TABLE IF NOT EXISTS entries (id INTEGER PRIMARY KEY AUTOINCREMENT, diagram TEXT NOT NULL, revision INTEGER NOT NULL, payload TEXT NOT NULL, created_at TEXT NOT NULL);`,
	}
	for _, q := range stmts {
		if _, err := db.ExecContext(ctx, q); err != nil {
			t.Fatalf("seed v1 schema: %v (q=%s)", err, q)
		}
	}
	db.Close()

	j, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer j.Close()
	v, err := j.SchemaVersion(ctx)
	if err != nil {
		t.Fatalf("read schema: %v", err)
	}
	if v != 2 {
		t.Fatalf("expected schema 2 after migration, got %d", v)
	}
	var cnt int
	if err := j.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sqlite_master WHERE type='index' AND name='idx_entries_diagram'`).Scan(&cnt); err != nil {
		t.Fatalf("query indexes: %v", err)
	}
	if cnt != 1 {
		t.Fatalf("expected idx_entries_diagram after migration, got %d", cnt)
	}
}

func TestCommitHookAppends(t *testing.T) {
	j, err := OpenSQLite(filepath.Join(t.TempDir(), JournalFileName))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer j.Close()
	hook := CommitHook(context.Background(), j)
	if err := hook(scene.Commit{Diagram: "x", Revision: 3, At: time.Now()}); err != nil {
		t.Fatalf("hook: %v", err)
	}
	got, _ := j.List(context.Background(), "x")
	if len(got) != 1 {
		t.Fatalf("expected one entry, got %d", len(got))
	}
}

func TestOpenSQLiteRequiresPath(t *testing.T) {
	if _, err := OpenSQLite("  "); err == nil {
		t.Fatalf("expected error for empty path")
	}
}
