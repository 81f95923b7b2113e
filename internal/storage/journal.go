/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package storage persists committed layout updates. A journal records one
// entry per committed drag so a diagram's layout history can be inspected and
// replayed. The local journal is an embedded SQLite database; the backend
// package provides a shared Postgres implementation of the same interface.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"diagramroute/internal/move"
	"diagramroute/internal/scene"
)

// Entry is one committed layout update.
type Entry struct {
	Diagram   string
	Revision  int64
	Update    json.RawMessage
	CreatedAt time.Time
}

// Journal appends and lists entries. Entries of a diagram are listed in the
// order they were appended.
type Journal interface {
	Append(ctx context.Context, e Entry) error
	List(ctx context.Context, diagram string) ([]Entry, error)
	Close() error
}

// EntryFromCommit encodes a scene commit.
func EntryFromCommit(c scene.Commit) (Entry, error) {
	b, err := json.Marshal(c.Update)
	if err != nil {
		return Entry{}, fmt.Errorf("encode update: %w", err)
	}
	return Entry{Diagram: c.Diagram, Revision: c.Revision, Update: b, CreatedAt: c.At.UTC()}, nil
}

// DecodeUpdate returns the layout update stored in e.
func (e Entry) DecodeUpdate() (move.LayoutUpdate, error) {
	var u move.LayoutUpdate
	if err := json.Unmarshal(e.Update, &u); err != nil {
		return move.LayoutUpdate{}, fmt.Errorf("decode update: %w", err)
	}
	return u, nil
}

// CommitHook adapts a journal to scene.WithCommitHook. Each append gets its
// own timeout derived from ctx.
func CommitHook(ctx context.Context, j Journal) func(scene.Commit) error {
	return func(c scene.Commit) error {
		e, err := EntryFromCommit(c)
		if err != nil {
			return err
		}
		actx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return j.Append(actx, e)
	}
}
