/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package scene

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"

	"diagramroute/internal/line"
	"diagramroute/internal/move"
	"diagramroute/internal/relation"
	"diagramroute/internal/undo"
	"diagramroute/internal/vector"
)

// layoutSnapshot is the undoable state of a diagram.
type layoutSnapshot struct {
	Components map[string]vector.Pt      `json:"components"`
	Interfaces map[string]vector.Pt      `json:"interfaces"`
	Relations  map[string]relationLayout `json:"relations"`
}

type relationLayout struct {
	Points  []vector.Pt          `json:"points,omitempty"`
	Layouts []line.SegmentLayout `json:"layouts,omitempty"`
	End     relation.Endpoint    `json:"end"`
}

func (s *Scene) snapshot() ([]byte, error) {
	snap := layoutSnapshot{
		Components: make(map[string]vector.Pt, len(s.components)),
		Interfaces: make(map[string]vector.Pt, len(s.interfaces)),
		Relations:  make(map[string]relationLayout, len(s.relations)),
	}
	for id, c := range s.components {
		snap.Components[id] = c.Pos
	}
	for id, i := range s.interfaces {
		snap.Interfaces[id] = i.Offset
	}
	for id, r := range s.relations {
		snap.Relations[id] = relationLayout{Points: r.Points, Layouts: r.Layouts, End: r.End}
	}
	b, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", s.name, err)
	}
	return b, nil
}

func (s *Scene) restore(b []byte) error {
	var snap layoutSnapshot
	if err := json.Unmarshal(b, &snap); err != nil {
		return fmt.Errorf("restore %s: %w", s.name, err)
	}
	var ids []string
	for id, p := range snap.Components {
		if c, ok := s.components[id]; ok {
			c.Pos = p
			ids = append(ids, id)
		}
	}
	for id, p := range snap.Interfaces {
		if i, ok := s.interfaces[id]; ok {
			i.Offset = p
			ids = append(ids, id)
		}
	}
	for id, l := range snap.Relations {
		if r, ok := s.relations[id]; ok {
			r.Points, r.Layouts, r.End = l.Points, l.Layouts, l.End
			ids = append(ids, id)
		}
	}
	s.touch(ids...)
	return nil
}

// Apply patches element layouts. Preview updates only change the scene; the
// committed update of a gesture also records one undo step spanning the whole
// gesture and runs the commit hook. Ids that no longer exist are skipped.
func (s *Scene) Apply(u move.LayoutUpdate) error {
	if s.pending == nil {
		before, err := s.snapshot()
		if err != nil {
			return err
		}
		s.pending = before
	}
	ids := make([]string, 0, len(u.PartialLayout))
	for id, l := range u.PartialLayout {
		switch {
		case s.components[id] != nil:
			if l.Pos != nil {
				s.components[id].Pos = *l.Pos
			}
		case s.interfaces[id] != nil:
			if l.Pos != nil {
				s.interfaces[id].Offset = *l.Pos
			}
		case s.relations[id] != nil:
			r := s.relations[id]
			if l.Points != nil {
				r.Points = slices.Clone(l.Points)
			}
			if l.Layouts != nil {
				r.Layouts = slices.Clone(l.Layouts)
			}
		default:
			s.log.Debug("update for unknown element", slog.String("id", id))
			continue
		}
		ids = append(ids, id)
	}
	s.touch(ids...)
	if !u.Committed {
		return nil
	}
	return s.commit(u)
}

func (s *Scene) commit(u move.LayoutUpdate) error {
	before := s.pending
	s.pending = nil
	after, err := s.snapshot()
	if err != nil {
		return err
	}
	at := s.now()
	s.history.Record(undo.Step{Diagram: s.name, Before: before, After: after, TS: at})
	s.log.Info("layout committed", slog.String("diagram", s.name), slog.Int64("revision", s.revision),
		slog.Int("elements", len(u.PartialLayout)))
	if s.onCommit == nil {
		return nil
	}
	if err := s.onCommit(Commit{Diagram: s.name, Revision: s.revision, Update: u, At: at}); err != nil {
		return fmt.Errorf("commit hook: %w", err)
	}
	return nil
}

// Abort ends a gesture that failed before its commit. Preview updates
// applied since the gesture began are rolled back and nothing is recorded.
func (s *Scene) Abort() error {
	before := s.pending
	if before == nil {
		return nil
	}
	s.pending = nil
	s.log.Debug("gesture aborted", slog.String("diagram", s.name))
	return s.restore(before)
}

// UpdateRelationEnd points the end of a relation at another element or at a
// free point. The change is undoable.
func (s *Scene) UpdateRelationEnd(id string, end relation.Endpoint) error {
	r, ok := s.relations[id]
	if !ok {
		return fmt.Errorf("relation %s: %w", id, ErrNotFound)
	}
	if end.IsElement() && s.components[end.ID] == nil && s.interfaces[end.ID] == nil {
		return fmt.Errorf("relation %s end %s: %w", id, end.ID, ErrNotFound)
	}
	before, err := s.snapshot()
	if err != nil {
		return err
	}
	r.End = end
	s.touch(id)
	after, err := s.snapshot()
	if err != nil {
		return err
	}
	s.history.Record(undo.Step{Diagram: s.name, Before: before, After: after, TS: s.now()})
	s.log.Info("relation end updated", slog.String("relation", id), slog.String("end", end.ID))
	return nil
}

// Undo reverts the newest step. It reports false when there is nothing to
// undo.
func (s *Scene) Undo() (bool, error) {
	step, ok := s.history.Undo(s.name)
	if !ok {
		return false, nil
	}
	s.pending = nil
	return true, s.restore(step.Before)
}

// Redo reapplies the newest undone step.
func (s *Scene) Redo() (bool, error) {
	step, ok := s.history.Redo(s.name)
	if !ok {
		return false, nil
	}
	s.pending = nil
	return true, s.restore(step.After)
}
