/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package scene

import (
	"errors"
	"testing"
	"time"

	"diagramroute/internal/move"
	"diagramroute/internal/relation"
	"diagramroute/internal/shape"
	"diagramroute/internal/vector"
)

// sample builds a 74x44 component "a" around the origin, a circle interface
// "i" on it at (150,0) and a relation "r" between them.
func sample(t *testing.T, opts ...Option) *Scene {
	t.Helper()
	s := New("sample", opts...)
	if err := s.AddComponent(Component{ID: "a", Label: "Service"}); err != nil {
		t.Fatalf("component: %v", err)
	}
	if err := s.AddInterface(Interface{ID: "i", Parent: "a", Offset: vector.P(150, 0)}); err != nil {
		t.Fatalf("interface: %v", err)
	}
	if err := s.AddRelation(relation.Relation{ID: "r", Start: "a", End: relation.ElementEnd("i")}); err != nil {
		t.Fatalf("relation: %v", err)
	}
	return s
}

func TestShapes(t *testing.T) {
	s := sample(t)
	sh, ok := s.Shape("a")
	if !ok {
		t.Fatalf("no shape for component")
	}
	if sh.Kind != shape.Rect || sh.Bounds != vector.R(-37, -22, 74, 44) {
		t.Fatalf("component: got %s %+v", sh.Kind, sh.Bounds)
	}
	sh, ok = s.Shape("i")
	if !ok || sh.Kind != shape.Circle || sh.Bounds != vector.R(130, -20, 40, 40) {
		t.Fatalf("interface: got %v %+v", ok, sh)
	}
	if _, ok := s.Shape("r"); ok {
		t.Fatalf("relations have no shape")
	}
}

func TestRelationPathMemoized(t *testing.T) {
	s := sample(t)
	p, err := s.RelationPath("r")
	if err != nil || p == nil {
		t.Fatalf("path: %v %v", p, err)
	}
	if p.Start != vector.P(36, 0) || p.End != vector.P(131, 0) || len(p.Segments) != 1 {
		t.Fatalf("got %+v", p)
	}
	again, _ := s.RelationPath("r")
	if again != p {
		t.Fatalf("path recomputed without a change")
	}
	pos := vector.P(0, 10)
	if err := s.Apply(move.LayoutUpdate{PartialLayout: map[string]move.ElementLayout{"a": {Pos: &pos}}}); err != nil {
		t.Fatalf("apply: %v", err)
	}
	moved, _ := s.RelationPath("r")
	if moved == p || moved.Start != vector.P(36, 10) || moved.End != vector.P(131, 10) {
		t.Fatalf("after move: got %+v", moved)
	}
}

func TestHitTest(t *testing.T) {
	s := sample(t)
	cases := []struct {
		p    vector.Pt
		want move.Target
		ok   bool
	}{
		{vector.P(0, 0), move.Target{ID: "a", Segment: -1, Movable: true}, true},
		{vector.P(150, 5), move.Target{ID: "i", Segment: -1, Movable: true}, true},
		{vector.P(80, 2), move.Target{ID: "r", Relation: true, Segment: 0, Movable: true}, true},
		{vector.P(500, 500), move.Target{}, false},
	}
	for _, c := range cases {
		got, ok := s.HitTest(c.p)
		if ok != c.ok || got != c.want {
			t.Fatalf("HitTest(%v): got %+v %v want %+v %v", c.p, got, ok, c.want, c.ok)
		}
	}
}

func TestSelection(t *testing.T) {
	s := sample(t)
	s.Select("i", "missing", "a", "i")
	sel := s.Selection()
	if len(sel) != 2 {
		t.Fatalf("got %+v", sel)
	}
	if sel[0] != (move.Element{ID: "i", Kind: move.KindInterface, Parent: "a", Pos: vector.P(150, 0)}) {
		t.Fatalf("interface element: got %+v", sel[0])
	}
	if got := s.Children("a"); len(got) != 1 || got[0] != "i" {
		t.Fatalf("children: got %v", got)
	}
	if refs := s.Relations(); len(refs) != 1 || refs[0].End != "i" {
		t.Fatalf("relations: got %+v", refs)
	}
}

func TestDragCommitUndoRedo(t *testing.T) {
	var commits []Commit
	s := sample(t, WithCommitHook(func(c Commit) error {
		commits = append(commits, c)
		return nil
	}), WithClock(func() time.Time { return time.Unix(100, 0) }))
	s.Select("a")
	l := move.NewListener(s)
	l.MouseDown(0, move.Target{ID: "a", Segment: -1, Movable: true}, vector.P(0, 0))
	u, err := l.MouseMove(vector.P(0, 6), move.Modifiers{})
	if err != nil || u == nil {
		t.Fatalf("move: %v %v", u, err)
	}
	if err := s.Apply(*u); err != nil {
		t.Fatalf("apply preview: %v", err)
	}
	u, err = l.MouseUp(vector.P(0, 22), move.Modifiers{})
	if err != nil || u == nil {
		t.Fatalf("up: %v %v", u, err)
	}
	if err := s.Apply(*u); err != nil {
		t.Fatalf("apply commit: %v", err)
	}
	if c, _ := s.Component("a"); c.Pos != vector.P(0, 20) {
		t.Fatalf("pos: got %v want (0,20)", c.Pos)
	}
	if len(commits) != 1 || commits[0].Diagram != "sample" || !commits[0].Update.Committed {
		t.Fatalf("commits: got %+v", commits)
	}

	rev := s.Revision()
	if ok, err := s.Undo(); !ok || err != nil {
		t.Fatalf("undo: %v %v", ok, err)
	}
	if c, _ := s.Component("a"); c.Pos != vector.P(0, 0) {
		t.Fatalf("undo restored %v want the pre-gesture (0,0)", c.Pos)
	}
	if s.Revision() <= rev {
		t.Fatalf("undo did not bump the revision")
	}
	if ok, _ := s.Undo(); ok {
		t.Fatalf("gesture recorded more than one step")
	}
	if ok, err := s.Redo(); !ok || err != nil {
		t.Fatalf("redo: %v %v", ok, err)
	}
	if c, _ := s.Component("a"); c.Pos != vector.P(0, 20) {
		t.Fatalf("redo: got %v", c.Pos)
	}
}

func TestAbortRollsBackPreview(t *testing.T) {
	var commits []Commit
	s := sample(t, WithCommitHook(func(c Commit) error {
		commits = append(commits, c)
		return nil
	}))
	s.Select("a")
	l := move.NewListener(s)
	l.MouseDown(0, move.Target{ID: "a", Segment: -1, Movable: true}, vector.P(0, 0))
	u, err := l.MouseMove(vector.P(0, 30), move.Modifiers{})
	if err != nil || u == nil {
		t.Fatalf("move: %v %v", u, err)
	}
	if err := s.Apply(*u); err != nil {
		t.Fatalf("apply preview: %v", err)
	}
	if err := s.Abort(); err != nil {
		t.Fatalf("abort: %v", err)
	}
	if c, _ := s.Component("a"); c.Pos != vector.P(0, 0) {
		t.Fatalf("abort left %v want (0,0)", c.Pos)
	}
	if err := s.Abort(); err != nil {
		t.Fatalf("abort without a gesture: %v", err)
	}
	if ok, _ := s.Undo(); ok {
		t.Fatalf("aborted gesture recorded a step")
	}

	// the next gesture starts from the restored layout
	l.MouseDown(0, move.Target{ID: "a", Segment: -1, Movable: true}, vector.P(0, 0))
	if _, err := l.MouseMove(vector.P(20, 0), move.Modifiers{}); err != nil {
		t.Fatalf("move: %v", err)
	}
	u, err = l.MouseUp(vector.P(20, 0), move.Modifiers{})
	if err != nil || u == nil {
		t.Fatalf("up: %v %v", u, err)
	}
	if err := s.Apply(*u); err != nil {
		t.Fatalf("apply commit: %v", err)
	}
	if c, _ := s.Component("a"); c.Pos != vector.P(20, 0) {
		t.Fatalf("pos: got %v want (20,0)", c.Pos)
	}
	if len(commits) != 1 {
		t.Fatalf("commits: got %d want 1", len(commits))
	}
	if ok, err := s.Undo(); !ok || err != nil {
		t.Fatalf("undo: %v %v", ok, err)
	}
	if c, _ := s.Component("a"); c.Pos != vector.P(0, 0) {
		t.Fatalf("undo restored %v want (0,0)", c.Pos)
	}
	if ok, _ := s.Undo(); ok {
		t.Fatalf("undo reached past the committed gesture")
	}
}

func TestCommitHookError(t *testing.T) {
	boom := errors.New("journal down")
	s := sample(t, WithCommitHook(func(Commit) error { return boom }))
	pos := vector.P(10, 0)
	err := s.Apply(move.LayoutUpdate{Committed: true, PartialLayout: map[string]move.ElementLayout{"a": {Pos: &pos}, "gone": {Pos: &pos}}})
	if !errors.Is(err, boom) {
		t.Fatalf("got %v want hook error", err)
	}
	if c, _ := s.Component("a"); c.Pos != pos {
		t.Fatalf("update not applied")
	}
}

func TestUpdateRelationEnd(t *testing.T) {
	s := sample(t)
	if err := s.UpdateRelationEnd("r", relation.PointEnd(vector.P(200, 100))); err != nil {
		t.Fatalf("update: %v", err)
	}
	p, err := s.RelationPath("r")
	if err != nil || p == nil {
		t.Fatalf("path: %v %v", p, err)
	}
	if p.Start != vector.P(36, 20) || p.End != vector.P(200, 100) || len(p.Segments) != 2 {
		t.Fatalf("got %+v", p)
	}
	if _, err := s.Undo(); err != nil {
		t.Fatalf("undo: %v", err)
	}
	if r, _ := s.Relation("r"); r.End != relation.ElementEnd("i") {
		t.Fatalf("undo: end %+v", r.End)
	}
	if err := s.UpdateRelationEnd("r", relation.ElementEnd("nope")); !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v want ErrNotFound", err)
	}
}

func TestAddErrorsAndRemove(t *testing.T) {
	s := sample(t)
	if err := s.AddComponent(Component{ID: "a"}); !errors.Is(err, ErrDuplicateID) {
		t.Fatalf("duplicate: got %v", err)
	}
	if err := s.AddInterface(Interface{ID: "j", Parent: "x"}); !errors.Is(err, ErrUnknownParent) {
		t.Fatalf("parent: got %v", err)
	}
	if err := s.AddComponent(Component{ID: "b", Style: shape.Style{Shape: "star"}}); !errors.Is(err, shape.ErrUnknownShape) {
		t.Fatalf("kind: got %v", err)
	}
	if _, err := s.RelationPath("r"); err != nil {
		t.Fatalf("path: %v", err)
	}
	if err := s.Remove("a"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, ok := s.Interface("i"); ok {
		t.Fatalf("interface survived its parent")
	}
	if p, err := s.RelationPath("r"); p != nil || err != nil {
		t.Fatalf("unresolved relation: got %v %v want nil", p, err)
	}
	if _, ok, err := s.RelationView("r"); ok || err != nil {
		t.Fatalf("view of unresolved relation: %v %v", ok, err)
	}
	if err := s.Remove("a"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v want ErrNotFound", err)
	}
}

func TestRelationView(t *testing.T) {
	s := sample(t)
	s.Select("r")
	v, ok, err := s.RelationView("r")
	if err != nil || !ok {
		t.Fatalf("view: %v %v", ok, err)
	}
	if v.Path != "M 36 0 H 131" || v.SelectedPath != v.Path || len(v.Handles) != 1 {
		t.Fatalf("got %+v", v)
	}
}
