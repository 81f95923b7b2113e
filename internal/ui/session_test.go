/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package ui

import (
	"errors"
	"path/filepath"
	"testing"

	"diagramroute/internal/document"
	"diagramroute/internal/move"
	"diagramroute/internal/relation"
	"diagramroute/internal/scene"
	"diagramroute/internal/vector"
)

// sample has a component "a" around the origin, an interface "i" at (150,0)
// and a relation "r" running along y=0 between them.
func sample(t *testing.T) *scene.Scene {
	t.Helper()
	s := scene.New("sample")
	if err := s.AddComponent(scene.Component{ID: "a", Label: "Service"}); err != nil {
		t.Fatalf("component: %v", err)
	}
	if err := s.AddInterface(scene.Interface{ID: "i", Parent: "a", Offset: vector.P(150, 0)}); err != nil {
		t.Fatalf("interface: %v", err)
	}
	if err := s.AddRelation(relation.Relation{ID: "r", Start: "a", End: relation.ElementEnd("i")}); err != nil {
		t.Fatalf("relation: %v", err)
	}
	return s
}

func TestSessionSelection(t *testing.T) {
	s := sample(t)
	sess := NewSession(s, "")
	sess.Press(0, vector.P(80, 2))
	if !s.IsSelected("r") || s.IsSelected("a") {
		t.Fatalf("relation press: selection %v", s.Selection())
	}
	sess.Press(0, vector.P(0, 0))
	if !s.IsSelected("a") || s.IsSelected("r") {
		t.Fatalf("component press: selection %v", s.Selection())
	}
	sess.Press(0, vector.P(500, 500))
	if len(s.Selection()) != 0 || sess.Dragging() {
		t.Fatalf("empty press: selection %v dragging %v", s.Selection(), sess.Dragging())
	}
}

func TestSessionDragUndoSave(t *testing.T) {
	s := sample(t)
	path := filepath.Join(t.TempDir(), "sample.yaml")
	sess := NewSession(s, path)

	sess.Press(0, vector.P(0, 0))
	if !sess.Dragging() {
		t.Fatalf("press on component did not start a gesture")
	}
	if err := sess.Move(vector.P(0, 6), move.Modifiers{}); err != nil {
		t.Fatalf("move: %v", err)
	}
	if c, _ := s.Component("a"); c.Pos != vector.P(0, 10) {
		t.Fatalf("preview: got %v", c.Pos)
	}
	if sess.Dirty() {
		t.Fatalf("preview marked the session dirty")
	}
	if err := sess.Release(vector.P(0, 22), move.Modifiers{}); err != nil {
		t.Fatalf("release: %v", err)
	}
	if c, _ := s.Component("a"); c.Pos != vector.P(0, 20) || !sess.Dirty() {
		t.Fatalf("commit: got %v dirty %v", c.Pos, sess.Dirty())
	}

	if err := sess.Save(); err != nil {
		t.Fatalf("save: %v", err)
	}
	if sess.Dirty() {
		t.Fatalf("dirty after save")
	}
	loaded, err := document.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c, _ := loaded.Component("a"); c.Pos != vector.P(0, 20) {
		t.Fatalf("saved position: got %v", c.Pos)
	}

	if ok, err := sess.Undo(); !ok || err != nil {
		t.Fatalf("undo: %v %v", ok, err)
	}
	if c, _ := s.Component("a"); c.Pos != vector.P(0, 0) {
		t.Fatalf("after undo: got %v", c.Pos)
	}
	if ok, err := sess.Redo(); !ok || err != nil {
		t.Fatalf("redo: %v %v", ok, err)
	}
	if c, _ := s.Component("a"); c.Pos != vector.P(0, 20) {
		t.Fatalf("after redo: got %v", c.Pos)
	}
}

func TestSessionZoomedDrag(t *testing.T) {
	s := sample(t)
	s.SetZoom(2)
	sess := NewSession(s, "")
	sess.Press(0, vector.P(0, 0))
	if err := sess.Move(vector.P(0, 20), move.Modifiers{}); err != nil {
		t.Fatalf("move: %v", err)
	}
	if c, _ := s.Component("a"); c.Pos != vector.P(0, 10) {
		t.Fatalf("preview: got %v want (0,10)", c.Pos)
	}
	if err := sess.Release(vector.P(0, 40), move.Modifiers{}); err != nil {
		t.Fatalf("release: %v", err)
	}
	if c, _ := s.Component("a"); c.Pos != vector.P(0, 20) {
		t.Fatalf("got %v want (0,20)", c.Pos)
	}
}

func TestSessionEnterCommitsReleasedOutside(t *testing.T) {
	s := sample(t)
	sess := NewSession(s, "")
	sess.Press(0, vector.P(0, 0))
	if err := sess.Move(vector.P(0, 10), move.Modifiers{}); err != nil {
		t.Fatalf("move: %v", err)
	}
	if err := sess.Enter(1, vector.P(0, 30), move.Modifiers{}); err != nil || !sess.Dragging() {
		t.Fatalf("enter with button held: %v dragging %v", err, sess.Dragging())
	}
	if err := sess.Enter(0, vector.P(0, 30), move.Modifiers{}); err != nil {
		t.Fatalf("enter: %v", err)
	}
	if c, _ := s.Component("a"); c.Pos != vector.P(0, 30) || sess.Dragging() {
		t.Fatalf("got %v dragging %v", c.Pos, sess.Dragging())
	}
}

func TestSessionFailedCommitRollsBack(t *testing.T) {
	s := sample(t)
	sess := NewSession(s, "")
	sess.Press(0, vector.P(0, 0))
	if err := sess.Move(vector.P(0, 30), move.Modifiers{}); err != nil {
		t.Fatalf("move: %v", err)
	}
	boom := errors.New("no anchor")
	if err := sess.apply(nil, boom); !errors.Is(err, boom) {
		t.Fatalf("got %v want %v", err, boom)
	}
	if c, _ := s.Component("a"); c.Pos != vector.P(0, 0) {
		t.Fatalf("preview kept: got %v want (0,0)", c.Pos)
	}
	if sess.Dirty() {
		t.Fatalf("failed gesture marked the session dirty")
	}
	if ok, _ := sess.Undo(); ok {
		t.Fatalf("failed gesture recorded a step")
	}
}

func TestSessionSaveWithoutPath(t *testing.T) {
	if err := NewSession(sample(t), "").Save(); !errors.Is(err, ErrNoPath) {
		t.Fatalf("got %v want ErrNoPath", err)
	}
}
