/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package ui hosts the interactive diagram viewer. Session is the toolkit
// independent part: it turns pointer events into hit tests, selection and
// layout updates on a scene. The fyne front end is only built with the fyne
// build tag.
package ui

import (
	"errors"
	"fmt"
	"log/slog"

	"diagramroute/internal/document"
	applog "diagramroute/internal/log"
	"diagramroute/internal/move"
	"diagramroute/internal/scene"
	"diagramroute/internal/vector"
)

// ErrNoPath is returned by Save when the session has no document path.
var ErrNoPath = errors.New("session has no document path")

// Session routes pointer events of one view into a scene. Screen positions
// are view pixels; the view maps them to diagram coordinates with its own
// pan and zoom, which Session receives through ToModel.
type Session struct {
	Scene *scene.Scene
	Path  string
	// ToModel maps a screen position to diagram coordinates.
	ToModel func(vector.Pt) vector.Pt

	listener *move.Listener
	dirty    bool
	log      *slog.Logger
}

func NewSession(s *scene.Scene, path string) *Session {
	return &Session{
		Scene:    s,
		Path:     path,
		ToModel:  func(p vector.Pt) vector.Pt { return vector.Scale(p, 1/zoomOf(s)) },
		listener: move.NewListener(s),
		log:      applog.WithComponent("ui"),
	}
}

func zoomOf(s *scene.Scene) float64 {
	if z := s.Zoom(); z > 0 {
		return z
	}
	return 1
}

// Dirty reports whether the scene changed since the last save.
func (s *Session) Dirty() bool { return s.dirty }

// Dragging reports whether a gesture is in progress.
func (s *Session) Dragging() bool { return s.listener.Active() }

// Press hit tests the screen position, updates the selection and starts a
// gesture for the primary button. Pressing an unselected element selects
// it alone; pressing empty space clears the selection.
func (s *Session) Press(button int, screen vector.Pt) {
	t, ok := s.Scene.HitTest(s.ToModel(screen))
	switch {
	case !ok:
		s.Scene.Select()
	case t.Relation:
		s.Scene.Select(t.ID)
	case !s.Scene.IsSelected(t.ID):
		s.Scene.Select(t.ID)
	}
	s.listener.MouseDown(button, t, screen)
}

// Move applies a preview frame.
func (s *Session) Move(screen vector.Pt, mods move.Modifiers) error {
	u, err := s.listener.MouseMove(screen, mods)
	return s.apply(u, err)
}

// Release commits the gesture.
func (s *Session) Release(screen vector.Pt, mods move.Modifiers) error {
	u, err := s.listener.MouseUp(screen, mods)
	return s.apply(u, err)
}

// Enter handles the pointer re-entering the view; buttons is the pressed
// button mask at that moment.
func (s *Session) Enter(buttons int, screen vector.Pt, mods move.Modifiers) error {
	u, err := s.listener.MouseEnter(buttons, screen, mods)
	return s.apply(u, err)
}

func (s *Session) apply(u *move.LayoutUpdate, err error) error {
	if err != nil {
		if aerr := s.Scene.Abort(); aerr != nil {
			return errors.Join(err, aerr)
		}
		return err
	}
	if u == nil {
		return nil
	}
	if err := s.Scene.Apply(*u); err != nil {
		return err
	}
	if u.Committed {
		s.dirty = true
	}
	return nil
}

// Undo reverts the last committed gesture.
func (s *Session) Undo() (bool, error) {
	ok, err := s.Scene.Undo()
	if ok {
		s.dirty = true
	}
	return ok, err
}

// Redo reapplies the last undone gesture.
func (s *Session) Redo() (bool, error) {
	ok, err := s.Scene.Redo()
	if ok {
		s.dirty = true
	}
	return ok, err
}

// Save writes the scene back to its document.
func (s *Session) Save() error {
	if s.Path == "" {
		return ErrNoPath
	}
	if err := document.Save(s.Path, s.Scene); err != nil {
		return fmt.Errorf("save %s: %w", s.Path, err)
	}
	s.dirty = false
	s.log.Info("saved", slog.String("path", s.Path))
	return nil
}
