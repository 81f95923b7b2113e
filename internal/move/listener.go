/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package move

import (
	"errors"
	"log/slog"

	"diagramroute/internal/grid"
	applog "diagramroute/internal/log"
	"diagramroute/internal/relation"
	"diagramroute/internal/vector"
)

var ErrNoOrigin = errors.New("cannot calculate translation without a start position")

type ElementKind int

const (
	KindComponent ElementKind = iota
	KindInterface
	KindRelation
)

// Element is a selected diagram element. Pos is its layout position: absolute
// for components, relative to the parent for interfaces.
type Element struct {
	ID     string
	Kind   ElementKind
	Parent string
	Pos    vector.Pt
}

// RelationRef describes a relation without its geometry. End is empty for a
// free end point.
type RelationRef struct {
	ID     string
	Start  string
	End    string
	Points []vector.Pt
}

// Model is the read-only view of the scene a Listener works against.
type Model interface {
	Revision() int64
	Zoom() float64
	Selection() []Element
	Children(component string) []string
	Relations() []RelationRef
	RelationPath(id string) (*relation.Path, error)
	relation.Resolver
}

// Target is what the pointer went down on. Segment is the run index for a
// relation handle, -1 otherwise.
type Target struct {
	ID       string
	Relation bool
	Segment  int
	Movable  bool
}

// Listener turns one pointer gesture at a time into layout updates.
type Listener struct {
	model    Model
	log      *slog.Logger
	origin   *vector.Pt
	target   Target
	handler  Handler
	revision int64
}

func NewListener(m Model) *Listener {
	return &Listener{model: m, log: applog.WithComponent("move"), revision: -1}
}

// Active reports whether a gesture is in progress.
func (l *Listener) Active() bool { return l.origin != nil }

// MouseDown starts a gesture for the primary button on a movable target.
// Anything else ends the current one without emitting.
func (l *Listener) MouseDown(button int, t Target, page vector.Pt) {
	l.reset()
	if button != 0 || !t.Movable {
		return
	}
	p := page
	l.origin = &p
	l.target = t
}

// MouseMove returns a preview update, or nil when idle, when no handler
// applies or when the previous frame has not been applied yet.
func (l *Listener) MouseMove(page vector.Pt, mods Modifiers) (*LayoutUpdate, error) {
	if l.origin == nil {
		return nil, nil
	}
	if l.handler == nil {
		l.handler = l.createHandler()
		if l.handler == nil {
			return nil, nil
		}
	}
	rev := l.model.Revision()
	if rev == l.revision {
		return nil, nil
	}
	d, err := l.Translation(page)
	if err != nil {
		return nil, err
	}
	u, err := l.handler.GenerateAction(d.X, d.Y, false, mods)
	if err != nil {
		return nil, err
	}
	l.revision = rev
	l.log.Debug("frame", slog.String("target", l.target.ID), slog.Float64("dx", d.X), slog.Float64("dy", d.Y))
	return &u, nil
}

// MouseUp ends the gesture with a committed update.
func (l *Listener) MouseUp(page vector.Pt, mods Modifiers) (*LayoutUpdate, error) {
	return l.commit(page, mods)
}

// MouseEnter commits when the button was released outside the view.
func (l *Listener) MouseEnter(buttons int, page vector.Pt, mods Modifiers) (*LayoutUpdate, error) {
	if buttons != 0 {
		return nil, nil
	}
	return l.commit(page, mods)
}

func (l *Listener) commit(page vector.Pt, mods Modifiers) (*LayoutUpdate, error) {
	if l.origin == nil {
		return nil, nil
	}
	defer l.reset()
	if l.handler == nil {
		return nil, nil
	}
	d, err := l.Translation(page)
	if err != nil {
		return nil, err
	}
	u, err := l.handler.GenerateAction(d.X, d.Y, true, mods)
	if err != nil {
		return nil, err
	}
	l.log.Info("commit", slog.String("target", l.target.ID), slog.Float64("dx", d.X), slog.Float64("dy", d.Y), slog.Int("elements", len(u.PartialLayout)))
	return &u, nil
}

// Translation is the grid snapped diagram offset between the origin and page.
func (l *Listener) Translation(page vector.Pt) (vector.Pt, error) {
	if l.origin == nil {
		return vector.Pt{}, ErrNoOrigin
	}
	zoom := l.model.Zoom()
	if zoom <= 0 {
		zoom = 1
	}
	d := vector.Scale(vector.Sub(page, *l.origin), 1/zoom)
	return grid.RoundPoint(d), nil
}

func (l *Listener) reset() {
	l.origin = nil
	l.target = Target{}
	l.handler = nil
	l.revision = -1
}

func (l *Listener) createHandler() Handler {
	if l.target.Relation {
		return l.relationHandler()
	}
	return l.elementHandler()
}

func (l *Listener) relationHandler() Handler {
	id := l.target.ID
	if l.target.Segment < 0 {
		return nil
	}
	var ref *RelationRef
	for _, r := range l.model.Relations() {
		if r.ID == id {
			ref = &r
			break
		}
	}
	if ref == nil || ref.End == "" {
		return nil
	}
	path, err := l.model.RelationPath(id)
	if err != nil || path == nil {
		l.log.Debug("no path for relation drag", slog.String("relation", id), slog.Any("err", err))
		return nil
	}
	startLine, _, ok := l.model.Outline(ref.Start)
	if !ok {
		return nil
	}
	endLine, _, ok := l.model.Outline(ref.End)
	if !ok {
		return nil
	}
	h, err := NewRelationHandler(id, *path, l.target.Segment, startLine, endLine)
	if err != nil {
		l.log.Debug("relation drag rejected", slog.Any("err", err))
		return nil
	}
	return h
}

func (l *Listener) elementHandler() Handler {
	selected := map[string]bool{}
	var candidates []Element
	for _, e := range l.model.Selection() {
		switch e.Kind {
		case KindComponent:
			selected[e.ID] = true
			candidates = append(candidates, e)
		case KindInterface:
			candidates = append(candidates, e)
		}
	}
	positions := map[string]vector.Pt{}
	allMoved := map[string]bool{}
	for _, e := range candidates {
		if e.Kind == KindInterface && selected[e.Parent] {
			continue
		}
		positions[e.ID] = e.Pos
		allMoved[e.ID] = true
		if e.Kind == KindComponent {
			for _, c := range l.model.Children(e.ID) {
				allMoved[c] = true
			}
		}
	}
	if len(positions) == 0 {
		return nil
	}

	fully := map[string][]vector.Pt{}
	startMoved := map[string]AttachedRelation{}
	endMoved := map[string]AttachedRelation{}
	for _, r := range l.model.Relations() {
		startIn := allMoved[r.Start]
		endIn := r.End != "" && allMoved[r.End]
		switch {
		case startIn && endIn:
			fully[r.ID] = append([]vector.Pt(nil), r.Points...)
		case startIn:
			if a, ok := l.attached(r.ID, r.Start); ok {
				startMoved[r.ID] = a
			}
		case endIn:
			if a, ok := l.attached(r.ID, r.End); ok {
				endMoved[r.ID] = a
			}
		}
	}
	l.log.Debug("element drag", slog.Int("elements", len(positions)), slog.Int("fully", len(fully)),
		slog.Int("start", len(startMoved)), slog.Int("end", len(endMoved)))
	return NewElementHandler(positions, fully, startMoved, endMoved)
}

func (l *Listener) attached(relationID, elementID string) (AttachedRelation, bool) {
	path, err := l.model.RelationPath(relationID)
	if err != nil || path == nil || len(path.Segments) == 0 {
		return AttachedRelation{}, false
	}
	outline, _, ok := l.model.Outline(elementID)
	if !ok {
		return AttachedRelation{}, false
	}
	return AttachedRelation{Outline: outline, Path: *path}, true
}
