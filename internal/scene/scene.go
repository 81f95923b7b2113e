/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package scene holds the elements of one diagram, resolves their shapes and
// relation paths on demand and applies layout updates produced by drags.
package scene

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"diagramroute/internal/grid"
	applog "diagramroute/internal/log"
	"diagramroute/internal/move"
	"diagramroute/internal/relation"
	"diagramroute/internal/shape"
	"diagramroute/internal/textlayout"
	"diagramroute/internal/undo"
	"diagramroute/internal/vector"
)

const (
	// InterfaceSize is the edge of the square an interface shape is
	// inscribed in.
	InterfaceSize = 40.0
	// LabelFontSize is the label font size in points.
	LabelFontSize = 12.0
)

var (
	ErrDuplicateID   = errors.New("duplicate element id")
	ErrUnknownParent = errors.New("unknown parent component")
	ErrNotFound      = errors.New("element not found")
)

type Component struct {
	ID    string
	Pos   vector.Pt
	Label string
	Style shape.Style
}

// Interface is attached to a component; its position is Offset from the
// parent's position.
type Interface struct {
	ID     string
	Parent string
	Offset vector.Pt
	Label  string
	Style  shape.Style
}

// Commit is passed to the commit hook for every committed layout update.
type Commit struct {
	Diagram  string
	Revision int64
	Update   move.LayoutUpdate
	At       time.Time
}

type Option func(*Scene)

// WithHistory shares an undo history between scenes.
func WithHistory(h *undo.History) Option { return func(s *Scene) { s.history = h } }

// WithTextProvider sets the fonts labels are measured with.
func WithTextProvider(p textlayout.Provider) Option { return func(s *Scene) { s.text = p } }

// WithCommitHook registers fn to run after each committed update.
func WithCommitHook(fn func(Commit) error) Option { return func(s *Scene) { s.onCommit = fn } }

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option { return func(s *Scene) { s.now = now } }

// Scene is not safe for concurrent use; it is driven from one event loop.
type Scene struct {
	name     string
	zoom     float64
	revision int64

	components map[string]*Component
	interfaces map[string]*Interface
	relations  map[string]*relation.Relation
	order      []string
	selection  []string

	// versions holds the revision each element last changed at.
	versions map[string]int64
	shapes   map[string]shapeEntry
	paths    map[string]pathEntry

	history  *undo.History
	pending  []byte
	onCommit func(Commit) error
	text     textlayout.Provider
	now      func() time.Time
	log      *slog.Logger
}

func New(name string, opts ...Option) *Scene {
	s := &Scene{
		name:       name,
		zoom:       1,
		components: map[string]*Component{},
		interfaces: map[string]*Interface{},
		relations:  map[string]*relation.Relation{},
		versions:   map[string]int64{},
		shapes:     map[string]shapeEntry{},
		paths:      map[string]pathEntry{},
		now:        time.Now,
		log:        applog.WithComponent("scene"),
	}
	for _, o := range opts {
		o(s)
	}
	if s.history == nil {
		s.history = undo.NewHistory(undo.Config{MaxPerDiagram: 200})
	}
	if s.text == nil {
		s.text = textlayout.BasicProvider{}
	}
	return s
}

func (s *Scene) Name() string      { return s.name }
func (s *Scene) Revision() int64   { return s.revision }
func (s *Scene) Zoom() float64     { return s.zoom }
func (s *Scene) SetZoom(z float64) { s.zoom = z }

// touch bumps the revision and marks ids as changed at it.
func (s *Scene) touch(ids ...string) {
	s.revision++
	for _, id := range ids {
		s.versions[id] = s.revision
	}
}

func (s *Scene) exists(id string) bool {
	_, c := s.components[id]
	_, i := s.interfaces[id]
	_, r := s.relations[id]
	return c || i || r
}

func (s *Scene) add(id string) error {
	if id == "" {
		return fmt.Errorf("%w: empty", ErrDuplicateID)
	}
	if s.exists(id) {
		return fmt.Errorf("%w: %s", ErrDuplicateID, id)
	}
	s.order = append(s.order, id)
	s.touch(id)
	return nil
}

func defaultKind(st shape.Style, k shape.Kind) (shape.Style, error) {
	if st.Shape == "" {
		st.Shape = k
	}
	if !shape.Default.Known(st.Shape) {
		return st, fmt.Errorf("%w: %q", shape.ErrUnknownShape, string(st.Shape))
	}
	return st, nil
}

// AddComponent adds c; an empty shape kind means a rectangle.
func (s *Scene) AddComponent(c Component) error {
	st, err := defaultKind(c.Style, shape.Rect)
	if err != nil {
		return fmt.Errorf("component %s: %w", c.ID, err)
	}
	c.Style = st
	if err := s.add(c.ID); err != nil {
		return err
	}
	s.components[c.ID] = &c
	return nil
}

// AddInterface adds i to an existing component; an empty shape kind means a
// circle.
func (s *Scene) AddInterface(i Interface) error {
	if _, ok := s.components[i.Parent]; !ok {
		return fmt.Errorf("interface %s: %w: %q", i.ID, ErrUnknownParent, i.Parent)
	}
	st, err := defaultKind(i.Style, shape.Circle)
	if err != nil {
		return fmt.Errorf("interface %s: %w", i.ID, err)
	}
	i.Style = st
	if err := s.add(i.ID); err != nil {
		return err
	}
	s.interfaces[i.ID] = &i
	return nil
}

// AddRelation adds r. Its ends may reference elements that do not exist
// (yet); such a relation is not routed.
func (s *Scene) AddRelation(r relation.Relation) error {
	if err := s.add(r.ID); err != nil {
		return err
	}
	r.Points = slices.Clone(r.Points)
	r.Layouts = slices.Clone(r.Layouts)
	s.relations[r.ID] = &r
	return nil
}

// Remove deletes an element. Interfaces of a removed component go with it;
// relations stay and become unresolved.
func (s *Scene) Remove(id string) error {
	if !s.exists(id) {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	ids := []string{id}
	if _, ok := s.components[id]; ok {
		ids = append(ids, s.Children(id)...)
	}
	for _, x := range ids {
		delete(s.components, x)
		delete(s.interfaces, x)
		delete(s.relations, x)
		delete(s.shapes, x)
		delete(s.paths, x)
		s.order = slices.DeleteFunc(s.order, func(o string) bool { return o == x })
		s.selection = slices.DeleteFunc(s.selection, func(o string) bool { return o == x })
	}
	s.touch(ids...)
	return nil
}

func (s *Scene) Component(id string) (Component, bool) {
	c, ok := s.components[id]
	if !ok {
		return Component{}, false
	}
	return *c, true
}

func (s *Scene) Interface(id string) (Interface, bool) {
	i, ok := s.interfaces[id]
	if !ok {
		return Interface{}, false
	}
	return *i, true
}

func (s *Scene) Relation(id string) (relation.Relation, bool) {
	r, ok := s.relations[id]
	if !ok {
		return relation.Relation{}, false
	}
	return *r, true
}

// Components returns all components in insertion order.
func (s *Scene) Components() []Component {
	var out []Component
	for _, id := range s.order {
		if c, ok := s.components[id]; ok {
			out = append(out, *c)
		}
	}
	return out
}

func (s *Scene) Interfaces() []Interface {
	var out []Interface
	for _, id := range s.order {
		if i, ok := s.interfaces[id]; ok {
			out = append(out, *i)
		}
	}
	return out
}

// RelationDefs returns the routing input of all relations in insertion order.
func (s *Scene) RelationDefs() []relation.Relation {
	var out []relation.Relation
	for _, id := range s.order {
		if r, ok := s.relations[id]; ok {
			out = append(out, *r)
		}
	}
	return out
}

// InterfacePos is the absolute position of an interface.
func (s *Scene) InterfacePos(i Interface) vector.Pt {
	if p, ok := s.components[i.Parent]; ok {
		return vector.Add(p.Pos, i.Offset)
	}
	return i.Offset
}

// LabelBox is the grid aligned box a component label occupies, centered on
// the component position.
func (s *Scene) LabelBox(c Component) vector.Rect {
	w, h := textlayout.Measure(s.text, textlayout.FontSpec{SizePt: LabelFontSize}, c.Label)
	return vector.CenteredRect(c.Pos, grid.Ceil(w), grid.Ceil(h))
}

// Select replaces the selection. Unknown ids are ignored.
func (s *Scene) Select(ids ...string) {
	s.selection = s.selection[:0]
	for _, id := range ids {
		if s.exists(id) && !slices.Contains(s.selection, id) {
			s.selection = append(s.selection, id)
		}
	}
}

func (s *Scene) IsSelected(id string) bool { return slices.Contains(s.selection, id) }

// Selection describes the selected elements for a drag.
func (s *Scene) Selection() []move.Element {
	out := make([]move.Element, 0, len(s.selection))
	for _, id := range s.selection {
		switch {
		case s.components[id] != nil:
			out = append(out, move.Element{ID: id, Kind: move.KindComponent, Pos: s.components[id].Pos})
		case s.interfaces[id] != nil:
			i := s.interfaces[id]
			out = append(out, move.Element{ID: id, Kind: move.KindInterface, Parent: i.Parent, Pos: i.Offset})
		case s.relations[id] != nil:
			out = append(out, move.Element{ID: id, Kind: move.KindRelation})
		}
	}
	return out
}

// Children returns the interfaces attached to component.
func (s *Scene) Children(component string) []string {
	var out []string
	for _, id := range s.order {
		if i, ok := s.interfaces[id]; ok && i.Parent == component {
			out = append(out, id)
		}
	}
	return out
}

// Relations lists relation ends and waypoints.
func (s *Scene) Relations() []move.RelationRef {
	var out []move.RelationRef
	for _, r := range s.RelationDefs() {
		out = append(out, move.RelationRef{ID: r.ID, Start: r.Start, End: r.End.ID, Points: r.Points})
	}
	return out
}
