/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package document reads and writes diagram files. Files are JSON or YAML and
// are validated against an embedded JSON schema before they become a scene.
package document

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"

	gojsonschema "github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	"diagramroute/internal/line"
	"diagramroute/internal/marker"
	"diagramroute/internal/relation"
	"diagramroute/internal/scene"
	"diagramroute/internal/shape"
	"diagramroute/internal/vector"
)

// Version is the file format version written by Save.
const Version = 1

//go:embed schema.json
var schemaJSON []byte

var ErrInvalid = errors.New("diagram does not match schema")

type Format int

const (
	JSON Format = iota
	YAML
)

// FormatOf picks the format from a file extension.
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return YAML
	}
	return JSON
}

type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

func pointOf(p vector.Pt) Point { return Point{X: p.X, Y: p.Y} }
func (p Point) pt() vector.Pt   { return vector.P(p.X, p.Y) }

// End is either an element id or a free point.
type End struct {
	ID    string
	Point Point
}

func (e End) MarshalJSON() ([]byte, error) {
	if e.ID != "" {
		return json.Marshal(e.ID)
	}
	return json.Marshal(e.Point)
}

func (e *End) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		return json.Unmarshal(b, &e.ID)
	}
	return json.Unmarshal(b, &e.Point)
}

func (e End) MarshalYAML() (any, error) {
	if e.ID != "" {
		return e.ID, nil
	}
	return e.Point, nil
}

type Stroke struct {
	Width float64   `json:"width,omitempty" yaml:"width,omitempty"`
	Color string    `json:"color,omitempty" yaml:"color,omitempty"`
	Dash  []float64 `json:"dash,omitempty" yaml:"dash,omitempty"`
}

type ShapeStyle struct {
	Shape  shape.Kind `json:"shape,omitempty" yaml:"shape,omitempty"`
	Stroke *Stroke    `json:"stroke,omitempty" yaml:"stroke,omitempty"`
	Fill   string     `json:"fill,omitempty" yaml:"fill,omitempty"`
}

type RelationStyle struct {
	Stroke *Stroke     `json:"stroke,omitempty" yaml:"stroke,omitempty"`
	Marker marker.Kind `json:"marker,omitempty" yaml:"marker,omitempty"`
}

type Component struct {
	ID    string      `json:"id" yaml:"id"`
	Pos   Point       `json:"pos" yaml:"pos"`
	Label string      `json:"label,omitempty" yaml:"label,omitempty"`
	Style *ShapeStyle `json:"style,omitempty" yaml:"style,omitempty"`
}

type Interface struct {
	ID     string      `json:"id" yaml:"id"`
	Parent string      `json:"parent" yaml:"parent"`
	Offset Point       `json:"offset" yaml:"offset"`
	Label  string      `json:"label,omitempty" yaml:"label,omitempty"`
	Style  *ShapeStyle `json:"style,omitempty" yaml:"style,omitempty"`
}

type Relation struct {
	ID       string               `json:"id" yaml:"id"`
	Start    string               `json:"start" yaml:"start"`
	End      End                  `json:"end" yaml:"end"`
	Points   []Point              `json:"points,omitempty" yaml:"points,omitempty"`
	Segments []line.SegmentLayout `json:"segments,omitempty" yaml:"segments,omitempty"`
	Style    *RelationStyle       `json:"style,omitempty" yaml:"style,omitempty"`
}

// File is the on-disk shape of a diagram.
type File struct {
	Version    int         `json:"version" yaml:"version"`
	Zoom       float64     `json:"zoom,omitempty" yaml:"zoom,omitempty"`
	Components []Component `json:"components" yaml:"components"`
	Interfaces []Interface `json:"interfaces,omitempty" yaml:"interfaces,omitempty"`
	Relations  []Relation  `json:"relations,omitempty" yaml:"relations,omitempty"`
}

// Validate checks JSON encoded data against the diagram schema.
func Validate(data []byte) error {
	res, err := gojsonschema.Validate(gojsonschema.NewBytesLoader(schemaJSON), gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("validate: %w", err)
	}
	if res.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(res.Errors()))
	for _, e := range res.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(msgs, "; "))
}

// Decode validates data in the given format and decodes it.
func Decode(data []byte, f Format) (File, error) {
	if f == YAML {
		var v any
		if err := yaml.Unmarshal(data, &v); err != nil {
			return File{}, fmt.Errorf("parse yaml: %w", err)
		}
		b, err := json.Marshal(v)
		if err != nil {
			return File{}, fmt.Errorf("convert yaml: %w", err)
		}
		data = b
	}
	if err := Validate(data); err != nil {
		return File{}, err
	}
	var file File
	if err := json.Unmarshal(data, &file); err != nil {
		return File{}, fmt.Errorf("parse json: %w", err)
	}
	return file, nil
}

// Parse decodes a diagram and builds its scene.
func Parse(name string, data []byte, f Format, opts ...scene.Option) (*scene.Scene, error) {
	file, err := Decode(data, f)
	if err != nil {
		return nil, err
	}
	return file.Scene(name, opts...)
}

// ReadFile reads and validates a diagram file. The returned name is the file
// name without its extension.
func ReadFile(path string) (File, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, "", fmt.Errorf("read diagram: %w", err)
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	f, err := Decode(data, FormatOf(path))
	if err != nil {
		return File{}, "", fmt.Errorf("%s: %w", path, err)
	}
	return f, name, nil
}

// Load reads a diagram file. The scene is named after the file without its
// extension.
func Load(path string, opts ...scene.Option) (*scene.Scene, error) {
	f, name, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	s, err := f.Scene(name, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// DefaultLayout sets the layout of the first leg of every relation that
// declares no segments.
func (f *File) DefaultLayout(l line.SegmentLayout) {
	for i := range f.Relations {
		if len(f.Relations[i].Segments) == 0 {
			f.Relations[i].Segments = []line.SegmentLayout{l}
		}
	}
}

func (f File) Scene(name string, opts ...scene.Option) (*scene.Scene, error) {
	s := scene.New(name, opts...)
	if f.Zoom > 0 {
		s.SetZoom(f.Zoom)
	}
	for _, c := range f.Components {
		st, err := shapeStyle(c.Style)
		if err != nil {
			return nil, fmt.Errorf("component %s: %w", c.ID, err)
		}
		if err := s.AddComponent(scene.Component{ID: c.ID, Pos: c.Pos.pt(), Label: c.Label, Style: st}); err != nil {
			return nil, err
		}
	}
	for _, i := range f.Interfaces {
		st, err := shapeStyle(i.Style)
		if err != nil {
			return nil, fmt.Errorf("interface %s: %w", i.ID, err)
		}
		if err := s.AddInterface(scene.Interface{ID: i.ID, Parent: i.Parent, Offset: i.Offset.pt(), Label: i.Label, Style: st}); err != nil {
			return nil, err
		}
	}
	for _, r := range f.Relations {
		rel := relation.Relation{ID: r.ID, Start: r.Start, Layouts: r.Segments}
		if r.End.ID != "" {
			rel.End = relation.ElementEnd(r.End.ID)
		} else {
			rel.End = relation.PointEnd(r.End.Point.pt())
		}
		for _, p := range r.Points {
			rel.Points = append(rel.Points, p.pt())
		}
		if r.Style != nil {
			stroke, err := strokeStyle(r.Style.Stroke)
			if err != nil {
				return nil, fmt.Errorf("relation %s: %w", r.ID, err)
			}
			rel.Style = relation.Style{Stroke: stroke, Marker: r.Style.Marker}
		}
		if err := s.AddRelation(rel); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func strokeOf(st shape.StrokeStyle) *Stroke {
	if st.Width == 0 && st.Color.IsZero() && len(st.Dash) == 0 {
		return nil
	}
	s := &Stroke{Width: st.Width, Dash: st.Dash}
	if !st.Color.IsZero() {
		s.Color = st.Color.Hex()
	}
	return s
}

func shapeStyleOf(st shape.Style) *ShapeStyle {
	out := &ShapeStyle{Shape: st.Shape, Stroke: strokeOf(st.Stroke)}
	if !st.Fill.IsZero() {
		out.Fill = st.Fill.Hex()
	}
	return out
}

// FromScene captures the current layout of s.
func FromScene(s *scene.Scene) File {
	f := File{Version: Version, Zoom: s.Zoom(), Components: []Component{}}
	for _, c := range s.Components() {
		f.Components = append(f.Components, Component{ID: c.ID, Pos: pointOf(c.Pos), Label: c.Label, Style: shapeStyleOf(c.Style)})
	}
	for _, i := range s.Interfaces() {
		f.Interfaces = append(f.Interfaces, Interface{ID: i.ID, Parent: i.Parent, Offset: pointOf(i.Offset), Label: i.Label, Style: shapeStyleOf(i.Style)})
	}
	for _, r := range s.RelationDefs() {
		out := Relation{ID: r.ID, Start: r.Start, End: End{ID: r.End.ID}, Segments: r.Layouts}
		if !r.End.IsElement() {
			out.End.Point = pointOf(r.End.Point)
		}
		for _, p := range r.Points {
			out.Points = append(out.Points, pointOf(p))
		}
		if stroke := strokeOf(r.Style.Stroke); stroke != nil || r.Style.Marker != marker.None {
			out.Style = &RelationStyle{Stroke: stroke, Marker: r.Style.Marker}
		}
		f.Relations = append(f.Relations, out)
	}
	return f
}

// Encode renders f in the given format.
func Encode(f File, format Format) ([]byte, error) {
	if format == YAML {
		b, err := yaml.Marshal(f)
		if err != nil {
			return nil, fmt.Errorf("marshal yaml: %w", err)
		}
		return b, nil
	}
	b, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal json: %w", err)
	}
	return append(b, '\n'), nil
}

// Save writes the layout of s to path, replacing the file atomically.
func Save(path string, s *scene.Scene) error {
	data, err := Encode(FromScene(s), FormatOf(path))
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	temp := filepath.Join(dir, fmt.Sprintf(".%s.tmp-%d-%d", filepath.Base(path), os.Getpid(), rand.Int()))
	if err := writeFileSync(temp, data); err != nil {
		return fmt.Errorf("write temp diagram: %w", err)
	}
	if err := os.Rename(temp, path); err != nil {
		_ = os.Remove(temp)
		return fmt.Errorf("replace diagram: %w", err)
	}
	return nil
}

func writeFileSync(path string, data []byte) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := f.Write(data); err != nil {
		return err
	}
	return f.Sync()
}
