/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"bytes"
	"errors"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"diagramroute/internal/marker"
	"diagramroute/internal/relation"
	"diagramroute/internal/scene"
	"diagramroute/internal/vector"
)

// sampleScene has a 74x44 component around the origin, an interface at
// (150,0) and a relation between them running along y=0 from x=36 to x=131.
func sampleScene(t *testing.T, mk marker.Kind) *scene.Scene {
	t.Helper()
	s := scene.New("orders")
	if err := s.AddComponent(scene.Component{ID: "a", Label: "Service"}); err != nil {
		t.Fatalf("component: %v", err)
	}
	if err := s.AddInterface(scene.Interface{ID: "i", Parent: "a", Offset: vector.P(150, 0)}); err != nil {
		t.Fatalf("interface: %v", err)
	}
	r := relation.Relation{ID: "r", Start: "a", End: relation.ElementEnd("i"), Style: relation.Style{Marker: mk}}
	if err := s.AddRelation(r); err != nil {
		t.Fatalf("relation: %v", err)
	}
	return s
}

func TestCollectBounds(t *testing.T) {
	d, err := Collect(sampleScene(t, marker.None), Options{})
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if want := vector.R(-57, -42, 247, 84); d.Bounds != want {
		t.Fatalf("bounds: got %+v want %+v", d.Bounds, want)
	}
	if len(d.Items) != 2 || len(d.Wires) != 1 {
		t.Fatalf("got %d items %d wires", len(d.Items), len(d.Wires))
	}
	if d.Items[0].Label != "Service" || d.Items[0].LabelAt != vector.P(0, 0) {
		t.Fatalf("label: %+v", d.Items[0])
	}
	if w := d.Wires[0]; w.View.Path != "M 36 0 H 131" || len(w.Marker) != 0 {
		t.Fatalf("wire: %q marker %v", w.View.Path, w.Marker)
	}
}

func TestWriteSVG(t *testing.T) {
	d, err := Collect(sampleScene(t, marker.FilledTriangle), Options{})
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	var buf bytes.Buffer
	if err := WriteSVG(&buf, d, Options{DPI: 192}); err != nil {
		t.Fatalf("svg: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		`width="494px" height="168px" viewBox="-57 -42 247 84"`,
		`<title>orders</title>`,
		`>Service</text>`,
		`<g id="r">`,
		`transform="` + d.Wires[0].View.MarkerTransform + `"`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("svg missing %q:\n%s", want, out)
		}
	}
	if !strings.HasSuffix(out, "</svg>\n") {
		t.Fatalf("svg not terminated")
	}
}

func TestRasterPixels(t *testing.T) {
	d, err := Collect(sampleScene(t, marker.None), Options{})
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	img := Raster(d, Options{}, nil)
	if b := img.Bounds(); b.Dx() != 247 || b.Dy() != 84 {
		t.Fatalf("size: got %v", b)
	}
	dark := func(x, y int) bool {
		c := img.RGBAAt(x, y)
		return c.R < 64 && c.G < 64 && c.B < 64
	}
	// model (x,y) maps to pixel (x+57, y+42)
	if !dark(-36+57, 0+42) {
		t.Fatalf("component stroke not drawn: %v", img.RGBAAt(21, 42))
	}
	if !dark(80+57, 0+42) {
		t.Fatalf("relation not drawn: %v", img.RGBAAt(137, 42))
	}
	if dark(20+57, -15+42) || dark(0, 0) {
		t.Fatalf("fill or background not white")
	}
	var buf bytes.Buffer
	if err := WritePNG(&buf, d, Options{}, nil); err != nil {
		t.Fatalf("png: %v", err)
	}
	if _, err := png.Decode(&buf); err != nil {
		t.Fatalf("decode png: %v", err)
	}
}

func TestWritePDF(t *testing.T) {
	d, err := Collect(sampleScene(t, marker.Diamond), Options{})
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	var buf bytes.Buffer
	if err := WritePDF(&buf, d, Options{}); err != nil {
		t.Fatalf("pdf: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Fatalf("not a pdf: %q", buf.Bytes()[:min(16, buf.Len())])
	}
}

func TestMarkerPolygon(t *testing.T) {
	pts := markerPolygon("M 0 -5 L 10 0 L 0 5", vector.P(100, 0), 180)
	want := []vector.Pt{vector.P(100, 5), vector.P(90, 0), vector.P(100, -5)}
	if len(pts) != len(want) {
		t.Fatalf("got %v", pts)
	}
	for i := range want {
		if vector.Distance(pts[i], want[i]) > 1e-9 {
			t.Fatalf("point %d: got %v want %v", i, pts[i], want[i])
		}
	}
	circle := markerPolygon("M 0 0 A 5 5 0 0 1 10 0 A 5 5 0 0 1 0 0 Z", vector.P(0, 0), 0)
	if len(circle) != 17 {
		t.Fatalf("circle samples: got %d", len(circle))
	}
	for _, p := range circle {
		if r := vector.Distance(p, vector.P(5, 0)); math.Abs(r-5) > 1e-9 {
			t.Fatalf("point %v off the circle (r=%v)", p, r)
		}
	}
}

func TestFormatOfAndFile(t *testing.T) {
	if f, err := FormatOf("out/Diagram.SVG"); err != nil || f != SVG {
		t.Fatalf("FormatOf: %v %v", f, err)
	}
	if _, err := FormatOf("diagram.txt"); !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("expected ErrUnknownFormat, got %v", err)
	}
	s := sampleScene(t, marker.Arrow)
	dir := filepath.Join(t.TempDir(), "exports")
	for _, name := range []string{"d.svg", "d.png", "d.pdf"} {
		path := filepath.Join(dir, name)
		if err := File(s, path, Options{}, nil); err != nil {
			t.Fatalf("export %s: %v", name, err)
		}
		st, err := os.Stat(path)
		if err != nil {
			t.Fatalf("stat: %v", err)
		}
		if st.Size() <= 0 {
			t.Fatalf("%s empty", name)
		}
	}
}
