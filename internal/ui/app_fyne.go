//go:build fyne && cgo

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package ui

import (
	"image/color"
	"log/slog"
	"path/filepath"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"diagramroute/internal/crash"
	"diagramroute/internal/document"
	"diagramroute/internal/export"
	applog "diagramroute/internal/log"
	"diagramroute/internal/move"
	"diagramroute/internal/scene"
	"diagramroute/internal/vector"
	"diagramroute/internal/version"
)

// Run shows s in a window and blocks until it is closed. Saves go to path.
func Run(path string, s *scene.Scene) error {
	l := applog.WithComponent("ui")
	sess := NewSession(s, path)
	defer crash.Recover(&crash.Session{
		ReportDir: filepath.Dir(path),
		Diagram:   path,
		Autosave: func() (string, error) {
			p := path + ".recovered" + filepath.Ext(path)
			return p, document.Save(p, s)
		},
	})
	l.Info("starting UI", slog.String("path", path))

	a := app.NewWithID("io.diagramroute.viewer")
	w := a.NewWindow("DiagramRoute " + version.String() + " - " + s.Name())
	dc := NewDiagramCanvas(sess)
	status := widget.NewLabel("")
	dc.OnChange = func() {
		mark := ""
		if sess.Dirty() {
			mark = " *"
		}
		status.SetText(s.Name() + mark)
	}
	dc.OnError = func(err error) {
		l.Error("gesture failed", slog.Any("err", err))
		dialog.ShowError(err, w)
	}
	dc.OnChange()

	shortcut := func(k fyne.KeyName, fn func()) {
		w.Canvas().AddShortcut(&desktop.CustomShortcut{KeyName: k, Modifier: fyne.KeyModifierShortcutDefault}, func(fyne.Shortcut) { fn() })
	}
	shortcut(fyne.KeyZ, func() { dc.run(sess.Undo) })
	shortcut(fyne.KeyY, func() { dc.run(sess.Redo) })
	shortcut(fyne.KeyS, func() {
		if err := sess.Save(); err != nil {
			dc.OnError(err)
		}
		dc.OnChange()
	})

	w.SetContent(container.NewBorder(nil, status, nil, nil, dc))
	w.Resize(fyne.NewSize(1000, 700))
	w.ShowAndRun()
	return nil
}

// DiagramCanvas draws a scene and forwards pointer gestures to a Session.
// The wheel zooms, dragging empty space pans.
type DiagramCanvas struct {
	widget.BaseWidget
	sess *Session

	offset  vector.Pt
	placed  bool
	panning bool
	mods    move.Modifiers

	OnChange func()
	OnError  func(error)
}

func NewDiagramCanvas(sess *Session) *DiagramCanvas {
	dc := &DiagramCanvas{sess: sess}
	sess.ToModel = dc.toModel
	dc.ExtendBaseWidget(dc)
	return dc
}

func (d *DiagramCanvas) zoom() float64 { return zoomOf(d.sess.Scene) }

func (d *DiagramCanvas) toModel(p vector.Pt) vector.Pt {
	return vector.Scale(vector.Sub(p, d.offset), 1/d.zoom())
}

func (d *DiagramCanvas) toScreen(p vector.Pt) fyne.Position {
	q := vector.Add(vector.Scale(p, d.zoom()), d.offset)
	return fyne.NewPos(float32(q.X), float32(q.Y))
}

func screenPt(p fyne.Position) vector.Pt { return vector.P(float64(p.X), float64(p.Y)) }

func (d *DiagramCanvas) run(fn func() (bool, error)) {
	if _, err := fn(); err != nil && d.OnError != nil {
		d.OnError(err)
	}
	d.changed()
}

func (d *DiagramCanvas) changed() {
	d.Refresh()
	if d.OnChange != nil {
		d.OnChange()
	}
}

func (d *DiagramCanvas) report(err error) {
	if err != nil && d.OnError != nil {
		d.OnError(err)
	}
	d.changed()
}

func (d *DiagramCanvas) MouseDown(e *desktop.MouseEvent) {
	d.mods = move.Modifiers{Shift: e.Modifier&fyne.KeyModifierShift != 0}
	button := 1
	if e.Button == desktop.MouseButtonPrimary {
		button = 0
	}
	d.sess.Press(button, screenPt(e.Position))
	d.panning = button == 0 && !d.sess.Dragging()
	d.changed()
}

func (d *DiagramCanvas) MouseUp(e *desktop.MouseEvent) {
	d.panning = false
	d.report(d.sess.Release(screenPt(e.Position), d.mods))
}

func (d *DiagramCanvas) Dragged(e *fyne.DragEvent) {
	if d.panning {
		d.offset = vector.Add(d.offset, vector.P(float64(e.Dragged.DX), float64(e.Dragged.DY)))
		d.Refresh()
		return
	}
	d.report(d.sess.Move(screenPt(e.Position), d.mods))
}

func (d *DiagramCanvas) DragEnd() {}

func (d *DiagramCanvas) MouseIn(e *desktop.MouseEvent) {
	if d.sess.Dragging() {
		d.report(d.sess.Enter(int(e.Button), screenPt(e.Position), d.mods))
	}
}

func (d *DiagramCanvas) MouseMoved(*desktop.MouseEvent) {}
func (d *DiagramCanvas) MouseOut()                      {}

// Scrolled zooms around the pointer.
func (d *DiagramCanvas) Scrolled(e *fyne.ScrollEvent) {
	before := d.toModel(screenPt(e.Position))
	z := min(max(d.zoom()*(1+float64(e.Scrolled.DY)*0.002), 0.1), 8)
	d.sess.Scene.SetZoom(z)
	after := d.toScreen(before)
	d.offset = vector.Add(d.offset, vector.Sub(screenPt(e.Position), screenPt(after)))
	d.Refresh()
}

func (d *DiagramCanvas) MinSize() fyne.Size { return fyne.NewSize(400, 300) }

func (d *DiagramCanvas) CreateRenderer() fyne.WidgetRenderer {
	r := &diagramRenderer{dc: d, bg: canvas.NewRectangle(color.RGBA{R: 245, G: 245, B: 247, A: 255})}
	r.rebuild()
	return r
}

type diagramRenderer struct {
	dc      *DiagramCanvas
	bg      *canvas.Rectangle
	objects []fyne.CanvasObject
}

func (r *diagramRenderer) Destroy()                     {}
func (r *diagramRenderer) Objects() []fyne.CanvasObject { return r.objects }
func (r *diagramRenderer) MinSize() fyne.Size           { return r.dc.MinSize() }
func (r *diagramRenderer) Refresh()                     { r.rebuild(); r.Layout(r.dc.Size()); canvas.Refresh(r.dc) }

func (r *diagramRenderer) Layout(size fyne.Size) {
	r.bg.Resize(size)
	r.bg.Move(fyne.NewPos(0, 0))
	if !r.dc.placed && size.Width > 0 {
		d, err := export.Collect(r.dc.sess.Scene, export.Options{})
		if err == nil {
			c := vector.Scale(d.Bounds.Center(), r.dc.zoom())
			r.dc.offset = vector.Sub(vector.P(float64(size.Width)/2, float64(size.Height)/2), c)
			r.dc.placed = true
			r.rebuild()
		}
	}
}

// rebuild recreates the drawable objects from the scene.
func (r *diagramRenderer) rebuild() {
	objs := []fyne.CanvasObject{r.bg}
	d, err := export.Collect(r.dc.sess.Scene, export.Options{})
	if err != nil {
		applog.WithComponent("ui").Warn("collect failed", slog.Any("err", err))
		r.objects = objs
		return
	}
	z := float32(r.dc.zoom())
	poly := func(pts []vector.Pt, closed bool, c color.Color, width float64) {
		n := len(pts)
		if !closed {
			n--
		}
		for i := 0; i < n; i++ {
			ln := canvas.NewLine(c)
			ln.StrokeWidth = float32(width) * z
			ln.Position1 = r.dc.toScreen(pts[i])
			ln.Position2 = r.dc.toScreen(pts[(i+1)%len(pts)])
			objs = append(objs, ln)
		}
	}
	sel := color.RGBA{R: 0, G: 120, B: 215, A: 255}
	for _, it := range d.Items {
		c := color.Color(it.Stroke)
		if r.dc.sess.Scene.IsSelected(it.ID) {
			c = sel
		}
		poly(it.Polygon, true, c, it.StrokeWidth)
		if it.Label != "" {
			t := canvas.NewText(it.Label, color.Black)
			t.TextSize = float32(scene.LabelFontSize) * z
			t.Alignment = fyne.TextAlignCenter
			ms := t.MinSize()
			p := r.dc.toScreen(it.LabelAt)
			t.Resize(ms)
			t.Move(fyne.NewPos(p.X-ms.Width/2, p.Y-ms.Height/2))
			objs = append(objs, t)
		}
	}
	for _, w := range d.Wires {
		c := color.Color(w.View.Stroke)
		if r.dc.sess.Scene.IsSelected(w.ID) {
			c = sel
		}
		poly(w.View.Points, false, c, w.View.StrokeWidth)
		if len(w.Marker) > 0 {
			poly(w.Marker, true, c, w.View.StrokeWidth)
		}
	}
	r.objects = objs
}
