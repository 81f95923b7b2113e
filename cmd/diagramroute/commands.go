/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"diagramroute/internal/backend"
	"diagramroute/internal/config"
	"diagramroute/internal/document"
	"diagramroute/internal/export"
	applog "diagramroute/internal/log"
	"diagramroute/internal/move"
	"diagramroute/internal/scene"
	"diagramroute/internal/storage"
	"diagramroute/internal/textlayout"
	"diagramroute/internal/ui"
	"diagramroute/internal/vector"
)

var errNothingMoved = errors.New("nothing moved")

type app struct {
	cfg      config.AppConfig
	password string
	out      io.Writer
	log      *slog.Logger
	text     textlayout.Provider
}

// labels resolves the label font once per run.
func (a *app) labels() (textlayout.Provider, error) {
	if a.text == nil {
		p, err := textlayout.LabelProvider(a.cfg.Export.FontFile)
		if err != nil {
			return nil, err
		}
		a.text = p
	}
	return a.text, nil
}

// load reads a diagram and fills relations without segments with the
// configured default layout.
func (a *app) load(path string, opts ...scene.Option) (*scene.Scene, error) {
	p, err := a.labels()
	if err != nil {
		return nil, err
	}
	f, name, err := document.ReadFile(path)
	if err != nil {
		return nil, err
	}
	f.DefaultLayout(a.cfg.Editor.DefaultLayout)
	s, err := f.Scene(name, append([]scene.Option{scene.WithTextProvider(p)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

func (a *app) route(args []string) error {
	if len(args) != 1 {
		return usageError{"route requires <file>"}
	}
	s, err := a.load(args[0])
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, titleStyle.Render(s.Name()))
	for _, r := range s.RelationDefs() {
		body, err := describeRelation(s, r.ID)
		if err != nil {
			return err
		}
		fmt.Fprintln(a.out, boxStyle.Render(body))
	}
	return nil
}

func describeRelation(s *scene.Scene, id string) (string, error) {
	p, err := s.RelationPath(id)
	if err != nil {
		return "", fmt.Errorf("relation %s: %w", id, err)
	}
	if p == nil {
		return titleStyle.Render(id) + "\n" + dimStyle.Render("unresolved endpoint"), nil
	}
	v, _, err := s.RelationView(id)
	if err != nil {
		return "", fmt.Errorf("relation %s: %w", id, err)
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render(id) + "\n")
	fmt.Fprintf(&b, "start %s  end %s\n", formatPt(p.Start), formatPt(p.End))
	for i, seg := range p.Segments {
		fmt.Fprintf(&b, "%s %s=%s from %s\n", dimStyle.Render("#"+strconv.Itoa(i)), seg.Axis, vector.FormatFloat(seg.Value), formatPt(seg.Start))
	}
	b.WriteString("path " + v.Path)
	return b.String(), nil
}

func formatPt(p vector.Pt) string {
	return "(" + vector.FormatFloat(p.X) + ", " + vector.FormatFloat(p.Y) + ")"
}

// parseTarget reads "id" as an element and "id#k" as run k of a relation.
func parseTarget(s *scene.Scene, arg string) (move.Target, error) {
	if id, k, ok := strings.Cut(arg, "#"); ok {
		seg, err := strconv.Atoi(k)
		if err != nil || seg < 0 {
			return move.Target{}, usageError{fmt.Sprintf("bad segment index in %q", arg)}
		}
		if _, ok := s.Relation(id); !ok {
			return move.Target{}, fmt.Errorf("no relation %q", id)
		}
		return move.Target{ID: id, Relation: true, Segment: seg, Movable: true}, nil
	}
	_, isComponent := s.Component(arg)
	_, isInterface := s.Interface(arg)
	if !isComponent && !isInterface {
		return move.Target{}, fmt.Errorf("no element %q", arg)
	}
	return move.Target{ID: arg, Segment: -1, Movable: true}, nil
}

// dragScene plays a single gesture of d model units on t. Without commit the
// preview frame is left applied.
func dragScene(s *scene.Scene, t move.Target, d vector.Pt, mods move.Modifiers, commit bool) (_ *move.LayoutUpdate, err error) {
	defer func() {
		if err == nil {
			return
		}
		if aerr := s.Abort(); aerr != nil {
			err = errors.Join(err, aerr)
		}
	}()
	zoom := s.Zoom()
	if zoom <= 0 {
		zoom = 1
	}
	page := vector.Scale(d, zoom)
	s.Select(t.ID)
	lst := move.NewListener(s)
	lst.MouseDown(0, t, vector.Pt{})
	u, err := lst.MouseMove(page, mods)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, errNothingMoved
	}
	if err := s.Apply(*u); err != nil {
		return nil, err
	}
	if !commit {
		return u, nil
	}
	u, err = lst.MouseUp(page, mods)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, errNothingMoved
	}
	return u, s.Apply(*u)
}

func (a *app) drag(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("drag", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	shift := fs.Bool("shift", false, "constrain to the dominant axis")
	commit := fs.Bool("commit", false, "commit and journal the gesture")
	save := fs.Bool("save", false, "write the result back to the file")
	if err := fs.Parse(args); err != nil {
		return usageError{err.Error()}
	}
	pos := fs.Args()
	if len(pos) < 4 {
		return usageError{"drag requires <file> <id|rel#k> <dx> <dy>"}
	}
	if err := fs.Parse(pos[4:]); err != nil {
		return usageError{err.Error()}
	}
	if fs.NArg() > 0 {
		return usageError{fmt.Sprintf("unexpected argument %q", fs.Arg(0))}
	}
	path := pos[0]
	dx, errX := strconv.ParseFloat(pos[2], 64)
	dy, errY := strconv.ParseFloat(pos[3], 64)
	if errX != nil || errY != nil {
		return usageError{"dx and dy must be numbers"}
	}

	ctx = applog.ContextWithDiagram(ctx, path)
	var opts []scene.Option
	if *commit {
		j, _, err := a.openJournal(ctx)
		if err != nil {
			return err
		}
		defer j.Close()
		opts = journalHook(ctx, j)
	}
	s, err := a.load(path, opts...)
	if err != nil {
		return err
	}
	t, err := parseTarget(s, pos[1])
	if err != nil {
		return err
	}
	u, err := dragScene(s, t, vector.P(dx, dy), move.Modifiers{Shift: *shift}, *commit)
	if err != nil {
		return err
	}
	a.log.Info("drag", slog.String("target", pos[1]), slog.Bool("committed", u.Committed), slog.Int64("revision", s.Revision()))
	printUpdate(a.out, u)
	for _, r := range s.RelationDefs() {
		body, err := describeRelation(s, r.ID)
		if err != nil {
			return err
		}
		fmt.Fprintln(a.out, boxStyle.Render(body))
	}
	if *save {
		if err := document.Save(path, s); err != nil {
			return err
		}
		fmt.Fprintln(a.out, dimStyle.Render("saved "+path))
	}
	return nil
}

func printUpdate(w io.Writer, u *move.LayoutUpdate) {
	kind := "preview"
	if u.Committed {
		kind = "committed"
	}
	fmt.Fprintln(w, titleStyle.Render(kind))
	ids := make([]string, 0, len(u.PartialLayout))
	for id := range u.PartialLayout {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		el := u.PartialLayout[id]
		line := "  " + id
		if el.Pos != nil {
			line += " pos " + formatPt(*el.Pos)
		}
		if len(el.Points) > 0 {
			pts := make([]string, len(el.Points))
			for i, p := range el.Points {
				pts[i] = formatPt(p)
			}
			line += " points " + strings.Join(pts, " ")
		}
		if len(el.Layouts) > 0 {
			ls := make([]string, len(el.Layouts))
			for i, l := range el.Layouts {
				b, _ := l.MarshalText()
				ls[i] = string(b)
			}
			line += " " + dimStyle.Render(strings.Join(ls, ","))
		}
		fmt.Fprintln(w, line)
	}
}

func (a *app) export(args []string) error {
	if len(args) != 2 {
		return usageError{"export requires <file> <out>"}
	}
	out := args[1]
	if filepath.Ext(out) == "" {
		out += "." + a.cfg.Export.Format
	}
	s, err := a.load(args[0])
	if err != nil {
		return err
	}
	opt := export.Options{DPI: a.cfg.Export.DPI, Margin: a.cfg.Export.Margin}
	if err := export.File(s, out, opt, a.text); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Exported", out)
	return nil
}

func (a *app) ui(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageError{"ui requires <file>"}
	}
	ctx = applog.ContextWithDiagram(ctx, args[0])
	var opts []scene.Option
	if j, _, err := a.openJournal(ctx); err != nil {
		a.log.Warn("journal unavailable; commits are not recorded", slog.Any("err", err))
	} else {
		defer j.Close()
		opts = journalHook(ctx, j)
	}
	s, err := a.load(args[0], opts...)
	if err != nil {
		return err
	}
	if z := a.cfg.Editor.Zoom; z > 0 && s.Zoom() == 1 {
		s.SetZoom(z)
	}
	return ui.Run(args[0], s)
}

func journalHook(ctx context.Context, j storage.Journal) []scene.Option {
	return []scene.Option{scene.WithCommitHook(storage.CommitHook(ctx, j))}
}

// openJournal opens Postgres when a DSN is configured and the local SQLite
// journal otherwise. ping is nil for SQLite.
func (a *app) openJournal(ctx context.Context) (storage.Journal, func(context.Context) error, error) {
	if a.cfg.Journal.PostgresDSN != "" {
		pg, err := backend.OpenPostgres(ctx, a.cfg.Journal.PostgresURL(a.password))
		if err != nil {
			return nil, nil, err
		}
		return pg, pg.Ping, nil
	}
	path, err := a.cfg.SQLitePath()
	if err != nil {
		return nil, nil, err
	}
	lj, err := storage.OpenSQLite(path)
	if err != nil {
		return nil, nil, err
	}
	return lj, nil, nil
}

func (a *app) journal(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError{"journal requires list or serve"}
	}
	switch args[0] {
	case "list":
		fs := flag.NewFlagSet("list", flag.ContinueOnError)
		fs.SetOutput(io.Discard)
		remote := fs.String("remote", "", "journal server URL")
		if err := fs.Parse(args[1:]); err != nil {
			return usageError{err.Error()}
		}
		if fs.NArg() != 1 {
			return usageError{"journal list requires <diagram>"}
		}
		if *remote != "" {
			c := backend.NewClient(*remote, "")
			if _, err := c.Login(ctx, "cli"); err != nil {
				return fmt.Errorf("login %s: %w", *remote, err)
			}
			return listJournal(ctx, a.out, c, fs.Arg(0))
		}
		j, _, err := a.openJournal(ctx)
		if err != nil {
			return err
		}
		defer j.Close()
		return listJournal(ctx, a.out, j, fs.Arg(0))
	case "serve":
		fs := flag.NewFlagSet("serve", flag.ContinueOnError)
		fs.SetOutput(io.Discard)
		addr := fs.String("addr", a.cfg.Journal.ServerAddr, "listen address")
		if err := fs.Parse(args[1:]); err != nil {
			return usageError{err.Error()}
		}
		j, ping, err := a.openJournal(ctx)
		if err != nil {
			return err
		}
		defer j.Close()
		srv := &backend.Server{Journal: j, Ping: ping, Secret: os.Getenv(config.EnvServerSecret)}
		fmt.Fprintln(a.out, titleStyle.Render("Journal server")+" "+dimStyle.Render(*addr))
		return srv.ListenAndServe(ctx, *addr)
	default:
		return usageError{fmt.Sprintf("unknown journal command %q", args[0])}
	}
}

type journalReader interface {
	List(ctx context.Context, diagram string) ([]storage.Entry, error)
}

func listJournal(ctx context.Context, w io.Writer, j journalReader, diagram string) error {
	entries, err := j.List(ctx, diagram)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(w, dimStyle.Render("no entries for "+diagram))
		return nil
	}
	fmt.Fprintln(w, titleStyle.Render(diagram))
	for _, e := range entries {
		u, err := e.DecodeUpdate()
		if err != nil {
			return fmt.Errorf("revision %d: %w", e.Revision, err)
		}
		ids := make([]string, 0, len(u.PartialLayout))
		for id := range u.PartialLayout {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		fmt.Fprintf(w, "%6d  %s  %s\n", e.Revision, dimStyle.Render(e.CreatedAt.Format("2006-01-02 15:04:05")), strings.Join(ids, ", "))
	}
	return nil
}
