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
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/lipgloss"

	"diagramroute/internal/config"
	"diagramroute/internal/crash"
	applog "diagramroute/internal/log"
	"diagramroute/internal/version"
)

var (
	titleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#7C3AED")).Bold(true)
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#DC2626")).Bold(true)
	boxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#7C3AED")).Padding(0, 1)
)

func usage(w io.Writer) {
	fmt.Fprintln(w, titleStyle.Render("DiagramRoute")+" "+dimStyle.Render(version.String()))
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  diagramroute version                                   Show version")
	fmt.Fprintln(w, "  diagramroute route <file>                              Print routed relation paths")
	fmt.Fprintln(w, "  diagramroute drag <file> <id|rel#k> <dx> <dy> [flags]  Drag an element or a relation run")
	fmt.Fprintln(w, "      --shift    constrain to the dominant axis")
	fmt.Fprintln(w, "      --commit   commit the gesture and record it in the journal")
	fmt.Fprintln(w, "      --save     write the result back to <file>")
	fmt.Fprintln(w, "  diagramroute export <file> <out.svg|png|pdf>            Render the diagram")
	fmt.Fprintln(w, "  diagramroute ui <file>                                 Open the viewer (build with -tags fyne)")
	fmt.Fprintln(w, "  diagramroute journal list [--remote URL] <diagram>     List committed layout updates")
	fmt.Fprintln(w, "  diagramroute journal serve [--addr :8080]              Serve the journal over HTTP")
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	cfg, password, cfgErr := config.Load()
	if cfgErr != nil {
		applog.Init(applog.FromEnv())
		cfg = config.Defaults()
	} else {
		applog.Init(cfg.Logging.LogOptions())
	}
	l := applog.WithComponent("cli")
	if cfgErr != nil {
		l.Warn("config ignored", slog.Any("err", cfgErr))
	}
	defer crash.Recover(&crash.Session{})

	if len(args) == 0 {
		usage(stdout)
		return 0
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{cfg: cfg, password: password, out: stdout, log: l}
	l.Debug("start", slog.String("cmd", args[0]), slog.Int("args", len(args)))
	var err error
	switch args[0] {
	case "version", "--version", "-v":
		fmt.Fprintln(stdout, titleStyle.Render("DiagramRoute"))
		fmt.Fprintln(stdout, version.String())
		return 0
	case "route":
		err = a.route(args[1:])
	case "drag":
		err = a.drag(ctx, args[1:])
	case "export":
		err = a.export(args[1:])
	case "ui":
		err = a.ui(ctx, args[1:])
	case "journal":
		err = a.journal(ctx, args[1:])
	case "help", "-h", "--help":
		usage(stdout)
		return 0
	default:
		err = usageError{fmt.Sprintf("unknown command %q", args[0])}
	}
	if err == nil {
		return 0
	}
	fmt.Fprintln(stderr, errStyle.Render("Error:"), err)
	if _, ok := err.(usageError); ok {
		usage(stderr)
		return 2
	}
	l.Error("command failed", slog.String("cmd", args[0]), slog.Any("err", err))
	return 1
}

type usageError struct{ msg string }

func (e usageError) Error() string { return e.msg }
