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
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	applog "diagramroute/internal/log"
	"diagramroute/internal/scene"
	"diagramroute/internal/textlayout"
)

// Format is an output file type.
type Format string

const (
	SVG Format = "svg"
	PNG Format = "png"
	PDF Format = "pdf"
)

var ErrUnknownFormat = errors.New("unknown export format")

// FormatOf derives the format from a file extension.
func FormatOf(path string) (Format, error) {
	switch f := Format(strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")); f {
	case SVG, PNG, PDF:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, filepath.Ext(path))
	}
}

// Encode collects s and writes it in format f.
func Encode(s *scene.Scene, f Format, opt Options, p textlayout.Provider) ([]byte, error) {
	d, err := Collect(s, opt)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	switch f {
	case SVG:
		err = WriteSVG(&buf, d, opt)
	case PNG:
		err = WritePNG(&buf, d, opt, p)
	case PDF:
		err = WritePDF(&buf, d, opt)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// File exports s to path, choosing the format from the extension.
func File(s *scene.Scene, path string, opt Options, p textlayout.Provider) error {
	l := applog.WithOperation(applog.WithComponent("export"), "file").With(slog.String("path", path))
	f, err := FormatOf(path)
	if err != nil {
		return err
	}
	data, err := Encode(s, f, opt, p)
	if err != nil {
		l.Error("export failed", slog.Any("err", err))
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("ensure out dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", f, err)
	}
	l.Info("exported", slog.String("format", string(f)), slog.Int("bytes", len(data)))
	return nil
}
