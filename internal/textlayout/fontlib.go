/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textlayout

import (
	"fmt"
	"os"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
)

// LabelFamily is the family element labels ask for.
const LabelFamily = ""

type fontKey struct {
	family string
	bold   bool
}

// FontLibrary holds parsed OpenType fonts by family and weight. The first
// family added becomes the default for families the library does not know.
type FontLibrary struct {
	mu       sync.RWMutex
	fonts    map[fontKey]*opentype.Font
	fallback string
}

func NewFontLibrary() *FontLibrary { return &FontLibrary{fonts: make(map[fontKey]*opentype.Font)} }

// Add parses an OpenType or TrueType font and registers it.
func (fl *FontLibrary) Add(family string, bold bool, data []byte) error {
	f, err := opentype.Parse(data)
	if err != nil {
		return fmt.Errorf("parse font %s: %w", family, err)
	}
	fl.mu.Lock()
	defer fl.mu.Unlock()
	if fl.fonts == nil {
		fl.fonts = make(map[fontKey]*opentype.Font)
	}
	if len(fl.fonts) == 0 {
		fl.fallback = family
	}
	fl.fonts[fontKey{family: family, bold: bold}] = f
	return nil
}

// LoadFile reads a font file and registers it.
func (fl *FontLibrary) LoadFile(family string, bold bool, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read font %s: %w", path, err)
	}
	return fl.Add(family, bold, data)
}

// SetDefault changes the family used for unknown lookups.
func (fl *FontLibrary) SetDefault(family string) {
	fl.mu.Lock()
	fl.fallback = family
	fl.mu.Unlock()
}

// find prefers the requested weight, then the other weight of the same
// family, then the default family.
func (fl *FontLibrary) find(spec FontSpec) *opentype.Font {
	if fl == nil {
		return nil
	}
	fl.mu.RLock()
	defer fl.mu.RUnlock()
	for _, fam := range []string{spec.Family, fl.fallback} {
		if f, ok := fl.fonts[fontKey{family: fam, bold: spec.Bold}]; ok {
			return f
		}
		if f, ok := fl.fonts[fontKey{family: fam, bold: !spec.Bold}]; ok {
			return f
		}
	}
	return nil
}

// OTProvider resolves faces from a FontLibrary and falls back to another
// Provider when the library is empty.
type OTProvider struct {
	Lib      *FontLibrary
	DPI      float64 // 72 when zero
	Fallback Provider
}

func (p OTProvider) Resolve(spec FontSpec) (font.Face, Metrics) {
	if spec.SizePt <= 0 {
		spec.SizePt = 12
	}
	dpi := p.DPI
	if dpi <= 0 {
		dpi = 72
	}
	if f := p.Lib.find(spec); f != nil {
		face, err := opentype.NewFace(f, &opentype.FaceOptions{Size: spec.SizePt, DPI: dpi, Hinting: font.HintingFull})
		if err == nil {
			return face, metricsOf(face)
		}
	}
	fb := p.Fallback
	if fb == nil {
		fb = BasicProvider{}
	}
	return fb.Resolve(spec)
}

// LabelProvider returns the provider for element labels: the font file at
// path, or BasicProvider when path is empty.
func LabelProvider(path string) (Provider, error) {
	if path == "" {
		return BasicProvider{}, nil
	}
	lib := NewFontLibrary()
	if err := lib.LoadFile(LabelFamily, false, path); err != nil {
		return nil, err
	}
	return OTProvider{Lib: lib, Fallback: BasicProvider{}}, nil
}
