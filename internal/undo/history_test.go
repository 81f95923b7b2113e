/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package undo

import (
	"testing"
	"time"
)

func step(d, before, after string, ts time.Time) Step {
	return Step{Diagram: d, Before: []byte(before), After: []byte(after), TS: ts}
}

func TestUndoRedo(t *testing.T) {
	h := NewHistory(Config{MaxBytes: 1 << 20, MaxPerDiagram: 10, MinInterval: 10 * time.Millisecond})
	t0 := time.Now()
	h.Record(step("d", "a", "b", t0))
	h.Record(step("d", "b", "c", t0.Add(20*time.Millisecond)))
	if _, diagrams, steps := h.Stats(); diagrams != 1 || steps != 2 {
		t.Fatalf("got diagrams=%d steps=%d want 1 and 2", diagrams, steps)
	}
	s, ok := h.Undo("d")
	if !ok || string(s.Before) != "b" {
		t.Fatalf("undo: got ok=%v before=%q want b", ok, s.Before)
	}
	if !h.CanRedo("d") {
		t.Fatalf("redo stack empty after undo")
	}
	s, ok = h.Redo("d")
	if !ok || string(s.After) != "c" {
		t.Fatalf("redo: got ok=%v after=%q want c", ok, s.After)
	}
	if _, ok := h.Redo("d"); ok {
		t.Fatalf("redo past the end")
	}
}

func TestRecordClearsRedo(t *testing.T) {
	h := NewHistory(Config{})
	t0 := time.Now()
	h.Record(step("d", "a", "b", t0))
	h.Undo("d")
	h.Record(step("d", "a", "x", t0.Add(time.Second)))
	if h.CanRedo("d") {
		t.Fatalf("new step must clear redo")
	}
	if tb, _, _ := h.Stats(); tb != 2 {
		t.Fatalf("bytes: got %d want 2", tb)
	}
}

func TestCoalesceKeepsOldestBefore(t *testing.T) {
	h := NewHistory(Config{MinInterval: 50 * time.Millisecond})
	t0 := time.Now()
	h.Record(step("d", "1", "2", t0))
	h.Record(step("d", "2", "3", t0.Add(10*time.Millisecond)))
	if _, _, steps := h.Stats(); steps != 1 {
		t.Fatalf("got %d steps want 1", steps)
	}
	s, _ := h.Undo("d")
	if string(s.Before) != "1" || string(s.After) != "3" {
		t.Fatalf("got %q -> %q want 1 -> 3", s.Before, s.After)
	}
}

func TestDepthCap(t *testing.T) {
	h := NewHistory(Config{MaxPerDiagram: 2})
	t0 := time.Now()
	for i := 0; i < 10; i++ {
		h.Record(step("d", "xx", "yy", t0.Add(time.Duration(i)*time.Second)))
	}
	if tb, _, steps := h.Stats(); steps != 2 || tb != 8 {
		t.Fatalf("got steps=%d bytes=%d want 2 and 8", steps, tb)
	}
}

func TestGlobalPruneAcrossDiagrams(t *testing.T) {
	h := NewHistory(Config{MaxBytes: 8})
	t0 := time.Now()
	h.Record(step("one", "xx", "xx", t0))
	h.Record(step("two", "yyy", "yyy", t0.Add(time.Second)))
	if h.CanUndo("one") {
		t.Fatalf("oldest diagram step should have been pruned")
	}
	if !h.CanUndo("two") {
		t.Fatalf("newest step pruned")
	}
}

func TestClear(t *testing.T) {
	h := NewHistory(Config{})
	t0 := time.Now()
	h.Record(step("d", "abc", "def", t0))
	h.Record(step("d", "def", "ghi", t0.Add(time.Second)))
	h.Undo("d")
	h.Clear("d")
	if tb, diagrams, steps := h.Stats(); tb != 0 || diagrams != 0 || steps != 0 {
		t.Fatalf("got bytes=%d diagrams=%d steps=%d want zeros", tb, diagrams, steps)
	}
}
