/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package undo keeps per-diagram undo and redo stacks of layout snapshots.
package undo

import (
	"sync"
	"time"
)

// Step is one reversible change of a diagram. Before and After are opaque
// encoded layouts; their combined length is the accounted size.
type Step struct {
	Diagram string
	Before  []byte
	After   []byte
	TS      time.Time
}

func (s Step) size() int { return len(s.Before) + len(s.After) }

// Config caps memory and depth and controls coalescing.
type Config struct {
	// MaxBytes is a soft cap over all diagrams; the oldest steps go first.
	MaxBytes int
	// MaxPerDiagram limits the undo depth per diagram (0 means unlimited).
	MaxPerDiagram int
	// MinInterval merges a step into the previous one of the same diagram when
	// they were recorded closer together than this.
	MinInterval time.Duration
}

// History is safe for concurrent use.
type History struct {
	cfg        Config
	mu         sync.Mutex
	undo       map[string][]Step
	redo       map[string][]Step
	totalBytes int
}

func NewHistory(cfg Config) *History {
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = 16 * 1024 * 1024
	}
	if cfg.MinInterval < 0 {
		cfg.MinInterval = 0
	}
	return &History{cfg: cfg, undo: make(map[string][]Step), redo: make(map[string][]Step)}
}

// Record pushes s and clears the redo stack of its diagram. A step recorded
// within MinInterval of the previous one extends it: the older Before is kept.
func (h *History) Record(s Step) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.dropRedoLocked(s.Diagram)
	stack := h.undo[s.Diagram]
	if n := len(stack); n > 0 && s.TS.Sub(stack[n-1].TS) < h.cfg.MinInterval {
		last := stack[n-1]
		h.totalBytes -= last.size()
		s.Before = last.Before
		stack[n-1] = s
		h.totalBytes += s.size()
		h.enforceCapsLocked(s.Diagram)
		return
	}
	h.undo[s.Diagram] = append(stack, s)
	h.totalBytes += s.size()
	h.enforceCapsLocked(s.Diagram)
}

// Undo moves the newest step of diagram to the redo stack and returns it; the
// caller restores Before.
func (h *History) Undo(diagram string) (Step, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	stack := h.undo[diagram]
	if len(stack) == 0 {
		return Step{}, false
	}
	s := stack[len(stack)-1]
	h.undo[diagram] = stack[:len(stack)-1]
	h.redo[diagram] = append(h.redo[diagram], s)
	return s, true
}

// Redo moves the newest undone step back; the caller restores After.
func (h *History) Redo(diagram string) (Step, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	r := h.redo[diagram]
	if len(r) == 0 {
		return Step{}, false
	}
	s := r[len(r)-1]
	h.redo[diagram] = r[:len(r)-1]
	h.undo[diagram] = append(h.undo[diagram], s)
	h.enforceCapsLocked(diagram)
	return s, true
}

func (h *History) CanUndo(diagram string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undo[diagram]) > 0
}

func (h *History) CanRedo(diagram string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.redo[diagram]) > 0
}

// Clear forgets everything recorded for diagram.
func (h *History) Clear(diagram string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, s := range h.undo[diagram] {
		h.totalBytes -= s.size()
	}
	h.dropRedoLocked(diagram)
	delete(h.undo, diagram)
	delete(h.redo, diagram)
}

// Stats returns accounted bytes, diagrams with undo steps and the number of
// undo steps.
func (h *History) Stats() (totalBytes, diagrams, steps int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, v := range h.undo {
		if len(v) > 0 {
			diagrams++
		}
		steps += len(v)
	}
	return h.totalBytes, diagrams, steps
}

// dropRedoLocked discards the redo stack; undone steps stay accounted until
// they are dropped.
func (h *History) dropRedoLocked(diagram string) {
	for _, s := range h.redo[diagram] {
		h.totalBytes -= s.size()
	}
	h.redo[diagram] = nil
}

func (h *History) enforceCapsLocked(diagram string) {
	if h.cfg.MaxPerDiagram > 0 {
		stack := h.undo[diagram]
		if extra := len(stack) - h.cfg.MaxPerDiagram; extra > 0 {
			for _, s := range stack[:extra] {
				h.totalBytes -= s.size()
			}
			h.undo[diagram] = append([]Step(nil), stack[extra:]...)
		}
	}
	for h.totalBytes > h.cfg.MaxBytes {
		oldest := ""
		found := false
		var ts time.Time
		for d, stack := range h.undo {
			if len(stack) == 0 {
				continue
			}
			if !found || stack[0].TS.Before(ts) {
				oldest, ts, found = d, stack[0].TS, true
			}
		}
		if !found {
			break
		}
		stack := h.undo[oldest]
		h.totalBytes -= stack[0].size()
		h.undo[oldest] = stack[1:]
		if len(h.undo[oldest]) == 0 {
			delete(h.undo, oldest)
		}
	}
}
