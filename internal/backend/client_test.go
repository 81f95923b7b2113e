/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package backend

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"
)

func TestClientLoginAndList(t *testing.T) {
	s, _ := newTestServer()
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()
	ctx := context.Background()

	c := NewClient(ts.URL+"/", "")
	if _, err := c.List(ctx, "orders"); err == nil {
		t.Fatalf("expected error without token")
	}
	exp, err := c.Login(ctx, "cli")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if want := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC); !exp.Equal(want) {
		t.Fatalf("expiry: got %v want %v", exp, want)
	}
	entries, err := c.List(ctx, "orders")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 1 || entries[0].Revision != 4 || entries[0].Diagram != "orders" {
		t.Fatalf("entries: got %+v", entries)
	}
	u, err := entries[0].DecodeUpdate()
	if err != nil || !u.Committed {
		t.Fatalf("update: got %+v %v", u, err)
	}
	if !entries[0].CreatedAt.Equal(time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC)) {
		t.Fatalf("created_at: got %v", entries[0].CreatedAt)
	}
	if empty, err := c.List(ctx, "unknown"); err != nil || len(empty) != 0 {
		t.Fatalf("unknown diagram: %v %v", empty, err)
	}
}
