/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"diagramroute/internal/storage"
)

// Client reads a remote journal served by Server.
type Client struct {
	BaseURL string
	Token   string // bearer token
	client  *http.Client
}

// NewClient creates a client. baseURL may include a trailing slash.
func NewClient(baseURL string, token string) *Client {
	b := strings.TrimRight(baseURL, "/")
	return &Client{
		BaseURL: b,
		Token:   token,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, dest any) error {
	u, err := url.Parse(c.BaseURL + path)
	if err != nil {
		return err
	}
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("server %s %s: %s", method, u.Path, resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(dest)
}

// Login requests a token for subject and keeps it for later calls.
func (c *Client) Login(ctx context.Context, subject string) (time.Time, error) {
	var resp struct {
		Token     string `json:"token"`
		ExpiresAt string `json:"expires_at"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/token", map[string]any{"subject": subject}, &resp); err != nil {
		return time.Time{}, err
	}
	exp, err := time.Parse(time.RFC3339, resp.ExpiresAt)
	if err != nil {
		return time.Time{}, fmt.Errorf("token expiry: %w", err)
	}
	c.Token = resp.Token
	return exp, nil
}

// List fetches the journal of diagram in append order.
func (c *Client) List(ctx context.Context, diagram string) ([]storage.Entry, error) {
	var env struct {
		Entries []struct {
			Revision  int64           `json:"revision"`
			Update    json.RawMessage `json:"update"`
			CreatedAt time.Time       `json:"created_at"`
		} `json:"entries"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/api/diagrams/"+url.PathEscape(diagram)+"/journal", nil, &env); err != nil {
		return nil, err
	}
	out := make([]storage.Entry, 0, len(env.Entries))
	for _, e := range env.Entries {
		out = append(out, storage.Entry{Diagram: diagram, Revision: e.Revision, Update: e.Update, CreatedAt: e.CreatedAt})
	}
	return out, nil
}
