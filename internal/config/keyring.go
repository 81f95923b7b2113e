/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package config

import (
	"errors"
	"strings"

	"github.com/zalando/go-keyring"
)

// Service/keys for OS keyring.
const (
	keyringService = "DiagramRoute"
	keyringDefault = "postgres"
)

// ErrNoPassword is returned when the keyring holds no password for a user.
var ErrNoPassword = errors.New("no password stored")

// TokenStore abstracts the keyring so tests can stub it.
type TokenStore interface {
	Get(service, key string) (string, error)
	Set(service, key, value string) error
	Delete(service, key string) error
}

// osKeyring implements TokenStore using the OS keyring via github.com/zalando/go-keyring.
type osKeyring struct{}

func (osKeyring) Get(service, key string) (string, error) { return keyring.Get(service, key) }
func (osKeyring) Set(service, key, value string) error    { return keyring.Set(service, key, value) }
func (osKeyring) Delete(service, key string) error        { return keyring.Delete(service, key) }

var tokenStore TokenStore = osKeyring{}

// SetTokenStore replaces the keyring backend and returns the previous one.
func SetTokenStore(s TokenStore) TokenStore {
	prev := tokenStore
	tokenStore = s
	return prev
}

func passwordKey(user string) string {
	if u := strings.TrimSpace(user); u != "" {
		return keyringDefault + ":" + u
	}
	return keyringDefault
}

// PostgresPassword reads the password for user from the keyring.
func PostgresPassword(user string) (string, error) {
	pw, err := tokenStore.Get(keyringService, passwordKey(user))
	if errors.Is(err, keyring.ErrNotFound) {
		return "", ErrNoPassword
	}
	return pw, err
}

// SetPostgresPassword stores the password for user in the keyring.
func SetPostgresPassword(user, password string) error {
	return tokenStore.Set(keyringService, passwordKey(user), password)
}

// DeletePostgresPassword removes the stored password. A missing entry is not an error.
func DeletePostgresPassword(user string) error {
	err := tokenStore.Delete(keyringService, passwordKey(user))
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return err
}
