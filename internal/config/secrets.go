/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package config

import (
	"errors"
	"strings"

	"github.com/zalando/go-keyring"
)

// Service/keys for OS keyring.
const (
	keyringService    = "Musephoria"
	keyringPGPassword  = "postgres_password"
)

// ErrNoPassword is returned when no mirror password is stored.
var ErrNoPassword = errors.New("no postgres password stored")

// SecretStore abstracts the keyring so tests can stub it.
type SecretStore interface {
	Get(service, key string) (string, error)
	Set(service, key, value string) error
	Delete(service, key string) error
}

// secretStore is swapped out in tests.
var secretStore SecretStore = osKeyring{}

// osKeyring implements SecretStore using the OS keyring via github.com/zalando/go-keyring.
type osKeyring struct{}

func (osKeyring) Get(service, key string) (string, error) { return keyring.Get(service, key) }
func (osKeyring) Set(service, key, value string) error    { return keyring.Set(service, key, value) }
func (osKeyring) Delete(service, key string) error        { return keyring.Delete(service, key) }

// PostgresPassword returns the stored mirror password.
func PostgresPassword() (string, error) {
	pw, err := secretStore.Get(keyringService, keyringPGPassword)
	if errors.Is(err, keyring.ErrNotFound) || (err == nil && pw == "") {
		return "", ErrNoPassword
	}
	return pw, err
}

// SetPostgresPassword stores pw in the keyring; an empty pw removes it.
func SetPostgresPassword(pw string) error {
	if strings.TrimSpace(pw) == "" {
		err := secretStore.Delete(keyringService, keyringPGPassword)
		if errors.Is(err, keyring.ErrNotFound) {
			return nil
		}
		return err
	}
	return secretStore.Set(keyringService, keyringPGPassword, pw)
}
