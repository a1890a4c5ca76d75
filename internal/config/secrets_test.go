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
	"path/filepath"
	"testing"

	"github.com/zalando/go-keyring"
)

type memSecrets map[string]string

func (m memSecrets) Get(service, key string) (string, error) {
	v, ok := m[service+"/"+key]
	if !ok {
		return "", keyring.ErrNotFound
	}
	return v, nil
}

func (m memSecrets) Set(service, key, value string) error {
	m[service+"/"+key] = value
	return nil
}

func (m memSecrets) Delete(service, key string) error {
	if _, ok := m[service+"/"+key]; !ok {
		return keyring.ErrNotFound
	}
	delete(m, service+"/"+key)
	return nil
}

func stubSecrets(t *testing.T) memSecrets {
	t.Helper()
	prev := secretStore
	m := memSecrets{}
	secretStore = m
	t.Cleanup(func() { secretStore = prev })
	return m
}

func TestPostgresPasswordLifecycle(t *testing.T) {
	m := stubSecrets(t)
	if _, err := PostgresPassword(); !errors.Is(err, ErrNoPassword) {
		t.Fatalf("PostgresPassword() on empty store = %v, want ErrNoPassword", err)
	}
	if err := SetPostgresPassword("s3cret"); err != nil {
		t.Fatalf("SetPostgresPassword: %v", err)
	}
	if m["Musephoria/postgres_password"] != "s3cret" {
		t.Fatalf("store = %v", m)
	}
	if pw, err := PostgresPassword(); err != nil || pw != "s3cret" {
		t.Fatalf("PostgresPassword() = %q, %v", pw, err)
	}
	if err := SetPostgresPassword(""); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if err := SetPostgresPassword(""); err != nil {
		t.Fatalf("clearing twice should be a no-op: %v", err)
	}
	if _, err := PostgresPassword(); !errors.Is(err, ErrNoPassword) {
		t.Fatalf("after clear = %v", err)
	}
}

func TestPostgresDSNFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvPostgresDSN, "postgres://muse@db/lib")
	cfg, err := Load(filepath.Join(t.TempDir(), "none.yaml"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Library.PostgresDSN != "postgres://muse@db/lib" {
		t.Fatalf("PostgresDSN = %q", cfg.Library.PostgresDSN)
	}
}
