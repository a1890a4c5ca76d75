/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Check runs SQLite's quick_check and probes the library tables.
func (lib *Library) Check(ctx context.Context) error {
	var chk string
	if err := lib.db.QueryRowContext(ctx, `PRAGMA quick_check;`).Scan(&chk); err != nil {
		return fmt.Errorf("quick_check: %w", err)
	}
	if !strings.EqualFold(strings.TrimSpace(chk), "ok") {
		return fmt.Errorf("quick_check: %s", chk)
	}
	for _, t := range []string{"screenplays", "dialogue", "fts_dialogue"} {
		if _, err := lib.db.ExecContext(ctx, "SELECT 1 FROM "+t+" LIMIT 1;"); err != nil {
			return fmt.Errorf("probe %s: %w", t, err)
		}
	}
	return nil
}

// Optimize merges the FTS index segments.
func (lib *Library) Optimize(ctx context.Context) error {
	_, err := lib.db.ExecContext(ctx, `INSERT INTO fts_dialogue(fts_dialogue) VALUES('optimize')`)
	return err
}

// RebuildSearchIndex repopulates the FTS index from the dialogue table.
func (lib *Library) RebuildSearchIndex(ctx context.Context) error {
	if _, err := lib.db.ExecContext(ctx, `INSERT INTO fts_dialogue(fts_dialogue) VALUES('rebuild')`); err != nil {
		return fmt.Errorf("rebuild fts: %w", err)
	}
	lib.l.Info("search index rebuilt")
	return nil
}

// Backup copies the database into a timestamped file in a "backups" directory
// next to it and returns the backup path. The WAL is checkpointed first.
func (lib *Library) Backup(ctx context.Context) (string, error) {
	if _, err := lib.db.ExecContext(ctx, `PRAGMA wal_checkpoint(TRUNCATE);`); err != nil {
		lib.l.Warn("wal checkpoint failed", slog.Any("err", err))
	}
	bdir := filepath.Join(filepath.Dir(lib.path), "backups")
	if err := os.MkdirAll(bdir, 0o755); err != nil {
		return "", fmt.Errorf("create backup dir: %w", err)
	}
	data, err := os.ReadFile(lib.path)
	if err != nil {
		return "", fmt.Errorf("read library: %w", err)
	}
	stamp := time.Now().Format("20060102-150405")
	bak := filepath.Join(bdir, fmt.Sprintf("%s.%s.bak", filepath.Base(lib.path), stamp))
	if err := os.WriteFile(bak, data, 0o644); err != nil {
		return "", fmt.Errorf("write backup: %w", err)
	}
	return bak, nil
}
