/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package backend

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"

	"musephoria/internal/storage"
)

// Push copies a stored screenplay into the mirror and returns its mirror id.
// Pushing the same extraction again updates the existing row in place.
func (m *Mirror) Push(ctx context.Context, e storage.Entry) (int64, error) {
	lines, err := json.Marshal(nonNilLines(e.Lines))
	if err != nil {
		return 0, err
	}
	doc, err := json.Marshal(e.Screenplay)
	if err != nil {
		return 0, err
	}

	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin push: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var id int64
	// dialect=PostgreSQL
	err = tx.QueryRowContext(ctx, `INSERT INTO screenplays(fingerprint, title, source, created_at, lines, screenplay)
		VALUES($1, $2, $3, $4, $5::jsonb, $6::jsonb)
		ON CONFLICT (fingerprint) DO UPDATE SET title = EXCLUDED.title, source = EXCLUDED.source, pushed_at = now()
		RETURNING id`,
		fingerprint(lines, doc), e.Title, e.Source, e.CreatedAt.UTC(), string(lines), string(doc)).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upsert screenplay: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM dialogue WHERE screenplay_id = $1`, id); err != nil {
		return 0, fmt.Errorf("clear dialogue: %w", err)
	}
	blocks := 0
	for _, c := range e.Screenplay.Characters {
		for _, d := range c.Dialogue {
			if _, err := tx.ExecContext(ctx, `INSERT INTO dialogue(screenplay_id, speaker, line_number, text) VALUES($1, $2, $3, $4)`,
				id, c.Name, d.LineNumber, d.Text); err != nil {
				return 0, fmt.Errorf("insert dialogue: %w", err)
			}
			blocks++
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit push: %w", err)
	}
	m.l.Info("pushed screenplay", slog.Int64("local_id", e.ID), slog.Int64("mirror_id", id), slog.Int("dialogue_blocks", blocks))
	return id, nil
}

// Remove deletes a mirrored screenplay; its dialogue goes with it.
func (m *Mirror) Remove(ctx context.Context, id int64) error {
	res, err := m.db.ExecContext(ctx, `DELETE FROM screenplays WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete screenplay: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("mirror id %d: %w", id, storage.ErrNotFound)
	}
	return nil
}

// fingerprint identifies an extraction by its content, independent of title.
func fingerprint(lines, doc []byte) string {
	h := sha256.New()
	h.Write(lines)
	h.Write([]byte{0})
	h.Write(doc)
	return hex.EncodeToString(h.Sum(nil))
}

func nonNilLines(l []string) []string {
	if l == nil {
		return []string{}
	}
	return l
}
