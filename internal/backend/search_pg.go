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
	"fmt"
	"strings"

	"musephoria/internal/storage"
)

// SearchDialogue runs q against the mirror using tsvector matching and
// returns hits shaped like the local library's so both can be printed alike.
func (m *Mirror) SearchDialogue(ctx context.Context, q storage.DialogueQuery) ([]storage.DialogueHit, error) {
	var (
		args []any
		b    strings.Builder
	)
	place := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	useFTS := strings.TrimSpace(q.Text) != ""
	char := strings.TrimSpace(q.Character)
	if !useFTS && char == "" {
		return nil, fmt.Errorf("search needs text or a character")
	}
	if useFTS {
		tq := "plainto_tsquery('simple', " + place(q.Text) + ")"
		b.WriteString("SELECT d.screenplay_id, s.title, d.speaker, d.line_number, d.text, ")
		b.WriteString("COALESCE(ts_headline('simple', d.text, " + tq + ", 'StartSel=[, StopSel=], MaxWords=12, MinWords=3'), '') ")
		b.WriteString("FROM dialogue d JOIN screenplays s ON s.id = d.screenplay_id WHERE d.search_vector @@ " + tq + " ")
	} else {
		b.WriteString("SELECT d.screenplay_id, s.title, d.speaker, d.line_number, d.text, '' ")
		b.WriteString("FROM dialogue d JOIN screenplays s ON s.id = d.screenplay_id WHERE TRUE ")
	}
	if char != "" {
		b.WriteString(" AND lower(d.speaker) = " + place(strings.ToLower(char)) + " ")
	}
	limit := q.Limit
	if limit <= 0 {
		limit = 100
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}
	b.WriteString(" ORDER BY d.screenplay_id, d.line_number ")
	b.WriteString(" LIMIT " + place(limit) + " OFFSET " + place(offset))

	rows, err := m.db.QueryContext(ctx, b.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("search pg query: %w", err)
	}
	defer func() { _ = rows.Close() }()
	out := []storage.DialogueHit{}
	for rows.Next() {
		var h storage.DialogueHit
		if err := rows.Scan(&h.ScreenplayID, &h.Title, &h.Character, &h.LineNumber, &h.Text, &h.Snippet); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

// List returns mirrored screenplays, most recently pushed first.
func (m *Mirror) List(ctx context.Context, limit int) ([]storage.Listing, error) {
	if limit <= 0 {
		limit = 50
	}
	// dialect=PostgreSQL
	rows, err := m.db.QueryContext(ctx, `SELECT s.id, s.title, s.source, s.created_at,
			jsonb_array_length(s.screenplay->'scene_headings'),
			jsonb_array_length(s.screenplay->'screen_directions'),
			jsonb_array_length(s.screenplay->'characters'),
			(SELECT count(*) FROM dialogue d WHERE d.screenplay_id = s.id)
		FROM screenplays s ORDER BY s.pushed_at DESC, s.id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list screenplays: %w", err)
	}
	defer func() { _ = rows.Close() }()
	out := []storage.Listing{}
	for rows.Next() {
		var it storage.Listing
		if err := rows.Scan(&it.ID, &it.Title, &it.Source, &it.CreatedAt, &it.SceneHeadings, &it.Directions, &it.Characters, &it.DialogueBlocks); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		out = append(out, it)
	}
	return out, rows.Err()
}
