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
	"strings"
)

// DialogueQuery describes a dialogue search.
// Text uses SQLite FTS5 syntax (simple terms, phrases in quotes, AND/OR/NOT).
// Character, when set, restricts hits to that speaker (case-insensitive).
// Limit/Offset implement pagination; reasonable defaults applied if zero.
type DialogueQuery struct {
	Text      string
	Character string
	Limit     int
	Offset    int
}

// DialogueHit is one matching dialogue block.
// Snippet marks matched terms with [ ] when Text was given.
type DialogueHit struct {
	ScreenplayID int64  `json:"screenplay_id"`
	Title        string `json:"title"`
	Character    string `json:"character"`
	LineNumber   int    `json:"line_number"`
	Text         string `json:"text"`
	Snippet      string `json:"snippet,omitempty"`
}

// SearchDialogue finds dialogue across all stored screenplays.
// Without Text it lists the dialogue of the requested character.
func (lib *Library) SearchDialogue(ctx context.Context, q DialogueQuery) ([]DialogueHit, error) {
	useFTS := strings.TrimSpace(q.Text) != ""
	char := strings.TrimSpace(q.Character)
	if !useFTS && char == "" {
		return nil, fmt.Errorf("search needs text or a character")
	}

	var args []any
	var sb strings.Builder
	if useFTS {
		sb.WriteString("SELECT d.screenplay_id, s.title, d.character, d.line_number, d.text, snippet(fts_dialogue, 0, '[', ']', '…', 10)\n")
		sb.WriteString("FROM fts_dialogue JOIN dialogue d ON fts_dialogue.rowid = d.id\n")
		sb.WriteString("JOIN screenplays s ON s.id = d.screenplay_id\n")
		sb.WriteString("WHERE fts_dialogue MATCH ?\n")
		args = append(args, q.Text)
	} else {
		sb.WriteString("SELECT d.screenplay_id, s.title, d.character, d.line_number, d.text, ''\n")
		sb.WriteString("FROM dialogue d JOIN screenplays s ON s.id = d.screenplay_id\nWHERE 1=1\n")
	}
	if char != "" {
		sb.WriteString(" AND lower(d.character) = ?\n")
		args = append(args, strings.ToLower(char))
	}
	limit := q.Limit
	if limit <= 0 {
		limit = 100
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	sb.WriteString("ORDER BY d.screenplay_id, d.line_number\n")
	sb.WriteString("LIMIT ? OFFSET ?")
	args = append(args, limit, q.Offset)

	rows, err := lib.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("search query: %w", err)
	}
	defer func() { _ = rows.Close() }()
	out := []DialogueHit{}
	for rows.Next() {
		var h DialogueHit
		if err := rows.Scan(&h.ScreenplayID, &h.Title, &h.Character, &h.LineNumber, &h.Text, &h.Snippet); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		out = append(out, h)
	}
	return out, rows.Err()
}
