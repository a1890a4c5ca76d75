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
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"musephoria/internal/domain"
)

// Record is a screenplay to be stored.
type Record struct {
	Title      string
	Source     string // path of the PDF it was extracted from
	Lines      []string
	Screenplay domain.Screenplay
}

// Entry is a stored screenplay.
type Entry struct {
	ID         int64
	Title      string
	Source     string
	CreatedAt  time.Time
	Lines      []string
	Screenplay domain.Screenplay
}

// Listing is one row of List.
type Listing struct {
	ID             int64     `json:"id"`
	Title          string    `json:"title"`
	Source         string    `json:"source,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	SceneHeadings  int       `json:"scene_headings"`
	Directions     int       `json:"screen_directions"`
	Characters     int       `json:"characters"`
	DialogueBlocks int       `json:"dialogue_blocks"`
}

// language=SQL
// dialect=SQLite
const insertScreenplaySQL = `INSERT INTO screenplays(title, source, created_at, lines_text, doc_json, headings, directions, characters, blocks)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

// language=SQL
// dialect=SQLite
const insertDialogueSQL = `INSERT INTO dialogue(screenplay_id, character, line_number, text) VALUES (?, ?, ?, ?)`

// language=SQL
// dialect=SQLite
const selectScreenplaySQL = `SELECT title, COALESCE(source, ''), created_at, lines_text, doc_json FROM screenplays WHERE id = ?`

// language=SQL
// dialect=SQLite
const listScreenplaysSQL = `SELECT id, title, COALESCE(source, ''), created_at, headings, directions, characters, blocks
	FROM screenplays ORDER BY id DESC LIMIT ?`

// Save stores rec and indexes its dialogue. It returns the new id.
func (lib *Library) Save(ctx context.Context, rec Record) (int64, error) {
	title := strings.TrimSpace(rec.Title)
	if title == "" {
		return 0, errors.New("title is required")
	}
	doc, err := json.Marshal(rec.Screenplay)
	if err != nil {
		return 0, fmt.Errorf("encode screenplay: %w", err)
	}
	blocks := 0
	for _, c := range rec.Screenplay.Characters {
		blocks += len(c.Dialogue)
	}

	tx, err := lib.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin save: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, insertScreenplaySQL,
		title, nullIfEmpty(rec.Source), time.Now().UTC().Format(time.RFC3339Nano),
		strings.Join(rec.Lines, "\n"), string(doc),
		len(rec.Screenplay.SceneHeadings), len(rec.Screenplay.ScreenDirections), len(rec.Screenplay.Characters), blocks,
	)
	if err != nil {
		return 0, fmt.Errorf("insert screenplay: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	stmt, err := tx.PrepareContext(ctx, insertDialogueSQL)
	if err != nil {
		return 0, fmt.Errorf("prepare dialogue: %w", err)
	}
	defer func() { _ = stmt.Close() }()
	for _, c := range rec.Screenplay.Characters {
		for _, d := range c.Dialogue {
			if _, err := stmt.ExecContext(ctx, id, c.Name, d.LineNumber, d.Text); err != nil {
				return 0, fmt.Errorf("insert dialogue: %w", err)
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit save: %w", err)
	}
	lib.l.Info("screenplay saved", slog.Int64("id", id), slog.String("title", title), slog.Int("dialogue_blocks", blocks))
	return id, nil
}

// Get loads the screenplay with the given id.
func (lib *Library) Get(ctx context.Context, id int64) (Entry, error) {
	e := Entry{ID: id}
	var created, lines, doc string
	err := lib.db.QueryRowContext(ctx, selectScreenplaySQL, id).Scan(&e.Title, &e.Source, &created, &lines, &doc)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, fmt.Errorf("id %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return Entry{}, fmt.Errorf("get screenplay %d: %w", id, err)
	}
	e.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
	if lines != "" {
		e.Lines = strings.Split(lines, "\n")
	}
	if err := json.Unmarshal([]byte(doc), &e.Screenplay); err != nil {
		return Entry{}, fmt.Errorf("decode screenplay %d: %w", id, err)
	}
	return e, nil
}

// List returns up to limit screenplays, newest first.
func (lib *Library) List(ctx context.Context, limit int) ([]Listing, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := lib.db.QueryContext(ctx, listScreenplaysSQL, limit)
	if err != nil {
		return nil, fmt.Errorf("list screenplays: %w", err)
	}
	defer func() { _ = rows.Close() }()
	out := []Listing{}
	for rows.Next() {
		var it Listing
		var created string
		if err := rows.Scan(&it.ID, &it.Title, &it.Source, &created, &it.SceneHeadings, &it.Directions, &it.Characters, &it.DialogueBlocks); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		it.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		out = append(out, it)
	}
	return out, rows.Err()
}

// Delete removes a screenplay and its indexed dialogue.
func (lib *Library) Delete(ctx context.Context, id int64) error {
	tx, err := lib.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete: %w", err)
	}
	defer func() { _ = tx.Rollback() }()
	// Delete dialogue rows explicitly so the FTS triggers fire for each of them.
	if _, err := tx.ExecContext(ctx, `DELETE FROM dialogue WHERE screenplay_id = ?`, id); err != nil {
		return fmt.Errorf("delete dialogue: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM screenplays WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete screenplay: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("id %d: %w", id, ErrNotFound)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete: %w", err)
	}
	lib.l.Info("screenplay deleted", slog.Int64("id", id))
	return nil
}

func nullIfEmpty(s string) any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}
