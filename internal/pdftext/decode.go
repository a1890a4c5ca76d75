/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package pdftext decodes the text layer of a PDF into positioned runs.
//
// The decoder reports glyphs one by one; adjacent glyphs on the same baseline
// are joined into runs so that the line reconstructor sees words and phrases
// with their starting offset and advance width.
package pdftext

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"

	"musephoria/internal/domain"
	applog "musephoria/internal/log"
)

// Document is the decoded text layer of one PDF.
type Document struct {
	Pages    [][]domain.TextRun
	NumPages int
	Title    string
	Author   string
}

// RunCount returns the number of runs over all pages.
func (d Document) RunCount() int {
	n := 0
	for _, p := range d.Pages {
		n += len(p)
	}
	return n
}

const (
	// Glyphs closer than this fraction of the font size stay in one run.
	joinGap = 0.3
	// Baselines within this distance count as the same baseline.
	baselineEps = 0.5
	// Advance of a glyph with no width metrics, as a fraction of the font
	// size. Screenplays are set in Courier, whose advance is 0.6 em.
	fallbackAdvance = 0.6
)

// Decode opens the PDF at path and decodes every page.
func Decode(ctx context.Context, path string) (Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return Document{}, &DecodeError{Path: path, Err: err}
	}
	defer func() { _ = f.Close() }()
	st, err := f.Stat()
	if err != nil {
		return Document{}, &DecodeError{Path: path, Err: err}
	}
	return decode(ctx, path, f, st.Size())
}

// DecodeReader decodes a PDF held by r, which must be size bytes long.
func DecodeReader(ctx context.Context, r io.ReaderAt, size int64) (Document, error) {
	return decode(ctx, "", r, size)
}

func decode(ctx context.Context, path string, ra io.ReaderAt, size int64) (doc Document, err error) {
	l := applog.WithOperation(applog.WithComponent("pdftext"), "decode")
	if path != "" {
		l = applog.WithDocument(l, path)
	}

	r, err := openReader(ra, size)
	if err != nil {
		if errors.Is(err, pdf.ErrInvalidPassword) {
			err = ErrEncrypted
		}
		return Document{}, &DecodeError{Path: path, Err: err}
	}

	doc.NumPages = r.NumPage()
	doc.Pages = make([][]domain.TextRun, 0, doc.NumPages)
	doc.Title, doc.Author = info(r)
	for i := 1; i <= doc.NumPages; i++ {
		if err := ctx.Err(); err != nil {
			return Document{}, err
		}
		runs, err := decodePage(r, i)
		if err != nil {
			l.Warn("page decode failed", slog.Int("page", i), slog.Any("err", err))
			return Document{}, &DecodeError{Path: path, Page: i, Err: err}
		}
		doc.Pages = append(doc.Pages, runs)
	}
	l.Debug("decoded", slog.Int("pages", doc.NumPages), slog.Int("runs", doc.RunCount()))
	return doc, nil
}

// openReader guards against parser panics on damaged cross-reference tables.
func openReader(ra io.ReaderAt, size int64) (r *pdf.Reader, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			r, err = nil, fmt.Errorf("malformed pdf: %v", rec)
		}
	}()
	return pdf.NewReader(ra, size)
}

func info(r *pdf.Reader) (title, author string) {
	defer func() {
		if recover() != nil {
			title, author = "", ""
		}
	}()
	in := r.Trailer().Key("Info")
	return strings.TrimSpace(in.Key("Title").Text()), strings.TrimSpace(in.Key("Author").Text())
}

func decodePage(r *pdf.Reader, n int) (runs []domain.TextRun, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			runs, err = nil, fmt.Errorf("malformed content stream: %v", rec)
		}
	}()
	p := r.Page(n)
	if p.V.IsNull() {
		return []domain.TextRun{}, nil
	}
	return joinGlyphs(p.Content().Text), nil
}

// joinGlyphs merges glyphs that continue each other on the same baseline.
// Content stream order is kept; the line reconstructor depends on it.
func joinGlyphs(glyphs []pdf.Text) []domain.TextRun {
	runs := []domain.TextRun{}
	var (
		cur   strings.Builder
		start pdf.Text
		end   float64 // x where the current run ends
		open  bool
	)
	flush := func() {
		if !open {
			return
		}
		runs = append(runs, domain.TextRun{
			Text:      cur.String(),
			Transform: [6]float64{start.FontSize, 0, 0, start.FontSize, start.X, start.Y},
			Width:     end - start.X,
		})
		cur.Reset()
		open = false
	}
	for _, g := range glyphs {
		if g.S == "" {
			continue
		}
		w := g.W
		if w <= 0 {
			w = g.FontSize * fallbackAdvance * float64(len([]rune(g.S)))
		}
		if open && math.Abs(g.Y-start.Y) <= baselineEps && math.Abs(g.X-end) <= start.FontSize*joinGap {
			cur.WriteString(g.S)
			end = g.X + w
			continue
		}
		flush()
		start, end, open = g, g.X+w, true
		cur.WriteString(g.S)
	}
	flush()
	return runs
}
