/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"musephoria/internal/domain"
	"musephoria/internal/script"
)

// PDFOptions controls the styled PDF rendering of a display sequence.
// Units are points. Zero values pick Letter, Courier 12.
type PDFOptions struct {
	PageSize string // "Letter" or "A4"
	Font     string // a core font: Courier, Helvetica or Times
	FontSize float64
	Title    string
	Author   string
}

const pageMargin = 54.0

func (o PDFOptions) withDefaults() PDFOptions {
	if strings.TrimSpace(o.PageSize) == "" {
		o.PageSize = "Letter"
	}
	if strings.TrimSpace(o.Font) == "" {
		o.Font = "Courier"
	}
	if o.FontSize <= 0 {
		o.FontSize = 12
	}
	return o
}

// WriteDisplayPDF draws items top to bottom, each offset and shaded according
// to its tag, and writes the document to w. Character cues are set in bold.
func WriteDisplayPDF(w io.Writer, items []domain.DisplayItem, opt PDFOptions) error {
	opt = opt.withDefaults()

	pdf := gofpdf.New("P", "pt", opt.PageSize, "")
	if opt.Title != "" {
		pdf.SetTitle(opt.Title, true)
	}
	if opt.Author != "" {
		pdf.SetAuthor(opt.Author, true)
	}
	pdf.SetCreator("musephoria", true)
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, pageMargin)
	pdf.SetFooterFunc(func() {
		pdf.SetY(-pageMargin / 2)
		pdf.SetFont(opt.Font, "", opt.FontSize*0.75)
		pdf.CellFormat(0, opt.FontSize, fmt.Sprintf("%d", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	// Core fonts are cp1252; map UTF-8 through the translator.
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	pageW, _ := pdf.GetPageSize()
	lineH := opt.FontSize * 1.2

	if opt.Title != "" {
		pdf.SetFont(opt.Font, "B", opt.FontSize*1.5)
		pdf.CellFormat(0, lineH*1.5, tr(opt.Title), "", 1, "C", false, 0, "")
		pdf.Ln(lineH)
	}

	for _, it := range items {
		st := script.StyleFor(it.Tag)
		style := ""
		if it.Tag == domain.TagCharacter || it.Tag == domain.TagSceneHeading {
			style = "B"
		}
		pdf.SetFont(opt.Font, style, opt.FontSize)
		setFillColor(pdf, st.Background)
		pdf.SetX(pageMargin + st.Indent)
		pdf.MultiCell(pageW-2*pageMargin-st.Indent, lineH, tr(it.Element.Text), "", "L", true)
		if it.Tag != domain.TagCharacter {
			pdf.Ln(lineH / 2)
		}
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func setFillColor(pdf *gofpdf.Fpdf, c domain.Color) {
	pdf.SetFillColor(int(c.R), int(c.G), int(c.B))
}
