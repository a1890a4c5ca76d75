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
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"musephoria/internal/domain"
	"musephoria/internal/script"
)

// PNGOptions controls the raster preview of a display sequence.
// Width is in pixels; zero picks 816 (Letter at 96 dpi). Indents are scaled
// from points by Width/612.
type PNGOptions struct {
	Width   int
	Padding int
}

const (
	defaultPNGWidth = 816
	letterWidthPt   = 612.0
	pngLineHeight   = 15
	pngBlockPad     = 3
)

func (o PNGOptions) withDefaults() PNGOptions {
	if o.Width <= 0 {
		o.Width = defaultPNGWidth
	}
	if o.Padding <= 0 {
		o.Padding = 24
	}
	return o
}

// pngBlock is one display item laid out into wrapped rows.
type pngBlock struct {
	x, y, h int
	bg      color.RGBA
	rows    []string
}

// WriteDisplayPNG renders items as a single tall PNG: one shaded block per
// item, offset by its tag's indent, text wrapped in a 7x13 bitmap face.
func WriteDisplayPNG(w io.Writer, items []domain.DisplayItem, opt PNGOptions) error {
	opt = opt.withDefaults()
	face := basicfont.Face7x13
	scale := float64(opt.Width) / letterWidthPt
	right := opt.Width - opt.Padding

	blocks := make([]pngBlock, 0, len(items))
	y := opt.Padding
	for _, it := range items {
		st := script.StyleFor(it.Tag)
		x := opt.Padding + int(st.Indent*scale)
		if x >= right-face.Width {
			x = opt.Padding
		}
		rows := wrapText(face, it.Element.Text, fixed.I(right-x-2*pngBlockPad))
		h := len(rows)*pngLineHeight + 2*pngBlockPad
		blocks = append(blocks, pngBlock{x: x, y: y, h: h, bg: toRGBA(st.Background), rows: rows})
		y += h
		if it.Tag != domain.TagCharacter {
			y += pngLineHeight / 2
		}
	}
	height := y + opt.Padding

	img := image.NewRGBA(image.Rect(0, 0, opt.Width, height))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.RGBA{255, 255, 255, 255}}, image.Point{}, draw.Src)
	d := &font.Drawer{Dst: img, Src: image.NewUniform(color.RGBA{0, 0, 0, 255}), Face: face}
	for _, b := range blocks {
		draw.Draw(img, image.Rect(b.x, b.y, right, b.y+b.h), &image.Uniform{C: b.bg}, image.Point{}, draw.Src)
		for i, row := range b.rows {
			d.Dot = fixed.P(b.x+pngBlockPad, b.y+pngBlockPad+i*pngLineHeight+face.Ascent)
			d.DrawString(row)
		}
	}
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// wrapText breaks text on spaces so that each row fits maxW. A word wider
// than maxW gets a row of its own. Empty text yields one empty row.
func wrapText(face font.Face, text string, maxW fixed.Int26_6) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{""}
	}
	var (
		rows []string
		cur  string
	)
	for _, word := range words {
		next := word
		if cur != "" {
			next = cur + " " + word
		}
		if cur != "" && font.MeasureString(face, next) > maxW {
			rows = append(rows, cur)
			next = word
		}
		cur = next
	}
	return append(rows, cur)
}

func toRGBA(c domain.Color) color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}
