/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

// This file defines the core data model shared by the decoder, the extraction
// pipeline, the exporters and the screenplay library.

// TextRun is one glyph run decoded from a PDF page.
// Transform is the affine text matrix; only Transform[4] (x) and Transform[5] (y) are read.
type TextRun struct {
	Text      string     `json:"text"`
	Transform [6]float64 `json:"transform"`
	Width     float64    `json:"width"`
}

// X returns the horizontal offset of the run.
func (r TextRun) X() float64 { return r.Transform[4] }

// Y returns the vertical offset of the run.
func (r TextRun) Y() float64 { return r.Transform[5] }

// Element is one classified piece of a screenplay.
// LineNumber is the 1-based index of the first reconstructed line contributing to it.
type Element struct {
	LineNumber int    `json:"line_number"`
	Text       string `json:"text"`
}

// Character groups all dialogue blocks spoken by one (normalized) name.
type Character struct {
	Name     string    `json:"name"`
	Dialogue []Element `json:"dialogue"`
}

// Screenplay is the root aggregate produced by one extraction.
type Screenplay struct {
	SceneHeadings    []Element   `json:"scene_headings"`
	Characters       []Character `json:"characters"`
	ScreenDirections []Element   `json:"screen_directions"`
}

// Empty reports whether nothing was classified.
func (s Screenplay) Empty() bool {
	return len(s.SceneHeadings) == 0 && len(s.Characters) == 0 && len(s.ScreenDirections) == 0
}

// DisplayTag names the presentation category of a display item.
type DisplayTag string

const (
	TagSceneHeading    DisplayTag = "scene_heading"
	TagScreenDirection DisplayTag = "screen_direction"
	TagCharacter       DisplayTag = "character"
	TagDialogue        DisplayTag = "dialogue"
)

// DisplayItem is one entry of the interleaved, line-ordered view.
// Character is set on dialogue items only.
type DisplayItem struct {
	Tag       DisplayTag `json:"tag"`
	Element   Element    `json:"element"`
	Character string     `json:"character,omitempty"`
}

// DisplayStyle is the visual treatment of a tag: a left offset in points and a background.
type DisplayStyle struct {
	Indent     float64 `json:"indent"`
	Background Color   `json:"background"`
}

type Color struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
	A uint8 `json:"a"`
}
