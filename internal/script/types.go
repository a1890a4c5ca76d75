/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package script turns positioned PDF text runs into a structured screenplay.
//
// The source PDFs follow a fixed screenplay template, so structure is read from
// indentation alone: runs are laid out into monospace-like lines, then three
// independent classifiers pick scene headings, screen directions and
// character dialogue by their leading-space band. Everything here is pure and
// synchronous; callers decode the PDF first.
package script

// Layout holds the column heuristics of the screenplay template.
// Indents are counted in reconstructed space characters.
type Layout struct {
	// LineHeight is the vertical distance of one text line; runs whose
	// baseline moves more than half of it start a new line.
	LineHeight float64
	// SpaceUnit is the horizontal distance rendered as one space.
	SpaceUnit float64

	HeadingIndent   int // exact indent of scene headings and screen directions
	DialogueIndent  int // minimum indent of dialogue lines
	CharacterIndent int // minimum indent of character name lines
}

// DefaultLayout returns the layout of the standard screenplay template.
func DefaultLayout() Layout {
	return Layout{
		LineHeight:      12,
		SpaceUnit:       4,
		HeadingIndent:   27,
		DialogueIndent:  45,
		CharacterIndent: 63,
	}
}

// leadingSpaces counts the space characters before the first other character.
func leadingSpaces(line string) int {
	n := 0
	for n < len(line) && line[n] == ' ' {
		n++
	}
	return n
}
