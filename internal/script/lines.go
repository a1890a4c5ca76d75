/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package script

import (
	"math"
	"strings"

	"musephoria/internal/domain"
)

// maxGapSpaces bounds the spaces emitted for one horizontal gap. It is far
// wider than any printable page, so it only bites on corrupt coordinates.
const maxGapSpaces = 1024

// ReconstructPage lays the runs of one page out as text lines.
//
// A run whose baseline differs from the previous one by more than half a line
// height starts a new line. The previous baseline starts at zero, so the first
// run of a page normally opens with an empty line, which leaves a blank line
// between consecutive pages. The horizontal gap to the end of the previous run
// (or to the left edge on a fresh line) is rendered as round(gap/SpaceUnit)
// spaces, so column alignment survives even though exact spacing does not.
// A page without runs yields no lines.
func ReconstructPage(runs []domain.TextRun, lay Layout) []string {
	if len(runs) == 0 {
		return nil
	}
	var (
		lines        []string
		cur          strings.Builder
		lastX, lastY float64
	)
	for _, r := range runs {
		if math.Abs(lastY-r.Y()) > lay.LineHeight/2 {
			lines = append(lines, cur.String())
			cur.Reset()
			lastX = 0
		}
		if n := gapSpaces(r.X()-lastX, lay.SpaceUnit); n > 0 {
			cur.WriteString(strings.Repeat(" ", n))
		}
		cur.WriteString(r.Text)
		lastY = r.Y()
		lastX = r.X() + r.Width
	}
	lines = append(lines, cur.String())
	return lines
}

// gapSpaces converts a horizontal gap into a space count. NaN and negative
// gaps give zero; huge ones, infinity included, are capped at maxGapSpaces.
func gapSpaces(gap, unit float64) int {
	if unit <= 0 || math.IsNaN(unit) {
		return 0
	}
	n := math.Round(gap / unit)
	if math.IsNaN(n) || n <= 0 {
		return 0
	}
	if n > maxGapSpaces {
		return maxGapSpaces
	}
	return int(n)
}

// ReconstructDocument reconstructs every page in order and returns the
// document-wide line array. Index i holds line number i+1.
// Runs carrying embedded newlines are split into separate lines.
func ReconstructDocument(pages [][]domain.TextRun, lay Layout) []string {
	var out []string
	for _, runs := range pages {
		for _, line := range ReconstructPage(runs, lay) {
			out = append(out, strings.Split(line, "\n")...)
		}
	}
	return out
}

// SplitLines splits previously exported text back into a line array.
// A trailing newline does not produce an extra empty line.
func SplitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}
