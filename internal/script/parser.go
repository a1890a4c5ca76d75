/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package script

import (
	"log/slog"

	"musephoria/internal/domain"
	applog "musephoria/internal/log"
)

// Parse classifies a reconstructed line array and post-processes the result.
// It never fails: input without recognizable structure yields a screenplay
// whose three arrays are empty but non-nil.
func Parse(lines []string, lay Layout) domain.Screenplay {
	sp := domain.Screenplay{
		SceneHeadings:    SceneHeadings(lines, lay),
		Characters:       Characters(lines, lay),
		ScreenDirections: ScreenDirections(lines, lay),
	}
	PostProcess(&sp)

	l := applog.WithOperation(applog.WithComponent("script"), "parse")
	l.Debug("classified screenplay",
		slog.Int("lines", len(lines)),
		slog.Int("scene_headings", len(sp.SceneHeadings)),
		slog.Int("screen_directions", len(sp.ScreenDirections)),
		slog.Int("characters", len(sp.Characters)),
	)
	return sp
}

// ParseText parses text previously exported as newline-joined lines.
func ParseText(text string, lay Layout) domain.Screenplay {
	return Parse(SplitLines(text), lay)
}

// ParseRuns reconstructs lines from decoded pages and parses them.
// The reconstructed lines are returned alongside for text export.
func ParseRuns(pages [][]domain.TextRun, lay Layout) (domain.Screenplay, []string) {
	lines := ReconstructDocument(pages, lay)
	return Parse(lines, lay), lines
}
