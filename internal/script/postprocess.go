/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package script

import (
	"strings"

	"musephoria/internal/domain"
)

// PostProcess runs both post-processing passes on sp in place.
func PostProcess(sp *domain.Screenplay) {
	sp.ScreenDirections = MergeAdjacentDirections(sp.ScreenDirections)
	sp.Characters = NormalizeCharacterNames(sp.Characters)
}

// MergeAdjacentDirections appends an element to the previous output element
// when its line number is exactly one greater. The result is a fixed point:
// applying it again changes nothing. The input slice is not modified.
func MergeAdjacentDirections(in []domain.Element) []domain.Element {
	out := make([]domain.Element, 0, len(in))
	for _, e := range in {
		if n := len(out); n > 0 && e.LineNumber == out[n-1].LineNumber+1 {
			out[n-1].Text += " " + e.Text
			continue
		}
		out = append(out, e)
	}
	return out
}

// NormalizeCharacterNames tidies the whitespace around an embedded
// parenthetical ("JANE(V.O.)" and "JANE  ( V.O.)" both become "JANE (V.O.)").
// Entries whose names become equal are merged, first entry wins the position.
func NormalizeCharacterNames(in []domain.Character) []domain.Character {
	out := make([]domain.Character, 0, len(in))
	byName := make(map[string]int, len(in))
	for _, c := range in {
		name := normalizeParenthetical(c.Name)
		if idx, ok := byName[name]; ok {
			out[idx].Dialogue = append(out[idx].Dialogue, c.Dialogue...)
			continue
		}
		byName[name] = len(out)
		out = append(out, domain.Character{Name: name, Dialogue: append([]domain.Element{}, c.Dialogue...)})
	}
	return out
}

func normalizeParenthetical(name string) string {
	head, rest, found := strings.Cut(name, "(")
	head = strings.TrimSpace(head)
	if !found {
		return head
	}
	return head + " (" + strings.TrimSpace(rest)
}
