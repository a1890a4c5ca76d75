/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package script

import (
	"sort"
	"strings"

	"musephoria/internal/domain"
)

// Render merges the classified streams into one display sequence ordered by
// line number. Every dialogue block is preceded by a synthetic character item
// one line above it carrying the upper-cased speaker name. The sort is stable,
// so items on the same line keep their construction order: headings, then
// directions, then character and dialogue pairs.
func Render(sp domain.Screenplay) []domain.DisplayItem {
	n := len(sp.SceneHeadings) + len(sp.ScreenDirections)
	for _, c := range sp.Characters {
		n += 2 * len(c.Dialogue)
	}
	items := make([]domain.DisplayItem, 0, n)
	for _, e := range sp.SceneHeadings {
		items = append(items, domain.DisplayItem{Tag: domain.TagSceneHeading, Element: e})
	}
	for _, e := range sp.ScreenDirections {
		items = append(items, domain.DisplayItem{Tag: domain.TagScreenDirection, Element: e})
	}
	for _, c := range sp.Characters {
		for _, d := range c.Dialogue {
			items = append(items,
				domain.DisplayItem{Tag: domain.TagCharacter, Element: domain.Element{LineNumber: d.LineNumber - 1, Text: strings.ToUpper(c.Name)}},
				domain.DisplayItem{Tag: domain.TagDialogue, Element: d, Character: c.Name},
			)
		}
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Element.LineNumber < items[j].Element.LineNumber
	})
	return items
}

var styles = map[domain.DisplayTag]domain.DisplayStyle{
	domain.TagSceneHeading:    {Indent: 0, Background: domain.Color{R: 230, G: 230, B: 230, A: 255}},
	domain.TagScreenDirection: {Indent: 36, Background: domain.Color{R: 250, G: 250, B: 240, A: 255}},
	domain.TagCharacter:       {Indent: 144, Background: domain.Color{R: 220, G: 235, B: 255, A: 255}},
	domain.TagDialogue:        {Indent: 90, Background: domain.Color{R: 240, G: 248, B: 255, A: 255}},
}

// StyleFor returns the visual treatment of tag. Unknown tags get no indent
// and a white background.
func StyleFor(tag domain.DisplayTag) domain.DisplayStyle {
	if s, ok := styles[tag]; ok {
		return s
	}
	return domain.DisplayStyle{Background: domain.Color{R: 255, G: 255, B: 255, A: 255}}
}
