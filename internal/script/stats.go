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

// CharacterStats summarizes one speaker.
type CharacterStats struct {
	Name   string `json:"name"`
	Blocks int    `json:"blocks"`
	Words  int    `json:"words"`
}

// Summary holds element counts of a screenplay.
type Summary struct {
	SceneHeadings    int              `json:"scene_headings"`
	ScreenDirections int              `json:"screen_directions"`
	DialogueBlocks   int              `json:"dialogue_blocks"`
	Characters       []CharacterStats `json:"characters"`
}

// Stats counts elements per category and dialogue per speaker.
// Speakers are ordered by word count, most talkative first; ties keep their
// order of first appearance.
func Stats(sp domain.Screenplay) Summary {
	s := Summary{
		SceneHeadings:    len(sp.SceneHeadings),
		ScreenDirections: len(sp.ScreenDirections),
		Characters:       make([]CharacterStats, 0, len(sp.Characters)),
	}
	for _, c := range sp.Characters {
		cs := CharacterStats{Name: c.Name, Blocks: len(c.Dialogue)}
		for _, d := range c.Dialogue {
			cs.Words += len(strings.Fields(d.Text))
		}
		s.DialogueBlocks += cs.Blocks
		s.Characters = append(s.Characters, cs)
	}
	sort.SliceStable(s.Characters, func(i, j int) bool { return s.Characters[i].Words > s.Characters[j].Words })
	return s
}
