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

// The three classifiers below are independent pure functions over the same
// line array. None of them shares state with another.

// atHeadingMargin reports whether line sits exactly on the heading margin and
// returns its trimmed content. One space more or less disqualifies it.
func atHeadingMargin(line string, lay Layout) (string, bool) {
	if leadingSpaces(line) != lay.HeadingIndent {
		return "", false
	}
	trimmed := strings.TrimSpace(line)
	return trimmed, trimmed != ""
}

// SceneHeadings returns every all-caps line on the heading margin.
// Adjacent headings are never merged.
func SceneHeadings(lines []string, lay Layout) []domain.Element {
	out := []domain.Element{}
	for i, line := range lines {
		trimmed, ok := atHeadingMargin(line, lay)
		if !ok || trimmed != strings.ToUpper(trimmed) {
			continue
		}
		out = append(out, domain.Element{LineNumber: i + 1, Text: trimmed})
	}
	return out
}

// ScreenDirections returns the mixed-case lines on the heading margin.
// Consecutive qualifying lines are joined with spaces into the element opened
// by the first of them; any other line closes the open element.
func ScreenDirections(lines []string, lay Layout) []domain.Element {
	out := []domain.Element{}
	var open *domain.Element
	flush := func() {
		if open != nil {
			out = append(out, *open)
			open = nil
		}
	}
	for i, line := range lines {
		trimmed, ok := atHeadingMargin(line, lay)
		if !ok || trimmed == strings.ToUpper(trimmed) {
			flush()
			continue
		}
		if open == nil {
			open = &domain.Element{LineNumber: i + 1, Text: trimmed}
			continue
		}
		open.Text += " " + trimmed
	}
	flush()
	return out
}

// dialogueState is the state of one Characters pass. It lives exactly as long
// as the call; nothing carries over between documents.
type dialogueState struct {
	character string   // current speaker; stays set after a flush
	dialogue  []string // pending dialogue lines
	startLine int      // line number of the first pending line

	characters []domain.Character
	byName     map[string]int
}

func newDialogueState() *dialogueState {
	return &dialogueState{characters: []domain.Character{}, byName: map[string]int{}}
}

// finalize attaches the pending dialogue to the current speaker.
func (s *dialogueState) finalize() {
	if len(s.dialogue) > 0 {
		text := strings.TrimSpace(strings.Join(s.dialogue, " "))
		if text != "" {
			idx, ok := s.byName[s.character]
			if !ok {
				idx = len(s.characters)
				s.byName[s.character] = idx
				s.characters = append(s.characters, domain.Character{Name: s.character, Dialogue: []domain.Element{}})
			}
			c := &s.characters[idx]
			c.Dialogue = append(c.Dialogue, domain.Element{LineNumber: s.startLine, Text: text})
		}
	}
	s.dialogue = s.dialogue[:0]
	s.startLine = 0
}

// step applies one line to the state.
func (s *dialogueState) step(index int, line string, lay Layout) {
	indent := leadingSpaces(line)
	switch {
	case indent >= lay.CharacterIndent:
		s.finalize()
		s.character = speakerName(strings.TrimSpace(line))
	case indent >= lay.DialogueIndent && s.character != "":
		if len(s.dialogue) == 0 {
			s.startLine = index + 1
		}
		s.dialogue = append(s.dialogue, strings.TrimSpace(line))
	default:
		s.finalize()
	}
}

// Characters groups dialogue by speaker in a single left-to-right pass.
//
// A line indented to the character margin names the speaker (a trailing
// "(CONT'D)" is dropped). Following lines on the dialogue margin are collected
// into one block, which is attached to the speaker when any other line or the
// end of the document is reached. The speaker stays current after a block
// ends, so later dialogue lines without a new name line are attributed to it.
func Characters(lines []string, lay Layout) []domain.Character {
	s := newDialogueState()
	for i, line := range lines {
		s.step(i, line, lay)
	}
	s.finalize()
	return s.characters
}
