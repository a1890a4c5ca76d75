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
	"reflect"
	"strings"
	"testing"

	"musephoria/internal/domain"
)

func run(text string, x, y, w float64) domain.TextRun {
	return domain.TextRun{Text: text, Transform: [6]float64{1, 0, 0, 1, x, y}, Width: w}
}

func TestReconstructPage(t *testing.T) {
	runs := []domain.TextRun{
		run("INT.", 108, 700, 16),
		run("HOUSE", 128, 700, 20),
		run("Hello", 180, 688, 20),
		run("there", 204.4, 689, 20), // within half a line: same line
	}
	got := ReconstructPage(runs, DefaultLayout())
	want := []string{"", at(27, "INT. HOUSE"), at(45, "Hello there")}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestReconstructPageOverlappingRunsAddNoSpace(t *testing.T) {
	runs := []domain.TextRun{run("AB", 0, 10, 10), run("C", 6, 10, 4)}
	got := ReconstructPage(runs, DefaultLayout())
	if len(got) != 2 || got[0] != "" || got[1] != "ABC" {
		t.Fatalf("got %q", got)
	}
}

func TestReconstructPageBoundsCorruptOffsets(t *testing.T) {
	cases := []struct {
		name string
		runs []domain.TextRun
		want []string
	}{
		{"huge x", []domain.TextRun{run("X", 1e18, 700, 5)}, []string{"", strings.Repeat(" ", maxGapSpaces) + "X"}},
		{"infinite x", []domain.TextRun{run("X", math.Inf(1), 700, 5)}, []string{"", strings.Repeat(" ", maxGapSpaces) + "X"}},
		{"negative infinite x", []domain.TextRun{run("X", math.Inf(-1), 700, 5)}, []string{"", "X"}},
		{"nan x", []domain.TextRun{run("X", math.NaN(), 700, 5), run("Y", 40, 700, 5)}, []string{"", "XY"}},
	}
	for _, tc := range cases {
		got := ReconstructPage(tc.runs, DefaultLayout())
		if !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("%s: got %d lines (first %.40q), want %d", tc.name, len(got), got, len(tc.want))
		}
	}
	lay := DefaultLayout()
	lay.SpaceUnit = 0
	if got := ReconstructPage([]domain.TextRun{run("X", 100, 700, 5)}, lay); !reflect.DeepEqual(got, []string{"", "X"}) {
		t.Fatalf("zero space unit: got %q", got)
	}
}

func TestReconstructEmptyInput(t *testing.T) {
	lay := DefaultLayout()
	if got := ReconstructPage(nil, lay); len(got) != 0 {
		t.Fatalf("ReconstructPage(nil) = %q", got)
	}
	if got := ReconstructDocument([][]domain.TextRun{{}, nil}, lay); len(got) != 0 {
		t.Fatalf("ReconstructDocument(empty pages) = %q", got)
	}
}

func TestReconstructDocumentNumbersAcrossPages(t *testing.T) {
	pages := [][]domain.TextRun{
		{run("ONE", 0, 700, 12), run("TWO", 0, 688, 12)},
		{run("THREE", 0, 700, 20)},
	}
	got := ReconstructDocument(pages, DefaultLayout())
	want := []string{"", "ONE", "TWO", "", "THREE"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestPageBreaksCloseDialogueAndDirections(t *testing.T) {
	pages := [][]domain.TextRun{
		{run("JANE", 252, 700, 16), run("I was saying", 180, 688, 48)},
		{run("nothing at all.", 180, 700, 60), run("She leaves.", 108, 688, 44)},
		{run("The door shuts.", 108, 700, 60)},
	}
	sp, lines := ParseRuns(pages, DefaultLayout())
	wantLines := []string{
		"", at(63, "JANE"), at(45, "I was saying"),
		"", at(45, "nothing at all."), at(27, "She leaves."),
		"", at(27, "The door shuts."),
	}
	if !reflect.DeepEqual(lines, wantLines) {
		t.Fatalf("lines = %q, want %q", lines, wantLines)
	}
	wantChars := []domain.Character{{Name: "JANE", Dialogue: []domain.Element{
		{LineNumber: 3, Text: "I was saying"},
		{LineNumber: 5, Text: "nothing at all."},
	}}}
	if !reflect.DeepEqual(sp.Characters, wantChars) {
		t.Fatalf("characters = %+v, want %+v", sp.Characters, wantChars)
	}
	wantDirs := []domain.Element{{LineNumber: 6, Text: "She leaves."}, {LineNumber: 8, Text: "The door shuts."}}
	if !reflect.DeepEqual(sp.ScreenDirections, wantDirs) {
		t.Fatalf("directions = %+v, want %+v", sp.ScreenDirections, wantDirs)
	}
}

func TestSplitLines(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"a\nb\n", []string{"a", "b"}},
		{"a\r\n\r\nb", []string{"a", "", "b"}},
	}
	for _, tc := range cases {
		if got := SplitLines(tc.in); !reflect.DeepEqual(got, tc.want) {
			t.Errorf("SplitLines(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
