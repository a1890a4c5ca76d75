package domain

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestEmptyScreenplayEncodesArrays(t *testing.T) {
	sp := Screenplay{SceneHeadings: []Element{}, Characters: []Character{}, ScreenDirections: []Element{}}
	if !sp.Empty() {
		t.Fatalf("expected empty screenplay")
	}
	b, err := json.Marshal(sp)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"scene_headings":[],"characters":[],"screen_directions":[]}`
	if string(b) != want {
		t.Fatalf("json = %s, want %s", b, want)
	}
}

func TestTextRunOffsets(t *testing.T) {
	r := TextRun{Text: "INT.", Transform: [6]float64{12, 0, 0, 12, 108, 700}, Width: 28.8}
	if r.X() != 108 || r.Y() != 700 {
		t.Fatalf("offsets = (%v,%v), want (108,700)", r.X(), r.Y())
	}
}

func TestDisplayItemOmitsCharacterForNonDialogue(t *testing.T) {
	b, err := json.Marshal(DisplayItem{Tag: TagSceneHeading, Element: Element{LineNumber: 1, Text: "INT. KITCHEN - DAY"}})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(b), "character") {
		t.Fatalf("unexpected character field: %s", b)
	}
}
