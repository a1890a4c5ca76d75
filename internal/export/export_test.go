/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"musephoria/internal/domain"
	"musephoria/internal/script"
)

func sample() domain.Screenplay {
	return domain.Screenplay{
		SceneHeadings:    []domain.Element{{LineNumber: 1, Text: "INT. KITCHEN - DAY"}},
		ScreenDirections: []domain.Element{{LineNumber: 2, Text: "Jane’s coffee boils over."}},
		Characters: []domain.Character{
			{Name: "JANE", Dialogue: []domain.Element{{LineNumber: 4, Text: "Not again."}}},
		},
	}
}

func TestWriteTextRoundTrip(t *testing.T) {
	lines := []string{"   INT. HOUSE", "", "      Hello"}
	var buf bytes.Buffer
	if err := WriteText(&buf, lines); err != nil {
		t.Fatalf("WriteText: %v", err)
	}
	if got := script.SplitLines(buf.String()); !reflect.DeepEqual(got, lines) {
		t.Fatalf("round trip = %q, want %q", got, lines)
	}
}

func TestWriteJSONValidates(t *testing.T) {
	for _, sp := range []domain.Screenplay{sample(), {}} {
		var buf bytes.Buffer
		if err := WriteJSON(&buf, sp); err != nil {
			t.Fatalf("WriteJSON: %v", err)
		}
		if err := ValidateJSON(buf.Bytes()); err != nil {
			t.Fatalf("ValidateJSON(%s): %v", buf.String(), err)
		}
	}
}

func TestWriteJSONEmptyArrays(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, domain.Screenplay{}); err != nil {
		t.Fatal(err)
	}
	var m map[string][]any
	if err := json.Unmarshal(buf.Bytes(), &m); err != nil {
		t.Fatal(err)
	}
	for _, k := range []string{"scene_headings", "characters", "screen_directions"} {
		if v, ok := m[k]; !ok || v == nil {
			t.Fatalf("%s missing or null in %s", k, buf.String())
		}
	}
}

func TestValidateJSONRejects(t *testing.T) {
	cases := map[string]string{
		"missing key":   `{"scene_headings":[],"characters":[]}`,
		"bad line":      `{"scene_headings":[{"line_number":0,"text":"X"}],"characters":[],"screen_directions":[]}`,
		"empty name":    `{"scene_headings":[],"characters":[{"name":"","dialogue":[]}],"screen_directions":[]}`,
		"unknown field": `{"scene_headings":[],"characters":[],"screen_directions":[],"extra":1}`,
	}
	for name, doc := range cases {
		if err := ValidateJSON([]byte(doc)); err == nil {
			t.Errorf("%s: expected validation error", name)
		}
	}
	if err := ValidateJSON([]byte("{not json")); err == nil {
		t.Errorf("malformed: expected error")
	}
}

func TestWriteDisplayJSONCarriesStyles(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteDisplayJSON(&buf, script.Render(sample())); err != nil {
		t.Fatal(err)
	}
	var out []struct {
		Tag       string              `json:"tag"`
		Character string              `json:"character"`
		Style     domain.DisplayStyle `json:"style"`
	}
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	if len(out) != 4 {
		t.Fatalf("items = %d", len(out))
	}
	last := out[3]
	if last.Tag != string(domain.TagDialogue) || last.Character != "JANE" || last.Style != script.StyleFor(domain.TagDialogue) {
		t.Fatalf("last item = %+v", last)
	}
}

func TestWriteDisplayPDF(t *testing.T) {
	var buf bytes.Buffer
	opt := PDFOptions{Title: "Kitchen", Author: "J. Writer", PageSize: "A4"}
	if err := WriteDisplayPDF(&buf, script.Render(sample()), opt); err != nil {
		t.Fatalf("WriteDisplayPDF: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Fatalf("output is not a pdf: %q", buf.Bytes()[:16])
	}
}

func TestWriteDisplayPDFEmptyAndBadPageSize(t *testing.T) {
	if err := WriteDisplayPDF(io.Discard, nil, PDFOptions{}); err != nil {
		t.Fatalf("empty sequence: %v", err)
	}
	if err := WriteDisplayPDF(io.Discard, nil, PDFOptions{PageSize: "Napkin"}); err == nil {
		t.Fatalf("expected error for unknown page size")
	}
}

func TestWriteBundle(t *testing.T) {
	out := filepath.Join(t.TempDir(), "exports", "kitchen")
	b := Bundle{Title: "Kitchen", Source: "kitchen.pdf", Lines: []string{"a", "b"}, Screenplay: sample()}
	path, err := WriteBundle(out, b, BundleOptions{})
	if err != nil {
		t.Fatalf("WriteBundle: %v", err)
	}
	if !strings.HasSuffix(path, ".zip") {
		t.Fatalf("path = %q", path)
	}
	zr, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("open zip: %v", err)
	}
	defer func() { _ = zr.Close() }()
	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	want := []string{"screenplay.json", "screenplay.txt", "display.json", "display.pdf", "display.png", "manifest.json"}
	if !reflect.DeepEqual(names, want) {
		t.Fatalf("members = %v, want %v", names, want)
	}
	rc, err := zr.Open("manifest.json")
	if err != nil {
		t.Fatalf("open manifest: %v", err)
	}
	defer func() { _ = rc.Close() }()
	var man bundleManifest
	if err := json.NewDecoder(rc).Decode(&man); err != nil {
		t.Fatalf("decode manifest: %v", err)
	}
	if man.Title != "Kitchen" || man.Lines != 2 || man.Summary.DialogueBlocks != 1 || len(man.Members) != 5 {
		t.Fatalf("manifest = %+v", man)
	}
}

func TestWriteBundleRejectsUnknownFormat(t *testing.T) {
	_, err := WriteBundle(filepath.Join(t.TempDir(), "x.zip"), Bundle{}, BundleOptions{Formats: []string{"json", "epub"}})
	if err == nil || !strings.Contains(err.Error(), "unknown format") {
		t.Fatalf("err = %v", err)
	}
}

func TestWriteBundleRemovesPartialArchive(t *testing.T) {
	cases := []struct {
		name string
		opt  BundleOptions
	}{
		{"bad page size", BundleOptions{Formats: []string{"json", "pdf"}, PDF: PDFOptions{PageSize: "Napkin"}}},
		{"bad page size only", BundleOptions{Formats: []string{"pdf"}, PDF: PDFOptions{PageSize: "Napkin"}}},
	}
	for _, tc := range cases {
		out := filepath.Join(t.TempDir(), "broken.zip")
		b := Bundle{Title: "Kitchen", Lines: []string{"a"}, Screenplay: sample()}
		if _, err := WriteBundle(out, b, tc.opt); err == nil || !strings.Contains(err.Error(), "display.pdf") {
			t.Fatalf("%s: err = %v, want display.pdf failure", tc.name, err)
		}
		if _, err := os.Stat(out); !os.IsNotExist(err) {
			t.Fatalf("%s: partial bundle left behind (stat err %v)", tc.name, err)
		}
	}
}

func TestWriteDisplayPNG(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteDisplayPNG(&buf, script.Render(sample()), PNGOptions{}); err != nil {
		t.Fatalf("WriteDisplayPNG: %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	b := img.Bounds()
	if b.Dx() != 816 || b.Dy() <= 48 {
		t.Fatalf("bounds = %v", b)
	}
	// The heading block starts at the padding corner.
	got := color.RGBAModel.Convert(img.At(25, 25)).(color.RGBA)
	if want := (color.RGBA{230, 230, 230, 255}); got != want {
		t.Fatalf("heading background = %v, want %v", got, want)
	}
	if got := color.RGBAModel.Convert(img.At(5, 5)).(color.RGBA); got != (color.RGBA{255, 255, 255, 255}) {
		t.Fatalf("margin = %v, want white", got)
	}
}

func TestWriteDisplayPNGEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteDisplayPNG(&buf, nil, PNGOptions{Width: 100, Padding: 10}); err != nil {
		t.Fatalf("WriteDisplayPNG: %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 100 || b.Dy() != 20 {
		t.Fatalf("bounds = %v, want 100x20", b)
	}
}

func TestWrapText(t *testing.T) {
	face := basicfont.Face7x13
	tests := []struct {
		text string
		cols int
		want []string
	}{
		{"", 10, []string{""}},
		{"short", 10, []string{"short"}},
		{"one two three", 7, []string{"one two", "three"}},
		{"unbreakable-word x", 4, []string{"unbreakable-word", "x"}},
	}
	for _, tt := range tests {
		got := wrapText(face, tt.text, fixed.I(tt.cols*face.Advance))
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("wrapText(%q, %d cols) = %q, want %q", tt.text, tt.cols, got, tt.want)
		}
	}
}
