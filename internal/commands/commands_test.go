/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jung-kurt/gofpdf"

	"musephoria/internal/config"
	"musephoria/internal/export"
)

type harness struct {
	dir    string
	config string
}

func newHarness(t *testing.T) harness {
	t.Helper()
	for _, k := range []string{config.EnvConfigFile, config.EnvLibraryPath, config.EnvPostgresDSN, config.EnvLogLevel, config.EnvLogFormat, config.EnvLogSource, config.EnvLogFile} {
		t.Setenv(k, "")
	}
	dir := t.TempDir()
	cfg := config.Defaults()
	cfg.Library.Path = filepath.Join(dir, "library.sqlite")
	cfgPath := filepath.Join(dir, "config.yaml")
	if err := config.Save(cfg, cfgPath); err != nil {
		t.Fatalf("save config: %v", err)
	}
	return harness{dir: dir, config: cfgPath}
}

// run executes the app and returns stdout, stderr and the exit code.
func (h harness) run(t *testing.T, args ...string) (string, string, int) {
	t.Helper()
	var out, errOut bytes.Buffer
	app := App()
	app.Writer = &out
	app.ErrWriter = &errOut
	err := app.Run(append([]string{"musephoria", "--config", h.config}, args...))
	return out.String(), errOut.String(), ExitCode(err)
}

// screenplayPDF writes a one-page screenplay in Courier 12 with 12pt leading.
func (h harness) screenplayPDF(t *testing.T) string {
	t.Helper()
	f := gofpdf.New("P", "pt", "Letter", "")
	f.AddPage()
	f.SetFont("Courier", "", 12)
	lines := []struct {
		x    float64
		text string
	}{
		{108, "INT. HOUSE - NIGHT"},
		{108, "Jane waits by the window."},
		{252, "JANE"},
		{180, "Where are you?"},
	}
	y := 100.0
	for _, l := range lines {
		f.Text(l.x, y, l.text)
		y += 12
	}
	path := filepath.Join(h.dir, "house.pdf")
	if err := f.OutputFileAndClose(path); err != nil {
		t.Fatalf("write pdf: %v", err)
	}
	return path
}

func TestVersion(t *testing.T) {
	h := newHarness(t)
	out, _, code := h.run(t, "version")
	if code != 0 || !strings.HasPrefix(out, "musephoria ") {
		t.Fatalf("version = %q (code %d)", out, code)
	}
}

func TestExtractJSON(t *testing.T) {
	h := newHarness(t)
	out, errOut, code := h.run(t, "extract", h.screenplayPDF(t))
	if code != 0 {
		t.Fatalf("exit %d: %s", code, errOut)
	}
	if err := export.ValidateJSON([]byte(out)); err != nil {
		t.Fatalf("output does not validate: %v\n%s", err, out)
	}
	if !strings.Contains(out, `"INT. HOUSE - NIGHT"`) || !strings.Contains(out, `"Where are you?"`) {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestExtractTextRoundTrip(t *testing.T) {
	h := newHarness(t)
	pdfPath := h.screenplayPDF(t)
	txt := filepath.Join(h.dir, "out", "house.txt")
	if _, errOut, code := h.run(t, "extract", "--format", "text", "--out", txt, pdfPath); code != 0 {
		t.Fatalf("text export exit %d: %s", code, errOut)
	}
	fromPDF, _, _ := h.run(t, "extract", pdfPath)
	fromText, errOut, code := h.run(t, "extract", txt)
	if code != 0 {
		t.Fatalf("extract txt exit %d: %s", code, errOut)
	}
	if fromPDF != fromText {
		t.Fatalf("text round trip differs:\n%s\nvs\n%s", fromPDF, fromText)
	}
}

func TestExtractPDFAndBundle(t *testing.T) {
	h := newHarness(t)
	pdfPath := h.screenplayPDF(t)
	out := filepath.Join(h.dir, "display.pdf")
	if _, errOut, code := h.run(t, "extract", "-f", "pdf", "-o", out, pdfPath); code != 0 {
		t.Fatalf("pdf exit %d: %s", code, errOut)
	}
	b, err := os.ReadFile(out)
	if err != nil || !bytes.HasPrefix(b, []byte("%PDF-")) {
		t.Fatalf("display pdf missing or invalid: %v", err)
	}
	png := filepath.Join(h.dir, "display.png")
	if _, errOut, code := h.run(t, "extract", "-f", "png", "-o", png, pdfPath); code != 0 {
		t.Fatalf("png exit %d: %s", code, errOut)
	}
	if b, err := os.ReadFile(png); err != nil || !bytes.HasPrefix(b, []byte("\x89PNG")) {
		t.Fatalf("display png missing or invalid: %v", err)
	}
	if _, _, code := h.run(t, "extract", "-f", "bundle", pdfPath); code != ExitUsage {
		t.Fatalf("bundle without --out exit = %d, want %d", code, ExitUsage)
	}
	_, errOut, code := h.run(t, "extract", "-f", "bundle", "-o", filepath.Join(h.dir, "house"), pdfPath)
	if code != 0 {
		t.Fatalf("bundle exit %d: %s", code, errOut)
	}
	if _, err := os.Stat(filepath.Join(h.dir, "house.zip")); err != nil {
		t.Fatalf("bundle missing: %v", err)
	}
}

func TestExtractErrors(t *testing.T) {
	h := newHarness(t)
	if _, _, code := h.run(t, "extract"); code != ExitUsage {
		t.Fatalf("missing arg exit = %d", code)
	}
	if _, _, code := h.run(t, "extract", filepath.Join(h.dir, "none.pdf")); code != ExitDecode {
		t.Fatalf("missing file exit = %d", code)
	}
	junk := filepath.Join(h.dir, "junk.pdf")
	if err := os.WriteFile(junk, []byte("not a pdf"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, code := h.run(t, "extract", junk); code != ExitDecode {
		t.Fatalf("junk pdf exit = %d", code)
	}
	if _, _, code := h.run(t, "extract", "-f", "docx", h.screenplayPDF(t)); code != ExitUsage {
		t.Fatalf("unknown format exit = %d", code)
	}
}

func TestLinesAndStats(t *testing.T) {
	h := newHarness(t)
	pdfPath := h.screenplayPDF(t)
	out, _, code := h.run(t, "lines", pdfPath)
	if code != 0 || !strings.Contains(out, "    2  "+strings.Repeat(" ", 27)+"INT. HOUSE - NIGHT") {
		t.Fatalf("lines (code %d):\n%s", code, out)
	}
	out, _, code = h.run(t, "stats", pdfPath)
	if code != 0 || !strings.Contains(out, "Dialogue blocks:   1") || !strings.Contains(out, "JANE") {
		t.Fatalf("stats (code %d):\n%s", code, out)
	}
}

func TestLibraryWorkflow(t *testing.T) {
	h := newHarness(t)
	pdfPath := h.screenplayPDF(t)

	out, errOut, code := h.run(t, "library", "add", "--title", "The House", pdfPath)
	if code != 0 || strings.TrimSpace(out) != "1" {
		t.Fatalf("add = %q (code %d): %s", out, code, errOut)
	}
	out, _, _ = h.run(t, "library", "list")
	if !strings.Contains(out, "The House") {
		t.Fatalf("list:\n%s", out)
	}
	out, _, _ = h.run(t, "library", "search", "where")
	if !strings.Contains(out, "#1 The House:5 JANE: [Where] are you?") {
		t.Fatalf("search:\n%s", out)
	}
	out, _, _ = h.run(t, "library", "search", "--character", "jane")
	if !strings.Contains(out, "Where are you?") {
		t.Fatalf("character search:\n%s", out)
	}
	out, _, _ = h.run(t, "library", "show", "-f", "text", "1")
	if !strings.Contains(out, "JANE") {
		t.Fatalf("show text:\n%s", out)
	}
	if _, _, code := h.run(t, "library", "push", "1"); code != ExitUsage {
		t.Fatalf("push without a mirror dsn exit = %d", code)
	}
	if _, _, code := h.run(t, "library", "search", "--remote", "where"); code != ExitUsage {
		t.Fatalf("remote search without a mirror dsn exit = %d", code)
	}
	if _, _, code := h.run(t, "library", "check"); code != 0 {
		t.Fatalf("check exit %d", code)
	}
	if _, _, code := h.run(t, "library", "delete", "1"); code != 0 {
		t.Fatalf("delete exit %d", code)
	}
	if _, _, code := h.run(t, "library", "show", "1"); code != ExitNotFound {
		t.Fatalf("show deleted exit = %d", code)
	}
	if _, _, code := h.run(t, "library", "show", "abc"); code != ExitUsage {
		t.Fatalf("show bad id exit = %d", code)
	}
}

func TestExtractSave(t *testing.T) {
	h := newHarness(t)
	_, errOut, code := h.run(t, "extract", "--save", "-o", filepath.Join(h.dir, "x.json"), h.screenplayPDF(t))
	if code != 0 || !strings.Contains(errOut, "saved as #1") {
		t.Fatalf("extract --save (code %d): %s", code, errOut)
	}
}

func TestConfigCommands(t *testing.T) {
	h := newHarness(t)
	out, _, code := h.run(t, "config", "path")
	if code != 0 || strings.TrimSpace(out) != h.config {
		t.Fatalf("config path = %q", out)
	}
	t.Setenv(config.EnvLogLevel, "debug")
	out, _, _ = h.run(t, "config", "show")
	if !strings.Contains(out, "# logging.level is set by $MUSE_LOG_LEVEL") || !strings.Contains(out, "heading_indent: 27") {
		t.Fatalf("config show:\n%s", out)
	}
	if _, _, code := h.run(t, "config", "init"); code != ExitUsage {
		t.Fatalf("init over existing file exit = %d", code)
	}
	if _, _, code := h.run(t, "config", "init", "--force"); code != 0 {
		t.Fatalf("init --force exit = %d", code)
	}
}

func TestBrokenConfigIsUsageError(t *testing.T) {
	h := newHarness(t)
	if err := os.WriteFile(h.config, []byte("layout: [oops"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, _, code := h.run(t, "version"); code != ExitUsage {
		t.Fatalf("exit = %d, want %d", code, ExitUsage)
	}
}
