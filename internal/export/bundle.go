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
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"musephoria/internal/domain"
	"musephoria/internal/script"
	"musephoria/internal/version"
)

// Bundle is everything produced by one extraction.
type Bundle struct {
	Title      string
	Source     string // original PDF path
	Lines      []string
	Screenplay domain.Screenplay
}

// BundleOptions selects the members of a bundle archive.
// Formats accepts json, text, display, pdf and png; empty means all of them.
type BundleOptions struct {
	Formats []string
	PDF     PDFOptions
	PNG     PNGOptions
}

var bundleFormats = []string{"json", "text", "display", "pdf", "png"}

// bundleManifest is stored as manifest.json next to the exported members.
type bundleManifest struct {
	Title     string         `json:"title"`
	Source    string         `json:"source,omitempty"`
	Generator string         `json:"generator"`
	Created   time.Time      `json:"created"`
	Lines     int            `json:"lines"`
	Summary   script.Summary `json:"summary"`
	Members   []string       `json:"members"`
}

// WriteBundle writes a zip archive with the selected exports and a manifest.
// A missing ".zip" extension is appended; the written path is returned.
func WriteBundle(outPath string, b Bundle, opt BundleOptions) (string, error) {
	formats := opt.Formats
	if len(formats) == 0 {
		formats = bundleFormats
	}
	if !strings.HasSuffix(strings.ToLower(outPath), ".zip") {
		outPath += ".zip"
	}

	var members []bundleMember
	for _, f := range formats {
		switch strings.ToLower(strings.TrimSpace(f)) {
		case "json":
			members = append(members, bundleMember{"screenplay.json", func(buf *bytes.Buffer) error { return WriteJSON(buf, b.Screenplay) }})
		case "text":
			members = append(members, bundleMember{"screenplay.txt", func(buf *bytes.Buffer) error { return WriteText(buf, b.Lines) }})
		case "display":
			members = append(members, bundleMember{"display.json", func(buf *bytes.Buffer) error { return WriteDisplayJSON(buf, script.Render(b.Screenplay)) }})
		case "pdf":
			po := opt.PDF
			if po.Title == "" {
				po.Title = b.Title
			}
			members = append(members, bundleMember{"display.pdf", func(buf *bytes.Buffer) error { return WriteDisplayPDF(buf, script.Render(b.Screenplay), po) }})
		case "png":
			members = append(members, bundleMember{"display.png", func(buf *bytes.Buffer) error { return WriteDisplayPNG(buf, script.Render(b.Screenplay), opt.PNG) }})
		default:
			return "", fmt.Errorf("unknown format: %s", f)
		}
	}

	zw, f, err := createZip(outPath)
	if err != nil {
		return "", err
	}
	man := bundleManifest{
		Title:     b.Title,
		Source:    b.Source,
		Generator: "musephoria " + version.String(),
		Created:   time.Now().UTC(),
		Lines:     len(b.Lines),
		Summary:   script.Stats(b.Screenplay),
	}
	if err := writeBundleMembers(zw, members, man); err != nil {
		_ = f.Close()
		_ = os.Remove(outPath)
		return "", err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(outPath)
		return "", fmt.Errorf("close bundle: %w", err)
	}
	return outPath, nil
}

type bundleMember struct {
	name  string
	write func(*bytes.Buffer) error
}

// writeBundleMembers renders every member into zw, appends the manifest and
// finishes the archive. The caller owns the underlying file.
func writeBundleMembers(zw *zip.Writer, members []bundleMember, man bundleManifest) error {
	buf := &bytes.Buffer{}
	for _, m := range members {
		buf.Reset()
		if err := m.write(buf); err != nil {
			return fmt.Errorf("%s: %w", m.name, err)
		}
		if err := addZipFile(zw, m.name, buf.Bytes()); err != nil {
			return fmt.Errorf("add %s: %w", m.name, err)
		}
		man.Members = append(man.Members, m.name)
	}
	manData, err := json.MarshalIndent(man, "", "  ")
	if err != nil {
		return err
	}
	if err := addZipFile(zw, "manifest.json", manData); err != nil {
		return fmt.Errorf("add manifest: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("close zip: %w", err)
	}
	return nil
}

func createZip(outPath string) (*zip.Writer, *os.File, error) {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return nil, nil, fmt.Errorf("ensure out dir: %w", err)
	}
	f, err := os.Create(outPath)
	if err != nil {
		return nil, nil, fmt.Errorf("create bundle: %w", err)
	}
	return zip.NewWriter(f), f, nil
}

func addZipFile(zw *zip.Writer, name string, data []byte) error {
	w, err := zw.Create(name)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
