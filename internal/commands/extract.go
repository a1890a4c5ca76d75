/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package commands

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v2"

	"musephoria/internal/config"
	"musephoria/internal/domain"
	"musephoria/internal/export"
	applog "musephoria/internal/log"
	"musephoria/internal/pdftext"
	"musephoria/internal/script"
)

// document is one extraction input after classification.
type document struct {
	Path       string
	Title      string
	Author     string
	Lines      []string
	Screenplay domain.Screenplay
}

// load decodes and classifies path. Files ending in .txt are read as
// previously exported line text instead of PDF.
func load(c *cli.Context, path string) (document, error) {
	cfg := appConfig(c)
	lay := layoutOf(cfg)
	l := applog.WithDocument(applog.WithOperation(applog.WithComponent("cli"), c.Command.Name), path)
	doc := document{Path: path, Title: strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))}

	if strings.EqualFold(filepath.Ext(path), ".txt") {
		data, err := os.ReadFile(path)
		if err != nil {
			return doc, cli.Exit(fmt.Sprintf("read %s: %v", path, err), ExitDecode)
		}
		doc.Lines = script.SplitLines(string(data))
		doc.Screenplay = script.Parse(doc.Lines, lay)
		return doc, nil
	}

	pd, err := pdftext.Decode(c.Context, path)
	if err != nil {
		l.Error("decode failed", slog.Any("err", err))
		if errors.Is(err, pdftext.ErrEncrypted) {
			return doc, cli.Exit(fmt.Sprintf("%s is password protected", path), ExitDecode)
		}
		return doc, cli.Exit(err.Error(), ExitDecode)
	}
	if pd.Title != "" {
		doc.Title = pd.Title
	}
	doc.Author = pd.Author
	doc.Screenplay, doc.Lines = script.ParseRuns(pd.Pages, lay)
	l.Info("extracted",
		slog.Int("pages", pd.NumPages),
		slog.Int("lines", len(doc.Lines)),
		slog.Int("scene_headings", len(doc.Screenplay.SceneHeadings)),
		slog.Int("characters", len(doc.Screenplay.Characters)),
	)
	if doc.Screenplay.Empty() {
		l.Warn("no screenplay structure recognized")
	}
	return doc, nil
}

// output opens --out, or the app writer when it is empty or "-".
func output(c *cli.Context) (io.Writer, func() error, error) {
	out := strings.TrimSpace(c.String("out"))
	if out == "" || out == "-" {
		return c.App.Writer, func() error { return nil }, nil
	}
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return nil, nil, fmt.Errorf("ensure out dir: %w", err)
	}
	f, err := os.Create(out)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

func pdfOptions(cfg config.AppConfig, doc document) export.PDFOptions {
	return export.PDFOptions{
		PageSize: cfg.Export.PageSize,
		Font:     cfg.Export.Font,
		FontSize: cfg.Export.FontSize,
		Title:    doc.Title,
		Author:   doc.Author,
	}
}

func extractCommand() *cli.Command {
	return &cli.Command{
		Name:      "extract",
		Usage:     "extract a screenplay from a PDF (or exported .txt)",
		ArgsUsage: "<file>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: "json", Usage: "json, text, display, pdf, png or bundle"},
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "output file (stdout when empty; required for bundle)"},
			&cli.BoolFlag{Name: "save", Usage: "also store the result in the library"},
			&cli.StringFlag{Name: "title", Usage: "title override"},
		},
		Action: extractAction,
	}
}

func extractAction(c *cli.Context) error {
	path, err := requireArg(c, "file")
	if err != nil {
		return err
	}
	doc, err := load(c, path)
	if err != nil {
		return err
	}
	if t := strings.TrimSpace(c.String("title")); t != "" {
		doc.Title = t
	}
	cfg := appConfig(c)

	format := strings.ToLower(strings.TrimSpace(c.String("format")))
	if format == "bundle" {
		out := strings.TrimSpace(c.String("out"))
		if out == "" || out == "-" {
			return cli.Exit("extract: bundle needs --out", ExitUsage)
		}
		written, err := export.WriteBundle(out, export.Bundle{Title: doc.Title, Source: doc.Path, Lines: doc.Lines, Screenplay: doc.Screenplay},
			export.BundleOptions{PDF: pdfOptions(cfg, doc)})
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintln(c.App.ErrWriter, "wrote", written); err != nil {
			return err
		}
	} else {
		if err := writeFormat(c, format, doc, cfg); err != nil {
			return err
		}
	}

	if c.Bool("save") {
		id, err := saveToLibrary(c, doc)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(c.App.ErrWriter, "saved as #%d\n", id)
		return err
	}
	return nil
}

func writeFormat(c *cli.Context, format string, doc document, cfg config.AppConfig) error {
	var write func(io.Writer) error
	switch format {
	case "json", "":
		write = func(w io.Writer) error { return export.WriteJSON(w, doc.Screenplay) }
	case "text", "txt":
		write = func(w io.Writer) error { return export.WriteText(w, doc.Lines) }
	case "display":
		write = func(w io.Writer) error { return export.WriteDisplayJSON(w, script.Render(doc.Screenplay)) }
	case "pdf":
		write = func(w io.Writer) error {
			return export.WriteDisplayPDF(w, script.Render(doc.Screenplay), pdfOptions(cfg, doc))
		}
	case "png":
		write = func(w io.Writer) error {
			return export.WriteDisplayPNG(w, script.Render(doc.Screenplay), export.PNGOptions{})
		}
	default:
		return cli.Exit(fmt.Sprintf("unknown format %q", format), ExitUsage)
	}
	w, closeFn, err := output(c)
	if err != nil {
		return err
	}
	if err := write(w); err != nil {
		_ = closeFn()
		return err
	}
	return closeFn()
}

func linesCommand() *cli.Command {
	return &cli.Command{
		Name:      "lines",
		Usage:     "print the reconstructed lines with their line numbers",
		ArgsUsage: "<file>",
		Action: func(c *cli.Context) error {
			path, err := requireArg(c, "file")
			if err != nil {
				return err
			}
			doc, err := load(c, path)
			if err != nil {
				return err
			}
			for i, line := range doc.Lines {
				if _, err := fmt.Fprintf(c.App.Writer, "%5d  %s\n", i+1, line); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func statsCommand() *cli.Command {
	return &cli.Command{
		Name:      "stats",
		Usage:     "summarize headings, directions and dialogue per character",
		ArgsUsage: "<file>",
		Action: func(c *cli.Context) error {
			path, err := requireArg(c, "file")
			if err != nil {
				return err
			}
			doc, err := load(c, path)
			if err != nil {
				return err
			}
			s := script.Stats(doc.Screenplay)
			w := c.App.Writer
			fmt.Fprintf(w, "Title:             %s\n", doc.Title)
			fmt.Fprintf(w, "Lines:             %d\n", len(doc.Lines))
			fmt.Fprintf(w, "Scene headings:    %d\n", s.SceneHeadings)
			fmt.Fprintf(w, "Screen directions: %d\n", s.ScreenDirections)
			fmt.Fprintf(w, "Dialogue blocks:   %d\n", s.DialogueBlocks)
			if len(s.Characters) == 0 {
				return nil
			}
			fmt.Fprintf(w, "\n%-30s %8s %8s\n", "Character", "Blocks", "Words")
			fmt.Fprintln(w, strings.Repeat("-", 48))
			for _, cs := range s.Characters {
				fmt.Fprintf(w, "%-30s %8d %8d\n", cs.Name, cs.Blocks, cs.Words)
			}
			return nil
		},
	}
}
