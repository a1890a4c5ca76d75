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
	"log/slog"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"

	"musephoria/internal/backend"
	"musephoria/internal/config"
	"musephoria/internal/export"
	applog "musephoria/internal/log"
	"musephoria/internal/script"
	"musephoria/internal/storage"
)

func openLibrary(c *cli.Context) (*storage.Library, error) {
	path, err := appConfig(c).LibraryPath()
	if err != nil {
		return nil, err
	}
	return storage.OpenLibrary(path)
}

func saveToLibrary(c *cli.Context, doc document) (int64, error) {
	lib, err := openLibrary(c)
	if err != nil {
		return 0, err
	}
	defer func() { _ = lib.Close() }()
	return lib.Save(c.Context, storage.Record{Title: doc.Title, Source: doc.Path, Lines: doc.Lines, Screenplay: doc.Screenplay})
}

// withLibrary runs fn with an open library.
func withLibrary(fn func(c *cli.Context, lib *storage.Library) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		lib, err := openLibrary(c)
		if err != nil {
			return fmt.Errorf("failed to open library: %w", err)
		}
		defer func() { _ = lib.Close() }()
		return fn(c, lib)
	}
}

// openMirror connects to library.postgres_dsn with the password from the keyring.
func openMirror(c *cli.Context) (*backend.Mirror, error) {
	dsn := strings.TrimSpace(appConfig(c).Library.PostgresDSN)
	if dsn == "" {
		return nil, cli.Exit("library.postgres_dsn is not set (config file or $"+config.EnvPostgresDSN+")", ExitUsage)
	}
	pw, err := config.PostgresPassword()
	if err != nil && !errors.Is(err, config.ErrNoPassword) {
		applog.WithComponent("cli").Warn("keyring unavailable", slog.Any("err", err))
	}
	m, err := backend.Open(c.Context, backend.DSNWithPassword(dsn, pw))
	if err != nil {
		return nil, fmt.Errorf("failed to open mirror: %w", err)
	}
	return m, nil
}

func printHits(c *cli.Context, hits []storage.DialogueHit) error {
	for _, h := range hits {
		text := h.Snippet
		if text == "" {
			text = h.Text
		}
		if _, err := fmt.Fprintf(c.App.Writer, "#%d %s:%d %s: %s\n", h.ScreenplayID, h.Title, h.LineNumber, h.Character, text); err != nil {
			return err
		}
	}
	return nil
}

func printListing(c *cli.Context, items []storage.Listing) error {
	w := c.App.Writer
	if len(items) == 0 {
		_, err := fmt.Fprintln(w, "No screenplays stored")
		return err
	}
	fmt.Fprintf(w, "%-6s %-20s %-30s %8s %8s %8s\n", "ID", "Created", "Title", "Scenes", "Chars", "Blocks")
	fmt.Fprintln(w, strings.Repeat("-", 86))
	for _, it := range items {
		fmt.Fprintf(w, "%-6d %-20s %-30s %8d %8d %8d\n",
			it.ID, it.CreatedAt.Local().Format("2006-01-02 15:04:05"), it.Title,
			it.SceneHeadings, it.Characters, it.DialogueBlocks)
	}
	return nil
}

func idArg(c *cli.Context) (int64, error) {
	s, err := requireArg(c, "id")
	if err != nil {
		return 0, err
	}
	id, err := strconv.ParseInt(strings.TrimPrefix(s, "#"), 10, 64)
	if err != nil || id <= 0 {
		return 0, cli.Exit(fmt.Sprintf("invalid id %q", s), ExitUsage)
	}
	return id, nil
}

func notFound(err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return cli.Exit(err.Error(), ExitNotFound)
	}
	return err
}

func libraryCommand() *cli.Command {
	return &cli.Command{
		Name:  "library",
		Usage: "manage stored screenplays",
		Subcommands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "extract a file and store the result",
				ArgsUsage: "<file>",
				Flags:     []cli.Flag{&cli.StringFlag{Name: "title", Usage: "title override"}},
				Action: func(c *cli.Context) error {
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
					id, err := saveToLibrary(c, doc)
					if err != nil {
						return err
					}
					_, err = fmt.Fprintf(c.App.Writer, "%d\n", id)
					return err
				},
			},
			{
				Name:  "list",
				Usage: "list stored screenplays, newest first",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "limit", Value: 50},
					&cli.BoolFlag{Name: "remote", Usage: "list the PostgreSQL mirror instead"},
				},
				Action: func(c *cli.Context) error {
					if c.Bool("remote") {
						m, err := openMirror(c)
						if err != nil {
							return err
						}
						defer func() { _ = m.Close() }()
						items, err := m.List(c.Context, c.Int("limit"))
						if err != nil {
							return err
						}
						return printListing(c, items)
					}
					return withLibrary(func(c *cli.Context, lib *storage.Library) error {
						items, err := lib.List(c.Context, c.Int("limit"))
						if err != nil {
							return err
						}
						return printListing(c, items)
					})(c)
				},
			},
			{
				Name:      "show",
				Usage:     "print a stored screenplay",
				ArgsUsage: "<id>",
				Flags:     []cli.Flag{&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: "json", Usage: "json, text or display"}},
				Action: withLibrary(func(c *cli.Context, lib *storage.Library) error {
					id, err := idArg(c)
					if err != nil {
						return err
					}
					e, err := lib.Get(c.Context, id)
					if err != nil {
						return notFound(err)
					}
					switch strings.ToLower(c.String("format")) {
					case "json":
						return export.WriteJSON(c.App.Writer, e.Screenplay)
					case "text", "txt":
						return export.WriteText(c.App.Writer, e.Lines)
					case "display":
						return export.WriteDisplayJSON(c.App.Writer, script.Render(e.Screenplay))
					default:
						return cli.Exit(fmt.Sprintf("unknown format %q", c.String("format")), ExitUsage)
					}
				}),
			},
			{
				Name:      "search",
				Usage:     "full-text search over stored dialogue",
				ArgsUsage: "[query]",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "character", Usage: "only dialogue of this character"},
					&cli.IntFlag{Name: "limit", Value: 100},
					&cli.BoolFlag{Name: "remote", Usage: "search the PostgreSQL mirror instead"},
				},
				Action: func(c *cli.Context) error {
					q := storage.DialogueQuery{
						Text:      strings.Join(c.Args().Slice(), " "),
						Character: c.String("character"),
						Limit:     c.Int("limit"),
					}
					if strings.TrimSpace(q.Text) == "" && strings.TrimSpace(q.Character) == "" {
						return cli.Exit("search: give a query or --character", ExitUsage)
					}
					if c.Bool("remote") {
						m, err := openMirror(c)
						if err != nil {
							return err
						}
						defer func() { _ = m.Close() }()
						hits, err := m.SearchDialogue(c.Context, q)
						if err != nil {
							return err
						}
						return printHits(c, hits)
					}
					return withLibrary(func(c *cli.Context, lib *storage.Library) error {
						hits, err := lib.SearchDialogue(c.Context, q)
						if err != nil {
							return err
						}
						return printHits(c, hits)
					})(c)
				},
			},
			{
				Name:      "delete",
				Usage:     "remove a stored screenplay",
				ArgsUsage: "<id>",
				Action: withLibrary(func(c *cli.Context, lib *storage.Library) error {
					id, err := idArg(c)
					if err != nil {
						return err
					}
					return notFound(lib.Delete(c.Context, id))
				}),
			},
			{
				Name:      "push",
				Usage:     "copy a stored screenplay into the PostgreSQL mirror",
				ArgsUsage: "<id>",
				Action: withLibrary(func(c *cli.Context, lib *storage.Library) error {
					id, err := idArg(c)
					if err != nil {
						return err
					}
					e, err := lib.Get(c.Context, id)
					if err != nil {
						return notFound(err)
					}
					m, err := openMirror(c)
					if err != nil {
						return err
					}
					defer func() { _ = m.Close() }()
					remote, err := m.Push(c.Context, e)
					if err != nil {
						return err
					}
					_, err = fmt.Fprintf(c.App.Writer, "%d\n", remote)
					return err
				}),
			},
			{
				Name:  "check",
				Usage: "verify the library database and optimize the search index",
				Flags: []cli.Flag{&cli.BoolFlag{Name: "rebuild", Usage: "rebuild the search index from stored dialogue"}},
				Action: withLibrary(func(c *cli.Context, lib *storage.Library) error {
					if err := lib.Check(c.Context); err != nil {
						return err
					}
					if c.Bool("rebuild") {
						if err := lib.RebuildSearchIndex(c.Context); err != nil {
							return err
						}
					}
					if err := lib.Optimize(c.Context); err != nil {
						return err
					}
					_, err := fmt.Fprintln(c.App.Writer, "ok")
					return err
				}),
			},
			{
				Name:  "backup",
				Usage: "copy the library database into its backups directory",
				Action: withLibrary(func(c *cli.Context, lib *storage.Library) error {
					path, err := lib.Backup(c.Context)
					if err != nil {
						return err
					}
					_, err = fmt.Fprintln(c.App.Writer, path)
					return err
				}),
			},
		},
	}
}
