/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package commands implements the musephoria command line.
package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"musephoria/internal/config"
	applog "musephoria/internal/log"
	"musephoria/internal/script"
	"musephoria/internal/version"
)

const cfgKey = "config"

// Exit codes besides 1 (generic failure).
const (
	ExitUsage    = 2
	ExitDecode   = 3
	ExitNotFound = 4
)

// App builds the command line application. Exit codes are returned as
// cli.ExitCoder errors and never acted upon here; main decides how to exit.
func App() *cli.App {
	return &cli.App{
		Name:    "musephoria",
		Usage:   "extract scene headings, directions and dialogue from screenplay PDFs",
		Version: version.String(),
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "config file (default $" + config.EnvConfigFile + " or the user config dir)"},
			&cli.StringFlag{Name: "log-level", Usage: "override logging.level (debug, info, warn, error)"},
		},
		Before:          setup,
		ExitErrHandler:  func(*cli.Context, error) {},
		HideHelpCommand: true,
		Commands: []*cli.Command{
			extractCommand(),
			linesCommand(),
			statsCommand(),
			libraryCommand(),
			configCommand(),
			{
				Name:  "version",
				Usage: "print the version",
				Action: func(c *cli.Context) error {
					_, err := fmt.Fprintln(c.App.Writer, "musephoria", version.String())
					return err
				},
			},
		},
	}
}

// setup loads the configuration and initializes logging.
func setup(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return cli.Exit(err.Error(), ExitUsage)
	}
	if lv := strings.TrimSpace(c.String("log-level")); lv != "" {
		cfg.Logging.Level = strings.ToLower(lv)
	}
	applog.Init(applog.Options{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		AddSource:  cfg.Logging.Source,
		File:       cfg.Logging.File,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
		Console:    c.App.ErrWriter,
	})
	if c.App.Metadata == nil {
		c.App.Metadata = map[string]interface{}{}
	}
	c.App.Metadata[cfgKey] = cfg
	return nil
}

func appConfig(c *cli.Context) config.AppConfig {
	if cfg, ok := c.App.Metadata[cfgKey].(config.AppConfig); ok {
		return cfg
	}
	return config.Defaults()
}

func layoutOf(cfg config.AppConfig) script.Layout {
	return script.Layout{
		LineHeight:      cfg.Layout.LineHeight,
		SpaceUnit:       cfg.Layout.SpaceUnit,
		HeadingIndent:   cfg.Layout.HeadingIndent,
		DialogueIndent:  cfg.Layout.DialogueIndent,
		CharacterIndent: cfg.Layout.CharacterIndent,
	}
}

// requireArg returns the first positional argument or a usage error.
func requireArg(c *cli.Context, name string) (string, error) {
	v := strings.TrimSpace(c.Args().First())
	if v == "" {
		return "", cli.Exit(fmt.Sprintf("%s: missing <%s>", c.Command.Name, name), ExitUsage)
	}
	return v, nil
}

// ExitCode maps an error returned by App().Run to a process exit status.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var ec cli.ExitCoder
	if errors.As(err, &ec) {
		return ec.ExitCode()
	}
	return 1
}
