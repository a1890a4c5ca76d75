/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package commands

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"musephoria/internal/config"
)

// envBackedKeys are the config keys that environment variables may override.
var envBackedKeys = []string{"logging.level", "logging.format", "logging.source", "logging.file", "library.path", "library.postgres_dsn"}

func configCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "inspect or create the configuration file",
		Subcommands: []*cli.Command{
			{
				Name:  "show",
				Usage: "print the effective configuration as YAML",
				Action: func(c *cli.Context) error {
					data, err := config.Marshal(appConfig(c))
					if err != nil {
						return err
					}
					w := bufio.NewWriter(c.App.Writer)
					for _, k := range envBackedKeys {
						if env, ok := config.EnvOverrideFor(k); ok {
							fmt.Fprintf(w, "# %s is set by $%s\n", k, env)
						}
					}
					_, _ = w.Write(data)
					return w.Flush()
				},
			},
			{
				Name:  "path",
				Usage: "print the configuration file location",
				Action: func(c *cli.Context) error {
					p, err := configPath(c)
					if err != nil {
						return err
					}
					_, err = fmt.Fprintln(c.App.Writer, p)
					return err
				},
			},
			{
				Name:  "set-password",
				Usage: "store the PostgreSQL mirror password in the OS keyring (read from stdin; empty clears it)",
				Action: func(c *cli.Context) error {
					line, err := bufio.NewReader(c.App.Reader).ReadString('\n')
					if err != nil && !errors.Is(err, io.EOF) {
						return err
					}
					pw := strings.TrimRight(line, "\r\n")
					if err := config.SetPostgresPassword(pw); err != nil {
						return fmt.Errorf("keyring: %w", err)
					}
					msg := "password stored"
					if pw == "" {
						msg = "password cleared"
					}
					_, err = fmt.Fprintln(c.App.ErrWriter, msg)
					return err
				},
			},
			{
				Name:  "init",
				Usage: "write a configuration file with the defaults",
				Flags: []cli.Flag{&cli.BoolFlag{Name: "force", Usage: "overwrite an existing file"}},
				Action: func(c *cli.Context) error {
					p, err := configPath(c)
					if err != nil {
						return err
					}
					if _, err := os.Stat(p); err == nil && !c.Bool("force") {
						return cli.Exit(fmt.Sprintf("%s exists; use --force to overwrite", p), ExitUsage)
					}
					if err := config.Save(config.Defaults(), p); err != nil {
						return err
					}
					_, err = fmt.Fprintln(c.App.Writer, p)
					return err
				},
			},
		},
	}
}

func configPath(c *cli.Context) (string, error) {
	if p := strings.TrimSpace(c.String("config")); p != "" {
		return p, nil
	}
	return config.ConfigPath()
}
