/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"musephoria/internal/commands"
	"musephoria/internal/config"
	"musephoria/internal/crash"
	applog "musephoria/internal/log"
)

func main() {
	// initialize structured logging using environment defaults; the config file
	// may refine it once it has been read
	applog.Init(applog.FromEnv())
	code := run()
	os.Exit(code)
}

func run() int {
	defer crash.Recover(crashDir())
	err := commands.App().Run(os.Args)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	return commands.ExitCode(err)
}

func crashDir() string {
	dir, err := config.Dir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "crash")
}
