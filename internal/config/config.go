/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// AppConfig is the user-editable configuration persisted to a YAML file in the user scope.
// Environment variables are treated as read-only overrides at runtime.
//
// config_version: bump when the structure changes in a backward-incompatible way.
// Unknown fields are ignored on unmarshal.

type LoggingConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"`
	Source     bool   `yaml:"source"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// LayoutConfig holds the column heuristics of the screenplay template.
// Indents are counted in reconstructed space characters.
type LayoutConfig struct {
	LineHeight      float64 `yaml:"line_height"`
	SpaceUnit       float64 `yaml:"space_unit"`
	HeadingIndent   int     `yaml:"heading_indent"`
	DialogueIndent  int     `yaml:"dialogue_indent"`
	CharacterIndent int     `yaml:"character_indent"`
}

type ExportConfig struct {
	PageSize string  `yaml:"page_size"` // "Letter" or "A4"
	Font     string  `yaml:"font"`
	FontSize float64 `yaml:"font_size"`
}

type LibraryConfig struct {
	Path string `yaml:"path"` // SQLite file; empty means <config dir>/library.sqlite
	// PostgresDSN names the shared mirror, e.g. postgres://user@host/musephoria.
	// The password is kept in the OS keyring, never in this file.
	PostgresDSN string `yaml:"postgres_dsn"`
}

type AppConfig struct {
	ConfigVersion int           `yaml:"config_version"`
	Logging       LoggingConfig `yaml:"logging"`
	Layout        LayoutConfig  `yaml:"layout"`
	Export        ExportConfig  `yaml:"export"`
	Library       LibraryConfig `yaml:"library"`
}

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		Logging:       LoggingConfig{Level: "info", Format: "console"},
		Layout: LayoutConfig{
			LineHeight:      12,
			SpaceUnit:       4,
			HeadingIndent:   27,
			DialogueIndent:  45,
			CharacterIndent: 63,
		},
		Export: ExportConfig{PageSize: "Letter", Font: "Courier", FontSize: 12},
	}
}

// Env var names used as overrides.
const (
	EnvConfigFile  = "MUSE_CONFIG"
	EnvLibraryPath = "MUSE_LIBRARY"
	EnvPostgresDSN = "MUSE_PG_DSN"
	EnvLogLevel    = "MUSE_LOG_LEVEL"
	EnvLogFormat   = "MUSE_LOG_FORMAT"
	EnvLogSource   = "MUSE_LOG_SOURCE"
	EnvLogFile     = "MUSE_LOG_FILE"
)

// Dir returns the per-user configuration directory.
func Dir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil || base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return filepath.Join(base, "musephoria"), nil
}

// ConfigPath returns the config file path: $MUSE_CONFIG if set, else <Dir>/config.yaml.
func ConfigPath() (string, error) {
	if v := strings.TrimSpace(os.Getenv(EnvConfigFile)); v != "" {
		return v, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load reads the config file at path (or ConfigPath when empty), applies defaults,
// and merges environment overrides. A missing file is not an error; a malformed one is.
func Load(path string) (AppConfig, error) {
	cfg := Defaults()
	if strings.TrimSpace(path) == "" {
		p, err := ConfigPath()
		if err != nil {
			applyEnvOverrides(&cfg)
			return cfg, err
		}
		path = p
	}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	default:
		var fileCfg AppConfig
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
		mergeInto(&cfg, &fileCfg)
	}
	applyEnvOverrides(&cfg)
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg as YAML to path (or ConfigPath when empty).
func Save(cfg AppConfig, path string) error {
	if strings.TrimSpace(path) == "" {
		p, err := ConfigPath()
		if err != nil {
			return err
		}
		path = p
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// Marshal renders cfg as YAML, e.g. for "config show".
func Marshal(cfg AppConfig) ([]byte, error) { return yaml.Marshal(cfg) }

// Validate rejects layouts the classifiers cannot work with.
func (c AppConfig) Validate() error {
	l := c.Layout
	if l.LineHeight <= 0 || l.SpaceUnit <= 0 {
		return errors.New("layout.line_height and layout.space_unit must be positive")
	}
	if l.HeadingIndent <= 0 || l.DialogueIndent <= l.HeadingIndent || l.CharacterIndent <= l.DialogueIndent {
		return fmt.Errorf("layout indents must increase: heading %d < dialogue %d < character %d",
			l.HeadingIndent, l.DialogueIndent, l.CharacterIndent)
	}
	if c.Export.FontSize <= 0 {
		return errors.New("export.font_size must be positive")
	}
	return nil
}

// LibraryPath resolves the library database location.
func (c AppConfig) LibraryPath() (string, error) {
	if p := strings.TrimSpace(c.Library.Path); p != "" {
		return p, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "library.sqlite"), nil
}

func mergeInto(dst *AppConfig, src *AppConfig) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	// logging
	if strings.TrimSpace(src.Logging.Level) != "" {
		dst.Logging.Level = strings.ToLower(strings.TrimSpace(src.Logging.Level))
	}
	if strings.TrimSpace(src.Logging.Format) != "" {
		dst.Logging.Format = strings.ToLower(strings.TrimSpace(src.Logging.Format))
	}
	dst.Logging.Source = src.Logging.Source
	if strings.TrimSpace(src.Logging.File) != "" {
		dst.Logging.File = strings.TrimSpace(src.Logging.File)
	}
	if src.Logging.MaxSizeMB > 0 {
		dst.Logging.MaxSizeMB = src.Logging.MaxSizeMB
	}
	if src.Logging.MaxBackups > 0 {
		dst.Logging.MaxBackups = src.Logging.MaxBackups
	}
	if src.Logging.MaxAgeDays > 0 {
		dst.Logging.MaxAgeDays = src.Logging.MaxAgeDays
	}
	// layout: zero means "keep default"
	if src.Layout.LineHeight > 0 {
		dst.Layout.LineHeight = src.Layout.LineHeight
	}
	if src.Layout.SpaceUnit > 0 {
		dst.Layout.SpaceUnit = src.Layout.SpaceUnit
	}
	if src.Layout.HeadingIndent > 0 {
		dst.Layout.HeadingIndent = src.Layout.HeadingIndent
	}
	if src.Layout.DialogueIndent > 0 {
		dst.Layout.DialogueIndent = src.Layout.DialogueIndent
	}
	if src.Layout.CharacterIndent > 0 {
		dst.Layout.CharacterIndent = src.Layout.CharacterIndent
	}
	// export
	if strings.TrimSpace(src.Export.PageSize) != "" {
		dst.Export.PageSize = strings.TrimSpace(src.Export.PageSize)
	}
	if strings.TrimSpace(src.Export.Font) != "" {
		dst.Export.Font = strings.TrimSpace(src.Export.Font)
	}
	if src.Export.FontSize > 0 {
		dst.Export.FontSize = src.Export.FontSize
	}
	if strings.TrimSpace(src.Library.Path) != "" {
		dst.Library.Path = strings.TrimSpace(src.Library.Path)
	}
	if strings.TrimSpace(src.Library.PostgresDSN) != "" {
		dst.Library.PostgresDSN = strings.TrimSpace(src.Library.PostgresDSN)
	}
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := strings.TrimSpace(os.Getenv(EnvLibraryPath)); v != "" {
		cfg.Library.Path = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvPostgresDSN)); v != "" {
		cfg.Library.PostgresDSN = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogSource)); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Logging.Source = b
		} else {
			lv := strings.ToLower(v)
			cfg.Logging.Source = lv == "on" || lv == "yes"
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.File = v
	}
}

// EnvOverrideFor returns the env var name if the field is overridden by environment variables.
func EnvOverrideFor(key string) (string, bool) {
	var env string
	switch key {
	case "library.path":
		env = EnvLibraryPath
	case "library.postgres_dsn":
		env = EnvPostgresDSN
	case "logging.level":
		env = EnvLogLevel
	case "logging.format":
		env = EnvLogFormat
	case "logging.source":
		env = EnvLogSource
	case "logging.file":
		env = EnvLogFile
	default:
		return "", false
	}
	if os.Getenv(env) == "" {
		return "", false
	}
	return env, true
}
