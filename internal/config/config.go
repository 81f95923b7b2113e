/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"diagramroute/internal/line"
	applog "diagramroute/internal/log"

	"gopkg.in/yaml.v3"
)

// AppConfig is the user-editable configuration persisted to a YAML file in the user scope.
// Environment variables are treated as read-only overrides at runtime.
//
// config_version: bump when the structure changes in a backward-incompatible way.

type EditorConfig struct {
	Zoom          float64            `yaml:"zoom"`
	DefaultLayout line.SegmentLayout `yaml:"default_layout"`
}

type JournalConfig struct {
	SQLitePath   string `yaml:"sqlite_path"` // empty: journal.sqlite next to config.yaml
	PostgresDSN  string `yaml:"postgres_dsn"`
	PostgresUser string `yaml:"postgres_user"`
	ServerAddr   string `yaml:"server_addr"`
	// Password is not stored on disk; it lives in the OS keychain.
}

type ExportConfig struct {
	Format string  `yaml:"format"` // "svg" | "png" | "pdf"
	DPI    float64 `yaml:"dpi"`
	Margin float64 `yaml:"margin"`

	// FontFile is a TTF/OTF used to measure and draw labels. Empty means the
	// built-in 7x13 face.
	FontFile string `yaml:"font_file"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

type AppConfig struct {
	ConfigVersion int           `yaml:"config_version"`
	Editor        EditorConfig  `yaml:"editor"`
	Journal       JournalConfig `yaml:"journal"`
	Export        ExportConfig  `yaml:"export"`
	Logging       LoggingConfig `yaml:"logging"`
}

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		Editor:        EditorConfig{Zoom: 1, DefaultLayout: line.HorizontalVertical},
		Journal:       JournalConfig{ServerAddr: ":8080"},
		Export:        ExportConfig{Format: "svg", DPI: 96, Margin: 20},
		Logging:       LoggingConfig{Level: "info", Format: "console", Source: false, File: ""},
	}
}

// Env var names used as overrides.
const (
	EnvConfigDir     = "DRT_CONFIG_DIR"
	EnvZoom          = "DRT_ZOOM"
	EnvJournalSQLite = "DRT_JOURNAL_SQLITE"
	EnvPostgresDSN   = "DRT_PG_DSN"
	EnvServerAddr    = "DRT_SERVER_ADDR"
	EnvExportFormat  = "DRT_EXPORT_FORMAT"
	EnvExportDPI     = "DRT_EXPORT_DPI"
	EnvServerSecret  = "DRT_SERVER_SECRET"
	// EnvLogLevel Logging envs
	EnvLogLevel  = "DRT_LOG_LEVEL"
	EnvLogFormat = "DRT_LOG_FORMAT"
	EnvLogSource = "DRT_LOG_SOURCE"
	EnvLogFile   = "DRT_LOG_FILE"
)

// ConfigDir returns the per-user config directory. DRT_CONFIG_DIR wins.
func ConfigDir() (string, error) {
	if v := strings.TrimSpace(os.Getenv(EnvConfigDir)); v != "" {
		return v, nil
	}
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" { // fallback
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "DiagramRoute")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "DiagramRoute")
	default: // linux and others
		home := os.Getenv("HOME")
		if home == "" {
			return "", errors.New("cannot resolve config directory")
		}
		base = filepath.Join(home, ".config", "diagramroute")
	}
	return base, nil
}

// ConfigPath returns the per-user config file path.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load reads the user config file (if present), applies defaults, and merges environment overrides.
// The Postgres password is read from the keyring and returned separately.
func Load() (AppConfig, string, error) {
	cfg := Defaults()
	path, err := ConfigPath()
	if err != nil {
		return cfg, "", err
	}
	if data, err := os.ReadFile(path); err == nil {
		var fileCfg AppConfig
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			return cfg, "", fmt.Errorf("parse %s: %w", path, err)
		}
		mergeInto(&cfg, &fileCfg)
	}
	applyEnvOverrides(&cfg)
	pw, _ := PostgresPassword(cfg.Journal.PostgresUser)
	return cfg, pw, nil
}

// Save writes the user config YAML and stores password in the keyring (if non-empty).
func Save(cfg AppConfig, password string) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return err
	}
	if password != "" {
		if err := SetPostgresPassword(cfg.Journal.PostgresUser, password); err != nil {
			return err
		}
	}
	return nil
}

// SQLitePath returns the configured journal file or the default location.
func (c AppConfig) SQLitePath() (string, error) {
	if c.Journal.SQLitePath != "" {
		return c.Journal.SQLitePath, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "journal.sqlite"), nil
}

// PostgresURL returns the DSN with user and password filled in where the DSN
// is a URL that does not carry them. Key/value DSNs are returned unchanged.
func (j JournalConfig) PostgresURL(password string) string {
	u, err := url.Parse(j.PostgresDSN)
	if err != nil || (u.Scheme != "postgres" && u.Scheme != "postgresql") {
		return j.PostgresDSN
	}
	user := j.PostgresUser
	if u.User != nil {
		if _, set := u.User.Password(); set {
			return j.PostgresDSN
		}
		if user == "" {
			user = u.User.Username()
		}
	}
	if user == "" {
		return j.PostgresDSN
	}
	if password == "" {
		u.User = url.User(user)
	} else {
		u.User = url.UserPassword(user, password)
	}
	return u.String()
}

// LogOptions converts the logging section for applog.Init.
func (l LoggingConfig) LogOptions() applog.Options {
	return applog.Options{Level: l.Level, Format: l.Format, AddSource: l.Source, File: l.File}
}

func mergeInto(dst *AppConfig, src *AppConfig) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	if src.Editor.Zoom > 0 {
		dst.Editor.Zoom = src.Editor.Zoom
	}
	dst.Editor.DefaultLayout = src.Editor.DefaultLayout
	if strings.TrimSpace(src.Journal.SQLitePath) != "" {
		dst.Journal.SQLitePath = strings.TrimSpace(src.Journal.SQLitePath)
	}
	if strings.TrimSpace(src.Journal.PostgresDSN) != "" {
		dst.Journal.PostgresDSN = strings.TrimSpace(src.Journal.PostgresDSN)
	}
	if strings.TrimSpace(src.Journal.PostgresUser) != "" {
		dst.Journal.PostgresUser = strings.TrimSpace(src.Journal.PostgresUser)
	}
	if strings.TrimSpace(src.Journal.ServerAddr) != "" {
		dst.Journal.ServerAddr = strings.TrimSpace(src.Journal.ServerAddr)
	}
	if strings.TrimSpace(src.Export.Format) != "" {
		dst.Export.Format = strings.ToLower(strings.TrimSpace(src.Export.Format))
	}
	if src.Export.DPI > 0 {
		dst.Export.DPI = src.Export.DPI
	}
	if src.Export.Margin > 0 {
		dst.Export.Margin = src.Export.Margin
	}
	if strings.TrimSpace(src.Export.FontFile) != "" {
		dst.Export.FontFile = strings.TrimSpace(src.Export.FontFile)
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
}

func truthy(v string) bool {
	lv := strings.ToLower(v)
	return lv == "1" || lv == "true" || lv == "on" || lv == "yes"
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := strings.TrimSpace(os.Getenv(EnvZoom)); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			cfg.Editor.Zoom = f
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvJournalSQLite)); v != "" {
		cfg.Journal.SQLitePath = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvPostgresDSN)); v != "" {
		cfg.Journal.PostgresDSN = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvServerAddr)); v != "" {
		cfg.Journal.ServerAddr = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvExportFormat)); v != "" {
		cfg.Export.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvExportDPI)); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			cfg.Export.DPI = f
		}
	}
	// logging overrides
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogSource)); v != "" {
		cfg.Logging.Source = truthy(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.File = v
	}
}

var envKeys = map[string]string{
	"editor.zoom":          EnvZoom,
	"journal.sqlite_path":  EnvJournalSQLite,
	"journal.postgres_dsn": EnvPostgresDSN,
	"journal.server_addr":  EnvServerAddr,
	"export.format":        EnvExportFormat,
	"export.dpi":           EnvExportDPI,
	"logging.level":        EnvLogLevel,
	"logging.format":       EnvLogFormat,
	"logging.source":       EnvLogSource,
	"logging.file":         EnvLogFile,
}

// EnvOverrideFor returns the env var name if the field is overridden by environment variables.
func EnvOverrideFor(key string) (string, bool) {
	env, ok := envKeys[key]
	if !ok || os.Getenv(env) == "" {
		return "", false
	}
	return env, true
}
