// Copyright 2026 The mdstore Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config resolves the maildir root, index database path and
// folder list for an account.  Values come from a YAML file with
// environment overrides; every setting has a usable default.
package config

import (
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/d-lightsey/mdstore/internal/homedir"
	"github.com/d-lightsey/mdstore/internal/logger"
)

// Config is the application configuration.
type Config struct {
	// MaildirRoot is the root maildir for the account.  Subfolders
	// live under it as dot-prefixed maildirs.
	MaildirRoot string `yaml:"maildir_root" mapstructure:"maildir_root"`

	// Database is the path of the sqlite message index.
	Database string `yaml:"database" mapstructure:"database"`

	// Folders are the folder names to index.  The empty string names
	// the root maildir itself (the inbox).
	Folders []string `yaml:"folders" mapstructure:"folders"`

	Log logger.Config `yaml:"log" mapstructure:"log"`
}

func setDefaults(v *viper.Viper) {
	home := homedir.Get()
	v.SetDefault("maildir_root", filepath.Join(home, "Maildir"))
	v.SetDefault("database", filepath.Join(home, ".mdstore.db"))
	v.SetDefault("folders", []string{""})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.output", "stderr")
}

func newViper(path string) *viper.Viper {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("MDSTORE")
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

func unmarshal(v *viper.Viper) (*Config, error) {
	if err := v.ReadInConfig(); err != nil {
		// A missing config file falls back to defaults.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(errors.Cause(err)) {
			return nil, errors.Wrap(err, "unable to read config file")
		}
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "unable to parse config")
	}
	return &cfg, nil
}

// Load reads the configuration at path.  A missing file yields the
// defaults.
func Load(path string) (*Config, error) {
	return unmarshal(newViper(path))
}

// LoadAndWatch behaves like Load and additionally re-reads the file on
// change, invoking onChange with the fresh configuration.  Re-read
// failures are logged and skipped; the previous configuration stays in
// effect.
func LoadAndWatch(path string, onChange func(*Config)) (*Config, error) {
	v := newViper(path)
	cfg, err := unmarshal(v)
	if err != nil {
		return nil, err
	}
	v.OnConfigChange(func(e fsnotify.Event) {
		fresh, err := unmarshal(v)
		if err != nil {
			logger.Warn().Err(err).Str("file", e.Name).Msg("ignoring config change")
			return
		}
		onChange(fresh)
	})
	v.WatchConfig()
	return cfg, nil
}
