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

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/d-lightsey/mdstore/internal/logger"
)

func TestLoadDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := Load(filepath.Join(home, "no-such-config.yaml"))
	if err != nil {
		t.Fatalf("Load on a missing file = %v, want nil", err)
	}
	want := &Config{
		MaildirRoot: filepath.Join(home, "Maildir"),
		Database:    filepath.Join(home, ".mdstore.db"),
		Folders:     []string{""},
		Log:         logger.Config{Level: "info", Format: "text", Output: "stderr"},
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("Load defaults mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	path := filepath.Join(t.TempDir(), "mdstore.yaml")
	content := `
maildir_root: /srv/mail
database: /srv/mail/index.db
folders:
  - ""
  - archive
log:
  level: debug
  format: json
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load(%q) = %v, want nil", path, err)
	}
	if cfg.MaildirRoot != "/srv/mail" {
		t.Errorf("MaildirRoot = %q, want /srv/mail", cfg.MaildirRoot)
	}
	if cfg.Database != "/srv/mail/index.db" {
		t.Errorf("Database = %q, want /srv/mail/index.db", cfg.Database)
	}
	if diff := cmp.Diff([]string{"", "archive"}, cfg.Folders); diff != "" {
		t.Errorf("Folders mismatch (-want +got):\n%s", diff)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Errorf("Log = %#v, want level debug, format json", cfg.Log)
	}
	// Unset file values keep their defaults.
	if cfg.Log.Output != "stderr" {
		t.Errorf("Log.Output = %q, want the stderr default", cfg.Log.Output)
	}
}

func TestLoadAndWatch(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	path := filepath.Join(t.TempDir(), "mdstore.yaml")
	if err := os.WriteFile(path, []byte("maildir_root: /one\n"), 0600); err != nil {
		t.Fatal(err)
	}

	changes := make(chan *Config, 4)
	cfg, err := LoadAndWatch(path, func(fresh *Config) { changes <- fresh })
	if err != nil {
		t.Fatalf("LoadAndWatch(%q) = %v, want nil", path, err)
	}
	if cfg.MaildirRoot != "/one" {
		t.Fatalf("initial MaildirRoot = %q, want /one", cfg.MaildirRoot)
	}

	if err := os.WriteFile(path, []byte("maildir_root: /two\n"), 0600); err != nil {
		t.Fatal(err)
	}

	// The watcher may deliver several events per write; wait for the
	// one carrying the new value.
	deadline := time.After(10 * time.Second)
	for {
		select {
		case fresh := <-changes:
			if fresh.MaildirRoot == "/two" {
				return
			}
		case <-deadline:
			t.Fatal("no config change observed after rewrite")
		}
	}
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	path := filepath.Join(t.TempDir(), "mdstore.yaml")
	if err := os.WriteFile(path, []byte("maildir_root: [unclosed"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Load on malformed YAML = nil error, want non-nil")
	}
}
