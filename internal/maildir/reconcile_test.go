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

package maildir

import (
	"os"
	"path/filepath"
	"testing"
)

func writeMessage(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestReconcileSizeCorrects(t *testing.T) {
	dir := t.TempDir()
	// 11 bytes on disk, 0 encoded.
	path := writeMessage(t, dir, "1000.abc.host,S=0:2,DS", "hello world")

	got := ReconcileSize(path)
	want := filepath.Join(dir, "1000.abc.host,S=11:2,DS")
	if got != want {
		t.Errorf("ReconcileSize(%q) = %q, want %q", path, got, want)
	}
	if _, err := os.Stat(want); err != nil {
		t.Errorf("renamed file missing: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("original file still present after rename, stat err = %v", err)
	}
}

func TestReconcileSizeNoOpWhenAccurate(t *testing.T) {
	dir := t.TempDir()
	path := writeMessage(t, dir, "1000.abc.host,S=11:2,DS", "hello world")

	if got := ReconcileSize(path); got != path {
		t.Errorf("ReconcileSize(%q) = %q, want unchanged", path, got)
	}
	// Repeated application after a correction is also stable.
	path = writeMessage(t, dir, "2000.def.host,S=0:2,S", "body")
	once := ReconcileSize(path)
	if twice := ReconcileSize(once); twice != once {
		t.Errorf("second ReconcileSize(%q) = %q, want unchanged", once, twice)
	}
}

func TestReconcileSizePreservesUID(t *testing.T) {
	dir := t.TempDir()
	path := writeMessage(t, dir, "1000.abc.host,S=0,U=42:2,S", "four")

	got := ReconcileSize(path)
	want := filepath.Join(dir, "1000.abc.host,S=4,U=42:2,S")
	if got != want {
		t.Errorf("ReconcileSize(%q) = %q, want %q", path, got, want)
	}
}

func TestReconcileSizePassthrough(t *testing.T) {
	dir := t.TempDir()

	cases := []struct {
		desc string
		path string
	}{
		{"missing file", filepath.Join(dir, "1000.gone.host,S=0:2,")},
		{"undecodable name", writeMessage(t, dir, "notes.txt", "plain file")},
	}
	for _, tc := range cases {
		if got := ReconcileSize(tc.path); got != tc.path {
			t.Errorf("%s: ReconcileSize(%q) = %q, want unchanged", tc.desc, tc.path, got)
		}
	}
}
