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

// Package maildir is a Maildir-format storage engine.  It encodes and
// decodes the on-disk filename convention carrying message identity,
// size and flags, performs crash-safe staged writes, and lists
// messages with flag-aware filtering.
//
// A maildir owns three subdirectories:
//
//	<root>/
//	  tmp/   -- staging area for in-progress writes
//	  new/   -- delivered, not yet seen
//	  cur/   -- seen and/or flagged
//
// All operations are synchronous and derive their state fresh from the
// filesystem; independent processes may deliver into the same maildir
// concurrently, protected by staged writes and collision-resistant
// names.
package maildir

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// Subdirectory names of a maildir.
const (
	SubdirTmp = "tmp"
	SubdirNew = "new"
	SubdirCur = "cur"
)

const dirMode = 0700

// Maildir represents a single maildir directory.
type Maildir struct {
	path string
}

// New returns a Maildir for the given path.  It does not touch the
// filesystem; use Create to build the structure and Valid to check it.
func New(path string) *Maildir {
	return &Maildir{path: path}
}

// Path returns the maildir root path.
func (m *Maildir) Path() string {
	return m.path
}

// SubdirPath returns the path of one of the maildir subdirectories.
func (m *Maildir) SubdirPath(subdir string) string {
	return filepath.Join(m.path, subdir)
}

// Create builds the tmp/, new/ and cur/ structure.  Creating over an
// existing valid maildir is a no-op success.
func (m *Maildir) Create() error {
	for _, subdir := range []string{SubdirTmp, SubdirNew, SubdirCur} {
		dir := m.SubdirPath(subdir)
		if err := os.MkdirAll(dir, dirMode); err != nil {
			return errors.Wrapf(err, "unable to create maildir directory %s", dir)
		}
	}
	return nil
}

// Valid reports whether the path is a maildir: tmp/, new/ and cur/
// must all exist and be directories.  This is checked, never assumed.
func (m *Maildir) Valid() bool {
	for _, subdir := range []string{SubdirTmp, SubdirNew, SubdirCur} {
		info, err := os.Stat(m.SubdirPath(subdir))
		if err != nil || !info.IsDir() {
			return false
		}
	}
	return true
}
