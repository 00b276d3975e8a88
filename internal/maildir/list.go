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
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// Entry is a listed message: its decoded name plus where it lives.
type Entry struct {
	Name

	// Path is the absolute path of the message file.
	Path string

	// Subdir is the subdirectory of origin, "new" or "cur".
	Subdir string
}

// FlagFilter selects entries by required flag presence.  Flags mapped
// to true must be present in an entry's flag set; flags mapped to
// false are not checked.  A nil or empty filter admits every entry.
type FlagFilter map[rune]bool

func (f FlagFilter) matches(flags FlagSet) bool {
	for c, required := range f {
		if required && !flags.Has(c) {
			return false
		}
	}
	return true
}

// List enumerates the messages in new/ and cur/, newest first.
//
// Hidden entries, subdirectories and filenames that match no maildir
// grammar are skipped silently; interoperating with foreign producers
// means tolerating files this package did not create.  The listing is
// a best-effort snapshot: no lock is held, and a delivery racing the
// scan may or may not be observed.  Entries with equal timestamps have
// no guaranteed relative order.
func (m *Maildir) List(filter FlagFilter) ([]Entry, error) {
	var entries []Entry
	for _, subdir := range []string{SubdirNew, SubdirCur} {
		dir := m.SubdirPath(subdir)
		dirents, err := os.ReadDir(dir)
		if err != nil {
			return nil, errors.Wrapf(err, "unable to scan %s", dir)
		}
		for _, de := range dirents {
			filename := de.Name()
			if de.IsDir() || strings.HasPrefix(filename, ".") {
				continue
			}
			n, err := Parse(filename)
			if err != nil {
				continue
			}
			if !filter.matches(n.Flags) {
				continue
			}
			entries = append(entries, Entry{
				Name:   n,
				Path:   filepath.Join(dir, filename),
				Subdir: subdir,
			})
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Time > entries[j].Time
	})
	return entries, nil
}
