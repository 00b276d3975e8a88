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

	"github.com/pkg/errors"

	"github.com/d-lightsey/mdstore/internal/logger"
)

// SetFlags renames the message at path so its filename carries exactly
// the given flags, re-encoded in canonical form with time, uniqueness
// token, host, size and uid preserved.  Flag changes always land in
// cur/: a message marked from new/ is promoted in the same rename, the
// usual signal between maildir readers that it has been noticed.
//
// When the path already is the canonical cur/ encoding no rename is
// attempted.  SetFlags returns the resulting path.
func (m *Maildir) SetFlags(path string, flags FlagSet) (string, error) {
	if !m.Valid() {
		return "", errors.Errorf("not a maildir: %s", m.path)
	}
	n, err := Parse(filepath.Base(path))
	if err != nil {
		return "", err
	}

	n.Flags = flags
	target := filepath.Join(m.SubdirPath(SubdirCur), n.Encode())
	if target == path {
		return path, nil
	}
	if err := os.Rename(path, target); err != nil {
		return "", errors.Wrapf(err, "unable to rename message to %s", target)
	}

	logger.Debug().
		Str("from", filepath.Base(path)).
		Str("to", filepath.Base(target)).
		Msg("rewrote message flags")
	return target, nil
}
