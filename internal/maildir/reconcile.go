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

	"github.com/d-lightsey/mdstore/internal/logger"
)

// ReconcileSize corrects the S= field of a filename when it diverges
// from the file's actual byte size, renaming the file to the canonical
// re-encoding with time, uniqueness token, host and flags preserved.
// It returns the possibly-updated path.
//
// A stale encoded size is a soft-consistency issue, not data loss:
// every failure mode (missing file, undecodable name, failed rename)
// silently returns the input path unchanged.  When the sizes already
// agree no rename is attempted, so repeated calls are no-ops.
func ReconcileSize(path string) string {
	info, err := os.Stat(path)
	if err != nil {
		return path
	}
	n, err := Parse(filepath.Base(path))
	if err != nil {
		return path
	}
	if n.Size == info.Size() {
		return path
	}

	n.Size = info.Size()
	updated := filepath.Join(filepath.Dir(path), n.Encode())
	if err := os.Rename(path, updated); err != nil {
		return path
	}

	logger.Debug().
		Str("from", filepath.Base(path)).
		Str("to", filepath.Base(updated)).
		Msg("corrected encoded message size")
	return updated
}
