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
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"

	"github.com/d-lightsey/mdstore/internal/logger"
)

const messageMode = 0600

// stagingCounter distinguishes staging files created by this process
// within the same second.
var stagingCounter uint64

// stagingName returns a throwaway name for a file in tmp/.  It only
// has to be unique while the write is in flight and deliberately does
// not follow the message filename grammar.
func stagingName() string {
	return fmt.Sprintf("%d.%d_%d.%s.tmp",
		time.Now().Unix(), os.Getpid(), atomic.AddUint64(&stagingCounter, 1), encodeHost())
}

// Deliver writes the message content read from r into subdir (new or
// cur) under the given filename, staging it in tmp/ first and moving
// it into place with a single atomic rename.  A concurrent reader of
// the target directory observes either no file or the complete file,
// never a partial one.
//
// On any failure the staging file is removed and the target path is
// never touched.  Deliver returns the delivered path.
func (m *Maildir) Deliver(r io.Reader, subdir, name string) (string, error) {
	if !m.Valid() {
		return "", errors.Errorf("not a maildir: %s", m.path)
	}

	staged := filepath.Join(m.SubdirPath(SubdirTmp), stagingName())
	f, err := os.OpenFile(staged, os.O_WRONLY|os.O_CREATE|os.O_EXCL, messageMode)
	if err != nil {
		return "", errors.Wrapf(err, "unable to create staging file %s", staged)
	}

	_, err = io.Copy(f, r)
	if cerr := f.Close(); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(staged)
		return "", errors.Wrapf(err, "unable to write message to %s", staged)
	}

	target := filepath.Join(m.SubdirPath(subdir), name)
	if err := os.Rename(staged, target); err != nil {
		_ = os.Remove(staged)
		return "", errors.Wrapf(err, "unable to deliver message to %s", target)
	}

	logger.Debug().Str("path", target).Msg("delivered message")
	return target, nil
}
