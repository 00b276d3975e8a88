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

// Package index refreshes the persisted message index from the
// maildirs on disk.  The storage engine itself is synchronous; the
// pipelining and rate limiting around bulk operations live here, at
// the host layer.
package index

import (
	"context"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/d-lightsey/mdstore/internal/logger"
	"github.com/d-lightsey/mdstore/internal/maildir"
	"github.com/d-lightsey/mdstore/internal/persist"
)

// FolderPath resolves a folder name to its maildir path.  The empty
// name is the root maildir itself; other folders live under the root
// as dot-prefixed maildirs, the common Maildir++ convention.
func FolderPath(root, folder string) string {
	if folder == "" {
		return root
	}
	return filepath.Join(root, "."+folder)
}

type folderScan struct {
	folder  string
	entries []maildir.Entry
}

func scanFolders(ctx context.Context, root string, folders []string, scans chan<- folderScan) error {
	defer close(scans)

	for _, folder := range folders {
		md := maildir.New(FolderPath(root, folder))
		if !md.Valid() {
			return errors.Errorf("not a maildir: %s", md.Path())
		}
		entries, err := md.List(nil)
		if err != nil {
			return errors.Wrapf(err, "unable to scan folder %q", folder)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case scans <- folderScan{folder: folder, entries: entries}:
		}
	}
	return nil
}

func saveScans(ctx context.Context, tx *persist.Tx, scans <-chan folderScan) error {
	for scan := range scans {
		if err := tx.ReplaceFolder(ctx, scan.folder, scan.entries); err != nil {
			return err
		}
		if err := tx.WriteScan(ctx, scan.folder, time.Now().Unix()); err != nil {
			return err
		}
		logger.Info().
			Str("folder", scan.folder).
			Int("messages", len(scan.entries)).
			Msg("refreshed folder index")
	}
	return nil
}

// Refresh re-scans the configured folders under root and replaces
// their rows in the index, all within a single transaction: readers
// see either the previous snapshot or the new one.
func Refresh(ctx context.Context, db *persist.DB, root string, folders []string) error {
	tx, err := db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	grp, ctx := errgroup.WithContext(ctx)
	scans := make(chan folderScan, 1)
	grp.Go(func() error {
		return scanFolders(ctx, root, folders, scans)
	})
	grp.Go(func() error {
		return saveScans(ctx, tx, scans)
	})
	if err := grp.Wait(); err != nil {
		return errors.Wrap(err, "failed to refresh index")
	}

	return tx.Commit()
}

const (
	// A sweep stats and may rename every message in an account; the
	// limiter keeps a large mailbox from monopolizing the disk.
	sweepRatePerSecond = 200
	sweepBurst         = 50
)

// Sweep walks every message in the given folders and corrects
// filenames whose encoded size diverges from the file's actual size.
// It returns the number of corrected filenames.  Per-file failures are
// soft (the reconciler leaves the path unchanged); only scan errors
// and cancellation abort the sweep.
func Sweep(ctx context.Context, root string, folders []string) (int, error) {
	limiter := rate.NewLimiter(sweepRatePerSecond, sweepBurst)

	corrected := 0
	for _, folder := range folders {
		md := maildir.New(FolderPath(root, folder))
		entries, err := md.List(nil)
		if err != nil {
			return corrected, errors.Wrapf(err, "unable to sweep folder %q", folder)
		}
		for _, e := range entries {
			if err := limiter.Wait(ctx); err != nil {
				return corrected, err
			}
			if updated := maildir.ReconcileSize(e.Path); updated != e.Path {
				corrected++
			}
		}
	}
	return corrected, nil
}
