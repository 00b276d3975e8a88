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

// Package persist keeps a sqlite snapshot of maildir listings.  The
// maildir on disk stays authoritative; this index exists so that a
// session layer can populate message views without re-scanning and
// re-decoding every folder.
package persist

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/d-lightsey/mdstore/internal/maildir"
)

var createTableSql = []string{
	// The messages table mirrors one decoded directory entry per row.
	//
	// Field: folder
	//
	//   The folder name as configured; the empty string is the root
	//   maildir (inbox).
	//
	// Field: filename
	//
	//   The raw on-disk filename.  Renames (flag changes, size
	//   reconciliation) produce a new row on the next refresh.
	//
	// Field: subdir
	//
	//   "new" or "cur", the subdirectory of origin.
	//
	// Field: uid
	//
	//   The synchronizer-assigned uid from the filename's U= field,
	//   or -1 when the filename carries none.
	//
	// Field: flags
	//
	//   The canonical sorted flag string.  Stored serialized; the
	//   decoded set lives only in memory.
	`
CREATE TABLE IF NOT EXISTS messages (
folder TEXT NOT NULL,
filename TEXT NOT NULL,
subdir TEXT NOT NULL,
timestamp INTEGER NOT NULL,
size INTEGER NOT NULL,
uid INTEGER NOT NULL,
flags TEXT NOT NULL,
PRIMARY KEY (folder, filename)
);`,
	// The scans table records the wall-clock time of the last
	// successful refresh per folder.  Refreshes replace a folder's
	// rows wholesale, so a single timestamp per folder is enough.
	`
CREATE TABLE IF NOT EXISTS scans (
folder TEXT NOT NULL PRIMARY KEY,
scanned_at INTEGER NOT NULL
);`,
}

// DB is an open message index.
type DB struct {
	db *sql.DB
}

// Tx is an index transaction.
type Tx struct {
	tx *sql.Tx
}

// Record is one indexed message row.
type Record struct {
	Filename  string
	Subdir    string
	Timestamp int64
	Size      int64
	UID       int64
	Flags     string
}

func dsnFromPath(path string, addValues url.Values) (string, error) {
	var u *url.URL
	if !strings.HasPrefix(path, "file:") {
		u = &url.URL{Scheme: "file", Path: path}
	} else {
		var err error
		u, err = url.Parse(path)
		if err != nil {
			return "", err
		}
	}
	values := u.Query()
	for k, v := range addValues {
		for _, item := range v {
			values.Add(k, item)
		}
	}
	u.RawQuery = values.Encode()
	return u.String(), nil
}

// Open opens (creating if necessary) the index database at path.
func Open(ctx context.Context, path string) (*DB, error) {
	// The _busy_timeout extension controls how long SQLite polls a
	// locked database before giving up.  The 5 second default is too
	// short when a refresh and a reader overlap; go with 5 minutes.
	var busyTimeout = int(5*time.Minute) / int(time.Millisecond)

	dsn, err := dsnFromPath(path, url.Values{
		"_busy_timeout": {fmt.Sprintf("%d", busyTimeout)}})
	if err != nil {
		return nil, errors.Wrapf(err,
			"Open(%q) failed: could not form a DB DSN from the given path", path)
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, errors.Wrapf(err,
			"Open(%q) failed: could not open database at %q", path, dsn)
	}

	if err = initSchema(ctx, db); err != nil {
		db.Close()
		return nil, errors.Wrapf(err,
			"Open(%q) failed: could not initialize the database schema", path)
	}

	return &DB{db}, nil
}

func (db *DB) Close() error {
	return db.db.Close()
}

func (db *DB) Begin(ctx context.Context) (*Tx, error) {
	tx, err := db.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, "begin transaction failed")
	}
	return &Tx{tx}, nil
}

func (tx *Tx) Commit() error {
	return tx.tx.Commit()
}

func (tx *Tx) Rollback() error {
	return tx.tx.Rollback()
}

func initSchema(ctx context.Context, db *sql.DB) error {
	for _, sql := range createTableSql {
		if _, err := db.ExecContext(ctx, sql); err != nil {
			return errors.Wrapf(err, "while executing %q", sql)
		}
	}
	return nil
}

// ClearFolder removes every indexed row for a folder, in preparation
// for a wholesale replacement.
func (tx *Tx) ClearFolder(ctx context.Context, folder string) error {
	const sql = `DELETE FROM messages WHERE folder = $1`
	if _, err := tx.tx.ExecContext(ctx, sql, folder); err != nil {
		return errors.Wrapf(err, "db delete failed for folder %q", folder)
	}
	return nil
}

// InsertEntry records one listed entry for a folder, replacing any
// previous row for the same filename.
func (tx *Tx) InsertEntry(ctx context.Context, folder string, e maildir.Entry) error {
	const sql = `
INSERT OR REPLACE INTO messages
(folder, filename, subdir, timestamp, size, uid, flags)
VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := tx.tx.ExecContext(ctx, sql,
		folder, e.Raw, e.Subdir, e.Time, e.Size, e.UID, e.Flags.String())
	if err != nil {
		return errors.Wrapf(err, "db insert failed for %q", e.Raw)
	}
	return nil
}

// ReplaceFolder swaps a folder's rows for the given entries.
func (tx *Tx) ReplaceFolder(ctx context.Context, folder string, entries []maildir.Entry) error {
	if err := tx.ClearFolder(ctx, folder); err != nil {
		return err
	}
	const sql = `
INSERT INTO messages
(folder, filename, subdir, timestamp, size, uid, flags)
VALUES ($1, $2, $3, $4, $5, $6, $7)`
	insert, err := tx.tx.PrepareContext(ctx, sql)
	if err != nil {
		return errors.Wrap(err, "db prepare statement failed for messages insert")
	}
	defer insert.Close()

	for _, e := range entries {
		_, err := insert.ExecContext(ctx,
			folder, e.Raw, e.Subdir, e.Time, e.Size, e.UID, e.Flags.String())
		if err != nil {
			return errors.Wrapf(err, "db insert failed for %q", e.Raw)
		}
	}
	return nil
}

// ListFolder streams a folder's indexed rows to handler, newest first.
func (tx *Tx) ListFolder(ctx context.Context, folder string, handler func(Record) error) error {
	const sql = `
SELECT filename, subdir, timestamp, size, uid, flags
FROM messages
WHERE folder = $1
ORDER BY timestamp DESC`
	rows, err := tx.tx.QueryContext(ctx, sql, folder)
	if err != nil {
		return errors.Wrap(err, "db query failed in ListFolder")
	}
	defer rows.Close()

	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.Filename, &r.Subdir, &r.Timestamp, &r.Size, &r.UID, &r.Flags); err != nil {
			return errors.Wrap(err, "db scan failed in ListFolder")
		}
		if err := handler(r); err != nil {
			return err
		}
	}
	return errors.Wrap(rows.Err(), "db rows failed in ListFolder")
}

// LastScan returns the unix time of the folder's last successful
// refresh, or 0 when the folder has never been refreshed.
func (tx *Tx) LastScan(ctx context.Context, folder string) (int64, error) {
	const q = `SELECT scanned_at FROM scans WHERE folder = $1`
	row := tx.tx.QueryRowContext(ctx, q, folder)
	var at int64
	if err := row.Scan(&at); err != nil {
		if err == sql.ErrNoRows {
			err = nil // a non-error
		}
		return 0, err
	}
	return at, nil
}

// WriteScan records a successful refresh of folder at the given unix
// time.  Time never moves backwards for a folder.
func (tx *Tx) WriteScan(ctx context.Context, folder string, at int64) error {
	last, err := tx.LastScan(ctx, folder)
	if err != nil {
		return err
	}
	if at < last {
		return fmt.Errorf("attempt to decrease the scan time for folder %q", folder)
	}
	const sql = `INSERT OR REPLACE INTO scans (folder, scanned_at) VALUES ($1, $2)`
	if _, err := tx.tx.ExecContext(ctx, sql, folder, at); err != nil {
		return errors.Wrap(err, "db insert failed")
	}
	return nil
}
