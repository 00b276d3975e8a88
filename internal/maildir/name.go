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

// This file implements the filename codec.  Maildir has no single
// canonical filename grammar: strict writers emit
// <ts>.<unique>.<host>, mbsync-style synchronizers emit
// <ts>.<a>_<b>.<host>,<info>:2,<flags>, and legacy writers emit a bare
// <ts>.<unique>.  The decoder accepts all three so that listings never
// silently drop real messages, and the encoder emits a single
// collision-resistant shape that the decoder round-trips.

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
)

// fallbackHost is used when the local hostname is unavailable and when
// a decoded filename carries no host segment.
const fallbackHost = "localhost"

// ErrNotMaildirName reports that a filename matches none of the known
// maildir filename grammars.  Listings skip such entries rather than
// failing.
var ErrNotMaildirName = errors.New("not a maildir-style name")

// Name is the decoded form of a maildir filename.
type Name struct {
	// Time is the delivery wall-clock time in seconds since the epoch.
	Time int64

	// Unique is the opaque uniqueness token: a high-resolution clock
	// value, a process id, or a compound of both, depending on which
	// grammar matched.
	Unique string

	// Host is the delivering host, or fallbackHost when the filename
	// carries no host segment.
	Host string

	// Size is the byte size recorded in the S= info field, or 0 when
	// the filename carries none.
	Size int64

	// UID is the synchronizer-assigned uid from the U= info field, or
	// -1 when absent.  U=0 is recorded as absent; mbsync allocates
	// uids from 1.
	UID int64

	// Flags holds the single-character flags following the ":2,"
	// marker.
	Flags FlagSet

	// Raw is the original filename, preserved for diagnostics and
	// lossless round-trips.
	Raw string
}

// A grammar is one historically-observed filename shape.  Grammars are
// tried in order from most to least specific; the first match wins.
// Each match yields the fixed fields plus the remainder holding the
// info and flag segments.
type grammar struct {
	name string
	re   *regexp.Regexp
	// build maps the submatches to a partial Name and the remainder.
	build func(m []string) (Name, string)
}

var grammars = []grammar{
	{
		// Synchronizer form: 1752088678.388349_6.nandi,U=1:2,S
		// The compound a_b token is the uniqueness key.
		name: "full",
		re:   regexp.MustCompile(`^(\d+)\.([^_.]+)_([^.]+)\.([^,]+),(.*)$`),
		build: func(m []string) (Name, string) {
			return Name{Unique: m[2] + "_" + m[3], Host: m[4]}, m[5]
		},
	},
	{
		// Strict maildir form: 1234567890.M123P456.hostname[:2,RS]
		name: "hosted",
		re:   regexp.MustCompile(`^(\d+)\.([^.]+)\.([^,:]+)(.*)$`),
		build: func(m []string) (Name, string) {
			return Name{Unique: m[2], Host: m[3]}, m[4]
		},
	},
	{
		// Legacy two-part form: 1700000000.abc123[:2,D]
		name: "bare",
		re:   regexp.MustCompile(`^(\d+)\.([^,:]+)(.*)$`),
		build: func(m []string) (Name, string) {
			return Name{Unique: m[2], Host: fallbackHost}, m[3]
		},
	},
}

var (
	infoSizeRe = regexp.MustCompile(`(?:^|[,:])S=(\d+)`)
	infoUIDRe  = regexp.MustCompile(`(?:^|[,:])U=(\d+)`)
)

// Parse decodes filename into its structured form.  It returns
// ErrNotMaildirName when the filename matches none of the known
// grammars.
func Parse(filename string) (Name, error) {
	for _, g := range grammars {
		m := g.re.FindStringSubmatch(filename)
		if m == nil {
			continue
		}
		n, rest := g.build(m)
		ts, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			// \d+ overflowing int64; treat as unrecognized.
			continue
		}
		n.Time = ts
		n.Raw = filename

		info, flags := splitInfo(rest)
		n.Size = scanInfoField(info, infoSizeRe, 0)
		n.UID = scanInfoField(info, infoUIDRe, -1)
		if n.UID == 0 {
			n.UID = -1
		}
		n.Flags = ParseFlags(flags)
		return n, nil
	}
	return Name{}, errors.Wrapf(ErrNotMaildirName, "%q", filename)
}

// splitInfo divides the remainder after the host (or uniqueness key)
// into the info segment and the flag characters.  A literal ":2,"
// marker is the split point when present; otherwise the last comma
// splits info from flags; with no comma the whole remainder is info.
func splitInfo(rest string) (info, flags string) {
	if i := strings.Index(rest, ":2,"); i >= 0 {
		return rest[:i], rest[i+3:]
	}
	if i := strings.LastIndex(rest, ","); i >= 0 {
		return rest[:i], rest[i+1:]
	}
	return rest, ""
}

// scanInfoField extracts one decimal info token (S= or U=).  Tokens
// may appear in any order, interleaved with tokens this package does
// not interpret.
func scanInfoField(info string, re *regexp.Regexp, absent int64) int64 {
	m := re.FindStringSubmatch(info)
	if m == nil {
		return absent
	}
	v, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return absent
	}
	return v
}

// Encode renders the canonical filename for n: flags sorted, size (and
// uid when known) in the info field.  The result always parses back
// via Parse with equivalent fields.
func (n Name) Encode() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d.%s.%s,S=%d", n.Time, n.Unique, n.Host, n.Size)
	if n.UID > 0 {
		fmt.Fprintf(&b, ",U=%d", n.UID)
	}
	b.WriteString(":2,")
	b.WriteString(n.Flags.String())
	return b.String()
}

var (
	monoBase = time.Now()
	monoLast int64
)

// monoMillis returns a millisecond reading from the monotonic clock
// that is strictly increasing within this process, so two names
// generated in the same millisecond still differ.
func monoMillis() int64 {
	ms := time.Since(monoBase).Milliseconds()
	for {
		last := atomic.LoadInt64(&monoLast)
		if ms <= last {
			ms = last + 1
		}
		if atomic.CompareAndSwapInt64(&monoLast, last, ms) {
			return ms
		}
	}
}

// encodeHost returns the local hostname with characters that would
// corrupt the filename grammar replaced.
func encodeHost() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		return fallbackHost
	}
	return strings.NewReplacer("/", "_", ":", "_", ",", "_").Replace(host)
}

// Generate produces a new collision-resistant filename carrying the
// given flags:
//
//	<unix_ts>.<ms_monotonic>_<pid>.<host>,S=0:2,<sorted_flags>
//
// The size is always 0 at creation time; ReconcileSize corrects it
// once content has been flushed.  Generate never consults the
// filesystem: a caller whose rename target already exists must retry
// with a fresh name.
func Generate(flags FlagSet) string {
	return fmt.Sprintf("%d.%d_%d.%s,S=0:2,%s",
		time.Now().Unix(), monoMillis(), os.Getpid(), encodeHost(), flags.String())
}
