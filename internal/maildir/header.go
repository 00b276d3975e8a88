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
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// ReadHeader extracts the flat header block of the message at path as
// a mapping of lower-cased header name to value.
//
// Reading stops at the first empty line (the header/body separator) or
// end of input.  Continuation lines (leading space or tab) append to
// the previous header's value separated by a single space, per
// standard header folding.  A line that is neither a header line nor a
// continuation ends the block early; malformed trailing content is
// ignored, not rejected.  Header lines may be arbitrarily long; a
// multi-kilobyte signature or references chain is still a header.
// When the same name occurs twice the last occurrence wins.
//
// The only failure mode is a file that cannot be opened or read.
func ReadHeader(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to open message %s", path)
	}
	defer f.Close()

	headers := make(map[string]string)
	var last string

	r := bufio.NewReader(f)
	for {
		line, rerr := r.ReadString('\n')
		if rerr != nil && rerr != io.EOF {
			return nil, errors.Wrapf(rerr, "unable to read message %s", path)
		}
		line = strings.TrimSuffix(line, "\n")
		line = strings.TrimSuffix(line, "\r")
		if line == "" {
			break
		}
		if line[0] == ' ' || line[0] == '\t' {
			if last == "" {
				break
			}
			headers[last] += " " + strings.TrimLeft(line, " \t")
		} else {
			colon := strings.IndexByte(line, ':')
			if colon <= 0 || strings.ContainsAny(line[:colon], " \t") {
				break
			}
			last = strings.ToLower(line[:colon])
			headers[last] = strings.TrimSpace(line[colon+1:])
		}
		if rerr == io.EOF {
			break
		}
	}
	return headers, nil
}
