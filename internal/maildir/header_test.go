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
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestReadHeader(t *testing.T) {
	cases := []struct {
		desc    string
		content string
		want    map[string]string
	}{
		{
			desc: "simple block",
			content: "From: alice@example.com\n" +
				"Subject: hello\n" +
				"\n" +
				"X-Not-A-Header: this is body\n",
			want: map[string]string{
				"from":    "alice@example.com",
				"subject": "hello",
			},
		},
		{
			desc: "folded continuation",
			content: "Subject: a very\n" +
				"\tlong subject\n" +
				"  split twice\n" +
				"\n",
			want: map[string]string{
				"subject": "a very long subject split twice",
			},
		},
		{
			desc: "crlf line endings",
			content: "Subject: windows\r\n" +
				"From: bob@example.com\r\n" +
				"\r\n" +
				"body\r\n",
			want: map[string]string{
				"subject": "windows",
				"from":    "bob@example.com",
			},
		},
		{
			desc: "duplicate names keep the last",
			content: "Received: first hop\n" +
				"Received: second hop\n" +
				"\n",
			want: map[string]string{
				"received": "second hop",
			},
		},
		{
			desc: "case folded names",
			content: "SUBJECT: shouty\n" +
				"\n",
			want: map[string]string{
				"subject": "shouty",
			},
		},
		{
			desc: "malformed line ends the block",
			content: "Subject: ok\n" +
				"this line has no colon\n" +
				"From: never@reached\n",
			want: map[string]string{
				"subject": "ok",
			},
		},
		{
			desc: "space in name ends the block",
			content: "Subject: ok\n" +
				"bad name: rejected\n",
			want: map[string]string{
				"subject": "ok",
			},
		},
		{
			desc: "leading continuation ends the block",
			content: " orphan continuation\n" +
				"Subject: never\n",
			want: map[string]string{},
		},
		{
			desc:    "no separator before end of input",
			content: "Subject: truncated",
			want: map[string]string{
				"subject": "truncated",
			},
		},
		{
			desc:    "empty file",
			content: "",
			want:    map[string]string{},
		},
	}
	for _, tc := range cases {
		dir := t.TempDir()
		path := writeMessage(t, dir, "msg", tc.content)
		got, err := ReadHeader(path)
		if err != nil {
			t.Errorf("%s: ReadHeader = %v, want nil", tc.desc, err)
			continue
		}
		if diff := cmp.Diff(tc.want, got); diff != "" {
			t.Errorf("%s: ReadHeader mismatch (-want +got):\n%s", tc.desc, diff)
		}
	}
}

func TestReadHeaderLongLine(t *testing.T) {
	// A DKIM signature or references chain can exceed any fixed token
	// buffer; length must never be fatal on a readable file.
	huge := strings.Repeat("a", 70*1024)
	content := "Subject: ok\n" +
		"X-Huge: " + huge + "\n" +
		"\n" +
		"body\n"
	dir := t.TempDir()
	path := writeMessage(t, dir, "msg", content)

	got, err := ReadHeader(path)
	if err != nil {
		t.Fatalf("ReadHeader with a 70 KiB header line = %v, want nil", err)
	}
	if got["subject"] != "ok" {
		t.Errorf(`got["subject"] = %q, want "ok"`, got["subject"])
	}
	if got["x-huge"] != huge {
		t.Errorf("long header value not preserved: got %d bytes, want %d", len(got["x-huge"]), len(huge))
	}
}

func TestReadHeaderOpenFailure(t *testing.T) {
	if _, err := ReadHeader(filepath.Join(t.TempDir(), "absent")); err == nil {
		t.Error("ReadHeader on a missing file = nil error, want non-nil")
	}
}
