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

import "testing"

func TestFlagSetCanonical(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"S", "S"},
		{"SRD", "DRS"},
		{"SSDD", "DS"},
		{"TSRF", "FRST"},
		{"ba", "ab"},
	}
	for _, tc := range cases {
		if got := ParseFlags(tc.in).String(); got != tc.want {
			t.Errorf("ParseFlags(%q).String() = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestFlagSetHas(t *testing.T) {
	f := ParseFlags("DRS")
	for _, c := range "DRS" {
		if !f.Has(c) {
			t.Errorf("ParseFlags(\"DRS\").Has(%q) = false, want true", c)
		}
	}
	for _, c := range "FTa" {
		if f.Has(c) {
			t.Errorf("ParseFlags(\"DRS\").Has(%q) = true, want false", c)
		}
	}

	var zero FlagSet
	if zero.Has('S') {
		t.Error("zero FlagSet.Has('S') = true, want false")
	}
	if zero.Len() != 0 {
		t.Errorf("zero FlagSet.Len() = %d, want 0", zero.Len())
	}
}

func TestFlagSetAdd(t *testing.T) {
	var f FlagSet
	for _, c := range "SDSDS" {
		f.Add(c)
	}
	if got := f.String(); got != "DS" {
		t.Errorf("after adds, String() = %q, want %q", got, "DS")
	}
	if got := len(f.Chars()); got != 2 {
		t.Errorf("after adds, len(Chars()) = %d, want 2", got)
	}
}

func TestFlagSetEqual(t *testing.T) {
	if !ParseFlags("SD").Equal(ParseFlags("DS")) {
		t.Error(`ParseFlags("SD").Equal(ParseFlags("DS")) = false, want true`)
	}
	if ParseFlags("SD").Equal(ParseFlags("D")) {
		t.Error(`ParseFlags("SD").Equal(ParseFlags("D")) = true, want false`)
	}
}
