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

import "sort"

// FlagSet is an ordered set of single-character maildir flags.  Flag
// characters are opaque to this package; the conventional meanings
// (S seen, D draft, T trashed, ...) are a caller-level convention.
//
// The zero FlagSet is empty and ready to use.
type FlagSet struct {
	chars []rune
}

// NewFlagSet returns a set holding the given characters, deduplicated.
func NewFlagSet(chars ...rune) FlagSet {
	var f FlagSet
	for _, c := range chars {
		f.Add(c)
	}
	return f
}

// ParseFlags builds a set from a run of flag characters as they appear
// after the ":2," marker in a filename.
func ParseFlags(s string) FlagSet {
	return NewFlagSet([]rune(s)...)
}

// Add inserts c, keeping the set sorted.  Duplicates are ignored.
func (f *FlagSet) Add(c rune) {
	i := sort.Search(len(f.chars), func(i int) bool { return f.chars[i] >= c })
	if i < len(f.chars) && f.chars[i] == c {
		return
	}
	f.chars = append(f.chars, 0)
	copy(f.chars[i+1:], f.chars[i:])
	f.chars[i] = c
}

// Has reports whether c is a member of the set.
func (f FlagSet) Has(c rune) bool {
	i := sort.Search(len(f.chars), func(i int) bool { return f.chars[i] >= c })
	return i < len(f.chars) && f.chars[i] == c
}

// Len returns the number of flags in the set.
func (f FlagSet) Len() int {
	return len(f.chars)
}

// Chars returns the flag characters in ascending order.
func (f FlagSet) Chars() []rune {
	out := make([]rune, len(f.chars))
	copy(out, f.chars)
	return out
}

// String returns the canonical serialized form: the flag characters
// sorted ascending by character code, concatenated with no separator.
func (f FlagSet) String() string {
	return string(f.chars)
}

// Equal reports whether two sets hold the same flags.
func (f FlagSet) Equal(other FlagSet) bool {
	return f.String() == other.String()
}
