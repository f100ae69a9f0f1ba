//
// Copyright (C) 2024 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package offset

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"git.sr.ht/~vejnar/CodonAbacus/lib/xio"
)

const NFrame = 3

type key struct {
	frame, width int
}

// Table maps (read frame, read length) to the 5' digest length.
type Table struct {
	d5s map[key]int
}

// New returns an empty table.
func New() *Table {
	return &Table{d5s: make(map[key]int)}
}

// Set stores the d5 of reads of length width in frame.
func (t *Table) Set(frame, width, d5 int) {
	t.d5s[key{frame, width}] = d5
}

// Lookup returns the d5 of reads of length width in frame.
func (t *Table) Lookup(frame, width int) (int, bool) {
	d5, ok := t.d5s[key{frame, width}]
	return d5, ok
}

// Len returns the number of (frame, length) entries.
func (t *Table) Len() int {
	return len(t.d5s)
}

// Grid returns the sorted distinct d5 and d3 (length - d5 - 3) values present in the table.
func (t *Table) Grid() (d5s, d3s []int) {
	s5 := make(map[int]struct{})
	s3 := make(map[int]struct{})
	for k, d5 := range t.d5s {
		s5[d5] = struct{}{}
		s3[k.width-d5-3] = struct{}{}
	}
	return sortedKeys(s5), sortedKeys(s3)
}

func sortedKeys(m map[int]struct{}) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

func unquote(s string) string {
	return strings.Trim(s, "\"'")
}

func isNA(s string) bool {
	return s == "" || s == "NA" || s == "NaN" || s == "."
}

// Open parses an offsets file.
func Open(opath string) (*Table, error) {
	ofos, err := xio.Open(opath)
	if err != nil {
		return nil, err
	}
	defer ofos.Close()
	t, err := Read(ofos)
	if err != nil {
		return nil, fmt.Errorf("parsing offsets %s: %w", opath, err)
	}
	return t, nil
}

// Read parses a whitespace-delimited offsets table: a header naming the frame columns
// (frame_0, frame_1, frame_2) then one row per read length with the d5 of each frame.
func Read(r io.Reader) (*Table, error) {
	t := New()
	var frames []int
	var nline, nframe int
	oscanner := bufio.NewScanner(r)
	for oscanner.Scan() {
		nline++
		fields := strings.Fields(oscanner.Text())
		if len(fields) == 0 {
			continue
		}
		// Header
		if frames == nil {
			for _, f := range fields {
				name := unquote(f)
				if !strings.HasPrefix(name, "frame_") {
					// Row name column
					frames = append(frames, -1)
					continue
				}
				frame, err := strconv.Atoi(strings.TrimPrefix(name, "frame_"))
				if err != nil || frame < 0 || frame >= NFrame {
					return nil, fmt.Errorf("line %d: unknown column %s", nline, name)
				}
				frames = append(frames, frame)
				nframe++
			}
			if nframe == 0 {
				return nil, fmt.Errorf("line %d: no frame column in header", nline)
			}
			continue
		}
		// Row names are not part of the header
		cols := frames
		if len(fields) == len(frames)+1 {
			cols = append([]int{-1}, frames...)
		} else if len(fields) != len(frames) {
			return nil, fmt.Errorf("line %d: expected %d columns, found %d", nline, len(frames)+1, len(fields))
		}
		width, err := strconv.Atoi(unquote(fields[0]))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", nline, err)
		}
		for i := 1; i < len(fields); i++ {
			if cols[i] < 0 {
				continue
			}
			v := unquote(fields[i])
			if isNA(v) {
				continue
			}
			d5, err := strconv.Atoi(v)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", nline, err)
			}
			t.Set(cols[i], width, d5)
		}
	}
	if err := oscanner.Err(); err != nil {
		return nil, err
	}
	if frames == nil {
		return nil, fmt.Errorf("missing header")
	}
	return t, nil
}
