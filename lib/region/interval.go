//
// Copyright (C) 2015-2024 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package region

import (
	"github.com/biogo/store/interval"
)

// span is a region of a transcript, 0-based half-open.
type span struct {
	start, end int
	uid        uintptr
	region     Region
}

func (s span) Overlap(b interval.IntRange) bool {
	return s.end > b.Start && s.start < b.End
}

func (s span) ID() uintptr {
	return s.uid
}

func (s span) Range() interval.IntRange {
	return interval.IntRange{Start: s.start, End: s.end}
}

// point queries a single 0-based position.
type point int

func (p point) Overlap(b interval.IntRange) bool {
	return int(p) >= b.Start && int(p) < b.End
}
