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

	"git.sr.ht/~vejnar/CodonAbacus/lib/transcript"
)

// Region of a transcript
type Region int

const (
	Outside Region = iota
	UTR5
	CDS
	UTR3
)

var regionNames = [...]string{"outside", "utr5", "cds", "utr3"}

func (r Region) String() string {
	if r < 0 || int(r) >= len(regionNames) {
		return "unknown"
	}
	return regionNames[r]
}

// Trees stores one tree of regions per transcript.
type Trees map[string]*interval.IntTree

// BuildTrees builds a tree per transcript: UTR5, CDS and UTR3 are added as 0-based half-open intervals.
func BuildTrees(transcripts []transcript.Transcript) (trees Trees, err error) {
	trees = make(Trees, len(transcripts))
	var uid uintptr
	for _, t := range transcripts {
		tree := &interval.IntTree{}
		bounds := []struct {
			start, end int
			region     Region
		}{
			{0, t.UTR5Length, UTR5},
			{t.UTR5Length, t.UTR5Length + t.CDSLength, CDS},
			{t.UTR5Length + t.CDSLength, t.Length(), UTR3},
		}
		for _, b := range bounds {
			if b.end <= b.start {
				continue
			}
			err = tree.Insert(span{start: b.start, end: b.end, uid: uid, region: b.region}, false)
			if err != nil {
				return
			}
			uid++
		}
		tree.AdjustRanges()
		trees[t.Name] = tree
	}
	return
}

// Locate returns the region of transcript name containing the 1-based position pos.
func (trees Trees) Locate(name string, pos int) Region {
	tree, ok := trees[name]
	if !ok {
		return Outside
	}
	for _, iv := range tree.Get(point(pos - 1)) {
		return iv.(span).region
	}
	return Outside
}
