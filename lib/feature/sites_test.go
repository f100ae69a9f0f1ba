//
// Copyright (C) 2024 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package feature

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubstr(t *testing.T) {
	s := "AAACCCGGGTTT"
	tests := []struct {
		start, stop int
		want        string
	}{
		{1, 3, "AAA"},
		{4, 6, "CCC"},
		{10, 12, "TTT"},
		{-2, 0, ""},
		{-1, 2, "AA"},
		{11, 15, "TT"},
		{13, 15, ""},
		{5, 4, ""},
		{1, 12, s},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Substr(s, tt.start, tt.stop), "[%d,%d]", tt.start, tt.stop)
	}
	assert.Equal(t, "", Substr("", 1, 3))
}

func TestSitesExample(t *testing.T) {
	a, p, e := Sites("AAACCCGGGTTT", 0, 2)
	assert.Equal(t, "CCC", a)
	assert.Equal(t, "AAA", p)
	assert.Equal(t, "", e)
}

func TestSitesShift(t *testing.T) {
	// 5'UTR GG, CDS of 5 codons, 3'UTR C
	seq := "GGATGAAACCCGGGTAAC"
	utr5 := 2
	for codon := 1; codon <= 5; codon++ {
		start := ASiteStart(utr5, codon)
		a, p, e := Sites(seq, utr5, codon)
		assert.Equal(t, seq[utr5+3*(codon-1):utr5+3*codon], a, "codon %d", codon)
		assert.Equal(t, Substr(seq, start, start+2), a)
		if codon >= 2 {
			prev, _, _ := Sites(seq, utr5, codon-1)
			assert.Equal(t, prev, p, "codon %d", codon)
		}
		if codon >= 3 {
			prev2, _, _ := Sites(seq, utr5, codon-2)
			assert.Equal(t, prev2, e, "codon %d", codon)
		}
	}
	// Truncated upstream sites on the first codon
	_, p, e := Sites(seq, utr5, 1)
	assert.Equal(t, "GG", p)
	assert.Equal(t, "", e)
}

func TestBias(t *testing.T) {
	seq := "ACGTACGTACGTACGTACGT"
	// A site at 10..12, footprint from 10-4=6 to 12+2=14
	aStart, aEnd := 10, 12
	assert.Equal(t, "AC", Bias5(seq, aStart, 4, 2))
	assert.Equal(t, Substr(seq, 5, 6), Bias5(seq, aStart, 4, 2))
	assert.Equal(t, Substr(seq, 15, 17), Bias3(seq, aEnd, 2, 3))
	// Windows outside the sequence
	assert.Equal(t, "", Bias5(seq, aStart, 10, 2))
	assert.Equal(t, "A", Bias5(seq, aStart, 9, 2))
	assert.Equal(t, "T", Bias3(seq, aEnd, 7, 3))
	assert.Equal(t, "", Bias3(seq, aEnd, 8, 3))
	// Zero length
	assert.Equal(t, "", Bias5(seq, aStart, 4, 0))
}
