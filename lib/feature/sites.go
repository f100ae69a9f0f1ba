//
// Copyright (C) 2024 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package feature

// Substr returns the 1-based inclusive [start, stop] substring of s.
// Bounds outside of s are clamped: the result is truncated or empty, never an error.
func Substr(s string, start, stop int) string {
	if start < 1 {
		start = 1
	}
	if stop > len(s) {
		stop = len(s)
	}
	if start > stop {
		return ""
	}
	return s[start-1 : stop]
}

// ASiteStart returns the 1-based position of the first nucleotide of codon (1-based) in a transcript with a 5'UTR of utr5 nt.
func ASiteStart(utr5, codon int) int {
	return utr5 + 3*(codon-1) + 1
}

// Sites returns the A, P and E site codons when codon is in the ribosome A site.
// P and E sites are one and two codons upstream: they are truncated or empty near the sequence start.
func Sites(seq string, utr5, codon int) (a, p, e string) {
	start := ASiteStart(utr5, codon)
	a = Substr(seq, start, start+2)
	p = Substr(seq, start-3, start-1)
	e = Substr(seq, start-6, start-4)
	return
}

// Bias5 returns the length nt window ending at the footprint 5' end (aStart - d5).
func Bias5(seq string, aStart, d5, length int) string {
	end := aStart - d5
	return Substr(seq, end-length+1, end)
}

// Bias3 returns the length nt window starting right after the footprint 3' end (aEnd + d3).
func Bias3(seq string, aEnd, d3, length int) string {
	start := aEnd + d3 + 1
	return Substr(seq, start, start+length-1)
}
