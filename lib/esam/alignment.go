//
// Copyright (C) 2024 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package esam

import (
	"strconv"

	"github.com/biogo/hts/sam"
)

// Alignment holds the fields of a SAM record used to classify footprints.
type Alignment struct {
	Name string
	// Reference name, empty if unaligned
	Ref string
	// 1-based leftmost position
	Pos       int
	Seq       string
	Width     int
	Weight    float64
	HasWeight bool
}

// QueryWidth returns the read length from the CIGAR, soft-clipped bases included.
// The sequence length is used if the CIGAR is empty.
func QueryWidth(r *sam.Record) int {
	if len(r.Cigar) == 0 {
		return r.Seq.Length
	}
	var width int
	for _, co := range r.Cigar {
		width += co.Len() * co.Type().Consumes().Query
	}
	return width
}

// TagFloat returns the numeric value of the aux tag of r.
func TagFloat(r *sam.Record, tag []byte) (float64, bool) {
	aux, found := r.Tag(tag)
	if !found {
		return 0, false
	}
	// Character
	if aux.Type() == 'A' {
		var c byte
		switch v := aux.Value().(type) {
		case sam.ASCII:
			c = byte(v)
		case uint8:
			c = v
		default:
			return 0, false
		}
		f, err := strconv.ParseFloat(string(c), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	switch v := aux.Value().(type) {
	case int8:
		return float64(v), true
	case uint8:
		return float64(v), true
	case int16:
		return float64(v), true
	case uint16:
		return float64(v), true
	case int32:
		return float64(v), true
	case uint32:
		return float64(v), true
	case float32:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// IsUnaligned returns true if r has no alignment position on a reference.
func IsUnaligned(r *sam.Record) bool {
	return r.Flags&sam.Unmapped != 0 || r.Ref == nil || r.Pos < 0
}

// FromRecord converts r. If weightTag is empty, each alignment weighs 1.
func FromRecord(r *sam.Record, weightTag []byte) Alignment {
	a := Alignment{Name: r.Name, Pos: r.Pos + 1, Seq: string(r.Seq.Expand()), Width: QueryWidth(r)}
	if !IsUnaligned(r) {
		a.Ref = r.Ref.Name()
	}
	if len(weightTag) == 0 {
		a.Weight, a.HasWeight = 1, true
	} else {
		a.Weight, a.HasWeight = TagFloat(r, weightTag)
	}
	return a
}
