//
// Copyright (C) 2024 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package abacus

import (
	"errors"
	"fmt"
	"sort"

	"git.sr.ht/~vejnar/CodonAbacus/lib/feature"
	"git.sr.ht/~vejnar/CodonAbacus/lib/footprint"
)

var ErrUnmatchedKey = errors.New("footprint outside of feature table")

// Policy for aggregated footprints without feature row
type Policy int

const (
	Drop Policy = iota
	Fail
)

// Aggregate sums footprint weights by key.
type Aggregate struct {
	sums map[feature.Key]float64
}

func NewAggregate() *Aggregate {
	return &Aggregate{sums: make(map[feature.Key]float64)}
}

// Sum aggregates footprints.
func Sum(footprints []footprint.Footprint) *Aggregate {
	agg := NewAggregate()
	for _, fp := range footprints {
		agg.Add(fp)
	}
	return agg
}

// Add adds the weight of fp to its key.
func (agg *Aggregate) Add(fp footprint.Footprint) {
	agg.sums[fp.Key] += fp.Weight
}

// Len returns the number of distinct keys.
func (agg *Aggregate) Len() int {
	return len(agg.sums)
}

// Get returns the summed weight of k.
func (agg *Aggregate) Get(k feature.Key) (float64, bool) {
	w, ok := agg.sums[k]
	return w, ok
}

// Total returns the sum of all weights.
func (agg *Aggregate) Total() (total float64) {
	for _, w := range agg.sums {
		total += w
	}
	return
}

// Keys returns the keys sorted by transcript, codon, d5 and d3.
func (agg *Aggregate) Keys() []feature.Key {
	keys := make([]feature.Key, 0, len(agg.sums))
	for k := range agg.sums {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.Transcript != b.Transcript {
			return a.Transcript < b.Transcript
		}
		if a.Codon != b.Codon {
			return a.Codon < b.Codon
		}
		if a.D5 != b.D5 {
			return a.D5 < b.D5
		}
		return a.D3 < b.D3
	})
	return keys
}

// JoinStats reports keys and weights joined into the feature table.
type JoinStats struct {
	Matched         int     `json:"matched"`
	Unmatched       int     `json:"unmatched"`
	MatchedWeight   float64 `json:"matched_weight"`
	UnmatchedWeight float64 `json:"unmatched_weight"`
}

// Join adds the aggregated weights to the count of the table rows with the same key.
// Keys without row are dropped and counted, or are an error with the Fail policy.
// The table is left unchanged if Join fails.
func Join(tbl *feature.Table, agg *Aggregate, policy Policy) (stats JoinStats, err error) {
	keys := agg.Keys()
	rows := make([]*feature.Row, len(keys))
	for i, k := range keys {
		row, ok := tbl.Get(k)
		if !ok && policy == Fail {
			return JoinStats{}, fmt.Errorf("%s: %w", k, ErrUnmatchedKey)
		}
		rows[i] = row
	}
	for i, k := range keys {
		w := agg.sums[k]
		if rows[i] == nil {
			stats.Unmatched++
			stats.UnmatchedWeight += w
			continue
		}
		rows[i].Count += w
		stats.Matched++
		stats.MatchedWeight += w
	}
	return stats, nil
}
