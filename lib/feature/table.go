//
// Copyright (C) 2024 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package feature

import "fmt"

// Key identifies a footprint class: the codon in the A site and the digest lengths.
type Key struct {
	Transcript string
	Codon      int
	D5         int
	D3         int
}

func (k Key) String() string {
	return fmt.Sprintf("%s:%d:%d:%d", k.Transcript, k.Codon, k.D5, k.D3)
}

// Row is one observation of the regression table.
type Row struct {
	Key
	ASite string
	PSite string
	ESite string
	F5    string
	F3    string
	Count float64
}

// Table holds all rows ordered by transcript, codon, d5 and d3.
type Table struct {
	Rows  []Row
	Grid  Grid
	index map[Key]int
}

func (t *Table) buildIndex() {
	t.index = make(map[Key]int, len(t.Rows))
	for i := range t.Rows {
		t.index[t.Rows[i].Key] = i
	}
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// Index returns the row number of k.
func (t *Table) Index(k Key) (int, bool) {
	if t.index == nil {
		t.buildIndex()
	}
	i, ok := t.index[k]
	return i, ok
}

// Get returns the row of k.
func (t *Table) Get(k Key) (*Row, bool) {
	i, ok := t.Index(k)
	if !ok {
		return nil, false
	}
	return &t.Rows[i], true
}

// TotalCount returns the sum of counts.
func (t *Table) TotalCount() (total float64) {
	for i := range t.Rows {
		total += t.Rows[i].Count
	}
	return
}

// ResetCounts sets all counts to 0.
func (t *Table) ResetCounts() {
	for i := range t.Rows {
		t.Rows[i].Count = 0
	}
}
