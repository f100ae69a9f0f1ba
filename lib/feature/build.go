//
// Copyright (C) 2024 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package feature

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"git.sr.ht/~vejnar/CodonAbacus/lib/transcript"
)

const (
	DefaultBias5Length = 2
	DefaultBias3Length = 3
)

// Mapper runs fn for each index in [0, n).
type Mapper interface {
	Map(ctx context.Context, n int, fn func(i int) error) error
}

type serial struct{}

func (serial) Map(ctx context.Context, n int, fn func(i int) error) error {
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(i); err != nil {
			return err
		}
	}
	return nil
}

type Options struct {
	Bias5Length int
	Bias3Length int
	Logger      *zap.Logger
}

func DefaultOptions() Options {
	return Options{Bias5Length: DefaultBias5Length, Bias3Length: DefaultBias3Length}
}

// NumRows returns the number of rows Build produces.
func NumRows(transcripts []transcript.Transcript, grid Grid) (n int) {
	for i := range transcripts {
		n += transcripts[i].Codons() * grid.Size()
	}
	return
}

// FillCodon writes the grid rows of one codon into rows (len(rows) == grid.Size()).
func FillCodon(rows []Row, t *transcript.Transcript, codon int, grid Grid, opts Options) {
	aStart := ASiteStart(t.UTR5Length, codon)
	aEnd := aStart + 2
	a, p, e := Sites(t.Seq, t.UTR5Length, codon)
	var i int
	for _, d5 := range grid.D5 {
		f5 := Bias5(t.Seq, aStart, d5, opts.Bias5Length)
		for _, d3 := range grid.D3 {
			rows[i] = Row{
				Key:   Key{Transcript: t.Name, Codon: codon, D5: d5, D3: d3},
				ASite: a,
				PSite: p,
				ESite: e,
				F5:    f5,
				F3:    Bias3(t.Seq, aEnd, d3, opts.Bias3Length),
			}
			i++
		}
	}
}

// Build enumerates every (transcript, codon, d5, d3) combination with its sequence features.
// Codons are computed on m (sequentially if m is nil); each codon fills its own rows.
func Build(ctx context.Context, m Mapper, transcripts []transcript.Transcript, grid Grid, opts Options) (*Table, error) {
	if grid.Size() == 0 {
		return nil, fmt.Errorf("empty digest length grid")
	}
	if opts.Bias5Length < 0 || opts.Bias3Length < 0 {
		return nil, fmt.Errorf("negative bias length")
	}
	if m == nil {
		m = serial{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	// First codon job of each transcript
	starts := make([]int, len(transcripts)+1)
	for i := range transcripts {
		starts[i+1] = starts[i] + transcripts[i].Codons()
	}
	nJob := starts[len(transcripts)]
	gs := grid.Size()

	tbl := &Table{Rows: make([]Row, nJob*gs), Grid: grid}
	logger.Info("Building feature table", zap.Int("transcripts", len(transcripts)), zap.Int("codons", nJob), zap.Int("rows", len(tbl.Rows)), zap.Stringer("grid", grid))

	err := m.Map(ctx, nJob, func(j int) error {
		it := sort.Search(len(transcripts), func(i int) bool { return starts[i+1] > j })
		codon := j - starts[it] + 1
		FillCodon(tbl.Rows[j*gs:(j+1)*gs], &transcripts[it], codon, grid, opts)
		return nil
	})
	if err != nil {
		return nil, err
	}
	tbl.buildIndex()
	return tbl, nil
}
