//
// Copyright (C) 2024 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"git.sr.ht/~vejnar/CodonAbacus/lib/abacus"
	"git.sr.ht/~vejnar/CodonAbacus/lib/esam"
	"git.sr.ht/~vejnar/CodonAbacus/lib/feature"
	"git.sr.ht/~vejnar/CodonAbacus/lib/footprint"
	"git.sr.ht/~vejnar/CodonAbacus/lib/offset"
	"git.sr.ht/~vejnar/CodonAbacus/lib/output"
	"git.sr.ht/~vejnar/CodonAbacus/lib/transcript"
	"git.sr.ht/~vejnar/CodonAbacus/lib/workpool"
)

type Options struct {
	PathSAMs      []esam.PathSAM
	SAMCmdIn      []string
	PathLengths   string
	PathFASTA     string
	PathOffsets   string
	WeightTag     string
	KeepSecondary bool

	D5Raw       string
	D3Raw       string
	Bias5Length int
	Bias3Length int

	Strict  bool
	NWorker int

	PathOutput   string
	OutputFormat string
	PathDuckDB   string
	DuckDBTable  string
	PathMapping  string
	PathReport   string
}

// grid returns the digest grid from options, or from offsets for unset dimensions.
func grid(opts Options, offsets *offset.Table) (g feature.Grid, err error) {
	d5s, d3s := offsets.Grid()
	if opts.D5Raw != "" {
		if g.D5, err = feature.ParseLengths(opts.D5Raw); err != nil {
			return g, fmt.Errorf("d5: %w", err)
		}
	} else {
		g.D5 = d5s
	}
	if opts.D3Raw != "" {
		if g.D3, err = feature.ParseLengths(opts.D3Raw); err != nil {
			return g, fmt.Errorf("d3: %w", err)
		}
	} else {
		g.D3 = d3s
	}
	if g.Size() == 0 {
		return g, fmt.Errorf("empty digest grid (%s)", g)
	}
	return g, nil
}

// Prepare builds the feature table, counts footprints from all SAM/BAM inputs and joins them.
func Prepare(ctx context.Context, opts Options, logger *zap.Logger) (*feature.Table, *Report, error) {
	timeStart := time.Now()
	report := &Report{}

	// Transcripts
	annotation, err := transcript.Load(opts.PathLengths, opts.PathFASTA, opts.Strict, logger)
	if err != nil {
		return nil, nil, err
	}
	report.Transcripts = annotation.Len()
	report.MissingSequences = sortedStrings(annotation.Missing)

	// Offsets
	offsets, err := offset.Open(opts.PathOffsets)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("Loaded offsets", zap.Int("n", offsets.Len()))
	g, err := grid(opts, offsets)
	if err != nil {
		return nil, nil, err
	}
	report.D5, report.D3 = g.D5, g.D3

	// Feature table
	pool := workpool.New(opts.NWorker)
	defer pool.Close()
	fopts := feature.Options{Bias5Length: opts.Bias5Length, Bias3Length: opts.Bias3Length, Logger: logger}
	tbl, err := feature.Build(ctx, pool, annotation.Transcripts, g, fopts)
	if err != nil {
		return nil, nil, err
	}
	report.Rows = tbl.Len()
	logger.Info("Built feature table", zap.Int("rows", tbl.Len()), zap.Stringer("grid", g), zap.Float64("min", time.Since(timeStart).Minutes()))

	// Footprints
	processor, err := footprint.New(annotation, offsets, footprint.Config{Strict: opts.Strict, Logger: logger})
	if err != nil {
		return nil, nil, err
	}
	runOpts := footprint.RunOptions{KeepSecondary: opts.KeepSecondary}
	if opts.WeightTag != "" {
		runOpts.WeightTag = []byte(opts.WeightTag)
	}
	agg := abacus.NewAggregate()
	for _, pathSAM := range opts.PathSAMs {
		logger.Info("Reading", zap.String("path", pathSAM.Path))
		rr, err := esam.Open(pathSAM, opts.SAMCmdIn, pool.Size())
		if err != nil {
			return nil, nil, err
		}
		err = processor.Run(ctx, rr, runOpts, func(fp footprint.Footprint) error {
			agg.Add(fp)
			return nil
		})
		if cerr := rr.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", pathSAM.Path, err)
		}
	}
	processor.LogStats()
	report.Alignments = processor.Input()
	report.Skipped = processor.Skipped()
	report.Stages = processor.Stats()
	report.OutOfCDSRegions = processor.OutOfCDSRegions()
	report.UnknownTranscripts = sortedStrings(processor.Unknown)
	report.DefaultWeights = processor.DefaultWeights()
	report.Kept, report.KeptWeight = processor.Kept()

	// Join
	policy := abacus.Drop
	if opts.Strict {
		policy = abacus.Fail
	}
	report.Join, err = abacus.Join(tbl, agg, policy)
	if err != nil {
		return nil, nil, err
	}
	report.TotalCount = tbl.TotalCount()
	logger.Info("Joined footprints", zap.Int("matched", report.Join.Matched), zap.Int("unmatched", report.Join.Unmatched), zap.Float64("unmatched_weight", report.Join.UnmatchedWeight))

	// Output
	var mapping map[string]string
	if opts.PathMapping != "" {
		if mapping, err = output.OpenMapping(opts.PathMapping); err != nil {
			return nil, nil, err
		}
	}
	if opts.PathOutput != "" {
		if err = output.WriteTableFile(opts.PathOutput, tbl, opts.OutputFormat, mapping); err != nil {
			return nil, nil, err
		}
	}
	if opts.PathDuckDB != "" {
		if err = output.WriteDuckDB(ctx, opts.PathDuckDB, opts.DuckDBTable, tbl, mapping); err != nil {
			return nil, nil, err
		}
	}
	if opts.PathReport != "" {
		if err = WriteReport(opts.PathReport, report); err != nil {
			return nil, nil, err
		}
	}
	return tbl, report, nil
}
