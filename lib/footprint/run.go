//
// Copyright (C) 2015-2024 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package footprint

import (
	"context"
	"io"
	"time"

	"github.com/biogo/hts/sam"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"git.sr.ht/~vejnar/CodonAbacus/lib/esam"
)

const (
	batchLength   = 256
	chanBatches   = 16
	logEveryAlign = 1000000
)

type RunOptions struct {
	// Aux tag holding the alignment weight; every alignment weighs 1 if empty
	WeightTag []byte
	// Process secondary and supplementary alignments
	KeepSecondary bool
}

// Run reads all records of rr, classifies them and calls fn with each kept footprint.
// Records are decoded on a reader goroutine and classified in order on the calling side.
func (p *Processor) Run(ctx context.Context, rr sam.RecordReader, opts RunOptions, fn func(Footprint) error) error {
	g, gctx := errgroup.WithContext(ctx)
	chAln := make(chan []esam.Alignment, chanBatches)

	// Reader
	g.Go(func() error {
		defer close(chAln)
		batch := make([]esam.Alignment, 0, batchLength)
		for {
			r, err := rr.Read()
			if err == io.EOF {
				break
			} else if err != nil {
				return err
			}
			if !opts.KeepSecondary && r.Flags&(sam.Secondary|sam.Supplementary) != 0 {
				p.nSkipped++
				continue
			}
			batch = append(batch, esam.FromRecord(r, opts.WeightTag))
			if len(batch) == batchLength {
				select {
				case <-gctx.Done():
					return gctx.Err()
				case chAln <- batch:
				}
				batch = make([]esam.Alignment, 0, batchLength)
			}
		}
		// Send last batch
		if len(batch) > 0 {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case chAln <- batch:
			}
		}
		return nil
	})

	// Classifier
	g.Go(func() error {
		timeStart := time.Now()
		for batch := range chAln {
			for _, a := range batch {
				fp, ok, err := p.Process(a)
				if err != nil {
					return err
				}
				if ok {
					if err = fn(fp); err != nil {
						return err
					}
				}
				if p.nInput%logEveryAlign == 0 {
					elapsed := time.Since(timeStart)
					p.logger.Debug("Processing alignments", zap.Int("n", p.nInput), zap.Float64("min", elapsed.Minutes()), zap.Float64("ma_per_hr", float64(p.nInput)/elapsed.Hours()/1000000.))
				}
			}
		}
		return nil
	})

	return g.Wait()
}
