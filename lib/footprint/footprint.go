//
// Copyright (C) 2024 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package footprint

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gopkg.in/fatih/set.v0"

	"git.sr.ht/~vejnar/CodonAbacus/lib/esam"
	"git.sr.ht/~vejnar/CodonAbacus/lib/feature"
	"git.sr.ht/~vejnar/CodonAbacus/lib/offset"
	"git.sr.ht/~vejnar/CodonAbacus/lib/region"
	"git.sr.ht/~vejnar/CodonAbacus/lib/transcript"
)

var (
	ErrUnknownTranscript = errors.New("alignment reference not in annotation")
	ErrMissingWeight     = errors.New("alignment weight tag not found")
)

// Stage is the filtering step at which an alignment is dropped.
type Stage int

const (
	StageUnaligned Stage = iota
	StageUnknownTranscript
	StageNoOffset
	StageOutOfFrame
	StageOutOfCDS
	// Not dropped
	StageKept
)

var stageNames = [...]string{"unaligned", "unknown_transcript", "no_offset", "out_of_frame", "out_of_cds", "kept"}

func (s Stage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return "unknown"
	}
	return stageNames[s]
}

// Footprint is an alignment converted to the codon in the ribosome A site and the digest lengths.
type Footprint struct {
	feature.Key
	Seq    string
	Weight float64
}

// Frame returns the frame of 1-based position pos relative to the CDS start: (pos - utr5 - 1) mod 3.
func Frame(pos, utr5 int) int {
	f := (pos - utr5 - 1) % 3
	if f < 0 {
		f += 3
	}
	return f
}

// CodonIndex returns the 1-based codon in the A site of a footprint starting at pos.
// It returns false if the A site is not in frame with the CDS.
func CodonIndex(pos, d5, utr5 int) (int, bool) {
	n := pos + d5 - utr5 + 2
	if n%3 != 0 {
		return 0, false
	}
	return n / 3, true
}

type Config struct {
	Strict bool
	Logger *zap.Logger
}

// StageStat reports how many alignments entered a stage and how many were dropped.
type StageStat struct {
	Name    string  `json:"name"`
	Input   int     `json:"input"`
	Dropped int     `json:"dropped"`
	Percent float64 `json:"percent"`
}

// Processor classifies alignments and keeps per-stage counters.
type Processor struct {
	annotation *transcript.Annotation
	offsets    *offset.Table
	trees      region.Trees
	strict     bool
	logger     *zap.Logger

	nInput         int
	nSkipped       int
	nDefaultWeight int
	counts         [StageKept + 1]int
	weights        [StageKept + 1]float64
	regions        map[region.Region]int
	// Reference names absent from the annotation
	Unknown set.Interface
}

// New returns a Processor mapping alignments on annotation with offsets.
func New(annotation *transcript.Annotation, offsets *offset.Table, cfg Config) (*Processor, error) {
	trees, err := region.BuildTrees(annotation.Transcripts)
	if err != nil {
		return nil, fmt.Errorf("building region trees: %w", err)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Processor{
		annotation: annotation,
		offsets:    offsets,
		trees:      trees,
		strict:     cfg.Strict,
		logger:     logger,
		regions:    make(map[region.Region]int),
		Unknown:    set.New(set.ThreadSafe),
	}, nil
}

// Classify converts a into a footprint. The returned stage is StageKept if a is kept.
func (p *Processor) Classify(a esam.Alignment) (Footprint, Stage) {
	// 1. Unaligned
	if a.Ref == "" {
		return Footprint{}, StageUnaligned
	}
	t, ok := p.annotation.Get(a.Ref)
	if !ok {
		return Footprint{}, StageUnknownTranscript
	}
	// 2. Frame
	frame := Frame(a.Pos, t.UTR5Length)
	// 3. 5' digest length
	d5, ok := p.offsets.Lookup(frame, a.Width)
	if !ok {
		return Footprint{}, StageNoOffset
	}
	// 4. 3' digest length
	d3 := a.Width - d5 - 3
	// 5. Codon index
	codon, ok := CodonIndex(a.Pos, d5, t.UTR5Length)
	if !ok {
		return Footprint{}, StageOutOfFrame
	}
	if codon < 0 || codon > t.Codons() {
		return Footprint{Key: feature.Key{Transcript: t.Name, Codon: codon, D5: d5, D3: d3}}, StageOutOfCDS
	}
	return Footprint{Key: feature.Key{Transcript: t.Name, Codon: codon, D5: d5, D3: d3}, Seq: a.Seq, Weight: a.Weight}, StageKept
}

// Process classifies a and updates counters. It returns false if a is dropped.
// In strict mode, an unknown reference or a missing weight is an error.
func (p *Processor) Process(a esam.Alignment) (Footprint, bool, error) {
	p.nInput++
	fp, stage := p.Classify(a)
	weight := a.Weight
	if stage == StageKept && !a.HasWeight {
		if p.strict {
			return fp, false, fmt.Errorf("%s: %w", a.Name, ErrMissingWeight)
		}
		p.nDefaultWeight++
		weight = 1
		fp.Weight = weight
	}
	p.counts[stage]++
	p.weights[stage] += weight
	switch stage {
	case StageUnknownTranscript:
		if p.strict {
			return fp, false, fmt.Errorf("%s on %s: %w", a.Name, a.Ref, ErrUnknownTranscript)
		}
		p.Unknown.Add(a.Ref)
	case StageOutOfCDS:
		// Region of the A site
		p.regions[p.trees.Locate(a.Ref, a.Pos+fp.D5)]++
	}
	return fp, stage == StageKept, nil
}

// Input returns the number of processed alignments.
func (p *Processor) Input() int {
	return p.nInput
}

// Kept returns the number of kept alignments and their total weight.
func (p *Processor) Kept() (int, float64) {
	return p.counts[StageKept], p.weights[StageKept]
}

// Skipped returns the number of secondary or supplementary records skipped before processing.
func (p *Processor) Skipped() int {
	return p.nSkipped
}

// DefaultWeights returns the number of kept alignments without weight tag counted as 1.
func (p *Processor) DefaultWeights() int {
	return p.nDefaultWeight
}

// Stats returns the counters of each filtering stage in order.
func (p *Processor) Stats() []StageStat {
	stats := make([]StageStat, 0, StageKept)
	input := p.nInput
	for s := StageUnaligned; s < StageKept; s++ {
		st := StageStat{Name: s.String(), Input: input, Dropped: p.counts[s]}
		if input > 0 {
			st.Percent = 100. * float64(st.Dropped) / float64(input)
		}
		stats = append(stats, st)
		input -= st.Dropped
	}
	return stats
}

// OutOfCDSRegions returns the number of out of CDS footprints per region of their A site.
func (p *Processor) OutOfCDSRegions() map[string]int {
	m := make(map[string]int, len(p.regions))
	for r, n := range p.regions {
		m[r.String()] = n
	}
	return m
}

// LogStats logs stage counters.
func (p *Processor) LogStats() {
	for _, st := range p.Stats() {
		p.logger.Info("Dropped alignments", zap.String("stage", st.Name), zap.Int("input", st.Input), zap.Int("dropped", st.Dropped), zap.Float64("percent", st.Percent))
	}
	n, w := p.Kept()
	p.logger.Info("Kept alignments", zap.Int("n", n), zap.Float64("weight", w), zap.Int("default_weight", p.nDefaultWeight), zap.Int("skipped", p.nSkipped))
}
