//
// Copyright (C) 2024 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package transcript

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gopkg.in/fatih/set.v0"
)

var (
	ErrMissingSequence = errors.New("transcript sequence not found")
	ErrPartialCodon    = errors.New("CDS length is not a multiple of 3")
)

// Annotation is the in-memory lookup of transcripts.
type Annotation struct {
	Transcripts []Transcript
	// Names of transcripts without sequence (permissive mode only)
	Missing set.Interface
	byName  map[string]int
}

// NewAnnotation indexes transcripts by name. Transcript IDs are reset to their position.
func NewAnnotation(transcripts []Transcript) (*Annotation, error) {
	a := &Annotation{Transcripts: transcripts, Missing: set.New(set.ThreadSafe), byName: make(map[string]int, len(transcripts))}
	for i := range a.Transcripts {
		a.Transcripts[i].ID = uint32(i)
		name := a.Transcripts[i].Name
		if _, ok := a.byName[name]; ok {
			return nil, fmt.Errorf("duplicate transcript %s", name)
		}
		a.byName[name] = i
	}
	return a, nil
}

// Get returns the transcript named name.
func (a *Annotation) Get(name string) (*Transcript, bool) {
	i, ok := a.byName[name]
	if !ok {
		return nil, false
	}
	return &a.Transcripts[i], true
}

// Len returns the number of transcripts.
func (a *Annotation) Len() int {
	return len(a.Transcripts)
}

// Attach sets the sequence of each transcript from seqs.
//
// In strict mode a missing sequence or a CDS length not multiple of 3 is an error.
// Otherwise transcripts without sequence keep an empty one and are recorded in Missing.
func (a *Annotation) Attach(seqs map[string]string, strict bool, logger *zap.Logger) error {
	for i := range a.Transcripts {
		t := &a.Transcripts[i]
		if t.CDSLength%3 != 0 {
			if strict {
				return fmt.Errorf("%s (%d nt): %w", t.Name, t.CDSLength, ErrPartialCodon)
			}
			logger.Warn("Ignoring partial codon", zap.String("transcript", t.Name), zap.Int("cds_length", t.CDSLength))
		}
		s, ok := seqs[t.Name]
		if !ok {
			if strict {
				return fmt.Errorf("%s: %w", t.Name, ErrMissingSequence)
			}
			a.Missing.Add(t.Name)
			continue
		}
		if len(s) < t.Length() {
			logger.Warn("Sequence shorter than annotation", zap.String("transcript", t.Name), zap.Int("sequence_length", len(s)), zap.Int("annotated_length", t.Length()))
		}
		t.Seq = s
	}
	if a.Missing.Size() > 0 {
		logger.Warn("Transcripts without sequence", zap.Int("n", a.Missing.Size()))
	}
	return nil
}

// Load reads transcript lengths and sequences.
func Load(lengthsPath, fastaPath string, strict bool, logger *zap.Logger) (*Annotation, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	transcripts, err := OpenLengths(lengthsPath)
	if err != nil {
		return nil, err
	}
	a, err := NewAnnotation(transcripts)
	if err != nil {
		return nil, err
	}
	seqs, err := OpenFASTA(fastaPath)
	if err != nil {
		return nil, err
	}
	if err = a.Attach(seqs, strict, logger); err != nil {
		return nil, err
	}
	logger.Info("Loaded transcripts", zap.Int("n", a.Len()), zap.Int("sequences", len(seqs)))
	return a, nil
}
