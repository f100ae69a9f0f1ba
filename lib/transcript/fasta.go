//
// Copyright (C) 2024 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package transcript

import (
	"fmt"
	"io"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/io/seqio"
	"github.com/biogo/biogo/io/seqio/fasta"
	"github.com/biogo/biogo/seq/linear"

	"git.sr.ht/~vejnar/CodonAbacus/lib/xio"
)

// OpenFASTA reads all sequences of a FASTA file indexed by the first word of their header.
func OpenFASTA(fpath string) (map[string]string, error) {
	ffos, err := xio.Open(fpath)
	if err != nil {
		return nil, err
	}
	defer ffos.Close()
	seqs, err := ReadFASTA(ffos)
	if err != nil {
		return nil, fmt.Errorf("parsing FASTA %s: %w", fpath, err)
	}
	return seqs, nil
}

// ReadFASTA reads all sequences from r. Sequence lines are concatenated until the next header.
func ReadFASTA(r io.Reader) (map[string]string, error) {
	seqs := make(map[string]string)
	t := linear.NewSeq("", nil, alphabet.DNA)
	sc := seqio.NewScanner(fasta.NewReader(r, t))
	for sc.Next() {
		s := sc.Seq().(*linear.Seq)
		if _, ok := seqs[s.ID]; ok {
			return seqs, fmt.Errorf("duplicate sequence %s", s.ID)
		}
		seqs[s.ID] = string(s.Seq)
	}
	if err := sc.Error(); err != nil {
		return seqs, err
	}
	return seqs, nil
}
