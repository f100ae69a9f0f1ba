//
// Copyright (C) 2015-2024 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package transcript

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"git.sr.ht/~vejnar/CodonAbacus/lib/xio"
)

// Transcript stores region lengths and the full sequence (UTR5 + CDS + UTR3).
type Transcript struct {
	ID         uint32
	Name       string
	UTR5Length int
	CDSLength  int
	UTR3Length int
	Seq        string
}

// Length returns the annotated length of the transcript.
func (t Transcript) Length() int {
	return t.UTR5Length + t.CDSLength + t.UTR3Length
}

// Codons returns the number of complete codons in the CDS.
func (t Transcript) Codons() int {
	return t.CDSLength / 3
}

// Sorting functions: By Name
// Use it with: sort.Sort(transcript.ByName(transcripts))
type ByName []Transcript

func (t ByName) Len() int           { return len(t) }
func (t ByName) Swap(i, j int)      { t[i], t[j] = t[j], t[i] }
func (t ByName) Less(i, j int) bool { return t[i].Name < t[j].Name }

// OpenLengths parses a whitespace-delimited file with columns name, UTR5, CDS and UTR3 lengths (no header).
func OpenLengths(lpath string) (transcripts []Transcript, err error) {
	lfos, err := xio.Open(lpath)
	if err != nil {
		return
	}
	defer lfos.Close()

	var i uint32
	var nline int
	lscanner := bufio.NewScanner(lfos)
	for lscanner.Scan() {
		nline++
		line := strings.TrimSpace(lscanner.Text())
		if len(line) == 0 || line[0] == '#' {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 4 {
			err = fmt.Errorf("%s:%d: expected 4 columns, found %d", lpath, nline, len(fields))
			return
		}
		var lengths [3]int
		for j := 0; j < 3; j++ {
			lengths[j], err = strconv.Atoi(fields[j+1])
			if err != nil {
				err = fmt.Errorf("%s:%d: %w", lpath, nline, err)
				return
			}
			if lengths[j] < 0 {
				err = fmt.Errorf("%s:%d: negative length %d", lpath, nline, lengths[j])
				return
			}
		}
		t := Transcript{ID: i, Name: fields[0], UTR5Length: lengths[0], CDSLength: lengths[1], UTR3Length: lengths[2]}
		transcripts = append(transcripts, t)
		i++
	}
	if err = lscanner.Err(); err != nil {
		return
	}
	return
}
