//
// Copyright (C) 2015-2024 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"gopkg.in/fatih/set.v0"

	"git.sr.ht/~vejnar/CodonAbacus/lib/abacus"
	"git.sr.ht/~vejnar/CodonAbacus/lib/footprint"
)

type Report struct {
	Transcripts      int      `json:"transcripts"`
	MissingSequences []string `json:"missing_sequences,omitempty"`
	D5               []int    `json:"d5"`
	D3               []int    `json:"d3"`
	Rows             int      `json:"rows"`

	Alignments         int                   `json:"alignments"`
	Skipped            int                   `json:"skipped"`
	Stages             []footprint.StageStat `json:"stages"`
	OutOfCDSRegions    map[string]int        `json:"out_of_cds_regions,omitempty"`
	UnknownTranscripts []string              `json:"unknown_transcripts,omitempty"`
	DefaultWeights     int                   `json:"default_weight"`
	Kept               int                   `json:"kept"`
	KeptWeight         float64               `json:"kept_weight"`

	Join       abacus.JoinStats `json:"join"`
	TotalCount float64          `json:"total_count"`
}

func sortedStrings(s set.Interface) []string {
	if s == nil || s.Size() == 0 {
		return nil
	}
	l := set.StringSlice(s)
	sort.Strings(l)
	return l
}

func WriteReport(pathReport string, report *Report) error {
	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	if pathReport != "-" {
		return os.WriteFile(pathReport, append(out, '\n'), 0o644)
	}
	fmt.Println(string(out))
	return nil
}
