//
// Copyright (C) 2024 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.sr.ht/~vejnar/CodonAbacus/lib/feature"
)

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a.bam", "b.bam"}, splitList("a.bam, b.bam,"))
	assert.Nil(t, splitList(""))
}

func TestLoadOptions(t *testing.T) {
	fx := newFixture(t)

	v := viper.New()
	_, err := loadOptions(v)
	assert.Error(t, err)

	v.Set("path_bam", fx.bam)
	_, err = loadOptions(v)
	assert.Error(t, err)

	v.Set("path_lengths", fx.lengths)
	v.Set("path_fasta", fx.fasta)
	v.Set("path_offsets", fx.offsets)
	v.Set("num_worker", 3)
	opts, err := loadOptions(v)
	require.NoError(t, err)
	assert.Len(t, opts.PathSAMs, 1)
	assert.True(t, opts.PathSAMs[0].Binary)
	assert.Equal(t, 3, opts.NWorker)
	assert.Equal(t, feature.DefaultBias5Length, opts.Bias5Length)
	assert.Equal(t, feature.DefaultBias3Length, opts.Bias3Length)

	v.Set("bias5_length", 0)
	opts, err = loadOptions(v)
	require.NoError(t, err)
	assert.Equal(t, 0, opts.Bias5Length)
	v.Set("bias3_length", -1)
	_, err = loadOptions(v)
	assert.Error(t, err)
	v.Set("bias3_length", 3)

	v.Set("weight_tag", "ZWX")
	_, err = loadOptions(v)
	assert.Error(t, err)
	v.Set("weight_tag", "ZW")

	v.Set("path_output", "-")
	v.Set("output_format", "parquet")
	_, err = loadOptions(v)
	assert.Error(t, err)
	v.Set("output_format", "tsv+lz4")
	_, err = loadOptions(v)
	assert.NoError(t, err)

	v.Set("path_offsets", filepath.Join(fx.dir, "missing.txt"))
	_, err = loadOptions(v)
	assert.Error(t, err)
}

func TestLoadOptionsConfig(t *testing.T) {
	fx := newFixture(t)
	cfg := filepath.Join(fx.dir, "config.json")
	b, err := json.Marshal(map[string]any{
		"path_bam":     fx.bam,
		"path_lengths": fx.lengths,
		"path_fasta":   fx.fasta,
		"path_offsets": fx.offsets,
		"d5":           "11:12",
		"strict":       true,
	})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(cfg, b, 0o644))

	v := viper.New()
	v.Set("config", cfg)
	opts, err := loadOptions(v)
	require.NoError(t, err)
	assert.Equal(t, "11:12", opts.D5Raw)
	assert.True(t, opts.Strict)
}

func TestRootCmd(t *testing.T) {
	fx := newFixture(t)
	pathReport := filepath.Join(fx.dir, "report.json")
	pathOutput := filepath.Join(fx.dir, "table.csv.lz4")

	cmd := newRootCmd()
	cmd.SetArgs([]string{
		"--path_bam", fx.bam,
		"--path_lengths", fx.lengths,
		"--path_fasta", fx.fasta,
		"--path_offsets", fx.offsets,
		"--d5", "12",
		"--d3", "13",
		"--output_format", "csv+lz4",
		"--path_output", pathOutput,
		"--path_report", pathReport,
		"-p", "2",
	})
	require.NoError(t, cmd.Execute())

	b, err := os.ReadFile(pathReport)
	require.NoError(t, err)
	var report Report
	require.NoError(t, json.Unmarshal(b, &report))
	assert.Equal(t, 10, report.Rows)
	assert.Equal(t, 2., report.TotalCount)
	assert.Equal(t, 1, report.Join.Unmatched)
	assert.FileExists(t, pathOutput)
}

func TestRootCmdStrict(t *testing.T) {
	fx := newFixture(t)
	cmd := newRootCmd()
	cmd.SetArgs([]string{
		"--path_bam", fx.bam,
		"--path_lengths", fx.lengths,
		"--path_fasta", fx.fasta,
		"--path_offsets", fx.offsets,
		"--strict",
	})
	cmd.SetErr(new(nopWriter))
	assert.Error(t, cmd.Execute())
}

type nopWriter struct{}

func (*nopWriter) Write(p []byte) (int, error) { return len(p), nil }

func TestRootCmdBiasLength(t *testing.T) {
	fx := newFixture(t)
	pathOutput := filepath.Join(fx.dir, "table.tsv")
	cmd := newRootCmd()
	cmd.SetArgs([]string{
		"--path_bam", fx.bam,
		"--path_lengths", fx.lengths,
		"--path_fasta", fx.fasta,
		"--path_offsets", fx.offsets,
		"--d5", "12",
		"--d3", "13",
		"--bias5_length", "0",
		"--output_format", "tsv",
		"--path_output", pathOutput,
	})
	require.NoError(t, cmd.Execute())

	b, err := os.ReadFile(pathOutput)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	require.Len(t, lines, 11)
	for _, line := range lines[1:] {
		assert.Equal(t, "", strings.Split(line, "\t")[7])
	}
}
