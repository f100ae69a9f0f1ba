//
// Copyright © 2015 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package main

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"git.sr.ht/~vejnar/CodonAbacus/lib/esam"
	"git.sr.ht/~vejnar/CodonAbacus/lib/feature"
	"git.sr.ht/~vejnar/CodonAbacus/lib/output"
)

var version = "DEV"

func splitList(raw string) (l []string) {
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			l = append(l, s)
		}
	}
	return
}

func checkPath(p string) error {
	if _, err := os.Stat(p); os.IsNotExist(err) {
		return fmt.Errorf("%s not found", p)
	}
	return nil
}

func newLogger(verboseLevel int) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.DisableStacktrace = true
	cfg.DisableCaller = true
	switch {
	case verboseLevel >= 2:
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case verboseLevel == 1:
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	default:
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	}
	return cfg.Build()
}

// loadOptions reads options from flags, environment and config file.
func loadOptions(v *viper.Viper) (opts Options, err error) {
	if cfgPath := v.GetString("config"); cfgPath != "" {
		v.SetConfigFile(cfgPath)
		if err = v.ReadInConfig(); err != nil {
			return opts, fmt.Errorf("reading config %s: %w", cfgPath, err)
		}
	}

	// Input
	for _, p := range splitList(v.GetString("path_sam")) {
		opts.PathSAMs = append(opts.PathSAMs, esam.PathSAM{Path: p, Binary: false})
	}
	for _, p := range splitList(v.GetString("path_bam")) {
		opts.PathSAMs = append(opts.PathSAMs, esam.PathSAM{Path: p, Binary: true})
	}
	if len(opts.PathSAMs) == 0 {
		return opts, fmt.Errorf("no SAM/BAM input")
	}
	opts.SAMCmdIn = splitList(v.GetString("sam_command_in"))
	opts.PathLengths = v.GetString("path_lengths")
	opts.PathFASTA = v.GetString("path_fasta")
	opts.PathOffsets = v.GetString("path_offsets")
	if opts.PathLengths == "" || opts.PathFASTA == "" || opts.PathOffsets == "" {
		return opts, fmt.Errorf("path_lengths, path_fasta and path_offsets are required")
	}
	for _, p := range []string{opts.PathLengths, opts.PathFASTA, opts.PathOffsets} {
		if err = checkPath(p); err != nil {
			return opts, err
		}
	}
	for _, p := range opts.PathSAMs {
		if err = checkPath(p.Path); err != nil {
			return opts, err
		}
	}
	opts.WeightTag = v.GetString("weight_tag")
	if opts.WeightTag != "" && len(opts.WeightTag) != 2 {
		return opts, fmt.Errorf("weight_tag must be 2 characters: %q", opts.WeightTag)
	}
	opts.KeepSecondary = v.GetBool("keep_secondary")

	// Features
	opts.D5Raw = v.GetString("d5")
	opts.D3Raw = v.GetString("d3")
	opts.Bias5Length, opts.Bias3Length = feature.DefaultBias5Length, feature.DefaultBias3Length
	if v.IsSet("bias5_length") {
		opts.Bias5Length = v.GetInt("bias5_length")
	}
	if v.IsSet("bias3_length") {
		opts.Bias3Length = v.GetInt("bias3_length")
	}
	if opts.Bias5Length < 0 || opts.Bias3Length < 0 {
		return opts, fmt.Errorf("bias lengths must be positive or 0: %d %d", opts.Bias5Length, opts.Bias3Length)
	}

	// Run
	opts.Strict = v.GetBool("strict")
	opts.NWorker = v.GetInt("num_worker")

	// Output
	opts.PathOutput = v.GetString("path_output")
	opts.OutputFormat = v.GetString("output_format")
	if opts.PathOutput != "" {
		if _, _, err = output.ParseFormat(opts.OutputFormat); err != nil {
			return opts, err
		}
	}
	opts.PathDuckDB = v.GetString("path_duckdb")
	opts.DuckDBTable = v.GetString("duckdb_table")
	opts.PathMapping = v.GetString("path_mapping")
	opts.PathReport = v.GetString("path_report")
	return opts, nil
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	cmd := &cobra.Command{
		Use:   "codonabacus",
		Short: "Count ribosome footprints per codon and digest length",
		Long: `Build the codon-level regression table of a ribosome profiling experiment:
every (transcript, codon, 5' digest length, 3' digest length) with its A/P/E site
codons and bias sequences, and the number of footprints aligned to it.`,
		Example: `  codonabacus --path_bam ribo.bam --path_lengths lengths.txt --path_fasta tx.fa \
    --path_offsets offsets.txt --d5 15:18 --d3 9:11 --path_output table.csv --path_report -`,
		Version:      version,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Verbose
			verboseLevel := v.GetInt("verbose_level")
			if v.GetBool("verbose") && verboseLevel == 0 {
				verboseLevel = 1
			}
			logger, err := newLogger(verboseLevel)
			if err != nil {
				return err
			}
			defer logger.Sync()

			opts, err := loadOptions(v)
			if err != nil {
				return err
			}

			timeStart := time.Now()
			tbl, report, err := Prepare(cmd.Context(), opts, logger)
			if err != nil {
				return err
			}
			logger.Info("Done", zap.Int("rows", tbl.Len()), zap.Int("align", report.Alignments), zap.Float64("min", time.Since(timeStart).Minutes()))
			return nil
		},
	}

	flags := cmd.Flags()
	// Arguments: General
	flags.String("config", "", "Path to config file (yaml, toml or json)")
	flags.IntP("num_worker", "p", runtime.NumCPU(), "Number of worker(s)")
	flags.Bool("verbose", false, "Verbose")
	flags.Int("verbose_level", 0, "Verbose level")
	flags.Bool("strict", false, "Fail on missing sequence, unknown transcript, missing weight or footprint outside of the feature table (default drop and report)")
	// Arguments: Input
	flags.String("path_sam", "", "Path to SAM file(s) (comma separated)")
	flags.String("path_bam", "", "Path to BAM file(s) (comma separated)")
	flags.String("sam_command_in", "", "Command line to execute for opening each of the SAM file (comma separated)")
	flags.String("path_lengths", "", "Path to transcript lengths: name, 5'UTR, CDS and 3'UTR lengths")
	flags.String("path_fasta", "", "Path to transcript sequences (FASTA)")
	flags.String("path_offsets", "", "Path to 5' digest length per read length and frame")
	flags.String("weight_tag", "", "SAM tag with the alignment weight (each alignment weighs 1 if empty)")
	flags.Bool("keep_secondary", false, "Include secondary and supplementary alignments")
	// Arguments: Features
	flags.String("d5", "", "5' digest length(s), e.g. 15:18 or 15,16 (default from offsets)")
	flags.String("d3", "", "3' digest length(s), e.g. 9:11 (default from offsets)")
	flags.Int("bias5_length", feature.DefaultBias5Length, "Length of 5' bias sequence")
	flags.Int("bias3_length", feature.DefaultBias3Length, "Length of 3' bias sequence")
	// Arguments: Output
	flags.String("path_output", "", "Path to table output (stdout with -)")
	flags.String("output_format", "csv", "Table output format: 'csv' or 'tsv', optionally compressed with '+lz4' or '+lz4hc'")
	flags.String("path_duckdb", "", "Path to DuckDB database to write the table")
	flags.String("duckdb_table", output.DefaultDuckDBTable, "DuckDB table name")
	flags.String("path_mapping", "", "Path to transcript name(s) mapping (tabulated file)")
	flags.String("path_report", "", "Write report to path (stdout with -)")

	v.SetEnvPrefix("CODONABACUS")
	v.AutomaticEnv()
	if err := v.BindPFlags(flags); err != nil {
		panic(err)
	}
	return cmd
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
