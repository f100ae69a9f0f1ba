//
// Copyright (C) 2015-2024 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package output

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pierrec/lz4"

	"git.sr.ht/~vejnar/CodonAbacus/lib/feature"
)

var Header = []string{"transcript", "codon", "d5", "d3", "a_site", "p_site", "e_site", "f5", "f3", "count"}

type GenericWriter interface {
	Write(buf []byte) (n int, err error)
	Close() error
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

// ParseFormat splits a format such as "csv+lz4" into format and compression.
func ParseFormat(tableFormat string) (format, zip string, err error) {
	format = tableFormat
	if strings.Contains(tableFormat, "+") {
		format, zip, _ = strings.Cut(tableFormat, "+")
	}
	if format != "csv" && format != "tsv" {
		return format, zip, fmt.Errorf("unknown table format %s", format)
	}
	if zip != "" && zip != "lz4" && zip != "lz4hc" {
		return format, zip, fmt.Errorf("unknown compression %s", zip)
	}
	return format, zip, nil
}

// WriteTable writes tbl to w in format csv or tsv. Transcript names are renamed with mapping if not empty.
func WriteTable(w io.Writer, tbl *feature.Table, format string, mapping map[string]string) error {
	cw := csv.NewWriter(w)
	if format == "tsv" {
		cw.Comma = '\t'
	}
	if err := cw.Write(Header); err != nil {
		return err
	}
	record := make([]string, len(Header))
	for i := range tbl.Rows {
		r := &tbl.Rows[i]
		record[0] = MapName(r.Transcript, mapping)
		record[1] = strconv.Itoa(r.Codon)
		record[2] = strconv.Itoa(r.D5)
		record[3] = strconv.Itoa(r.D3)
		record[4] = r.ASite
		record[5] = r.PSite
		record[6] = r.ESite
		record[7] = r.F5
		record[8] = r.F3
		record[9] = strconv.FormatFloat(r.Count, 'f', -1, 64)
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteTableFile writes tbl to path. tableFormat is csv or tsv, optionally compressed with "+lz4" or "+lz4hc".
func WriteTableFile(path string, tbl *feature.Table, tableFormat string, mapping map[string]string) error {
	format, zip, err := ParseFormat(tableFormat)
	if err != nil {
		return err
	}
	var out io.Writer
	var f *os.File
	if path == "-" {
		out = os.Stdout
	} else {
		if f, err = os.Create(path); err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	bw := bufio.NewWriter(out)
	var writer GenericWriter
	switch zip {
	case "lz4":
		writer = lz4.NewWriter(bw)
	case "lz4hc":
		lzWriter := lz4.NewWriter(bw)
		lzWriter.Header = lz4.Header{CompressionLevel: 9}
		writer = lzWriter
	default:
		writer = nopCloser{bw}
	}
	if err = WriteTable(writer, tbl, format, mapping); err != nil {
		return err
	}
	if err = writer.Close(); err != nil {
		return err
	}
	if err = bw.Flush(); err != nil {
		return err
	}
	if f != nil {
		return f.Close()
	}
	return nil
}
