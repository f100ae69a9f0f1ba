//
// Copyright (C) 2024 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package output

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"regexp"

	goduckdb "github.com/marcboeker/go-duckdb"

	"git.sr.ht/~vejnar/CodonAbacus/lib/feature"
)

const DefaultDuckDBTable = "footprints"

var tableNameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// WriteDuckDB replaces table name of the DuckDB database at path with tbl.
func WriteDuckDB(ctx context.Context, path, name string, tbl *feature.Table, mapping map[string]string) error {
	if name == "" {
		name = DefaultDuckDBTable
	}
	if !tableNameRe.MatchString(name) {
		return fmt.Errorf("invalid table name %q", name)
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return fmt.Errorf("open duckdb: %w", err)
	}
	defer db.Close()

	_, err = db.ExecContext(ctx, fmt.Sprintf(`CREATE OR REPLACE TABLE %s (
		transcript VARCHAR,
		codon INTEGER,
		d5 INTEGER,
		d3 INTEGER,
		a_site VARCHAR,
		p_site VARCHAR,
		e_site VARCHAR,
		f5 VARCHAR,
		f3 VARCHAR,
		count DOUBLE
	)`, name))
	if err != nil {
		return fmt.Errorf("create table: %w", err)
	}

	conn, err := db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	var appender *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		appender, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", name)
		return err
	}); err != nil {
		return fmt.Errorf("create appender: %w", err)
	}

	for i := range tbl.Rows {
		r := &tbl.Rows[i]
		if err := appender.AppendRow(
			MapName(r.Transcript, mapping), int32(r.Codon), int32(r.D5), int32(r.D3),
			r.ASite, r.PSite, r.ESite, r.F5, r.F3, r.Count,
		); err != nil {
			appender.Close()
			return fmt.Errorf("append row: %w", err)
		}
	}
	if err := appender.Close(); err != nil {
		return fmt.Errorf("close appender: %w", err)
	}
	return nil
}
