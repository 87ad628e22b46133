// Copyright ©2026 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package report renders filtered record summaries as CSV, FASTA,
// charts and run summaries.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/biogo/biogo/io/seqio/fasta"

	"github.com/biogo/ncbitools/taxfetch/genbank"
	"github.com/biogo/ncbitools/taxfetch/lenfilt"
)

// Header is the CSV column header.
var Header = []string{"Accession", "Length", "Description"}

// WriteCSV writes rows to w in input order, preceded by Header.
func WriteCSV(w io.Writer, rows []lenfilt.Row) error {
	cw := csv.NewWriter(w)
	err := cw.Write(Header)
	if err != nil {
		return err
	}
	for _, r := range rows {
		err = cw.Write([]string{r.Accession, strconv.Itoa(r.Length), r.Description})
		if err != nil {
			return fmt.Errorf("failed to write row %q: %w", r.Accession, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFASTA writes the sequences of recs to w wrapped at 60 columns.
// Records without sequence data are skipped. It returns the number of
// sequences written.
func WriteFASTA(w io.Writer, recs []*genbank.Record) (int, error) {
	fw := fasta.NewWriter(w, 60)
	var n int
	for _, rec := range recs {
		if rec.Seq == nil {
			continue
		}
		_, err := fw.Write(rec.Seq)
		if err != nil {
			return n, fmt.Errorf("failed to write sequence %q: %w", rec.Accession, err)
		}
		n++
	}
	return n, nil
}
