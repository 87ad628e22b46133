// Copyright ©2026 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package lenfilt selects GenBank records by sequence length and
// summarises the lengths of the selection.
package lenfilt

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/biogo/store/llrb"
	"gonum.org/v1/gonum/stat"

	"github.com/biogo/ncbitools/taxfetch/genbank"
)

// Unbounded is the maximum length cut-off used when no upper bound is given.
const Unbounded = math.MaxInt32

// Row is the tabular summary of a selected record.
type Row struct {
	Accession   string
	Length      int
	Description string
}

// Keep returns whether a length lies within the closed interval [min, max].
func Keep(length, min, max int) bool {
	return min <= length && length <= max
}

// Select reads all records from r and returns those whose length lies
// within [min, max], in input order, along with the number of records read.
func Select(r *genbank.Reader, min, max int) (kept []*genbank.Record, n int, err error) {
	for {
		rec, err := r.Read()
		if err != nil {
			if err == io.EOF {
				return kept, n, nil
			}
			return kept, n, fmt.Errorf("failed during read: %w", err)
		}
		n++
		if Keep(rec.Len(), min, max) {
			kept = append(kept, rec)
		}
	}
}

// Filter returns the records of recs with lengths within [min, max].
func Filter(recs []*genbank.Record, min, max int) []*genbank.Record {
	var kept []*genbank.Record
	for _, rec := range recs {
		if Keep(rec.Len(), min, max) {
			kept = append(kept, rec)
		}
	}
	return kept
}

// Rows returns the summary rows for recs.
func Rows(recs []*genbank.Record) []Row {
	rows := make([]Row, len(recs))
	for i, rec := range recs {
		rows[i] = Row{Accession: rec.Accession, Length: rec.Len(), Description: rec.Description}
	}
	return rows
}

type ranked Row

// Compare orders by descending length and then by accession.
func (r ranked) Compare(b llrb.Comparable) int {
	o := b.(ranked)
	switch {
	case r.Length > o.Length:
		return -1
	case r.Length < o.Length:
		return 1
	}
	return strings.Compare(r.Accession, o.Accession)
}

// Rank returns rows ordered by descending length, ties broken by accession.
// Rows sharing both accession and length are reported once.
func Rank(rows []Row) []Row {
	var t llrb.Tree
	for _, r := range rows {
		t.Insert(ranked(r))
	}
	out := make([]Row, 0, t.Len())
	t.Do(func(c llrb.Comparable) (done bool) {
		out = append(out, Row(c.(ranked)))
		return false
	})
	return out
}

// Stats holds length statistics in base pairs.
type Stats struct {
	Count  int     `yaml:"count"`
	Total  int     `yaml:"total"`
	Min    int     `yaml:"min"`
	Max    int     `yaml:"max"`
	Mean   float64 `yaml:"mean"`
	Median float64 `yaml:"median"`
	StdDev float64 `yaml:"stddev"`
	N50    int     `yaml:"n50"`
}

// Summarise returns the length statistics of rows. The zero Stats is
// returned for an empty slice.
func Summarise(rows []Row) Stats {
	var s Stats
	if len(rows) == 0 {
		return s
	}
	lens := make([]float64, len(rows))
	seqlens := make([]int, len(rows))
	s.Min = math.MaxInt32
	for i, r := range rows {
		lens[i] = float64(r.Length)
		seqlens[i] = r.Length
		s.Count++
		s.Total += r.Length
		if r.Length < s.Min {
			s.Min = r.Length
		}
		if r.Length > s.Max {
			s.Max = r.Length
		}
	}

	sort.Float64s(lens)
	s.Mean = stat.Mean(lens, nil)
	s.Median = stat.Quantile(0.5, stat.Empirical, lens, nil)
	if s.Count > 1 {
		s.StdDev = stat.StdDev(lens, nil)
	}

	// Sort in descending order of length and walk the cumulative
	// sum until half the total is covered.
	sort.Sort(sort.Reverse(sort.IntSlice(seqlens)))
	for i, csum := 0, 0; i < len(seqlens); i++ {
		csum += seqlens[i]
		if 2*csum >= s.Total {
			s.N50 = seqlens[i]
			break
		}
	}
	return s
}
