// Copyright ©2026 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package report

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"github.com/biogo/ncbitools/taxfetch/lenfilt"
)

// Summary describes a completed retrieval.
type Summary struct {
	TaxID    int           `yaml:"taxid"`
	Organism string        `yaml:"organism"`
	Hits     int           `yaml:"hits"`
	Fetched  int           `yaml:"fetched"`
	MinLen   int           `yaml:"min_length"`
	MaxLen   int           `yaml:"max_length"`
	Lengths  lenfilt.Stats `yaml:"lengths"`
	Files    []string      `yaml:"files"`
}

// WriteSummary writes s to w as YAML.
func WriteSummary(w io.Writer, s Summary) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	err := enc.Encode(s)
	if err != nil {
		return err
	}
	return enc.Close()
}

var heading = color.New(color.Bold, color.FgGreen)

// PrintSummary writes a human readable table of s to w.
func PrintSummary(w io.Writer, s Summary) error {
	_, err := heading.Fprintf(w, "%s (TaxID: %d)\n", s.Organism, s.TaxID)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	st := s.Lengths
	for _, kv := range []struct {
		key string
		val interface{}
	}{
		{"hits", s.Hits},
		{"fetched", s.Fetched},
		{"selected", st.Count},
		{"range", fmt.Sprintf("%d-%d bp", s.MinLen, s.MaxLen)},
		{"total", st.Total},
		{"min", st.Min},
		{"max", st.Max},
		{"mean", fmt.Sprintf("%.1f", st.Mean)},
		{"median", fmt.Sprintf("%.1f", st.Median)},
		{"stddev", fmt.Sprintf("%.1f", st.StdDev)},
		{"N50", st.N50},
	} {
		fmt.Fprintf(tw, "%s\t%v\n", kv.key, kv.val)
	}
	for _, f := range s.Files {
		fmt.Fprintf(tw, "file\t%s\n", f)
	}
	return tw.Flush()
}
