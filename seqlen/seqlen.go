// Copyright ©2017 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// seqlen filters GenBank flat file records, such as the taxid_<taxid>_sample.gb
// files written by taxfetch, by sequence length. Kept records are written as
// FASTA, or as an Accession,Length,Description CSV table with -csv.
package main

import (
	"flag"
	"log"
	"os"

	"github.com/biogo/ncbitools/taxfetch/genbank"
	"github.com/biogo/ncbitools/taxfetch/lenfilt"
	"github.com/biogo/ncbitools/taxfetch/report"
)

var (
	inf   = flag.String("in", "", "input GenBank file name. Defaults to stdin.")
	outf  = flag.String("out", "", "output file name. Defaults to stdout")
	min   = flag.Int("min", 2500, "minimum sequence length cut-off (bp), inclusive")
	max   = flag.Int("max", lenfilt.Unbounded, "maximum sequence length cut-off (bp), inclusive")
	asCSV = flag.Bool("csv", false, "write a CSV summary instead of FASTA")
	help  = flag.Bool("help", false, "help prints this message.")
)

func main() {
	flag.Parse()
	if *help {
		flag.Usage()
		os.Exit(0)
	}

	var r *genbank.Reader
	if *inf == "" {
		r = genbank.NewReader(os.Stdin)
	} else if in, err := os.Open(*inf); err != nil {
		log.Fatalf("failed to open %q: %v", *inf, err)
	} else {
		defer in.Close()
		r = genbank.NewReader(in)
	}

	out := os.Stdout
	if *outf != "" {
		var err error
		if out, err = os.Create(*outf); err != nil {
			log.Fatalf("failed to open %q: %v", *outf, err)
		}
	}
	defer out.Close()

	kept, n, err := lenfilt.Select(r, *min, *max)
	if err != nil {
		log.Fatalf("after %d records: %v", n, err)
	}
	if *asCSV {
		err = report.WriteCSV(out, lenfilt.Rows(kept))
	} else {
		_, err = report.WriteFASTA(out, kept)
	}
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("kept %d of %d records", len(kept), n)
}
