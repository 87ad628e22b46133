// Copyright ©2026 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package genbank

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/biogo/biogo/alphabet"
	"gopkg.in/check.v1"
)

func Test(t *testing.T) { check.TestingT(t) }

type S struct{}

var _ = check.Suite(&S{})

const twoRecords = `LOCUS       MN908947               30 bp    RNA     linear   VRL 18-MAR-2020
DEFINITION  Severe acute respiratory syndrome coronavirus 2 isolate Wuhan-Hu-1,
            complete genome.
ACCESSION   MN908947
VERSION     MN908947.3
KEYWORDS    .
SOURCE      Severe acute respiratory syndrome coronavirus 2 (SARS-CoV-2)
  ORGANISM  Severe acute respiratory syndrome coronavirus 2
            Viruses; Riboviria; Orthornavirae.
FEATURES             Location/Qualifiers
     source          1..30
                     /organism="Severe acute respiratory syndrome coronavirus 2"
ORIGIN
        1 attaaaggtt tataccttcc caggtaacaa
//

LOCUS       AB000001                8 bp    DNA     linear   VRL 01-JAN-2000
DEFINITION  Short test sequence.
ACCESSION   AB000001 AB000002
ORIGIN
        1 ACGTNNRY
//
`

func letters(l alphabet.Letters) string {
	b := make([]byte, len(l))
	for i, v := range l {
		b[i] = byte(v)
	}
	return string(b)
}

func (s *S) TestRead(c *check.C) {
	r := NewReader(strings.NewReader(twoRecords))

	rec, err := r.Read()
	c.Assert(err, check.IsNil)
	c.Check(rec.Name, check.Equals, "MN908947")
	c.Check(rec.Accession, check.Equals, "MN908947.3")
	c.Check(rec.Description, check.Equals, "Severe acute respiratory syndrome coronavirus 2 isolate Wuhan-Hu-1, complete genome")
	c.Check(rec.Organism, check.Equals, "Severe acute respiratory syndrome coronavirus 2")
	c.Check(rec.Molecule, check.Equals, "RNA")
	c.Check(rec.Declared, check.Equals, 30)
	c.Check(rec.Len(), check.Equals, 30)
	c.Assert(rec.Seq, check.NotNil)
	c.Check(rec.Seq.Name(), check.Equals, "MN908947.3")
	c.Check(rec.Seq.Description(), check.Equals, rec.Description)
	c.Check(letters(rec.Seq.Seq[:10]), check.Equals, "attaaaggtt")

	rec, err = r.Read()
	c.Assert(err, check.IsNil)
	c.Check(rec.Accession, check.Equals, "AB000001", check.Commentf("no VERSION falls back to ACCESSION"))
	c.Check(rec.Description, check.Equals, "Short test sequence")
	c.Check(rec.Len(), check.Equals, 8)
	c.Check(letters(rec.Seq.Seq), check.Equals, "acgtnnry")

	_, err = r.Read()
	c.Check(err, check.Equals, io.EOF)
}

func (s *S) TestNoOrigin(c *check.C) {
	const master = `LOCUS       XX000001             12000 bp    DNA     linear   CON 01-JAN-2020
DEFINITION  Contig record
CONTIG      join(XX000002.1:1..12000)
//
`
	r := NewReader(strings.NewReader(master))
	rec, err := r.Read()
	c.Assert(err, check.IsNil)
	c.Check(rec.Accession, check.Equals, "XX000001", check.Commentf("falls back to LOCUS name"))
	c.Check(rec.Seq, check.IsNil)
	c.Check(rec.Len(), check.Equals, 12000)
}

func (s *S) TestErrors(c *check.C) {
	for i, t := range []struct {
		in  string
		err error
	}{
		{in: "LOCUS       X1   ten bp  DNA\n//\n", err: ErrBadLocus},
		{in: "LOCUS       X1\n//\n", err: ErrBadLocus},
		{in: "LOCUS       X1   10 bp  DNA\nORIGIN\n        1 acgtacgtac\n", err: ErrTruncated},
	} {
		_, err := NewReader(strings.NewReader(t.in)).Read()
		c.Check(errors.Is(err, t.err), check.Equals, true, check.Commentf("Test %d: %v", i, err))
	}
}

func (s *S) TestEmpty(c *check.C) {
	for _, in := range []string{"", "\n\n", "Error: nothing here\n"} {
		_, err := NewReader(strings.NewReader(in)).Read()
		c.Check(err, check.Equals, io.EOF)
	}
}
