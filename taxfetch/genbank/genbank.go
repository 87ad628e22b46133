// Copyright ©2026 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package genbank provides a streaming reader for GenBank flat file records
// as returned by Entrez efetch with rettype=gb and retmode=text.
//
// Only the header fields needed to identify and measure a record are
// decoded: LOCUS, DEFINITION, ACCESSION, VERSION, SOURCE/ORGANISM and the
// ORIGIN sequence block. All other sections, including the feature table,
// are skipped.
package genbank

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/seq/linear"
)

const (
	keywordWidth = 12
	terminator   = "//"
	maxLineLen   = 1 << 20
)

var (
	// ErrTruncated is returned when input ends inside a record.
	ErrTruncated = errors.New("genbank: record not terminated")
	// ErrBadLocus is returned when a LOCUS line cannot be decoded.
	ErrBadLocus = errors.New("genbank: malformed LOCUS line")
)

// Record is a decoded GenBank entry.
type Record struct {
	Name        string // LOCUS name.
	Accession   string // accession.version when available.
	Description string // DEFINITION without its trailing period.
	Organism    string
	Molecule    string

	// Declared is the length given on the LOCUS line.
	Declared int

	// Seq holds the ORIGIN sequence. It is nil when the record
	// has no ORIGIN block, for example CONTIG or WGS master records.
	Seq *linear.Seq
}

// Len returns the sequence length of the record. When the record carries
// no sequence data the LOCUS length is returned.
func (r *Record) Len() int {
	if r.Seq != nil && r.Seq.Len() > 0 {
		return r.Seq.Len()
	}
	return r.Declared
}

// Reader reads GenBank records from an io.Reader.
type Reader struct {
	sc   *bufio.Scanner
	line int
	err  error
}

// NewReader returns a new Reader reading from r.
func NewReader(r io.Reader) *Reader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 4096), maxLineLen)
	return &Reader{sc: sc}
}

func (r *Reader) next() (string, bool) {
	if !r.sc.Scan() {
		r.err = r.sc.Err()
		return "", false
	}
	r.line++
	return strings.TrimRight(r.sc.Text(), " \t\r"), true
}

// Read returns the next record in the stream. It returns io.EOF when
// no further records are available. Text preceding the first LOCUS line
// is ignored.
func (r *Reader) Read() (*Record, error) {
	var (
		line string
		ok   bool
	)
	for {
		line, ok = r.next()
		if !ok {
			if r.err != nil {
				return nil, r.err
			}
			return nil, io.EOF
		}
		if keyword(line) == "LOCUS" {
			break
		}
	}

	rec, err := parseLocus(line)
	if err != nil {
		return nil, fmt.Errorf("line %d: %w", r.line, err)
	}

	var (
		key      string
		def      []string
		version  string
		acc      string
		seq      []byte
		inOrigin bool
	)
	for {
		line, ok = r.next()
		if !ok {
			if r.err != nil {
				return nil, r.err
			}
			return nil, fmt.Errorf("line %d: %q: %w", r.line, rec.Name, ErrTruncated)
		}
		if line == terminator {
			break
		}
		if inOrigin {
			seq = appendBases(seq, line)
			continue
		}
		if line == "" {
			continue
		}

		k := keyword(line)
		if k != "" {
			key = k
		}
		switch key {
		case "DEFINITION":
			def = append(def, value(line))
		case "ACCESSION":
			if k != "" {
				if f := strings.Fields(value(line)); len(f) != 0 {
					acc = f[0]
				}
			}
		case "VERSION":
			if k != "" {
				if f := strings.Fields(value(line)); len(f) != 0 {
					version = f[0]
				}
			}
		case "SOURCE":
			if strings.HasPrefix(line, "  ORGANISM") && rec.Organism == "" {
				rec.Organism = value(line)
			}
		case "ORIGIN":
			inOrigin = true
		}
	}

	switch {
	case version != "":
		rec.Accession = version
	case acc != "":
		rec.Accession = acc
	default:
		rec.Accession = rec.Name
	}
	rec.Description = strings.TrimSuffix(strings.Join(def, " "), ".")
	if len(seq) != 0 {
		rec.Seq = linear.NewSeq(rec.Accession, alphabet.BytesToLetters(seq), alphabet.DNAredundant)
		rec.Seq.Desc = rec.Description
	}
	return rec, nil
}

// keyword returns the top level keyword of a line, or the empty string
// for continuation and sub-keyword lines.
func keyword(line string) string {
	if line == "" || line[0] == ' ' {
		return ""
	}
	if i := strings.IndexByte(line, ' '); i >= 0 {
		return line[:i]
	}
	return line
}

// value returns the content of a line following the keyword columns.
func value(line string) string {
	if len(line) <= keywordWidth {
		return ""
	}
	return strings.TrimSpace(line[keywordWidth:])
}

// parseLocus decodes a LOCUS line. The length is taken from the token
// preceding the "bp" or "aa" unit so that long names that have run into
// the length column are tolerated.
func parseLocus(line string) (*Record, error) {
	f := strings.Fields(line)
	if len(f) < 2 {
		return nil, ErrBadLocus
	}
	rec := &Record{Name: f[1]}
	for i := 2; i < len(f); i++ {
		if f[i] != "bp" && f[i] != "aa" {
			continue
		}
		n, err := strconv.Atoi(f[i-1])
		if err != nil {
			return nil, fmt.Errorf("%w: length %q", ErrBadLocus, f[i-1])
		}
		rec.Declared = n
		if i+1 < len(f) {
			rec.Molecule = f[i+1]
		}
		return rec, nil
	}
	return nil, fmt.Errorf("%w: no length", ErrBadLocus)
}

// appendBases appends the sequence letters of an ORIGIN line to dst,
// dropping the position numbers and spacing.
func appendBases(dst []byte, line string) []byte {
	for _, f := range strings.Fields(line) {
		if f[0] >= '0' && f[0] <= '9' {
			continue
		}
		dst = append(dst, bytes.ToLower([]byte(f))...)
	}
	return dst
}
