// Copyright ©2026 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package retrieve finds and fetches the nucleotide records of a taxon
// from NCBI Entrez using a server-side search history.
package retrieve

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/biogo/ncbi/entrez"
	"go.uber.org/zap"
)

const (
	// MaxPerRequest is the largest number of records requested by
	// a single efetch call.
	MaxPerRequest = 500

	nucleotide = "nucleotide"
	taxonomy   = "taxonomy"
)

var (
	// ErrNoHistory is returned by Fetch when no search has been run.
	ErrNoHistory = errors.New("retrieve: no search history")
	// ErrNoTaxon is returned when the taxonomy database has no entry
	// for the requested taxid.
	ErrNoTaxon = errors.New("retrieve: taxon not found")
)

// Service is the subset of the Entrez E-utilities used by a Retriever.
type Service interface {
	// Search runs an esearch on db. When h is not nil the search
	// is stored on the server and h is updated to refer to it.
	Search(db, term string, h *entrez.History) (count int, err error)

	// Fetch runs an efetch on db for the given ids or, when h is not
	// nil, for the records held in the history.
	Fetch(db string, p *entrez.Parameters, h *entrez.History, id ...int) (io.ReadCloser, error)
}

// Entrez is a Service backed by the NCBI E-utilities servers.
type Entrez struct {
	Tool  string
	Email string
}

// Search implements Service.
func (e Entrez) Search(db, term string, h *entrez.History) (int, error) {
	s, err := entrez.DoSearch(db, term, nil, h, e.Tool, e.Email)
	if err != nil {
		return 0, err
	}
	return s.Count, nil
}

// Fetch implements Service.
func (e Entrez) Fetch(db string, p *entrez.Parameters, h *entrez.History, id ...int) (io.ReadCloser, error) {
	return entrez.Fetch(db, p, e.Tool, e.Email, h, id...)
}

// Term returns the esearch term selecting the records of a taxon.
func Term(taxid int) string {
	return "txid" + strconv.Itoa(taxid) + "[Organism]"
}

// Retriever holds the search state for a single taxon.
type Retriever struct {
	svc Service
	log *zap.Logger

	history *entrez.History
	count   int
}

// New returns a Retriever using svc. A nil logger disables logging.
func New(svc Service, log *zap.Logger) *Retriever {
	if log == nil {
		log = zap.NewNop()
	}
	return &Retriever{svc: svc, log: log}
}

type taxaSet struct {
	Taxa []struct {
		TaxID          int    `xml:"TaxId"`
		ScientificName string `xml:"ScientificName"`
	} `xml:"Taxon"`
}

// Organism returns the scientific name of the taxon.
func (r *Retriever) Organism(taxid int) (string, error) {
	rc, err := r.svc.Fetch(taxonomy, &entrez.Parameters{RetMode: "xml"}, nil, taxid)
	if err != nil {
		return "", fmt.Errorf("fetch taxon %d: %w", taxid, err)
	}
	defer rc.Close()

	var ts taxaSet
	err = xml.NewDecoder(rc).Decode(&ts)
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("decode taxon %d: %w", taxid, err)
	}
	if len(ts.Taxa) == 0 || ts.Taxa[0].ScientificName == "" {
		return "", fmt.Errorf("taxid %d: %w", taxid, ErrNoTaxon)
	}
	return ts.Taxa[0].ScientificName, nil
}

// Search runs the nucleotide search for the taxon, retaining the server
// history for subsequent fetches, and returns the number of hits.
func (r *Retriever) Search(taxid int) (int, error) {
	h := &entrez.History{}
	n, err := r.svc.Search(nucleotide, Term(taxid), h)
	if err != nil {
		return 0, fmt.Errorf("search taxid %d: %w", taxid, err)
	}
	if h.WebEnv == "" {
		return 0, fmt.Errorf("search taxid %d: %w", taxid, ErrNoHistory)
	}
	r.history = h
	r.count = n
	r.log.Debug("search stored",
		zap.Int("count", n),
		zap.String("webenv", h.WebEnv),
		zap.Int("query_key", h.QueryKey))
	return n, nil
}

// Count returns the hit count of the last successful search.
func (r *Retriever) Count() int { return r.count }

// Fetch returns up to max GenBank flat file records from the last search
// starting at the zero-based offset start. Requests are issued in pages of
// at most MaxPerRequest records.
func (r *Retriever) Fetch(start, max int) ([]byte, error) {
	if r.history == nil {
		return nil, ErrNoHistory
	}
	if start < 0 || max < 0 {
		return nil, fmt.Errorf("retrieve: invalid range start=%d max=%d", start, max)
	}
	end := start + max
	if end > r.count {
		end = r.count
	}

	var (
		buf = &bytes.Buffer{}
		p   = &entrez.Parameters{RetType: "gb", RetMode: "text"}
	)
	for p.RetStart = start; p.RetStart < end; p.RetStart += p.RetMax {
		p.RetMax = min(MaxPerRequest, end-p.RetStart)
		r.log.Info("retrieving records",
			zap.Int("retstart", p.RetStart),
			zap.Int("retmax", p.RetMax))

		rc, err := r.svc.Fetch(nucleotide, p, r.history)
		if err != nil {
			return nil, fmt.Errorf("fetch records from %d: %w", p.RetStart, err)
		}
		_, err = io.Copy(buf, rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("buffer records from %d: %w", p.RetStart, err)
		}
	}
	return buf.Bytes(), nil
}
