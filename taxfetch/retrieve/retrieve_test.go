// Copyright ©2026 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package retrieve

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/biogo/ncbi/entrez"
	"gopkg.in/check.v1"
)

func Test(t *testing.T) { check.TestingT(t) }

type S struct{}

var _ = check.Suite(&S{})

type fetchCall struct {
	db      string
	params  entrez.Parameters
	history *entrez.History
	ids     []int
}

// fakeService answers searches with count hits and fetches with one
// line per requested record.
type fakeService struct {
	count     int
	taxonXML  string
	searchErr error
	fetchErr  error

	terms   []string
	fetches []fetchCall
}

func (f *fakeService) Search(db, term string, h *entrez.History) (int, error) {
	f.terms = append(f.terms, db+":"+term)
	if f.searchErr != nil {
		return 0, f.searchErr
	}
	if h != nil {
		h.WebEnv = "MCID_test"
		h.QueryKey = 1
	}
	return f.count, nil
}

func (f *fakeService) Fetch(db string, p *entrez.Parameters, h *entrez.History, id ...int) (io.ReadCloser, error) {
	f.fetches = append(f.fetches, fetchCall{db: db, params: *p, history: h, ids: id})
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	if db == taxonomy {
		return io.NopCloser(strings.NewReader(f.taxonXML)), nil
	}
	var b strings.Builder
	for i := p.RetStart; i < p.RetStart+p.RetMax; i++ {
		fmt.Fprintf(&b, "record %d\n", i)
	}
	return io.NopCloser(strings.NewReader(b.String())), nil
}

const humanXML = `<?xml version="1.0" ?>
<!DOCTYPE TaxaSet PUBLIC "-//NLM//DTD Taxon, 14th January 2002//EN" "https://www.ncbi.nlm.nih.gov/entrez/query/DTD/taxon.dtd">
<TaxaSet><Taxon>
    <TaxId>9606</TaxId>
    <ScientificName>Homo sapiens</ScientificName>
    <LineageEx>
        <Taxon><TaxId>131567</TaxId><ScientificName>cellular organisms</ScientificName></Taxon>
    </LineageEx>
</Taxon></TaxaSet>`

func (s *S) TestOrganism(c *check.C) {
	f := &fakeService{taxonXML: humanXML}
	r := New(f, nil)
	name, err := r.Organism(9606)
	c.Assert(err, check.IsNil)
	c.Check(name, check.Equals, "Homo sapiens")
	c.Assert(f.fetches, check.HasLen, 1)
	c.Check(f.fetches[0].db, check.Equals, "taxonomy")
	c.Check(f.fetches[0].params.RetMode, check.Equals, "xml")
	c.Check(f.fetches[0].ids, check.DeepEquals, []int{9606})

	f.taxonXML = `<?xml version="1.0" ?><TaxaSet></TaxaSet>`
	_, err = r.Organism(0)
	c.Check(errors.Is(err, ErrNoTaxon), check.Equals, true)

	f.fetchErr = errors.New("network down")
	_, err = r.Organism(9606)
	c.Check(err, check.ErrorMatches, "fetch taxon 9606: network down")
}

func (s *S) TestFetchBeforeSearch(c *check.C) {
	_, err := New(&fakeService{}, nil).Fetch(0, 10)
	c.Check(err, check.Equals, ErrNoHistory)
}

func (s *S) TestSearch(c *check.C) {
	f := &fakeService{count: 42}
	r := New(f, nil)
	n, err := r.Search(2697049)
	c.Assert(err, check.IsNil)
	c.Check(n, check.Equals, 42)
	c.Check(r.Count(), check.Equals, 42)
	c.Check(f.terms, check.DeepEquals, []string{"nucleotide:txid2697049[Organism]"})

	f.searchErr = errors.New("bad gateway")
	_, err = r.Search(1)
	c.Check(err, check.ErrorMatches, "search taxid 1: bad gateway")
}

func (s *S) TestFetchPaging(c *check.C) {
	for i, t := range []struct {
		count, start, max int
		pages             [][2]int
		lines             int
	}{
		{count: 1000, start: 0, max: 100, pages: [][2]int{{0, 100}}, lines: 100},
		{count: 30, start: 0, max: 100, pages: [][2]int{{0, 30}}, lines: 30},
		{count: 1200, start: 100, max: 1100, pages: [][2]int{{100, 500}, {600, 500}, {1100, 100}}, lines: 1100},
		{count: 10, start: 20, max: 5, pages: nil, lines: 0},
	} {
		f := &fakeService{count: t.count}
		r := New(f, nil)
		_, err := r.Search(1)
		c.Assert(err, check.IsNil)

		data, err := r.Fetch(t.start, t.max)
		c.Assert(err, check.IsNil)
		c.Check(strings.Count(string(data), "\n"), check.Equals, t.lines, check.Commentf("Test %d", i))

		var pages [][2]int
		for _, fc := range f.fetches {
			c.Check(fc.db, check.Equals, "nucleotide")
			c.Check(fc.params.RetType, check.Equals, "gb")
			c.Check(fc.params.RetMode, check.Equals, "text")
			c.Check(fc.history.WebEnv, check.Equals, "MCID_test")
			pages = append(pages, [2]int{fc.params.RetStart, fc.params.RetMax})
		}
		c.Check(pages, check.DeepEquals, t.pages, check.Commentf("Test %d", i))
	}
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func (s *S) TestAPIKeyTransport(c *check.C) {
	var seen []string
	base := roundTripFunc(func(r *http.Request) (*http.Response, error) {
		seen = append(seen, r.URL.String())
		return &http.Response{StatusCode: http.StatusOK, Body: http.NoBody, Request: r}, nil
	})
	t := NewAPIKeyTransport(base, "secret")
	for _, u := range []string{
		"https://eutils.ncbi.nlm.nih.gov/entrez/eutils/esearch.fcgi?db=nucleotide",
		"https://example.org/path?db=nucleotide",
	} {
		req, err := http.NewRequest(http.MethodGet, u, nil)
		c.Assert(err, check.IsNil)
		_, err = t.RoundTrip(req)
		c.Assert(err, check.IsNil)
		c.Check(req.URL.String(), check.Equals, u, check.Commentf("original request must not change"))
	}
	c.Check(seen, check.DeepEquals, []string{
		"https://eutils.ncbi.nlm.nih.gov/entrez/eutils/esearch.fcgi?api_key=secret&db=nucleotide",
		"https://example.org/path?db=nucleotide",
	})

	seen = nil
	req, _ := http.NewRequest(http.MethodGet, "https://eutils.ncbi.nlm.nih.gov/x?db=a", nil)
	NewAPIKeyTransport(base, "").RoundTrip(req)
	c.Check(seen, check.DeepEquals, []string{"https://eutils.ncbi.nlm.nih.gov/x?db=a"})
}
