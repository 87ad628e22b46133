// Copyright ©2026 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package retrieve

import (
	"net/http"
	"strings"
	"time"

	"github.com/biogo/ncbi"
	"github.com/biogo/ncbi/entrez"
)

// Request rates allowed by NCBI with and without an API key.
const (
	DefaultRate = 3
	KeyedRate   = 10
)

// EutilsHost is the host suffix of the E-utilities servers.
const EutilsHost = "ncbi.nlm.nih.gov"

// APIKeyTransport is an http.RoundTripper that adds an NCBI API key to
// requests sent to the E-utilities servers.
type APIKeyTransport struct {
	Base http.RoundTripper
	Key  string
	Host string
}

// NewAPIKeyTransport returns an APIKeyTransport wrapping base. If base
// is nil, http.DefaultTransport is used.
func NewAPIKeyTransport(base http.RoundTripper, key string) *APIKeyTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &APIKeyTransport{Base: base, Key: key, Host: EutilsHost}
}

// RoundTrip implements http.RoundTripper.
func (t *APIKeyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.Key == "" || !strings.HasSuffix(req.URL.Hostname(), t.Host) {
		return t.Base.RoundTrip(req)
	}
	r := req.Clone(req.Context())
	q := r.URL.Query()
	q.Set("api_key", t.Key)
	r.URL.RawQuery = q.Encode()
	return t.Base.RoundTrip(r)
}

// SetRate sets the package level Entrez request limit to perSecond
// requests.
func SetRate(perSecond int) {
	if perSecond < 1 {
		perSecond = DefaultRate
	}
	entrez.Limit = ncbi.NewLimiter(time.Second / time.Duration(perSecond))
}
