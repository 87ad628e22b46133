// Copyright ©2026 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package report

import (
	"errors"
	"io"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/biogo/ncbitools/taxfetch/lenfilt"
)

// Chart dimensions.
const (
	ChartWidth  = 12 * vg.Inch
	ChartHeight = 6 * vg.Inch
)

// ErrNoRows is returned when a chart is requested for an empty selection.
var ErrNoRows = errors.New("report: no rows to plot")

// LineChart returns a plot of sequence length by accession, with
// accessions ordered by descending length.
func LineChart(rows []lenfilt.Row) (*plot.Plot, error) {
	if len(rows) == 0 {
		return nil, ErrNoRows
	}
	ranked := lenfilt.Rank(rows)

	pts := make(plotter.XYs, len(ranked))
	names := make([]string, len(ranked))
	for i, r := range ranked {
		pts[i].X = float64(i)
		pts[i].Y = float64(r.Length)
		names[i] = r.Accession
	}

	p := plot.New()
	p.Title.Text = "GenBank Sequence Lengths"
	p.X.Label.Text = "GenBank Accession"
	p.Y.Label.Text = "Sequence Length"

	l, s, err := plotter.NewLinePoints(pts)
	if err != nil {
		return nil, err
	}
	s.Shape = draw.CircleGlyph{}
	p.Add(l, s)

	p.NominalX(names...)
	p.X.Tick.Label.Rotation = math.Pi / 2
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter
	p.X.Tick.Label.Font.Size = vg.Points(8)

	return p, nil
}

// Histogram returns a histogram of sequence lengths using bins bins.
// If bins is not positive, the square root of the number of rows is used.
func Histogram(rows []lenfilt.Row, bins int) (*plot.Plot, error) {
	if len(rows) == 0 {
		return nil, ErrNoRows
	}
	if bins <= 0 {
		bins = int(math.Ceil(math.Sqrt(float64(len(rows)))))
	}
	vals := make(plotter.Values, len(rows))
	for i, r := range rows {
		vals[i] = float64(r.Length)
	}
	h, err := plotter.NewHist(vals, bins)
	if err != nil {
		return nil, err
	}

	p := plot.New()
	p.Title.Text = "GenBank Sequence Length Distribution"
	p.X.Label.Text = "Sequence Length"
	p.Y.Label.Text = "Records"
	p.Add(h)
	return p, nil
}

// WritePNG renders p to w as a PNG image at the chart dimensions.
func WritePNG(w io.Writer, p *plot.Plot) error {
	wt, err := p.WriterTo(ChartWidth, ChartHeight, "png")
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}
