// Copyright ©2026 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// taxfetch retrieves the GenBank nucleotide records of a taxon from NCBI
// Entrez, selects those within a length range and writes the raw records,
// a CSV summary and a chart of the selected sequence lengths.
//
// The search is stored on the Entrez server and the records are fetched
// through the returned history, so only the requested page of records is
// transferred.
package main

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"github.com/biogo/ncbitools/taxfetch/config"
	"github.com/biogo/ncbitools/taxfetch/genbank"
	"github.com/biogo/ncbitools/taxfetch/lenfilt"
	"github.com/biogo/ncbitools/taxfetch/report"
	"github.com/biogo/ncbitools/taxfetch/retrieve"
)

var logger *zap.Logger

func main() {
	if err := newRootCmd(entrezService).Execute(); err != nil {
		os.Exit(1)
	}
}

// entrezService returns the NCBI backed service for cfg. When an API key
// is given, it is attached to all E-utilities requests and the request
// rate is raised accordingly.
func entrezService(cfg config.Config) retrieve.Service {
	if cfg.APIKey != "" {
		http.DefaultTransport = retrieve.NewAPIKeyTransport(http.DefaultTransport, cfg.APIKey)
		retrieve.SetRate(retrieve.KeyedRate)
	}
	return retrieve.Entrez{Tool: cfg.Tool, Email: cfg.Email}
}

func newRootCmd(service func(config.Config) retrieve.Service) *cobra.Command {
	var (
		cfgFile string
		verbose bool
	)
	cmd := &cobra.Command{
		Use:   "taxfetch",
		Short: "Retrieve and length-filter the GenBank records of a taxon",
		Long: `taxfetch searches the NCBI nucleotide database for txid<taxid>[Organism],
fetches GenBank records through the stored search history and keeps those
with min <= length <= max.

Output files, written to --out-dir:
  taxid_<taxid>_sample.gb       the fetched records
  taxid_<taxid>_filtered.csv    Accession,Length,Description of kept records
  taxid_<taxid>_chart.png       kept lengths by accession
  taxid_<taxid>_hist.png        length histogram (--hist)
  taxid_<taxid>_filtered.fasta  kept sequences (--fasta)
  taxid_<taxid>_summary.yaml    run summary

Settings may also be given in $HOME/.config/taxfetch/config.yaml or as
TAXFETCH_ environment variables, for example TAXFETCH_EMAIL and
TAXFETCH_API_KEY. Missing required values are prompted for unless
--no-input is given.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if logger != nil {
				return nil
			}
			lc := zap.NewProductionConfig()
			if verbose {
				lc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			}
			var err error
			logger, err = lc.Build()
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			v := config.New(cfgFile)
			if err := v.BindPFlags(cmd.Flags()); err != nil {
				return err
			}
			cfg, err := config.Load(v)
			if err != nil {
				return err
			}
			return run(cmd.InOrStdin(), cmd.OutOrStdout(), cfg, service)
		},
	}

	f := cmd.Flags()
	f.StringVar(&cfgFile, "config", "", "config file (default $HOME/.config/taxfetch/config.yaml)")
	f.BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	f.String("email", "", "email address sent to NCBI (required)")
	f.String("api-key", "", "NCBI API key")
	f.String("tool", config.DefaultTool, "tool name sent to NCBI")
	f.Int("taxid", 0, "NCBI taxonomy identifier")
	f.Int("min", config.Unset, "minimum sequence length (bp), inclusive")
	f.Int("max", config.Unset, "maximum sequence length (bp), inclusive")
	f.Int("max-records", config.DefaultMaxRecords, "number of records to fetch")
	f.Int("start", 0, "zero-based index of the first record to fetch")
	f.String("out-dir", config.DefaultOutDir, "directory for output files")
	f.Bool("hist", false, "also write a length histogram")
	f.Bool("fasta", false, "also write the kept sequences as FASTA")
	f.Bool("no-input", false, "never prompt for missing values")

	return cmd
}

func run(in io.Reader, out io.Writer, cfg config.Config, service func(config.Config) retrieve.Service) error {
	if !cfg.NoInput {
		if err := config.Prompt(in, out, &cfg); err != nil {
			return err
		}
	}
	cfg.Open(lenfilt.Unbounded)
	if err := cfg.Validate(); err != nil {
		return err
	}

	r := retrieve.New(service(cfg), logger)
	org, err := r.Organism(cfg.TaxID)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Organism: %s (TaxID: %d)\n", org, cfg.TaxID)

	hits, err := r.Search(cfg.TaxID)
	if err != nil {
		return err
	}
	logger.Info("search complete", zap.Int("taxid", cfg.TaxID), zap.Int("hits", hits))
	if hits == 0 {
		fmt.Fprintf(out, "No nucleotide records found for TaxID %d.\n", cfg.TaxID)
		return nil
	}

	data, err := r.Fetch(cfg.Start, cfg.MaxRecords)
	if err != nil {
		return err
	}
	kept, fetched, err := lenfilt.Select(genbank.NewReader(bytes.NewReader(data)), cfg.MinLen, cfg.MaxLen)
	if err != nil {
		return err
	}
	logger.Info("records selected",
		zap.Int("fetched", fetched),
		zap.Int("kept", len(kept)),
		zap.Int("min", cfg.MinLen),
		zap.Int("max", cfg.MaxLen))
	if len(kept) == 0 {
		fmt.Fprintf(out, "No records between %d and %d bp among %d fetched.\n", cfg.MinLen, cfg.MaxLen, fetched)
		return nil
	}

	rows := lenfilt.Rows(kept)
	sum := report.Summary{
		TaxID:    cfg.TaxID,
		Organism: org,
		Hits:     hits,
		Fetched:  fetched,
		MinLen:   cfg.MinLen,
		MaxLen:   cfg.MaxLen,
		Lengths:  lenfilt.Summarise(rows),
	}
	sum.Files, err = writeOutputs(cfg, data, kept, rows)
	if err != nil {
		return err
	}
	name := outName(cfg.TaxID, "summary.yaml")
	err = writeFile(filepath.Join(cfg.OutDir, name), func(w io.Writer) error {
		return report.WriteSummary(w, sum)
	})
	if err != nil {
		return err
	}

	if err = report.PrintSummary(out, sum); err != nil {
		return err
	}
	fmt.Fprintln(out, "All files saved.")
	return nil
}

func outName(taxid int, suffix string) string {
	return fmt.Sprintf("taxid_%d_%s", taxid, suffix)
}

type output struct {
	name  string
	write func(io.Writer) error
}

// writeOutputs writes the raw records and the renderings of the kept
// records to cfg.OutDir, returning the names of the written files.
func writeOutputs(cfg config.Config, data []byte, kept []*genbank.Record, rows []lenfilt.Row) ([]string, error) {
	err := os.MkdirAll(cfg.OutDir, 0o755)
	if err != nil {
		return nil, err
	}

	files := []output{
		{outName(cfg.TaxID, "sample.gb"), func(w io.Writer) error {
			_, err := w.Write(data)
			return err
		}},
		{outName(cfg.TaxID, "filtered.csv"), func(w io.Writer) error {
			return report.WriteCSV(w, rows)
		}},
	}
	if cfg.FASTA {
		files = append(files, output{outName(cfg.TaxID, "filtered.fasta"), func(w io.Writer) error {
			n, err := report.WriteFASTA(w, kept)
			logger.Debug("wrote sequences", zap.Int("n", n))
			return err
		}})
	}

	// Charts share the plot font cache so they are rendered in sequence.
	charts := []output{
		{outName(cfg.TaxID, "chart.png"), func(w io.Writer) error {
			p, err := report.LineChart(rows)
			if err != nil {
				return err
			}
			return report.WritePNG(w, p)
		}},
	}
	if cfg.Histogram {
		charts = append(charts, output{outName(cfg.TaxID, "hist.png"), func(w io.Writer) error {
			p, err := report.Histogram(rows, 0)
			if err != nil {
				return err
			}
			return report.WritePNG(w, p)
		}})
	}

	var g errgroup.Group
	for _, o := range files {
		o := o
		g.Go(func() error {
			return writeFile(filepath.Join(cfg.OutDir, o.name), o.write)
		})
	}
	g.Go(func() error {
		for _, o := range charts {
			err := writeFile(filepath.Join(cfg.OutDir, o.name), o.write)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err = g.Wait(); err != nil {
		return nil, err
	}

	var names []string
	for _, o := range append(files, charts...) {
		names = append(names, o.name)
	}
	return names, nil
}

func writeFile(path string, write func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		cerr := f.Close()
		if err == nil {
			err = cerr
		}
	}()
	w := bufio.NewWriter(f)
	err = write(w)
	if err != nil {
		return fmt.Errorf("failed to write %q: %w", path, err)
	}
	logger.Debug("wrote file", zap.String("path", path))
	return w.Flush()
}
