// Copyright ©2026 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config resolves taxfetch run settings from defaults, a YAML
// config file, TAXFETCH_ environment variables and command line flags.
package config

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// Unset marks a length bound that has not been provided.
const Unset = -1

// ErrInvalid is wrapped by all validation errors.
var ErrInvalid = errors.New("invalid configuration")

// Config holds the settings of a single run.
type Config struct {
	Email      string `mapstructure:"email"`
	APIKey     string `mapstructure:"api-key"`
	Tool       string `mapstructure:"tool"`
	TaxID      int    `mapstructure:"taxid"`
	MinLen     int    `mapstructure:"min"`
	MaxLen     int    `mapstructure:"max"`
	MaxRecords int    `mapstructure:"max-records"`
	Start      int    `mapstructure:"start"`
	OutDir     string `mapstructure:"out-dir"`
	Histogram  bool   `mapstructure:"hist"`
	FASTA      bool   `mapstructure:"fasta"`
	NoInput    bool   `mapstructure:"no-input"`
}

// Defaults for settings not provided elsewhere.
const (
	DefaultTool       = "BioScriptEx10"
	DefaultMaxRecords = 100
	DefaultOutDir     = "."
)

// New returns a viper instance configured with taxfetch defaults and
// sources. If file is empty, $TAXFETCH_CONFIG is used, falling back to
// $HOME/.config/taxfetch/config.yaml.
func New(file string) *viper.Viper {
	v := viper.New()

	v.SetDefault("email", "")
	v.SetDefault("api-key", "")
	v.SetDefault("taxid", 0)
	v.SetDefault("tool", DefaultTool)
	v.SetDefault("min", Unset)
	v.SetDefault("max", Unset)
	v.SetDefault("max-records", DefaultMaxRecords)
	v.SetDefault("start", 0)
	v.SetDefault("out-dir", DefaultOutDir)
	v.SetDefault("hist", false)
	v.SetDefault("fasta", false)
	v.SetDefault("no-input", false)

	v.SetConfigType("yaml")
	if file == "" {
		file = os.Getenv("TAXFETCH_CONFIG")
	}
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "taxfetch"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("TAXFETCH")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	return v
}

// Load reads the config file, if present, and returns the resolved Config.
func Load(v *viper.Viper) (Config, error) {
	err := v.ReadInConfig()
	if err != nil {
		var nf viper.ConfigFileNotFoundError
		if !errors.As(err, &nf) && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return c, nil
}

// Prompt asks on w for each required value missing from c, reading
// answers from r. The API key is only asked for along with the email
// address and may be left blank.
func Prompt(r io.Reader, w io.Writer, c *Config) error {
	br := bufio.NewReader(r)
	ask := func(q string) (string, error) {
		fmt.Fprint(w, q)
		line, err := br.ReadString('\n')
		if err != nil && (err != io.EOF || line == "") {
			return "", fmt.Errorf("read answer to %q: %w", strings.TrimSpace(q), err)
		}
		return strings.TrimSpace(line), nil
	}
	askInt := func(q string) (int, error) {
		a, err := ask(q)
		if err != nil {
			return 0, err
		}
		n, err := strconv.Atoi(a)
		if err != nil {
			return 0, fmt.Errorf("%w: %q is not an integer", ErrInvalid, a)
		}
		return n, nil
	}

	var err error
	if c.Email == "" {
		if c.Email, err = ask("Enter your email address for NCBI: "); err != nil {
			return err
		}
		if c.APIKey == "" {
			if c.APIKey, err = ask("Enter your NCBI API key: "); err != nil {
				return err
			}
		}
	}
	if c.TaxID <= 0 {
		if c.TaxID, err = askInt("Enter taxid: "); err != nil {
			return err
		}
	}
	if c.MinLen == Unset {
		if c.MinLen, err = askInt("Min length: "); err != nil {
			return err
		}
	}
	if c.MaxLen == Unset {
		if c.MaxLen, err = askInt("Max length: "); err != nil {
			return err
		}
	}
	return nil
}

// Open replaces unset length bounds with an open interval.
func (c *Config) Open(unbounded int) {
	if c.MinLen == Unset {
		c.MinLen = 0
	}
	if c.MaxLen == Unset {
		c.MaxLen = unbounded
	}
}

// Validate checks that c describes a runnable retrieval.
func (c Config) Validate() error {
	switch {
	case c.Email == "":
		return fmt.Errorf("%w: email address is required by NCBI", ErrInvalid)
	case c.TaxID <= 0:
		return fmt.Errorf("%w: taxid must be a positive integer, got %d", ErrInvalid, c.TaxID)
	case c.MinLen < 0 || c.MaxLen < 0:
		return fmt.Errorf("%w: length bounds must not be negative", ErrInvalid)
	case c.MinLen > c.MaxLen:
		return fmt.Errorf("%w: min length %d exceeds max length %d", ErrInvalid, c.MinLen, c.MaxLen)
	case c.MaxRecords <= 0:
		return fmt.Errorf("%w: max-records must be positive, got %d", ErrInvalid, c.MaxRecords)
	case c.Start < 0:
		return fmt.Errorf("%w: start must not be negative, got %d", ErrInvalid, c.Start)
	}
	return nil
}
