// Copyright 2023 Gridscope

// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at

//     http://www.apache.org/licenses/LICENSE-2.0

// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"flag"
	"io"
	"os"
	"strings"
	"time"

	"github.com/gridscope/terna-go/table"
	"github.com/gridscope/terna-go/terna"
	"github.com/joho/godotenv"
	"github.com/stockparfait/errors"
	"github.com/stockparfait/logging"

	toml "github.com/pelletier/go-toml/v2"
)

// stringsFlag collects the values of a repeatable string flag.
type stringsFlag []string

func (s *stringsFlag) String() string { return strings.Join(*s, ",") }

func (s *stringsFlag) Set(v string) error {
	*s = append(*s, v)
	return nil
}

type Flags struct {
	Config   string // path to the TOML config with key & secret
	Endpoint string // required
	Start    time.Time
	End      time.Time
	Year     int
	Zones    stringsFlag // bidding zone filters
	Types    stringsFlag // generation type filters
	CSV      bool        // dump CSV format; default: text
	LogLevel logging.Level
}

func parseFlags(args []string) (*Flags, error) {
	var flags Flags
	var start, end string
	fs := flag.NewFlagSet("terna-fetch", flag.ExitOnError)
	fs.StringVar(&flags.Config, "config", "", "path to the TOML config file")
	fs.StringVar(&flags.Endpoint, "endpoint", "",
		"endpoint to fetch: total-load, market-load, actual-generation, "+
			"installed-capacity, scheduled-foreign-exchange, "+
			"scheduled-internal-exchange, physical-foreign-flow, "+
			"physical-internal-flow (required)")
	fs.StringVar(&start, "start", "", "start date, YYYY-MM-DD")
	fs.StringVar(&end, "end", "", "end date, YYYY-MM-DD")
	fs.IntVar(&flags.Year, "year", 0, "year for -endpoint installed-capacity")
	fs.Var(&flags.Zones, "zone", "bidding zone filter; may be repeated")
	fs.Var(&flags.Types, "type", "generation type filter; may be repeated")
	fs.BoolVar(&flags.CSV, "csv", false, "print table in CSV format; default: text")
	flags.LogLevel = logging.Info
	fs.Var(&flags.LogLevel, "log-level", "Log level: debug, info, warning, error")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if flags.Endpoint == "" {
		return nil, errors.Reason("missing required -endpoint argument")
	}
	if flags.Endpoint == "installed-capacity" {
		if flags.Year == 0 {
			return nil, errors.Reason("-endpoint installed-capacity requires -year")
		}
		return &flags, nil
	}
	if start == "" || end == "" {
		return nil, errors.Reason("-endpoint %s requires -start and -end", flags.Endpoint)
	}
	var err error
	if flags.Start, err = time.ParseInLocation("2006-01-02", start, terna.Location()); err != nil {
		return nil, errors.Annotate(err, "invalid -start date '%s'", start)
	}
	if flags.End, err = time.ParseInLocation("2006-01-02", end, terna.Location()); err != nil {
		return nil, errors.Annotate(err, "invalid -end date '%s'", end)
	}
	return &flags, nil
}

type Config struct {
	Key    string `toml:"key"`    // API key for the Transparency API
	Secret string `toml:"secret"` // the matching API secret
}

func parseConfig(filePath string) (*Config, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, errors.Annotate(err, "failed to open config file %s", filePath)
	}
	defer f.Close()

	d := toml.NewDecoder(f)
	var c Config
	if err := d.Decode(&c); err != nil {
		return nil, errors.Annotate(err, "failed to read config file %s", filePath)
	}
	return &c, nil
}

// credentials resolves the API key and secret: the config file first, then
// the TERNA_API_KEY and TERNA_API_SECRET environment variables (optionally
// from a .env file) on top.
func credentials(flags *Flags) (string, string, error) {
	var key, secret string
	if flags.Config != "" {
		c, err := parseConfig(flags.Config)
		if err != nil {
			return "", "", errors.Annotate(err, "failed to parse config")
		}
		key, secret = c.Key, c.Secret
	}
	_ = godotenv.Load() // the .env file is optional
	if v := os.Getenv("TERNA_API_KEY"); v != "" {
		key = v
	}
	if v := os.Getenv("TERNA_API_SECRET"); v != "" {
		secret = v
	}
	if key == "" || secret == "" {
		return "", "", errors.Reason(
			"no API credentials: set key & secret in a -config file, " +
				"or TERNA_API_KEY & TERNA_API_SECRET in the environment")
	}
	return key, secret, nil
}

func fetchTable(ctx context.Context, flags *Flags) (*table.Table, error) {
	key, secret, err := credentials(flags)
	if err != nil {
		return nil, err
	}
	c := terna.NewClient(key, secret)
	switch flags.Endpoint {
	case "total-load":
		return c.TotalLoad(ctx, flags.Start, flags.End, flags.Zones...)
	case "market-load":
		return c.MarketLoad(ctx, flags.Start, flags.End, flags.Zones...)
	case "actual-generation":
		return c.ActualGeneration(ctx, flags.Start, flags.End, flags.Types...)
	case "installed-capacity":
		return c.InstalledCapacity(ctx, flags.Year, flags.Types...)
	case "scheduled-foreign-exchange":
		return c.ScheduledForeignExchange(ctx, flags.Start, flags.End)
	case "scheduled-internal-exchange":
		return c.ScheduledInternalExchange(ctx, flags.Start, flags.End)
	case "physical-foreign-flow":
		return c.PhysicalForeignFlow(ctx, flags.Start, flags.End)
	case "physical-internal-flow":
		return c.PhysicalInternalFlow(ctx, flags.Start, flags.End)
	}
	return nil, errors.Reason("unknown -endpoint '%s'", flags.Endpoint)
}

func printData(ctx context.Context, flags *Flags, w io.Writer) error {
	tbl, err := fetchTable(ctx, flags)
	if err != nil {
		return errors.Annotate(err, "failed to fetch %s", flags.Endpoint)
	}
	if flags.CSV {
		if err := tbl.WriteCSV(w, table.Params{}); err != nil {
			return errors.Annotate(err, "failed to print CSV")
		}
		return nil
	}
	if err := tbl.WriteText(w, table.Params{}); err != nil {
		return errors.Annotate(err, "failed to print text")
	}
	return nil
}

func main() {
	ctx := context.Background()
	flags, err := parseFlags(os.Args[1:])
	if err != nil {
		ctx = logging.Use(ctx, logging.DefaultGoLogger(logging.Info))
		logging.Errorf(ctx, "failed to parse flags: %s", err.Error())
		os.Exit(1)
	}
	ctx = logging.Use(ctx, logging.DefaultGoLogger(flags.LogLevel))

	if err := printData(ctx, flags, os.Stdout); err != nil {
		logging.Errorf(ctx, err.Error())
		os.Exit(1)
	}
}
