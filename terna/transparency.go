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

package terna

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"github.com/gridscope/terna-go/table"
	"github.com/stockparfait/errors"
	"github.com/stockparfait/logging"
)

// dateRange serializes the inclusive date range in the vendor's dd/MM/yyyy
// format.
func dateRange(start, end time.Time) url.Values {
	return url.Values{
		"dateFrom": []string{start.Format("02/01/2006")},
		"dateTo":   []string{end.Format("02/01/2006")},
	}
}

// fetchTable downloads one endpoint item and flattens its response. One call
// is exactly one data GET, preceded by a token request.
func (c *Client) fetchTable(ctx context.Context, ep endpoint, query url.Values) (*table.Table, error) {
	body, err := c.get(ctx, ep.path, query)
	if err != nil {
		return nil, errors.Annotate(err, "failed to fetch %s", ep.path)
	}
	tbl, err := flatten(ep, body)
	if err != nil {
		return nil, errors.Annotate(err, "failed to tabulate %s response", ep.path)
	}
	logging.Infof(ctx, "Terna: %s returned %d rows x %d columns",
		ep.path, tbl.NumRows(), tbl.NumColumns())
	return tbl, nil
}

// TotalLoad returns the total load measured between start and end, one column
// per requested bidding zone. With no zones, the API's default selection is
// returned.
func (c *Client) TotalLoad(ctx context.Context, start, end time.Time, zones ...string) (*table.Table, error) {
	query := dateRange(start, end)
	if len(zones) > 0 {
		query["biddingZone"] = zones
	}
	return c.fetchTable(ctx, totalLoad, query)
}

// MarketLoad returns the load measured on the market between start and end,
// one column per requested bidding zone.
func (c *Client) MarketLoad(ctx context.Context, start, end time.Time, zones ...string) (*table.Table, error) {
	query := dateRange(start, end)
	if len(zones) > 0 {
		query["biddingZone"] = zones
	}
	return c.fetchTable(ctx, marketLoad, query)
}

// ActualGeneration returns the generated power between start and end, one
// column per requested generation type.
func (c *Client) ActualGeneration(ctx context.Context, start, end time.Time, genTypes ...string) (*table.Table, error) {
	query := dateRange(start, end)
	if len(genTypes) > 0 {
		query["type"] = genTypes
	}
	return c.fetchTable(ctx, actualGeneration, query)
}

// InstalledCapacity returns the installed generation capacity for the given
// year, a single row keyed by year with one column per requested generation
// type.
func (c *Client) InstalledCapacity(ctx context.Context, year int, genTypes ...string) (*table.Table, error) {
	query := url.Values{"year": []string{strconv.Itoa(year)}}
	if len(genTypes) > 0 {
		query["type"] = genTypes
	}
	return c.fetchTable(ctx, installedCapacity, query)
}

// ScheduledForeignExchange returns the commercial exchange schedule on
// foreign borders between start and end.
func (c *Client) ScheduledForeignExchange(ctx context.Context, start, end time.Time) (*table.Table, error) {
	return c.fetchTable(ctx, scheduledForeignExchange, dateRange(start, end))
}

// ScheduledInternalExchange returns the commercial exchange schedule between
// internal bidding zones between start and end.
func (c *Client) ScheduledInternalExchange(ctx context.Context, start, end time.Time) (*table.Table, error) {
	return c.fetchTable(ctx, scheduledInternalExchange, dateRange(start, end))
}

// PhysicalForeignFlow returns the physical power flow measured on foreign
// borders between start and end.
func (c *Client) PhysicalForeignFlow(ctx context.Context, start, end time.Time) (*table.Table, error) {
	return c.fetchTable(ctx, physicalForeignFlow, dateRange(start, end))
}

// PhysicalInternalFlow returns the physical power flow measured between
// internal bidding zones between start and end.
func (c *Client) PhysicalInternalFlow(ctx context.Context, start, end time.Time) (*table.Table, error) {
	return c.fetchTable(ctx, physicalInternalFlow, dateRange(start, end))
}
