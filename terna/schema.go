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
	"encoding/json"
	"strconv"
	"time"

	"github.com/gridscope/terna-go/table"
	"github.com/stockparfait/errors"
)

// Timezone is the local timezone of all Date fields in API responses.
const Timezone = "Europe/Rome"

// endpoint describes one Transparency API item: its URL path, the key of the
// record list in the response envelope, and how records map onto table cells.
// An empty category means the endpoint returns a single series, tabulated as
// one column named after the value field.
type endpoint struct {
	path     string // URL path under the API base
	key      string // payload key in the response envelope
	byYear   bool   // records keyed by "Year" instead of "Date"
	category string // record field holding the column name
	value    string // record field holding the numeric value
}

var (
	totalLoad = endpoint{
		path:     "gettotalload",
		key:      "totalLoad",
		category: "Bidding_Zone",
		value:    "Total_Load_MW",
	}
	marketLoad = endpoint{
		path:     "getmarketload",
		key:      "marketLoad",
		category: "Bidding_Zone",
		value:    "Market_Load_MW",
	}
	actualGeneration = endpoint{
		path:     "getactualgeneration",
		key:      "actualGeneration",
		category: "Primary_Source",
		value:    "Actual_Generation_MW",
	}
	installedCapacity = endpoint{
		path:     "getinstalledcapacity",
		key:      "installedCapacity",
		byYear:   true,
		category: "Type",
		value:    "Installed_Capacity_MW",
	}
	scheduledForeignExchange = endpoint{
		path:  "getscheduledforeignexchange",
		key:   "scheduledForeignExchange",
		value: "Scheduled_Foreign_Exchange_MW",
	}
	scheduledInternalExchange = endpoint{
		path:  "getscheduledinternalexchange",
		key:   "scheduledInternalExchange",
		value: "Scheduled_Internal_Exchange_MW",
	}
	physicalForeignFlow = endpoint{
		path:  "getphysicalforeignflow",
		key:   "physicalForeignFlow",
		value: "Physical_Foreign_Flow_MW",
	}
	physicalInternalFlow = endpoint{
		path:  "getphysicalinternalflow",
		key:   "physicalInternalFlow",
		value: "Physical_Internal_Flow_MW",
	}
)

// dateFormats are the timestamp layouts observed in API responses, local to
// Timezone.
var dateFormats = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05.999",
	"2006-01-02T15:04:05",
	"02/01/2006 15:04:05",
	"2006-01-02",
}

// loc is loaded exactly once: row keys hold time.Time values, whose equality
// requires a shared *time.Location.
var loc = mustLocation()

func mustLocation() *time.Location {
	l, err := time.LoadLocation(Timezone)
	if err != nil {
		panic(errors.Annotate(err, "failed to load timezone %s", Timezone))
	}
	return l
}

// Location returns the timezone of all timestamp row keys. Use it when
// constructing times for table.Table cell lookups.
func Location() *time.Location { return loc }

// parseDate reconstructs a timezone-aware timestamp from the vendor's
// local-time string. For times that are ambiguous around the DST fold, the
// earlier instant is used.
func parseDate(s string) (time.Time, error) {
	for _, f := range dateFormats {
		if tm, err := time.ParseInLocation(f, s, loc); err == nil {
			return tm, nil
		}
	}
	return time.Time{}, errors.Reason("unsupported Date value: '%s'", s)
}

// recordKey extracts the row key from a record: a Date timestamp, or a Year
// bucket for year-keyed endpoints.
func recordKey(ep endpoint, rec map[string]interface{}) (table.Key, error) {
	if ep.byYear {
		v, ok := rec["Year"]
		if !ok {
			return table.Key{}, errors.Reason("record has no Year field")
		}
		year, err := asFloat(v)
		if err != nil {
			return table.Key{}, errors.Annotate(err, "invalid Year field")
		}
		return table.YearKey(int(year)), nil
	}
	v, ok := rec["Date"]
	if !ok {
		return table.Key{}, errors.Reason("record has no Date field")
	}
	s, ok := v.(string)
	if !ok {
		return table.Key{}, errors.Reason("Date field is %T, expected a string", v)
	}
	tm, err := parseDate(s)
	if err != nil {
		return table.Key{}, errors.Annotate(err, "invalid Date field")
	}
	return table.TimeKey(tm), nil
}

// asFloat converts a decoded JSON value to float64. The API emits both
// numbers and numeric strings.
func asFloat(v interface{}) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case string:
		f, err := strconv.ParseFloat(x, 64)
		if err != nil {
			return 0.0, errors.Reason("value '%s' is not numeric", x)
		}
		return f, nil
	default:
		return 0.0, errors.Reason("value %v is of the wrong type: %T", v, v)
	}
}

// TestPayload generates the JSON string in the envelope format returned by
// the API. For use in tests.
func TestPayload(key string, records []map[string]interface{}) (string, error) {
	b, err := json.Marshal(map[string]interface{}{"result": true, key: records})
	return string(b), err
}

// flatten tabulates a response body: one row per distinct Date or Year, one
// column per category present. A record whose value is null keeps its row and
// column, with the cell left missing. Flattening is a pure function of the
// payload.
func flatten(ep endpoint, body []byte) (*table.Table, error) {
	var env map[string]json.RawMessage
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, schemaError(body, "response is not a JSON object")
	}
	raw, ok := env[ep.key]
	if !ok {
		return nil, schemaError(body, "response has no '%s' key", ep.key)
	}
	var records []map[string]interface{}
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, schemaError(body, "'%s' is not a list of records", ep.key)
	}
	b := table.NewBuilder()
	for i, rec := range records {
		key, err := recordKey(ep, rec)
		if err != nil {
			return nil, schemaError(body, "record %d of '%s': %s", i, ep.key, err.Error())
		}
		b.AddKey(key)
		column := ep.value
		if ep.category != "" {
			v, ok := rec[ep.category]
			if !ok {
				return nil, schemaError(body, "record %d of '%s' has no %s field",
					i, ep.key, ep.category)
			}
			if column, ok = v.(string); !ok {
				return nil, schemaError(body, "record %d of '%s': %s field is %T, expected a string",
					i, ep.key, ep.category, v)
			}
		}
		b.AddColumn(column)
		v, ok := rec[ep.value]
		if !ok || v == nil {
			continue // missing cell
		}
		value, err := asFloat(v)
		if err != nil {
			return nil, schemaError(body, "record %d of '%s': invalid %s field: %s",
				i, ep.key, ep.value, err.Error())
		}
		b.Set(key, column, value)
	}
	return b.Build(), nil
}
