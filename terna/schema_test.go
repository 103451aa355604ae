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
	"testing"
	"time"

	"github.com/gridscope/terna-go/table"

	. "github.com/smartystreets/goconvey/convey"
)

func TestSchema(t *testing.T) {
	t.Parallel()

	Convey("parseDate handles the vendor's local-time formats", t, func() {
		expected := time.Date(2023, 6, 1, 13, 0, 0, 0, Location())
		for _, s := range []string{
			"2023-06-01 13:00:00",
			"2023-06-01T13:00:00",
			"01/06/2023 13:00:00",
		} {
			tm, err := parseDate(s)
			So(err, ShouldBeNil)
			So(tm, ShouldResemble, expected)
		}

		Convey("date-only values parse as midnight", func() {
			tm, err := parseDate("2023-06-01")
			So(err, ShouldBeNil)
			So(tm, ShouldResemble, time.Date(2023, 6, 1, 0, 0, 0, 0, Location()))
		})

		Convey("timestamps are timezone-aware", func() {
			winter, err := parseDate("2023-01-15 00:00:00")
			So(err, ShouldBeNil)
			_, off := winter.Zone()
			So(off, ShouldEqual, 3600) // CET

			summer, err := parseDate("2023-07-15 00:00:00")
			So(err, ShouldBeNil)
			_, off = summer.Zone()
			So(off, ShouldEqual, 2*3600) // CEST
		})

		Convey("unsupported values are rejected", func() {
			_, err := parseDate("June 1st, 2023")
			So(err, ShouldNotBeNil)
		})
	})

	Convey("asFloat accepts numbers and numeric strings", t, func() {
		v, err := asFloat(123.5)
		So(err, ShouldBeNil)
		So(v, ShouldEqual, 123.5)

		v, err = asFloat("123.5")
		So(err, ShouldBeNil)
		So(v, ShouldEqual, 123.5)

		_, err = asFloat("N/A")
		So(err, ShouldNotBeNil)
		_, err = asFloat(true)
		So(err, ShouldNotBeNil)
	})

	Convey("flatten works correctly", t, func() {
		payload := func(records []map[string]interface{}) []byte {
			page, err := TestPayload("totalLoad", records)
			So(err, ShouldBeNil)
			return []byte(page)
		}
		records := []map[string]interface{}{
			{"Date": "2023-06-01 01:00:00", "Bidding_Zone": "NORD", "Total_Load_MW": 20001.0},
			{"Date": "2023-06-01 00:00:00", "Bidding_Zone": "NORD", "Total_Load_MW": 20000.0},
			{"Date": "2023-06-01 00:00:00", "Bidding_Zone": "SICI", "Total_Load_MW": "800.25"},
		}

		Convey("rows are sorted by timestamp, string values are numeric", func() {
			tbl, err := flatten(totalLoad, payload(records))
			So(err, ShouldBeNil)
			So(tbl.Keys(), ShouldResemble, []table.Key{
				table.TimeKey(time.Date(2023, 6, 1, 0, 0, 0, 0, Location())),
				table.TimeKey(time.Date(2023, 6, 1, 1, 0, 0, 0, Location())),
			})
			v, ok := tbl.Value(table.TimeKey(time.Date(2023, 6, 1, 0, 0, 0, 0, Location())), "SICI")
			So(ok, ShouldBeTrue)
			So(v, ShouldEqual, 800.25)
		})

		Convey("flattening the same payload twice is idempotent", func() {
			body := payload(records)
			tbl, err := flatten(totalLoad, body)
			So(err, ShouldBeNil)
			tbl2, err := flatten(totalLoad, body)
			So(err, ShouldBeNil)
			So(tbl2, ShouldResemble, tbl)
		})

		Convey("a duplicate cell keeps the last value", func() {
			tbl, err := flatten(totalLoad, payload([]map[string]interface{}{
				{"Date": "2023-06-01 00:00:00", "Bidding_Zone": "NORD", "Total_Load_MW": 1.0},
				{"Date": "2023-06-01 00:00:00", "Bidding_Zone": "NORD", "Total_Load_MW": 2.0},
			}))
			So(err, ShouldBeNil)
			So(tbl.NumRows(), ShouldEqual, 1)
			v, ok := tbl.Value(table.TimeKey(time.Date(2023, 6, 1, 0, 0, 0, 0, Location())), "NORD")
			So(ok, ShouldBeTrue)
			So(v, ShouldEqual, 2.0)
		})

		Convey("malformed payloads are SchemaErrors", func() {
			check := func(body string) {
				tbl, err := flatten(totalLoad, []byte(body))
				So(tbl, ShouldBeNil)
				schErr, ok := err.(*SchemaError)
				So(ok, ShouldBeTrue)
				So(string(schErr.Payload), ShouldEqual, body)
			}

			Convey("not a JSON object", func() { check(`[1, 2, 3]`) })
			Convey("missing payload key", func() { check(`{"result": true}`) })
			Convey("payload is not a list", func() { check(`{"result": true, "totalLoad": 42}`) })
			Convey("record without Date", func() {
				check(`{"result": true, "totalLoad": [{"Bidding_Zone": "NORD", "Total_Load_MW": 1}]}`)
			})
			Convey("Date of the wrong type", func() {
				check(`{"result": true, "totalLoad": [{"Date": 42, "Bidding_Zone": "NORD", "Total_Load_MW": 1}]}`)
			})
			Convey("record without the category field", func() {
				check(`{"result": true, "totalLoad": [{"Date": "2023-06-01 00:00:00", "Total_Load_MW": 1}]}`)
			})
			Convey("non-numeric value", func() {
				check(`{"result": true, "totalLoad": [{"Date": "2023-06-01 00:00:00", "Bidding_Zone": "NORD", "Total_Load_MW": false}]}`)
			})
		})

		Convey("year-keyed records parse from numbers and strings", func() {
			page, err := TestPayload("installedCapacity", []map[string]interface{}{
				{"Year": "2022", "Type": "Thermal", "Installed_Capacity_MW": 55000.5},
			})
			So(err, ShouldBeNil)
			tbl, err := flatten(installedCapacity, []byte(page))
			So(err, ShouldBeNil)
			So(tbl.Keys(), ShouldResemble, []table.Key{table.YearKey(2022)})
		})
	})
}
