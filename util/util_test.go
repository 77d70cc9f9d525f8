/*
	Copyright 2023 Google Inc.
	Licensed under the Apache License, Version 2.0 (the "License");
	you may not use this file except in compliance with the License.
	You may obtain a copy of the License at
		https://www.apache.org/licenses/LICENSE-2.0
	Unless required by applicable law or agreed to in writing, software
	distributed under the License is distributed on an "AS IS" BASIS,
	WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
	See the License for the specific language governing permissions and
	limitations under the License.
*/

package util

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestStringTable(t *testing.T) {
	for _, test := range []struct {
		description string
		additions   []string
		wantTable   []string
		wantIndices []int64
	}{{
		description: "unique additions",
		additions:   []string{"rect", "circle", "path"},
		wantTable:   []string{"rect", "circle", "path"},
		wantIndices: []int64{0, 1, 2},
	}, {
		description: "duplicate additions",
		additions:   []string{"rect", "circle", "rect", "rect", "circle"},
		wantTable:   []string{"rect", "circle"},
		wantIndices: []int64{0, 1, 0, 0, 1},
	}} {
		t.Run(test.description, func(t *testing.T) {
			st := newStringTable()
			var gotIndices []int64
			for _, str := range test.additions {
				gotIndices = append(gotIndices, st.stringIndex(str))
			}
			if diff := cmp.Diff(test.wantIndices, gotIndices); diff != "" {
				t.Errorf("stringIndex() diff (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(test.wantTable, st.table()); diff != "" {
				t.Errorf("table() diff (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDatumBuilder(t *testing.T) {
	db := newDatumBuilder(&buildErrors{}, newStringTable())
	db.setStr("fill", "steelblue")
	db.set("opacity", DoubleValue(0.2))
	if err := db.appendStrs("classes", "bar", "label"); err != nil {
		t.Fatalf("appendStrs() yielded unexpected error %s", err)
	}
	db.setStr("fill", "#003c66")
	db.set("opacity", DoubleValue(1))
	if err := db.appendStrs("classes", "x-axis"); err != nil {
		t.Fatalf("appendStrs() yielded unexpected error %s", err)
	}
	// fill=0 steelblue=1 opacity=2 classes=3 bar=4 label=5 #003c66=6 x-axis=7
	want := map[int64]*V{
		0: stringIndexValue(6),
		2: DoubleValue(1),
		3: stringIndicesValue(4, 5, 7),
	}
	if diff := cmp.Diff(want, db.d.Properties); diff != "" {
		t.Errorf("properties diff (-want +got):\n%s", diff)
	}
	if err := db.appendStrs("opacity", "x"); err == nil {
		t.Errorf("appendStrs() onto a double yielded no error")
	}
}

func TestParseDataRequest(t *testing.T) {
	for _, test := range []struct {
		description string
		reqJSON     string
		wantReq     *DataRequest
		wantErr     bool
	}{{
		description: "series only",
		reqJSON: `{
			"SeriesRequests": [
				{"QueryName": "litviz.chart", "SeriesName": "1"},
				{"QueryName": "litviz.catalog", "SeriesName": "2"}
			]
		}`,
		wantReq: &DataRequest{
			SeriesRequests: []*DataSeriesRequest{
				{QueryName: "litviz.chart", SeriesName: "1"},
				{QueryName: "litviz.catalog", SeriesName: "2"},
			},
		},
	}, {
		description: "global filters and options of every type",
		reqJSON: `{
			"GlobalFilters": {
				"chart_id": [1, "cities-in-canadian-literature"],
				"regions": [3, ["Ontario", "Prince%20Edward%20Island"]],
				"width": [5, 800],
				"zoom": [6, 1.5],
				"translate": [7, [-20, 0.5]],
				"elapsed": [8, 150000000],
				"accumulate": [9, true]
			},
			"SeriesRequests": [{
				"QueryName": "litviz.chart",
				"SeriesName": "1",
				"Options": {"snapshot": [5, 3]}
			}]
		}`,
		wantReq: &DataRequest{
			GlobalFilters: map[string]*V{
				"chart_id":   StringValue("cities-in-canadian-literature"),
				"regions":    stringsValue("Ontario", "Prince Edward Island"),
				"width":      IntegerValue(800),
				"zoom":       DoubleValue(1.5),
				"translate":  doublesValue(-20, 0.5),
				"elapsed":    durationValue(150 * time.Millisecond),
				"accumulate": BoolValue(true),
			},
			SeriesRequests: []*DataSeriesRequest{{
				QueryName:  "litviz.chart",
				SeriesName: "1",
				Options: map[string]*V{
					"snapshot": IntegerValue(3),
				},
			}},
		},
	}, {
		description: "malformed",
		reqJSON:     `{"SeriesRequests": 3}`,
		wantErr:     true,
	}} {
		t.Run(test.description, func(t *testing.T) {
			got, err := DataRequestFromJSON([]byte(test.reqJSON))
			if (err != nil) != test.wantErr {
				t.Fatalf("DataRequestFromJSON() yielded error %v, wantErr %t", err, test.wantErr)
			}
			if diff := cmp.Diff(test.wantReq, got); diff != "" {
				t.Errorf("DataRequestFromJSON() diff (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseMalformedValue(t *testing.T) {
	for _, test := range []struct {
		description string
		valueJSON   string
	}{
		{"not an array", `{"T": 5}`},
		{"too short", `[5]`},
		{"too long", `[5, 1, 2]`},
		{"non-numeric type", `["int", 5]`},
		{"unknown type", `[42, 5]`},
		{"mistyped integer", `[5, "five"]`},
		{"fractional integer", `[5, 1.5]`},
		{"mistyped bool", `[9, 1]`},
		{"mistyped doubles", `[7, [1, "two"]]`},
		{"mistyped strings", `[3, ["a", 2]]`},
	} {
		t.Run(test.description, func(t *testing.T) {
			v := &V{}
			if err := json.Unmarshal([]byte(test.valueJSON), v); err == nil {
				t.Errorf("Unmarshal(%s) = %v, want error", test.valueJSON, v)
			}
		})
	}
}

func TestResponseEncoding(t *testing.T) {
	// Also a reference for the wire format.
	d := &Data{
		StringTable: []string{"stridx", "stridxs", "int", "dbl", "dbls", "dur", "bool", "hello", "goodbye"},
		DataSeries: []*DataSeries{{
			SeriesName: "0",
			Root: &Datum{
				Properties: map[int64]*V{},
				Children: []*Datum{{
					Properties: map[int64]*V{
						6: BoolValue(true),
						0: stringIndexValue(7),
						1: stringIndicesValue(7, 8),
						2: IntegerValue(100),
						3: DoubleValue(3.14159),
						4: doublesValue(1.5, 2.5),
						5: durationValue(150 * time.Millisecond),
					},
				}},
			},
		}},
	}
	want := `{
		"StringTable": ["stridx", "stridxs", "int", "dbl", "dbls", "dur", "bool", "hello", "goodbye"],
		"DataSeries": [{
			"SeriesName": "0",
			"Root": [[], [
				[[
					[0, [2, 7]],
					[1, [4, [7, 8]]],
					[2, [5, 100]],
					[3, [6, 3.14159]],
					[4, [7, [1.5, 2.5]]],
					[5, [8, 150000000]],
					[6, [9, true]]
				], []]
			]]
		}]
	}`
	got, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("failed to marshal Data: %s", err)
	}
	var gotBuf, wantBuf bytes.Buffer
	if err := json.Indent(&gotBuf, got, "", "  "); err != nil {
		t.Fatalf("failed to indent Data: %s", err)
	}
	if err := json.Indent(&wantBuf, []byte(want), "", "  "); err != nil {
		t.Fatalf("failed to indent wanted JSON: %s", err)
	}
	if diff := cmp.Diff(wantBuf.String(), gotBuf.String()); diff != "" {
		t.Errorf("encoded Data diff (-want +got):\n%s", diff)
	}
}

func TestDatumDecoding(t *testing.T) {
	for _, test := range []struct {
		description string
		d           *Datum
	}{{
		description: "empty",
		d:           &Datum{Properties: map[int64]*V{}, Children: []*Datum{}},
	}, {
		description: "nested",
		d: &Datum{
			Properties: map[int64]*V{
				0: stringIndexValue(1),
				2: doublesValue(0, 12.5),
			},
			Children: []*Datum{{
				Properties: map[int64]*V{
					3: durationValue(700 * time.Millisecond),
					4: stringsValue("a", "b"),
				},
				Children: []*Datum{},
			}},
		},
	}} {
		t.Run(test.description, func(t *testing.T) {
			dj, err := json.Marshal(test.d)
			if err != nil {
				t.Fatalf("failed to marshal Datum: %s", err)
			}
			got := &Datum{}
			if err := json.Unmarshal(dj, got); err != nil {
				t.Fatalf("failed to unmarshal Datum %s: %s", dj, err)
			}
			if diff := cmp.Diff(test.d, got); diff != "" {
				t.Errorf("decoded Datum diff (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMalformedDatum(t *testing.T) {
	for _, test := range []struct {
		description string
		datumJSON   string
	}{
		{"one element", `[[]]`},
		{"properties not an array", `[{}, []]`},
		{"property not a pair", `[[[0]], []]`},
		{"non-integer key", `[[["fill", [5, 1]]], []]`},
		{"bad child", `[[], [[[]]]]`},
	} {
		t.Run(test.description, func(t *testing.T) {
			if err := json.Unmarshal([]byte(test.datumJSON), &Datum{}); err == nil {
				t.Errorf("Unmarshal(%s) yielded no error", test.datumJSON)
			}
		})
	}
}

func TestDataResponseBuilding(t *testing.T) {
	seriesReq := &DataSeriesRequest{QueryName: "litviz.chart", SeriesName: "1"}
	for _, test := range []struct {
		description string
		build       func(db DataBuilder)
		wantData    *Data
	}{{
		description: "empty",
		build:       func(db DataBuilder) {},
		wantData: &Data{
			StringTable: []string{},
			DataSeries: []*DataSeries{{
				SeriesName: "1",
				Root:       &Datum{Properties: map[int64]*V{}, Children: []*Datum{}},
			}},
		},
	}, {
		description: "nested scene elements",
		build: func(db DataBuilder) {
			db.Child().With(
				StringsProperty("classes", "bar"),
				StringsPropertyExtended("classes", "enter", "rank-1"),
				DoubleProperty("width", 320.5),
			).Child().With(
				StringProperty("kind", "rect"),
				DurationProperty("duration", 700*time.Millisecond),
			)
			db.Child().With(
				StringProperty("kind", "circle"),
				IntegerProperty("index", 6),
				DoublesProperty("center", 7, 8),
				BoolProperty("interactive", false),
			)
		},
		wantData: &Data{
			StringTable: []string{"bar", "classes", "enter", "rank-1", "width", "kind", "rect", "duration", "circle", "index", "center", "interactive"},
			DataSeries: []*DataSeries{{
				SeriesName: "1",
				Root: &Datum{
					Properties: map[int64]*V{},
					Children: []*Datum{{
						Properties: map[int64]*V{
							1: stringIndicesValue(0, 2, 3),
							4: DoubleValue(320.5),
						},
						Children: []*Datum{{
							Properties: map[int64]*V{
								5: stringIndexValue(6),
								7: durationValue(700 * time.Millisecond),
							},
							Children: []*Datum{},
						}},
					}, {
						Properties: map[int64]*V{
							5:  stringIndexValue(8),
							9:  IntegerValue(6),
							10: doublesValue(7, 8),
							11: BoolValue(false),
						},
						Children: []*Datum{},
					}},
				},
			}},
		},
	}} {
		t.Run(test.description, func(t *testing.T) {
			drb := NewDataResponseBuilder()
			test.build(drb.DataSeries(seriesReq))
			got, err := drb.Data()
			if err != nil {
				t.Fatalf("Data() yielded unexpected error %s", err)
			}
			if diff := cmp.Diff(test.wantData, got); diff != "" {
				t.Errorf("Data() diff (-want +got):\n%s", diff)
			}
		})
	}
}

func TestConcurrentSeries(t *testing.T) {
	drb := NewDataResponseBuilder()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			drb.DataSeries(&DataSeriesRequest{SeriesName: strconv.Itoa(i)}).With(
				StringProperty("kind", "g"),
				StringProperty("key", fmt.Sprintf("series-%d", i%2)),
			)
		}(i)
	}
	wg.Wait()
	data, err := drb.Data()
	if err != nil {
		t.Fatalf("Data() yielded unexpected error %s", err)
	}
	if got := len(data.DataSeries); got != 8 {
		t.Fatalf("built %d series, want 8", got)
	}
	// kind, g, key, series-0, series-1
	if got := len(data.StringTable); got != 5 {
		t.Errorf("string table holds %d strings, want 5: %v", got, data.StringTable)
	}
	for _, series := range data.DataSeries {
		if got := propertiesOf(data, series.Root)["kind"]; got != "'g'" {
			t.Errorf("series %s kind = %s, want 'g'", series.SeriesName, got)
		}
	}
}

// propertiesOf returns d's prettyprinted properties by name.
func propertiesOf(data *Data, d *Datum) map[string]string {
	ret := map[string]string{}
	for k, v := range d.Properties {
		ret[data.StringTable[k]] = v.PrettyPrint(data.StringTable)
	}
	return ret
}

func TestExpectValues(t *testing.T) {
	req := &DataRequest{
		GlobalFilters: map[string]*V{
			"region":     StringValue("Nova%20Scotia"),
			"width":      IntegerValue(800),
			"zoom":       DoubleValue(2.5),
			"accumulate": BoolValue(true),
		},
	}
	rj, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("failed to marshal DataRequest: %s", err)
	}
	decoded, err := DataRequestFromJSON(rj)
	if err != nil {
		t.Fatalf("failed to decode DataRequest %s: %s", rj, err)
	}
	gf := decoded.GlobalFilters
	str, err := ExpectStringValue(gf["region"])
	if err != nil || str != "Nova Scotia" {
		t.Errorf("ExpectStringValue() = %q, %v, want %q", str, err, "Nova Scotia")
	}
	i, err := ExpectIntegerValue(gf["width"])
	if err != nil || i != 800 {
		t.Errorf("ExpectIntegerValue() = %d, %v, want 800", i, err)
	}
	d, err := ExpectDoubleValue(gf["zoom"])
	if err != nil || d != 2.5 {
		t.Errorf("ExpectDoubleValue() = %v, %v, want 2.5", d, err)
	}
	b, err := ExpectBoolValue(gf["accumulate"])
	if err != nil || !b {
		t.Errorf("ExpectBoolValue() = %t, %v, want true", b, err)
	}
	for _, test := range []struct {
		description string
		expect      func() error
	}{
		{"missing", func() error { _, err := ExpectIntegerValue(gf["missing"]); return err }},
		{"integer as double", func() error { _, err := ExpectDoubleValue(gf["width"]); return err }},
		{"double as integer", func() error { _, err := ExpectIntegerValue(gf["zoom"]); return err }},
		{"string as bool", func() error { _, err := ExpectBoolValue(gf["region"]); return err }},
		{"bool as string", func() error { _, err := ExpectStringValue(gf["accumulate"]); return err }},
		{"mislabeled payload", func() error { _, err := ExpectIntegerValue(&V{V: "800", T: integerType}); return err }},
	} {
		t.Run(test.description, func(t *testing.T) {
			if err := test.expect(); err == nil {
				t.Errorf("Expect yielded no error")
			}
		})
	}
}

func TestPropertyUpdates(t *testing.T) {
	for _, test := range []struct {
		description string
		apply       func(db DataBuilder)
		wantErr     bool
		wantProps   map[string]string
	}{{
		description: "If and Chain",
		apply: func(db DataBuilder) {
			db.With(Chain(
				If(10 < 5, IntegerProperty("possibility", 0)),
				If(10 > 5, IntegerProperty("possibility", 1)),
				EmptyUpdate,
			))
		},
		wantProps: map[string]string{"possibility": "1"},
	}, {
		description: "Values applied to keys",
		apply: func(db DataBuilder) {
			db.With(
				String("Ontario")("region"),
				Integer(3)("skipped"),
				Bool(true)("loaded"),
			)
		},
		wantProps: map[string]string{"region": "'Ontario'", "skipped": "3", "loaded": "true"},
	}, {
		description: "error stops later updates",
		apply: func(db DataBuilder) {
			db.With(ErrorProperty(errors.New("oops")), IntegerProperty("after", 1))
		},
		wantErr: true,
	}, {
		description: "extending a non-list fails",
		apply: func(db DataBuilder) {
			db.With(IntegerProperty("classes", 1), StringsPropertyExtended("classes", "bar"))
		},
		wantErr: true,
	}} {
		t.Run(test.description, func(t *testing.T) {
			drb := NewDataResponseBuilder()
			test.apply(drb.DataSeries(&DataSeriesRequest{SeriesName: "1"}))
			data, err := drb.Data()
			if (err != nil) != test.wantErr {
				t.Fatalf("Data() yielded error %v, wantErr %t", err, test.wantErr)
			}
			if err != nil {
				return
			}
			if diff := cmp.Diff(test.wantProps, propertiesOf(data, data.DataSeries[0].Root)); diff != "" {
				t.Errorf("properties diff (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPrettyPrint(t *testing.T) {
	drb := NewDataResponseBuilder()
	drb.DataSeries(&DataSeriesRequest{SeriesName: "0"}).
		Child().With(
		StringProperty("kind", "g"),
		IntegerProperty("index", 100),
	).
		Child().With(
		StringsProperty("classes", "dot", "hit-area"),
		BoolProperty("hidden", false),
		DurationProperty("duration", 1500*time.Millisecond),
	)
	drb.DataSeries(&DataSeriesRequest{SeriesName: "1"}).
		Child().With(
		DoublesProperty("translate", 0, 12.5),
		DoubleProperty("opacity", 0.4),
	)
	want := `Data:
  Series 0
    Root:
      Child:
        Prop 'index': 100
        Prop 'kind': 'g'
        Child:
          Prop 'classes': [ 'dot', 'hit-area' ]
          Prop 'duration': 1.5s
          Prop 'hidden': false
  Series 1
    Root:
      Child:
        Prop 'opacity': 0.400000
        Prop 'translate': [ 0.000000, 12.500000 ]`
	got, err := drb.Data()
	if err != nil {
		t.Fatalf("Data() yielded unexpected error %s", err)
	}
	if diff := cmp.Diff(want, got.PrettyPrint()); diff != "" {
		t.Errorf("PrettyPrint() diff (-want +got):\n%s", diff)
	}
	if got := stringsValue("a").PrettyPrint(nil); got != "[ 'a' ]" {
		t.Errorf("PrettyPrint() of strings = %s", got)
	}
	if got := (&V{}).PrettyPrint(nil); got != "unset" {
		t.Errorf("PrettyPrint() of an unset value = %s", got)
	}
}
