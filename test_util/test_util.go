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

// Package testutil provides helpers for testing litviz responses, such as
// scenes and tables encoded by charts and data sources.  Responses are
// compared through their deterministic prettyprinted form, so string-table
// order never matters.
package testutil

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/ilhamster/litviz/util"
)

// UpdateComparator checks that a set of PropertyUpdates under test has the
// same effect as a set of wanted PropertyUpdates.
type UpdateComparator struct {
	got, want []util.PropertyUpdate
}

// NewUpdateComparator returns a new, empty UpdateComparator.
func NewUpdateComparator() *UpdateComparator {
	return &UpdateComparator{}
}

// WithTestUpdates sets the updates under test.
func (uc *UpdateComparator) WithTestUpdates(got ...util.PropertyUpdate) *UpdateComparator {
	uc.got = got
	return uc
}

// WithWantUpdates sets the wanted updates.
func (uc *UpdateComparator) WithWantUpdates(want ...util.PropertyUpdate) *UpdateComparator {
	uc.want = want
	return uc
}

// Compare applies both update sets to sibling data, returning a diff message
// and true if they differ.
func (uc *UpdateComparator) Compare(t *testing.T) (string, bool) {
	t.Helper()
	drb := util.NewDataResponseBuilder()
	series := drb.DataSeries(&util.DataSeriesRequest{})
	series.Child().With(uc.got...)
	series.Child().With(uc.want...)
	data, err := drb.Data()
	if err != nil {
		t.Fatalf("failed to build updates: %s", err)
	}
	root := data.DataSeries[0].Root
	got := root.Children[0].PrettyPrint("", data.StringTable)
	want := root.Children[1].PrettyPrint("", data.StringTable)
	if diff := cmp.Diff(want, got); diff != "" {
		return fmt.Sprintf("Got %s, diff (-want +got):\n%s", got, diff), true
	}
	return "", false
}

// TestDataBuilder fluently assembles expected responses.
type TestDataBuilder interface {
	With(updates ...util.PropertyUpdate) TestDataBuilder
	// Child adds and returns a child of the receiver.
	Child() TestDataBuilder
	// AndChild adds and returns a sibling of the receiver, or a child if the
	// receiver is a series root.
	AndChild() TestDataBuilder
	// Parent returns the receiver's parent, or the receiver if it is a
	// series root.
	Parent() TestDataBuilder
}

type testDataBuilder struct {
	db     util.DataBuilder
	parent *testDataBuilder
}

func (tdb *testDataBuilder) With(updates ...util.PropertyUpdate) TestDataBuilder {
	tdb.db.With(updates...)
	return tdb
}

func (tdb *testDataBuilder) Child() TestDataBuilder {
	return &testDataBuilder{
		db:     tdb.db.Child(),
		parent: tdb,
	}
}

func (tdb *testDataBuilder) AndChild() TestDataBuilder {
	return tdb.Parent().Child()
}

func (tdb *testDataBuilder) Parent() TestDataBuilder {
	if tdb.parent == nil {
		return tdb
	}
	return tdb.parent
}

// build fills a fresh single-series response with fn, which must accept a
// util.DataBuilder or a TestDataBuilder.
func build(fn any) (*util.DataResponseBuilder, error) {
	drb := util.NewDataResponseBuilder()
	series := drb.DataSeries(&util.DataSeriesRequest{})
	switch fn := fn.(type) {
	case func(util.DataBuilder):
		fn(series)
	case func(TestDataBuilder):
		fn(&testDataBuilder{db: series})
	default:
		return nil, fmt.Errorf("unsupported builder %T; want func(util.DataBuilder) or func(testutil.TestDataBuilder)", fn)
	}
	return drb, nil
}

func dataOf(d any) (*util.Data, error) {
	switch v := d.(type) {
	case *util.DataResponseBuilder:
		return v.Data()
	case *util.Data:
		return v, nil
	default:
		return nil, fmt.Errorf("unsupported response %T; want *util.DataResponseBuilder or *util.Data", d)
	}
}

// CompareDataResponses reports a test error if got and want, each a
// *util.DataResponseBuilder or a *util.Data, differ.  It returns an error if
// either cannot be compared.
func CompareDataResponses(t *testing.T, got, want any) error {
	t.Helper()
	gotData, err := dataOf(got)
	if err != nil {
		return err
	}
	wantData, err := dataOf(want)
	if err != nil {
		return err
	}
	gotPP := gotData.PrettyPrint()
	if diff := cmp.Diff(wantData.PrettyPrint(), gotPP); diff != "" {
		t.Errorf("Got data %s, diff (-want +got):\n%s", gotPP, diff)
	}
	return nil
}

// CompareResponses builds a response under test and a wanted response, each
// from a func(util.DataBuilder) or a func(TestDataBuilder), and compares them
// as CompareDataResponses does.
func CompareResponses(t *testing.T, buildGot, buildWant any) error {
	t.Helper()
	got, err := build(buildGot)
	if err != nil {
		return err
	}
	want, err := build(buildWant)
	if err != nil {
		return err
	}
	return CompareDataResponses(t, got, want)
}

// PrettyPrintOf builds a single data series with the provided callback and
// returns it prettyprinted, or an error if building it failed.  It is useful
// for golden comparisons of encoded scenes.
func PrettyPrintOf(fn func(util.DataBuilder)) (string, error) {
	drb, err := build(fn)
	if err != nil {
		return "", err
	}
	data, err := drb.Data()
	if err != nil {
		return "", err
	}
	return data.PrettyPrint(), nil
}

// Properties returns d's properties, keyed by name and prettyprinted, for
// comparing data that also hold nondeterministic properties.
func Properties(data *util.Data, d *util.Datum) map[string]string {
	ret := make(map[string]string, len(d.Properties))
	for k, v := range d.Properties {
		ret[data.StringTable[k]] = v.PrettyPrint(data.StringTable)
	}
	return ret
}
