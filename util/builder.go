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
	"errors"
	"sync"
	"time"
)

// stringTable interns strings as dense indices.  It is safe for concurrent
// use.
type stringTable struct {
	mu             sync.RWMutex
	indices        map[string]int64
	stringsByIndex []string
}

func newStringTable() *stringTable {
	return &stringTable{indices: map[string]int64{}}
}

// stringIndex returns str's index, interning it if it is new.
func (st *stringTable) stringIndex(str string) int64 {
	st.mu.RLock()
	idx, ok := st.indices[str]
	st.mu.RUnlock()
	if ok {
		return idx
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	if idx, ok := st.indices[str]; ok {
		return idx
	}
	idx = int64(len(st.stringsByIndex))
	st.stringsByIndex = append(st.stringsByIndex, str)
	st.indices[str] = idx
	return idx
}

func (st *stringTable) table() []string {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return append([]string{}, st.stringsByIndex...)
}

// buildErrors collects the errors raised while building a response.  The
// first error stops further updates anywhere in the response.
type buildErrors struct {
	mu   sync.Mutex
	errs []error
}

func (be *buildErrors) add(err error) {
	be.mu.Lock()
	defer be.mu.Unlock()
	be.errs = append(be.errs, err)
}

func (be *buildErrors) failed() bool {
	be.mu.Lock()
	defer be.mu.Unlock()
	return len(be.errs) > 0
}

func (be *buildErrors) err() error {
	be.mu.Lock()
	defer be.mu.Unlock()
	return errors.Join(be.errs...)
}

// DataBuilder assembles one Datum of a response.
type DataBuilder interface {
	// With applies updates to the receiver's properties, in order.
	With(updates ...PropertyUpdate) DataBuilder
	// Child appends a child to the receiver and returns its builder.
	Child() DataBuilder
}

// DataResponseBuilder assembles the Data answering a DataRequest.  Its
// series may be built concurrently.
type DataResponseBuilder struct {
	st   *stringTable
	errs *buildErrors

	mu     sync.Mutex
	series []*DataSeries
}

// NewDataResponseBuilder returns an empty DataResponseBuilder.
func NewDataResponseBuilder() *DataResponseBuilder {
	return &DataResponseBuilder{
		st:     newStringTable(),
		errs:   &buildErrors{},
		series: []*DataSeries{},
	}
}

// DataSeries adds a series answering req, returning the builder of its root.
func (drb *DataResponseBuilder) DataSeries(req *DataSeriesRequest) DataBuilder {
	root := newDatumBuilder(drb.errs, drb.st)
	drb.mu.Lock()
	defer drb.mu.Unlock()
	drb.series = append(drb.series, &DataSeries{
		SeriesName: req.SeriesName,
		Root:       root.d,
	})
	return root
}

// Data returns the assembled response, or the errors raised while building
// it.
func (drb *DataResponseBuilder) Data() (*Data, error) {
	if err := drb.errs.err(); err != nil {
		return nil, err
	}
	drb.mu.Lock()
	defer drb.mu.Unlock()
	return &Data{
		StringTable: drb.st.table(),
		DataSeries:  append([]*DataSeries{}, drb.series...),
	}, nil
}

// PropertyUpdate sets properties on the Datum under construction.  A nil
// PropertyUpdate does nothing.
type PropertyUpdate func(db *datumBuilder) error

// EmptyUpdate does nothing.
var EmptyUpdate PropertyUpdate

// Value is a property value whose key is supplied later, as by a table
// column.
type Value func(key string) PropertyUpdate

type datumBuilder struct {
	errs *buildErrors
	st   *stringTable
	d    *Datum
}

func newDatumBuilder(errs *buildErrors, st *stringTable) *datumBuilder {
	return &datumBuilder{
		errs: errs,
		st:   st,
		d: &Datum{
			Properties: map[int64]*V{},
			Children:   []*Datum{},
		},
	}
}

func (db *datumBuilder) With(updates ...PropertyUpdate) DataBuilder {
	for _, update := range updates {
		if update == nil {
			continue
		}
		if db.errs.failed() {
			break
		}
		if err := update(db); err != nil {
			db.errs.add(err)
		}
	}
	return db
}

func (db *datumBuilder) Child() DataBuilder {
	child := newDatumBuilder(db.errs, db.st)
	db.d.Children = append(db.d.Children, child.d)
	return child
}

func (db *datumBuilder) set(key string, v *V) {
	db.d.Properties[db.st.stringIndex(key)] = v
}

// setStr interns value as well as key.
func (db *datumBuilder) setStr(key, value string) {
	db.set(key, stringIndexValue(db.st.stringIndex(value)))
}

func (db *datumBuilder) indices(values []string) []int64 {
	ret := make([]int64, len(values))
	for i, val := range values {
		ret[i] = db.st.stringIndex(val)
	}
	return ret
}

func (db *datumBuilder) setStrs(key string, values ...string) {
	db.set(key, stringIndicesValue(db.indices(values)...))
}

// appendStrs extends the string list at key, creating it if needed.
func (db *datumBuilder) appendStrs(key string, values ...string) error {
	existing, ok := db.d.Properties[db.st.stringIndex(key)]
	if !ok {
		db.setStrs(key, values...)
		return nil
	}
	idxs, err := expect[[]int64](existing, stringIndicesType)
	if err != nil {
		return err
	}
	existing.V = append(idxs, db.indices(values)...)
	return nil
}

// ErrorProperty fails the response under construction with err.
func ErrorProperty(err error) PropertyUpdate {
	return func(*datumBuilder) error {
		return err
	}
}

// If returns du if predicate holds, and otherwise EmptyUpdate.
func If(predicate bool, du PropertyUpdate) PropertyUpdate {
	if predicate {
		return du
	}
	return EmptyUpdate
}

// Chain combines updates into one, applied in order.
func Chain(updates ...PropertyUpdate) PropertyUpdate {
	return func(db *datumBuilder) error {
		db.With(updates...)
		return nil
	}
}

// String is a Value holding a string.
func String(value string) Value {
	return func(key string) PropertyUpdate {
		return StringProperty(key, value)
	}
}

// Integer is a Value holding an integer.
func Integer(value int64) Value {
	return func(key string) PropertyUpdate {
		return IntegerProperty(key, value)
	}
}

// Bool is a Value holding a bool.
func Bool(value bool) Value {
	return func(key string) PropertyUpdate {
		return BoolProperty(key, value)
	}
}

// StringProperty sets key to value.
func StringProperty(key, value string) PropertyUpdate {
	return func(db *datumBuilder) error {
		db.setStr(key, value)
		return nil
	}
}

// StringsProperty sets key to values, replacing any previous list.
func StringsProperty(key string, values ...string) PropertyUpdate {
	return func(db *datumBuilder) error {
		db.setStrs(key, values...)
		return nil
	}
}

// StringsPropertyExtended appends values to the string list at key.
func StringsPropertyExtended(key string, values ...string) PropertyUpdate {
	return func(db *datumBuilder) error {
		return db.appendStrs(key, values...)
	}
}

// IntegerProperty sets key to value.
func IntegerProperty(key string, value int64) PropertyUpdate {
	return func(db *datumBuilder) error {
		db.set(key, IntegerValue(value))
		return nil
	}
}

// DoubleProperty sets key to value.
func DoubleProperty(key string, value float64) PropertyUpdate {
	return func(db *datumBuilder) error {
		db.set(key, DoubleValue(value))
		return nil
	}
}

// DoublesProperty sets key to values.
func DoublesProperty(key string, values ...float64) PropertyUpdate {
	return func(db *datumBuilder) error {
		db.set(key, doublesValue(values...))
		return nil
	}
}

// DurationProperty sets key to value.
func DurationProperty(key string, value time.Duration) PropertyUpdate {
	return func(db *datumBuilder) error {
		db.set(key, durationValue(value))
		return nil
	}
}

// BoolProperty sets key to value.
func BoolProperty(key string, value bool) PropertyUpdate {
	return func(db *datumBuilder) error {
		db.set(key, BoolValue(value))
		return nil
	}
}
