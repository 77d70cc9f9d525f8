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
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// valueType tags the payload of a V.  Its numbering is part of the wire
// format.
type valueType int

const (
	unsetValue valueType = iota
	stringType
	stringIndexType
	stringsType
	stringIndicesType
	integerType
	doubleType
	doublesType
	durationType
	boolType
)

var valueTypeNames = map[valueType]string{
	stringType:        "str",
	stringIndexType:   "str_idx",
	stringsType:       "strs",
	stringIndicesType: "str_idxs",
	integerType:       "int",
	doubleType:        "dbl",
	doublesType:       "dbls",
	durationType:      "duration",
	boolType:          "bool",
}

// V is a typed value in a litviz request or response.  Build Vs with the
// {type}Value functions and read them with the Expect{type}Value functions.
type V struct {
	V any
	T valueType
}

// StringValue returns a V holding str.
func StringValue(str string) *V {
	return &V{V: str, T: stringType}
}

// IntegerValue returns a V holding i.
func IntegerValue(i int64) *V {
	return &V{V: i, T: integerType}
}

// DoubleValue returns a V holding f.
func DoubleValue(f float64) *V {
	return &V{V: f, T: doubleType}
}

// BoolValue returns a V holding b.
func BoolValue(b bool) *V {
	return &V{V: b, T: boolType}
}

func stringIndexValue(idx int64) *V {
	return &V{V: idx, T: stringIndexType}
}

func stringIndicesValue(idxs ...int64) *V {
	return &V{V: idxs, T: stringIndicesType}
}

func stringsValue(strs ...string) *V {
	return &V{V: strs, T: stringsType}
}

func doublesValue(fs ...float64) *V {
	return &V{V: fs, T: doublesType}
}

func durationValue(dur time.Duration) *V {
	return &V{V: dur, T: durationType}
}

// expect returns val's payload as a T, or an error naming the wanted type if
// val is missing or holds some other type.
func expect[T any](val *V, want valueType) (T, error) {
	var zero T
	if val == nil || val.T != want {
		return zero, fmt.Errorf("expected value type '%s'", valueTypeNames[want])
	}
	ret, ok := val.V.(T)
	if !ok {
		return zero, fmt.Errorf("value of type '%s' holds a %T", valueTypeNames[want], val.V)
	}
	return ret, nil
}

// ExpectStringValue returns the string held by val, which clients send
// query-escaped.
func ExpectStringValue(val *V) (string, error) {
	str, err := expect[string](val, stringType)
	if err != nil {
		return "", err
	}
	return url.QueryUnescape(str)
}

// ExpectIntegerValue returns the integer held by val.
func ExpectIntegerValue(val *V) (int64, error) {
	return expect[int64](val, integerType)
}

// ExpectDoubleValue returns the double held by val.
func ExpectDoubleValue(val *V) (float64, error) {
	return expect[float64](val, doubleType)
}

// ExpectBoolValue returns the bool held by val.
func ExpectBoolValue(val *V) (bool, error) {
	return expect[bool](val, boolType)
}

func formatDouble(d float64) string {
	return fmt.Sprintf("%.6f", d)
}

func quoteAll(strs []string) string {
	return "[ '" + strings.Join(strs, "', '") + "' ]"
}

// prettyPrint returns the receiver's payload as text, resolving string
// indices through st.
func (v *V) prettyPrint(st []string) (string, error) {
	switch v.T {
	case unsetValue:
		return "unset", nil
	case stringType:
		str, err := ExpectStringValue(v)
		return "'" + str + "'", err
	case stringIndexType:
		idx, err := expect[int64](v, stringIndexType)
		if err != nil {
			return "", err
		}
		return "'" + st[idx] + "'", nil
	case stringsType:
		strs, err := expect[[]string](v, stringsType)
		return quoteAll(strs), err
	case stringIndicesType:
		idxs, err := expect[[]int64](v, stringIndicesType)
		if err != nil {
			return "", err
		}
		strs := make([]string, len(idxs))
		for i, idx := range idxs {
			strs[i] = st[idx]
		}
		return quoteAll(strs), nil
	case integerType:
		i, err := ExpectIntegerValue(v)
		return strconv.FormatInt(i, 10), err
	case doubleType:
		d, err := ExpectDoubleValue(v)
		return formatDouble(d), err
	case doublesType:
		ds, err := expect[[]float64](v, doublesType)
		strs := make([]string, len(ds))
		for i, d := range ds {
			strs[i] = formatDouble(d)
		}
		return "[ " + strings.Join(strs, ", ") + " ]", err
	case durationType:
		dur, err := expect[time.Duration](v, durationType)
		return dur.String(), err
	case boolType:
		b, err := ExpectBoolValue(v)
		return strconv.FormatBool(b), err
	}
	return "", fmt.Errorf("unknown value type %d", v.T)
}

// PrettyPrint returns the receiver deterministically prettyprinted, with
// string indices shown as the strings they index.  Only for use in tests.
func (v *V) PrettyPrint(st []string) string {
	ret, err := v.prettyPrint(st)
	if err != nil {
		return "error: " + err.Error()
	}
	return ret
}

// MarshalJSON encodes the receiver as the pair [type, payload], where the
// payload is null, a string, a number (integers, string indices, doubles and
// nanosecond durations), an array of strings or numbers, or a boolean.
func (v *V) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{v.T, v.V})
}

// decodeAs unmarshals raw into a fresh T.
func decodeAs[T any](raw json.RawMessage, what string) (T, error) {
	var ret T
	if err := json.Unmarshal(raw, &ret); err != nil {
		return ret, fmt.Errorf("expected %s: %w", what, err)
	}
	return ret, nil
}

// UnmarshalJSON decodes a [type, payload] pair into the receiver.
func (v *V) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("value must have exactly two elements, got %d", len(pair))
	}
	t, err := decodeAs[int](pair[0], "a numeric value type")
	if err != nil {
		return err
	}
	v.T = valueType(t)
	raw := pair[1]
	switch v.T {
	case unsetValue:
		v.V = nil
	case stringType:
		v.V, err = decodeAs[string](raw, "a string")
	case stringIndexType, integerType:
		v.V, err = decodeAs[int64](raw, "an integer")
	case stringsType:
		var strs []string
		if strs, err = decodeAs[[]string](raw, "an array of strings"); err != nil {
			return err
		}
		for idx, str := range strs {
			if strs[idx], err = url.QueryUnescape(str); err != nil {
				return err
			}
		}
		v.V = strs
	case stringIndicesType:
		v.V, err = decodeAs[[]int64](raw, "an array of string indices")
	case doubleType:
		v.V, err = decodeAs[float64](raw, "a double")
	case doublesType:
		v.V, err = decodeAs[[]float64](raw, "an array of doubles")
	case durationType:
		var ns int64
		ns, err = decodeAs[int64](raw, "a nanosecond duration")
		v.V = time.Duration(ns)
	case boolType:
		v.V, err = decodeAs[bool](raw, "a boolean")
	default:
		return fmt.Errorf("unknown value type %d", v.T)
	}
	return err
}
