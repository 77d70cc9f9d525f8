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

// Package label supports labeling charts and their marks.
package label

import (
	"strings"
	"unicode"

	"github.com/ilhamster/litviz/util"
)

const (
	titleKey = "title"
	xAxisKey = "x_axis_label"
	yAxisKey = "y_axis_label"
	textKey  = "label"
)

// Title returns a PropertyUpdate that titles a chart.
func Title(title string) util.PropertyUpdate {
	return util.StringProperty(titleKey, title)
}

// Axes returns a PropertyUpdate that labels a chart's x and y axes.
func Axes(xLabel, yLabel string) util.PropertyUpdate {
	return util.Chain(
		util.StringProperty(xAxisKey, xLabel),
		util.StringProperty(yAxisKey, yLabel),
	)
}

// Text returns a PropertyUpdate that labels a single mark.
func Text(text string) util.PropertyUpdate {
	return util.StringProperty(textKey, text)
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// Words splits s into words at non-alphanumeric runes, lower-to-upper case
// transitions, and letter/digit transitions.
func Words(s string) []string {
	var ret []string
	var cur []rune
	flush := func() {
		if len(cur) > 0 {
			ret = append(ret, string(cur))
			cur = nil
		}
	}
	for _, r := range s {
		if !isWordRune(r) {
			flush()
			continue
		}
		if len(cur) > 0 {
			prev := cur[len(cur)-1]
			switch {
			case unicode.IsLower(prev) && unicode.IsUpper(r),
				unicode.IsDigit(prev) != unicode.IsDigit(r):
				flush()
			}
		}
		cur = append(cur, r)
	}
	flush()
	return ret
}

// StartCase converts s to space-separated words, each with its first letter
// upper-cased: "the_snow" becomes "The Snow".
func StartCase(s string) string {
	words := Words(s)
	for idx, w := range words {
		rs := []rune(w)
		rs[0] = unicode.ToUpper(rs[0])
		words[idx] = string(rs)
	}
	return strings.Join(words, " ")
}
