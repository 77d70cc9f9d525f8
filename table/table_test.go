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

package table

import (
	"testing"

	"github.com/ilhamster/litviz/category"
	testutil "github.com/ilhamster/litviz/test_util"
	"github.com/ilhamster/litviz/util"
)

var (
	pathCol   = Column(category.New("path", "Dataset", "Dataset path"))
	loadedCol = Column(category.New("loaded", "Loaded", ""))
	cityCol   = Column(category.New("city", "City", "")).With(
		util.StringProperty("sort_by", "count"),
	)

	renderSettings = &RenderSettings{
		RowHeightPx: 20,
		FontSizePx:  14,
	}
)

func TestTable(t *testing.T) {
	for _, test := range []struct {
		description   string
		buildTabular  func(db util.DataBuilder)
		buildExplicit func(db testutil.TestDataBuilder)
	}{{
		description: "simple columns",
		buildTabular: func(db util.DataBuilder) {
			tbl := New(db, renderSettings, pathCol, loadedCol)
			tbl.Row(
				Cell(pathCol, util.String("avg-word-count-by-year.json")),
				Cell(loadedCol, util.Bool(true)),
			)
			tbl.Row(
				Cell(pathCol, util.String("top-words-by-year.json")),
				Cell(loadedCol, util.Bool(false)),
			)
		},
		buildExplicit: func(db testutil.TestDataBuilder) {
			db.With(
				util.IntegerProperty(rowHeightPxKey, 20),
				util.IntegerProperty(fontSizePxKey, 14),
			).Child(). // column definitions
					Child().With(pathCol.cat.Define()).
					AndChild().With(loadedCol.cat.Define()).
					Parent().Parent().
					Child(). // row 0
					Child().With(
				pathCol.cat.Tag(),
				util.StringProperty(cellKey, "avg-word-count-by-year.json"),
			).AndChild().With(
				loadedCol.cat.Tag(),
				util.BoolProperty(cellKey, true),
			).Parent().Parent().
				Child(). // row 1
				Child().With(
				pathCol.cat.Tag(),
				util.StringProperty(cellKey, "top-words-by-year.json"),
			).AndChild().With(
				loadedCol.cat.Tag(),
				util.BoolProperty(cellKey, false),
			)
		},
	}, {
		description: "formatted cell and decorations",
		buildTabular: func(db util.DataBuilder) {
			New(db, nil, cityCol).With(
				util.StringProperty("table_title", "Cities"),
			).Row(
				FormattedCell(cityCol, "$(city) ($(count))",
					util.StringProperty("city", "Toronto"),
					util.IntegerProperty("count", 12),
				),
			).With(
				util.StringProperty("region", "Ontario"),
			)
		},
		buildExplicit: func(db testutil.TestDataBuilder) {
			db.With(
				util.StringProperty("table_title", "Cities"),
			).Child().
				Child().With(
				cityCol.cat.Define(),
				util.StringProperty("sort_by", "count"),
			).Parent().Parent().
				Child().With(
				util.StringProperty("region", "Ontario"),
			).Child().With(
				cityCol.cat.Tag(),
				util.StringProperty(formattedCellKey, "$(city) ($(count))"),
				util.StringProperty("city", "Toronto"),
				util.IntegerProperty("count", 12),
			)
		},
	}, {
		description: "no rows",
		buildTabular: func(db util.DataBuilder) {
			New(db, renderSettings, pathCol)
		},
		buildExplicit: func(db testutil.TestDataBuilder) {
			db.With(
				util.IntegerProperty(rowHeightPxKey, 20),
				util.IntegerProperty(fontSizePxKey, 14),
			).Child().
				Child().With(pathCol.cat.Define())
		},
	}} {
		t.Run(test.description, func(t *testing.T) {
			if err := testutil.CompareResponses(t, test.buildTabular, test.buildExplicit); err != nil {
				t.Fatalf("encountered unexpected error building the table: %s", err)
			}
		})
	}
}
