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

// Package table defines tabular query responses, such as the dashboard's
// dataset status report.  A table occupies a dedicated DataBuilder:
//
//	table
//	  properties
//	    * render settings
//	  children
//	    * column group, whose children each define one column's category
//	    * repeated rows
//
//	row
//	  properties
//	    * <decorators>
//	  children
//	    * repeated cells, each tagged with its column and holding a value
package table

import (
	"github.com/ilhamster/litviz/category"
	"github.com/ilhamster/litviz/util"
)

const (
	cellKey          = "table_cell"
	formattedCellKey = "table_formatted_cell"

	rowHeightPxKey = "table_row_height_px"
	fontSizePxKey  = "table_font_size_px"
)

// RenderSettings is a collection of rendering settings for tables.
type RenderSettings struct {
	RowHeightPx int64
	FontSizePx  int64
}

func (rs *RenderSettings) define() util.PropertyUpdate {
	if rs == nil {
		return util.EmptyUpdate
	}
	return util.Chain(
		util.IntegerProperty(rowHeightPxKey, rs.RowHeightPx),
		util.IntegerProperty(fontSizePxKey, rs.FontSizePx),
	)
}

// ColumnUpdate is a table column: a category plus any column properties.
type ColumnUpdate struct {
	cat        *category.Category
	properties []util.PropertyUpdate
}

// Column returns a column defined by the provided category.
func Column(cat *category.Category, properties ...util.PropertyUpdate) *ColumnUpdate {
	return &ColumnUpdate{
		cat:        cat,
		properties: append(properties, cat.Define()),
	}
}

// With annotates the receiving column with the provided properties.
func (cu *ColumnUpdate) With(properties ...util.PropertyUpdate) *ColumnUpdate {
	cu.properties = append(cu.properties, properties...)
	return cu
}

// CellUpdate annotates a datum as a table cell.
type CellUpdate util.PropertyUpdate

// Cell returns a cell in the provided column holding the provided value.
func Cell(column *ColumnUpdate, value util.Value, updates ...util.PropertyUpdate) CellUpdate {
	updates = append(updates, column.cat.Tag(), value(cellKey))
	return CellUpdate(util.Chain(updates...))
}

// FormattedCell returns a cell in the provided column holding a format
// string; properties the format string references should be among updates.
func FormattedCell(column *ColumnUpdate, format string, updates ...util.PropertyUpdate) CellUpdate {
	updates = append(updates, column.cat.Tag(), util.StringProperty(formattedCellKey, format))
	return CellUpdate(util.Chain(updates...))
}

// Node is a table under construction.
type Node struct {
	db util.DataBuilder
}

// New defines a table with the provided columns in db.
func New(db util.DataBuilder, renderSettings *RenderSettings, columns ...*ColumnUpdate) *Node {
	colGroup := db.Child()
	for _, column := range columns {
		colGroup.Child().With(column.properties...)
	}
	db.With(renderSettings.define())
	return &Node{db: db}
}

// With annotates the receiving table with the provided properties.
func (n *Node) With(properties ...util.PropertyUpdate) *Node {
	n.db.With(properties...)
	return n
}

// RowNode is a table row.
type RowNode struct {
	db util.DataBuilder
}

// Row appends a row holding the provided cells.
func (n *Node) Row(cells ...CellUpdate) *RowNode {
	db := n.db.Child()
	for _, cell := range cells {
		db.Child().With(util.PropertyUpdate(cell))
	}
	return &RowNode{db: db}
}

// With annotates the receiving row with the provided properties.
func (rn *RowNode) With(properties ...util.PropertyUpdate) *RowNode {
	rn.db.With(properties...)
	return rn
}
