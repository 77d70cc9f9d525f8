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

// Package category declares named groupings of dashboard data, such as the
// columns of a status table.  A category is defined once, on its own datum,
// and other data refer to it by tag.
package category

import (
	"github.com/ilhamster/litviz/util"
)

const (
	definedIDKey   = "category_defined_id"
	displayNameKey = "category_display_name"
	descriptionKey = "category_description"
	idsKey         = "category_ids"
)

// Category is a named grouping of data.
type Category struct {
	id, displayName, description string
}

// New returns a new Category.
func New(id, displayName, description string) *Category {
	return &Category{
		id:          id,
		displayName: displayName,
		description: description,
	}
}

// ID returns the category's ID.
func (c *Category) ID() string {
	return c.id
}

// DisplayName returns the category's human-readable name.
func (c *Category) DisplayName() string {
	return c.displayName
}

// Define annotates a datum as the definition of the receiver.  Only the last
// category defined on a datum takes effect.
func (c *Category) Define() util.PropertyUpdate {
	return util.Chain(
		util.StringProperty(definedIDKey, c.id),
		util.StringProperty(displayNameKey, c.displayName),
		util.If(c.description != "", util.StringProperty(descriptionKey, c.description)),
	)
}

// Tag annotates a datum as belonging to the receiver.  Tags accumulate.
func (c *Category) Tag() util.PropertyUpdate {
	return util.StringsPropertyExtended(idsKey, c.id)
}

// Tag annotates a datum as belonging to all of the provided categories.
func Tag(cats ...*Category) util.PropertyUpdate {
	ids := make([]string, len(cats))
	for idx, cat := range cats {
		ids[idx] = cat.id
	}
	return util.StringsPropertyExtended(idsKey, ids...)
}
