/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package model_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"

	"github.com/tomoncle/crudkit/model"
	"github.com/tomoncle/crudkit/types"
)

type note struct {
	bun.BaseModel `bun:"table:notes"`

	ID        *int64     `bun:"id,pk,autoincrement" json:"id,omitempty"`
	Title     string     `bun:"title,notnull" json:"title"`
	Body      *string    `bun:"body_text" json:"body,omitempty"`
	Done      *bool      `json:"done,omitempty"`
	Tags      []string   `json:"tags,omitempty"`
	DueAt     *time.Time `json:"dueAt,omitempty"`
	Internal  string     `json:"-"`
	Transient string     `bun:"-" json:"transient,omitempty"`
}

func (n *note) ToObject() types.DataObject { return model.ObjectOf(n) }

type pair struct {
	Left  string `bun:",pk" json:"left"`
	Right string `bun:",pk" json:"right"`
	Label string `json:"label"`
}

func (p pair) ToObject() types.DataObject { return model.ObjectOf(p) }

type bare struct {
	Title string `json:"title"`
}

func (b bare) ToObject() types.DataObject { return model.ObjectOf(b) }

func TestDefinitionOf_ReadsTags(t *testing.T) {
	def, err := model.DefinitionOf[*note]("")
	require.NoError(t, err)

	assert.Equal(t, "note", def.Name)
	assert.Equal(t, "notes", def.TableName())
	assert.Equal(t, []string{"id", "title", "body", "done", "tags", "dueAt"}, def.PropertyNames())
	assert.Equal(t, []string{"id"}, def.IDProperties())

	id, ok := def.Property("id")
	require.True(t, ok)
	assert.True(t, id.ID)
	assert.True(t, id.Generated)
	assert.Equal(t, model.TypeNumber, id.Type)

	title, _ := def.Property("title")
	assert.True(t, title.Required)
	assert.Equal(t, model.TypeString, title.Type)

	body, _ := def.Property("body")
	assert.Equal(t, "body_text", body.ColumnName("body"))

	tags, _ := def.Property("tags")
	assert.Equal(t, model.TypeArray, tags.Type)
	assert.Equal(t, model.TypeString, tags.ItemType)

	due, _ := def.Property("dueAt")
	assert.Equal(t, model.TypeDate, due.Type)
}

func TestDefinitionOf_RejectsNonStruct(t *testing.T) {
	_, err := model.DefinitionOf[int]("Number")
	assert.Error(t, err)
}

func TestModelDefinition_Builder(t *testing.T) {
	def := model.NewModelDefinition("Todo").
		AddProperty("id", model.PropertyDefinition{Type: model.TypeNumber, ID: true}).
		AddProperty("title", model.PropertyDefinition{Type: model.TypeString}).
		AddProperty("id", model.PropertyDefinition{Type: model.TypeString, ID: true}).
		AddSetting(model.SettingStrict, false)

	assert.Equal(t, []string{"id", "title"}, def.PropertyNames())
	assert.False(t, def.Settings.Strict())
	assert.Equal(t, "Todo", def.TableName())

	clone := def.Clone()
	clone.AddProperty("extra", model.PropertyDefinition{})
	clone.AddSetting(model.SettingStrict, true)
	assert.Len(t, def.PropertyNames(), 2)
	assert.False(t, def.Settings.Strict())
}

func TestMergeSettings(t *testing.T) {
	merged := model.MergeSettings(model.Settings{"strict": true}, model.Settings{"strict": false, "table": "x"})
	assert.Equal(t, model.Settings{"strict": false, "table": "x"}, merged)
	assert.True(t, model.Settings{}.Strict())
}

func TestPropertyType_Enum(t *testing.T) {
	assert.Equal(t, "array", model.TypeArray.String())
	assert.Equal(t, model.TypeBoolean, model.ParsePropertyType(" Boolean "))
	assert.Equal(t, model.TypeAny, model.ParsePropertyType("nope"))
	assert.False(t, model.PropertyType(99).IsValid())
	assert.Equal(t, types.IllegalValue, model.PropertyType(99).Number())
	assert.Equal(t, types.IllegalName, model.PropertyType(-2).Name())
}

func TestObjectOf_SkipsNilPointers(t *testing.T) {
	body := "2%"
	n := &note{Title: "buy milk", Body: &body, Internal: "secret"}

	obj := model.ObjectOf(n)
	assert.Equal(t, types.DataObject{"title": "buy milk", "body": "2%"}, obj)

	var nilNote *note
	assert.Empty(t, model.ObjectOf(nilNote))
}

func TestHydrate_WeakTyping(t *testing.T) {
	n, err := model.Hydrate[*note](types.DataObject{
		"id":    int64(7),
		"title": []byte("buy milk"),
		"done":  int64(1),
		"tags":  `["a","b"]`,
		"dueAt": "2026-10-18T10:00:00Z",
		"extra": "ignored",
	})
	require.NoError(t, err)
	require.NotNil(t, n.ID)
	assert.Equal(t, int64(7), *n.ID)
	assert.Equal(t, "buy milk", n.Title)
	require.NotNil(t, n.Done)
	assert.True(t, *n.Done)
	assert.Equal(t, []string{"a", "b"}, n.Tags)
	require.NotNil(t, n.DueAt)
	assert.Equal(t, 2026, n.DueAt.Year())
	assert.Nil(t, n.Body)
}

func TestHydrate_ValueType(t *testing.T) {
	p, err := model.Hydrate[pair](types.DataObject{"left": "a", "right": "b", "label": "ab"})
	require.NoError(t, err)
	assert.Equal(t, pair{Left: "a", Right: "b", Label: "ab"}, p)
}

func TestEntityClass_IDOf(t *testing.T) {
	notes := model.MustEntityClass[*note]("Note", model.Settings{model.SettingStrict: false})
	assert.Equal(t, "Note", notes.Name)
	assert.False(t, notes.Definition.Settings.Strict())

	assert.Nil(t, notes.IDOf(&note{Title: "x"}))
	id := int64(3)
	assert.Equal(t, int64(3), notes.IDOf(&note{ID: &id}))

	zero := int64(0)
	assert.Nil(t, notes.IDOf(&note{ID: &zero}))

	pairs := model.MustEntityClass[pair]("Pair", nil)
	assert.Nil(t, pairs.IDOf(pair{}))
	assert.Equal(t, types.DataObject{"left": "a", "right": ""}, pairs.IDOf(pair{Left: "a"}))

	bares := model.MustEntityClass[bare]("Bare", nil)
	assert.Empty(t, bares.Definition.IDProperties())
	assert.Nil(t, bares.IDOf(bare{Title: "t"}))
}

func TestEntityClass_NewHydrates(t *testing.T) {
	notes := model.MustEntityClass[*note]("Note", nil)
	n, err := notes.New(types.DataObject{"id": 1, "title": "t"})
	require.NoError(t, err)
	assert.Equal(t, types.DataObject{"id": int64(1), "title": "t"}, n.ToObject())
}

func TestIsUnset(t *testing.T) {
	var nilPtr *int
	s := ""
	assert.True(t, model.IsUnset(nil))
	assert.True(t, model.IsUnset(nilPtr))
	assert.True(t, model.IsUnset(&s))
	assert.True(t, model.IsUnset(0))
	assert.False(t, model.IsUnset(1))
	assert.False(t, model.IsUnset("x"))
}
