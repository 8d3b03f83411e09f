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

package model

// Settings holds backend-specific model settings.
//
// Recognised keys: "strict" (bool) and "table" (string).
type Settings map[string]interface{}

const (
	SettingStrict = "strict"
	SettingTable  = "table"
)

// Bool returns the boolean setting for key, or def when it is absent or not a bool.
func (s Settings) Bool(key string, def bool) bool {
	if v, ok := s[key].(bool); ok {
		return v
	}
	return def
}

// String returns the string setting for key, or def when it is absent or empty.
func (s Settings) String(key string, def string) string {
	if v, ok := s[key].(string); ok && v != "" {
		return v
	}
	return def
}

// Strict reports whether unknown properties are rejected. Defaults to true.
func (s Settings) Strict() bool { return s.Bool(SettingStrict, true) }

// MergeSettings returns defaults overlaid with each of overrides in turn.
func MergeSettings(defaults Settings, overrides ...Settings) Settings {
	out := make(Settings, len(defaults))
	for k, v := range defaults {
		out[k] = v
	}
	for _, o := range overrides {
		for k, v := range o {
			out[k] = v
		}
	}
	return out
}

// ModelDefinition is the schema of an entity: its name, ordered properties and settings.
type ModelDefinition struct {
	Name       string
	Settings   Settings
	properties map[string]PropertyDefinition
	order      []string
}

// NewModelDefinition returns an empty definition called name.
func NewModelDefinition(name string) *ModelDefinition {
	return &ModelDefinition{
		Name:       name,
		Settings:   Settings{},
		properties: make(map[string]PropertyDefinition),
	}
}

// AddProperty adds or replaces a property. Replacing keeps the original position.
func (d *ModelDefinition) AddProperty(name string, p PropertyDefinition) *ModelDefinition {
	if _, exists := d.properties[name]; !exists {
		d.order = append(d.order, name)
	}
	d.properties[name] = p
	return d
}

// AddSetting sets a model setting.
func (d *ModelDefinition) AddSetting(key string, value interface{}) *ModelDefinition {
	if d.Settings == nil {
		d.Settings = Settings{}
	}
	d.Settings[key] = value
	return d
}

func (d *ModelDefinition) Property(name string) (PropertyDefinition, bool) {
	p, ok := d.properties[name]
	return p, ok
}

// PropertyNames returns property names in declaration order.
func (d *ModelDefinition) PropertyNames() []string {
	out := make([]string, len(d.order))
	copy(out, d.order)
	return out
}

// IDProperties returns the names of identifier properties in declaration order.
func (d *ModelDefinition) IDProperties() []string {
	var ids []string
	for _, name := range d.order {
		if d.properties[name].ID {
			ids = append(ids, name)
		}
	}
	return ids
}

// TableName is the "table" setting, falling back to the model name.
func (d *ModelDefinition) TableName() string {
	return d.Settings.String(SettingTable, d.Name)
}

// Clone returns a deep copy of the definition's property table and settings.
func (d *ModelDefinition) Clone() *ModelDefinition {
	out := NewModelDefinition(d.Name)
	out.Settings = MergeSettings(d.Settings)
	for _, name := range d.order {
		out.AddProperty(name, d.properties[name])
	}
	return out
}
