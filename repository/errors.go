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

package repository

// Error is a constant error value.
type Error string

func (e Error) Error() string { return string(e) }

const (
	// ErrMissingDefinition is returned when an entity class carries no model definition.
	ErrMissingDefinition Error = "repository: entity class has no model definition"
	// ErrNoIDProperty is returned when a model definition declares no id property.
	ErrNoIDProperty      Error = "repository: model definition has no id property"
	// ErrNotImplemented is returned by operations the repository does not support.
	ErrNotImplemented    Error = "repository: not implemented"
	// ErrNotPromise is returned when the data source hands back a value that cannot be awaited.
	ErrNotPromise        Error = "repository: the value should be a promise"
	// ErrUnexpectedRecord is returned when a settled value is not the record shape expected.
	ErrUnexpectedRecord  Error = "repository: unexpected record"
)
