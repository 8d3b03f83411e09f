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

package datasource

// Error is a constant error value.
type Error string

func (e Error) Error() string { return string(e) }

const (
	ErrNotAttached     Error = "datasource: model is not attached to a data source"
	ErrUnknownProperty Error = "datasource: unknown property"
	ErrMissingID       Error = "datasource: missing id"
	ErrDuplicateID     Error = "datasource: duplicate id"
	ErrInvalidData     Error = "datasource: invalid data"
	ErrModelNotDefined Error = "datasource: model is not defined on the connector"
	ErrClosed          Error = "datasource: connector is closed"
	ErrNotSupported    Error = "datasource: operation not supported by connector"
)
