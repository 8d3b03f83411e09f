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

package types

// Values reported by enums for anything outside their declared range.
const (
	IllegalValue = -1
	IllegalName  = "unknown"
)

// BaseEnum is the contract shared by the small closed enums in this module.
type BaseEnum interface {
	IsValid() bool
	Number() int
	String() string
	Name() string
}
