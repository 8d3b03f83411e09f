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

import (
	"context"
	"fmt"
	"reflect"

	"github.com/tomoncle/crudkit/datasource"
)

// Awaitable is a promise-like value produced by a data source.
type Awaitable interface {
	Await(ctx context.Context) (interface{}, error)
}

// AwaitFunc adapts a deferred call to Awaitable. The call runs on Await.
type AwaitFunc func(ctx context.Context) (interface{}, error)

func (f AwaitFunc) Await(ctx context.Context) (interface{}, error) { return f(ctx) }

// settlementChan adapts a channel that delivers a single settlement.
type settlementChan <-chan datasource.Settlement

func (ch settlementChan) Await(ctx context.Context) (interface{}, error) {
	select {
	case s, ok := <-ch:
		if !ok {
			return nil, fmt.Errorf("%w: settlement channel closed before settling", ErrNotPromise)
		}
		return s.Value, s.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// ensurePromise normalises whatever a persisted model returned into an
// Awaitable. Values that cannot be awaited are a contract violation.
func ensurePromise(value interface{}) (Awaitable, error) {
	if isNil(value) {
		return nil, fmt.Errorf("%w: %v", ErrNotPromise, value)
	}
	switch v := value.(type) {
	case Awaitable:
		return v, nil
	case <-chan datasource.Settlement:
		return settlementChan(v), nil
	case chan datasource.Settlement:
		return settlementChan(v), nil
	case func(context.Context) (interface{}, error):
		return AwaitFunc(v), nil
	default:
		return nil, fmt.Errorf("%w: %v", ErrNotPromise, value)
	}
}

func await(ctx context.Context, value interface{}) (interface{}, error) {
	p, err := ensurePromise(value)
	if err != nil {
		return nil, err
	}
	return p.Await(ctx)
}

func isNil(v interface{}) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Chan, reflect.Func, reflect.Map, reflect.Slice, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
