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

import (
	"context"
	"fmt"
)

// Settlement is the outcome of an asynchronous backend call.
type Settlement struct {
	Value interface{}
	Err   error
}

// Future is the backend's own promise-like value. Every persisted model
// operation returns one.
type Future struct {
	done  chan struct{}
	value interface{}
	err   error
}

// Go runs fn on its own goroutine and returns a Future for its outcome.
// A panic inside fn rejects the future.
func Go(ctx context.Context, fn func(ctx context.Context) (interface{}, error)) *Future {
	f := &Future{done: make(chan struct{})}
	go func() {
		defer close(f.done)
		defer func() {
			if r := recover(); r != nil {
				f.value, f.err = nil, fmt.Errorf("datasource: operation panicked: %v", r)
			}
		}()
		f.value, f.err = fn(ctx)
	}()
	return f
}

// Resolved returns a settled Future holding v.
func Resolved(v interface{}) *Future {
	f := &Future{done: make(chan struct{}), value: v}
	close(f.done)
	return f
}

// Rejected returns a settled Future holding err.
func Rejected(err error) *Future {
	f := &Future{done: make(chan struct{}), err: err}
	close(f.done)
	return f
}

// Done is closed once the future settles.
func (f *Future) Done() <-chan struct{} { return f.done }

// Await blocks until the future settles or ctx is done.
func (f *Future) Await(ctx context.Context) (interface{}, error) {
	select {
	case <-f.done:
		return f.value, f.err
	default:
	}
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Settled delivers the outcome on a buffered channel once the future settles.
func (f *Future) Settled() <-chan Settlement {
	ch := make(chan Settlement, 1)
	go func() {
		<-f.done
		ch <- Settlement{Value: f.value, Err: f.err}
		close(ch)
	}()
	return ch
}
