// Copyright 2015 Google Inc. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package freelist provides a minimal freelist of unsafe pointers, used by
// the fuse package to recycle the fixed-size InMessage and OutMessage
// buffers used for every dispatch turn without putting them through the
// garbage collector on every request.
package freelist

import "unsafe"

// Freelist is a LIFO stack of previously-released buffers. The zero value
// is an empty, ready-to-use freelist. Callers are responsible for ensuring
// that every pointer Put into a given Freelist was allocated compatibly
// with every other one (a Freelist does not itself know the size or type
// of what it stores; message_provider.go keeps one Freelist per buffer
// kind to enforce this).
//
// Not safe for concurrent use; callers that share a Freelist across
// goroutines must guard it with their own mutex, the way
// DefaultMessageProvider does.
type Freelist struct {
	items []unsafe.Pointer
}

// Get removes and returns the most recently Put pointer, or nil if the
// freelist is empty.
func (f *Freelist) Get() unsafe.Pointer {
	n := len(f.items)
	if n == 0 {
		return nil
	}

	p := f.items[n-1]
	f.items[n-1] = nil
	f.items = f.items[:n-1]
	return p
}

// Put returns p to the freelist for later reuse by Get. p must not be used
// by the caller again until a subsequent Get returns it.
func (f *Freelist) Put(p unsafe.Pointer) {
	if p == nil {
		return
	}

	f.items = append(f.items, p)
}
