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

package fuse

import (
	"sync"
	"unsafe"

	"github.com/fusewire/fusewire/internal/buffer"
	"github.com/fusewire/fusewire/internal/freelist"
)

// MessageProvider gets and releases the buffers needed to communicate with
// the kernel. Implementations must be safe for concurrent use. Connection
// does not consult a MessageProvider; it recycles buffers through its own
// freelists.
type MessageProvider interface {
	// GetInMessage returns a buffer to read one operation from the kernel
	// into. Implementations are expected to maintain a pool rather than
	// allocating afresh, since buffer.InMessage is large.
	GetInMessage() *buffer.InMessage

	// GetOutMessage returns a buffer to build one response in. The returned
	// message is already Reset.
	GetOutMessage() *buffer.OutMessage

	// PutInMessage and PutOutMessage return a buffer for reuse, either
	// after an error or once a response has been written to the kernel.
	PutInMessage(*buffer.InMessage)
	PutOutMessage(*buffer.OutMessage)
}

// DefaultMessageProvider is a ready-made MessageProvider. It recycles
// buffers through a pair of freelists rather than handing them back to the
// garbage collector.
type DefaultMessageProvider struct {
	mu sync.Mutex

	inMessages  freelist.Freelist // GUARDED_BY(mu)
	outMessages freelist.Freelist // GUARDED_BY(mu)
}

func (m *DefaultMessageProvider) GetInMessage() *buffer.InMessage {
	m.mu.Lock()
	x := (*buffer.InMessage)(m.inMessages.Get())
	m.mu.Unlock()

	if x == nil {
		x = new(buffer.InMessage)
	}

	return x
}

func (m *DefaultMessageProvider) GetOutMessage() *buffer.OutMessage {
	m.mu.Lock()
	x := (*buffer.OutMessage)(m.outMessages.Get())
	m.mu.Unlock()

	if x == nil {
		x = new(buffer.OutMessage)
	}
	x.Reset()

	return x
}

func (m *DefaultMessageProvider) PutInMessage(x *buffer.InMessage) {
	m.mu.Lock()
	m.inMessages.Put(unsafe.Pointer(x))
	m.mu.Unlock()
}

func (m *DefaultMessageProvider) PutOutMessage(x *buffer.OutMessage) {
	m.mu.Lock()
	m.outMessages.Put(unsafe.Pointer(x))
	m.mu.Unlock()
}
