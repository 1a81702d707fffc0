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

package buffer

import (
	"fmt"
	"io"
	"unsafe"

	"github.com/fusewire/fusewire/internal/fusekernel"
)

// InMessage is an incoming message from the kernel, including the leading
// fusekernel.InHeader struct. It owns a fixed-size array and hands out
// pointers into it; every pointer it returns is only valid until the next
// call to Init, since Init recycles the same storage for the next message.
type InMessage struct {
	remaining []byte
	storage   [unsafe.Sizeof(fusekernel.InHeader{}) + MaxReadSize]byte
}

// Init reads exactly one message from r into m's internal storage. A single
// call to r.Read must return the entire message (this is how /dev/fuse and
// /dev/cuse behave: one read yields one request). If fewer bytes are read
// than fusekernel.InHeader requires, or fewer than the header's own Len
// field claims, Init returns UnexpectedEOF.
func (m *InMessage) Init(r io.Reader) (err error) {
	n, err := r.Read(m.storage[:])
	if err != nil {
		return err
	}

	if uintptr(n) < unsafe.Sizeof(fusekernel.InHeader{}) {
		return UnexpectedEOF{Got: n, Want: int(unsafe.Sizeof(fusekernel.InHeader{}))}
	}

	m.remaining = m.storage[:n]

	h := m.Header()
	if int(h.Len) > n {
		return UnexpectedEOF{Got: n, Want: int(h.Len)}
	}

	// Trim to exactly what the kernel claims the message is; a short read
	// that happened to cover the header but not the full payload is still
	// an error, not a message with garbage tacked onto the end.
	m.remaining = m.storage[:h.Len]
	m.remaining = m.remaining[unsafe.Sizeof(fusekernel.InHeader{}):]

	return nil
}

// Header returns a reference to the header read in the most recent call to
// Init.
func (m *InMessage) Header() (h *fusekernel.InHeader) {
	return (*fusekernel.InHeader)(unsafe.Pointer(&m.storage[0]))
}

// Consume removes the next n bytes from the message, returning a pointer to
// them, or nil if fewer than n bytes remain.
func (m *InMessage) Consume(n uintptr) (p unsafe.Pointer) {
	if uintptr(len(m.remaining)) < n {
		return nil
	}

	p = unsafe.Pointer(&m.remaining[0])
	m.remaining = m.remaining[n:]
	return p
}

// ConsumeBytes is equivalent to Consume, except it returns a slice of bytes
// rather than a raw pointer. The result is nil if Consume would fail.
func (m *InMessage) ConsumeBytes(n uintptr) (b []byte) {
	p := m.Consume(n)
	if p == nil {
		return nil
	}
	return unsafe.Slice((*byte)(p), int(n))
}

// Len reports how many unconsumed payload bytes remain.
func (m *InMessage) Len() int {
	return len(m.remaining)
}

// Remaining returns the unconsumed payload without advancing, for decoders
// that need to inspect variable-length trailing data (e.g. to find a NUL
// terminator) before deciding how much of it to Consume.
func (m *InMessage) Remaining() []byte {
	return m.remaining
}

// UnexpectedEOF indicates a message was truncated: fewer bytes were
// available than the transport or the kernel's own header claimed.
type UnexpectedEOF struct {
	Got, Want int
}

func (e UnexpectedEOF) Error() string {
	return fmt.Sprintf("fuse: unexpected EOF decoding message: got %d bytes, want %d", e.Got, e.Want)
}
