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
	"log"
	"unsafe"

	"github.com/fusewire/fusewire/internal/fusekernel"
)

// MaxWriteSize is the largest write payload advertised to the kernel via
// InitOut.MaxWrite.
const MaxWriteSize = 1 << 20

// MaxReadSize bounds the payload portion of any single message, request or
// response. It must be at least MaxWriteSize (a WriteIn payload has to fit)
// and large enough for the largest Readdir buffer a handler may fill.
const MaxReadSize = MaxWriteSize + (1 << 16)

// OutMessageInitialSize is the size of a freshly-Reset OutMessage: a zeroed
// fusekernel.OutHeader and no payload.
const OutMessageInitialSize = uintptr(unsafe.Sizeof(fusekernel.OutHeader{}))

// OutMessage provides a mechanism for constructing a single contiguous fuse
// response message from multiple segments, where the first segment is
// always a fusekernel.OutHeader.
//
// Must be initialized with Reset before use; the zero value is not ready.
type OutMessage struct {
	// offset is the current total length of the message, including the
	// header.
	offset uintptr

	header  [unsafe.Sizeof(fusekernel.OutHeader{})]byte
	payload [MaxReadSize]byte

	// Sglist, when non-nil, is a scatter/gather list that the connection
	// sends with writev in place of Bytes(). No op in package fuse sets it:
	// ReadFileOp and ReadDirOp copy their data into payload.
	Sglist [][]byte
}

func init() {
	var om OutMessage
	a := unsafe.Alignof(om)
	o := unsafe.Offsetof(om.header)
	e := unsafe.Alignof(fusekernel.OutHeader{})

	if a%e != 0 || o%e != 0 {
		log.Panicf("Bad alignment or offset: %d, %d, need %d", a, o, e)
	}

	if unsafe.Offsetof(om.payload) != o+unsafe.Sizeof(om.header) {
		log.Panicf("header and payload are not contiguous")
	}
}

// Reset brings m back to a freshly-initialized state: a zeroed
// fusekernel.OutHeader and no payload.
func (m *OutMessage) Reset() {
	m.offset = OutMessageInitialSize
	m.Sglist = nil
	memclr(unsafe.Pointer(&m.header), uintptr(len(m.header)))
}

// OutHeader returns a pointer to the header at the start of the message.
func (m *OutMessage) OutHeader() (h *fusekernel.OutHeader) {
	return (*fusekernel.OutHeader)(unsafe.Pointer(&m.header))
}

func (m *OutMessage) basePointer() unsafe.Pointer {
	return unsafe.Pointer(&m.header)
}

// Grow grows m's buffer by n bytes, returning a pointer to the start of the
// new (zeroed) segment. Returns nil if there is insufficient room.
func (m *OutMessage) Grow(n uintptr) (p unsafe.Pointer) {
	p = m.GrowNoZero(n)
	if p != nil {
		memclr(p, n)
	}
	return
}

// GrowNoZero is equivalent to Grow, except the new segment's contents are
// left as whatever garbage was already there. Every caller must fully
// initialize what it asked for.
func (m *OutMessage) GrowNoZero(n uintptr) (p unsafe.Pointer) {
	if m.offset+n > uintptr(len(m.header))+uintptr(len(m.payload)) {
		return nil
	}

	p = unsafe.Pointer(uintptr(m.basePointer()) + m.offset)
	m.offset += n
	return
}

// ShrinkTo shrinks m to the given total size (including the header). It
// panics if n is greater than the current length or less than
// OutMessageInitialSize.
func (m *OutMessage) ShrinkTo(n uintptr) {
	if n < OutMessageInitialSize || n > m.offset {
		panic(fmt.Sprintf("ShrinkTo(%d) invalid; current length %d", n, m.offset))
	}
	m.offset = n
}

// Append grows m by len(src) and copies src into the new segment. Panics if
// there is not enough room.
func (m *OutMessage) Append(src []byte) {
	p := m.GrowNoZero(uintptr(len(src)))
	if p == nil {
		panic(fmt.Sprintf("Can't grow %d bytes", len(src)))
	}

	if len(src) > 0 {
		memmove(p, unsafe.Pointer(&src[0]), uintptr(len(src)))
	}
}

// AppendString is like Append, but accepts string input.
func (m *OutMessage) AppendString(src string) {
	p := m.GrowNoZero(uintptr(len(src)))
	if p == nil {
		panic(fmt.Sprintf("Can't grow %d bytes", len(src)))
	}

	if len(src) > 0 {
		copy(unsafe.Slice((*byte)(p), len(src)), src)
	}
}

// Len returns the current total size of the message, including the header.
func (m *OutMessage) Len() int {
	return int(m.offset)
}

// Bytes returns a reference to the current contents of the buffer,
// including the header.
func (m *OutMessage) Bytes() []byte {
	return unsafe.Slice((*byte)(m.basePointer()), int(m.offset))
}

// OutHeaderBytes returns the fixed header region alone. Connection.Reply
// uses it to log the header of a response whose write failed.
func (m *OutMessage) OutHeaderBytes() []byte {
	return unsafe.Slice((*byte)(m.basePointer()), int(OutMessageInitialSize))
}
