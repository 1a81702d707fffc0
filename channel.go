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
	"fmt"
	"io"
	"syscall"
)

// Channel is the duplex byte stream a Connection speaks the fuse/cuse wire
// protocol over. Receive fills buf with exactly one request frame (as
// /dev/fuse and /dev/cuse guarantee a single Read yields a single request);
// Send writes exactly one response frame, which may be split across
// multiple buffers so a handler's payload (e.g. ReadFileOp's data) can be
// handed to the kernel without an extra copy.
//
// An implementation may wrap /dev/fuse, /dev/cuse, a pair of sockets, or an
// in-memory loopback used by tests; the core never assumes any particular
// platform.
type Channel interface {
	io.Reader
	Send(iovecs [][]byte) error
	io.Closer
}

// fileChannel is the production Channel, backed by the device file descriptor
// returned by mounting (or opening /dev/cuse).
type fileChannel struct {
	f fder
}

// fder is the subset of *os.File that fileChannel needs; it exists so tests
// can swap in any ReadWriteCloser that also exposes a raw descriptor.
type fder interface {
	io.ReadCloser
	Fd() uintptr
}

func newFileChannel(f fder) Channel {
	return &fileChannel{f: f}
}

func (c *fileChannel) Read(p []byte) (int, error) {
	return c.f.Read(p)
}

func (c *fileChannel) Send(iovecs [][]byte) error {
	if len(iovecs) == 1 {
		return c.writeAll(iovecs[0])
	}

	n, err := writev(int(c.f.Fd()), iovecs)
	if err != nil {
		return err
	}

	total := 0
	for _, v := range iovecs {
		total += len(v)
	}
	if n != total {
		return fmt.Errorf("wrote %d bytes; expected %d", n, total)
	}

	return nil
}

func (c *fileChannel) writeAll(msg []byte) error {
	// Avoid the retry loop in os.File.Write.
	n, err := syscall.Write(int(c.f.Fd()), msg)
	if err != nil {
		return err
	}

	if n != len(msg) {
		return fmt.Errorf("wrote %d bytes; expected %d", n, len(msg))
	}

	return nil
}

func (c *fileChannel) Close() error {
	return c.f.Close()
}
