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

package fusetesting

import "io"

// LoopbackChannel is an in-memory stand-in for the real /dev/fuse channel,
// useful for driving a Connection in tests without a kernel. Kernel writes
// CallRequest with the bytes a real kernel would have sent, and reads
// replies back from the Responses channel.
type LoopbackChannel struct {
	toCore    *io.PipeWriter
	fromCore  *io.PipeReader
	Responses chan []byte
}

// NewLoopbackChannel returns a LoopbackChannel ready to be handed to a
// Connection in place of a real device channel.
func NewLoopbackChannel() *LoopbackChannel {
	toCoreR, toCoreW := io.Pipe()
	return &LoopbackChannel{
		toCore:    toCoreW,
		fromCore:  toCoreR,
		Responses: make(chan []byte, 16),
	}
}

// Read implements the Connection side of the channel: it blocks until a test
// calls CallRequest with the next request frame.
func (c *LoopbackChannel) Read(p []byte) (int, error) {
	return c.fromCore.Read(p)
}

// Send implements the Connection side of the channel: it concatenates the
// iovecs into a single reply frame and makes it available on Responses.
func (c *LoopbackChannel) Send(iovecs [][]byte) error {
	total := 0
	for _, v := range iovecs {
		total += len(v)
	}

	buf := make([]byte, 0, total)
	for _, v := range iovecs {
		buf = append(buf, v...)
	}

	c.Responses <- buf
	return nil
}

func (c *LoopbackChannel) Close() error {
	close(c.Responses)
	return c.toCore.Close()
}

// CallRequest delivers msg to the Connection as if the kernel had sent it,
// blocking until the Connection has read it.
func (c *LoopbackChannel) CallRequest(msg []byte) error {
	_, err := c.toCore.Write(msg)
	return err
}
