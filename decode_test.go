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
	"bytes"
	"encoding/binary"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fusewire/fusewire/internal/buffer"
	"github.com/fusewire/fusewire/internal/fusekernel"
)

// buildInMessage packs a fusekernel.InHeader plus payload into the wire
// format InMessage.Init expects to read as a single message.
func buildInMessage(t *testing.T, opcode fusekernel.Opcode, nodeID uint64, payload []byte) *buffer.InMessage {
	t.Helper()

	h := fusekernel.InHeader{
		Opcode: opcode,
		Unique: 17,
		NodeId: nodeID,
		Uid:    500,
		Gid:    501,
		Pid:    502,
	}
	h.Len = uint32(unsafe.Sizeof(h)) + uint32(len(payload))

	var buf bytes.Buffer
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, h))
	buf.Write(payload)

	m := &buffer.InMessage{}
	require.NoError(t, m.Init(&buf))
	return m
}

func TestConvertInMessage_LookUpInode(t *testing.T) {
	cfg := &MountConfig{}
	payload := append([]byte("burrito"), 0)
	inMsg := buildInMessage(t, fusekernel.OpLookup, 42, payload)
	outMsg := &buffer.OutMessage{}

	op, err := convertInMessage(cfg, inMsg, outMsg, fusekernel.Protocol{})
	require.NoError(t, err)

	lookup, ok := op.(*LookUpInodeOp)
	require.True(t, ok, "got %T", op)
	assert.EqualValues(t, 42, lookup.Parent)
	assert.Equal(t, "burrito", lookup.Name)
	assert.EqualValues(t, 500, lookup.Header.Uid)
	assert.EqualValues(t, 501, lookup.Header.Gid)
	assert.EqualValues(t, 502, lookup.Header.Pid)
}

func TestConvertInMessage_LookUpInode_InvalidName(t *testing.T) {
	cfg := &MountConfig{}
	payload := append([]byte(".."), 0)
	inMsg := buildInMessage(t, fusekernel.OpLookup, 42, payload)
	outMsg := &buffer.OutMessage{}

	_, err := convertInMessage(cfg, inMsg, outMsg, fusekernel.Protocol{})
	require.Error(t, err)

	invalid, ok := err.(InvalidName)
	require.True(t, ok, "got %T", err)
	assert.EqualValues(t, fusekernel.OpLookup, invalid.Opcode)
	assert.Equal(t, "..", invalid.Name)
}

func TestConvertInMessage_MissingNodeID(t *testing.T) {
	cfg := &MountConfig{}
	inMsg := buildInMessage(t, fusekernel.OpLookup, 0, append([]byte("x"), 0))
	outMsg := &buffer.OutMessage{}

	_, err := convertInMessage(cfg, inMsg, outMsg, fusekernel.Protocol{})
	require.Error(t, err)

	missing, ok := err.(MissingNodeID)
	require.True(t, ok, "got %T", err)
	assert.EqualValues(t, fusekernel.OpLookup, missing.Opcode)
}
