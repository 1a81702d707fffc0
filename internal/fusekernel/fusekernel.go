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

// Package fusekernel defines the wire structures and constants of the FUSE
// and CUSE kernel ABI, as published by <linux/fuse.h> and its FreeBSD
// equivalent. Everything here is a direct, bit-exact transcription: field
// order, padding, and integer widths must match the kernel's layout, because
// these structs are type-punned directly onto bytes read from and written to
// the kernel device.
package fusekernel

import "unsafe"

// Protocol is a (major, minor) pair identifying a FUSE/CUSE wire protocol
// version. It is established once by the init handshake and constant for
// the remainder of a connection's life.
type Protocol struct {
	Major uint32
	Minor uint32
}

// LT reports whether p is strictly older than other.
func (p Protocol) LT(other Protocol) bool {
	return p.Major < other.Major ||
		(p.Major == other.Major && p.Minor < other.Minor)
}

// GE reports whether p is at least as new as other.
func (p Protocol) GE(other Protocol) bool {
	return !p.LT(other)
}

func (p Protocol) String() string {
	return itoa(p.Major) + "." + itoa(p.Minor)
}

func itoa(v uint32) string {
	if v == 0 {
		return "0"
	}
	var buf [10]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	return string(buf[i:])
}

// Oldest and newest protocol versions this library understands.
const (
	ProtoVersionMinMajor = 7
	ProtoVersionMinMinor = 1

	ProtoVersionMaxMajor = 7
	ProtoVersionMaxMinor = 31
)

// RootID is the node ID that always refers to the mount point's root
// directory.
const RootID = 1

// IsPlatformFuseT reports whether responses must be serialized because the
// local writev(2) is non-atomic (true on the macOS fuse-t bridge). Always
// false on Linux, where /dev/fuse's writev is atomic.
const IsPlatformFuseT = false

////////////////////////////////////////////////////////////////////////
// Opcodes
////////////////////////////////////////////////////////////////////////

// Opcode is the 32-bit discriminant at the front of every request header
// identifying which operation is being requested. The set of values the
// kernel may send is closed, but decoding must tolerate unrecognized ones.
type Opcode uint32

const (
	OpLookup      Opcode = 1
	OpForget      Opcode = 2 // No reply.
	OpGetattr     Opcode = 3
	OpSetattr     Opcode = 4
	OpReadlink    Opcode = 5
	OpSymlink     Opcode = 6
	OpMknod       Opcode = 8
	OpMkdir       Opcode = 9
	OpUnlink      Opcode = 10
	OpRmdir       Opcode = 11
	OpRename      Opcode = 12
	OpLink        Opcode = 13
	OpOpen        Opcode = 14
	OpRead        Opcode = 15
	OpWrite       Opcode = 16
	OpStatfs      Opcode = 17
	OpRelease     Opcode = 18
	OpFsync       Opcode = 20
	OpSetxattr    Opcode = 21
	OpGetxattr    Opcode = 22
	OpListxattr   Opcode = 23
	OpRemovexattr Opcode = 24
	OpFlush       Opcode = 25
	OpInit        Opcode = 26
	OpOpendir     Opcode = 27
	OpReaddir     Opcode = 28
	OpReleasedir  Opcode = 29
	OpFsyncdir    Opcode = 30
	OpGetlk       Opcode = 31
	OpSetlk       Opcode = 32
	OpSetlkw      Opcode = 33
	OpAccess      Opcode = 34
	OpCreate      Opcode = 35
	OpInterrupt   Opcode = 36
	OpBmap        Opcode = 37
	OpDestroy     Opcode = 38
	OpIoctl       Opcode = 39
	OpPoll        Opcode = 40
	OpNotifyReply Opcode = 41
	OpBatchForget Opcode = 42
	OpFallocate   Opcode = 43
	OpReaddirplus Opcode = 44
	OpRename2     Opcode = 45
	OpLseek       Opcode = 46
	OpCopyFileRange Opcode = 47

	OpCuseInit Opcode = 4096
)

var opcodeNames = map[Opcode]string{
	OpLookup:        "LOOKUP",
	OpForget:        "FORGET",
	OpGetattr:       "GETATTR",
	OpSetattr:       "SETATTR",
	OpReadlink:      "READLINK",
	OpSymlink:       "SYMLINK",
	OpMknod:         "MKNOD",
	OpMkdir:         "MKDIR",
	OpUnlink:        "UNLINK",
	OpRmdir:         "RMDIR",
	OpRename:        "RENAME",
	OpLink:          "LINK",
	OpOpen:          "OPEN",
	OpRead:          "READ",
	OpWrite:         "WRITE",
	OpStatfs:        "STATFS",
	OpRelease:       "RELEASE",
	OpFsync:         "FSYNC",
	OpSetxattr:      "SETXATTR",
	OpGetxattr:      "GETXATTR",
	OpListxattr:     "LISTXATTR",
	OpRemovexattr:   "REMOVEXATTR",
	OpFlush:         "FLUSH",
	OpInit:          "INIT",
	OpOpendir:       "OPENDIR",
	OpReaddir:       "READDIR",
	OpReleasedir:    "RELEASEDIR",
	OpFsyncdir:      "FSYNCDIR",
	OpGetlk:         "GETLK",
	OpSetlk:         "SETLK",
	OpSetlkw:        "SETLKW",
	OpAccess:        "ACCESS",
	OpCreate:        "CREATE",
	OpInterrupt:     "INTERRUPT",
	OpBmap:          "BMAP",
	OpDestroy:       "DESTROY",
	OpIoctl:         "IOCTL",
	OpPoll:          "POLL",
	OpNotifyReply:   "NOTIFY_REPLY",
	OpBatchForget:   "BATCH_FORGET",
	OpFallocate:     "FALLOCATE",
	OpReaddirplus:   "READDIRPLUS",
	OpRename2:       "RENAME2",
	OpLseek:         "LSEEK",
	OpCopyFileRange: "COPY_FILE_RANGE",
	OpCuseInit:      "CUSE_INIT",
}

// String renders a known opcode by name and an unknown one as "OP_"
// followed by its decimal value, per the "unknown bits as hex/decimal"
// convention used throughout this package for unrecognized wire values.
func (o Opcode) String() string {
	if name, ok := opcodeNames[o]; ok {
		return name
	}
	return "OP_" + itoa(uint32(o))
}

////////////////////////////////////////////////////////////////////////
// Headers
////////////////////////////////////////////////////////////////////////

// InHeader is the fixed 40-byte header prefixing every request from the
// kernel.
type InHeader struct {
	Len    uint32
	Opcode Opcode
	Unique uint64
	NodeId uint64
	Uid    uint32
	Gid    uint32
	Pid    uint32
	_      uint32 // padding
}

const InHeaderSize = unsafe.Sizeof(InHeader{})

// OutHeader is the fixed 16-byte header prefixing every response.
type OutHeader struct {
	Len    uint32
	Error  int32
	Unique uint64
}

const OutHeaderSize = unsafe.Sizeof(OutHeader{})

func init() {
	if InHeaderSize != 40 {
		panic("fusekernel: InHeader is not 40 bytes")
	}
	if OutHeaderSize != 16 {
		panic("fusekernel: OutHeader is not 16 bytes")
	}
}
