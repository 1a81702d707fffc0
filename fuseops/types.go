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

// Package fuseops defines the domain types and per-opcode request/response
// pairs exchanged between a Connection and a FileSystem implementation.
// Unlike the fusekernel package, nothing here is bit-exact with the wire;
// these are the values handlers actually see and return.
package fuseops

import (
	"bytes"
	"os"
	"time"
)

// InodeID is a filesystem-assigned identifier for an inode-like object.
// The zero value is never valid on the wire (it is the kernel's "absent"
// sentinel); RootInodeID is the one value guaranteed to exist before any
// LookUpInode call.
type InodeID uint64

// RootInodeID is the inode ID of the root of the file system.
const RootInodeID InodeID = 1

// HandleID is a file or directory handle, chosen by the file system when
// responding to OpenFileOp/OpenDirOp and echoed back by the kernel on
// every subsequent operation against that handle.
type HandleID uint64

// DirOffset is an opaque cursor into a directory stream, as read back from
// the kernel's d_off field. Zero means "start of directory"; any other
// value must have been previously handed out as some entry's Offset. The
// library never reinterprets this value — see ReadDirOp.Offset.
type DirOffset uint64

// NodeName is a validated path component: a non-empty, NUL-free byte
// sequence that is not "." or "..". The zero value is not a valid
// NodeName; construct one with NewNodeName.
type NodeName struct {
	b []byte
}

// NewNodeName validates b as a single path component. It borrows b rather
// than copying it, so the result must not outlive the buffer b came from.
func NewNodeName(b []byte) (NodeName, bool) {
	if len(b) == 0 {
		return NodeName{}, false
	}
	if bytes.IndexByte(b, 0) >= 0 {
		return NodeName{}, false
	}
	if string(b) == "." || string(b) == ".." {
		return NodeName{}, false
	}
	return NodeName{b: b}, true
}

// Bytes returns the raw name.
func (n NodeName) Bytes() []byte { return n.b }

// String returns the name as a string, copying it.
func (n NodeName) String() string { return string(n.b) }

// XattrName is a validated extended attribute name: non-empty and NUL-free.
type XattrName struct {
	b []byte
}

// NewXattrName validates b as an extended attribute name.
func NewXattrName(b []byte) (XattrName, bool) {
	if len(b) == 0 {
		return XattrName{}, false
	}
	if bytes.IndexByte(b, 0) >= 0 {
		return XattrName{}, false
	}
	return XattrName{b: b}, true
}

func (n XattrName) Bytes() []byte { return n.b }
func (n XattrName) String() string { return string(n.b) }

// ErrorCode wraps a non-zero errno value reported by a target OS. Unlike a
// plain syscall.Errno, comparing an ErrorCode against a signed integer
// always treats zero or negative values as unequal: a handler cannot
// accidentally match an ErrorCode against "no error".
type ErrorCode uint16

// Equal reports whether n, interpreted as a raw errno value, equals c.
// Zero and negative values are never equal to any ErrorCode, matching the
// wire convention that 0 means success and error is always reported as a
// positive errno negated in the response header.
func (c ErrorCode) Equal(n int32) bool {
	return n > 0 && ErrorCode(n) == c
}

// InodeAttributes contains attributes for a file or directory inode. It
// corresponds to struct inode (cf. http://goo.gl/tvYyQt) in the
// implementation of ext2fs.
type InodeAttributes struct {
	Size  uint64
	Nlink uint32
	Mode  os.FileMode

	// Crude timestamp metadata: atime, mtime, ctime.
	Atime time.Time
	Mtime time.Time
	Ctime time.Time

	// The time the inode was created. Not encoded into the Linux wire
	// attributes, which have no creation-time field.
	CrtimeNotApple time.Time

	Uid uint32
	Gid uint32
}

// ChildInodeEntry contains information about a child inode within its
// parent directory, returned by operations that create or look up an
// entry: LookUpInodeOp, MkDirOp, MkNodeOp, CreateFileOp, CreateLinkOp,
// CreateSymlinkOp.
type ChildInodeEntry struct {
	// The ID of the child inode. RootInodeID is not a legal value here.
	Child InodeID

	// A generation number for this incarnation of the inode with the
	// given ID, used to distinguish it from previous incarnations of the
	// same ID (e.g. after the ID was reused following a Forget). If the
	// file system will never reuse IDs, it is safe to always set this to
	// zero.
	Generation uint64

	Attributes InodeAttributes

	// The FUSE VFS layer in the kernel maintains a cache of file
	// attributes, used for answering stat(2) and similar calls without
	// making a round trip to userspace. This controls the lifetime of
	// that cache.
	AttributesExpiration time.Time

	// The VFS layer in the kernel maintains a cache of entries in a
	// directory: the mapping from a (parent inode ID, name) pair to a
	// child inode ID. This controls the lifetime of that cache entry.
	//
	// Leave at the zero value to disable caching. This may cause the
	// kernel to send LookUpInodeOp requests even for a recently-looked-up
	// name, but it is the only safe default: a file system that composes
	// its own name->inode mapping from sources outside its control cannot
	// promise the kernel's assumption (stable inode numbers) holds.
	EntryExpiration time.Time
}

// Dirent is a directory entry as it is returned by a call to ReadDir, and
// as it is written into the caller-supplied Readdir response buffer by
// AppendDirent.
type Dirent struct {
	// The opaque cursor a later ReadDirOp should pass as Offset to resume
	// immediately after this entry. See ReadDirOp.Offset.
	Offset DirOffset

	Inode InodeID
	Name  string
	Type  FileType
}
