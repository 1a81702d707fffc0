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
	"os"
	"time"

	"github.com/fusewire/fusewire/fuseops"
	"github.com/fusewire/fusewire/internal/fusekernel"
)

// Unix S_IF* type bits, used to translate an os.FileMode's type bits to
// and from the wire's mode field.
const (
	sIfmt   = 0170000
	sIfsock = 0140000
	sIflnk  = 0120000
	sIfreg  = 0100000
	sIfblk  = 0060000
	sIfdir  = 0040000
	sIfchr  = 0020000
	sIfifo  = 0010000
)

// convertFileMode translates an os.FileMode into the wire's combined
// type+permission mode field.
func convertFileMode(mode os.FileMode) uint32 {
	wire := uint32(mode.Perm())

	switch {
	case mode&os.ModeDir != 0:
		wire |= sIfdir
	case mode&os.ModeSymlink != 0:
		wire |= sIflnk
	case mode&os.ModeNamedPipe != 0:
		wire |= sIfifo
	case mode&os.ModeSocket != 0:
		wire |= sIfsock
	case mode&os.ModeCharDevice != 0:
		wire |= sIfchr
	case mode&os.ModeDevice != 0:
		wire |= sIfblk
	default:
		wire |= sIfreg
	}

	return wire
}

// convertWireMode is the inverse of convertFileMode, used when decoding
// SetInodeAttributesOp's incoming mode.
func convertWireMode(wire uint32) os.FileMode {
	mode := os.FileMode(wire & 0777)

	switch wire & sIfmt {
	case sIfdir:
		mode |= os.ModeDir
	case sIflnk:
		mode |= os.ModeSymlink
	case sIfifo:
		mode |= os.ModeNamedPipe
	case sIfsock:
		mode |= os.ModeSocket
	case sIfchr:
		mode |= os.ModeDevice | os.ModeCharDevice
	case sIfblk:
		mode |= os.ModeDevice
	}

	return mode
}

// convertExpirationTime splits a deadline into the (seconds, nanoseconds)
// pair the wire uses to express cache timeouts, clamping to zero if exp has
// already passed.
func convertExpirationTime(exp time.Time) (secs uint64, nsecs uint32) {
	remaining := time.Until(exp)
	if remaining < 0 {
		return 0, 0
	}

	secs = uint64(remaining / time.Second)
	nsecs = uint32(remaining % time.Second)
	return
}

// convertAttributes fills out with in's contents, computed for the given
// inode ID.
func convertAttributes(
	id fuseops.InodeID,
	in *fuseops.InodeAttributes,
	out *fusekernel.Attr) {
	out.Ino = uint64(id)
	out.Size = in.Size
	out.Nlink = in.Nlink
	out.Mode = convertFileMode(in.Mode)
	out.Uid = in.Uid
	out.Gid = in.Gid

	out.Atime = uint64(in.Atime.Unix())
	out.AtimeNsec = uint32(in.Atime.Nanosecond())
	out.Mtime = uint64(in.Mtime.Unix())
	out.MtimeNsec = uint32(in.Mtime.Nanosecond())
	out.Ctime = uint64(in.Ctime.Unix())
	out.CtimeNsec = uint32(in.Ctime.Nanosecond())

	out.Blocks = (in.Size + 511) / 512
	out.Blksize = 4096
}

// convertChildInodeEntry fills out with in's contents.
func convertChildInodeEntry(
	in *fuseops.ChildInodeEntry,
	out *fusekernel.EntryOut) {
	out.NodeId = uint64(in.Child)
	out.Generation = in.Generation
	out.EntryValid, out.EntryValidNsec = convertExpirationTime(in.EntryExpiration)
	out.AttrValid, out.AttrValidNsec = convertExpirationTime(in.AttributesExpiration)
	convertAttributes(in.Child, &in.Attributes, &out.Attr)
}
