// Copyright 2023 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package fuseops


// FileType identifies the kind of object an inode represents, using the
// same closed set the kernel's d_type / S_IFMT family distinguishes.
// Values round-trip through the wire as the Unix DT_* constant family;
// an unrecognized on-wire value decodes to UnknownFileType rather than being
// rejected. The raw value is not kept, so it encodes back as DT_UNKNOWN.
type FileType int

const (
	UnknownFileType FileType = iota
	RegularFileType
	DirectoryFileType
	SymlinkFileType
	CharDeviceFileType
	BlockDeviceFileType
	FIFOFileType
	SocketFileType
)

// DT_* values from <dirent.h>, used both to decode and to encode a
// Dirent.Type field.
const (
	dtUnknown = 0
	dtFIFO    = 1
	dtChr     = 2
	dtDir     = 4
	dtBlk     = 6
	dtReg     = 8
	dtLnk     = 10
	dtSock    = 12
)

// ParseFileType converts a DT_* wire value into a FileType.
func ParseFileType(dt uint32) FileType {
	switch dt {
	case dtFIFO:
		return FIFOFileType
	case dtChr:
		return CharDeviceFileType
	case dtDir:
		return DirectoryFileType
	case dtBlk:
		return BlockDeviceFileType
	case dtReg:
		return RegularFileType
	case dtLnk:
		return SymlinkFileType
	case dtSock:
		return SocketFileType
	default:
		return UnknownFileType
	}
}

// DTValue is the inverse of ParseFileType, the value Dirent.Type should
// carry on the wire.
func (t FileType) DTValue() uint32 {
	switch t {
	case FIFOFileType:
		return dtFIFO
	case CharDeviceFileType:
		return dtChr
	case DirectoryFileType:
		return dtDir
	case BlockDeviceFileType:
		return dtBlk
	case RegularFileType:
		return dtReg
	case SymlinkFileType:
		return dtLnk
	case SocketFileType:
		return dtSock
	default:
		return dtUnknown
	}
}

func (t FileType) String() string {
	switch t {
	case RegularFileType:
		return "file"
	case DirectoryFileType:
		return "directory"
	case SymlinkFileType:
		return "symlink"
	case CharDeviceFileType:
		return "char device"
	case BlockDeviceFileType:
		return "block device"
	case FIFOFileType:
		return "named pipe"
	case SocketFileType:
		return "socket"
	default:
		return "unknown file type"
	}
}
