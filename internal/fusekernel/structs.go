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

package fusekernel

import "unsafe"

////////////////////////////////////////////////////////////////////////
// Attributes
////////////////////////////////////////////////////////////////////////

// Attr mirrors struct fuse_attr.
type Attr struct {
	Ino       uint64
	Size      uint64
	Blocks    uint64
	Atime     uint64
	Mtime     uint64
	Ctime     uint64
	AtimeNsec uint32
	MtimeNsec uint32
	CtimeNsec uint32
	Mode      uint32
	Nlink     uint32
	Uid       uint32
	Gid       uint32
	Rdev      uint32
	Blksize   uint32
	_         uint32 // padding
}

// EntryOut mirrors struct fuse_entry_out, the response payload of every
// entry-returning op (Lookup, Create, Mknod, Mkdir, Symlink, Link).
type EntryOut struct {
	NodeId         uint64
	Generation     uint64
	EntryValid     uint64
	AttrValid      uint64
	EntryValidNsec uint32
	AttrValidNsec  uint32
	Attr           Attr
}

// Compatibility sizes for EntryOut across minor protocol revisions. Minor 9
// introduced symlink caching fields which do not change EntryOut's own
// layout, so EntryOut has had a single wire size since protocol 7.1.
const (
	compatEntryOutSize = unsafe.Sizeof(EntryOut{})
)

// EntryOutSize returns the number of bytes of EntryOut valid for the given
// negotiated protocol. Present for symmetry with AttrOutSize/InitOutSize;
// EntryOut has not grown across the supported minor range.
func EntryOutSize(p Protocol) uintptr {
	return compatEntryOutSize
}

// AttrOut mirrors struct fuse_attr_out.
type AttrOut struct {
	AttrValid     uint64
	AttrValidNsec uint32
	_             uint32 // padding
	Attr          Attr
}

func AttrOutSize(p Protocol) uintptr {
	return unsafe.Sizeof(AttrOut{})
}

////////////////////////////////////////////////////////////////////////
// Open / release
////////////////////////////////////////////////////////////////////////

// OpenFlags mirror O_* values as sent in OpenIn/CreateIn.
type OpenFlags uint32

type OpenIn struct {
	Flags uint32
	_     uint32 // padding
}

// OpenOut.Flags bits.
const (
	FOpenDirectIO   = 1 << 0
	FOpenKeepCache  = 1 << 1
	FOpenNonSeekable = 1 << 2
)

type OpenOut struct {
	Fh        uint64
	OpenFlags uint32
	_         uint32 // padding
}

const ReleaseFlush = 1 << 0

type ReleaseIn struct {
	Fh           uint64
	Flags        uint32
	ReleaseFlags uint32
	LockOwner    uint64
}

////////////////////////////////////////////////////////////////////////
// Init / destroy
////////////////////////////////////////////////////////////////////////

// InitFlags is the feature-flag bitmask negotiated during FUSE_INIT.
type InitFlags uint32

const (
	InitAsyncRead        InitFlags = 1 << 0
	InitPosixLocks       InitFlags = 1 << 1
	InitFileOps          InitFlags = 1 << 2
	InitAtomicTrunc      InitFlags = 1 << 3
	InitExportSupport    InitFlags = 1 << 4
	InitBigWrites        InitFlags = 1 << 5
	InitDontMask         InitFlags = 1 << 6
	InitSpliceWrite      InitFlags = 1 << 7
	InitSpliceMove       InitFlags = 1 << 8
	InitSpliceRead       InitFlags = 1 << 9
	InitFlockLocks       InitFlags = 1 << 10
	InitIoctlDir         InitFlags = 1 << 11
	InitAutoInvalData    InitFlags = 1 << 12
	InitDoReaddirplus    InitFlags = 1 << 13
	InitReaddirplusAuto  InitFlags = 1 << 14
	InitAsyncDIO         InitFlags = 1 << 15
	InitWritebackCache   InitFlags = 1 << 16
	InitNoOpenSupport    InitFlags = 1 << 17
	InitParallelDirOps   InitFlags = 1 << 18
	InitHandleKillpriv   InitFlags = 1 << 19
	InitPosixACL         InitFlags = 1 << 20
	InitAbortError       InitFlags = 1 << 21
	InitMaxPages         InitFlags = 1 << 22
	InitCacheSymlinks    InitFlags = 1 << 23
	InitNoOpendirSupport InitFlags = 1 << 24
	InitExplicitInvalData InitFlags = 1 << 25
)

var initFlagNames = []struct {
	bit  InitFlags
	name string
}{
	{InitAsyncRead, "ASYNC_READ"},
	{InitPosixLocks, "POSIX_LOCKS"},
	{InitFileOps, "FILE_OPS"},
	{InitAtomicTrunc, "ATOMIC_O_TRUNC"},
	{InitExportSupport, "EXPORT_SUPPORT"},
	{InitBigWrites, "BIG_WRITES"},
	{InitDontMask, "DONT_MASK"},
	{InitSpliceWrite, "SPLICE_WRITE"},
	{InitSpliceMove, "SPLICE_MOVE"},
	{InitSpliceRead, "SPLICE_READ"},
	{InitFlockLocks, "FLOCK_LOCKS"},
	{InitIoctlDir, "IOCTL_DIR"},
	{InitAutoInvalData, "AUTO_INVAL_DATA"},
	{InitDoReaddirplus, "DO_READDIRPLUS"},
	{InitReaddirplusAuto, "READDIRPLUS_AUTO"},
	{InitAsyncDIO, "ASYNC_DIO"},
	{InitWritebackCache, "WRITEBACK_CACHE"},
	{InitNoOpenSupport, "NO_OPEN_SUPPORT"},
	{InitParallelDirOps, "PARALLEL_DIROPS"},
	{InitHandleKillpriv, "HANDLE_KILLPRIV"},
	{InitPosixACL, "POSIX_ACL"},
	{InitAbortError, "ABORT_ERROR"},
	{InitMaxPages, "MAX_PAGES"},
	{InitCacheSymlinks, "CACHE_SYMLINKS"},
	{InitNoOpendirSupport, "NO_OPENDIR_SUPPORT"},
	{InitExplicitInvalData, "EXPLICIT_INVAL_DATA"},
}

// String renders known bits by name, joined with '|', and any remaining
// unknown bits as a trailing hex literal. A shared table drives this
// instead of per-flag casework, per the "bitflag debug formatting" design
// note.
func (f InitFlags) String() string {
	var out string
	remaining := f
	for _, e := range initFlagNames {
		if remaining&e.bit != 0 {
			if out != "" {
				out += "|"
			}
			out += e.name
			remaining &^= e.bit
		}
	}
	if remaining != 0 {
		if out != "" {
			out += "|"
		}
		out += "0x" + hex32(uint32(remaining))
	}
	if out == "" {
		out = "0"
	}
	return out
}

func hex32(v uint32) string {
	const digits = "0123456789abcdef"
	if v == 0 {
		return "0"
	}
	var buf [8]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = digits[v%16]
		v /= 16
	}
	return string(buf[i:])
}

// InitIn mirrors struct fuse_init_in. This is the current (7.6+) layout;
// older kernels send only the first 8 bytes (Major and Minor; MaxReadahead
// and Flags arrived in 7.6), which the decoder accounts for when handed a
// truncated buffer.
type InitIn struct {
	Major        uint32
	Minor        uint32
	MaxReadahead uint32
	Flags        uint32
}

// InitOut mirrors struct fuse_init_out (current, 7.23+ layout). The encoder
// truncates the bytes actually written according to the negotiated minor,
// using the compat sizes below.
type InitOut struct {
	Major               uint32
	Minor               uint32
	MaxReadahead        uint32
	Flags               uint32
	MaxBackground       uint16
	CongestionThreshold uint16
	MaxWrite            uint32
	TimeGran            uint32
	MaxPages            uint16
	_                   uint16 // padding
	_                   [8]uint32
}

// Compatibility tail sizes for InitOut, in bytes, per minor revision. These
// match FUSE_COMPAT_INIT_OUT_SIZE and FUSE_COMPAT_22_INIT_OUT_SIZE from
// <linux/fuse.h>: the 7.1-7.4 tail ends after Minor (major+minor only), the
// 7.5-7.22 tail ends after MaxWrite, and 7.23+ gets the full current struct.
const (
	CompatInitOutSize   = 8  // major, minor
	Compat22InitOutSize = 24 // .. through max_write
)

// InitOutSize returns the number of bytes of InitOut valid for the
// negotiated minor version, per spec.md's version-conditional framing:
// fields introduced after the negotiated minor are truncated (and, since
// OutMessage always zeros newly grown memory, effectively zeroed) rather
// than encoded.
func InitOutSize(minor uint32) uintptr {
	switch {
	case minor < 5:
		return CompatInitOutSize
	case minor < 23:
		return Compat22InitOutSize
	default:
		return unsafe.Sizeof(InitOut{})
	}
}

type CuseInitIn struct {
	Major  uint32
	Minor  uint32
	_      uint32 // padding
	Flags  uint32
}

type CuseInitOut struct {
	Major    uint32
	Minor    uint32
	_        uint32 // padding
	Flags    uint32
	MaxRead  uint32
	MaxWrite uint32
	DevMajor uint32
	DevMinor uint32
	Spare    [10]uint32
}

////////////////////////////////////////////////////////////////////////
// Forget
////////////////////////////////////////////////////////////////////////

type ForgetIn struct {
	Nlookup uint64
}

type ForgetOne struct {
	NodeId  uint64
	Nlookup uint64
}

type BatchForgetIn struct {
	Count uint32
	_     uint32 // padding
}

////////////////////////////////////////////////////////////////////////
// Setattr
////////////////////////////////////////////////////////////////////////

const (
	FattrMode      = 1 << 0
	FattrUid       = 1 << 1
	FattrGid       = 1 << 2
	FattrSize      = 1 << 3
	FattrAtime     = 1 << 4
	FattrMtime     = 1 << 5
	FattrFh        = 1 << 6
	FattrAtimeNow  = 1 << 7
	FattrMtimeNow  = 1 << 8
	FattrLockOwner = 1 << 9
)

type SetattrIn struct {
	Valid     uint32
	_         uint32 // padding
	Fh        uint64
	Size      uint64
	LockOwner uint64
	Atime     uint64
	Mtime     uint64
	_         uint64 // unused
	AtimeNsec uint32
	MtimeNsec uint32
	_         uint32 // unused
	Mode      uint32
	_         uint32 // unused
	Uid       uint32
	Gid       uint32
	_         uint32 // unused
}

////////////////////////////////////////////////////////////////////////
// Mknod / mkdir / rename / link
////////////////////////////////////////////////////////////////////////

type MknodIn struct {
	Mode    uint32
	Rdev    uint32
	Umask   uint32
	_       uint32 // padding
}

type MkdirIn struct {
	Mode  uint32
	Umask uint32
}

type RenameIn struct {
	Newdir uint64
}

// RenameFlags are the flags carried by the extended rename2 opcode.
type RenameFlags uint32

const (
	RenameNoReplace RenameFlags = 1 << 0
	RenameExchange  RenameFlags = 1 << 1
	RenameWhiteout  RenameFlags = 1 << 2
)

type Rename2In struct {
	Newdir uint64
	Flags  uint32
	_      uint32 // padding
}

type LinkIn struct {
	Oldnodeid uint64
}

////////////////////////////////////////////////////////////////////////
// Read / write
////////////////////////////////////////////////////////////////////////

const (
	ReadLockOwner = 1 << 1
)

type ReadIn struct {
	Fh        uint64
	Offset    uint64
	Size      uint32
	ReadFlags uint32
	LockOwner uint64
	Flags     uint32
	_         uint32 // padding
}

const (
	WriteCache     = 1 << 0
	WriteLockOwner = 1 << 1
)

type WriteIn struct {
	Fh         uint64
	Offset     uint64
	Size       uint32
	WriteFlags uint32
	LockOwner  uint64
	Flags      uint32
	_          uint32 // padding
}

type WriteOut struct {
	Size uint32
	_    uint32 // padding
}

////////////////////////////////////////////////////////////////////////
// Fsync / flush
////////////////////////////////////////////////////////////////////////

const FsyncFdatasync = 1 << 0

type FsyncIn struct {
	Fh         uint64
	FsyncFlags uint32
	_          uint32 // padding
}

type FlushIn struct {
	Fh        uint64
	_         uint32 // unused
	_         uint32 // padding
	LockOwner uint64
}

////////////////////////////////////////////////////////////////////////
// Directories
////////////////////////////////////////////////////////////////////////

type ReadDirIn = ReadIn

// Dirent mirrors struct fuse_dirent, the header of one entry appended to a
// readdir response buffer. Name bytes and 8-byte alignment padding follow
// immediately in the buffer.
type Dirent struct {
	Ino     uint64
	Off     uint64
	NameLen uint32
	Type    uint32
}

const DirentAlignment = 8
const DirentHeaderSize = unsafe.Sizeof(Dirent{})

// DirentSize returns the total padded size of a directory entry with the
// given name length.
func DirentSize(nameLen int) int {
	sz := int(DirentHeaderSize) + nameLen
	if rem := sz % DirentAlignment; rem != 0 {
		sz += DirentAlignment - rem
	}
	return sz
}

////////////////////////////////////////////////////////////////////////
// Xattrs
////////////////////////////////////////////////////////////////////////

type SetxattrIn struct {
	Size  uint32
	Flags uint32
}

type GetxattrIn struct {
	Size uint32
	_    uint32 // padding
}

type GetxattrOut struct {
	Size uint32
	_    uint32 // padding
}

////////////////////////////////////////////////////////////////////////
// Locks
////////////////////////////////////////////////////////////////////////

// LockType is the fcntl-style type carried by a FileLock: read, write, or
// unlock.
type LockType uint32

const (
	LockTypeRead   LockType = 0 // F_RDLCK
	LockTypeWrite  LockType = 1 // F_WRLCK
	LockTypeUnlock LockType = 2 // F_UNLCK
)

// WholeFileEnd is the sentinel End value meaning "through the end of the
// file".
const WholeFileEnd = ^uint64(0)

type FileLock struct {
	Start uint64
	End   uint64
	Type  uint32
	Pid   uint32
}

const LkFlock = 1 << 0

type LkIn struct {
	Fh      uint64
	Owner   uint64
	Lk      FileLock
	LkFlags uint32
	_       uint32 // padding
}

type LkOut struct {
	Lk FileLock
}

////////////////////////////////////////////////////////////////////////
// Access / create
////////////////////////////////////////////////////////////////////////

const (
	AccessMaskExec  = 1
	AccessMaskWrite = 2
	AccessMaskRead  = 4
)

type AccessIn struct {
	Mask uint32
	_    uint32 // padding
}

type CreateIn struct {
	Flags uint32
	Mode  uint32
	Umask uint32
	_     uint32 // padding
}

////////////////////////////////////////////////////////////////////////
// Bmap / ioctl / poll
////////////////////////////////////////////////////////////////////////

type BmapIn struct {
	Block     uint64
	Blocksize uint32
	_         uint32 // padding
}

type BmapOut struct {
	Block uint64
}

const (
	IoctlCompat       = 1 << 0
	IoctlUnrestricted = 1 << 1
	IoctlRetry        = 1 << 2
	IoctlMaxIOV       = 256
)

type IoctlIn struct {
	Fh      uint64
	Flags   uint32
	Cmd     uint32
	Arg     uint64
	InSize  uint32
	OutSize uint32
}

type IoctlOut struct {
	Result  int32
	Flags   uint32
	InIovs  uint32
	OutIovs uint32
}

const PollScheduleNotify = 1 << 0

type PollIn struct {
	Fh    uint64
	Kh    uint64
	Flags uint32
	_     uint32 // padding
}

type PollOut struct {
	Revents uint32
	_       uint32 // padding
}

type NotifyPollWakeupOut struct {
	Kh uint64
}

////////////////////////////////////////////////////////////////////////
// Lseek
////////////////////////////////////////////////////////////////////////

// Whence values accepted by LseekIn, matching lseek(2)'s SEEK_* family plus
// the FUSE-specific SEEK_DATA/SEEK_HOLE.
const (
	SeekSet  = 0
	SeekCur  = 1
	SeekEnd  = 2
	SeekData = 3
	SeekHole = 4
)

type LseekIn struct {
	Fh     uint64
	Offset uint64
	Whence uint32
	_      uint32 // padding
}

type LseekOut struct {
	Offset uint64
}

////////////////////////////////////////////////////////////////////////
// Fallocate / copy_file_range
////////////////////////////////////////////////////////////////////////

type FallocateIn struct {
	Fh     uint64
	Offset uint64
	Length uint64
	Mode   uint32
	_      uint32 // padding
}

type CopyFileRangeIn struct {
	FhIn    uint64
	OffIn   uint64
	NodeIdOut uint64
	FhOut   uint64
	OffOut  uint64
	Len     uint64
	Flags   uint64
}

////////////////////////////////////////////////////////////////////////
// Interrupt / notify
////////////////////////////////////////////////////////////////////////

type InterruptIn struct {
	Unique uint64
}

// NotifyCode identifies the kind of unsolicited server->kernel message sent
// with OutHeader.Unique == 0.
type NotifyCode int32

const (
	NotifyPoll        NotifyCode = 1
	NotifyInvalInode  NotifyCode = 2
	NotifyInvalEntry  NotifyCode = 3
	NotifyStore       NotifyCode = 4
	NotifyRetrieve    NotifyCode = 5
	NotifyInvalDelete NotifyCode = 6
)

type NotifyInvalInodeOut struct {
	Ino    uint64
	Off    int64
	Length int64
}

type NotifyInvalEntryOut struct {
	Parent  uint64
	NameLen uint32
	_       uint32 // padding
}

type NotifyInvalDeleteOut struct {
	Parent  uint64
	Child   uint64
	NameLen uint32
	_       uint32 // padding
}

type NotifyStoreOut struct {
	Nodeid uint64
	Offset uint64
	Size   uint32
	_      uint32 // padding
}

type NotifyRetrieveOut struct {
	NotifyUnique uint64
	Nodeid       uint64
	Offset       uint64
	Size         uint32
	_            uint32 // padding
}

type NotifyRetrieveIn struct {
	Dummy1 uint64
	Offset uint64
	Size   uint32
	Dummy2 uint32
	Dummy3 uint64
	Dummy4 uint64
}

////////////////////////////////////////////////////////////////////////
// Statfs
////////////////////////////////////////////////////////////////////////

type StatfsOut struct {
	Blocks  uint64
	Bfree   uint64
	Bavail  uint64
	Files   uint64
	Ffree   uint64
	Bsize   uint32
	NameLen uint32
	Frsize  uint32
	_       uint32 // padding
	_       [6]uint32
}
