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
	"unsafe"

	"github.com/fusewire/fusewire/fuseops"
	"github.com/fusewire/fusewire/internal/buffer"
	"github.com/fusewire/fusewire/internal/fusekernel"
)

// Op is implemented by every concrete per-opcode request type the
// dispatcher hands to a FileSystem. Each wraps the corresponding fuseops
// type, which is all a FileSystem implementation ever sees; kernelResponse
// is the connection's own affair.
type Op interface {
	// ShortDesc renders a one-line description of the op for logging.
	ShortDesc() string

	// kernelResponse encodes the op's (by now filled-in) response fields
	// into om, which has already been Reset. Called after the handler has
	// replied successfully.
	kernelResponse(protocol fusekernel.Protocol, om *buffer.OutMessage)
}

////////////////////////////////////////////////////////////////////////
// Inodes
////////////////////////////////////////////////////////////////////////

type LookUpInodeOp struct {
	fuseops.LookUpInodeOp
}

func (o *LookUpInodeOp) ShortDesc() string {
	return fmt.Sprintf("LookUpInode(parent=%v, name=%q)", o.Parent, o.Name)
}

func (o *LookUpInodeOp) kernelResponse(protocol fusekernel.Protocol, om *buffer.OutMessage) {
	size := fusekernel.EntryOutSize(protocol)
	out := (*fusekernel.EntryOut)(om.Grow(size))
	convertChildInodeEntry(&o.Entry, out)
}

type GetInodeAttributesOp struct {
	fuseops.GetInodeAttributesOp
}

func (o *GetInodeAttributesOp) ShortDesc() string {
	return fmt.Sprintf("GetInodeAttributes(inode=%v)", o.Inode)
}

func (o *GetInodeAttributesOp) kernelResponse(protocol fusekernel.Protocol, om *buffer.OutMessage) {
	size := fusekernel.AttrOutSize(protocol)
	out := (*fusekernel.AttrOut)(om.Grow(size))
	out.AttrValid, out.AttrValidNsec = convertExpirationTime(o.AttributesExpiration)
	convertAttributes(o.Inode, &o.Attributes, &out.Attr)
}

type SetInodeAttributesOp struct {
	fuseops.SetInodeAttributesOp
}

func (o *SetInodeAttributesOp) ShortDesc() string {
	return fmt.Sprintf("SetInodeAttributes(inode=%v)", o.Inode)
}

func (o *SetInodeAttributesOp) kernelResponse(protocol fusekernel.Protocol, om *buffer.OutMessage) {
	size := fusekernel.AttrOutSize(protocol)
	out := (*fusekernel.AttrOut)(om.Grow(size))
	out.AttrValid, out.AttrValidNsec = convertExpirationTime(o.AttributesExpiration)
	convertAttributes(o.Inode, &o.Attributes, &out.Attr)
}

type ForgetInodeOp struct {
	fuseops.ForgetInodeOp
}

func (o *ForgetInodeOp) ShortDesc() string {
	return fmt.Sprintf("ForgetInode(id=%v, n=%d)", o.ID, o.N)
}

// FORGET has no reply on the wire at all; the dispatcher never calls
// kernelResponse for it (see Connection.kernelResponse).
func (o *ForgetInodeOp) kernelResponse(fusekernel.Protocol, *buffer.OutMessage) {}

type BatchForgetOp struct {
	fuseops.BatchForgetOp
}

func (o *BatchForgetOp) ShortDesc() string {
	return fmt.Sprintf("BatchForget(n=%d)", len(o.Entries))
}

func (o *BatchForgetOp) kernelResponse(fusekernel.Protocol, *buffer.OutMessage) {}

////////////////////////////////////////////////////////////////////////
// Inode creation
////////////////////////////////////////////////////////////////////////

type MkDirOp struct {
	fuseops.MkDirOp
}

func (o *MkDirOp) ShortDesc() string {
	return fmt.Sprintf("MkDir(parent=%v, name=%q)", o.Parent, o.Name)
}

func (o *MkDirOp) kernelResponse(protocol fusekernel.Protocol, om *buffer.OutMessage) {
	size := fusekernel.EntryOutSize(protocol)
	out := (*fusekernel.EntryOut)(om.Grow(size))
	convertChildInodeEntry(&o.Entry, out)
}

type MkNodeOp struct {
	fuseops.MkNodeOp
}

func (o *MkNodeOp) ShortDesc() string {
	return fmt.Sprintf("MkNode(parent=%v, name=%q)", o.Parent, o.Name)
}

func (o *MkNodeOp) kernelResponse(protocol fusekernel.Protocol, om *buffer.OutMessage) {
	size := fusekernel.EntryOutSize(protocol)
	out := (*fusekernel.EntryOut)(om.Grow(size))
	convertChildInodeEntry(&o.Entry, out)
}

type CreateFileOp struct {
	fuseops.CreateFileOp
}

func (o *CreateFileOp) ShortDesc() string {
	return fmt.Sprintf("CreateFile(parent=%v, name=%q)", o.Parent, o.Name)
}

func (o *CreateFileOp) kernelResponse(protocol fusekernel.Protocol, om *buffer.OutMessage) {
	eSize := fusekernel.EntryOutSize(protocol)
	e := (*fusekernel.EntryOut)(om.Grow(eSize))
	convertChildInodeEntry(&o.Entry, e)

	oo := (*fusekernel.OpenOut)(om.Grow(unsafe.Sizeof(fusekernel.OpenOut{})))
	oo.Fh = uint64(o.Handle)
}

type CreateLinkOp struct {
	fuseops.CreateLinkOp
}

func (o *CreateLinkOp) ShortDesc() string {
	return fmt.Sprintf("CreateLink(parent=%v, name=%q, target=%v)", o.Parent, o.Name, o.Target)
}

func (o *CreateLinkOp) kernelResponse(protocol fusekernel.Protocol, om *buffer.OutMessage) {
	size := fusekernel.EntryOutSize(protocol)
	out := (*fusekernel.EntryOut)(om.Grow(size))
	convertChildInodeEntry(&o.Entry, out)
}

type CreateSymlinkOp struct {
	fuseops.CreateSymlinkOp
}

func (o *CreateSymlinkOp) ShortDesc() string {
	return fmt.Sprintf("CreateSymlink(parent=%v, name=%q, target=%q)", o.Parent, o.Name, o.Target)
}

func (o *CreateSymlinkOp) kernelResponse(protocol fusekernel.Protocol, om *buffer.OutMessage) {
	size := fusekernel.EntryOutSize(protocol)
	out := (*fusekernel.EntryOut)(om.Grow(size))
	convertChildInodeEntry(&o.Entry, out)
}

type ReadSymlinkOp struct {
	fuseops.ReadSymlinkOp
}

func (o *ReadSymlinkOp) ShortDesc() string {
	return fmt.Sprintf("ReadSymlink(inode=%v)", o.Inode)
}

func (o *ReadSymlinkOp) kernelResponse(protocol fusekernel.Protocol, om *buffer.OutMessage) {
	om.AppendString(o.Target)
}

////////////////////////////////////////////////////////////////////////
// Unlinking / renaming
////////////////////////////////////////////////////////////////////////

type RenameOp struct {
	fuseops.RenameOp
}

func (o *RenameOp) ShortDesc() string {
	return fmt.Sprintf(
		"Rename(oldParent=%v, oldName=%q, newParent=%v, newName=%q, flags=%#x)",
		o.OldParent, o.OldName, o.NewParent, o.NewName, o.Flags)
}

func (o *RenameOp) kernelResponse(fusekernel.Protocol, *buffer.OutMessage) {}

type RmDirOp struct {
	fuseops.RmDirOp
}

func (o *RmDirOp) ShortDesc() string {
	return fmt.Sprintf("RmDir(parent=%v, name=%q)", o.Parent, o.Name)
}

func (o *RmDirOp) kernelResponse(fusekernel.Protocol, *buffer.OutMessage) {}

type UnlinkOp struct {
	fuseops.UnlinkOp
}

func (o *UnlinkOp) ShortDesc() string {
	return fmt.Sprintf("Unlink(parent=%v, name=%q)", o.Parent, o.Name)
}

func (o *UnlinkOp) kernelResponse(fusekernel.Protocol, *buffer.OutMessage) {}

////////////////////////////////////////////////////////////////////////
// Directory handles
////////////////////////////////////////////////////////////////////////

type OpenDirOp struct {
	fuseops.OpenDirOp
}

func (o *OpenDirOp) ShortDesc() string {
	return fmt.Sprintf("OpenDir(inode=%v)", o.Inode)
}

func (o *OpenDirOp) kernelResponse(protocol fusekernel.Protocol, om *buffer.OutMessage) {
	out := (*fusekernel.OpenOut)(om.Grow(unsafe.Sizeof(fusekernel.OpenOut{})))
	out.Fh = uint64(o.Handle)
}

type ReadDirOp struct {
	fuseops.ReadDirOp
}

func (o *ReadDirOp) ShortDesc() string {
	return fmt.Sprintf("ReadDir(inode=%v, handle=%v, offset=%v)", o.Inode, o.Handle, o.Offset)
}

func (o *ReadDirOp) kernelResponse(protocol fusekernel.Protocol, om *buffer.OutMessage) {
	om.Append(o.Data)
}

type ReleaseDirHandleOp struct {
	fuseops.ReleaseDirHandleOp
}

func (o *ReleaseDirHandleOp) ShortDesc() string {
	return fmt.Sprintf("ReleaseDirHandle(handle=%v)", o.Handle)
}

func (o *ReleaseDirHandleOp) kernelResponse(fusekernel.Protocol, *buffer.OutMessage) {}

type FsyncDirOp struct {
	fuseops.FsyncDirOp
}

func (o *FsyncDirOp) ShortDesc() string {
	return fmt.Sprintf("FsyncDir(inode=%v, handle=%v, flags=%#x)", o.Inode, o.Handle, o.Flags)
}

func (o *FsyncDirOp) kernelResponse(fusekernel.Protocol, *buffer.OutMessage) {}

////////////////////////////////////////////////////////////////////////
// File handles
////////////////////////////////////////////////////////////////////////

type OpenFileOp struct {
	fuseops.OpenFileOp
}

func (o *OpenFileOp) ShortDesc() string {
	return fmt.Sprintf("OpenFile(inode=%v)", o.Inode)
}

func (o *OpenFileOp) kernelResponse(protocol fusekernel.Protocol, om *buffer.OutMessage) {
	out := (*fusekernel.OpenOut)(om.Grow(unsafe.Sizeof(fusekernel.OpenOut{})))
	out.Fh = uint64(o.Handle)
}

type ReadFileOp struct {
	fuseops.ReadFileOp
}

func (o *ReadFileOp) ShortDesc() string {
	return fmt.Sprintf("ReadFile(inode=%v, handle=%v, offset=%d, size=%d)", o.Inode, o.Handle, o.Offset, o.Size)
}

func (o *ReadFileOp) kernelResponse(protocol fusekernel.Protocol, om *buffer.OutMessage) {
	om.Append(o.Data)
}

type WriteFileOp struct {
	fuseops.WriteFileOp
}

func (o *WriteFileOp) ShortDesc() string {
	return fmt.Sprintf("WriteFile(inode=%v, handle=%v, offset=%d, n=%d)", o.Inode, o.Handle, o.Offset, len(o.Data))
}

func (o *WriteFileOp) kernelResponse(protocol fusekernel.Protocol, om *buffer.OutMessage) {
	out := (*fusekernel.WriteOut)(om.Grow(unsafe.Sizeof(fusekernel.WriteOut{})))
	out.Size = uint32(len(o.Data))
}

type SyncFileOp struct {
	fuseops.SyncFileOp
}

func (o *SyncFileOp) ShortDesc() string {
	return fmt.Sprintf("SyncFile(inode=%v, handle=%v)", o.Inode, o.Handle)
}

func (o *SyncFileOp) kernelResponse(fusekernel.Protocol, *buffer.OutMessage) {}

type FlushFileOp struct {
	fuseops.FlushFileOp
}

func (o *FlushFileOp) ShortDesc() string {
	return fmt.Sprintf("FlushFile(inode=%v, handle=%v)", o.Inode, o.Handle)
}

func (o *FlushFileOp) kernelResponse(fusekernel.Protocol, *buffer.OutMessage) {}

type ReleaseFileHandleOp struct {
	fuseops.ReleaseFileHandleOp
}

func (o *ReleaseFileHandleOp) ShortDesc() string {
	return fmt.Sprintf("ReleaseFileHandle(handle=%v)", o.Handle)
}

func (o *ReleaseFileHandleOp) kernelResponse(fusekernel.Protocol, *buffer.OutMessage) {}

type FAllocateOp struct {
	fuseops.FAllocateOp
}

func (o *FAllocateOp) ShortDesc() string {
	return fmt.Sprintf("FAllocate(inode=%v, handle=%v, offset=%d, length=%d)", o.Inode, o.Handle, o.Offset, o.Length)
}

func (o *FAllocateOp) kernelResponse(fusekernel.Protocol, *buffer.OutMessage) {}

////////////////////////////////////////////////////////////////////////
// Extended attributes
////////////////////////////////////////////////////////////////////////

type GetXattrOp struct {
	fuseops.GetXattrOp
}

func (o *GetXattrOp) ShortDesc() string {
	return fmt.Sprintf("GetXattr(inode=%v, name=%q)", o.Inode, o.Name)
}

func (o *GetXattrOp) kernelResponse(protocol fusekernel.Protocol, om *buffer.OutMessage) {
	if o.Size == 0 {
		out := (*fusekernel.GetxattrOut)(om.Grow(unsafe.Sizeof(fusekernel.GetxattrOut{})))
		out.Size = uint32(len(o.Value))
		return
	}
	om.Append(o.Value)
}

type ListXattrOp struct {
	fuseops.ListXattrOp
}

func (o *ListXattrOp) ShortDesc() string {
	return fmt.Sprintf("ListXattr(inode=%v)", o.Inode)
}

func (o *ListXattrOp) kernelResponse(protocol fusekernel.Protocol, om *buffer.OutMessage) {
	if o.Size == 0 {
		out := (*fusekernel.GetxattrOut)(om.Grow(unsafe.Sizeof(fusekernel.GetxattrOut{})))
		out.Size = uint32(len(o.Data))
		return
	}
	om.Append(o.Data)
}

type SetXattrOp struct {
	fuseops.SetXattrOp
}

func (o *SetXattrOp) ShortDesc() string {
	return fmt.Sprintf("SetXattr(inode=%v, name=%q)", o.Inode, o.Name)
}

func (o *SetXattrOp) kernelResponse(fusekernel.Protocol, *buffer.OutMessage) {}

type RemoveXattrOp struct {
	fuseops.RemoveXattrOp
}

func (o *RemoveXattrOp) ShortDesc() string {
	return fmt.Sprintf("RemoveXattr(inode=%v, name=%q)", o.Inode, o.Name)
}

func (o *RemoveXattrOp) kernelResponse(fusekernel.Protocol, *buffer.OutMessage) {}

////////////////////////////////////////////////////////////////////////
// Locking
////////////////////////////////////////////////////////////////////////

type GetLkOp struct {
	fuseops.GetLkOp
}

func (o *GetLkOp) ShortDesc() string {
	return fmt.Sprintf("GetLk(inode=%v, handle=%v)", o.Inode, o.Handle)
}

func (o *GetLkOp) kernelResponse(protocol fusekernel.Protocol, om *buffer.OutMessage) {
	out := (*fusekernel.LkOut)(om.Grow(unsafe.Sizeof(fusekernel.LkOut{})))
	convertLock(&o.Result, &out.Lk)
}

type SetLkOp struct {
	fuseops.SetLkOp
}

func (o *SetLkOp) ShortDesc() string {
	return fmt.Sprintf("SetLk(inode=%v, handle=%v, block=%v)", o.Inode, o.Handle, o.Block)
}

func (o *SetLkOp) kernelResponse(fusekernel.Protocol, *buffer.OutMessage) {}

////////////////////////////////////////////////////////////////////////
// Miscellaneous
////////////////////////////////////////////////////////////////////////

type AccessOp struct {
	fuseops.AccessOp
}

func (o *AccessOp) ShortDesc() string {
	return fmt.Sprintf("Access(inode=%v, mask=%#o)", o.Inode, o.Mask)
}

func (o *AccessOp) kernelResponse(fusekernel.Protocol, *buffer.OutMessage) {}

type StatFSOp struct {
	fuseops.StatFSOp
}

func (o *StatFSOp) ShortDesc() string { return "StatFS()" }

func (o *StatFSOp) kernelResponse(protocol fusekernel.Protocol, om *buffer.OutMessage) {
	out := (*fusekernel.StatfsOut)(om.Grow(unsafe.Sizeof(fusekernel.StatfsOut{})))
	out.Blocks = o.Blocks
	out.Bfree = o.BlocksFree
	out.Bavail = o.BlocksAvailable
	out.Files = o.Inodes
	out.Ffree = o.InodesFree
	out.Bsize = o.BlockSize
	out.Frsize = o.IoSize
	out.NameLen = 255
}

type BmapOp struct {
	fuseops.BmapOp
}

func (o *BmapOp) ShortDesc() string {
	return fmt.Sprintf("Bmap(inode=%v, block=%d)", o.Inode, o.Block)
}

func (o *BmapOp) kernelResponse(protocol fusekernel.Protocol, om *buffer.OutMessage) {
	out := (*fusekernel.BmapOut)(om.Grow(unsafe.Sizeof(fusekernel.BmapOut{})))
	out.Block = o.Result
}

type LseekOp struct {
	fuseops.LseekOp
}

func (o *LseekOp) ShortDesc() string {
	return fmt.Sprintf("Lseek(inode=%v, handle=%v, offset=%d, whence=%d)", o.Inode, o.Handle, o.Offset, o.Whence)
}

func (o *LseekOp) kernelResponse(protocol fusekernel.Protocol, om *buffer.OutMessage) {
	out := (*fusekernel.LseekOut)(om.Grow(unsafe.Sizeof(fusekernel.LseekOut{})))
	out.Offset = uint64(o.Result)
}

type CopyFileRangeOp struct {
	fuseops.CopyFileRangeOp
}

func (o *CopyFileRangeOp) ShortDesc() string {
	return fmt.Sprintf("CopyFileRange(in=%v, out=%v, length=%d)", o.InInode, o.OutInode, o.Length)
}

func (o *CopyFileRangeOp) kernelResponse(protocol fusekernel.Protocol, om *buffer.OutMessage) {
	out := (*fusekernel.WriteOut)(om.Grow(unsafe.Sizeof(fusekernel.WriteOut{})))
	out.Size = uint32(o.Result)
}

type IoctlOp struct {
	fuseops.IoctlOp
}

func (o *IoctlOp) ShortDesc() string {
	return fmt.Sprintf("Ioctl(inode=%v, handle=%v, cmd=%#x)", o.Inode, o.Handle, o.Cmd)
}

func (o *IoctlOp) kernelResponse(protocol fusekernel.Protocol, om *buffer.OutMessage) {
	out := (*fusekernel.IoctlOut)(om.Grow(unsafe.Sizeof(fusekernel.IoctlOut{})))
	out.Result = o.Result
	om.Append(o.OutData)
}

type PollOp struct {
	fuseops.PollOp
}

func (o *PollOp) ShortDesc() string {
	return fmt.Sprintf("Poll(inode=%v, handle=%v)", o.Inode, o.Handle)
}

func (o *PollOp) kernelResponse(protocol fusekernel.Protocol, om *buffer.OutMessage) {
	out := (*fusekernel.PollOut)(om.Grow(unsafe.Sizeof(fusekernel.PollOut{})))
	out.Revents = o.Revents
}

type NotifyReplyOp struct {
	fuseops.NotifyReplyOp
}

func (o *NotifyReplyOp) ShortDesc() string {
	return fmt.Sprintf("NotifyReply(inode=%v, offset=%d)", o.Inode, o.Offset)
}

func (o *NotifyReplyOp) kernelResponse(fusekernel.Protocol, *buffer.OutMessage) {}

// A sentinel used for unknown or unimplemented opcodes. Its ShortDesc is
// descriptive enough for logging; kernelResponse must never be called
// since unknown ops are always answered ENOSYS without invoking a
// handler.
type unknownOp struct {
	opcode fusekernel.Opcode
	inode  fuseops.InodeID
}

func (o *unknownOp) ShortDesc() string {
	return fmt.Sprintf("<opcode %v>(inode=%v)", o.opcode, o.inode)
}

func (o *unknownOp) kernelResponse(fusekernel.Protocol, *buffer.OutMessage) {
	panic(fmt.Sprintf("kernelResponse called for unknown op: %s", o.ShortDesc()))
}

////////////////////////////////////////////////////////////////////////
// Internal
////////////////////////////////////////////////////////////////////////

// initOp drives the FUSE_INIT handshake. Unlike every other op it is
// handled directly by Connection.Init rather than dispatched to a
// FileSystem.
type initOp struct {
	// In
	Kernel fusekernel.Protocol

	// Out
	Library      fusekernel.Protocol
	MaxReadahead uint32
	Flags        fusekernel.InitFlags
	MaxWrite     uint32
	MaxPages     uint16
}

func (o *initOp) ShortDesc() string {
	return fmt.Sprintf("Init(kernel=%v)", o.Kernel)
}

func (o *initOp) kernelResponse(protocol fusekernel.Protocol, om *buffer.OutMessage) {
	size := fusekernel.InitOutSize(o.Library.Minor)
	out := (*fusekernel.InitOut)(om.Grow(size))

	out.Major = o.Library.Major
	out.Minor = o.Library.Minor
	out.MaxReadahead = o.MaxReadahead
	out.Flags = uint32(o.Flags)
	out.MaxWrite = o.MaxWrite
	out.MaxPages = o.MaxPages
}

// destroyOp answers FUSE_DESTROY with an empty success response (see
// fileSystemServer.dispatch). It does not stop ReadOp; the serve loop ends
// when the kernel closes the device and ReadOp returns io.EOF.
type destroyOp struct{}

func (o *destroyOp) ShortDesc() string { return "Destroy()" }

func (o *destroyOp) kernelResponse(fusekernel.Protocol, *buffer.OutMessage) {}

func convertLock(in *fuseops.Lock, out *fusekernel.FileLock) {
	out.Start = in.Range.Start
	out.End = in.Range.End
	out.Pid = in.Pid
	switch in.Type {
	case fuseops.ReadLock:
		out.Type = uint32(fusekernel.LockTypeRead)
	case fuseops.WriteLock:
		out.Type = uint32(fusekernel.LockTypeWrite)
	default:
		out.Type = uint32(fusekernel.LockTypeUnlock)
	}
}
