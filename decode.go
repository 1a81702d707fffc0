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
	"fmt"
	"time"
	"unsafe"

	"github.com/fusewire/fusewire/fuseops"
	"github.com/fusewire/fusewire/internal/buffer"
	"github.com/fusewire/fusewire/internal/fusekernel"
)

// convertInMessage decodes the already-read-in inMsg into a concrete Op,
// per the common header plus per-opcode payload framing. outMsg is reset
// so that, absent a later error, it is ready to be grown by kernelResponse;
// Connection.kernelResponse fills in its OutHeader, including Unique.
func convertInMessage(
	cfg *MountConfig,
	inMsg *buffer.InMessage,
	outMsg *buffer.OutMessage,
	protocol fusekernel.Protocol) (o Op, err error) {
	outMsg.Reset()
	h := inMsg.Header()

	hdr := fuseops.OpHeader{
		Uid: h.Uid,
		Gid: h.Gid,
		Pid: h.Pid,
	}

	// FUSE_INIT, FUSE_DESTROY, CUSE_INIT, FUSE_INTERRUPT and
	// FUSE_BATCH_FORGET carry no target inode (the kernel sends node ID zero
	// for them); every other opcode must name one.
	switch h.Opcode {
	case fusekernel.OpInit, fusekernel.OpDestroy, fusekernel.OpCuseInit,
		fusekernel.OpInterrupt, fusekernel.OpBatchForget:
	default:
		if h.NodeId == 0 {
			err = MissingNodeID{Opcode: uint32(h.Opcode)}
			return
		}
	}

	inode := fuseops.InodeID(h.NodeId)

	switch h.Opcode {
	case fusekernel.OpInit:
		if inMsg.Len() < int(unsafe.Sizeof(fusekernel.InitIn{})) {
			// Kernels before 7.6 send only Major and Minor.
			old := consume[[2]uint32](inMsg)
			if old == nil {
				err = buffer.UnexpectedEOF{Got: inMsg.Len(), Want: int(unsafe.Sizeof([2]uint32{}))}
				return
			}
			o = &initOp{Kernel: fusekernel.Protocol{Major: old[0], Minor: old[1]}}
			break
		}
		in := consume[fusekernel.InitIn](inMsg)
		if in == nil {
			err = buffer.UnexpectedEOF{Got: inMsg.Len(), Want: int(unsafe.Sizeof(fusekernel.InitIn{}))}
			return
		}
		o = &initOp{
			Kernel: fusekernel.Protocol{Major: in.Major, Minor: in.Minor},
			Flags:  fusekernel.InitFlags(in.Flags),
		}

	case fusekernel.OpDestroy:
		o = &destroyOp{}

	case fusekernel.OpForget:
		in := consume[fusekernel.ForgetIn](inMsg)
		if in == nil {
			err = buffer.UnexpectedEOF{Got: inMsg.Len(), Want: int(unsafe.Sizeof(fusekernel.ForgetIn{}))}
			return
		}
		x := &ForgetInodeOp{}
		x.Header = hdr
		x.ID = inode
		x.N = in.Nlookup
		o = x

	case fusekernel.OpBatchForget:
		in := consume[fusekernel.BatchForgetIn](inMsg)
		if in == nil {
			err = buffer.UnexpectedEOF{Got: inMsg.Len(), Want: int(unsafe.Sizeof(fusekernel.BatchForgetIn{}))}
			return
		}
		x := &BatchForgetOp{}
		x.Header = hdr
		for i := uint32(0); i < in.Count; i++ {
			one := consume[fusekernel.ForgetOne](inMsg)
			if one == nil {
				err = buffer.UnexpectedEOF{Got: inMsg.Len(), Want: int(unsafe.Sizeof(fusekernel.ForgetOne{}))}
				return
			}
			x.Entries = append(x.Entries, struct {
				ID fuseops.InodeID
				N  uint64
			}{fuseops.InodeID(one.NodeId), one.Nlookup})
		}
		o = x

	case fusekernel.OpLookup:
		name, nameErr := consumeNodeName(h.Opcode, inMsg)
		if nameErr != nil {
			err = nameErr
			return
		}
		x := &LookUpInodeOp{}
		x.Header = hdr
		x.Parent = inode
		x.Name = name
		o = x

	case fusekernel.OpGetattr:
		x := &GetInodeAttributesOp{}
		x.Header = hdr
		x.Inode = inode
		o = x

	case fusekernel.OpSetattr:
		in := consume[fusekernel.SetattrIn](inMsg)
		if in == nil {
			err = buffer.UnexpectedEOF{Got: inMsg.Len(), Want: int(unsafe.Sizeof(fusekernel.SetattrIn{}))}
			return
		}
		x := &SetInodeAttributesOp{}
		x.Header = hdr
		x.Inode = inode
		if in.Valid&fusekernel.FattrSize != 0 {
			size := in.Size
			x.Size = &size
		}
		if in.Valid&fusekernel.FattrMode != 0 {
			mode := convertWireMode(in.Mode)
			x.Mode = &mode
		}
		if in.Valid&(fusekernel.FattrAtime|fusekernel.FattrAtimeNow) != 0 {
			t := time.Unix(int64(in.Atime), int64(in.AtimeNsec))
			x.Atime = &t
		}
		if in.Valid&(fusekernel.FattrMtime|fusekernel.FattrMtimeNow) != 0 {
			t := time.Unix(int64(in.Mtime), int64(in.MtimeNsec))
			x.Mtime = &t
		}
		o = x

	case fusekernel.OpMkdir:
		in := consume[fusekernel.MkdirIn](inMsg)
		if in == nil {
			err = buffer.UnexpectedEOF{Got: inMsg.Len(), Want: int(unsafe.Sizeof(fusekernel.MkdirIn{}))}
			return
		}
		name, nameErr := consumeNodeName(h.Opcode, inMsg)
		if nameErr != nil {
			err = nameErr
			return
		}
		x := &MkDirOp{}
		x.Header = hdr
		x.Parent = inode
		x.Name = name
		x.Mode = convertWireMode(in.Mode &^ (in.Umask & 0777))
		o = x

	case fusekernel.OpMknod:
		in := consume[fusekernel.MknodIn](inMsg)
		if in == nil {
			err = buffer.UnexpectedEOF{Got: inMsg.Len(), Want: int(unsafe.Sizeof(fusekernel.MknodIn{}))}
			return
		}
		name, nameErr := consumeNodeName(h.Opcode, inMsg)
		if nameErr != nil {
			err = nameErr
			return
		}
		x := &MkNodeOp{}
		x.Header = hdr
		x.Parent = inode
		x.Name = name
		x.Mode = convertWireMode(in.Mode &^ (in.Umask & 0777))
		x.Rdev = in.Rdev
		o = x

	case fusekernel.OpCreate:
		in := consume[fusekernel.CreateIn](inMsg)
		if in == nil {
			err = buffer.UnexpectedEOF{Got: inMsg.Len(), Want: int(unsafe.Sizeof(fusekernel.CreateIn{}))}
			return
		}
		name, nameErr := consumeNodeName(h.Opcode, inMsg)
		if nameErr != nil {
			err = nameErr
			return
		}
		x := &CreateFileOp{}
		x.Header = hdr
		x.Parent = inode
		x.Name = name
		x.Mode = convertWireMode(in.Mode &^ (in.Umask & 0777))
		x.Flags = fuseops.OpenFlags(in.Flags)
		o = x

	case fusekernel.OpLink:
		in := consume[fusekernel.LinkIn](inMsg)
		if in == nil {
			err = buffer.UnexpectedEOF{Got: inMsg.Len(), Want: int(unsafe.Sizeof(fusekernel.LinkIn{}))}
			return
		}
		name, nameErr := consumeNodeName(h.Opcode, inMsg)
		if nameErr != nil {
			err = nameErr
			return
		}
		x := &CreateLinkOp{}
		x.Header = hdr
		x.Parent = inode
		x.Name = name
		x.Target = fuseops.InodeID(in.Oldnodeid)
		o = x

	case fusekernel.OpSymlink:
		name, nameErr := consumeNodeName(h.Opcode, inMsg)
		if nameErr != nil {
			err = nameErr
			return
		}
		// The symlink target is an arbitrary path, not a single validated
		// component: it may contain slashes and may legitimately be "." or
		// "..", so it is left as a plain consumeCString rather than going
		// through consumeNodeName.
		target, ok := consumeCString(inMsg)
		if !ok {
			err = buffer.UnexpectedEOF{Got: inMsg.Len(), Want: 1}
			return
		}
		x := &CreateSymlinkOp{}
		x.Header = hdr
		x.Parent = inode
		x.Name = name
		x.Target = target
		o = x

	case fusekernel.OpReadlink:
		x := &ReadSymlinkOp{}
		x.Header = hdr
		x.Inode = inode
		o = x

	case fusekernel.OpRename, fusekernel.OpRename2:
		var newParent uint64
		var flags fuseops.RenameFlags
		if h.Opcode == fusekernel.OpRename2 {
			in := consume[fusekernel.Rename2In](inMsg)
			if in == nil {
				err = buffer.UnexpectedEOF{Got: inMsg.Len(), Want: int(unsafe.Sizeof(fusekernel.Rename2In{}))}
				return
			}
			newParent = in.Newdir
			if fusekernel.RenameFlags(in.Flags)&fusekernel.RenameNoReplace != 0 {
				flags |= fuseops.RenameNoReplace
			}
			if fusekernel.RenameFlags(in.Flags)&fusekernel.RenameExchange != 0 {
				flags |= fuseops.RenameExchange
			}
		} else {
			in := consume[fusekernel.RenameIn](inMsg)
			if in == nil {
				err = buffer.UnexpectedEOF{Got: inMsg.Len(), Want: int(unsafe.Sizeof(fusekernel.RenameIn{}))}
				return
			}
			newParent = in.Newdir
		}
		oldName, nameErr := consumeNodeName(h.Opcode, inMsg)
		if nameErr != nil {
			err = nameErr
			return
		}
		newName, nameErr := consumeNodeName(h.Opcode, inMsg)
		if nameErr != nil {
			err = nameErr
			return
		}
		x := &RenameOp{}
		x.Header = hdr
		x.OldParent = inode
		x.OldName = oldName
		x.NewParent = fuseops.InodeID(newParent)
		x.NewName = newName
		x.Flags = flags
		o = x

	case fusekernel.OpRmdir:
		name, nameErr := consumeNodeName(h.Opcode, inMsg)
		if nameErr != nil {
			err = nameErr
			return
		}
		x := &RmDirOp{}
		x.Header = hdr
		x.Parent = inode
		x.Name = name
		o = x

	case fusekernel.OpUnlink:
		name, nameErr := consumeNodeName(h.Opcode, inMsg)
		if nameErr != nil {
			err = nameErr
			return
		}
		x := &UnlinkOp{}
		x.Header = hdr
		x.Parent = inode
		x.Name = name
		o = x

	case fusekernel.OpOpendir:
		in := consume[fusekernel.OpenIn](inMsg)
		if in == nil {
			err = buffer.UnexpectedEOF{Got: inMsg.Len(), Want: int(unsafe.Sizeof(fusekernel.OpenIn{}))}
			return
		}
		x := &OpenDirOp{}
		x.Header = hdr
		x.Inode = inode
		x.Flags = fuseops.OpenFlags(in.Flags)
		o = x

	case fusekernel.OpReaddir, fusekernel.OpReaddirplus:
		in := consume[fusekernel.ReadDirIn](inMsg)
		if in == nil {
			err = buffer.UnexpectedEOF{Got: inMsg.Len(), Want: int(unsafe.Sizeof(fusekernel.ReadDirIn{}))}
			return
		}
		x := &ReadDirOp{}
		x.Header = hdr
		x.Inode = inode
		x.Handle = fuseops.HandleID(in.Fh)
		x.Offset = fuseops.DirOffset(in.Offset)
		x.Size = int(in.Size)
		o = x

	case fusekernel.OpReleasedir:
		in := consume[fusekernel.ReleaseIn](inMsg)
		if in == nil {
			err = buffer.UnexpectedEOF{Got: inMsg.Len(), Want: int(unsafe.Sizeof(fusekernel.ReleaseIn{}))}
			return
		}
		x := &ReleaseDirHandleOp{}
		x.Header = hdr
		x.Handle = fuseops.HandleID(in.Fh)
		o = x

	case fusekernel.OpFsyncdir:
		in := consume[fusekernel.FsyncIn](inMsg)
		if in == nil {
			err = buffer.UnexpectedEOF{Got: inMsg.Len(), Want: int(unsafe.Sizeof(fusekernel.FsyncIn{}))}
			return
		}
		x := &FsyncDirOp{}
		x.Header = hdr
		x.Inode = inode
		x.Handle = fuseops.HandleID(in.Fh)
		if in.FsyncFlags&fusekernel.FsyncFdatasync != 0 {
			x.Flags = fuseops.FsyncDataSync
		}
		o = x

	case fusekernel.OpOpen:
		in := consume[fusekernel.OpenIn](inMsg)
		if in == nil {
			err = buffer.UnexpectedEOF{Got: inMsg.Len(), Want: int(unsafe.Sizeof(fusekernel.OpenIn{}))}
			return
		}
		x := &OpenFileOp{}
		x.Header = hdr
		x.Inode = inode
		x.Flags = fuseops.OpenFlags(in.Flags)
		o = x

	case fusekernel.OpRead:
		in := consume[fusekernel.ReadIn](inMsg)
		if in == nil {
			err = buffer.UnexpectedEOF{Got: inMsg.Len(), Want: int(unsafe.Sizeof(fusekernel.ReadIn{}))}
			return
		}
		x := &ReadFileOp{}
		x.Header = hdr
		x.Inode = inode
		x.Handle = fuseops.HandleID(in.Fh)
		x.Offset = int64(in.Offset)
		x.Size = int(in.Size)
		o = x

	case fusekernel.OpWrite:
		in := consume[fusekernel.WriteIn](inMsg)
		if in == nil {
			err = buffer.UnexpectedEOF{Got: inMsg.Len(), Want: int(unsafe.Sizeof(fusekernel.WriteIn{}))}
			return
		}
		data := inMsg.ConsumeBytes(uintptr(in.Size))
		if data == nil {
			err = buffer.UnexpectedEOF{Got: inMsg.Len(), Want: int(in.Size)}
			return
		}
		x := &WriteFileOp{}
		x.Header = hdr
		x.Inode = inode
		x.Handle = fuseops.HandleID(in.Fh)
		x.Offset = int64(in.Offset)
		x.Data = data
		o = x

	case fusekernel.OpFsync:
		in := consume[fusekernel.FsyncIn](inMsg)
		if in == nil {
			err = buffer.UnexpectedEOF{Got: inMsg.Len(), Want: int(unsafe.Sizeof(fusekernel.FsyncIn{}))}
			return
		}
		x := &SyncFileOp{}
		x.Header = hdr
		x.Inode = inode
		x.Handle = fuseops.HandleID(in.Fh)
		o = x

	case fusekernel.OpFlush:
		in := consume[fusekernel.FlushIn](inMsg)
		if in == nil {
			err = buffer.UnexpectedEOF{Got: inMsg.Len(), Want: int(unsafe.Sizeof(fusekernel.FlushIn{}))}
			return
		}
		x := &FlushFileOp{}
		x.Header = hdr
		x.Inode = inode
		x.Handle = fuseops.HandleID(in.Fh)
		x.LockOwner = in.LockOwner
		o = x

	case fusekernel.OpRelease:
		in := consume[fusekernel.ReleaseIn](inMsg)
		if in == nil {
			err = buffer.UnexpectedEOF{Got: inMsg.Len(), Want: int(unsafe.Sizeof(fusekernel.ReleaseIn{}))}
			return
		}
		x := &ReleaseFileHandleOp{}
		x.Header = hdr
		x.Handle = fuseops.HandleID(in.Fh)
		o = x

	case fusekernel.OpFallocate:
		in := consume[fusekernel.FallocateIn](inMsg)
		if in == nil {
			err = buffer.UnexpectedEOF{Got: inMsg.Len(), Want: int(unsafe.Sizeof(fusekernel.FallocateIn{}))}
			return
		}
		x := &FAllocateOp{}
		x.Header = hdr
		x.Inode = inode
		x.Handle = fuseops.HandleID(in.Fh)
		x.Offset = in.Offset
		x.Length = in.Length
		x.Mode = in.Mode
		o = x

	case fusekernel.OpGetxattr:
		in := consume[fusekernel.GetxattrIn](inMsg)
		if in == nil {
			err = buffer.UnexpectedEOF{Got: inMsg.Len(), Want: int(unsafe.Sizeof(fusekernel.GetxattrIn{}))}
			return
		}
		name, nameErr := consumeXattrName(h.Opcode, inMsg)
		if nameErr != nil {
			err = nameErr
			return
		}
		x := &GetXattrOp{}
		x.Header = hdr
		x.Inode = inode
		x.Name = name
		x.Size = in.Size
		o = x

	case fusekernel.OpListxattr:
		in := consume[fusekernel.GetxattrIn](inMsg)
		if in == nil {
			err = buffer.UnexpectedEOF{Got: inMsg.Len(), Want: int(unsafe.Sizeof(fusekernel.GetxattrIn{}))}
			return
		}
		x := &ListXattrOp{}
		x.Header = hdr
		x.Inode = inode
		x.Size = in.Size
		o = x

	case fusekernel.OpSetxattr:
		in := consume[fusekernel.SetxattrIn](inMsg)
		if in == nil {
			err = buffer.UnexpectedEOF{Got: inMsg.Len(), Want: int(unsafe.Sizeof(fusekernel.SetxattrIn{}))}
			return
		}
		name, nameErr := consumeXattrName(h.Opcode, inMsg)
		if nameErr != nil {
			err = nameErr
			return
		}
		value := inMsg.ConsumeBytes(uintptr(in.Size))
		if value == nil {
			err = buffer.UnexpectedEOF{Got: inMsg.Len(), Want: int(in.Size)}
			return
		}
		x := &SetXattrOp{}
		x.Header = hdr
		x.Inode = inode
		x.Name = name
		x.Value = value
		x.Flags = in.Flags
		o = x

	case fusekernel.OpRemovexattr:
		name, nameErr := consumeXattrName(h.Opcode, inMsg)
		if nameErr != nil {
			err = nameErr
			return
		}
		x := &RemoveXattrOp{}
		x.Header = hdr
		x.Inode = inode
		x.Name = name
		o = x

	case fusekernel.OpGetlk:
		in := consume[fusekernel.LkIn](inMsg)
		if in == nil {
			err = buffer.UnexpectedEOF{Got: inMsg.Len(), Want: int(unsafe.Sizeof(fusekernel.LkIn{}))}
			return
		}
		x := &GetLkOp{}
		x.Header = hdr
		x.Inode = inode
		x.Handle = fuseops.HandleID(in.Fh)
		x.Lock = convertWireLock(&in.Lk, in.Owner)
		o = x

	case fusekernel.OpSetlk, fusekernel.OpSetlkw:
		in := consume[fusekernel.LkIn](inMsg)
		if in == nil {
			err = buffer.UnexpectedEOF{Got: inMsg.Len(), Want: int(unsafe.Sizeof(fusekernel.LkIn{}))}
			return
		}
		x := &SetLkOp{}
		x.Header = hdr
		x.Inode = inode
		x.Handle = fuseops.HandleID(in.Fh)
		x.Lock = convertWireLock(&in.Lk, in.Owner)
		x.Block = h.Opcode == fusekernel.OpSetlkw
		o = x

	case fusekernel.OpAccess:
		in := consume[fusekernel.AccessIn](inMsg)
		if in == nil {
			err = buffer.UnexpectedEOF{Got: inMsg.Len(), Want: int(unsafe.Sizeof(fusekernel.AccessIn{}))}
			return
		}
		x := &AccessOp{}
		x.Header = hdr
		x.Inode = inode
		x.Mask = in.Mask
		o = x

	case fusekernel.OpStatfs:
		x := &StatFSOp{}
		x.Header = hdr
		o = x

	case fusekernel.OpBmap:
		in := consume[fusekernel.BmapIn](inMsg)
		if in == nil {
			err = buffer.UnexpectedEOF{Got: inMsg.Len(), Want: int(unsafe.Sizeof(fusekernel.BmapIn{}))}
			return
		}
		x := &BmapOp{}
		x.Header = hdr
		x.Inode = inode
		x.BlockSize = in.Blocksize
		x.Block = in.Block
		o = x

	case fusekernel.OpLseek:
		in := consume[fusekernel.LseekIn](inMsg)
		if in == nil {
			err = buffer.UnexpectedEOF{Got: inMsg.Len(), Want: int(unsafe.Sizeof(fusekernel.LseekIn{}))}
			return
		}
		x := &LseekOp{}
		x.Header = hdr
		x.Inode = inode
		x.Handle = fuseops.HandleID(in.Fh)
		x.Offset = int64(in.Offset)
		x.Whence = fuseops.SeekWhence(in.Whence)
		o = x

	case fusekernel.OpCopyFileRange:
		in := consume[fusekernel.CopyFileRangeIn](inMsg)
		if in == nil {
			err = buffer.UnexpectedEOF{Got: inMsg.Len(), Want: int(unsafe.Sizeof(fusekernel.CopyFileRangeIn{}))}
			return
		}
		x := &CopyFileRangeOp{}
		x.Header = hdr
		x.InInode = inode
		x.InHandle = fuseops.HandleID(in.FhIn)
		x.InOffset = int64(in.OffIn)
		x.OutInode = fuseops.InodeID(in.NodeIdOut)
		x.OutHandle = fuseops.HandleID(in.FhOut)
		x.OutOffset = int64(in.OffOut)
		x.Length = in.Len
		x.Flags = in.Flags
		o = x

	case fusekernel.OpIoctl:
		in := consume[fusekernel.IoctlIn](inMsg)
		if in == nil {
			err = buffer.UnexpectedEOF{Got: inMsg.Len(), Want: int(unsafe.Sizeof(fusekernel.IoctlIn{}))}
			return
		}
		inData := inMsg.ConsumeBytes(uintptr(in.InSize))
		if inData == nil && in.InSize != 0 {
			err = buffer.UnexpectedEOF{Got: inMsg.Len(), Want: int(in.InSize)}
			return
		}
		x := &IoctlOp{}
		x.Header = hdr
		x.Inode = inode
		x.Handle = fuseops.HandleID(in.Fh)
		x.Cmd = in.Cmd
		x.Arg = in.Arg
		x.InData = inData
		x.OutSize = in.OutSize
		o = x

	case fusekernel.OpPoll:
		in := consume[fusekernel.PollIn](inMsg)
		if in == nil {
			err = buffer.UnexpectedEOF{Got: inMsg.Len(), Want: int(unsafe.Sizeof(fusekernel.PollIn{}))}
			return
		}
		x := &PollOp{}
		x.Header = hdr
		x.Inode = inode
		x.Handle = fuseops.HandleID(in.Fh)
		o = x

	case fusekernel.OpNotifyReply:
		in := consume[fusekernel.NotifyRetrieveIn](inMsg)
		if in == nil {
			err = buffer.UnexpectedEOF{Got: inMsg.Len(), Want: int(unsafe.Sizeof(fusekernel.NotifyRetrieveIn{}))}
			return
		}
		data := inMsg.ConsumeBytes(uintptr(in.Size))
		x := &NotifyReplyOp{}
		x.Header = hdr
		x.Inode = inode
		x.Offset = in.Offset
		x.Data = data
		o = x

	case fusekernel.OpInterrupt:
		in := consume[fusekernel.InterruptIn](inMsg)
		if in == nil {
			err = buffer.UnexpectedEOF{Got: inMsg.Len(), Want: int(unsafe.Sizeof(fusekernel.InterruptIn{}))}
			return
		}
		o = &interruptOp{FuseID: in.Unique}

	case fusekernel.OpCuseInit:
		in := consume[fusekernel.CuseInitIn](inMsg)
		if in == nil {
			err = buffer.UnexpectedEOF{Got: inMsg.Len(), Want: int(unsafe.Sizeof(fusekernel.CuseInitIn{}))}
			return
		}
		o = &initOp{
			Kernel: fusekernel.Protocol{Major: in.Major, Minor: in.Minor},
		}

	default:
		o = &unknownOp{opcode: h.Opcode, inode: inode}
	}

	return
}

// consume reads sizeof(T) bytes off the front of m and reinterprets them in
// place as *T, or returns nil if fewer than that many bytes remain.
func consume[T any](m *buffer.InMessage) *T {
	var zero T
	n := unsafe.Sizeof(zero)
	p := m.Consume(n)
	if p == nil {
		return nil
	}
	return (*T)(p)
}

// consumeCString consumes bytes up to and including the first NUL found in
// m's remaining payload, returning the string with the NUL stripped. Bytes
// after the NUL (further fields, e.g. a second name in RenameOp) are left
// unconsumed for subsequent decode calls.
func consumeCString(m *buffer.InMessage) (s string, ok bool) {
	i := bytes.IndexByte(m.Remaining(), 0)
	if i < 0 {
		return "", false
	}

	b := m.ConsumeBytes(uintptr(i + 1))
	if b == nil {
		return "", false
	}
	return string(b[:i]), true
}

// consumeNodeName consumes a NUL-terminated path component the same way
// consumeCString does, additionally rejecting it per fuseops.NewNodeName
// (empty, NUL-containing, or "."/".."). The kernel never legitimately sends
// such a component as a directory entry name.
func consumeNodeName(opcode fusekernel.Opcode, m *buffer.InMessage) (name string, err error) {
	s, ok := consumeCString(m)
	if !ok {
		return "", buffer.UnexpectedEOF{Got: m.Len(), Want: 1}
	}
	if _, ok := fuseops.NewNodeName([]byte(s)); !ok {
		return "", InvalidName{Opcode: uint32(opcode), Name: s}
	}
	return s, nil
}

// consumeXattrName is consumeNodeName's counterpart for extended attribute
// names, validated per fuseops.NewXattrName.
func consumeXattrName(opcode fusekernel.Opcode, m *buffer.InMessage) (name string, err error) {
	s, ok := consumeCString(m)
	if !ok {
		return "", buffer.UnexpectedEOF{Got: m.Len(), Want: 1}
	}
	if _, ok := fuseops.NewXattrName([]byte(s)); !ok {
		return "", InvalidName{Opcode: uint32(opcode), Name: s}
	}
	return s, nil
}

// convertWireLock translates a wire FileLock plus its owner into a
// fuseops.Lock.
func convertWireLock(in *fusekernel.FileLock, owner uint64) fuseops.Lock {
	l := fuseops.Lock{
		Range: fuseops.LockRange{Start: in.Start, End: in.End},
		Owner: owner,
		Pid:   in.Pid,
	}
	switch fusekernel.LockType(in.Type) {
	case fusekernel.LockTypeRead:
		l.Type = fuseops.ReadLock
	case fusekernel.LockTypeWrite:
		l.Type = fuseops.WriteLock
	default:
		l.Type = fuseops.UnlockLock
	}
	return l
}

// interruptOp is handled inline by Connection.ReadOp; it is never
// dispatched to a FileSystem, so it lives alongside the decoder rather
// than in ops.go.
type interruptOp struct {
	FuseID uint64
}

func (o *interruptOp) ShortDesc() string {
	return fmt.Sprintf("Interrupt(fuseID=%d)", o.FuseID)
}

func (o *interruptOp) kernelResponse(fusekernel.Protocol, *buffer.OutMessage) {}
