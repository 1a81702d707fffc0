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
	"context"
	"syscall"
)

// NotImplementedFileSystem answers every op with ENOSYS. Embed this in your
// struct to inherit defaults for the methods you don't care about, so your
// type keeps implementing FileSystem even as new methods are added.
type NotImplementedFileSystem struct{}

var _ FileSystem = &NotImplementedFileSystem{}

func (fs *NotImplementedFileSystem) LookUpInode(context.Context, *LookUpInodeOp) error {
	return syscall.ENOSYS
}

func (fs *NotImplementedFileSystem) GetInodeAttributes(context.Context, *GetInodeAttributesOp) error {
	return syscall.ENOSYS
}

func (fs *NotImplementedFileSystem) SetInodeAttributes(context.Context, *SetInodeAttributesOp) error {
	return syscall.ENOSYS
}

func (fs *NotImplementedFileSystem) ForgetInode(context.Context, *ForgetInodeOp) error {
	return syscall.ENOSYS
}

func (fs *NotImplementedFileSystem) BatchForget(context.Context, *BatchForgetOp) error {
	return syscall.ENOSYS
}

func (fs *NotImplementedFileSystem) MkDir(context.Context, *MkDirOp) error {
	return syscall.ENOSYS
}

func (fs *NotImplementedFileSystem) MkNode(context.Context, *MkNodeOp) error {
	return syscall.ENOSYS
}

func (fs *NotImplementedFileSystem) CreateFile(context.Context, *CreateFileOp) error {
	return syscall.ENOSYS
}

func (fs *NotImplementedFileSystem) CreateLink(context.Context, *CreateLinkOp) error {
	return syscall.ENOSYS
}

func (fs *NotImplementedFileSystem) CreateSymlink(context.Context, *CreateSymlinkOp) error {
	return syscall.ENOSYS
}

func (fs *NotImplementedFileSystem) Rename(context.Context, *RenameOp) error {
	return syscall.ENOSYS
}

func (fs *NotImplementedFileSystem) RmDir(context.Context, *RmDirOp) error {
	return syscall.ENOSYS
}

func (fs *NotImplementedFileSystem) Unlink(context.Context, *UnlinkOp) error {
	return syscall.ENOSYS
}

func (fs *NotImplementedFileSystem) ReadSymlink(context.Context, *ReadSymlinkOp) error {
	return syscall.ENOSYS
}

func (fs *NotImplementedFileSystem) OpenDir(context.Context, *OpenDirOp) error {
	return syscall.ENOSYS
}

func (fs *NotImplementedFileSystem) ReadDir(context.Context, *ReadDirOp) error {
	return syscall.ENOSYS
}

func (fs *NotImplementedFileSystem) ReleaseDirHandle(context.Context, *ReleaseDirHandleOp) error {
	return syscall.ENOSYS
}

func (fs *NotImplementedFileSystem) FsyncDir(context.Context, *FsyncDirOp) error {
	return syscall.ENOSYS
}

func (fs *NotImplementedFileSystem) OpenFile(context.Context, *OpenFileOp) error {
	return syscall.ENOSYS
}

func (fs *NotImplementedFileSystem) ReadFile(context.Context, *ReadFileOp) error {
	return syscall.ENOSYS
}

func (fs *NotImplementedFileSystem) WriteFile(context.Context, *WriteFileOp) error {
	return syscall.ENOSYS
}

func (fs *NotImplementedFileSystem) SyncFile(context.Context, *SyncFileOp) error {
	return syscall.ENOSYS
}

func (fs *NotImplementedFileSystem) FlushFile(context.Context, *FlushFileOp) error {
	return syscall.ENOSYS
}

func (fs *NotImplementedFileSystem) ReleaseFileHandle(context.Context, *ReleaseFileHandleOp) error {
	return syscall.ENOSYS
}

func (fs *NotImplementedFileSystem) FAllocate(context.Context, *FAllocateOp) error {
	return syscall.ENOSYS
}

func (fs *NotImplementedFileSystem) GetXattr(context.Context, *GetXattrOp) error {
	return syscall.ENOSYS
}

func (fs *NotImplementedFileSystem) ListXattr(context.Context, *ListXattrOp) error {
	return syscall.ENOSYS
}

func (fs *NotImplementedFileSystem) SetXattr(context.Context, *SetXattrOp) error {
	return syscall.ENOSYS
}

func (fs *NotImplementedFileSystem) RemoveXattr(context.Context, *RemoveXattrOp) error {
	return syscall.ENOSYS
}

func (fs *NotImplementedFileSystem) GetLk(context.Context, *GetLkOp) error {
	return syscall.ENOSYS
}

func (fs *NotImplementedFileSystem) SetLk(context.Context, *SetLkOp) error {
	return syscall.ENOSYS
}

func (fs *NotImplementedFileSystem) Access(context.Context, *AccessOp) error {
	return syscall.ENOSYS
}

func (fs *NotImplementedFileSystem) StatFS(context.Context, *StatFSOp) error {
	return syscall.ENOSYS
}

func (fs *NotImplementedFileSystem) Bmap(context.Context, *BmapOp) error {
	return syscall.ENOSYS
}

func (fs *NotImplementedFileSystem) Lseek(context.Context, *LseekOp) error {
	return syscall.ENOSYS
}

func (fs *NotImplementedFileSystem) CopyFileRange(context.Context, *CopyFileRangeOp) error {
	return syscall.ENOSYS
}

func (fs *NotImplementedFileSystem) Ioctl(context.Context, *IoctlOp) error {
	return syscall.ENOSYS
}

func (fs *NotImplementedFileSystem) Poll(context.Context, *PollOp) error {
	return syscall.ENOSYS
}

func (fs *NotImplementedFileSystem) Destroy() {}
