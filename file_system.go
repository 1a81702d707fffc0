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

import "context"

// FileSystem must be implemented by anything mounted with Mount or served
// over a raw Connection. Each method is invoked with the context returned
// alongside the op by Connection.ReadOp and must return the error (nil on
// success) to give to Connection.Reply.
//
// Not all methods need an interesting implementation. Embed a field of type
// NotImplementedFileSystem to inherit defaults that return ENOSYS.
//
// Must be safe for concurrent access via all methods.
type FileSystem interface {
	///////////////////////////////////
	// Inodes
	///////////////////////////////////

	// Look up a child by name within a parent directory. The kernel calls this
	// when resolving user paths to dentry structs, which are then cached.
	LookUpInode(ctx context.Context, op *LookUpInodeOp) error

	// Refresh the attributes for an inode whose ID was previously returned by
	// LookUpInode. The kernel calls this when the FUSE VFS layer's cache of
	// inode attributes is stale, per the AttributesExpiration field of a prior
	// response.
	GetInodeAttributes(ctx context.Context, op *GetInodeAttributesOp) error

	// Change attributes for an inode. The kernel calls this for obvious cases
	// like chmod(2), and for less obvious cases like ftruncate(2).
	SetInodeAttributes(ctx context.Context, op *SetInodeAttributesOp) error

	// Forget an inode ID previously issued (e.g. by LookUpInode or MkDir). The
	// kernel calls this when removing an inode from its internal caches. No
	// response is sent to the kernel for this op.
	ForgetInode(ctx context.Context, op *ForgetInodeOp) error

	// Forget a batch of inode IDs in one request, equivalent to calling
	// ForgetInode once per entry. No response is sent to the kernel.
	BatchForget(ctx context.Context, op *BatchForgetOp) error

	///////////////////////////////////
	// Inode creation
	///////////////////////////////////

	// Create a directory inode as a child of an existing directory inode. The
	// kernel sends this in response to a mkdir(2) call.
	MkDir(ctx context.Context, op *MkDirOp) error

	// Create a device, FIFO, or socket node as a child of an existing
	// directory inode. The kernel sends this in response to a mknod(2) call,
	// and also for regular files when CreateFile is not supported by the
	// mount (rare).
	MkNode(ctx context.Context, op *MkNodeOp) error

	// Create a file inode and open it. The kernel calls this when the user
	// asks to open a file with O_CREAT and has observed the file doesn't
	// exist. File systems that can't be sure of this should check themselves
	// and return EEXIST when the file already exists.
	CreateFile(ctx context.Context, op *CreateFileOp) error

	// Create a hard link to an existing inode as a child of a directory inode.
	CreateLink(ctx context.Context, op *CreateLinkOp) error

	// Create a symlink inode as a child of an existing directory inode.
	CreateSymlink(ctx context.Context, op *CreateSymlinkOp) error

	// Rename a file or directory, possibly between two different parent
	// directories. Implementations of RENAME_EXCHANGE and RENAME_NOREPLACE
	// semantics are driven by the flags embedded in op.
	Rename(ctx context.Context, op *RenameOp) error

	///////////////////////////////////
	// Inode destruction
	///////////////////////////////////

	// Unlink a directory from its parent. The file system is responsible for
	// checking that the directory is empty.
	RmDir(ctx context.Context, op *RmDirOp) error

	// Unlink a file from its parent. If this brings the inode's link count to
	// zero, the inode should be deleted once the kernel calls ForgetInode.
	Unlink(ctx context.Context, op *UnlinkOp) error

	///////////////////////////////////
	// Symlinks
	///////////////////////////////////

	// Read the target of a symlink inode.
	ReadSymlink(ctx context.Context, op *ReadSymlinkOp) error

	///////////////////////////////////
	// Directory handles
	///////////////////////////////////

	// Open a directory inode, yielding a handle for later ReadDir and
	// ReleaseDirHandle calls.
	OpenDir(ctx context.Context, op *OpenDirOp) error

	// Read entries from a directory previously opened with OpenDir, starting
	// at op.Offset (an opaque cursor previously returned in a Dirent, or zero
	// to start from the beginning).
	ReadDir(ctx context.Context, op *ReadDirOp) error

	// Release a previously minted directory handle.
	ReleaseDirHandle(ctx context.Context, op *ReleaseDirHandleOp) error

	// Flush any buffered changes for an open directory handle to durable
	// storage.
	FsyncDir(ctx context.Context, op *FsyncDirOp) error

	///////////////////////////////////
	// File handles
	///////////////////////////////////

	// Open a file inode, yielding a handle for later I/O calls.
	OpenFile(ctx context.Context, op *OpenFileOp) error

	// Read data from a file previously opened with OpenFile or CreateFile.
	ReadFile(ctx context.Context, op *ReadFileOp) error

	// Write data to a file previously opened with OpenFile or CreateFile.
	WriteFile(ctx context.Context, op *WriteFileOp) error

	// Flush the contents of a file previously opened for writing to durable
	// storage, mirroring fsync(2).
	SyncFile(ctx context.Context, op *SyncFileOp) error

	// Handle a close(2) call on one of possibly several open file descriptors
	// for the same handle. FlushFile may be called multiple times per handle,
	// unlike ReleaseFileHandle.
	FlushFile(ctx context.Context, op *FlushFileOp) error

	// Release a previously minted file handle.
	ReleaseFileHandle(ctx context.Context, op *ReleaseFileHandleOp) error

	// Preallocate space for a file previously opened for writing, per
	// fallocate(2).
	FAllocate(ctx context.Context, op *FAllocateOp) error

	///////////////////////////////////
	// Extended attributes
	///////////////////////////////////

	GetXattr(ctx context.Context, op *GetXattrOp) error
	ListXattr(ctx context.Context, op *ListXattrOp) error
	SetXattr(ctx context.Context, op *SetXattrOp) error
	RemoveXattr(ctx context.Context, op *RemoveXattrOp) error

	///////////////////////////////////
	// Locks
	///////////////////////////////////

	GetLk(ctx context.Context, op *GetLkOp) error
	SetLk(ctx context.Context, op *SetLkOp) error

	///////////////////////////////////
	// Misc
	///////////////////////////////////

	// Check whether the calling user has the permission described by op for
	// an inode, per access(2).
	Access(ctx context.Context, op *AccessOp) error

	// Report file system-wide statistics, per statfs(2).
	StatFS(ctx context.Context, op *StatFSOp) error

	// Map a file's logical block to a physical one, per FIBMAP.
	Bmap(ctx context.Context, op *BmapOp) error

	// Reposition a file handle's offset for the SEEK_DATA/SEEK_HOLE variants
	// of lseek(2) that the kernel cannot resolve on its own.
	Lseek(ctx context.Context, op *LseekOp) error

	// Copy a range of bytes from one file handle to another without a
	// userspace round trip, per copy_file_range(2).
	CopyFileRange(ctx context.Context, op *CopyFileRangeOp) error

	// Handle a device-specific ioctl(2), primarily used by CUSE character
	// devices.
	Ioctl(ctx context.Context, op *IoctlOp) error

	// Handle a poll(2) readiness check, primarily used by CUSE character
	// devices.
	Poll(ctx context.Context, op *PollOp) error

	// Destroy is called once when the connection to the kernel is being torn
	// down, after all other ops have been replied to. It takes no op because
	// FUSE_DESTROY carries no request fields; the server answers FUSE_DESTROY
	// itself.
	Destroy()
}
