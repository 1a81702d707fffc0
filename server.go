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
	"flag"
	"io"
	"math/rand"
	"sync"
	"syscall"
	"time"
)

var fRandomDelays = flag.Bool(
	"fuse.random_delays",
	false,
	"If set, randomly delay each op received, to help expose concurrency issues.")

// NewFileSystemServer returns a Server that dispatches each op read from a
// Connection to the matching FileSystem method, replying with whatever
// error it returns.
//
// Each call to a FileSystem method is made on its own goroutine and is free
// to block; it is safe to process ops concurrently because the kernel
// already serializes operations the user expects to happen in order (cf.
// fuse-devel thread "Fuse guarantees on concurrent requests").
func NewFileSystemServer(fs FileSystem) Server {
	return &fileSystemServer{fs: fs}
}

type fileSystemServer struct {
	fs FileSystem
}

func (s *fileSystemServer) ServeOps(c *Connection) {
	// Handlers still running when ReadOp returns io.EOF are waited for before
	// Destroy is called.
	var wg sync.WaitGroup
	for {
		ctx, op, err := c.ReadOp()
		if err == io.EOF {
			break
		}

		if err != nil {
			panic(err)
		}

		if op == nil {
			continue
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			s.handleOp(c, ctx, op)
		}()
	}

	wg.Wait()
	s.fs.Destroy()
}

func (s *fileSystemServer) handleOp(c *Connection, ctx context.Context, op interface{}) {
	if *fRandomDelays {
		const delayLimit = 100 * time.Microsecond
		delay := time.Duration(rand.Int63n(int64(delayLimit)))
		time.Sleep(delay)
	}

	opErr := s.dispatch(ctx, op)
	if err := c.Reply(ctx, opErr); err != nil {
		if c.errorLogger != nil {
			c.errorLogger.Printf("Reply: %v", err)
		}
	}
}

// dispatch routes op to the matching FileSystem method. Init and interrupt
// ops never reach here: Connection.Init and ReadOp handle them directly. A
// destroyOp is answered with success; FileSystem.Destroy runs once ServeOps
// stops reading. Any other op without a FileSystem method (NotifyReplyOp,
// unknown opcodes) is answered ENOSYS.
func (s *fileSystemServer) dispatch(ctx context.Context, op interface{}) error {
	switch typed := op.(type) {
	case *LookUpInodeOp:
		return s.fs.LookUpInode(ctx, typed)
	case *GetInodeAttributesOp:
		return s.fs.GetInodeAttributes(ctx, typed)
	case *SetInodeAttributesOp:
		return s.fs.SetInodeAttributes(ctx, typed)
	case *ForgetInodeOp:
		return s.fs.ForgetInode(ctx, typed)
	case *BatchForgetOp:
		return s.fs.BatchForget(ctx, typed)
	case *MkDirOp:
		return s.fs.MkDir(ctx, typed)
	case *MkNodeOp:
		return s.fs.MkNode(ctx, typed)
	case *CreateFileOp:
		return s.fs.CreateFile(ctx, typed)
	case *CreateLinkOp:
		return s.fs.CreateLink(ctx, typed)
	case *CreateSymlinkOp:
		return s.fs.CreateSymlink(ctx, typed)
	case *RenameOp:
		return s.fs.Rename(ctx, typed)
	case *RmDirOp:
		return s.fs.RmDir(ctx, typed)
	case *UnlinkOp:
		return s.fs.Unlink(ctx, typed)
	case *ReadSymlinkOp:
		return s.fs.ReadSymlink(ctx, typed)
	case *OpenDirOp:
		return s.fs.OpenDir(ctx, typed)
	case *ReadDirOp:
		return s.fs.ReadDir(ctx, typed)
	case *ReleaseDirHandleOp:
		return s.fs.ReleaseDirHandle(ctx, typed)
	case *FsyncDirOp:
		return s.fs.FsyncDir(ctx, typed)
	case *OpenFileOp:
		return s.fs.OpenFile(ctx, typed)
	case *ReadFileOp:
		return s.fs.ReadFile(ctx, typed)
	case *WriteFileOp:
		return s.fs.WriteFile(ctx, typed)
	case *SyncFileOp:
		return s.fs.SyncFile(ctx, typed)
	case *FlushFileOp:
		return s.fs.FlushFile(ctx, typed)
	case *ReleaseFileHandleOp:
		return s.fs.ReleaseFileHandle(ctx, typed)
	case *FAllocateOp:
		return s.fs.FAllocate(ctx, typed)
	case *GetXattrOp:
		return s.fs.GetXattr(ctx, typed)
	case *ListXattrOp:
		return s.fs.ListXattr(ctx, typed)
	case *SetXattrOp:
		return s.fs.SetXattr(ctx, typed)
	case *RemoveXattrOp:
		return s.fs.RemoveXattr(ctx, typed)
	case *GetLkOp:
		return s.fs.GetLk(ctx, typed)
	case *SetLkOp:
		return s.fs.SetLk(ctx, typed)
	case *AccessOp:
		return s.fs.Access(ctx, typed)
	case *StatFSOp:
		return s.fs.StatFS(ctx, typed)
	case *BmapOp:
		return s.fs.Bmap(ctx, typed)
	case *LseekOp:
		return s.fs.Lseek(ctx, typed)
	case *CopyFileRangeOp:
		return s.fs.CopyFileRange(ctx, typed)
	case *IoctlOp:
		return s.fs.Ioctl(ctx, typed)
	case *PollOp:
		return s.fs.Poll(ctx, typed)
	case *destroyOp:
		return nil
	default:
		return syscall.ENOSYS
	}
}
