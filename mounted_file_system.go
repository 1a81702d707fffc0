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
	"fmt"
	"log"
	"os"
)

// A type that knows how to serve ops read from a connection.
type Server interface {
	// Read and serve ops from the supplied connection until EOF.
	ServeOps(*Connection)
}

// A struct representing the status of a mount operation, with a method that
// waits for unmounting.
type MountedFileSystem struct {
	dir string

	// The result to return from Join. Not valid until the channel is closed.
	joinStatus          error
	joinStatusAvailable chan struct{}
}

// Return the directory on which the file system is mounted (or where we
// attempted to mount it.)
func (mfs *MountedFileSystem) Dir() string {
	return mfs.dir
}

// Block until a mounted file system has been unmounted. The return value will
// be non-nil if anything unexpected happened while serving. May be called
// multiple times.
func (mfs *MountedFileSystem) Join(ctx context.Context) error {
	select {
	case <-mfs.joinStatusAvailable:
		return mfs.joinStatus
	case <-ctx.Done():
		return ctx.Err()
	}
}

// MountConfig is the optional configuration accepted by Mount. Most fields
// mirror a flag the kernel advertises during FUSE_INIT. The connection turns
// on EnableSymlinkCaching, EnableNoOpenSupport and EnableNoOpendirSupport
// only if the kernel offered them too; the other flags are requested whenever
// the host sets them.
type MountConfig struct {
	// The parent context used for every op handled on this connection.
	OpContext context.Context

	// Ask the kernel for asynchronous, out-of-order read requests.
	EnableAsyncReads bool

	// Disable write-back caching, which is on by default.
	DisableWritebackCaching bool

	// Allow the kernel to cache symlink targets in its page cache.
	EnableSymlinkCaching bool

	// Tell the kernel that returning ENOSYS from OpenFile means no per-file
	// state is needed, letting it skip the open call for files it already
	// has cached state for (Linux >= 3.16).
	EnableNoOpenSupport bool

	// As EnableNoOpenSupport, but for OpenDir (Linux >= 5.1).
	EnableNoOpendirSupport bool

	// Allow the kernel to send concurrent lookup and readdir requests.
	EnableParallelDirOps bool

	// Allow the kernel to perform atomic, in-kernel O_TRUNC opens.
	EnableAtomicTrunc bool

	// Enable use of the combined readdir+lookup opcode.
	EnableReaddirplus bool

	// When EnableReaddirplus is set, let the kernel choose adaptively between
	// Readdir and Readdirplus rather than always using the latter.
	EnableAutoReaddirplus bool

	// OS X only. Restores entry caching in the kernel, which osxfuse disables
	// by default because it never honors our expiration times. This package
	// mounts only on Linux, and Connection.Init does not read this field.
	EnableVnodeCaching bool
}

// Mount opens the kernel device node /dev/fuse, performs the mount(2) syscall binding it to dir, and returns a
// MountedFileSystem whose connection is served in the background by server.
// This function blocks until the connection has completed its FUSE_INIT
// handshake with the kernel.
func Mount(
	dir string,
	server Server,
	config *MountConfig) (mfs *MountedFileSystem, err error) {
	logger := getLogger()

	mfs = &MountedFileSystem{
		dir:                 dir,
		joinStatusAvailable: make(chan struct{}),
	}

	logger.Println("Opening /dev/fuse.")
	dev, err := os.OpenFile("/dev/fuse", os.O_RDWR, 0)
	if err != nil {
		err = fmt.Errorf("open /dev/fuse: %v", err)
		return
	}

	if err = mount(dir, dev); err != nil {
		dev.Close()
		err = fmt.Errorf("mount: %v", err)
		return
	}

	cfg := *config
	if cfg.OpContext == nil {
		cfg.OpContext = context.Background()
	}

	errorLogger := log.New(os.Stderr, "fuse: ", log.Ldate|log.Ltime|log.Lmicroseconds|log.Lshortfile)

	connection, err := newConnection(
		cfg,
		getLogger(),
		errorLogger,
		newFileChannel(dev))
	if err != nil {
		unmount(dir)
		dev.Close()
		err = fmt.Errorf("newConnection: %v", err)
		return
	}

	go func() {
		server.ServeOps(connection)
		mfs.joinStatus = connection.close()
		unmount(dir)
		close(mfs.joinStatusAvailable)
	}()

	return
}
