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
	"syscall"
)

// Errors corresponding to kernel error numbers. These may be treated
// specially when returned by a FileSystem method.
const (
	EIO       = syscall.EIO
	ENOENT    = syscall.ENOENT
	ENOTEMPTY = syscall.ENOTEMPTY
)

// MissingNodeID is returned by the decoder when a message that requires a
// target inode (InHeader.NodeId) arrives with NodeId == 0, which the kernel
// never legitimately sends.
type MissingNodeID struct {
	Opcode uint32
}

func (e MissingNodeID) Error() string {
	return "fuse: message is missing a node ID"
}

// ExpectedFuseInit is returned by Connection.Init when a FUSE channel's very
// first message is not OpInit.
type ExpectedFuseInit struct {
	Opcode uint32
}

func (e ExpectedFuseInit) Error() string {
	return "fuse: expected FUSE_INIT as the first op on this channel"
}

// ExpectedCuseInit reports that a CUSE channel's very first message is not
// OpCuseInit. Nothing in this package returns it: there is no CUSE-specific
// connection, and Connection.Init accepts CUSE_INIT as an ordinary init op.
type ExpectedCuseInit struct {
	Opcode uint32
}

func (e ExpectedCuseInit) Error() string {
	return "fuse: expected CUSE_INIT as the first op on this channel"
}

// InvalidName is returned by the decoder when a path component or xattr
// name sent by the kernel fails fuseops.NewNodeName/NewXattrName
// validation: empty, containing a NUL, or (for a path component) "." or
// "..".
type InvalidName struct {
	Opcode uint32
	Name   string
}

func (e InvalidName) Error() string {
	return fmt.Sprintf("fuse: invalid name %q", e.Name)
}
