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
	"syscall"
	"unsafe"
)

// writev writes iovecs to fd in a single scatter/gather syscall, letting a
// handler's response header and payload (e.g. ReadFileOp's data) travel to
// the kernel without first being copied into one contiguous buffer.
func writev(fd int, iovecs [][]byte) (int, error) {
	iovs := make([]syscall.Iovec, 0, len(iovecs))
	for _, v := range iovecs {
		if len(v) == 0 {
			continue
		}
		var iov syscall.Iovec
		iov.Base = &v[0]
		iov.SetLen(len(v))
		iovs = append(iovs, iov)
	}

	if len(iovs) == 0 {
		return 0, nil
	}

	n, _, errno := syscall.Syscall(
		syscall.SYS_WRITEV,
		uintptr(fd),
		uintptr(unsafe.Pointer(&iovs[0])),
		uintptr(len(iovs)))
	if errno != 0 {
		return int(n), errno
	}

	return int(n), nil
}
