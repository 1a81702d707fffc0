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

//go:build linux

package fuse

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// mount binds dev (already open on /dev/fuse) to dir using the same
// mount(2) incantation libfuse uses: the device fd and permission defaults
// are passed as mount data, and the kernel hands back a ready-to-use
// /dev/fuse connection once the data string parses.
func mount(dir string, dev *os.File) error {
	fi, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("stat %q: %v", dir, err)
	}

	rootMode := uint32(fi.Mode().Perm()) | unix.S_IFDIR

	data := fmt.Sprintf(
		"fd=%d,rootmode=%o,user_id=%d,group_id=%d",
		dev.Fd(), rootMode, os.Getuid(), os.Getgid())

	const flags = unix.MS_NOSUID | unix.MS_NODEV

	if err := unix.Mount("fuse", dir, "fuse", flags, data); err != nil {
		return fmt.Errorf("mount(%q): %v", dir, err)
	}

	return nil
}

func unmount(dir string) error {
	return unix.Unmount(dir, unix.MNT_DETACH)
}
