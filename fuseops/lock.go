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

package fuseops

// LockType distinguishes the three POSIX record-lock operations the kernel
// may ask a file system to perform.
type LockType int

const (
	ReadLock LockType = iota
	WriteLock
	UnlockLock
)

// lockTypeStrings mirrors the parse/string round-trip pattern used by
// FileType, so lock types render consistently in test failures and debug
// logs.
var lockTypeStrings = map[LockType]string{
	ReadLock:   "read",
	WriteLock:  "write",
	UnlockLock: "unlock",
}

func (t LockType) String() string {
	if s, ok := lockTypeStrings[t]; ok {
		return s
	}
	return "unknown lock type"
}

// WholeFileEnd is the sentinel End value meaning "to the end of the file",
// regardless of the file's current size.
const WholeFileEnd uint64 = 1<<64 - 1

// LockRange identifies the byte range a lock operation applies to. Start
// and End are both inclusive; End == WholeFileEnd means "no upper bound".
type LockRange struct {
	Start uint64
	End   uint64
}

// Lock describes one POSIX record lock, as carried by GetLkOp and SetLkOp
// (SetLkOp.Block marks the blocking F_SETLKW form).
type Lock struct {
	Range LockRange
	Type  LockType

	// Owner is an opaque value the kernel uses to identify which open
	// file description a lock belongs to; it is not a PID. Pid is the
	// process id of the process that initiated the lock operation,
	// reported for diagnostic purposes only.
	Owner uint64
	Pid   uint32
}
