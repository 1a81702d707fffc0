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

package fusetesting

import (
	"syscall"
	"time"
)

// Extract the mtime from the result of os.FileInfo.Sys(), in a
// platform-specific way. If sys is not a *syscall.Stat_t, return !ok.
func extractMtime(sys interface{}) (mtime time.Time, ok bool) {
	stat, ok := sys.(*syscall.Stat_t)
	if !ok {
		return time.Time{}, false
	}

	return time.Unix(stat.Mtim.Sec, stat.Mtim.Nsec), true
}
