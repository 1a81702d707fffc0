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
	"fmt"
	"os"
	"time"
)

// CheckMtime reports an error if fi's mtime does not match expected. On
// platforms where Sys() exposes an mtime of its own, that value is checked
// too, since it travels through a different wire field than ModTime.
func CheckMtime(fi os.FileInfo, expected time.Time) error {
	if !fi.ModTime().Equal(expected) {
		d := fi.ModTime().Sub(expected)
		return fmt.Errorf("mtime is %v, off by %v", fi.ModTime(), d)
	}

	if sysMtime, ok := extractMtime(fi.Sys()); ok {
		if !sysMtime.Equal(expected) {
			d := sysMtime.Sub(expected)
			return fmt.Errorf("Sys() mtime is %v, off by %v", sysMtime, d)
		}
	}

	return nil
}
