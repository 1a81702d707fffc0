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

import (
	"time"

	"github.com/jacobsa/timeutil"
)

// ExpireAfter returns the deadline a handler should store in
// ChildInodeEntry.AttributesExpiration/EntryExpiration (or
// GetInodeAttributesOp.AttributesExpiration) to cache a value for d from
// now, as measured by clock. File systems that want deterministic cache
// tests inject a timeutil.SimulatedClock; production handlers use
// timeutil.RealClock(), the same pattern the teacher's sample file systems
// used to avoid depending on wall-clock time in tests.
func ExpireAfter(clock timeutil.Clock, d time.Duration) time.Time {
	return clock.Now().Add(d)
}
