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

package fuseops_test

import (
	"testing"
	"time"

	"github.com/jacobsa/timeutil"

	"github.com/fusewire/fusewire/fuseops"
)

func TestExpireAfterUsesInjectedClock(t *testing.T) {
	clock := timeutil.NewSimulatedClock(time.Unix(1000, 0))

	got := fuseops.ExpireAfter(clock, 30*time.Second)
	want := time.Unix(1030, 0)

	if !got.Equal(want) {
		t.Errorf("ExpireAfter: got %v, want %v", got, want)
	}

	clock.AdvanceTime(5 * time.Second)
	if got := clock.Now(); !got.Equal(time.Unix(1005, 0)) {
		t.Errorf("clock.Now after advance: got %v, want %v", got, time.Unix(1005, 0))
	}
}
