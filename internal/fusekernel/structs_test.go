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

package fusekernel

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
)

// Every size here matches the corresponding struct in <linux/fuse.h>
// exactly; a mismatch means a field was added, removed, or misordered
// relative to the kernel ABI.
func TestStructSizes(t *testing.T) {
	cases := []struct {
		name string
		got  uintptr
		want uintptr
	}{
		{"InHeader", unsafe.Sizeof(InHeader{}), 40},
		{"OutHeader", unsafe.Sizeof(OutHeader{}), 16},
		{"Attr", unsafe.Sizeof(Attr{}), 88},
		{"EntryOut", unsafe.Sizeof(EntryOut{}), 8 + 8 + 8 + 8 + 4 + 4 + 88},
		{"AttrOut", unsafe.Sizeof(AttrOut{}), 8 + 4 + 4 + 88},
		{"OpenOut", unsafe.Sizeof(OpenOut{}), 8 + 4 + 4},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, c.got)
		})
	}
}

func TestCompatInitOutSizes(t *testing.T) {
	assert.Equal(t, uintptr(8), uintptr(CompatInitOutSize))
	assert.Equal(t, uintptr(24), uintptr(Compat22InitOutSize))
	assert.Equal(t, uintptr(8), InitOutSize(1))
	assert.Equal(t, uintptr(24), InitOutSize(22))
	assert.Equal(t, unsafe.Sizeof(InitOut{}), InitOutSize(23))
}

func TestProtocolOrdering(t *testing.T) {
	old := Protocol{Major: 7, Minor: 8}
	newer := Protocol{Major: 7, Minor: 19}

	assert.True(t, old.LT(newer))
	assert.False(t, newer.LT(old))
	assert.True(t, newer.GE(old))
	assert.Equal(t, "7.19", newer.String())
}
