// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pdf

import (
	"encoding/binary"
)

// hasControlGeneric is the byte-at-a-time control character scan.
func hasControlGeneric(s string) bool {
	for i := 0; i < len(s); i++ {
		if isControlByte(s[i]) {
			return true
		}
	}
	return false
}

// hasControlWide scans eight bytes at a time, using a SWAR prefilter
// for any byte below 0x20 and checking candidates exactly. Extracted
// text is overwhelmingly control-free, so the prefilter almost always
// skips whole words.
func hasControlWide(s string) bool {
	i := 0
	for ; i+8 <= len(s); i += 8 {
		x := binary.LittleEndian.Uint64([]byte(s[i : i+8]))
		// A byte in x is < 0x20 iff its high bit is set in
		// (x - 0x20 per byte) & ^x.
		if (x-0x2020202020202020)&^x&0x8080808080808080 != 0 {
			for j := i; j < i+8; j++ {
				if isControlByte(s[j]) {
					return true
				}
			}
		}
	}
	for ; i < len(s); i++ {
		if isControlByte(s[i]) {
			return true
		}
	}
	return false
}
