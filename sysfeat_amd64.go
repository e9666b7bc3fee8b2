// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build amd64

package pdf

import (
	"golang.org/x/sys/cpu"
)

// Wide scanning wins only when unaligned 8-byte loads are cheap, which
// tracks SSE4.2 on the chips that matter.
var useWideScan = cpu.X86.HasSSE42 || cpu.X86.HasAVX2

func hasControl(s string) bool {
	if useWideScan && len(s) >= 16 {
		return hasControlWide(s)
	}
	return hasControlGeneric(s)
}
