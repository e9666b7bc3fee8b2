// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build !amd64

package pdf

func hasControl(s string) bool {
	return hasControlGeneric(s)
}
