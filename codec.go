// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pdf

import (
	"io"
	"strconv"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

// codecWriter wraps w so that UTF-8 text written to it comes out in
// the named character encoding. The empty string and UTF-8 aliases
// return w unchanged. Unknown codec names are a configuration error.
// Characters the target encoding cannot represent are replaced rather
// than failing the whole run.
func codecWriter(w io.Writer, codec string) (io.Writer, error) {
	switch strings.ToLower(codec) {
	case "", "utf-8", "utf8":
		return w, nil
	}
	enc, err := htmlindex.Get(codec)
	if err != nil {
		return nil, &ConfigError{Field: "Codec", Reason: "unknown codec " + strconv.Quote(codec)}
	}
	return transform.NewWriter(w, encoding.ReplaceUnsupported(enc.NewEncoder())), nil
}
