// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pdf

import (
	"bytes"
	"fmt"
	"io"
)

// PageOptions controls page enumeration for an extraction run.
type PageOptions struct {
	// PageNumbers selects pages by zero-based index; nil selects all.
	PageNumbers []int

	// MaxPages caps the number of pages returned after selection.
	// Zero means no cap.
	MaxPages int

	// Password decrypts protected documents.
	Password string

	// DisableCaching turns off the reader's object cache.
	DisableCaching bool

	// CheckExtractable rejects documents whose permissions forbid text
	// extraction.
	CheckExtractable bool
}

// Pages opens the document in rs and returns its selected pages in
// document order, with each page's Rotation initialized to its
// intrinsic /Rotate value. A wrong password fails here, before any
// page is touched. A malformed document surfaces as an error, not a
// panic.
func Pages(rs io.ReadSeeker, opt *PageOptions) (pages []Page, err error) {
	defer func() {
		if e := recover(); e != nil {
			pages, err = nil, wrapError("open document", fmt.Errorf("%v", e))
		}
	}()
	if opt == nil {
		opt = &PageOptions{}
	}
	ra, size, err := readerAtFor(rs)
	if err != nil {
		return nil, wrapError("open document", err)
	}

	pw := passwordOnce(opt.Password)
	r, err := newReader(ra, size, pw, !opt.DisableCaching)
	if err != nil {
		return nil, err
	}
	if opt.CheckExtractable && !r.CanExtract() {
		return nil, ErrNotExtractable
	}

	var selected map[int]bool
	if len(opt.PageNumbers) > 0 {
		selected = make(map[int]bool, len(opt.PageNumbers))
		for _, n := range opt.PageNumbers {
			selected[n] = true
		}
	}

	total := r.NumPage()
	for i := 0; i < total; i++ {
		if selected != nil && !selected[i] {
			continue
		}
		p := r.Page(i + 1)
		if p.V.IsNull() {
			return pages, wrapPageError("load page", i, ErrInvalidPage)
		}
		p.Index = i
		p.Rotation = p.Rotate()
		pages = append(pages, p)
		if opt.MaxPages > 0 && len(pages) >= opt.MaxPages {
			break
		}
	}
	return pages, nil
}

// readerAtFor adapts a ReadSeeker to the random-access interface the
// reader needs, buffering into memory when the source cannot seek by
// offset.
func readerAtFor(rs io.ReadSeeker) (io.ReaderAt, int64, error) {
	size, err := rs.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, 0, err
	}
	if ra, ok := rs.(io.ReaderAt); ok {
		return ra, size, nil
	}
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return nil, 0, err
	}
	data, err := io.ReadAll(rs)
	if err != nil {
		return nil, 0, err
	}
	return bytes.NewReader(data), int64(len(data)), nil
}

// passwordOnce yields the configured password a single time, so the
// reader's retry loop terminates.
func passwordOnce(pw string) func() string {
	used := false
	return func() string {
		if used || pw == "" {
			return ""
		}
		used = true
		return pw
	}
}
