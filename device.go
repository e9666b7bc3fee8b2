// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pdf

// A Glyph is one rendered text chunk in device space, emitted by the
// interpreter as content streams execute. Coordinates follow the PDF
// convention: origin at the lower left, y increasing upward. Page
// rotation has already been folded into the coordinates.
type Glyph struct {
	Text     string  // decoded Unicode text, empty for unmapped codes
	X, Y     float64 // glyph origin
	W        float64 // advance width
	H        float64 // nominal height (effective font size)
	Font     string  // base font name
	Size     float64 // effective font size in device space
	Vertical bool
}

// A Device receives rendering events for each page of an extraction
// run. The orchestrator drives the sequence
//
//	BeginPage (RenderGlyph | RenderImage | BeginTag/EndTag)* EndPage
//
// once per selected page, then calls Close exactly once. A device must
// reject events after Close with ErrDeviceClosed.
type Device interface {
	BeginPage(p Page) error
	RenderGlyph(g Glyph) error
	RenderImage(name string, img Value) error
	BeginTag(tag string, props Value) error
	EndTag(tag string) error
	EndPage(p Page) error
	Close() error
}

// baseDevice carries the open/closed lifecycle shared by all output
// devices.
type baseDevice struct {
	closed bool
}

// checkOpen returns ErrDeviceClosed once the device has been closed.
func (d *baseDevice) checkOpen() error {
	if d.closed {
		return ErrDeviceClosed
	}
	return nil
}

// markClosed flips the device to closed. Closing twice is an error.
func (d *baseDevice) markClosed() error {
	if d.closed {
		return ErrDeviceClosed
	}
	d.closed = true
	return nil
}
