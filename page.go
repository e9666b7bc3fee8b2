// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pdf

// A Page represents a single page in a PDF file.
// The methods interpret a Page dictionary stored in V.
type Page struct {
	V Value

	// Index is the page's zero-based ordinal in document order.
	Index int

	// Rotation is the page rotation in effect for the current
	// extraction run, in degrees, always in [0, 360). It starts as the
	// page's intrinsic /Rotate value; the orchestrator may add a
	// configured delta for the run without touching the document.
	Rotation int
}

// Page returns the page for the given page number.
// Page numbers are indexed starting at 1, not 0.
// If the page is not found, Page returns a Page with p.V.IsNull().
func (r *Reader) Page(num int) Page {
	num-- // now 0-indexed
	page := r.Trailer().Key("Root").Key("Pages")
Search:
	for page.Key("Type").Name() == "Pages" {
		count := int(page.Key("Count").Int64())
		if count < num {
			return Page{}
		}
		kids := page.Key("Kids")
		for i := 0; i < kids.Len(); i++ {
			kid := kids.Index(i)
			if kid.Key("Type").Name() == "Pages" {
				c := int(kid.Key("Count").Int64())
				if num < c {
					page = kid
					continue Search
				}
				num -= c
				continue
			}
			if kid.Key("Type").Name() == "Page" {
				if num == 0 {
					return Page{V: kid}
				}
				num--
			}
		}
		break
	}
	return Page{}
}

// NumPage returns the number of pages in the PDF file.
func (r *Reader) NumPage() int {
	return int(r.Trailer().Key("Root").Key("Pages").Key("Count").Int64())
}

// findInherited walks up the page tree looking for the named attribute,
// which may be inherited from an ancestor Pages node.
func (p Page) findInherited(key string) Value {
	for v := p.V; !v.IsNull(); v = v.Key("Parent") {
		if r := v.Key(key); !r.IsNull() {
			return r
		}
	}
	return Value{}
}

// MediaBox returns the page's MediaBox, possibly inherited.
func (p Page) MediaBox() Value {
	return p.findInherited("MediaBox")
}

// CropBox returns the page's CropBox, possibly inherited.
func (p Page) CropBox() Value {
	return p.findInherited("CropBox")
}

// Resources returns the page's resource dictionary, possibly inherited.
func (p Page) Resources() Value {
	return p.findInherited("Resources")
}

// Contents returns the page's content stream, a single stream or an
// array of streams.
func (p Page) Contents() Value {
	return p.V.Key("Contents")
}

// Rotate returns the page's intrinsic /Rotate attribute, possibly
// inherited, normalized into [0, 360).
func (p Page) Rotate() int {
	return normalizeRotation(int(p.findInherited("Rotate").Int64()))
}

// normalizeRotation reduces a rotation in degrees into [0, 360).
func normalizeRotation(deg int) int {
	deg %= 360
	if deg < 0 {
		deg += 360
	}
	return deg
}

// mediaBounds returns the page's media box corners, with a letter-size
// default when the box is missing or degenerate.
func (p Page) mediaBounds() (x0, y0, x1, y1 float64) {
	box := p.MediaBox()
	if box.Len() == 4 {
		x0, y0 = box.Index(0).Float64(), box.Index(1).Float64()
		x1, y1 = box.Index(2).Float64(), box.Index(3).Float64()
	}
	if x1 <= x0 || y1 <= y0 {
		return 0, 0, 612, 792
	}
	return x0, y0, x1, y1
}
