// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Shared plumbing for the output converters: a glyph-collecting device
// base that runs layout analysis per page, and a write helper that
// latches the first sink error.

package pdf

import (
	"fmt"
	"io"
)

// layoutDevice collects glyphs for one page at a time and hands the
// analyzed layout to the embedding converter in EndPage.
type layoutDevice struct {
	baseDevice
	la     *LAParams
	images *ImageWriter

	glyphs       []Glyph
	pageW, pageH float64
}

func (d *layoutDevice) BeginPage(p Page) error {
	if err := d.checkOpen(); err != nil {
		return err
	}
	d.glyphs = d.glyphs[:0]
	d.pageW, d.pageH = p.deviceBounds()
	return nil
}

func (d *layoutDevice) RenderGlyph(g Glyph) error {
	if err := d.checkOpen(); err != nil {
		return err
	}
	d.glyphs = append(d.glyphs, g)
	return nil
}

func (d *layoutDevice) RenderImage(name string, img Value) error {
	if err := d.checkOpen(); err != nil {
		return err
	}
	if d.images == nil {
		return nil
	}
	_, err := d.images.Export(name, img)
	return err
}

func (d *layoutDevice) BeginTag(tag string, props Value) error {
	return d.checkOpen()
}

func (d *layoutDevice) EndTag(tag string) error {
	return d.checkOpen()
}

// layout runs layout analysis over the collected glyphs.
func (d *layoutDevice) layout() *LayoutResult {
	la := d.la
	if la == nil {
		la = DefaultLAParams()
	}
	return buildLayout(d.glyphs, la, d.pageW, d.pageH)
}

func (d *layoutDevice) params() *LAParams {
	if d.la == nil {
		return DefaultLAParams()
	}
	return d.la
}

// deviceBounds returns the page's device-space dimensions: the media
// box extent with the effective rotation applied.
func (p Page) deviceBounds() (w, h float64) {
	x0, y0, x1, y1 := p.mediaBounds()
	w, h = x1-x0, y1-y0
	if p.Rotation == 90 || p.Rotation == 270 {
		w, h = h, w
	}
	return w, h
}

// errWriter wraps the output sink, remembering the first write error so
// converters can emit freely and report once.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) writeString(s string) {
	if ew.err != nil {
		return
	}
	_, ew.err = io.WriteString(ew.w, s)
}

func (ew *errWriter) printf(format string, args ...interface{}) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}

// xmlEscape escapes the five XML special characters.
func xmlEscape(s string) string {
	needs := false
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '&', '<', '>', '"', '\'':
			needs = true
		}
	}
	if !needs {
		return s
	}
	buf := make([]byte, 0, len(s)+8)
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '&':
			buf = append(buf, "&amp;"...)
		case '<':
			buf = append(buf, "&lt;"...)
		case '>':
			buf = append(buf, "&gt;"...)
		case '"':
			buf = append(buf, "&quot;"...)
		case '\'':
			buf = append(buf, "&#39;"...)
		default:
			buf = append(buf, c)
		}
	}
	return string(buf)
}

// bbox formats a bounding box the way the XML and tag outputs expect.
func bbox(x0, y0, x1, y1 float64) string {
	return fmt.Sprintf("%.3f,%.3f,%.3f,%.3f", x0, y0, x1, y1)
}
