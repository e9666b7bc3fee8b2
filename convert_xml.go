// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pdf

import (
	"io"
)

// An XMLConverter renders pages as a hierarchical XML document:
// pages, textboxes, textlines, and one text element per glyph with
// font, bbox, and size attributes.
type XMLConverter struct {
	layoutDevice
	out          errWriter
	stripControl bool
	started      bool
	pageID       int
}

// NewXMLConverter returns an XML device writing to w. With
// stripControl set, control characters are removed from text content
// so the output is always well-formed.
func NewXMLConverter(w io.Writer, la *LAParams, images *ImageWriter, stripControl bool) *XMLConverter {
	c := &XMLConverter{out: errWriter{w: w}, stripControl: stripControl}
	c.la = la
	c.images = images
	return c
}

func (c *XMLConverter) BeginPage(p Page) error {
	if err := c.layoutDevice.BeginPage(p); err != nil {
		return err
	}
	if !c.started {
		c.out.writeString("<?xml version=\"1.0\" encoding=\"utf-8\" ?>\n<pages>\n")
		c.started = true
	}
	c.pageID = p.Index + 1
	c.out.printf("<page id=\"%d\" bbox=\"%s\" rotate=\"%d\">\n",
		c.pageID, bbox(0, 0, c.pageW, c.pageH), p.Rotation)
	return c.out.err
}

func (c *XMLConverter) EndPage(p Page) error {
	if err := c.checkOpen(); err != nil {
		return err
	}
	for i, box := range c.layout().Boxes {
		c.out.printf("<textbox id=\"%d\" bbox=\"%s\">\n", i, bbox(box.X0, box.Y0, box.X1, box.Y1))
		for _, line := range box.Lines {
			c.out.printf("<textline bbox=\"%s\">\n", bbox(line.X0, line.Y0, line.X1, line.Y1))
			for _, g := range line.Glyphs {
				c.writeGlyph(g)
			}
			c.out.writeString("</textline>\n")
		}
		c.out.writeString("</textbox>\n")
	}
	c.out.writeString("</page>\n")
	return c.out.err
}

func (c *XMLConverter) writeGlyph(g Glyph) {
	text := g.Text
	if c.stripControl {
		text = stripControl(text)
	}
	if text == "" {
		c.out.writeString("<text> </text>\n")
		return
	}
	c.out.printf("<text font=\"%s\" bbox=\"%s\" size=\"%.3f\">%s</text>\n",
		xmlEscape(g.Font), bbox(g.X, g.Y, g.X+g.W, g.Y+g.H), g.Size, xmlEscape(text))
}

func (c *XMLConverter) Close() error {
	if err := c.markClosed(); err != nil {
		return err
	}
	if c.started {
		c.out.writeString("</pages>\n")
	}
	return c.out.err
}

// stripControl removes the control characters that are not legal in
// XML content, keeping tab and newline.
func stripControl(s string) string {
	if !hasControl(s) {
		return s
	}
	buf := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if isControlByte(s[i]) {
			continue
		}
		buf = append(buf, s[i])
	}
	return string(buf)
}

func isControlByte(c byte) bool {
	return c <= 0x08 || (0x0b <= c && c <= 0x0e) || (0x10 <= c && c <= 0x1f)
}
