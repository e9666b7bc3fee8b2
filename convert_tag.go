// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pdf

import (
	"io"
)

// A TagConverter dumps the document's marked-content structure: text
// in content order wrapped in the tags recorded by BMC/BDC/EMC, one
// page element per page. It performs no layout analysis, so glyphs are
// written as they are rendered.
type TagConverter struct {
	baseDevice
	out   errWriter
	open  []string // marked-content tag stack
	pageW float64
	pageH float64
}

// NewTagConverter returns a tag device writing to w.
func NewTagConverter(w io.Writer) *TagConverter {
	return &TagConverter{out: errWriter{w: w}}
}

func (c *TagConverter) BeginPage(p Page) error {
	if err := c.checkOpen(); err != nil {
		return err
	}
	c.pageW, c.pageH = p.deviceBounds()
	c.out.printf("<page id=\"%d\" bbox=\"%s\" rotate=\"%d\">",
		p.Index+1, bbox(0, 0, c.pageW, c.pageH), p.Rotation)
	return c.out.err
}

func (c *TagConverter) RenderGlyph(g Glyph) error {
	if err := c.checkOpen(); err != nil {
		return err
	}
	if g.Text != "" {
		c.out.writeString(xmlEscape(g.Text))
	}
	return c.out.err
}

func (c *TagConverter) RenderImage(name string, img Value) error {
	return c.checkOpen()
}

func (c *TagConverter) BeginTag(tag string, props Value) error {
	if err := c.checkOpen(); err != nil {
		return err
	}
	c.open = append(c.open, tag)
	c.out.printf("<%s>", xmlEscape(tag))
	return c.out.err
}

func (c *TagConverter) EndTag(tag string) error {
	if err := c.checkOpen(); err != nil {
		return err
	}
	if n := len(c.open); n > 0 {
		c.out.printf("</%s>", xmlEscape(c.open[n-1]))
		c.open = c.open[:n-1]
	}
	return c.out.err
}

func (c *TagConverter) EndPage(p Page) error {
	if err := c.checkOpen(); err != nil {
		return err
	}
	// Close tags left open by unbalanced content.
	for n := len(c.open); n > 0; n-- {
		c.out.printf("</%s>", xmlEscape(c.open[n-1]))
	}
	c.open = c.open[:0]
	c.out.writeString("</page>")
	return c.out.err
}

func (c *TagConverter) Close() error {
	if err := c.markClosed(); err != nil {
		return err
	}
	return c.out.err
}
