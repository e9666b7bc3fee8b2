// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pdf

import (
	"io"
)

// An HTMLConverter renders pages as an HTML document. In "exact"
// layout mode every text line becomes an absolutely positioned span; in
// "normal" (and "loose") mode text boxes flow as divs in reading
// order. Scale multiplies all coordinates.
type HTMLConverter struct {
	layoutDevice
	out     errWriter
	scale   float64
	mode    string
	started bool
}

// NewHTMLConverter returns an HTML device writing to w.
func NewHTMLConverter(w io.Writer, la *LAParams, images *ImageWriter, scale float64, layoutMode string) *HTMLConverter {
	if scale <= 0 {
		scale = 1
	}
	if layoutMode == "" {
		layoutMode = "normal"
	}
	c := &HTMLConverter{out: errWriter{w: w}, scale: scale, mode: layoutMode}
	c.la = la
	c.images = images
	return c
}

func (c *HTMLConverter) BeginPage(p Page) error {
	if err := c.layoutDevice.BeginPage(p); err != nil {
		return err
	}
	if !c.started {
		c.out.writeString("<html><head>\n" +
			"<meta http-equiv=\"Content-Type\" content=\"text/html; charset=utf-8\">\n" +
			"</head><body>\n")
		c.started = true
	}
	if c.mode == "exact" {
		c.out.printf("<div style=\"position:relative; width:%.0fpx; height:%.0fpx; border:1px solid gray;\">\n",
			c.pageW*c.scale, c.pageH*c.scale)
	} else {
		c.out.printf("<div style=\"width:%.0fpx;\">\n", c.pageW*c.scale)
	}
	return c.out.err
}

func (c *HTMLConverter) EndPage(p Page) error {
	if err := c.checkOpen(); err != nil {
		return err
	}
	la := c.params()
	layout := c.layout()
	for _, box := range layout.Boxes {
		if c.mode == "exact" {
			c.writeExactBox(box, la)
		} else {
			c.writeFlowBox(box, la)
		}
	}
	c.out.writeString("</div>\n")
	return c.out.err
}

// writeExactBox positions each line absolutely inside the page div.
// PDF y grows upward while CSS top grows downward, so lines are placed
// by their distance from the page top.
func (c *HTMLConverter) writeExactBox(box *TextBox, la *LAParams) {
	for _, line := range box.Lines {
		size := line.Y1 - line.Y0
		c.out.printf("<span style=\"position:absolute; left:%.0fpx; top:%.0fpx; font-size:%.0fpx;\">%s</span>\n",
			line.X0*c.scale, (c.pageH-line.Y1)*c.scale, size*c.scale,
			xmlEscape(line.Text(la)))
	}
}

func (c *HTMLConverter) writeFlowBox(box *TextBox, la *LAParams) {
	c.out.writeString("<div>")
	for i, line := range box.Lines {
		if i > 0 {
			c.out.writeString("<br>")
		}
		c.out.writeString(xmlEscape(line.Text(la)))
	}
	c.out.writeString("</div>\n")
}

func (c *HTMLConverter) Close() error {
	if err := c.markClosed(); err != nil {
		return err
	}
	if c.started {
		c.out.writeString("</body></html>\n")
	}
	return c.out.err
}
