// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pdf

import (
	"io"
)

// A TextConverter renders pages as plain text: one block per text box
// in reading order, a blank line between boxes, and a form feed after
// each page.
type TextConverter struct {
	layoutDevice
	out errWriter
}

// NewTextConverter returns a text device writing to w. A nil la uses
// the default layout parameters; images is optional.
func NewTextConverter(w io.Writer, la *LAParams, images *ImageWriter) *TextConverter {
	c := &TextConverter{out: errWriter{w: w}}
	c.la = la
	c.images = images
	return c
}

func (c *TextConverter) EndPage(p Page) error {
	if err := c.checkOpen(); err != nil {
		return err
	}
	la := c.params()
	for _, box := range c.layout().Boxes {
		c.out.writeString(box.Text(la))
		c.out.writeString("\n")
	}
	c.out.writeString("\f")
	return c.out.err
}

func (c *TextConverter) Close() error {
	if err := c.markClosed(); err != nil {
		return err
	}
	return c.out.err
}
