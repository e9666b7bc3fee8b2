// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Content stream interpretation: executing page content against a
// Device, tracking graphics and text state.

package pdf

import (
	"fmt"
	"io"
	"math"
	"strings"
)

// A matrix is a PDF transformation matrix [a b c d e f], mapping
// (x, y) to (a*x + c*y + e, b*x + d*y + f).
type matrix [6]float64

var identMatrix = matrix{1, 0, 0, 1, 0, 0}

// mul returns the matrix that applies m first, then n.
func (m matrix) mul(n matrix) matrix {
	return matrix{
		m[0]*n[0] + m[1]*n[2],
		m[0]*n[1] + m[1]*n[3],
		m[2]*n[0] + m[3]*n[2],
		m[2]*n[1] + m[3]*n[3],
		m[4]*n[0] + m[5]*n[2] + n[4],
		m[4]*n[1] + m[5]*n[3] + n[5],
	}
}

func (m matrix) apply(x, y float64) (float64, float64) {
	return x*m[0] + y*m[2] + m[4], x*m[1] + y*m[3] + m[5]
}

func translation(tx, ty float64) matrix {
	return matrix{1, 0, 0, 1, tx, ty}
}

// gstate is the subset of PDF graphics state that affects text
// extraction.
type gstate struct {
	ctm        matrix
	font       *Font
	fontName   string
	fontSize   float64
	charSpace  float64 // Tc
	wordSpace  float64 // Tw
	horizScale float64 // Tz / 100
	leading    float64 // TL
	rise       float64 // Ts
	render     int     // Tr
}

// An Interpreter executes page content streams against a Device,
// resolving fonts through a shared ResourceManager.
type Interpreter struct {
	rm  *ResourceManager
	dev Device
}

// NewInterpreter returns an Interpreter rendering to dev.
func NewInterpreter(rm *ResourceManager, dev Device) *Interpreter {
	return &Interpreter{rm: rm, dev: dev}
}

// pageState is the mutable state of one page's interpretation.
type pageState struct {
	g      gstate
	gstack []gstate
	tm     matrix // text matrix
	tlm    matrix // text line matrix
	err    error  // first device error; aborts further rendering
	depth  int    // Form XObject nesting depth
}

const maxFormDepth = 16

// ProcessPage renders one page to the interpreter's device: BeginPage,
// the page's content stream, EndPage. The first device error aborts the
// page and is returned. Malformed streams encountered while rendering
// surface as errors, not panics.
func (ip *Interpreter) ProcessPage(p Page) (err error) {
	defer func() {
		if e := recover(); e != nil {
			err = fmt.Errorf("malformed page content: %v", e)
		}
	}()
	if err := ip.dev.BeginPage(p); err != nil {
		return err
	}
	st := &pageState{
		g: gstate{
			ctm:        baseCTM(p),
			horizScale: 1,
		},
		tm:  identMatrix,
		tlm: identMatrix,
	}
	ip.runContent(p.Contents(), p.Resources(), st)
	if st.err != nil {
		return st.err
	}
	return ip.dev.EndPage(p)
}

// baseCTM maps page user space to device space, folding in the page's
// effective rotation so that rotated pages come out upright with the
// origin at the lower-left corner.
func baseCTM(p Page) matrix {
	x0, y0, x1, y1 := p.mediaBounds()
	switch p.Rotation {
	case 90:
		return matrix{0, -1, 1, 0, -y0, x1}
	case 180:
		return matrix{-1, 0, 0, -1, x1, y1}
	case 270:
		return matrix{0, 1, -1, 0, y1, -x0}
	}
	return matrix{1, 0, 0, 1, -x0, -y0}
}

// runContent interprets a content stream (or array of streams) with the
// given resource dictionary.
func (ip *Interpreter) runContent(contents, resources Value, st *pageState) {
	rd := contentReader(contents)
	if rd == nil {
		return
	}
	defer rd.Close()
	interpretReader(rd, func(stk *Stack, op string) {
		if st.err != nil {
			return
		}
		ip.do(stk, op, resources, st)
	})
}

// contentReader returns a reader over the page content, concatenating
// an array of streams with newline separators.
func contentReader(contents Value) io.ReadCloser {
	switch contents.Kind() {
	case Stream:
		return contents.Reader()
	case Array:
		var parts []io.Reader
		var closers []io.Closer
		for i := 0; i < contents.Len(); i++ {
			s := contents.Index(i)
			if s.Kind() != Stream {
				continue
			}
			rc := s.Reader()
			parts = append(parts, rc, strings.NewReader("\n"))
			closers = append(closers, rc)
		}
		if len(parts) == 0 {
			return nil
		}
		return &multiStream{Reader: io.MultiReader(parts...), closers: closers}
	}
	return nil
}

type multiStream struct {
	io.Reader
	closers []io.Closer
}

func (m *multiStream) Close() error {
	for _, c := range m.closers {
		c.Close()
	}
	return nil
}

func (ip *Interpreter) do(stk *Stack, op string, resources Value, st *pageState) {
	switch op {
	case "q":
		st.gstack = append(st.gstack, st.g)
	case "Q":
		if n := len(st.gstack); n > 0 {
			st.g = st.gstack[n-1]
			st.gstack = st.gstack[:n-1]
		}
	case "cm":
		var m matrix
		for i := 5; i >= 0; i-- {
			m[i] = stk.Pop().Float64()
		}
		st.g.ctm = m.mul(st.g.ctm)

	case "BT":
		st.tm = identMatrix
		st.tlm = identMatrix
	case "ET":
		// no state to restore

	case "Tc":
		st.g.charSpace = stk.Pop().Float64()
	case "Tw":
		st.g.wordSpace = stk.Pop().Float64()
	case "Tz":
		st.g.horizScale = stk.Pop().Float64() / 100
	case "TL":
		st.g.leading = stk.Pop().Float64()
	case "Ts":
		st.g.rise = stk.Pop().Float64()
	case "Tr":
		st.g.render = int(stk.Pop().Int64())
	case "Tf":
		size := stk.Pop().Float64()
		fname := stk.Pop().Name()
		st.g.fontSize = size
		st.g.fontName = fname
		st.g.font = nil
		if fv := resources.Key("Font").Key(fname); fv.Kind() == Dict {
			st.g.font = ip.rm.Font(fname, fv)
		}

	case "Td":
		ty := stk.Pop().Float64()
		tx := stk.Pop().Float64()
		st.tlm = translation(tx, ty).mul(st.tlm)
		st.tm = st.tlm
	case "TD":
		ty := stk.Pop().Float64()
		tx := stk.Pop().Float64()
		st.g.leading = -ty
		st.tlm = translation(tx, ty).mul(st.tlm)
		st.tm = st.tlm
	case "Tm":
		var m matrix
		for i := 5; i >= 0; i-- {
			m[i] = stk.Pop().Float64()
		}
		st.tlm = m
		st.tm = m
	case "T*":
		st.tlm = translation(0, -st.g.leading).mul(st.tlm)
		st.tm = st.tlm

	case "Tj":
		ip.showText(st, stk.Pop().RawString())
	case "'":
		s := stk.Pop().RawString()
		st.tlm = translation(0, -st.g.leading).mul(st.tlm)
		st.tm = st.tlm
		ip.showText(st, s)
	case "\"":
		s := stk.Pop().RawString()
		st.g.charSpace = stk.Pop().Float64()
		st.g.wordSpace = stk.Pop().Float64()
		st.tlm = translation(0, -st.g.leading).mul(st.tlm)
		st.tm = st.tlm
		ip.showText(st, s)
	case "TJ":
		arr := stk.Pop()
		for i := 0; i < arr.Len(); i++ {
			e := arr.Index(i)
			switch e.Kind() {
			case String:
				ip.showText(st, e.RawString())
			case Integer, Real:
				tx := -e.Float64() / 1000 * st.g.fontSize * st.g.horizScale
				if st.g.font != nil && st.g.font.Vertical() {
					st.tm = translation(0, -tx).mul(st.tm)
				} else {
					st.tm = translation(tx, 0).mul(st.tm)
				}
			}
		}

	case "Do":
		ip.doXObject(stk.Pop().Name(), resources, st)

	case "BMC":
		tag := stk.Pop().Name()
		st.err = ip.dev.BeginTag(tag, Value{})
	case "BDC":
		props := stk.Pop()
		tag := stk.Pop().Name()
		st.err = ip.dev.BeginTag(tag, props)
	case "EMC":
		st.err = ip.dev.EndTag("")

	default:
		// Path, color, shading, and other operators carry no text.
	}
}

// doXObject executes a Form XObject inline or hands an Image XObject to
// the device.
func (ip *Interpreter) doXObject(fname string, resources Value, st *pageState) {
	xobj := resources.Key("XObject").Key(fname)
	if xobj.Kind() != Stream {
		return
	}
	switch xobj.Key("Subtype").Name() {
	case "Image":
		st.err = ip.dev.RenderImage(fname, xobj)
	case "Form":
		if st.depth >= maxFormDepth {
			return
		}
		st.depth++
		saved := st.g
		savedStack := len(st.gstack)
		if mv := xobj.Key("Matrix"); mv.Len() == 6 {
			var m matrix
			for i := 0; i < 6; i++ {
				m[i] = mv.Index(i).Float64()
			}
			st.g.ctm = m.mul(st.g.ctm)
		}
		res := xobj.Key("Resources")
		if res.IsNull() {
			res = resources
		}
		ip.runContent(xobj, res, st)
		st.g = saved
		st.gstack = st.gstack[:savedStack]
		st.depth--
	}
}

// showText renders one string operand, emitting a Glyph per decoded
// code and advancing the text matrix.
func (ip *Interpreter) showText(st *pageState, raw string) {
	f := st.g.font
	if f == nil || raw == "" {
		return
	}
	vertical := f.Vertical()
	for _, gc := range f.decodeString(raw) {
		// m maps text space to device space; the font size prescale
		// only affects the glyph origin through the rise.
		m := st.tm.mul(st.g.ctm)
		x, y := m.apply(0, st.g.rise)
		size := st.g.fontSize * math.Hypot(m[2], m[3])

		tx := gc.width/1000*st.g.fontSize + st.g.charSpace
		if gc.bytes == 1 && gc.code == ' ' {
			tx += st.g.wordSpace
		}
		tx *= st.g.horizScale

		var w float64
		if vertical {
			w = tx * math.Hypot(m[2], m[3])
			st.tm = translation(0, -tx).mul(st.tm)
		} else {
			w = tx * math.Hypot(m[0], m[1])
			st.tm = translation(tx, 0).mul(st.tm)
		}

		if st.err != nil {
			return
		}
		st.err = ip.dev.RenderGlyph(Glyph{
			Text:     gc.text,
			X:        x,
			Y:        y,
			W:        w,
			H:        size,
			Font:     f.BaseFont(),
			Size:     size,
			Vertical: vertical,
		})
		if st.err != nil {
			return
		}
	}
}
