// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// CCITT Group 3 and Group 4 fax decoding for CCITTFaxDecode streams.
//
// The decoder reconstructs one scan line at a time from the modified
// Huffman run-length codes (1D) or the 2D vertical/horizontal/pass
// modes coded against the previous line. Output rows are packed one
// bit per pixel; with the default BlackIs1=false, black pixels decode
// to 0 bits, matching the PDF imaging model.

package pdf

import (
	"bytes"
	"fmt"
	"io"
)

// faxParams are the CCITTFaxDecode entries from /DecodeParms.
type faxParams struct {
	k         int  // <0: pure 2D (Group 4); 0: pure 1D (Group 3); >0: per-row tag bit
	columns   int  // pixels per scan line
	rows      int  // scan lines, 0 when unknown
	byteAlign bool // each coded row starts on a byte boundary
	endOfLine bool // rows are preceded by EOL codes
	blackIs1  bool // black decodes to 1 bits instead of 0
}

func faxParamsFrom(param Value) faxParams {
	p := faxParams{columns: 1728}
	if v := param.Key("K"); v.Kind() == Integer {
		p.k = int(v.Int64())
	}
	if v := param.Key("Columns"); v.Kind() == Integer && v.Int64() > 0 {
		p.columns = int(v.Int64())
	}
	if v := param.Key("Rows"); v.Kind() == Integer {
		p.rows = int(v.Int64())
	}
	p.byteAlign = param.Key("EncodedByteAlign").Bool()
	p.endOfLine = param.Key("EndOfLine").Bool()
	p.blackIs1 = param.Key("BlackIs1").Bool()
	return p
}

// faxReader decodes a CCITTFaxDecode stream. The reference and current
// lines hold one byte per pixel, 1 meaning black.
type faxReader struct {
	p    faxParams
	bits *bitScanner
	ref  []byte
	cur  []byte
	row  int
	out  bytes.Buffer
	done bool
}

func newFaxReader(rd io.Reader, param Value) *faxReader {
	p := faxParamsFrom(param)
	return &faxReader{
		p:    p,
		bits: newBitScanner(rd),
		ref:  make([]byte, p.columns),
		cur:  make([]byte, p.columns),
	}
}

func (d *faxReader) Read(b []byte) (int, error) {
	for !d.done && d.out.Len() < len(b) {
		if err := d.decodeLine(); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				d.done = true
				break
			}
			return 0, err
		}
	}
	return d.out.Read(b)
}

func (d *faxReader) decodeLine() error {
	if d.p.rows > 0 && d.row >= d.p.rows {
		return io.EOF
	}
	if d.p.byteAlign {
		d.bits.align()
	}
	if d.p.endOfLine {
		if err := d.bits.skipToEOL(); err != nil {
			return err
		}
	}
	twoD := d.p.k < 0
	if d.p.k > 0 {
		// Mixed mode: a tag bit selects the coding of each row.
		bit, err := d.bits.readBit()
		if err != nil {
			return err
		}
		twoD = bit == 0
	}
	var err error
	if twoD {
		err = d.decode2D()
	} else {
		err = d.decode1D()
	}
	if err != nil {
		return err
	}
	d.emitLine()
	copy(d.ref, d.cur)
	d.row++
	return nil
}

func (d *faxReader) decode1D() error {
	col := 0
	black := false
	for col < d.p.columns {
		run, err := d.readRun(black)
		if err != nil {
			return err
		}
		col = d.fill(col, col+run, black)
		black = !black
	}
	return nil
}

func (d *faxReader) decode2D() error {
	for i := range d.cur {
		d.cur[i] = 0
	}
	col := 0
	a0 := -1
	black := false
	for col < d.p.columns {
		mode, err := d.read2DMode()
		if err != nil {
			return err
		}
		if mode == faxModeEOFB {
			return io.EOF
		}
		b1 := d.b1(a0, black)
		switch mode {
		case faxModePass:
			// The run continues past b2 without changing color.
			col = d.fill(col, d.b2(b1), black)
			a0 = col
		case faxModeHoriz:
			// Two explicit runs; the color at a0 is unchanged after.
			r1, err := d.readRun(black)
			if err != nil {
				return err
			}
			r2, err := d.readRun(!black)
			if err != nil {
				return err
			}
			col = d.fill(col, col+r1, black)
			col = d.fill(col, col+r2, !black)
			a0 = col
		default:
			a1 := b1 + int(mode-faxModeV0)
			col = d.fill(col, a1, black)
			a0 = col
			black = !black
		}
	}
	return nil
}

// b1 is the first changing element on the reference line to the right
// of a0 whose color is opposite to the current run's color.
func (d *faxReader) b1(a0 int, black bool) int {
	want := byte(1)
	if black {
		want = 0
	}
	i := a0 + 1
	if i < 0 {
		i = 0
	}
	for ; i < d.p.columns; i++ {
		var prev byte
		if i > 0 {
			prev = d.ref[i-1]
		}
		if d.ref[i] != prev && d.ref[i] == want {
			return i
		}
	}
	return d.p.columns
}

// b2 is the next changing element on the reference line after b1.
func (d *faxReader) b2(b1 int) int {
	if b1 >= d.p.columns {
		return d.p.columns
	}
	c := d.ref[b1]
	for i := b1 + 1; i < d.p.columns; i++ {
		if d.ref[i] != c {
			return i
		}
	}
	return d.p.columns
}

// fill paints [from, to) on the current line and returns the new
// column, never moving backward or past the row end.
func (d *faxReader) fill(from, to int, black bool) int {
	if from < 0 {
		from = 0
	}
	if to > d.p.columns {
		to = d.p.columns
	}
	if to < from {
		return from
	}
	var v byte
	if black {
		v = 1
	}
	for i := from; i < to; i++ {
		d.cur[i] = v
	}
	return to
}

// emitLine packs the current line into the output buffer.
func (d *faxReader) emitLine() {
	mark := byte(0) // pixel value that becomes a 1 bit
	if d.p.blackIs1 {
		mark = 1
	}
	for i := 0; i < d.p.columns; i += 8 {
		var b byte
		for j := 0; j < 8 && i+j < d.p.columns; j++ {
			if d.cur[i+j] == mark {
				b |= 0x80 >> j
			}
		}
		d.out.WriteByte(b)
	}
}

// readRun reads one complete run length of the given color,
// accumulating make-up codes until a terminating code below 64.
func (d *faxReader) readRun(black bool) (int, error) {
	table := faxWhiteCodes
	if black {
		table = faxBlackCodes
	}
	total := 0
	for {
		n, err := d.lookupCode(table)
		if err != nil {
			return 0, err
		}
		total += n
		if n < 64 {
			return total, nil
		}
	}
}

const faxMaxCodeLen = 13

func (d *faxReader) lookupCode(table []faxCode) (int, error) {
	var code uint16
	for width := 1; width <= faxMaxCodeLen; width++ {
		bit, err := d.bits.readBit()
		if err != nil {
			return 0, err
		}
		code = code<<1 | uint16(bit)
		for _, e := range table {
			if int(e.width) == width && e.code == code {
				return int(e.run), nil
			}
		}
	}
	return 0, fmt.Errorf("bad run-length code %#x", code)
}

// 2D row coding modes. The vertical modes are ordered so that
// mode-faxModeV0 is the a1 offset from b1.
const (
	faxModeVL3 = iota
	faxModeVL2
	faxModeVL1
	faxModeV0
	faxModeVR1
	faxModeVR2
	faxModeVR3
	faxModePass
	faxModeHoriz
	faxModeEOFB
)

func (d *faxReader) read2DMode() (int, error) {
	bits, err := d.bits.peekBits(7)
	if err != nil {
		return 0, err
	}
	switch {
	case bits>>6 == 0x1: // 1
		d.bits.skipBits(1)
		return faxModeV0, nil
	case bits>>4 == 0x3: // 011
		d.bits.skipBits(3)
		return faxModeVR1, nil
	case bits>>4 == 0x2: // 010
		d.bits.skipBits(3)
		return faxModeVL1, nil
	case bits>>4 == 0x1: // 001
		d.bits.skipBits(3)
		return faxModeHoriz, nil
	case bits>>3 == 0x1: // 0001
		d.bits.skipBits(4)
		return faxModePass, nil
	case bits>>1 == 0x3: // 000011
		d.bits.skipBits(6)
		return faxModeVR2, nil
	case bits>>1 == 0x2: // 000010
		d.bits.skipBits(6)
		return faxModeVL2, nil
	case bits == 0x3: // 0000011
		d.bits.skipBits(7)
		return faxModeVR3, nil
	case bits == 0x2: // 0000010
		d.bits.skipBits(7)
		return faxModeVL3, nil
	}
	if bits == 0 {
		// Twelve zero bits can only start an EOFB sequence.
		if rest, err := d.bits.peekBits(12); err != nil || rest == 0 {
			return faxModeEOFB, nil
		}
	}
	return 0, fmt.Errorf("bad 2D mode code %07b", bits)
}

// faxCode is one entry of the modified Huffman run-length tables from
// ITU-T T.4, as used by PDF 32000-1:2008 section 7.4.6.
type faxCode struct {
	code  uint16
	width uint8
	run   uint16
}

var faxWhiteCodes = []faxCode{
	{0x35, 8, 0}, {0x7, 6, 1}, {0x7, 4, 2}, {0x8, 4, 3},
	{0xB, 4, 4}, {0xC, 4, 5}, {0xE, 4, 6}, {0xF, 4, 7},
	{0x13, 5, 8}, {0x14, 5, 9}, {0x7, 5, 10}, {0x8, 5, 11},
	{0x8, 6, 12}, {0x3, 6, 13}, {0x34, 6, 14}, {0x35, 6, 15},
	{0x2A, 6, 16}, {0x2B, 6, 17}, {0x27, 7, 18}, {0xC, 7, 19},
	{0x8, 7, 20}, {0x17, 7, 21}, {0x3, 7, 22}, {0x4, 7, 23},
	{0x28, 7, 24}, {0x2B, 7, 25}, {0x13, 7, 26}, {0x24, 7, 27},
	{0x18, 7, 28}, {0x2, 8, 29}, {0x3, 8, 30}, {0x1A, 8, 31},
	{0x1B, 8, 32}, {0x12, 8, 33}, {0x13, 8, 34}, {0x14, 8, 35},
	{0x15, 8, 36}, {0x16, 8, 37}, {0x17, 8, 38}, {0x28, 8, 39},
	{0x29, 8, 40}, {0x2A, 8, 41}, {0x2B, 8, 42}, {0x2C, 8, 43},
	{0x2D, 8, 44}, {0x4, 8, 45}, {0x5, 8, 46}, {0xA, 8, 47},
	{0xB, 8, 48}, {0x52, 8, 49}, {0x53, 8, 50}, {0x54, 8, 51},
	{0x55, 8, 52}, {0x24, 8, 53}, {0x25, 8, 54}, {0x58, 8, 55},
	{0x59, 8, 56}, {0x5A, 8, 57}, {0x5B, 8, 58}, {0x4A, 8, 59},
	{0x4B, 8, 60}, {0x32, 8, 61}, {0x33, 8, 62}, {0x34, 8, 63},
	// make-up codes, multiples of 64
	{0x1B, 5, 64}, {0x12, 5, 128}, {0x17, 6, 192}, {0x37, 7, 256},
	{0x36, 8, 320}, {0x37, 8, 384}, {0x64, 8, 448}, {0x65, 8, 512},
	{0x68, 8, 576}, {0x67, 8, 640}, {0xCC, 9, 704}, {0xCD, 9, 768},
	{0xD2, 9, 832}, {0xD3, 9, 896}, {0xD4, 9, 960}, {0xD5, 9, 1024},
	{0xD6, 9, 1088}, {0xD7, 9, 1152}, {0xD8, 9, 1216}, {0xD9, 9, 1280},
	{0xDA, 9, 1344}, {0xDB, 9, 1408}, {0x98, 9, 1472}, {0x99, 9, 1536},
	{0x9A, 9, 1600}, {0x18, 6, 1664}, {0x9B, 9, 1728},
}

var faxBlackCodes = []faxCode{
	{0x37, 10, 0}, {0x2, 3, 1}, {0x3, 2, 2}, {0x2, 2, 3},
	{0x3, 3, 4}, {0x3, 4, 5}, {0x2, 4, 6}, {0x3, 5, 7},
	{0x5, 6, 8}, {0x4, 6, 9}, {0x4, 7, 10}, {0x5, 7, 11},
	{0x7, 7, 12}, {0x4, 8, 13}, {0x7, 8, 14}, {0x18, 9, 15},
	{0x17, 10, 16}, {0x18, 10, 17}, {0x8, 10, 18}, {0x67, 11, 19},
	{0x68, 11, 20}, {0x6C, 11, 21}, {0x37, 11, 22}, {0x28, 11, 23},
	{0x17, 11, 24}, {0x18, 11, 25}, {0xCA, 12, 26}, {0xCB, 12, 27},
	{0xCC, 12, 28}, {0xCD, 12, 29}, {0x68, 12, 30}, {0x69, 12, 31},
	{0x6A, 12, 32}, {0x6B, 12, 33}, {0xD2, 12, 34}, {0xD3, 12, 35},
	{0xD4, 12, 36}, {0xD5, 12, 37}, {0xD6, 12, 38}, {0xD7, 12, 39},
	{0x6C, 12, 40}, {0x6D, 12, 41}, {0xDA, 12, 42}, {0xDB, 12, 43},
	{0x54, 12, 44}, {0x55, 12, 45}, {0x56, 12, 46}, {0x57, 12, 47},
	{0x64, 12, 48}, {0x65, 12, 49}, {0x52, 12, 50}, {0x53, 12, 51},
	{0x24, 12, 52}, {0x37, 12, 53}, {0x38, 12, 54}, {0x27, 12, 55},
	{0x28, 12, 56}, {0x58, 12, 57}, {0x59, 12, 58}, {0x2B, 12, 59},
	{0x2C, 12, 60}, {0x5A, 12, 61}, {0x66, 12, 62}, {0x67, 12, 63},
	// make-up codes
	{0xF, 10, 64}, {0xC8, 12, 128}, {0xC9, 12, 192}, {0x5B, 12, 256},
	{0x33, 12, 320}, {0x34, 12, 384}, {0x35, 12, 448}, {0x6C, 13, 512},
	{0x6D, 13, 576}, {0x4A, 13, 640}, {0x4B, 13, 704}, {0x4C, 13, 768},
	{0x4D, 13, 832}, {0x72, 13, 896}, {0x73, 13, 960}, {0x74, 13, 1024},
	{0x75, 13, 1088}, {0x76, 13, 1152}, {0x77, 13, 1216}, {0x52, 13, 1280},
	{0x53, 13, 1344}, {0x54, 13, 1408}, {0x55, 13, 1472}, {0x5A, 13, 1536},
	{0x5B, 13, 1600}, {0x64, 13, 1664}, {0x65, 13, 1728},
}

// bitScanner reads a stream most-significant bit first.
type bitScanner struct {
	r   io.Reader
	acc uint32
	n   int
}

func newBitScanner(r io.Reader) *bitScanner {
	return &bitScanner{r: r}
}

func (s *bitScanner) fill() error {
	var b [1]byte
	if _, err := io.ReadFull(s.r, b[:]); err != nil {
		return err
	}
	s.acc = s.acc<<8 | uint32(b[0])
	s.n += 8
	return nil
}

func (s *bitScanner) readBit() (int, error) {
	if s.n == 0 {
		if err := s.fill(); err != nil {
			return 0, err
		}
	}
	s.n--
	return int(s.acc>>uint(s.n)) & 1, nil
}

// peekBits returns the next n bits without consuming them. At end of
// input any remaining bits are left-aligned and zero-padded.
func (s *bitScanner) peekBits(n int) (uint32, error) {
	for s.n < n {
		if err := s.fill(); err != nil {
			if (err == io.EOF || err == io.ErrUnexpectedEOF) && s.n > 0 {
				return (s.acc & (1<<uint(s.n) - 1)) << uint(n-s.n), nil
			}
			return 0, err
		}
	}
	return (s.acc >> uint(s.n-n)) & (1<<uint(n) - 1), nil
}

func (s *bitScanner) skipBits(n int) {
	for n > 0 {
		if s.n == 0 {
			if s.fill() != nil {
				return
			}
		}
		take := n
		if take > s.n {
			take = s.n
		}
		s.n -= take
		n -= take
	}
}

// align discards bits up to the next byte boundary.
func (s *bitScanner) align() {
	s.n -= s.n % 8
}

// skipToEOL consumes an EOL code: any number of zero bits terminated
// by a single one bit.
func (s *bitScanner) skipToEOL() error {
	for {
		b, err := s.readBit()
		if err != nil {
			return err
		}
		if b == 1 {
			return nil
		}
	}
}
