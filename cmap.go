// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// ToUnicode character maps: mapping character codes to Unicode text.

package pdf

import (
	"bytes"
	"io"
)

// A CMap maps character codes (1 to 4 bytes) to Unicode strings.
// Only the ToUnicode subset of the CMap language is understood:
// codespacerange, bfchar, and bfrange sections.
type CMap struct {
	spaces   []codespace
	chars    map[uint32]string
	ranges   []bfrange
	maxBytes int
}

type codespace struct {
	nbytes int
	lo, hi uint32
}

type bfrange struct {
	nbytes int
	lo, hi uint32
	dst    string   // base mapping, incremented through the range
	list   []string // explicit per-code mappings, when given as an array
}

// parseToUnicode parses the contents of a ToUnicode CMap stream.
func parseToUnicode(data []byte) *CMap {
	c := &CMap{chars: make(map[uint32]string), maxBytes: 1}
	sc := newScanner(bytes.NewReader(data), 0)
	sc.allowEOF = true

	var stack []token
	for {
		tok := sc.readToken()
		if tok == nil || tok == io.EOF {
			break
		}
		kw, ok := tok.(keyword)
		if !ok {
			stack = append(stack, tok)
			continue
		}
		switch kw {
		case "begincodespacerange":
			stack = stack[:0]
		case "endcodespacerange":
			for i := 0; i+1 < len(stack); i += 2 {
				lo, ok1 := stack[i].(string)
				hi, ok2 := stack[i+1].(string)
				if !ok1 || !ok2 || len(lo) != len(hi) || len(lo) == 0 || len(lo) > 4 {
					continue
				}
				c.addCodespace(lo, hi)
			}
			stack = stack[:0]
		case "beginbfchar":
			stack = stack[:0]
		case "endbfchar":
			for i := 0; i+1 < len(stack); i += 2 {
				src, ok1 := stack[i].(string)
				dst, ok2 := stack[i+1].(string)
				if !ok1 || !ok2 || len(src) == 0 || len(src) > 4 {
					continue
				}
				c.noteLen(len(src))
				c.chars[beCode(src)] = decodeUTF16BE(dst)
			}
			stack = stack[:0]
		case "beginbfrange":
			stack = stack[:0]
		case "endbfrange":
			c.endBFRange(stack)
			stack = stack[:0]
		case "[":
			arr := c.readTokenArray(sc)
			stack = append(stack, arr)
		default:
			// Other operators (begincmap, def, usecmap...) reset nothing.
		}
	}
	if len(c.spaces) == 0 {
		// Without explicit codespaces assume the common 2-byte identity
		// space when any 2-byte mapping exists, else 1-byte.
		n := 1
		if c.maxBytes > 1 {
			n = c.maxBytes
		}
		c.spaces = append(c.spaces, codespace{nbytes: n, lo: 0, hi: 1<<(8*n) - 1})
	}
	return c
}

func (c *CMap) addCodespace(lo, hi string) {
	c.noteLen(len(lo))
	c.spaces = append(c.spaces, codespace{
		nbytes: len(lo),
		lo:     beCode(lo),
		hi:     beCode(hi),
	})
}

func (c *CMap) noteLen(n int) {
	if n > c.maxBytes {
		c.maxBytes = n
	}
}

// endBFRange consumes triples (lo hi dst) where dst is either a string
// incremented through the range or an array of per-code strings.
func (c *CMap) endBFRange(stack []token) {
	for i := 0; i+2 < len(stack); i += 3 {
		lo, ok1 := stack[i].(string)
		hi, ok2 := stack[i+1].(string)
		if !ok1 || !ok2 || len(lo) == 0 || len(lo) > 4 || len(lo) != len(hi) {
			continue
		}
		c.noteLen(len(lo))
		switch dst := stack[i+2].(type) {
		case string:
			c.ranges = append(c.ranges, bfrange{
				nbytes: len(lo),
				lo:     beCode(lo),
				hi:     beCode(hi),
				dst:    dst,
			})
		case []token:
			list := make([]string, 0, len(dst))
			for _, t := range dst {
				s, _ := t.(string)
				list = append(list, decodeUTF16BE(s))
			}
			c.ranges = append(c.ranges, bfrange{
				nbytes: len(lo),
				lo:     beCode(lo),
				hi:     beCode(hi),
				list:   list,
			})
		}
	}
}

// readTokenArray reads tokens until the matching "]".
func (c *CMap) readTokenArray(sc *scanner) []token {
	var arr []token
	for {
		tok := sc.readToken()
		if tok == nil || tok == io.EOF || tok == keyword("]") {
			break
		}
		arr = append(arr, tok)
	}
	return arr
}

// Decode maps a raw byte string through the CMap, yielding UTF-8 text
// and the number of codes consumed per output chunk via the emit callback.
func (c *CMap) Decode(raw string, emit func(code uint32, nbytes int, text string)) {
	for len(raw) > 0 {
		n, code := c.nextCode(raw)
		text, ok := c.lookup(code)
		if !ok {
			// Unmapped code: drop it rather than inventing bytes.
			text = ""
		}
		emit(code, n, text)
		raw = raw[n:]
	}
}

// nextCode determines the byte length of the next code using the
// codespace ranges, defaulting to the shortest declared length.
func (c *CMap) nextCode(raw string) (int, uint32) {
	for _, sp := range c.spaces {
		if sp.nbytes > len(raw) {
			continue
		}
		code := beCode(raw[:sp.nbytes])
		if sp.lo <= code && code <= sp.hi {
			return sp.nbytes, code
		}
	}
	n := c.spaces[0].nbytes
	if n > len(raw) {
		n = len(raw)
	}
	return n, beCode(raw[:n])
}

func (c *CMap) lookup(code uint32) (string, bool) {
	if s, ok := c.chars[code]; ok {
		return s, true
	}
	for _, r := range c.ranges {
		if code < r.lo || code > r.hi {
			continue
		}
		if r.list != nil {
			i := int(code - r.lo)
			if i < len(r.list) {
				return r.list[i], true
			}
			continue
		}
		// Increment the last code unit of dst by the offset.
		return incrementUTF16BE(r.dst, code-r.lo), true
	}
	return "", false
}

// beCode interprets up to 4 bytes as a big-endian code.
func beCode(s string) uint32 {
	var x uint32
	for i := 0; i < len(s); i++ {
		x = x<<8 | uint32(s[i])
	}
	return x
}

// decodeUTF16BE converts a big-endian UTF-16 byte string to UTF-8.
// Single-byte destinations are taken as Latin-1.
func decodeUTF16BE(s string) string {
	if len(s)%2 != 0 {
		return s
	}
	return utf16Decode(s)
}

// incrementUTF16BE adds delta to the final UTF-16 code unit of s and
// decodes the result, implementing bfrange destination stepping.
func incrementUTF16BE(s string, delta uint32) string {
	if len(s) < 2 || len(s)%2 != 0 {
		return decodeUTF16BE(s)
	}
	b := []byte(s)
	last := uint32(b[len(b)-2])<<8 | uint32(b[len(b)-1])
	last += delta
	b[len(b)-2] = byte(last >> 8)
	b[len(b)-1] = byte(last)
	return decodeUTF16BE(string(b))
}
