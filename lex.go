// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Reading of PDF tokens and objects from a raw byte stream.

package pdf

import (
	"io"
	"strconv"
)

// A token is a PDF token in the input stream, one of the following Go types:
//
//	bool, a PDF boolean
//	int64, a PDF integer
//	float64, a PDF real
//	string, a PDF string literal
//	keyword, a PDF keyword
//	name, a PDF name without the leading slash
type token interface{}

// A name is a PDF name, without the leading slash.
type name string

// A keyword is a PDF keyword.
// Delimiter tokens used in higher-level syntax,
// such as "<<", ">>", "[", "]", "{", "}", are also treated as keywords.
type keyword string

// A scanner reads PDF tokens and objects from a byte stream at a given
// offset. String decryption happens here, because only the scanner knows
// which indirect object a string literal belongs to.
type scanner struct {
	r           io.Reader   // source of data
	ra          io.ReaderAt // non-nil when r supports random access; enables seek
	buf         []byte      // buffered data
	pos         int       // read index in buf
	offset      int64     // offset at end of buf; aka offset of next read
	tmp         []byte    // scratch space for accumulating token
	unread      []token   // queue of read but then unread tokens
	allowEOF    bool
	allowObjptr bool
	allowStream bool
	eof         bool
	key         []byte // decryption key, nil if the file is not encrypted
	useAES      bool
	objptr      objptr // object currently being scanned
}

// newScanner returns a scanner reading from r at the given offset.
// If r is also an io.ReaderAt, the scanner may seek to arbitrary offsets;
// otherwise offset is only bookkeeping over a sequential stream.
func newScanner(r io.Reader, offset int64) *scanner {
	s := &scanner{
		r:      r,
		offset: offset,
		buf:    make([]byte, 0, 4096),
		tmp:    make([]byte, 0, 256),
	}
	if ra, ok := r.(io.ReaderAt); ok {
		s.ra = ra
	}
	return s
}

// seek repositions the scanner. It requires a random-access source.
func (s *scanner) seek(offset int64) {
	s.offset = offset
	s.buf = s.buf[:0]
	s.pos = 0
	s.unread = s.unread[:0]
	s.eof = false
}

func (s *scanner) readByte() byte {
	if s.pos >= len(s.buf) {
		s.reload()
		if s.pos >= len(s.buf) {
			return '\n'
		}
	}
	c := s.buf[s.pos]
	s.pos++
	return c
}

func (s *scanner) reload() bool {
	want := cap(s.buf) - int(s.offset%int64(cap(s.buf)))
	var n int
	var err error
	if s.ra != nil {
		n, err = s.ra.ReadAt(s.buf[:want], s.offset)
	} else {
		n, err = s.r.Read(s.buf[:want])
	}
	if n == 0 && err != nil {
		s.buf = s.buf[:0]
		s.pos = 0
		s.eof = true
		return false
	}
	s.offset += int64(n)
	s.buf = s.buf[:n]
	s.pos = 0
	return true
}

func (s *scanner) seekForward(offset int64) {
	for s.offset < offset {
		if !s.reload() {
			return
		}
	}
	s.pos = len(s.buf) - int(s.offset-offset)
}

func (s *scanner) readOffset() int64 {
	return s.offset - int64(len(s.buf)) + int64(s.pos)
}

func (s *scanner) unreadByte() {
	if s.pos > 0 {
		s.pos--
	}
}

func (s *scanner) unreadToken(t token) {
	s.unread = append(s.unread, t)
}

func (s *scanner) readToken() token {
	if n := len(s.unread); n > 0 {
		t := s.unread[n-1]
		s.unread = s.unread[:n-1]
		return t
	}

	// Find first non-space, non-comment byte.
	c := s.readByte()
	for {
		if isSpace(c) {
			if s.eof {
				return io.EOF
			}
			c = s.readByte()
		} else if c == '%' {
			for c != '\r' && c != '\n' {
				c = s.readByte()
			}
		} else {
			break
		}
	}

	switch c {
	case '<':
		if s.readByte() == '<' {
			return keyword("<<")
		}
		s.unreadByte()
		return s.readHexString()

	case '(':
		return s.readLiteralString()

	case '[', ']', '{', '}':
		return keyword(string(c))

	case '/':
		return s.readName()

	case '>':
		if s.readByte() == '>' {
			return keyword(">>")
		}
		s.unreadByte()
		fallthrough

	default:
		if isDelim(c) {
			// Unexpected delimiter in a corrupted file; treat as end of stream.
			return nil
		}
		s.unreadByte()
		return s.readKeyword()
	}
}

func (s *scanner) readHexString() token {
	tmp := s.tmp[:0]
	for {
		c := s.readByte()
		for isSpace(c) {
			c = s.readByte()
		}
		if c == '>' {
			break
		}
		c2 := s.readByte()
		for isSpace(c2) {
			c2 = s.readByte()
		}
		// An odd number of hex digits is treated as if followed by 0.
		if c2 == '>' {
			if x := unhex(c); x >= 0 {
				tmp = append(tmp, byte(x<<4))
			}
			break
		}
		x1, x2 := unhex(c), unhex(c2)
		if x1 < 0 || x2 < 0 {
			// Viewers skip invalid hex characters; so do we.
			continue
		}
		tmp = append(tmp, byte(x1<<4|x2))
		if s.eof {
			break
		}
	}
	s.tmp = tmp
	return string(tmp)
}

func unhex(b byte) int {
	switch {
	case '0' <= b && b <= '9':
		return int(b) - '0'
	case 'a' <= b && b <= 'f':
		return int(b) - 'a' + 10
	case 'A' <= b && b <= 'F':
		return int(b) - 'A' + 10
	}
	return -1
}

func (s *scanner) readLiteralString() token {
	tmp := s.tmp[:0]
	depth := 1
Loop:
	for !s.eof {
		c := s.readByte()
		switch c {
		default:
			tmp = append(tmp, c)
		case '(':
			depth++
			tmp = append(tmp, c)
		case ')':
			if depth--; depth == 0 {
				break Loop
			}
			tmp = append(tmp, c)
		case '\\':
			switch c = s.readByte(); c {
			case 'n':
				tmp = append(tmp, '\n')
			case 'r':
				tmp = append(tmp, '\r')
			case 'b':
				tmp = append(tmp, '\b')
			case 't':
				tmp = append(tmp, '\t')
			case 'f':
				tmp = append(tmp, '\f')
			case '(', ')', '\\':
				tmp = append(tmp, c)
			case '\r':
				if s.readByte() != '\n' {
					s.unreadByte()
				}
				fallthrough
			case '\n':
				// line continuation, no append
			case '0', '1', '2', '3', '4', '5', '6', '7':
				x := int(c - '0')
				for i := 0; i < 2; i++ {
					c = s.readByte()
					if c < '0' || c > '7' {
						s.unreadByte()
						break
					}
					x = x*8 + int(c-'0')
				}
				tmp = append(tmp, byte(x&0xFF))
			default:
				// Unknown escape: the backslash is dropped and the
				// character kept, matching common reader behavior.
				tmp = append(tmp, c)
			}
		}
	}
	s.tmp = tmp
	return string(tmp)
}

func (s *scanner) readName() token {
	tmp := s.tmp[:0]
	for {
		c := s.readByte()
		if isDelim(c) || isSpace(c) {
			s.unreadByte()
			break
		}
		if c == '#' {
			x := unhex(s.readByte())<<4 | unhex(s.readByte())
			if x < 0 {
				// Not valid #XX hex escape; keep the bytes literally.
				s.unreadByte()
				s.unreadByte()
				tmp = append(tmp, '#')
				continue
			}
			tmp = append(tmp, byte(x))
			continue
		}
		tmp = append(tmp, c)
	}
	s.tmp = tmp
	return name(string(tmp))
}

func (s *scanner) readKeyword() token {
	tmp := s.tmp[:0]
	for {
		c := s.readByte()
		if isDelim(c) || isSpace(c) {
			s.unreadByte()
			break
		}
		tmp = append(tmp, c)
	}
	s.tmp = tmp
	kw := string(tmp)
	switch {
	case kw == "true":
		return true
	case kw == "false":
		return false
	case isInteger(kw):
		x, err := strconv.ParseInt(kw, 10, 64)
		if err != nil {
			return keyword(kw)
		}
		return x
	case isReal(kw):
		x, err := strconv.ParseFloat(kw, 64)
		if err != nil {
			return keyword(kw)
		}
		return x
	}
	return keyword(kw)
}

func isInteger(s string) bool {
	if len(s) > 0 && (s[0] == '+' || s[0] == '-') {
		s = s[1:]
	}
	if len(s) == 0 {
		return false
	}
	for _, c := range s {
		if c < '0' || '9' < c {
			return false
		}
	}
	return true
}

func isReal(s string) bool {
	if len(s) > 0 && (s[0] == '+' || s[0] == '-') {
		s = s[1:]
	}
	if len(s) == 0 {
		return false
	}
	ndot := 0
	for _, c := range s {
		if c == '.' {
			ndot++
			continue
		}
		if c < '0' || '9' < c {
			return false
		}
	}
	return ndot == 1
}

// Hard limit to prevent runaway array allocations on malformed files.
// Real-world argument arrays stay small (kerning runs, matrices), so
// 100k elements is a generous cap.
const maxArrayElements = 100_000

func (s *scanner) readObject() object {
	tok := s.readToken()
	if kw, ok := tok.(keyword); ok {
		switch kw {
		case "null":
			return nil
		case "<<":
			return s.readDict()
		case "[":
			return s.readArray()
		}
		// Any other keyword here means a corrupted object; read as null.
		return nil
	}

	if str, ok := tok.(string); ok && s.key != nil && s.objptr.id != 0 {
		tok = decryptString(s.key, s.useAES, s.objptr, str)
	}

	if !s.allowObjptr {
		return tok
	}

	if t1, ok := tok.(int64); ok && int64(uint32(t1)) == t1 {
		tok2 := s.readToken()
		if t2, ok := tok2.(int64); ok && int64(uint16(t2)) == t2 {
			tok3 := s.readToken()
			switch tok3 {
			case keyword("R"):
				return objptr{uint32(t1), uint16(t2)}
			case keyword("obj"):
				old := s.objptr
				s.objptr = objptr{uint32(t1), uint16(t2)}
				obj := s.readObject()
				if _, ok := obj.(stream); !ok {
					tok4 := s.readToken()
					if tok4 != keyword("endobj") {
						// Missing endobj is common in damaged files; push the
						// token back and carry on.
						if tok4 != nil && tok4 != io.EOF {
							s.unreadToken(tok4)
						}
					}
				}
				s.objptr = old
				return objdef{objptr{uint32(t1), uint16(t2)}, obj}
			}
			s.unreadToken(tok3)
		}
		s.unreadToken(tok2)
	}
	return tok
}

func (s *scanner) readArray() object {
	var x array
	for {
		tok := s.readToken()
		if tok == nil || tok == io.EOF || tok == keyword("]") {
			break
		}
		if len(x) >= maxArrayElements {
			break
		}
		s.unreadToken(tok)
		x = append(x, s.readObject())
	}
	return x
}

func (s *scanner) readDict() object {
	x := make(dict)
	for {
		tok := s.readToken()
		if tok == nil || tok == io.EOF || tok == keyword(">>") {
			break
		}
		n, ok := tok.(name)
		if !ok {
			// Non-name key: assume a missing ">>" and end the dictionary.
			s.unreadToken(tok)
			break
		}
		x[n] = s.readObject()
	}

	if !s.allowStream {
		return x
	}

	tok := s.readToken()
	if tok != keyword("stream") {
		s.unreadToken(tok)
		return x
	}

	switch s.readByte() {
	case '\r':
		if s.readByte() != '\n' {
			s.unreadByte()
		}
	case '\n':
		// ok
	default:
		// Missing newline after "stream"; back up one byte and treat it
		// as the start of the data.
		s.unreadByte()
	}

	return stream{x, s.objptr, s.readOffset()}
}

func isSpace(b byte) bool {
	switch b {
	case '\x00', '\t', '\n', '\f', '\r', ' ':
		return true
	}
	return false
}

func isDelim(b byte) bool {
	switch b {
	case '<', '>', '(', ')', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}
