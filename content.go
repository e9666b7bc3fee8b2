// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pdf

import (
	"io"
)

// A Stack represents a stack of operand values during content stream
// interpretation.
type Stack struct {
	stack []Value
}

// Len returns the number of values on the stack.
func (stk *Stack) Len() int {
	return len(stk.stack)
}

// Push pushes a value on the stack.
func (stk *Stack) Push(v Value) {
	stk.stack = append(stk.stack, v)
}

// Pop pops the top value from the stack. Popping an empty stack returns
// a null Value, so operator handlers can pop their expected argument
// count without bounds checks.
func (stk *Stack) Pop() Value {
	n := len(stk.stack)
	if n == 0 {
		return Value{}
	}
	v := stk.stack[n-1]
	stk.stack = stk.stack[:n-1]
	return v
}

func (stk *Stack) clear() {
	stk.stack = stk.stack[:0]
}

// Interpret interprets the content in a stream as a basic PostScript
// program, pushing values onto a stack and then calling the do function
// for each operator with its operands below it on the stack. The do
// function pops its arguments in reverse order; leftover operands are
// discarded after each operator.
//
// Indirect references do not occur in content streams, so values pushed
// onto the stack carry no Reader.
func Interpret(strm Value, do func(stk *Stack, op string)) {
	rd := strm.Reader()
	defer rd.Close()
	interpretReader(rd, do)
}

// interpretReader runs the interpreter loop over an already-decoded
// content byte stream. Page content split across an array of streams is
// concatenated by the caller before interpretation.
func interpretReader(rd io.Reader, do func(stk *Stack, op string)) {
	sc := newScanner(rd, 0)
	sc.allowEOF = true

	var stk Stack
	for {
		tok := sc.readToken()
		if tok == nil || tok == io.EOF {
			break
		}
		kw, ok := tok.(keyword)
		if !ok {
			stk.Push(Value{data: tok})
			continue
		}
		switch kw {
		case "null":
			stk.Push(Value{})
		case "<<":
			stk.Push(Value{data: sc.readDict()})
		case "[":
			stk.Push(Value{data: sc.readArray()})
		case "]", ">>", "{", "}":
			// Stray close delimiter in a damaged stream; skip it.
		case "BI":
			skipInlineImage(sc)
			stk.clear()
		default:
			do(&stk, string(kw))
			stk.clear()
		}
	}
}

// skipInlineImage consumes an inline image: the parameter dictionary up
// to the ID operator, then raw image bytes up to a whitespace-delimited
// EI. Inline images carry no extractable text, so the data is discarded.
func skipInlineImage(sc *scanner) {
	for {
		tok := sc.readToken()
		if tok == nil || tok == io.EOF || tok == keyword("ID") {
			break
		}
	}
	// One whitespace byte separates ID from the data.
	var prev, cur byte = '\n', sc.readByte()
	for !sc.eof {
		c := sc.readByte()
		if prev == 'E' && cur == 'I' && (isSpace(c) || isDelim(c)) {
			sc.unreadByte()
			return
		}
		prev, cur = cur, c
	}
}
