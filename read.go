// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package pdf extracts structured content from PDF files.
//
// # Overview
//
// A PDF document is a graph of Values, each of which has one of the
// following Kinds:
//
//	Null, for the null object.
//	Integer, for an integer.
//	Real, for a floating-point number.
//	Bool, for a boolean value.
//	Name, for a name constant (as in /Helvetica).
//	String, for a string constant.
//	Dict, for a dictionary of name-value pairs.
//	Array, for an array of values.
//	Stream, for an opaque data stream and associated header dictionary.
//
// The accessors on Value—Int64, Float64, Bool, Name, and so on—return a
// view of the data as the given type. When there is no appropriate view,
// the accessor returns a zero result, which makes it possible to traverse
// a document without error checking at every step.
//
// On top of the object graph the package implements the extraction
// pipeline: a page source that enumerates (optionally filtered and
// capped) pages, a resource manager that caches fonts and character maps
// for one extraction run, an interpreter that executes page content
// streams, and a family of output devices that serialize the interpreted
// content as plain text, XML, HTML, or a tagged dump. The top-level
// entry points ExtractToWriter and ExtractText tie the pipeline together.
package pdf

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"
	"sync"
)

// A Reader is a single PDF file open for reading.
type Reader struct {
	f          io.ReaderAt
	end        int64
	xref       []xref
	trailer    dict
	trailerptr objptr

	// encryption state
	encrypted bool
	ownerAuth bool
	key       []byte
	useAES    bool
	perm      uint32

	// per-run object cache, nil when caching is disabled
	cache *objectCache
}

// An xref maps an object pointer to its location: either a byte offset
// in the file, or a position inside an object stream.
type xref struct {
	ptr      objptr
	offset   int64
	inStream bool
	stream   objptr
}

type objectCache struct {
	mu    sync.RWMutex
	items map[objptr]object
}

func newObjectCache() *objectCache {
	return &objectCache{items: make(map[objptr]object)}
}

func (c *objectCache) get(ptr objptr) (object, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	obj, ok := c.items[ptr]
	return obj, ok
}

func (c *objectCache) put(ptr objptr, obj object) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[ptr] = obj
}

// Open opens a file for reading.
// The caller owns the returned *os.File and must close it when done.
func Open(file string) (*os.File, *Reader, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, nil, err
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	r, err := NewReader(f, fi.Size())
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	return f, r, nil
}

// NewReader opens a file for reading, using the data in f with the given
// total size. The file must not be encrypted with a non-empty password.
func NewReader(f io.ReaderAt, size int64) (*Reader, error) {
	return NewReaderEncrypted(f, size, nil)
}

// NewReaderEncrypted opens a file for reading.
// If the PDF is encrypted, NewReaderEncrypted calls pw repeatedly to
// obtain passwords to try. If pw returns the empty string, there are no
// more passwords to try and the open fails with ErrInvalidPassword.
func NewReaderEncrypted(f io.ReaderAt, size int64, pw func() string) (*Reader, error) {
	return newReader(f, size, pw, true)
}

func newReader(f io.ReaderAt, size int64, pw func() string, caching bool) (*Reader, error) {
	buf := make([]byte, 10)
	f.ReadAt(buf, 0)
	if !bytes.HasPrefix(buf, []byte("%PDF-1.")) {
		// Tolerate leading garbage (BOM, HTTP headers) before the header;
		// the xref machinery works from the end of the file anyway.
		head := make([]byte, 4096)
		n, _ := f.ReadAt(head, 0)
		if !bytes.Contains(head[:n], []byte("%PDF-")) {
			return nil, wrapError("read header", ErrCorrupted)
		}
	}

	end := size
	const endChunk = 1024
	n := int64(endChunk)
	if n > end {
		n = end
	}
	tail := make([]byte, n)
	f.ReadAt(tail, end-n)
	i := bytes.LastIndex(tail, []byte("startxref"))
	if i < 0 {
		return nil, wrapError("find startxref", ErrCorrupted)
	}
	var startxref int64
	for _, line := range bytes.Split(tail[i:], []byte("\n")) {
		s := string(bytes.TrimSpace(bytes.TrimSuffix(line, []byte("\r"))))
		if x, err := strconv.ParseInt(s, 10, 64); err == nil {
			startxref = x
			break
		}
	}
	if startxref == 0 {
		return nil, wrapError("find startxref", ErrCorrupted)
	}

	r := &Reader{
		f:   f,
		end: end,
	}
	if caching {
		r.cache = newObjectCache()
	}
	sc := newScanner(io.NewSectionReader(f, 0, end), startxref)
	sc.allowEOF = true
	sc.allowObjptr = true
	sc.allowStream = true
	trailer, err := r.readXrefChain(sc, startxref)
	if err != nil {
		return nil, err
	}
	r.trailer = trailer

	if encRef := trailer["Encrypt"]; encRef != nil {
		if err := r.initEncrypt(encRef, trailer, pw); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// readXrefChain reads the xref section at startxref and follows /Prev
// links. The first trailer seen is the document trailer; newer xref
// entries win over older ones.
func (r *Reader) readXrefChain(sc *scanner, start int64) (dict, error) {
	var main dict
	seen := make(map[int64]bool)
	offset := start
	for offset != 0 {
		if seen[offset] {
			// A cycle in the Prev chain would loop forever.
			break
		}
		seen[offset] = true
		trailer, prev, err := r.readXrefSection(sc, offset)
		if err != nil {
			return nil, err
		}
		if main == nil {
			main = trailer
		}
		offset = prev
	}
	if main == nil {
		return nil, wrapError("read xref", ErrCorrupted)
	}
	return main, nil
}

func (r *Reader) readXrefSection(sc *scanner, offset int64) (trailer dict, prev int64, err error) {
	sc.seek(offset)
	tok := sc.readToken()
	if tok == keyword("xref") {
		return r.readXrefTable(sc)
	}
	// Otherwise this must be an xref stream: "N G obj <<...>> stream".
	sc.seek(offset)
	obj := sc.readObject()
	def, ok := obj.(objdef)
	if !ok {
		return nil, 0, wrapError("read xref", ErrCorrupted)
	}
	strm, ok := def.obj.(stream)
	if !ok || dictKey(strm.hdr, "Type") != name("XRef") {
		return nil, 0, wrapError("read xref", ErrCorrupted)
	}
	return r.readXrefStream(def.ptr, strm)
}

func dictKey(d dict, key string) object {
	if d == nil {
		return nil
	}
	return d[name(key)]
}

func (r *Reader) readXrefTable(sc *scanner) (trailer dict, prev int64, err error) {
	for {
		tok := sc.readToken()
		if tok == keyword("trailer") {
			break
		}
		start, ok := tok.(int64)
		if !ok {
			return nil, 0, wrapError("read xref table", ErrCorrupted)
		}
		count, ok := sc.readToken().(int64)
		if !ok {
			return nil, 0, wrapError("read xref table", ErrCorrupted)
		}
		for i := int64(0); i < count; i++ {
			off, ok1 := sc.readToken().(int64)
			gen, ok2 := sc.readToken().(int64)
			kind, ok3 := sc.readToken().(keyword)
			if !ok1 || !ok2 || !ok3 {
				return nil, 0, wrapError("read xref table", ErrCorrupted)
			}
			if kind == "n" {
				r.addXref(xref{
					ptr:    objptr{uint32(start + i), uint16(gen)},
					offset: off,
				})
			}
		}
	}
	tobj := sc.readObject()
	td, ok := tobj.(dict)
	if !ok {
		return nil, 0, wrapError("read trailer", ErrCorrupted)
	}
	if p, ok := td["Prev"].(int64); ok {
		prev = p
	}
	return td, prev, nil
}

func (r *Reader) readXrefStream(ptr objptr, strm stream) (trailer dict, prev int64, err error) {
	defer func() {
		if e := recover(); e != nil {
			trailer, prev, err = nil, 0, wrapError("read xref stream", fmt.Errorf("%v", e))
		}
	}()

	hdr := strm.hdr
	size, _ := dictKey(hdr, "Size").(int64)
	wval, _ := dictKey(hdr, "W").(array)
	if len(wval) < 3 {
		return nil, 0, wrapError("read xref stream", ErrCorrupted)
	}
	var w [3]int
	for i := 0; i < 3; i++ {
		n, _ := wval[i].(int64)
		w[i] = int(n)
	}

	// Default index covers [0, Size).
	var index []int64
	if iv, ok := dictKey(hdr, "Index").(array); ok {
		for _, x := range iv {
			n, _ := x.(int64)
			index = append(index, n)
		}
	} else {
		index = []int64{0, size}
	}

	data, rerr := io.ReadAll(Value{r, ptr, strm}.Reader())
	if rerr != nil {
		return nil, 0, wrapError("read xref stream", rerr)
	}
	rowLen := w[0] + w[1] + w[2]
	pos := 0
	for i := 0; i+1 < len(index); i += 2 {
		first, count := index[i], index[i+1]
		for j := int64(0); j < count; j++ {
			if pos+rowLen > len(data) {
				break
			}
			row := data[pos : pos+rowLen]
			pos += rowLen
			f1 := int64(1)
			if w[0] > 0 {
				f1 = beInt(row[:w[0]])
			}
			f2 := beInt(row[w[0] : w[0]+w[1]])
			f3 := beInt(row[w[0]+w[1]:])
			id := uint32(first + j)
			switch f1 {
			case 1:
				r.addXref(xref{ptr: objptr{id, uint16(f3)}, offset: f2})
			case 2:
				r.addXref(xref{
					ptr:      objptr{id, 0},
					inStream: true,
					stream:   objptr{uint32(f2), 0},
					offset:   f3, // index within the object stream
				})
			}
		}
	}

	if p, ok := dictKey(hdr, "Prev").(int64); ok {
		prev = p
	}
	return hdr, prev, nil
}

func beInt(b []byte) int64 {
	var x int64
	for _, c := range b {
		x = x<<8 | int64(c)
	}
	return x
}

// addXref records an entry unless a newer section already defined it.
func (r *Reader) addXref(x xref) {
	for _, old := range r.xref {
		if old.ptr.id == x.ptr.id {
			return
		}
	}
	r.xref = append(r.xref, x)
}

func (r *Reader) findXref(ptr objptr) (xref, bool) {
	for _, x := range r.xref {
		if x.ptr.id == ptr.id {
			return x, true
		}
	}
	return xref{}, false
}

// initEncrypt parses the /Encrypt dictionary and authenticates a password.
// The empty password is tried first; then passwords from pw, until pw
// returns "".
func (r *Reader) initEncrypt(encRef object, trailer dict, pw func() string) error {
	r.encrypted = true
	enc, _ := r.resolve(objptr{}, encRef).data.(dict)
	if enc == nil {
		return wrapError("read encrypt dictionary", ErrCorrupted)
	}
	if n, _ := dictKey(enc, "Filter").(name); n != "Standard" {
		return wrapError("init decryption", ErrUnsupportedEncryption)
	}

	info := &encryptInfo{encMeta: true}
	if v, ok := dictKey(enc, "V").(int64); ok {
		info.v = int(v)
	}
	if rev, ok := dictKey(enc, "R").(int64); ok {
		info.r = int(rev)
	}
	if info.r < 2 || info.r > 4 {
		return wrapError("init decryption", ErrUnsupportedEncryption)
	}
	info.length = 5
	if l, ok := dictKey(enc, "Length").(int64); ok {
		info.length = int(l) / 8
	}
	o, _ := dictKey(enc, "O").(string)
	u, _ := dictKey(enc, "U").(string)
	info.o, info.u = []byte(o), []byte(u)
	if p, ok := dictKey(enc, "P").(int64); ok {
		info.p = uint32(p)
	}
	if em, ok := dictKey(enc, "EncryptMetadata").(bool); ok {
		info.encMeta = em
	}
	if ids, ok := trailer["ID"].(array); ok && len(ids) > 0 {
		if id0, ok := ids[0].(string); ok {
			info.id0 = id0
		}
	}
	if info.v == 4 {
		if cf, ok := dictKey(enc, "CF").(dict); ok {
			if std, ok := dictKey(cf, "StdCF").(dict); ok {
				if cfm, _ := dictKey(std, "CFM").(name); cfm == "AESV2" {
					info.useAES = true
				}
			}
		}
	}

	try := func(password string) bool {
		if key := info.authUserPassword(password); key != nil {
			r.key = key
			return true
		}
		if key := info.authOwnerPassword(password); key != nil {
			r.key = key
			r.ownerAuth = true
			return true
		}
		return false
	}

	ok := try("")
	for !ok && pw != nil {
		password := pw()
		if password == "" {
			break
		}
		ok = try(password)
	}
	if !ok {
		return ErrInvalidPassword
	}
	r.useAES = info.useAES
	r.perm = info.p
	return nil
}

// Encrypted reports whether the document is encrypted.
func (r *Reader) Encrypted() bool {
	return r.encrypted
}

// CanExtract reports whether the document permits text extraction.
// Unencrypted documents and documents opened with the owner password
// always do; otherwise the copy bit of /P decides.
func (r *Reader) CanExtract() bool {
	if !r.encrypted || r.ownerAuth {
		return true
	}
	return r.perm&PermCopy != 0
}

// Trailer returns the file's Trailer value.
func (r *Reader) Trailer() Value {
	return Value{r, r.trailerptr, r.trailer}
}

// resolve resolves a value that may be an indirect object reference.
func (r *Reader) resolve(parent objptr, x object) Value {
	if ptr, ok := x.(objptr); ok {
		return r.load(ptr)
	}
	return Value{r, parent, x}
}

func (r *Reader) load(ptr objptr) Value {
	if r.cache != nil {
		if obj, ok := r.cache.get(ptr); ok {
			return Value{r, ptr, obj}
		}
	}
	x, ok := r.findXref(ptr)
	if !ok {
		return Value{}
	}

	var obj object
	if x.inStream {
		obj = r.loadFromObjectStream(x)
	} else {
		sc := newScanner(io.NewSectionReader(r.f, 0, r.end), x.offset)
		sc.allowEOF = true
		sc.allowObjptr = true
		sc.allowStream = true
		sc.key = r.key
		sc.useAES = r.useAES
		o := sc.readObject()
		def, ok := o.(objdef)
		if !ok || def.ptr != ptr {
			return Value{}
		}
		obj = def.obj
	}

	if r.cache != nil {
		r.cache.put(ptr, obj)
	}
	return Value{r, ptr, obj}
}

// loadFromObjectStream extracts an object stored inside an /ObjStm stream.
func (r *Reader) loadFromObjectStream(x xref) object {
	container := r.load(x.stream)
	if container.Kind() != Stream || container.Key("Type").Name() != "ObjStm" {
		return nil
	}
	n := int(container.Key("N").Int64())
	first := container.Key("First").Int64()
	data, err := io.ReadAll(container.Reader())
	if err != nil {
		return nil
	}

	// Header: n pairs of (object number, offset relative to First).
	hs := newScanner(bytes.NewReader(data), 0)
	hs.allowEOF = true
	type pair struct {
		id  uint32
		off int64
	}
	pairs := make([]pair, 0, n)
	for i := 0; i < n; i++ {
		id, ok1 := hs.readToken().(int64)
		off, ok2 := hs.readToken().(int64)
		if !ok1 || !ok2 {
			return nil
		}
		pairs = append(pairs, pair{uint32(id), off})
	}
	idx := int(x.offset)
	if idx < 0 || idx >= len(pairs) || pairs[idx].id != x.ptr.id {
		// Fall back to searching by object number.
		idx = -1
		for i, p := range pairs {
			if p.id == x.ptr.id {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil
		}
	}
	body := newScanner(bytes.NewReader(data), 0)
	body.allowEOF = true
	body.allowObjptr = true
	body.seek(first + pairs[idx].off)
	// Strings inside object streams are never individually encrypted.
	return body.readObject()
}
