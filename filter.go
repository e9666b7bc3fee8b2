// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Stream filter decoding.
//
// LZWDecode goes through golang.org/x/image/tiff/lzw rather than
// compress/lzw: PDF inherits the TIFF flavor of LZW, where the code width
// increases one code early (EarlyChange), and the standard library
// implements only the late-change GIF flavor.

package pdf

import (
	"bytes"
	"compress/zlib"
	"encoding/ascii85"
	"fmt"
	"io"

	"golang.org/x/image/tiff/lzw"
)

// applyFilter returns a reader decoding the given filter over rd.
// Filters that wrap native image codecs (DCTDecode, JPXDecode) are
// returned undecoded; the image side-channel writes them out as-is.
func applyFilter(rd io.Reader, filterName string, param Value) io.Reader {
	switch filterName {
	default:
		panic(fmt.Errorf("unsupported filter /%s", filterName))
	case "FlateDecode":
		zr, err := zlib.NewReader(rd)
		if err != nil {
			panic(err)
		}
		return applyPredictor(zr, param)
	case "LZWDecode":
		// The TIFF reader implements the early-change variant PDF uses.
		// EarlyChange=0 streams are rare and decode with at most a
		// one-code error at width boundaries.
		return applyPredictor(lzw.NewReader(rd, lzw.MSB, 8), param)
	case "CCITTFaxDecode":
		return newFaxReader(rd, param)
	case "ASCII85Decode":
		cleaned := cleanASCII85(rd)
		return ascii85.NewDecoder(cleaned)
	case "ASCIIHexDecode":
		return newASCIIHexReader(rd)
	case "RunLengthDecode":
		return newRunLengthReader(rd)
	case "DCTDecode", "JPXDecode":
		return rd
	}
}

// applyPredictor wraps rd with the PNG or TIFF predictor named in the
// DecodeParms dictionary. Predictor 1 (or absent) is the identity.
func applyPredictor(rd io.Reader, param Value) io.Reader {
	pred := param.Key("Predictor").Int64()
	if pred <= 1 {
		return rd
	}
	columns := int(param.Key("Columns").Int64())
	if columns == 0 {
		columns = 1
	}
	colors := int(param.Key("Colors").Int64())
	if colors == 0 {
		colors = 1
	}
	bpc := int(param.Key("BitsPerComponent").Int64())
	if bpc == 0 {
		bpc = 8
	}
	rowBytes := (columns*colors*bpc + 7) / 8
	sampleBytes := (colors*bpc + 7) / 8
	if sampleBytes < 1 {
		sampleBytes = 1
	}
	switch {
	case pred == 2:
		return &tiffPredictReader{r: rd, row: make([]byte, rowBytes), bpp: sampleBytes}
	case pred >= 10:
		return &pngPredictReader{r: rd, prev: make([]byte, rowBytes), bpp: sampleBytes, rowBytes: rowBytes}
	}
	panic(fmt.Errorf("unsupported predictor %d", pred))
}

type tiffPredictReader struct {
	r    io.Reader
	row  []byte
	bpp  int
	out  []byte
	done bool
}

func (t *tiffPredictReader) Read(p []byte) (int, error) {
	for len(t.out) == 0 {
		if t.done {
			return 0, io.EOF
		}
		n, err := io.ReadFull(t.r, t.row)
		if n == 0 {
			t.done = true
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				return 0, io.EOF
			}
			return 0, err
		}
		row := t.row[:n]
		for i := t.bpp; i < len(row); i++ {
			row[i] += row[i-t.bpp]
		}
		t.out = append(t.out[:0], row...)
		if err != nil {
			t.done = true
		}
	}
	n := copy(p, t.out)
	t.out = t.out[n:]
	return n, nil
}

type pngPredictReader struct {
	r        io.Reader
	prev     []byte
	bpp      int
	rowBytes int
	out      []byte
	buf      []byte
	done     bool
}

func (pr *pngPredictReader) Read(p []byte) (int, error) {
	for len(pr.out) == 0 {
		if pr.done {
			return 0, io.EOF
		}
		if pr.buf == nil {
			pr.buf = make([]byte, pr.rowBytes+1)
		}
		_, err := io.ReadFull(pr.r, pr.buf)
		if err != nil {
			pr.done = true
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				return 0, io.EOF
			}
			return 0, err
		}
		ft := pr.buf[0]
		row := pr.buf[1:]
		switch ft {
		case 0: // None
		case 1: // Sub
			for i := pr.bpp; i < len(row); i++ {
				row[i] += row[i-pr.bpp]
			}
		case 2: // Up
			for i := range row {
				row[i] += pr.prev[i]
			}
		case 3: // Average
			for i := range row {
				var left byte
				if i >= pr.bpp {
					left = row[i-pr.bpp]
				}
				row[i] += byte((int(left) + int(pr.prev[i])) / 2)
			}
		case 4: // Paeth
			for i := range row {
				var left, upleft byte
				if i >= pr.bpp {
					left = row[i-pr.bpp]
					upleft = pr.prev[i-pr.bpp]
				}
				row[i] += paeth(left, pr.prev[i], upleft)
			}
		default:
			pr.done = true
			return 0, fmt.Errorf("pdf: bad PNG predictor filter type %d", ft)
		}
		copy(pr.prev, row)
		pr.out = append(pr.out[:0], row...)
	}
	n := copy(p, pr.out)
	pr.out = pr.out[n:]
	return n, nil
}

// paeth implements the PNG Paeth predictor function.
func paeth(a, b, c byte) byte {
	p := int(a) + int(b) - int(c)
	pa, pb, pc := absInt(p-int(a)), absInt(p-int(b)), absInt(p-int(c))
	if pa <= pb && pa <= pc {
		return a
	}
	if pb <= pc {
		return b
	}
	return c
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// cleanASCII85 strips whitespace and the trailing "~>" marker so the
// stream can be fed to encoding/ascii85 directly.
func cleanASCII85(rd io.Reader) io.Reader {
	data, err := io.ReadAll(rd)
	if err != nil {
		return &errorReadCloser{err}
	}
	if i := bytes.Index(data, []byte("~>")); i >= 0 {
		data = data[:i]
	}
	out := make([]byte, 0, len(data))
	for _, c := range data {
		if !isSpace(c) {
			out = append(out, c)
		}
	}
	return bytes.NewReader(out)
}

type asciiHexReader struct {
	r    io.Reader
	data []byte
	pos  int
	init bool
	err  error
}

func newASCIIHexReader(r io.Reader) *asciiHexReader {
	return &asciiHexReader{r: r}
}

func (h *asciiHexReader) Read(p []byte) (int, error) {
	if !h.init {
		h.init = true
		raw, err := io.ReadAll(h.r)
		if err != nil {
			h.err = err
			return 0, err
		}
		var hi int = -1
		for _, c := range raw {
			if c == '>' {
				break
			}
			if isSpace(c) {
				continue
			}
			x := unhex(c)
			if x < 0 {
				h.err = fmt.Errorf("pdf: bad character %q in ASCIIHexDecode stream", c)
				return 0, h.err
			}
			if hi < 0 {
				hi = x
				continue
			}
			h.data = append(h.data, byte(hi<<4|x))
			hi = -1
		}
		if hi >= 0 {
			// Odd digit count: final digit is followed by an implicit 0.
			h.data = append(h.data, byte(hi<<4))
		}
	}
	if h.err != nil {
		return 0, h.err
	}
	if h.pos >= len(h.data) {
		return 0, io.EOF
	}
	n := copy(p, h.data[h.pos:])
	h.pos += n
	return n, nil
}

type runLengthReader struct {
	r    io.Reader
	data []byte
	pos  int
	init bool
}

func newRunLengthReader(r io.Reader) *runLengthReader {
	return &runLengthReader{r: r}
}

func (rl *runLengthReader) Read(p []byte) (int, error) {
	if !rl.init {
		rl.init = true
		raw, err := io.ReadAll(rl.r)
		if err != nil {
			return 0, err
		}
		for i := 0; i < len(raw); {
			l := raw[i]
			i++
			switch {
			case l == 128: // EOD
				i = len(raw)
			case l < 128:
				n := int(l) + 1
				if i+n > len(raw) {
					n = len(raw) - i
				}
				rl.data = append(rl.data, raw[i:i+n]...)
				i += n
			default:
				if i < len(raw) {
					for j := 0; j < 257-int(l); j++ {
						rl.data = append(rl.data, raw[i])
					}
					i++
				}
			}
		}
	}
	if rl.pos >= len(rl.data) {
		return 0, io.EOF
	}
	n := copy(p, rl.data[rl.pos:])
	rl.pos += n
	return n, nil
}
