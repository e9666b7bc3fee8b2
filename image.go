// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Exporting embedded images to files during extraction.

package pdf

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/image/tiff"
)

// An ImageWriter saves embedded image XObjects to a directory as pages
// are rendered. JPEG streams are copied through unchanged; other
// rasters are decoded and re-encoded as PNG, except bilevel images
// which become TIFF.
type ImageWriter struct {
	Dir string

	mu   sync.Mutex
	made bool
	seq  int
}

// NewImageWriter returns an ImageWriter saving into dir. The directory
// is created on first export.
func NewImageWriter(dir string) *ImageWriter {
	return &ImageWriter{Dir: dir}
}

// Export writes one image XObject to the output directory and returns
// the file name used.
func (iw *ImageWriter) Export(name string, img Value) (string, error) {
	iw.mu.Lock()
	defer iw.mu.Unlock()

	if !iw.made {
		if err := os.MkdirAll(iw.Dir, 0o755); err != nil {
			return "", wrapError("export image", err)
		}
		iw.made = true
	}
	iw.seq++

	w := int(img.Key("Width").Int64())
	h := int(img.Key("Height").Int64())
	base := fmt.Sprintf("%s.%d.%dx%d", sanitizeName(name), iw.seq, w, h)

	switch {
	case hasFilter(img, "DCTDecode"), hasFilter(img, "JPXDecode"):
		return iw.copyRaw(base+".jpg", img)
	case int(img.Key("BitsPerComponent").Int64()) == 1:
		return iw.writeBilevel(base+".tif", img, w, h)
	default:
		return iw.writeRaster(base+".png", img, w, h)
	}
}

// copyRaw writes the stream's (still-compressed) image data directly.
func (iw *ImageWriter) copyRaw(fname string, img Value) (string, error) {
	rd := img.Reader()
	defer rd.Close()
	f, err := os.Create(filepath.Join(iw.Dir, fname))
	if err != nil {
		return "", wrapError("export image", err)
	}
	if _, err := io.Copy(f, rd); err != nil {
		f.Close()
		return "", wrapError("export image", err)
	}
	if err := f.Close(); err != nil {
		return "", wrapError("export image", err)
	}
	return fname, nil
}

// writeBilevel saves a 1-bit image as TIFF, expanding the packed rows
// to 8-bit gray for the encoder.
func (iw *ImageWriter) writeBilevel(fname string, img Value, w, h int) (string, error) {
	data, err := readImageData(img)
	if err != nil {
		return "", err
	}
	stride := (w + 7) / 8
	if len(data) < stride*h {
		return "", wrapError("export image", ErrMalformedStream)
	}
	gray := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		row := data[y*stride:]
		for x := 0; x < w; x++ {
			if row[x/8]&(0x80>>uint(x%8)) != 0 {
				gray.SetGray(x, y, color.Gray{Y: 0xff})
			}
		}
	}
	f, err := os.Create(filepath.Join(iw.Dir, fname))
	if err != nil {
		return "", wrapError("export image", err)
	}
	err = tiff.Encode(f, gray, &tiff.Options{Compression: tiff.Deflate})
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return "", wrapError("export image", err)
	}
	return fname, nil
}

// writeRaster decodes an 8-bit gray or RGB raster and saves it as PNG.
func (iw *ImageWriter) writeRaster(fname string, img Value, w, h int) (string, error) {
	data, err := readImageData(img)
	if err != nil {
		return "", err
	}
	var m image.Image
	switch {
	case len(data) >= w*h*3:
		rgba := image.NewRGBA(image.Rect(0, 0, w, h))
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				i := (y*w + x) * 3
				j := rgba.PixOffset(x, y)
				rgba.Pix[j+0] = data[i+0]
				rgba.Pix[j+1] = data[i+1]
				rgba.Pix[j+2] = data[i+2]
				rgba.Pix[j+3] = 0xff
			}
		}
		m = rgba
	case len(data) >= w*h:
		gray := image.NewGray(image.Rect(0, 0, w, h))
		for y := 0; y < h; y++ {
			copy(gray.Pix[y*gray.Stride:], data[y*w:y*w+w])
		}
		m = gray
	default:
		return "", wrapError("export image", ErrMalformedStream)
	}
	f, err := os.Create(filepath.Join(iw.Dir, fname))
	if err != nil {
		return "", wrapError("export image", err)
	}
	err = png.Encode(f, m)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return "", wrapError("export image", err)
	}
	return fname, nil
}

func readImageData(img Value) ([]byte, error) {
	rd := img.Reader()
	defer rd.Close()
	data, err := io.ReadAll(rd)
	if err != nil {
		return nil, wrapError("export image", err)
	}
	return data, nil
}

// hasFilter reports whether the stream's filter chain contains the
// named filter.
func hasFilter(strm Value, filter string) bool {
	f := strm.Key("Filter")
	switch f.Kind() {
	case Name:
		return f.Name() == filter
	case Array:
		for i := 0; i < f.Len(); i++ {
			if f.Index(i).Name() == filter {
				return true
			}
		}
	}
	return false
}

func sanitizeName(s string) string {
	if s == "" {
		return "img"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, s)
}
