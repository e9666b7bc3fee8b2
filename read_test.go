package pdf

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenClassicXref(t *testing.T) {
	doc := buildPDF(pageSpec{text: "hello"})
	r, err := NewReader(bytes.NewReader(doc), int64(len(doc)))
	require.NoError(t, err)
	assert.Equal(t, 1, r.NumPage())
	assert.Equal(t, "Catalog", r.Trailer().Key("Root").Key("Type").Name())
	assert.False(t, r.Encrypted())
	assert.True(t, r.CanExtract())
}

func TestLeadingGarbageBeforeHeader(t *testing.T) {
	w := newObjWriter()
	w.buf.Reset()
	w.buf.WriteString("\xEF\xBB\xBF  \n%PDF-1.4\n")
	w.obj(1, "<< /Type /Catalog /Pages 2 0 R >>")
	w.obj(2, "<< /Type /Pages /Kids [] /Count 0 >>")
	data := w.finish(3, "")

	r, err := NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	assert.Equal(t, 0, r.NumPage())
}

// buildXrefStreamPDF builds a PDF 1.5 file whose catalog and page tree
// live in an object stream, referenced through an xref stream with
// type 2 entries.
func buildXrefStreamPDF(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.5\n%\x80\x80\x80\x80\n")

	// Object stream holding objects 1 (catalog) and 2 (pages).
	body1 := "<< /Type /Catalog /Pages 2 0 R >>"
	body2 := "<< /Type /Pages /Kids [] /Count 0 >>"
	header := fmt.Sprintf("1 0 2 %d\n", len(body1)+1)
	payload := header + body1 + "\n" + body2

	var comp bytes.Buffer
	zw := zlib.NewWriter(&comp)
	zw.Write([]byte(payload))
	zw.Close()

	objStmOffset := buf.Len()
	fmt.Fprintf(&buf, "4 0 obj\n<< /Type /ObjStm /N 2 /First %d /Length %d /Filter /FlateDecode >>\nstream\n",
		len(header), comp.Len())
	buf.Write(comp.Bytes())
	buf.WriteString("\nendstream\nendobj\n")

	xrefOffset := buf.Len()
	entries := []byte{
		0, 0, 0, 255, // 0: free
		2, 0, 4, 0, // 1: in object stream 4, index 0
		2, 0, 4, 1, // 2: in object stream 4, index 1
		1, byte(xrefOffset >> 8), byte(xrefOffset), 0, // 3: the xref stream
		1, byte(objStmOffset >> 8), byte(objStmOffset), 0, // 4: the ObjStm
	}
	var xcomp bytes.Buffer
	zw = zlib.NewWriter(&xcomp)
	zw.Write(entries)
	zw.Close()

	fmt.Fprintf(&buf, "3 0 obj\n<< /Type /XRef /Size 5 /W [1 2 1] /Root 1 0 R /Length %d /Filter /FlateDecode >>\nstream\n",
		xcomp.Len())
	buf.Write(xcomp.Bytes())
	buf.WriteString("\nendstream\nendobj\n")
	fmt.Fprintf(&buf, "startxref\n%d\n%%%%EOF\n", xrefOffset)
	return buf.Bytes()
}

func TestXrefStreamWithObjectStream(t *testing.T) {
	data := buildXrefStreamPDF(t)
	r, err := NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	root := r.Trailer().Key("Root")
	assert.Equal(t, "Catalog", root.Key("Type").Name())
	assert.Equal(t, "Pages", root.Key("Pages").Key("Type").Name())
	assert.Equal(t, 0, r.NumPage())
}

func TestObjectCacheHonorsCachingFlag(t *testing.T) {
	doc := buildPDF(pageSpec{text: "cached"})

	r, err := newReader(bytes.NewReader(doc), int64(len(doc)), nil, true)
	require.NoError(t, err)
	assert.NotNil(t, r.cache)

	r, err = newReader(bytes.NewReader(doc), int64(len(doc)), nil, false)
	require.NoError(t, err)
	assert.Nil(t, r.cache)
	// Uncached loads still resolve correctly.
	assert.Equal(t, 1, r.NumPage())
}

func TestMissingPageIsNull(t *testing.T) {
	doc := buildPDF(pageSpec{text: "only"})
	r, err := NewReader(bytes.NewReader(doc), int64(len(doc)))
	require.NoError(t, err)
	assert.False(t, r.Page(1).V.IsNull())
	assert.True(t, r.Page(2).V.IsNull())
	assert.True(t, r.Page(0).V.IsNull())
}

func TestPageInheritedAttributes(t *testing.T) {
	doc := buildPDF(pageSpec{text: "x", rotate: 90})
	r, err := NewReader(bytes.NewReader(doc), int64(len(doc)))
	require.NoError(t, err)
	p := r.Page(1)
	assert.Equal(t, 90, p.Rotate())
	box := p.MediaBox()
	require.Equal(t, 4, box.Len())
	assert.Equal(t, 612.0, box.Index(2).Float64())
	assert.False(t, p.Resources().IsNull())
	assert.Equal(t, Stream, p.Contents().Kind())
}
