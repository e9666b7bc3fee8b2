package pdf

import (
	"bytes"
	"crypto/md5"
	"crypto/rc4"
	"fmt"
)

// objWriter assembles a classic-xref PDF in memory, tracking object
// offsets for the cross-reference table.
type objWriter struct {
	buf     bytes.Buffer
	offsets map[int]int
}

func newObjWriter() *objWriter {
	w := &objWriter{offsets: make(map[int]int)}
	w.buf.WriteString("%PDF-1.4\n%\x80\x80\x80\x80\n")
	return w
}

func (w *objWriter) obj(num int, body string) {
	w.offsets[num] = w.buf.Len()
	fmt.Fprintf(&w.buf, "%d 0 obj\n%s\nendobj\n", num, body)
}

func (w *objWriter) streamObj(num int, dict string, data []byte) {
	w.offsets[num] = w.buf.Len()
	fmt.Fprintf(&w.buf, "%d 0 obj\n<< %s /Length %d >>\nstream\n", num, dict, len(data))
	w.buf.Write(data)
	w.buf.WriteString("\nendstream\nendobj\n")
}

// finish writes the xref table and trailer. extraTrailer is spliced
// into the trailer dictionary.
func (w *objWriter) finish(size int, extraTrailer string) []byte {
	xref := w.buf.Len()
	fmt.Fprintf(&w.buf, "xref\n0 %d\n", size)
	w.buf.WriteString("0000000000 65535 f \n")
	for i := 1; i < size; i++ {
		fmt.Fprintf(&w.buf, "%010d %05d n \n", w.offsets[i], 0)
	}
	fmt.Fprintf(&w.buf, "trailer\n<< /Size %d /Root 1 0 R %s >>\nstartxref\n%d\n%%%%EOF\n", size, extraTrailer, xref)
	return w.buf.Bytes()
}

// pageSpec describes one page of a synthetic document.
type pageSpec struct {
	text   string // shown at 72,720 with /F1 at 12pt
	rotate int    // /Rotate entry; 0 omits it
	tagged bool   // wrap the text in a /P marked-content section
}

// buildPDF builds an unencrypted document with one Helvetica font
// shared by all pages.
func buildPDF(pages ...pageSpec) []byte {
	n := len(pages)
	w := newObjWriter()

	kids := ""
	for i := range pages {
		kids += fmt.Sprintf("%d 0 R ", 4+2*i)
	}
	w.obj(1, "<< /Type /Catalog /Pages 2 0 R >>")
	w.obj(2, fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", kids, n))
	w.obj(3, "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>")

	for i, p := range pages {
		pageNum, contNum := 4+2*i, 5+2*i
		rot := ""
		if p.rotate != 0 {
			rot = fmt.Sprintf(" /Rotate %d", p.rotate)
		}
		w.obj(pageNum, fmt.Sprintf(
			"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R%s >>",
			contNum, rot))
		w.streamObj(contNum, "", []byte(contentFor(p)))
	}
	return w.finish(4+2*n, "")
}

func contentFor(p pageSpec) string {
	show := fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", escapeLiteral(p.text))
	if p.tagged {
		return "/P BMC " + show + " EMC"
	}
	return show
}

func escapeLiteral(s string) string {
	var b bytes.Buffer
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '(', ')', '\\':
			b.WriteByte('\\')
			b.WriteByte(c)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

const fixtureID0 = "0123456789abcdef"

// buildEncryptedPDF builds a one-page document protected with the
// standard security handler, V2/R3 RC4 with a 128-bit key. perm is the
// /P bit field.
func buildEncryptedPDF(userPW, ownerPW string, perm uint32, text string) []byte {
	o := computeOwnerEntry(userPW, ownerPW)
	e := &encryptInfo{v: 2, r: 3, length: 16, o: o, p: perm, id0: fixtureID0, encMeta: true}
	key := e.computeKey(userPW)
	u := computeUserEntry(key)

	w := newObjWriter()
	w.obj(1, "<< /Type /Catalog /Pages 2 0 R >>")
	w.obj(2, "<< /Type /Pages /Kids [4 0 R] /Count 1 >>")
	w.obj(3, "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>")
	w.obj(4, "<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 3 0 R >> >> /Contents 5 0 R >>")

	content := []byte(contentFor(pageSpec{text: text}))
	enc := make([]byte, len(content))
	c, _ := rc4.NewCipher(objectKey(key, false, objptr{5, 0}))
	c.XORKeyStream(enc, content)
	w.streamObj(5, "", enc)

	w.obj(6, fmt.Sprintf(
		"<< /Filter /Standard /V 2 /R 3 /Length 128 /O <%x> /U <%x> /P %d >>",
		o, u, int32(perm)))

	return w.finish(7, fmt.Sprintf("/Encrypt 6 0 R /ID [<%x> <%x>]", fixtureID0, fixtureID0))
}

// computeOwnerEntry implements Algorithm 3 for R3: derive /O from the
// owner and user passwords.
func computeOwnerEntry(userPW, ownerPW string) []byte {
	if ownerPW == "" {
		ownerPW = userPW
	}
	key := md5sum(padPassword(ownerPW))
	for i := 0; i < 50; i++ {
		key = md5sum(key)
	}
	ownerKey := key[:16]

	o := padPassword(userPW)
	for i := 0; i <= 19; i++ {
		k := make([]byte, len(ownerKey))
		for j := range ownerKey {
			k[j] = ownerKey[j] ^ byte(i)
		}
		c, _ := rc4.NewCipher(k)
		c.XORKeyStream(o, o)
	}
	return o
}

// computeUserEntry implements Algorithm 5 for R3: derive /U from the
// file key.
func computeUserEntry(key []byte) []byte {
	h := md5.New()
	h.Write(passwordPad)
	h.Write([]byte(fixtureID0))
	u := h.Sum(nil)
	for i := 0; i <= 19; i++ {
		k := make([]byte, len(key))
		for j := range key {
			k[j] = key[j] ^ byte(i)
		}
		c, _ := rc4.NewCipher(k)
		c.XORKeyStream(u, u)
	}
	return append(u, make([]byte, 16)...)
}
