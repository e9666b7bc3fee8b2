package pdf

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func extract(t *testing.T, data []byte, cfg Config) string {
	t.Helper()
	var out bytes.Buffer
	err := ExtractToWriter(bytes.NewReader(data), &out, cfg)
	require.NoError(t, err)
	return out.String()
}

func TestExtractSimpleText(t *testing.T) {
	doc := buildPDF(pageSpec{text: "Hello, world"})
	got := extract(t, doc, Config{})
	assert.Contains(t, got, "Hello, world")
	assert.True(t, strings.HasSuffix(got, "\f"), "page should end with a form feed")
}

func TestFormFeedPerPage(t *testing.T) {
	doc := buildPDF(
		pageSpec{text: "first"},
		pageSpec{text: "second"},
		pageSpec{text: "third"},
	)
	got := extract(t, doc, Config{})
	assert.Equal(t, 3, strings.Count(got, "\f"))
	assert.Contains(t, got, "first")
	assert.Contains(t, got, "second")
	assert.Contains(t, got, "third")
}

func TestPageSelectionThenCap(t *testing.T) {
	doc := buildPDF(
		pageSpec{text: "alpha"},
		pageSpec{text: "bravo"},
		pageSpec{text: "charlie"},
		pageSpec{text: "delta"},
		pageSpec{text: "echo"},
	)
	// Selection filters first, the cap applies after, and document
	// order wins regardless of the order given.
	got := extract(t, doc, Config{PageNumbers: []int{4, 0, 2}, MaxPages: 2})
	assert.Equal(t, 2, strings.Count(got, "\f"))
	assert.Contains(t, got, "alpha")
	assert.Contains(t, got, "charlie")
	assert.NotContains(t, got, "echo")
	assert.NotContains(t, got, "bravo")
	assert.Less(t, strings.Index(got, "alpha"), strings.Index(got, "charlie"))
}

func TestMaxPagesAlone(t *testing.T) {
	doc := buildPDF(pageSpec{text: "one"}, pageSpec{text: "two"}, pageSpec{text: "three"})
	got := extract(t, doc, Config{MaxPages: 2})
	assert.Equal(t, 2, strings.Count(got, "\f"))
	assert.NotContains(t, got, "three")
}

func TestRotationAddsToIntrinsic(t *testing.T) {
	doc := buildPDF(pageSpec{text: "turned", rotate: 270})

	got := extract(t, doc, Config{Output: OutputXML, Rotation: 180})
	assert.Contains(t, got, `rotate="90"`)
	assert.Contains(t, got, "turned")

	// The extra rotation is per run; the document's value is untouched.
	got = extract(t, doc, Config{Output: OutputXML})
	assert.Contains(t, got, `rotate="270"`)
}

func TestRotatedPageStillExtracts(t *testing.T) {
	doc := buildPDF(pageSpec{text: "sideways", rotate: 90})
	got := extract(t, doc, Config{})
	assert.Contains(t, got, "sideways")
}

func TestExtractTextMatchesWriter(t *testing.T) {
	doc := buildPDF(pageSpec{text: "same either way"}, pageSpec{text: "page two"})
	path := filepath.Join(t.TempDir(), "doc.pdf")
	require.NoError(t, os.WriteFile(path, doc, 0o644))

	fromPath, err := ExtractText(path, nil)
	require.NoError(t, err)

	fromWriter := extract(t, doc, Config{LAParams: DefaultLAParams()})
	assert.Equal(t, fromWriter, fromPath)
}

func TestEncryptedRightPassword(t *testing.T) {
	doc := buildEncryptedPDF("secret", "owner", 0xFFFFFFFC, "locked away")
	got := extract(t, doc, Config{Password: "secret"})
	assert.Contains(t, got, "locked away")
}

func TestEncryptedOwnerPassword(t *testing.T) {
	doc := buildEncryptedPDF("secret", "owner", 0xFFFFFFFC, "locked away")
	got := extract(t, doc, Config{Password: "owner"})
	assert.Contains(t, got, "locked away")
}

func TestEncryptedWrongPassword(t *testing.T) {
	doc := buildEncryptedPDF("secret", "owner", 0xFFFFFFFC, "locked away")
	var out bytes.Buffer
	err := ExtractToWriter(bytes.NewReader(doc), &out, Config{Password: "nope"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidPassword)
	assert.Zero(t, out.Len(), "no output before authentication")
}

func TestExtractionForbiddenByPermissions(t *testing.T) {
	// Copy bit cleared, empty user password: the document opens but
	// extraction is refused.
	doc := buildEncryptedPDF("", "owner", 0xFFFFFFEC, "no copying")
	var out bytes.Buffer
	err := ExtractToWriter(bytes.NewReader(doc), &out, Config{})
	assert.ErrorIs(t, err, ErrNotExtractable)
	assert.Zero(t, out.Len())
}

func TestPermissionsIgnoredForOwner(t *testing.T) {
	doc := buildEncryptedPDF("", "owner", 0xFFFFFFEC, "no copying")
	got := extract(t, doc, Config{Password: "owner"})
	assert.Contains(t, got, "no copying")
}

func TestTagOutput(t *testing.T) {
	doc := buildPDF(pageSpec{text: "tagged text", tagged: true})
	got := extract(t, doc, Config{Output: OutputTag})
	assert.Contains(t, got, "<P>tagged text</P>")
	assert.Contains(t, got, `<page id="1"`)
	assert.Contains(t, got, "</page>")
}

func TestTagIgnoresLayoutParams(t *testing.T) {
	doc := buildPDF(pageSpec{text: "tagged text", tagged: true})
	plain := extract(t, doc, Config{Output: OutputTag})
	tuned := extract(t, doc, Config{Output: OutputTag, LAParams: &LAParams{
		WordMargin: 999, CharMargin: 0.001, LineMargin: 999,
	}})
	assert.Equal(t, plain, tuned)
}

func TestXMLStructure(t *testing.T) {
	doc := buildPDF(pageSpec{text: "Hi"})
	got := extract(t, doc, Config{Output: OutputXML})
	assert.True(t, strings.HasPrefix(got, "<?xml"))
	assert.Contains(t, got, "<pages>")
	assert.Contains(t, got, "<textbox")
	assert.Contains(t, got, "<textline")
	assert.Contains(t, got, `font="Helvetica"`)
	assert.Contains(t, got, ">H</text>")
	assert.True(t, strings.HasSuffix(got, "</pages>\n"))
}

func TestHTMLStructure(t *testing.T) {
	doc := buildPDF(pageSpec{text: "Hi"})
	got := extract(t, doc, Config{Output: OutputHTML, LayoutMode: "exact", Scale: 2})
	assert.Contains(t, got, "<html>")
	assert.Contains(t, got, "position:absolute")
	assert.Contains(t, got, "Hi")
	assert.True(t, strings.HasSuffix(got, "</body></html>\n"))
}

// failReadSeeker proves the source is never touched when configuration
// is invalid.
type failReadSeeker struct{ t *testing.T }

func (f failReadSeeker) Read([]byte) (int, error) {
	f.t.Fatal("source read before configuration was validated")
	return 0, nil
}

func (f failReadSeeker) Seek(int64, int) (int64, error) {
	f.t.Fatal("source touched before configuration was validated")
	return 0, nil
}

func TestInvalidConfigRejectedFirst(t *testing.T) {
	var cerr *ConfigError

	err := ExtractToWriter(failReadSeeker{t}, io.Discard, Config{Output: OutputKind(42)})
	require.Error(t, err)
	assert.ErrorAs(t, err, &cerr)

	err = ExtractToWriter(failReadSeeker{t}, io.Discard, Config{Codec: "no-such-codec"})
	require.Error(t, err)
	assert.ErrorAs(t, err, &cerr)

	err = ExtractToWriter(failReadSeeker{t}, io.Discard, Config{LayoutMode: "fancy"})
	require.Error(t, err)
	assert.ErrorAs(t, err, &cerr)

	err = ExtractToWriter(failReadSeeker{t}, io.Discard, Config{MaxPages: -1})
	require.Error(t, err)
	assert.ErrorAs(t, err, &cerr)
}

// malformedContentPDF builds a one-page document whose content stream
// cannot be decoded: the filter dictionary is honest but the payload
// is not.
func malformedContentPDF(filter string, data []byte) []byte {
	w := newObjWriter()
	w.obj(1, "<< /Type /Catalog /Pages 2 0 R >>")
	w.obj(2, "<< /Type /Pages /Kids [3 0 R] /Count 1 >>")
	w.obj(3, "<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Contents 4 0 R >>")
	w.streamObj(4, "/Filter /"+filter, data)
	return w.finish(5, "")
}

func TestCorruptContentStreamIsAnError(t *testing.T) {
	doc := malformedContentPDF("FlateDecode", []byte("this is not zlib data"))
	var out bytes.Buffer
	err := ExtractToWriter(bytes.NewReader(doc), &out, Config{})
	require.Error(t, err)
	var perr *PDFError
	assert.ErrorAs(t, err, &perr)
	assert.Equal(t, 0, perr.Page)
}

func TestUnsupportedContentFilterIsAnError(t *testing.T) {
	doc := malformedContentPDF("JBIG2Decode", []byte{0x00, 0x01})
	var out bytes.Buffer
	err := ExtractToWriter(bytes.NewReader(doc), &out, Config{})
	require.Error(t, err)
	var perr *PDFError
	assert.ErrorAs(t, err, &perr)
	assert.Contains(t, err.Error(), "JBIG2Decode")
}

func TestRotationDeltaAnyDegrees(t *testing.T) {
	doc := buildPDF(pageSpec{text: "tilted", rotate: 270})

	// Deltas that are not multiples of 90 are accepted and reduced
	// modulo 360; they just do not reorient the page.
	got := extract(t, doc, Config{Output: OutputXML, Rotation: 135})
	assert.Contains(t, got, `rotate="45"`)
	assert.Contains(t, got, "tilted")

	got = extract(t, doc, Config{Output: OutputXML, Rotation: 450})
	assert.Contains(t, got, `rotate="0"`)

	got = extract(t, doc, Config{Output: OutputXML, Rotation: -90})
	assert.Contains(t, got, `rotate="180"`)
}

func TestCodecTranscoding(t *testing.T) {
	doc := buildPDF(pageSpec{text: "plain ascii"})
	utf8Out := extract(t, doc, Config{})
	latinOut := extract(t, doc, Config{Codec: "iso-8859-1"})
	// ASCII survives any single-byte codec unchanged.
	assert.Equal(t, utf8Out, latinOut)
}

func TestCachingOffMatchesOn(t *testing.T) {
	doc := buildPDF(pageSpec{text: "cache me"}, pageSpec{text: "cache me again"})
	cached := extract(t, doc, Config{})
	uncached := extract(t, doc, Config{DisableCaching: true})
	assert.Equal(t, cached, uncached)
}

func TestDebugLoggingGoesToConfiguredSink(t *testing.T) {
	var logs bytes.Buffer
	SetLogOutput(&logs)
	defer SetLogOutput(os.Stderr)

	doc := buildPDF(pageSpec{text: "logged"})
	extract(t, doc, Config{Debug: true})
	assert.Contains(t, logs.String(), "processing page")

	logs.Reset()
	extract(t, doc, Config{})
	assert.Zero(t, logs.Len(), "silent without Debug")
}
