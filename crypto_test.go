package pdf

import (
	"crypto/rc4"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPadPassword(t *testing.T) {
	p := padPassword("")
	assert.Len(t, p, 32)
	assert.Equal(t, passwordPad, p)

	p = padPassword("abc")
	assert.Len(t, p, 32)
	assert.Equal(t, []byte("abc"), p[:3])
	assert.Equal(t, passwordPad[:29], p[3:])

	long := padPassword("0123456789012345678901234567890123456789")
	assert.Len(t, long, 32)
	assert.Equal(t, byte('0'), long[0])
}

func TestTrimPadInvertsPadding(t *testing.T) {
	for _, pw := range []string{"", "a", "secret", "exactly-32-bytes-long-password!!"} {
		got := trimPad(padPassword(pw))
		assert.Equal(t, []byte(pw), got, "password %q", pw)
	}
}

func TestObjectKeyLength(t *testing.T) {
	key16 := make([]byte, 16)
	// 16+5 caps at 16.
	assert.Len(t, objectKey(key16, false, objptr{1, 0}), 16)
	// 5+5 stays at 10.
	assert.Len(t, objectKey(make([]byte, 5), false, objptr{1, 0}), 10)
	// The AES salt changes the key.
	assert.NotEqual(t,
		objectKey(key16, false, objptr{1, 0}),
		objectKey(key16, true, objptr{1, 0}))
	// Different objects get different keys.
	assert.NotEqual(t,
		objectKey(key16, false, objptr{1, 0}),
		objectKey(key16, false, objptr{2, 0}))
}

func TestDecryptStringRC4(t *testing.T) {
	key := []byte("0123456789abcdef")
	ptr := objptr{7, 0}
	plain := "attack at dawn"

	c, err := rc4.NewCipher(objectKey(key, false, ptr))
	require.NoError(t, err)
	enc := make([]byte, len(plain))
	c.XORKeyStream(enc, []byte(plain))

	assert.Equal(t, plain, decryptString(key, false, ptr, string(enc)))
}

func TestUserPasswordAuthentication(t *testing.T) {
	o := computeOwnerEntry("user-pw", "owner-pw")
	e := &encryptInfo{v: 2, r: 3, length: 16, o: o, p: 0xFFFFFFFC, id0: fixtureID0, encMeta: true}
	e.u = computeUserEntry(e.computeKey("user-pw"))

	assert.NotNil(t, e.authUserPassword("user-pw"))
	assert.Nil(t, e.authUserPassword("wrong"))
	assert.Nil(t, e.authUserPassword(""))
}

func TestOwnerPasswordRecoversUserKey(t *testing.T) {
	o := computeOwnerEntry("user-pw", "owner-pw")
	e := &encryptInfo{v: 2, r: 3, length: 16, o: o, p: 0xFFFFFFFC, id0: fixtureID0, encMeta: true}
	e.u = computeUserEntry(e.computeKey("user-pw"))

	userKey := e.authUserPassword("user-pw")
	require.NotNil(t, userKey)
	assert.Equal(t, userKey, e.authOwnerPassword("owner-pw"))
	assert.Nil(t, e.authOwnerPassword("wrong"))
}

func TestStripPKCS7(t *testing.T) {
	assert.Equal(t, []byte("data"), stripPKCS7([]byte("data\x04\x04\x04\x04")))
	// Implausible pad values are left alone.
	assert.Equal(t, []byte("data\x20"), stripPKCS7([]byte("data\x20")))
}
