// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Standard security handler: password authentication, permission bits,
// and per-object RC4/AES-128 decryption (revisions 2 through 4).

package pdf

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/md5"
	"crypto/rc4"
	"io"
)

// Permission bits from the /P entry of the encryption dictionary.
// Only the bits the extractor cares about are named.
const (
	PermPrint  = 1 << 2 // bit 3
	PermModify = 1 << 3 // bit 4
	PermCopy   = 1 << 4 // bit 5: copy text and graphics
)

var passwordPad = []byte{
	0x28, 0xBF, 0x4E, 0x5E, 0x4E, 0x75, 0x8A, 0x41,
	0x64, 0x00, 0x4E, 0x56, 0xFF, 0xFA, 0x01, 0x08,
	0x2E, 0x2E, 0x00, 0xB6, 0xD0, 0x68, 0x3E, 0x80,
	0x2F, 0x0C, 0xA9, 0xFE, 0x64, 0x53, 0x69, 0x7A,
}

// encryptInfo is the parsed standard encryption dictionary.
type encryptInfo struct {
	v       int    // /V
	r       int    // /R
	length  int    // key length in bytes
	o       []byte // /O, 32 bytes
	u       []byte // /U, 32 bytes
	p       uint32 // /P, as a 32-bit bit field
	id0     string // first element of the trailer /ID
	useAES  bool   // V4 with /CFM /AESV2
	encMeta bool   // /EncryptMetadata
}

// padPassword pads or truncates a password to exactly 32 bytes, per
// Algorithm 2 step (a). Passwords are Latin-1 in revisions 2-4.
func padPassword(password string) []byte {
	pw := toLatin1(password)
	if len(pw) > 32 {
		pw = pw[:32]
	}
	out := make([]byte, 32)
	copy(out, pw)
	copy(out[len(pw):], passwordPad)
	return out
}

// toLatin1 converts a UTF-8 string to Latin-1 (ISO-8859-1) encoding.
// Characters that cannot be represented in Latin-1 are replaced with '?'.
func toLatin1(s string) []byte {
	b := make([]byte, 0, len(s))
	for _, r := range s {
		if r < 256 {
			b = append(b, byte(r))
		} else {
			b = append(b, '?')
		}
	}
	return b
}

// computeKey implements Algorithm 2: derive the file encryption key from
// a (user) password.
func (e *encryptInfo) computeKey(password string) []byte {
	h := md5.New()
	h.Write(padPassword(password))
	h.Write(e.o)
	h.Write([]byte{byte(e.p), byte(e.p >> 8), byte(e.p >> 16), byte(e.p >> 24)})
	h.Write([]byte(e.id0))
	if e.r >= 4 && !e.encMeta {
		h.Write([]byte{0xff, 0xff, 0xff, 0xff})
	}
	key := h.Sum(nil)
	n := e.length
	if e.r == 2 {
		n = 5
	}
	if e.r >= 3 {
		for i := 0; i < 50; i++ {
			key = md5sum(key[:n])
		}
	}
	return key[:n]
}

// authUserPassword implements Algorithms 4/5/6: check a candidate user
// password against /U. Returns the file key on success, nil on mismatch.
func (e *encryptInfo) authUserPassword(password string) []byte {
	key := e.computeKey(password)
	switch {
	case e.r == 2:
		c, _ := rc4.NewCipher(key)
		u := make([]byte, 32)
		c.XORKeyStream(u, passwordPad)
		if bytes.Equal(u, e.u) {
			return key
		}
	case e.r >= 3:
		h := md5.New()
		h.Write(passwordPad)
		h.Write([]byte(e.id0))
		u := h.Sum(nil)
		c, _ := rc4.NewCipher(key)
		c.XORKeyStream(u, u)
		for i := 1; i <= 19; i++ {
			k := make([]byte, len(key))
			for j := range key {
				k[j] = key[j] ^ byte(i)
			}
			c, _ = rc4.NewCipher(k)
			c.XORKeyStream(u, u)
		}
		if len(e.u) >= 16 && bytes.Equal(u[:16], e.u[:16]) {
			return key
		}
	}
	return nil
}

// authOwnerPassword implements Algorithm 7: recover the user password
// from /O with the owner password, then authenticate it.
func (e *encryptInfo) authOwnerPassword(password string) []byte {
	h := md5.New()
	h.Write(padPassword(password))
	key := h.Sum(nil)
	if e.r >= 3 {
		for i := 0; i < 50; i++ {
			key = md5sum(key)
		}
	}
	n := e.length
	if e.r == 2 {
		n = 5
	}
	ownerKey := key[:n]

	user := make([]byte, 32)
	copy(user, e.o)
	if e.r == 2 {
		c, _ := rc4.NewCipher(ownerKey)
		c.XORKeyStream(user, user)
	} else {
		for i := 19; i >= 0; i-- {
			k := make([]byte, len(ownerKey))
			for j := range ownerKey {
				k[j] = ownerKey[j] ^ byte(i)
			}
			c, _ := rc4.NewCipher(k)
			c.XORKeyStream(user, user)
		}
	}
	// The recovered bytes are the padded user password.
	return e.authUserPassword(string(trimPad(user)))
}

// trimPad strips the standard password pad suffix from a padded password.
// A 32-byte padded password is the password itself followed by a prefix
// of passwordPad.
func trimPad(padded []byte) []byte {
	for i := 0; i <= len(padded); i++ {
		if bytes.Equal(padded[i:], passwordPad[:len(padded)-i]) {
			return padded[:i]
		}
	}
	return padded
}

func md5sum(data []byte) []byte {
	h := md5.Sum(data)
	return h[:]
}

// objectKey derives the per-object key per Algorithm 1.
func objectKey(key []byte, useAES bool, ptr objptr) []byte {
	h := md5.New()
	h.Write(key)
	h.Write([]byte{byte(ptr.id), byte(ptr.id >> 8), byte(ptr.id >> 16)})
	h.Write([]byte{byte(ptr.gen), byte(ptr.gen >> 8)})
	if useAES {
		h.Write([]byte("sAlT"))
	}
	n := len(key) + 5
	if n > 16 {
		n = 16
	}
	return h.Sum(nil)[:n]
}

// decryptString decrypts a string literal belonging to the given object.
func decryptString(key []byte, useAES bool, ptr objptr, s string) string {
	ok := objectKey(key, useAES, ptr)
	if !useAES {
		c, _ := rc4.NewCipher(ok)
		data := []byte(s)
		c.XORKeyStream(data, data)
		return string(data)
	}
	data := []byte(s)
	if len(data) < aes.BlockSize {
		return s
	}
	b, err := aes.NewCipher(ok)
	if err != nil {
		panic(err)
	}
	iv := data[:aes.BlockSize]
	data = data[aes.BlockSize:]
	if len(data)%aes.BlockSize != 0 {
		return s
	}
	cbc := cipher.NewCBCDecrypter(b, iv)
	cbc.CryptBlocks(data, data)
	return string(stripPKCS7(data))
}

// decryptStream returns a reader decrypting stream data belonging to the
// given object.
func decryptStream(key []byte, useAES bool, ptr objptr, rd io.Reader) io.Reader {
	ok := objectKey(key, useAES, ptr)
	if !useAES {
		c, _ := rc4.NewCipher(ok)
		return &cipher.StreamReader{S: c, R: rd}
	}
	return &aesCBCReader{key: ok, r: rd}
}

// aesCBCReader decrypts an AES-CBC stream whose first block is the IV.
type aesCBCReader struct {
	key  []byte
	r    io.Reader
	out  []byte
	err  error
	init bool
}

func (a *aesCBCReader) Read(p []byte) (int, error) {
	if !a.init {
		a.init = true
		data, err := io.ReadAll(a.r)
		if err != nil {
			a.err = err
		} else if len(data) >= aes.BlockSize && len(data)%aes.BlockSize == 0 {
			b, err := aes.NewCipher(a.key)
			if err != nil {
				a.err = err
			} else {
				iv := data[:aes.BlockSize]
				body := data[aes.BlockSize:]
				cbc := cipher.NewCBCDecrypter(b, iv)
				cbc.CryptBlocks(body, body)
				a.out = stripPKCS7(body)
			}
		} else {
			a.err = ErrCorrupted
		}
	}
	if a.err != nil {
		return 0, a.err
	}
	if len(a.out) == 0 {
		return 0, io.EOF
	}
	n := copy(p, a.out)
	a.out = a.out[n:]
	return n, nil
}

func stripPKCS7(data []byte) []byte {
	if len(data) == 0 {
		return data
	}
	pad := int(data[len(data)-1])
	if pad < 1 || pad > aes.BlockSize || pad > len(data) {
		return data
	}
	return data[:len(data)-pad]
}
