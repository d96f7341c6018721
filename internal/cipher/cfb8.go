// Package cipher implements the AES-128-CFB8 stream cipher Minecraft's
// login encryption handshake negotiates: a crypto/cipher.Stream whose
// feedback segment is a single byte rather than a full block, which
// crypto/cipher's own CFB mode (block-sized segments only) cannot express.
package cipher

import (
	"crypto/aes"
	"crypto/cipher"
)

// cfb8 implements cipher.Stream for CFB-8 mode: each ciphertext byte becomes
// the new tail of the shift register, one byte of cipher.Block output at a
// time. encrypt/decrypt share the struct; only where the ciphertext byte
// comes from (the output when encrypting, the input when decrypting)
// differs.
type cfb8 struct {
	block   cipher.Block
	shift   []byte // the IV-sized feedback register, mutated in place
	tmp     []byte // scratch space for block.Encrypt's output
	decrypt bool
}

// NewEncrypter returns a cipher.Stream that CFB-8-encrypts plaintext under
// block, using iv as the initial shift register. Per the protocol, iv is
// the same 16-byte shared secret used as the key.
func NewEncrypter(block cipher.Block, iv []byte) cipher.Stream {
	return newCFB8(block, iv, false)
}

// NewDecrypter returns a cipher.Stream that CFB-8-decrypts ciphertext under
// block, using iv as the initial shift register.
func NewDecrypter(block cipher.Block, iv []byte) cipher.Stream {
	return newCFB8(block, iv, true)
}

func newCFB8(block cipher.Block, iv []byte, decrypt bool) *cfb8 {
	if len(iv) != block.BlockSize() {
		panic("cipher: iv length must equal block size")
	}
	shift := make([]byte, len(iv))
	copy(shift, iv)
	return &cfb8{
		block:   block,
		shift:   shift,
		tmp:     make([]byte, block.BlockSize()),
		decrypt: decrypt,
	}
}

// XORKeyStream implements cipher.Stream. It processes one byte at a time:
// CFB-8 feeds the whole shift register through the block cipher, uses only
// the leading byte of the result as the keystream byte, then shifts the
// register left by one byte and appends the feedback byte, which is always
// the ciphertext byte: the output when encrypting, the input when
// decrypting.
func (c *cfb8) XORKeyStream(dst, src []byte) {
	if len(dst) < len(src) {
		panic("cipher: output smaller than input")
	}
	for i, in := range src {
		c.block.Encrypt(c.tmp, c.shift)
		out := in ^ c.tmp[0]

		var feedback byte
		if c.decrypt {
			feedback = in
		} else {
			feedback = out
		}

		copy(c.shift, c.shift[1:])
		c.shift[len(c.shift)-1] = feedback

		dst[i] = out
	}
}

// NewAES128Block is a small convenience wrapper so callers don't need to
// import crypto/aes directly just to build a 16-byte-key block cipher.
func NewAES128Block(key []byte) (cipher.Block, error) {
	return aes.NewCipher(key)
}
