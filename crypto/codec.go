package crypto

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/nacl/secretbox"
)

const (
	// KeySize is the required length of the symmetric key in bytes.
	KeySize = 32
	// nonceSize is the secretbox nonce length prepended to every ciphertext.
	nonceSize = 24
)

var (
	ErrInvalidKey = errors.New("encryption key must be 32 bytes")
	// ErrDecryptionFailed means the ciphertext is too short, was tampered
	// with, or was sealed under a different key.
	ErrDecryptionFailed = errors.New("field decryption failed")
	// ErrMalformedPayload means decryption succeeded but the plaintext does
	// not parse as the expected structured payload.
	ErrMalformedPayload = errors.New("malformed payload")
)

// Codec seals and opens note fields with an authenticated symmetric cipher.
// The key is fixed at construction and held for the process lifetime; a Codec
// is safe for concurrent use.
type Codec struct {
	key [KeySize]byte
}

// NewCodec creates a codec from raw key material.
func NewCodec(key []byte) (*Codec, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidKey, len(key))
	}
	c := &Codec{}
	copy(c.key[:], key)
	return c, nil
}

// NewCodecFromHex creates a codec from a hex-encoded key, as carried in
// configuration.
func NewCodecFromHex(hexKey string) (*Codec, error) {
	key, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("%w: not valid hex", ErrInvalidKey)
	}
	return NewCodec(key)
}

// Encrypt seals plaintext with a fresh random nonce. The nonce is prepended
// to the returned ciphertext so Decrypt is self-contained. Sealing the same
// plaintext twice yields different ciphertext.
func (c *Codec) Encrypt(plaintext []byte) ([]byte, error) {
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}
	return secretbox.Seal(nonce[:], plaintext, &nonce, &c.key), nil
}

// Decrypt opens a nonce-prefixed ciphertext produced by Encrypt.
func (c *Codec) Decrypt(ciphertext []byte) ([]byte, error) {
	if len(ciphertext) < nonceSize+secretbox.Overhead {
		return nil, ErrDecryptionFailed
	}
	var nonce [nonceSize]byte
	copy(nonce[:], ciphertext[:nonceSize])
	plaintext, ok := secretbox.Open(nil, ciphertext[nonceSize:], &nonce, &c.key)
	if !ok {
		return nil, ErrDecryptionFailed
	}
	return plaintext, nil
}

// EncryptString seals a text field. The empty string is encrypted like any
// other value, so stored columns are never empty and absence is not
// distinguishable from storage alone.
func (c *Codec) EncryptString(s string) ([]byte, error) {
	return c.Encrypt([]byte(s))
}

// DecryptString opens a text field sealed by EncryptString.
func (c *Codec) DecryptString(ciphertext []byte) (string, error) {
	plaintext, err := c.Decrypt(ciphertext)
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}

// EncryptJSON serializes v to JSON and seals the result. Used for structured
// block payloads.
func (c *Codec) EncryptJSON(v interface{}) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	return c.Encrypt(data)
}

// DecryptJSON opens a ciphertext and unmarshals the plaintext into out. A
// parse failure after a successful decrypt is reported as ErrMalformedPayload
// so callers can tell data-shape corruption apart from cryptographic failure.
func (c *Codec) DecryptJSON(ciphertext []byte, out interface{}) error {
	plaintext, err := c.Decrypt(ciphertext)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(plaintext, out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	return nil
}
