package service

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
)

const gcmTagSize = 16

// AESContentCrypto implements ports.ContentCrypto using AES-256-GCM.
// Unlike the usual nonce-prefixed layout, the IV and auth tag travel
// separately from the ciphertext because the entitlement record stores
// them per book while the ciphertext lives in blob storage.
type AESContentCrypto struct {
	key []byte // 32-byte key for AES-256
}

// NewAESContentCrypto creates a content crypto service.
// hexKey must be a 64-character hex string (32 bytes decoded).
func NewAESContentCrypto(hexKey string) (*AESContentCrypto, error) {
	key, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("decoding AES key: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("AES key must be 32 bytes, got %d", len(key))
	}
	return &AESContentCrypto{key: key}, nil
}

// Encrypt seals plaintext and returns the ciphertext, the random IV,
// and the GCM auth tag as three separate byte slices.
func (s *AESContentCrypto) Encrypt(plaintext []byte) (ciphertext, iv, tag []byte, err error) {
	aesGCM, err := s.newGCM()
	if err != nil {
		return nil, nil, nil, err
	}

	iv = make([]byte, aesGCM.NonceSize())
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return nil, nil, nil, fmt.Errorf("generating IV: %w", err)
	}

	sealed := aesGCM.Seal(nil, iv, plaintext, nil)
	split := len(sealed) - gcmTagSize
	return sealed[:split], iv, sealed[split:], nil
}

// Decrypt opens ciphertext with the given IV and auth tag. A wrong key,
// IV, tag, or any ciphertext tampering fails authentication.
func (s *AESContentCrypto) Decrypt(ciphertext, iv, tag []byte) ([]byte, error) {
	aesGCM, err := s.newGCM()
	if err != nil {
		return nil, err
	}

	if len(iv) != aesGCM.NonceSize() {
		return nil, fmt.Errorf("IV must be %d bytes, got %d", aesGCM.NonceSize(), len(iv))
	}
	if len(tag) != gcmTagSize {
		return nil, fmt.Errorf("auth tag must be %d bytes, got %d", gcmTagSize, len(tag))
	}

	sealed := make([]byte, 0, len(ciphertext)+len(tag))
	sealed = append(sealed, ciphertext...)
	sealed = append(sealed, tag...)

	plaintext, err := aesGCM.Open(nil, iv, sealed, nil)
	if err != nil {
		return nil, fmt.Errorf("decrypting: %w", err)
	}
	return plaintext, nil
}

func (s *AESContentCrypto) newGCM() (cipher.AEAD, error) {
	block, err := aes.NewCipher(s.key)
	if err != nil {
		return nil, fmt.Errorf("creating cipher: %w", err)
	}
	aesGCM, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("creating GCM: %w", err)
	}
	return aesGCM, nil
}
