// Package seal provides optional encryption-at-rest for snapshot payloads
// using ChaCha20-Poly1305.
//
// Sealed payload format: magic "KVS1SEAL" || nonce || ciphertext. The
// payload's file base name is the additional data, so a sealed payload
// copied onto another snapshot's name fails to open. Digest sidecars are
// computed over the sealed bytes; integrity checks never need the key.
package seal

import (
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"io"
	"os"
	"strings"

	"golang.org/x/crypto/chacha20poly1305"

	"github.com/snapkv/snapkv/pkg/errclass"
)

// KeySize is the required key length in bytes.
const KeySize = chacha20poly1305.KeySize

var magic = []byte("KVS1SEAL")

// Sealer provides authenticated encryption for stored payloads.
type Sealer struct {
	aead cipher.AEAD
}

// New creates a Sealer from a raw key.
func New(key []byte) (*Sealer, error) {
	if len(key) != KeySize {
		return nil, errclass.ErrInvalidConfig.WithMessagef("seal key is %d bytes, want %d", len(key), KeySize)
	}
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, errclass.ErrInvalidConfig.WithMessagef("seal key: %v", err)
	}
	return &Sealer{aead: aead}, nil
}

// LoadKeyFile reads a key file holding either 32 raw bytes or their
// 64-character hex form.
func LoadKeyFile(path string) ([]byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errclass.ErrInvalidConfig.WithMessagef("seal key file %s: %v", path, err)
	}
	if len(raw) == KeySize {
		return raw, nil
	}
	trimmed := strings.TrimSpace(string(raw))
	if len(trimmed) == KeySize*2 {
		key, err := hex.DecodeString(trimmed)
		if err == nil {
			return key, nil
		}
	}
	return nil, errclass.ErrInvalidConfig.WithMessagef("seal key file %s: want %d raw bytes or %d hex characters", path, KeySize, KeySize*2)
}

// Seal encrypts plain, binding it to aad.
func (s *Sealer) Seal(plain []byte, aad string) ([]byte, error) {
	nonce := make([]byte, s.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, errclass.ErrIO.WithMessagef("seal nonce: %v", err)
	}
	out := make([]byte, 0, len(magic)+len(nonce)+len(plain)+s.aead.Overhead())
	out = append(out, magic...)
	out = append(out, nonce...)
	return s.aead.Seal(out, nonce, plain, []byte(aad)), nil
}

// Open decrypts a sealed payload bound to aad. Tampered or misbound
// payloads fail as integrity errors.
func (s *Sealer) Open(sealed []byte, aad string) ([]byte, error) {
	if !IsSealed(sealed) {
		return nil, errclass.ErrIntegrity.WithMessage("payload is not sealed")
	}
	body := sealed[len(magic):]
	if len(body) < s.aead.NonceSize() {
		return nil, errclass.ErrIntegrity.WithMessage("sealed payload truncated")
	}
	nonce, ciphertext := body[:s.aead.NonceSize()], body[s.aead.NonceSize():]
	plain, err := s.aead.Open(nil, nonce, ciphertext, []byte(aad))
	if err != nil {
		return nil, errclass.ErrIntegrity.WithMessagef("unseal: %v", err)
	}
	return plain, nil
}

// IsSealed reports whether data starts with the seal magic.
func IsSealed(data []byte) bool {
	return len(data) >= len(magic) && string(data[:len(magic)]) == string(magic)
}
