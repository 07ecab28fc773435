package emailcrypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/kickwatch/alerts-service/internal/config"
)

var (
	ErrMissingHashSecret = errors.New("email hash secret is required")
	ErrInvalidKey        = errors.New("email encryption key must be 32 bytes")
	ErrInvalidCiphertext = errors.New("invalid ciphertext")
)

// Codec normalizes, hashes and encrypts account emails. Hashes are
// deterministic HMACs so encrypted emails stay queryable; legacy
// secrets let lookups survive a secret rotation.
type Codec struct {
	secret        []byte
	legacySecrets [][]byte
	aead          cipher.AEAD
}

func New(cfg config.Config) (*Codec, error) {
	secret := strings.TrimSpace(cfg.EmailHashSecret)
	if secret == "" {
		return nil, ErrMissingHashSecret
	}

	legacy := make([][]byte, 0, len(cfg.EmailHashLegacySecrets))
	for _, s := range cfg.EmailHashLegacySecrets {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		legacy = append(legacy, []byte(s))
	}

	key, err := decodeKey(cfg.EmailEncryptionKey)
	if err != nil {
		return nil, err
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create gcm: %w", err)
	}

	return &Codec{
		secret:        []byte(secret),
		legacySecrets: legacy,
		aead:          aead,
	}, nil
}

// Normalize lowercases and trims an email address.
func Normalize(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Hash returns the deterministic lookup hash for an email.
func (c *Codec) Hash(email string) string {
	return hashWith(c.secret, Normalize(email))
}

// HashCandidates returns the current hash plus hashes under legacy
// secrets, newest first.
func (c *Codec) HashCandidates(email string) []string {
	normalized := Normalize(email)
	out := make([]string, 0, 1+len(c.legacySecrets))
	out = append(out, hashWith(c.secret, normalized))
	for _, secret := range c.legacySecrets {
		out = append(out, hashWith(secret, normalized))
	}
	return out
}

// Encrypt seals an email with AES-256-GCM and encodes it as base64.
func (c *Codec) Encrypt(email string) (string, error) {
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}
	sealed := c.aead.Seal(nonce, nonce, []byte(Normalize(email)), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt reverses Encrypt.
func (c *Codec) Decrypt(encoded string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(encoded))
	if err != nil {
		return "", ErrInvalidCiphertext
	}
	nonceSize := c.aead.NonceSize()
	if len(raw) < nonceSize {
		return "", ErrInvalidCiphertext
	}
	plain, err := c.aead.Open(nil, raw[:nonceSize], raw[nonceSize:], nil)
	if err != nil {
		return "", ErrInvalidCiphertext
	}
	return string(plain), nil
}

// Mask hides the local part of an email for logs, keeping the first
// character and the domain.
func Mask(email string) string {
	normalized := Normalize(email)
	at := strings.IndexByte(normalized, '@')
	if at <= 0 {
		return "***"
	}
	return normalized[:1] + "***" + normalized[at:]
}

func hashWith(secret []byte, normalized string) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(normalized))
	return hex.EncodeToString(mac.Sum(nil))
}

func decodeKey(raw string) ([]byte, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrInvalidKey
	}
	if decoded, err := base64.StdEncoding.DecodeString(raw); err == nil && len(decoded) == 32 {
		return decoded, nil
	}
	if decoded, err := hex.DecodeString(raw); err == nil && len(decoded) == 32 {
		return decoded, nil
	}
	if len(raw) == 32 {
		return []byte(raw), nil
	}
	return nil, ErrInvalidKey
}
