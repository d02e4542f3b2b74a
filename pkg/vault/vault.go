// Package vault seals task answers with a process-wide symmetric key and
// compares user submissions against sealed answers.
package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"regexp"
	"strings"

	"golang.org/x/crypto/argon2"
)

// ErrInvalidCiphertext is returned by Decrypt when the input is malformed or
// was sealed under a different key.
var ErrInvalidCiphertext = errors.New("invalid ciphertext")

var keySalt = []byte("julekalender/answer-vault")

type Vault struct {
	aead cipher.AEAD
}

// New builds a vault around a raw AES key (16, 24 or 32 bytes).
func New(key []byte) (*Vault, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &Vault{aead: aead}, nil
}

// NewFromSecret accepts either a base64 encoded AES key or an arbitrary
// passphrase. Passphrases are stretched to a 256-bit key with Argon2id.
func NewFromSecret(secret string) (*Vault, error) {
	if secret == "" {
		return nil, errors.New("answer key is empty")
	}
	if raw, err := base64.StdEncoding.DecodeString(secret); err == nil {
		switch len(raw) {
		case 16, 24, 32:
			return New(raw)
		}
	}
	return New(DeriveKey(secret))
}

func DeriveKey(passphrase string) []byte {
	return argon2.IDKey([]byte(passphrase), keySalt, 1, 64*1024, 4, 32)
}

// Encrypt seals secret and returns base64url(nonce || ciphertext).
func (v *Vault) Encrypt(secret string) (string, error) {
	nonce := make([]byte, v.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}
	sealed := v.aead.Seal(nonce, nonce, []byte(secret), nil)
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

func (v *Vault) Decrypt(ciphertext string) (string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", ErrInvalidCiphertext
	}
	ns := v.aead.NonceSize()
	if len(raw) < ns+v.aead.Overhead() {
		return "", ErrInvalidCiphertext
	}
	plain, err := v.aead.Open(nil, raw[:ns], raw[ns:], nil)
	if err != nil {
		return "", ErrInvalidCiphertext
	}
	return string(plain), nil
}

// Compare reports whether submission matches the sealed answer. A secret
// written as ^...$ is treated as a case-insensitive regular expression;
// anything else needs case-insensitive equality. Undecryptable or invalid
// secrets never match.
func (v *Vault) Compare(submission, ciphertext string) bool {
	secret, err := v.Decrypt(ciphertext)
	if err != nil {
		return false
	}
	text := Normalize(submission)

	if IsPattern(secret) {
		re, err := regexp.Compile("(?i)" + secret)
		if err != nil {
			return false
		}
		return re.MatchString(text)
	}
	return strings.EqualFold(secret, text)
}

// Normalize trims surrounding whitespace and lowercases s.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func IsPattern(secret string) bool {
	return len(secret) >= 2 && strings.HasPrefix(secret, "^") && strings.HasSuffix(secret, "$")
}
