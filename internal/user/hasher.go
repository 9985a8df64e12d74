package user

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"os"

	"golang.org/x/crypto/blake2b"
)

// PasswordHasher turns a plaintext password into the digest stored in users.password.
// Implementations must be deterministic: login compares digests with SQL equality.
type PasswordHasher interface {
	Hash(pw string) string
	Name() string
}

// MD5Hasher produces lowercase hex MD5, the scheme existing rows were written with.
// It is unsalted and fast; kept for compatibility with stored credentials.
type MD5Hasher struct{}

func (MD5Hasher) Hash(pw string) string {
	sum := md5.Sum([]byte(pw))
	return hex.EncodeToString(sum[:])
}

func (MD5Hasher) Name() string { return "md5" }

// Blake2bHasher produces hex BLAKE2b-256. Still unsalted.
type Blake2bHasher struct{}

func (Blake2bHasher) Hash(pw string) string {
	sum := blake2b.Sum256([]byte(pw))
	return hex.EncodeToString(sum[:])
}

func (Blake2bHasher) Name() string { return "blake2b" }

// Config selects the digest scheme.
type Config struct {
	Digest string
}

// ConfigFromEnv reads PASSWORD_DIGEST (md5 by default).
func ConfigFromEnv() Config {
	d := os.Getenv("PASSWORD_DIGEST")
	if d == "" {
		d = "md5"
	}
	return Config{Digest: d}
}

// NewHasher returns the hasher registered under name.
func NewHasher(name string) (PasswordHasher, error) {
	switch name {
	case "", "md5":
		return MD5Hasher{}, nil
	case "blake2b":
		return Blake2bHasher{}, nil
	default:
		return nil, fmt.Errorf("unknown password digest %q", name)
	}
}
